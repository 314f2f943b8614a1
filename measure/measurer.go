package measure

import (
	"fmt"
	"strings"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/text/unicode/norm"

	"github.com/tsawler/folio/model"
)

// Config holds options for geometry estimation. All lengths are
// device-independent pixels.
type Config struct {
	// ContentWidth is the horizontal space available to block content
	// (default: 624, the Letter content box at one-inch margins).
	ContentWidth float64

	// BaseFontSize is the body text size (default: 16).
	BaseFontSize float64

	// LineHeight is the line box height as a multiple of the font size
	// (default: 1.5).
	LineHeight float64

	// CodeFontSize is the monospace size used for code blocks
	// (default: 13).
	CodeFontSize float64

	// ListIndent is the horizontal indent applied to list items
	// (default: 40).
	ListIndent float64

	// QuoteIndent is the horizontal indent applied to each side of a
	// blockquote (default: 40).
	QuoteIndent float64
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		ContentWidth: 624,
		BaseFontSize: 16,
		LineHeight:   1.5,
		CodeFontSize: 13,
		ListIndent:   40,
		QuoteIndent:  40,
	}
}

// Heading sizes as multiples of the base font size, and heading margins as
// multiples of the heading's own size, following the browser default
// stylesheet for h1 through h6.
var (
	headingScale  = [6]float64{2, 1.5, 1.17, 1, 0.83, 0.67}
	headingMargin = [6]float64{0.67, 0.83, 1, 1.33, 1.67, 2.33}
)

// Fallback intrinsic size for images that do not declare one, matching the
// replaced-element default.
const (
	defaultImageWidth  = 300
	defaultImageHeight = 150
)

// The embedded Go fonts are parsed once and shared by every Measurer.
var (
	fontOnce    sync.Once
	fontErr     error
	regularFont *sfnt.Font
	boldFont    *sfnt.Font
	monoFont    *sfnt.Font
)

func loadFonts() error {
	fontOnce.Do(func() {
		if regularFont, fontErr = opentype.Parse(goregular.TTF); fontErr != nil {
			return
		}
		if boldFont, fontErr = opentype.Parse(gobold.TTF); fontErr != nil {
			return
		}
		monoFont, fontErr = opentype.Parse(gomono.TTF)
	})
	return fontErr
}

// newFace builds a face sized in pixels. The rasterizer works in points at
// a given DPI, so the pixel size is scaled by 72/96 to a point size at
// 96 DPI.
func newFace(fnt *sfnt.Font, sizePx float64) (font.Face, error) {
	return opentype.NewFace(fnt, &opentype.FaceOptions{
		Size:    sizePx * 72.0 / 96.0,
		DPI:     96,
		Hinting: font.HintingFull,
	})
}

// Measurer estimates the rendered geometry of content blocks. It is safe
// for concurrent use once constructed.
type Measurer struct {
	config   Config
	body     font.Face
	mono     font.Face
	headings [6]font.Face
}

// NewMeasurer creates a Measurer with default configuration.
func NewMeasurer() (*Measurer, error) {
	return NewMeasurerWithConfig(DefaultConfig())
}

// NewMeasurerWithConfig creates a Measurer with custom configuration.
// Zero-valued fields fall back to their defaults.
func NewMeasurerWithConfig(config Config) (*Measurer, error) {
	def := DefaultConfig()
	if config.ContentWidth <= 0 {
		config.ContentWidth = def.ContentWidth
	}
	if config.BaseFontSize <= 0 {
		config.BaseFontSize = def.BaseFontSize
	}
	if config.LineHeight <= 0 {
		config.LineHeight = def.LineHeight
	}
	if config.CodeFontSize <= 0 {
		config.CodeFontSize = def.CodeFontSize
	}
	if config.ListIndent < 0 {
		config.ListIndent = def.ListIndent
	}
	if config.QuoteIndent < 0 {
		config.QuoteIndent = def.QuoteIndent
	}

	if err := loadFonts(); err != nil {
		return nil, fmt.Errorf("parsing embedded fonts: %w", err)
	}

	m := &Measurer{config: config}

	var err error
	if m.body, err = newFace(regularFont, config.BaseFontSize); err != nil {
		return nil, fmt.Errorf("building body face: %w", err)
	}
	if m.mono, err = newFace(monoFont, config.CodeFontSize); err != nil {
		return nil, fmt.Errorf("building mono face: %w", err)
	}
	for i := range m.headings {
		size := config.BaseFontSize * headingScale[i]
		if m.headings[i], err = newFace(boldFont, size); err != nil {
			return nil, fmt.Errorf("building h%d face: %w", i+1, err)
		}
	}

	return m, nil
}

// Config returns the configuration the Measurer was built with.
func (m *Measurer) Config() Config {
	return m.config
}

// Layout measures every block and assigns sequential indices and
// cumulative offsets, producing geometry ready for pagination. Margins do
// not collapse: each block advances the flow by its full extent.
func (m *Measurer) Layout(blocks []model.Block) []model.BlockGeometry {
	geoms := make([]model.BlockGeometry, len(blocks))
	offset := 0.0
	for i, b := range blocks {
		h, mt, mb := m.MeasureBlock(b)
		geoms[i] = model.BlockGeometry{
			Height:       h,
			MarginTop:    mt,
			MarginBottom: mb,
			Offset:       offset,
			Index:        i,
		}
		offset += h + mt + mb
	}
	return geoms
}

// MeasureBlock estimates the rendered height and vertical margins of a
// single block. Unknown kinds measure as paragraphs.
func (m *Measurer) MeasureBlock(b model.Block) (height, marginTop, marginBottom float64) {
	base := m.config.BaseFontSize
	bodyLine := m.linePx(base)

	switch b.Kind {
	case model.KindHeading:
		level := b.Level
		if level < 1 {
			level = 1
		}
		if level > 6 {
			level = 6
		}
		size := base * headingScale[level-1]
		margin := size * headingMargin[level-1]
		h := m.wrapHeight(b.Text, m.headings[level-1], m.config.ContentWidth, m.linePx(size))
		return h, margin, margin

	case model.KindList:
		width := m.config.ContentWidth - m.config.ListIndent
		if width < 1 {
			width = 1
		}
		h := 0.0
		for _, item := range b.Items {
			h += m.wrapHeight(item, m.body, width, bodyLine)
		}
		if len(b.Items) == 0 {
			h = bodyLine
		}
		return h, base, base

	case model.KindCodeBlock:
		lines := strings.Count(strings.TrimSuffix(b.Text, "\n"), "\n") + 1
		return float64(lines) * m.linePx(m.config.CodeFontSize), base, base

	case model.KindBlockquote:
		width := m.config.ContentWidth - 2*m.config.QuoteIndent
		if width < 1 {
			width = 1
		}
		return m.wrapHeight(b.Text, m.body, width, bodyLine), base, base

	case model.KindTable:
		rows := len(b.Cells)
		if rows == 0 {
			rows = 1
		}
		// One line of body text plus cell padding per row. Tables carry no
		// vertical margin in the default stylesheet.
		return float64(rows) * (bodyLine + 8), 0, 0

	case model.KindImage:
		w, h := b.ImageWidth, b.ImageHeight
		if w <= 0 || h <= 0 {
			w, h = defaultImageWidth, defaultImageHeight
		}
		if w > m.config.ContentWidth {
			h = h * m.config.ContentWidth / w
		}
		return h, 0, 0

	case model.KindRule:
		return 2, base / 2, base / 2

	default:
		return m.wrapHeight(b.Text, m.body, m.config.ContentWidth, bodyLine), base, base
	}
}

// linePx returns the line box height in pixels for a font size.
func (m *Measurer) linePx(sizePx float64) float64 {
	return sizePx * m.config.LineHeight
}

// wrapHeight returns the height of text greedily wrapped at width. Empty
// text still occupies one line box.
func (m *Measurer) wrapHeight(text string, face font.Face, width, linePx float64) float64 {
	return float64(m.wrapLines(text, face, width)) * linePx
}

// wrapLines counts the lines produced by greedy word wrapping. Words are
// never split: a word wider than the width overflows its own line, the way
// an unbreakable word overflows a rendering surface.
func (m *Measurer) wrapLines(text string, face font.Face, width float64) int {
	words := strings.Fields(norm.NFC.String(text))
	if len(words) == 0 {
		return 1
	}

	spaceW := advance(face, " ")
	lines := 1
	lineW := 0.0
	for _, word := range words {
		wordW := advance(face, word)
		switch {
		case lineW == 0:
			lineW = wordW
		case lineW+spaceW+wordW <= width:
			lineW += spaceW + wordW
		default:
			lines++
			lineW = wordW
		}
	}
	return lines
}

// advance returns the advance width of s in pixels.
func advance(face font.Face, s string) float64 {
	return float64(font.MeasureString(face, s)) / 64
}
