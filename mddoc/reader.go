// Package mddoc parses Markdown documents into content blocks for
// pagination.
package mddoc

import (
	"fmt"
	"os"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	east "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"

	"github.com/tsawler/folio/measure"
	"github.com/tsawler/folio/model"
)

// Reader provides access to the block structure of a Markdown document. It
// implements the geometry source contract used by the pagination
// scheduler.
type Reader struct {
	title    string
	blocks   []model.Block
	measurer *measure.Measurer
}

// Open opens a Markdown file for reading.
func Open(filename string) (*Reader, error) {
	source, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("reading file: %w", err)
	}
	return Parse(source)
}

// Parse parses Markdown source. Tables use the pipe syntax of the table
// extension.
func Parse(source []byte) (*Reader, error) {
	return ParseWithConfig(source, measure.DefaultConfig())
}

// ParseWithConfig parses Markdown source and measures its blocks with the
// given configuration.
func ParseWithConfig(source []byte, config measure.Config) (*Reader, error) {
	m, err := measure.NewMeasurerWithConfig(config)
	if err != nil {
		return nil, fmt.Errorf("building measurer: %w", err)
	}

	md := goldmark.New(goldmark.WithExtensions(extension.Table))
	doc := md.Parser().Parse(text.NewReader(source))

	reader := &Reader{measurer: m}
	reader.walk(doc, source)

	return reader, nil
}

// Title returns the text of the first level-1 heading, or "".
func (r *Reader) Title() string {
	return r.title
}

// Blocks returns the content blocks in document order.
func (r *Reader) Blocks() []model.Block {
	return r.blocks
}

// BlockCount returns the number of content blocks.
func (r *Reader) BlockCount() int {
	return len(r.blocks)
}

// BlockGeometries measures every block and returns geometry ready for
// pagination. It satisfies the scheduler's geometry source contract.
func (r *Reader) BlockGeometries() ([]model.BlockGeometry, error) {
	return r.measurer.Layout(r.blocks), nil
}

// walk converts top-level AST nodes into content blocks.
func (r *Reader) walk(doc ast.Node, source []byte) {
	for child := doc.FirstChild(); child != nil; child = child.NextSibling() {
		switch n := child.(type) {
		case *ast.Heading:
			txt := inlineText(n, source)
			if txt == "" {
				continue
			}
			if n.Level == 1 && r.title == "" {
				r.title = txt
			}
			r.blocks = append(r.blocks, model.Block{
				Kind:  model.KindHeading,
				Text:  txt,
				Level: n.Level,
			})

		case *ast.Paragraph:
			if img := soleImage(n); img != nil {
				r.blocks = append(r.blocks, model.Block{
					Kind: model.KindImage,
					Text: inlineText(img, source),
				})
				continue
			}
			if txt := inlineText(n, source); txt != "" {
				r.blocks = append(r.blocks, model.Block{
					Kind: model.KindParagraph,
					Text: txt,
				})
			}

		case *ast.List:
			var items []string
			collectListItems(n, source, 0, &items)
			if len(items) > 0 {
				r.blocks = append(r.blocks, model.Block{
					Kind:    model.KindList,
					Items:   items,
					Ordered: n.IsOrdered(),
				})
			}

		case *ast.FencedCodeBlock:
			r.blocks = append(r.blocks, model.Block{
				Kind: model.KindCodeBlock,
				Text: codeText(n, source),
			})

		case *ast.CodeBlock:
			r.blocks = append(r.blocks, model.Block{
				Kind: model.KindCodeBlock,
				Text: codeText(n, source),
			})

		case *ast.Blockquote:
			var parts []string
			for c := n.FirstChild(); c != nil; c = c.NextSibling() {
				if txt := inlineText(c, source); txt != "" {
					parts = append(parts, txt)
				}
			}
			if len(parts) > 0 {
				r.blocks = append(r.blocks, model.Block{
					Kind: model.KindBlockquote,
					Text: strings.Join(parts, " "),
				})
			}

		case *ast.ThematicBreak:
			r.blocks = append(r.blocks, model.Block{Kind: model.KindRule})

		case *east.Table:
			var cells [][]string
			for row := n.FirstChild(); row != nil; row = row.NextSibling() {
				var cols []string
				for cell := row.FirstChild(); cell != nil; cell = cell.NextSibling() {
					cols = append(cols, inlineText(cell, source))
				}
				if len(cols) > 0 {
					cells = append(cells, cols)
				}
			}
			if len(cells) > 0 {
				r.blocks = append(r.blocks, model.Block{
					Kind:  model.KindTable,
					Cells: cells,
				})
			}
		}
	}
}

// collectListItems flattens a list, keeping each item's nesting depth as a
// two-space indent.
func collectListItems(l *ast.List, source []byte, level int, items *[]string) {
	for item := l.FirstChild(); item != nil; item = item.NextSibling() {
		for c := item.FirstChild(); c != nil; c = c.NextSibling() {
			if nested, ok := c.(*ast.List); ok {
				collectListItems(nested, source, level+1, items)
				continue
			}
			if txt := inlineText(c, source); txt != "" {
				*items = append(*items, strings.Repeat("  ", level)+txt)
			}
		}
	}
}

// soleImage returns the image node when the paragraph consists of exactly
// one image, making it a block-level figure rather than inline content.
func soleImage(p *ast.Paragraph) *ast.Image {
	if p.FirstChild() != p.LastChild() {
		return nil
	}
	img, _ := p.FirstChild().(*ast.Image)
	return img
}

// inlineText assembles the plain text of a node's inline content. Soft and
// hard line breaks become spaces.
func inlineText(n ast.Node, source []byte) string {
	var sb strings.Builder
	var walk func(ast.Node)
	walk = func(n ast.Node) {
		for c := n.FirstChild(); c != nil; c = c.NextSibling() {
			switch t := c.(type) {
			case *ast.Text:
				sb.Write(t.Segment.Value(source))
				if t.SoftLineBreak() || t.HardLineBreak() {
					sb.WriteByte(' ')
				}
			case *ast.String:
				sb.Write(t.Value)
			case *ast.AutoLink:
				sb.Write(t.URL(source))
			default:
				walk(c)
			}
		}
	}
	walk(n)
	return strings.TrimSpace(sb.String())
}

// codeText assembles the raw lines of a code block, without the trailing
// newline.
func codeText(n ast.Node, source []byte) string {
	var sb strings.Builder
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		sb.Write(seg.Value(source))
	}
	return strings.TrimRight(sb.String(), "\n")
}
