// Package epubdoc parses EPUB books into content blocks for pagination.
//
// An EPUB is a ZIP archive whose OPF package document lists content in
// reading order (the spine). The reader extracts every linear spine item
// through the htmldoc block extractor and concatenates the results into one
// flat block sequence, so a whole book paginates exactly like a single HTML
// document. DRM-protected books are rejected at open.
package epubdoc

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/url"
	"path"
	"strings"

	"github.com/tsawler/folio/htmldoc"
	"github.com/tsawler/folio/measure"
	"github.com/tsawler/folio/model"
)

var (
	ErrInvalidArchive  = errors.New("epub: invalid or corrupted archive")
	ErrInvalidMimetype = errors.New("epub: invalid mimetype (not an EPUB)")
)

// Reader provides access to the blocks of an EPUB book.
type Reader struct {
	zr       *zip.ReadCloser // set when opened from a path
	pkg      *Package
	baseDir  string // directory containing the OPF, for resolving hrefs
	chapters []Chapter
	blocks   []model.Block
	measurer *measure.Measurer
}

// Open opens an EPUB file from a path with default measurement options.
func Open(filePath string) (*Reader, error) {
	return OpenWithConfig(filePath, measure.DefaultConfig())
}

// OpenWithConfig opens an EPUB file from a path with custom measurement
// options.
func OpenWithConfig(filePath string, config measure.Config) (*Reader, error) {
	zr, err := zip.OpenReader(filePath)
	if err != nil {
		if errors.Is(err, zip.ErrFormat) {
			return nil, fmt.Errorf("%w: %v", ErrInvalidArchive, err)
		}
		return nil, fmt.Errorf("opening file: %w", err)
	}

	r := &Reader{zr: zr}
	if err := r.init(&zr.Reader, config); err != nil {
		zr.Close()
		return nil, err
	}

	return r, nil
}

// OpenReader opens an EPUB from an io.ReaderAt with default measurement
// options.
func OpenReader(ra io.ReaderAt, size int64) (*Reader, error) {
	return OpenReaderWithConfig(ra, size, measure.DefaultConfig())
}

// OpenReaderWithConfig opens an EPUB from an io.ReaderAt with custom
// measurement options.
func OpenReaderWithConfig(ra io.ReaderAt, size int64, config measure.Config) (*Reader, error) {
	zr, err := zip.NewReader(ra, size)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidArchive, err)
	}

	r := &Reader{}
	if err := r.init(zr, config); err != nil {
		return nil, err
	}

	return r, nil
}

// init parses the archive structure and extracts every linear chapter.
func (r *Reader) init(zr *zip.Reader, config measure.Config) error {
	// An absent mimetype entry is tolerated; a wrong one is not.
	if f := findArchiveFile(zr, "mimetype"); f != nil {
		data, err := readArchiveFile(f)
		if err != nil {
			return err
		}
		if strings.TrimSpace(string(data)) != "application/epub+zip" {
			return ErrInvalidMimetype
		}
	}

	if err := checkForDRM(zr); err != nil {
		return err
	}

	opfPath, err := parseContainer(zr)
	if err != nil {
		return err
	}

	pkg, baseDir, err := parseOPF(zr, opfPath)
	if err != nil {
		return err
	}
	r.pkg = pkg
	r.baseDir = baseDir

	m, err := measure.NewMeasurerWithConfig(config)
	if err != nil {
		return fmt.Errorf("building measurer: %w", err)
	}
	r.measurer = m

	return r.loadChapters(zr, config)
}

// loadChapters extracts blocks from every linear spine item, in order.
// Non-linear items (covers, footnote files) are not part of the main
// reading flow and are skipped, as are spine entries whose files are
// missing from the archive.
func (r *Reader) loadChapters(zr *zip.Reader, config measure.Config) error {
	r.chapters = make([]Chapter, 0, len(r.pkg.Spine))

	for i, spineItem := range r.pkg.Spine {
		if !spineItem.Linear {
			continue
		}

		item, ok := r.pkg.Manifest[spineItem.IDRef]
		if !ok {
			continue
		}

		href := r.resolveHref(item.Href)
		f := findArchiveFile(zr, href)
		if f == nil {
			continue
		}
		content, err := readArchiveFile(f)
		if err != nil {
			continue
		}

		hr, err := htmldoc.OpenReaderWithConfig(bytes.NewReader(content), config)
		if err != nil {
			continue
		}

		chapter := Chapter{
			Index:  i,
			ID:     item.ID,
			Href:   href,
			Title:  chapterTitle(hr),
			Start:  len(r.blocks),
			Blocks: hr.Blocks(),
		}

		r.chapters = append(r.chapters, chapter)
		r.blocks = append(r.blocks, chapter.Blocks...)
	}

	if len(r.chapters) == 0 {
		return ErrEmptySpine
	}

	return nil
}

// chapterTitle prefers the document title, falling back to the first
// heading.
func chapterTitle(hr *htmldoc.Reader) string {
	if t := hr.Title(); t != "" {
		return t
	}
	for _, b := range hr.Blocks() {
		if b.Kind == model.KindHeading {
			return b.Text
		}
	}
	return ""
}

// resolveHref resolves a manifest href against the OPF base directory.
func (r *Reader) resolveHref(href string) string {
	if decoded, err := url.QueryUnescape(href); err == nil {
		href = decoded
	}
	if r.baseDir == "" {
		return href
	}
	return path.Join(r.baseDir, href)
}

// Close releases the underlying archive handle.
func (r *Reader) Close() error {
	if r.zr != nil {
		return r.zr.Close()
	}
	return nil
}

// Metadata returns the book's Dublin Core metadata.
func (r *Reader) Metadata() Metadata {
	return r.pkg.Metadata
}

// Chapters returns the extracted chapters in spine order.
func (r *Reader) Chapters() []Chapter {
	return r.chapters
}

// ChapterCount returns the number of extracted chapters.
func (r *Reader) ChapterCount() int {
	return len(r.chapters)
}

// ChapterForBlock returns the chapter containing the given flat block
// index, or -1 when the index is out of range.
func (r *Reader) ChapterForBlock(blockIndex int) int {
	if blockIndex < 0 || blockIndex >= len(r.blocks) {
		return -1
	}
	for i := len(r.chapters) - 1; i >= 0; i-- {
		if blockIndex >= r.chapters[i].Start {
			return i
		}
	}
	return -1
}

// Blocks returns the book's blocks, all chapters concatenated in reading
// order.
func (r *Reader) Blocks() []model.Block {
	return r.blocks
}

// BlockCount returns the number of blocks across all chapters.
func (r *Reader) BlockCount() int {
	return len(r.blocks)
}

// BlockGeometries measures the concatenated block sequence and returns its
// geometry, with offsets cumulative across chapter boundaries. It implements
// the geometry source contract used by the pagination scheduler.
func (r *Reader) BlockGeometries() ([]model.BlockGeometry, error) {
	return r.measurer.Layout(r.blocks), nil
}
