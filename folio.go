// Package folio provides a fluent API for paginating flowing block
// documents into fixed-size pages.
//
// Basic usage:
//
//	res, err := folio.FromHTML("document.html").Paginate()
//	if err != nil {
//	    // handle error
//	}
//	fmt.Println(res.TotalPages)
//
// With options:
//
//	res, err := folio.FromMarkdown("notes.md").
//	    Page(model.A4).
//	    Paginate()
//
// Pre-measured geometry can be paginated directly:
//
//	res, err := folio.FromBlocks(geoms).Capacity(864).Paginate()
//
// For live recomputation on document mutation, the lower-level schedule
// package is also available.
package folio

import (
	"fmt"

	"github.com/tsawler/folio/format"
	"github.com/tsawler/folio/model"
	"github.com/tsawler/folio/schedule"
)

// FromHTML returns a Paginator over the blocks of an HTML file. The file
// is opened lazily at the terminal operation.
//
// Example:
//
//	count, err := folio.FromHTML("document.html").PageCount()
func FromHTML(filename string) *Paginator {
	return &Paginator{
		kind:     sourceHTML,
		filename: filename,
		options:  defaultOptions(),
	}
}

// FromMarkdown returns a Paginator over the blocks of a Markdown file. The
// file is opened lazily at the terminal operation.
//
// Example:
//
//	res, err := folio.FromMarkdown("notes.md").Page(model.A4).Paginate()
func FromMarkdown(filename string) *Paginator {
	return &Paginator{
		kind:     sourceMarkdown,
		filename: filename,
		options:  defaultOptions(),
	}
}

// FromEPUB returns a Paginator over the blocks of an EPUB book. Chapters
// flow continuously, so breaks are computed over the whole book. The file
// is opened lazily at the terminal operation.
//
// Example:
//
//	count, err := folio.FromEPUB("book.epub").PageCount()
func FromEPUB(filename string) *Paginator {
	return &Paginator{
		kind:     sourceEPUB,
		filename: filename,
		options:  defaultOptions(),
	}
}

// FromFile returns a Paginator for a document of any supported format,
// detected from the file's extension and content.
//
// Example:
//
//	res, err := folio.FromFile(path).Paginate()
func FromFile(path string) *Paginator {
	f, err := format.DetectFile(path)
	if err != nil {
		return &Paginator{err: fmt.Errorf("detecting format: %w", err), options: defaultOptions()}
	}

	switch f {
	case format.HTML:
		return FromHTML(path)
	case format.Markdown:
		return FromMarkdown(path)
	case format.EPUB:
		return FromEPUB(path)
	default:
		return &Paginator{
			err:     fmt.Errorf("unsupported document format for %q", path),
			options: defaultOptions(),
		}
	}
}

// FromBlocks returns a Paginator over already-measured geometry, for
// callers that run their own measurement pipeline.
//
// Example:
//
//	res, err := folio.FromBlocks(geoms).Capacity(864).Paginate()
func FromBlocks(geoms []model.BlockGeometry) *Paginator {
	return &Paginator{
		kind:    sourceBlocks,
		geoms:   geoms,
		options: defaultOptions(),
	}
}

// FromSource returns a Paginator over any geometry source, such as a
// custom oracle bound to a live rendering surface. The source is queried
// fresh at each terminal operation.
//
// Example:
//
//	res, err := folio.FromSource(reader).Paginate()
func FromSource(src schedule.GeometrySource) *Paginator {
	return &Paginator{
		kind:    sourceExternal,
		source:  src,
		options: defaultOptions(),
	}
}

// Must is a helper that wraps a call to a function returning (T, error)
// and panics if the error is non-nil. It is intended for use in scripts
// or tests where error handling would be cumbersome.
//
// Example:
//
//	count := folio.Must(folio.FromHTML("document.html").PageCount())
func Must[T any](val T, err error) T {
	if err != nil {
		panic(err)
	}
	return val
}
