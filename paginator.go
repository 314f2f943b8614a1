package folio

import (
	"fmt"
	"math"
	"os"

	"github.com/tsawler/folio/epubdoc"
	"github.com/tsawler/folio/htmldoc"
	"github.com/tsawler/folio/mddoc"
	"github.com/tsawler/folio/measure"
	"github.com/tsawler/folio/model"
	"github.com/tsawler/folio/paginate"
	"github.com/tsawler/folio/schedule"
)

// sourceKind identifies where a Paginator gets its geometry.
type sourceKind int

const (
	sourceHTML sourceKind = iota
	sourceMarkdown
	sourceEPUB
	sourceBlocks
	sourceExternal
)

// Paginator provides a fluent interface for paginating a document. Each
// configuration method returns a new Paginator instance, making it safe
// for concurrent use and allowing method chaining. Sources are opened
// lazily: every terminal operation reads the source fresh.
type Paginator struct {
	// Source
	kind     sourceKind
	filename string
	geoms    []model.BlockGeometry
	source   schedule.GeometrySource

	// Configuration
	options paginateOptions

	// Accumulated error (fail-fast)
	err error
}

// clone creates a copy of the Paginator with its own options. Each chain
// method returns a new instance.
func (p *Paginator) clone() *Paginator {
	return &Paginator{
		kind:     p.kind,
		filename: p.filename,
		geoms:    p.geoms,
		source:   p.source,
		options:  p.options.clone(),
		err:      p.err,
	}
}

// ============================================================================
// Configuration Methods (return new Paginator instance)
// ============================================================================

// Page sets the page geometry. Capacity and measurement width derive from
// it unless overridden.
//
// Example:
//
//	res, err := folio.FromHTML("doc.html").Page(model.A4).Paginate()
func (p *Paginator) Page(spec model.PageSpec) *Paginator {
	newPag := p.clone()
	if spec.Capacity() <= 0 && newPag.err == nil {
		newPag.err = fmt.Errorf("page spec %vx%v leaves no content height", spec.Width, spec.Height)
	}
	newPag.options.page = spec
	return newPag
}

// Capacity overrides the usable page height in pixels, independent of the
// page spec.
//
// Example:
//
//	res, err := folio.FromBlocks(geoms).Capacity(864).Paginate()
func (p *Paginator) Capacity(px float64) *Paginator {
	newPag := p.clone()
	if (px <= 0 || math.IsNaN(px) || math.IsInf(px, 0)) && newPag.err == nil {
		newPag.err = paginate.ErrInvalidCapacity
	}
	newPag.options.capacity = px
	return newPag
}

// Measure sets the measurement configuration used when the source carries
// content blocks rather than pre-measured geometry.
//
// Example:
//
//	res, err := folio.FromMarkdown("doc.md").
//	    Measure(measure.Config{BaseFontSize: 14}).
//	    Paginate()
func (p *Paginator) Measure(cfg measure.Config) *Paginator {
	newPag := p.clone()
	newPag.options.measure = cfg
	return newPag
}

// ============================================================================
// Terminal Operations (read the source and compute)
// ============================================================================

// Paginate computes page breaks for the document.
//
// Example:
//
//	res, err := folio.FromHTML("doc.html").Paginate()
//	fmt.Println(res.TotalPages)
func (p *Paginator) Paginate() (model.PaginationResult, error) {
	if p.err != nil {
		return model.PaginationResult{}, p.err
	}
	geoms, err := p.resolveGeometry()
	if err != nil {
		return model.PaginationResult{}, err
	}
	return paginate.ComputeBreaks(geoms, p.options.effectiveCapacity())
}

// PageCount computes the total number of pages.
//
// Example:
//
//	count, err := folio.FromMarkdown("doc.md").PageCount()
func (p *Paginator) PageCount() (int, error) {
	res, err := p.Paginate()
	if err != nil {
		return 0, err
	}
	return res.TotalPages, nil
}

// Breaks computes and returns just the page-break list. A nil slice means
// the document fits on a single page.
func (p *Paginator) Breaks() ([]model.PageBreak, error) {
	res, err := p.Paginate()
	if err != nil {
		return nil, err
	}
	return res.Breaks, nil
}

// Geometry returns the measured block geometry without paginating, for
// callers that feed the engine or scheduler themselves.
func (p *Paginator) Geometry() ([]model.BlockGeometry, error) {
	if p.err != nil {
		return nil, p.err
	}
	return p.resolveGeometry()
}

// Content returns the document's content blocks alongside their measured
// geometry, for consumers that draw pages (such as the PDF proof
// renderer). Geometry-only sources return nil blocks.
func (p *Paginator) Content() ([]model.Block, []model.BlockGeometry, error) {
	if p.err != nil {
		return nil, nil, p.err
	}

	switch p.kind {
	case sourceHTML:
		r, err := p.openHTML()
		if err != nil {
			return nil, nil, err
		}
		geoms, err := r.BlockGeometries()
		if err != nil {
			return nil, nil, err
		}
		return r.Blocks(), geoms, nil

	case sourceMarkdown:
		r, err := p.openMarkdown()
		if err != nil {
			return nil, nil, err
		}
		geoms, err := r.BlockGeometries()
		if err != nil {
			return nil, nil, err
		}
		return r.Blocks(), geoms, nil

	case sourceEPUB:
		r, err := p.openEPUB()
		if err != nil {
			return nil, nil, err
		}
		defer r.Close()
		geoms, err := r.BlockGeometries()
		if err != nil {
			return nil, nil, err
		}
		return r.Blocks(), geoms, nil

	default:
		geoms, err := p.resolveGeometry()
		if err != nil {
			return nil, nil, err
		}
		return nil, geoms, nil
	}
}

// ============================================================================
// Internal helpers
// ============================================================================

// resolveGeometry reads the configured source and returns its measured
// geometry.
func (p *Paginator) resolveGeometry() ([]model.BlockGeometry, error) {
	switch p.kind {
	case sourceHTML:
		r, err := p.openHTML()
		if err != nil {
			return nil, err
		}
		return r.BlockGeometries()

	case sourceMarkdown:
		r, err := p.openMarkdown()
		if err != nil {
			return nil, err
		}
		return r.BlockGeometries()

	case sourceEPUB:
		r, err := p.openEPUB()
		if err != nil {
			return nil, err
		}
		defer r.Close()
		return r.BlockGeometries()

	case sourceBlocks:
		return p.geoms, nil

	case sourceExternal:
		if p.source == nil {
			return nil, fmt.Errorf("no geometry source configured")
		}
		return p.source.BlockGeometries()

	default:
		return nil, fmt.Errorf("unsupported source kind %d", p.kind)
	}
}

func (p *Paginator) openHTML() (*htmldoc.Reader, error) {
	if p.filename == "" {
		return nil, fmt.Errorf("no filename specified")
	}
	f, err := os.Open(p.filename)
	if err != nil {
		return nil, fmt.Errorf("opening file: %w", err)
	}
	defer f.Close()

	return htmldoc.OpenReaderWithConfig(f, p.measureConfig())
}

func (p *Paginator) openMarkdown() (*mddoc.Reader, error) {
	if p.filename == "" {
		return nil, fmt.Errorf("no filename specified")
	}
	source, err := os.ReadFile(p.filename)
	if err != nil {
		return nil, fmt.Errorf("reading file: %w", err)
	}

	return mddoc.ParseWithConfig(source, p.measureConfig())
}

func (p *Paginator) openEPUB() (*epubdoc.Reader, error) {
	if p.filename == "" {
		return nil, fmt.Errorf("no filename specified")
	}
	return epubdoc.OpenWithConfig(p.filename, p.measureConfig())
}

func (p *Paginator) measureConfig() measure.Config {
	return p.options.effectiveMeasure()
}
