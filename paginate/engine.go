package paginate

import (
	"errors"
	"fmt"
	"math"
	"slices"

	"github.com/tsawler/folio/model"
)

// ErrInvalidCapacity reports a page capacity that is zero, negative, or not
// finite. Pagination rejects such configurations outright rather than
// risking an unbounded break loop.
var ErrInvalidCapacity = errors.New("page capacity must be a positive finite number")

// GeometryError reports a contract violation by the geometry source: a block
// whose measurements cannot describe real rendered content. The engine
// surfaces these rather than computing a break list that would mislead a
// user about true pagination.
type GeometryError struct {
	// Index is the position of the offending block in the input sequence.
	Index int

	// Field names the violated measurement: "height", "margin-top",
	// "margin-bottom", "offset", or "index".
	Field string

	// Value is the offending value.
	Value float64

	// Reason describes the violation.
	Reason string
}

func (e *GeometryError) Error() string {
	return fmt.Sprintf("block %d: %s %v %s", e.Index, e.Field, e.Value, e.Reason)
}

// ComputeBreaks partitions blocks into pages of the given capacity and
// returns the ordered break list and total page count.
//
// Blocks must be in document order with monotonically non-decreasing offsets
// and each Index equal to its position; pageCapacity is the usable content
// height of one page (page height minus vertical margins) and must be
// strictly positive. There is no precondition on block count: zero blocks
// paginate to zero breaks and one page.
//
// A block is never split across pages. A block taller than the capacity
// occupies a page alone; the empty-page guard places it on the current page
// whenever that page has no content yet, so no zero-content page is emitted
// before it and every block is consumed exactly once.
func ComputeBreaks(blocks []model.BlockGeometry, pageCapacity float64) (model.PaginationResult, error) {
	if math.IsNaN(pageCapacity) || math.IsInf(pageCapacity, 0) || pageCapacity <= 0 {
		return model.PaginationResult{}, ErrInvalidCapacity
	}
	if err := validateGeometry(blocks); err != nil {
		return model.PaginationResult{}, err
	}

	var breaks []model.PageBreak
	currentHeight := 0.0
	pageNumber := 1

	for _, b := range blocks {
		blockTotal := b.Total()

		if currentHeight > 0 && currentHeight+blockTotal > pageCapacity {
			// The block does not fit: it starts the next page.
			breaks = append(breaks, model.PageBreak{
				PageNumber: pageNumber,
				Top:        b.Offset,
				BlockIndex: b.Index,
			})
			pageNumber++
			currentHeight = blockTotal
			continue
		}

		// The block joins the current page: it fits (an exact fit stays),
		// or it is the first block on an empty page regardless of size.
		currentHeight += blockTotal
	}

	return model.PaginationResult{Breaks: breaks, TotalPages: pageNumber}, nil
}

// validateGeometry rejects geometry that violates the source contract.
func validateGeometry(blocks []model.BlockGeometry) error {
	prevOffset := 0.0
	for i, b := range blocks {
		if err := checkLength(i, "height", b.Height); err != nil {
			return err
		}
		if err := checkLength(i, "margin-top", b.MarginTop); err != nil {
			return err
		}
		if err := checkLength(i, "margin-bottom", b.MarginBottom); err != nil {
			return err
		}
		if err := checkLength(i, "offset", b.Offset); err != nil {
			return err
		}
		if b.Offset < prevOffset {
			return &GeometryError{Index: i, Field: "offset", Value: b.Offset,
				Reason: fmt.Sprintf("decreases below preceding offset %v", prevOffset)}
		}
		if b.Index != i {
			return &GeometryError{Index: i, Field: "index", Value: float64(b.Index),
				Reason: fmt.Sprintf("does not match document position %d", i)}
		}
		prevOffset = b.Offset
	}
	return nil
}

// checkLength rejects negative and non-finite measurements.
func checkLength(index int, field string, v float64) error {
	switch {
	case math.IsNaN(v):
		return &GeometryError{Index: index, Field: field, Value: v, Reason: "is NaN"}
	case math.IsInf(v, 0):
		return &GeometryError{Index: index, Field: field, Value: v, Reason: "is not finite"}
	case v < 0:
		return &GeometryError{Index: index, Field: field, Value: v, Reason: "is negative"}
	}
	return nil
}

// Engine computes breaks with a last-result cache: a pass over geometry that
// is value-equal to the previous successful pass returns the cached result
// without recomputing. The cache never changes observable results.
//
// An Engine is not safe for concurrent use. The recomputation scheduler
// drives it from a single goroutine; independent callers should use
// ComputeBreaks directly or create their own Engine.
type Engine struct {
	blocks   []model.BlockGeometry
	capacity float64
	result   model.PaginationResult
	cached   bool
}

// NewEngine returns an Engine with an empty cache.
func NewEngine() *Engine {
	return &Engine{}
}

// Paginate computes breaks for the given geometry, reusing the cached result
// when blocks and capacity match the previous successful call.
func (e *Engine) Paginate(blocks []model.BlockGeometry, pageCapacity float64) (model.PaginationResult, error) {
	if e.cached && pageCapacity == e.capacity && slices.Equal(blocks, e.blocks) {
		return e.result, nil
	}

	res, err := ComputeBreaks(blocks, pageCapacity)
	if err != nil {
		// A rejected pass leaves the cache of the last good pass intact.
		return model.PaginationResult{}, err
	}

	e.blocks = slices.Clone(blocks)
	e.capacity = pageCapacity
	e.result = res
	e.cached = true

	return res, nil
}

// Invalidate drops the cached result, forcing the next Paginate call to
// recompute.
func (e *Engine) Invalidate() {
	e.blocks = nil
	e.cached = false
}
