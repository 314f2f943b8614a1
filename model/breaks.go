package model

import "fmt"

// PageBreak marks a boundary where a new page starts.
type PageBreak struct {
	// PageNumber is the 1-based number of the page ending at this break
	// (the page that precedes the break).
	PageNumber int

	// Top is the unpaginated-flow offset at which the next page's content
	// begins. It equals the Offset of the block at BlockIndex.
	Top float64

	// BlockIndex is the index of the first block assigned to the next page.
	// It is never 0: the first block always starts page 1 and is never
	// itself a break target.
	BlockIndex int
}

// PaginationResult is the immutable output of one pagination pass.
//
// Breaks is ordered by ascending PageNumber and ascending Top, and
// PageNumber values form a contiguous sequence starting at 1. Every block
// index is assigned to exactly one page; the assignment is derivable by
// scanning Breaks in order. Breaks is nil for a single-page document.
type PaginationResult struct {
	// Breaks holds one entry per page boundary, in order.
	Breaks []PageBreak

	// TotalPages is always len(Breaks) + 1. An empty document still counts
	// as one page.
	TotalPages int
}

// PageForBlock returns the 1-based page number the given block index is
// assigned to, derived by scanning breaks in order.
func (r PaginationResult) PageForBlock(blockIndex int) int {
	page := 1
	for _, br := range r.Breaks {
		if blockIndex < br.BlockIndex {
			break
		}
		page = br.PageNumber + 1
	}
	return page
}

// BlockRange returns the inclusive range of block indices assigned to the
// given 1-based page, given the document's total block count. It returns
// first > last when the page holds no blocks (the empty single-page
// document) and (0, -1) when pageNumber is out of range.
func (r PaginationResult) BlockRange(pageNumber, blockCount int) (first, last int) {
	if pageNumber < 1 || pageNumber > r.TotalPages {
		return 0, -1
	}

	first = 0
	if pageNumber > 1 {
		first = r.Breaks[pageNumber-2].BlockIndex
	}

	last = blockCount - 1
	if pageNumber <= len(r.Breaks) {
		last = r.Breaks[pageNumber-1].BlockIndex - 1
	}

	return first, last
}

// Validate checks the structural invariants of the result against the block
// count it was computed from: contiguous 1-based page numbers, strictly
// increasing block indices within range, non-decreasing tops, and the
// TotalPages relation. It returns nil when the result is well formed.
func (r PaginationResult) Validate(blockCount int) error {
	if r.TotalPages != len(r.Breaks)+1 {
		return fmt.Errorf("total pages %d does not match %d breaks", r.TotalPages, len(r.Breaks))
	}

	prevIndex := 0
	prevTop := 0.0
	for i, br := range r.Breaks {
		if br.PageNumber != i+1 {
			return fmt.Errorf("break %d: page number %d, want %d", i, br.PageNumber, i+1)
		}
		if br.BlockIndex <= prevIndex {
			return fmt.Errorf("break %d: block index %d does not advance past %d", i, br.BlockIndex, prevIndex)
		}
		if br.BlockIndex >= blockCount {
			return fmt.Errorf("break %d: block index %d out of range for %d blocks", i, br.BlockIndex, blockCount)
		}
		if br.Top < prevTop {
			return fmt.Errorf("break %d: top %g decreases below %g", i, br.Top, prevTop)
		}
		prevIndex = br.BlockIndex
		prevTop = br.Top
	}

	return nil
}
