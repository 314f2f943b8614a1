// Package paginate implements the pagination engine: a pure function that
// partitions an ordered sequence of measured content blocks into fixed-
// capacity pages and emits the page-break positions.
//
// # Algorithm
//
// [ComputeBreaks] makes a single forward pass, greedily accumulating block
// heights (content plus vertical margins) into the current page. When a
// block would overflow a page that already has content, a break is emitted
// and the block starts the next page:
//
//	res, err := paginate.ComputeBreaks(blocks, model.Letter.Capacity())
//	for _, br := range res.Breaks {
//	    // page br.PageNumber ends here; br.BlockIndex starts the next page
//	}
//
// Placement is driven by geometry alone: no semantic knowledge of block
// types influences the result, which keeps the engine content-type-agnostic
// at the cost of no widow or orphan control.
//
// # Edge Cases
//
// Blocks are never split. A block taller than the page capacity occupies a
// page by itself: the empty-page guard admits any block to a page with no
// content yet, so an oversize block can neither trigger a break against
// itself nor leave a zero-content page behind. A block that fits exactly
// (accumulated height equal to capacity) stays on the current page. Zero
// blocks paginate to a single empty page.
//
// Invalid inputs are rejected, never repaired: a non-positive or NaN
// capacity returns [ErrInvalidCapacity], and geometry violating the source
// contract (negative or non-finite measurements, decreasing offsets, indices
// out of step with document order) returns a [*GeometryError] identifying
// the offending block.
//
// # Performance
//
// One pass, O(N) time in the block count, O(1) auxiliary space beyond the
// break list. Deterministic and idempotent: identical inputs produce
// value-identical results. [Engine] adds a last-result cache so repeated
// passes over unchanged geometry skip recomputation entirely.
package paginate
