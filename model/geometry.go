package model

// BlockGeometry describes the measured geometry of one top-level content
// block within the unpaginated document flow. Entries are produced in
// document order by a geometry source, consumed in a single pagination pass,
// and never retained or mutated by the engine.
type BlockGeometry struct {
	// Height is the measured rendered content height in device-independent
	// pixels. Non-negative and finite.
	Height float64

	// MarginTop is the vertical margin above the block's content.
	// Non-negative and finite.
	MarginTop float64

	// MarginBottom is the vertical margin below the block's content.
	// Non-negative and finite.
	MarginBottom float64

	// Offset is the block's vertical position within the unpaginated
	// content flow. Offsets are monotonically non-decreasing across the
	// sequence, an invariant the geometry source must guarantee.
	Offset float64

	// Index is the block's position within the document's top-level child
	// sequence. 0-based, unique, and equal to the block's slice position.
	Index int
}

// Total returns the full vertical extent the block contributes to a page:
// content height plus both vertical margins.
func (g BlockGeometry) Total() float64 {
	return g.Height + g.MarginTop + g.MarginBottom
}
