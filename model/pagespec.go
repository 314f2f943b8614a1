package model

// PageSpec describes fixed page geometry in device-independent pixels
// (96 per inch).
type PageSpec struct {
	// Width is the full page width.
	Width float64

	// Height is the full page height.
	Height float64

	// Margins, clockwise from the top.
	MarginTop    float64
	MarginRight  float64
	MarginBottom float64
	MarginLeft   float64
}

// Standard page sizes at 96 DPI with one-inch (96 px) margins.
var (
	// Letter is US Letter, 8.5in x 11in. Its Capacity is 864.
	Letter = PageSpec{Width: 816, Height: 1056, MarginTop: 96, MarginRight: 96, MarginBottom: 96, MarginLeft: 96}

	// Legal is US Legal, 8.5in x 14in.
	Legal = PageSpec{Width: 816, Height: 1344, MarginTop: 96, MarginRight: 96, MarginBottom: 96, MarginLeft: 96}

	// Tabloid is 11in x 17in.
	Tabloid = PageSpec{Width: 1056, Height: 1632, MarginTop: 96, MarginRight: 96, MarginBottom: 96, MarginLeft: 96}

	// A4 is ISO A4, 210mm x 297mm.
	A4 = PageSpec{Width: 794, Height: 1123, MarginTop: 96, MarginRight: 96, MarginBottom: 96, MarginLeft: 96}
)

// Capacity returns the usable content height of one page: page height minus
// top and bottom margins. Pagination requires a strictly positive capacity.
func (p PageSpec) Capacity() float64 {
	return p.Height - p.MarginTop - p.MarginBottom
}

// ContentWidth returns the usable content width of one page: page width
// minus left and right margins.
func (p PageSpec) ContentWidth() float64 {
	return p.Width - p.MarginLeft - p.MarginRight
}

// WithMargin returns a copy of the spec with all four margins set to m.
func (p PageSpec) WithMargin(m float64) PageSpec {
	p.MarginTop, p.MarginRight, p.MarginBottom, p.MarginLeft = m, m, m, m
	return p
}
