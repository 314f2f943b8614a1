// Package measure estimates rendered block geometry without a live
// rendering surface.
//
// The pagination engine consumes externally measured heights; this package
// is one source of such measurements, a headless layout estimator built on
// real font metrics. Any rendering backend can replace it by producing
// [model.BlockGeometry] itself.
//
// # Measurement
//
// Text is NFC-normalized, split into words, and greedily wrapped at the
// configured content width using advance widths from the embedded Go fonts
// (golang.org/x/image/font/gofont). Heading sizes, vertical margins, list
// indents, and replaced-element fallbacks approximate a browser default
// stylesheet, so estimates track what an on-screen editor would produce:
//
//	m, err := measure.NewMeasurer()
//	geoms := m.Layout(blocks) // offsets and indices assigned in order
//
// All lengths are device-independent pixels (96 per inch). Margins do not
// collapse: every block contributes its full height plus both margins to
// the flow.
//
// # Fidelity
//
// Estimates are deliberately simple: greedy wrapping without shaping or
// bidirectional analysis, and tables at a fixed row height. They are meant
// to drive pagination previews and tests, not to replace a layout engine.
package measure
