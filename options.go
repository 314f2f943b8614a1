package folio

import (
	"github.com/tsawler/folio/measure"
	"github.com/tsawler/folio/model"
)

// paginateOptions holds configuration for a pagination run.
type paginateOptions struct {
	// Page geometry; capacity and content width derive from it unless
	// overridden below.
	page model.PageSpec

	// Explicit capacity override in pixels (0 means use page.Capacity()).
	capacity float64

	// Measurement configuration; a zero ContentWidth inherits the page's
	// content width.
	measure measure.Config
}

// defaultOptions returns the default pagination options.
func defaultOptions() paginateOptions {
	return paginateOptions{
		page:     model.Letter,
		capacity: 0,
	}
}

// clone creates a copy of paginateOptions.
func (o paginateOptions) clone() paginateOptions {
	// All fields are values; assignment copies everything.
	return o
}

// effectiveCapacity is the page capacity the engine will be asked to fill.
func (o paginateOptions) effectiveCapacity() float64 {
	if o.capacity != 0 {
		return o.capacity
	}
	return o.page.Capacity()
}

// effectiveMeasure is the measurement configuration with page-derived
// defaults applied.
func (o paginateOptions) effectiveMeasure() measure.Config {
	cfg := o.measure
	if cfg.ContentWidth <= 0 {
		cfg.ContentWidth = o.page.ContentWidth()
	}
	return cfg
}
