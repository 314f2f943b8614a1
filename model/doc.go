// Package model provides the shared data types for pagination: measured
// block geometry, page breaks, pagination results, and page specifications.
//
// This package defines the vocabulary every other package speaks. Geometry
// sources produce it, the pagination engine consumes and emits it, and
// consumers (renderers, editors, print pipelines) read it back.
//
// # Geometry
//
// A [BlockGeometry] describes one top-level content block as measured by an
// external rendering surface or a headless estimator:
//
//	geom := model.BlockGeometry{Height: 100, Offset: 0, Index: 0}
//	total := geom.Total() // height plus both vertical margins
//
// All lengths are device-independent pixels (96 per inch). Geometries are
// produced fresh for every pagination pass and never mutated.
//
// # Breaks and Results
//
// A [PaginationResult] holds the ordered [PageBreak] list and the total page
// count. Page assignment for any block is derivable by scanning breaks:
//
//	res.PageForBlock(7)        // 1-based page holding block 7
//	res.BlockRange(2, nBlocks) // inclusive block span of page 2
//
// # Page Specifications
//
// A [PageSpec] fixes the page geometry. The package ships the common sizes
// at 96 DPI with one-inch margins:
//
//   - [Letter] - 816x1056, capacity 864
//   - [Legal] - 816x1344
//   - [Tabloid] - 1056x1632
//   - [A4] - 794x1123
//
// # Content Blocks
//
// A [Block] carries the content behind a geometry entry (text, heading
// level, list items) for measurement and proof rendering. The pagination
// engine itself never inspects content; placement is driven by geometry
// alone.
package model
