package model

import (
	"strings"
	"testing"
)

// ============================================================================
// BlockGeometry Tests
// ============================================================================

func TestBlockGeometryTotal(t *testing.T) {
	tests := []struct {
		name string
		geom BlockGeometry
		want float64
	}{
		{"content only", BlockGeometry{Height: 100}, 100},
		{"with margins", BlockGeometry{Height: 100, MarginTop: 16, MarginBottom: 16}, 132},
		{"margins only", BlockGeometry{MarginTop: 8, MarginBottom: 8}, 16},
		{"zero", BlockGeometry{}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.geom.Total(); got != tt.want {
				t.Errorf("Total() = %v, want %v", got, tt.want)
			}
		})
	}
}

// ============================================================================
// PageSpec Tests
// ============================================================================

func TestPageSpecCapacity(t *testing.T) {
	tests := []struct {
		name string
		spec PageSpec
		want float64
	}{
		{"letter", Letter, 864},
		{"legal", Legal, 1152},
		{"tabloid", Tabloid, 1440},
		{"a4", A4, 931},
		{"no margins", PageSpec{Width: 800, Height: 600}, 600},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.spec.Capacity(); got != tt.want {
				t.Errorf("Capacity() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPageSpecContentWidth(t *testing.T) {
	if got := Letter.ContentWidth(); got != 624 {
		t.Errorf("Letter.ContentWidth() = %v, want 624", got)
	}
	if got := Tabloid.ContentWidth(); got != 864 {
		t.Errorf("Tabloid.ContentWidth() = %v, want 864", got)
	}
}

func TestPageSpecWithMargin(t *testing.T) {
	spec := Letter.WithMargin(48)

	if spec.MarginTop != 48 || spec.MarginRight != 48 || spec.MarginBottom != 48 || spec.MarginLeft != 48 {
		t.Errorf("WithMargin(48) margins = %+v, want all 48", spec)
	}
	if spec.Capacity() != 960 {
		t.Errorf("Capacity() after WithMargin(48) = %v, want 960", spec.Capacity())
	}

	// The original spec is unchanged.
	if Letter.MarginTop != 96 {
		t.Errorf("Letter.MarginTop mutated to %v", Letter.MarginTop)
	}
}

// ============================================================================
// PaginationResult Tests
// ============================================================================

func twoBreakResult() PaginationResult {
	return PaginationResult{
		Breaks: []PageBreak{
			{PageNumber: 1, Top: 200, BlockIndex: 2},
			{PageNumber: 2, Top: 500, BlockIndex: 5},
		},
		TotalPages: 3,
	}
}

func TestPageForBlock(t *testing.T) {
	res := twoBreakResult()

	tests := []struct {
		name       string
		blockIndex int
		want       int
	}{
		{"first block", 0, 1},
		{"last block of page 1", 1, 1},
		{"first block of page 2", 2, 2},
		{"middle of page 2", 4, 2},
		{"first block of page 3", 5, 3},
		{"beyond last break", 9, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := res.PageForBlock(tt.blockIndex); got != tt.want {
				t.Errorf("PageForBlock(%d) = %d, want %d", tt.blockIndex, got, tt.want)
			}
		})
	}
}

func TestPageForBlockSinglePage(t *testing.T) {
	res := PaginationResult{TotalPages: 1}
	for i := 0; i < 5; i++ {
		if got := res.PageForBlock(i); got != 1 {
			t.Errorf("PageForBlock(%d) = %d, want 1", i, got)
		}
	}
}

func TestBlockRange(t *testing.T) {
	res := twoBreakResult()

	tests := []struct {
		name       string
		pageNumber int
		blockCount int
		wantFirst  int
		wantLast   int
	}{
		{"page 1", 1, 8, 0, 1},
		{"page 2", 2, 8, 2, 4},
		{"last page", 3, 8, 5, 7},
		{"page 0 invalid", 0, 8, 0, -1},
		{"page beyond total", 4, 8, 0, -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			first, last := res.BlockRange(tt.pageNumber, tt.blockCount)
			if first != tt.wantFirst || last != tt.wantLast {
				t.Errorf("BlockRange(%d, %d) = (%d, %d), want (%d, %d)",
					tt.pageNumber, tt.blockCount, first, last, tt.wantFirst, tt.wantLast)
			}
		})
	}
}

func TestBlockRangeEmptyDocument(t *testing.T) {
	res := PaginationResult{TotalPages: 1}

	first, last := res.BlockRange(1, 0)
	if first <= last {
		t.Errorf("BlockRange(1, 0) = (%d, %d), want an empty range", first, last)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name       string
		result     PaginationResult
		blockCount int
		wantErr    string
	}{
		{
			"valid two breaks",
			twoBreakResult(),
			8,
			"",
		},
		{
			"valid single page",
			PaginationResult{TotalPages: 1},
			3,
			"",
		},
		{
			"total pages mismatch",
			PaginationResult{Breaks: []PageBreak{{PageNumber: 1, Top: 10, BlockIndex: 1}}, TotalPages: 1},
			3,
			"total pages",
		},
		{
			"non-contiguous page numbers",
			PaginationResult{Breaks: []PageBreak{{PageNumber: 2, Top: 10, BlockIndex: 1}}, TotalPages: 2},
			3,
			"page number",
		},
		{
			"break at block zero",
			PaginationResult{Breaks: []PageBreak{{PageNumber: 1, Top: 0, BlockIndex: 0}}, TotalPages: 2},
			3,
			"does not advance",
		},
		{
			"non-increasing block index",
			PaginationResult{
				Breaks: []PageBreak{
					{PageNumber: 1, Top: 100, BlockIndex: 2},
					{PageNumber: 2, Top: 200, BlockIndex: 2},
				},
				TotalPages: 3,
			},
			5,
			"does not advance",
		},
		{
			"block index out of range",
			PaginationResult{Breaks: []PageBreak{{PageNumber: 1, Top: 10, BlockIndex: 7}}, TotalPages: 2},
			3,
			"out of range",
		},
		{
			"decreasing top",
			PaginationResult{
				Breaks: []PageBreak{
					{PageNumber: 1, Top: 300, BlockIndex: 2},
					{PageNumber: 2, Top: 100, BlockIndex: 4},
				},
				TotalPages: 3,
			},
			6,
			"decreases",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.result.Validate(tt.blockCount)
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() = %v, want nil", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("Validate() = nil, want error containing %q", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() = %q, want error containing %q", err.Error(), tt.wantErr)
			}
		})
	}
}

// ============================================================================
// BlockKind Tests
// ============================================================================

func TestBlockKindString(t *testing.T) {
	tests := []struct {
		kind BlockKind
		want string
	}{
		{KindParagraph, "paragraph"},
		{KindHeading, "heading"},
		{KindList, "list"},
		{KindCodeBlock, "code"},
		{KindBlockquote, "blockquote"},
		{KindTable, "table"},
		{KindImage, "image"},
		{KindRule, "rule"},
		{BlockKind(99), "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := tt.kind.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}
