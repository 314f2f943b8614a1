package model

// BlockKind identifies the kind of content a block holds.
type BlockKind int

const (
	// KindParagraph is a text paragraph.
	KindParagraph BlockKind = iota

	// KindHeading is a heading (levels 1-6).
	KindHeading

	// KindList is an ordered or unordered list.
	KindList

	// KindCodeBlock is a preformatted code block.
	KindCodeBlock

	// KindBlockquote is a quoted passage.
	KindBlockquote

	// KindTable is a table of cells.
	KindTable

	// KindImage is an embedded image.
	KindImage

	// KindRule is a horizontal rule.
	KindRule
)

// String returns a human-readable name for the block kind.
func (k BlockKind) String() string {
	switch k {
	case KindParagraph:
		return "paragraph"
	case KindHeading:
		return "heading"
	case KindList:
		return "list"
	case KindCodeBlock:
		return "code"
	case KindBlockquote:
		return "blockquote"
	case KindTable:
		return "table"
	case KindImage:
		return "image"
	case KindRule:
		return "rule"
	default:
		return "unknown"
	}
}

// Block is a top-level content unit of a document, treated as atomic for
// pagination. Geometry sources carry Blocks so that measurement and proof
// rendering can see what occupies each page; the pagination engine never
// reads them.
type Block struct {
	// Kind identifies the content type.
	Kind BlockKind

	// Text is the flattened text content. Used by paragraphs, headings,
	// code blocks, and blockquotes.
	Text string

	// Level is the heading level (1-6) when Kind is KindHeading.
	Level int

	// Items holds the list items, in order, when Kind is KindList.
	Items []string

	// Ordered reports whether a KindList block is numbered.
	Ordered bool

	// Cells holds table content as rows of columns when Kind is KindTable.
	Cells [][]string

	// ImageWidth and ImageHeight are the intrinsic image dimensions in
	// pixels when Kind is KindImage. Zero means unknown.
	ImageWidth  float64
	ImageHeight float64
}
