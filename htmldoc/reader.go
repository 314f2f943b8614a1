// Package htmldoc parses HTML documents into content blocks for
// pagination.
package htmldoc

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"golang.org/x/net/html"

	"github.com/tsawler/folio/measure"
	"github.com/tsawler/folio/model"
)

// Reader provides access to the block structure of an HTML document. It
// implements the geometry source contract used by the pagination
// scheduler.
type Reader struct {
	title    string
	metadata map[string]string
	blocks   []model.Block
	measurer *measure.Measurer
}

// Open opens an HTML file for reading.
func Open(filename string) (*Reader, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("opening file: %w", err)
	}
	defer f.Close()

	return OpenReader(f)
}

// OpenReader parses HTML from an io.Reader.
func OpenReader(r io.Reader) (*Reader, error) {
	return OpenReaderWithConfig(r, measure.DefaultConfig())
}

// OpenReaderWithConfig parses HTML from an io.Reader and measures its
// blocks with the given configuration.
func OpenReaderWithConfig(r io.Reader, config measure.Config) (*Reader, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parsing HTML: %w", err)
	}

	m, err := measure.NewMeasurerWithConfig(config)
	if err != nil {
		return nil, fmt.Errorf("building measurer: %w", err)
	}

	reader := &Reader{
		metadata: make(map[string]string),
		measurer: m,
	}

	// Extract title and metadata from head
	reader.extractHead(doc)

	// Extract content blocks from body
	reader.extractBody(doc)

	return reader, nil
}

// Close releases resources associated with the Reader.
func (r *Reader) Close() error {
	// Nothing to close for HTML (no file handles kept)
	return nil
}

// Title returns the document title from the head element.
func (r *Reader) Title() string {
	return r.title
}

// Metadata returns the meta tag name/content pairs from the head element.
func (r *Reader) Metadata() map[string]string {
	return r.metadata
}

// Blocks returns the content blocks in document order.
func (r *Reader) Blocks() []model.Block {
	return r.blocks
}

// BlockCount returns the number of content blocks.
func (r *Reader) BlockCount() int {
	return len(r.blocks)
}

// BlockGeometries measures every block and returns geometry ready for
// pagination. It satisfies the scheduler's geometry source contract.
func (r *Reader) BlockGeometries() ([]model.BlockGeometry, error) {
	return r.measurer.Layout(r.blocks), nil
}

// extractHead extracts title and meta tags from the head element.
func (r *Reader) extractHead(n *html.Node) {
	if n.Type == html.ElementNode && n.Data == "head" {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.ElementNode {
				switch c.Data {
				case "title":
					r.title = getTextContent(c)
				case "meta":
					name, content := "", ""
					for _, attr := range c.Attr {
						switch attr.Key {
						case "name", "property":
							name = attr.Val
						case "content":
							content = attr.Val
						}
					}
					if name != "" && content != "" {
						r.metadata[name] = content
					}
				}
			}
		}
		return
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		r.extractHead(c)
	}
}

// extractBody extracts content blocks from the body element.
func (r *Reader) extractBody(n *html.Node) {
	body := findElement(n, "body")
	if body == nil {
		// No body tag, extract from root
		body = n
	}

	ctx := &parseContext{}
	r.traverseNode(body, ctx)
	r.flushList(ctx)
}

// parseContext tracks the current parsing state.
type parseContext struct {
	inList      bool
	listOrdered bool
	listLevel   int
	listItems   []listItem
}

// listItem is a list entry with its nesting depth.
type listItem struct {
	text  string
	level int
}

// flushList emits any accumulated list items as a single list block.
// Nested items keep their depth as a two-space indent.
func (r *Reader) flushList(ctx *parseContext) {
	if !ctx.inList && len(ctx.listItems) == 0 {
		return
	}
	if len(ctx.listItems) > 0 {
		items := make([]string, len(ctx.listItems))
		for i, item := range ctx.listItems {
			items[i] = strings.Repeat("  ", item.level) + item.text
		}
		r.blocks = append(r.blocks, model.Block{
			Kind:    model.KindList,
			Items:   items,
			Ordered: ctx.listOrdered,
		})
	}
	ctx.inList = false
	ctx.listItems = nil
}

// traverseNode recursively processes DOM nodes, emitting content blocks.
func (r *Reader) traverseNode(n *html.Node, ctx *parseContext) {
	if n.Type == html.ElementNode {
		// Skip non-content elements
		if shouldSkipElement(n.Data) {
			return
		}

		switch n.Data {
		case "h1", "h2", "h3", "h4", "h5", "h6":
			r.flushList(ctx)

			level := int(n.Data[1] - '0')
			text := collapseWhitespace(getTextContent(n))
			if text != "" {
				r.blocks = append(r.blocks, model.Block{
					Kind:  model.KindHeading,
					Text:  text,
					Level: level,
				})
			}
			return

		case "p", "div":
			if n.Data == "p" {
				r.flushList(ctx)
			}

			text := collapseWhitespace(getTextContent(n))
			if text != "" && !isBlockContainer(n) {
				r.blocks = append(r.blocks, model.Block{
					Kind: model.KindParagraph,
					Text: text,
				})
				return
			}
			// A block container (or an empty p wrapping an image) is
			// traversed for nested blocks.
			for c := n.FirstChild; c != nil; c = c.NextSibling {
				r.traverseNode(c, ctx)
			}
			return

		case "ul", "ol":
			// Flush a previous top-level list of the other kind
			if ctx.inList && ctx.listLevel == 0 {
				r.flushList(ctx)
			}

			prevInList := ctx.inList
			prevOrdered := ctx.listOrdered

			ctx.inList = true
			ctx.listOrdered = n.Data == "ol"

			for c := n.FirstChild; c != nil; c = c.NextSibling {
				r.traverseNode(c, ctx)
			}

			if !prevInList {
				r.flushList(ctx)
			}
			ctx.listOrdered = prevOrdered
			return

		case "li":
			if ctx.inList {
				text := collapseWhitespace(getDirectTextContent(n))
				if text != "" {
					ctx.listItems = append(ctx.listItems, listItem{
						text:  text,
						level: ctx.listLevel,
					})
				}
				// Descend into nested lists only
				ctx.listLevel++
				for c := n.FirstChild; c != nil; c = c.NextSibling {
					if c.Type == html.ElementNode && (c.Data == "ul" || c.Data == "ol") {
						r.traverseNode(c, ctx)
					}
				}
				ctx.listLevel--
			}
			return

		case "table":
			r.flushList(ctx)

			cells := parseTable(n)
			if len(cells) > 0 {
				r.blocks = append(r.blocks, model.Block{
					Kind:  model.KindTable,
					Cells: cells,
				})
			}
			return

		case "pre":
			// Preserve line structure for code blocks
			text := strings.Trim(getRawTextContent(n), "\n")
			if text != "" {
				r.blocks = append(r.blocks, model.Block{
					Kind: model.KindCodeBlock,
					Text: text,
				})
			}
			return

		case "blockquote":
			text := collapseWhitespace(getTextContent(n))
			if text != "" {
				r.blocks = append(r.blocks, model.Block{
					Kind: model.KindBlockquote,
					Text: text,
				})
			}
			return

		case "img":
			r.blocks = append(r.blocks, parseImage(n))
			return

		case "hr":
			r.flushList(ctx)
			r.blocks = append(r.blocks, model.Block{Kind: model.KindRule})
			return

		case "br":
			// Line breaks handled in text extraction
			return

		case "article", "section", "main", "header", "footer", "figure":
			// Semantic containers, traverse children
			for c := n.FirstChild; c != nil; c = c.NextSibling {
				r.traverseNode(c, ctx)
			}
			return
		}
	}

	// Default: traverse children
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		r.traverseNode(c, ctx)
	}
}

// parseTable extracts the cell text of an HTML table, one row per tr.
func parseTable(tableNode *html.Node) [][]string {
	var cells [][]string

	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type != html.ElementNode {
				continue
			}
			switch c.Data {
			case "thead", "tbody", "tfoot":
				walk(c)
			case "tr":
				row := parseTableRow(c)
				if len(row) > 0 {
					cells = append(cells, row)
				}
			}
		}
	}
	walk(tableNode)

	return cells
}

// parseTableRow extracts the cell text of a single table row.
func parseTableRow(tr *html.Node) []string {
	var row []string
	for c := tr.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && (c.Data == "td" || c.Data == "th") {
			row = append(row, collapseWhitespace(getTextContent(c)))
		}
	}
	return row
}

// parseImage builds an image block from an img element, taking the
// intrinsic size from the width and height attributes when present.
func parseImage(n *html.Node) model.Block {
	b := model.Block{Kind: model.KindImage}
	for _, attr := range n.Attr {
		switch attr.Key {
		case "width":
			if v, err := strconv.ParseFloat(attr.Val, 64); err == nil {
				b.ImageWidth = v
			}
		case "height":
			if v, err := strconv.ParseFloat(attr.Val, 64); err == nil {
				b.ImageHeight = v
			}
		case "alt":
			b.Text = attr.Val
		}
	}
	return b
}

// shouldSkipElement returns true if the element carries no paginated
// content.
func shouldSkipElement(tagName string) bool {
	switch tagName {
	case "script", "style", "noscript", "template", "svg", "math", "iframe", "object", "embed", "nav", "aside":
		return true
	}
	return false
}

// isBlockContainer returns true if the element has block-level children.
func isBlockContainer(n *html.Node) bool {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			switch c.Data {
			case "div", "p", "ul", "ol", "table", "h1", "h2", "h3", "h4", "h5", "h6", "blockquote", "pre", "article", "section", "figure":
				return true
			}
		}
	}
	return false
}

// findElement finds the first element with the given tag name.
func findElement(n *html.Node, tagName string) *html.Node {
	if n.Type == html.ElementNode && n.Data == tagName {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if result := findElement(c, tagName); result != nil {
			return result
		}
	}
	return nil
}

// getTextContent extracts all text content from a node and its
// descendants, with br rendered as a newline.
func getTextContent(n *html.Node) string {
	var result strings.Builder
	getTextContentRecursive(n, &result)
	return strings.TrimSpace(result.String())
}

func getTextContentRecursive(n *html.Node, result *strings.Builder) {
	if n.Type == html.TextNode {
		result.WriteString(n.Data)
	}
	if n.Type == html.ElementNode {
		if shouldSkipElement(n.Data) {
			return
		}
		if n.Data == "br" {
			result.WriteString("\n")
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		getTextContentRecursive(c, result)
	}
	// Separate block elements that would otherwise run together
	if n.Type == html.ElementNode {
		switch n.Data {
		case "p", "div", "li", "h1", "h2", "h3", "h4", "h5", "h6", "tr":
			result.WriteString(" ")
		}
	}
}

// getRawTextContent extracts text without trimming or separators,
// preserving the line structure of preformatted content.
func getRawTextContent(n *html.Node) string {
	var result strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			result.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return result.String()
}

// getDirectTextContent gets text content from a node, excluding nested
// block elements.
func getDirectTextContent(n *html.Node) string {
	var result strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.TextNode {
			result.WriteString(c.Data)
		} else if c.Type == html.ElementNode {
			switch c.Data {
			case "ul", "ol", "div", "p", "table", "blockquote":
				// Block elements become their own entries
			default:
				result.WriteString(getTextContent(c))
			}
		}
	}
	return strings.TrimSpace(result.String())
}

// collapseWhitespace normalizes runs of whitespace to single spaces.
func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
