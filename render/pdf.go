// Package render produces PDF proof sheets from pagination results.
//
// A proof sheet has one PDF page per result page, draws every block on the
// page its index is assigned to, marks each break with a rule and caption,
// and numbers the pages. It exists to inspect break positions the way a
// print pipeline would consume them; it is not a typesetter.
package render

import (
	"fmt"
	"io"
	"strings"

	"codeberg.org/go-pdf/fpdf"

	"github.com/tsawler/folio/model"
)

// Device-independent pixels are 96 per inch; PDF points are 72.
const ptPerPx = 72.0 / 96.0

// Point sizes for body, code, and h1 through h6 text, matching the pixel
// sizes the measurement oracle assumes.
const (
	bodySize = 12
	codeSize = 9.75
)

var headingSizes = [6]float64{24, 18, 14, 12, 10, 8}

// WritePDF renders a proof sheet to the named file.
//
// blocks and geoms are parallel slices describing the same document; the
// result must have been computed from geoms at the page's capacity. An
// empty blocks slice renders a wireframe sheet of geometry outlines only.
func WritePDF(path string, blocks []model.Block, geoms []model.BlockGeometry, res model.PaginationResult, page model.PageSpec) error {
	pdf, err := buildDocument(blocks, geoms, res, page)
	if err != nil {
		return err
	}
	return pdf.OutputFileAndClose(path)
}

// RenderPDF renders a proof sheet to w. See WritePDF.
func RenderPDF(w io.Writer, blocks []model.Block, geoms []model.BlockGeometry, res model.PaginationResult, page model.PageSpec) error {
	pdf, err := buildDocument(blocks, geoms, res, page)
	if err != nil {
		return err
	}
	return pdf.Output(w)
}

func buildDocument(blocks []model.Block, geoms []model.BlockGeometry, res model.PaginationResult, page model.PageSpec) (*fpdf.Fpdf, error) {
	if page.Capacity() <= 0 {
		return nil, fmt.Errorf("page spec %vx%v leaves no content height", page.Width, page.Height)
	}
	if len(blocks) != 0 && len(blocks) != len(geoms) {
		return nil, fmt.Errorf("have %d blocks for %d geometries", len(blocks), len(geoms))
	}
	if err := res.Validate(len(geoms)); err != nil {
		return nil, fmt.Errorf("result does not describe this geometry: %w", err)
	}

	pdf := fpdf.NewCustom(&fpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "pt",
		Size: fpdf.SizeType{
			Wd: page.Width * ptPerPx,
			Ht: page.Height * ptPerPx,
		},
	})
	pdf.SetCreator("folio", true)
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetCellMargin(0)

	r := &renderer{
		pdf:  pdf,
		page: page,
		tr:   pdf.UnicodeTranslatorFromDescriptor(""),
		x:    page.MarginLeft * ptPerPx,
		w:    page.ContentWidth() * ptPerPx,
	}

	pdf.AliasNbPages("")
	pdf.SetFooterFunc(func() {
		pdf.SetFont("Helvetica", "", 8)
		pdf.SetTextColor(130, 130, 130)
		pdf.SetXY(0, (page.Height-page.MarginBottom/2)*ptPerPx)
		pdf.CellFormat(page.Width*ptPerPx, 10, fmt.Sprintf("%d of {nb}", pdf.PageNo()), "", 0, "C", false, 0, "")
	})

	for p := 1; p <= res.TotalPages; p++ {
		pdf.AddPage()

		// Flow offset at which this page begins
		pageTop := 0.0
		if p > 1 {
			pageTop = res.Breaks[p-2].Top
		}

		first, last := res.BlockRange(p, len(geoms))
		for i := first; i <= last; i++ {
			g := geoms[i]
			y := (page.MarginTop + g.Offset + g.MarginTop - pageTop) * ptPerPx
			if len(blocks) == 0 {
				r.drawOutline(g, y)
				continue
			}
			r.drawBlock(blocks[i], g, y)
		}

		if p < res.TotalPages {
			r.drawBreakMarker(res.Breaks[p-1])
		}
	}

	return pdf, pdf.Error()
}

type renderer struct {
	pdf  *fpdf.Fpdf
	page model.PageSpec
	tr   func(string) string
	x    float64 // content origin, pt
	w    float64 // content width, pt
}

// drawBlock draws one block inside its measured box. Offsets are taken at
// face value, so geometry that lies about its heights draws past the box.
func (r *renderer) drawBlock(b model.Block, g model.BlockGeometry, y float64) {
	pdf := r.pdf
	h := g.Height * ptPerPx
	pdf.SetTextColor(0, 0, 0)

	switch b.Kind {
	case model.KindHeading:
		level := b.Level
		if level < 1 {
			level = 1
		}
		if level > 6 {
			level = 6
		}
		size := headingSizes[level-1]
		pdf.SetFont("Helvetica", "B", size)
		pdf.SetXY(r.x, y)
		pdf.MultiCell(r.w, size*1.5, r.tr(b.Text), "", "L", false)

	case model.KindList:
		indent := 40 * ptPerPx
		var sb strings.Builder
		for i, item := range b.Items {
			if i > 0 {
				sb.WriteByte('\n')
			}
			if b.Ordered {
				fmt.Fprintf(&sb, "%d. %s", i+1, item)
			} else {
				sb.WriteString("- ")
				sb.WriteString(item)
			}
		}
		pdf.SetFont("Helvetica", "", bodySize)
		pdf.SetXY(r.x+indent, y)
		pdf.MultiCell(r.w-indent, bodySize*1.5, r.tr(sb.String()), "", "L", false)

	case model.KindCodeBlock:
		pdf.SetFillColor(245, 245, 245)
		pdf.Rect(r.x, y, r.w, h, "F")
		pdf.SetFont("Courier", "", codeSize)
		pdf.SetXY(r.x, y)
		pdf.MultiCell(r.w, codeSize*1.5, r.tr(b.Text), "", "L", false)

	case model.KindBlockquote:
		indent := 40 * ptPerPx
		pdf.SetDrawColor(180, 180, 180)
		pdf.SetLineWidth(2)
		pdf.Line(r.x+2, y, r.x+2, y+h)
		pdf.SetFont("Helvetica", "I", bodySize)
		pdf.SetTextColor(90, 90, 90)
		pdf.SetXY(r.x+indent, y)
		pdf.MultiCell(r.w-2*indent, bodySize*1.5, r.tr(b.Text), "", "L", false)

	case model.KindTable:
		rowH := (16*1.5 + 8) * ptPerPx
		pdf.SetDrawColor(60, 60, 60)
		pdf.SetLineWidth(0.5)
		for ri, row := range b.Cells {
			if len(row) == 0 {
				continue
			}
			style := ""
			if ri == 0 {
				style = "B"
			}
			pdf.SetFont("Helvetica", style, bodySize)
			colW := r.w / float64(len(row))
			pdf.SetXY(r.x, y+float64(ri)*rowH)
			for _, cell := range row {
				pdf.CellFormat(colW, rowH, r.tr(cell), "1", 0, "L", false, 0, "")
			}
		}

	case model.KindImage:
		wpx := b.ImageWidth
		if wpx <= 0 || b.ImageHeight <= 0 {
			wpx = 300
		}
		if wpx > r.page.ContentWidth() {
			wpx = r.page.ContentWidth()
		}
		wpt := wpx * ptPerPx
		pdf.SetDrawColor(160, 160, 160)
		pdf.SetLineWidth(0.5)
		pdf.Rect(r.x, y, wpt, h, "D")
		pdf.Line(r.x, y, r.x+wpt, y+h)
		pdf.Line(r.x, y+h, r.x+wpt, y)
		if b.Text != "" {
			pdf.SetFont("Helvetica", "I", 8)
			pdf.SetTextColor(120, 120, 120)
			pdf.SetXY(r.x, y+h/2-4)
			pdf.CellFormat(wpt, 8, r.tr(b.Text), "", 0, "C", false, 0, "")
		}

	case model.KindRule:
		pdf.SetDrawColor(120, 120, 120)
		pdf.SetLineWidth(1)
		pdf.Line(r.x, y+h/2, r.x+r.w, y+h/2)

	default:
		pdf.SetFont("Helvetica", "", bodySize)
		pdf.SetXY(r.x, y)
		pdf.MultiCell(r.w, bodySize*1.5, r.tr(b.Text), "", "L", false)
	}
}

// drawOutline draws the wireframe box for a block when no content is
// available, labeled with its index.
func (r *renderer) drawOutline(g model.BlockGeometry, y float64) {
	pdf := r.pdf
	h := g.Height * ptPerPx

	pdf.SetDrawColor(200, 200, 200)
	pdf.SetLineWidth(0.5)
	pdf.Rect(r.x, y, r.w, h, "D")
	pdf.SetFont("Helvetica", "", 7)
	pdf.SetTextColor(160, 160, 160)
	pdf.SetXY(r.x+2, y+1)
	pdf.CellFormat(60, 8, fmt.Sprintf("block %d", g.Index), "", 0, "L", false, 0, "")
}

// drawBreakMarker draws a rule and caption at the bottom content edge of a
// page that ends at a break.
func (r *renderer) drawBreakMarker(br model.PageBreak) {
	pdf := r.pdf
	y := (r.page.Height - r.page.MarginBottom) * ptPerPx

	pdf.SetDrawColor(200, 80, 80)
	pdf.SetLineWidth(0.5)
	pdf.SetDashPattern([]float64{2, 2}, 0)
	pdf.Line(r.x, y, r.x+r.w, y)
	pdf.SetDashPattern([]float64{}, 0)

	pdf.SetFont("Helvetica", "I", 7)
	pdf.SetTextColor(200, 80, 80)
	pdf.SetXY(r.x, y+2)
	caption := fmt.Sprintf("page %d ends; block %d continues at offset %.0fpx", br.PageNumber, br.BlockIndex, br.Top)
	pdf.CellFormat(r.w, 8, caption, "", 0, "R", false, 0, "")
}
