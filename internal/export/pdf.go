package export

import (
	"bytes"
	"context"
	"fmt"

	"github.com/go-pdf/fpdf"
)

// DefaultTableY is where the table starts when no PrependFn moves it.
const DefaultTableY = 40.0

const (
	pdfFont        = "Arial"
	pdfMargin      = 14.0
	pdfTitleY      = 20.0
	pdfPeriodY     = 30.0
	pdfTableFont   = 10.0
	pdfLineHeight  = 5.0
	pdfCellPadding = 1.8
	pdfSummaryGap  = 10.0
	pdfSummaryEdge = 20.0
)

// PDFSink renders the report as an A4 portrait PDF.
type PDFSink struct{}

func (PDFSink) Format() Format { return FormatPDF }

func (p PDFSink) Render(ctx context.Context, target Target, t Table) error {
	body, err := p.Document(t)
	if err != nil {
		return err
	}
	return target.TriggerDownload(ctx, Download{
		Filename:    FileName(t.Title, t.Period, "pdf"),
		ContentType: "application/pdf",
		Body:        body,
	})
}

// Document builds the PDF bytes. A panic inside PrependFn is returned as an error.
func (p PDFSink) Document(t Table) (out []byte, err error) {
	defer func() {
		if r := recover(); r != nil {
			out, err = nil, fmt.Errorf("render pdf: %v", r)
		}
	}()

	doc := fpdf.New("P", "mm", "A4", "")
	doc.SetMargins(pdfMargin, pdfMargin, pdfMargin)
	doc.SetAutoPageBreak(false, pdfMargin)
	doc.AddPage()
	tr := doc.UnicodeTranslatorFromDescriptor("")
	pageWidth, _ := doc.GetPageSize()

	doc.SetTextColor(0, 0, 0)
	doc.SetFont(pdfFont, "B", 18)
	centerText(doc, tr(t.Title), pageWidth, pdfTitleY)
	if !t.Period.Empty() {
		doc.SetFont(pdfFont, "", 12)
		centerText(doc, tr("Period: "+t.Period.Label()), pageWidth, pdfPeriodY)
	}

	startY := DefaultTableY
	if t.Options.PrependFn != nil {
		if y := t.Options.PrependFn(doc); y > 0 {
			startY = y
		}
	}

	finalY := drawTable(doc, tr, t, startY)

	if len(t.Summary) > 0 {
		doc.SetFont(pdfFont, "", 12)
		doc.SetTextColor(0, 0, 0)
		lines, newPage := summaryLines(doc, tr, t.Summary, finalY)
		if newPage {
			doc.AddPage()
		}
		for _, l := range lines {
			doc.Text(l.X, l.Y, l.Text)
		}
	}

	if err := doc.Error(); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		return nil, fmt.Errorf("write pdf: %w", err)
	}
	return buf.Bytes(), nil
}

type placedLine struct {
	Text string
	X, Y float64
}

// summaryLines right-aligns the summary below a table ending at finalY, one
// line per item. When the block would cross the bottom margin it is placed at
// the top of a new page and newPage is true.
func summaryLines(doc *fpdf.Fpdf, tr func(string) string, items []SummaryItem, finalY float64) ([]placedLine, bool) {
	pageWidth, pageHeight := doc.GetPageSize()
	y := finalY + pdfSummaryGap
	newPage := false
	if y+float64(len(items))*pdfSummaryGap > pageHeight-pdfMargin {
		y = pdfMargin + pdfSummaryGap
		newPage = true
	}
	out := make([]placedLine, 0, len(items))
	for i, item := range items {
		line := tr(fmt.Sprintf("%s: %s", item.Label, item.Value))
		out = append(out, placedLine{
			Text: line,
			X:    pageWidth - pdfSummaryEdge - doc.GetStringWidth(line),
			Y:    y + float64(i)*pdfSummaryGap,
		})
	}
	return out, newPage
}

func centerText(doc *fpdf.Fpdf, text string, pageWidth, y float64) {
	doc.Text((pageWidth-doc.GetStringWidth(text))/2, y, text)
}

// drawTable lays out a grid table from y, repeating the header after page breaks,
// and returns the Y below the last row.
func drawTable(doc *fpdf.Fpdf, tr func(string) string, t Table, y float64) float64 {
	left, top, right, bottom := doc.GetMargins()
	pageWidth, pageHeight := doc.GetPageSize()
	widths := columnWidths(doc, tr, t, pageWidth-left-right)
	doc.SetDrawColor(221, 221, 221)
	doc.SetLineWidth(0.1)

	layout := func(cells []string) ([][]string, float64) {
		lines := make([][]string, len(widths))
		maxLines := 1
		for i := range widths {
			text := ""
			if i < len(cells) {
				text = tr(cells[i])
			}
			split := doc.SplitText(text, widths[i]-2*pdfCellPadding)
			if len(split) == 0 {
				split = []string{""}
			}
			lines[i] = split
			if len(split) > maxLines {
				maxLines = len(split)
			}
		}
		return lines, float64(maxLines)*pdfLineHeight + 2*pdfCellPadding
	}

	draw := func(lines [][]string, height float64, fill bool) {
		style := "D"
		if fill {
			style = "FD"
		}
		x := left
		for i, w := range widths {
			doc.Rect(x, y, w, height, style)
			for j, line := range lines[i] {
				doc.Text(x+pdfCellPadding, y+pdfCellPadding+float64(j)*pdfLineHeight+pdfLineHeight*0.75, line)
			}
			x += w
		}
		y += height
	}

	header := func() {
		doc.SetFont(pdfFont, "B", pdfTableFont)
		doc.SetFillColor(242, 242, 242)
		doc.SetTextColor(0, 0, 0)
		lines, height := layout(t.Headers)
		draw(lines, height, true)
		doc.SetFont(pdfFont, "", pdfTableFont)
	}

	if len(widths) == 0 {
		return y
	}
	header()
	for _, row := range t.Rows {
		lines, height := layout(row)
		if y+height > pageHeight-bottom {
			doc.AddPage()
			y = top
			header()
			lines, height = layout(row)
		}
		draw(lines, height, false)
	}
	return y
}

// columnWidths sizes columns by their widest text and scales them to fill usable.
func columnWidths(doc *fpdf.Fpdf, tr func(string) string, t Table, usable float64) []float64 {
	n := len(t.Headers)
	widths := make([]float64, n)
	if n == 0 {
		return widths
	}
	doc.SetFont(pdfFont, "B", pdfTableFont)
	for i, h := range t.Headers {
		widths[i] = doc.GetStringWidth(tr(h))
	}
	doc.SetFont(pdfFont, "", pdfTableFont)
	for _, row := range t.Rows {
		for i := 0; i < n && i < len(row); i++ {
			if w := doc.GetStringWidth(tr(row[i])); w > widths[i] {
				widths[i] = w
			}
		}
	}
	total := 0.0
	for i := range widths {
		widths[i] += 2 * pdfCellPadding
		total += widths[i]
	}
	for i := range widths {
		widths[i] = widths[i] * usable / total
	}
	return widths
}
