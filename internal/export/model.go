package export

import (
	"html/template"

	"github.com/go-pdf/fpdf"
)

// Format names an output sink.
type Format string

const (
	FormatPrint    Format = "print"
	FormatCSV      Format = "csv"
	FormatPDF      Format = "pdf"
	FormatEmail    Format = "email"
	FormatXLSX     Format = "xlsx"
	FormatPrintPDF Format = "print-pdf"
)

// Column describes one report column. Render wins over Accessor when set.
type Column[T any] struct {
	Header   string
	Accessor string
	Render   func(row T) any
}

// SummaryItem is a labelled total printed after the table.
type SummaryItem struct {
	Label string
	Value string
}

// Period carries the display bounds of a report. Empty strings mean unbounded.
type Period struct {
	Start string
	End   string
}

// Empty reports whether neither bound is set.
func (p Period) Empty() bool {
	return p.Start == "" && p.End == ""
}

// Label renders "<start> to <end>" with "All time" and "Present" fallbacks.
func (p Period) Label() string {
	start, end := p.Start, p.End
	if start == "" {
		start = "All time"
	}
	if end == "" {
		end = "Present"
	}
	return start + " to " + end
}

// Options holds per-sink customisations. Each sink reads only the fields it understands.
type Options struct {
	// Header is inserted after the title block of the print document.
	Header template.HTML
	// Styles is appended to the base stylesheet of the print document.
	Styles template.CSS
	// Prepend lines are written after the period block by the CSV, XLSX and email sinks.
	Prepend []string
	// PrependFn draws on the PDF before the table and returns the Y at which the table starts.
	// A non-positive return keeps DefaultTableY.
	PrependFn func(doc *fpdf.Fpdf) float64
}

// Report is the format-agnostic description of a tabular report.
type Report[T any] struct {
	Title   string
	Columns []Column[T]
	Rows    []T
	Summary []SummaryItem
	Period  Period
	Options Options
}

// Table is a report whose cells have been resolved to display text.
type Table struct {
	Title   string
	Headers []string
	Rows    [][]string
	Summary []SummaryItem
	Period  Period
	Options Options
}

// Table resolves every cell through ResolveCell so all sinks print identical text.
func (r Report[T]) Table() Table {
	headers := make([]string, len(r.Columns))
	for i, col := range r.Columns {
		headers[i] = col.Header
	}
	rows := make([][]string, 0, len(r.Rows))
	for _, row := range r.Rows {
		cells := make([]string, len(r.Columns))
		for i, col := range r.Columns {
			cells[i] = ResolveCell(row, col)
		}
		rows = append(rows, cells)
	}
	return Table{
		Title:   r.Title,
		Headers: headers,
		Rows:    rows,
		Summary: r.Summary,
		Period:  r.Period,
		Options: r.Options,
	}
}
