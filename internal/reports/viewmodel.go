package reports

import (
	"html/template"
	"net/url"

	"github.com/odyssey-erp/backoffice/internal/backend"
	"github.com/odyssey-erp/backoffice/internal/export"
)

// ExportLink is one export button on a report page.
type ExportLink struct {
	Label string
	Href  string
}

// ReportPage is the view model of pages/reports.html.
type ReportPage struct {
	Kind          string
	Title         string
	Path          string
	Table         export.Table
	Rows          int
	Source        int
	Start         string
	End           string
	CustomerID    string
	Customer      *backend.Customer
	Customers     []backend.Customer
	NeedsCustomer bool
	Exports       []ExportLink
	EmptyText     string
}

// RecordsPage is the view model of the customers, products and purchases pages.
type RecordsPage struct {
	Kind      string
	Title     string
	EditID    string
	Customers []backend.Customer
	Products  []backend.Product
	Purchases []backend.Purchase
}

// DashboardPage is the view model of pages/dashboard.html.
type DashboardPage struct {
	Dashboard    Dashboard
	MonthlyChart template.HTML
	TrendChart   template.HTML
	StockChart   template.HTML
}

var formatLabels = map[export.Format]string{
	export.FormatPrint:    "Print",
	export.FormatPDF:      "Export PDF",
	export.FormatCSV:      "Export Excel",
	export.FormatXLSX:     "Export XLSX",
	export.FormatEmail:    "Email",
	export.FormatPrintPDF: "Print to PDF",
}

func titleFor(kind string) string {
	switch kind {
	case KindSales:
		return SalesTitle
	case KindLedger:
		return LedgerTitle
	case KindProducts:
		return ProductsTitle
	}
	return ""
}

func emptyTextFor(kind string) string {
	switch kind {
	case KindLedger:
		return "No transactions found for this customer in the selected date range."
	case KindProducts:
		return "No products found in the selected date range."
	}
	return "No sales data available for the selected date range."
}

func exportLinks(path string, f Filter, formats []export.Format) []ExportLink {
	links := make([]ExportLink, 0, len(formats))
	for _, format := range formats {
		label, ok := formatLabels[format]
		if !ok {
			label = string(format)
		}
		q := f.values()
		q.Set("format", string(format))
		links = append(links, ExportLink{Label: label, Href: path + "?" + q.Encode()})
	}
	return links
}

func (f Filter) values() url.Values {
	q := url.Values{}
	if f.Start != "" {
		q.Set("start", f.Start)
	}
	if f.End != "" {
		q.Set("end", f.End)
	}
	if f.Customer != "" {
		q.Set("customer", f.Customer)
	}
	return q
}
