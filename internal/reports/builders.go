// Package reports builds the sales, customer ledger and product inventory
// reports and serves them as pages, exports and email.
package reports

import (
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/go-pdf/fpdf"

	"github.com/odyssey-erp/backoffice/internal/backend"
	"github.com/odyssey-erp/backoffice/internal/export"
)

// Report names used in routes, logs and metrics.
const (
	KindSales    = "sales"
	KindLedger   = "ledger"
	KindProducts = "products"
)

// Titles.
const (
	SalesTitle    = "Sales Report"
	LedgerTitle   = "Customer Ledger"
	ProductsTitle = "Product Inventory Report"
)

const displayDateLayout = "1/2/2006"

const ledgerStyles = `.customer-details { margin: 20px 0; padding: 10px; border: 1px solid #ddd; background-color: #f9f9f9; }`

var ledgerHeader = template.Must(template.New("customer-details").Parse(
	`<div class="customer-details"><h2>{{.Name}}</h2><p>Email: {{.Email}}</p><p>Phone: {{.Mobile}}</p></div>`))

func money(v float64) string {
	return fmt.Sprintf("$%.2f", v)
}

func displayDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(displayDateLayout)
}

func purchaseDate(p backend.Purchase) (time.Time, bool) {
	if p.Date.IsZero() {
		return time.Time{}, false
	}
	return p.Date.Time, true
}

func productDate(p backend.Product) (time.Time, bool) {
	if p.CreatedAt == nil || p.CreatedAt.IsZero() {
		return time.Time{}, false
	}
	return p.CreatedAt.Time, true
}

func purchasesTotal(rows []backend.Purchase) float64 {
	var sum float64
	for _, p := range rows {
		sum += p.Total()
	}
	return sum
}

func purchaseColumns(withCustomer bool) []export.Column[backend.Purchase] {
	cols := []export.Column[backend.Purchase]{
		{Header: "Date", Accessor: "date", Render: func(p backend.Purchase) any { return export.Text(displayDate(p.Date.Time)) }},
	}
	if withCustomer {
		cols = append(cols, export.Column[backend.Purchase]{Header: "Customer", Accessor: "customer.name"})
	}
	return append(cols,
		export.Column[backend.Purchase]{Header: "Product", Accessor: "product.name"},
		export.Column[backend.Purchase]{Header: "Price", Accessor: "price", Render: func(p backend.Purchase) any { return export.Text(money(p.Price)) }},
		export.Column[backend.Purchase]{Header: "Quantity", Accessor: "quantity"},
		export.Column[backend.Purchase]{Header: "Total", Accessor: "date", Render: func(p backend.Purchase) any { return export.Text(money(p.Total())) }},
		export.Column[backend.Purchase]{Header: "Payment Method", Accessor: "payment"},
	)
}

// SalesReport lists every purchase inside r with a grand total.
func SalesReport(purchases []backend.Purchase, r export.DateRange) export.Report[backend.Purchase] {
	rows := export.FilterByDate(purchases, purchaseDate, r)
	return export.Report[backend.Purchase]{
		Title:   SalesTitle,
		Columns: purchaseColumns(true),
		Rows:    rows,
		Summary: []export.SummaryItem{{Label: "Total", Value: money(purchasesTotal(rows))}},
		Period:  r.Period(),
	}
}

// LedgerReport lists one customer's purchases inside r. The customer details
// are attached in the form the target format understands.
func LedgerReport(customer backend.Customer, purchases []backend.Purchase, r export.DateRange, format export.Format) (export.Report[backend.Purchase], error) {
	own := make([]backend.Purchase, 0, len(purchases))
	for _, p := range purchases {
		if p.Customer.ID == customer.ID {
			own = append(own, p)
		}
	}
	rows := export.FilterByDate(own, purchaseDate, r)
	opts, err := ledgerOptions(customer, format)
	if err != nil {
		return export.Report[backend.Purchase]{}, err
	}
	title := LedgerTitle
	if format == export.FormatEmail {
		title = "Customer Ledger for " + customer.Name
	}
	return export.Report[backend.Purchase]{
		Title:   title,
		Columns: purchaseColumns(false),
		Rows:    rows,
		Summary: []export.SummaryItem{{Label: "Total", Value: money(purchasesTotal(rows))}},
		Period:  r.Period(),
		Options: opts,
	}, nil
}

func ledgerOptions(c backend.Customer, format export.Format) (export.Options, error) {
	switch format {
	case export.FormatPrint, export.FormatPrintPDF:
		var buf strings.Builder
		if err := ledgerHeader.Execute(&buf, c); err != nil {
			return export.Options{}, fmt.Errorf("ledger header: %w", err)
		}
		return export.Options{Header: template.HTML(buf.String()), Styles: template.CSS(ledgerStyles)}, nil
	case export.FormatCSV, export.FormatXLSX:
		return export.Options{Prepend: []string{
			"Customer Name," + c.Name,
			"Email," + c.Email,
			"Phone," + c.Mobile,
			"",
		}}, nil
	case export.FormatEmail:
		return export.Options{Prepend: []string{
			"Customer Name: " + c.Name,
			"Email: " + c.Email,
			"Phone: " + c.Mobile,
			"",
		}}, nil
	case export.FormatPDF:
		return export.Options{PrependFn: ledgerPDFHeader(c)}, nil
	default:
		return export.Options{}, nil
	}
}

func ledgerPDFHeader(c backend.Customer) func(doc *fpdf.Fpdf) float64 {
	return func(doc *fpdf.Fpdf) float64 {
		tr := doc.UnicodeTranslatorFromDescriptor("")
		doc.SetFont("Arial", "", 14)
		doc.Text(20, 50, tr(c.Name))
		doc.SetFont("Arial", "", 10)
		doc.Text(20, 60, tr("Email: "+c.Email))
		doc.Text(20, 70, tr("Phone: "+c.Mobile))
		return 80
	}
}

// ProductReport lists products created inside r. Products without a creation
// date are always included.
func ProductReport(products []backend.Product, r export.DateRange) export.Report[backend.Product] {
	rows := export.FilterByDate(products, productDate, r)
	var items int
	var value float64
	for _, p := range rows {
		items += p.Quantity
		value += p.Price * float64(p.Quantity)
	}
	return export.Report[backend.Product]{
		Title: ProductsTitle,
		Columns: []export.Column[backend.Product]{
			{Header: "ID", Accessor: "_id"},
			{Header: "Name", Accessor: "name"},
			{Header: "Description", Accessor: "description"},
			{Header: "Quantity", Accessor: "quantity"},
			{Header: "Price ($)", Accessor: "price", Render: func(p backend.Product) any { return export.Text(money(p.Price)) }},
			{Header: "Total Value", Accessor: "_id", Render: func(p backend.Product) any {
				return export.Text(money(p.Price * float64(p.Quantity)))
			}},
			{Header: "Date", Accessor: "createdAt", Render: func(p backend.Product) any {
				if p.CreatedAt == nil {
					return nil
				}
				return export.Text(displayDate(p.CreatedAt.Time))
			}},
		},
		Rows: rows,
		Summary: []export.SummaryItem{
			{Label: "Total Items", Value: fmt.Sprint(items)},
			{Label: "Total Inventory Value", Value: money(value)},
		},
		Period: r.Period(),
	}
}
