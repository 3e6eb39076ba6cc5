package reports

import (
	"fmt"
	"sort"

	"github.com/odyssey-erp/backoffice/internal/backend"
)

// MonthTotal is the purchase total of one calendar month, labelled M-YYYY.
type MonthTotal struct {
	Label string  `json:"label"`
	Total float64 `json:"total"`
	year  int
	month int
}

// StockLevel is a product's on-hand quantity.
type StockLevel struct {
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
}

// Dashboard aggregates the record counts shown on the landing page.
type Dashboard struct {
	Customers    int          `json:"total_customers"`
	Products     int          `json:"total_products"`
	Purchases    int          `json:"total_purchase_count"`
	Revenue      float64      `json:"total_purchases"`
	Monthly      []MonthTotal `json:"monthly_totals"`
	Stock        []StockLevel `json:"product_quantities"`
	RevenueLabel string       `json:"-"`
}

// BuildDashboard computes the dashboard from raw backend rows. Months are
// ordered chronologically; purchases without a date are counted in the
// revenue but not in any month.
func BuildDashboard(customers []backend.Customer, products []backend.Product, purchases []backend.Purchase) Dashboard {
	d := Dashboard{
		Customers: len(customers),
		Products:  len(products),
		Purchases: len(purchases),
		Stock:     make([]StockLevel, 0, len(products)),
	}

	byMonth := make(map[[2]int]*MonthTotal)
	for _, p := range purchases {
		total := p.Total()
		d.Revenue += total
		if p.Date.IsZero() {
			continue
		}
		date := p.Date.UTC()
		key := [2]int{date.Year(), int(date.Month())}
		m, ok := byMonth[key]
		if !ok {
			m = &MonthTotal{Label: fmt.Sprintf("%d-%d", key[1], key[0]), year: key[0], month: key[1]}
			byMonth[key] = m
		}
		m.Total += total
	}
	d.Monthly = make([]MonthTotal, 0, len(byMonth))
	for _, m := range byMonth {
		d.Monthly = append(d.Monthly, *m)
	}
	sort.Slice(d.Monthly, func(i, j int) bool {
		if d.Monthly[i].year != d.Monthly[j].year {
			return d.Monthly[i].year < d.Monthly[j].year
		}
		return d.Monthly[i].month < d.Monthly[j].month
	})

	for _, p := range products {
		d.Stock = append(d.Stock, StockLevel{Name: p.Name, Quantity: p.Quantity})
	}
	d.RevenueLabel = money(d.Revenue)
	return d
}

// MonthlySeries splits the monthly totals into chart labels and values.
func (d Dashboard) MonthlySeries() ([]string, []float64) {
	labels := make([]string, len(d.Monthly))
	values := make([]float64, len(d.Monthly))
	for i, m := range d.Monthly {
		labels[i], values[i] = m.Label, m.Total
	}
	return labels, values
}

// StockSeries splits product quantities into chart labels and values.
func (d Dashboard) StockSeries() ([]string, []float64) {
	labels := make([]string, len(d.Stock))
	values := make([]float64, len(d.Stock))
	for i, s := range d.Stock {
		labels[i], values[i] = s.Name, float64(s.Quantity)
	}
	return labels, values
}

// CumulativeSeries returns the running revenue total per month.
func (d Dashboard) CumulativeSeries() ([]string, []float64) {
	labels, values := d.MonthlySeries()
	var running float64
	for i, v := range values {
		running += v
		values[i] = running
	}
	return labels, values
}
