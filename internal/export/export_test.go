package export

import (
	"time"
)

type party struct {
	ID   string `json:"_id"`
	Name string `json:"name"`
}

type sale struct {
	Date     time.Time `json:"date"`
	Customer party     `json:"customer"`
	Product  *party    `json:"product"`
	Price    float64   `json:"price"`
	Quantity int       `json:"quantity"`
	Payment  string    `json:"payment"`
}

func mustDate(s string) time.Time {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		panic(err)
	}
	return t
}

func saleColumns() []Column[sale] {
	return []Column[sale]{
		{Header: "Date", Accessor: "date"},
		{Header: "Customer", Accessor: "customer.name"},
		{Header: "Product", Accessor: "product.name"},
		{Header: "Price", Render: func(s sale) any { return Textf("$%.2f", s.Price) }},
		{Header: "Quantity", Accessor: "quantity"},
		{Header: "Total", Render: func(s sale) any { return Textf("$%.2f", s.Price*float64(s.Quantity)) }},
		{Header: "Payment Method", Accessor: "payment"},
	}
}

func salesReport() Report[sale] {
	return Report[sale]{
		Title:   "Sales Report",
		Columns: saleColumns(),
		Rows: []sale{{
			Date:     mustDate("2024-03-05"),
			Customer: party{ID: "c1", Name: "Ann"},
			Product:  &party{ID: "p1", Name: "Pen"},
			Price:    100,
			Quantity: 2,
			Payment:  "Cash",
		}},
		Summary: []SummaryItem{{Label: "Total", Value: "$200.00"}},
		Period:  Period{Start: "2024-03-01", End: "2024-03-31"},
	}
}
