package export

import (
	"html/template"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/odyssey-erp/backoffice/internal/backend"
)

func TestResolveCellAccessors(t *testing.T) {
	row := salesReport().Rows[0]
	cases := []struct {
		name     string
		accessor string
		want     string
	}{
		{"json tag", "payment", "Cash"},
		{"field name case-insensitive", "PAYMENT", "Cash"},
		{"nested path", "customer.name", "Ann"},
		{"pointer path", "product.name", "Pen"},
		{"json id tag", "customer._id", "c1"},
		{"date", "date", "2024-03-05"},
		{"int", "quantity", "2"},
		{"float", "price", "100"},
		{"missing field", "discount", ""},
		{"missing nested", "customer.email", ""},
		{"empty accessor", "", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ResolveCell(row, Column[sale]{Accessor: tc.accessor})
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestResolveCellBackendDates(t *testing.T) {
	day := backend.Date{Time: time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)}
	purchase := backend.Purchase{Date: day, Customer: backend.Ref{Name: "Ann"}}
	assert.Equal(t, "2024-03-05", ResolveCell(purchase, Column[backend.Purchase]{Accessor: "date"}))

	product := backend.Product{Name: "Pen", CreatedAt: &day}
	assert.Equal(t, "2024-03-05", ResolveCell(product, Column[backend.Product]{Accessor: "createdAt"}))
	assert.Equal(t, "", ResolveCell(backend.Product{Name: "Pen"}, Column[backend.Product]{Accessor: "createdAt"}))
	assert.Equal(t, "", ResolveCell(backend.Purchase{}, Column[backend.Purchase]{Accessor: "date"}))
}

func TestResolveCellNilPointer(t *testing.T) {
	row := sale{Customer: party{Name: "Ann"}}
	assert.Equal(t, "", ResolveCell(row, Column[sale]{Accessor: "product.name"}))
}

func TestResolveCellMapRows(t *testing.T) {
	row := map[string]any{
		"name":     "Pen",
		"quantity": 0,
		"customer": map[string]any{"name": "Ann"},
		"note":     nil,
	}
	assert.Equal(t, "Pen", ResolveCell(row, Column[map[string]any]{Accessor: "name"}))
	assert.Equal(t, "0", ResolveCell(row, Column[map[string]any]{Accessor: "quantity"}))
	assert.Equal(t, "Ann", ResolveCell(row, Column[map[string]any]{Accessor: "customer.name"}))
	assert.Equal(t, "", ResolveCell(row, Column[map[string]any]{Accessor: "note"}))
	assert.Equal(t, "", ResolveCell(row, Column[map[string]any]{Accessor: "absent"}))
}

func TestResolveCellRenderWins(t *testing.T) {
	col := Column[sale]{Accessor: "payment", Render: func(s sale) any { return Text("overridden") }}
	assert.Equal(t, "overridden", ResolveCell(sale{Payment: "Cash"}, col))
}

type stringer struct{}

func (stringer) String() string { return "stringer" }

func TestTextOf(t *testing.T) {
	var nilTime *time.Time
	cases := []struct {
		name string
		in   any
		want string
	}{
		{"nil", nil, ""},
		{"string", "x", "x"},
		{"display", Textf("$%.2f", 2.5), "$2.50"},
		{"html", template.HTML("<strong>$2.00</strong> &amp; tax"), "$2.00 & tax"},
		{"stringer", stringer{}, "stringer"},
		{"zero int", 0, "0"},
		{"zero float", 0.0, "0"},
		{"float", 2.25, "2.25"},
		{"bool", true, "true"},
		{"nil pointer", nilTime, ""},
		{"zero time", time.Time{}, ""},
		{"time", mustDate("2024-01-02"), "2024-01-02"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, TextOf(tc.in))
		})
	}
}
