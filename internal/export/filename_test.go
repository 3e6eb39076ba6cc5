package export

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFileName(t *testing.T) {
	assert.Equal(t, "sales_report_2024-03-01_to_2024-03-31.csv",
		FileName("Sales Report", Period{Start: "2024-03-01", End: "2024-03-31"}, "csv"))
	assert.Equal(t, "customer_ledger_for_ann_lee_all_to_present.pdf",
		FileName("Customer  Ledger for\tAnn Lee", Period{}, ".pdf"))
	assert.Equal(t, "product_inventory_report_2024-01-01_to_present.xlsx",
		FileName("Product Inventory Report", Period{Start: "2024-01-01"}, "xlsx"))
}

func TestMailtoURI(t *testing.T) {
	assert.Equal(t, "mailto:?subject=Sales%20Report&body=a%26b%0A(c)", MailtoURI("Sales Report", "a&b\n(c)"))
}

func TestDataURI(t *testing.T) {
	assert.Equal(t, "data:text/csv;charset=utf-8,a,b%0D%0A", DataURI("text/csv; charset=utf-8", []byte("a,b\r\n")))
	assert.Equal(t, "data:application/pdf;base64,UERG", DataURI("application/pdf", []byte("PDF")))
}
