package reports

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/backoffice/internal/backend"
)

func (s *stubRecords) write(op string) error {
	if s.err != nil {
		return s.err
	}
	s.writes = append(s.writes, op)
	return nil
}

func (s *stubRecords) AddCustomer(_ context.Context, userID string, in backend.CustomerInput) (*backend.Customer, error) {
	if err := s.write("add-customer:" + userID + ":" + in.Name); err != nil {
		return nil, err
	}
	return &backend.Customer{ID: "c9", Name: in.Name}, nil
}

func (s *stubRecords) EditCustomer(_ context.Context, id string, in backend.CustomerInput) (*backend.Customer, error) {
	if err := s.write("edit-customer:" + id + ":" + in.Email); err != nil {
		return nil, err
	}
	return &backend.Customer{ID: id, Name: in.Name}, nil
}

func (s *stubRecords) DeleteCustomer(_ context.Context, id string) error {
	return s.write("delete-customer:" + id)
}

func (s *stubRecords) AddProduct(_ context.Context, userID string, in backend.ProductInput) (*backend.Product, error) {
	if err := s.write("add-product:" + in.Name); err != nil {
		return nil, err
	}
	return &backend.Product{ID: "x9", Name: in.Name}, nil
}

func (s *stubRecords) EditProduct(_ context.Context, id string, in backend.ProductInput) (*backend.Product, error) {
	if err := s.write("edit-product:" + id + ":" + in.Name); err != nil {
		return nil, err
	}
	return &backend.Product{ID: id, Name: in.Name}, nil
}

func (s *stubRecords) DeleteProduct(_ context.Context, id string) error {
	return s.write("delete-product:" + id)
}

func postForm(target string, form url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func TestCustomersPageListsAndEdits(t *testing.T) {
	f := newFixture(t)

	rec := f.do(httptest.NewRequest(http.MethodGet, "/customers", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "<h1>Customer List</h1>")
	assert.Contains(t, body, "<td>ann@example.com</td>")
	assert.Contains(t, body, `action="/customers/c2/delete"`)
	assert.Contains(t, body, `<a href="/customers" class="active">Customers</a>`)

	rec = f.do(httptest.NewRequest(http.MethodGet, "/customers?edit=c1", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `action="/customers/c1/edit"`)
	assert.Contains(t, rec.Body.String(), `value="ann@example.com"`)
}

func TestCustomerWritesRedirectWithBanner(t *testing.T) {
	f := newFixture(t)

	rec := f.do(postForm("/customers", url.Values{"name": {"Cy"}, "email": {"cy@example.com"}, "mobile": {"5550103"}}))
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/customers?done=customer-added", rec.Header().Get("Location"))

	rec = f.do(postForm("/customers/c1/edit", url.Values{"name": {"Ann"}, "email": {"ann@new.example.com"}, "mobile": {"5550101"}}))
	require.Equal(t, http.StatusSeeOther, rec.Code)

	rec = f.do(postForm("/customers/c2/delete", nil))
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/customers?done=customer-deleted", rec.Header().Get("Location"))

	assert.Equal(t, []string{
		"add-customer:u1:Cy",
		"edit-customer:c1:ann@new.example.com",
		"delete-customer:c2",
	}, f.records.writes)

	rec = f.do(httptest.NewRequest(http.MethodGet, "/customers?done=customer-deleted", nil))
	assert.Contains(t, rec.Body.String(), `<div class="notice notice-success" role="alert">Customer deleted successfully.</div>`)
}

func TestCustomerFormValidation(t *testing.T) {
	f := newFixture(t)

	rec := f.do(postForm("/customers", url.Values{"name": {"Cy"}, "email": {"not-an-email"}, "mobile": {"5550103"}}))
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Email is invalid.")
	assert.Contains(t, rec.Body.String(), "<h1>Customer List</h1>")
	assert.Empty(t, f.records.writes)
}

func TestRecordWriteShowsBackendMessage(t *testing.T) {
	f := newFixture(t)
	f.records.err = &backend.APIError{Status: http.StatusNotFound, Message: "Product not found"}

	rec := f.do(postForm("/products/x1/delete", nil))
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), `<div class="notice notice-error" role="alert">Product not found</div>`)

	f.records.err = &backend.APIError{Err: backend.ErrUnavailable}
	rec = f.do(postForm("/customers/c1/delete", nil))
	require.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Contains(t, rec.Body.String(), backend.DefaultMessage)
}

func TestProductsPage(t *testing.T) {
	f := newFixture(t)

	rec := f.do(httptest.NewRequest(http.MethodGet, "/products", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "<h1>Inventory List</h1>")
	assert.Contains(t, body, "<td>$12.50</td>")

	rec = f.do(postForm("/products", url.Values{"name": {"Ruler"}, "price": {"abc"}}))
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "price must be a number")

	rec = f.do(postForm("/products", url.Values{"name": {"Ruler"}, "price": {"2.5"}, "quantity": {"40"}}))
	require.Equal(t, http.StatusSeeOther, rec.Code)
	rec = f.do(postForm("/products/x2/edit", url.Values{"name": {"Ink Refill"}, "price": {"13"}, "quantity": {"9"}}))
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/products?done=product-updated", rec.Header().Get("Location"))
	assert.Equal(t, []string{"add-product:Ruler", "edit-product:x2:Ink Refill"}, f.records.writes)
}

func TestPurchasesPageAndAdd(t *testing.T) {
	f := newFixture(t)

	rec := f.do(httptest.NewRequest(http.MethodGet, "/purchases", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "<h1>Purchase List</h1>")
	assert.Contains(t, body, "<td>2024-03-05</td>")
	assert.Contains(t, body, "<td>$200.00</td>")
	assert.Contains(t, body, `<option value="c2">Bob</option>`)
	assert.Contains(t, body, `<option value="x2">Ink (10 in stock)</option>`)

	form := url.Values{"date": {"2024-04-03"}, "customer": {"c2"}, "product": {"x2"}, "quantity": {"2"}, "payment": {"Bank"}}
	rec = f.do(postForm("/purchases", form))
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/purchases?done=purchase-added", rec.Header().Get("Location"))
	require.Len(t, f.records.added, 1)
	assert.Equal(t, backend.NewPurchase{UserID: "u1", Date: "2024-04-03", Customer: "c2", Product: "x2", Price: 12.5, Quantity: 2, Payment: "Bank"}, f.records.added[0])

	form.Set("payment", "Card")
	rec = f.do(postForm("/purchases", form))
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Payment is invalid.")
	assert.Len(t, f.records.added, 1)
}

func TestRecordsPageShowsLoadFailure(t *testing.T) {
	f := newFixture(t)
	f.reader.err = &backend.APIError{Status: http.StatusInternalServerError, Message: "Database offline"}

	rec := f.do(httptest.NewRequest(http.MethodGet, "/purchases", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `<div class="notice notice-error" role="alert">Database offline</div>`)
	assert.Contains(t, rec.Body.String(), "No purchases yet.")
}
