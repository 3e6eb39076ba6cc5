package reports

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/backoffice/internal/backend"
	"github.com/odyssey-erp/backoffice/internal/export"
	"github.com/odyssey-erp/backoffice/internal/exportlog"
	"github.com/odyssey-erp/backoffice/internal/observability"
	"github.com/odyssey-erp/backoffice/internal/view"
)

type memHistory struct {
	mu      sync.Mutex
	entries []exportlog.Entry
}

func (m *memHistory) Insert(_ context.Context, e exportlog.Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, e)
	return nil
}

func (m *memHistory) Recent(_ context.Context, limit int) ([]exportlog.Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := append([]exportlog.Entry(nil), m.entries...)
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

type recordingDeliverer struct {
	to    string
	email export.Email
	err   error
}

func (d *recordingDeliverer) Deliver(_ context.Context, to string, email export.Email) error {
	d.to, d.email = to, email
	return d.err
}

type stubRecords struct {
	backend.Records
	*stubReader
	added  []backend.NewPurchase
	writes []string
	err    error
}

func (s *stubRecords) ListCustomers(ctx context.Context, userID string) ([]backend.Customer, error) {
	return s.stubReader.ListCustomers(ctx, userID)
}

func (s *stubRecords) ListProducts(ctx context.Context, userID string) ([]backend.Product, error) {
	return s.stubReader.ListProducts(ctx, userID)
}

func (s *stubRecords) ListPurchases(ctx context.Context, userID string) ([]backend.Purchase, error) {
	return s.stubReader.ListPurchases(ctx, userID)
}

func (s *stubRecords) AddPurchase(_ context.Context, in backend.NewPurchase) error {
	if s.err != nil {
		return s.err
	}
	s.added = append(s.added, in)
	return nil
}

type fixture struct {
	router    chi.Router
	reader    *stubReader
	records   *stubRecords
	history   *memHistory
	deliverer *recordingDeliverer
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	engine, err := view.NewEngine()
	require.NoError(t, err)
	sinks, err := export.DefaultSinks(nil, fixedNow)
	require.NoError(t, err)

	reader := newStubReader()
	records := &stubRecords{stubReader: reader}
	history := &memHistory{}
	deliverer := &recordingDeliverer{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	h := NewHandler(Config{
		Logger:    logger,
		Service:   NewService(reader, "u1", fixedNow),
		Records:   records,
		Templates: engine,
		Renderer:  export.NewRenderer(sinks...),
		History:   exportlog.NewService(history, logger),
		Metrics:   observability.NewMetrics(),
		Deliverer: deliverer,
	})
	r := chi.NewRouter()
	h.MountRoutes(r)
	return &fixture{router: r, reader: reader, records: records, history: history, deliverer: deliverer}
}

func (f *fixture) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func TestReportPageRendersTable(t *testing.T) {
	f := newFixture(t)
	rec := f.do(httptest.NewRequest(http.MethodGet, "/reports/sales?start=2024-03-01&end=2024-03-31", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "<h1>Sales Report</h1>")
	assert.Contains(t, body, "<td>Ann</td>")
	assert.Contains(t, body, "Showing 2 of 3 entries from 2024-03-01 to 2024-03-31")
	assert.Contains(t, body, "<strong>Total: $250.00</strong>")
	assert.Contains(t, body, "format=csv")
}

func TestReportPageShowsBackendNotice(t *testing.T) {
	f := newFixture(t)
	f.reader.err = &backend.APIError{Status: 500, Message: "Database offline"}

	rec := f.do(httptest.NewRequest(http.MethodGet, "/reports/products", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `<div class="notice notice-error" role="alert">Database offline</div>`)
	assert.Contains(t, rec.Body.String(), "No products found in the selected date range.")
}

func TestLedgerPageWithoutCustomerListsCustomers(t *testing.T) {
	f := newFixture(t)
	rec := f.do(httptest.NewRequest(http.MethodGet, "/reports/ledger", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "No customer selected")
	assert.Contains(t, rec.Body.String(), `<option value="c2">Bob - bob@example.com</option>`)
}

func TestInvalidFilterIsBadRequest(t *testing.T) {
	f := newFixture(t)
	for _, target := range []string{
		"/reports/sales?start=03/01/2024",
		"/reports/sales?format=docx",
	} {
		rec := f.do(httptest.NewRequest(http.MethodGet, target, nil))
		assert.Equal(t, http.StatusBadRequest, rec.Code, target)
		assert.Equal(t, "application/problem+json", rec.Header().Get("Content-Type"), target)
	}
}

func TestUnknownReportIsNotFound(t *testing.T) {
	f := newFixture(t)
	rec := f.do(httptest.NewRequest(http.MethodGet, "/reports/refunds", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCSVExportDownloadsAndRecordsHistory(t *testing.T) {
	f := newFixture(t)
	rec := f.do(httptest.NewRequest(http.MethodGet, "/reports/sales?start=2024-03-01&end=2024-03-31&format=csv", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "sales_report_2024-03-01_to_2024-03-31.csv")
	assert.True(t, strings.HasPrefix(rec.Body.String(), "Sales Report\r\nPeriod,2024-03-01 to 2024-03-31\r\n"))

	require.Len(t, f.history.entries, 1)
	entry := f.history.entries[0]
	assert.Equal(t, "sales", entry.Report)
	assert.Equal(t, "csv", entry.Format)
	assert.Equal(t, 2, entry.RowCount)
	assert.Equal(t, exportlog.StatusOK, entry.Status)
}

func TestLedgerExportRequiresCustomer(t *testing.T) {
	f := newFixture(t)
	rec := f.do(httptest.NewRequest(http.MethodGet, "/reports/ledger?format=pdf", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(httptest.NewRequest(http.MethodGet, "/reports/ledger?format=pdf&customer=c1", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("%PDF")))
}

func TestPrintExportServesDocument(t *testing.T) {
	f := newFixture(t)
	rec := f.do(httptest.NewRequest(http.MethodGet, "/reports/ledger?format=print&customer=c1", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, rec.Body.String(), `<div class="customer-details"><h2>Ann</h2>`)
	assert.Contains(t, rec.Body.String(), "window.print()")
}

func TestEmailExportRedirectsToMailto(t *testing.T) {
	f := newFixture(t)
	rec := f.do(httptest.NewRequest(http.MethodGet, "/reports/ledger?format=email&customer=c1", nil))

	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.True(t, strings.HasPrefix(rec.Header().Get("Location"), "mailto:?subject=Customer%20Ledger%20for%20Ann&body="))
}

func TestBackendFailureOnExportIsBadGateway(t *testing.T) {
	f := newFixture(t)
	f.reader.err = &backend.APIError{Err: backend.ErrUnavailable}
	rec := f.do(httptest.NewRequest(http.MethodGet, "/reports/sales?format=csv", nil))
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestReportJSON(t *testing.T) {
	f := newFixture(t)
	rec := f.do(httptest.NewRequest(http.MethodGet, "/reports/products?format=json", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var body tableResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, ProductsTitle, body.Title)
	assert.Equal(t, 2, body.Showing)
	assert.Equal(t, "Total Items", body.Summary[0].Label)
	assert.Equal(t, "13", body.Summary[0].Value)
}

func TestEmailSendQueuesDelivery(t *testing.T) {
	f := newFixture(t)
	form := url.Values{"to": {"ops@example.com"}, "start": {"2024-03-01"}}
	req := httptest.NewRequest(http.MethodPost, "/reports/sales/email/send", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := f.do(req)

	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/reports/sales?sent=1&start=2024-03-01", rec.Header().Get("Location"))
	assert.Equal(t, "ops@example.com", f.deliverer.to)
	assert.Equal(t, SalesTitle, f.deliverer.email.Subject)
	assert.Equal(t, KindSales, f.deliverer.email.Report)
	assert.Contains(t, f.deliverer.email.Body, "Period: 2024-03-01 to Present")
}

func TestEmailSendJSONAndValidation(t *testing.T) {
	f := newFixture(t)

	req := httptest.NewRequest(http.MethodPost, "/reports/sales/email/send?as=json", strings.NewReader("to=not-an-email"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	assert.Equal(t, http.StatusBadRequest, f.do(req).Code)

	req = httptest.NewRequest(http.MethodPost, "/reports/sales/email/send?as=json", strings.NewReader("to=ops%40example.com"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := f.do(req)
	require.Equal(t, http.StatusAccepted, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"queued"`)

	f.deliverer.err = errors.New("redis down")
	req = httptest.NewRequest(http.MethodPost, "/reports/sales/email/send?as=json", strings.NewReader("to=ops%40example.com"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	assert.Equal(t, http.StatusInternalServerError, f.do(req).Code)
}

func TestHistoryEndpoint(t *testing.T) {
	f := newFixture(t)
	f.do(httptest.NewRequest(http.MethodGet, "/reports/sales?format=xlsx", nil))

	rec := f.do(httptest.NewRequest(http.MethodGet, "/reports/history?limit=5", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var entries []exportlog.Entry
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &entries))
	require.Len(t, entries, 1)
	assert.Equal(t, "xlsx", entries[0].Format)
	assert.Equal(t, "sales_report_all_to_present.xlsx", entries[0].Filename)

	rec = f.do(httptest.NewRequest(http.MethodGet, "/reports/history?limit=x", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDashboardHTMLAndJSON(t *testing.T) {
	f := newFixture(t)

	rec := f.do(httptest.NewRequest(http.MethodGet, "/dashboard", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "$262.50")
	assert.Contains(t, rec.Body.String(), "<svg")

	rec = f.do(httptest.NewRequest(http.MethodGet, "/dashboard?format=json", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var d Dashboard
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &d))
	assert.Equal(t, 2, d.Customers)
	require.Len(t, d.Monthly, 2)
	assert.Equal(t, "3-2024", d.Monthly[0].Label)
}

func TestRecordsAPI(t *testing.T) {
	f := newFixture(t)

	rec := f.do(httptest.NewRequest(http.MethodGet, "/api/customers", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var list struct {
		Success bool               `json:"success"`
		Data    []backend.Customer `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	assert.True(t, list.Success)
	assert.Len(t, list.Data, 2)

	body := `{"date":"2024-03-05","customer":"c1","product":"x1","price":10,"quantity":1,"payment":"Cash"}`
	rec = f.do(httptest.NewRequest(http.MethodPost, "/api/purchases", strings.NewReader(body)))
	require.Equal(t, http.StatusCreated, rec.Code)
	require.Len(t, f.records.added, 1)
	assert.Equal(t, "u1", f.records.added[0].UserID)

	rec = f.do(httptest.NewRequest(http.MethodPost, "/api/purchases", strings.NewReader(`{"bogus":1}`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	f.records.err = &backend.APIError{Status: 404, Message: "Customer not found"}
	rec = f.do(httptest.NewRequest(http.MethodPost, "/api/purchases", strings.NewReader(body)))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), `"message":"Customer not found"`)
}
