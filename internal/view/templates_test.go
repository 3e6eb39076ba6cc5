package view

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/backoffice/internal/shared"
)

func TestEngineDefinesPages(t *testing.T) {
	engine, err := NewEngine()
	require.NoError(t, err)

	for _, name := range []string{
		"pages/reports.html",
		"pages/dashboard.html",
		"pages/customers.html",
		"pages/products.html",
		"pages/purchases.html",
		"layouts/head",
		"layouts/foot",
		"partials/notice",
	} {
		assert.NotNil(t, engine.templates.Lookup(name), name)
	}
	assert.Nil(t, engine.templates.Lookup("export/print.html"), "print documents are parsed by the print sink")
}

func TestRenderStatusWritesLayoutAndNotice(t *testing.T) {
	engine, err := NewEngine()
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	err = engine.RenderStatus(rec, http.StatusBadGateway, "pages/customers.html", TemplateData{
		Title:       "Customer List",
		CurrentPath: "/customers",
		Notice:      &shared.Notice{Kind: shared.NoticeError, Message: "Database <offline>"},
	})
	require.NoError(t, err)

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
	body := rec.Body.String()
	assert.Contains(t, body, "<title>Customer List · Back Office</title>")
	assert.Contains(t, body, `<a href="/customers" class="active">Customers</a>`)
	assert.Contains(t, body, `<a href="/reports/sales">Sales</a>`)
	assert.Contains(t, body, `<div class="notice notice-error" role="alert">Database &lt;offline&gt;</div>`)
}

func TestRenderUnknownTemplateWritesNothing(t *testing.T) {
	engine, err := NewEngine()
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	assert.Error(t, engine.Render(rec, "pages/missing.html", TemplateData{}))
	assert.Zero(t, rec.Body.Len())

	var nilEngine *Engine
	assert.Error(t, nilEngine.Render(rec, "pages/reports.html", TemplateData{}))
}
