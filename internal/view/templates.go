package view

import (
	"bytes"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"github.com/odyssey-erp/backoffice/internal/shared"
	"github.com/odyssey-erp/backoffice/web"
)

// Engine renders HTML templates.
type Engine struct {
	templates *template.Template
}

// TemplateData contains values shared across templates.
type TemplateData struct {
	Title       string
	Notice      *shared.Notice
	CurrentPath string
	Data        any
}

// NavItem is one entry of the top navigation.
type NavItem struct {
	Label string
	Path  string
}

var navItems = []NavItem{
	{Label: "Dashboard", Path: "/dashboard"},
	{Label: "Customers", Path: "/customers"},
	{Label: "Inventory", Path: "/products"},
	{Label: "Purchases", Path: "/purchases"},
	{Label: "Sales", Path: "/reports/sales"},
	{Label: "Customer Ledger", Path: "/reports/ledger"},
	{Label: "Products", Path: "/reports/products"},
}

// NewEngine parses the embedded layouts, partials and pages.
func NewEngine() (*Engine, error) {
	funcMap := template.FuncMap{
		"formatDate": func(t time.Time) string {
			if t.IsZero() {
				return ""
			}
			return t.Format("02 Jan 2006 15:04")
		},
		"nav": func() []NavItem { return navItems },
		"money": func(v float64) string {
			return fmt.Sprintf("$%.2f", v)
		},
	}
	tpl, err := template.New("root").Funcs(funcMap).ParseFS(web.Templates, "templates/layouts/*.html", "templates/partials/*.html", "templates/pages/*.html")
	if err != nil {
		return nil, err
	}
	return &Engine{templates: tpl}, nil
}

// Render executes a named template with TemplateData. The page is buffered so
// a template error never leaves a half-written response.
func (e *Engine) Render(w http.ResponseWriter, name string, data TemplateData) error {
	return e.RenderStatus(w, http.StatusOK, name, data)
}

// RenderStatus is Render with an explicit status code.
func (e *Engine) RenderStatus(w http.ResponseWriter, status int, name string, data TemplateData) error {
	if e == nil {
		return fmt.Errorf("template engine not initialised")
	}
	var buf bytes.Buffer
	if err := e.templates.ExecuteTemplate(&buf, name, data); err != nil {
		return err
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, err := buf.WriteTo(w)
	return err
}
