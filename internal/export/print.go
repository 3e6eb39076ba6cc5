package export

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"

	"github.com/odyssey-erp/backoffice/web"
)

// PrintSink renders a self-printing HTML document.
type PrintSink struct {
	tpl *template.Template
}

// NewPrintSink parses the embedded print template.
func NewPrintSink() (*PrintSink, error) {
	tpl, err := template.New("print").ParseFS(web.Templates, "templates/export/print.html")
	if err != nil {
		return nil, fmt.Errorf("parse print template: %w", err)
	}
	return &PrintSink{tpl: tpl}, nil
}

func (s *PrintSink) Format() Format { return FormatPrint }

// Document renders the HTML for t.
func (s *PrintSink) Document(t Table) ([]byte, error) {
	var buf bytes.Buffer
	if err := s.tpl.ExecuteTemplate(&buf, "export/print.html", t); err != nil {
		return nil, fmt.Errorf("render print document: %w", err)
	}
	return buf.Bytes(), nil
}

// Render opens the document on the target. An unavailable target is a silent no-op.
func (s *PrintSink) Render(ctx context.Context, target Target, t Table) error {
	html, err := s.Document(t)
	if err != nil {
		return err
	}
	err = target.OpenDocument(ctx, Document{Title: t.Title, HTML: html})
	if errors.Is(err, ErrTargetUnavailable) {
		return nil
	}
	return err
}
