package export

import (
	"context"
	"fmt"
)

// HTMLConverter turns an HTML document into PDF bytes.
type HTMLConverter interface {
	RenderHTML(ctx context.Context, html []byte) ([]byte, error)
}

// PrintPDFSink renders the print document through an HTML-to-PDF converter.
type PrintPDFSink struct {
	Print     *PrintSink
	Converter HTMLConverter
}

func (PrintPDFSink) Format() Format { return FormatPrintPDF }

func (p PrintPDFSink) Render(ctx context.Context, target Target, t Table) error {
	if p.Print == nil || p.Converter == nil {
		return fmt.Errorf("print-pdf sink not configured")
	}
	html, err := p.Print.Document(t)
	if err != nil {
		return err
	}
	pdf, err := p.Converter.RenderHTML(ctx, html)
	if err != nil {
		return fmt.Errorf("convert print document: %w", err)
	}
	return target.TriggerDownload(ctx, Download{
		Filename:    FileName(t.Title, t.Period, "pdf"),
		ContentType: "application/pdf",
		Body:        pdf,
	})
}
