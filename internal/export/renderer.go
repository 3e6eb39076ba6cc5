// Package export renders tabular reports into print documents, CSV, PDF,
// spreadsheet and email output through an injected Target.
package export

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/odyssey-erp/backoffice/internal/platform/httpx"
)

// Sink renders a resolved table onto a target.
type Sink interface {
	Format() Format
	Render(ctx context.Context, target Target, t Table) error
}

// Observer is notified after every render attempt.
type Observer func(format Format, t Table, elapsed time.Duration, err error)

// Renderer dispatches tables to the sink registered for a format.
type Renderer struct {
	sinks    map[Format]Sink
	observer Observer
}

// NewRenderer registers sinks by their Format. Later sinks replace earlier ones.
func NewRenderer(sinks ...Sink) *Renderer {
	r := &Renderer{sinks: make(map[Format]Sink, len(sinks))}
	for _, s := range sinks {
		if s != nil {
			r.sinks[s.Format()] = s
		}
	}
	return r
}

// Observe installs fn as the render observer.
func (r *Renderer) Observe(fn Observer) *Renderer {
	r.observer = fn
	return r
}

// Formats lists the registered formats in lexical order.
func (r *Renderer) Formats() []Format {
	out := make([]Format, 0, len(r.sinks))
	for f := range r.sinks {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Supports reports whether a sink is registered for format.
func (r *Renderer) Supports(format Format) bool {
	_, ok := r.sinks[format]
	return ok
}

// Render sends t to the sink for format.
func (r *Renderer) Render(ctx context.Context, format Format, target Target, t Table) error {
	sink, ok := r.sinks[format]
	if !ok {
		return fmt.Errorf("%w: %q", httpx.ErrUnsupported, format)
	}
	start := time.Now()
	err := sink.Render(ctx, target, t)
	if r.observer != nil {
		r.observer(format, t, time.Since(start), err)
	}
	if err != nil {
		return fmt.Errorf("export %s: %w", format, err)
	}
	return nil
}

// Export resolves report and renders it in format.
func Export[T any](ctx context.Context, r *Renderer, format Format, target Target, report Report[T]) error {
	return r.Render(ctx, format, target, report.Table())
}

// DefaultSinks returns the built-in sinks. converter may be nil, in which case
// print-pdf is not registered.
func DefaultSinks(converter HTMLConverter, now func() time.Time) ([]Sink, error) {
	printSink, err := NewPrintSink()
	if err != nil {
		return nil, err
	}
	sinks := []Sink{
		printSink,
		CSVSink{},
		PDFSink{},
		EmailSink{Now: now},
		XLSXSink{},
	}
	if converter != nil {
		sinks = append(sinks, PrintPDFSink{Print: printSink, Converter: converter})
	}
	return sinks, nil
}
