package export

import (
	"bufio"
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strings"
)

const (
	csvFlushEvery = 200
	csvBufferSize = 32 * 1024
	csvMediaType  = "text/csv; charset=utf-8"
)

// CSVSink renders the report as a CRLF-delimited CSV download.
type CSVSink struct{}

func (CSVSink) Format() Format { return FormatCSV }

// Content writes the CSV body of t into w.
func (CSVSink) Content(w io.Writer, t Table) error {
	s := newCSVStreamer(w)
	if err := s.writeLine(t.Title); err != nil {
		return err
	}
	if !t.Period.Empty() {
		if err := s.writeRow([]string{"Period", t.Period.Label()}); err != nil {
			return err
		}
	}
	for _, line := range t.Options.Prepend {
		if err := s.writeLine(line); err != nil {
			return err
		}
	}
	if err := s.writeLine(""); err != nil {
		return err
	}
	if err := s.writeRow(t.Headers); err != nil {
		return err
	}
	for _, row := range t.Rows {
		if err := s.writeRow(row); err != nil {
			return err
		}
	}
	if len(t.Summary) > 0 {
		if err := s.writeLine(""); err != nil {
			return err
		}
		for _, item := range t.Summary {
			if err := s.writeRow([]string{item.Label, item.Value}); err != nil {
				return err
			}
		}
	}
	return s.Close()
}

func (c CSVSink) Render(ctx context.Context, target Target, t Table) error {
	var buf bytes.Buffer
	if err := c.Content(&buf, t); err != nil {
		return fmt.Errorf("render csv: %w", err)
	}
	return target.TriggerDownload(ctx, Download{
		Filename:    FileName(t.Title, t.Period, "csv"),
		ContentType: csvMediaType,
		Body:        buf.Bytes(),
	})
}

type csvStreamer struct {
	buf          *bufio.Writer
	csv          *csv.Writer
	flushEvery   int
	pendingLines int
}

func newCSVStreamer(w io.Writer) *csvStreamer {
	buf := bufio.NewWriterSize(w, csvBufferSize)
	writer := csv.NewWriter(buf)
	writer.UseCRLF = true
	return &csvStreamer{buf: buf, csv: writer, flushEvery: csvFlushEvery}
}

// writeLine emits a raw line. Pending records are flushed first so ordering holds.
func (s *csvStreamer) writeLine(line string) error {
	s.csv.Flush()
	if err := s.csv.Error(); err != nil {
		return err
	}
	line = strings.TrimRight(line, "\r\n")
	if _, err := s.buf.WriteString(line + "\r\n"); err != nil {
		return err
	}
	return nil
}

func (s *csvStreamer) writeRow(row []string) error {
	if err := s.csv.Write(row); err != nil {
		return err
	}
	s.pendingLines++
	if s.flushEvery > 0 && s.pendingLines >= s.flushEvery {
		return s.Flush()
	}
	return nil
}

func (s *csvStreamer) Flush() error {
	s.csv.Flush()
	if err := s.csv.Error(); err != nil {
		return err
	}
	if err := s.buf.Flush(); err != nil {
		return err
	}
	s.pendingLines = 0
	return nil
}

func (s *csvStreamer) Close() error {
	return s.Flush()
}
