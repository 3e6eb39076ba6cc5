package export

import (
	"context"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

const (
	xlsxMediaType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	xlsxColWidth  = 18
)

// XLSXSink writes the CSV layout into a single-sheet workbook.
type XLSXSink struct{}

func (XLSXSink) Format() Format { return FormatXLSX }

func (x XLSXSink) Render(ctx context.Context, target Target, t Table) error {
	body, err := x.Workbook(t)
	if err != nil {
		return err
	}
	return target.TriggerDownload(ctx, Download{
		Filename:    FileName(t.Title, t.Period, "xlsx"),
		ContentType: xlsxMediaType,
		Body:        body,
	})
}

// Workbook returns the encoded .xlsx bytes.
func (XLSXSink) Workbook(t Table) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, fmt.Errorf("xlsx style: %w", err)
	}
	header, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"F2F2F2"}},
	})
	if err != nil {
		return nil, fmt.Errorf("xlsx style: %w", err)
	}

	row := 1
	write := func(values []string, style int) error {
		for i, v := range values {
			cell, err := excelize.CoordinatesToCellName(i+1, row)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return err
			}
			if style != 0 {
				if err := f.SetCellStyle(sheet, cell, cell, style); err != nil {
					return err
				}
			}
		}
		row++
		return nil
	}

	if err := write([]string{t.Title}, bold); err != nil {
		return nil, fmt.Errorf("xlsx title: %w", err)
	}
	if !t.Period.Empty() {
		if err := write([]string{"Period", t.Period.Label()}, 0); err != nil {
			return nil, fmt.Errorf("xlsx period: %w", err)
		}
	}
	for _, line := range t.Options.Prepend {
		if err := write(strings.SplitN(line, ",", 2), 0); err != nil {
			return nil, fmt.Errorf("xlsx prepend: %w", err)
		}
	}
	row++
	if err := write(t.Headers, header); err != nil {
		return nil, fmt.Errorf("xlsx header: %w", err)
	}
	for _, cells := range t.Rows {
		if err := write(cells, 0); err != nil {
			return nil, fmt.Errorf("xlsx row %d: %w", row, err)
		}
	}
	if len(t.Summary) > 0 {
		row++
		for _, item := range t.Summary {
			if err := write([]string{item.Label, item.Value}, bold); err != nil {
				return nil, fmt.Errorf("xlsx summary: %w", err)
			}
		}
	}

	if n := len(t.Headers); n > 0 {
		last, err := excelize.ColumnNumberToName(n)
		if err != nil {
			return nil, err
		}
		if err := f.SetColWidth(sheet, "A", last, xlsxColWidth); err != nil {
			return nil, fmt.Errorf("xlsx col width: %w", err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}
	return buf.Bytes(), nil
}
