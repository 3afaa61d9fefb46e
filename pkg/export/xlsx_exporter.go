package export

import (
	"errors"
	"fmt"

	"github.com/xuri/excelize/v2"
)

// ErrEmptyWorkbook is returned when every sheet handed to the XLSX exporter is empty.
var ErrEmptyWorkbook = errors.New("workbook has no non-empty sheets")

const defaultSheet = "Sheet1"

// XLSXExporter renders one workbook with a sheet per dataset.
type XLSXExporter struct{}

// NewXLSXExporter builds an XLSX exporter.
func NewXLSXExporter() *XLSXExporter {
	return &XLSXExporter{}
}

// Render writes each non-empty dataset to its own sheet, in order. Empty
// datasets are skipped.
func (e *XLSXExporter) Render(sheets []Dataset) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close() //nolint:errcheck

	written := 0
	for _, sheet := range sheets {
		if sheet.Empty() {
			continue
		}
		if err := writeSheet(f, sheet, written == 0); err != nil {
			return nil, err
		}
		written++
	}
	if written == 0 {
		return nil, ErrEmptyWorkbook
	}

	f.SetActiveSheet(0)
	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func writeSheet(f *excelize.File, data Dataset, first bool) error {
	name := sheetName(data.Name)
	if first {
		if err := f.SetSheetName(defaultSheet, name); err != nil {
			return fmt.Errorf("rename sheet %s: %w", name, err)
		}
	} else if _, err := f.NewSheet(name); err != nil {
		return fmt.Errorf("create sheet %s: %w", name, err)
	}

	header := make([]interface{}, len(data.Headers))
	for i, h := range data.Headers {
		header[i] = h
	}
	if err := f.SetSheetRow(name, "A1", &header); err != nil {
		return fmt.Errorf("write %s headers: %w", name, err)
	}

	for i, row := range data.Rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("resolve %s row %d: %w", name, i+2, err)
		}
		record := data.record(row)
		values := make([]interface{}, len(record))
		for j, v := range record {
			values[j] = v
		}
		if err := f.SetSheetRow(name, cell, &values); err != nil {
			return fmt.Errorf("write %s row %d: %w", name, i+2, err)
		}
	}

	if len(data.Headers) > 0 {
		last, err := excelize.ColumnNumberToName(len(data.Headers))
		if err == nil {
			_ = f.SetColWidth(name, "A", last, 20)
		}
	}
	return nil
}

// sheetName enforces Excel's 31 character sheet title limit.
func sheetName(raw string) string {
	if raw == "" {
		raw = "Data"
	}
	runes := []rune(raw)
	if len(runes) > 31 {
		runes = runes[:31]
	}
	return string(runes)
}
