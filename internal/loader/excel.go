package loader

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/crimson-sun/sawmill/internal/model"
)

func init() {
	a := &excelAdapter{}
	Register(".xlsx", a)
	Register(".xls", a)
}

// excelAdapter reads workbook files, trying a fixed strategy order until
// one yields a non-empty table.
type excelAdapter struct{}

func (a *excelAdapter) Load(path string) (*model.Table, error) {
	strategies := []struct {
		name string
		fn   func(string) (*model.Table, error)
	}{
		{"active sheet", readActiveSheet},
		{"first non-empty sheet", readFirstNonEmptySheet},
		{"conventional sheet name", readConventionalSheet},
		{"raw cell values", readRawValues},
		{"headerless", readHeaderless},
	}

	var lastErr error
	for _, s := range strategies {
		t, err := s.fn(path)
		if err != nil {
			slog.Debug("excel strategy failed", "strategy", s.name, "path", path, "error", err)
			lastErr = err
			continue
		}
		if t != nil && t.NumRows() > 0 {
			slog.Debug("excel strategy succeeded", "strategy", s.name, "rows", t.NumRows())
			return t, nil
		}
	}
	if lastErr != nil {
		return nil, fmt.Errorf("all excel strategies failed, last error: %w", lastErr)
	}
	return nil, errors.New("all excel strategies produced empty tables")
}

func readActiveSheet(path string) (*model.Table, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	sheet := f.GetSheetName(f.GetActiveSheetIndex())
	return sheetToTable(f, sheet, true)
}

func readFirstNonEmptySheet(path string) (*model.Table, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	for _, sheet := range f.GetSheetList() {
		t, err := sheetToTable(f, sheet, true)
		if err == nil && t.NumRows() > 0 {
			return t, nil
		}
	}
	return nil, errors.New("no non-empty sheet")
}

// conventionalSheetNames are tried in order after the file's own base name.
var conventionalSheetNames = []string{"Summary", "Data", "Sheet1", "Sheet 1", "Main"}

func readConventionalSheet(path string) (*model.Table, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	names := append([]string{base}, conventionalSheetNames...)
	for _, name := range names {
		t, err := sheetToTable(f, name, true)
		if err == nil && t.NumRows() > 0 {
			return t, nil
		}
	}
	return nil, errors.New("no conventional sheet name matched")
}

// readRawValues re-reads the active sheet with raw (unformatted) cell
// values, the analogue of switching parser engines when formatted reads
// mangle numerics.
func readRawValues(path string) (*model.Table, error) {
	f, err := excelize.OpenFile(path, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, err
	}
	defer f.Close()
	sheet := f.GetSheetName(f.GetActiveSheetIndex())
	return sheetToTable(f, sheet, true)
}

func readHeaderless(path string) (*model.Table, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	sheet := f.GetSheetName(f.GetActiveSheetIndex())
	return sheetToTable(f, sheet, false)
}

// sheetToTable converts one sheet to a table. With header=true the first
// row names the columns; otherwise synthetic column_N names are used and
// every row becomes data.
func sheetToTable(f *excelize.File, sheet string, header bool) (*model.Table, error) {
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, errors.New("empty sheet")
	}

	var cols []string
	var data [][]string
	if header {
		cols = rows[0]
		data = rows[1:]
	} else {
		width := 0
		for _, r := range rows {
			if len(r) > width {
				width = len(r)
			}
		}
		cols = make([]string, width)
		for i := range cols {
			cols[i] = fmt.Sprintf("column_%d", i)
		}
		data = rows
	}
	return tableFromRecords(cols, data), nil
}
