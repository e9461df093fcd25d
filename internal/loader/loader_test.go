package loader

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/crimson-sun/sawmill/internal/model"
)

func writeFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	return path
}

func TestLoadUnsupportedExtension(t *testing.T) {
	_, err := Load("export.pdf")
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("err = %v, want ErrUnsupportedFormat", err)
	}
}

func TestLoadCSV(t *testing.T) {
	path := writeFile(t, "logs.csv", []byte("service,status\napi,info\napi,error\n"))

	tbl, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got := tbl.Columns; len(got) != 2 || got[0] != "service" || got[1] != "status" {
		t.Errorf("columns = %v", got)
	}
	if tbl.NumRows() != 2 {
		t.Errorf("rows = %d, want 2", tbl.NumRows())
	}
	if got := model.String(tbl.Cell(1, "status")); got != "error" {
		t.Errorf("cell = %q", got)
	}
}

func TestLoadCSVWithBOM(t *testing.T) {
	data := append([]byte{0xEF, 0xBB, 0xBF}, []byte("service,status\napi,info\n")...)
	path := writeFile(t, "logs.csv", data)

	tbl, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if tbl.Columns[0] != "service" {
		t.Errorf("first column = %q, BOM must be stripped", tbl.Columns[0])
	}
}

func TestLoadCSVLatin1Fallback(t *testing.T) {
	// 0xE9 is é in latin-1 and invalid UTF-8.
	data := []byte("service,status\ncaf\xe9,info\n")
	path := writeFile(t, "logs.csv", data)

	tbl, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got := model.String(tbl.Cell(0, "service")); got != "café" {
		t.Errorf("cell = %q, want latin-1 decoded text", got)
	}
}

func TestLoadTSV(t *testing.T) {
	path := writeFile(t, "logs.tsv", []byte("service\tstatus\napi\tinfo\n"))

	tbl, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if tbl.NumRows() != 1 || tbl.NumColumns() != 2 {
		t.Errorf("shape = %dx%d, want 1x2", tbl.NumRows(), tbl.NumColumns())
	}
}

func TestLoadCSVBlankCellsBecomeNil(t *testing.T) {
	path := writeFile(t, "logs.csv", []byte("a,b\n1,\n"))

	tbl, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got := tbl.Cell(0, "b"); got != nil {
		t.Errorf("blank cell = %v, want nil", got)
	}
}

func TestLoadCSVHeaderOnly(t *testing.T) {
	path := writeFile(t, "logs.csv", []byte("a,b\n"))

	_, err := Load(path)
	var loadErr *LoadError
	if !errors.As(err, &loadErr) {
		t.Errorf("err = %v, want *LoadError for a rowless file", err)
	}
}

func TestLoadJSONArray(t *testing.T) {
	path := writeFile(t, "logs.json", []byte(`[
  {"service": "api", "status": "info"},
  {"service": "api", "status": "error", "message": "boom"}
]`))

	tbl, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if tbl.NumRows() != 2 {
		t.Errorf("rows = %d, want 2", tbl.NumRows())
	}
	if tbl.ColumnIndex("message") < 0 {
		t.Error("late-appearing key must become a column")
	}
	if got := tbl.Cell(0, "message"); got != nil {
		t.Errorf("missing cell = %v, want nil", got)
	}
}

func TestLoadJSONWrappedRecords(t *testing.T) {
	for _, key := range []string{"data", "records", "results"} {
		t.Run(key, func(t *testing.T) {
			path := writeFile(t, "logs.json",
				[]byte(`{"`+key+`": [{"service": "api"}]}`))

			tbl, err := Load(path)
			if err != nil {
				t.Fatalf("Load: %v", err)
			}
			if tbl.NumRows() != 1 {
				t.Errorf("rows = %d, want 1", tbl.NumRows())
			}
		})
	}
}

func TestLoadJSONColumnar(t *testing.T) {
	path := writeFile(t, "logs.json",
		[]byte(`{"service": ["api", "web"], "status": ["info"]}`))

	tbl, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if tbl.NumRows() != 2 {
		t.Errorf("rows = %d, want the longest column's height", tbl.NumRows())
	}
	if got := tbl.Cell(1, "status"); got != nil {
		t.Errorf("padded cell = %v, want nil", got)
	}
}

func TestLoadJSONSingleRecord(t *testing.T) {
	path := writeFile(t, "logs.json", []byte(`{"service": "api", "status": "info"}`))

	tbl, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if tbl.NumRows() != 1 {
		t.Errorf("rows = %d, want 1", tbl.NumRows())
	}
}

func TestLoadJSONScalar(t *testing.T) {
	path := writeFile(t, "logs.json", []byte(`42`))

	if _, err := Load(path); err == nil {
		t.Error("expected an error for a scalar document")
	}
}

func TestLoadExcel(t *testing.T) {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	f.SetCellValue(sheet, "A1", "service")
	f.SetCellValue(sheet, "B1", "status")
	f.SetCellValue(sheet, "A2", "api")
	f.SetCellValue(sheet, "B2", "info")

	path := filepath.Join(t.TempDir(), "logs.xlsx")
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("save fixture: %v", err)
	}
	f.Close()

	tbl, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if tbl.NumRows() != 1 {
		t.Errorf("rows = %d, want 1", tbl.NumRows())
	}
	if got := model.String(tbl.Cell(0, "service")); got != "api" {
		t.Errorf("cell = %q", got)
	}
}

func TestLoadExcelEmptyWorkbook(t *testing.T) {
	f := excelize.NewFile()
	path := filepath.Join(t.TempDir(), "logs.xlsx")
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("save fixture: %v", err)
	}
	f.Close()

	var loadErr *LoadError
	if _, err := Load(path); !errors.As(err, &loadErr) {
		t.Errorf("err = %v, want *LoadError", err)
	}
}

func TestLoadParquetCorruptFile(t *testing.T) {
	path := writeFile(t, "logs.parquet", []byte("not a parquet file"))

	var loadErr *LoadError
	if _, err := Load(path); !errors.As(err, &loadErr) {
		t.Errorf("err = %v, want *LoadError", err)
	}
}

func TestSupportedFormats(t *testing.T) {
	got := SupportedFormats()
	want := map[string]bool{
		".csv": true, ".tsv": true, ".json": true,
		".xlsx": true, ".xls": true, ".parquet": true,
	}
	if len(got) != len(want) {
		t.Fatalf("formats = %v", got)
	}
	for _, ext := range got {
		if !want[ext] {
			t.Errorf("unexpected format %q", ext)
		}
	}
}
