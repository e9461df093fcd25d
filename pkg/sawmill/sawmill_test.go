package sawmill

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

const sampleCSV = `date,status,responseTime,service,message,userUuid
2025-07-07,info,120,billing,,u1
2025-07-07,error,340,billing,Connection timed out after 30s,u2
2025-07-08,info,200,billing,,u1
`

func writeCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "logs.csv")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	return path
}

func TestAnalyzeFile(t *testing.T) {
	a, err := New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer a.Close()

	res, err := a.AnalyzeFile(context.Background(), writeCSV(t, sampleCSV))
	if err != nil {
		t.Fatalf("AnalyzeFile: %v", err)
	}

	if res.Service != "billing" {
		t.Errorf("service = %q, want billing", res.Service)
	}
	if res.Rows != 3 {
		t.Errorf("rows = %d, want 3", res.Rows)
	}
	if res.Status == nil || res.Status.Errors != 1 || res.Status.Success != 2 {
		t.Errorf("status = %+v", res.Status)
	}
	if res.ResponseTime == nil || res.ResponseTime.Count != 3 {
		t.Errorf("response time = %+v", res.ResponseTime)
	}
	if len(res.ErrorCategories) != 1 || res.ErrorCategories[0].Category != "Timeout Errors" {
		t.Errorf("categories = %+v", res.ErrorCategories)
	}
	if len(res.Daily) != 2 {
		t.Errorf("daily = %d days, want 2", len(res.Daily))
	}
}

func TestAnalyzeFileEmptyAfterCleaning(t *testing.T) {
	a, err := New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer a.Close()

	// Saturday rows only.
	path := writeCSV(t, "date,status,responseTime\n2025-07-05,info,120\n")
	if _, err := a.AnalyzeFile(context.Background(), path); err == nil {
		t.Error("expected an error when cleaning removes every row")
	}
}

func TestClassifyErrorKeywordPath(t *testing.T) {
	a, err := New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer a.Close()

	got := a.ClassifyError(context.Background(), "upstream 504 gateway timeout")
	if got.Category != "Timeout Errors" {
		t.Errorf("category = %q", got.Category)
	}
	if got.Confidence != 100 {
		t.Errorf("confidence = %v, want 100 for a keyword hit", got.Confidence)
	}
}

func TestClassifyErrorFallback(t *testing.T) {
	a, err := New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer a.Close()

	got := a.ClassifyError(context.Background(), "zzqx unmatched gibberish")
	if got.Category != "Other/Uncategorized Errors" {
		t.Errorf("category = %q, want the catch-all", got.Category)
	}
	if got.Confidence != 0 {
		t.Errorf("confidence = %v, want 0", got.Confidence)
	}
}

func TestLedgerPersistsAcrossAnalyzers(t *testing.T) {
	ledgerPath := filepath.Join(t.TempDir(), "ledger.json")

	a, err := New(WithLedgerFile(ledgerPath))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := a.AnalyzeFile(context.Background(), writeCSV(t, sampleCSV)); err != nil {
		t.Fatalf("AnalyzeFile: %v", err)
	}
	if err := a.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	if _, err := os.Stat(ledgerPath); err != nil {
		t.Errorf("ledger not written: %v", err)
	}
}

func TestWithMaxResponseTime(t *testing.T) {
	a, err := New(WithMaxResponseTime(150))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer a.Close()

	res, err := a.AnalyzeFile(context.Background(), writeCSV(t, sampleCSV))
	if err != nil {
		t.Fatalf("AnalyzeFile: %v", err)
	}
	if res.Rows != 1 {
		t.Errorf("rows = %d, want 1 under a 150 cutoff", res.Rows)
	}
}
