package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/crimson-sun/sawmill/internal/cleaner"
	"github.com/crimson-sun/sawmill/internal/metrics"
	"github.com/crimson-sun/sawmill/internal/model"
	"github.com/crimson-sun/sawmill/internal/output"
	"github.com/crimson-sun/sawmill/internal/roles"
)

// memOutput captures reports in memory.
type memOutput struct {
	reports []output.Report
	closed  bool
}

func (m *memOutput) Write(_ context.Context, r output.Report) error {
	m.reports = append(m.reports, r)
	return nil
}

func (m *memOutput) Close() error {
	m.closed = true
	return nil
}

const sampleCSV = `date,status,responseTime,service,message,userUuid
2025-07-07,info,120,Billing API,,u1
2025-07-07,error,340,Billing API,Connection timed out after 30s,u2
2025-07-08,info,200,Billing API,,u1
2025-07-08,info,80,Billing API,,u3
`

func writeCSV(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	return path
}

func TestRunEndToEnd(t *testing.T) {
	path := writeCSV(t, "billing.csv", sampleCSV)
	out := &memOutput{}
	p := New(metrics.NewEngine(nil), out)

	results := p.Run(context.Background(), []string{path})

	if len(results) != 1 {
		t.Fatalf("results = %d, want 1", len(results))
	}
	if results[0].Err != nil {
		t.Fatalf("file failed: %v", results[0].Err)
	}
	if results[0].Service != "billing_api" {
		t.Errorf("service = %q, want billing_api", results[0].Service)
	}

	if len(out.reports) != 1 {
		t.Fatalf("reports = %d, want 1", len(out.reports))
	}
	rep := out.reports[0]
	if rep.Bundle == nil || rep.Bundle.Status == nil {
		t.Fatal("report missing the status block")
	}
	if rep.Bundle.Status.Total != 4 {
		t.Errorf("status total = %d, want 4", rep.Bundle.Status.Total)
	}
	if rep.Cleaning == nil || rep.Cleaning.OriginalRows != 4 {
		t.Errorf("cleaning report = %+v", rep.Cleaning)
	}
	if len(rep.Bundle.Daily) != 2 {
		t.Errorf("daily snapshots = %d, want 2", len(rep.Bundle.Daily))
	}
}

func TestRunBadFileDoesNotAbortBatch(t *testing.T) {
	good := writeCSV(t, "good.csv", sampleCSV)
	bad := filepath.Join(t.TempDir(), "missing.csv")
	out := &memOutput{}
	p := New(metrics.NewEngine(nil), out)

	results := p.Run(context.Background(), []string{bad, good})

	if len(results) != 2 {
		t.Fatalf("results = %d, want 2", len(results))
	}
	if results[0].Err == nil {
		t.Error("missing file must fail")
	}
	if results[1].Err != nil {
		t.Errorf("good file failed: %v", results[1].Err)
	}
	if len(out.reports) != 1 {
		t.Errorf("reports = %d, want only the good file's", len(out.reports))
	}
}

func TestRunRejectsFullyFilteredFile(t *testing.T) {
	// Saturday rows only, all dropped by the weekend filter.
	path := writeCSV(t, "weekend.csv", `date,status,responseTime,service
2025-07-05,info,120,api
2025-07-05,error,340,api
`)
	out := &memOutput{}
	p := New(metrics.NewEngine(nil), out)

	results := p.Run(context.Background(), []string{path})

	if results[0].Err == nil {
		t.Error("expected a per-file error when cleaning removes every row")
	}
	if len(out.reports) != 0 {
		t.Errorf("reports = %d, want none", len(out.reports))
	}
}

func TestRunWithComparison(t *testing.T) {
	path := writeCSV(t, "billing.csv", sampleCSV)
	out := &memOutput{}
	p := New(metrics.NewEngine(nil), out, WithComparison("07/07", "08/07"))

	results := p.Run(context.Background(), []string{path})
	if results[0].Err != nil {
		t.Fatalf("file failed: %v", results[0].Err)
	}

	rep := out.reports[0]
	if rep.Comparison == nil {
		t.Fatal("comparison missing from report")
	}
	if rep.Comparison.DateA != "2025-07-07" || rep.Comparison.DateB != "2025-07-08" {
		t.Errorf("compared %q vs %q", rep.Comparison.DateA, rep.Comparison.DateB)
	}
	if rep.Comparison.Throughput.Before != 2 || rep.Comparison.Throughput.After != 2 {
		t.Errorf("throughput delta = %+v", rep.Comparison.Throughput)
	}
}

func TestRunComparisonFailureIsNotFatal(t *testing.T) {
	path := writeCSV(t, "billing.csv", sampleCSV)
	out := &memOutput{}
	p := New(metrics.NewEngine(nil), out, WithComparison("25/12", "26/12"))

	results := p.Run(context.Background(), []string{path})

	if results[0].Err != nil {
		t.Fatalf("a missing comparison day must not fail the file: %v", results[0].Err)
	}
	if len(out.reports) != 1 {
		t.Fatalf("reports = %d, want 1", len(out.reports))
	}
	if out.reports[0].Comparison != nil {
		t.Error("report carries a comparison for unavailable dates")
	}
}

func TestRunCancelledContext(t *testing.T) {
	path := writeCSV(t, "billing.csv", sampleCSV)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := New(metrics.NewEngine(nil), &memOutput{})
	results := p.Run(ctx, []string{path})

	if results[0].Err == nil {
		t.Error("cancelled context must fail remaining files")
	}
}

func TestRunWithCleanerOptions(t *testing.T) {
	path := writeCSV(t, "billing.csv", sampleCSV)
	out := &memOutput{}
	p := New(metrics.NewEngine(nil), out,
		WithCleanerOptions(cleaner.Options{MaxResponse: 150}))

	p.Run(context.Background(), []string{path})

	if len(out.reports) != 1 {
		t.Fatalf("reports = %d, want 1", len(out.reports))
	}
	if got := out.reports[0].Bundle.Status.Total; got != 2 {
		t.Errorf("rows surviving a 150 cutoff = %d, want 2", got)
	}
}

func TestServiceNameFallsBackToFileName(t *testing.T) {
	tbl := model.NewTable([]string{"status"})
	tbl.AppendRow([]any{"info"})

	got := serviceName(tbl, roles.Roles{}, "/data/My Export (1).csv")
	if got != "my_export_1" {
		t.Errorf("service = %q, want my_export_1", got)
	}
}

func TestNormalizeService(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Billing API", "billing_api"},
		{"  billing--api  ", "billing_api"},
		{"API", "api"},
		{"a.b.c", "a_b_c"},
	}
	for _, tt := range tests {
		if got := normalizeService(tt.in); got != tt.want {
			t.Errorf("normalizeService(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestCloseClosesOutput(t *testing.T) {
	out := &memOutput{}
	p := New(metrics.NewEngine(nil), out)
	if err := p.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if !out.closed {
		t.Error("output not closed")
	}
}
