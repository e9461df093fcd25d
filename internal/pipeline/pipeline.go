// Package pipeline connects the loader, cleaner, metrics engine, and
// report outputs into the per-file batch analysis flow.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/crimson-sun/sawmill/internal/cleaner"
	"github.com/crimson-sun/sawmill/internal/compare"
	"github.com/crimson-sun/sawmill/internal/loader"
	"github.com/crimson-sun/sawmill/internal/metrics"
	"github.com/crimson-sun/sawmill/internal/model"
	"github.com/crimson-sun/sawmill/internal/output"
	"github.com/crimson-sun/sawmill/internal/roles"
)

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithCleanerOptions overrides the default cleaning bounds.
func WithCleanerOptions(opts cleaner.Options) Option {
	return func(p *Pipeline) { p.cleanOpts = opts }
}

// WithComparison requests a day-over-day comparison between the two date
// tokens (full ISO dates or dd/mm forms) for every analyzed file.
func WithComparison(dateA, dateB string) Option {
	return func(p *Pipeline) {
		p.compareA = dateA
		p.compareB = dateB
	}
}

// Pipeline analyzes source files one at a time: load, detect roles,
// clean, aggregate, and deliver one report per file. Files are fully
// independent; no state is shared between them.
type Pipeline struct {
	engine *metrics.Engine
	out    output.Output

	cleanOpts cleaner.Options
	compareA  string
	compareB  string
}

// New creates a Pipeline from the given components.
func New(eng *metrics.Engine, out output.Output, opts ...Option) *Pipeline {
	p := &Pipeline{engine: eng, out: out}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// FileResult records the outcome for one source file.
type FileResult struct {
	Path    string
	Service string
	Err     error
}

// Run analyzes every path in order. A failure on one file is recorded
// in its result and does not stop the rest of the batch.
func (p *Pipeline) Run(ctx context.Context, paths []string) []FileResult {
	results := make([]FileResult, 0, len(paths))
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			results = append(results, FileResult{Path: path, Err: err})
			continue
		}
		service, err := p.processFile(ctx, path)
		if err != nil {
			slog.Error("analysis failed", "path", path, "error", err)
		} else {
			slog.Info("analysis complete", "path", path, "service", service)
		}
		results = append(results, FileResult{Path: path, Service: service, Err: err})
	}
	return results
}

// processFile runs the full flow for one source file and returns the
// derived service display name.
func (p *Pipeline) processFile(ctx context.Context, path string) (string, error) {
	table, err := loader.Load(path)
	if err != nil {
		return "", err
	}

	bound := roles.Detect(table)
	cleaned, report := cleaner.CleanWith(table, bound, p.cleanOpts)
	if cleaned.NumRows() == 0 {
		return "", fmt.Errorf("%s: no usable rows after cleaning (%d raw rows)", path, report.OriginalRows)
	}

	service := serviceName(cleaned, bound, path)
	bundle := p.engine.Compute(ctx, cleaned, bound)
	bundle.Service = service

	rep := output.Report{
		Service:    service,
		SourcePath: path,
		Generated:  time.Now(),
		Bundle:     bundle,
		Cleaning:   report,
	}

	if p.compareA != "" && p.compareB != "" {
		cmp, err := p.buildComparison(bundle)
		if err != nil {
			// A missing day is a request problem, not a data problem;
			// the report is still produced without the comparison.
			slog.Warn("day-over-day comparison skipped", "path", path, "error", err)
		} else {
			rep.Comparison = cmp
		}
	}

	if err := p.out.Write(ctx, rep); err != nil {
		return service, fmt.Errorf("write report for %s: %w", path, err)
	}
	return service, nil
}

func (p *Pipeline) buildComparison(bundle *model.MetricsBundle) (*compare.Comparison, error) {
	available := make([]string, 0, len(bundle.Daily))
	for _, d := range bundle.Daily {
		available = append(available, d.Date)
	}
	dateA, dateB, err := compare.ResolveDatePair(p.compareA, p.compareB, available)
	if err != nil {
		return nil, err
	}
	snapA, okA := bundle.Day(dateA)
	snapB, okB := bundle.Day(dateB)
	if !okA || !okB {
		return nil, errors.New("resolved dates missing from daily snapshots")
	}
	cmp := compare.Compare(snapA, snapB)
	return &cmp, nil
}

// serviceName derives the report's service display name: the most
// frequent non-blank service tag, else the file's base name. The result
// is normalized for use in file names.
func serviceName(t *model.Table, r roles.Roles, path string) string {
	name := mostCommonService(t, r)
	if name == "" {
		base := filepath.Base(path)
		name = strings.TrimSuffix(base, filepath.Ext(base))
	}
	return normalizeService(name)
}

func mostCommonService(t *model.Table, r roles.Roles) string {
	col := r.Column(roles.Service)
	if col == "" {
		return ""
	}
	idx := t.ColumnIndex(col)
	if idx < 0 {
		return ""
	}
	counts := map[string]int{}
	best, bestN := "", 0
	for _, row := range t.Rows {
		v := strings.TrimSpace(model.String(row[idx]))
		if v == "" {
			continue
		}
		counts[v]++
		if counts[v] > bestN {
			best, bestN = v, counts[v]
		}
	}
	return best
}

// normalizeService lower-cases the name and collapses every separator
// run into a single underscore.
func normalizeService(name string) string {
	var b strings.Builder
	lastUnderscore := false
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastUnderscore = false
		default:
			if !lastUnderscore && b.Len() > 0 {
				b.WriteByte('_')
				lastUnderscore = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "_")
}

// Close shuts down the report output.
func (p *Pipeline) Close() error {
	return p.out.Close()
}
