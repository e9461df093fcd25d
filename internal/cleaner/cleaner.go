// Package cleaner normalizes a loaded table under the fixed business
// rules: drop dead columns, require a service tag, parse dates, keep
// weekdays only, restrict status values, clip response-time outliers,
// and derive the effective mode. Each step replaces the table rather
// than mutating it, so cleaning an already-clean table is a no-op.
package cleaner

import (
	"strings"
	"time"

	"github.com/crimson-sun/sawmill/internal/model"
	"github.com/crimson-sun/sawmill/internal/roles"
)

// Derived column names appended by the cleaner.
const (
	FormattedDateColumn = "formatted_date"
	EffectiveModeColumn = "effective_mode"
)

// Effective-mode constants: requests tagged with the auto-mode sentinel
// resolve to their redirect target when it is one of the allowed targets,
// otherwise to the unresolved marker.
const (
	AutoModeSentinel = 11
	UnresolvedMode   = 0
)

var allowedRedirects = map[int]bool{2: true, 7: true}

// Options tunes cleaning bounds without changing step semantics.
type Options struct {
	// MaxResponse is the upper outlier bound for the response-time
	// filter. Zero means the default of 2000.
	MaxResponse float64
}

const defaultMaxResponse = 2000

// StepReport records what one cleaning step removed.
type StepReport struct {
	Step           string `json:"step"`
	RowsRemoved    int    `json:"rows_removed"`
	ColumnsRemoved int    `json:"columns_removed"`
}

// Report summarizes a cleaning pass. It is observability output only;
// no later stage reads it.
type Report struct {
	OriginalRows    int          `json:"original_rows"`
	OriginalColumns int          `json:"original_columns"`
	FinalRows       int          `json:"final_rows"`
	FinalColumns    int          `json:"final_columns"`
	Steps           []StepReport `json:"steps"`
}

func (r *Report) record(step string, rowsBefore, rowsAfter, colsBefore, colsAfter int) {
	r.Steps = append(r.Steps, StepReport{
		Step:           step,
		RowsRemoved:    rowsBefore - rowsAfter,
		ColumnsRemoved: colsBefore - colsAfter,
	})
}

// Clean runs the full step sequence with default options.
func Clean(t *model.Table, r roles.Roles) (*model.Table, *Report) {
	return CleanWith(t, r, Options{})
}

// CleanWith runs the ordered cleaning steps. Steps whose role column is
// not bound are skipped silently: source files vary in which columns they
// export, and a missing optional column is not an error. The input table
// is never modified.
func CleanWith(t *model.Table, r roles.Roles, opts Options) (*model.Table, *Report) {
	if opts.MaxResponse <= 0 {
		opts.MaxResponse = defaultMaxResponse
	}

	report := &Report{
		OriginalRows:    t.NumRows(),
		OriginalColumns: t.NumColumns(),
	}

	cur := dropNullColumns(t, report)
	cur = dropBlankService(cur, r, report)
	cur = parseDates(cur, r, report)
	cur = dropWeekends(cur, r, report)
	cur = filterStatus(cur, r, report)
	cur = filterResponseTime(cur, r, opts.MaxResponse, report)
	cur = deriveEffectiveMode(cur, r, report)

	report.FinalRows = cur.NumRows()
	report.FinalColumns = cur.NumColumns()
	return cur, report
}

// dropNullColumns removes every column whose cells are all missing.
func dropNullColumns(t *model.Table, report *Report) *model.Table {
	keep := make([]int, 0, len(t.Columns))
	for i := range t.Columns {
		for _, row := range t.Rows {
			if i < len(row) && !model.IsMissing(row[i]) {
				keep = append(keep, i)
				break
			}
		}
	}

	out := model.NewTable(selectStrings(t.Columns, keep))
	for _, row := range t.Rows {
		cells := make([]any, len(keep))
		for j, i := range keep {
			if i < len(row) {
				cells[j] = row[i]
			}
		}
		out.Rows = append(out.Rows, cells)
	}
	report.record("drop_null_columns", t.NumRows(), out.NumRows(), t.NumColumns(), out.NumColumns())
	return out
}

// dropBlankService trims the service tag and removes rows without one.
// The tag routes bundles to their report, so a row that cannot be routed
// is excluded rather than guessed at.
func dropBlankService(t *model.Table, r roles.Roles, report *Report) *model.Table {
	col := r.Column(roles.Service)
	idx := t.ColumnIndex(col)
	if idx < 0 {
		return t
	}

	out := model.NewTable(t.Columns)
	for _, row := range t.Rows {
		svc := strings.TrimSpace(model.String(row[idx]))
		if svc == "" {
			continue
		}
		cells := cloneRow(row)
		cells[idx] = svc
		out.Rows = append(out.Rows, cells)
	}
	report.record("drop_blank_service", t.NumRows(), out.NumRows(), t.NumColumns(), out.NumColumns())
	return out
}

// parseDates converts the date column to time.Time cells, drops rows
// whose value does not parse, and writes the YYYY-MM-DD display column.
func parseDates(t *model.Table, r roles.Roles, report *Report) *model.Table {
	col := r.Column(roles.Date)
	idx := t.ColumnIndex(col)
	if idx < 0 {
		return t
	}

	out, fmtIdx := withDerivedColumn(t, FormattedDateColumn)
	for _, row := range t.Rows {
		ts, ok := parseTimestamp(row[idx])
		if !ok {
			continue
		}
		cells := make([]any, len(out.Columns))
		copy(cells, row)
		cells[idx] = ts
		cells[fmtIdx] = ts.Format("2006-01-02")
		out.Rows = append(out.Rows, cells)
	}
	report.record("parse_dates", t.NumRows(), out.NumRows(), t.NumColumns(), out.NumColumns())
	return out
}

// dropWeekends keeps Monday through Friday only.
func dropWeekends(t *model.Table, r roles.Roles, report *Report) *model.Table {
	col := r.Column(roles.Date)
	idx := t.ColumnIndex(col)
	if idx < 0 {
		return t
	}

	out := model.NewTable(t.Columns)
	for _, row := range t.Rows {
		ts, ok := row[idx].(time.Time)
		if !ok {
			continue
		}
		if wd := ts.Weekday(); wd == time.Saturday || wd == time.Sunday {
			continue
		}
		out.Rows = append(out.Rows, cloneRow(row))
	}
	report.record("drop_weekends", t.NumRows(), out.NumRows(), t.NumColumns(), out.NumColumns())
	return out
}

// filterStatus keeps rows whose trimmed, lower-cased status is exactly
// "info" or "error". Everything else is noise.
func filterStatus(t *model.Table, r roles.Roles, report *Report) *model.Table {
	col := r.Column(roles.Status)
	idx := t.ColumnIndex(col)
	if idx < 0 {
		return t
	}

	out := model.NewTable(t.Columns)
	for _, row := range t.Rows {
		s := strings.ToLower(strings.TrimSpace(model.String(row[idx])))
		if s != "info" && s != "error" {
			continue
		}
		out.Rows = append(out.Rows, cloneRow(row))
	}
	report.record("filter_status", t.NumRows(), out.NumRows(), t.NumColumns(), out.NumColumns())
	return out
}

// filterResponseTime coerces the response-time column to numeric and
// drops rows where the value is missing, negative, or above the bound.
func filterResponseTime(t *model.Table, r roles.Roles, maxResponse float64, report *Report) *model.Table {
	col := r.Column(roles.ResponseTime)
	idx := t.ColumnIndex(col)
	if idx < 0 {
		return t
	}

	out := model.NewTable(t.Columns)
	for _, row := range t.Rows {
		v, ok := model.Float(row[idx])
		if !ok || v < 0 || v > maxResponse {
			continue
		}
		cells := cloneRow(row)
		cells[idx] = v
		out.Rows = append(out.Rows, cells)
	}
	report.record("filter_response_time", t.NumRows(), out.NumRows(), t.NumColumns(), out.NumColumns())
	return out
}

// deriveEffectiveMode computes the effective_mode column when a request
// mode role is bound. Rows are never removed here; rows whose mode does
// not parse get a nil cell.
func deriveEffectiveMode(t *model.Table, r roles.Roles, report *Report) *model.Table {
	reqCol := r.Column(roles.RequestMode)
	reqIdx := t.ColumnIndex(reqCol)
	if reqIdx < 0 {
		return t
	}
	redirIdx := t.ColumnIndex(r.Column(roles.RedirectedMode))

	out, modeIdx := withDerivedColumn(t, EffectiveModeColumn)
	for _, row := range t.Rows {
		cells := make([]any, len(out.Columns))
		copy(cells, row)
		if rm, ok := model.Int(row[reqIdx]); ok {
			cells[modeIdx] = int64(effectiveMode(rm, row, redirIdx))
		} else {
			cells[modeIdx] = nil
		}
		out.Rows = append(out.Rows, cells)
	}
	report.record("derive_effective_mode", t.NumRows(), out.NumRows(), t.NumColumns(), out.NumColumns())
	return out
}

func effectiveMode(requestMode int, row []any, redirIdx int) int {
	if requestMode != AutoModeSentinel {
		return requestMode
	}
	if redirIdx >= 0 && redirIdx < len(row) {
		if rd, ok := model.Int(row[redirIdx]); ok && allowedRedirects[rd] {
			return rd
		}
	}
	return UnresolvedMode
}

// withDerivedColumn returns an empty table with the derived column
// appended, or reusing its existing position so repeated cleaning does
// not accumulate duplicates.
func withDerivedColumn(t *model.Table, name string) (*model.Table, int) {
	if idx := t.ColumnIndex(name); idx >= 0 {
		return model.NewTable(t.Columns), idx
	}
	cols := make([]string, 0, len(t.Columns)+1)
	cols = append(cols, t.Columns...)
	cols = append(cols, name)
	return model.NewTable(cols), len(cols) - 1
}

// timestampLayouts covers the formats seen in log exports. Ordered from
// most to least specific.
var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05.999999",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02T15:04:05",
	"2006-01-02",
	"2006/01/02 15:04:05",
	"2006/01/02",
	"02/01/2006 15:04:05",
	"02/01/2006",
	"Jan 2, 2006 15:04:05",
	"Jan 2, 2006",
}

func parseTimestamp(cell any) (time.Time, bool) {
	switch v := cell.(type) {
	case time.Time:
		return v, true
	case string:
		s := strings.TrimSpace(v)
		if s == "" {
			return time.Time{}, false
		}
		for _, layout := range timestampLayouts {
			if ts, err := time.Parse(layout, s); err == nil {
				return ts, true
			}
		}
		return time.Time{}, false
	default:
		return time.Time{}, false
	}
}

func cloneRow(row []any) []any {
	out := make([]any, len(row))
	copy(out, row)
	return out
}

func selectStrings(all []string, idx []int) []string {
	out := make([]string, len(idx))
	for j, i := range idx {
		out[j] = all[i]
	}
	return out
}
