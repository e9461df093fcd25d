// Package metrics computes the full aggregate catalogue over a cleaned
// table: scalar blocks, the error taxonomy, grouped breakdowns, and
// per-day snapshots. Blocks whose column role is absent are omitted
// rather than treated as errors.
package metrics

import (
	"context"
	"log/slog"
	"sort"
	"strings"

	"github.com/crimson-sun/sawmill/internal/classifier"
	"github.com/crimson-sun/sawmill/internal/cleaner"
	"github.com/crimson-sun/sawmill/internal/model"
	"github.com/crimson-sun/sawmill/internal/roles"
)

// Categorizer resolves a batch of error messages to categories. It is
// the only collaborator the engine calls out to.
type Categorizer interface {
	ClassifyBatch(ctx context.Context, messages []string) classifier.BatchResult
}

// Engine aggregates cleaned tables into MetricsBundles.
type Engine struct {
	categorizer Categorizer
}

// NewEngine creates an Engine. categorizer may be nil, in which case the
// error-category block is omitted from every bundle.
func NewEngine(categorizer Categorizer) *Engine {
	return &Engine{categorizer: categorizer}
}

const (
	statusInfo  = "info"
	statusError = "error"
)

// Compute builds the bundle for one cleaned table. Cells that fail
// numeric coercion are dropped from their aggregate, never zeroed.
func (e *Engine) Compute(ctx context.Context, t *model.Table, r roles.Roles) *model.MetricsBundle {
	b := &model.MetricsBundle{}

	e.computeStatus(t, r, b)
	e.computeScalars(t, r, b)
	e.computeTaxonomy(ctx, t, r, b)
	e.computeGrouped(t, r, b)
	e.computeDaily(t, r, b)

	return b
}

func (e *Engine) computeStatus(t *model.Table, r roles.Roles, b *model.MetricsBundle) {
	idx := columnFor(t, r, roles.Status)
	if idx < 0 {
		return
	}

	block := &model.StatusBlock{}
	for _, row := range t.Rows {
		switch normalizeStatus(row[idx]) {
		case statusInfo:
			block.Success++
		case statusError:
			block.Errors++
		default:
			continue
		}
		block.Total++
	}
	if block.Total > 0 {
		block.SuccessRate = float64(block.Success) / float64(block.Total) * 100
		block.ErrorRate = float64(block.Errors) / float64(block.Total) * 100
	}
	b.Status = block
}

func (e *Engine) computeScalars(t *model.Table, r roles.Roles, b *model.MetricsBundle) {
	if idx := columnFor(t, r, roles.ResponseTime); idx >= 0 {
		if values := numericColumn(t, t.Columns[idx]); len(values) > 0 {
			s := computeStats(values)
			b.ResponseTime = &s
		}
	}
	if idx := columnFor(t, r, roles.LLMCost); idx >= 0 {
		if values := numericColumn(t, t.Columns[idx]); len(values) > 0 {
			s := computeCostStats(values)
			b.LLMCost = &s
		}
	}
}

// computeTaxonomy builds the error-message frequency table, classifies
// each distinct message, and sums message counts per category. The
// message table is the authoritative source: a category total that
// disagrees with it is recomputed from the messages and the discrepancy
// recorded for audit.
func (e *Engine) computeTaxonomy(ctx context.Context, t *model.Table, r roles.Roles, b *model.MetricsBundle) {
	statusIdx := columnFor(t, r, roles.Status)
	msgIdx := columnFor(t, r, roles.Message)
	if statusIdx < 0 || msgIdx < 0 {
		return
	}

	var messages []string
	for _, row := range t.Rows {
		if normalizeStatus(row[statusIdx]) != statusError {
			continue
		}
		messages = append(messages, model.String(row[msgIdx]))
	}
	if len(messages) == 0 {
		return
	}

	msgCounts := map[string]int{}
	var order []string
	for _, m := range messages {
		if msgCounts[m] == 0 {
			order = append(order, m)
		}
		msgCounts[m]++
	}
	sort.SliceStable(order, func(i, j int) bool {
		if msgCounts[order[i]] != msgCounts[order[j]] {
			return msgCounts[order[i]] > msgCounts[order[j]]
		}
		return order[i] < order[j]
	})
	b.ErrorMessages = make([]model.MessageCount, 0, len(order))
	for _, m := range order {
		b.ErrorMessages = append(b.ErrorMessages, model.MessageCount{Message: m, Count: msgCounts[m]})
	}

	if e.categorizer == nil {
		return
	}

	batch := e.categorizer.ClassifyBatch(ctx, messages)

	categoryTotal := 0
	for _, n := range batch.Counts {
		categoryTotal += n
	}
	audit := &model.CategoryAudit{
		ErrorRows:     len(messages),
		MessageTotal:  len(messages),
		CategoryTotal: categoryTotal,
		Discrepancy:   categoryTotal - len(messages),
	}

	counts := batch.Counts
	if categoryTotal != len(messages) {
		// Reconcile: re-credit every occurrence from the per-message map.
		slog.Warn("category totals disagree with message totals, reconciling",
			"categories", categoryTotal, "messages", len(messages))
		counts = map[model.ErrorCategory]int{}
		for m, n := range msgCounts {
			cat, ok := batch.PerMessage[m]
			if !ok {
				cat = model.CategoryUncategorized
			}
			counts[cat] += n
		}
		audit.Reconciled = true
	}

	b.ErrorCategories = make([]model.CategoryCount, 0, len(counts))
	for cat, n := range counts {
		b.ErrorCategories = append(b.ErrorCategories, model.CategoryCount{Category: cat, Count: n})
	}
	sort.Slice(b.ErrorCategories, func(i, j int) bool {
		if b.ErrorCategories[i].Count != b.ErrorCategories[j].Count {
			return b.ErrorCategories[i].Count > b.ErrorCategories[j].Count
		}
		return b.ErrorCategories[i].Category < b.ErrorCategories[j].Category
	})
	b.CategoryAudit = audit
}

// group collects the row indices for one grouped-by key.
type group struct {
	rows []int
}

func (e *Engine) computeGrouped(t *model.Table, r roles.Roles, b *model.MetricsBundle) {
	procIdx := columnFor(t, r, roles.ProcessName)
	modeIdx := t.ColumnIndex(cleaner.EffectiveModeColumn)
	rtIdx := columnFor(t, r, roles.ResponseTime)
	costIdx := columnFor(t, r, roles.LLMCost)
	statusIdx := columnFor(t, r, roles.Status)

	if procIdx >= 0 {
		groups, keys := groupByString(t, procIdx)
		b.ResponseTimeByProcess = processStatsRows(t, rtIdx, groups, keys)
		b.LLMCostByProcess = processCostRows(t, costIdx, groups, keys)
		b.FailureByProcess = processFailureRows(t, statusIdx, groups, keys)
	}

	if modeIdx >= 0 {
		groups, ids := groupByMode(t, modeIdx)
		b.ResponseTimeByMode = modeStatsRows(t, rtIdx, groups, ids)
		b.LLMCostByMode = modeCostRows(t, costIdx, groups, ids)
		b.FailureByMode = modeFailureRows(t, statusIdx, groups, ids)
	}

	if procIdx >= 0 && modeIdx >= 0 {
		groups, keys := groupByProcessMode(t, procIdx, modeIdx)
		b.ResponseTimeByProcessMode = processModeStatsRows(t, rtIdx, groups, keys)
		b.LLMCostByProcessMode = processModeCostRows(t, costIdx, groups, keys)
		b.FailureByProcessMode = processModeFailureRows(t, statusIdx, groups, keys)
	}
}

func groupByString(t *model.Table, keyIdx int) (map[string]*group, []string) {
	groups := map[string]*group{}
	var keys []string
	for i, row := range t.Rows {
		key := strings.TrimSpace(model.String(row[keyIdx]))
		if key == "" {
			continue
		}
		g, ok := groups[key]
		if !ok {
			g = &group{}
			groups[key] = g
			keys = append(keys, key)
		}
		g.rows = append(g.rows, i)
	}
	sort.Strings(keys)
	return groups, keys
}

func groupByMode(t *model.Table, modeIdx int) (map[int]*group, []int) {
	groups := map[int]*group{}
	var ids []int
	for i, row := range t.Rows {
		id, ok := model.Int(row[modeIdx])
		if !ok {
			continue
		}
		g, exists := groups[id]
		if !exists {
			g = &group{}
			groups[id] = g
			ids = append(ids, id)
		}
		g.rows = append(g.rows, i)
	}
	sort.Ints(ids)
	return groups, ids
}

type procMode struct {
	process string
	mode    int
}

func groupByProcessMode(t *model.Table, procIdx, modeIdx int) (map[procMode]*group, []procMode) {
	groups := map[procMode]*group{}
	var keys []procMode
	for i, row := range t.Rows {
		process := strings.TrimSpace(model.String(row[procIdx]))
		mode, ok := model.Int(row[modeIdx])
		if process == "" || !ok {
			continue
		}
		key := procMode{process: process, mode: mode}
		g, exists := groups[key]
		if !exists {
			g = &group{}
			groups[key] = g
			keys = append(keys, key)
		}
		g.rows = append(g.rows, i)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].process != keys[j].process {
			return keys[i].process < keys[j].process
		}
		return keys[i].mode < keys[j].mode
	})
	return groups, keys
}

func groupValues(t *model.Table, valueIdx int, g *group) []float64 {
	var out []float64
	for _, ri := range g.rows {
		if v, ok := model.Float(t.Rows[ri][valueIdx]); ok {
			out = append(out, v)
		}
	}
	return out
}

func groupFailure(t *model.Table, statusIdx int, g *group) (errors, infos int) {
	for _, ri := range g.rows {
		switch normalizeStatus(t.Rows[ri][statusIdx]) {
		case statusError:
			errors++
		case statusInfo:
			infos++
		}
	}
	return errors, infos
}

func processStatsRows(t *model.Table, rtIdx int, groups map[string]*group, keys []string) []model.ProcessStats {
	if rtIdx < 0 {
		return nil
	}
	out := make([]model.ProcessStats, 0, len(keys))
	for _, key := range keys {
		values := groupValues(t, rtIdx, groups[key])
		if len(values) == 0 {
			continue
		}
		out = append(out, model.ProcessStats{Process: key, Stats: computeStats(values)})
	}
	// Fastest processes first.
	sort.SliceStable(out, func(i, j int) bool { return out[i].Mean < out[j].Mean })
	return out
}

func processCostRows(t *model.Table, costIdx int, groups map[string]*group, keys []string) []model.ProcessCost {
	if costIdx < 0 {
		return nil
	}
	out := make([]model.ProcessCost, 0, len(keys))
	for _, key := range keys {
		values := groupValues(t, costIdx, groups[key])
		if len(values) == 0 {
			continue
		}
		out = append(out, model.ProcessCost{Process: key, CostStats: computeCostStats(values)})
	}
	// Biggest spenders first.
	sort.SliceStable(out, func(i, j int) bool { return out[i].Total > out[j].Total })
	return out
}

func processFailureRows(t *model.Table, statusIdx int, groups map[string]*group, keys []string) []model.ProcessFailure {
	if statusIdx < 0 {
		return nil
	}
	out := make([]model.ProcessFailure, 0, len(keys))
	for _, key := range keys {
		errors, infos := groupFailure(t, statusIdx, groups[key])
		total := errors + infos
		row := model.ProcessFailure{Process: key, Errors: errors, Infos: infos, Total: total}
		if total > 0 {
			row.FailurePct = float64(errors) / float64(total) * 100
		}
		out = append(out, row)
	}
	return out
}

func modeStatsRows(t *model.Table, rtIdx int, groups map[int]*group, ids []int) []model.ModeStats {
	if rtIdx < 0 {
		return nil
	}
	out := make([]model.ModeStats, 0, len(ids))
	for _, id := range ids {
		values := groupValues(t, rtIdx, groups[id])
		if len(values) == 0 {
			continue
		}
		out = append(out, model.ModeStats{Mode: id, ModeName: ModeName(id), Stats: computeStats(values)})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Mean < out[j].Mean })
	return out
}

func modeCostRows(t *model.Table, costIdx int, groups map[int]*group, ids []int) []model.ModeCost {
	if costIdx < 0 {
		return nil
	}
	out := make([]model.ModeCost, 0, len(ids))
	for _, id := range ids {
		values := groupValues(t, costIdx, groups[id])
		if len(values) == 0 {
			continue
		}
		out = append(out, model.ModeCost{Mode: id, ModeName: ModeName(id), CostStats: computeCostStats(values)})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Total > out[j].Total })
	return out
}

func modeFailureRows(t *model.Table, statusIdx int, groups map[int]*group, ids []int) []model.ModeFailure {
	if statusIdx < 0 {
		return nil
	}
	out := make([]model.ModeFailure, 0, len(ids))
	for _, id := range ids {
		errors, infos := groupFailure(t, statusIdx, groups[id])
		total := errors + infos
		row := model.ModeFailure{Mode: id, ModeName: ModeName(id), Errors: errors, Infos: infos, Total: total}
		if total > 0 {
			row.FailurePct = float64(errors) / float64(total) * 100
		}
		out = append(out, row)
	}
	return out
}

func processModeStatsRows(t *model.Table, rtIdx int, groups map[procMode]*group, keys []procMode) []model.ProcessModeStats {
	if rtIdx < 0 {
		return nil
	}
	out := make([]model.ProcessModeStats, 0, len(keys))
	for _, key := range keys {
		values := groupValues(t, rtIdx, groups[key])
		if len(values) == 0 {
			continue
		}
		out = append(out, model.ProcessModeStats{Process: key.process, Mode: key.mode, Stats: computeStats(values)})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Mean < out[j].Mean })
	return out
}

func processModeCostRows(t *model.Table, costIdx int, groups map[procMode]*group, keys []procMode) []model.ProcessModeCost {
	if costIdx < 0 {
		return nil
	}
	out := make([]model.ProcessModeCost, 0, len(keys))
	for _, key := range keys {
		values := groupValues(t, costIdx, groups[key])
		if len(values) == 0 {
			continue
		}
		out = append(out, model.ProcessModeCost{Process: key.process, Mode: key.mode, CostStats: computeCostStats(values)})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Total > out[j].Total })
	return out
}

func processModeFailureRows(t *model.Table, statusIdx int, groups map[procMode]*group, keys []procMode) []model.ProcessModeFailure {
	if statusIdx < 0 {
		return nil
	}
	out := make([]model.ProcessModeFailure, 0, len(keys))
	for _, key := range keys {
		errors, infos := groupFailure(t, statusIdx, groups[key])
		total := errors + infos
		row := model.ProcessModeFailure{Process: key.process, Mode: key.mode, Errors: errors, Infos: infos, Total: total}
		if total > 0 {
			row.FailurePct = float64(errors) / float64(total) * 100
		}
		out = append(out, row)
	}
	return out
}

// computeDaily builds one snapshot per distinct formatted date, sorted
// ascending. Requires the cleaner's derived date column.
func (e *Engine) computeDaily(t *model.Table, r roles.Roles, b *model.MetricsBundle) {
	dateIdx := t.ColumnIndex(cleaner.FormattedDateColumn)
	if dateIdx < 0 {
		return
	}
	rtIdx := columnFor(t, r, roles.ResponseTime)
	costIdx := columnFor(t, r, roles.LLMCost)
	userIdx := columnFor(t, r, roles.UserID)
	statusIdx := columnFor(t, r, roles.Status)

	type dayAgg struct {
		requests int
		users    map[string]struct{}
		rt       []float64
		cost     float64
		success  int
		statused int
	}
	days := map[string]*dayAgg{}
	var order []string

	for _, row := range t.Rows {
		date := model.String(row[dateIdx])
		if date == "" {
			continue
		}
		agg, ok := days[date]
		if !ok {
			agg = &dayAgg{users: map[string]struct{}{}}
			days[date] = agg
			order = append(order, date)
		}
		agg.requests++
		if userIdx >= 0 {
			if u := strings.TrimSpace(model.String(row[userIdx])); u != "" {
				agg.users[u] = struct{}{}
			}
		}
		if rtIdx >= 0 {
			if v, ok := model.Float(row[rtIdx]); ok {
				agg.rt = append(agg.rt, v)
			}
		}
		if costIdx >= 0 {
			if v, ok := model.Float(row[costIdx]); ok {
				agg.cost += v
			}
		}
		if statusIdx >= 0 {
			switch normalizeStatus(row[statusIdx]) {
			case statusInfo:
				agg.success++
				agg.statused++
			case statusError:
				agg.statused++
			}
		}
	}
	if len(order) == 0 {
		return
	}
	sort.Strings(order)

	b.Daily = make([]model.DailySnapshot, 0, len(order))
	for _, date := range order {
		agg := days[date]
		snap := model.DailySnapshot{
			Date:          date,
			TotalRequests: agg.requests,
			UniqueUsers:   len(agg.users),
			TotalLLMCost:  agg.cost,
		}
		if len(agg.rt) > 0 {
			var sum float64
			for _, v := range agg.rt {
				sum += v
			}
			snap.AvgResponseTime = sum / float64(len(agg.rt))
		}
		if agg.statused > 0 {
			snap.SuccessRate = float64(agg.success) / float64(agg.statused) * 100
		}
		b.Daily = append(b.Daily, snap)
	}
}

// columnFor resolves a role binding to a column index, or -1 when the
// role is unbound or its column no longer exists.
func columnFor(t *model.Table, r roles.Roles, role roles.Role) int {
	col := r.Column(role)
	if col == "" {
		return -1
	}
	return t.ColumnIndex(col)
}

func normalizeStatus(cell any) string {
	return strings.ToLower(strings.TrimSpace(model.String(cell)))
}
