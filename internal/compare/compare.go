// Package compare computes day-over-day deltas between two daily metric
// snapshots and labels each metric family with a qualitative status from
// fixed thresholds.
package compare

import (
	"fmt"
	"sort"
	"strings"

	"github.com/crimson-sun/sawmill/internal/model"
)

// Status is the qualitative label for one metric family's movement.
type Status string

const (
	StatusImproving Status = "IMPROVING"
	StatusDegrading Status = "DEGRADING"
	StatusGrowing   Status = "GROWING"
	StatusDeclining Status = "DECLINING"
	StatusEfficient Status = "EFFICIENT"
	StatusExpensive Status = "EXPENSIVE"
	StatusStable    Status = "STABLE"
)

// MetricDelta is the movement of one metric family between the two days.
type MetricDelta struct {
	Before    float64 `json:"before"`
	After     float64 `json:"after"`
	Change    float64 `json:"change"`     // After - Before
	ChangePct float64 `json:"change_pct"` // Change/Before*100; 0 when Before is 0
	Status    Status  `json:"status"`
}

// Comparison is the full day-over-day result. DateA is chronologically
// earlier than DateB.
type Comparison struct {
	DateA string `json:"date_a"`
	DateB string `json:"date_b"`

	Latency     MetricDelta `json:"latency"`      // avg response time
	Throughput  MetricDelta `json:"throughput"`   // total requests
	Cost        MetricDelta `json:"cost"`         // total LLM spend
	Reliability MetricDelta `json:"reliability"`  // success rate, absolute points
	Users       MetricDelta `json:"users"`        // unique users
}

// Compare computes the deltas between snapshot a (earlier) and b (later).
func Compare(a, b model.DailySnapshot) Comparison {
	return Comparison{
		DateA:       a.Date,
		DateB:       b.Date,
		Latency:     delta(a.AvgResponseTime, b.AvgResponseTime, latencyStatus),
		Throughput:  delta(float64(a.TotalRequests), float64(b.TotalRequests), throughputStatus),
		Cost:        delta(a.TotalLLMCost, b.TotalLLMCost, costStatus),
		Reliability: delta(a.SuccessRate, b.SuccessRate, reliabilityStatus),
		Users:       delta(float64(a.UniqueUsers), float64(b.UniqueUsers), userStatus),
	}
}

func delta(before, after float64, status func(change, changePct float64) Status) MetricDelta {
	change := after - before
	var pct float64
	if before != 0 {
		pct = change / before * 100
	}
	return MetricDelta{
		Before:    before,
		After:     after,
		Change:    change,
		ChangePct: pct,
		Status:    status(change, pct),
	}
}

// Lower latency is better: beyond ±5% the movement is significant.
func latencyStatus(_, pct float64) Status {
	switch {
	case pct < -5:
		return StatusImproving
	case pct > 5:
		return StatusDegrading
	default:
		return StatusStable
	}
}

func throughputStatus(_, pct float64) Status {
	switch {
	case pct > 5:
		return StatusGrowing
	case pct < -5:
		return StatusDeclining
	default:
		return StatusStable
	}
}

// Cost thresholds are asymmetric: increases are penalized at +10% while
// decreases count as efficient already at -5%.
func costStatus(_, pct float64) Status {
	switch {
	case pct < -5:
		return StatusEfficient
	case pct > 10:
		return StatusExpensive
	default:
		return StatusStable
	}
}

// Reliability moves in absolute percentage points, not relative percent.
func reliabilityStatus(change, _ float64) Status {
	switch {
	case change > 1:
		return StatusImproving
	case change < -1:
		return StatusDegrading
	default:
		return StatusStable
	}
}

func userStatus(_, pct float64) Status {
	switch {
	case pct > 5:
		return StatusGrowing
	case pct < -5:
		return StatusDeclining
	default:
		return StatusStable
	}
}

// DominantTrend returns the most common status across the comparison's
// five families, breaking ties by first occurrence in family order.
func (c Comparison) DominantTrend() Status {
	order := []Status{c.Latency.Status, c.Throughput.Status, c.Cost.Status, c.Reliability.Status, c.Users.Status}
	counts := map[Status]int{}
	for _, s := range order {
		counts[s]++
	}
	best := order[0]
	for _, s := range order {
		if counts[s] > counts[best] {
			best = s
		}
	}
	return best
}

// ResolveDate resolves a user-supplied date token against the available
// snapshot dates (each YYYY-MM-DD). Accepted forms:
//   - full ISO date, which must exist verbatim among the snapshots;
//   - "dd/mm" or "dd-mm", resolved to the matching day in the most
//     recent year that has it.
//
// Returns an error when no snapshot matches; the comparator never
// substitutes a nearest available day.
func ResolveDate(token string, available []string) (string, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return "", fmt.Errorf("empty date")
	}

	if strings.Count(token, "-") == 2 && len(token) == 10 {
		for _, d := range available {
			if d == token {
				return d, nil
			}
		}
		return "", fmt.Errorf("no data for date %s", token)
	}

	sep := "/"
	if !strings.Contains(token, "/") {
		sep = "-"
	}
	parts := strings.SplitN(token, sep, 2)
	if len(parts) != 2 {
		return "", fmt.Errorf("unrecognized date %q (want dd/mm or YYYY-MM-DD)", token)
	}
	day := pad2(strings.TrimSpace(parts[0]))
	month := pad2(strings.TrimSpace(parts[1]))
	suffix := "-" + month + "-" + day

	// Prefer the most recent year carrying this day/month.
	sorted := make([]string, len(available))
	copy(sorted, available)
	sort.Sort(sort.Reverse(sort.StringSlice(sorted)))
	for _, d := range sorted {
		if strings.HasSuffix(d, suffix) {
			return d, nil
		}
	}
	return "", fmt.Errorf("no data for date %s", token)
}

func pad2(s string) string {
	if len(s) == 1 {
		return "0" + s
	}
	return s
}

// ResolveDatePair resolves an earlier/later token pair and orders the
// result chronologically.
func ResolveDatePair(tokenA, tokenB string, available []string) (string, string, error) {
	a, err := ResolveDate(tokenA, available)
	if err != nil {
		return "", "", err
	}
	b, err := ResolveDate(tokenB, available)
	if err != nil {
		return "", "", err
	}
	if a > b {
		a, b = b, a
	}
	return a, b, nil
}
