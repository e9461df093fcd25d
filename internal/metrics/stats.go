package metrics

import (
	"math"
	"sort"

	"github.com/crimson-sun/sawmill/internal/model"
)

// computeStats builds the scalar statistics block for a slice of
// observations. Returns a zero-count block for an empty slice.
func computeStats(values []float64) model.Stats {
	if len(values) == 0 {
		return model.Stats{}
	}

	minV, maxV := values[0], values[0]
	var sum float64
	for _, v := range values {
		sum += v
		if v < minV {
			minV = v
		}
		if v > maxV {
			maxV = v
		}
	}
	mean := sum / float64(len(values))

	return model.Stats{
		Mean:   mean,
		Median: median(values),
		Min:    minV,
		Max:    maxV,
		Std:    sampleStd(values, mean),
		Count:  len(values),
	}
}

// computeCostStats adds the total spend to the scalar block.
func computeCostStats(values []float64) model.CostStats {
	var total float64
	for _, v := range values {
		total += v
	}
	return model.CostStats{
		Stats: computeStats(values),
		Total: total,
	}
}

// median interpolates between the two middle values for even-length
// input. The input slice is not modified.
func median(values []float64) float64 {
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

// sampleStd is the sample (n-1) standard deviation; zero when fewer than
// two observations exist.
func sampleStd(values []float64, mean float64) float64 {
	if len(values) < 2 {
		return 0
	}
	var sq float64
	for _, v := range values {
		d := v - mean
		sq += d * d
	}
	return math.Sqrt(sq / float64(len(values)-1))
}

// numericColumn extracts every coercible value from the named column.
// Cells that fail coercion are dropped, not zeroed.
func numericColumn(t *model.Table, column string) []float64 {
	idx := t.ColumnIndex(column)
	if idx < 0 {
		return nil
	}
	out := make([]float64, 0, t.NumRows())
	for _, row := range t.Rows {
		if v, ok := model.Float(row[idx]); ok {
			out = append(out, v)
		}
	}
	return out
}
