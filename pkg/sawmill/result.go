package sawmill

import "github.com/crimson-sun/sawmill/internal/model"

// Stats is a scalar statistics block.
type Stats struct {
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Std    float64 `json:"std"`
	Count  int     `json:"count"`
}

// CostStats extends Stats with the total spend.
type CostStats struct {
	Stats
	Total float64 `json:"total"`
}

// Status is the success/error breakdown of the cleaned rows.
type Status struct {
	Total       int     `json:"total"`
	Success     int     `json:"success"`
	Errors      int     `json:"errors"`
	SuccessRate float64 `json:"success_rate"`
	ErrorRate   float64 `json:"error_rate"`
}

// MessageCount is one row of the distinct error message table.
type MessageCount struct {
	Message string `json:"message"`
	Count   int    `json:"count"`
}

// CategoryCount is one row of the category frequency table.
type CategoryCount struct {
	Category string `json:"category"`
	Count    int    `json:"count"`
}

// DaySnapshot is the per-day metric record.
type DaySnapshot struct {
	Date            string  `json:"date"` // YYYY-MM-DD
	Requests        int     `json:"requests"`
	UniqueUsers     int     `json:"unique_users"`
	AvgResponseTime float64 `json:"avg_response_time"`
	SuccessRate     float64 `json:"success_rate"`
	TotalCost       float64 `json:"total_cost"`
}

// Classification is the rich classifier result for one error message.
type Classification struct {
	Category    string  `json:"category"`
	SubCategory string  `json:"sub_category"`
	Confidence  float64 `json:"confidence"` // 0-100
	Rationale   string  `json:"rationale"`
}

// Result is the analysis outcome for one source file.
// This is the stable public type — internal representations may evolve
// independently without breaking consumers.
type Result struct {
	Service         string          `json:"service"`
	Rows            int             `json:"rows"` // rows remaining after cleaning
	ResponseTime    *Stats          `json:"response_time,omitempty"`
	Cost            *CostStats      `json:"cost,omitempty"`
	Status          *Status         `json:"status,omitempty"`
	ErrorMessages   []MessageCount  `json:"error_messages,omitempty"`
	ErrorCategories []CategoryCount `json:"error_categories,omitempty"`
	Daily           []DaySnapshot   `json:"daily,omitempty"`
}

// resultFromBundle converts the internal bundle to the public Result.
func resultFromBundle(b *model.MetricsBundle, rows int) *Result {
	res := &Result{
		Service: b.Service,
		Rows:    rows,
	}
	if b.ResponseTime != nil {
		res.ResponseTime = &Stats{
			Mean:   b.ResponseTime.Mean,
			Median: b.ResponseTime.Median,
			Min:    b.ResponseTime.Min,
			Max:    b.ResponseTime.Max,
			Std:    b.ResponseTime.Std,
			Count:  b.ResponseTime.Count,
		}
	}
	if b.LLMCost != nil {
		res.Cost = &CostStats{
			Stats: Stats{
				Mean:   b.LLMCost.Mean,
				Median: b.LLMCost.Median,
				Min:    b.LLMCost.Min,
				Max:    b.LLMCost.Max,
				Std:    b.LLMCost.Std,
				Count:  b.LLMCost.Count,
			},
			Total: b.LLMCost.Total,
		}
	}
	if b.Status != nil {
		res.Status = &Status{
			Total:       b.Status.Total,
			Success:     b.Status.Success,
			Errors:      b.Status.Errors,
			SuccessRate: b.Status.SuccessRate,
			ErrorRate:   b.Status.ErrorRate,
		}
	}
	for _, m := range b.ErrorMessages {
		res.ErrorMessages = append(res.ErrorMessages, MessageCount{Message: m.Message, Count: m.Count})
	}
	for _, c := range b.ErrorCategories {
		res.ErrorCategories = append(res.ErrorCategories, CategoryCount{Category: string(c.Category), Count: c.Count})
	}
	for _, d := range b.Daily {
		res.Daily = append(res.Daily, DaySnapshot{
			Date:            d.Date,
			Requests:        d.TotalRequests,
			UniqueUsers:     d.UniqueUsers,
			AvgResponseTime: d.AvgResponseTime,
			SuccessRate:     d.SuccessRate,
			TotalCost:       d.TotalLLMCost,
		})
	}
	return res
}
