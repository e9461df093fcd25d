package model

// Stats is the scalar statistics block for a numeric column.
// Std is the sample standard deviation; zero when Count < 2.
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

// StatusBlock counts info vs error rows over the cleaned table.
// SuccessRate + ErrorRate sum to 100 by construction when Total > 0.
type StatusBlock struct {
	Total       int     `json:"total"`
	Success     int     `json:"success"`
	Errors      int     `json:"errors"`
	SuccessRate float64 `json:"success_rate"`
	ErrorRate   float64 `json:"error_rate"`
}

// MessageCount is one row of the exact-distinct error message table.
type MessageCount struct {
	Message string `json:"message"`
	Count   int    `json:"count"`
}

// CategoryCount is one row of the category frequency table.
type CategoryCount struct {
	Category ErrorCategory `json:"category"`
	Count    int           `json:"count"`
}

// CategoryAudit records the conservation check between the message table
// and the category table. Discrepancy is category total minus message
// total before reconciliation; Reconciled is set when the category table
// had to be recomputed from the messages.
type CategoryAudit struct {
	ErrorRows     int  `json:"error_rows"`
	MessageTotal  int  `json:"message_total"`
	CategoryTotal int  `json:"category_total"`
	Discrepancy   int  `json:"discrepancy"`
	Reconciled    bool `json:"reconciled"`
}

// ProcessStats is a grouped stats row keyed by process name.
type ProcessStats struct {
	Process string `json:"process"`
	Stats
}

// ProcessCost is a grouped cost row keyed by process name.
type ProcessCost struct {
	Process string `json:"process"`
	CostStats
}

// ProcessFailure is a grouped failure row keyed by process name.
type ProcessFailure struct {
	Process    string  `json:"process"`
	Errors     int     `json:"errors"`
	Infos      int     `json:"infos"`
	Total      int     `json:"total"`
	FailurePct float64 `json:"failure_pct"`
}

// ModeStats is a grouped stats row keyed by effective mode.
type ModeStats struct {
	Mode     int    `json:"mode"`
	ModeName string `json:"mode_name"`
	Stats
}

// ModeCost is a grouped cost row keyed by effective mode.
type ModeCost struct {
	Mode     int    `json:"mode"`
	ModeName string `json:"mode_name"`
	CostStats
}

// ModeFailure is a grouped failure row keyed by effective mode.
type ModeFailure struct {
	Mode       int     `json:"mode"`
	ModeName   string  `json:"mode_name"`
	Errors     int     `json:"errors"`
	Infos      int     `json:"infos"`
	Total      int     `json:"total"`
	FailurePct float64 `json:"failure_pct"`
}

// ProcessModeStats is a grouped stats row keyed by (process, mode).
type ProcessModeStats struct {
	Process string `json:"process"`
	Mode    int    `json:"mode"`
	Stats
}

// ProcessModeCost is a grouped cost row keyed by (process, mode).
type ProcessModeCost struct {
	Process string `json:"process"`
	Mode    int    `json:"mode"`
	CostStats
}

// ProcessModeFailure is a grouped failure row keyed by (process, mode).
type ProcessModeFailure struct {
	Process    string  `json:"process"`
	Mode       int     `json:"mode"`
	Errors     int     `json:"errors"`
	Infos      int     `json:"infos"`
	Total      int     `json:"total"`
	FailurePct float64 `json:"failure_pct"`
}

// DailySnapshot is the per-day metric record that feeds day-over-day
// comparison and trend charts.
type DailySnapshot struct {
	Date            string  `json:"date"` // YYYY-MM-DD
	TotalRequests   int     `json:"total_requests"`
	UniqueUsers     int     `json:"unique_users"`
	AvgResponseTime float64 `json:"avg_response_time"`
	SuccessRate     float64 `json:"success_rate"`
	TotalLLMCost    float64 `json:"total_llm_cost"`
}

// MetricsBundle is the engine's full output for one source file. Blocks
// whose column role was absent are nil/empty rather than an error.
// Created fresh per analysis run and handed to report renderers.
type MetricsBundle struct {
	Service string `json:"service"`

	Status          *StatusBlock    `json:"status,omitempty"`
	ResponseTime    *Stats          `json:"response_time,omitempty"`
	LLMCost         *CostStats      `json:"llm_cost,omitempty"`
	ErrorMessages   []MessageCount  `json:"error_messages,omitempty"`
	ErrorCategories []CategoryCount `json:"error_categories,omitempty"`
	CategoryAudit   *CategoryAudit  `json:"category_audit,omitempty"`

	ResponseTimeByProcess []ProcessStats   `json:"response_time_by_process,omitempty"`
	LLMCostByProcess      []ProcessCost    `json:"llm_cost_by_process,omitempty"`
	FailureByProcess      []ProcessFailure `json:"failure_by_process,omitempty"`

	ResponseTimeByMode []ModeStats   `json:"response_time_by_effective_mode,omitempty"`
	LLMCostByMode      []ModeCost    `json:"llm_cost_by_effective_mode,omitempty"`
	FailureByMode      []ModeFailure `json:"failure_by_effective_mode,omitempty"`

	ResponseTimeByProcessMode []ProcessModeStats   `json:"response_time_by_process_mode,omitempty"`
	LLMCostByProcessMode      []ProcessModeCost    `json:"llm_cost_by_process_mode,omitempty"`
	FailureByProcessMode      []ProcessModeFailure `json:"failure_by_process_mode,omitempty"`

	Daily []DailySnapshot `json:"daily,omitempty"` // sorted by date ascending
}

// Day returns the snapshot for the given YYYY-MM-DD date, if present.
func (b *MetricsBundle) Day(date string) (DailySnapshot, bool) {
	for _, d := range b.Daily {
		if d.Date == date {
			return d, true
		}
	}
	return DailySnapshot{}, false
}
