package output

import (
	"fmt"
	"strings"

	"github.com/crimson-sun/sawmill/internal/compare"
)

// RenderText renders the full plain-text analysis report: scalar metric
// tables, grouped breakdowns, status summary, error taxonomy, and the
// day-over-day comparison when one was requested.
func RenderText(r Report) string {
	var b strings.Builder

	fmt.Fprintf(&b, "SERVICE NAME: %s\n\n", r.Service)
	b.WriteString("INDIVIDUAL ANALYSIS REPORT\n")
	b.WriteString(strings.Repeat("=", 50) + "\n")
	fmt.Fprintf(&b, "File: %s\n", r.SourcePath)
	fmt.Fprintf(&b, "Generated: %s\n\n", r.Generated.Format("2006-01-02 15:04:05"))

	renderScalars(&b, r)
	renderGrouped(&b, r)
	renderStatus(&b, r)
	renderTaxonomy(&b, r)
	renderDaily(&b, r)
	renderComparison(&b, r)

	b.WriteString(strings.Repeat("=", 50) + "\n")
	b.WriteString("Analysis completed successfully!\n")
	return b.String()
}

func renderScalars(b *strings.Builder, r Report) {
	b.WriteString("RESPONSE TIME AND LLM COST METRICS\n")
	b.WriteString(strings.Repeat("=", 40) + "\n")

	if rt := r.Bundle.ResponseTime; rt != nil {
		b.WriteString("Response Time Metrics:\n")
		fmt.Fprintf(b, "%-25s %-15s\n", "Metric", "Value")
		b.WriteString(strings.Repeat("-", 40) + "\n")
		fmt.Fprintf(b, "%-25s %.2f s\n", "Avg Time Taken", rt.Mean)
		fmt.Fprintf(b, "%-25s %.2f s\n", "Min Time Taken", rt.Min)
		fmt.Fprintf(b, "%-25s %.2f s\n", "Max Time Taken", rt.Max)
		fmt.Fprintf(b, "%-25s %.2f s\n", "Median Time", rt.Median)
		fmt.Fprintf(b, "%-25s %.2f s\n", "Std Deviation", rt.Std)
		fmt.Fprintf(b, "%-25s %d\n\n", "Records Analyzed", rt.Count)
	} else {
		b.WriteString("Response Time Metrics: Not Available\n\n")
	}

	if cost := r.Bundle.LLMCost; cost != nil {
		b.WriteString("LLM Cost Metrics:\n")
		fmt.Fprintf(b, "%-25s %-15s\n", "Metric", "Value")
		b.WriteString(strings.Repeat("-", 40) + "\n")
		fmt.Fprintf(b, "%-25s $%.4f\n", "Avg LLM Cost", cost.Mean)
		fmt.Fprintf(b, "%-25s $%.4f\n", "Min LLM Cost", cost.Min)
		fmt.Fprintf(b, "%-25s $%.4f\n", "Max LLM Cost", cost.Max)
		fmt.Fprintf(b, "%-25s $%.2f\n", "Total LLM Cost", cost.Total)
		fmt.Fprintf(b, "%-25s $%.4f\n", "Median Cost", cost.Median)
		fmt.Fprintf(b, "%-25s %d\n\n", "Records with Cost", cost.Count)
	} else {
		b.WriteString("LLM Cost Metrics: Not Available\n\n")
	}
}

func renderGrouped(b *strings.Builder, r Report) {
	bundle := r.Bundle

	if len(bundle.ResponseTimeByProcess) > 0 {
		b.WriteString("RESPONSE TIME BY PROCESS\n")
		b.WriteString(strings.Repeat("=", 27) + "\n")
		fmt.Fprintf(b, "%-40s %10s %10s %10s %10s %10s %8s\n",
			"Process Name", "Avg (s)", "P50 (s)", "Min (s)", "Max (s)", "Std", "N")
		b.WriteString(strings.Repeat("-", 100) + "\n")
		for _, row := range bundle.ResponseTimeByProcess {
			fmt.Fprintf(b, "%-40s %10.2f %10.2f %10.2f %10.2f %10.2f %8d\n",
				row.Process, row.Mean, row.Median, row.Min, row.Max, row.Std, row.Count)
		}
		b.WriteString("\n")
	}

	if len(bundle.LLMCostByProcess) > 0 {
		b.WriteString("LLM COST BY PROCESS\n")
		b.WriteString(strings.Repeat("=", 20) + "\n")
		fmt.Fprintf(b, "%-40s %10s %10s %10s %10s %12s %8s\n",
			"Process Name", "Avg ($)", "Median", "Min", "Max", "Total ($)", "N")
		b.WriteString(strings.Repeat("-", 110) + "\n")
		for _, row := range bundle.LLMCostByProcess {
			fmt.Fprintf(b, "%-40s %10.4f %10.4f %10.4f %10.4f %12.2f %8d\n",
				row.Process, row.Mean, row.Median, row.Min, row.Max, row.Total, row.Count)
		}
		b.WriteString("\n")
	}

	if len(bundle.ResponseTimeByMode) > 0 {
		b.WriteString("RESPONSE TIME BY EFFECTIVE MODE\n")
		b.WriteString(strings.Repeat("=", 32) + "\n")
		fmt.Fprintf(b, "%-8s %-30s %10s %10s %10s %10s %10s %8s\n",
			"Mode", "Mode Name", "Avg (s)", "P50 (s)", "Min (s)", "Max (s)", "Std", "N")
		b.WriteString(strings.Repeat("-", 120) + "\n")
		for _, row := range bundle.ResponseTimeByMode {
			fmt.Fprintf(b, "%8d %-30s %10.2f %10.2f %10.2f %10.2f %10.2f %8d\n",
				row.Mode, row.ModeName, row.Mean, row.Median, row.Min, row.Max, row.Std, row.Count)
		}
		b.WriteString("\n")
	}

	if len(bundle.LLMCostByMode) > 0 {
		b.WriteString("LLM COST BY EFFECTIVE MODE\n")
		b.WriteString(strings.Repeat("=", 25) + "\n")
		fmt.Fprintf(b, "%-8s %-30s %10s %10s %10s %10s %12s %8s\n",
			"Mode", "Mode Name", "Avg ($)", "Median", "Min", "Max", "Total ($)", "N")
		b.WriteString(strings.Repeat("-", 125) + "\n")
		for _, row := range bundle.LLMCostByMode {
			fmt.Fprintf(b, "%8d %-30s %10.4f %10.4f %10.4f %10.4f %12.2f %8d\n",
				row.Mode, row.ModeName, row.Mean, row.Median, row.Min, row.Max, row.Total, row.Count)
		}
		b.WriteString("\n")
	}

	if len(bundle.FailureByMode) > 0 {
		b.WriteString("FAILURE RATE (ERROR COUNTS) BY MODE\n")
		b.WriteString(strings.Repeat("=", 35) + "\n")
		fmt.Fprintf(b, "%-6s %-24s %8s %16s %8s %10s\n",
			"Mode", "Name", "Error", "Success (Info)", "Total", "Failure %")
		b.WriteString(strings.Repeat("-", 70) + "\n")
		var overallErr, overallInfo int
		for _, row := range bundle.FailureByMode {
			overallErr += row.Errors
			overallInfo += row.Infos
			fmt.Fprintf(b, "%-6d %-24s %8d %16d %8d %9.2f%%\n",
				row.Mode, row.ModeName, row.Errors, row.Infos, row.Total, row.FailurePct)
		}
		overallTotal := overallErr + overallInfo
		var overallPct float64
		if overallTotal > 0 {
			overallPct = float64(overallErr) / float64(overallTotal) * 100
		}
		fmt.Fprintf(b, "%-6s %-24s %8d %16d %8d %9.2f%%\n\n",
			"-", "Overall", overallErr, overallInfo, overallTotal, overallPct)
	}

	if len(bundle.FailureByProcess) > 0 {
		b.WriteString("FAILURE RATE (ERROR COUNTS) BY PROCESS\n")
		b.WriteString(strings.Repeat("=", 38) + "\n")
		fmt.Fprintf(b, "%-40s %8s %16s %8s %10s\n",
			"Process Name", "Error", "Success (Info)", "Total", "Failure %")
		b.WriteString(strings.Repeat("-", 95) + "\n")
		for _, row := range bundle.FailureByProcess {
			fmt.Fprintf(b, "%-40s %8d %16d %8d %9.2f%%\n",
				row.Process, row.Errors, row.Infos, row.Total, row.FailurePct)
		}
		b.WriteString("\n")
	}

	if len(bundle.ResponseTimeByProcessMode) > 0 {
		b.WriteString("RESPONSE TIME BY PROCESS x MODE\n")
		b.WriteString(strings.Repeat("=", 32) + "\n")
		fmt.Fprintf(b, "%-40s %6s %10s %10s %10s %10s %10s %8s\n",
			"Process Name", "Mode", "Avg (s)", "P50 (s)", "Min (s)", "Max (s)", "Std", "N")
		b.WriteString(strings.Repeat("-", 120) + "\n")
		for _, row := range bundle.ResponseTimeByProcessMode {
			fmt.Fprintf(b, "%-40s %6d %10.2f %10.2f %10.2f %10.2f %10.2f %8d\n",
				row.Process, row.Mode, row.Mean, row.Median, row.Min, row.Max, row.Std, row.Count)
		}
		b.WriteString("\n")
	}

	if len(bundle.LLMCostByProcessMode) > 0 {
		b.WriteString("LLM COST BY PROCESS x MODE\n")
		b.WriteString(strings.Repeat("=", 27) + "\n")
		fmt.Fprintf(b, "%-40s %6s %10s %10s %10s %10s %12s %8s\n",
			"Process Name", "Mode", "Avg ($)", "Median", "Min", "Max", "Total ($)", "N")
		b.WriteString(strings.Repeat("-", 125) + "\n")
		for _, row := range bundle.LLMCostByProcessMode {
			fmt.Fprintf(b, "%-40s %6d %10.4f %10.4f %10.4f %10.4f %12.2f %8d\n",
				row.Process, row.Mode, row.Mean, row.Median, row.Min, row.Max, row.Total, row.Count)
		}
		b.WriteString("\n")
	}

	if len(bundle.FailureByProcessMode) > 0 {
		b.WriteString("FAILURE RATE (ERROR COUNTS) BY PROCESS x MODE\n")
		b.WriteString(strings.Repeat("=", 45) + "\n")
		fmt.Fprintf(b, "%-40s %6s %8s %16s %8s %10s\n",
			"Process Name", "Mode", "Error", "Success (Info)", "Total", "Failure %")
		b.WriteString(strings.Repeat("-", 135) + "\n")
		for _, row := range bundle.FailureByProcessMode {
			fmt.Fprintf(b, "%-40s %6d %8d %16d %8d %9.2f%%\n",
				row.Process, row.Mode, row.Errors, row.Infos, row.Total, row.FailurePct)
		}
		b.WriteString("\n")
	}
}

func renderStatus(b *strings.Builder, r Report) {
	b.WriteString("FAILURE/SUCCESS RATE (After Preprocessing)\n")
	b.WriteString(strings.Repeat("=", 45) + "\n")

	status := r.Bundle.Status
	if status == nil {
		b.WriteString("Status analysis not available (no status column found)\n\n")
		return
	}

	fmt.Fprintf(b, "%-20s %-10s %-12s\n", "Status", "Count", "% of Total")
	b.WriteString(strings.Repeat("-", 42) + "\n")
	fmt.Fprintf(b, "%-20s %-10d %.2f%%\n", "error (Failure)", status.Errors, status.ErrorRate)
	fmt.Fprintf(b, "%-20s %-10d %.2f%%\n", "info (Success)", status.Success, status.SuccessRate)
	fmt.Fprintf(b, "%-20s %-10d 100.00%%\n\n", "Total", status.Total)

	if c := r.Cleaning; c != nil {
		b.WriteString("Processing Summary:\n")
		fmt.Fprintf(b, "- Original records: %d\n", c.OriginalRows)
		fmt.Fprintf(b, "- Records after preprocessing: %d\n", c.FinalRows)
		fmt.Fprintf(b, "- Records removed: %d\n\n", c.OriginalRows-c.FinalRows)
	}
}

func renderTaxonomy(b *strings.Builder, r Report) {
	bundle := r.Bundle

	if len(bundle.ErrorCategories) > 0 {
		b.WriteString("ERROR TYPE CATEGORIES\n")
		b.WriteString(strings.Repeat("=", 25) + "\n")
		fmt.Fprintf(b, "%-35s %-8s\n", "Error Category", "Count")
		b.WriteString(strings.Repeat("-", 43) + "\n")
		total := 0
		for _, row := range bundle.ErrorCategories {
			fmt.Fprintf(b, "%-35s %-8d\n", row.Category, row.Count)
			total += row.Count
		}
		fmt.Fprintf(b, "\nTotal error categories: %d\n", len(bundle.ErrorCategories))
		fmt.Fprintf(b, "Total categorized errors: %d\n\n", total)
	}

	if len(bundle.ErrorMessages) > 0 {
		b.WriteString("DETAILED ERROR BREAKDOWN\n")
		b.WriteString(strings.Repeat("=", 30) + "\n")
		fmt.Fprintf(b, "%-105s %-8s\n", "Error Message", "Count")
		b.WriteString(strings.Repeat("-", 113) + "\n")
		total := 0
		for _, row := range bundle.ErrorMessages {
			msg := row.Message
			if len(msg) > 100 {
				msg = msg[:100] + "..."
			}
			fmt.Fprintf(b, "%-105s %-8d\n", msg, row.Count)
			total += row.Count
		}
		fmt.Fprintf(b, "\nTotal unique error messages: %d\n", len(bundle.ErrorMessages))
		fmt.Fprintf(b, "Total error occurrences: %d\n\n", total)
	}
}

func renderDaily(b *strings.Builder, r Report) {
	if len(r.Bundle.Daily) == 0 {
		return
	}
	b.WriteString("DAILY METRICS\n")
	b.WriteString(strings.Repeat("=", 15) + "\n")
	fmt.Fprintf(b, "%-12s %10s %12s %12s %12s %12s\n",
		"Date", "Requests", "Unique Users", "Avg RT (s)", "Success %", "LLM Cost ($)")
	b.WriteString(strings.Repeat("-", 75) + "\n")
	for _, d := range r.Bundle.Daily {
		fmt.Fprintf(b, "%-12s %10d %12d %12.2f %12.2f %12.2f\n",
			d.Date, d.TotalRequests, d.UniqueUsers, d.AvgResponseTime, d.SuccessRate, d.TotalLLMCost)
	}
	b.WriteString("\n")
}

func renderComparison(b *strings.Builder, r Report) {
	c := r.Comparison
	if c == nil {
		return
	}
	fmt.Fprintf(b, "DAY-OVER-DAY COMPARISON (%s vs %s)\n", c.DateA, c.DateB)
	b.WriteString(strings.Repeat("=", 45) + "\n")
	fmt.Fprintf(b, "%-15s %12s %12s %10s %10s %-10s\n",
		"Metric", c.DateA, c.DateB, "Change", "Change %", "Status")
	b.WriteString(strings.Repeat("-", 75) + "\n")
	rows := []struct {
		name  string
		delta compare.MetricDelta
	}{
		{"Latency (s)", c.Latency},
		{"Requests", c.Throughput},
		{"LLM Cost ($)", c.Cost},
		{"Success %", c.Reliability},
		{"Users", c.Users},
	}
	for _, row := range rows {
		fmt.Fprintf(b, "%-15s %12.2f %12.2f %+10.2f %+9.2f%% %-10s\n",
			row.name, row.delta.Before, row.delta.After, row.delta.Change, row.delta.ChangePct, row.delta.Status)
	}
	fmt.Fprintf(b, "\nDominant trend: %s\n\n", c.DominantTrend())
}
