package report

import (
	"fmt"
	"io"
	"sort"

	resultv1 "github.com/marketreplay/backtester/internal/domain/result/v1"
)

// ProductProfit is one product's profit at the final tick of a run.
type ProductProfit struct {
	Product string
	Profit  float64
}

// Summarize extracts the per-product profit at the run's final tick, sorted
// by product, together with the total. A run without activity entries yields
// an empty summary.
func Summarize(result *resultv1.RunResult) ([]ProductProfit, float64) {
	last, ok := result.LastTimestamp()
	if !ok {
		return nil, 0
	}

	var profits []ProductProfit
	var total float64
	for i := len(result.ActivityLogs) - 1; i >= 0; i-- {
		entry := result.ActivityLogs[i]
		if entry.Timestamp != last {
			break
		}
		profits = append(profits, ProductProfit{Product: entry.Product, Profit: entry.ProfitLoss})
		total += entry.ProfitLoss
	}

	sort.Slice(profits, func(i, j int) bool {
		return profits[i].Product < profits[j].Product
	})
	return profits, total
}

// WriteSummary prints a run's per-product and total profit to w.
func WriteSummary(w io.Writer, result *resultv1.RunResult) {
	profits, total := Summarize(result)
	for _, p := range profits {
		fmt.Fprintf(w, "%s: %s\n", p.Product, formatProfit(p.Profit))
	}
	fmt.Fprintf(w, "Total profit: %s\n", formatProfit(total))
}

// formatProfit renders a profit with thousands separators and no decimals.
func formatProfit(v float64) string {
	s := fmt.Sprintf("%.0f", v)

	negative := false
	if len(s) > 0 && s[0] == '-' {
		negative = true
		s = s[1:]
	}

	var grouped []byte
	for i, digit := range []byte(s) {
		if i > 0 && (len(s)-i)%3 == 0 {
			grouped = append(grouped, ',')
		}
		grouped = append(grouped, digit)
	}

	if negative {
		return "-" + string(grouped)
	}
	return string(grouped)
}
