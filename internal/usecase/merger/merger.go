// Package merger stitches the results of multiple days into one continuous,
// renumbered timeline.
package merger

import (
	"errors"
	"fmt"

	resultv1 "github.com/marketreplay/backtester/internal/domain/result/v1"
)

// tickGap is the timestamp distance between the last tick of one day and
// the first tick of the next in the merged timeline.
const tickGap = 100

// ErrEmptyActivityLog is returned when a day without any activity log
// entries is merged. Continuity needs at least one tick of data per day.
var ErrEmptyActivityLog = errors.New("cannot merge a day with an empty activity log")

// Merge concatenates two adjacent-day results into a new result. B's
// entries are appended with their timestamps shifted past the end of A;
// when mergePnL is set, B's activity P&L additionally continues from the
// per-product P&L at A's final tick, otherwise it restarts at zero. Neither
// input is mutated.
func Merge(a, b *resultv1.RunResult, mergePnL bool) (*resultv1.RunResult, error) {
	aLast, ok := a.LastTimestamp()
	if !ok {
		return nil, fmt.Errorf("round %d day %d: %w", a.Round, a.Day, ErrEmptyActivityLog)
	}
	if _, ok := b.LastTimestamp(); !ok {
		return nil, fmt.Errorf("round %d day %d: %w", b.Round, b.Day, ErrEmptyActivityLog)
	}

	offset := aLast + tickGap

	merged := &resultv1.RunResult{
		Round:        a.Round,
		Day:          a.Day,
		SandboxLogs:  make([]resultv1.SandboxLogEntry, 0, len(a.SandboxLogs)+len(b.SandboxLogs)),
		ActivityLogs: make([]resultv1.ActivityLogEntry, 0, len(a.ActivityLogs)+len(b.ActivityLogs)),
		Trades:       make([]resultv1.TradeLogEntry, 0, len(a.Trades)+len(b.Trades)),
	}

	merged.SandboxLogs = append(merged.SandboxLogs, a.SandboxLogs...)
	for _, entry := range b.SandboxLogs {
		merged.SandboxLogs = append(merged.SandboxLogs, entry.WithOffset(offset))
	}

	profitLossOffsets := make(map[string]float64)
	if mergePnL {
		// The last tick of A has exactly one entry per product; collect its
		// realized P&L by scanning backward while the timestamp matches.
		for i := len(a.ActivityLogs) - 1; i >= 0; i-- {
			entry := a.ActivityLogs[i]
			if entry.Timestamp != aLast {
				break
			}
			profitLossOffsets[entry.Product] = entry.ProfitLoss
		}
	}

	merged.ActivityLogs = append(merged.ActivityLogs, a.ActivityLogs...)
	for _, entry := range b.ActivityLogs {
		merged.ActivityLogs = append(merged.ActivityLogs, entry.WithOffset(offset, profitLossOffsets[entry.Product]))
	}

	merged.Trades = append(merged.Trades, a.Trades...)
	for _, entry := range b.Trades {
		merged.Trades = append(merged.Trades, entry.WithOffset(offset))
	}

	return merged, nil
}

// MergeAll reduces a list of day results left to right into one timeline.
func MergeAll(results []*resultv1.RunResult, mergePnL bool) (*resultv1.RunResult, error) {
	if len(results) == 0 {
		return nil, errors.New("no results to merge")
	}

	merged := results[0]
	for _, next := range results[1:] {
		var err error
		merged, err = Merge(merged, next, mergePnL)
		if err != nil {
			return nil, err
		}
	}
	return merged, nil
}
