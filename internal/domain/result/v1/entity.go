package resultv1

import (
	"fmt"
	"strconv"
	"strings"

	marketv1 "github.com/marketreplay/backtester/internal/domain/market/v1"
)

// SandboxLogEntry is the per-tick record of limit violations and captured
// strategy diagnostics.
type SandboxLogEntry struct {
	SandboxLog string `json:"sandboxLog"`
	LambdaLog  string `json:"lambdaLog"`
	Timestamp  int64  `json:"timestamp"`
}

// WithOffset returns a copy shifted by a timestamp offset. Tick-timestamp
// references embedded in the diagnostic text are rewritten to match.
func (e SandboxLogEntry) WithOffset(offset int64) SandboxLogEntry {
	oldPrefix := fmt.Sprintf("[[%d,", e.Timestamp)
	newPrefix := fmt.Sprintf("[[%d,", e.Timestamp+offset)

	return SandboxLogEntry{
		SandboxLog: e.SandboxLog,
		LambdaLog:  strings.ReplaceAll(e.LambdaLog, oldPrefix, newPrefix),
		Timestamp:  e.Timestamp + offset,
	}
}

// ActivityLogEntry is the per-tick, per-product snapshot echo with the
// running mark-to-market profit/loss.
type ActivityLogEntry struct {
	Day        int
	Timestamp  int64
	Product    string
	Bids       []marketv1.Level // best first, at most 3
	Asks       []marketv1.Level // best first, at most 3
	MidPrice   float64
	ProfitLoss float64
}

// WithOffset returns a copy shifted by a timestamp offset and a profit/loss
// offset. The level slices are copied, not shared.
func (e ActivityLogEntry) WithOffset(timestampOffset int64, profitLossOffset float64) ActivityLogEntry {
	entry := e
	entry.Timestamp += timestampOffset
	entry.ProfitLoss += profitLossOffset
	entry.Bids = append([]marketv1.Level(nil), e.Bids...)
	entry.Asks = append([]marketv1.Level(nil), e.Asks...)
	return entry
}

// String renders the entry as one semicolon-delimited activity log row.
// Absent levels render as blank columns, never as zeroes.
func (e ActivityLogEntry) String() string {
	columns := make([]string, 0, 17)
	columns = append(columns,
		strconv.Itoa(e.Day),
		strconv.FormatInt(e.Timestamp, 10),
		e.Product,
	)
	columns = append(columns, levelColumns(e.Bids)...)
	columns = append(columns, levelColumns(e.Asks)...)
	columns = append(columns,
		formatFloat(e.MidPrice),
		formatFloat(e.ProfitLoss),
	)

	return strings.Join(columns, ";")
}

func levelColumns(levels []marketv1.Level) []string {
	columns := make([]string, 6)
	for i := 0; i < 3; i++ {
		if i < len(levels) {
			columns[2*i] = strconv.Itoa(levels[i].Price)
			columns[2*i+1] = strconv.Itoa(levels[i].Volume)
		}
	}
	return columns
}

// formatFloat renders the shortest round-trip decimal form, keeping the
// trailing ".0" on whole values so rows stay byte-identical to reference
// logs.
func formatFloat(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

// TradeLogEntry is one executed trade in the output trade history. The
// strategy's own side carries the fixed synthetic identity.
type TradeLogEntry struct {
	Timestamp int64  `json:"timestamp"`
	Buyer     string `json:"buyer"`
	Seller    string `json:"seller"`
	Symbol    string `json:"symbol"`
	Currency  string `json:"currency"`
	Price     int    `json:"price"`
	Quantity  int    `json:"quantity"`
}

// NewTradeLogEntry converts a trade into its output representation.
func NewTradeLogEntry(trade marketv1.Trade) TradeLogEntry {
	return TradeLogEntry{
		Timestamp: trade.Timestamp,
		Buyer:     trade.Buyer,
		Seller:    trade.Seller,
		Symbol:    trade.Symbol,
		Currency:  marketv1.Currency,
		Price:     trade.Price,
		Quantity:  trade.Quantity,
	}
}

// WithOffset returns a copy shifted by a timestamp offset.
func (e TradeLogEntry) WithOffset(offset int64) TradeLogEntry {
	e.Timestamp += offset
	return e
}

// RunResult is the complete, ordered record of one backtest day. It is
// append-only while the run executes and immutable once returned.
type RunResult struct {
	Round int
	Day   int

	SandboxLogs  []SandboxLogEntry
	ActivityLogs []ActivityLogEntry
	Trades       []TradeLogEntry
}

// LastTimestamp returns the timestamp of the final activity log entry.
func (r *RunResult) LastTimestamp() (int64, bool) {
	if len(r.ActivityLogs) == 0 {
		return 0, false
	}
	return r.ActivityLogs[len(r.ActivityLogs)-1].Timestamp, true
}
