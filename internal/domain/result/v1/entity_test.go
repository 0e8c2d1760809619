package resultv1

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	marketv1 "github.com/marketreplay/backtester/internal/domain/market/v1"
)

func TestSandboxLogEntryWithOffset(t *testing.T) {
	entry := SandboxLogEntry{
		SandboxLog: "\nOrders for product AMETHYSTS exceeded limit of 20 set",
		LambdaLog:  `[[400,"state"],[400,"again"]] and [[4000,"other"]]`,
		Timestamp:  400,
	}

	shifted := entry.WithOffset(99900)

	assert.Equal(t, int64(100300), shifted.Timestamp)
	assert.Equal(t, entry.SandboxLog, shifted.SandboxLog)
	assert.Equal(t, `[[100300,"state"],[100300,"again"]] and [[4000,"other"]]`, shifted.LambdaLog)
	assert.Equal(t, int64(400), entry.Timestamp, "input must not change")
}

func TestActivityLogEntryString(t *testing.T) {
	t.Run("all levels present", func(t *testing.T) {
		entry := ActivityLogEntry{
			Day:       -2,
			Timestamp: 100,
			Product:   "AMETHYSTS",
			Bids:      []marketv1.Level{{Price: 10000, Volume: 5}, {Price: 9999, Volume: 2}, {Price: 9998, Volume: 1}},
			Asks:      []marketv1.Level{{Price: 10004, Volume: 3}, {Price: 10005, Volume: 4}, {Price: 10006, Volume: 9}},
			MidPrice:  10002,
		}

		assert.Equal(t,
			"-2;100;AMETHYSTS;10000;5;9999;2;9998;1;10004;3;10005;4;10006;9;10002.0;0.0",
			entry.String())
	})

	t.Run("whole-valued floats keep a trailing .0", func(t *testing.T) {
		entry := ActivityLogEntry{
			Product:    "ORCHIDS",
			MidPrice:   1100,
			ProfitLoss: -3,
		}

		assert.Equal(t, "0;0;ORCHIDS;;;;;;;;;;;;;1100.0;-3.0", entry.String())
	})

	t.Run("absent levels render blank", func(t *testing.T) {
		entry := ActivityLogEntry{
			Day:        0,
			Timestamp:  0,
			Product:    "STARFRUIT",
			Bids:       []marketv1.Level{{Price: 5000, Volume: 10}},
			Asks:       nil,
			MidPrice:   5002.5,
			ProfitLoss: -12.5,
		}

		assert.Equal(t, "0;0;STARFRUIT;5000;10;;;;;;;;;;;5002.5;-12.5", entry.String())
	})

	t.Run("fractional values stay in shortest form", func(t *testing.T) {
		entry := ActivityLogEntry{
			Product:    "COCONUT",
			MidPrice:   9999.5,
			ProfitLoss: 0.25,
		}

		assert.Equal(t, "0;0;COCONUT;;;;;;;;;;;;;9999.5;0.25", entry.String())
	})
}

func TestActivityLogEntryWithOffset(t *testing.T) {
	entry := ActivityLogEntry{
		Day:        1,
		Timestamp:  200,
		Product:    "AMETHYSTS",
		Bids:       []marketv1.Level{{Price: 10, Volume: 1}},
		Asks:       []marketv1.Level{{Price: 12, Volume: 2}},
		MidPrice:   11,
		ProfitLoss: 5,
	}

	shifted := entry.WithOffset(1000, 2.5)

	assert.Equal(t, int64(1200), shifted.Timestamp)
	assert.Equal(t, 7.5, shifted.ProfitLoss)

	shifted.Bids[0].Price = 999
	assert.Equal(t, 10, entry.Bids[0].Price, "level slices must not be shared")
}

func TestNewTradeLogEntry(t *testing.T) {
	entry := NewTradeLogEntry(marketv1.Trade{
		Timestamp: 300,
		Symbol:    "STARFRUIT",
		Price:     5001,
		Quantity:  4,
		Buyer:     marketv1.Submission,
	})

	assert.Equal(t, "SEASHELLS", entry.Currency)
	assert.Equal(t, "SUBMISSION", entry.Buyer)
	assert.Equal(t, "", entry.Seller)
	assert.Equal(t, int64(1300), entry.WithOffset(1000).Timestamp)
}

func TestRunResultLastTimestamp(t *testing.T) {
	t.Run("empty result has no last timestamp", func(t *testing.T) {
		result := &RunResult{}
		_, ok := result.LastTimestamp()
		assert.False(t, ok)
	})

	t.Run("returns final entry's timestamp", func(t *testing.T) {
		result := &RunResult{ActivityLogs: []ActivityLogEntry{
			{Timestamp: 0}, {Timestamp: 100}, {Timestamp: 100},
		}}
		last, ok := result.LastTimestamp()
		require.True(t, ok)
		assert.Equal(t, int64(100), last)
	})
}
