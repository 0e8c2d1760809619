package report

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	marketv1 "github.com/marketreplay/backtester/internal/domain/market/v1"
	resultv1 "github.com/marketreplay/backtester/internal/domain/result/v1"
)

func sampleResult() *resultv1.RunResult {
	return &resultv1.RunResult{
		Round: 1,
		Day:   0,
		SandboxLogs: []resultv1.SandboxLogEntry{
			{SandboxLog: "", LambdaLog: "hello <world>", Timestamp: 0},
			{SandboxLog: "\nOrders for product AMETHYSTS exceeded limit of 20 set", LambdaLog: "", Timestamp: 100},
		},
		ActivityLogs: []resultv1.ActivityLogEntry{
			{
				Day:       0,
				Timestamp: 0,
				Product:   "AMETHYSTS",
				Bids:      []marketv1.Level{{Price: 9998, Volume: 5}},
				Asks:      []marketv1.Level{{Price: 10002, Volume: 3}},
				MidPrice:  10000,
			},
			{
				Day:        0,
				Timestamp:  100,
				Product:    "AMETHYSTS",
				Bids:       []marketv1.Level{{Price: 9999, Volume: 1}},
				Asks:       []marketv1.Level{{Price: 10001, Volume: 2}},
				MidPrice:   10000,
				ProfitLoss: 12.5,
			},
		},
		Trades: []resultv1.TradeLogEntry{
			{Timestamp: 0, Buyer: "SUBMISSION", Seller: "", Symbol: "AMETHYSTS", Currency: "SEASHELLS", Price: 10002, Quantity: 3},
		},
	}
}

func TestWrite(t *testing.T) {
	var sb strings.Builder
	require.NoError(t, Write(&sb, sampleResult()))
	output := sb.String()

	t.Run("sections appear in order", func(t *testing.T) {
		sandboxIdx := strings.Index(output, "Sandbox logs:\n")
		activityIdx := strings.Index(output, "\n\n\n\nActivities log:\n")
		tradesIdx := strings.Index(output, "\n\n\n\n\nTrade History:\n")

		assert.Equal(t, 0, sandboxIdx)
		assert.Greater(t, activityIdx, sandboxIdx)
		assert.Greater(t, tradesIdx, activityIdx)
	})

	t.Run("activity header and rows", func(t *testing.T) {
		assert.Contains(t, output, activityHeader+"\n")
		assert.Contains(t, output, "0;0;AMETHYSTS;9998;5;;;;;10002;3;;;;;10000.0;0.0\n")
		assert.Contains(t, output, "0;100;AMETHYSTS;9999;1;;;;;10001;2;;;;;10000.0;12.5")
	})

	t.Run("sandbox entries are indented JSON", func(t *testing.T) {
		assert.Contains(t, output, "{\n  \"sandboxLog\": \"\",\n  \"lambdaLog\": \"hello <world>\",\n  \"timestamp\": 0\n}")
		assert.Contains(t, output, `"sandboxLog": "\nOrders for product AMETHYSTS exceeded limit of 20 set"`)
	})

	t.Run("trade history is one JSON array", func(t *testing.T) {
		assert.Contains(t, output, "Trade History:\n[\n  {\n    \"timestamp\": 0,\n    \"buyer\": \"SUBMISSION\",\n    \"seller\": \"\",\n    \"symbol\": \"AMETHYSTS\",\n    \"currency\": \"SEASHELLS\",\n    \"price\": 10002,\n    \"quantity\": 3\n  }\n]\n")
	})
}

func TestWriteEmptyTrades(t *testing.T) {
	result := sampleResult()
	result.Trades = nil

	var sb strings.Builder
	require.NoError(t, Write(&sb, result))

	assert.Contains(t, sb.String(), "Trade History:\n[]\n")
}

func TestWriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "out.log")

	require.NoError(t, WriteFile(path, sampleResult()))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(raw), "Sandbox logs:\n"))
}

func TestSummarize(t *testing.T) {
	result := &resultv1.RunResult{
		ActivityLogs: []resultv1.ActivityLogEntry{
			{Timestamp: 0, Product: "AMETHYSTS", ProfitLoss: 1},
			{Timestamp: 100, Product: "STARFRUIT", ProfitLoss: -250},
			{Timestamp: 100, Product: "AMETHYSTS", ProfitLoss: 1500},
		},
	}

	profits, total := Summarize(result)

	require.Len(t, profits, 2)
	assert.Equal(t, ProductProfit{Product: "AMETHYSTS", Profit: 1500}, profits[0])
	assert.Equal(t, ProductProfit{Product: "STARFRUIT", Profit: -250}, profits[1])
	assert.Equal(t, 1250.0, total)
}

func TestWriteSummary(t *testing.T) {
	result := &resultv1.RunResult{
		ActivityLogs: []resultv1.ActivityLogEntry{
			{Timestamp: 0, Product: "GIFT_BASKET", ProfitLoss: 1234567},
			{Timestamp: 0, Product: "ROSES", ProfitLoss: -987},
		},
	}

	var sb strings.Builder
	WriteSummary(&sb, result)

	assert.Equal(t, "GIFT_BASKET: 1,234,567\nROSES: -987\nTotal profit: 1,233,580\n", sb.String())
}
