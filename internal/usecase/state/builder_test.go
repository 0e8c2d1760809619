package state

import (
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	marketv1 "github.com/marketreplay/backtester/internal/domain/market/v1"
)

func testDayData() *marketv1.DayData {
	prices := []marketv1.SnapshotRow{
		{
			Day:       0,
			Timestamp: 0,
			Product:   "AMETHYSTS",
			Bids:      []marketv1.Level{{Price: 9998, Volume: 5}, {Price: 9996, Volume: 2}},
			Asks:      []marketv1.Level{{Price: 10002, Volume: 3}},
			MidPrice:  10000,
		},
		{
			Day:       0,
			Timestamp: 0,
			Product:   "STARFRUIT",
			Bids:      []marketv1.Level{{Price: 4999, Volume: 10}},
			Asks:      []marketv1.Level{{Price: 5001, Volume: 10}},
			MidPrice:  5000,
		},
	}
	trades := []marketv1.Trade{
		{Timestamp: 0, Symbol: "STARFRUIT", Price: 5000, Quantity: 2, Buyer: "A", Seller: "B"},
	}
	return marketv1.NewDayData(1, 0, prices, trades)
}

func TestValidateDay(t *testing.T) {
	data := testDayData()

	t.Run("all products covered", func(t *testing.T) {
		builder := NewBuilder(map[string]int{"AMETHYSTS": 20, "STARFRUIT": 20})
		assert.NoError(t, builder.ValidateDay(data))
	})

	t.Run("missing limit is fatal", func(t *testing.T) {
		builder := NewBuilder(map[string]int{"AMETHYSTS": 20})
		err := builder.ValidateDay(data)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "STARFRUIT")
	})
}

func TestBuild(t *testing.T) {
	builder := NewBuilder(map[string]int{"AMETHYSTS": 20, "STARFRUIT": 20})
	data := testDayData()

	portfolio := marketv1.NewPortfolio()
	portfolio.Positions["AMETHYSTS"] = 3
	portfolio.Positions["STARFRUIT"] = 0

	carry := NewCarry()
	carry.TraderData = "blob"
	carry.OwnTrades["AMETHYSTS"] = []marketv1.Trade{{Symbol: "AMETHYSTS", Price: 10000, Quantity: 1}}

	state, err := builder.Build(data, 0, carry, portfolio, io.Discard)
	require.NoError(t, err)

	t.Run("books are rebuilt from the snapshot", func(t *testing.T) {
		book := state.OrderDepths["AMETHYSTS"]
		require.NotNil(t, book)
		assert.Equal(t, []marketv1.Level{{Price: 9998, Volume: 5}, {Price: 9996, Volume: 2}}, book.Bids())
		assert.Equal(t, []marketv1.Level{{Price: 10002, Volume: 3}}, book.Asks())
	})

	t.Run("listings cover every product", func(t *testing.T) {
		assert.Len(t, state.Listings, 2)
		assert.Equal(t, marketv1.Listing{Symbol: "STARFRUIT", Product: "STARFRUIT", Denomination: 1}, state.Listings["STARFRUIT"])
	})

	t.Run("zero positions are filtered out", func(t *testing.T) {
		assert.Equal(t, map[string]int{"AMETHYSTS": 3}, state.Positions)
	})

	t.Run("carry flows into the view", func(t *testing.T) {
		assert.Equal(t, "blob", state.TraderData)
		assert.Len(t, state.OwnTrades["AMETHYSTS"], 1)
		assert.Empty(t, state.MarketTrades)
	})

	t.Run("mutating the view does not touch the portfolio", func(t *testing.T) {
		state.Positions["AMETHYSTS"] = 99
		assert.Equal(t, 3, portfolio.Positions["AMETHYSTS"])
	})
}

func TestBuildUnknownTimestamp(t *testing.T) {
	builder := NewBuilder(map[string]int{"AMETHYSTS": 20, "STARFRUIT": 20})

	_, err := builder.Build(testDayData(), 999, NewCarry(), marketv1.NewPortfolio(), io.Discard)
	assert.Error(t, err)
}
