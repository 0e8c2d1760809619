// Package state builds the per-tick market view handed to the strategy.
package state

import (
	"fmt"
	"io"

	marketv1 "github.com/marketreplay/backtester/internal/domain/market/v1"
	strategyv1 "github.com/marketreplay/backtester/internal/domain/strategy/v1"
)

// Carry is the state that survives from one tick to the next: the opaque
// trader data blob and the own/market trade maps, which keep their entries
// until a later tick replaces them.
type Carry struct {
	TraderData   string
	OwnTrades    map[string][]marketv1.Trade
	MarketTrades map[string][]marketv1.Trade
}

// NewCarry creates an empty carry.
func NewCarry() *Carry {
	return &Carry{
		OwnTrades:    make(map[string][]marketv1.Trade),
		MarketTrades: make(map[string][]marketv1.Trade),
	}
}

// Builder constructs fresh TradingStates from day data and carried-over run
// state. The order book of every product is rebuilt from scratch each tick;
// no incremental book state persists across ticks.
type Builder struct {
	limits map[string]int
}

// NewBuilder creates a builder using the given position limit table.
func NewBuilder(limits map[string]int) *Builder {
	return &Builder{limits: limits}
}

// ValidateDay checks that every product appearing in the day's price or
// trade data has a configured position limit. Without a limit the engine
// cannot compute exposure, so a missing entry is fatal for the run.
func (b *Builder) ValidateDay(data *marketv1.DayData) error {
	for _, product := range data.Products {
		if _, ok := b.limits[product]; !ok {
			return fmt.Errorf("product %s has no configured position limit", product)
		}
	}
	for _, product := range data.TradeProducts() {
		if _, ok := b.limits[product]; !ok {
			return fmt.Errorf("product %s has no configured position limit", product)
		}
	}
	return nil
}

// Build assembles the market view of one tick. The snapshot rows of the
// tick are turned into fresh order books and listings; positions are copied
// with zero entries filtered out; the carry's trade maps are copied as-is.
func (b *Builder) Build(
	data *marketv1.DayData,
	timestamp int64,
	carry *Carry,
	portfolio *marketv1.Portfolio,
	diagnostics io.Writer,
) (*strategyv1.TradingState, error) {
	rows, ok := data.Prices[timestamp]
	if !ok {
		return nil, fmt.Errorf("no snapshot rows for timestamp %d", timestamp)
	}

	listings := make(map[string]marketv1.Listing, len(data.Products))
	depths := make(map[string]*marketv1.OrderBook, len(data.Products))

	for _, product := range data.Products {
		row, ok := rows[product]
		if !ok {
			return nil, fmt.Errorf("product %s has no snapshot row at timestamp %d", product, timestamp)
		}

		book := marketv1.NewOrderBook()
		for _, level := range row.Bids {
			book.SetBid(level.Price, level.Volume)
		}
		for _, level := range row.Asks {
			book.SetAsk(level.Price, level.Volume)
		}

		depths[product] = book
		listings[product] = marketv1.Listing{
			Symbol:       product,
			Product:      product,
			Denomination: 1,
		}
	}

	positions := make(map[string]int)
	for product, position := range portfolio.Positions {
		if position != 0 {
			positions[product] = position
		}
	}

	ownTrades := make(map[string][]marketv1.Trade, len(carry.OwnTrades))
	for product, trades := range carry.OwnTrades {
		ownTrades[product] = trades
	}
	marketTrades := make(map[string][]marketv1.Trade, len(carry.MarketTrades))
	for product, trades := range carry.MarketTrades {
		marketTrades[product] = trades
	}

	return &strategyv1.TradingState{
		Timestamp:    timestamp,
		TraderData:   carry.TraderData,
		Listings:     listings,
		OrderDepths:  depths,
		OwnTrades:    ownTrades,
		MarketTrades: marketTrades,
		Positions:    positions,
		Observations: strategyv1.NewObservations(),
		Diagnostics:  diagnostics,
	}, nil
}
