// Package matching fills accepted orders against the reconstructed book and
// this tick's historical trades, updating positions and realized P&L.
package matching

import (
	marketv1 "github.com/marketreplay/backtester/internal/domain/market/v1"
	strategyv1 "github.com/marketreplay/backtester/internal/domain/strategy/v1"
)

// Matcher executes the two-phase fill logic of one order at a time. It owns
// no state of its own; the book, the market trades and the portfolio it is
// handed belong to the current tick.
type Matcher struct{}

// NewMatcher creates a matcher.
func NewMatcher() *Matcher {
	return &Matcher{}
}

// Match fills one order. Phase 1 walks the crossing book levels best price
// first and fills at the book's price, so price improvement accrues to the
// order. Phase 2 walks this tick's historical trades in data order and
// fills at the order's limit price, consuming the trade's remaining counter
// on the needed side. Whatever quantity is left after both phases is
// discarded, never queued.
func (m *Matcher) Match(
	timestamp int64,
	order strategyv1.OrderRequest,
	book *marketv1.OrderBook,
	marketTrades []*MatchableTrade,
	portfolio *marketv1.Portfolio,
) []marketv1.Trade {
	if order.Quantity > 0 {
		return m.matchBuy(timestamp, order, book, marketTrades, portfolio)
	}
	if order.Quantity < 0 {
		return m.matchSell(timestamp, order, book, marketTrades, portfolio)
	}
	return nil
}

func (m *Matcher) matchBuy(
	timestamp int64,
	order strategyv1.OrderRequest,
	book *marketv1.OrderBook,
	marketTrades []*MatchableTrade,
	portfolio *marketv1.Portfolio,
) []marketv1.Trade {
	var fills []marketv1.Trade
	remaining := order.Quantity

	for _, level := range book.AsksAtOrBelow(order.Price) {
		volume := min(remaining, level.Volume)

		fills = append(fills, marketv1.Trade{
			Timestamp: timestamp,
			Symbol:    order.Symbol,
			Price:     level.Price,
			Quantity:  volume,
			Buyer:     marketv1.Submission,
		})

		portfolio.Positions[order.Symbol] += volume
		portfolio.RealizedPnL[order.Symbol] -= float64(level.Price * volume)

		book.ReduceAsk(level.Price, volume)

		remaining -= volume
		if remaining == 0 {
			return fills
		}
	}

	for _, marketTrade := range marketTrades {
		if marketTrade.SellRemaining == 0 || marketTrade.Trade.Price > order.Price {
			continue
		}

		volume := min(remaining, marketTrade.SellRemaining)

		fills = append(fills, marketv1.Trade{
			Timestamp: timestamp,
			Symbol:    order.Symbol,
			Price:     order.Price,
			Quantity:  volume,
			Buyer:     marketv1.Submission,
			Seller:    marketTrade.Trade.Seller,
		})

		portfolio.Positions[order.Symbol] += volume
		portfolio.RealizedPnL[order.Symbol] -= float64(order.Price * volume)

		marketTrade.SellRemaining -= volume

		remaining -= volume
		if remaining == 0 {
			return fills
		}
	}

	return fills
}

func (m *Matcher) matchSell(
	timestamp int64,
	order strategyv1.OrderRequest,
	book *marketv1.OrderBook,
	marketTrades []*MatchableTrade,
	portfolio *marketv1.Portfolio,
) []marketv1.Trade {
	var fills []marketv1.Trade
	remaining := -order.Quantity

	for _, level := range book.BidsAtOrAbove(order.Price) {
		volume := min(remaining, level.Volume)

		fills = append(fills, marketv1.Trade{
			Timestamp: timestamp,
			Symbol:    order.Symbol,
			Price:     level.Price,
			Quantity:  volume,
			Seller:    marketv1.Submission,
		})

		portfolio.Positions[order.Symbol] -= volume
		portfolio.RealizedPnL[order.Symbol] += float64(level.Price * volume)

		book.ReduceBid(level.Price, volume)

		remaining -= volume
		if remaining == 0 {
			return fills
		}
	}

	for _, marketTrade := range marketTrades {
		if marketTrade.BuyRemaining == 0 || marketTrade.Trade.Price < order.Price {
			continue
		}

		volume := min(remaining, marketTrade.BuyRemaining)

		fills = append(fills, marketv1.Trade{
			Timestamp: timestamp,
			Symbol:    order.Symbol,
			Price:     order.Price,
			Quantity:  volume,
			Buyer:     marketTrade.Trade.Buyer,
			Seller:    marketv1.Submission,
		})

		portfolio.Positions[order.Symbol] -= volume
		portfolio.RealizedPnL[order.Symbol] += float64(order.Price * volume)

		marketTrade.BuyRemaining -= volume

		remaining -= volume
		if remaining == 0 {
			return fills
		}
	}

	return fills
}
