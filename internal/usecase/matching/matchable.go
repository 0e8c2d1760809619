package matching

import marketv1 "github.com/marketreplay/backtester/internal/domain/market/v1"

// MatchableTrade wraps a historical trade with two independent remaining
// quantity counters: one consumable by synthetic buys, one by synthetic
// sells. Both are seeded at the trade's quantity.
type MatchableTrade struct {
	Trade         marketv1.Trade
	BuyRemaining  int
	SellRemaining int
}

// NewMatchableTrades wraps this tick's historical trades of one product,
// preserving their original data order.
func NewMatchableTrades(trades []marketv1.Trade) []*MatchableTrade {
	wrapped := make([]*MatchableTrade, 0, len(trades))
	for _, trade := range trades {
		wrapped = append(wrapped, &MatchableTrade{
			Trade:         trade,
			BuyRemaining:  trade.Quantity,
			SellRemaining: trade.Quantity,
		})
	}
	return wrapped
}

// Surviving returns the trade with its quantity reduced to what both sides
// still have available. The second return value is false when nothing
// survives.
func (m *MatchableTrade) Surviving() (marketv1.Trade, bool) {
	quantity := m.BuyRemaining
	if m.SellRemaining < quantity {
		quantity = m.SellRemaining
	}
	if quantity <= 0 {
		return marketv1.Trade{}, false
	}

	trade := m.Trade
	trade.Quantity = quantity
	return trade, true
}
