package strategyv1

import (
	"io"

	marketv1 "github.com/marketreplay/backtester/internal/domain/market/v1"
)

//go:generate mockgen -source=interface.go -destination=mock/interface_mock.go -package=mock

// OrderRequest is one order a strategy wants to place: positive quantity
// buys, negative quantity sells, zero is a no-op.
type OrderRequest struct {
	Symbol   string
	Price    int
	Quantity int
}

// ConversionData holds the side-channel quotes and costs of a product that
// supports conversions.
type ConversionData struct {
	BidPrice      float64
	AskPrice      float64
	TransportFees float64
	ExportTariff  float64
	ImportTariff  float64
	Sunlight      float64
	Humidity      float64
}

// Observations are side-channel values a component may populate for the
// strategy. Both maps are empty unless something fills them.
type Observations struct {
	Plain      map[string]float64
	Conversion map[string]ConversionData
}

// NewObservations creates empty observations.
func NewObservations() Observations {
	return Observations{
		Plain:      make(map[string]float64),
		Conversion: make(map[string]ConversionData),
	}
}

// TradingState is the market view handed to a strategy for one tick. It is
// rebuilt every tick; a strategy has no write access to engine state beyond
// this view and its own return values.
type TradingState struct {
	// Timestamp is the tick this view describes.
	Timestamp int64
	// TraderData is the opaque carry-over blob the strategy returned on the
	// previous tick. The engine never reads it.
	TraderData string
	// Listings holds per-product listing metadata.
	Listings map[string]marketv1.Listing
	// OrderDepths holds the per-product book reconstructed for this tick.
	OrderDepths map[string]*marketv1.OrderBook
	// OwnTrades holds, per product, the trades the strategy's own orders
	// completed on the most recent tick that produced any.
	OwnTrades map[string][]marketv1.Trade
	// MarketTrades holds, per product, the trades observed in the market on
	// the most recent tick that had any.
	MarketTrades map[string][]marketv1.Trade
	// Positions holds the strategy's non-zero inventory per product.
	Positions map[string]int
	// Observations are side-channel values, empty unless populated.
	Observations Observations

	// Diagnostics is where the strategy writes its log output for the tick.
	// The engine captures it into the sandbox log; it never reaches the
	// engine's own console output.
	Diagnostics io.Writer
}

// Output is what a strategy returns for one tick.
type Output struct {
	// Orders maps product symbol to the orders requested for it, in the
	// order they should be processed.
	Orders map[string][]OrderRequest
	// Conversions is the number of conversions requested this tick.
	Conversions int
	// TraderData is the opaque blob to hand back on the next tick.
	TraderData string
}

// Strategy makes the trading decisions of a run. The call is synchronous and
// blocking; the engine does not enforce a timeout, so a non-terminating
// implementation blocks the whole run. A returned error aborts the run.
type Strategy interface {
	Run(state *TradingState) (Output, error)
}
