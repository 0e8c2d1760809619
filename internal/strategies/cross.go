package strategies

import (
	"fmt"

	strategyv1 "github.com/marketreplay/backtester/internal/domain/strategy/v1"
)

// Cross oscillates a one-unit position in every product: it lifts the best
// ask while flat or short and hits the best bid while long. It exists to
// exercise the full replay pipeline, not to make money.
type Cross struct{}

// NewCross creates a cross strategy.
func NewCross() *Cross {
	return &Cross{}
}

// Run places one crossing order per product that has a usable book side.
func (s *Cross) Run(state *strategyv1.TradingState) (strategyv1.Output, error) {
	orders := make(map[string][]strategyv1.OrderRequest)

	for product, book := range state.OrderDepths {
		position := state.Positions[product]

		if position <= 0 {
			ask, ok := book.BestAsk()
			if !ok {
				continue
			}
			orders[product] = []strategyv1.OrderRequest{{Symbol: product, Price: ask.Price, Quantity: 1}}
			fmt.Fprintf(state.Diagnostics, "%d %s buy 1 @ %d\n", state.Timestamp, product, ask.Price)
			continue
		}

		bid, ok := book.BestBid()
		if !ok {
			continue
		}
		orders[product] = []strategyv1.OrderRequest{{Symbol: product, Price: bid.Price, Quantity: -1}}
		fmt.Fprintf(state.Diagnostics, "%d %s sell 1 @ %d\n", state.Timestamp, product, bid.Price)
	}

	return strategyv1.Output{
		Orders:     orders,
		TraderData: state.TraderData,
	}, nil
}
