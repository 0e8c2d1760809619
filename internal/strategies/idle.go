package strategies

import strategyv1 "github.com/marketreplay/backtester/internal/domain/strategy/v1"

// Idle places no orders. It is the baseline strategy: a run with it always
// ends flat with zero profit, which makes it useful for validating data and
// output plumbing.
type Idle struct{}

// NewIdle creates an idle strategy.
func NewIdle() *Idle {
	return &Idle{}
}

// Run returns an empty output, carrying the trader data through unchanged.
func (s *Idle) Run(state *strategyv1.TradingState) (strategyv1.Output, error) {
	return strategyv1.Output{
		Orders:     map[string][]strategyv1.OrderRequest{},
		TraderData: state.TraderData,
	}, nil
}
