// Package engine drives the deterministic tick-replay loop of one day.
package engine

import (
	"sort"
	"strings"

	"github.com/oklog/ulid/v2"
	"github.com/pkg/errors"

	marketv1 "github.com/marketreplay/backtester/internal/domain/market/v1"
	resultv1 "github.com/marketreplay/backtester/internal/domain/result/v1"
	strategyv1 "github.com/marketreplay/backtester/internal/domain/strategy/v1"
	"github.com/marketreplay/backtester/internal/usecase/capture"
	"github.com/marketreplay/backtester/internal/usecase/limits"
	"github.com/marketreplay/backtester/internal/usecase/matching"
	"github.com/marketreplay/backtester/internal/usecase/state"
	"github.com/marketreplay/backtester/pkg/logger"
)

// Engine replays one day of market data against a strategy. The same data,
// strategy and limit table always produce the same result.
type Engine struct {
	strategy strategyv1.Strategy
	builder  *state.Builder
	enforcer *limits.Enforcer
	matcher  *matching.Matcher
	log      logger.Interface
	opts     Options
}

// NewEngine wires an engine for the given strategy and position limit table.
func NewEngine(strategy strategyv1.Strategy, limitTable map[string]int, log logger.Interface, opts ...Option) *Engine {
	options := Options{}
	for _, opt := range opts {
		opt(&options)
	}

	return &Engine{
		strategy: strategy,
		builder:  state.NewBuilder(limitTable),
		enforcer: limits.NewEnforcer(limitTable),
		matcher:  matching.NewMatcher(),
		log:      log,
		opts:     options,
	}
}

// Run replays every tick of the day in timestamp order and returns the
// complete run record. A strategy error aborts the run and surfaces as the
// returned error.
func (e *Engine) Run(data *marketv1.DayData) (*resultv1.RunResult, error) {
	if err := e.builder.ValidateDay(data); err != nil {
		return nil, err
	}

	runID := ulid.Make().String()
	e.log.Info("starting backtest day",
		logger.NewField("run_id", runID),
		logger.NewField("round", data.Round),
		logger.NewField("day", data.Day),
		logger.NewField("ticks", len(data.Timestamps)),
	)

	result := &resultv1.RunResult{Round: data.Round, Day: data.Day}
	portfolio := marketv1.NewPortfolio()
	carry := state.NewCarry()

	for _, timestamp := range data.Timestamps {
		if err := e.runTick(data, timestamp, carry, portfolio, result); err != nil {
			return nil, errors.Wrapf(err, "tick %d", timestamp)
		}
	}

	e.log.Info("backtest day finished",
		logger.NewField("run_id", runID),
		logger.NewField("trades", len(result.Trades)),
	)
	return result, nil
}

func (e *Engine) runTick(
	data *marketv1.DayData,
	timestamp int64,
	carry *state.Carry,
	portfolio *marketv1.Portfolio,
	result *resultv1.RunResult,
) error {
	sink := capture.NewSink()

	tradingState, err := e.builder.Build(data, timestamp, carry, portfolio, sink)
	if err != nil {
		return err
	}

	output, err := e.strategy.Run(tradingState)
	if err != nil {
		return errors.Wrap(err, "strategy")
	}
	carry.TraderData = output.TraderData

	if output.Conversions != 0 {
		e.log.Debug("conversions requested",
			logger.NewField("timestamp", timestamp),
			logger.NewField("conversions", output.Conversions),
		)
	}

	// Activity rows reflect the market before this tick's orders execute,
	// so the profit column marks inventory at the tick's own mid price.
	for _, product := range data.Products {
		row := data.Prices[timestamp][product]
		result.ActivityLogs = append(result.ActivityLogs, resultv1.ActivityLogEntry{
			Day:        row.Day,
			Timestamp:  timestamp,
			Product:    product,
			Bids:       append([]marketv1.Level(nil), row.Bids...),
			Asks:       append([]marketv1.Level(nil), row.Asks...),
			MidPrice:   row.MidPrice,
			ProfitLoss: portfolio.RealizedPnL[product] + float64(portfolio.Positions[product])*row.MidPrice,
		})
	}

	accepted, violations := e.enforcer.Enforce(orderedProducts(output.Orders), output.Orders, portfolio.Positions)

	matchables := make(map[string][]*matching.MatchableTrade)
	for product, trades := range data.Trades[timestamp] {
		matchables[product] = matching.NewMatchableTrades(trades)
	}

	ownTrades := make(map[string][]marketv1.Trade)
	for _, product := range orderedProducts(accepted) {
		book, ok := tradingState.OrderDepths[product]
		if !ok {
			continue
		}

		consumable := matchables[product]
		if e.opts.disableTradeMatching {
			consumable = nil
		}

		for _, order := range accepted[product] {
			fills := e.matcher.Match(timestamp, order, book, consumable, portfolio)
			if len(fills) > 0 {
				ownTrades[product] = append(ownTrades[product], fills...)
			}
		}
	}

	// Only products that actually filled replace their carry entry, so a
	// tick without fills keeps the previous fills visible to the strategy.
	for _, product := range sortedKeys(ownTrades) {
		for _, fill := range ownTrades[product] {
			result.Trades = append(result.Trades, resultv1.NewTradeLogEntry(fill))
		}
		carry.OwnTrades[product] = ownTrades[product]
	}

	for _, product := range sortedKeys(matchables) {
		var surviving []marketv1.Trade
		for _, matchable := range matchables[product] {
			if trade, ok := matchable.Surviving(); ok {
				surviving = append(surviving, trade)
				result.Trades = append(result.Trades, resultv1.NewTradeLogEntry(trade))
			}
		}
		carry.MarketTrades[product] = surviving
	}

	sandboxLog := ""
	if len(violations) > 0 {
		sandboxLog = "\n" + strings.Join(violations, "\n")
	}

	result.SandboxLogs = append(result.SandboxLogs, resultv1.SandboxLogEntry{
		SandboxLog: sandboxLog,
		LambdaLog:  sink.String(),
		Timestamp:  timestamp,
	})

	return nil
}

func orderedProducts(orders map[string][]strategyv1.OrderRequest) []string {
	products := make([]string, 0, len(orders))
	for product := range orders {
		products = append(products, product)
	}
	sort.Strings(products)
	return products
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
