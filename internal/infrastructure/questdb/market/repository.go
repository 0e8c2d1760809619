// Package market loads day data from QuestDB tables mirroring the CSV
// layout: one prices table and one trades table, keyed by round and day.
package market

import (
	"context"
	"fmt"

	"github.com/pkg/errors"

	marketv1 "github.com/marketreplay/backtester/internal/domain/market/v1"
	"github.com/marketreplay/backtester/pkg/logger"
	"github.com/marketreplay/backtester/pkg/questdb"
)

const (
	pricesQuery = `
		SELECT day, timestamp, product,
		       bid_price_1, bid_volume_1, bid_price_2, bid_volume_2, bid_price_3, bid_volume_3,
		       ask_price_1, ask_volume_1, ask_price_2, ask_volume_2, ask_price_3, ask_volume_3,
		       mid_price, profit_and_loss
		FROM market_prices
		WHERE round = $1 AND day = $2
		ORDER BY timestamp, product`

	tradesQuery = `
		SELECT timestamp, buyer, seller, symbol, price, quantity
		FROM market_trades
		WHERE round = $1 AND day = $2
		ORDER BY timestamp`
)

// Repository implements the day data store on top of a QuestDB client.
type Repository struct {
	client questdb.QuestDBClient
	log    logger.Interface
}

// NewRepository creates a repository backed by the given client.
func NewRepository(client questdb.QuestDBClient, log logger.Interface) *Repository {
	return &Repository{client: client, log: log}
}

// LoadDay queries and indexes one round/day. A day without any price rows
// does not exist.
func (r *Repository) LoadDay(ctx context.Context, round, day int) (*marketv1.DayData, error) {
	prices, err := r.queryPrices(ctx, round, day)
	if err != nil {
		return nil, errors.Wrapf(err, "query prices for round %d day %d", round, day)
	}
	if len(prices) == 0 {
		return nil, fmt.Errorf("round %d day %d: %w", round, day, marketv1.ErrDayNotFound)
	}

	trades, err := r.queryTrades(ctx, round, day)
	if err != nil {
		return nil, errors.Wrapf(err, "query trades for round %d day %d", round, day)
	}

	r.log.Debug("loaded day data",
		logger.NewField("round", round),
		logger.NewField("day", day),
		logger.NewField("price_rows", len(prices)),
		logger.NewField("trades", len(trades)),
	)

	return marketv1.NewDayData(round, day, prices, trades), nil
}

func (r *Repository) queryPrices(ctx context.Context, round, day int) ([]marketv1.SnapshotRow, error) {
	rows, err := r.client.Query(ctx, pricesQuery, round, day)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []marketv1.SnapshotRow
	for rows.Next() {
		var (
			row        marketv1.SnapshotRow
			bidColumns [6]*int
			askColumns [6]*int
		)

		err := rows.Scan(
			&row.Day, &row.Timestamp, &row.Product,
			&bidColumns[0], &bidColumns[1], &bidColumns[2], &bidColumns[3], &bidColumns[4], &bidColumns[5],
			&askColumns[0], &askColumns[1], &askColumns[2], &askColumns[3], &askColumns[4], &askColumns[5],
			&row.MidPrice, &row.ProfitLoss,
		)
		if err != nil {
			return nil, err
		}

		row.Bids = collectLevels(bidColumns)
		row.Asks = collectLevels(askColumns)
		result = append(result, row)
	}
	return result, rows.Err()
}

func (r *Repository) queryTrades(ctx context.Context, round, day int) ([]marketv1.Trade, error) {
	rows, err := r.client.Query(ctx, tradesQuery, round, day)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []marketv1.Trade
	for rows.Next() {
		var trade marketv1.Trade
		err := rows.Scan(&trade.Timestamp, &trade.Buyer, &trade.Seller, &trade.Symbol, &trade.Price, &trade.Quantity)
		if err != nil {
			return nil, err
		}
		result = append(result, trade)
	}
	return result, rows.Err()
}

// collectLevels turns nullable price/volume column pairs into levels,
// stopping at the first absent level.
func collectLevels(columns [6]*int) []marketv1.Level {
	var levels []marketv1.Level
	for i := 0; i < len(columns); i += 2 {
		if columns[i] == nil || columns[i+1] == nil {
			break
		}
		levels = append(levels, marketv1.Level{Price: *columns[i], Volume: *columns[i+1]})
	}
	return levels
}
