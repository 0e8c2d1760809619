// Package csvdata loads day data from the semicolon-delimited CSV layout:
// round{R}/prices_round_{R}_day_{D}.csv next to its trade files.
package csvdata

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	marketv1 "github.com/marketreplay/backtester/internal/domain/market/v1"
	"github.com/marketreplay/backtester/pkg/logger"
)

const (
	pricesHeader = "day;timestamp;product;bid_price_1;bid_volume_1;bid_price_2;bid_volume_2;bid_price_3;bid_volume_3;ask_price_1;ask_volume_1;ask_price_2;ask_volume_2;ask_price_3;ask_volume_3;mid_price;profit_and_loss"
	tradesHeader = "timestamp;buyer;seller;symbol;currency;price;quantity"
)

// tradeSuffixes are tried in order; the first existing file wins.
var tradeSuffixes = []string{"wn", "nn"}

// Store reads day data from a data root on the local filesystem.
type Store struct {
	root string
	log  logger.Interface
}

// NewStore creates a store reading from the given data root directory.
func NewStore(root string, log logger.Interface) *Store {
	return &Store{root: root, log: log}
}

// LoadDay reads and indexes the price and trade files of one round/day.
// A missing prices file means the day does not exist; a missing trades file
// just means the day has no historical trades.
func (s *Store) LoadDay(_ context.Context, round, day int) (*marketv1.DayData, error) {
	pricesPath := filepath.Join(s.root, fmt.Sprintf("round%d", round), fmt.Sprintf("prices_round_%d_day_%d.csv", round, day))

	prices, err := s.readPrices(pricesPath)
	if os.IsNotExist(errors.Cause(err)) {
		return nil, fmt.Errorf("round %d day %d: %w", round, day, marketv1.ErrDayNotFound)
	}
	if err != nil {
		return nil, err
	}

	var trades []marketv1.Trade
	for _, suffix := range tradeSuffixes {
		tradesPath := filepath.Join(s.root, fmt.Sprintf("round%d", round), fmt.Sprintf("trades_round_%d_day_%d_%s.csv", round, day, suffix))

		trades, err = s.readTrades(tradesPath)
		if os.IsNotExist(errors.Cause(err)) {
			continue
		}
		if err != nil {
			return nil, err
		}
		break
	}

	s.log.Debug("loaded day data",
		logger.NewField("round", round),
		logger.NewField("day", day),
		logger.NewField("price_rows", len(prices)),
		logger.NewField("trades", len(trades)),
	)

	return marketv1.NewDayData(round, day, prices, trades), nil
}

func (s *Store) readPrices(path string) ([]marketv1.SnapshotRow, error) {
	records, err := readDelimited(path, pricesHeader)
	if err != nil {
		return nil, err
	}

	rows := make([]marketv1.SnapshotRow, 0, len(records))
	for i, record := range records {
		row, err := parseSnapshotRow(record)
		if err != nil {
			return nil, errors.Wrapf(err, "%s line %d", path, i+2)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func (s *Store) readTrades(path string) ([]marketv1.Trade, error) {
	records, err := readDelimited(path, tradesHeader)
	if err != nil {
		return nil, err
	}

	trades := make([]marketv1.Trade, 0, len(records))
	for i, record := range records {
		trade, err := parseTrade(record)
		if err != nil {
			return nil, errors.Wrapf(err, "%s line %d", path, i+2)
		}
		trades = append(trades, trade)
	}
	return trades, nil
}

// readDelimited reads a semicolon-delimited file and validates its header
// against the expected column list.
func readDelimited(path, header string) ([][]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.Comma = ';'

	first, err := reader.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("%s: missing header", path)
	}
	if err != nil {
		return nil, errors.Wrap(err, path)
	}

	expected := strings.Split(header, ";")
	if len(first) != len(expected) {
		return nil, fmt.Errorf("%s: unexpected header %v", path, first)
	}
	for i := range expected {
		if first[i] != expected[i] {
			return nil, fmt.Errorf("%s: unexpected header column %q, want %q", path, first[i], expected[i])
		}
	}

	records, err := reader.ReadAll()
	if err != nil {
		return nil, errors.Wrap(err, path)
	}
	return records, nil
}

func parseSnapshotRow(record []string) (marketv1.SnapshotRow, error) {
	day, err := strconv.Atoi(record[0])
	if err != nil {
		return marketv1.SnapshotRow{}, errors.Wrap(err, "day")
	}
	timestamp, err := strconv.ParseInt(record[1], 10, 64)
	if err != nil {
		return marketv1.SnapshotRow{}, errors.Wrap(err, "timestamp")
	}

	bids, err := parseLevels(record[3:9])
	if err != nil {
		return marketv1.SnapshotRow{}, errors.Wrap(err, "bid levels")
	}
	asks, err := parseLevels(record[9:15])
	if err != nil {
		return marketv1.SnapshotRow{}, errors.Wrap(err, "ask levels")
	}

	midPrice, err := strconv.ParseFloat(record[15], 64)
	if err != nil {
		return marketv1.SnapshotRow{}, errors.Wrap(err, "mid_price")
	}
	profitLoss, err := strconv.ParseFloat(record[16], 64)
	if err != nil {
		return marketv1.SnapshotRow{}, errors.Wrap(err, "profit_and_loss")
	}

	return marketv1.SnapshotRow{
		Day:        day,
		Timestamp:  timestamp,
		Product:    record[2],
		Bids:       bids,
		Asks:       asks,
		MidPrice:   midPrice,
		ProfitLoss: profitLoss,
	}, nil
}

// parseLevels parses up to three price/volume column pairs, stopping at the
// first absent level.
func parseLevels(columns []string) ([]marketv1.Level, error) {
	var levels []marketv1.Level
	for i := 0; i+1 < len(columns); i += 2 {
		if columns[i] == "" || columns[i+1] == "" {
			break
		}

		price, err := parseIntColumn(columns[i])
		if err != nil {
			return nil, err
		}
		volume, err := parseIntColumn(columns[i+1])
		if err != nil {
			return nil, err
		}

		levels = append(levels, marketv1.Level{Price: price, Volume: volume})
	}
	return levels, nil
}

func parseTrade(record []string) (marketv1.Trade, error) {
	timestamp, err := strconv.ParseInt(record[0], 10, 64)
	if err != nil {
		return marketv1.Trade{}, errors.Wrap(err, "timestamp")
	}
	price, err := parseIntColumn(record[5])
	if err != nil {
		return marketv1.Trade{}, errors.Wrap(err, "price")
	}
	quantity, err := parseIntColumn(record[6])
	if err != nil {
		return marketv1.Trade{}, errors.Wrap(err, "quantity")
	}

	return marketv1.Trade{
		Timestamp: timestamp,
		Buyer:     record[1],
		Seller:    record[2],
		Symbol:    record[3],
		Price:     price,
		Quantity:  quantity,
	}, nil
}

// parseIntColumn accepts both plain integers and the float renderings some
// exports use for integer columns.
func parseIntColumn(s string) (int, error) {
	if v, err := strconv.Atoi(s); err == nil {
		return v, nil
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	return int(f), nil
}
