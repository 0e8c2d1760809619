// Command backtester replays historical market data against a strategy and
// writes the resulting output log.
//
// Usage:
//
//	backtester [flags] DAYS...
//
// Each DAYS argument is either ROUND-DAY (for example 1-0) or just ROUND to
// run every available day of that round.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/pkg/errors"

	"github.com/marketreplay/backtester/internal/app/backtest"
	"github.com/marketreplay/backtester/internal/app/engine"
	marketv1 "github.com/marketreplay/backtester/internal/domain/market/v1"
	"github.com/marketreplay/backtester/internal/infrastructure/csvdata"
	qdbmarket "github.com/marketreplay/backtester/internal/infrastructure/questdb/market"
	"github.com/marketreplay/backtester/internal/strategies"
	"github.com/marketreplay/backtester/internal/viewer"
	"github.com/marketreplay/backtester/pkg/config"
	apperrors "github.com/marketreplay/backtester/pkg/errors"
	"github.com/marketreplay/backtester/pkg/logger"
	"github.com/marketreplay/backtester/pkg/questdb"
)

func main() {
	strategyName := flag.String("strategy", "cross", "name of the strategy to run")
	mergePnL := flag.Bool("merge-pnl", false, "continue profit/loss across days instead of restarting at zero")
	noTrades := flag.Bool("no-trades", false, "disable matching orders against historical trades")
	vis := flag.Bool("vis", false, "open the results in the visualizer when the run finishes")
	outputPath := flag.String("out", "", "output file path (defaults to a generated file in the output directory)")
	flag.Parse()

	cfg := &config.Config{}
	config.MustLoad(cfg)

	log, err := logger.NewLogger(logger.WithLoggingLevel(logger.Level(cfg.LogLevel)))
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	if err := run(cfg, log, *strategyName, flag.Args(), *outputPath, *mergePnL, *noTrades, *vis); err != nil {
		log.Error(apperrors.TracerFromError(err))
		_ = log.Sync()
		os.Exit(1)
	}
}

func run(
	cfg *config.Config,
	log logger.Interface,
	strategyName string,
	daySpecs []string,
	outputPath string,
	mergePnL, noTrades, vis bool,
) error {
	if len(daySpecs) == 0 {
		return errors.New("no days given, pass ROUND-DAY or ROUND arguments")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	strategy, err := strategies.Default().Create(strategyName)
	if err != nil {
		return err
	}

	limits := marketv1.DefaultLimits
	if cfg.LimitsFile != "" {
		limits, err = config.LoadLimits(cfg.LimitsFile)
		if err != nil {
			return err
		}
	}

	store, cleanup, err := newStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer cleanup()

	var engineOpts []engine.Option
	if noTrades {
		engineOpts = append(engineOpts, engine.WithDisabledTradeMatching())
	}

	eng := engine.NewEngine(strategy, limits, log, engineOpts...)
	bt := backtest.NewBacktest(store, eng, log, os.Stdout, cfg.OutputDir)

	writtenPath, err := bt.Run(ctx, daySpecs, outputPath, mergePnL)
	if err != nil {
		return err
	}

	if vis {
		return viewer.NewServer(log, os.Stdout).Open(ctx, writtenPath)
	}
	return nil
}

// newStore builds the market record store selected by the configuration.
func newStore(ctx context.Context, cfg *config.Config, log logger.Interface) (marketv1.Store, func(), error) {
	switch strings.ToLower(cfg.DataSource) {
	case "csv":
		return csvdata.NewStore(cfg.DataRoot, log), func() {}, nil
	case "questdb":
		client, err := questdb.NewClient(ctx, cfg.QuestDB)
		if err != nil {
			return nil, nil, errors.Wrap(err, "connect to questdb")
		}
		return qdbmarket.NewRepository(client, log), client.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown data source %q, want csv or questdb", cfg.DataSource)
	}
}
