// Package backtest runs a strategy over one or more days, merges the
// per-day results and writes the final output log.
package backtest

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/oklog/ulid/v2"
	"github.com/pkg/errors"

	"github.com/marketreplay/backtester/internal/app/engine"
	marketv1 "github.com/marketreplay/backtester/internal/domain/market/v1"
	resultv1 "github.com/marketreplay/backtester/internal/domain/result/v1"
	"github.com/marketreplay/backtester/internal/usecase/merger"
	"github.com/marketreplay/backtester/internal/usecase/report"
	"github.com/marketreplay/backtester/pkg/logger"
)

// Days without a day number are expanded by probing this inclusive range.
const (
	probeDayMin = -5
	probeDayMax = 5
)

// DaySpec identifies the data to replay: a specific round/day pair, or a
// whole round when no day is given.
type DaySpec struct {
	Round  int
	Day    int
	HasDay bool
}

// ParseDaySpec parses "ROUND-DAY" or "ROUND". Day numbers may be negative,
// so only the first dash separates the two parts.
func ParseDaySpec(s string) (DaySpec, error) {
	round, rest, found := strings.Cut(s, "-")

	roundNum, err := strconv.Atoi(round)
	if err != nil {
		return DaySpec{}, fmt.Errorf("invalid day specification %q", s)
	}
	if !found {
		return DaySpec{Round: roundNum}, nil
	}

	dayNum, err := strconv.Atoi(rest)
	if err != nil {
		return DaySpec{}, fmt.Errorf("invalid day specification %q", s)
	}
	return DaySpec{Round: roundNum, Day: dayNum, HasDay: true}, nil
}

// Backtest orchestrates a full run: loading days, replaying them through the
// engine, merging and reporting.
type Backtest struct {
	store     marketv1.Store
	engine    *engine.Engine
	log       logger.Interface
	console   io.Writer
	outputDir string
}

// NewBacktest wires a backtest. Day summaries and progress lines go to
// console; structured diagnostics go to the logger.
func NewBacktest(store marketv1.Store, eng *engine.Engine, log logger.Interface, console io.Writer, outputDir string) *Backtest {
	return &Backtest{
		store:     store,
		engine:    eng,
		log:       log,
		console:   console,
		outputDir: outputDir,
	}
}

// Run replays every requested day in order, prints per-day summaries,
// merges the results into one timeline and writes the output log. It
// returns the path of the written file. Days that have no data are skipped
// with a warning; a run with no loadable days at all is an error.
func (b *Backtest) Run(ctx context.Context, specs []string, outputPath string, mergePnL bool) (string, error) {
	days, err := b.resolveDays(ctx, specs)
	if err != nil {
		return "", err
	}

	results := make([]*resultv1.RunResult, 0, len(days))
	for _, data := range days {
		fmt.Fprintf(b.console, "Backtesting on round %d day %d\n", data.Round, data.Day)

		result, err := b.engine.Run(data)
		if err != nil {
			return "", errors.Wrapf(err, "round %d day %d", data.Round, data.Day)
		}

		report.WriteSummary(b.console, result)
		fmt.Fprintln(b.console)
		results = append(results, result)
	}

	merged, err := merger.MergeAll(results, mergePnL)
	if err != nil {
		return "", err
	}

	if len(results) > 1 {
		fmt.Fprintln(b.console, "Profit summary of all days:")
		report.WriteSummary(b.console, merged)
		fmt.Fprintln(b.console)
	}

	if outputPath == "" {
		outputPath = filepath.Join(b.outputDir, ulid.Make().String()+".log")
	}
	if err := report.WriteFile(outputPath, merged); err != nil {
		return "", err
	}

	fmt.Fprintf(b.console, "Successfully saved backtest results to %s\n", outputPath)
	return outputPath, nil
}

// resolveDays expands the day specifications into loaded day data, in the
// order they were requested.
func (b *Backtest) resolveDays(ctx context.Context, specs []string) ([]*marketv1.DayData, error) {
	var days []*marketv1.DayData

	for _, raw := range splitSpecs(specs) {
		spec, err := ParseDaySpec(raw)
		if err != nil {
			return nil, err
		}

		if spec.HasDay {
			data, err := b.loadDay(ctx, spec.Round, spec.Day)
			if err != nil {
				return nil, err
			}
			if data != nil {
				days = append(days, data)
			}
			continue
		}

		for day := probeDayMin; day <= probeDayMax; day++ {
			data, err := b.store.LoadDay(ctx, spec.Round, day)
			if errors.Is(err, marketv1.ErrDayNotFound) {
				continue
			}
			if err != nil {
				return nil, errors.Wrapf(err, "round %d day %d", spec.Round, day)
			}
			days = append(days, data)
		}
	}

	if len(days) == 0 {
		return nil, errors.New("no data found for the requested days")
	}
	return days, nil
}

// splitSpecs allows both space- and comma-separated day lists on the
// command line.
func splitSpecs(specs []string) []string {
	var split []string
	for _, spec := range specs {
		for _, part := range strings.Split(spec, ",") {
			if part != "" {
				split = append(split, part)
			}
		}
	}
	return split
}

func (b *Backtest) loadDay(ctx context.Context, round, day int) (*marketv1.DayData, error) {
	data, err := b.store.LoadDay(ctx, round, day)
	if errors.Is(err, marketv1.ErrDayNotFound) {
		b.log.Warn("no data for requested day, skipping",
			logger.NewField("round", round),
			logger.NewField("day", day),
		)
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "round %d day %d", round, day)
	}
	return data, nil
}
