// Package report renders a finished run into the three-section output log
// and computes the end-of-run profit summaries.
package report

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"

	resultv1 "github.com/marketreplay/backtester/internal/domain/result/v1"
)

// activityHeader is the fixed column header of the activities section.
const activityHeader = "day;timestamp;product;bid_price_1;bid_volume_1;bid_price_2;bid_volume_2;bid_price_3;bid_volume_3;ask_price_1;ask_volume_1;ask_price_2;ask_volume_2;ask_price_3;ask_volume_3;mid_price;profit_and_loss"

// Write renders the result into w: the sandbox logs as indented JSON objects,
// the activity log as semicolon-delimited rows under the fixed header, and
// the trade history as one indented JSON array.
func Write(w io.Writer, result *resultv1.RunResult) error {
	if _, err := io.WriteString(w, "Sandbox logs:\n"); err != nil {
		return errors.Wrap(err, "write sandbox section")
	}

	sandboxEntries := make([]string, 0, len(result.SandboxLogs))
	for _, entry := range result.SandboxLogs {
		encoded, err := marshalIndented(entry)
		if err != nil {
			return errors.Wrap(err, "encode sandbox log entry")
		}
		sandboxEntries = append(sandboxEntries, encoded)
	}
	if _, err := io.WriteString(w, strings.Join(sandboxEntries, "\n")); err != nil {
		return errors.Wrap(err, "write sandbox section")
	}

	if _, err := io.WriteString(w, "\n\n\n\nActivities log:\n"+activityHeader+"\n"); err != nil {
		return errors.Wrap(err, "write activities section")
	}

	activityRows := make([]string, 0, len(result.ActivityLogs))
	for _, entry := range result.ActivityLogs {
		activityRows = append(activityRows, entry.String())
	}
	if _, err := io.WriteString(w, strings.Join(activityRows, "\n")); err != nil {
		return errors.Wrap(err, "write activities section")
	}

	if _, err := io.WriteString(w, "\n\n\n\n\nTrade History:\n"); err != nil {
		return errors.Wrap(err, "write trade history section")
	}

	trades := result.Trades
	if trades == nil {
		trades = []resultv1.TradeLogEntry{}
	}
	encoded, err := marshalIndented(trades)
	if err != nil {
		return errors.Wrap(err, "encode trade history")
	}
	if _, err := io.WriteString(w, encoded+"\n"); err != nil {
		return errors.Wrap(err, "write trade history section")
	}

	return nil
}

// WriteFile renders the result into path, creating parent directories as
// needed.
func WriteFile(path string, result *resultv1.RunResult) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Wrap(err, "create output directory")
	}

	file, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "create output file")
	}
	defer file.Close()

	if err := Write(file, result); err != nil {
		return err
	}
	return errors.Wrap(file.Sync(), "flush output file")
}

// marshalIndented encodes v with two-space indentation and without HTML
// escaping, so diagnostic text passes through verbatim.
func marshalIndented(v any) (string, error) {
	var buf bytes.Buffer
	encoder := json.NewEncoder(&buf)
	encoder.SetEscapeHTML(false)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(v); err != nil {
		return "", err
	}
	return strings.TrimRight(buf.String(), "\n"), nil
}
