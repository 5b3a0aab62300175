package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rxtech-lab/argo-signal/internal/indicator"
	"github.com/rxtech-lab/argo-signal/internal/metrics"
	"github.com/rxtech-lab/argo-signal/internal/report"
	"github.com/rxtech-lab/argo-signal/internal/signal"
	"github.com/rxtech-lab/argo-signal/internal/types"
	"github.com/rxtech-lab/argo-signal/pkg/errors"
	"github.com/urfave/cli/v3"
)

const (
	formatJSON = "json"
	formatText = "text"
)

func formatFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "format",
		Aliases: []string{"f"},
		Usage:   "Output format (json, text)",
		Value:   formatJSON,
	}
}

func outputFormat(cmd *cli.Command) (string, error) {
	switch f := cmd.String("format"); f {
	case formatJSON, formatText:
		return f, nil
	default:
		return "", errors.Newf(errors.ErrCodeInvalidParameter, "unknown output format %q", f)
	}
}

// parseFloats decodes a JSON array flag. An empty flag is an absent column.
func parseFloats(cmd *cli.Command, name string) ([]float64, error) {
	raw := cmd.String(name)
	if raw == "" {
		return nil, nil
	}

	var values []float64
	if err := json.Unmarshal([]byte(raw), &values); err != nil {
		return nil, errors.Wrapf(errors.ErrCodeInvalidParameter, err, "--%s must be a JSON array of numbers", name)
	}

	return values, nil
}

func columnsFromFlags(cmd *cli.Command) (types.Columns, error) {
	var (
		cols types.Columns
		err  error
	)

	if cols.Close, err = parseFloats(cmd, "prices"); err != nil {
		return cols, err
	}

	if cols.Volume, err = parseFloats(cmd, "volumes"); err != nil {
		return cols, err
	}

	if cols.High, err = parseFloats(cmd, "highs"); err != nil {
		return cols, err
	}

	if cols.Low, err = parseFloats(cmd, "lows"); err != nil {
		return cols, err
	}

	return cols, nil
}

func (a *app) newAnalyzer(m *metrics.Metrics) (*signal.Analyzer, error) {
	registry, err := indicator.NewDefaultRegistry(a.cfg.Indicators)
	if err != nil {
		return nil, err
	}

	return signal.NewAnalyzer(registry, signal.WithLogger(a.logger), signal.WithMetrics(m)), nil
}

func (a *app) writeJSON(v any) error {
	enc := json.NewEncoder(a.out)
	enc.SetIndent("", "  ")

	if err := enc.Encode(v); err != nil {
		return errors.Wrap(errors.ErrCodeWriteFailed, "failed to encode output", err)
	}

	return nil
}

func (a *app) indicatorCommand() *cli.Command {
	return &cli.Command{
		Name:  "indicator",
		Usage: "Compute one indicator, or all of them with an aggregated recommendation",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "prices",
				Aliases:  []string{"p"},
				Usage:    "Close prices as a JSON array, oldest first",
				Required: true,
			},
			&cli.StringFlag{
				Name:    "name",
				Aliases: []string{"n"},
				Usage:   "Indicator name (rsi, macd, bollinger, ema, sma, stochastic, volume) or all",
				Value:   string(types.IndicatorTypeAll),
			},
			&cli.StringFlag{
				Name:  "volumes",
				Usage: "Volumes as a JSON array aligned with --prices",
			},
			&cli.StringFlag{
				Name:  "highs",
				Usage: "High prices as a JSON array aligned with --prices",
			},
			&cli.StringFlag{
				Name:  "lows",
				Usage: "Low prices as a JSON array aligned with --prices",
			},
			formatFlag(),
		},
		Action: a.indicatorAction,
	}
}

// indicatorAction prints indicator failures as structured values and exits
// cleanly. Only malformed input fails the command.
func (a *app) indicatorAction(_ context.Context, cmd *cli.Command) error {
	format, err := outputFormat(cmd)
	if err != nil {
		return err
	}

	cols, err := columnsFromFlags(cmd)
	if err != nil {
		return err
	}

	if err := cols.Validate(); err != nil {
		return err
	}

	analyzer, err := a.newAnalyzer(nil)
	if err != nil {
		return err
	}

	name := types.ParseIndicatorType(cmd.String("name"))

	if name == types.IndicatorTypeAll {
		rep, err := analyzer.Analyze(cols, []types.IndicatorType{name})
		if err != nil {
			return err
		}

		if format == formatText {
			_, err := fmt.Fprintln(a.out, report.RenderReport(rep))

			return err
		}

		return a.writeJSON(rep)
	}

	outcome := analyzer.Compute(cols, name)

	if format == formatText {
		text := report.ErrorStyle.Render(fmt.Sprintf("%s: %v", name, outcome.Err))
		if outcome.OK() {
			text = report.RenderResult(*outcome.Result)
		}

		_, err := fmt.Fprintln(a.out, text)

		return err
	}

	return a.writeJSON(outcome)
}
