package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-signal/internal/datasource"
	"github.com/rxtech-lab/argo-signal/internal/feature"
	"github.com/rxtech-lab/argo-signal/internal/forecast"
	"github.com/rxtech-lab/argo-signal/internal/predictor"
	"github.com/rxtech-lab/argo-signal/internal/report"
	"github.com/rxtech-lab/argo-signal/internal/scaler"
	"github.com/rxtech-lab/argo-signal/internal/sequence"
	"github.com/rxtech-lab/argo-signal/internal/types"
	"github.com/rxtech-lab/argo-signal/internal/writer"
	"github.com/rxtech-lab/argo-signal/pkg/errors"
	"github.com/schollz/progressbar/v3"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
)

// seriesFlags select the input file and the observations read from it.
func seriesFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:     "data",
			Aliases:  []string{"d"},
			Usage:    "Path to a CSV or Parquet price file",
			Required: true,
		},
		&cli.StringFlag{
			Name:  "start",
			Usage: "Earliest observation included, `YYYY-MM-DD` or RFC3339",
		},
		&cli.StringFlag{
			Name:  "end",
			Usage: "Latest observation included, `YYYY-MM-DD` or RFC3339",
		},
		&cli.IntFlag{
			Name:  "lookback",
			Usage: "Keep only the most recent N observations",
		},
	}
}

func predictorFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "predictor",
			Usage: "Predictor (persistence, linear, wasm), defaults to the configured one",
		},
		&cli.StringFlag{
			Name:  "wasm",
			Usage: "Path of the WASM predictor module",
		},
	}
}

func rangeFromFlags(cmd *cli.Command) (datasource.Range, error) {
	r := datasource.All()

	if s := cmd.String("start"); s != "" {
		t, err := datasource.ParseTime(s)
		if err != nil {
			return r, err
		}

		r.Start = optional.Some(t)
	}

	if s := cmd.String("end"); s != "" {
		t, err := datasource.ParseTime(s)
		if err != nil {
			return r, err
		}

		r.End = optional.Some(t)
	}

	if n := int(cmd.Int("lookback")); n > 0 {
		r.Lookback = optional.Some(n)
	}

	return r, nil
}

func (a *app) loadSeries(ctx context.Context, cmd *cli.Command) (types.PriceSeries, error) {
	r, err := rangeFromFlags(cmd)
	if err != nil {
		return nil, err
	}

	source, err := datasource.NewDuckDBSource(a.logger)
	if err != nil {
		return nil, err
	}
	defer source.Close()

	return source.Load(ctx, cmd.String("data"), r)
}

// newPredictor builds the configured predictor with flag overrides. The returned
// close function releases predictor resources and is never nil.
func (a *app) newPredictor(ctx context.Context, cmd *cli.Command) (forecast.Predictor, func(), error) {
	cfg := a.cfg.Forecast

	if name := cmd.String("predictor"); name != "" {
		cfg.Predictor = name
	}

	if path := cmd.String("wasm"); path != "" {
		cfg.WasmPath = path
	}

	if cfg.Predictor == predictor.NameWasm && cfg.WasmPath == "" {
		return nil, nil, errors.New(errors.ErrCodeMissingParameter, "the wasm predictor needs --wasm or forecast.wasm_path")
	}

	p, err := predictor.New(ctx, cfg, a.logger)
	if err != nil {
		return nil, nil, err
	}

	release := func() {}
	if closer, ok := p.(io.Closer); ok {
		release = func() {
			if err := closer.Close(); err != nil {
				a.logger.Warn("failed to close predictor", zap.Error(err))
			}
		}
	}

	return p, release, nil
}

// fitScalers fits one scaler per feature on frame and saves them to path when set.
func (a *app) fitScalers(frame *types.FeatureFrame, path string) (*scaler.Set, error) {
	set := scaler.NewSet()
	if err := set.Fit(frame); err != nil {
		return nil, err
	}

	if path == "" {
		return set, nil
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrCodeWriteFailed, err, "failed to create scaler state %s", path)
	}

	if err := writeScalers(set, f); err != nil {
		return nil, err
	}

	a.logger.Info("scalers saved", zap.String("path", path))

	return set, nil
}

// writeScalers saves set to w and closes it. A failed close is a failed write.
func writeScalers(set *scaler.Set, w io.WriteCloser) error {
	if err := set.Save(w); err != nil {
		_ = w.Close()

		return err
	}

	if err := w.Close(); err != nil {
		return errors.Wrap(errors.ErrCodeWriteFailed, "failed to close scaler state", err)
	}

	return nil
}

// loadScalers reads saved scalers. A missing file reports false.
func (a *app) loadScalers(path string) (*scaler.Set, bool, error) {
	if path == "" {
		return nil, false, nil
	}

	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil, false, nil
	}

	if err != nil {
		return nil, false, errors.Wrapf(errors.ErrCodeDataNotFound, err, "failed to open scaler state %s", path)
	}
	defer f.Close()

	set, err := scaler.Load(f)
	if err != nil {
		return nil, false, err
	}

	a.logger.Info("scalers loaded", zap.String("path", path))

	return set, true, nil
}

func (a *app) featuresCommand() *cli.Command {
	return &cli.Command{
		Name:  "features",
		Usage: "Compute the feature frame of a price file",
		Flags: append(seriesFlags(),
			&cli.StringFlag{
				Name:    "out",
				Aliases: []string{"o"},
				Usage:   "Export the frame to a .parquet or .csv file instead of printing it",
			},
		),
		Action: a.featuresAction,
	}
}

func (a *app) featuresAction(ctx context.Context, cmd *cli.Command) error {
	series, err := a.loadSeries(ctx, cmd)
	if err != nil {
		return err
	}

	frame, err := feature.NewPipeline(a.cfg.Features, a.logger).Compute(series)
	if err != nil {
		return err
	}

	out := cmd.String("out")
	if out == "" {
		return a.writeJSON(frame)
	}

	w, err := writer.NewDuckDBWriter(a.logger)
	if err != nil {
		return err
	}
	defer w.Close()

	return w.WriteFeatures(ctx, frame, out)
}

func (a *app) evaluateCommand() *cli.Command {
	flags := append(seriesFlags(), predictorFlags()...)
	flags = append(flags,
		&cli.StringFlag{
			Name:  "scalers",
			Usage: "Save the fitted scalers to this JSON file",
		},
		formatFlag(),
	)

	return &cli.Command{
		Name:   "evaluate",
		Usage:  "Backtest one-step predictions on the held-out tail of a price file",
		Flags:  flags,
		Action: a.evaluateAction,
	}
}

func (a *app) evaluateAction(ctx context.Context, cmd *cli.Command) error {
	format, err := outputFormat(cmd)
	if err != nil {
		return err
	}

	series, err := a.loadSeries(ctx, cmd)
	if err != nil {
		return err
	}

	frame, err := feature.NewPipeline(a.cfg.Features, a.logger).Engineer(series)
	if err != nil {
		return err
	}

	scalers, err := a.fitScalers(frame, cmd.String("scalers"))
	if err != nil {
		return err
	}

	normalized, err := scalers.TransformFrame(frame)
	if err != nil {
		return err
	}

	seq, err := sequence.New(normalized.Rows, a.cfg.Sequence.Length, sequence.WithPositions(normalized.Positions))
	if err != nil {
		return err
	}

	_, test, err := sequence.Split(seq.Collect(), a.cfg.Sequence.TestRatio)
	if err != nil {
		return err
	}

	if len(test) == 0 {
		return errors.Newf(errors.ErrCodeInsufficientData, "no held-out samples with test ratio %v", a.cfg.Sequence.TestRatio)
	}

	closeScaler, err := scalers.Scaler(types.FeatureClose)
	if err != nil {
		return err
	}

	p, release, err := a.newPredictor(ctx, cmd)
	if err != nil {
		return err
	}
	defer release()

	m, err := forecast.Backtest(p, test, closeScaler)
	if err != nil {
		return err
	}

	a.logger.Info("evaluation complete", zap.Int("samples", m.Samples), zap.Float64("rmse", m.RMSE))

	if format == formatText {
		_, err := fmt.Fprintln(a.out, report.RenderMetrics(m))

		return err
	}

	return a.writeJSON(m)
}

func (a *app) forecastCommand() *cli.Command {
	flags := append(seriesFlags(), predictorFlags()...)
	flags = append(flags,
		&cli.IntFlag{
			Name:    "steps",
			Aliases: []string{"n"},
			Usage:   "Number of future steps, defaults to the configured one",
		},
		&cli.DurationFlag{
			Name:  "interval",
			Usage: "Spacing of forecast steps, inferred from the series when unset",
		},
		&cli.StringFlag{
			Name:  "scalers",
			Usage: "Scaler state JSON file, loaded when present and written after fitting otherwise",
		},
		&cli.StringFlag{
			Name:    "out",
			Aliases: []string{"o"},
			Usage:   "Export the forecast to a .parquet or .csv file",
		},
		&cli.BoolFlag{
			Name:  "quiet",
			Usage: "Hide the progress bar",
		},
		formatFlag(),
	)

	return &cli.Command{
		Name:   "forecast",
		Usage:  "Iteratively forecast future closes of a price file",
		Flags:  flags,
		Action: a.forecastAction,
	}
}

func (a *app) forecastAction(ctx context.Context, cmd *cli.Command) error {
	format, err := outputFormat(cmd)
	if err != nil {
		return err
	}

	series, err := a.loadSeries(ctx, cmd)
	if err != nil {
		return err
	}

	pipeline := feature.NewPipeline(a.cfg.Features, a.logger)

	scalers, ok, err := a.loadScalers(cmd.String("scalers"))
	if err != nil {
		return err
	}

	if !ok {
		frame, err := pipeline.Engineer(series)
		if err != nil {
			return err
		}

		if scalers, err = a.fitScalers(frame, cmd.String("scalers")); err != nil {
			return err
		}
	}

	p, release, err := a.newPredictor(ctx, cmd)
	if err != nil {
		return err
	}
	defer release()

	steps := a.cfg.Forecast.Steps
	if cmd.IsSet("steps") {
		steps = int(cmd.Int("steps"))
	}

	interval := a.cfg.Forecast.Interval
	if cmd.IsSet("interval") {
		interval = cmd.Duration("interval")
	}

	progress := io.Discard
	if !cmd.Bool("quiet") {
		progress = a.errOut
	}

	bar := progressbar.NewOptions(steps,
		progressbar.OptionSetWriter(progress),
		progressbar.OptionSetDescription("forecasting"),
		progressbar.OptionClearOnFinish(),
	)

	opts := []forecast.Option{
		forecast.WithLogger(a.logger),
		forecast.WithObserver(func(types.ForecastStep) {
			_ = bar.Add(1)
		}),
	}

	if interval > 0 {
		opts = append(opts, forecast.WithInterval(interval))
	}

	forecaster, err := forecast.New(pipeline, scalers, p, a.cfg.Sequence.Length, opts...)
	if err != nil {
		return err
	}

	result, err := forecaster.Run(series, steps)
	if err != nil {
		return err
	}

	_ = bar.Finish()

	if out := cmd.String("out"); out != "" {
		w, err := writer.NewDuckDBWriter(a.logger)
		if err != nil {
			return err
		}
		defer w.Close()

		if err := w.WriteForecast(ctx, result, out); err != nil {
			return err
		}
	}

	if format == formatText {
		_, err := fmt.Fprintln(a.out, report.RenderForecast(result))

		return err
	}

	return a.writeJSON(result)
}
