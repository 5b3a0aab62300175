package forecast

import (
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-signal/internal/feature"
	"github.com/rxtech-lab/argo-signal/internal/logger"
	"github.com/rxtech-lab/argo-signal/internal/metrics"
	"github.com/rxtech-lab/argo-signal/internal/scaler"
	"github.com/rxtech-lab/argo-signal/internal/types"
	"github.com/rxtech-lab/argo-signal/pkg/errors"
	"go.uber.org/zap"
)

// Predictor maps a window of normalized feature rows, oldest first, to the
// normalized close of the next observation.
type Predictor interface {
	Predict(window []types.FeatureVector) (float64, error)
}

// StepObserver is called after every produced forecast step.
type StepObserver func(step types.ForecastStep)

// Forecaster runs the multi-step feedback loop: every prediction is appended
// to a private copy of the raw series, the features are recomputed over the
// whole extended series, and the next window is taken from the recomputed rows.
//
// Scalers are never refitted during a run. Predictions compound and no
// correction is applied, so errors accumulate with the step count.
//
// Flat predictions eventually leave the newest observation without features:
// RSI is undefined once a whole RSI window shows no price change, and a
// Bollinger window of equal closes has zero width. The first case fails the run
// with ErrCodeStaleWindow instead of feeding the predictor an unchanged window,
// the second with DegenerateBandError.
type Forecaster struct {
	pipeline  *feature.Pipeline
	scalers   *scaler.Set
	predictor Predictor
	length    int
	interval  optional.Option[time.Duration]
	observer  StepObserver
	logger    *logger.Logger
	metrics   *metrics.Metrics
}

// Option configures a Forecaster.
type Option func(*Forecaster)

// WithInterval fixes the spacing of synthesized observations. Without it the
// spacing of the last two observations is used.
func WithInterval(d time.Duration) Option {
	return func(f *Forecaster) {
		if d > 0 {
			f.interval = optional.Some(d)
		}
	}
}

// WithObserver registers a callback for every produced step.
func WithObserver(o StepObserver) Option {
	return func(f *Forecaster) {
		f.observer = o
	}
}

func WithLogger(l *logger.Logger) Option {
	return func(f *Forecaster) {
		f.logger = logger.OrNop(l)
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(f *Forecaster) {
		f.metrics = m
	}
}

// New creates a forecaster feeding windows of length rows to predictor.
// scalers must already be fitted.
func New(pipeline *feature.Pipeline, scalers *scaler.Set, predictor Predictor, length int, opts ...Option) (*Forecaster, error) {
	if pipeline == nil || scalers == nil || predictor == nil {
		return nil, errors.New(errors.ErrCodeMissingParameter, "forecaster requires a pipeline, scalers and a predictor")
	}

	if length < 1 {
		return nil, errors.Newf(errors.ErrCodeInvalidSequenceLength, "window length must be at least 1, got %d", length)
	}

	f := &Forecaster{
		pipeline:  pipeline,
		scalers:   scalers,
		predictor: predictor,
		length:    length,
		interval:  optional.None[time.Duration](),
		logger:    logger.NewNop(),
	}

	for _, opt := range opts {
		opt(f)
	}

	return f, nil
}

// Run produces steps predictions following series. series is not modified.
func (f *Forecaster) Run(series types.PriceSeries, steps int) (result types.Forecast, err error) {
	defer func() {
		f.metrics.ObserveForecastRun(err)
	}()

	if steps < 1 {
		return types.Forecast{}, errors.Newf(errors.ErrCodeInvalidParameter, "forecast steps must be at least 1, got %d", steps)
	}

	if err := series.Validate(); err != nil {
		return types.Forecast{}, err
	}

	interval, err := f.stepInterval(series)
	if err != nil {
		return types.Forecast{}, err
	}

	extended := series.Clone()
	lastObserved, _ := extended.Last()

	result = types.Forecast{
		RunID:       uuid.NewString(),
		GeneratedAt: time.Now().UTC(),
		LastClose:   lastObserved.Close,
		LastTime:    lastObserved.Time,
		Steps:       make([]types.ForecastStep, 0, steps),
	}

	log := f.logger.With(zap.String("run_id", result.RunID))
	log.Debug("forecast started",
		zap.Int("steps", steps),
		zap.Int("observations", len(series)),
		zap.Duration("interval", interval),
	)

	for k := 1; k <= steps; k++ {
		window, err := f.window(extended, k)
		if err != nil {
			return types.Forecast{}, err
		}

		started := time.Now()

		normalized, err := f.predictor.Predict(window)
		if err != nil {
			return types.Forecast{}, errors.Wrapf(errors.ErrCodePredictionFailed, err, "predictor failed at step %d", k)
		}

		if math.IsNaN(normalized) || math.IsInf(normalized, 0) {
			return types.Forecast{}, errors.Newf(errors.ErrCodeInvalidPrediction, "predictor returned %v at step %d", normalized, k)
		}

		price, err := f.scalers.InverseClose(normalized)
		if err != nil {
			return types.Forecast{}, err
		}

		if math.IsInf(price, 0) || price <= 0 {
			return types.Forecast{}, errors.Newf(errors.ErrCodeInvalidPrediction, "predicted close %v at step %d is not a valid price", price, k)
		}

		last, _ := extended.Last()

		next := last
		next.Close = price
		next.Time = last.Time.Add(interval)
		extended = extended.Append(next)

		step := types.ForecastStep{
			Step:       k,
			Time:       next.Time,
			Normalized: normalized,
			Close:      price,
		}
		result.Steps = append(result.Steps, step)

		f.metrics.ObserveForecastStep(time.Since(started))

		if f.observer != nil {
			f.observer(step)
		}

		log.Debug("forecast step",
			zap.Int("step", k),
			zap.Time("time", next.Time),
			zap.Float64("close", price),
		)
	}

	return result, nil
}

// window recomputes the features over series and returns the last length rows
// normalized with the frozen scalers.
func (f *Forecaster) window(series types.PriceSeries, step int) ([]types.FeatureVector, error) {
	frame, err := f.pipeline.Compute(series)
	if err != nil {
		return nil, err
	}

	if frame.Len() < f.length {
		return nil, errors.NewInsufficientHistoryError(f.length, frame.Len(), step)
	}

	newest, _ := series.Last()
	if latest := frame.Times[frame.Len()-1]; !latest.Equal(newest.Time) {
		f.logger.Warn("newest observation has undefined features",
			zap.Int("step", step),
			zap.Time("observation", newest.Time),
			zap.Time("latest_row", latest),
		)

		return nil, errors.Newf(errors.ErrCodeStaleWindow,
			"features of the observation at %s are undefined at step %d, the window would end at %s",
			newest.Time.Format(time.RFC3339), step, latest.Format(time.RFC3339))
	}

	return f.scalers.TransformRows(frame.Tail(f.length).Rows)
}

func (f *Forecaster) stepInterval(series types.PriceSeries) (time.Duration, error) {
	if f.interval.IsSome() {
		return f.interval.Unwrap(), nil
	}

	if len(series) < 2 {
		return 0, errors.New(errors.ErrCodeInvalidSeries, "at least two observations are needed to infer the forecast interval")
	}

	return series[len(series)-1].Time.Sub(series[len(series)-2].Time), nil
}
