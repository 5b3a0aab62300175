package signal

import (
	"time"

	"github.com/rxtech-lab/argo-signal/internal/indicator"
	"github.com/rxtech-lab/argo-signal/internal/logger"
	"github.com/rxtech-lab/argo-signal/internal/metrics"
	"github.com/rxtech-lab/argo-signal/internal/types"
	"go.uber.org/zap"
)

// Analyzer computes named indicators through a registry and aggregates them.
type Analyzer struct {
	registry indicator.IndicatorRegistry
	logger   *logger.Logger
	metrics  *metrics.Metrics
}

// AnalyzerOption configures an Analyzer.
type AnalyzerOption func(*Analyzer)

// WithLogger sets the logger of the analyzer.
func WithLogger(l *logger.Logger) AnalyzerOption {
	return func(a *Analyzer) {
		a.logger = logger.OrNop(l)
	}
}

// WithMetrics records indicator durations and aggregate signals on m.
func WithMetrics(m *metrics.Metrics) AnalyzerOption {
	return func(a *Analyzer) {
		a.metrics = m
	}
}

// NewAnalyzer creates an analyzer over registry.
func NewAnalyzer(registry indicator.IndicatorRegistry, opts ...AnalyzerOption) *Analyzer {
	a := &Analyzer{
		registry: registry,
		logger:   logger.NewNop(),
	}

	for _, opt := range opts {
		opt(a)
	}

	return a
}

// Expand resolves the requested names into the indicators to compute.
// "all" expands to every default indicator, with volume only when cols carries volumes.
func Expand(names []types.IndicatorType, cols types.Columns) []types.IndicatorType {
	out := make([]types.IndicatorType, 0, len(names))

	for _, name := range names {
		if name != types.IndicatorTypeAll {
			out = append(out, name)

			continue
		}

		for _, n := range types.DefaultIndicatorOrder {
			if n == types.IndicatorTypeVolume && !cols.HasVolume() {
				continue
			}

			out = append(out, n)
		}
	}

	return out
}

// Compute evaluates a single indicator. Failures are captured in the outcome.
func (a *Analyzer) Compute(cols types.Columns, name types.IndicatorType) types.IndicatorOutcome {
	outcome := types.IndicatorOutcome{Name: name}

	start := time.Now()

	ind, err := a.registry.GetIndicator(name)
	if err != nil {
		outcome.Err = err

		return outcome
	}

	result, err := ind.Calculate(cols)
	a.metrics.ObserveIndicator(string(name), time.Since(start), err)

	if err != nil {
		a.logger.Debug("indicator failed", zap.String("indicator", string(name)), zap.Error(err))
		outcome.Err = err

		return outcome
	}

	outcome.Result = &result

	return outcome
}

// Analyze computes every requested indicator in order and aggregates the
// successful ones. A failing indicator never fails the analysis.
func (a *Analyzer) Analyze(cols types.Columns, names []types.IndicatorType) (types.Report, error) {
	if err := cols.Validate(); err != nil {
		return types.Report{}, err
	}

	expanded := Expand(names, cols)
	outcomes := make([]types.IndicatorOutcome, 0, len(expanded))

	for _, name := range expanded {
		outcomes = append(outcomes, a.Compute(cols, name))
	}

	summary := Aggregate(outcomes)
	a.metrics.ObserveAggregate(string(summary.OverallSignal))

	a.logger.Debug("analysis complete",
		zap.Int("indicators", len(outcomes)),
		zap.Int("valid", summary.ValidIndicators),
		zap.String("overall", string(summary.OverallSignal)),
	)

	return types.Report{Outcomes: outcomes, Summary: summary}, nil
}
