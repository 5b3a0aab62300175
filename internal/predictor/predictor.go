package predictor

import (
	"context"

	"github.com/rxtech-lab/argo-signal/internal/config"
	"github.com/rxtech-lab/argo-signal/internal/forecast"
	"github.com/rxtech-lab/argo-signal/internal/logger"
	"github.com/rxtech-lab/argo-signal/internal/types"
	"github.com/rxtech-lab/argo-signal/pkg/errors"
	"go.uber.org/zap"
)

const (
	NamePersistence = "persistence"
	NameLinear      = "linear"
	NameWasm        = "wasm"
)

// closeColumn is the position of the normalized close in every window row.
var closeColumn = types.FeatureIndex(types.FeatureClose)

// New builds the predictor selected by cfg. Predictors holding resources
// implement io.Closer.
func New(ctx context.Context, cfg config.ForecastConfig, log *logger.Logger) (forecast.Predictor, error) {
	log = logger.OrNop(log)

	switch cfg.Predictor {
	case NamePersistence, "":
		return NewPersistence(), nil
	case NameLinear:
		return NewLinearTrend(), nil
	case NameWasm:
		log.Info("loading wasm predictor", zap.String("path", cfg.WasmPath))

		return NewWasm(ctx, cfg.WasmPath)
	default:
		return nil, errors.Newf(errors.ErrCodeInvalidConfiguration, "unknown predictor %q", cfg.Predictor)
	}
}

func closes(window []types.FeatureVector) ([]float64, error) {
	if len(window) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidParameter, "empty prediction window")
	}

	out := make([]float64, len(window))

	for i, row := range window {
		if closeColumn >= len(row) {
			return nil, errors.Newf(errors.ErrCodeMismatchedLength, "window row %d has no close feature", i)
		}

		out[i] = row[closeColumn]
	}

	return out, nil
}

// Persistence predicts that the next close equals the latest one.
type Persistence struct{}

func NewPersistence() *Persistence {
	return &Persistence{}
}

func (p *Persistence) Predict(window []types.FeatureVector) (float64, error) {
	c, err := closes(window)
	if err != nil {
		return 0, err
	}

	return c[len(c)-1], nil
}

// LinearTrend fits a least squares line through the window closes and
// extrapolates it one step.
type LinearTrend struct{}

func NewLinearTrend() *LinearTrend {
	return &LinearTrend{}
}

func (l *LinearTrend) Predict(window []types.FeatureVector) (float64, error) {
	c, err := closes(window)
	if err != nil {
		return 0, err
	}

	n := float64(len(c))
	if len(c) == 1 {
		return c[0], nil
	}

	var sumX, sumY, sumXY, sumXX float64

	for i, y := range c {
		x := float64(i)
		sumX += x
		sumY += y
		sumXY += x * y
		sumXX += x * x
	}

	slope := (n*sumXY - sumX*sumY) / (n*sumXX - sumX*sumX)
	intercept := (sumY - slope*sumX) / n

	return intercept + slope*n, nil
}
