package feature

import (
	"math"
	"time"

	"github.com/rxtech-lab/argo-signal/internal/config"
	"github.com/rxtech-lab/argo-signal/internal/indicator"
	"github.com/rxtech-lab/argo-signal/internal/logger"
	"github.com/rxtech-lab/argo-signal/internal/types"
	"github.com/rxtech-lab/argo-signal/pkg/errors"
	"go.uber.org/zap"
)

// Pipeline derives the fixed ordered feature set from a raw price series.
type Pipeline struct {
	cfg    config.FeaturesConfig
	logger *logger.Logger
}

// NewPipeline creates a feature pipeline with the given windows.
func NewPipeline(cfg config.FeaturesConfig, log *logger.Logger) *Pipeline {
	return &Pipeline{
		cfg:    cfg,
		logger: logger.OrNop(log),
	}
}

// MinRows is the number of complete rows Engineer requires.
func (p *Pipeline) MinRows() int {
	return p.cfg.MinRows
}

// Warmup is the number of leading observations that can never yield a complete row.
func (p *Pipeline) Warmup() int {
	return max(p.cfg.RSIWindow, p.cfg.SMAShort-1, p.cfg.SMALong-1, p.cfg.BollingerWindow-1)
}

// Compute calculates one feature row per observation and drops every row with
// an undefined feature. series is not modified.
// A defined Bollinger band of zero width fails with DegenerateBandError.
func (p *Pipeline) Compute(series types.PriceSeries) (*types.FeatureFrame, error) {
	if err := series.Validate(); err != nil {
		return nil, err
	}

	closes := series.Closes()

	rsi := indicator.RollingRSI(closes, p.cfg.RSIWindow)
	ema := indicator.EWMARecursive(closes, p.cfg.EMASpan)
	smaShort := indicator.MovingAverage(closes, p.cfg.SMAShort)
	smaLong := indicator.MovingAverage(closes, p.cfg.SMALong)
	upper, _, lower := indicator.Bollinger(closes, p.cfg.BollingerWindow, p.cfg.BollingerStd)

	frame := &types.FeatureFrame{
		Names:     types.FeatureNames,
		Times:     make([]time.Time, 0, len(series)),
		Positions: make([]int, 0, len(series)),
		Rows:      make([]types.FeatureVector, 0, len(series)),
	}

	for i, md := range series {
		width := upper[i] - lower[i]

		position := math.NaN()
		if !math.IsNaN(width) {
			pos, err := indicator.BandPosition(md.Close, lower[i], upper[i])
			if err != nil {
				return nil, errors.NewDegenerateBandError(i)
			}

			position = pos
		}

		row := types.FeatureVector{
			md.Close,
			rsi[i],
			ema[i],
			smaShort[i],
			smaLong[i],
			upper[i],
			lower[i],
			width,
			position,
			md.Close / smaShort[i],
			md.Close / smaLong[i],
		}

		if !complete(row) {
			continue
		}

		frame.Times = append(frame.Times, md.Time)
		frame.Positions = append(frame.Positions, i)
		frame.Rows = append(frame.Rows, row)
	}

	p.logger.Debug("features computed",
		zap.Int("observations", len(series)),
		zap.Int("rows", frame.Len()),
	)

	return frame, nil
}

// Engineer computes the features and fails with InsufficientFeatureDataError
// when fewer than MinRows complete rows remain.
func (p *Pipeline) Engineer(series types.PriceSeries) (*types.FeatureFrame, error) {
	frame, err := p.Compute(series)
	if err != nil {
		return nil, err
	}

	if frame.Len() < p.cfg.MinRows {
		return nil, errors.NewInsufficientFeatureDataError(p.cfg.MinRows, frame.Len())
	}

	return frame, nil
}

func complete(row types.FeatureVector) bool {
	for _, v := range row {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}

	return true
}
