package predictor

import (
	"context"
	"testing"

	"github.com/rxtech-lab/argo-signal/internal/config"
	"github.com/rxtech-lab/argo-signal/internal/types"
	"github.com/rxtech-lab/argo-signal/pkg/errors"
	"github.com/stretchr/testify/suite"
)

type PredictorTestSuite struct {
	suite.Suite
}

func TestPredictorSuite(t *testing.T) {
	suite.Run(t, new(PredictorTestSuite))
}

// window builds rows whose close feature takes the given values.
func window(values ...float64) []types.FeatureVector {
	out := make([]types.FeatureVector, len(values))
	for i, v := range values {
		row := make(types.FeatureVector, len(types.FeatureNames))
		row[closeColumn] = v
		row[len(row)-1] = 99
		out[i] = row
	}

	return out
}

func (suite *PredictorTestSuite) TestPersistence() {
	y, err := NewPersistence().Predict(window(0.1, 0.4, 0.3))
	suite.Require().NoError(err)
	suite.Equal(0.3, y)
}

func (suite *PredictorTestSuite) TestLinearTrend() {
	tests := []struct {
		name   string
		window []types.FeatureVector
		want   float64
	}{
		{"rising line", window(0.1, 0.2, 0.3, 0.4), 0.5},
		{"flat", window(0.6, 0.6, 0.6), 0.6},
		{"single row", window(0.7), 0.7},
		{"noisy", window(1, 3, 2), 3},
	}

	for _, tt := range tests {
		suite.Run(tt.name, func() {
			y, err := NewLinearTrend().Predict(tt.window)
			suite.Require().NoError(err)
			suite.InDelta(tt.want, y, 1e-9)
		})
	}
}

func (suite *PredictorTestSuite) TestEmptyWindow() {
	_, err := NewPersistence().Predict(nil)
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidParameter))

	_, err = NewLinearTrend().Predict([]types.FeatureVector{})
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidParameter))
}

func (suite *PredictorTestSuite) TestNewFromConfig() {
	ctx := context.Background()

	p, err := New(ctx, config.ForecastConfig{Predictor: NamePersistence}, nil)
	suite.Require().NoError(err)
	suite.IsType(&Persistence{}, p)

	p, err = New(ctx, config.ForecastConfig{Predictor: NameLinear}, nil)
	suite.Require().NoError(err)
	suite.IsType(&LinearTrend{}, p)

	_, err = New(ctx, config.ForecastConfig{Predictor: "lstm"}, nil)
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidConfiguration))

	_, err = New(ctx, config.ForecastConfig{Predictor: NameWasm, WasmPath: "/nonexistent/model.wasm"}, nil)
	suite.True(errors.HasCode(err, errors.ErrCodePredictorLoadFailed))
}
