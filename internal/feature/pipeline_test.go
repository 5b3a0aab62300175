package feature

import (
	"math"
	"testing"
	"time"

	"github.com/rxtech-lab/argo-signal/internal/config"
	"github.com/rxtech-lab/argo-signal/internal/types"
	"github.com/rxtech-lab/argo-signal/pkg/errors"
	"github.com/stretchr/testify/suite"
)

type PipelineTestSuite struct {
	suite.Suite
	pipeline *Pipeline
}

func TestPipelineSuite(t *testing.T) {
	suite.Run(t, new(PipelineTestSuite))
}

func (suite *PipelineTestSuite) SetupTest() {
	cfg, err := config.Default()
	suite.Require().NoError(err)

	suite.pipeline = NewPipeline(cfg.Features, nil)
}

func series(closes []float64) types.PriceSeries {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	out := make(types.PriceSeries, len(closes))
	for i, c := range closes {
		out[i] = types.MarketData{Time: start.AddDate(0, 0, i), Close: c}
	}

	return out
}

func wave(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = 100 + 0.2*float64(i) + 5*math.Sin(float64(i)/3)
	}

	return out
}

func (suite *PipelineTestSuite) TestWarmupRowsDropped() {
	frame, err := suite.pipeline.Compute(series(wave(120)))
	suite.Require().NoError(err)

	// the 50 period SMA is the last feature to become defined, at index 49
	suite.Equal(120-49, frame.Len())
	suite.Equal(types.FeatureNames, frame.Names)
	suite.Equal(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, 49), frame.Times[0])
	suite.Equal(49, suite.pipeline.Warmup())
	suite.Equal(49, frame.Positions[0])
	suite.Equal(119, frame.Positions[frame.Len()-1])
}

func (suite *PipelineTestSuite) TestPositionsMarkDroppedRows() {
	closes := wave(100)
	for i := 60; i < 75; i++ {
		closes[i] = closes[59]
	}

	frame, err := suite.pipeline.Compute(series(closes))
	suite.Require().NoError(err)

	// 14 unchanged moves leave RSI undefined at observations 73 and 74
	suite.Equal(100-49-2, frame.Len())
	suite.Len(frame.Positions, frame.Len())

	at := func(position int) int {
		for i, p := range frame.Positions {
			if p == position {
				return i
			}
		}

		return -1
	}

	suite.Equal(-1, at(73))
	suite.Equal(-1, at(74))
	suite.Equal(at(72)+1, at(75))
}

func (suite *PipelineTestSuite) TestRowsAreFinite() {
	frame, err := suite.pipeline.Compute(series(wave(150)))
	suite.Require().NoError(err)

	for _, row := range frame.Rows {
		suite.Len(row, len(types.FeatureNames))

		for _, v := range row {
			suite.False(math.IsNaN(v) || math.IsInf(v, 0))
		}
	}
}

func (suite *PipelineTestSuite) TestFeatureRelations() {
	closes := wave(150)
	frame, err := suite.pipeline.Compute(series(closes))
	suite.Require().NoError(err)

	last := frame.Rows[frame.Len()-1]

	get := func(name types.FeatureName) float64 {
		v, ok := last.Get(name)
		suite.Require().True(ok)

		return v
	}

	suite.Equal(closes[len(closes)-1], get(types.FeatureClose))
	suite.InDelta(get(types.FeatureBBUpper)-get(types.FeatureBBLower), get(types.FeatureBBWidth), 1e-9)
	suite.InDelta(
		(get(types.FeatureClose)-get(types.FeatureBBLower))/get(types.FeatureBBWidth),
		get(types.FeatureBBPosition), 1e-9)
	suite.InDelta(get(types.FeatureClose)/get(types.FeatureSMA10), get(types.FeaturePriceSMA10Ratio), 1e-9)
	suite.InDelta(get(types.FeatureClose)/get(types.FeatureSMA50), get(types.FeaturePriceSMA50Ratio), 1e-9)

	rsi := get(types.FeatureRSI14)
	suite.GreaterOrEqual(rsi, 0.0)
	suite.LessOrEqual(rsi, 100.0)
}

func (suite *PipelineTestSuite) TestDoesNotModifyInput() {
	s := series(wave(80))
	before := s.Clone()

	_, err := suite.pipeline.Compute(s)
	suite.Require().NoError(err)
	suite.Equal(before, s)
}

func (suite *PipelineTestSuite) TestFlatSeriesIsDegenerate() {
	flat := make([]float64, 80)
	for i := range flat {
		flat[i] = 42
	}

	_, err := suite.pipeline.Compute(series(flat))
	suite.Require().Error(err)

	var bandErr *errors.DegenerateBandError
	suite.Require().True(errors.As(err, &bandErr))
	suite.Equal(19, bandErr.Index)
}

func (suite *PipelineTestSuite) TestInvalidSeries() {
	s := series(wave(60))
	s[10].Close = -1

	_, err := suite.pipeline.Compute(s)
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidSeries))
}

func (suite *PipelineTestSuite) TestEngineerRequiresMinRows() {
	_, err := suite.pipeline.Engineer(series(wave(120)))
	suite.Require().Error(err)
	suite.True(errors.IsInsufficientFeatureDataError(err))

	var dataErr *errors.InsufficientFeatureDataError
	suite.Require().True(errors.As(err, &dataErr))
	suite.Equal(100, dataErr.Required)
	suite.Equal(71, dataErr.Actual)

	frame, err := suite.pipeline.Engineer(series(wave(149)))
	suite.Require().NoError(err)
	suite.Equal(100, frame.Len())
}
