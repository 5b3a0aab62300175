package forecast

import (
	"math"
	"testing"

	"github.com/rxtech-lab/argo-signal/internal/scaler"
	"github.com/rxtech-lab/argo-signal/internal/types"
	"github.com/rxtech-lab/argo-signal/mocks"
	"github.com/rxtech-lab/argo-signal/pkg/errors"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"
)

type EvaluateTestSuite struct {
	suite.Suite
}

func TestEvaluateSuite(t *testing.T) {
	suite.Run(t, new(EvaluateTestSuite))
}

func (suite *EvaluateTestSuite) TestMetrics() {
	actual := []float64{100, 110, 105, 120}
	predicted := []float64{102, 108, 107, 118}

	m, err := Evaluate(actual, predicted)
	suite.Require().NoError(err)

	suite.Equal(4, m.Samples)
	suite.InDelta(4.0, m.MSE, 1e-12)
	suite.InDelta(2.0, m.MAE, 1e-12)
	suite.InDelta(2.0, m.RMSE, 1e-12)
	suite.InDelta((2.0/100+2.0/110+2.0/105+2.0/120)/4*100, m.MAPE, 1e-9)

	// mean 108.75, total sum of squares 218.75
	suite.InDelta(1-16/218.75, m.R2, 1e-9)
	suite.InDelta(100.0, m.DirectionalAccuracy, 1e-12)
}

func (suite *EvaluateTestSuite) TestDirectionalAccuracy() {
	m, err := Evaluate([]float64{1, 2, 3, 2, 1}, []float64{1, 2, 1, 2, 1})
	suite.Require().NoError(err)

	// moves: up up down down against up down up down
	suite.InDelta(50.0, m.DirectionalAccuracy, 1e-12)
}

func (suite *EvaluateTestSuite) TestConstantActual() {
	m, err := Evaluate([]float64{5, 5}, []float64{5, 5})
	suite.Require().NoError(err)
	suite.Equal(1.0, m.R2)

	m, err = Evaluate([]float64{5, 5}, []float64{4, 6})
	suite.Require().NoError(err)
	suite.Equal(0.0, m.R2)
}

func (suite *EvaluateTestSuite) TestInvalidInput() {
	_, err := Evaluate([]float64{1}, []float64{1, 2})
	suite.True(errors.HasCode(err, errors.ErrCodeMismatchedLength))

	_, err = Evaluate(nil, nil)
	suite.True(errors.HasCode(err, errors.ErrCodeInsufficientData))

	_, err = Evaluate([]float64{0, 1}, []float64{1, 1})
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidSeries))
}

func (suite *EvaluateTestSuite) TestBacktest() {
	ctrl := gomock.NewController(suite.T())
	predictor := mocks.NewMockPredictor(ctrl)

	closeScaler := scaler.NewMinMaxScaler()
	suite.Require().NoError(closeScaler.Fit([]float64{100, 200}))

	samples := []types.Sample{
		{Index: 3, Window: []types.FeatureVector{{0.1}}, Target: 0.2},
		{Index: 4, Window: []types.FeatureVector{{0.2}}, Target: 0.4},
	}

	predictor.EXPECT().Predict(samples[0].Window).Return(0.2, nil)
	predictor.EXPECT().Predict(samples[1].Window).Return(0.3, nil)

	m, err := Backtest(predictor, samples, closeScaler)
	suite.Require().NoError(err)

	suite.Equal(2, m.Samples)
	suite.InDelta(5.0, m.MAE, 1e-9)
	suite.InDelta(50.0, m.MSE, 1e-9)
	suite.False(math.IsNaN(m.R2))
}
