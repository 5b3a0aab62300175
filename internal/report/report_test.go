package report

import (
	"testing"
	"time"

	"github.com/rxtech-lab/argo-signal/internal/types"
	"github.com/rxtech-lab/argo-signal/pkg/errors"
	"github.com/stretchr/testify/suite"
)

type ReportTestSuite struct {
	suite.Suite
}

func TestReportSuite(t *testing.T) {
	suite.Run(t, new(ReportTestSuite))
}

func (suite *ReportTestSuite) TestRenderResult() {
	out := RenderResult(types.IndicatorResult{
		Indicator: "RSI",
		Value:     72.5,
		Signal:    types.SignalOverbought,
		Message:   "RSI in overbought zone, consider selling",
		Values:    map[string]float64{"rsi": 72.5},
	})

	suite.Contains(out, "RSI")
	suite.Contains(out, "OVERBOUGHT ▼")
	suite.Contains(out, "consider selling")
	suite.Contains(out, "72.5000")
}

func (suite *ReportTestSuite) TestRenderReport() {
	rep := types.Report{
		Outcomes: []types.IndicatorOutcome{
			{
				Name:   types.IndicatorTypeEMA,
				Result: &types.IndicatorResult{Indicator: "EMA_21", Value: 101.25, Signal: types.SignalBullish, Message: "Price above EMA21, uptrend"},
			},
			{
				Name: types.IndicatorTypeVolume,
				Err:  errors.New(errors.ErrCodeMissingParameter, "volume column required"),
			},
		},
		Summary: types.AggregateSignal{
			OverallSignal:   types.SignalNeutral,
			Recommendation:  "No clear direction, wait",
			AverageScore:    1,
			ValidIndicators: 1,
			Confidence:      30,
		},
	}

	out := RenderReport(rep)

	suite.Contains(out, "EMA_21")
	suite.Contains(out, "BULLISH ▲")
	suite.Contains(out, "101.2500")
	suite.Contains(out, "VOLUME")
	suite.Contains(out, "ERROR")
	suite.Contains(out, "volume column required")
	suite.Contains(out, "Overall: NEUTRAL")
	suite.Contains(out, "confidence 30.00%")
}

func (suite *ReportTestSuite) TestRenderForecast() {
	start := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	out := RenderForecast(types.Forecast{
		RunID:     "abc",
		LastClose: 2000,
		LastTime:  start,
		Steps: []types.ForecastStep{
			{Step: 1, Time: start.AddDate(0, 0, 1), Close: 2050},
			{Step: 2, Time: start.AddDate(0, 0, 2), Close: 1900},
		},
	})

	suite.Contains(out, "Forecast abc")
	suite.Contains(out, "2000.00")
	suite.Contains(out, "2024-06-02 00:00")
	suite.Contains(out, "2.50")
	suite.Contains(out, "-5.00")
}

func (suite *ReportTestSuite) TestRenderMetrics() {
	out := RenderMetrics(types.EvaluationMetrics{Samples: 12, RMSE: 3.14159, DirectionalAccuracy: 58.333})

	suite.Contains(out, "12")
	suite.Contains(out, "3.1416")
	suite.Contains(out, "58.33")
}
