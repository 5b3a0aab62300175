package forecast

import (
	"math"

	"github.com/rxtech-lab/argo-signal/internal/scaler"
	"github.com/rxtech-lab/argo-signal/internal/types"
	"github.com/rxtech-lab/argo-signal/pkg/errors"
)

// Evaluate compares predicted prices with the actual prices at the same positions.
//
// MAPE and directional accuracy are percentages. Directional accuracy compares
// the sign of consecutive moves and is zero for fewer than two samples. R2 is
// 1 for a perfect fit of a constant series and 0 for any other fit of one.
func Evaluate(actual, predicted []float64) (types.EvaluationMetrics, error) {
	if len(actual) != len(predicted) {
		return types.EvaluationMetrics{}, errors.Newf(errors.ErrCodeMismatchedLength,
			"%d actual values but %d predictions", len(actual), len(predicted))
	}

	n := len(actual)
	if n == 0 {
		return types.EvaluationMetrics{}, errors.New(errors.ErrCodeInsufficientData, "nothing to evaluate")
	}

	var mean float64
	for i, a := range actual {
		if a == 0 {
			return types.EvaluationMetrics{}, errors.Newf(errors.ErrCodeInvalidSeries, "actual value at index %d is zero", i)
		}

		mean += a
	}

	mean /= float64(n)

	var ssRes, ssTot, absErr, pctErr float64

	for i := range actual {
		diff := actual[i] - predicted[i]

		ssRes += diff * diff
		ssTot += (actual[i] - mean) * (actual[i] - mean)
		absErr += math.Abs(diff)
		pctErr += math.Abs(diff / actual[i])
	}

	m := types.EvaluationMetrics{
		Samples: n,
		MSE:     ssRes / float64(n),
		MAE:     absErr / float64(n),
		MAPE:    pctErr / float64(n) * 100,
	}
	m.RMSE = math.Sqrt(m.MSE)

	switch {
	case ssTot != 0:
		m.R2 = 1 - ssRes/ssTot
	case ssRes == 0:
		m.R2 = 1
	}

	if n > 1 {
		hits := 0

		for i := 1; i < n; i++ {
			if (actual[i] > actual[i-1]) == (predicted[i] > predicted[i-1]) {
				hits++
			}
		}

		m.DirectionalAccuracy = float64(hits) / float64(n-1) * 100
	}

	return m, nil
}

// Backtest runs predictor over held-out samples and evaluates the one-step
// predictions in price units.
func Backtest(predictor Predictor, samples []types.Sample, closeScaler *scaler.MinMaxScaler) (types.EvaluationMetrics, error) {
	actual := make([]float64, len(samples))
	predicted := make([]float64, len(samples))

	for i, sample := range samples {
		y, err := predictor.Predict(sample.Window)
		if err != nil {
			return types.EvaluationMetrics{}, errors.Wrapf(errors.ErrCodePredictionFailed, err, "predictor failed on sample %d", sample.Index)
		}

		if predicted[i], err = closeScaler.InverseTransform(y); err != nil {
			return types.EvaluationMetrics{}, err
		}

		if actual[i], err = closeScaler.InverseTransform(sample.Target); err != nil {
			return types.EvaluationMetrics{}, err
		}
	}

	return Evaluate(actual, predicted)
}
