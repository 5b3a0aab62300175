package indicator

import (
	"fmt"
	"math"

	"github.com/rxtech-lab/argo-signal/internal/types"
	"github.com/rxtech-lab/argo-signal/pkg/errors"
	"github.com/rxtech-lab/argo-signal/pkg/utils"
)

// trend classifies the latest close against a moving average series.
func trend(name types.IndicatorType, label string, period int, closes, average []float64) (types.IndicatorResult, error) {
	price := last(closes)
	current := last(average)

	if err := requireFinite(name, label, current); err != nil {
		return types.IndicatorResult{}, err
	}

	// without a previous average the slope is flat
	slope := 0.0
	if prev := previous(average); !math.IsNaN(prev) && prev != 0 {
		slope = (current - prev) / prev * 100
	}

	signal, message := TrendRules.Classify(TrendObservation{
		Label: fmt.Sprintf("%s%d", label, period),
		Price: price,
		Value: current,
		Slope: slope,
	})

	return types.IndicatorResult{
		Indicator: fmt.Sprintf("%s_%d", label, period),
		Value:     utils.RoundTo(current, utils.PricePlaces),
		Signal:    signal,
		Message:   message,
		Params: map[string]float64{
			"period": float64(period),
		},
		Values: map[string]float64{
			"current_price": utils.RoundTo(price, utils.PricePlaces),
			"average":       utils.RoundTo(current, utils.PricePlaces),
			"slope":         utils.RoundTo(slope, utils.RatioPlaces),
		},
		History: map[string][]float64{
			string(name): history(average, utils.PricePlaces),
		},
	}, nil
}

func configPeriod(params []any) (int, error) {
	if len(params) != 1 {
		return 0, errors.New(errors.ErrCodeMissingParameter, "Config expects 1 parameter: period (int)")
	}

	return positiveInt(params, 0, "period")
}
