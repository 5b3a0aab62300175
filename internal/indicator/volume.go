package indicator

import (
	"fmt"
	"math"

	"github.com/rxtech-lab/argo-signal/internal/types"
	"github.com/rxtech-lab/argo-signal/pkg/errors"
	"github.com/rxtech-lab/argo-signal/pkg/utils"
)

// Volume compares the latest volume with its moving average and reads it
// together with the direction of the latest price move.
type Volume struct {
	period        int
	highRatio     float64
	elevatedRatio float64
}

// NewVolume creates a new Volume indicator with default configuration.
func NewVolume() Indicator {
	return &Volume{
		period:        20,
		highRatio:     1.5,
		elevatedRatio: 1.2,
	}
}

// Name returns the name of the indicator.
func (v *Volume) Name() types.IndicatorType {
	return types.IndicatorTypeVolume
}

// Config configures the Volume indicator.
// Expected parameters: period (int), optional high ratio (float64), optional elevated ratio (float64).
func (v *Volume) Config(params ...any) error {
	if len(params) < 1 {
		return errors.New(errors.ErrCodeMissingParameter, "Config expects at least 1 parameter: period (int)")
	}

	period, err := positiveInt(params, 0, "period")
	if err != nil {
		return err
	}

	high, elevated := v.highRatio, v.elevatedRatio

	if len(params) >= 2 {
		if high, err = positiveFloat(params, 1, "high ratio"); err != nil {
			return err
		}
	}

	if len(params) >= 3 {
		if elevated, err = positiveFloat(params, 2, "elevated ratio"); err != nil {
			return err
		}
	}

	if elevated > high {
		return errors.Newf(errors.ErrCodeInvalidThreshold, "elevated ratio (%.2f) must not exceed high ratio (%.2f)", elevated, high)
	}

	v.period = period
	v.highRatio = high
	v.elevatedRatio = elevated

	return nil
}

// Calculate classifies the latest volume against its average.
func (v *Volume) Calculate(cols types.Columns) (types.IndicatorResult, error) {
	if !cols.HasVolume() {
		return types.IndicatorResult{}, errors.New(errors.ErrCodeMissingParameter, "volume indicator requires a volume column")
	}

	if err := requireLength(v.Name(), len(cols.Volume), v.period); err != nil {
		return types.IndicatorResult{}, err
	}

	average := MovingAverage(cols.Volume, v.period)
	currentVolume := last(cols.Volume)
	currentAverage := last(average)

	if currentAverage == 0 {
		return types.IndicatorResult{}, errors.New(errors.ErrCodeIndicatorCalculation, "volume: average volume is zero")
	}

	ratio := currentVolume / currentAverage

	priceChange := last(RateOfChange(cols.Close))
	if err := requireFinite(v.Name(), "price change", priceChange); err != nil {
		return types.IndicatorResult{}, err
	}

	signal, message := VolumeRules.Classify(VolumeObservation{
		Ratio:       ratio,
		PriceChange: priceChange,
		High:        v.highRatio,
		Elevated:    v.elevatedRatio,
	})

	values := map[string]float64{
		"current_volume": utils.RoundTo(currentVolume, utils.PricePlaces),
		"sma_volume":     utils.RoundTo(currentAverage, utils.PricePlaces),
		"volume_ratio":   utils.RoundTo(ratio, utils.PricePlaces),
		"price_change":   utils.RoundTo(priceChange, utils.PricePlaces),
	}

	// undefined after a zero-volume observation
	if roc := last(RateOfChange(cols.Volume)); !math.IsNaN(roc) {
		values["volume_roc"] = utils.RoundTo(roc, utils.PricePlaces)
	}

	return types.IndicatorResult{
		Indicator: fmt.Sprintf("VOLUME_%d", v.period),
		Value:     utils.RoundTo(ratio, utils.PricePlaces),
		Signal:    signal,
		Message:   message,
		Params: map[string]float64{
			"period": float64(v.period),
		},
		Values: values,
		History: map[string][]float64{
			"sma_volume": history(average, utils.PricePlaces),
		},
	}, nil
}
