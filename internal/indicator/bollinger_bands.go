package indicator

import (
	"github.com/rxtech-lab/argo-signal/internal/types"
	"github.com/rxtech-lab/argo-signal/pkg/errors"
	"github.com/rxtech-lab/argo-signal/pkg/utils"
)

// BollingerBands implements the Indicator interface for Bollinger Bands.
type BollingerBands struct {
	period int     // Number of periods for moving average
	stdDev float64 // Number of standard deviations
}

// NewBollingerBands creates a new Bollinger Bands indicator with default configuration.
func NewBollingerBands() Indicator {
	return &BollingerBands{
		period: 20,  // Default period
		stdDev: 2.0, // Default standard deviation
	}
}

// Name returns the name of the indicator.
func (bb *BollingerBands) Name() types.IndicatorType {
	return types.IndicatorTypeBollingerBands
}

// Config configures the Bollinger Bands indicator. Expected parameters: period (int), stdDev (float64).
func (bb *BollingerBands) Config(params ...any) error {
	if len(params) != 2 {
		return errors.New(errors.ErrCodeMissingParameter, "Config expects 2 parameters: period (int), stdDev (float64)")
	}

	period, err := positiveInt(params, 0, "period")
	if err != nil {
		return err
	}

	if period < 2 {
		return errors.Newf(errors.ErrCodeInvalidPeriod, "period must be at least 2 for a sample standard deviation, got %d", period)
	}

	stdDev, ok := params[1].(float64)
	if !ok {
		return errors.New(errors.ErrCodeInvalidType, "invalid type for stdDev parameter, expected float64")
	}

	if stdDev <= 0 {
		return errors.Newf(errors.ErrCodeInvalidStdDevPeriod, "stdDev must be a positive number, got %f", stdDev)
	}

	bb.period = period
	bb.stdDev = stdDev

	return nil
}

// Calculate locates the latest close within its bands.
// A zero-width band fails with DegenerateBandError.
func (bb *BollingerBands) Calculate(cols types.Columns) (types.IndicatorResult, error) {
	if err := requireLength(bb.Name(), cols.Len(), bb.period); err != nil {
		return types.IndicatorResult{}, err
	}

	upper, middle, lower := Bollinger(cols.Close, bb.period, bb.stdDev)

	price := last(cols.Close)
	currentUpper, currentMiddle, currentLower := last(upper), last(middle), last(lower)

	if err := requireFinite(bb.Name(), "band", currentUpper-currentLower); err != nil {
		return types.IndicatorResult{}, err
	}

	position, err := BandPosition(price, currentLower, currentUpper)
	if err != nil {
		return types.IndicatorResult{}, errors.NewDegenerateBandError(cols.Len() - 1)
	}

	signal, message := BandRules.Classify(BandObservation{
		Price:  price,
		Upper:  currentUpper,
		Middle: currentMiddle,
		Lower:  currentLower,
	})

	bandwidth := (currentUpper - currentLower) / currentMiddle * 100

	return types.IndicatorResult{
		Indicator: "BOLLINGER_BANDS",
		Value:     utils.RoundTo(currentMiddle, utils.PricePlaces),
		Signal:    signal,
		Message:   message,
		Params: map[string]float64{
			"period":  float64(bb.period),
			"std_dev": bb.stdDev,
		},
		Values: map[string]float64{
			"current_price": utils.RoundTo(price, utils.PricePlaces),
			"upper_band":    utils.RoundTo(currentUpper, utils.PricePlaces),
			"middle_band":   utils.RoundTo(currentMiddle, utils.PricePlaces),
			"lower_band":    utils.RoundTo(currentLower, utils.PricePlaces),
			"bandwidth":     utils.RoundTo(bandwidth, utils.PricePlaces),
			"band_position": utils.RoundTo(position, utils.PricePlaces),
		},
		History: map[string][]float64{
			"upper_band":  history(upper, utils.PricePlaces),
			"middle_band": history(middle, utils.PricePlaces),
			"lower_band":  history(lower, utils.PricePlaces),
		},
	}, nil
}
