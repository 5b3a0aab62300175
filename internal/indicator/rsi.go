package indicator

import (
	"github.com/rxtech-lab/argo-signal/internal/types"
	"github.com/rxtech-lab/argo-signal/pkg/errors"
	"github.com/rxtech-lab/argo-signal/pkg/utils"
)

// RSI represents the Relative Strength Index indicator.
type RSI struct {
	period            int
	rsiLowerThreshold float64
	rsiUpperThreshold float64
}

// NewRSI creates a new RSI indicator with default configuration.
func NewRSI() Indicator {
	return &RSI{
		period:            14, // Default period
		rsiLowerThreshold: 30,
		rsiUpperThreshold: 70,
	}
}

// Name returns the name of the indicator.
func (r *RSI) Name() types.IndicatorType {
	return types.IndicatorTypeRSI
}

// Config configures the RSI indicator.
// Expected parameters: period (int), optional lower threshold (float64), optional upper threshold (float64).
func (r *RSI) Config(params ...any) error {
	if len(params) < 1 {
		return errors.New(errors.ErrCodeMissingParameter, "Config expects at least 1 parameter: period (int)")
	}

	period, err := positiveInt(params, 0, "period")
	if err != nil {
		return err
	}

	lower, upper := r.rsiLowerThreshold, r.rsiUpperThreshold

	if len(params) >= 2 {
		threshold, ok := params[1].(float64)
		if !ok {
			return errors.New(errors.ErrCodeInvalidType, "invalid type for lower threshold parameter, expected float64")
		}

		lower = threshold
	}

	if len(params) >= 3 {
		threshold, ok := params[2].(float64)
		if !ok {
			return errors.New(errors.ErrCodeInvalidType, "invalid type for upper threshold parameter, expected float64")
		}

		upper = threshold
	}

	if lower < 0 || upper > 100 || lower >= upper {
		return errors.Newf(errors.ErrCodeInvalidThreshold, "RSI thresholds must satisfy 0 <= lower < upper <= 100, got %.2f and %.2f", lower, upper)
	}

	r.period = period
	r.rsiLowerThreshold = lower
	r.rsiUpperThreshold = upper

	return nil
}

// Calculate computes the Wilder-smoothed RSI over the close column.
func (r *RSI) Calculate(cols types.Columns) (types.IndicatorResult, error) {
	if err := requireLength(r.Name(), cols.Len(), r.period+1); err != nil {
		return types.IndicatorResult{}, err
	}

	rsi := WilderRSI(cols.Close, r.period)

	current := last(rsi)
	if err := requireFinite(r.Name(), "RSI (no price movement in window)", current); err != nil {
		return types.IndicatorResult{}, err
	}

	signal, message := RSIRules.Classify(RSIObservation{
		RSI:        current,
		Overbought: r.rsiUpperThreshold,
		Oversold:   r.rsiLowerThreshold,
	})

	return types.IndicatorResult{
		Indicator: "RSI",
		Value:     utils.RoundTo(current, utils.PricePlaces),
		Signal:    signal,
		Message:   message,
		Params: map[string]float64{
			"period": float64(r.period),
		},
		Values: map[string]float64{
			"rsi": utils.RoundTo(current, utils.PricePlaces),
		},
		History: map[string][]float64{
			"rsi": history(rsi, utils.PricePlaces),
		},
	}, nil
}
