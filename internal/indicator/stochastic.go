package indicator

import (
	"github.com/rxtech-lab/argo-signal/internal/types"
	"github.com/rxtech-lab/argo-signal/pkg/errors"
	"github.com/rxtech-lab/argo-signal/pkg/utils"
)

// Stochastic represents the Stochastic Oscillator.
// Without high and low columns the close column stands in for both.
type Stochastic struct {
	kPeriod    int
	dPeriod    int
	overbought float64
	oversold   float64
}

// NewStochastic creates a new Stochastic Oscillator with default configuration.
func NewStochastic() Indicator {
	return &Stochastic{
		kPeriod:    14,
		dPeriod:    3,
		overbought: 80,
		oversold:   20,
	}
}

// Name returns the name of the indicator.
func (s *Stochastic) Name() types.IndicatorType {
	return types.IndicatorTypeStochastic
}

// Config configures the Stochastic Oscillator.
// Expected parameters: kPeriod (int), dPeriod (int), optional oversold (float64), optional overbought (float64).
func (s *Stochastic) Config(params ...any) error {
	if len(params) < 2 {
		return errors.New(errors.ErrCodeMissingParameter, "Config expects at least 2 parameters: kPeriod (int), dPeriod (int)")
	}

	k, err := positiveInt(params, 0, "kPeriod")
	if err != nil {
		return err
	}

	d, err := positiveInt(params, 1, "dPeriod")
	if err != nil {
		return err
	}

	oversold, overbought := s.oversold, s.overbought

	if len(params) >= 3 {
		v, ok := params[2].(float64)
		if !ok {
			return errors.New(errors.ErrCodeInvalidType, "invalid type for oversold parameter, expected float64")
		}

		oversold = v
	}

	if len(params) >= 4 {
		v, ok := params[3].(float64)
		if !ok {
			return errors.New(errors.ErrCodeInvalidType, "invalid type for overbought parameter, expected float64")
		}

		overbought = v
	}

	if oversold < 0 || overbought > 100 || oversold >= overbought {
		return errors.Newf(errors.ErrCodeInvalidThreshold, "stochastic thresholds must satisfy 0 <= oversold < overbought <= 100, got %.2f and %.2f", oversold, overbought)
	}

	s.kPeriod = k
	s.dPeriod = d
	s.oversold = oversold
	s.overbought = overbought

	return nil
}

// Calculate classifies the latest %K/%D pair.
func (s *Stochastic) Calculate(cols types.Columns) (types.IndicatorResult, error) {
	if err := requireLength(s.Name(), cols.Len(), s.kPeriod+s.dPeriod); err != nil {
		return types.IndicatorResult{}, err
	}

	highs, lows := cols.Close, cols.Close
	if cols.HasHighLow() {
		highs, lows = cols.High, cols.Low
	}

	k, d := StochasticLines(cols.Close, highs, lows, s.kPeriod, s.dPeriod)

	obs := StochasticObservation{
		K:          last(k),
		D:          last(d),
		PreviousK:  previous(k),
		PreviousD:  previous(d),
		Overbought: s.overbought,
		Oversold:   s.oversold,
	}

	if err := requireFinite(s.Name(), "%K (flat high-low range)", obs.K); err != nil {
		return types.IndicatorResult{}, err
	}

	if err := requireFinite(s.Name(), "%D", obs.D); err != nil {
		return types.IndicatorResult{}, err
	}

	signal, message := StochasticRules.Classify(obs)

	return types.IndicatorResult{
		Indicator: "STOCHASTIC",
		Value:     utils.RoundTo(obs.K, utils.PricePlaces),
		Signal:    signal,
		Message:   message,
		Params: map[string]float64{
			"k_period": float64(s.kPeriod),
			"d_period": float64(s.dPeriod),
		},
		Values: map[string]float64{
			"k_percent": utils.RoundTo(obs.K, utils.PricePlaces),
			"d_percent": utils.RoundTo(obs.D, utils.PricePlaces),
		},
		History: map[string][]float64{
			"k_percent": history(k, utils.PricePlaces),
			"d_percent": history(d, utils.PricePlaces),
		},
	}, nil
}
