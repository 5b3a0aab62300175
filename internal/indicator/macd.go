package indicator

import (
	"github.com/rxtech-lab/argo-signal/internal/types"
	"github.com/rxtech-lab/argo-signal/pkg/errors"
	"github.com/rxtech-lab/argo-signal/pkg/utils"
)

// MACD represents the Moving Average Convergence Divergence indicator.
type MACD struct {
	fastPeriod   int
	slowPeriod   int
	signalPeriod int
}

// NewMACD creates a new MACD indicator with default configuration.
func NewMACD() Indicator {
	return &MACD{
		fastPeriod:   12,
		slowPeriod:   26,
		signalPeriod: 9,
	}
}

// Name returns the name of the indicator.
func (m *MACD) Name() types.IndicatorType {
	return types.IndicatorTypeMACD
}

// Config configures the MACD indicator.
// Expected parameters: fastPeriod (int), slowPeriod (int), signalPeriod (int).
func (m *MACD) Config(params ...any) error {
	if len(params) != 3 {
		return errors.New(errors.ErrCodeMissingParameter, "Config expects 3 parameters: fastPeriod (int), slowPeriod (int), signalPeriod (int)")
	}

	fast, err := positiveInt(params, 0, "fastPeriod")
	if err != nil {
		return err
	}

	slow, err := positiveInt(params, 1, "slowPeriod")
	if err != nil {
		return err
	}

	signal, err := positiveInt(params, 2, "signalPeriod")
	if err != nil {
		return err
	}

	if fast >= slow {
		return errors.Newf(errors.ErrCodeInvalidPeriod, "fastPeriod (%d) must be less than slowPeriod (%d)", fast, slow)
	}

	m.fastPeriod = fast
	m.slowPeriod = slow
	m.signalPeriod = signal

	return nil
}

// Calculate classifies the latest MACD reading and histogram crossover.
func (m *MACD) Calculate(cols types.Columns) (types.IndicatorResult, error) {
	if err := requireLength(m.Name(), cols.Len(), m.slowPeriod+m.signalPeriod); err != nil {
		return types.IndicatorResult{}, err
	}

	macd, signalLine, histogram := MACDLines(cols.Close, m.fastPeriod, m.slowPeriod, m.signalPeriod)

	obs := MACDObservation{
		MACD:              last(macd),
		Signal:            last(signalLine),
		Histogram:         last(histogram),
		PreviousHistogram: previous(histogram),
	}

	signal, message := MACDRules.Classify(obs)

	return types.IndicatorResult{
		Indicator: "MACD",
		Value:     utils.RoundTo(obs.MACD, utils.RatioPlaces),
		Signal:    signal,
		Message:   message,
		Params: map[string]float64{
			"fast_period":   float64(m.fastPeriod),
			"slow_period":   float64(m.slowPeriod),
			"signal_period": float64(m.signalPeriod),
		},
		Values: map[string]float64{
			"macd":        utils.RoundTo(obs.MACD, utils.RatioPlaces),
			"signal_line": utils.RoundTo(obs.Signal, utils.RatioPlaces),
			"histogram":   utils.RoundTo(obs.Histogram, utils.RatioPlaces),
		},
		History: map[string][]float64{
			"macd":        history(macd, utils.RatioPlaces),
			"signal_line": history(signalLine, utils.RatioPlaces),
			"histogram":   history(histogram, utils.RatioPlaces),
		},
	}, nil
}
