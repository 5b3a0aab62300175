package indicator

import (
	"github.com/rxtech-lab/argo-signal/internal/types"
)

// EMA indicator implements Exponential Moving Average calculation.
type EMA struct {
	period int
}

// NewEMA creates a new EMA indicator with default configuration.
func NewEMA() Indicator {
	return &EMA{
		period: 21,
	}
}

// Name returns the name of the indicator.
func (e *EMA) Name() types.IndicatorType {
	return types.IndicatorTypeEMA
}

// Config configures the EMA indicator. Expected parameters: period (int).
func (e *EMA) Config(params ...any) error {
	period, err := configPeriod(params)
	if err != nil {
		return err
	}

	e.period = period

	return nil
}

// Calculate compares the latest close with its exponential average.
func (e *EMA) Calculate(cols types.Columns) (types.IndicatorResult, error) {
	if err := requireLength(e.Name(), cols.Len(), e.period); err != nil {
		return types.IndicatorResult{}, err
	}

	return trend(e.Name(), "EMA", e.period, cols.Close, EWMA(cols.Close, e.period))
}
