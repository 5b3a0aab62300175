package indicator

import (
	"github.com/rxtech-lab/argo-signal/internal/types"
)

// SMA indicator implements Simple Moving Average calculation.
type SMA struct {
	period int
}

// NewSMA creates a new SMA indicator with default configuration.
func NewSMA() Indicator {
	return &SMA{
		period: 20,
	}
}

// Name returns the name of the indicator.
func (s *SMA) Name() types.IndicatorType {
	return types.IndicatorTypeSMA
}

// Config configures the SMA indicator. Expected parameters: period (int).
func (s *SMA) Config(params ...any) error {
	period, err := configPeriod(params)
	if err != nil {
		return err
	}

	s.period = period

	return nil
}

// Calculate compares the latest close with its simple average.
func (s *SMA) Calculate(cols types.Columns) (types.IndicatorResult, error) {
	if err := requireLength(s.Name(), cols.Len(), s.period); err != nil {
		return types.IndicatorResult{}, err
	}

	return trend(s.Name(), "SMA", s.period, cols.Close, MovingAverage(cols.Close, s.period))
}
