package indicator

import (
	"math"

	"github.com/rxtech-lab/argo-signal/internal/types"
	"github.com/rxtech-lab/argo-signal/pkg/errors"
	"github.com/rxtech-lab/argo-signal/pkg/utils"
)

// HistoryLength is the number of trailing valid values reported with every result.
const HistoryLength = 10

// Indicator interface defines methods that any technical indicator must implement
type Indicator interface {
	// Name returns the name of the indicator
	Name() types.IndicatorType
	// Config replaces the indicator parameters
	Config(params ...any) error
	// Calculate evaluates the indicator at the latest observation of cols
	Calculate(cols types.Columns) (types.IndicatorResult, error)
}

// requireLength fails with an InsufficientDataError when fewer than required
// observations are available.
func requireLength(name types.IndicatorType, actual, required int) error {
	if actual < required {
		return errors.NewInsufficientDataErrorf(required, actual, string(name),
			"not enough data to calculate %s: need %d values, got %d", name, required, actual)
	}

	return nil
}

// requireFinite fails with an indicator-calculation error when v is undefined.
func requireFinite(name types.IndicatorType, what string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return errors.Newf(errors.ErrCodeIndicatorCalculation, "%s: %s is undefined at the latest observation", name, what)
	}

	return nil
}

// history rounds the trailing valid values of values to places.
func history(values []float64, places int32) []float64 {
	return utils.RoundAll(LastValid(values, HistoryLength), places)
}

// positiveInt reads params[i] as a positive int.
func positiveInt(params []any, i int, what string) (int, error) {
	v, ok := params[i].(int)
	if !ok {
		return 0, errors.Newf(errors.ErrCodeInvalidType, "invalid type for %s parameter, expected int", what)
	}

	if v <= 0 {
		return 0, errors.Newf(errors.ErrCodeInvalidPeriod, "%s must be a positive integer, got %d", what, v)
	}

	return v, nil
}

// positiveFloat reads params[i] as a positive float64.
func positiveFloat(params []any, i int, what string) (float64, error) {
	v, ok := params[i].(float64)
	if !ok {
		return 0, errors.Newf(errors.ErrCodeInvalidType, "invalid type for %s parameter, expected float64", what)
	}

	if v <= 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, errors.Newf(errors.ErrCodeInvalidParameter, "%s must be a positive number, got %f", what, v)
	}

	return v, nil
}
