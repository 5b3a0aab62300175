package scaler

import (
	"math"

	"github.com/rxtech-lab/argo-signal/pkg/errors"
)

// MinMaxScaler maps one feature linearly onto [0, 1] using the extremes of the
// column it was fitted on. Values outside the fitted range map outside [0, 1].
type MinMaxScaler struct {
	min    float64
	max    float64
	fitted bool
}

// NewMinMaxScaler returns an unfitted scaler.
func NewMinMaxScaler() *MinMaxScaler {
	return &MinMaxScaler{}
}

// Fit records the minimum and maximum of values.
func (s *MinMaxScaler) Fit(values []float64) error {
	if len(values) == 0 {
		return errors.New(errors.ErrCodeInsufficientData, "cannot fit scaler on an empty column")
	}

	lo, hi := math.Inf(1), math.Inf(-1)
	for i, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return errors.Newf(errors.ErrCodeInvalidSeries, "cannot fit scaler on non-finite value at index %d", i)
		}

		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}

	s.min, s.max, s.fitted = lo, hi, true

	return nil
}

// Fitted reports whether Fit has succeeded.
func (s *MinMaxScaler) Fitted() bool {
	return s.fitted
}

// Min returns the fitted minimum.
func (s *MinMaxScaler) Min() float64 {
	return s.min
}

// Max returns the fitted maximum.
func (s *MinMaxScaler) Max() float64 {
	return s.max
}

// scale is the fitted range. A constant column scales by 1 so the transform
// stays a pure shift.
func (s *MinMaxScaler) scale() float64 {
	if s.max == s.min {
		return 1
	}

	return s.max - s.min
}

// Transform returns (v - min) / (max - min).
func (s *MinMaxScaler) Transform(v float64) (float64, error) {
	if !s.fitted {
		return 0, errors.New(errors.ErrCodeScalerNotFitted, "scaler must be fitted before transform")
	}

	return (v - s.min) / s.scale(), nil
}

// InverseTransform returns y * (max - min) + min.
func (s *MinMaxScaler) InverseTransform(y float64) (float64, error) {
	if !s.fitted {
		return 0, errors.New(errors.ErrCodeScalerNotFitted, "scaler must be fitted before inverse transform")
	}

	return y*s.scale() + s.min, nil
}

// TransformAll transforms every value of a column.
func (s *MinMaxScaler) TransformAll(values []float64) ([]float64, error) {
	out := make([]float64, len(values))

	for i, v := range values {
		t, err := s.Transform(v)
		if err != nil {
			return nil, err
		}

		out[i] = t
	}

	return out, nil
}
