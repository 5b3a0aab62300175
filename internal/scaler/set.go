package scaler

import (
	"github.com/rxtech-lab/argo-signal/internal/types"
	"github.com/rxtech-lab/argo-signal/pkg/errors"
)

// Set holds exactly one fitted scaler per feature name, in feature order.
// Once fitted it is only read, and the forecaster never refits it.
type Set struct {
	names   []types.FeatureName
	scalers map[types.FeatureName]*MinMaxScaler
}

// NewSet returns an empty set.
func NewSet() *Set {
	return &Set{
		scalers: make(map[types.FeatureName]*MinMaxScaler),
	}
}

// Fit fits one scaler per column of frame.
func (s *Set) Fit(frame *types.FeatureFrame) error {
	if frame == nil || frame.Len() == 0 {
		return errors.New(errors.ErrCodeInsufficientData, "cannot fit scalers on an empty feature frame")
	}

	names := make([]types.FeatureName, 0, len(frame.Names))
	scalers := make(map[types.FeatureName]*MinMaxScaler, len(frame.Names))

	for col, name := range frame.Names {
		column := make([]float64, frame.Len())
		for r, row := range frame.Rows {
			column[r] = row[col]
		}

		sc := NewMinMaxScaler()
		if err := sc.Fit(column); err != nil {
			return errors.Wrapf(errors.ErrCodeInvalidSeries, err, "failed to fit scaler for %s", name)
		}

		names = append(names, name)
		scalers[name] = sc
	}

	s.names = names
	s.scalers = scalers

	return nil
}

// Names returns the feature names in column order.
func (s *Set) Names() []types.FeatureName {
	return s.names
}

// Scaler returns the scaler for name.
func (s *Set) Scaler(name types.FeatureName) (*MinMaxScaler, error) {
	sc, ok := s.scalers[name]
	if !ok {
		return nil, errors.Newf(errors.ErrCodeScalerMissing, "no scaler for feature %s", name)
	}

	return sc, nil
}

// TransformRow scales one raw feature vector ordered as Names.
func (s *Set) TransformRow(row types.FeatureVector) (types.FeatureVector, error) {
	if len(row) != len(s.names) {
		return nil, errors.Newf(errors.ErrCodeMismatchedLength, "row has %d features, scalers cover %d", len(row), len(s.names))
	}

	out := make(types.FeatureVector, len(row))

	for i, name := range s.names {
		sc, err := s.Scaler(name)
		if err != nil {
			return nil, err
		}

		v, err := sc.Transform(row[i])
		if err != nil {
			return nil, err
		}

		out[i] = v
	}

	return out, nil
}

// TransformRows scales every row. The input is not modified.
func (s *Set) TransformRows(rows []types.FeatureVector) ([]types.FeatureVector, error) {
	out := make([]types.FeatureVector, len(rows))

	for i, row := range rows {
		scaled, err := s.TransformRow(row)
		if err != nil {
			return nil, err
		}

		out[i] = scaled
	}

	return out, nil
}

// TransformFrame returns a scaled copy of frame.
func (s *Set) TransformFrame(frame *types.FeatureFrame) (*types.FeatureFrame, error) {
	rows, err := s.TransformRows(frame.Rows)
	if err != nil {
		return nil, err
	}

	return &types.FeatureFrame{
		Names:     frame.Names,
		Times:     frame.Times,
		Positions: frame.Positions,
		Rows:      rows,
	}, nil
}

// InverseClose maps a normalized close back to price units.
func (s *Set) InverseClose(y float64) (float64, error) {
	sc, err := s.Scaler(types.FeatureClose)
	if err != nil {
		return 0, err
	}

	return sc.InverseTransform(y)
}
