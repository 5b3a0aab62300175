package scaler

import (
	"encoding/json"
	"io"

	"github.com/rxtech-lab/argo-signal/internal/types"
	"github.com/rxtech-lab/argo-signal/internal/version"
	"github.com/rxtech-lab/argo-signal/pkg/errors"
)

type featureState struct {
	Name types.FeatureName `json:"name"`
	Min  float64           `json:"min"`
	Max  float64           `json:"max"`
}

// State is the persisted form of a fitted Set.
type State struct {
	Version  string         `json:"version"`
	Features []featureState `json:"features"`
}

// Save writes the fitted scalers as JSON.
func (s *Set) Save(w io.Writer) error {
	if len(s.names) == 0 {
		return errors.New(errors.ErrCodeScalerNotFitted, "cannot save an unfitted scaler set")
	}

	state := State{
		Version:  version.ScalerStateVersion,
		Features: make([]featureState, 0, len(s.names)),
	}

	for _, name := range s.names {
		sc := s.scalers[name]
		state.Features = append(state.Features, featureState{Name: name, Min: sc.min, Max: sc.max})
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	if err := enc.Encode(state); err != nil {
		return errors.Wrap(errors.ErrCodeWriteFailed, "failed to write scaler state", err)
	}

	return nil
}

// Load reads scalers written by Save. State written by an incompatible
// version is rejected. The state must hold exactly one scaler per feature;
// the loaded set follows the FeatureNames column order whatever the file order.
func Load(r io.Reader) (*Set, error) {
	var state State
	if err := json.NewDecoder(r).Decode(&state); err != nil {
		return nil, errors.Wrap(errors.ErrCodeScalerStateInvalid, "failed to decode scaler state", err)
	}

	if err := version.CheckVersionCompatibility(version.ScalerStateVersion, state.Version); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidVersion, "incompatible scaler state", err)
	}

	if len(state.Features) == 0 {
		return nil, errors.New(errors.ErrCodeScalerStateInvalid, "scaler state holds no features")
	}

	set := NewSet()

	for _, f := range state.Features {
		if types.FeatureIndex(f.Name) < 0 {
			return nil, errors.Newf(errors.ErrCodeScalerStateInvalid, "unknown feature %q in scaler state", f.Name)
		}

		if _, ok := set.scalers[f.Name]; ok {
			return nil, errors.Newf(errors.ErrCodeScalerStateInvalid, "duplicate scaler for feature %s", f.Name)
		}

		if f.Max < f.Min {
			return nil, errors.Newf(errors.ErrCodeScalerStateInvalid, "scaler for %s has max %v below min %v", f.Name, f.Max, f.Min)
		}

		set.scalers[f.Name] = &MinMaxScaler{min: f.Min, max: f.Max, fitted: true}
	}

	for _, name := range types.FeatureNames {
		if _, ok := set.scalers[name]; !ok {
			return nil, errors.Newf(errors.ErrCodeScalerStateInvalid, "scaler state has no scaler for feature %s", name)
		}

		set.names = append(set.names, name)
	}

	return set, nil
}
