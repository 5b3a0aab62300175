package types

import (
	"encoding/json"
	"time"
)

type FeatureName string

const (
	FeatureClose           FeatureName = "close"
	FeatureRSI14           FeatureName = "rsi_14"
	FeatureEMA30           FeatureName = "ema_30"
	FeatureSMA10           FeatureName = "sma_10"
	FeatureSMA50           FeatureName = "sma_50"
	FeatureBBUpper         FeatureName = "bb_upper"
	FeatureBBLower         FeatureName = "bb_lower"
	FeatureBBWidth         FeatureName = "bb_width"
	FeatureBBPosition      FeatureName = "bb_position"
	FeaturePriceSMA10Ratio FeatureName = "price_sma10_ratio"
	FeaturePriceSMA50Ratio FeatureName = "price_sma50_ratio"
)

// FeatureNames is the fixed column order of every FeatureVector.
var FeatureNames = []FeatureName{
	FeatureClose,
	FeatureRSI14,
	FeatureEMA30,
	FeatureSMA10,
	FeatureSMA50,
	FeatureBBUpper,
	FeatureBBLower,
	FeatureBBWidth,
	FeatureBBPosition,
	FeaturePriceSMA10Ratio,
	FeaturePriceSMA50Ratio,
}

// FeatureIndex returns the column of name in FeatureNames, or -1.
func FeatureIndex(name FeatureName) int {
	for i, n := range FeatureNames {
		if n == name {
			return i
		}
	}

	return -1
}

// FeatureVector holds one value per feature, ordered as FeatureNames.
type FeatureVector []float64

// Get returns the value of the named feature.
func (v FeatureVector) Get(name FeatureName) (float64, bool) {
	i := FeatureIndex(name)
	if i < 0 || i >= len(v) {
		return 0, false
	}

	return v[i], true
}

// Clone returns a copy of the vector.
func (v FeatureVector) Clone() FeatureVector {
	out := make(FeatureVector, len(v))
	copy(out, v)

	return out
}

// FeatureFrame is a row-aligned table of feature vectors.
// Times[i] is the timestamp of the raw observation Rows[i] was derived from.
// Positions[i], when present, is that observation's index in the source series;
// a step larger than one marks dropped rows.
type FeatureFrame struct {
	Names     []FeatureName
	Times     []time.Time
	Positions []int
	Rows      []FeatureVector
}

// Len returns the number of rows.
func (f *FeatureFrame) Len() int {
	return len(f.Rows)
}

// Column returns a copy of the named column.
func (f *FeatureFrame) Column(name FeatureName) []float64 {
	i := FeatureIndex(name)
	if i < 0 {
		return nil
	}

	out := make([]float64, len(f.Rows))
	for r, row := range f.Rows {
		out[r] = row[i]
	}

	return out
}

// Tail returns a frame holding the last n rows. Rows are shared, not copied.
func (f *FeatureFrame) Tail(n int) *FeatureFrame {
	if n > len(f.Rows) {
		n = len(f.Rows)
	}

	start := len(f.Rows) - n

	tail := &FeatureFrame{
		Names: f.Names,
		Times: f.Times[start:],
		Rows:  f.Rows[start:],
	}

	if f.Positions != nil {
		tail.Positions = f.Positions[start:]
	}

	return tail
}

type featureRowJSON struct {
	Time   time.Time `json:"time"`
	Values []float64 `json:"values"`
}

// MarshalJSON renders the frame as {"features": [...], "rows": [{"time", "values"}]}.
func (f *FeatureFrame) MarshalJSON() ([]byte, error) {
	rows := make([]featureRowJSON, len(f.Rows))
	for i, row := range f.Rows {
		rows[i] = featureRowJSON{Time: f.Times[i], Values: row}
	}

	return json.Marshal(struct {
		Features []FeatureName   `json:"features"`
		Rows     []featureRowJSON `json:"rows"`
	}{
		Features: f.Names,
		Rows:     rows,
	})
}

// Sample is one supervised training pair built by the sequencer.
type Sample struct {
	// Index is the row of the target
	Index int
	// Window holds the L rows preceding the target, oldest first
	Window []FeatureVector
	// Target is the close feature of row Index
	Target float64
}
