package types

import (
	"math"
	"time"

	"github.com/rxtech-lab/argo-signal/pkg/errors"
)

// MarketData is one observation of a price series.
type MarketData struct {
	Time   time.Time `json:"time" csv:"time"`
	Open   float64   `json:"open" csv:"open"`
	High   float64   `json:"high" csv:"high"`
	Low    float64   `json:"low" csv:"low"`
	Close  float64   `json:"close" csv:"close"`
	Volume float64   `json:"volume" csv:"volume"`
}

// PriceSeries is an ordered sequence of observations with strictly increasing timestamps.
// Series are treated as immutable; Append and Clone return new values.
type PriceSeries []MarketData

// Validate checks the ordering and value invariants of the series.
func (s PriceSeries) Validate() error {
	for i, md := range s {
		if math.IsNaN(md.Close) || math.IsInf(md.Close, 0) || md.Close <= 0 {
			return errors.Newf(errors.ErrCodeInvalidSeries, "invalid close price %v at index %d", md.Close, i)
		}

		if i > 0 && !md.Time.After(s[i-1].Time) {
			return errors.Newf(errors.ErrCodeInvalidSeries, "timestamps must be strictly increasing: %s at index %d follows %s",
				md.Time.Format(time.RFC3339), i, s[i-1].Time.Format(time.RFC3339))
		}
	}

	return nil
}

// Clone returns a copy of the series that shares no memory with s.
func (s PriceSeries) Clone() PriceSeries {
	out := make(PriceSeries, len(s))
	copy(out, s)

	return out
}

// Append returns a new series with md added at the end.
func (s PriceSeries) Append(md MarketData) PriceSeries {
	out := make(PriceSeries, len(s), len(s)+1)
	copy(out, s)

	return append(out, md)
}

// Last returns the most recent observation.
func (s PriceSeries) Last() (MarketData, bool) {
	if len(s) == 0 {
		return MarketData{}, false
	}

	return s[len(s)-1], true
}

// Closes returns the close column.
func (s PriceSeries) Closes() []float64 {
	out := make([]float64, len(s))
	for i, md := range s {
		out[i] = md.Close
	}

	return out
}

// Columns projects the series to parallel numeric columns. High/low and volume
// are left nil when the series carries none (all zero), so indicators fall back
// to closes instead of reading empty ranges.
func (s PriceSeries) Columns() Columns {
	cols := Columns{
		Close:  make([]float64, len(s)),
		High:   make([]float64, len(s)),
		Low:    make([]float64, len(s)),
		Volume: make([]float64, len(s)),
	}

	var hasRange, hasVolume bool

	for i, md := range s {
		cols.Close[i] = md.Close
		cols.High[i] = md.High
		cols.Low[i] = md.Low
		cols.Volume[i] = md.Volume

		hasRange = hasRange || md.High != 0 || md.Low != 0
		hasVolume = hasVolume || md.Volume != 0
	}

	if !hasRange {
		cols.High, cols.Low = nil, nil
	}

	if !hasVolume {
		cols.Volume = nil
	}

	return cols
}

// Columns holds parallel numeric sequences used by the indicator library.
// High, Low and Volume are optional and may be nil.
type Columns struct {
	Close  []float64
	High   []float64
	Low    []float64
	Volume []float64
}

// Len returns the number of observations.
func (c Columns) Len() int {
	return len(c.Close)
}

// HasHighLow reports whether both high and low columns are present.
func (c Columns) HasHighLow() bool {
	return len(c.High) > 0 && len(c.Low) > 0
}

// HasVolume reports whether the volume column is present.
func (c Columns) HasVolume() bool {
	return len(c.Volume) > 0
}

// Validate checks that every present column matches the close column length
// and holds finite values.
func (c Columns) Validate() error {
	named := []struct {
		name   string
		values []float64
	}{
		{"close", c.Close},
		{"high", c.High},
		{"low", c.Low},
		{"volume", c.Volume},
	}

	for _, col := range named {
		if col.values == nil {
			continue
		}

		if len(col.values) != len(c.Close) {
			return errors.Newf(errors.ErrCodeMismatchedLength, "%s column has %d values, close column has %d",
				col.name, len(col.values), len(c.Close))
		}

		for i, v := range col.values {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return errors.Newf(errors.ErrCodeInvalidSeries, "non-finite %s value at index %d", col.name, i)
			}
		}
	}

	return nil
}
