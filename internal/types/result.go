package types

import (
	"bytes"
	"encoding/json"

	"github.com/rxtech-lab/argo-signal/pkg/errors"
)

// IndicatorResult is the reading of one indicator at the latest observation.
type IndicatorResult struct {
	// Indicator is the display name, e.g. "RSI" or "EMA_21"
	Indicator string `json:"indicator"`
	// Value is the headline value of the indicator
	Value float64 `json:"value"`
	// Signal is the classified category
	Signal SignalCategory `json:"signal"`
	// Message explains the classification
	Message string `json:"message"`
	// Params echoes the window parameters used
	Params map[string]float64 `json:"params,omitempty"`
	// Values holds the indicator specific current readings
	Values map[string]float64 `json:"values,omitempty"`
	// History holds the last valid values of each named series
	History map[string][]float64 `json:"history,omitempty"`
}

// IndicatorOutcome is either a result or the error that prevented it.
type IndicatorOutcome struct {
	Name   IndicatorType
	Result *IndicatorResult
	Err    error
}

// OK reports whether the outcome carries a result.
func (o IndicatorOutcome) OK() bool {
	return o.Err == nil && o.Result != nil
}

// MarshalJSON renders a failed outcome as {"error": "...", "code": N}.
func (o IndicatorOutcome) MarshalJSON() ([]byte, error) {
	if o.Err != nil {
		return json.Marshal(NewErrorPayload(o.Err))
	}

	return json.Marshal(o.Result)
}

// ErrorPayload is the structured error value returned to consumers.
type ErrorPayload struct {
	Error string `json:"error"`
	Code  int    `json:"code,omitempty"`
}

// NewErrorPayload renders err with its error code.
func NewErrorPayload(err error) ErrorPayload {
	return ErrorPayload{
		Error: err.Error(),
		Code:  int(errors.GetCode(err)),
	}
}

// SignalDetail is the contribution of one indicator to the aggregate.
type SignalDetail struct {
	Indicator string         `json:"indicator"`
	Signal    SignalCategory `json:"signal"`
	Score     int            `json:"score"`
	Message   string         `json:"message"`
}

// AggregateSignal is the weighted recommendation over a set of indicator results.
type AggregateSignal struct {
	OverallSignal   SignalCategory `json:"overall_signal"`
	Recommendation  string         `json:"recommendation"`
	AverageScore    float64        `json:"average_score"`
	TotalScore      int            `json:"total_score"`
	ValidIndicators int            `json:"valid_indicators"`
	Confidence      float64        `json:"confidence"`
	SignalDetails   []SignalDetail `json:"signal_details"`
}

// Report is the output of a multi-indicator analysis.
type Report struct {
	Outcomes []IndicatorOutcome
	Summary  AggregateSignal
}

// Outcome returns the outcome of the named indicator.
func (r Report) Outcome(name IndicatorType) (IndicatorOutcome, bool) {
	for _, o := range r.Outcomes {
		if o.Name == name {
			return o, true
		}
	}

	return IndicatorOutcome{}, false
}

// MarshalJSON renders every outcome under its indicator name followed by "summary",
// keeping the computation order.
func (r Report) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteByte('{')

	for _, o := range r.Outcomes {
		key, err := json.Marshal(string(o.Name))
		if err != nil {
			return nil, err
		}

		value, err := json.Marshal(o)
		if err != nil {
			return nil, err
		}

		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
		buf.WriteByte(',')
	}

	summary, err := json.Marshal(r.Summary)
	if err != nil {
		return nil, err
	}

	buf.WriteString(`"summary":`)
	buf.Write(summary)
	buf.WriteByte('}')

	return buf.Bytes(), nil
}
