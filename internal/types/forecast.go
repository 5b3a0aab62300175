package types

import "time"

// ForecastStep is one prediction of an iterative forecast run.
type ForecastStep struct {
	Step       int       `json:"step"`
	Time       time.Time `json:"time"`
	Normalized float64   `json:"normalized"`
	Close      float64   `json:"close"`
}

// Forecast is the result of one iterative forecast run.
type Forecast struct {
	RunID       string         `json:"run_id"`
	GeneratedAt time.Time      `json:"generated_at"`
	LastClose   float64        `json:"last_close"`
	LastTime    time.Time      `json:"last_time"`
	Steps       []ForecastStep `json:"steps"`
}

// Closes returns the denormalized predictions in step order.
func (f Forecast) Closes() []float64 {
	out := make([]float64, len(f.Steps))
	for i, s := range f.Steps {
		out[i] = s.Close
	}

	return out
}

// EvaluationMetrics summarizes one-step prediction quality in price units.
type EvaluationMetrics struct {
	Samples             int     `json:"samples"`
	MSE                 float64 `json:"mse"`
	MAE                 float64 `json:"mae"`
	RMSE                float64 `json:"rmse"`
	MAPE                float64 `json:"mape"`
	R2                  float64 `json:"r2"`
	DirectionalAccuracy float64 `json:"directional_accuracy"`
}
