package utils

import (
	"math"

	"github.com/shopspring/decimal"
)

// Decimal places used when reporting values to consumers.
const (
	PricePlaces int32 = 2
	RatioPlaces int32 = 4
)

// RoundTo rounds v half away from zero to the given number of decimal places.
// NaN and infinities are returned unchanged.
func RoundTo(v float64, places int32) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return v
	}

	rounded, _ := decimal.NewFromFloat(v).Round(places).Float64()

	return rounded
}

// RoundAll rounds every element of values into a new slice.
func RoundAll(values []float64, places int32) []float64 {
	out := make([]float64, len(values))
	for i, v := range values {
		out[i] = RoundTo(v, places)
	}

	return out
}
