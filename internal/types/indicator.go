package types

import "strings"

type IndicatorType string

const (
	IndicatorTypeRSI            IndicatorType = "rsi"
	IndicatorTypeMACD           IndicatorType = "macd"
	IndicatorTypeBollingerBands IndicatorType = "bollinger"
	IndicatorTypeEMA            IndicatorType = "ema"
	IndicatorTypeSMA            IndicatorType = "sma"
	IndicatorTypeStochastic     IndicatorType = "stochastic"
	IndicatorTypeVolume         IndicatorType = "volume"

	// IndicatorTypeAll requests every indicator the input supports.
	IndicatorTypeAll IndicatorType = "all"
)

// DefaultIndicatorOrder is the order in which "all" computes and reports indicators.
var DefaultIndicatorOrder = []IndicatorType{
	IndicatorTypeRSI,
	IndicatorTypeMACD,
	IndicatorTypeBollingerBands,
	IndicatorTypeEMA,
	IndicatorTypeSMA,
	IndicatorTypeStochastic,
	IndicatorTypeVolume,
}

// ParseIndicatorType normalizes a user supplied indicator name.
func ParseIndicatorType(name string) IndicatorType {
	return IndicatorType(strings.ToLower(strings.TrimSpace(name)))
}
