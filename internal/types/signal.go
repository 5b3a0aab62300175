package types

// SignalCategory is the categorical reading of an indicator or of the aggregate.
type SignalCategory string

const (
	// SignalStrongBullish is a trend-confirmed upward reading
	SignalStrongBullish SignalCategory = "STRONG_BULLISH"
	// SignalBullish is an upward reading
	SignalBullish SignalCategory = "BULLISH"
	// SignalBuy is an upward crossover
	SignalBuy SignalCategory = "BUY"
	// SignalOversold is a reading in the oversold zone
	SignalOversold SignalCategory = "OVERSOLD"
	// SignalNeutral carries no directional information
	SignalNeutral SignalCategory = "NEUTRAL"
	// SignalOverbought is a reading in the overbought zone
	SignalOverbought SignalCategory = "OVERBOUGHT"
	// SignalBearish is a downward reading
	SignalBearish SignalCategory = "BEARISH"
	// SignalSell is a downward crossover
	SignalSell SignalCategory = "SELL"
	// SignalStrongBearish is a trend-confirmed downward reading
	SignalStrongBearish SignalCategory = "STRONG_BEARISH"
	// SignalUnknown is reported by the aggregator when no indicator could be scored
	SignalUnknown SignalCategory = "UNKNOWN"
)
