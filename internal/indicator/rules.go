package indicator

import (
	"fmt"

	"github.com/rxtech-lab/argo-signal/internal/types"
)

// Rule maps an observation to a signal category when its condition holds.
type Rule[T any] struct {
	// Signal is the category reported when the rule matches
	Signal types.SignalCategory
	// Message renders the rationale for the matched observation
	Message func(obs T) string
	// When reports whether the rule applies. A nil When always matches.
	When func(obs T) bool
}

// RuleSet is an ordered list of rules. The first matching rule wins.
type RuleSet[T any] []Rule[T]

// Classify returns the signal and message of the first rule matching obs.
// A rule set without a matching rule classifies as NEUTRAL.
func (rs RuleSet[T]) Classify(obs T) (types.SignalCategory, string) {
	for _, rule := range rs {
		if rule.When == nil || rule.When(obs) {
			msg := ""
			if rule.Message != nil {
				msg = rule.Message(obs)
			}

			return rule.Signal, msg
		}
	}

	return types.SignalNeutral, ""
}

func static[T any](s string) func(T) string {
	return func(T) string { return s }
}

// RSIObservation is the latest RSI reading.
type RSIObservation struct {
	RSI        float64
	Overbought float64
	Oversold   float64
}

// RSIRules classifies the RSI into overbought and oversold zones.
var RSIRules = RuleSet[RSIObservation]{
	{
		Signal:  types.SignalOverbought,
		When:    func(o RSIObservation) bool { return o.RSI >= o.Overbought },
		Message: static[RSIObservation]("RSI in overbought zone, consider selling"),
	},
	{
		Signal:  types.SignalOversold,
		When:    func(o RSIObservation) bool { return o.RSI <= o.Oversold },
		Message: static[RSIObservation]("RSI in oversold zone, consider buying"),
	},
	{
		Signal:  types.SignalNeutral,
		Message: static[RSIObservation]("RSI in neutral zone"),
	},
}

// TrendObservation relates the price to a moving average and its slope.
type TrendObservation struct {
	// Label is the average name used in messages, e.g. "EMA21"
	Label string
	Price float64
	Value float64
	// Slope is the percent change of the average over the last step
	Slope float64
}

// TrendRules classifies price position and average slope for EMA and SMA.
var TrendRules = RuleSet[TrendObservation]{
	{
		Signal: types.SignalStrongBullish,
		When:   func(o TrendObservation) bool { return o.Price > o.Value && o.Slope > 0 },
		Message: func(o TrendObservation) string {
			return fmt.Sprintf("Price above %s and %s rising, strong uptrend", o.Label, o.Label)
		},
	},
	{
		Signal:  types.SignalBullish,
		When:    func(o TrendObservation) bool { return o.Price > o.Value },
		Message: func(o TrendObservation) string { return fmt.Sprintf("Price above %s, uptrend", o.Label) },
	},
	{
		Signal: types.SignalStrongBearish,
		When:   func(o TrendObservation) bool { return o.Slope < 0 },
		Message: func(o TrendObservation) string {
			return fmt.Sprintf("Price below %s and %s falling, strong downtrend", o.Label, o.Label)
		},
	},
	{
		Signal:  types.SignalBearish,
		Message: func(o TrendObservation) string { return fmt.Sprintf("Price below %s, downtrend", o.Label) },
	},
}

// BandObservation is the latest price relative to its Bollinger bands.
type BandObservation struct {
	Price  float64
	Upper  float64
	Middle float64
	Lower  float64
}

// BandRules classifies band touches, then the side of the middle band.
var BandRules = RuleSet[BandObservation]{
	{
		Signal:  types.SignalOverbought,
		When:    func(o BandObservation) bool { return o.Price >= o.Upper },
		Message: static[BandObservation]("Price touching upper band, possibly overbought"),
	},
	{
		Signal:  types.SignalOversold,
		When:    func(o BandObservation) bool { return o.Price <= o.Lower },
		Message: static[BandObservation]("Price touching lower band, possibly oversold"),
	},
	{
		Signal:  types.SignalBullish,
		When:    func(o BandObservation) bool { return o.Price > o.Middle },
		Message: static[BandObservation]("Price above middle band, uptrend"),
	},
	{
		Signal:  types.SignalBearish,
		Message: static[BandObservation]("Price below middle band, downtrend"),
	},
}

// MACDObservation is the latest MACD reading and the previous histogram value.
type MACDObservation struct {
	MACD              float64
	Signal            float64
	Histogram         float64
	PreviousHistogram float64
}

// MACDRules reports histogram sign flips as crossovers before the line ordering.
var MACDRules = RuleSet[MACDObservation]{
	{
		Signal: types.SignalBuy,
		When: func(o MACDObservation) bool {
			return o.MACD > o.Signal && o.PreviousHistogram <= 0 && o.Histogram > 0
		},
		Message: static[MACDObservation]("MACD crossed above signal line, strong buy"),
	},
	{
		Signal: types.SignalSell,
		When: func(o MACDObservation) bool {
			return o.MACD < o.Signal && o.PreviousHistogram >= 0 && o.Histogram < 0
		},
		Message: static[MACDObservation]("MACD crossed below signal line, strong sell"),
	},
	{
		Signal:  types.SignalBullish,
		When:    func(o MACDObservation) bool { return o.MACD > o.Signal },
		Message: static[MACDObservation]("MACD above signal line, uptrend"),
	},
	{
		Signal:  types.SignalBearish,
		Message: static[MACDObservation]("MACD below signal line, downtrend"),
	},
}

// StochasticObservation is the latest and previous %K/%D pair.
type StochasticObservation struct {
	K          float64
	D          float64
	PreviousK  float64
	PreviousD  float64
	Overbought float64
	Oversold   float64
}

// StochasticRules checks the zones first, then %K/%D crossovers, then ordering.
var StochasticRules = RuleSet[StochasticObservation]{
	{
		Signal:  types.SignalOverbought,
		When:    func(o StochasticObservation) bool { return o.K >= o.Overbought && o.D >= o.Overbought },
		Message: static[StochasticObservation]("Stochastic in overbought zone, consider selling"),
	},
	{
		Signal:  types.SignalOversold,
		When:    func(o StochasticObservation) bool { return o.K <= o.Oversold && o.D <= o.Oversold },
		Message: static[StochasticObservation]("Stochastic in oversold zone, consider buying"),
	},
	{
		Signal:  types.SignalBuy,
		When:    func(o StochasticObservation) bool { return o.K > o.D && o.PreviousK <= o.PreviousD },
		Message: static[StochasticObservation]("%K crossed above %D, buy signal"),
	},
	{
		Signal:  types.SignalSell,
		When:    func(o StochasticObservation) bool { return o.K < o.D && o.PreviousK >= o.PreviousD },
		Message: static[StochasticObservation]("%K crossed below %D, sell signal"),
	},
	{
		Signal:  types.SignalBullish,
		When:    func(o StochasticObservation) bool { return o.K > o.D },
		Message: static[StochasticObservation]("%K above %D, uptrend"),
	},
	{
		Signal:  types.SignalBearish,
		Message: static[StochasticObservation]("%K below %D, downtrend"),
	},
}

// VolumeObservation relates the latest volume to its average and the price move.
type VolumeObservation struct {
	// Ratio is the latest volume divided by the volume average
	Ratio float64
	// PriceChange is the percent change of the latest close
	PriceChange float64
	High        float64
	Elevated    float64
}

// VolumeRules weighs unusual volume by the direction of the concurrent price move.
var VolumeRules = RuleSet[VolumeObservation]{
	{
		Signal:  types.SignalStrongBullish,
		When:    func(o VolumeObservation) bool { return o.Ratio > o.High && o.PriceChange > 0 },
		Message: static[VolumeObservation]("High volume with rising price, strong bullish signal"),
	},
	{
		Signal:  types.SignalStrongBearish,
		When:    func(o VolumeObservation) bool { return o.Ratio > o.High },
		Message: static[VolumeObservation]("High volume with falling price, strong bearish signal"),
	},
	{
		Signal:  types.SignalBullish,
		When:    func(o VolumeObservation) bool { return o.Ratio > o.Elevated && o.PriceChange > 0 },
		Message: static[VolumeObservation]("Rising volume with rising price, bullish signal"),
	},
	{
		Signal:  types.SignalBearish,
		When:    func(o VolumeObservation) bool { return o.Ratio > o.Elevated },
		Message: static[VolumeObservation]("Rising volume with falling price, bearish signal"),
	},
	{
		Signal:  types.SignalNeutral,
		Message: static[VolumeObservation]("Low volume, no clear signal"),
	},
}
