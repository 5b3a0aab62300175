package signal

import (
	"math"
	"strings"

	"github.com/rxtech-lab/argo-signal/internal/types"
	"github.com/rxtech-lab/argo-signal/pkg/utils"
)

// Weights maps every scoreable signal category to its contribution.
var Weights = map[types.SignalCategory]int{
	types.SignalStrongBullish: 3,
	types.SignalBullish:       2,
	types.SignalBuy:           2,
	types.SignalOversold:      1,
	types.SignalNeutral:       0,
	types.SignalOverbought:    -1,
	types.SignalBearish:       -2,
	types.SignalSell:          -2,
	types.SignalStrongBearish: -3,
}

type threshold struct {
	signal         types.SignalCategory
	recommendation string
	matches        func(avg float64) bool
}

// overallThresholds maps the average score to the overall category, first match wins.
var overallThresholds = []threshold{
	{types.SignalStrongBullish, "Strong buy signal, consider buying", func(avg float64) bool { return avg >= 1.5 }},
	{types.SignalBullish, "Bullish signal, buying possible", func(avg float64) bool { return avg >= 0.5 }},
	{types.SignalStrongBearish, "Strong sell signal, consider selling", func(avg float64) bool { return avg <= -1.5 }},
	{types.SignalBearish, "Bearish signal, selling possible", func(avg float64) bool { return avg <= -0.5 }},
	{types.SignalNeutral, "Neutral signal, keep watching", func(float64) bool { return true }},
}

const unknownRecommendation = "Unable to analyze, no indicator produced a usable signal; check the input data"

// Aggregate combines indicator outcomes into one weighted recommendation.
// Failed outcomes and categories without a weight are excluded from scoring.
// The result depends only on outcomes, in their given order.
func Aggregate(outcomes []types.IndicatorOutcome) types.AggregateSignal {
	details := make([]types.SignalDetail, 0, len(outcomes))
	total := 0

	for _, o := range outcomes {
		if !o.OK() {
			continue
		}

		score, ok := Weights[o.Result.Signal]
		if !ok {
			continue
		}

		total += score
		details = append(details, types.SignalDetail{
			Indicator: strings.ToUpper(string(o.Name)),
			Signal:    o.Result.Signal,
			Score:     score,
			Message:   o.Result.Message,
		})
	}

	if len(details) == 0 {
		return types.AggregateSignal{
			OverallSignal:   types.SignalUnknown,
			Recommendation:  unknownRecommendation,
			AverageScore:    0,
			TotalScore:      0,
			ValidIndicators: 0,
			Confidence:      0,
			SignalDetails:   details,
		}
	}

	average := float64(total) / float64(len(details))

	var overall threshold
	for _, t := range overallThresholds {
		if t.matches(average) {
			overall = t

			break
		}
	}

	return types.AggregateSignal{
		OverallSignal:   overall.signal,
		Recommendation:  overall.recommendation,
		AverageScore:    utils.RoundTo(average, utils.PricePlaces),
		TotalScore:      total,
		ValidIndicators: len(details),
		Confidence:      utils.RoundTo(math.Min(100, math.Abs(average)*30), utils.PricePlaces),
		SignalDetails:   details,
	}
}
