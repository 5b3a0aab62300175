package indicator

import (
	"math"

	"github.com/markcheno/go-talib"
	"github.com/rxtech-lab/argo-signal/pkg/errors"
)

// The functions in this file are the pure numeric core of the indicator library.
// Every output is time-aligned with its input; positions without enough history
// hold NaN.

// nanSeries returns a slice of n NaN values.
func nanSeries(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.NaN()
	}

	return out
}

// maskWarmup overwrites the first window-1 positions of a talib output with NaN.
// talib leaves them as zero.
func maskWarmup(values []float64, window int) []float64 {
	for i := 0; i < window-1 && i < len(values); i++ {
		values[i] = math.NaN()
	}

	return values
}

// MovingAverage is the rolling arithmetic mean of finite values.
func MovingAverage(values []float64, window int) []float64 {
	if window <= 0 || len(values) < window {
		return nanSeries(len(values))
	}

	if window == 1 {
		out := make([]float64, len(values))
		copy(out, values)

		return out
	}

	return maskWarmup(talib.Sma(values, window), window)
}

// RollingMean is the rolling arithmetic mean of a series that may contain NaN.
// A window containing NaN is undefined.
func RollingMean(values []float64, window int) []float64 {
	out := nanSeries(len(values))
	if window <= 0 {
		return out
	}

	for i := window - 1; i < len(values); i++ {
		sum := 0.0
		for _, v := range values[i-window+1 : i+1] {
			sum += v
		}

		out[i] = sum / float64(window)
	}

	return out
}

// RollingStd is the rolling sample standard deviation (n-1 denominator).
// A window of identical values has a deviation of exactly zero.
func RollingStd(values []float64, window int) []float64 {
	out := nanSeries(len(values))
	if window < 2 {
		return out
	}

	for i := window - 1; i < len(values); i++ {
		win := values[i-window+1 : i+1]
		if constant(win) {
			out[i] = 0

			continue
		}

		mean := 0.0
		for _, v := range win {
			mean += v
		}

		mean /= float64(window)

		ss := 0.0
		for _, v := range win {
			ss += (v - mean) * (v - mean)
		}

		out[i] = math.Sqrt(ss / float64(window-1))
	}

	return out
}

// constant reports whether every value of win equals the first one.
func constant(win []float64) bool {
	for _, v := range win[1:] {
		if v != win[0] {
			return false
		}
	}

	return true
}

// RollingMax is the highest value of each trailing window.
func RollingMax(values []float64, window int) []float64 {
	if window <= 0 || len(values) < window {
		return nanSeries(len(values))
	}

	if window == 1 {
		out := make([]float64, len(values))
		copy(out, values)

		return out
	}

	return maskWarmup(talib.Max(values, window), window)
}

// RollingMin is the lowest value of each trailing window.
func RollingMin(values []float64, window int) []float64 {
	if window <= 0 || len(values) < window {
		return nanSeries(len(values))
	}

	if window == 1 {
		out := make([]float64, len(values))
		copy(out, values)

		return out
	}

	return maskWarmup(talib.Min(values, window), window)
}

// EWMA is the bias adjusted exponentially weighted mean with alpha = 2/(span+1).
// It is defined from the first observation.
func EWMA(values []float64, span int) []float64 {
	return ewm(values, 2/(float64(span)+1), 1)
}

// EWMARecursive is the recursive exponential average y0 = x0, yt = a*xt + (1-a)*yt-1.
func EWMARecursive(values []float64, span int) []float64 {
	out := nanSeries(len(values))
	if len(values) == 0 {
		return out
	}

	alpha := 2 / (float64(span) + 1)
	out[0] = values[0]

	for i := 1; i < len(values); i++ {
		out[i] = alpha*values[i] + (1-alpha)*out[i-1]
	}

	return out
}

// ewm computes the bias adjusted exponentially weighted mean. Positions with
// fewer than minPeriods observations are NaN.
func ewm(values []float64, alpha float64, minPeriods int) []float64 {
	out := nanSeries(len(values))
	decay := 1 - alpha

	num, den := 0.0, 0.0
	for i, v := range values {
		num = v + decay*num
		den = 1 + decay*den

		if i+1 >= minPeriods {
			out[i] = num / den
		}
	}

	return out
}

// gainsAndLosses splits the first difference into non-negative gains and losses.
// The first position has no predecessor and counts as zero for both.
func gainsAndLosses(values []float64) ([]float64, []float64) {
	gains := make([]float64, len(values))
	losses := make([]float64, len(values))

	for i := 1; i < len(values); i++ {
		delta := values[i] - values[i-1]
		if delta > 0 {
			gains[i] = delta
		} else if delta < 0 {
			losses[i] = -delta
		}
	}

	return gains, losses
}

func rsiFromAverages(avgGain, avgLoss []float64) []float64 {
	out := nanSeries(len(avgGain))

	for i := range avgGain {
		if math.IsNaN(avgGain[i]) || math.IsNaN(avgLoss[i]) {
			continue
		}

		// zero gain and zero loss leave RS undefined
		if avgGain[i] == 0 && avgLoss[i] == 0 {
			continue
		}

		rs := avgGain[i] / avgLoss[i]
		out[i] = 100 - 100/(1+rs)
	}

	return out
}

// WilderRSI smooths gains and losses with alpha = 1/period.
func WilderRSI(values []float64, period int) []float64 {
	gains, losses := gainsAndLosses(values)
	alpha := 1 / float64(period)

	return rsiFromAverages(ewm(gains, alpha, period), ewm(losses, alpha, period))
}

// RollingRSI averages gains and losses with a plain rolling mean.
func RollingRSI(values []float64, period int) []float64 {
	gains, losses := gainsAndLosses(values)

	return rsiFromAverages(RollingMean(gains, period), RollingMean(losses, period))
}

// Bollinger returns the upper, middle and lower band of a window-sized
// moving average enveloped by numStd sample standard deviations.
func Bollinger(values []float64, window int, numStd float64) (upper, middle, lower []float64) {
	middle = MovingAverage(values, window)
	std := RollingStd(values, window)

	upper = make([]float64, len(values))
	lower = make([]float64, len(values))

	for i := range values {
		upper[i] = middle[i] + numStd*std[i]
		lower[i] = middle[i] - numStd*std[i]
	}

	return upper, middle, lower
}

// degenerateWidth is the band width, relative to the band level, below which a
// band is treated as zero width. Rounding leaves flat windows a few ULPs wide.
const degenerateWidth = 1e-9

// BandPosition locates price within its band, 0 at the lower band and 1 at the upper.
func BandPosition(price, lower, upper float64) (float64, error) {
	width := upper - lower
	if width <= degenerateWidth*math.Max(math.Abs(upper), math.Abs(lower)) {
		return 0, errors.NewDegenerateBandError(-1)
	}

	return (price - lower) / width, nil
}

// MACDLines returns the MACD line, its signal line and their difference.
func MACDLines(values []float64, fast, slow, signal int) (macd, signalLine, histogram []float64) {
	fastEMA := EWMA(values, fast)
	slowEMA := EWMA(values, slow)

	macd = make([]float64, len(values))
	for i := range values {
		macd[i] = fastEMA[i] - slowEMA[i]
	}

	signalLine = EWMA(macd, signal)

	histogram = make([]float64, len(values))
	for i := range values {
		histogram[i] = macd[i] - signalLine[i]
	}

	return macd, signalLine, histogram
}

// StochasticLines returns %K over kPeriod and %D as the dPeriod mean of %K.
// A window whose high equals its low leaves %K undefined.
func StochasticLines(closes, highs, lows []float64, kPeriod, dPeriod int) (k, d []float64) {
	highest := RollingMax(highs, kPeriod)
	lowest := RollingMin(lows, kPeriod)

	k = nanSeries(len(closes))
	for i := range closes {
		rng := highest[i] - lowest[i]
		if math.IsNaN(rng) || rng == 0 {
			continue
		}

		k[i] = (closes[i] - lowest[i]) / rng * 100
	}

	return k, RollingMean(k, dPeriod)
}

// RateOfChange is the percent change between consecutive values.
func RateOfChange(values []float64) []float64 {
	out := nanSeries(len(values))

	for i := 1; i < len(values); i++ {
		if values[i-1] == 0 {
			continue
		}

		out[i] = (values[i] - values[i-1]) / values[i-1] * 100
	}

	return out
}

// LastValid returns up to k of the most recent non-NaN values, oldest first.
func LastValid(values []float64, k int) []float64 {
	out := make([]float64, 0, k)

	for i := len(values) - 1; i >= 0 && len(out) < k; i-- {
		if !math.IsNaN(values[i]) {
			out = append(out, values[i])
		}
	}

	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}

	return out
}

// last returns the final element of values, or NaN when empty.
func last(values []float64) float64 {
	if len(values) == 0 {
		return math.NaN()
	}

	return values[len(values)-1]
}

// previous returns the second to last element of values, or NaN.
func previous(values []float64) float64 {
	if len(values) < 2 {
		return math.NaN()
	}

	return values[len(values)-2]
}
