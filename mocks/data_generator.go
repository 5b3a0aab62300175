package mocks

import (
	"math"
	"math/rand"
	"time"

	"github.com/rxtech-lab/argo-signal/internal/types"
	"github.com/rxtech-lab/argo-signal/pkg/utils"
)

// DataGenerator generates realistic price series for tests.
type DataGenerator struct {
	rng *rand.Rand
}

// NewDataGenerator creates a new DataGenerator with the given seed.
// Use a fixed seed for reproducible results in tests.
func NewDataGenerator(seed int64) *DataGenerator {
	return &DataGenerator{
		rng: rand.New(rand.NewSource(seed)),
	}
}

// GeneratorConfig configures how a series is generated.
type GeneratorConfig struct {
	// StartTime is the timestamp of the first observation
	StartTime time.Time
	// Interval is the spacing between observations
	Interval time.Duration
	// Count is the number of observations
	Count int
	// InitialPrice is the starting price
	InitialPrice float64
	// Volatility controls price movement (0.02 = 2% typical daily volatility)
	Volatility float64
	// Trend is the total drift over the series (-0.5 to 0.5 for bearish to bullish)
	Trend float64
	// VolumeBase is the average volume per observation. Zero generates no volume.
	VolumeBase float64
	// VolumeVariance is the variance in volume (0.0 to 1.0)
	VolumeVariance float64
}

// DefaultConfig returns a daily series long enough for feature engineering
// and a forecast window.
func DefaultConfig() GeneratorConfig {
	return GeneratorConfig{
		StartTime:      time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		Interval:       24 * time.Hour,
		Count:          300,
		InitialPrice:   2000.0,
		Volatility:     0.02,
		Trend:          0.0,
		VolumeBase:     150000,
		VolumeVariance: 0.3,
	}
}

// Generate creates a price series following a geometric Brownian motion.
func (g *DataGenerator) Generate(config GeneratorConfig) types.PriceSeries {
	series := make(types.PriceSeries, config.Count)
	currentPrice := config.InitialPrice
	currentTime := config.StartTime

	drift := 0.0
	if config.Count > 0 {
		drift = config.Trend / float64(config.Count)
	}

	for i := range series {
		open := currentPrice

		// Box-Muller transform for a standard normal draw
		u1 := 1 - g.rng.Float64()
		u2 := g.rng.Float64()
		z := math.Sqrt(-2*math.Log(u1)) * math.Cos(2*math.Pi*u2)

		close := open * (1 + config.Volatility*z + drift)
		if close <= 0 {
			close = open * 0.99
		}

		high := math.Max(open, close) + math.Abs(g.rng.Float64()*config.Volatility*open*0.5)
		low := math.Min(open, close) - math.Abs(g.rng.Float64()*config.Volatility*open*0.5)

		if low <= 0 {
			low = math.Min(open, close) * 0.99
		}

		volume := 0.0
		if config.VolumeBase > 0 {
			volume = math.Max(config.VolumeBase*(1+(g.rng.Float64()*2-1)*config.VolumeVariance), config.VolumeBase*0.1)
		}

		series[i] = types.MarketData{
			Time:   currentTime,
			Open:   utils.RoundTo(open, 4),
			High:   utils.RoundTo(high, 4),
			Low:    utils.RoundTo(low, 4),
			Close:  utils.RoundTo(close, 4),
			Volume: utils.RoundTo(volume, utils.PricePlaces),
		}

		currentPrice = close
		currentTime = currentTime.Add(config.Interval)
	}

	return series
}

// GenerateCloses returns only the close column of a generated series.
func (g *DataGenerator) GenerateCloses(config GeneratorConfig) []float64 {
	return g.Generate(config).Closes()
}

// DefaultSeries generates the default series with a fixed seed.
func DefaultSeries() types.PriceSeries {
	return NewDataGenerator(42).Generate(DefaultConfig())
}
