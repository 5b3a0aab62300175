package indicator

import (
	"slices"
	"sync"

	"github.com/rxtech-lab/argo-signal/internal/config"
	"github.com/rxtech-lab/argo-signal/internal/types"
	"github.com/rxtech-lab/argo-signal/pkg/errors"
)

// IndicatorRegistry manages all available indicators.
type IndicatorRegistry interface {
	RegisterIndicator(indicator Indicator) error
	GetIndicator(name types.IndicatorType) (Indicator, error)
	ListIndicators() []types.IndicatorType
	RemoveIndicator(name types.IndicatorType) error
}

// IndicatorRegistryV1 manages all available indicators.
type IndicatorRegistryV1 struct {
	indicators map[types.IndicatorType]Indicator
	mu         sync.RWMutex
}

// NewIndicatorRegistry creates a new indicator registry.
func NewIndicatorRegistry() IndicatorRegistry {
	return &IndicatorRegistryV1{
		indicators: make(map[types.IndicatorType]Indicator),
		mu:         sync.RWMutex{},
	}
}

// NewDefaultRegistry creates a registry holding the seven signal indicators
// configured from cfg.
func NewDefaultRegistry(cfg config.IndicatorsConfig) (IndicatorRegistry, error) {
	registry := NewIndicatorRegistry()

	configured := []struct {
		indicator Indicator
		params    []any
	}{
		{NewRSI(), []any{cfg.RSI.Period, cfg.RSI.Oversold, cfg.RSI.Overbought}},
		{NewMACD(), []any{cfg.MACD.Fast, cfg.MACD.Slow, cfg.MACD.Signal}},
		{NewBollingerBands(), []any{cfg.Bollinger.Period, cfg.Bollinger.StdDev}},
		{NewEMA(), []any{cfg.EMA.Period}},
		{NewSMA(), []any{cfg.SMA.Period}},
		{NewStochastic(), []any{cfg.Stochastic.KPeriod, cfg.Stochastic.DPeriod, cfg.Stochastic.Oversold, cfg.Stochastic.Overbought}},
		{NewVolume(), []any{cfg.Volume.Period, cfg.Volume.HighRatio, cfg.Volume.ElevatedRatio}},
	}

	for _, c := range configured {
		if err := c.indicator.Config(c.params...); err != nil {
			return nil, errors.Wrapf(errors.ErrCodeInvalidConfiguration, err, "failed to configure %s", c.indicator.Name())
		}

		if err := registry.RegisterIndicator(c.indicator); err != nil {
			return nil, err
		}
	}

	return registry, nil
}

// RegisterIndicator adds an indicator to the registry.
func (r *IndicatorRegistryV1) RegisterIndicator(indicator Indicator) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := indicator.Name()
	if _, exists := r.indicators[name]; exists {
		return errors.Newf(errors.ErrCodeIndicatorAlreadyExists, "RegisterIndicator: indicator with name %s already registered", name)
	}

	r.indicators[name] = indicator

	return nil
}

// GetIndicator retrieves an indicator by name.
// Unknown names fail with an UnsupportedIndicatorError.
func (r *IndicatorRegistryV1) GetIndicator(name types.IndicatorType) (Indicator, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	indicator, exists := r.indicators[name]
	if !exists {
		return nil, errors.NewUnsupportedIndicatorError(string(name))
	}

	return indicator, nil
}

// ListIndicators returns the sorted names of all registered indicators.
func (r *IndicatorRegistryV1) ListIndicators() []types.IndicatorType {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]types.IndicatorType, 0, len(r.indicators))
	for name := range r.indicators {
		names = append(names, name)
	}

	slices.Sort(names)

	return names
}

// RemoveIndicator removes an indicator from the registry.
func (r *IndicatorRegistryV1) RemoveIndicator(name types.IndicatorType) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.indicators[name]; !exists {
		return errors.Newf(errors.ErrCodeIndicatorNotFound, "RemoveIndicator: indicator with name %s not found", name)
	}

	delete(r.indicators, name)

	return nil
}
