package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rxtech-lab/argo-signal/pkg/errors"
)

const namespace = "argo_signal"

// Metrics holds all Prometheus metrics of argo-signal.
// Every method is safe to call on a nil *Metrics, which records nothing.
type Metrics struct {
	// Indicator engine
	IndicatorComputeDur *prometheus.HistogramVec // labels: indicator
	IndicatorErrors     *prometheus.CounterVec   // labels: indicator, code
	AggregateSignals    *prometheus.CounterVec   // labels: signal

	// Forecast loop
	ForecastRuns  *prometheus.CounterVec // labels: status
	ForecastSteps prometheus.Counter
	PredictDur    prometheus.Histogram

	// HTTP surface
	HTTPRequests *prometheus.CounterVec // labels: route, status
}

// New creates the metrics and registers them on reg.
func New(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		IndicatorComputeDur: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "indicator",
			Name:      "compute_duration_seconds",
			Help:      "Duration of a single indicator computation",
			Buckets:   prometheus.ExponentialBuckets(0.00001, 4, 10),
		}, []string{"indicator"}),
		IndicatorErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "indicator",
			Name:      "errors_total",
			Help:      "Failed indicator computations by error code",
		}, []string{"indicator", "code"}),
		AggregateSignals: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "signal",
			Name:      "aggregates_total",
			Help:      "Aggregated recommendations by overall signal",
		}, []string{"signal"}),
		ForecastRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "forecast",
			Name:      "runs_total",
			Help:      "Forecast runs by outcome",
		}, []string{"status"}),
		ForecastSteps: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "forecast",
			Name:      "steps_total",
			Help:      "Forecast steps produced",
		}),
		PredictDur: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "forecast",
			Name:      "predict_duration_seconds",
			Help:      "Duration of one predictor call including feature recomputation",
			Buckets:   prometheus.DefBuckets,
		}),
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by route and status",
		}, []string{"route", "status"}),
	}

	collectors := []prometheus.Collector{
		m.IndicatorComputeDur,
		m.IndicatorErrors,
		m.AggregateSignals,
		m.ForecastRuns,
		m.ForecastSteps,
		m.PredictDur,
		m.HTTPRequests,
	}

	for _, c := range collectors {
		if err := reg.Register(c); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidConfiguration, "failed to register metric", err)
		}
	}

	return m, nil
}

// ObserveIndicator records one indicator computation.
func (m *Metrics) ObserveIndicator(indicator string, d time.Duration, err error) {
	if m == nil {
		return
	}

	m.IndicatorComputeDur.WithLabelValues(indicator).Observe(d.Seconds())

	if err != nil {
		m.IndicatorErrors.WithLabelValues(indicator, strconv.Itoa(int(errors.GetCode(err)))).Inc()
	}
}

// ObserveAggregate records one aggregated recommendation.
func (m *Metrics) ObserveAggregate(signal string) {
	if m == nil {
		return
	}

	m.AggregateSignals.WithLabelValues(signal).Inc()
}

// ObserveForecastStep records one produced forecast step.
func (m *Metrics) ObserveForecastStep(d time.Duration) {
	if m == nil {
		return
	}

	m.ForecastSteps.Inc()
	m.PredictDur.Observe(d.Seconds())
}

// ObserveForecastRun records the outcome of a forecast run.
func (m *Metrics) ObserveForecastRun(err error) {
	if m == nil {
		return
	}

	status := "ok"
	if err != nil {
		status = "error"
	}

	m.ForecastRuns.WithLabelValues(status).Inc()
}

// ObserveRequest records one served HTTP request.
func (m *Metrics) ObserveRequest(route string, status int) {
	if m == nil {
		return
	}

	m.HTTPRequests.WithLabelValues(route, strconv.Itoa(status)).Inc()
}
