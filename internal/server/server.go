package server

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rxtech-lab/argo-signal/internal/config"
	"github.com/rxtech-lab/argo-signal/internal/logger"
	"github.com/rxtech-lab/argo-signal/internal/metrics"
	"github.com/rxtech-lab/argo-signal/internal/signal"
	"github.com/rxtech-lab/argo-signal/internal/types"
	"github.com/rxtech-lab/argo-signal/internal/version"
	"github.com/rxtech-lab/argo-signal/pkg/errors"
	"go.uber.org/zap"
)

// IndicatorRequest is the body of POST /api/v1/indicators/{name}.
type IndicatorRequest struct {
	Prices  []float64 `json:"prices" validate:"required,min=1"`
	Volumes []float64 `json:"volumes,omitempty"`
	Highs   []float64 `json:"highs,omitempty"`
	Lows    []float64 `json:"lows,omitempty"`
}

// Columns projects the request onto indicator input columns.
func (r IndicatorRequest) Columns() types.Columns {
	return types.Columns{
		Close:  r.Prices,
		High:   r.Highs,
		Low:    r.Lows,
		Volume: r.Volumes,
	}
}

// Server exposes the indicator analysis over HTTP.
type Server struct {
	analyzer *signal.Analyzer
	cfg      config.ServerConfig
	logger   *logger.Logger
	metrics  *metrics.Metrics
	gatherer prometheus.Gatherer
	validate *validator.Validate

	httpServer *http.Server
	listener   net.Listener
}

// Option configures a Server.
type Option func(*Server)

func WithLogger(l *logger.Logger) Option {
	return func(s *Server) {
		s.logger = logger.OrNop(l)
	}
}

// WithMetrics records requests on m and serves gatherer on /metrics.
func WithMetrics(m *metrics.Metrics, gatherer prometheus.Gatherer) Option {
	return func(s *Server) {
		s.metrics = m
		s.gatherer = gatherer
	}
}

// New creates a server. Call Start to listen.
func New(analyzer *signal.Analyzer, cfg config.ServerConfig, opts ...Option) *Server {
	s := &Server{
		analyzer: analyzer,
		cfg:      cfg,
		logger:   logger.NewNop(),
		gatherer: prometheus.DefaultGatherer,
		validate: validator.New(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Handler returns the router with every route registered.
func (s *Server) Handler() http.Handler {
	router := mux.NewRouter()

	router.HandleFunc("/api/v1/indicators/{name}", s.handleIndicator).Methods(http.MethodPost)
	router.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	router.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{})).Methods(http.MethodGet)

	router.Use(s.observe)

	return router
}

// Start listens on the configured address and serves in the background.
// An empty address or ":0" picks a free port.
func (s *Server) Start() error {
	addr := s.cfg.Addr
	if addr == "" {
		addr = ":0"
	}

	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return errors.Wrapf(errors.ErrCodeInvalidConfiguration, err, "failed to listen on %s", addr)
	}

	s.listener = listener
	s.httpServer = &http.Server{
		Handler:           s.Handler(),
		ReadTimeout:       s.cfg.ReadTimeout,
		ReadHeaderTimeout: s.cfg.ReadTimeout,
		WriteTimeout:      s.cfg.WriteTimeout,
	}

	go func() {
		if err := s.httpServer.Serve(listener); err != nil && err != http.ErrServerClosed {
			s.logger.Error("http server stopped", zap.Error(err))
		}
	}()

	s.logger.Info("http server listening", zap.String("addr", listener.Addr().String()))

	return nil
}

// Stop shuts the server down, waiting up to the configured shutdown timeout.
func (s *Server) Stop(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, s.cfg.ShutdownTimeout)
	defer cancel()

	return s.httpServer.Shutdown(ctx)
}

// Address returns the listening address.
func (s *Server) Address() string {
	if s.listener == nil {
		return ""
	}

	return s.listener.Addr().String()
}

func (s *Server) handleIndicator(w http.ResponseWriter, r *http.Request) {
	name := types.ParseIndicatorType(mux.Vars(r)["name"])

	var req IndicatorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, errors.Wrap(errors.ErrCodeInvalidParameter, "invalid request body", err))

		return
	}

	if err := s.validate.Struct(req); err != nil {
		s.writeError(w, http.StatusBadRequest, errors.Wrap(errors.ErrCodeInvalidParameter, "invalid request", err))

		return
	}

	cols := req.Columns()

	if name == types.IndicatorTypeAll {
		report, err := s.analyzer.Analyze(cols, []types.IndicatorType{name})
		if err != nil {
			s.writeError(w, statusFor(err), err)

			return
		}

		s.writeJSON(w, http.StatusOK, report)

		return
	}

	if err := cols.Validate(); err != nil {
		s.writeError(w, statusFor(err), err)

		return
	}

	outcome := s.analyzer.Compute(cols, name)
	if !outcome.OK() {
		s.writeError(w, statusFor(outcome.Err), outcome.Err)

		return
	}

	s.writeJSON(w, http.StatusOK, outcome.Result)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": version.GetVersion(),
	})
}

// statusFor maps an error code to the HTTP status reported for it.
func statusFor(err error) int {
	switch errors.GetCode(err) {
	case errors.ErrCodeUnsupportedIndicator:
		return http.StatusNotFound
	case errors.ErrCodeInsufficientData, errors.ErrCodeDegenerateBand,
		errors.ErrCodeIndicatorCalculation, errors.ErrCodeMissingParameter:
		return http.StatusUnprocessableEntity
	case errors.ErrCodeInvalidParameter, errors.ErrCodeInvalidSeries, errors.ErrCodeMismatchedLength:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, err error) {
	s.writeJSON(w, status, types.NewErrorPayload(err))
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("failed to encode response", zap.Error(err))
	}
}

// statusRecorder captures the status code written by a handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// observe logs and counts every request by its route template.
func (s *Server) observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		route := r.URL.Path
		if current := mux.CurrentRoute(r); current != nil {
			if tpl, err := current.GetPathTemplate(); err == nil {
				route = tpl
			}
		}

		s.metrics.ObserveRequest(route, rec.status)
		s.logger.Debug("request served",
			zap.String("method", r.Method),
			zap.String("route", route),
			zap.Int("status", rec.status),
			zap.Duration("duration", time.Since(start)),
		)
	})
}
