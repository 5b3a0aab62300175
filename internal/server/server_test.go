package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rxtech-lab/argo-signal/internal/config"
	"github.com/rxtech-lab/argo-signal/internal/indicator"
	"github.com/rxtech-lab/argo-signal/internal/logger"
	"github.com/rxtech-lab/argo-signal/internal/metrics"
	"github.com/rxtech-lab/argo-signal/internal/signal"
	"github.com/rxtech-lab/argo-signal/internal/version"
	"github.com/rxtech-lab/argo-signal/pkg/errors"
	"github.com/stretchr/testify/suite"
)

type ServerTestSuite struct {
	suite.Suite
	server  *Server
	handler http.Handler
}

func TestServerSuite(t *testing.T) {
	suite.Run(t, new(ServerTestSuite))
}

func (suite *ServerTestSuite) SetupTest() {
	cfg, err := config.Default()
	suite.Require().NoError(err)

	registry, err := indicator.NewDefaultRegistry(cfg.Indicators)
	suite.Require().NoError(err)

	reg := prometheus.NewRegistry()
	m, err := metrics.New(reg)
	suite.Require().NoError(err)

	analyzer := signal.NewAnalyzer(registry, signal.WithMetrics(m))

	cfg.Server.Addr = "127.0.0.1:0"
	suite.server = New(analyzer, cfg.Server, WithLogger(logger.NewNop()), WithMetrics(m, reg))
	suite.handler = suite.server.Handler()
}

func wavePrices(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = 100 + 0.2*float64(i) + 3*math.Sin(float64(i)/3)
	}

	return out
}

func (suite *ServerTestSuite) post(path string, body any) *httptest.ResponseRecorder {
	b, err := json.Marshal(body)
	suite.Require().NoError(err)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(b))
	rec := httptest.NewRecorder()
	suite.handler.ServeHTTP(rec, req)

	return rec
}

func (suite *ServerTestSuite) decode(rec *httptest.ResponseRecorder) map[string]any {
	var out map[string]any
	suite.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &out))

	return out
}

func (suite *ServerTestSuite) TestSingleIndicator() {
	rec := suite.post("/api/v1/indicators/rsi", IndicatorRequest{Prices: wavePrices(40)})
	suite.Equal(http.StatusOK, rec.Code)

	body := suite.decode(rec)
	suite.Equal("RSI", body["indicator"])
	suite.Contains(body, "signal")
}

func (suite *ServerTestSuite) TestAllIndicators() {
	rec := suite.post("/api/v1/indicators/all", IndicatorRequest{Prices: wavePrices(80)})
	suite.Equal(http.StatusOK, rec.Code)

	body := suite.decode(rec)
	suite.Contains(body, "summary")
	suite.Contains(body, "macd")
	suite.NotContains(body, "volume")
}

func (suite *ServerTestSuite) TestUnsupportedIndicator() {
	rec := suite.post("/api/v1/indicators/ichimoku", IndicatorRequest{Prices: wavePrices(40)})
	suite.Equal(http.StatusNotFound, rec.Code)

	body := suite.decode(rec)
	suite.Contains(body["error"], "ichimoku")
	suite.EqualValues(errors.ErrCodeUnsupportedIndicator, body["code"])
}

func (suite *ServerTestSuite) TestInsufficientData() {
	rec := suite.post("/api/v1/indicators/macd", IndicatorRequest{Prices: wavePrices(10)})
	suite.Equal(http.StatusUnprocessableEntity, rec.Code)

	body := suite.decode(rec)
	suite.EqualValues(errors.ErrCodeInsufficientData, body["code"])
}

func (suite *ServerTestSuite) TestBadRequests() {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/indicators/rsi", bytes.NewBufferString("{not json"))
	rec := httptest.NewRecorder()
	suite.handler.ServeHTTP(rec, req)
	suite.Equal(http.StatusBadRequest, rec.Code)

	rec = suite.post("/api/v1/indicators/rsi", IndicatorRequest{})
	suite.Equal(http.StatusBadRequest, rec.Code)

	rec = suite.post("/api/v1/indicators/rsi", IndicatorRequest{Prices: wavePrices(40), Volumes: []float64{1, 2}})
	suite.Equal(http.StatusBadRequest, rec.Code)
	suite.EqualValues(errors.ErrCodeMismatchedLength, suite.decode(rec)["code"])
}

func (suite *ServerTestSuite) TestHealth() {
	rec := httptest.NewRecorder()
	suite.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	suite.Equal(http.StatusOK, rec.Code)

	body := suite.decode(rec)
	suite.Equal("ok", body["status"])
	suite.Equal(version.GetVersion(), body["version"])
}

func (suite *ServerTestSuite) TestMetricsExposeRequests() {
	suite.post("/api/v1/indicators/rsi", IndicatorRequest{Prices: wavePrices(40)})

	rec := httptest.NewRecorder()
	suite.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	suite.Equal(http.StatusOK, rec.Code)
	suite.Contains(rec.Body.String(), `argo_signal_http_requests_total{route="/api/v1/indicators/{name}",status="200"} 1`)
}

func (suite *ServerTestSuite) TestStartStop() {
	suite.Require().NoError(suite.server.Start())

	resp, err := http.Get("http://" + suite.server.Address() + "/healthz")
	suite.Require().NoError(err)

	_, _ = io.Copy(io.Discard, resp.Body)
	suite.Require().NoError(resp.Body.Close())
	suite.Equal(http.StatusOK, resp.StatusCode)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	suite.NoError(suite.server.Stop(ctx))
}
