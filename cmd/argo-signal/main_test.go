package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rxtech-lab/argo-signal/internal/config"
	"github.com/rxtech-lab/argo-signal/internal/feature"
	"github.com/rxtech-lab/argo-signal/internal/scaler"
	"github.com/rxtech-lab/argo-signal/internal/types"
	"github.com/rxtech-lab/argo-signal/internal/writer"
	"github.com/rxtech-lab/argo-signal/mocks"
	"github.com/rxtech-lab/argo-signal/pkg/errors"
	"github.com/stretchr/testify/suite"
)

type MainTestSuite struct {
	suite.Suite
	tempDir string
	data    string
}

func TestMainSuite(t *testing.T) {
	suite.Run(t, new(MainTestSuite))
}

func (suite *MainTestSuite) SetupTest() {
	suite.tempDir = suite.T().TempDir()
	suite.T().Setenv(config.EnvConfigPath, "")
	suite.T().Setenv(config.EnvLogLevel, "")

	w, err := writer.NewDuckDBWriter(nil)
	suite.Require().NoError(err)
	defer w.Close()

	suite.data = filepath.Join(suite.tempDir, "prices.csv")
	suite.Require().NoError(w.WriteSeries(context.Background(), mocks.DefaultSeries(), suite.data))
}

// run executes the CLI with args and returns what it printed.
func (suite *MainTestSuite) run(args ...string) (string, error) {
	var out, errOut bytes.Buffer

	a := newApp(&out, &errOut)
	argv := append([]string{"argo-signal", "--env", "", "--log-level", "error"}, args...)

	err := a.command().Run(context.Background(), argv)

	return out.String(), err
}

func prices(n int) string {
	values := make([]string, n)
	for i := range values {
		values[i] = fmt.Sprintf("%.2f", 100+0.2*float64(i)+float64(i%5))
	}

	return "[" + strings.Join(values, ",") + "]"
}

func (suite *MainTestSuite) TestIndicatorSingle() {
	out, err := suite.run("indicator", "--prices", prices(40), "--name", "rsi")
	suite.Require().NoError(err)

	var result types.IndicatorResult
	suite.Require().NoError(json.Unmarshal([]byte(out), &result))
	suite.Equal("RSI", result.Indicator)
	suite.NotEmpty(result.Signal)
}

func (suite *MainTestSuite) TestIndicatorAll() {
	out, err := suite.run("indicator", "--prices", prices(80))
	suite.Require().NoError(err)

	var body map[string]json.RawMessage
	suite.Require().NoError(json.Unmarshal([]byte(out), &body))
	suite.Contains(body, "summary")
	suite.Contains(body, "rsi")
	suite.NotContains(body, "volume")
}

func (suite *MainTestSuite) TestIndicatorAllText() {
	out, err := suite.run("indicator", "--prices", prices(80), "--format", "text")
	suite.Require().NoError(err)
	suite.Contains(out, "RSI")
}

func (suite *MainTestSuite) TestUnsupportedIndicatorIsStructured() {
	out, err := suite.run("indicator", "--prices", prices(40), "--name", "ichimoku")
	suite.Require().NoError(err)

	var payload types.ErrorPayload
	suite.Require().NoError(json.Unmarshal([]byte(out), &payload))
	suite.Contains(payload.Error, "ichimoku")
	suite.Equal(int(errors.ErrCodeUnsupportedIndicator), payload.Code)
}

func (suite *MainTestSuite) TestIndicatorRejectsMalformedInput() {
	_, err := suite.run("indicator", "--prices", "[1, 2,")
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidParameter))

	_, err = suite.run("indicator", "--prices", prices(40), "--volumes", "[1, 2]")
	suite.True(errors.HasCode(err, errors.ErrCodeMismatchedLength))

	_, err = suite.run("indicator", "--prices", prices(40), "--format", "xml")
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidParameter))
}

func (suite *MainTestSuite) TestFeaturesExport() {
	out := filepath.Join(suite.tempDir, "features.parquet")

	_, err := suite.run("features", "--data", suite.data, "--out", out)
	suite.Require().NoError(err)
	suite.FileExists(out)
}

func (suite *MainTestSuite) TestFeaturesJSON() {
	out, err := suite.run("features", "--data", suite.data, "--lookback", "120")
	suite.Require().NoError(err)

	var frame struct {
		Features []string `json:"features"`
		Rows     []struct {
			Values []float64 `json:"values"`
		} `json:"rows"`
	}
	suite.Require().NoError(json.Unmarshal([]byte(out), &frame))
	suite.Len(frame.Features, len(types.FeatureNames))
	suite.Len(frame.Rows, 71)
}

func (suite *MainTestSuite) TestEvaluate() {
	state := filepath.Join(suite.tempDir, "scalers.json")

	out, err := suite.run("evaluate", "--data", suite.data, "--predictor", "linear", "--scalers", state)
	suite.Require().NoError(err)

	var m types.EvaluationMetrics
	suite.Require().NoError(json.Unmarshal([]byte(out), &m))
	suite.Positive(m.Samples)
	suite.Positive(m.RMSE)
	suite.FileExists(state)
}

// failingCloser accepts every write and fails on close.
type failingCloser struct {
	bytes.Buffer
	closed bool
}

func (c *failingCloser) Close() error {
	c.closed = true

	return fmt.Errorf("disk full")
}

func (suite *MainTestSuite) TestWriteScalersReportsCloseError() {
	cfg, err := config.Default()
	suite.Require().NoError(err)

	frame, err := feature.NewPipeline(cfg.Features, nil).Engineer(mocks.DefaultSeries())
	suite.Require().NoError(err)

	set := scaler.NewSet()
	suite.Require().NoError(set.Fit(frame))

	w := &failingCloser{}
	err = writeScalers(set, w)
	suite.True(errors.HasCode(err, errors.ErrCodeWriteFailed))
	suite.True(w.closed)
	suite.NotZero(w.Len())
}

func (suite *MainTestSuite) TestEvaluateWasmNeedsPath() {
	_, err := suite.run("evaluate", "--data", suite.data, "--predictor", "wasm")
	suite.True(errors.HasCode(err, errors.ErrCodeMissingParameter))
}

func (suite *MainTestSuite) TestForecastReusesScalers() {
	state := filepath.Join(suite.tempDir, "scalers.json")
	export := filepath.Join(suite.tempDir, "forecast.csv")

	out, err := suite.run("forecast", "--data", suite.data, "--steps", "3", "--quiet",
		"--scalers", state, "--out", export)
	suite.Require().NoError(err)
	suite.FileExists(state)
	suite.FileExists(export)

	var first types.Forecast
	suite.Require().NoError(json.Unmarshal([]byte(out), &first))
	suite.Len(first.Steps, 3)

	out, err = suite.run("forecast", "--data", suite.data, "--steps", "3", "--quiet", "--scalers", state)
	suite.Require().NoError(err)

	var second types.Forecast
	suite.Require().NoError(json.Unmarshal([]byte(out), &second))
	suite.Equal(first.Closes(), second.Closes())
	suite.NotEqual(first.RunID, second.RunID)
}

func (suite *MainTestSuite) TestForecastMissingData() {
	_, err := suite.run("forecast", "--data", filepath.Join(suite.tempDir, "missing.csv"), "--quiet")
	suite.True(errors.HasCode(err, errors.ErrCodeDataNotFound))
}

func (suite *MainTestSuite) TestSchema() {
	dir := filepath.Join(suite.tempDir, "config")

	_, err := suite.run("schema", "--out", dir)
	suite.Require().NoError(err)

	schema, err := os.ReadFile(filepath.Join(dir, schemaName))
	suite.Require().NoError(err)
	suite.Contains(string(schema), `"forecast"`)

	sample := filepath.Join(dir, sampleConfigName)
	body, err := os.ReadFile(sample)
	suite.Require().NoError(err)
	suite.True(strings.HasPrefix(string(body), "# yaml-language-server: $schema="+schemaName))

	c, err := config.Load(sample)
	suite.Require().NoError(err)

	defaults, err := config.Default()
	suite.Require().NoError(err)
	suite.Equal(defaults, c)
}
