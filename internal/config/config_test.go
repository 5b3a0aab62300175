package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rxtech-lab/argo-signal/pkg/errors"
	"github.com/stretchr/testify/suite"
)

type ConfigTestSuite struct {
	suite.Suite
	tempDir string
}

func TestConfigSuite(t *testing.T) {
	suite.Run(t, new(ConfigTestSuite))
}

func (suite *ConfigTestSuite) SetupTest() {
	suite.tempDir = suite.T().TempDir()
	suite.T().Setenv(EnvConfigPath, "")
	suite.T().Setenv(EnvLogLevel, "")
}

func (suite *ConfigTestSuite) write(name, content string) string {
	path := filepath.Join(suite.tempDir, name)
	suite.Require().NoError(os.WriteFile(path, []byte(content), 0644))

	return path
}

func (suite *ConfigTestSuite) TestDefaults() {
	c, err := Default()
	suite.Require().NoError(err)

	suite.Equal("info", c.LogLevel)
	suite.Equal(14, c.Indicators.RSI.Period)
	suite.Equal(21, c.Indicators.EMA.Period)
	suite.Equal(20, c.Indicators.SMA.Period)
	suite.Equal(26, c.Indicators.MACD.Slow)
	suite.Equal(2.0, c.Indicators.Bollinger.StdDev)
	suite.Equal(50, c.Features.SMALong)
	suite.Equal(100, c.Features.MinRows)
	suite.Equal(30, c.Sequence.Length)
	suite.Equal(7, c.Forecast.Steps)
	suite.Equal("persistence", c.Forecast.Predictor)
	suite.Equal(time.Duration(0), c.Forecast.Interval)
	suite.Equal(10*time.Second, c.Server.ReadTimeout)
	suite.Equal(5*time.Second, c.Server.ShutdownTimeout)

	suite.NoError(c.Validate())
}

func (suite *ConfigTestSuite) TestLoadOverridesDefaults() {
	path := suite.write("config.yaml", `
log_level: debug
indicators:
  rsi:
    period: 10
forecast:
  steps: 3
  interval: 1h
server:
  addr: 127.0.0.1:9090
`)

	c, err := Load(path)
	suite.Require().NoError(err)

	suite.Equal("debug", c.LogLevel)
	suite.Equal(10, c.Indicators.RSI.Period)
	suite.Equal(70.0, c.Indicators.RSI.Overbought)
	suite.Equal(3, c.Forecast.Steps)
	suite.Equal(time.Hour, c.Forecast.Interval)
	suite.Equal("127.0.0.1:9090", c.Server.Addr)
}

func (suite *ConfigTestSuite) TestLoadRejectsInvalid() {
	tests := []struct {
		name    string
		content string
	}{
		{"thresholds inverted", "indicators:\n  rsi:\n    oversold: 80\n    overbought: 70\n"},
		{"fast not below slow", "indicators:\n  macd:\n    fast: 30\n    slow: 26\n"},
		{"wasm without path", "forecast:\n  predictor: wasm\n"},
		{"unknown predictor", "forecast:\n  predictor: lstm\n"},
		{"test ratio out of range", "sequence:\n  test_ratio: 1.5\n"},
		{"malformed yaml", "indicators: [\n"},
	}

	for _, tt := range tests {
		suite.Run(tt.name, func() {
			_, err := Load(suite.write("bad.yaml", tt.content))
			suite.Error(err)
			suite.True(errors.HasCode(err, errors.ErrCodeInvalidConfiguration))
		})
	}
}

func (suite *ConfigTestSuite) TestLoadMissingFile() {
	_, err := Load(filepath.Join(suite.tempDir, "missing.yaml"))
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidConfiguration))
}

func (suite *ConfigTestSuite) TestLoadWithEnv() {
	path := suite.write("config.yaml", "forecast:\n  steps: 12\n")
	envPath := suite.write(".env", EnvConfigPath+"="+path+"\n"+EnvLogLevel+"=warn\n")

	// godotenv does not override variables that are already set
	suite.Require().NoError(os.Unsetenv(EnvConfigPath))
	suite.Require().NoError(os.Unsetenv(EnvLogLevel))

	c, err := LoadWithEnv(envPath, "")
	suite.Require().NoError(err)

	suite.Equal(12, c.Forecast.Steps)
	suite.Equal("warn", c.LogLevel)
}

func (suite *ConfigTestSuite) TestLoadWithEnvDefaults() {
	c, err := LoadWithEnv(filepath.Join(suite.tempDir, "absent.env"), "")
	suite.Require().NoError(err)

	suite.Equal(7, c.Forecast.Steps)
}

func (suite *ConfigTestSuite) TestLoadWithEnvRejectsBadLogLevel() {
	suite.T().Setenv(EnvLogLevel, "verbose")

	_, err := LoadWithEnv("", "")
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidConfiguration))
}

func (suite *ConfigTestSuite) TestSchema() {
	schema, err := Schema()
	suite.Require().NoError(err)

	suite.Contains(schema, `"indicators"`)
	suite.Contains(schema, `"forecast"`)
	suite.Contains(schema, `"Log Level"`)
}
