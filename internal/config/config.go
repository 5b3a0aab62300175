package config

import (
	"os"
	"time"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/rxtech-lab/argo-signal/pkg/errors"
	"github.com/rxtech-lab/argo-signal/pkg/utils"
	"gopkg.in/yaml.v3"
)

const (
	// EnvConfigPath names the environment variable holding the configuration file path.
	EnvConfigPath = "ARGO_SIGNAL_CONFIG"
	// EnvLogLevel names the environment variable overriding the log level.
	EnvLogLevel = "ARGO_SIGNAL_LOG_LEVEL"
)

// Config is the root configuration of argo-signal.
type Config struct {
	LogLevel   string           `yaml:"log_level" json:"log_level" default:"info" validate:"oneof=debug info warn error" jsonschema:"title=Log Level,description=Minimum level of emitted log entries,enum=debug,enum=info,enum=warn,enum=error,default=info"`
	Indicators IndicatorsConfig `yaml:"indicators" json:"indicators" jsonschema:"title=Indicators,description=Window parameters and thresholds of the signal indicators"`
	Features   FeaturesConfig   `yaml:"features" json:"features" jsonschema:"title=Features,description=Window parameters of the feature pipeline"`
	Sequence   SequenceConfig   `yaml:"sequence" json:"sequence" jsonschema:"title=Sequence,description=Sliding window settings for supervised samples"`
	Forecast   ForecastConfig   `yaml:"forecast" json:"forecast" jsonschema:"title=Forecast,description=Iterative forecast settings"`
	Server     ServerConfig     `yaml:"server" json:"server" jsonschema:"title=Server,description=HTTP reporting surface"`
}

// IndicatorsConfig holds the parameters of every registered indicator.
type IndicatorsConfig struct {
	RSI        RSIConfig        `yaml:"rsi" json:"rsi"`
	MACD       MACDConfig       `yaml:"macd" json:"macd"`
	Bollinger  BollingerConfig  `yaml:"bollinger" json:"bollinger"`
	EMA        PeriodConfig     `yaml:"ema" json:"ema" default:"{\"period\": 21}"`
	SMA        PeriodConfig     `yaml:"sma" json:"sma" default:"{\"period\": 20}"`
	Stochastic StochasticConfig `yaml:"stochastic" json:"stochastic"`
	Volume     VolumeConfig     `yaml:"volume" json:"volume"`
}

type RSIConfig struct {
	Period     int     `yaml:"period" json:"period" default:"14" validate:"min=1" jsonschema:"title=Period,minimum=1,default=14"`
	Oversold   float64 `yaml:"oversold" json:"oversold" default:"30" validate:"gte=0,ltfield=Overbought" jsonschema:"title=Oversold,minimum=0,maximum=100,default=30"`
	Overbought float64 `yaml:"overbought" json:"overbought" default:"70" validate:"lte=100" jsonschema:"title=Overbought,minimum=0,maximum=100,default=70"`
}

type MACDConfig struct {
	Fast   int `yaml:"fast" json:"fast" default:"12" validate:"min=1,ltfield=Slow" jsonschema:"title=Fast Period,minimum=1,default=12"`
	Slow   int `yaml:"slow" json:"slow" default:"26" validate:"min=1" jsonschema:"title=Slow Period,minimum=1,default=26"`
	Signal int `yaml:"signal" json:"signal" default:"9" validate:"min=1" jsonschema:"title=Signal Period,minimum=1,default=9"`
}

type BollingerConfig struct {
	Period int     `yaml:"period" json:"period" default:"20" validate:"min=2" jsonschema:"title=Period,minimum=2,default=20"`
	StdDev float64 `yaml:"std_dev" json:"std_dev" default:"2" validate:"gt=0" jsonschema:"title=Standard Deviations,default=2"`
}

// PeriodConfig configures a single-window indicator.
type PeriodConfig struct {
	Period int `yaml:"period" json:"period" validate:"min=1" jsonschema:"title=Period,minimum=1"`
}

type StochasticConfig struct {
	KPeriod    int     `yaml:"k_period" json:"k_period" default:"14" validate:"min=1" jsonschema:"title=%K Period,minimum=1,default=14"`
	DPeriod    int     `yaml:"d_period" json:"d_period" default:"3" validate:"min=1" jsonschema:"title=%D Period,minimum=1,default=3"`
	Oversold   float64 `yaml:"oversold" json:"oversold" default:"20" validate:"gte=0,ltfield=Overbought" jsonschema:"title=Oversold,default=20"`
	Overbought float64 `yaml:"overbought" json:"overbought" default:"80" validate:"lte=100" jsonschema:"title=Overbought,default=80"`
}

type VolumeConfig struct {
	Period        int     `yaml:"period" json:"period" default:"20" validate:"min=1" jsonschema:"title=Period,minimum=1,default=20"`
	HighRatio     float64 `yaml:"high_ratio" json:"high_ratio" default:"1.5" validate:"gtfield=ElevatedRatio" jsonschema:"title=High Ratio,description=Volume to average ratio read as a strong move,default=1.5"`
	ElevatedRatio float64 `yaml:"elevated_ratio" json:"elevated_ratio" default:"1.2" validate:"gt=0" jsonschema:"title=Elevated Ratio,description=Volume to average ratio read as a move,default=1.2"`
}

// FeaturesConfig holds the windows of the feature pipeline.
type FeaturesConfig struct {
	RSIWindow       int     `yaml:"rsi_window" json:"rsi_window" default:"14" validate:"min=1" jsonschema:"title=RSI Window,default=14"`
	EMASpan         int     `yaml:"ema_span" json:"ema_span" default:"30" validate:"min=1" jsonschema:"title=EMA Span,default=30"`
	SMAShort        int     `yaml:"sma_short" json:"sma_short" default:"10" validate:"min=1" jsonschema:"title=Short SMA Window,default=10"`
	SMALong         int     `yaml:"sma_long" json:"sma_long" default:"50" validate:"min=1,gtfield=SMAShort" jsonschema:"title=Long SMA Window,default=50"`
	BollingerWindow int     `yaml:"bollinger_window" json:"bollinger_window" default:"20" validate:"min=2" jsonschema:"title=Bollinger Window,default=20"`
	BollingerStd    float64 `yaml:"bollinger_std" json:"bollinger_std" default:"2" validate:"gt=0" jsonschema:"title=Bollinger Standard Deviations,default=2"`
	MinRows         int     `yaml:"min_rows" json:"min_rows" default:"100" validate:"min=1" jsonschema:"title=Minimum Rows,description=Complete feature rows required for training,default=100"`
}

// SequenceConfig holds the window length and the held-out share of samples.
type SequenceConfig struct {
	Length    int     `yaml:"length" json:"length" default:"30" validate:"min=1" jsonschema:"title=Window Length,minimum=1,default=30"`
	TestRatio float64 `yaml:"test_ratio" json:"test_ratio" default:"0.2" validate:"gte=0,lt=1" jsonschema:"title=Test Ratio,minimum=0,maximum=1,default=0.2"`
}

// ForecastConfig holds the iterative forecast settings.
type ForecastConfig struct {
	Steps int `yaml:"steps" json:"steps" default:"7" validate:"min=1,max=365" jsonschema:"title=Steps,minimum=1,maximum=365,default=7"`
	// Interval between synthesized observations; zero infers it from the series
	Interval  time.Duration `yaml:"interval" json:"interval" jsonschema:"title=Interval,description=Spacing of synthesized observations; zero infers it from the last two observations"`
	Predictor string        `yaml:"predictor" json:"predictor" default:"persistence" validate:"oneof=persistence linear wasm" jsonschema:"title=Predictor,enum=persistence,enum=linear,enum=wasm,default=persistence"`
	WasmPath  string        `yaml:"wasm_path" json:"wasm_path" validate:"required_if=Predictor wasm" jsonschema:"title=WASM Module,description=Path of the predictor module when predictor is wasm"`
}

// ServerConfig holds the HTTP listener settings.
type ServerConfig struct {
	Addr            string        `yaml:"addr" json:"addr" default:":8080" validate:"required" jsonschema:"title=Address,default=:8080"`
	ReadTimeout     time.Duration `yaml:"read_timeout" json:"read_timeout" default:"10s" jsonschema:"title=Read Timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout" json:"write_timeout" default:"10s" jsonschema:"title=Write Timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" json:"shutdown_timeout" default:"5s" jsonschema:"title=Shutdown Timeout"`
}

// Default returns a configuration populated from the default tags.
func Default() (*Config, error) {
	var c Config
	if err := defaults.Set(&c); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfiguration, "failed to apply configuration defaults", err)
	}

	return &c, nil
}

// Load reads a YAML configuration file on top of the defaults and validates it.
func Load(path string) (*Config, error) {
	c, err := Default()
	if err != nil {
		return nil, err
	}

	b, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrCodeInvalidConfiguration, err, "failed to read config %s", path)
	}

	if err := yaml.Unmarshal(b, c); err != nil {
		return nil, errors.Wrapf(errors.ErrCodeInvalidConfiguration, err, "failed to parse config %s", path)
	}

	if err := c.Validate(); err != nil {
		return nil, err
	}

	return c, nil
}

// LoadWithEnv loads an optional .env file, then the configuration named by path
// or by ARGO_SIGNAL_CONFIG, and applies environment overrides. Without any
// configuration file the defaults are used.
func LoadWithEnv(envPath, path string) (*Config, error) {
	if envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			if err := godotenv.Load(envPath); err != nil {
				return nil, errors.Wrapf(errors.ErrCodeInvalidConfiguration, err, "failed to load env file %s", envPath)
			}
		}
	}

	if path == "" {
		path = os.Getenv(EnvConfigPath)
	}

	var (
		c   *Config
		err error
	)

	if path != "" {
		c, err = Load(path)
	} else {
		c, err = Default()
	}

	if err != nil {
		return nil, err
	}

	if v := os.Getenv(EnvLogLevel); v != "" {
		c.LogLevel = v
	}

	if err := c.Validate(); err != nil {
		return nil, err
	}

	return c, nil
}

// Validate checks the configuration against its validate tags.
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfiguration, "invalid config", err)
	}

	return nil
}

// Schema returns the JSON schema of the configuration file.
func Schema() (string, error) {
	return utils.GetSchemaFromConfig(Config{})
}
