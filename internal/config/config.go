package config

import (
	"errors"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server" mapstructure:"server"`
	Artifacts ArtifactsConfig `yaml:"artifacts" mapstructure:"artifacts"`
	Forecast  ForecastConfig  `yaml:"forecast" mapstructure:"forecast"`
	Client    ClientConfig    `yaml:"client" mapstructure:"client"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
}

// ServerConfig configures the prediction service listener.
type ServerConfig struct {
	Addr        string   `yaml:"addr" mapstructure:"addr"`
	RateLimit   float64  `yaml:"rate_limit" mapstructure:"rate_limit"`
	RateBurst   int      `yaml:"rate_burst" mapstructure:"rate_burst"`
	CORSOrigins []string `yaml:"cors_origins" mapstructure:"cors_origins"`
}

// ArtifactsConfig points at the pretrained regression artifacts.
type ArtifactsConfig struct {
	Regressor string `yaml:"regressor" mapstructure:"regressor"`
	Poly      string `yaml:"poly" mapstructure:"poly"`
	Scaler    string `yaml:"scaler" mapstructure:"scaler"`
}

// ForecastConfig configures the history series and the forecaster fit at startup.
type ForecastConfig struct {
	History          string        `yaml:"history" mapstructure:"history"`
	Model            string        `yaml:"model" mapstructure:"model"`
	Timeout          time.Duration `yaml:"timeout" mapstructure:"timeout"`
	MaxPeriods       int           `yaml:"max_periods" mapstructure:"max_periods"`
	USHolidays       bool          `yaml:"us_holidays" mapstructure:"us_holidays"`
	Changepoints     int           `yaml:"changepoints" mapstructure:"changepoints"`
	ChangepointRange float64       `yaml:"changepoint_range" mapstructure:"changepoint_range"`
	Regularization   float64       `yaml:"regularization" mapstructure:"regularization"`
	IntervalWidth    float64       `yaml:"interval_width" mapstructure:"interval_width"`

	// OutlierPasses refits the series that many times, masking residuals beyond the Tukey
	// fences of the percentile range. 0 disables outlier removal.
	OutlierPasses          int     `yaml:"outlier_passes" mapstructure:"outlier_passes"`
	OutlierLowerPercentile float64 `yaml:"outlier_lower_percentile" mapstructure:"outlier_lower_percentile"`
	OutlierUpperPercentile float64 `yaml:"outlier_upper_percentile" mapstructure:"outlier_upper_percentile"`
	OutlierTukeyFactor     float64 `yaml:"outlier_tukey_factor" mapstructure:"outlier_tukey_factor"`
}

// ClientConfig configures the interactive client.
type ClientConfig struct {
	Addr       string        `yaml:"addr" mapstructure:"addr"`
	ServiceURL string        `yaml:"service_url" mapstructure:"service_url"`
	Timeout    time.Duration `yaml:"timeout" mapstructure:"timeout"`
}

// LogConfig configures the global logger.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads an optional .env and config.yaml from the working directory, then applies
// HOUSEPRICE_ environment overrides.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, eris.Wrap(err, "config: load .env")
	}

	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("HOUSEPRICE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("server.addr", ":8000")
	v.SetDefault("server.rate_limit", 0)
	v.SetDefault("server.rate_burst", 10)
	v.SetDefault("server.cors_origins", []string{"*"})
	v.SetDefault("artifacts.regressor", "best_gpr_model.json")
	v.SetDefault("artifacts.poly", "poly_transformer.json")
	v.SetDefault("artifacts.scaler", "scaler.json")
	v.SetDefault("forecast.history", "kc_house_data.csv")
	v.SetDefault("forecast.model", "")
	v.SetDefault("forecast.timeout", 10*time.Second)
	v.SetDefault("forecast.max_periods", 3650)
	v.SetDefault("forecast.us_holidays", false)
	v.SetDefault("forecast.changepoints", 25)
	v.SetDefault("forecast.changepoint_range", 0.8)
	v.SetDefault("forecast.regularization", 0.0)
	v.SetDefault("forecast.interval_width", 0.8)
	v.SetDefault("forecast.outlier_passes", 0)
	v.SetDefault("forecast.outlier_lower_percentile", 0.1)
	v.SetDefault("forecast.outlier_upper_percentile", 0.9)
	v.SetDefault("forecast.outlier_tukey_factor", 1.0)
	v.SetDefault("client.addr", ":8501")
	v.SetDefault("client.service_url", "http://127.0.0.1:8000")
	v.SetDefault("client.timeout", 30*time.Second)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects settings the service cannot start with.
func (c *Config) Validate() error {
	switch {
	case c.Forecast.Timeout <= 0:
		return eris.New("config: forecast.timeout must be positive")
	case c.Forecast.MaxPeriods <= 0:
		return eris.New("config: forecast.max_periods must be positive")
	case c.Forecast.ChangepointRange <= 0 || c.Forecast.ChangepointRange > 1:
		return eris.New("config: forecast.changepoint_range must be in (0, 1]")
	case c.Forecast.Regularization < 0:
		return eris.New("config: forecast.regularization must not be negative")
	case c.Forecast.IntervalWidth <= 0 || c.Forecast.IntervalWidth >= 1:
		return eris.New("config: forecast.interval_width must be in (0, 1)")
	case c.Forecast.OutlierPasses < 0:
		return eris.New("config: forecast.outlier_passes must not be negative")
	case c.Forecast.OutlierLowerPercentile < 0 || c.Forecast.OutlierUpperPercentile > 1 ||
		c.Forecast.OutlierLowerPercentile >= c.Forecast.OutlierUpperPercentile:
		return eris.New("config: forecast outlier percentiles must satisfy 0 <= lower < upper <= 1")
	case c.Forecast.OutlierTukeyFactor < 0:
		return eris.New("config: forecast.outlier_tukey_factor must not be negative")
	case c.Server.RateLimit < 0:
		return eris.New("config: server.rate_limit must not be negative")
	}
	return nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
