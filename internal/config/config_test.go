package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func chdirTemp(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })
	return dir
}

func TestLoadDefaults(t *testing.T) {
	chdirTemp(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8000", cfg.Server.Addr)
	assert.Equal(t, 0.0, cfg.Server.RateLimit)
	assert.Equal(t, 10, cfg.Server.RateBurst)
	assert.Equal(t, []string{"*"}, cfg.Server.CORSOrigins)
	assert.Equal(t, "best_gpr_model.json", cfg.Artifacts.Regressor)
	assert.Equal(t, "poly_transformer.json", cfg.Artifacts.Poly)
	assert.Equal(t, "scaler.json", cfg.Artifacts.Scaler)
	assert.Equal(t, "kc_house_data.csv", cfg.Forecast.History)
	assert.Equal(t, "", cfg.Forecast.Model)
	assert.Equal(t, 10*time.Second, cfg.Forecast.Timeout)
	assert.Equal(t, 3650, cfg.Forecast.MaxPeriods)
	assert.False(t, cfg.Forecast.USHolidays)
	assert.Equal(t, 25, cfg.Forecast.Changepoints)
	assert.Equal(t, 0.8, cfg.Forecast.ChangepointRange)
	assert.Equal(t, 0.0, cfg.Forecast.Regularization)
	assert.Equal(t, 0.8, cfg.Forecast.IntervalWidth)
	assert.Equal(t, 0, cfg.Forecast.OutlierPasses)
	assert.Equal(t, 0.1, cfg.Forecast.OutlierLowerPercentile)
	assert.Equal(t, 0.9, cfg.Forecast.OutlierUpperPercentile)
	assert.Equal(t, 1.0, cfg.Forecast.OutlierTukeyFactor)
	assert.Equal(t, ":8501", cfg.Client.Addr)
	assert.Equal(t, "http://127.0.0.1:8000", cfg.Client.ServiceURL)
	assert.Equal(t, 30*time.Second, cfg.Client.Timeout)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoadFromYAML(t *testing.T) {
	dir := chdirTemp(t)

	yaml := `
server:
  addr: ":9000"
  rate_limit: 5
forecast:
  timeout: 2s
  us_holidays: true
  outlier_passes: 2
  outlier_tukey_factor: 1.5
log:
  level: debug
  format: console
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":9000", cfg.Server.Addr)
	assert.Equal(t, 5.0, cfg.Server.RateLimit)
	assert.Equal(t, 2*time.Second, cfg.Forecast.Timeout)
	assert.True(t, cfg.Forecast.USHolidays)
	assert.Equal(t, 2, cfg.Forecast.OutlierPasses)
	assert.Equal(t, 1.5, cfg.Forecast.OutlierTukeyFactor)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
	// Defaults still apply
	assert.Equal(t, 3650, cfg.Forecast.MaxPeriods)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	dir := chdirTemp(t)

	yaml := `
client:
  service_url: http://prediction:8000
log:
  level: debug
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	t.Setenv("HOUSEPRICE_CLIENT_SERVICE_URL", "http://localhost:9999")
	t.Setenv("HOUSEPRICE_LOG_LEVEL", "warn")

	cfg, err := Load()
	require.NoError(t, err)

	// Env overrides file
	assert.Equal(t, "http://localhost:9999", cfg.Client.ServiceURL)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestLoadDotEnv(t *testing.T) {
	dir := chdirTemp(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("HOUSEPRICE_FORECAST_MAX_PERIODS=30\n"), 0644))
	t.Cleanup(func() { os.Unsetenv("HOUSEPRICE_FORECAST_MAX_PERIODS") })

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 30, cfg.Forecast.MaxPeriods)
}

func TestLoadInvalid(t *testing.T) {
	testData := map[string]struct {
		key   string
		value string
	}{
		"zero timeout":      {"HOUSEPRICE_FORECAST_TIMEOUT", "0s"},
		"zero max periods":  {"HOUSEPRICE_FORECAST_MAX_PERIODS", "0"},
		"changepoint range": {"HOUSEPRICE_FORECAST_CHANGEPOINT_RANGE", "1.5"},
		"regularization":    {"HOUSEPRICE_FORECAST_REGULARIZATION", "-1"},
		"interval width":    {"HOUSEPRICE_FORECAST_INTERVAL_WIDTH", "1"},
		"rate limit":        {"HOUSEPRICE_SERVER_RATE_LIMIT", "-2"},
		"outlier passes":    {"HOUSEPRICE_FORECAST_OUTLIER_PASSES", "-1"},
		"outlier lower":     {"HOUSEPRICE_FORECAST_OUTLIER_LOWER_PERCENTILE", "0.95"},
		"outlier upper":     {"HOUSEPRICE_FORECAST_OUTLIER_UPPER_PERCENTILE", "1.5"},
		"outlier tukey":     {"HOUSEPRICE_FORECAST_OUTLIER_TUKEY_FACTOR", "-0.5"},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			chdirTemp(t)
			t.Setenv(td.key, td.value)
			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestInitLogger(t *testing.T) {
	testData := map[string]struct {
		cfg   LogConfig
		isErr bool
	}{
		"json":          {LogConfig{Level: "info", Format: "json"}, false},
		"console":       {LogConfig{Level: "debug", Format: "console"}, false},
		"invalid level": {LogConfig{Level: "loud", Format: "json"}, true},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			orig := zap.L()
			t.Cleanup(func() { zap.ReplaceGlobals(orig) })

			err := InitLogger(td.cfg)
			if td.isErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.NotSame(t, orig, zap.L())
		})
	}
}
