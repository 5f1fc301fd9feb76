package predict

import (
	"context"
	"os"
	"time"

	"github.com/aouyang1/go-houseprice/forecaster"
	"github.com/aouyang1/go-houseprice/internal/config"
	"github.com/aouyang1/go-houseprice/internal/observability"
	"github.com/aouyang1/go-houseprice/regression"
	"github.com/aouyang1/go-houseprice/timedataset"
	"github.com/goccy/go-json"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// ForecasterOptions maps the forecast config onto forecaster options.
func ForecasterOptions(cfg config.ForecastConfig) *forecaster.Options {
	opt := forecaster.NewDefaultOptions()
	if cfg.Changepoints > 0 {
		opt.SeriesOptions.ChangepointOptions.AutoNumChangepoints = cfg.Changepoints
	}
	if cfg.ChangepointRange > 0 {
		opt.SeriesOptions.ChangepointOptions.Range = cfg.ChangepointRange
	}
	opt.SeriesOptions.Regularization = cfg.Regularization
	opt.SeriesOptions.EventOptions.USHolidays = cfg.USHolidays
	opt.ResidualZscore = forecaster.IntervalZscore(cfg.IntervalWidth)
	if cfg.OutlierPasses > 0 {
		outlier := forecaster.NewOutlierOptions()
		outlier.NumPasses = cfg.OutlierPasses
		if cfg.OutlierUpperPercentile > cfg.OutlierLowerPercentile {
			outlier.LowerPercentile = cfg.OutlierLowerPercentile
			outlier.UpperPercentile = cfg.OutlierUpperPercentile
		}
		if cfg.OutlierTukeyFactor > 0 {
			outlier.TukeyFactor = cfg.OutlierTukeyFactor
		}
		opt.OutlierOptions = outlier
	}
	return opt
}

// FitForecaster reads the history csv and fits a forecaster on every row.
func FitForecaster(cfg config.ForecastConfig) (*forecaster.Forecaster, error) {
	history, err := timedataset.ReadHistoryFile(cfg.History)
	if err != nil {
		return nil, eris.Wrapf(err, "predict: read history %s", cfg.History)
	}

	f, err := forecaster.New(ForecasterOptions(cfg))
	if err != nil {
		return nil, eris.Wrap(err, "predict: init forecaster")
	}
	if err := f.Fit(history.T, history.Y); err != nil {
		return nil, eris.Wrap(err, "predict: fit forecaster")
	}

	scores := f.SeriesScores()
	zap.L().Info("fit forecaster",
		zap.Int("rows", history.Len()),
		zap.Time("last_date", f.LastTime()),
		zap.Float64("r2", scores.R2),
		zap.Float64("mape", scores.MAPE),
	)
	return f, nil
}

// LoadForecaster reads a forecaster model previously written by the fit command.
func LoadForecaster(path string) (*forecaster.Forecaster, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "predict: read forecaster model %s", path)
	}
	var model forecaster.Model
	if err := json.Unmarshal(data, &model); err != nil {
		return nil, eris.Wrapf(err, "predict: decode forecaster model %s", path)
	}
	f, err := forecaster.NewFromModel(model)
	if err != nil {
		return nil, eris.Wrap(err, "predict: load forecaster model")
	}
	zap.L().Info("loaded forecaster model",
		zap.String("path", path),
		zap.Time("last_date", f.LastTime()),
	)
	return f, nil
}

// Load reads the regression artifacts and prepares the forecaster concurrently. Any failure
// is returned and the service must not start.
func Load(ctx context.Context, cfg *config.Config) (*Service, error) {
	start := time.Now()
	var (
		pipeline *regression.Pipeline
		fc       *forecaster.Forecaster
	)

	g, _ := errgroup.WithContext(ctx)
	g.Go(func() error {
		p, err := regression.LoadPipeline(cfg.Artifacts.Poly, cfg.Artifacts.Scaler, cfg.Artifacts.Regressor)
		if err != nil {
			return eris.Wrap(err, "predict: load regression artifacts")
		}
		zap.L().Info("loaded regression artifacts",
			zap.Int("features_in", p.NFeaturesIn()),
			zap.Int("expanded_features", p.Poly.NOutputFeatures()),
			zap.Int("training_samples", len(p.Regressor.XTrain)),
		)
		pipeline = p
		return nil
	})
	g.Go(func() error {
		var err error
		if cfg.Forecast.Model != "" {
			fc, err = LoadForecaster(cfg.Forecast.Model)
		} else {
			fc, err = FitForecaster(cfg.Forecast)
		}
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	observability.SetForecasterReady(true)
	observability.RecordStartup(time.Since(start).Seconds())

	return NewService(pipeline, fc,
		WithTimeout(cfg.Forecast.Timeout),
		WithMaxPeriods(cfg.Forecast.MaxPeriods),
	), nil
}
