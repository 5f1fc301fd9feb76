// Package forecaster fits a series forecast together with an uncertainty forecast so that
// predictions carry lower and upper bounds.
package forecaster

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"time"

	"github.com/aouyang1/go-houseprice/chart"
	"github.com/aouyang1/go-houseprice/forecast"
	"github.com/aouyang1/go-houseprice/stats"
	"github.com/aouyang1/go-houseprice/timedataset"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

var (
	ErrInsufficientResidual = errors.New("insufficient samples from residual after outlier removal")
	ErrNoOptionsInModel     = errors.New("no options set in model")
	ErrNoTrainingData       = errors.New("forecaster has no training data")
	ErrUntrained            = errors.New("forecaster has not been trained yet")
	ErrInvalidPeriods       = errors.New("periods must be positive")
)

const (
	MinResidualWindow       = 2
	MinResidualSize         = 2
	MinResidualWindowFactor = 4

	// predictChunkSize bounds how many rows are predicted between cancellation checks
	predictChunkSize = 256
)

// Forecaster fits a forecast model and can be used to generate forecasts
type Forecaster struct {
	opt *Options

	seriesForecast   *forecast.Forecast
	residualForecast *forecast.Forecast

	lastTime        time.Time
	fitTrainingData *timedataset.TimeDataset
	fitResults      *Results
	residual        []float64
	trained         bool
}

// New creates a new instance of a Forecaster using the provided options. If no options are provided
// a default is used.
func New(opt *Options) (*Forecaster, error) {
	if opt == nil {
		opt = NewDefaultOptions()
	}
	opt = opt.Copy()
	if opt.SeriesOptions == nil {
		opt.SeriesOptions = NewDefaultOptions().SeriesOptions
	}
	if opt.ResidualOptions == nil {
		opt.ResidualOptions = NewDefaultResidualOptions()
	}
	if opt.ResidualZscore <= 0 {
		opt.ResidualZscore = IntervalZscore(DefaultIntervalWidth)
	}

	f := &Forecaster{
		opt: opt,
	}

	seriesForecast, err := forecast.New(f.opt.SeriesOptions)
	if err != nil {
		return nil, fmt.Errorf("unable to initialize forecast series, %w", err)
	}
	f.seriesForecast = seriesForecast

	residualForecast, err := forecast.New(f.opt.ResidualOptions)
	if err != nil {
		return nil, fmt.Errorf("unable to initialize forecast residual, %w", err)
	}
	f.residualForecast = residualForecast
	return f, nil
}

// NewFromModel creates a new instance of Forecaster from a pre-existing model. This should be generated from
// from a previous forecaster call to Model().
func NewFromModel(model Model) (*Forecaster, error) {
	if model.Options == nil {
		return nil, ErrNoOptionsInModel
	}
	opt := model.Options.Copy()
	opt.SeriesOptions = model.Series.Options.Copy()
	opt.ResidualOptions = model.Residual.Options.Copy()

	seriesForecast, err := forecast.NewFromModel(model.Series)
	if err != nil {
		return nil, fmt.Errorf("unable to load from series model, %w", err)
	}
	residualForecast, err := forecast.NewFromModel(model.Residual)
	if err != nil {
		return nil, fmt.Errorf("unable to load from residual model, %w", err)
	}
	f := &Forecaster{
		opt:              opt,
		seriesForecast:   seriesForecast,
		residualForecast: residualForecast,
		lastTime:         model.LastTime,
		trained:          true,
	}
	return f, nil
}

// Fit uses the input time dataset and fits the forecast model
func (f *Forecaster) Fit(t []time.Time, y []float64) error {
	td, err := timedataset.NewUnivariateDataset(t, y)
	if err != nil {
		return fmt.Errorf("unable to create training dataset, %w", err)
	}
	f.fitTrainingData = td.Copy()
	f.lastTime = td.T[len(td.T)-1]

	residual, err := f.fitSeriesWithOutliers(td.T, td.Y)
	if err != nil {
		return err
	}
	f.residual = residual

	if err := f.fitResidual(td.T, residual); err != nil {
		return err
	}
	f.trained = true

	f.fitResults, err = f.Predict(td.T)
	if err != nil {
		return fmt.Errorf("unable to get predicted values from training set, %w", err)
	}
	return nil
}

// fitSeriesWithOutliers fits the series, masking outlier observations as NaN and refitting for
// each configured pass. The returned residual is NaN for every masked observation.
func (f *Forecaster) fitSeriesWithOutliers(t []time.Time, y []float64) ([]float64, error) {
	numPasses := 0
	if f.opt.OutlierOptions != nil {
		numPasses = f.opt.OutlierOptions.NumPasses
	}

	y = append([]float64(nil), y...)
	var residual []float64
	for i := 0; i <= numPasses; i++ {
		if err := f.seriesForecast.Fit(t, y); err != nil {
			return nil, fmt.Errorf("unable to forecast series, %w", err)
		}
		residual = f.seriesForecast.Residuals()

		if f.opt.OutlierOptions == nil || i == numPasses {
			break
		}

		valid := make([]float64, 0, len(residual))
		validIdx := make([]int, 0, len(residual))
		for j, r := range residual {
			if math.IsNaN(r) {
				continue
			}
			valid = append(valid, r)
			validIdx = append(validIdx, j)
		}
		outlierIdxs := stats.DetectOutliers(
			valid,
			f.opt.OutlierOptions.LowerPercentile,
			f.opt.OutlierOptions.UpperPercentile,
			f.opt.OutlierOptions.TukeyFactor,
		)

		// no more outliers detected with outlier options so break early
		if len(outlierIdxs) == 0 {
			break
		}
		for _, idx := range outlierIdxs {
			y[validIdx[idx]] = math.NaN()
		}
	}
	return residual, nil
}

// fitResidual computes a rolling window standard deviation of the residual for the uncertainty
// band and fits the uncertainty forecast on it. The window is not necessarily a block of continuous
// time since it skips over outlier points.
func (f *Forecaster) fitResidual(t []time.Time, residual []float64) error {
	rt := make([]time.Time, 0, len(residual))
	rv := make([]float64, 0, len(residual))
	for i, r := range residual {
		if math.IsNaN(r) {
			continue
		}
		rt = append(rt, t[i])
		rv = append(rv, r)
	}
	if len(rv) < MinResidualSize {
		return ErrInsufficientResidual
	}

	// limit residual window to a quarter of the resulting residual output
	window := f.opt.ResidualWindow
	if len(rv)/MinResidualWindowFactor < window {
		window = len(rv) / MinResidualWindowFactor
	}
	if window < MinResidualWindow {
		window = MinResidualWindow
	}
	f.opt.ResidualWindow = window

	numWindows := len(rv) - window + 1
	stddevSeries := make([]float64, numWindows)
	for i := 0; i < numWindows; i++ {
		_, stddev := stat.MeanStdDev(rv[i:i+window], nil)
		stddevSeries[i] = f.opt.ResidualZscore * stddev
	}

	// shifting by half the residual window since computing the residual series is similar to a
	// finite impulse response filtering having a group delay of window/2.
	start := window / 2
	end := start + numWindows

	if err := f.residualForecast.Fit(rt[start:end], stddevSeries); err != nil {
		return fmt.Errorf("unable to forecast residual, %w", err)
	}
	return nil
}

// Predict takes in any set of time samples and generates a forecast, upper, lower values per time point
func (f *Forecaster) Predict(t []time.Time) (*Results, error) {
	if f == nil || !f.trained {
		return nil, ErrUntrained
	}
	seriesRes, seriesComp, err := f.seriesForecast.Predict(t)
	if err != nil {
		return nil, fmt.Errorf("unable to predict series forecasts, %w", err)
	}
	residualRes, residualComp, err := f.residualForecast.Predict(t)
	if err != nil {
		return nil, fmt.Errorf("unable to predict residual forecasts, %w", err)
	}

	// cap residual predictions to be greater than or equal to 0
	for i := 0; i < len(residualRes); i++ {
		if residualRes[i] < 0.0 || math.IsNaN(residualRes[i]) {
			residualRes[i] = 0.0
		}
	}

	upper := make([]float64, len(seriesRes))
	lower := make([]float64, len(seriesRes))
	floats.AddTo(upper, seriesRes, residualRes)
	floats.SubTo(lower, seriesRes, residualRes)

	return &Results{
		T:                  t,
		Forecast:           seriesRes,
		Upper:              upper,
		Lower:              lower,
		SeriesComponents:   seriesComp,
		ResidualComponents: residualComp,
	}, nil
}

// PredictFuture forecasts the given number of days following the last training time. The
// context is checked between chunks of rows so long horizons can be cancelled.
func (f *Forecaster) PredictFuture(ctx context.Context, periods int) (*Results, error) {
	if periods <= 0 {
		return nil, fmt.Errorf("got %d, %w", periods, ErrInvalidPeriods)
	}
	if f == nil || !f.trained {
		return nil, ErrUntrained
	}

	horizon := timedataset.DailyHorizon(f.lastTime, periods)
	res := &Results{
		T:        horizon,
		Forecast: make([]float64, 0, periods),
		Upper:    make([]float64, 0, periods),
		Lower:    make([]float64, 0, periods),
	}
	for start := 0; start < len(horizon); start += predictChunkSize {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		end := min(start+predictChunkSize, len(horizon))
		chunk, err := f.Predict(horizon[start:end])
		if err != nil {
			return nil, err
		}
		res.Forecast = append(res.Forecast, chunk.Forecast...)
		res.Upper = append(res.Upper, chunk.Upper...)
		res.Lower = append(res.Lower, chunk.Lower...)
		res.SeriesComponents = appendComponents(res.SeriesComponents, chunk.SeriesComponents)
		res.ResidualComponents = appendComponents(res.ResidualComponents, chunk.ResidualComponents)
	}
	return res, nil
}

func appendComponents(dst, src forecast.Components) forecast.Components {
	dst.Trend = append(dst.Trend, src.Trend...)
	dst.Seasonality = append(dst.Seasonality, src.Seasonality...)
	dst.Event = append(dst.Event, src.Event...)
	return dst
}

// LastTime returns the last training time which future predictions start after
func (f *Forecaster) LastTime() time.Time {
	if f == nil {
		return time.Time{}
	}
	return f.lastTime
}

// Residuals returns the difference between the final series fit against the training data
func (f *Forecaster) Residuals() []float64 {
	return append([]float64(nil), f.residual...)
}

// TrendComponent returns the trend component created by growth and changepoints after fitting
func (f *Forecaster) TrendComponent() []float64 {
	return f.seriesForecast.TrendComponent()
}

// SeasonalityComponent returns the seasonality component after fitting the fourier series
func (f *Forecaster) SeasonalityComponent() []float64 {
	return f.seriesForecast.SeasonalityComponent()
}

// SeriesScores returns the fit scores of the series forecast
func (f *Forecaster) SeriesScores() forecast.Scores {
	return f.seriesForecast.Scores()
}

// SeriesModelEq returns a string representation of the fit series model represented as
// y ~ b + m1x1 + m2x2 ...
func (f *Forecaster) SeriesModelEq() (string, error) {
	return f.seriesForecast.ModelEq()
}

// ResidualModelEq returns a string representation of the fit uncertainty model represented as
// y ~ b + m1x1 + m2x2 ...
func (f *Forecaster) ResidualModelEq() (string, error) {
	return f.residualForecast.ModelEq()
}

// Model generates a serializeable representation of the fit options, series model, and uncertainty model. This
// can be used to initialize a new Forecaster for immediate predictions skipping the training step.
func (f *Forecaster) Model() (Model, error) {
	seriesModel, err := f.seriesForecast.Model()
	if err != nil {
		return Model{}, fmt.Errorf("unable to fetch series model, %w", err)
	}
	residualModel, err := f.residualForecast.Model()
	if err != nil {
		return Model{}, fmt.Errorf("unable to fetch residual model, %w", err)
	}
	return Model{
		LastTime: f.lastTime,
		Options:  f.opt.Copy(),
		Series:   seriesModel,
		Residual: residualModel,
	}, nil
}

// TrainingData returns the training data used to fit the current forecaster model
func (f *Forecaster) TrainingData() *timedataset.TimeDataset {
	return f.fitTrainingData
}

// FitResults returns the results of the fit which includes the forecast, upper, and lower values
func (f *Forecaster) FitResults() *Results {
	return f.fitResults
}

// PlotFit writes an html report of the fit and the following horizon days, the model
// components, and the fit residual
func (f *Forecaster) PlotFit(w io.Writer, horizon int) error {
	td := f.TrainingData()
	if td == nil || f.fitResults == nil {
		return ErrNoTrainingData
	}
	if horizon < 1 {
		horizon = 1
	}

	forecastRes, err := f.PredictFuture(context.Background(), horizon)
	if err != nil {
		return fmt.Errorf("unable to predict with horizon, %w", err)
	}

	t := make([]time.Time, 0, len(td.T)+horizon)
	t = append(t, td.T...)
	t = append(t, forecastRes.T...)

	combined := &Results{
		T:        t,
		Forecast: append(append([]float64(nil), f.fitResults.Forecast...), forecastRes.Forecast...),
		Upper:    append(append([]float64(nil), f.fitResults.Upper...), forecastRes.Upper...),
		Lower:    append(append([]float64(nil), f.fitResults.Lower...), forecastRes.Lower...),
	}

	zpad := make([]float64, horizon)
	floats.AddConst(math.NaN(), zpad)
	residuals := append(f.Residuals(), zpad...)
	trendComp := append(f.TrendComponent(), forecastRes.SeriesComponents.Trend...)
	seasonComp := append(f.SeasonalityComponent(), forecastRes.SeriesComponents.Seasonality...)

	return chart.Render(w,
		chart.LineForecaster(td.Y, combined.Band()),
		chart.LineTSeries(
			"Forecast Components",
			[]string{"Trend", "Seasonality"},
			t,
			[][]float64{trendComp, seasonComp},
		),
		chart.LineTSeries(
			"Forecast Residual",
			[]string{"Residual"},
			t,
			[][]float64{residuals},
		),
	)
}
