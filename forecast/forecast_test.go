package forecast

import (
	"bytes"
	"math"
	"testing"
	"time"

	"github.com/aouyang1/go-houseprice/feature"
	"github.com/aouyang1/go-houseprice/forecast/options"
	"github.com/aouyang1/go-houseprice/timedataset"
	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/floats"
)

func generateDaily(n int) ([]time.Time, []float64) {
	nowFunc := func() time.Time {
		return time.Date(2015, 5, 16, 0, 0, 0, 0, time.UTC)
	}
	t := timedataset.GenerateT(n, 24*time.Hour, nowFunc)
	y := timedataset.GenerateConstY(n, 500).
		Add(timedataset.GenerateWaveY(t, 20, options.Week.Seconds(), 1, 0)).
		Add(timedataset.GenerateChange(t, t[n/2], 0, 2.0))
	return t, y
}

// exactOptions fits with least squares and a changepoint where generateDaily changes slope
func exactOptions(t []time.Time) *options.Options {
	opt := options.NewDefaultOptions()
	opt.Regularization = 0
	opt.ChangepointOptions.Auto = false
	if len(t) > 0 {
		opt.ChangepointOptions.Changepoints = []options.Changepoint{
			options.NewChangepoint("known", t[len(t)/2]),
		}
	}
	return opt
}

func TestForecastFit(t *testing.T) {
	tTrain, yTrain := generateDaily(120)

	f, err := New(exactOptions(tTrain))
	require.Nil(t, err)
	require.Nil(t, f.Fit(tTrain, yTrain))

	scores := f.Scores()
	assert.InDelta(t, 1.0, scores.R2, 1e-6)
	assert.InDelta(t, 0.0, scores.MAPE, 1e-6)

	for _, r := range f.Residuals() {
		assert.InDelta(t, 0.0, r, 1e-6)
	}

	// trend, seasonality and event components add up to the fit
	trend := f.TrendComponent()
	seas := f.SeasonalityComponent()
	events := f.EventComponent()
	require.Len(t, trend, len(tTrain))
	for i := range tTrain {
		assert.InDelta(t, yTrain[i], trend[i]+seas[i]+events[i], 1e-6)
	}

	// extrapolation continues the post changepoint slope of 2 per day
	horizon := timedataset.DailyHorizon(tTrain[len(tTrain)-1], 7)
	res, _, err := f.Predict(horizon)
	require.Nil(t, err)
	expected := timedataset.GenerateConstY(7, 500).
		Add(timedataset.GenerateWaveY(horizon, 20, options.Week.Seconds(), 1, 0)).
		Add(timedataset.GenerateChange(horizon, tTrain[60], 0, 2.0))
	assert.InDeltaSlice(t, []float64(expected), res, 1e-4)

	coef, err := f.Coefficients()
	require.Nil(t, err)
	assert.Contains(t, coef, feature.NewChangepoint("known").String())
	assert.Equal(t, tTrain[0], f.TrainStartTime())
	assert.Equal(t, tTrain[len(tTrain)-1], f.TrainEndTime())
}

func TestForecastFitDefault(t *testing.T) {
	tTrain, yTrain := generateDaily(200)

	f, err := New(nil)
	require.Nil(t, err)
	assert.Equal(t, 0.0, f.Options().Regularization)
	require.Nil(t, f.Fit(tTrain, yTrain))

	assert.Greater(t, f.Scores().R2, 0.99)
	assert.NotEmpty(t, f.Options().ChangepointOptions.Changepoints)
	assert.NotEmpty(t, f.Options().SeasonalityOptions.SeasonalityConfigs)
}

func TestForecastFitLasso(t *testing.T) {
	tTrain, yTrain := generateDaily(200)

	testData := map[string]struct {
		lambda   float64
		minScore float64
	}{
		"light": {0.01, 0.99},
		"mild":  {0.1, 0.95},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			opt := options.NewDefaultOptions()
			opt.Regularization = td.lambda

			f, err := New(opt)
			require.Nil(t, err)
			require.Nil(t, f.Fit(tTrain, yTrain))
			assert.Greater(t, f.Scores().R2, td.minScore)
		})
	}

	// a heavy penalty shrinks the fit
	opt := options.NewDefaultOptions()
	opt.Regularization = 1.0
	heavy, err := New(opt)
	require.Nil(t, err)
	require.Nil(t, heavy.Fit(tTrain, yTrain))
	assert.Less(t, heavy.Scores().R2, 0.95)
}

func TestForecastFitNaN(t *testing.T) {
	tTrain, yTrain := generateDaily(60)
	yTrain[3] = math.NaN()
	yTrain[10] = math.NaN()

	f, err := New(exactOptions(tTrain))
	require.Nil(t, err)
	require.Nil(t, f.Fit(tTrain, yTrain))

	residual := f.Residuals()
	assert.True(t, math.IsNaN(residual[3]))
	assert.True(t, math.IsNaN(residual[10]))
	assert.InDelta(t, 0.0, residual[4], 1e-3)
}

func TestForecastErrors(t *testing.T) {
	var nilForecast *Forecast
	assert.ErrorIs(t, nilForecast.Fit(nil, nil), ErrUninitializedForecast)
	_, _, err := nilForecast.Predict(nil)
	assert.ErrorIs(t, err, ErrUninitializedForecast)
	_, err = nilForecast.Model()
	assert.ErrorIs(t, err, ErrUninitializedForecast)

	f, err := New(nil)
	require.Nil(t, err)
	_, _, err = f.Predict([]time.Time{time.Now()})
	assert.ErrorIs(t, err, ErrUntrainedForecast)
	_, err = f.Model()
	assert.ErrorIs(t, err, ErrUntrainedForecast)

	err = f.Fit(
		[]time.Time{time.Unix(0, 0), time.Unix(86400, 0)},
		[]float64{1, math.NaN()},
	)
	assert.ErrorIs(t, err, ErrInsufficientTrainingData)
	err = f.Fit(
		[]time.Time{time.Unix(86400, 0), time.Unix(0, 0)},
		[]float64{1, 2},
	)
	assert.ErrorIs(t, err, timedataset.ErrNonMontonic)
}

func TestForecastInterceptOnly(t *testing.T) {
	opt := exactOptions(nil)
	opt.GrowthType = ""
	f, err := New(opt)
	require.Nil(t, err)

	tTrain := []time.Time{time.Unix(0, 0).UTC(), time.Unix(86400, 0).UTC(), time.Unix(2*86400, 0).UTC()}
	require.Nil(t, f.Fit(tTrain, []float64{1, 2, 3}))
	assert.Equal(t, 2.0, f.Intercept())

	_, err = f.Coefficients()
	assert.ErrorIs(t, err, ErrNoModelCoefficients)

	res, _, err := f.Predict([]time.Time{time.Unix(10*86400, 0).UTC()})
	require.Nil(t, err)
	assert.Equal(t, []float64{2.0}, res)
}

func TestForecastModelRoundTrip(t *testing.T) {
	tTrain, yTrain := generateDaily(90)

	opt := options.NewDefaultOptions()
	opt.ChangepointOptions.AutoNumChangepoints = 5
	opt.EventOptions.USHolidays = true
	f, err := New(opt)
	require.Nil(t, err)
	require.Nil(t, f.Fit(tTrain, yTrain))

	m, err := f.Model()
	require.Nil(t, err)

	out, err := json.Marshal(m)
	require.Nil(t, err)

	var loaded Model
	require.Nil(t, json.Unmarshal(out, &loaded))

	f2, err := NewFromModel(loaded)
	require.Nil(t, err)

	horizon := timedataset.DailyHorizon(tTrain[len(tTrain)-1], 30)
	expected, _, err := f.Predict(horizon)
	require.Nil(t, err)
	res, _, err := f2.Predict(horizon)
	require.Nil(t, err)
	assert.InDeltaSlice(t, expected, res, 1e-9)
	assert.Equal(t, f.Scores(), f2.Scores())

	eq, err := f.ModelEq()
	require.Nil(t, err)
	assert.Contains(t, eq, "y ~ ")

	var buf bytes.Buffer
	require.Nil(t, m.TablePrint(&buf, "", "  "))
	assert.Contains(t, buf.String(), "Weights:")
	assert.Contains(t, buf.String(), "intercept")

	_, err = NewFromModel(Model{})
	assert.ErrorIs(t, err, ErrNoOptionsInModel)
}

func TestFeatureWeightToFeature(t *testing.T) {
	testData := map[string]struct {
		f   feature.Feature
		err error
	}{
		"changepoint": {f: feature.NewChangepoint("c")},
		"seasonality": {f: feature.NewSeasonality("weekly", feature.FourierCompCos, 2)},
		"event":       {f: feature.NewEvent("Christmas_Day")},
		"growth":      {f: feature.Linear()},
	}
	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			fw := NewFeatureWeight(td.f, 1.5)
			res, err := fw.ToFeature()
			require.Nil(t, err)
			assert.Equal(t, td.f.String(), res.String())
		})
	}

	fw := FeatureWeight{Type: "bogus"}
	_, err := fw.ToFeature()
	assert.ErrorIs(t, err, ErrUnknownFeatureType)
}

func TestPredictComponentsSum(t *testing.T) {
	tTrain, yTrain := generateDaily(60)
	f, err := New(exactOptions(tTrain))
	require.Nil(t, err)
	require.Nil(t, f.Fit(tTrain, yTrain))

	horizon := timedataset.DailyHorizon(tTrain[len(tTrain)-1], 10)
	res, comp, err := f.Predict(horizon)
	require.Nil(t, err)

	sum := make([]float64, len(horizon))
	floats.Add(sum, comp.Trend)
	floats.Add(sum, comp.Seasonality)
	floats.Add(sum, comp.Event)
	assert.InDeltaSlice(t, res, sum, 1e-9)
}
