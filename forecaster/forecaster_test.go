package forecaster

import (
	"bytes"
	"context"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/aouyang1/go-houseprice/forecast/options"
	"github.com/aouyang1/go-houseprice/timedataset"
	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// generateHistory returns daily prices ending 2015-05-15 with weekly seasonality, a trend
// change halfway through and gaussian noise
func generateHistory(n int) ([]time.Time, []float64) {
	nowFunc := func() time.Time {
		return time.Date(2015, 5, 16, 0, 0, 0, 0, time.UTC)
	}
	t := timedataset.GenerateT(n, 24*time.Hour, nowFunc)
	rng := rand.New(rand.NewPCG(1, 2))
	y := timedataset.GenerateConstY(n, 221900).
		Add(timedataset.GenerateWaveY(t, 5000, options.Week.Seconds(), 1, 0)).
		Add(timedataset.GenerateChange(t, t[n/2], 0, 100.0)).
		Add(timedataset.GenerateNoise(rng, n, 1000))
	return t, y
}

func fitForecaster(t *testing.T, opt *Options) *Forecaster {
	t.Helper()
	tTrain, yTrain := generateHistory(400)
	f, err := New(opt)
	require.Nil(t, err)
	require.Nil(t, f.Fit(tTrain, yTrain))
	return f
}

func TestPredictFuture(t *testing.T) {
	f := fitForecaster(t, nil)
	lastDay := time.Date(2015, 5, 15, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, lastDay, f.LastTime())

	testData := map[string]struct {
		periods int
		first   time.Time
		err     error
	}{
		"one day":    {1, time.Date(2015, 5, 16, 0, 0, 0, 0, time.UTC), nil},
		"full year":  {365, time.Date(2015, 5, 16, 0, 0, 0, 0, time.UTC), nil},
		"long range": {1000, time.Date(2015, 5, 16, 0, 0, 0, 0, time.UTC), nil},
		"zero":       {0, time.Time{}, ErrInvalidPeriods},
		"negative":   {-3, time.Time{}, ErrInvalidPeriods},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			res, err := f.PredictFuture(context.Background(), td.periods)
			if td.err != nil {
				assert.ErrorIs(t, err, td.err)
				return
			}
			require.Nil(t, err)
			require.Len(t, res.T, td.periods)
			require.Len(t, res.Forecast, td.periods)
			require.Len(t, res.Upper, td.periods)
			require.Len(t, res.Lower, td.periods)
			require.Len(t, res.SeriesComponents.Trend, td.periods)

			assert.Equal(t, td.first, res.T[0])
			for i := 1; i < len(res.T); i++ {
				assert.Equal(t, 24*time.Hour, res.T[i].Sub(res.T[i-1]))
			}
			for i := range res.T {
				assert.LessOrEqual(t, res.Lower[i], res.Forecast[i])
				assert.LessOrEqual(t, res.Forecast[i], res.Upper[i])
			}
		})
	}
}

func TestPredictFutureDeterministic(t *testing.T) {
	f := fitForecaster(t, nil)
	res1, err := f.PredictFuture(context.Background(), 30)
	require.Nil(t, err)
	res2, err := f.PredictFuture(context.Background(), 30)
	require.Nil(t, err)
	assert.Equal(t, res1.Forecast, res2.Forecast)
	assert.Equal(t, res1.Upper, res2.Upper)
	assert.Equal(t, res1.Lower, res2.Lower)
}

func TestPredictFutureCancelled(t *testing.T) {
	f := fitForecaster(t, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := f.PredictFuture(ctx, 10)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestUntrained(t *testing.T) {
	f, err := New(nil)
	require.Nil(t, err)
	_, err = f.Predict([]time.Time{time.Now()})
	assert.ErrorIs(t, err, ErrUntrained)
	_, err = f.PredictFuture(context.Background(), 1)
	assert.ErrorIs(t, err, ErrUntrained)
	assert.ErrorIs(t, f.PlotFit(&bytes.Buffer{}, 1), ErrNoTrainingData)
}

func TestFitWithOutliers(t *testing.T) {
	opt := NewDefaultOptions()
	opt.OutlierOptions = NewOutlierOptions()

	tTrain, yTrain := generateHistory(400)
	yTrain[100] = 1e7
	yTrain[250] = -1e7

	f, err := New(opt)
	require.Nil(t, err)
	require.Nil(t, f.Fit(tTrain, yTrain))

	res := f.Residuals()
	require.Len(t, res, len(tTrain))
	assert.Greater(t, f.SeriesScores().R2, 0.0)

	// the input is not mutated by outlier masking
	assert.Equal(t, 1e7, yTrain[100])

	fit := f.FitResults()
	require.NotNil(t, fit)
	for i := range fit.T {
		assert.LessOrEqual(t, fit.Lower[i], fit.Upper[i])
	}
}

func TestFitErrors(t *testing.T) {
	testData := map[string]struct {
		t   []time.Time
		y   []float64
		err error
	}{
		"no data": {
			t:   nil,
			y:   nil,
			err: timedataset.ErrNoTrainingData,
		},
		"length mismatch": {
			t:   []time.Time{time.Unix(0, 0), time.Unix(1, 0)},
			y:   []float64{1},
			err: timedataset.ErrDatasetLenMismatch,
		},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			f, err := New(nil)
			require.Nil(t, err)
			assert.ErrorIs(t, f.Fit(td.t, td.y), td.err)
		})
	}
}

func TestModelRoundTrip(t *testing.T) {
	f := fitForecaster(t, nil)
	m, err := f.Model()
	require.Nil(t, err)

	out, err := json.Marshal(m)
	require.Nil(t, err)

	var loaded Model
	require.Nil(t, json.Unmarshal(out, &loaded))

	f2, err := NewFromModel(loaded)
	require.Nil(t, err)
	assert.Equal(t, f.LastTime().Unix(), f2.LastTime().Unix())

	res1, err := f.PredictFuture(context.Background(), 60)
	require.Nil(t, err)
	res2, err := f2.PredictFuture(context.Background(), 60)
	require.Nil(t, err)
	assert.InDeltaSlice(t, res1.Forecast, res2.Forecast, 1e-6)
	assert.InDeltaSlice(t, res1.Upper, res2.Upper, 1e-6)
	assert.InDeltaSlice(t, res1.Lower, res2.Lower, 1e-6)

	var buf bytes.Buffer
	require.Nil(t, m.TablePrint(&buf, "", "  "))
	assert.Contains(t, buf.String(), "Uncertainty")

	_, err = NewFromModel(Model{})
	assert.ErrorIs(t, err, ErrNoOptionsInModel)
}

func TestModelEq(t *testing.T) {
	f := fitForecaster(t, nil)
	eq, err := f.SeriesModelEq()
	require.Nil(t, err)
	assert.Contains(t, eq, "y ~")

	eq, err = f.ResidualModelEq()
	require.Nil(t, err)
	assert.Contains(t, eq, "y ~")
}

func TestPlotFit(t *testing.T) {
	f := fitForecaster(t, nil)
	var buf bytes.Buffer
	require.Nil(t, f.PlotFit(&buf, 30))
	assert.Contains(t, buf.String(), "Forecast Fit")
	assert.Contains(t, buf.String(), "Forecast Residual")
}

func TestIntervalZscore(t *testing.T) {
	testData := map[string]struct {
		width    float64
		expected float64
	}{
		"eighty":     {0.8, 1.2816},
		"ninetyfive": {0.95, 1.9600},
		"invalid":    {1.5, 1.2816},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			assert.InDelta(t, td.expected, IntervalZscore(td.width), 1e-4)
		})
	}
}
