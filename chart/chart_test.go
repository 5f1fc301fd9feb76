package chart

import (
	"bytes"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPriceBar(t *testing.T) {
	var buf bytes.Buffer
	require.Nil(t, Render(&buf, PriceBar(512345.67)))
	assert.Contains(t, buf.String(), "GPR Prediction")
	assert.Contains(t, buf.String(), "512345.67")
}

func TestForecastBand(t *testing.T) {
	day := time.Date(2015, 5, 16, 0, 0, 0, 0, time.UTC)
	b := Band{
		T:     []time.Time{day, day.AddDate(0, 0, 1)},
		Value: []float64{10, 11},
		Lower: []float64{8, 9},
		Upper: []float64{12, 14},
	}

	var buf bytes.Buffer
	require.Nil(t, Render(&buf, ForecastBand("Prophet Forecast", b)))
	out := buf.String()
	assert.Contains(t, out, "Prophet Forecast")
	assert.Contains(t, out, "2015-05-17")
	assert.Contains(t, out, "band")
}

func TestLineForecaster(t *testing.T) {
	day := time.Date(2015, 5, 14, 0, 0, 0, 0, time.UTC)
	res := Band{
		T:     []time.Time{day, day.AddDate(0, 0, 1), day.AddDate(0, 0, 2)},
		Value: []float64{1, 2, 3},
		Lower: []float64{0, 1, 2},
		Upper: []float64{2, 3, 4},
	}
	line := LineForecaster([]float64{1, math.NaN()}, res)

	var buf bytes.Buffer
	require.Nil(t, Render(&buf, line, LineTSeries("Residual", []string{"Residual"}, res.T, [][]float64{{0.1}})))
	out := buf.String()
	assert.Contains(t, out, "Forecast Fit")
	assert.Contains(t, out, "Residual")
}
