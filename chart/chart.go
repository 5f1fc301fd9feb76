// Package chart builds the go-echarts charts shown by the interactive client and the forecaster
// fit report.
package chart

import (
	"io"
	"math"
	"time"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
)

const dateLayout = "2006-01-02"

// Band is a forecast with lower and upper bounds over time
type Band struct {
	T     []time.Time
	Value []float64
	Lower []float64
	Upper []float64
}

// PriceBar generates a single bar chart of a predicted price
func PriceBar(price float64) *charts.Bar {
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithTitleOpts(
			opts.Title{
				Title: "GPR Prediction",
			},
		),
		charts.WithTooltipOpts(opts.Tooltip{Trigger: "axis"}),
	)
	bar.SetXAxis([]string{"Predicted Price"}).
		AddSeries("Price", []opts.BarData{{Value: price}})
	return bar
}

// ForecastBand generates a line chart of the forecast with the lower and upper bounds shaded. The
// shading is drawn by stacking the band width on top of the lower bound.
func ForecastBand(title string, b Band) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(
			opts.Title{
				Title: title,
			},
		),
		charts.WithTooltipOpts(opts.Tooltip{Trigger: "axis"}),
	)

	x := make([]string, len(b.T))
	lower := make([]opts.LineData, len(b.T))
	width := make([]opts.LineData, len(b.T))
	value := make([]opts.LineData, len(b.T))
	for i := range b.T {
		x[i] = b.T[i].Format(dateLayout)
		lower[i] = opts.LineData{Value: b.Lower[i]}
		width[i] = opts.LineData{Value: b.Upper[i] - b.Lower[i]}
		value[i] = opts.LineData{Value: b.Value[i]}
	}

	line.SetXAxis(x).
		AddSeries("Lower", lower, charts.WithLineChartOpts(opts.LineChart{Stack: "band"})).
		AddSeries("Band", width,
			charts.WithLineChartOpts(opts.LineChart{Stack: "band"}),
			charts.WithAreaStyleOpts(opts.AreaStyle{}),
		).
		AddSeries("Forecast", value)
	return line
}

// LineTSeries generates an echart multi-line chart for some arbitrary time/value combination. The input
// y is a slice of series that must have the same length as the input time slice. NaN values are
// left as gaps.
func LineTSeries(title string, seriesName []string, t []time.Time, y [][]float64) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(
			opts.Title{
				Title: title,
			},
		),
	)

	lineData := make([][]opts.LineData, len(y))
	for i := 0; i < len(y); i++ {
		lineData[i] = make([]opts.LineData, len(t))
		for j := 0; j < len(t); j++ {
			if j >= len(y[i]) || math.IsNaN(y[i][j]) {
				lineData[i][j] = opts.LineData{Value: "-"}
				continue
			}
			lineData[i][j] = opts.LineData{Value: y[i][j]}
		}
	}

	line.SetXAxis(t)
	for i, series := range seriesName {
		if i >= len(lineData) {
			break
		}
		line.AddSeries(series, lineData[i])
	}
	return line
}

// LineForecaster generates an echart line chart of the actual values next to the forecasted,
// upper and lower values. The actual values may be shorter than the forecast when the forecast
// extends past the training data.
func LineForecaster(actual []float64, res Band) *charts.Line {
	forecast := make([]float64, len(res.T))
	copy(forecast, res.Value)

	padded := make([]float64, len(res.T))
	for i := range padded {
		padded[i] = math.NaN()
		if i < len(actual) {
			padded[i] = actual[i]
		}
	}
	return LineTSeries(
		"Forecast Fit",
		[]string{"Actual", "Forecast", "Upper", "Lower"},
		res.T,
		[][]float64{padded, forecast, res.Upper, res.Lower},
	)
}

// Render writes an html page with every chart
func Render(w io.Writer, c ...components.Charter) error {
	page := components.NewPage()
	page.AddCharts(c...)
	return page.Render(w)
}
