package forecaster

import (
	"time"

	"github.com/aouyang1/go-houseprice/chart"
	"github.com/aouyang1/go-houseprice/forecast"
)

// Results holds the forecast and its uncertainty band for each time point. Lower <= Forecast <=
// Upper always holds.
type Results struct {
	T                  []time.Time         `json:"time"`
	Forecast           []float64           `json:"forecast"`
	Upper              []float64           `json:"upper"`
	Lower              []float64           `json:"lower"`
	SeriesComponents   forecast.Components `json:"series_components"`
	ResidualComponents forecast.Components `json:"residual_components"`
}

// Band returns the forecast and bounds for charting
func (r *Results) Band() chart.Band {
	if r == nil {
		return chart.Band{}
	}
	return chart.Band{
		T:     r.T,
		Value: r.Forecast,
		Lower: r.Lower,
		Upper: r.Upper,
	}
}
