package forecaster

import (
	"github.com/aouyang1/go-houseprice/forecast/options"
	"gonum.org/v1/gonum/stat/distuv"
)

const (
	DefaultResidualWindow = 100
	DefaultIntervalWidth  = 0.8
)

// OutlierOptions configures iterative removal of training points whose residual falls outside
// of Tukey fences
type OutlierOptions struct {
	NumPasses       int     `json:"num_passes"`
	UpperPercentile float64 `json:"upper_percentile"`
	LowerPercentile float64 `json:"lower_percentile"`
	TukeyFactor     float64 `json:"tukey_factor"`
}

func NewOutlierOptions() *OutlierOptions {
	return &OutlierOptions{
		NumPasses:       3,
		UpperPercentile: 0.9,
		LowerPercentile: 0.1,
		TukeyFactor:     1.0,
	}
}

// Options configures the series forecast and the uncertainty forecast. The uncertainty
// forecast is fit on the rolling standard deviation of the series residual scaled by the
// z-score of the interval width.
type Options struct {
	SeriesOptions   *options.Options `json:"series_options"`
	ResidualOptions *options.Options `json:"residual_options"`

	OutlierOptions *OutlierOptions `json:"outlier_options"`
	ResidualWindow int             `json:"residual_window"`
	ResidualZscore float64         `json:"residual_zscore"`
}

// NewDefaultOptions returns a series forecast with linear growth, auto changepoints and auto
// seasonality, and an uncertainty forecast of only seasonality with an 80% interval.
func NewDefaultOptions() *Options {
	return &Options{
		SeriesOptions:   options.NewDefaultOptions(),
		ResidualOptions: NewDefaultResidualOptions(),
		ResidualWindow:  DefaultResidualWindow,
		ResidualZscore:  IntervalZscore(DefaultIntervalWidth),
	}
}

// NewDefaultResidualOptions returns least squares forecast options with no growth or
// changepoints so the uncertainty band only varies seasonally
func NewDefaultResidualOptions() *options.Options {
	opt := options.NewDefaultOptions()
	opt.GrowthType = ""
	opt.ChangepointOptions.Auto = false
	opt.Regularization = 0
	return opt
}

// IntervalZscore returns the two sided standard normal z-score covering the interval width.
// Widths outside of (0, 1) use the default width.
func IntervalZscore(width float64) float64 {
	if width <= 0 || width >= 1 {
		width = DefaultIntervalWidth
	}
	return distuv.UnitNormal.Quantile(0.5 + width/2.0)
}

// Copy returns a deep copy of the options
func (o *Options) Copy() *Options {
	if o == nil {
		return nil
	}
	c := *o
	c.SeriesOptions = o.SeriesOptions.Copy()
	c.ResidualOptions = o.ResidualOptions.Copy()
	if o.OutlierOptions != nil {
		outlier := *o.OutlierOptions
		c.OutlierOptions = &outlier
	}
	return &c
}
