// Package options contains all forecast options for a linear fit of a univariate time series
package options

import (
	"fmt"
	"io"
	"time"

	"github.com/aouyang1/go-houseprice/feature"
	"github.com/aouyang1/go-houseprice/forecast/util"
	"github.com/aouyang1/go-houseprice/models"
)

// Options configures a forecast by specifying growth, changepoints, seasonality, events
// and a regularization parameter where higher values removes more features that contribute
// the least to the fit. A regularization of 0 fits with ordinary least squares.
type Options struct {
	GrowthType string `json:"growth_type"`

	ChangepointOptions ChangepointOptions `json:"changepoint_options"`
	SeasonalityOptions SeasonalityOptions `json:"seasonality_options"`
	EventOptions       EventOptions       `json:"event_options"`

	// Lasso related options
	Regularization float64 `json:"regularization"`
	Iterations     int     `json:"iterations"`
	Tolerance      float64 `json:"tolerance"`
}

// NewDefaultOptions returns a set of default forecast options with linear growth, automatic
// changepoints and automatic seasonality
func NewDefaultOptions() *Options {
	return &Options{
		GrowthType:         feature.GrowthLinear,
		ChangepointOptions: NewDefaultChangepointOptions(),
		SeasonalityOptions: NewDefaultSeasonalityOptions(),
		Iterations:         models.DefaultIterations,
		Tolerance:          models.DefaultTolerance,
	}
}

// Copy returns a deep copy of the options
func (o *Options) Copy() *Options {
	if o == nil {
		return nil
	}
	c := *o
	c.ChangepointOptions.Changepoints = append([]Changepoint(nil), o.ChangepointOptions.Changepoints...)
	c.SeasonalityOptions.SeasonalityConfigs = append([]SeasonalityConfig(nil), o.SeasonalityOptions.SeasonalityConfigs...)
	c.EventOptions.Events = append(c.EventOptions.Events[:0:0], o.EventOptions.Events...)
	return &c
}

// NewModel returns the linear model used to fit the features. Lasso is used unless the
// regularization is 0 where an exact least squares fit is used instead.
func (o *Options) NewModel() (models.Model, error) {
	if o.Regularization == 0 {
		return models.NewOLSRegression(&models.OLSOptions{FitIntercept: true})
	}

	lassoOpt := models.NewDefaultLassoOptions()
	lassoOpt.Lambda = o.Regularization
	if o.Iterations > 0 {
		lassoOpt.Iterations = o.Iterations
	}
	if o.Tolerance > 0 {
		lassoOpt.Tolerance = o.Tolerance
	}
	return models.NewLassoRegression(lassoOpt)
}

// Resolve replaces any automatic changepoint or seasonality settings with concrete values
// derived from the training times. Resolved options generate the same features for training
// and inference.
func (o *Options) Resolve(t []time.Time) {
	if o.ChangepointOptions.Auto {
		o.ChangepointOptions.GenerateAutoChangepoints(t)
	}
	if o.SeasonalityOptions.Auto {
		o.SeasonalityOptions.GenerateAutoSeasonality(t)
	}
}

// GenerateFeatures builds every regressor column for the input times. The training window is
// used to scale time for the growth and changepoint features.
func (o *Options) GenerateFeatures(t []time.Time, trainStartTime, trainEndTime time.Time) *feature.Set {
	feat := feature.NewSet()
	if len(t) == 0 {
		return feat
	}

	switch o.GrowthType {
	case feature.GrowthLinear:
		if trainEndTime.After(trainStartTime) {
			growth := feature.Linear()
			feat.Set(growth, growth.Generate(t, trainStartTime, trainEndTime))
		}
	}

	feat.Update(o.ChangepointOptions.GenerateFeatures(t, trainStartTime, trainEndTime))
	feat.Update(o.SeasonalityOptions.GenerateFeatures(t))
	feat.Update(o.EventOptions.GenerateFeatures(t))
	return feat
}

// TablePrint writes a human readable summary of the options
func (o *Options) TablePrint(w io.Writer, prefix, indent string, indentGrowth int) error {
	growth := o.GrowthType
	if growth == "" {
		growth = "none"
	}
	if _, err := fmt.Fprintf(w, "%s%sGrowth: %s\n", prefix, util.IndentExpand(indent, indentGrowth), growth); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "%s%sRegularization: %.3f\n", prefix, util.IndentExpand(indent, indentGrowth), o.Regularization); err != nil {
		return err
	}
	if err := o.SeasonalityOptions.TablePrint(w, prefix, indent, indentGrowth); err != nil {
		return err
	}
	if err := o.ChangepointOptions.TablePrint(w, prefix, indent, indentGrowth); err != nil {
		return err
	}
	return o.EventOptions.TablePrint(w, prefix, indent, indentGrowth)
}
