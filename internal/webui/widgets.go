package webui

import (
	"fmt"
	"strconv"
)

// widget is one regression form input. Select widgets list their options, number widgets
// are bounded by Min and Max.
type widget struct {
	Name    string
	Label   string
	Min     float64
	Max     float64
	Step    float64
	Default string
	Options []int
}

func (w widget) IsSelect() bool {
	return len(w.Options) > 0
}

func intRange(lo, hi int) []int {
	out := make([]int, 0, hi-lo+1)
	for i := lo; i <= hi; i++ {
		out = append(out, i)
	}
	return out
}

// regressionWidgets are in api.FeatureOrder
var regressionWidgets = []widget{
	{Name: "bedrooms", Label: "Bedrooms", Min: 0, Max: 20, Step: 1, Default: "3"},
	{Name: "bathrooms", Label: "Bathrooms", Min: 0, Max: 10, Step: 0.1, Default: "2.0"},
	{Name: "sqft_living", Label: "Square Feet Living", Min: 0, Max: 10000, Step: 1, Default: "2000"},
	{Name: "sqft_lot", Label: "Square Feet Lot", Min: 0, Max: 100000, Step: 1, Default: "5000"},
	{Name: "floors", Label: "Floors", Min: 0, Max: 10, Step: 0.1, Default: "1.0"},
	{Name: "waterfront", Label: "Waterfront", Default: "0", Options: intRange(0, 1)},
	{Name: "view", Label: "View", Default: "0", Options: intRange(0, 4)},
	{Name: "condition", Label: "Condition", Default: "1", Options: intRange(1, 5)},
	{Name: "grade", Label: "Grade", Default: "1", Options: intRange(1, 10)},
	{Name: "sqft_above", Label: "Square Feet Above", Min: 0, Max: 10000, Step: 1, Default: "1500"},
	{Name: "sqft_basement", Label: "Square Feet Basement", Min: 0, Max: 10000, Step: 1, Default: "0"},
	{Name: "yr_built", Label: "Year Built", Min: 1900, Max: 2024, Step: 1, Default: "2000"},
	{Name: "yr_renovated", Label: "Year Renovated", Min: 1900, Max: 2024, Step: 1, Default: "1900"},
	{Name: "zipcode", Label: "Zipcode", Min: 10000, Max: 99999, Step: 1, Default: "98101"},
	{Name: "lat", Label: "Latitude", Min: -90, Max: 90, Step: 0.0001, Default: "47.0"},
	{Name: "long", Label: "Longitude", Min: -180, Max: 180, Step: 0.0001, Default: "-122.0"},
	{Name: "sqft_living15", Label: "Square Feet Living 15", Min: 0, Max: 10000, Step: 1, Default: "2000"},
	{Name: "sqft_lot15", Label: "Square Feet Lot 15", Min: 0, Max: 100000, Step: 1, Default: "5000"},
	{Name: "year", Label: "Year", Min: 1900, Max: 2024, Step: 1, Default: "2020"},
	{Name: "month", Label: "Month", Min: 1, Max: 12, Step: 1, Default: "8"},
	{Name: "day", Label: "Day", Min: 1, Max: 31, Step: 1, Default: "15"},
}

const (
	minPeriods     = 1
	maxPeriods     = 365
	defaultPeriods = 30
)

// check rejects a value outside the widget's bounds or options
func (w widget) check(value string) error {
	v, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fmt.Errorf("%s: value is not a valid number", w.Name)
	}
	if w.IsSelect() {
		for _, opt := range w.Options {
			if v == float64(opt) {
				return nil
			}
		}
		return fmt.Errorf("%s: %s is not one of the allowed values", w.Name, value)
	}
	if v < w.Min || v > w.Max {
		return fmt.Errorf("%s: must be between %g and %g", w.Name, w.Min, w.Max)
	}
	return nil
}

// field is a widget with the value to show in the form
type field struct {
	widget
	Value string
}
