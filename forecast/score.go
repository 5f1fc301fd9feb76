package forecast

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

var ErrResLenMismatch = errors.New("predicted and actual have different lengths")

// Scores are the in-sample fit metrics of a forecast
type Scores struct {
	MSE  float64 `json:"mean_squared_error"`
	MAPE float64 `json:"mean_average_percent_error"`
	R2   float64 `json:"r_squared"`
}

// NewScores computes every fit metric over the pairs where neither value is NaN
func NewScores(predicted, actual []float64) (*Scores, error) {
	p, a, err := observedPairs(predicted, actual)
	if err != nil {
		return nil, err
	}
	return &Scores{
		MSE:  meanSquaredError(p, a),
		MAPE: meanAbsPercentError(p, a),
		R2:   rSquared(p, a),
	}, nil
}

// MSE is the mean squared error, 0 for a perfect fit or when nothing is observed
func MSE(predicted, actual []float64) (float64, error) {
	p, a, err := observedPairs(predicted, actual)
	if err != nil {
		return 0, err
	}
	return meanSquaredError(p, a), nil
}

// MAPE is the mean absolute percent error. Actual values of 0 are skipped.
func MAPE(predicted, actual []float64) (float64, error) {
	p, a, err := observedPairs(predicted, actual)
	if err != nil {
		return 0, err
	}
	return meanAbsPercentError(p, a), nil
}

// RSquared is the coefficient of determination. A target with no variance that is matched
// exactly scores 1.
func RSquared(predicted, actual []float64) (float64, error) {
	p, a, err := observedPairs(predicted, actual)
	if err != nil {
		return 0, err
	}
	return rSquared(p, a), nil
}

func observedPairs(predicted, actual []float64) ([]float64, []float64, error) {
	if len(predicted) != len(actual) {
		return nil, nil, fmt.Errorf("expected %d, but got %d, %w", len(actual), len(predicted), ErrResLenMismatch)
	}
	p := make([]float64, 0, len(predicted))
	a := make([]float64, 0, len(actual))
	for i := range actual {
		if math.IsNaN(actual[i]) || math.IsNaN(predicted[i]) {
			continue
		}
		p = append(p, predicted[i])
		a = append(a, actual[i])
	}
	return p, a, nil
}

func meanSquaredError(p, a []float64) float64 {
	if len(a) == 0 {
		return 0
	}
	d := floats.Distance(p, a, 2)
	return d * d / float64(len(a))
}

func meanAbsPercentError(p, a []float64) float64 {
	var total float64
	var n int
	for i := range a {
		if a[i] == 0 {
			continue
		}
		total += math.Abs((a[i] - p[i]) / a[i])
		n++
	}
	if n == 0 {
		return 0
	}
	return total / float64(n)
}

func rSquared(p, a []float64) float64 {
	r2 := stat.RSquaredFrom(p, a, nil)
	if math.IsNaN(r2) {
		return 1
	}
	return r2
}
