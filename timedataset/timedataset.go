package timedataset

import (
	"errors"
	"fmt"
	"math"
	"slices"
	"time"
)

var (
	ErrNoTrainingData     = errors.New("no training data")
	ErrNonMontonic        = errors.New("time feature is decreasing")
	ErrDatasetLenMismatch = errors.New("time feature has a different length than observations")
	ErrCannotInferFreq    = errors.New("cannot infer frequency from time series")
)

// TimeDataset is a price series: observation times with one value each. Times are
// non-decreasing and may repeat since several sales can land on the same day.
type TimeDataset struct {
	T []time.Time
	Y []float64
}

// NewUnivariateDataset validates and copies the observations.
func NewUnivariateDataset(t []time.Time, y []float64) (*TimeDataset, error) {
	switch {
	case len(y) == 0:
		return nil, ErrNoTrainingData
	case len(t) != len(y):
		return nil, fmt.Errorf("%d times for %d values, %w", len(t), len(y), ErrDatasetLenMismatch)
	}
	for i := 1; i < len(t); i++ {
		if t[i].Before(t[i-1]) {
			return nil, fmt.Errorf("decreasing at %d, %w", i, ErrNonMontonic)
		}
	}
	return &TimeDataset{T: slices.Clone(t), Y: slices.Clone(y)}, nil
}

func (td *TimeDataset) Len() int {
	if td == nil {
		return 0
	}
	return len(td.T)
}

// Copy returns a deep copy of the dataset
func (td *TimeDataset) Copy() *TimeDataset {
	if td == nil {
		return nil
	}
	return &TimeDataset{T: slices.Clone(td.T), Y: slices.Clone(td.Y)}
}

// DropNan returns a new dataset without the NaN observations
func (td *TimeDataset) DropNan() *TimeDataset {
	if td == nil {
		return nil
	}
	res := &TimeDataset{
		T: make([]time.Time, 0, len(td.T)),
		Y: make([]float64, 0, len(td.Y)),
	}
	for i, v := range td.Y {
		if !math.IsNaN(v) {
			res.T = append(res.T, td.T[i])
			res.Y = append(res.Y, v)
		}
	}
	return res
}
