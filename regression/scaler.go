package regression

import (
	"fmt"

	"github.com/goccy/go-json"
)

// StandardScaler centers and scales each feature with stored statistics
type StandardScaler struct {
	Mean     []float64 `json:"mean"`
	Scale    []float64 `json:"scale"`
	WithMean bool      `json:"with_mean"`
	WithStd  bool      `json:"with_std"`
}

// NewStandardScaler returns a scaler that centers by mean and divides by scale
func NewStandardScaler(mean, scale []float64) (*StandardScaler, error) {
	s := &StandardScaler{
		Mean:     mean,
		Scale:    scale,
		WithMean: true,
		WithStd:  true,
	}
	if err := s.Init(); err != nil {
		return nil, err
	}
	return s, nil
}

// UnmarshalJSON defaults with_mean and with_std to true when absent
func (s *StandardScaler) UnmarshalJSON(data []byte) error {
	type alias StandardScaler
	a := alias{WithMean: true, WithStd: true}
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	*s = StandardScaler(a)
	return nil
}

// Init checks the stored statistics agree on the number of features
func (s *StandardScaler) Init() error {
	n := s.NFeaturesIn()
	if n == 0 {
		return ErrNoFeatures
	}
	if s.WithMean && len(s.Mean) != n {
		return fmt.Errorf("mean has %d values, expected %d, %w", len(s.Mean), n, ErrDimensionMismatch)
	}
	if s.WithStd && len(s.Scale) != n {
		return fmt.Errorf("scale has %d values, expected %d, %w", len(s.Scale), n, ErrDimensionMismatch)
	}
	return nil
}

// NFeaturesIn is the number of features the scaler was fit on
func (s *StandardScaler) NFeaturesIn() int {
	if s.WithStd {
		return len(s.Scale)
	}
	return len(s.Mean)
}

// Transform scales a single vector. A zero scale leaves the feature unscaled.
func (s *StandardScaler) Transform(x []float64) ([]float64, error) {
	n := s.NFeaturesIn()
	if len(x) != n {
		return nil, fmt.Errorf(
			"X has %d features, but scaler is expecting %d features as input, %w",
			len(x), n, ErrDimensionMismatch,
		)
	}
	out := make([]float64, len(x))
	copy(out, x)
	for i := range out {
		if s.WithMean {
			out[i] -= s.Mean[i]
		}
		if s.WithStd && s.Scale[i] != 0 {
			out[i] /= s.Scale[i]
		}
	}
	return out, nil
}
