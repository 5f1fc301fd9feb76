package feature

import (
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Set represents a mapping to each feature data keyed by the string representation
// of the feature. All feature columns in a set share the same number of observations.
type Set struct {
	m      int
	set    map[string][]float64
	labels []Feature
}

// NewSet returns an empty feature set
func NewSet() *Set {
	return &Set{
		set: make(map[string][]float64),
	}
}

// Len returns the number of features tracked in the set
func (s *Set) Len() int {
	if s == nil {
		return 0
	}
	return len(s.labels)
}

// Rows returns the number of observations of each feature
func (s *Set) Rows() int {
	if s == nil {
		return 0
	}
	return s.m
}

// Set stores the feature data. If the data is longer than the current observation count
// every other feature is zero padded to match, if shorter the data itself is zero padded.
func (s *Set) Set(f Feature, data []float64) *Set {
	if s == nil {
		return nil
	}
	if len(data) > s.m {
		for label, d := range s.set {
			s.set[label] = append(d, make([]float64, len(data)-len(d))...)
		}
		s.m = len(data)
	}
	if len(data) < s.m {
		data = append(data, make([]float64, s.m-len(data))...)
	}

	label := f.String()
	if _, exists := s.set[label]; !exists {
		s.labels = append(s.labels, f)
	}
	s.set[label] = data
	return s
}

// Get returns the feature data if it exists
func (s *Set) Get(f Feature) ([]float64, bool) {
	if s == nil {
		return nil, false
	}
	data, exists := s.set[f.String()]
	return data, exists
}

// Del removes a feature from the set
func (s *Set) Del(f Feature) {
	if s == nil {
		return
	}
	label := f.String()
	if _, exists := s.set[label]; !exists {
		return
	}
	delete(s.set, label)
	for i, l := range s.labels {
		if l.String() == label {
			s.labels = append(s.labels[:i], s.labels[i+1:]...)
			break
		}
	}
}

// Update copies every feature of the other set into this one, overwriting matching labels
func (s *Set) Update(other *Set) *Set {
	if s == nil || other == nil {
		return s
	}
	for _, f := range other.labels {
		s.Set(f, other.set[f.String()])
	}
	return s
}

// FilterByType returns a new set only containing features of the given type. Data is shared
// with the original set.
func (s *Set) FilterByType(ft FeatureType) *Set {
	out := NewSet()
	if s == nil {
		return out
	}
	for _, f := range s.labels {
		if f.Type() == ft {
			out.Set(f, s.set[f.String()])
		}
	}
	return out
}

// Labels returns the sorted slice of all tracked features in the Set
func (s *Set) Labels() *Labels {
	if s == nil {
		return NewLabels(nil)
	}

	labels := make([]Feature, len(s.labels))
	copy(labels, s.labels)
	sort.Slice(
		labels,
		func(i, j int) bool {
			return labels[i].String() < labels[j].String()
		},
	)
	return NewLabels(labels)
}

// Matrix returns a matrix representation of the Set to be used with matrix methods.
// The matrix has m rows representing the number of observations and n columns representing
// the number of features in label order. An optional leading column of ones is added for the
// intercept.
func (s *Set) Matrix(intercept bool) *mat.Dense {
	if s == nil {
		return nil
	}

	featureLabels := s.Labels()
	n := featureLabels.Len()
	if intercept {
		n += 1
	}
	if s.m == 0 || n == 0 {
		return nil
	}

	obs := make([]float64, s.m*n)

	featNum := 0
	if intercept {
		for i := 0; i < s.m; i++ {
			obs[n*i] = 1.0
		}
		featNum += 1
	}

	for _, label := range featureLabels.Labels() {
		feature := s.set[label.String()]
		for i := 0; i < len(feature); i++ {
			obs[n*i+featNum] = feature[i]
		}
		featNum += 1
	}
	return mat.NewDense(s.m, n, obs)
}

// MatrixSlice returns the Set as a slice of feature columns in label order. Takes an
// intercept input if we want to include a leading column of ones.
func (s *Set) MatrixSlice(intercept bool) [][]float64 {
	if s == nil {
		return nil
	}

	featureLabels := s.Labels()
	n := featureLabels.Len()
	if intercept {
		n += 1
	}

	obs := make([][]float64, 0, n)
	if intercept {
		ones := make([]float64, s.m)
		floats.AddConst(1.0, ones)
		obs = append(obs, ones)
	}

	for _, label := range featureLabels.Labels() {
		obs = append(obs, s.set[label.String()])
	}
	return obs
}
