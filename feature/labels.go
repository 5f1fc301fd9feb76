package feature

import "slices"

// Labels is the ordered list of features behind a model's coefficients.
type Labels struct {
	idx    map[string]int
	labels []Feature
}

func NewLabels(labels []Feature) *Labels {
	l := &Labels{
		idx:    make(map[string]int, len(labels)),
		labels: labels,
	}
	for i, f := range labels {
		l.idx[f.String()] = i
	}
	return l
}

func (l *Labels) Len() int {
	if l == nil {
		return 0
	}
	return len(l.labels)
}

// Labels returns a copy of the features in coefficient order
func (l *Labels) Labels() []Feature {
	if l == nil {
		return nil
	}
	return slices.Clone(l.labels)
}

// Index returns the coefficient position of the feature
func (l *Labels) Index(label Feature) (int, bool) {
	if l == nil {
		return -1, false
	}
	idx, ok := l.idx[label.String()]
	if !ok {
		return -1, false
	}
	return idx, true
}
