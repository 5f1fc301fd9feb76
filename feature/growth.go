package feature

import "time"

const (
	GrowthLinear = "linear"
)

// Growth is the overall trend across the training window
type Growth struct {
	Name string `json:"name"`
}

func NewGrowth(name string) *Growth {
	return &Growth{name}
}

// Linear returns the linear growth feature
func Linear() *Growth {
	return NewGrowth(GrowthLinear)
}

func (g Growth) String() string {
	return "growth_" + g.Name
}

func (g Growth) Get(label string) (string, bool) {
	return lookup(g.Decode(), label)
}

func (g Growth) Type() FeatureType {
	return FeatureTypeGrowth
}

func (g Growth) Decode() map[string]string {
	return map[string]string{"name": g.Name}
}

func (g *Growth) UnmarshalJSON(data []byte) error {
	name, err := decodeName(data)
	if err != nil {
		return err
	}
	g.Name = name
	return nil
}

// Generate places each time on the training window scale, see ScaleTime
func (g Growth) Generate(t []time.Time, trainStartTime, trainEndTime time.Time) []float64 {
	return ScaleTime(t, trainStartTime, trainEndTime)
}

// ScaleTime maps start to 0 and end to 1. Times outside the window extrapolate linearly and
// a zero length window leaves every value at 0.
func ScaleTime(t []time.Time, start, end time.Time) []float64 {
	out := make([]float64, len(t))
	window := end.Sub(start).Seconds()
	if window <= 0 {
		return out
	}
	for i, ts := range t {
		out[i] = ts.Sub(start).Seconds() / window
	}
	return out
}
