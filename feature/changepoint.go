package feature

// Changepoint is a trend slope change at a point in time. The feature is a hinge which is 0
// before the changepoint and grows linearly afterwards so the trend stays continuous.
type Changepoint struct {
	Name string `json:"name"`
}

func NewChangepoint(name string) *Changepoint {
	return &Changepoint{name}
}

func (c Changepoint) String() string {
	return "chpnt_" + c.Name
}

func (c Changepoint) Get(label string) (string, bool) {
	return lookup(c.Decode(), label)
}

func (c Changepoint) Type() FeatureType {
	return FeatureTypeChangepoint
}

func (c Changepoint) Decode() map[string]string {
	return map[string]string{"name": c.Name}
}

func (c *Changepoint) UnmarshalJSON(data []byte) error {
	name, err := decodeName(data)
	if err != nil {
		return err
	}
	c.Name = name
	return nil
}

// Generate computes the hinge from scaled observation times and the scaled changepoint time
func (c Changepoint) Generate(tScaled []float64, chptScaled float64) []float64 {
	out := make([]float64, len(tScaled))
	for i, ts := range tScaled {
		out[i] = max(ts-chptScaled, 0)
	}
	return out
}
