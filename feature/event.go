package feature

import "time"

// Event marks the days a named holiday or custom window covers.
type Event struct {
	Name string `json:"name"`
}

func NewEvent(name string) *Event {
	return &Event{name}
}

func (e Event) String() string {
	return "event_" + e.Name
}

func (e Event) Get(label string) (string, bool) {
	return lookup(e.Decode(), label)
}

func (e Event) Type() FeatureType {
	return FeatureTypeEvent
}

func (e Event) Decode() map[string]string {
	return map[string]string{"name": e.Name}
}

func (e *Event) UnmarshalJSON(data []byte) error {
	name, err := decodeName(data)
	if err != nil {
		return err
	}
	e.Name = name
	return nil
}

// Generate returns 1 for every time inside any of the [start, end) windows and 0 elsewhere
func (e Event) Generate(t []time.Time, windows [][2]time.Time) []float64 {
	out := make([]float64, len(t))
	for i, ts := range t {
		for _, w := range windows {
			if !ts.Before(w[0]) && ts.Before(w[1]) {
				out[i] = 1
				break
			}
		}
	}
	return out
}
