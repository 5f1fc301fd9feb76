package feature

import (
	"fmt"
	"math"
	"strconv"
	"time"
)

type FourierComp string

const (
	FourierCompSin FourierComp = "sin"
	FourierCompCos FourierComp = "cos"
)

// Seasonality is a single Fourier component of a named periodic pattern
type Seasonality struct {
	Name        string      `json:"name"`
	FourierComp FourierComp `json:"fourier_component"`
	Order       int         `json:"order"`
}

func NewSeasonality(name string, fcomp FourierComp, order int) *Seasonality {
	return &Seasonality{name, fcomp, order}
}

func (s Seasonality) String() string {
	return fmt.Sprintf("seas_%s_%02d_%s", s.Name, s.Order, s.FourierComp)
}

func (s Seasonality) Get(label string) (string, bool) {
	return lookup(s.Decode(), label)
}

func (s Seasonality) Type() FeatureType {
	return FeatureTypeSeasonality
}

// Decode writes every label as a string, including the order
func (s Seasonality) Decode() map[string]string {
	return map[string]string{
		"name":              s.Name,
		"fourier_component": string(s.FourierComp),
		"order":             strconv.Itoa(s.Order),
	}
}

func (s *Seasonality) UnmarshalJSON(data []byte) error {
	labels, err := decodeLabels(data)
	if err != nil {
		return err
	}
	order, err := strconv.Atoi(labels["order"])
	if err != nil {
		return fmt.Errorf("seasonality order %q, %w", labels["order"], err)
	}
	s.Name = labels["name"]
	s.FourierComp = FourierComp(labels["fourier_component"])
	s.Order = order
	return nil
}

// Generate evaluates the component on the absolute unix time of each observation so that
// training and inference share the same phase
func (s Seasonality) Generate(t []time.Time, period time.Duration) []float64 {
	out := make([]float64, len(t))
	if period <= 0 {
		return out
	}
	wave := math.Sin
	if s.FourierComp == FourierCompCos {
		wave = math.Cos
	} else if s.FourierComp != FourierCompSin {
		return out
	}

	omega := 2 * math.Pi * float64(s.Order) / period.Seconds()
	for i, ts := range t {
		out[i] = wave(omega * float64(ts.Unix()))
	}
	return out
}
