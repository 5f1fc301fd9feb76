// Package regression applies pretrained regression artifacts: a polynomial feature expansion,
// a standard scaler and a gaussian process regressor.
package regression

import (
	"fmt"
	"math"
)

// PolynomialFeatures expands an input vector into all monomials of the inputs up to Degree.
// Powers holds the exponent of each input per output column. It is generated from the other
// fields when not provided.
type PolynomialFeatures struct {
	Degree          int     `json:"degree"`
	IncludeBias     bool    `json:"include_bias"`
	InteractionOnly bool    `json:"interaction_only"`
	NFeaturesIn     int     `json:"n_features_in"`
	Powers          [][]int `json:"powers,omitempty"`
}

// NewPolynomialFeatures returns an expansion of nFeatures inputs with the generated powers
func NewPolynomialFeatures(nFeatures, degree int, includeBias, interactionOnly bool) (*PolynomialFeatures, error) {
	p := &PolynomialFeatures{
		Degree:          degree,
		IncludeBias:     includeBias,
		InteractionOnly: interactionOnly,
		NFeaturesIn:     nFeatures,
	}
	if err := p.Init(); err != nil {
		return nil, err
	}
	return p, nil
}

// Init validates the expansion and generates the powers if they are not set
func (p *PolynomialFeatures) Init() error {
	if p.NFeaturesIn <= 0 {
		return ErrNoFeatures
	}
	if p.Degree < 0 {
		return fmt.Errorf("got %d, %w", p.Degree, ErrInvalidDegree)
	}
	if len(p.Powers) == 0 {
		p.Powers = GeneratePowers(p.NFeaturesIn, p.Degree, p.IncludeBias, p.InteractionOnly)
		return nil
	}
	for i, row := range p.Powers {
		if len(row) != p.NFeaturesIn {
			return fmt.Errorf(
				"powers row %d has %d columns, expected %d, %w",
				i, len(row), p.NFeaturesIn, ErrDimensionMismatch,
			)
		}
	}
	return nil
}

// NOutputFeatures is the length of a transformed vector
func (p *PolynomialFeatures) NOutputFeatures() int {
	return len(p.Powers)
}

// Transform expands a single input vector
func (p *PolynomialFeatures) Transform(x []float64) ([]float64, error) {
	if len(x) != p.NFeaturesIn {
		return nil, fmt.Errorf(
			"X has %d features, but expansion is expecting %d features as input, %w",
			len(x), p.NFeaturesIn, ErrDimensionMismatch,
		)
	}
	out := make([]float64, len(p.Powers))
	for i, powers := range p.Powers {
		val := 1.0
		for j, pow := range powers {
			switch pow {
			case 0:
			case 1:
				val *= x[j]
			default:
				val *= math.Pow(x[j], float64(pow))
			}
		}
		out[i] = val
	}
	return out, nil
}

// GeneratePowers lists the exponents of each output column ordered by degree and, within a
// degree, by the lexicographic order of the combination of input indexes.
func GeneratePowers(nFeatures, degree int, includeBias, interactionOnly bool) [][]int {
	var powers [][]int
	start := 1
	if includeBias {
		start = 0
	}
	for d := start; d <= degree; d++ {
		if interactionOnly && d > nFeatures {
			break
		}
		combo := make([]int, d)
		var walk func(pos, from int)
		walk = func(pos, from int) {
			if pos == d {
				row := make([]int, nFeatures)
				for _, idx := range combo {
					row[idx]++
				}
				powers = append(powers, row)
				return
			}
			for i := from; i < nFeatures; i++ {
				combo[pos] = i
				next := i
				if interactionOnly {
					next = i + 1
				}
				walk(pos+1, next)
			}
		}
		walk(0, 0)
	}
	return powers
}
