package regression

import (
	"fmt"
)

// Pipeline chains the expansion, scaler and regressor in that fixed order
type Pipeline struct {
	Poly      *PolynomialFeatures
	Scaler    *StandardScaler
	Regressor *GaussianProcess
}

// NewPipeline checks that the output of each stage matches the input of the next
func NewPipeline(poly *PolynomialFeatures, scaler *StandardScaler, regressor *GaussianProcess) (*Pipeline, error) {
	switch {
	case poly == nil:
		return nil, fmt.Errorf("polynomial features, %w", ErrMissingStage)
	case scaler == nil:
		return nil, fmt.Errorf("scaler, %w", ErrMissingStage)
	case regressor == nil:
		return nil, fmt.Errorf("regressor, %w", ErrMissingStage)
	}
	if poly.NOutputFeatures() != scaler.NFeaturesIn() {
		return nil, fmt.Errorf(
			"expansion outputs %d features but scaler expects %d, %w",
			poly.NOutputFeatures(), scaler.NFeaturesIn(), ErrDimensionMismatch,
		)
	}
	if scaler.NFeaturesIn() != regressor.NFeaturesIn() {
		return nil, fmt.Errorf(
			"scaler outputs %d features but regressor expects %d, %w",
			scaler.NFeaturesIn(), regressor.NFeaturesIn(), ErrDimensionMismatch,
		)
	}
	return &Pipeline{
		Poly:      poly,
		Scaler:    scaler,
		Regressor: regressor,
	}, nil
}

// NFeaturesIn is the number of raw input values
func (p *Pipeline) NFeaturesIn() int {
	return p.Poly.NFeaturesIn
}

// Predict expands, scales and regresses a single input vector
func (p *Pipeline) Predict(values []float64) (float64, error) {
	expanded, err := p.Poly.Transform(values)
	if err != nil {
		return 0, fmt.Errorf("polynomial transform, %w", err)
	}
	scaled, err := p.Scaler.Transform(expanded)
	if err != nil {
		return 0, fmt.Errorf("scaler transform, %w", err)
	}
	pred, err := p.Regressor.Predict([][]float64{scaled})
	if err != nil {
		return 0, fmt.Errorf("regressor predict, %w", err)
	}
	return pred[0], nil
}
