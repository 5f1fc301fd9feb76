package models

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

type OLSOptions struct {
	FitIntercept bool
}

func NewDefaultOLSOptions() *OLSOptions {
	return &OLSOptions{FitIntercept: true}
}

// Validate returns the defaults for nil options.
func (o *OLSOptions) Validate() (*OLSOptions, error) {
	if o == nil {
		return NewDefaultOLSOptions(), nil
	}
	return o, nil
}

// OLSRegression is an unregularized least squares fit.
type OLSRegression struct {
	linear
}

func NewOLSRegression(opt *OLSOptions) (*OLSRegression, error) {
	opt, err := opt.Validate()
	if err != nil {
		return nil, err
	}
	return &OLSRegression{linear: linear{fitIntercept: opt.FitIntercept}}, nil
}

// Fit solves the least squares problem through a QR factorization of the design matrix.
// Ill conditioned designs are accepted as long as the solved weights stay finite. An exactly
// singular design is rejected.
func (o *OLSRegression) Fit(x, y mat.Matrix) error {
	design, target, err := designMatrix(x, y, o.fitIntercept)
	if err != nil {
		return err
	}
	rows, cols := design.Dims()
	if rows < cols {
		return fmt.Errorf("%d observations for %d weights, %w", rows, cols, ErrSingularMatrix)
	}

	var beta mat.VecDense
	if err := beta.SolveVec(design, mat.NewVecDense(rows, target)); err != nil {
		var cond mat.Condition
		if !errors.As(err, &cond) || math.IsInf(float64(cond), 1) {
			return fmt.Errorf("%w, %w", ErrSingularMatrix, err)
		}
	}

	weights := mat.Col(nil, 0, &beta)
	if sum := floats.Sum(weights); math.IsNaN(sum) || math.IsInf(sum, 0) {
		return ErrSingularMatrix
	}
	o.setBeta(weights)
	return nil
}

func (o *OLSRegression) Predict(x mat.Matrix) ([]float64, error) {
	return o.predict(x)
}

func (o *OLSRegression) Score(x, y mat.Matrix) (float64, error) {
	return score(o, x, y)
}
