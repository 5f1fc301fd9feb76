// Package models fits the linear models that sit under the price forecast. Rows of the
// design matrix are observations and columns are features.
package models

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// Model is a linear fit of a single target column against a design matrix.
type Model interface {
	Fit(x, y mat.Matrix) error
	Predict(x mat.Matrix) ([]float64, error)
	Score(x, y mat.Matrix) (float64, error)
	Intercept() float64
	Coef() []float64
}

// linear holds the fitted weights shared by every model.
type linear struct {
	fitIntercept bool
	intercept    float64
	coef         []float64
}

// setBeta stores a solved weight vector whose first entry is the intercept when one is fit.
func (l *linear) setBeta(beta []float64) {
	l.intercept = 0
	if l.fitIntercept {
		l.intercept, beta = beta[0], beta[1:]
	}
	l.coef = append(l.coef[:0], beta...)
}

func (l *linear) predict(x mat.Matrix) ([]float64, error) {
	if x == nil {
		return nil, ErrNoDesignMatrix
	}
	rows, cols := x.Dims()
	if cols != len(l.coef) {
		return nil, fmt.Errorf("design matrix has %d features, model has %d, %w", cols, len(l.coef), ErrFeatureLenMismatch)
	}

	out := make([]float64, rows)
	if cols > 0 {
		mat.NewVecDense(rows, out).MulVec(x, mat.NewVecDense(cols, l.coef))
	}
	if l.fitIntercept {
		floats.AddConst(l.intercept, out)
	}
	return out, nil
}

// Intercept returns the fitted constant, 0 when no intercept is fit.
func (l *linear) Intercept() float64 {
	return l.intercept
}

// Coef returns a copy of the fitted weights in design matrix column order.
func (l *linear) Coef() []float64 {
	return append([]float64(nil), l.coef...)
}

// designMatrix checks the training shapes and prepends a column of ones when an intercept
// is fit.
func designMatrix(x, y mat.Matrix, fitIntercept bool) (*mat.Dense, []float64, error) {
	if x == nil {
		return nil, nil, ErrNoTrainingMatrix
	}
	if y == nil {
		return nil, nil, ErrNoTargetMatrix
	}
	rows, cols := x.Dims()
	if yRows, _ := y.Dims(); yRows != rows {
		return nil, nil, fmt.Errorf("%d training rows for %d targets, %w", rows, yRows, ErrTargetLenMismatch)
	}

	offset := 0
	if fitIntercept {
		offset = 1
	}
	if rows == 0 || cols+offset == 0 {
		return nil, nil, fmt.Errorf("empty %dx%d design, %w", rows, cols+offset, ErrNoTrainingMatrix)
	}
	design := mat.NewDense(rows, cols+offset, nil)
	for i := 0; i < rows; i++ {
		if fitIntercept {
			design.Set(i, 0, 1)
		}
		for j := 0; j < cols; j++ {
			design.Set(i, j+offset, x.At(i, j))
		}
	}
	return design, mat.Col(nil, 0, y), nil
}

// score is the coefficient of determination of the model on x and y. A constant target
// predicted exactly scores 1.
func score(model Model, x, y mat.Matrix) (float64, error) {
	if x == nil {
		return 0, ErrNoDesignMatrix
	}
	if y == nil {
		return 0, ErrNoTargetMatrix
	}
	rows, _ := x.Dims()
	if yRows, _ := y.Dims(); yRows != rows {
		return 0, fmt.Errorf("%d design rows for %d targets, %w", rows, yRows, ErrTargetLenMismatch)
	}

	pred, err := model.Predict(x)
	if err != nil {
		return 0, err
	}
	r2 := stat.RSquaredFrom(pred, mat.Col(nil, 0, y), nil)
	if math.IsNaN(r2) {
		return 1, nil
	}
	return r2, nil
}
