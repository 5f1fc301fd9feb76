package models

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

const (
	DefaultLambda     = 1.0
	DefaultIterations = 1000
	DefaultTolerance  = 1e-4
)

// LassoOptions configures an L1 regularized fit.
type LassoOptions struct {
	// WarmStartBeta seeds the descent with weights from an earlier fit, intercept first
	// when FitIntercept is set.
	WarmStartBeta []float64

	// Lambda is the L1 penalty. 0 converges to ordinary least squares.
	Lambda float64

	// Iterations caps the number of full passes over the weights.
	Iterations int

	// Tolerance stops the descent once the largest weight update in a pass is at most
	// Tolerance times the largest weight.
	Tolerance float64

	// FitIntercept fits an unpenalized constant.
	FitIntercept bool
}

// Validate returns the defaults for nil options and rejects negative settings.
func (l *LassoOptions) Validate() (*LassoOptions, error) {
	switch {
	case l == nil:
		return NewDefaultLassoOptions(), nil
	case l.Lambda < 0:
		return nil, ErrNegativeLambda
	case l.Iterations < 0:
		return nil, ErrNegativeIterations
	case l.Tolerance < 0:
		return nil, ErrNegativeTolerance
	}
	return l, nil
}

func NewDefaultLassoOptions() *LassoOptions {
	return &LassoOptions{
		Lambda:       DefaultLambda,
		Iterations:   DefaultIterations,
		Tolerance:    DefaultTolerance,
		FitIntercept: true,
	}
}

// LassoRegression fits weights by cyclic coordinate descent.
type LassoRegression struct {
	linear
	opt *LassoOptions
}

func NewLassoRegression(opt *LassoOptions) (*LassoRegression, error) {
	opt, err := opt.Validate()
	if err != nil {
		return nil, err
	}
	return &LassoRegression{
		linear: linear{fitIntercept: opt.FitIntercept},
		opt:    opt,
	}, nil
}

func (l *LassoRegression) Fit(x, y mat.Matrix) error {
	design, target, err := designMatrix(x, y, l.opt.FitIntercept)
	if err != nil {
		return err
	}
	_, cols := design.Dims()

	beta := make([]float64, cols)
	if l.opt.WarmStartBeta != nil {
		if len(l.opt.WarmStartBeta) != cols {
			return fmt.Errorf("got %d warm start weights for %d columns, %w", len(l.opt.WarmStartBeta), cols, ErrWarmStartBetaSize)
		}
		copy(beta, l.opt.WarmStartBeta)
	}

	cd := newDescent(design, target, l.opt.Lambda, l.opt.FitIntercept)
	cd.run(beta, l.opt.Iterations, l.opt.Tolerance)
	l.setBeta(beta)
	return nil
}

func (l *LassoRegression) Predict(x mat.Matrix) ([]float64, error) {
	return l.predict(x)
}

func (l *LassoRegression) Score(x, y mat.Matrix) (float64, error) {
	return score(l, x, y)
}

// descent holds the per column state of a coordinate descent solve.
type descent struct {
	cols      [][]float64
	sqNorm    []float64
	threshold []float64
	target    []float64
}

func newDescent(design *mat.Dense, target []float64, lambda float64, freeFirst bool) *descent {
	_, n := design.Dims()
	d := &descent{
		cols:      make([][]float64, n),
		sqNorm:    make([]float64, n),
		threshold: make([]float64, n),
		target:    target,
	}
	for j := range n {
		col := mat.Col(nil, j, design)
		d.cols[j] = col
		d.sqNorm[j] = floats.Dot(col, col)
		if d.sqNorm[j] > 0 {
			d.threshold[j] = lambda / d.sqNorm[j]
		}
	}
	if freeFirst && n > 0 {
		d.threshold[0] = 0
	}
	return d
}

// run updates beta in place. The residual target - design*beta is maintained incrementally
// so each coordinate step costs one column dot product.
func (d *descent) run(beta []float64, iterations int, tol float64) {
	residual := append([]float64(nil), d.target...)
	for j, b := range beta {
		if b != 0 {
			floats.AddScaled(residual, -b, d.cols[j])
		}
	}

	for range iterations {
		var largest, largestStep float64
		for j, col := range d.cols {
			if d.sqNorm[j] == 0 {
				continue
			}
			next := SoftThreshold(beta[j]+floats.Dot(col, residual)/d.sqNorm[j], d.threshold[j])
			step := next - beta[j]
			if step != 0 {
				floats.AddScaled(residual, -step, col)
			}
			beta[j] = next

			largest = math.Max(largest, math.Abs(next))
			largestStep = math.Max(largestStep, math.Abs(step))
		}
		if largestStep <= tol*largest {
			return
		}
	}
}

// SoftThreshold shrinks x toward zero by gamma, returning 0 when |x| <= gamma.
func SoftThreshold(x, gamma float64) float64 {
	return math.Copysign(math.Max(0, math.Abs(x)-gamma), x)
}
