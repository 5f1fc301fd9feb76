package regression

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

const (
	KernelConstant          = "constant"
	KernelRBF               = "rbf"
	KernelMatern            = "matern"
	KernelRationalQuadratic = "rational_quadratic"
	KernelWhite             = "white"
	KernelDotProduct        = "dot_product"
	KernelSum               = "sum"
	KernelProduct           = "product"
)

// Kernel computes the covariance between two points that are not the same training sample
type Kernel interface {
	Cov(x, y []float64) float64
	Validate(dim int) error
}

// KernelSpec is the serialized form of a kernel. Composite kernels nest their operands in K1
// and K2.
type KernelSpec struct {
	Type          string      `json:"type"`
	ConstantValue float64     `json:"constant_value,omitempty"`
	LengthScale   []float64   `json:"length_scale,omitempty"`
	Nu            float64     `json:"nu,omitempty"`
	Alpha         float64     `json:"alpha,omitempty"`
	NoiseLevel    float64     `json:"noise_level,omitempty"`
	SigmaZero     float64     `json:"sigma_0,omitempty"`
	K1            *KernelSpec `json:"k1,omitempty"`
	K2            *KernelSpec `json:"k2,omitempty"`
}

// Kernel builds the kernel this KernelSpec describes, recursing into K1 and K2
func (s *KernelSpec) Kernel() (Kernel, error) {
	if s == nil {
		return nil, fmt.Errorf("nil kernel spec, %w", ErrInvalidKernel)
	}
	switch s.Type {
	case KernelConstant:
		return Constant{Value: s.ConstantValue}, nil
	case KernelRBF:
		if len(s.LengthScale) == 0 {
			return nil, fmt.Errorf("rbf requires a length scale, %w", ErrInvalidKernel)
		}
		return RBF{LengthScale: s.LengthScale}, nil
	case KernelMatern:
		if len(s.LengthScale) == 0 {
			return nil, fmt.Errorf("matern requires a length scale, %w", ErrInvalidKernel)
		}
		switch {
		case s.Nu == 0.5, s.Nu == 1.5, s.Nu == 2.5, math.IsInf(s.Nu, 1):
		default:
			return nil, fmt.Errorf("matern nu %v is not one of 0.5, 1.5, 2.5, inf, %w", s.Nu, ErrInvalidKernel)
		}
		return Matern{LengthScale: s.LengthScale, Nu: s.Nu}, nil
	case KernelRationalQuadratic:
		if len(s.LengthScale) != 1 || s.Alpha <= 0 {
			return nil, fmt.Errorf("rational quadratic requires one length scale and a positive alpha, %w", ErrInvalidKernel)
		}
		return RationalQuadratic{LengthScale: s.LengthScale[0], Alpha: s.Alpha}, nil
	case KernelWhite:
		return White{NoiseLevel: s.NoiseLevel}, nil
	case KernelDotProduct:
		return DotProduct{SigmaZero: s.SigmaZero}, nil
	case KernelSum, KernelProduct:
		k1, err := s.K1.Kernel()
		if err != nil {
			return nil, fmt.Errorf("%s k1, %w", s.Type, err)
		}
		k2, err := s.K2.Kernel()
		if err != nil {
			return nil, fmt.Errorf("%s k2, %w", s.Type, err)
		}
		if s.Type == KernelSum {
			return Sum{K1: k1, K2: k2}, nil
		}
		return Product{K1: k1, K2: k2}, nil
	default:
		return nil, fmt.Errorf("%q, %w", s.Type, ErrUnknownKernel)
	}
}

// scaledSqDist is the squared euclidean distance after dividing each dimension by its length
// scale. A single length scale is shared across dimensions.
func scaledSqDist(x, y, lengthScale []float64) float64 {
	var d float64
	for i := range x {
		l := lengthScale[0]
		if len(lengthScale) > 1 {
			l = lengthScale[i]
		}
		v := (x[i] - y[i]) / l
		d += v * v
	}
	return d
}

func validateLengthScale(lengthScale []float64, dim int) error {
	if len(lengthScale) != 1 && len(lengthScale) != dim {
		return fmt.Errorf(
			"length scale has %d values for %d dimensions, %w",
			len(lengthScale), dim, ErrDimensionMismatch,
		)
	}
	for _, l := range lengthScale {
		if l <= 0 {
			return fmt.Errorf("length scale must be positive, %w", ErrInvalidKernel)
		}
	}
	return nil
}

type Constant struct {
	Value float64
}

func (k Constant) Cov(x, y []float64) float64 { return k.Value }

func (k Constant) Validate(dim int) error { return nil }

// RBF is the squared exponential kernel with an isotropic or per dimension length scale
type RBF struct {
	LengthScale []float64
}

func (k RBF) Cov(x, y []float64) float64 {
	return math.Exp(-0.5 * scaledSqDist(x, y, k.LengthScale))
}

func (k RBF) Validate(dim int) error {
	return validateLengthScale(k.LengthScale, dim)
}

// Matern supports the closed forms for nu of 0.5, 1.5, 2.5 and infinity
type Matern struct {
	LengthScale []float64
	Nu          float64
}

func (k Matern) Cov(x, y []float64) float64 {
	sq := scaledSqDist(x, y, k.LengthScale)
	d := math.Sqrt(sq)
	switch k.Nu {
	case 0.5:
		return math.Exp(-d)
	case 1.5:
		v := math.Sqrt(3) * d
		return (1 + v) * math.Exp(-v)
	case 2.5:
		v := math.Sqrt(5) * d
		return (1 + v + v*v/3.0) * math.Exp(-v)
	default:
		return math.Exp(-0.5 * sq)
	}
}

func (k Matern) Validate(dim int) error {
	return validateLengthScale(k.LengthScale, dim)
}

type RationalQuadratic struct {
	LengthScale float64
	Alpha       float64
}

func (k RationalQuadratic) Cov(x, y []float64) float64 {
	sq := floats.Distance(x, y, 2)
	sq *= sq
	return math.Pow(1+sq/(2*k.Alpha*k.LengthScale*k.LengthScale), -k.Alpha)
}

func (k RationalQuadratic) Validate(dim int) error {
	if k.LengthScale <= 0 {
		return fmt.Errorf("length scale must be positive, %w", ErrInvalidKernel)
	}
	return nil
}

// White only adds noise on the diagonal of the training covariance so it contributes nothing
// between new points and the training set.
type White struct {
	NoiseLevel float64
}

func (k White) Cov(x, y []float64) float64 { return 0 }

func (k White) Validate(dim int) error { return nil }

type DotProduct struct {
	SigmaZero float64
}

func (k DotProduct) Cov(x, y []float64) float64 {
	return k.SigmaZero*k.SigmaZero + floats.Dot(x, y)
}

func (k DotProduct) Validate(dim int) error { return nil }

type Sum struct {
	K1, K2 Kernel
}

func (k Sum) Cov(x, y []float64) float64 { return k.K1.Cov(x, y) + k.K2.Cov(x, y) }

func (k Sum) Validate(dim int) error {
	if err := k.K1.Validate(dim); err != nil {
		return err
	}
	return k.K2.Validate(dim)
}

type Product struct {
	K1, K2 Kernel
}

func (k Product) Cov(x, y []float64) float64 { return k.K1.Cov(x, y) * k.K2.Cov(x, y) }

func (k Product) Validate(dim int) error {
	if err := k.K1.Validate(dim); err != nil {
		return err
	}
	return k.K2.Validate(dim)
}
