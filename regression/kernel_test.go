package regression

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKernelCov(t *testing.T) {
	rbf := &KernelSpec{Type: KernelRBF, LengthScale: []float64{1}}
	testData := map[string]struct {
		spec     *KernelSpec
		x        []float64
		y        []float64
		expected float64
	}{
		"constant":           {&KernelSpec{Type: KernelConstant, ConstantValue: 2}, []float64{0}, []float64{1}, 2},
		"rbf":                {rbf, []float64{0}, []float64{1}, 0.6065306597},
		"rbf ard":            {&KernelSpec{Type: KernelRBF, LengthScale: []float64{1, 2}}, []float64{0, 0}, []float64{1, 2}, 0.3678794412},
		"matern 0.5":         {&KernelSpec{Type: KernelMatern, LengthScale: []float64{1}, Nu: 0.5}, []float64{0}, []float64{1}, 0.3678794412},
		"matern 1.5":         {&KernelSpec{Type: KernelMatern, LengthScale: []float64{1}, Nu: 1.5}, []float64{0}, []float64{1}, 0.4833577246},
		"matern 2.5":         {&KernelSpec{Type: KernelMatern, LengthScale: []float64{1}, Nu: 2.5}, []float64{0}, []float64{1}, 0.5239941088},
		"matern inf":         {&KernelSpec{Type: KernelMatern, LengthScale: []float64{1}, Nu: math.Inf(1)}, []float64{0}, []float64{1}, 0.6065306597},
		"rational quadratic": {&KernelSpec{Type: KernelRationalQuadratic, LengthScale: []float64{1}, Alpha: 1}, []float64{0}, []float64{1}, 0.6666666667},
		"white":              {&KernelSpec{Type: KernelWhite, NoiseLevel: 5}, []float64{0}, []float64{0}, 0},
		"dot product":        {&KernelSpec{Type: KernelDotProduct, SigmaZero: 1}, []float64{1, 2}, []float64{3, 4}, 12},
		"sum": {
			&KernelSpec{Type: KernelSum, K1: &KernelSpec{Type: KernelConstant, ConstantValue: 2}, K2: rbf},
			[]float64{0}, []float64{1}, 2.6065306597,
		},
		"product": {
			&KernelSpec{Type: KernelProduct, K1: &KernelSpec{Type: KernelConstant, ConstantValue: 2}, K2: rbf},
			[]float64{0}, []float64{1}, 1.2130613194,
		},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			k, err := td.spec.Kernel()
			require.Nil(t, err)
			require.Nil(t, k.Validate(len(td.x)))
			assert.InDelta(t, td.expected, k.Cov(td.x, td.y), 1e-9)
		})
	}
}

func TestKernelErrors(t *testing.T) {
	testData := map[string]struct {
		spec *KernelSpec
		dim  int
		err  error
	}{
		"unknown":           {&KernelSpec{Type: "periodic"}, 1, ErrUnknownKernel},
		"nil":               {nil, 1, ErrInvalidKernel},
		"rbf no scale":      {&KernelSpec{Type: KernelRBF}, 1, ErrInvalidKernel},
		"matern bad nu":     {&KernelSpec{Type: KernelMatern, LengthScale: []float64{1}, Nu: 3}, 1, ErrInvalidKernel},
		"sum missing k2":    {&KernelSpec{Type: KernelSum, K1: &KernelSpec{Type: KernelWhite}}, 1, ErrInvalidKernel},
		"ard dim mismatch":  {&KernelSpec{Type: KernelRBF, LengthScale: []float64{1, 2}}, 3, ErrDimensionMismatch},
		"zero length scale": {&KernelSpec{Type: KernelRBF, LengthScale: []float64{0}}, 1, ErrInvalidKernel},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			k, err := td.spec.Kernel()
			if err == nil {
				err = k.Validate(td.dim)
			}
			assert.ErrorIs(t, err, td.err)
		})
	}
}
