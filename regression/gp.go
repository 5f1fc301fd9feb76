package regression

import (
	"fmt"
	"math"

	mat_ "github.com/aouyang1/go-houseprice/mat"
	"gonum.org/v1/gonum/mat"
)

// GaussianProcess predicts the posterior mean of a fitted gaussian process. Alpha is the
// solution of (K + noise*I)^-1 y over the normalized training targets.
type GaussianProcess struct {
	Kernel     KernelSpec  `json:"kernel"`
	XTrain     [][]float64 `json:"x_train"`
	Alpha      []float64   `json:"alpha"`
	YTrainMean float64     `json:"y_train_mean"`
	YTrainStd  float64     `json:"y_train_std"`

	kernel Kernel
	xTrain *mat.Dense
}

// NewGaussianProcess returns an initialized regressor
func NewGaussianProcess(spec KernelSpec, xTrain [][]float64, alpha []float64, yMean, yStd float64) (*GaussianProcess, error) {
	gp := &GaussianProcess{
		Kernel:     spec,
		XTrain:     xTrain,
		Alpha:      alpha,
		YTrainMean: yMean,
		YTrainStd:  yStd,
	}
	if err := gp.Init(); err != nil {
		return nil, err
	}
	return gp, nil
}

// Init builds the kernel and checks the training samples and weights line up. A zero target
// standard deviation means the targets were not normalized.
func (gp *GaussianProcess) Init() error {
	if len(gp.XTrain) == 0 {
		return ErrNoTrainingData
	}
	if len(gp.Alpha) != len(gp.XTrain) {
		return fmt.Errorf(
			"alpha has %d values for %d training samples, %w",
			len(gp.Alpha), len(gp.XTrain), ErrDimensionMismatch,
		)
	}
	dim := len(gp.XTrain[0])
	if dim == 0 {
		return ErrNoFeatures
	}
	xTrain, err := mat_.NewDenseFromArray(gp.XTrain)
	if err != nil {
		return fmt.Errorf("training samples, %w, %w", err, ErrDimensionMismatch)
	}
	if gp.YTrainStd == 0 {
		gp.YTrainStd = 1
	}

	kernel, err := gp.Kernel.Kernel()
	if err != nil {
		return err
	}
	if err := kernel.Validate(dim); err != nil {
		return err
	}
	gp.kernel = kernel
	gp.xTrain = xTrain
	return nil
}

// NFeaturesIn is the dimension of the training samples
func (gp *GaussianProcess) NFeaturesIn() int {
	if len(gp.XTrain) == 0 {
		return 0
	}
	return len(gp.XTrain[0])
}

// CrossCov computes the covariance matrix between each row of x and each training sample
func (gp *GaussianProcess) CrossCov(x [][]float64) *mat.Dense {
	n, _ := gp.xTrain.Dims()
	k := mat.NewDense(len(x), n, nil)
	for i, xi := range x {
		for j := range n {
			k.Set(i, j, gp.kernel.Cov(xi, gp.xTrain.RawRowView(j)))
		}
	}
	return k
}

// Predict returns the posterior mean for each row of x
func (gp *GaussianProcess) Predict(x [][]float64) ([]float64, error) {
	if gp.kernel == nil {
		if err := gp.Init(); err != nil {
			return nil, err
		}
	}
	if len(x) == 0 {
		return nil, nil
	}
	dim := gp.NFeaturesIn()
	for i, row := range x {
		if len(row) != dim {
			return nil, fmt.Errorf(
				"X row %d has %d features, but regressor is expecting %d features as input, %w",
				i, len(row), dim, ErrDimensionMismatch,
			)
		}
	}

	var yMean mat.VecDense
	yMean.MulVec(gp.CrossCov(x), mat.NewVecDense(len(gp.Alpha), gp.Alpha))

	res := make([]float64, len(x))
	for i := range res {
		res[i] = yMean.AtVec(i)*gp.YTrainStd + gp.YTrainMean
		if math.IsNaN(res[i]) || math.IsInf(res[i], 0) {
			return nil, fmt.Errorf("prediction for row %d, %w", i, ErrNonFinite)
		}
	}
	return res, nil
}
