package regression

import "errors"

var (
	ErrDimensionMismatch = errors.New("dimension mismatch")
	ErrInvalidDegree     = errors.New("degree must be non-negative")
	ErrNoFeatures        = errors.New("number of input features must be positive")
	ErrUnknownKernel     = errors.New("unknown kernel type")
	ErrInvalidKernel     = errors.New("invalid kernel parameters")
	ErrNoTrainingData    = errors.New("no training data in regressor")
	ErrNonFinite         = errors.New("non-finite value")
	ErrMissingStage      = errors.New("missing pipeline stage")
)
