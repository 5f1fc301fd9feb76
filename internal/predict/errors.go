package predict

import (
	"errors"
)

var (
	// ErrValidation marks a request rejected before any model runs.
	ErrValidation = errors.New("validation error")
	// ErrModel marks a failure raised by the regression pipeline or the forecaster.
	ErrModel = errors.New("model error")
)

// Error carries the detail returned to callers along with its kind.
type Error struct {
	Kind   error
	Detail string
	Err    error
}

func (e *Error) Error() string {
	return e.Detail
}

func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// NewValidationError returns a validation error with the given detail.
func NewValidationError(detail string) error {
	return &Error{Kind: ErrValidation, Detail: detail}
}

// NewModelError returns a model error whose detail is the text of err.
func NewModelError(err error) error {
	return &Error{Kind: ErrModel, Detail: err.Error(), Err: err}
}

// Kind returns "validation", "model" or "unknown" for metrics labels.
func Kind(err error) string {
	switch {
	case errors.Is(err, ErrValidation):
		return "validation"
	case errors.Is(err, ErrModel):
		return "model"
	default:
		return "unknown"
	}
}
