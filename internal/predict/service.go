// Package predict holds the read-only prediction context shared by all requests.
package predict

import (
	"context"
	"errors"
	"fmt"
	"math"
	"reflect"
	"strings"
	"time"

	"github.com/aouyang1/go-houseprice/api"
	"github.com/aouyang1/go-houseprice/forecaster"
	"github.com/aouyang1/go-houseprice/internal/observability"
	"github.com/go-playground/validator/v10"
)

const (
	DefaultTimeout    = 10 * time.Second
	DefaultMaxPeriods = 3650
)

// Regressor predicts a price from the ordered feature values.
type Regressor interface {
	Predict(values []float64) (float64, error)
}

// Forecaster predicts the days following its training history.
type Forecaster interface {
	PredictFuture(ctx context.Context, periods int) (*forecaster.Results, error)
}

// Service is built once at startup and never mutated, so handlers share it without locking.
type Service struct {
	regressor  Regressor
	forecaster Forecaster
	validate   *validator.Validate
	timeout    time.Duration
	maxPeriods int
}

// Option configures a Service.
type Option func(*Service)

// WithTimeout bounds the wall clock time of a forecast.
func WithTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// WithMaxPeriods caps the forecast horizon.
func WithMaxPeriods(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxPeriods = n
		}
	}
}

// NewService returns a service over the loaded regressor and fitted forecaster.
func NewService(regressor Regressor, fc Forecaster, opts ...Option) *Service {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	s := &Service{
		regressor:  regressor,
		forecaster: fc,
		validate:   v,
		timeout:    DefaultTimeout,
		maxPeriods: DefaultMaxPeriods,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// MaxPeriods is the largest accepted forecast horizon.
func (s *Service) MaxPeriods() int {
	return s.maxPeriods
}

// validationDetail lists each failing field by its json name.
func validationDetail(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	details := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required":
			details = append(details, fmt.Sprintf("%s: field required", fe.Field()))
		default:
			details = append(details, fmt.Sprintf("%s: failed %s validation", fe.Field(), fe.Tag()))
		}
	}
	return strings.Join(details, "; ")
}

func (s *Service) fail(err error) error {
	observability.RecordPredictionError(Kind(err))
	return err
}

// PredictPrice validates the feature vector and runs it through the regression pipeline.
func (s *Service) PredictPrice(ctx context.Context, fv api.FeatureVector) (float64, error) {
	if err := s.validate.StructCtx(ctx, fv); err != nil {
		return 0, s.fail(NewValidationError(validationDetail(err)))
	}
	values, err := fv.Values()
	if err != nil {
		return 0, s.fail(NewValidationError(err.Error()))
	}

	price, err := s.regressor.Predict(values)
	if err != nil {
		return 0, s.fail(NewModelError(err))
	}
	if math.IsNaN(price) || math.IsInf(price, 0) {
		return 0, s.fail(NewModelError(fmt.Errorf("prediction is not finite: %v", price)))
	}
	return price, nil
}

// ForecastRequest validates the request body before forecasting.
func (s *Service) ForecastRequest(ctx context.Context, req api.ForecastRequest) ([]api.ForecastPoint, error) {
	if err := s.validate.StructCtx(ctx, req); err != nil {
		return nil, s.fail(NewValidationError(validationDetail(err)))
	}
	return s.Forecast(ctx, *req.Periods)
}

// Forecast returns one point per day following the history, ascending by date.
func (s *Service) Forecast(ctx context.Context, periods int) ([]api.ForecastPoint, error) {
	if periods < 1 {
		return nil, s.fail(NewValidationError("periods: must be at least 1"))
	}
	if periods > s.maxPeriods {
		return nil, s.fail(NewValidationError(fmt.Sprintf("periods: must be at most %d", s.maxPeriods)))
	}
	observability.RecordForecastPeriods(periods)

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	res, err := s.forecaster.PredictFuture(ctx, periods)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			err = fmt.Errorf("forecast timed out after %s: %w", s.timeout, err)
		}
		return nil, s.fail(NewModelError(err))
	}
	if len(res.T) != periods {
		return nil, s.fail(NewModelError(fmt.Errorf("forecaster returned %d points, expected %d", len(res.T), periods)))
	}

	points := make([]api.ForecastPoint, periods)
	for i := range points {
		points[i] = api.ForecastPoint{
			DS:        api.Date(res.T[i]),
			YHat:      res.Forecast[i],
			YHatLower: res.Lower[i],
			YHatUpper: res.Upper[i],
		}
	}
	return points, nil
}
