package forecast

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/aouyang1/go-houseprice/feature"
	"github.com/aouyang1/go-houseprice/forecast/options"
	"github.com/aouyang1/go-houseprice/timedataset"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

var (
	ErrUninitializedForecast    = errors.New("uninitialized forecast")
	ErrInsufficientTrainingData = errors.New("insufficient training data after removing Nans")
	ErrNoModelCoefficients      = errors.New("no model coefficients from fit")
	ErrUntrainedForecast        = errors.New("forecast has not been trained yet")
)

// Components are the additive parts of a prediction. Trend includes the intercept.
type Components struct {
	Trend       []float64 `json:"trend"`
	Seasonality []float64 `json:"seasonality"`
	Event       []float64 `json:"event"`
}

// Forecast represents a single forecast model of a time series. This is a linear model
// decomposing the series into an intercept, a growth trend with slope changes at changepoints,
// seasonal components and events.
type Forecast struct {
	opt    *options.Options
	scores *Scores

	fLabels *feature.Labels

	trainStartTime  time.Time
	trainEndTime    time.Time
	residual        []float64
	trainComponents Components

	coef      []float64
	intercept float64
	trained   bool
}

// New creates a new forecast instance with the given options. If none are provided, a default
// is used
func New(opt *options.Options) (*Forecast, error) {
	if opt == nil {
		opt = options.NewDefaultOptions()
	}
	return &Forecast{opt: opt.Copy()}, nil
}

// NewFromModel creates a new forecast instance given a forecast Model to initialize. This
// instance can be used for inference immediately and does not need to be trained again.
func NewFromModel(model Model) (*Forecast, error) {
	if model.Options == nil {
		return nil, ErrNoOptionsInModel
	}
	labels, err := model.Weights.FeatureLabels()
	if err != nil {
		return nil, err
	}

	f := &Forecast{
		opt:            model.Options.Copy(),
		fLabels:        feature.NewLabels(labels),
		trainStartTime: model.TrainStartTime,
		trainEndTime:   model.TrainEndTime,
		intercept:      model.Weights.Intercept,
		coef:           model.Weights.Coefficients(),
		scores:         model.Scores,
		trained:        true,
	}
	return f, nil
}

// Fit takes the input training data and fits a forecast model for possible changepoints,
// seasonal components, events and intercept. NaN observations are ignored.
func (f *Forecast) Fit(t []time.Time, y []float64) error {
	if f == nil {
		return ErrUninitializedForecast
	}

	trainingData, err := timedataset.NewUnivariateDataset(t, y)
	if err != nil {
		return err
	}
	td := trainingData.DropNan()
	if td.Len() <= 1 {
		return ErrInsufficientTrainingData
	}

	f.trainStartTime = td.T[0]
	f.trainEndTime = td.T[len(td.T)-1]
	f.opt.Resolve(td.T)

	x := f.opt.GenerateFeatures(td.T, f.trainStartTime, f.trainEndTime)
	f.fLabels = x.Labels()

	// fit on a unit scale so regularization does not depend on the magnitude of y
	yScale := floats.Norm(td.Y, math.Inf(1))
	if yScale == 0 {
		yScale = 1.0
	}
	yScaled := make([]float64, len(td.Y))
	floats.ScaleTo(yScaled, 1.0/yScale, td.Y)

	if f.fLabels.Len() == 0 {
		// intercept only model
		f.intercept = floats.Sum(td.Y) / float64(len(td.Y))
		f.coef = nil
	} else {
		model, err := f.opt.NewModel()
		if err != nil {
			return err
		}
		if err := model.Fit(x.Matrix(false), mat.NewDense(len(yScaled), 1, yScaled)); err != nil {
			return fmt.Errorf("unable to fit model, %w", err)
		}
		f.intercept = model.Intercept() * yScale
		f.coef = model.Coef()
		floats.Scale(yScale, f.coef)
	}
	f.trained = true

	// use input training to include NaNs
	predicted, comp, err := f.Predict(trainingData.T)
	if err != nil {
		return err
	}
	f.trainComponents = comp

	scores, err := NewScores(predicted, trainingData.Y)
	if err != nil {
		return err
	}
	f.scores = scores

	residual := make([]float64, len(trainingData.T))
	floats.SubTo(residual, trainingData.Y, predicted)
	f.residual = residual
	return nil
}

// Predict takes a slice of times in any order and produces the predicted value for those
// times given a pre-trained model.
func (f *Forecast) Predict(t []time.Time) ([]float64, Components, error) {
	if f == nil {
		return nil, Components{}, ErrUninitializedForecast
	}
	if !f.trained {
		return nil, Components{}, ErrUntrainedForecast
	}

	x := f.opt.GenerateFeatures(t, f.trainStartTime, f.trainEndTime)

	comp := Components{
		Trend:       make([]float64, len(t)),
		Seasonality: make([]float64, len(t)),
		Event:       make([]float64, len(t)),
	}
	floats.AddConst(f.intercept, comp.Trend)

	for i, label := range f.fLabels.Labels() {
		data, exists := x.Get(label)
		if !exists || f.coef[i] == 0 {
			continue
		}
		var dst []float64
		switch label.Type() {
		case feature.FeatureTypeGrowth, feature.FeatureTypeChangepoint:
			dst = comp.Trend
		case feature.FeatureTypeSeasonality:
			dst = comp.Seasonality
		case feature.FeatureTypeEvent:
			dst = comp.Event
		default:
			continue
		}
		floats.AddScaled(dst, f.coef[i], data)
	}

	res := make([]float64, len(t))
	floats.Add(res, comp.Trend)
	floats.Add(res, comp.Seasonality)
	floats.Add(res, comp.Event)
	return res, comp, nil
}

// FeatureLabels returns the slice of feature labels in the order of the coefficients
func (f *Forecast) FeatureLabels() []feature.Feature {
	if f == nil {
		return nil
	}
	return f.fLabels.Labels()
}

// Coefficients returns a forecast model map of coefficients keyed by the string
// representation of each feature label
func (f *Forecast) Coefficients() (map[string]float64, error) {
	if f == nil {
		return nil, ErrUninitializedForecast
	}

	labels := f.fLabels.Labels()
	if len(labels) == 0 || len(f.coef) == 0 {
		return nil, ErrNoModelCoefficients
	}
	coef := make(map[string]float64)
	for i := 0; i < len(f.coef); i++ {
		coef[labels[i].String()] = f.coef[i]
	}
	return coef, nil
}

// Intercept returns the intercept of the forecast model
func (f *Forecast) Intercept() float64 {
	if f == nil {
		return 0
	}
	return f.intercept
}

// TrainStartTime returns the first training observation time
func (f *Forecast) TrainStartTime() time.Time {
	if f == nil {
		return time.Time{}
	}
	return f.trainStartTime
}

// TrainEndTime returns the last training observation time
func (f *Forecast) TrainEndTime() time.Time {
	if f == nil {
		return time.Time{}
	}
	return f.trainEndTime
}

// Options returns the resolved options used for the fit
func (f *Forecast) Options() *options.Options {
	if f == nil {
		return nil
	}
	return f.opt.Copy()
}

// Model returns the serializeable format of the forecast model composing of the
// forecast options, intercept, coefficients with their feature labels, and the
// model fit scores
func (f *Forecast) Model() (Model, error) {
	if f == nil {
		return Model{}, ErrUninitializedForecast
	}
	if !f.trained {
		return Model{}, ErrUntrainedForecast
	}

	labels := f.fLabels.Labels()
	fws := make([]FeatureWeight, 0, len(f.coef))
	for i, c := range f.coef {
		fws = append(fws, NewFeatureWeight(labels[i], c))
	}
	m := Model{
		TrainStartTime: f.trainStartTime,
		TrainEndTime:   f.trainEndTime,
		Options:        f.opt.Copy(),
		Weights: Weights{
			Intercept: f.intercept,
			Coef:      fws,
		},
		Scores: f.scores,
	}
	return m, nil
}

// ModelEq returns a string representation of the model linear equation in the format of
// y ~ b + m1x1 + m2x2 + ...
func (f *Forecast) ModelEq() (string, error) {
	if f == nil {
		return "", ErrUninitializedForecast
	}
	if !f.trained {
		return "", ErrUntrainedForecast
	}

	var eq strings.Builder
	eq.WriteString("y ~ ")
	eq.WriteString(fmt.Sprintf("%.2f", f.intercept))

	labels := f.fLabels.Labels()
	for i, w := range f.coef {
		if w == 0 {
			continue
		}
		eq.WriteString(fmt.Sprintf("+%.2f*%s", w, labels[i]))
	}
	return eq.String(), nil
}

// Scores returns the fit scores for evaluating how well the resulting model
// fit the training data
func (f *Forecast) Scores() Scores {
	if f == nil || f.scores == nil {
		return Scores{}
	}
	return *f.scores
}

// Residuals returns a slice of values representing the difference between the
// training data and the fit data
func (f *Forecast) Residuals() []float64 {
	if f == nil {
		return nil
	}
	res := make([]float64, len(f.residual))
	copy(res, f.residual)
	return res
}

// TrendComponent represents the overall trend component of the training fit which is
// determined by the growth and changepoints.
func (f *Forecast) TrendComponent() []float64 {
	if f == nil {
		return nil
	}
	res := make([]float64, len(f.trainComponents.Trend))
	copy(res, f.trainComponents.Trend)
	return res
}

// SeasonalityComponent represents the overall seasonal component of the training fit
func (f *Forecast) SeasonalityComponent() []float64 {
	if f == nil {
		return nil
	}
	res := make([]float64, len(f.trainComponents.Seasonality))
	copy(res, f.trainComponents.Seasonality)
	return res
}

// EventComponent represents the overall event component of the training fit
func (f *Forecast) EventComponent() []float64 {
	if f == nil {
		return nil
	}
	res := make([]float64, len(f.trainComponents.Event))
	copy(res, f.trainComponents.Event)
	return res
}
