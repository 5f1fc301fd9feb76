package forecast

import (
	"errors"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/aouyang1/go-houseprice/feature"
	"github.com/aouyang1/go-houseprice/forecast/options"
	"github.com/aouyang1/go-houseprice/forecast/util"
	"github.com/goccy/go-json"
)

var (
	ErrUnknownFeatureType = errors.New("unknown feature type")
	ErrNoOptionsInModel   = errors.New("no options set in model")
)

// Model represents a serializeable format of a forecast storing the forecast options, fit scores,
// and coefficients
type Model struct {
	TrainStartTime time.Time        `json:"train_start_time"`
	TrainEndTime   time.Time        `json:"train_end_time"`
	Options        *options.Options `json:"options"`
	Scores         *Scores          `json:"scores"`
	Weights        Weights          `json:"weights"`
}

// TablePrint writes the training window, options, fit scores and weights of the model
func (m Model) TablePrint(w io.Writer, prefix, indent string) error {
	p := &linePrinter{w: w, prefix: prefix, indent: indent}
	p.line(0, "Forecast:")
	p.line(1, "Training Window: %s to %s", m.TrainStartTime.Format(time.RFC3339), m.TrainEndTime.Format(time.RFC3339))
	if p.err != nil {
		return p.err
	}

	if m.Options != nil {
		if err := m.Options.TablePrint(w, prefix, indent, 1); err != nil {
			return err
		}
	}

	if m.Scores != nil {
		p.line(0, "Scores:")
		p.line(1, "MAPE: %.3f    MSE: %.3f    R2: %.3f", m.Scores.MAPE, m.Scores.MSE, m.Scores.R2)
		if p.err != nil {
			return p.err
		}
	}
	return m.Weights.tablePrint(w, prefix, indent, 0)
}

// linePrinter writes indented lines and keeps the first write error
type linePrinter struct {
	w      io.Writer
	prefix string
	indent string
	err    error
}

func (p *linePrinter) line(depth int, format string, args ...any) {
	if p.err != nil {
		return
	}
	args = append([]any{p.prefix, util.IndentExpand(p.indent, depth)}, args...)
	_, p.err = fmt.Fprintf(p.w, "%s%s"+format+"\n", args...)
}

// Weights stores the intercept and coefficients for the forecast model
type Weights struct {
	Intercept float64         `json:"intercept"`
	Coef      []FeatureWeight `json:"coefficients"`
}

// FeatureLabels returns all of the feature labels in the same order as the coefficients
func (w *Weights) FeatureLabels() ([]feature.Feature, error) {
	labels := make([]feature.Feature, 0, len(w.Coef))
	for _, fw := range w.Coef {
		feat, err := fw.ToFeature()
		if err != nil {
			return nil, err
		}
		labels = append(labels, feat)
	}
	return labels, nil
}

// Coefficients returns a slice copy of the coefficients ignoring the intercept.
func (w *Weights) Coefficients() []float64 {
	coef := make([]float64, 0, len(w.Coef))
	for _, fw := range w.Coef {
		coef = append(coef, fw.Value)
	}
	return coef
}

func (w Weights) tablePrint(wr io.Writer, prefix, indent string, depth int) error {
	p := &linePrinter{w: wr, prefix: prefix, indent: indent}
	p.line(depth, "Weights:")
	if p.err != nil {
		return p.err
	}

	tbl := tabwriter.NewWriter(wr, 0, 0, 1, ' ', tabwriter.AlignRight)
	rows := &linePrinter{w: tbl, prefix: prefix, indent: indent}
	rows.line(depth+1, "Type\tLabels\tValue\t")
	rows.line(depth+1, "intercept\t\t%.3f\t", w.Intercept)
	for _, fw := range w.Coef {
		labels, err := json.Marshal(fw.Labels)
		if err != nil {
			return err
		}
		val := "..."
		if fw.Value != 0 {
			val = fmt.Sprintf("%.3f", fw.Value)
		}
		rows.line(depth+1, "%s\t%s\t%s\t", fw.Type, labels, val)
	}
	if rows.err != nil {
		return rows.err
	}
	return tbl.Flush()
}

// FeatureWeight represents a feature described with a type e.g. changepoint, labels and the value
type FeatureWeight struct {
	Labels map[string]string   `json:"labels"`
	Type   feature.FeatureType `json:"type"`
	Value  float64             `json:"value"`
}

func NewFeatureWeight(f feature.Feature, val float64) FeatureWeight {
	return FeatureWeight{
		Labels: f.Decode(),
		Type:   f.Type(),
		Value:  val,
	}
}

var featureDecoders = map[feature.FeatureType]func() feature.Feature{
	feature.FeatureTypeChangepoint: func() feature.Feature { return new(feature.Changepoint) },
	feature.FeatureTypeSeasonality: func() feature.Feature { return new(feature.Seasonality) },
	feature.FeatureTypeEvent:       func() feature.Feature { return new(feature.Event) },
	feature.FeatureTypeGrowth:      func() feature.Feature { return new(feature.Growth) },
}

// ToFeature rebuilds the feature described by the weight's type and labels
func (fw *FeatureWeight) ToFeature() (feature.Feature, error) {
	if fw == nil {
		return nil, ErrUnknownFeatureType
	}
	newFeature, ok := featureDecoders[fw.Type]
	if !ok {
		return nil, fmt.Errorf("%q, %w", fw.Type, ErrUnknownFeatureType)
	}

	data, err := json.Marshal(fw.Labels)
	if err != nil {
		return nil, err
	}
	feat := newFeature()
	if err := json.Unmarshal(data, feat); err != nil {
		return nil, fmt.Errorf("decode %s labels, %w", fw.Type, err)
	}
	return feat, nil
}
