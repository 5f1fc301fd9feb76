// Package api defines the json contract between the prediction service and its clients.
package api

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/goccy/go-json"
)

// DateLayout is the serialized form of a forecast date
const DateLayout = "2006-01-02T15:04:05"

var ErrMissingField = errors.New("field required")

// FeatureOrder is the order the regression artifacts expect their inputs in
var FeatureOrder = []string{
	"bedrooms",
	"bathrooms",
	"sqft_living",
	"sqft_lot",
	"floors",
	"waterfront",
	"view",
	"condition",
	"grade",
	"sqft_above",
	"sqft_basement",
	"yr_built",
	"yr_renovated",
	"zipcode",
	"lat",
	"long",
	"sqft_living15",
	"sqft_lot15",
	"year",
	"month",
	"day",
}

// FeatureVector is the regression request. Fields are pointers so a missing field can be told
// apart from a zero.
type FeatureVector struct {
	Bedrooms     *int     `json:"bedrooms" validate:"required"`
	Bathrooms    *float64 `json:"bathrooms" validate:"required"`
	SqftLiving   *int     `json:"sqft_living" validate:"required"`
	SqftLot      *int     `json:"sqft_lot" validate:"required"`
	Floors       *float64 `json:"floors" validate:"required"`
	Waterfront   *int     `json:"waterfront" validate:"required"`
	View         *int     `json:"view" validate:"required"`
	Condition    *int     `json:"condition" validate:"required"`
	Grade        *int     `json:"grade" validate:"required"`
	SqftAbove    *int     `json:"sqft_above" validate:"required"`
	SqftBasement *int     `json:"sqft_basement" validate:"required"`
	YrBuilt      *int     `json:"yr_built" validate:"required"`
	YrRenovated  *int     `json:"yr_renovated" validate:"required"`
	Zipcode      *int     `json:"zipcode" validate:"required"`
	Lat          *float64 `json:"lat" validate:"required"`
	Long         *float64 `json:"long" validate:"required"`
	SqftLiving15 *int     `json:"sqft_living15" validate:"required"`
	SqftLot15    *int     `json:"sqft_lot15" validate:"required"`
	Year         *int     `json:"year" validate:"required"`
	Month        *int     `json:"month" validate:"required"`
	Day          *int     `json:"day" validate:"required"`
}

type field struct {
	name     string
	intVal   **int
	floatVal **float64
}

// fields lists every field in FeatureOrder
func (fv *FeatureVector) fields() []field {
	return []field{
		{name: "bedrooms", intVal: &fv.Bedrooms},
		{name: "bathrooms", floatVal: &fv.Bathrooms},
		{name: "sqft_living", intVal: &fv.SqftLiving},
		{name: "sqft_lot", intVal: &fv.SqftLot},
		{name: "floors", floatVal: &fv.Floors},
		{name: "waterfront", intVal: &fv.Waterfront},
		{name: "view", intVal: &fv.View},
		{name: "condition", intVal: &fv.Condition},
		{name: "grade", intVal: &fv.Grade},
		{name: "sqft_above", intVal: &fv.SqftAbove},
		{name: "sqft_basement", intVal: &fv.SqftBasement},
		{name: "yr_built", intVal: &fv.YrBuilt},
		{name: "yr_renovated", intVal: &fv.YrRenovated},
		{name: "zipcode", intVal: &fv.Zipcode},
		{name: "lat", floatVal: &fv.Lat},
		{name: "long", floatVal: &fv.Long},
		{name: "sqft_living15", intVal: &fv.SqftLiving15},
		{name: "sqft_lot15", intVal: &fv.SqftLot15},
		{name: "year", intVal: &fv.Year},
		{name: "month", intVal: &fv.Month},
		{name: "day", intVal: &fv.Day},
	}
}

// Values returns the fields in FeatureOrder. The first missing field is returned as an error.
func (fv *FeatureVector) Values() ([]float64, error) {
	fields := fv.fields()
	values := make([]float64, 0, len(fields))
	for _, f := range fields {
		switch {
		case f.intVal != nil && *f.intVal != nil:
			values = append(values, float64(**f.intVal))
		case f.floatVal != nil && *f.floatVal != nil:
			values = append(values, **f.floatVal)
		default:
			return nil, fmt.Errorf("%s: %w", f.name, ErrMissingField)
		}
	}
	return values, nil
}

// FieldError reports a field whose json value has the wrong kind.
type FieldError struct {
	Field string
	Kind  string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: value is not a valid %s", e.Field, e.Kind)
}

// UnmarshalJSON decodes the known fields by json name. Integer fields reject a fractional value
// instead of truncating it, and a null leaves the field missing.
func (fv *FeatureVector) UnmarshalJSON(data []byte) error {
	raw, err := decodeObject(data)
	if err != nil {
		return err
	}
	*fv = FeatureVector{}
	for _, f := range fv.fields() {
		v, ok := raw[f.name]
		if !ok || isNull(v) {
			continue
		}
		if f.intVal != nil {
			n, err := parseInt(f.name, v)
			if err != nil {
				return err
			}
			*f.intVal = &n
			continue
		}
		x, err := parseFloat(f.name, v)
		if err != nil {
			return err
		}
		*f.floatVal = &x
	}
	return nil
}

// Set parses and assigns a field by its json name. Integer fields reject fractional values.
func (fv *FeatureVector) Set(name, value string) error {
	for _, f := range fv.fields() {
		if f.name != name {
			continue
		}
		if f.intVal != nil {
			v, err := strconv.Atoi(value)
			if err != nil {
				return &FieldError{Field: name, Kind: "integer"}
			}
			*f.intVal = &v
			return nil
		}
		v, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return &FieldError{Field: name, Kind: "number"}
		}
		*f.floatVal = &v
		return nil
	}
	return fmt.Errorf("unknown field %q", name)
}

func decodeObject(data []byte) (map[string]json.RawMessage, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	if raw == nil {
		return nil, errors.New("expected a json object")
	}
	return raw, nil
}

func isNull(raw json.RawMessage) bool {
	return string(bytes.TrimSpace(raw)) == "null"
}

// parseFloat accepts a json number literal only. Quoted numbers and booleans are rejected.
func parseFloat(name string, raw json.RawMessage) (float64, error) {
	s := string(bytes.TrimSpace(raw))
	if s == "" || (s[0] != '-' && (s[0] < '0' || s[0] > '9')) {
		return 0, &FieldError{Field: name, Kind: "number"}
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsInf(v, 0) {
		return 0, &FieldError{Field: name, Kind: "number"}
	}
	return v, nil
}

// parseInt accepts a json number with no fractional part, so 3 and 3.0 decode and 3.5 does not.
func parseInt(name string, raw json.RawMessage) (int, error) {
	s := string(bytes.TrimSpace(raw))
	if n, err := strconv.Atoi(s); err == nil {
		return n, nil
	}
	v, err := parseFloat(name, raw)
	if err != nil || v != math.Trunc(v) || v < math.MinInt64 || v >= math.MaxInt64 {
		return 0, &FieldError{Field: name, Kind: "integer"}
	}
	return int(v), nil
}

// ForecastRequest asks for the given number of days after the end of the history
type ForecastRequest struct {
	Periods *int `json:"periods" validate:"required"`
}

// UnmarshalJSON rejects a fractional or quoted periods value.
func (r *ForecastRequest) UnmarshalJSON(data []byte) error {
	raw, err := decodeObject(data)
	if err != nil {
		return err
	}
	*r = ForecastRequest{}
	if v, ok := raw["periods"]; ok && !isNull(v) {
		n, err := parseInt("periods", v)
		if err != nil {
			return err
		}
		r.Periods = &n
	}
	return nil
}

// ForecastPoint is a single forecasted day with its uncertainty band
type ForecastPoint struct {
	DS        Date    `json:"ds"`
	YHat      float64 `json:"yhat"`
	YHatLower float64 `json:"yhat_lower"`
	YHatUpper float64 `json:"yhat_upper"`
}

type PriceResponse struct {
	PredictedPrice float64 `json:"predicted_price"`
}

type ErrorResponse struct {
	Detail string `json:"detail"`
}

type HealthResponse struct {
	Status string `json:"status"`
}

// Date serializes as a timestamp without a zone
type Date time.Time

func (d Date) Time() time.Time {
	return time.Time(d)
}

func (d Date) String() string {
	return time.Time(d).Format(DateLayout)
}

func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Quote(d.String())), nil
}

func (d *Date) UnmarshalJSON(data []byte) error {
	s, err := strconv.Unquote(string(data))
	if err != nil {
		return fmt.Errorf("date must be a string, %w", err)
	}
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return err
	}
	*d = Date(t)
	return nil
}
