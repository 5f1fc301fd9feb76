// Package feature describes the labelled regressor columns used to fit a forecast model.
package feature

import (
	"strings"

	"github.com/goccy/go-json"
)

// FeatureType identifies the family a feature belongs to.
type FeatureType string

const (
	FeatureTypeChangepoint FeatureType = "changepoint"
	FeatureTypeSeasonality FeatureType = "seasonality"
	FeatureTypeEvent       FeatureType = "event"
	FeatureTypeGrowth      FeatureType = "growth"
)

// Feature is a single labelled regressor column. String must be unique per feature since it
// is used as the key into a Set.
type Feature interface {
	String() string
	Get(string) (string, bool)
	Type() FeatureType
	Decode() map[string]string
}

// lookup finds a label case insensitively.
func lookup(labels map[string]string, label string) (string, bool) {
	v, ok := labels[strings.ToLower(label)]
	return v, ok
}

// decodeLabels reads the label map written from Decode.
func decodeLabels(data []byte) (map[string]string, error) {
	var labels map[string]string
	if err := json.Unmarshal(data, &labels); err != nil {
		return nil, err
	}
	return labels, nil
}

// decodeName reads the label map of a feature identified by name only.
func decodeName(data []byte) (string, error) {
	labels, err := decodeLabels(data)
	if err != nil {
		return "", err
	}
	return labels["name"], nil
}
