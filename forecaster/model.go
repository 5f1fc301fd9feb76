package forecaster

import (
	"fmt"
	"io"
	"time"

	"github.com/aouyang1/go-houseprice/forecast"
)

// Model is the serializeable form of a fit Forecaster
type Model struct {
	LastTime time.Time      `json:"last_time"`
	Options  *Options       `json:"options"`
	Series   forecast.Model `json:"series_model"`
	Residual forecast.Model `json:"residual_model"`
}

// TablePrint writes a human readable summary of both the series and uncertainty models
func (m Model) TablePrint(w io.Writer, prefix, indent string) error {
	if _, err := fmt.Fprintf(w, "%sLast Time: %s\n", prefix, m.LastTime.Format(time.RFC3339)); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "%sSeries\n", prefix); err != nil {
		return err
	}
	if err := m.Series.TablePrint(w, prefix+indent, indent); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "%sUncertainty\n", prefix); err != nil {
		return err
	}
	return m.Residual.TablePrint(w, prefix+indent, indent)
}
