// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	// HTTP metrics
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec

	// Prediction metrics
	PredictionErrors *prometheus.CounterVec
	ForecastPeriods  prometheus.Histogram

	// Health metrics
	ForecasterReady prometheus.Gauge
	StartupSeconds  prometheus.Gauge
}

// NewMetrics creates a new Metrics instance with all metrics registered on reg.
func NewMetrics(namespace string, reg prometheus.Registerer) *Metrics {
	if namespace == "" {
		namespace = "houseprice"
	}
	factory := promauto.With(reg)

	return &Metrics{
		RequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests by route and status",
		}, []string{"route", "status"}),
		RequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),

		PredictionErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "predict",
			Name:      "errors_total",
			Help:      "Total number of failed predictions by error kind",
		}, []string{"kind"}),
		ForecastPeriods: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "predict",
			Name:      "forecast_periods",
			Help:      "Number of days requested per forecast",
			Buckets:   []float64{1, 7, 30, 90, 180, 365, 730, 1825, 3650},
		}),

		ForecasterReady: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "health",
			Name:      "forecaster_ready",
			Help:      "1 once the forecaster is fit and serving",
		}),
		StartupSeconds: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "health",
			Name:      "startup_seconds",
			Help:      "Time spent loading artifacts and fitting the forecaster",
		}),
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// DefaultMetrics is the default metrics instance.
var DefaultMetrics = NewMetrics("", prometheus.DefaultRegisterer)

// RecordRequest records a served request.
func RecordRequest(route, status string, seconds float64) {
	DefaultMetrics.RequestsTotal.WithLabelValues(route, status).Inc()
	DefaultMetrics.RequestDuration.WithLabelValues(route).Observe(seconds)
}

// RecordPredictionError increments the prediction error counter.
func RecordPredictionError(kind string) {
	DefaultMetrics.PredictionErrors.WithLabelValues(kind).Inc()
}

// RecordForecastPeriods records the horizon of a forecast request.
func RecordForecastPeriods(periods int) {
	DefaultMetrics.ForecastPeriods.Observe(float64(periods))
}

// SetForecasterReady updates the forecaster ready gauge.
func SetForecasterReady(ready bool) {
	if ready {
		DefaultMetrics.ForecasterReady.Set(1)
		return
	}
	DefaultMetrics.ForecasterReady.Set(0)
}

// RecordStartup records how long startup took.
func RecordStartup(seconds float64) {
	DefaultMetrics.StartupSeconds.Set(seconds)
}
