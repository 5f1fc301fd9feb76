// Package server exposes the prediction service over HTTP.
package server

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"
	"time"

	"github.com/aouyang1/go-houseprice/api"
	"github.com/aouyang1/go-houseprice/internal/config"
	"github.com/aouyang1/go-houseprice/internal/observability"
	"github.com/aouyang1/go-houseprice/internal/predict"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/goccy/go-json"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	maxBodyBytes    = 1 << 20
	shutdownTimeout = 10 * time.Second
)

// Server routes requests to a shared read-only prediction service.
type Server struct {
	cfg    config.ServerConfig
	svc    *predict.Service
	router chi.Router
}

// New builds the router for svc.
func New(cfg config.ServerConfig, svc *predict.Service) *Server {
	s := &Server{
		cfg: cfg,
		svc: svc,
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(instrument)
	r.Use(recoverer)

	origins := cfg.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/health", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", observability.Handler())

	r.Group(func(r chi.Router) {
		if cfg.RateLimit > 0 {
			burst := cfg.RateBurst
			if burst < 1 {
				burst = 1
			}
			r.Use(rateLimit(rate.NewLimiter(rate.Limit(cfg.RateLimit), burst)))
		}
		r.Post("/predict/gpr/", s.handlePredictGPR)
		r.Post("/predict/gpr", s.handlePredictGPR)
		r.Post("/predict/prophet/", s.handlePredictProphet)
		r.Post("/predict/prophet", s.handlePredictProphet)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	})

	s.router = r
	return s
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves until ctx is cancelled, then drains in-flight requests.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	zap.L().Info("starting server",
		zap.String("addr", s.cfg.Addr),
		zap.Int("max_periods", s.svc.MaxPeriods()),
	)
	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- eris.Wrap(err, "server listen")
			return
		}
		errCh <- nil
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	zap.L().Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return eris.Wrap(err, "server shutdown")
	}
	return <-errCh
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, api.HealthResponse{Status: "ok"})
}

func (s *Server) handlePredictGPR(w http.ResponseWriter, r *http.Request) {
	var fv api.FeatureVector
	if !decodeBody(w, r, &fv) {
		return
	}
	price, err := s.svc.PredictPrice(r.Context(), fv)
	if err != nil {
		s.writePredictError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, api.PriceResponse{PredictedPrice: price})
}

func (s *Server) handlePredictProphet(w http.ResponseWriter, r *http.Request) {
	var req api.ForecastRequest
	if !decodeBody(w, r, &req) {
		return
	}
	points, err := s.svc.ForecastRequest(r.Context(), req)
	if err != nil {
		s.writePredictError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, points)
}

func (s *Server) writePredictError(w http.ResponseWriter, r *http.Request, err error) {
	zap.L().Warn("prediction failed",
		zap.String("path", r.URL.Path),
		zap.String("kind", predict.Kind(err)),
		zap.Error(err),
	)
	writeError(w, http.StatusBadRequest, err.Error())
}

// decodeBody decodes a single json value into dst, writing a 400 and returning false on failure.
func decodeBody(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	err := dec.Decode(dst)
	if err == nil {
		rest, readErr := io.ReadAll(io.MultiReader(dec.Buffered(), r.Body))
		switch {
		case readErr != nil:
			err = readErr
		case len(bytes.TrimSpace(rest)) > 0:
			err = errTrailingData
		}
	}
	if err != nil {
		detail := decodeDetail(err, dst)
		observability.RecordPredictionError("validation")
		zap.L().Warn("invalid request body", zap.String("path", r.URL.Path), zap.Error(err))
		writeError(w, http.StatusBadRequest, detail)
		return false
	}
	return true
}

var errTrailingData = errors.New("unexpected data after the json value")

// decodeDetail names the offending field by its json name when a value has the wrong kind.
func decodeDetail(err error, dst interface{}) string {
	if errors.Is(err, io.EOF) {
		return "request body required"
	}
	var fieldErr *api.FieldError
	if errors.As(err, &fieldErr) {
		return fieldErr.Error()
	}
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		kind := "number"
		if typeErr.Type != nil {
			switch typeErr.Type.Kind() {
			case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
				kind = "integer"
			case reflect.String:
				kind = "string"
			}
		}
		return fmt.Sprintf("%s: value is not a valid %s", jsonName(dst, typeErr.Field), kind)
	}
	return fmt.Sprintf("invalid request body: %v", err)
}

// jsonName maps a go field path from a decode error onto the json tag of dst's field.
func jsonName(dst interface{}, goField string) string {
	name := goField
	if i := strings.LastIndex(name, "."); i >= 0 {
		name = name[i+1:]
	}
	typ := reflect.TypeOf(dst)
	for typ != nil && typ.Kind() == reflect.Ptr {
		typ = typ.Elem()
	}
	if typ == nil || typ.Kind() != reflect.Struct {
		return name
	}
	f, ok := typ.FieldByName(name)
	if !ok {
		return name
	}
	tag, _, _ := strings.Cut(f.Tag.Get("json"), ",")
	if tag == "" || tag == "-" {
		return name
	}
	return tag
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Error("encode response", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, api.ErrorResponse{Detail: detail})
}
