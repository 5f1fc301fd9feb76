// Package webui serves the interactive form client for the prediction service.
package webui

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"html/template"
	"net/http"
	"strconv"
	"time"

	"github.com/aouyang1/go-houseprice/api"
	"github.com/aouyang1/go-houseprice/chart"
	"github.com/aouyang1/go-houseprice/internal/client"
	"github.com/gin-gonic/gin"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

//go:embed templates/*.html
var templateFS embed.FS

const (
	modeRegression = "regression"
	modeForecast   = "forecast"

	shutdownTimeout = 10 * time.Second
)

// PriceClient is the subset of the service client the form needs.
type PriceClient interface {
	PredictPrice(ctx context.Context, fv api.FeatureVector) (float64, error)
	Forecast(ctx context.Context, periods int) ([]api.ForecastPoint, error)
	Health(ctx context.Context) error
}

// UI renders the forms and makes one blocking service call per submit.
type UI struct {
	client  PriceClient
	engine  *gin.Engine
	printer *message.Printer
}

type page struct {
	Mode       string
	Fields     []field
	Periods    string
	MinPeriods int
	MaxPeriods int
	Error      string
	Price      string
	Points     []api.ForecastPoint
	Chart      string
}

// New builds the gin engine for the form client.
func New(c PriceClient) (*UI, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, eris.Wrap(err, "webui: parse templates")
	}

	u := &UI{
		client:  c,
		printer: message.NewPrinter(language.English),
	}

	r := gin.New()
	r.Use(gin.Recovery(), requestLogger())
	r.SetHTMLTemplate(tmpl)

	r.GET("/", u.index)
	r.POST("/regression", u.regression)
	r.POST("/forecast", u.forecast)
	r.GET("/health", u.health)

	u.engine = r
	return u, nil
}

// Handler returns the root HTTP handler.
func (u *UI) Handler() http.Handler {
	return u.engine
}

// Run serves the form client until ctx is cancelled, then drains in-flight requests.
func (u *UI) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           u.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	zap.L().Info("starting client", zap.String("addr", addr))
	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- eris.Wrap(err, "client listen")
			return
		}
		errCh <- nil
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	zap.L().Info("shutting down client")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return eris.Wrap(err, "client shutdown")
	}
	return <-errCh
}

// health reports the form client and whether the prediction service answers.
func (u *UI) health(c *gin.Context) {
	if err := u.client.Health(c.Request.Context()); err != nil {
		zap.L().Warn("service health check failed", zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "detail": errorDetail(err)})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		zap.L().Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
		)
	}
}

func newPage(mode string) *page {
	if mode != modeForecast {
		mode = modeRegression
	}
	p := &page{
		Mode:       mode,
		Periods:    strconv.Itoa(defaultPeriods),
		MinPeriods: minPeriods,
		MaxPeriods: maxPeriods,
	}
	for _, w := range regressionWidgets {
		p.Fields = append(p.Fields, field{widget: w, Value: w.Default})
	}
	return p
}

func (u *UI) render(c *gin.Context, p *page) {
	c.HTML(http.StatusOK, "index.html", p)
}

func (u *UI) index(c *gin.Context) {
	u.render(c, newPage(c.Query("mode")))
}

// errorDetail shows a service error detail verbatim
func errorDetail(err error) string {
	var apiErr *client.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Detail
	}
	return err.Error()
}

func (u *UI) regression(c *gin.Context) {
	p := newPage(modeRegression)

	var fv api.FeatureVector
	for i := range p.Fields {
		f := &p.Fields[i]
		value, ok := c.GetPostForm(f.Name)
		f.Value = value
		if !ok || value == "" {
			continue
		}
		if err := f.check(value); err != nil && p.Error == "" {
			p.Error = err.Error()
			continue
		}
		if err := fv.Set(f.Name, value); err != nil && p.Error == "" {
			p.Error = err.Error()
		}
	}
	if p.Error != "" {
		u.render(c, p)
		return
	}

	price, err := u.client.PredictPrice(c.Request.Context(), fv)
	if err != nil {
		zap.L().Warn("regression request failed", zap.Error(err))
		p.Error = errorDetail(err)
		u.render(c, p)
		return
	}
	p.Price = u.printer.Sprintf("%.2f", price)

	var buf bytes.Buffer
	if err := chart.Render(&buf, chart.PriceBar(price)); err != nil {
		p.Error = err.Error()
	}
	p.Chart = buf.String()
	u.render(c, p)
}

func (u *UI) forecast(c *gin.Context) {
	p := newPage(modeForecast)
	p.Periods = c.PostForm("periods")

	periods, err := strconv.Atoi(p.Periods)
	if err != nil {
		p.Error = "periods: value is not a valid integer"
		u.render(c, p)
		return
	}
	if periods < minPeriods || periods > maxPeriods {
		p.Error = "periods: must be between 1 and 365"
		u.render(c, p)
		return
	}

	points, err := u.client.Forecast(c.Request.Context(), periods)
	if err != nil {
		zap.L().Warn("forecast request failed", zap.Error(err))
		p.Error = errorDetail(err)
		u.render(c, p)
		return
	}
	p.Points = points

	band := chart.Band{
		T:     make([]time.Time, len(points)),
		Value: make([]float64, len(points)),
		Lower: make([]float64, len(points)),
		Upper: make([]float64, len(points)),
	}
	for i, pt := range points {
		band.T[i] = pt.DS.Time()
		band.Value[i] = pt.YHat
		band.Lower[i] = pt.YHatLower
		band.Upper[i] = pt.YHatUpper
	}

	var buf bytes.Buffer
	if err := chart.Render(&buf, chart.ForecastBand("Prophet Forecast", band)); err != nil {
		p.Error = err.Error()
	}
	p.Chart = buf.String()
	u.render(c, p)
}
