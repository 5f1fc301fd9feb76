package webui

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/aouyang1/go-houseprice/api"
	"github.com/aouyang1/go-houseprice/internal/client"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeClient struct {
	calls     int
	lastFV    api.FeatureVector
	price     float64
	points    []api.ForecastPoint
	err       error
	healthErr error
	periods   int
}

func (f *fakeClient) PredictPrice(ctx context.Context, fv api.FeatureVector) (float64, error) {
	f.calls++
	f.lastFV = fv
	return f.price, f.err
}

func (f *fakeClient) Forecast(ctx context.Context, periods int) ([]api.ForecastPoint, error) {
	f.calls++
	f.periods = periods
	if f.err != nil {
		return nil, f.err
	}
	return f.points[:periods], nil
}

func (f *fakeClient) Health(ctx context.Context) error {
	return f.healthErr
}

func dailyPoints(n int) []api.ForecastPoint {
	points := make([]api.ForecastPoint, n)
	last := time.Date(2015, 5, 15, 0, 0, 0, 0, time.UTC)
	for i := range points {
		points[i] = api.ForecastPoint{
			DS:        api.Date(last.AddDate(0, 0, i+1)),
			YHat:      500000,
			YHatLower: 450000,
			YHatUpper: 550000,
		}
	}
	return points
}

func defaultForm() url.Values {
	form := url.Values{}
	for _, w := range regressionWidgets {
		form.Set(w.Name, w.Default)
	}
	return form
}

func newUI(t *testing.T, fc *fakeClient) http.Handler {
	t.Helper()
	u, err := New(fc)
	require.NoError(t, err)
	return u.Handler()
}

func get(h http.Handler, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func postForm(h http.Handler, path string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestIndexModes(t *testing.T) {
	h := newUI(t, &fakeClient{})

	testData := map[string]struct {
		path     string
		contains string
		absent   string
	}{
		"default":    {"/", "Predict with Gaussian Process Regressor", "Number of Days into the Future"},
		"regression": {"/?mode=regression", "Square Feet Living 15", "Predict Future Prices"},
		"forecast":   {"/?mode=forecast", "Number of Days into the Future", "Square Feet Living"},
		"unknown":    {"/?mode=other", "Predict Price", "Predict Future Prices"},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			rec := get(h, td.path)
			require.Equal(t, http.StatusOK, rec.Code)
			assert.Contains(t, rec.Body.String(), td.contains)
			assert.NotContains(t, rec.Body.String(), td.absent)
		})
	}
}

func TestIndexDefaults(t *testing.T) {
	h := newUI(t, &fakeClient{})
	body := get(h, "/").Body.String()
	assert.Contains(t, body, `name="zipcode" min="10000" max="99999" step="1" value="98101"`)
	assert.Contains(t, body, `name="lat" min="-90" max="90" step="0.0001" value="47.0"`)
	assert.Contains(t, body, `<option value="0" selected>0</option>`)

	body = get(h, "/?mode=forecast").Body.String()
	assert.Contains(t, body, `name="periods" min="1" max="365" step="1" value="30"`)
}

func TestRegression(t *testing.T) {
	fc := &fakeClient{price: 540088.14}
	h := newUI(t, fc)

	rec := postForm(h, "/regression", defaultForm())
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Predicted House Price: $540,088.14")
	assert.Contains(t, body, "<iframe srcdoc=")
	assert.Contains(t, body, "GPR Prediction")
	assert.Equal(t, 1, fc.calls)

	values, err := fc.lastFV.Values()
	require.NoError(t, err)
	assert.Equal(t, 98101.0, values[13])
	assert.Equal(t, -122.0, values[15])
}

func TestRegressionErrors(t *testing.T) {
	testData := map[string]struct {
		mutate func(form url.Values)
		err    error
		detail string
		calls  int
	}{
		"service detail": {
			mutate: func(form url.Values) { form.Del("bedrooms") },
			err:    &client.APIError{Status: http.StatusBadRequest, Detail: "bedrooms: field required"},
			detail: "Error: bedrooms: field required",
			calls:  1,
		},
		"out of bounds": {
			mutate: func(form url.Values) { form.Set("bedrooms", "25") },
			detail: "Error: bedrooms: must be between 0 and 20",
		},
		"bad option": {
			mutate: func(form url.Values) { form.Set("grade", "11") },
			detail: "Error: grade: 11 is not one of the allowed values",
		},
		"fractional int": {
			mutate: func(form url.Values) { form.Set("sqft_living", "2000.5") },
			detail: "Error: sqft_living: value is not a valid integer",
		},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			fc := &fakeClient{err: td.err}
			h := newUI(t, fc)
			form := defaultForm()
			td.mutate(form)

			rec := postForm(h, "/regression", form)
			require.Equal(t, http.StatusOK, rec.Code)
			assert.Contains(t, rec.Body.String(), td.detail)
			assert.NotContains(t, rec.Body.String(), "Predicted House Price")
			assert.Equal(t, td.calls, fc.calls)
		})
	}
}

func TestForecast(t *testing.T) {
	fc := &fakeClient{points: dailyPoints(365)}
	h := newUI(t, fc)

	rec := postForm(h, "/forecast", url.Values{"periods": {"3"}})
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Equal(t, 3, fc.periods)
	assert.Contains(t, body, "Future House Prices:")
	assert.Contains(t, body, "<td>2015-05-16T00:00:00</td>")
	assert.Contains(t, body, "<td>2015-05-18T00:00:00</td>")
	assert.NotContains(t, body, "2015-05-19T00:00:00")
	assert.Contains(t, body, "Prophet Forecast")
}

func TestForecastErrors(t *testing.T) {
	testData := map[string]struct {
		periods string
		err     error
		detail  string
		calls   int
	}{
		"zero":     {"0", nil, "Error: periods: must be between 1 and 365", 0},
		"too many": {"366", nil, "Error: periods: must be between 1 and 365", 0},
		"not int":  {"ten", nil, "Error: periods: value is not a valid integer", 0},
		"service":  {"5", &client.APIError{Status: 400, Detail: "forecast timed out after 10s"}, "Error: forecast timed out after 10s", 1},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			fc := &fakeClient{points: dailyPoints(365), err: td.err}
			h := newUI(t, fc)
			rec := postForm(h, "/forecast", url.Values{"periods": {td.periods}})
			require.Equal(t, http.StatusOK, rec.Code)
			assert.Contains(t, rec.Body.String(), td.detail)
			assert.Equal(t, td.calls, fc.calls)
		})
	}
}

func TestHealth(t *testing.T) {
	testData := map[string]struct {
		err      error
		status   int
		expected string
	}{
		"service up": {
			status:   http.StatusOK,
			expected: `{"status":"ok"}`,
		},
		"service error": {
			err:      &client.APIError{Status: http.StatusNotFound, Detail: "not found"},
			status:   http.StatusServiceUnavailable,
			expected: `{"status":"unavailable","detail":"not found"}`,
		},
		"service down": {
			err:      errors.New("connection refused"),
			status:   http.StatusServiceUnavailable,
			expected: `{"status":"unavailable","detail":"connection refused"}`,
		},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			rec := get(newUI(t, &fakeClient{healthErr: td.err}), "/health")
			assert.Equal(t, td.status, rec.Code)
			assert.JSONEq(t, td.expected, rec.Body.String())
		})
	}
}

func TestRun(t *testing.T) {
	u, err := New(&fakeClient{})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- u.Run(ctx, "127.0.0.1:0") }()

	time.Sleep(50 * time.Millisecond)
	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("client did not shut down")
	}

	// a listen failure is returned without waiting for cancellation
	err = u.Run(context.Background(), "127.0.0.1:-1")
	assert.Error(t, err)
}
