// Package client calls the prediction service over HTTP.
package client

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aouyang1/go-houseprice/api"
	"github.com/go-resty/resty/v2"
	"github.com/goccy/go-json"
	"github.com/rotisserie/eris"
)

const (
	pathPredictGPR     = "/predict/gpr/"
	pathPredictProphet = "/predict/prophet/"
)

// APIError is a non-2xx response from the service.
type APIError struct {
	Status int
	Detail string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("service returned %d: %s", e.Status, e.Detail)
}

// Client makes one blocking call per operation with no retries.
type Client struct {
	http *resty.Client
}

// New returns a client for the service at baseURL.
func New(baseURL string, timeout time.Duration) *Client {
	c := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetTimeout(timeout).
		SetHeader("Accept", "application/json")
	c.JSONMarshal = json.Marshal
	c.JSONUnmarshal = json.Unmarshal
	return &Client{http: c}
}

// PredictPrice requests a regression prediction.
func (c *Client) PredictPrice(ctx context.Context, fv api.FeatureVector) (float64, error) {
	var result api.PriceResponse
	if err := c.post(ctx, pathPredictGPR, fv, &result); err != nil {
		return 0, err
	}
	return result.PredictedPrice, nil
}

// Forecast requests the given number of days past the service's history.
func (c *Client) Forecast(ctx context.Context, periods int) ([]api.ForecastPoint, error) {
	var result []api.ForecastPoint
	if err := c.post(ctx, pathPredictProphet, api.ForecastRequest{Periods: &periods}, &result); err != nil {
		return nil, err
	}
	return result, nil
}

// Health checks that the service is up.
func (c *Client) Health(ctx context.Context) error {
	resp, err := c.http.R().SetContext(ctx).Get("/health")
	if err != nil {
		return eris.Wrap(err, "client: health")
	}
	if !resp.IsSuccess() {
		return apiError(resp)
	}
	return nil
}

func (c *Client) post(ctx context.Context, path string, body, result interface{}) error {
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(body).
		Post(path)
	if err != nil {
		return eris.Wrapf(err, "client: post %s", path)
	}
	if !resp.IsSuccess() {
		return apiError(resp)
	}
	if err := json.Unmarshal(resp.Body(), result); err != nil {
		return eris.Wrapf(err, "client: decode %s response", path)
	}
	return nil
}

// apiError uses the service detail when the body is an error response, otherwise the raw body.
func apiError(resp *resty.Response) *APIError {
	detail := strings.TrimSpace(resp.String())
	var errResp api.ErrorResponse
	if err := json.Unmarshal(resp.Body(), &errResp); err == nil && errResp.Detail != "" {
		detail = errResp.Detail
	}
	return &APIError{
		Status: resp.StatusCode(),
		Detail: detail,
	}
}
