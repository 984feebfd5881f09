// Package aircast provides a Go client for the AirCast forecast gateway.
// It submits forecast jobs and checks their status; the polling loop itself
// lives in internal/forecast/poller.
package aircast

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/aircast/aircast/pkg/forecast"
)

// ClientConfig holds configuration for the gateway client.
type ClientConfig struct {
	// BaseURL is the gateway base URL, e.g. "http://localhost:8080".
	BaseURL string

	// HTTPClient is the HTTP client to use. If nil, a client with Timeout
	// is used. No retries happen here: the polling coordinator owns retry
	// policy.
	HTTPClient HTTPDoer

	// Timeout for individual requests (default: 15s).
	Timeout time.Duration
}

// HTTPDoer abstracts HTTP request execution.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client is an AirCast gateway client.
type Client struct {
	baseURL    string
	httpClient HTTPDoer
}

// NewClient creates a new gateway client.
func NewClient(cfg ClientConfig) *Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 15 * time.Second
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: timeout}
	}

	return &Client{
		baseURL:    strings.TrimSuffix(cfg.BaseURL, "/"),
		httpClient: httpClient,
	}
}

// Wire types for the gateway API.

type requestForecastBody struct {
	Long float64 `json:"long"`
	Lat  float64 `json:"lat"`
	Date string  `json:"date"`
}

type requestForecastResponse struct {
	RequestID string `json:"requestId"`
	Status    string `json:"status"`
}

type checkForecastBody struct {
	RequestID string `json:"requestId"`
}

// Submit validates the request and submits it to the gateway, returning the
// job handle. Validation failures are reported as forecast.ValidationError
// before any network call is made. Exactly one network request per call.
func (c *Client) Submit(ctx context.Context, req forecast.Request) (forecast.JobHandle, error) {
	if err := req.Validate(); err != nil {
		return forecast.JobHandle{}, err
	}

	body, err := json.Marshal(requestForecastBody{
		Long: req.Lon,
		Lat:  req.Lat,
		Date: req.TargetTime.Format(time.RFC3339),
	})
	if err != nil {
		return forecast.JobHandle{}, fmt.Errorf("encode forecast request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/forecast/request-forecast", bytes.NewReader(body))
	if err != nil {
		return forecast.JobHandle{}, fmt.Errorf("create forecast request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return forecast.JobHandle{}, fmt.Errorf("request forecast: %w: %w", forecast.ErrServiceUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusAccepted {
		return forecast.JobHandle{}, fmt.Errorf("%w: unexpected status %d from request-forecast", forecast.ErrServiceUnavailable, resp.StatusCode)
	}

	var result requestForecastResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return forecast.JobHandle{}, fmt.Errorf("decode request-forecast response: %w", err)
	}
	if result.RequestID == "" {
		return forecast.JobHandle{}, forecast.ErrHandleMissing
	}

	return forecast.JobHandle{RequestID: result.RequestID}, nil
}

// Check performs a single status check for the given handle. The job state
// is derived from the gateway status code: 202 means the prediction is still
// running, 200 carries the finished forecast. Anything else is a failure.
func (c *Client) Check(ctx context.Context, handle forecast.JobHandle) (forecast.StatusReport, error) {
	body, err := json.Marshal(checkForecastBody{RequestID: handle.RequestID})
	if err != nil {
		return forecast.StatusReport{}, fmt.Errorf("encode status request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/forecast/check-forecast-request", bytes.NewReader(body))
	if err != nil {
		return forecast.StatusReport{}, fmt.Errorf("create status request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return forecast.StatusReport{}, fmt.Errorf("check forecast: %w: %w", forecast.ErrServiceUnavailable, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusAccepted:
		return forecast.StatusReport{Status: forecast.StatusPending}, nil
	case http.StatusOK:
		var raw forecast.RawResult
		if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
			return forecast.StatusReport{}, fmt.Errorf("decode forecast result: %w", err)
		}
		result, warnings := forecast.BuildResult(&raw)
		return forecast.StatusReport{Status: forecast.StatusReady, Result: result, Warnings: warnings}, nil
	default:
		return forecast.StatusReport{
			Status: forecast.StatusFailed,
			Reason: fmt.Sprintf("gateway returned status %d", resp.StatusCode),
		}, nil
	}
}
