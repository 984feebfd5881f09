// Package prediction provides a client for the external air quality
// prediction service. The service is asynchronous: a submission returns a
// task ID immediately and the forecast is computed in the background, so
// callers poll the status endpoint until the task reports done.
package prediction

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/aircast/aircast/internal/provider/resilience"
	"github.com/aircast/aircast/pkg/forecast"
)

const (
	// DefaultBaseURL is the base URL for the prediction service.
	DefaultBaseURL = "http://127.0.0.1:8001"

	// ProviderName identifies this provider.
	ProviderName = "prediction"
)

// ClientConfig holds configuration for the prediction service client.
type ClientConfig struct {
	// BaseURL is the service base URL (defaults to DefaultBaseURL).
	BaseURL string

	// HTTPClient is the HTTP client to use (must implement HTTPDoer).
	// If nil, a default client with a circuit breaker is created. Retries
	// are never enabled here: retry policy belongs to the polling loop.
	HTTPClient HTTPDoer

	// Timeout for individual requests (default: 10s).
	Timeout time.Duration
}

// HTTPDoer abstracts HTTP request execution.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client is a prediction service client.
type Client struct {
	baseURL    string
	httpClient HTTPDoer
}

// NewClient creates a new prediction service client.
func NewClient(cfg ClientConfig) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout == 0 {
			timeout = 10 * time.Second
		}
		httpClient = resilience.NewClient(resilience.ClientConfig{
			Name:    ProviderName,
			Timeout: timeout,
			// MaxRetries stays zero: exactly one network request per call.
		})
	}

	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: httpClient,
	}
}

// Wire types for the prediction service API.

type submitRequest struct {
	Lat  float64 `json:"lat"`
	Long float64 `json:"long"`
	Date string  `json:"date"`
}

type submitResponse struct {
	TaskID string `json:"task_id"`
	Status string `json:"status"`
}

type statusResponse struct {
	TaskID string              `json:"task_id"`
	Done   bool                `json:"done"`
	Result *forecast.RawResult `json:"result"`
	Error  string              `json:"error"`
}

// Submit submits a forecast request and returns the job handle assigned by
// the service. The request is validated before any network call; an invalid
// request fails with a forecast.ValidationError. Exactly one network request
// is made per call.
func (c *Client) Submit(ctx context.Context, req forecast.Request) (forecast.JobHandle, error) {
	if err := req.Validate(); err != nil {
		return forecast.JobHandle{}, err
	}

	body, err := json.Marshal(submitRequest{
		Lat:  req.Lat,
		Long: req.Lon,
		Date: req.TargetTime.Format(time.RFC3339),
	})
	if err != nil {
		return forecast.JobHandle{}, fmt.Errorf("encode submit request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/submit", bytes.NewReader(body))
	if err != nil {
		return forecast.JobHandle{}, fmt.Errorf("create submit request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return forecast.JobHandle{}, fmt.Errorf("submit forecast job: %w: %w", forecast.ErrServiceUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusAccepted {
		return forecast.JobHandle{}, fmt.Errorf("%w: unexpected status %d from submit endpoint", forecast.ErrServiceUnavailable, resp.StatusCode)
	}

	var result submitResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return forecast.JobHandle{}, fmt.Errorf("decode submit response: %w", err)
	}
	if result.TaskID == "" {
		return forecast.JobHandle{}, forecast.ErrHandleMissing
	}

	return forecast.JobHandle{RequestID: result.TaskID}, nil
}

// Check queries the status of a previously submitted job. A job that is
// still computing reports StatusPending; a finished job reports StatusReady
// with its normalized result, or StatusFailed when the pipeline recorded an
// error for the task.
func (c *Client) Check(ctx context.Context, handle forecast.JobHandle) (forecast.StatusReport, error) {
	if handle.RequestID == "" {
		return forecast.StatusReport{}, forecast.ErrJobNotFound
	}

	statusURL := c.baseURL + "/status/" + url.PathEscape(handle.RequestID)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, statusURL, http.NoBody)
	if err != nil {
		return forecast.StatusReport{}, fmt.Errorf("create status request: %w", err)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return forecast.StatusReport{}, fmt.Errorf("check forecast job: %w: %w", forecast.ErrServiceUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return forecast.StatusReport{}, forecast.ErrJobNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return forecast.StatusReport{}, fmt.Errorf("%w: unexpected status %d from status endpoint", forecast.ErrServiceUnavailable, resp.StatusCode)
	}

	var result statusResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return forecast.StatusReport{}, fmt.Errorf("decode status response: %w", err)
	}

	// The service reports unknown task IDs in-band rather than via 404.
	if result.Error != "" {
		return forecast.StatusReport{}, forecast.ErrJobNotFound
	}

	if !result.Done {
		return forecast.StatusReport{Status: forecast.StatusPending}, nil
	}

	if result.Result == nil {
		return forecast.StatusReport{
			Status: forecast.StatusFailed,
			Reason: "prediction completed without a result",
		}, nil
	}
	if result.Result.Error != "" {
		return forecast.StatusReport{
			Status: forecast.StatusFailed,
			Reason: result.Result.Error,
		}, nil
	}

	built, warnings := forecast.BuildResult(result.Result)
	return forecast.StatusReport{Status: forecast.StatusReady, Result: built, Warnings: warnings}, nil
}
