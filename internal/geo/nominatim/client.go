// Package nominatim provides a reverse-geocoding client for a
// Nominatim-compatible API.
package nominatim

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/aircast/aircast/internal/geo"
	"github.com/aircast/aircast/internal/provider/resilience"
)

const (
	// DefaultBaseURL is the base URL for the public Nominatim instance.
	DefaultBaseURL = "https://nominatim.openstreetmap.org"

	// ProviderName identifies this provider.
	ProviderName = "nominatim"
)

// ClientConfig holds configuration for the Nominatim client.
type ClientConfig struct {
	// BaseURL is the API base URL (defaults to DefaultBaseURL).
	BaseURL string

	// HTTPClient is the HTTP client to use (must implement HTTPDoer).
	// If nil, a resilient client with backoff retries is created; this
	// upstream is rate limited, so transient failures are worth retrying.
	HTTPClient HTTPDoer

	// UserAgent identifies the application, as required by the Nominatim
	// usage policy.
	UserAgent string

	// Timeout for individual API requests (default: 10s).
	Timeout time.Duration
}

// HTTPDoer abstracts HTTP request execution.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client is a Nominatim reverse-geocoding client.
type Client struct {
	baseURL    string
	userAgent  string
	httpClient HTTPDoer
}

// NewClient creates a new Nominatim client.
func NewClient(cfg ClientConfig) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	userAgent := cfg.UserAgent
	if userAgent == "" {
		userAgent = "aircast"
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout == 0 {
			timeout = 10 * time.Second
		}
		httpClient = resilience.NewClient(resilience.ClientConfig{
			Name:            ProviderName,
			Timeout:         timeout,
			MaxRetries:      3,
			InitialInterval: 500 * time.Millisecond,
			MaxInterval:     5 * time.Second,
		})
	}

	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		userAgent:  userAgent,
		httpClient: httpClient,
	}
}

// reverseResponse is the subset of the Nominatim reverse geocoding response
// the client consumes.
type reverseResponse struct {
	DisplayName string   `json:"display_name"`
	BoundingBox []string `json:"boundingbox"`
	Error       string   `json:"error"`
}

// Resolve reverse-geocodes a point into a labeled region. The region
// boundary is the geocoder's bounding box as a closed polygon.
func (c *Client) Resolve(ctx context.Context, lat, lon float64) (*geo.Region, error) {
	query := url.Values{}
	query.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	query.Set("lon", strconv.FormatFloat(lon, 'f', -1, 64))
	query.Set("format", "jsonv2")

	reverseURL := c.baseURL + "/reverse?" + query.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reverseURL, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("create reverse request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", geo.ErrNetwork, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, geo.ErrNotFound
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, geo.ErrRateLimited
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("%w: unexpected status %d from reverse endpoint", geo.ErrNetwork, resp.StatusCode)
	}

	var result reverseResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode reverse response: %w", err)
	}

	// Nominatim reports "Unable to geocode" in-band with a 200.
	if result.Error != "" || result.DisplayName == "" {
		return nil, geo.ErrNotFound
	}

	return &geo.Region{
		Name:     result.DisplayName,
		Boundary: boundaryFromBox(result.BoundingBox),
	}, nil
}

// boundaryFromBox converts a Nominatim bounding box
// [minLat, maxLat, minLon, maxLon] into a closed polygon.
func boundaryFromBox(box []string) []geo.Point {
	if len(box) != 4 {
		return nil
	}
	vals := make([]float64, 4)
	for i, s := range box {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil
		}
		vals[i] = v
	}
	minLat, maxLat, minLon, maxLon := vals[0], vals[1], vals[2], vals[3]
	return []geo.Point{
		{Lat: minLat, Lon: minLon},
		{Lat: minLat, Lon: maxLon},
		{Lat: maxLat, Lon: maxLon},
		{Lat: maxLat, Lon: minLon},
		{Lat: minLat, Lon: minLon},
	}
}
