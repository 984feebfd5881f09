package nominatim_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aircast/aircast/internal/geo"
	"github.com/aircast/aircast/internal/geo/nominatim"
)

func TestClient_Resolve(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/reverse", r.URL.Path)
		assert.Equal(t, "39.74", r.URL.Query().Get("lat"))
		assert.Equal(t, "-104.99", r.URL.Query().Get("lon"))
		assert.Equal(t, "jsonv2", r.URL.Query().Get("format"))
		assert.Equal(t, "aircast-test", r.Header.Get("User-Agent"))

		_, _ = w.Write([]byte(`{
			"display_name": "Denver, Denver County, Colorado, United States",
			"boundingbox": ["39.614", "39.914", "-105.110", "-104.600"]
		}`))
	}))
	defer server.Close()

	client := nominatim.NewClient(nominatim.ClientConfig{
		BaseURL:   server.URL,
		UserAgent: "aircast-test",
	})

	region, err := client.Resolve(context.Background(), 39.74, -104.99)
	require.NoError(t, err)

	assert.Equal(t, "Denver, Denver County, Colorado, United States", region.Name)
	require.Len(t, region.Boundary, 5, "boundary is a closed polygon")
	assert.Equal(t, region.Boundary[0], region.Boundary[4], "polygon must close on its first point")
	assert.Equal(t, geo.Point{Lat: 39.614, Lon: -105.110}, region.Boundary[0])
	assert.Equal(t, geo.Point{Lat: 39.914, Lon: -104.600}, region.Boundary[2])
}

func TestClient_Resolve_UnableToGeocode(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		// Nominatim reports failures in-band with a 200
		_, _ = w.Write([]byte(`{"error": "Unable to geocode"}`))
	}))
	defer server.Close()

	client := nominatim.NewClient(nominatim.ClientConfig{BaseURL: server.URL})

	_, err := client.Resolve(context.Background(), 0, 0)
	assert.ErrorIs(t, err, geo.ErrNotFound)
}

func TestClient_Resolve_NotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := nominatim.NewClient(nominatim.ClientConfig{BaseURL: server.URL})

	_, err := client.Resolve(context.Background(), 39.74, -104.99)
	assert.ErrorIs(t, err, geo.ErrNotFound)
}

func TestClient_Resolve_RateLimited(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := nominatim.NewClient(nominatim.ClientConfig{BaseURL: server.URL})

	_, err := client.Resolve(context.Background(), 39.74, -104.99)
	assert.ErrorIs(t, err, geo.ErrRateLimited)
}

func TestClient_Resolve_MalformedBoundingBox(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{
			"display_name": "Somewhere",
			"boundingbox": ["39.614", "not-a-number", "-105.110", "-104.600"]
		}`))
	}))
	defer server.Close()

	client := nominatim.NewClient(nominatim.ClientConfig{BaseURL: server.URL})

	region, err := client.Resolve(context.Background(), 39.74, -104.99)
	require.NoError(t, err)

	assert.Equal(t, "Somewhere", region.Name)
	assert.Nil(t, region.Boundary, "unusable bounding box degrades to a label-only region")
}
