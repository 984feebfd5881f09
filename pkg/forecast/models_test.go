package forecast_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aircast/aircast/pkg/forecast"
)

func TestRequest_Validate(t *testing.T) {
	target := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		req       forecast.Request
		wantField string
	}{
		{
			name: "valid request",
			req:  forecast.Request{Lat: 52.37, Lon: 4.89, TargetTime: target},
		},
		{
			name: "boundary coordinates are valid",
			req:  forecast.Request{Lat: -90, Lon: 180, TargetTime: target},
		},
		{
			name: "zero coordinates are valid",
			req:  forecast.Request{Lat: 0, Lon: 0, TargetTime: target},
		},
		{
			name:      "latitude too large",
			req:       forecast.Request{Lat: 90.1, Lon: 4.89, TargetTime: target},
			wantField: "lat",
		},
		{
			name:      "latitude too small",
			req:       forecast.Request{Lat: -90.1, Lon: 4.89, TargetTime: target},
			wantField: "lat",
		},
		{
			name:      "longitude too large",
			req:       forecast.Request{Lat: 52.37, Lon: 180.5, TargetTime: target},
			wantField: "long",
		},
		{
			name:      "longitude too small",
			req:       forecast.Request{Lat: 52.37, Lon: -181, TargetTime: target},
			wantField: "long",
		},
		{
			name:      "zero target time",
			req:       forecast.Request{Lat: 52.37, Lon: 4.89},
			wantField: "date",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if tt.wantField == "" {
				assert.NoError(t, err)
				return
			}

			var verr *forecast.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.wantField, verr.Field)
		})
	}
}

func TestJobStatus_String(t *testing.T) {
	assert.Equal(t, "pending", forecast.StatusPending.String())
	assert.Equal(t, "ready", forecast.StatusReady.String())
	assert.Equal(t, "failed", forecast.StatusFailed.String())
}

func TestJobStatus_Terminal(t *testing.T) {
	assert.False(t, forecast.StatusPending.Terminal())
	assert.True(t, forecast.StatusReady.Terminal())
	assert.True(t, forecast.StatusFailed.Terminal())
}
