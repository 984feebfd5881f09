package models

import (
	"github.com/aircast/aircast/pkg/forecast"
)

// ForecastRequest is the request body for POST /forecast/request-forecast.
// Coordinates are pointers so a missing field can be told apart from zero,
// which is a valid coordinate.
type ForecastRequest struct {
	Long *float64 `json:"long" validate:"required,gte=-180,lte=180"`
	Lat  *float64 `json:"lat" validate:"required,gte=-90,lte=90"`
	Date string   `json:"date" validate:"required"`
}

// ForecastAccepted is the 202 response for a submitted forecast request.
type ForecastAccepted struct {
	RequestID string `json:"requestId"`
	Status    string `json:"status"`
}

// ForecastCheckRequest is the request body for
// POST /forecast/check-forecast-request.
type ForecastCheckRequest struct {
	RequestID string `json:"requestId"`
}

// ForecastPending is the 202 response while a forecast job is still running.
type ForecastPending struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// ConditionReading is one air quality reading in a forecast response.
type ConditionReading struct {
	Datetime          *Timestamp         `json:"datetime,omitempty"`
	AQI               int                `json:"aqi"`
	Category          string             `json:"category"`
	DominantPollutant string             `json:"dominant_pollutant"`
	Pollutants        map[string]float64 `json:"pollutants,omitempty"`
	Weather           map[string]float64 `json:"weather,omitempty"`
}

// ForecastResult is the 200 response for a finished forecast. The status
// field restates readiness in the body so the job state does not depend on
// the transport status code alone.
type ForecastResult struct {
	Status            string             `json:"status"`
	CurrentConditions ConditionReading   `json:"current_conditions"`
	Forecast          []ConditionReading `json:"forecast"`
}

// NewForecastResult rebuilds the public forecast response field-by-field
// from the domain result, so the public contract stays stable regardless of
// the upstream payload shape.
func NewForecastResult(result *forecast.Result) ForecastResult {
	out := ForecastResult{
		Status:            "ready",
		CurrentConditions: newConditionReading(result.CurrentConditions),
		Forecast:          make([]ConditionReading, 0, len(result.Forecast)),
	}
	for _, reading := range result.Forecast {
		out.Forecast = append(out.Forecast, newConditionReading(reading))
	}
	return out
}

func newConditionReading(r forecast.ConditionReading) ConditionReading {
	reading := ConditionReading{
		AQI:               r.AQI,
		Category:          r.Category,
		DominantPollutant: r.DominantPollutant,
		Pollutants:        r.Pollutants,
		Weather:           r.Weather,
	}
	if !r.Datetime.IsZero() {
		ts := Timestamp(r.Datetime)
		reading.Datetime = &ts
	}
	return reading
}
