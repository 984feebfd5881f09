// Package forecast provides the domain model for on-demand air quality
// forecasts: validated requests, job handles, poll status, and normalized
// forecast results.
package forecast

import (
	"errors"
	"fmt"
	"time"
)

// Domain errors.
var (
	ErrHandleMissing      = errors.New("prediction service returned no job handle")
	ErrServiceUnavailable = errors.New("prediction service unavailable")
	ErrJobNotFound        = errors.New("forecast job not found")
)

// ValidationError reports a request field that failed validation.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// Request is a forecast request for a geographic point at a target time.
type Request struct {
	Lat        float64
	Lon        float64
	TargetTime time.Time
}

// Validate checks the request against the accepted coordinate ranges and
// requires a usable target instant. The first failing field is reported.
func (r Request) Validate() error {
	if r.Lat < -90 || r.Lat > 90 {
		return &ValidationError{Field: "lat", Reason: "must be between -90 and 90"}
	}
	if r.Lon < -180 || r.Lon > 180 {
		return &ValidationError{Field: "long", Reason: "must be between -180 and 180"}
	}
	if r.TargetTime.IsZero() {
		return &ValidationError{Field: "date", Reason: "must be a valid timestamp"}
	}
	return nil
}

// JobHandle correlates a submitted forecast request with later status checks.
// A handle is retired once its polling session reaches a terminal state.
type JobHandle struct {
	RequestID string
}

// JobStatus is the observed state of a prediction job at one status check.
type JobStatus int

const (
	StatusPending JobStatus = iota
	StatusReady
	StatusFailed
)

// String returns the lowercase name of the status.
func (s JobStatus) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusReady:
		return "ready"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Terminal reports whether no further status checks should be issued.
func (s JobStatus) Terminal() bool {
	return s == StatusReady || s == StatusFailed
}

// StatusReport is the outcome of a single status check.
type StatusReport struct {
	Status JobStatus

	// Result is set only when Status is StatusReady.
	Result *Result

	// Reason carries a human-readable failure description when Status is
	// StatusFailed.
	Reason string

	// Warnings lists forecast points that were dropped or defaulted while
	// normalizing the result.
	Warnings []string
}

// ConditionReading is an air quality reading for a single instant.
type ConditionReading struct {
	Datetime          time.Time          `json:"datetime"`
	AQI               int                `json:"aqi"`
	Category          string             `json:"category"`
	DominantPollutant string             `json:"dominant_pollutant"`
	Pollutants        map[string]float64 `json:"pollutants,omitempty"`
	Weather           map[string]float64 `json:"weather,omitempty"`
}

// Result is a finished forecast: current conditions plus a forecast series
// ordered ascending by datetime. Results are immutable once built.
type Result struct {
	CurrentConditions ConditionReading   `json:"current_conditions"`
	Forecast          []ConditionReading `json:"forecast"`
}
