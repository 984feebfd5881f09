// Package handler provides HTTP handlers for the AirCast API.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"reflect"

	"github.com/rs/zerolog"

	"github.com/aircast/aircast/internal/api/models"
	"github.com/aircast/aircast/internal/api/response"
	"github.com/aircast/aircast/pkg/forecast"
)

// Predictor abstracts the upstream prediction service for the gateway.
type Predictor interface {
	Submit(ctx context.Context, req forecast.Request) (forecast.JobHandle, error)
	Check(ctx context.Context, handle forecast.JobHandle) (forecast.StatusReport, error)
}

// ForecastHandler handles the forecast request/polling endpoints. The
// gateway holds no job state of its own; both endpoints translate between
// the public contract and the prediction service.
type ForecastHandler struct {
	predictor Predictor
	logger    zerolog.Logger
}

// NewForecastHandler creates a new ForecastHandler.
func NewForecastHandler(predictor Predictor, logger zerolog.Logger) *ForecastHandler {
	return &ForecastHandler{
		predictor: predictor,
		logger:    logger,
	}
}

// RequestForecast handles POST /forecast/request-forecast. The body is
// validated before any downstream call: an invalid request never costs a
// prediction submission. On success the prediction service's job handle is
// returned with 202.
func (h *ForecastHandler) RequestForecast(w http.ResponseWriter, r *http.Request) {
	var input models.ForecastRequest
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, r, "invalid request body", decodeFieldErrors(err))
		return
	}

	if fieldErrs := models.Validate(&input); fieldErrs != nil {
		response.BadRequest(w, r, "invalid forecast request", fieldErrs)
		return
	}

	targetTime, err := forecast.ParseTimestamp(input.Date)
	if err != nil {
		response.BadRequest(w, r, "invalid forecast request", []models.FieldError{
			{Field: "date", Message: "must be a parseable timestamp", Code: "INVALID"},
		})
		return
	}

	req := forecast.Request{
		Lat:        *input.Lat,
		Lon:        *input.Long,
		TargetTime: targetTime,
	}

	handle, err := h.predictor.Submit(r.Context(), req)
	if err != nil {
		var verr *forecast.ValidationError
		if errors.As(err, &verr) {
			response.BadRequest(w, r, "invalid forecast request", []models.FieldError{
				{Field: verr.Field, Message: verr.Reason, Code: "OUT_OF_RANGE"},
			})
			return
		}
		h.logger.Error().Err(err).Msg("forecast submission failed")
		response.InternalError(w, r, "forecast request failed")
		return
	}

	h.logger.Info().
		Str("request_id", handle.RequestID).
		Float64("lat", req.Lat).
		Float64("long", req.Lon).
		Time("target_time", req.TargetTime).
		Msg("forecast job submitted")

	response.Accepted(w, r, models.ForecastAccepted{
		RequestID: handle.RequestID,
		Status:    "queued",
	})
}

// CheckForecast handles POST /forecast/check-forecast-request. A job still
// computing yields 202; a finished job yields 200 with the forecast rebuilt
// into the public shape. Downstream errors, failed jobs, and unknown request
// IDs all yield a generic 500: downstream internals are never exposed.
func (h *ForecastHandler) CheckForecast(w http.ResponseWriter, r *http.Request) {
	var input models.ForecastCheckRequest
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, r, "invalid request body", nil)
		return
	}

	report, err := h.predictor.Check(r.Context(), forecast.JobHandle{RequestID: input.RequestID})
	if err != nil {
		h.logger.Error().
			Err(err).
			Str("request_id", input.RequestID).
			Msg("forecast status check failed")
		response.InternalError(w, r, "forecast status check failed")
		return
	}

	for _, warn := range report.Warnings {
		h.logger.Warn().Str("request_id", input.RequestID).Msg(warn)
	}

	switch report.Status {
	case forecast.StatusPending:
		response.Accepted(w, r, models.ForecastPending{
			Status:  "processing",
			Message: "forecast is still being computed",
		})
	case forecast.StatusReady:
		response.JSON(w, r, http.StatusOK, models.NewForecastResult(report.Result))
	default:
		h.logger.Warn().
			Str("request_id", input.RequestID).
			Str("reason", report.Reason).
			Msg("forecast job failed")
		response.InternalError(w, r, "forecast request failed")
	}
}

// decodeFieldErrors maps a JSON decoding failure to a field-level error when
// the offending field is known, e.g. a string where a number was expected.
func decodeFieldErrors(err error) []models.FieldError {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		msg := "is invalid"
		switch typeErr.Type.Kind() {
		case reflect.Float32, reflect.Float64,
			reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			msg = "must be a number"
		case reflect.String:
			msg = "must be a string"
		}
		return []models.FieldError{
			{Field: typeErr.Field, Message: msg, Code: "INVALID"},
		}
	}
	return nil
}
