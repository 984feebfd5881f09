package handler

import (
	"net/http"
	"time"

	"github.com/aircast/aircast/internal/api/models"
	"github.com/aircast/aircast/internal/api/response"
	"github.com/aircast/aircast/internal/provider/resilience"
)

// OpsHandler handles operational endpoints.
type OpsHandler struct {
	version   string
	buildTime string
	upstreams *resilience.Registry
}

// NewOpsHandler creates a new OpsHandler. The registry may be nil when no
// upstream health tracking is configured.
func NewOpsHandler(version, buildTime string, upstreams *resilience.Registry) *OpsHandler {
	return &OpsHandler{
		version:   version,
		buildTime: buildTime,
		upstreams: upstreams,
	}
}

// HealthCheck handles GET /v1/ops/health - liveness check.
func (h *OpsHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	health := models.Health{
		Status: models.HealthStatusOK,
		Time:   models.Timestamp(time.Now()),
		Details: map[string]interface{}{
			"version":   h.version,
			"buildTime": h.buildTime,
		},
	}
	response.JSON(w, r, http.StatusOK, health)
}

// ReadinessCheck handles GET /v1/ops/ready - readiness check. The gateway is
// stateless, so readiness is derived from the circuit state of its upstream
// clients.
func (h *OpsHandler) ReadinessCheck(w http.ResponseWriter, r *http.Request) {
	readiness := models.Readiness{
		Status: models.HealthStatusOK,
		Time:   models.Timestamp(time.Now()),
	}

	if h.upstreams != nil {
		for _, u := range h.upstreams.AllHealth() {
			status := models.HealthStatusOK
			switch {
			case u.Degraded():
				status = models.HealthStatusDegraded
			case !u.Healthy():
				status = models.HealthStatusFail
			}

			upstream := models.UpstreamStatus{
				Name:   u.Name,
				Status: status,
			}
			if u.LastSuccessAt != nil {
				ts := models.Timestamp(*u.LastSuccessAt)
				upstream.LastSuccessAt = &ts
			}
			if u.LastFailureAt != nil {
				ts := models.Timestamp(*u.LastFailureAt)
				upstream.LastFailureAt = &ts
			}
			if u.LastError != "" {
				msg := u.LastError
				upstream.Message = &msg
			}

			readiness.Upstreams = append(readiness.Upstreams, upstream)
			if status == models.HealthStatusFail {
				readiness.Status = models.HealthStatusDegraded
			}
		}
	}

	response.JSON(w, r, http.StatusOK, readiness)
}
