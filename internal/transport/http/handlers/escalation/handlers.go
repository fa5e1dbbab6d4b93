package escalation

import (
	"log/slog"
	"net/http"

	"leavemind/internal/domain/escalation"
	"leavemind/internal/platform/jobs"
	"leavemind/internal/platform/metrics"
	"leavemind/internal/transport/http/api"
	"leavemind/internal/transport/http/middleware"
)

type Handlers struct {
	Scheduler *escalation.Scheduler
	Jobs      *jobs.Service
	Metrics   *metrics.Collector
}

func New(scheduler *escalation.Scheduler, background *jobs.Service, collector *metrics.Collector) *Handlers {
	return &Handlers{Scheduler: scheduler, Jobs: background, Metrics: collector}
}

// List handles GET /escalations: escalation records for requests still
// pending.
func (h *Handlers) List(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	org, ok := middleware.GetOrg(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "missing organization context", requestID)
		return
	}

	records, err := h.Scheduler.List(r.Context(), org.OrgID)
	if err != nil {
		slog.Error("escalation list failed", "tenantId", org.OrgID, "err", err)
		api.Fail(w, http.StatusInternalServerError, "internal_error", "failed to list escalations", requestID)
		return
	}
	api.Success(w, map[string]any{"escalations": records}, requestID)
}

// Scan handles POST /escalations/scan: a synchronous sweep for the calling
// tenant, outside the background schedule.
func (h *Handlers) Scan(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	org, ok := middleware.GetOrg(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "missing organization context", requestID)
		return
	}

	summary, err := h.Jobs.ScanNow(r.Context(), org.OrgID)
	if err != nil {
		slog.Error("escalation scan failed", "tenantId", org.OrgID, "err", err)
		api.Fail(w, http.StatusInternalServerError, "internal_error", "escalation scan failed", requestID)
		return
	}
	if h.Metrics != nil {
		h.Metrics.RecordScan()
	}
	api.Success(w, summary, requestID)
}
