package notifications

import (
	"net/http"
	"strconv"

	"leavemind/internal/domain/notify"
	"leavemind/internal/transport/http/api"
	"leavemind/internal/transport/http/middleware"
)

type Handlers struct {
	Service *notify.Service
}

func New(service *notify.Service) *Handlers {
	return &Handlers{Service: service}
}

// List handles GET /notifications: recent decision and escalation events.
func (h *Handlers) List(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	org, ok := middleware.GetOrg(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "missing organization context", requestID)
		return
	}

	limit := queryInt(r, "limit", 50)
	if limit < 1 || limit > 200 {
		limit = 50
	}
	offset := queryInt(r, "offset", 0)
	if offset < 0 {
		offset = 0
	}

	events, err := h.Service.List(r.Context(), org.OrgID, limit, offset)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "internal_error", "failed to list notifications", requestID)
		return
	}
	api.Success(w, map[string]any{"notifications": events}, requestID)
}

func queryInt(r *http.Request, key string, fallback int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return parsed
}
