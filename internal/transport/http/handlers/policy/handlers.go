package policy

import (
	"net/http"

	"leavemind/internal/domain/policy"
	"leavemind/internal/transport/http/api"
	"leavemind/internal/transport/http/middleware"
)

type Handlers struct {
	Resolver *policy.Resolver
}

func New(resolver *policy.Resolver) *Handlers {
	return &Handlers{Resolver: resolver}
}

// Get handles GET /policy: the fully resolved view, defaults included.
func (h *Handlers) Get(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	org, ok := middleware.GetOrg(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "missing organization context", requestID)
		return
	}

	resolved, err := h.Resolver.Resolve(r.Context(), org.OrgID)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "internal_error", "failed to resolve policy", requestID)
		return
	}
	api.Success(w, resolved, requestID)
}

// Rules handles GET /policy/rules.
func (h *Handlers) Rules(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	org, ok := middleware.GetOrg(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "missing organization context", requestID)
		return
	}

	resolved, err := h.Resolver.Resolve(r.Context(), org.OrgID)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "internal_error", "failed to resolve policy", requestID)
		return
	}
	api.Success(w, map[string]any{"rules": resolved.Rules}, requestID)
}

// ClearCache handles POST /policy/cache/clear so configuration changes take
// effect without waiting out the TTL.
func (h *Handlers) ClearCache(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	org, ok := middleware.GetOrg(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "missing organization context", requestID)
		return
	}

	h.Resolver.Invalidate(org.OrgID)
	api.Success(w, map[string]string{"status": "cleared"}, requestID)
}
