package decision

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"leavemind/internal/domain/engine"
	"leavemind/internal/domain/extract"
	"leavemind/internal/platform/metrics"
	"leavemind/internal/transport/http/api"
	"leavemind/internal/transport/http/middleware"
	"leavemind/internal/transport/http/shared"
)

type Handlers struct {
	Engine  *engine.Service
	Metrics *metrics.Collector
}

func New(eng *engine.Service, collector *metrics.Collector) *Handlers {
	return &Handlers{Engine: eng, Metrics: collector}
}

type evaluateRequest struct {
	EmployeeID string          `json:"employeeId"`
	LeaveType  string          `json:"leaveType"`
	StartDate  string          `json:"startDate"`
	EndDate    string          `json:"endDate"`
	Days       decimal.Decimal `json:"days"`
	HalfDay    bool            `json:"halfDay"`
	Reason     string          `json:"reason"`
	Text       string          `json:"text"`
}

// Evaluate handles POST /decisions/evaluate. Structured fields always win;
// free text only fills in what the caller left out.
func (h *Handlers) Evaluate(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	org, ok := middleware.GetOrg(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "missing organization context", requestID)
		return
	}

	var req evaluateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON", requestID)
		return
	}
	if req.EmployeeID == "" {
		req.EmployeeID = org.EmployeeID
	}

	now := time.Now().UTC()
	if req.Text != "" {
		applyExtracted(&req, extract.Parse(req.Text, now))
	}

	v := shared.NewValidator()
	v.Required("employeeId", req.EmployeeID, "employee id is required")
	v.Required("leaveType", req.LeaveType, "leave type is required")
	v.Required("startDate", req.StartDate, "start date is required")
	if v.Reject(w, requestID) {
		return
	}

	start, okStart := v.Date("startDate", req.StartDate)
	end := start
	if req.EndDate != "" {
		end, _ = v.Date("endDate", req.EndDate)
	}
	v.DateOrder("startDate", start, "endDate", end)
	if v.Reject(w, requestID) || !okStart {
		return
	}

	days := req.Days
	if req.HalfDay && days.IsZero() {
		days = decimal.NewFromFloat(0.5)
		end = start
	}
	if days.IsZero() {
		resolved, err := h.Engine.Policies.Resolve(r.Context(), org.OrgID)
		if err != nil {
			h.fail(w, requestID, err)
			return
		}
		days = resolved.Schedule.BusinessDays(start, end)
		if days.IsZero() {
			days = decimal.NewFromInt(1)
		}
	}
	if !v.Days("days", days) {
		v.Reject(w, requestID)
		return
	}

	cand := engine.Candidate{
		EmployeeID: req.EmployeeID,
		TypeCode:   req.LeaveType,
		StartDate:  start,
		EndDate:    end,
		Days:       days,
		HalfDay:    req.HalfDay,
		Reason:     req.Reason,
	}

	result, err := h.Engine.Evaluate(r.Context(), org.OrgID, cand)
	if err != nil {
		h.fail(w, requestID, err)
		return
	}

	if h.Metrics != nil {
		h.Metrics.RecordDecision(result.Status, result.Fallback)
	}
	api.Success(w, result, requestID)
}

func applyExtracted(req *evaluateRequest, info extract.Info) {
	if req.LeaveType == "" {
		req.LeaveType = info.TypeCode
	}
	if req.StartDate == "" && !info.StartDate.IsZero() {
		req.StartDate = info.StartDate.Format("2006-01-02")
	}
	if req.EndDate == "" && !info.EndDate.IsZero() {
		req.EndDate = info.EndDate.Format("2006-01-02")
	}
	if req.Days.IsZero() && !info.Days.IsZero() {
		req.Days = info.Days
	}
	if !req.HalfDay {
		req.HalfDay = info.HalfDay
	}
}

func (h *Handlers) fail(w http.ResponseWriter, requestID string, err error) {
	var storage *engine.StorageError
	switch {
	case errors.Is(err, engine.ErrInvalidCandidate):
		api.Fail(w, http.StatusBadRequest, "validation_error", err.Error(), requestID)
	case errors.As(err, &storage) && storage.Transient:
		slog.Warn("evaluation storage unavailable", "op", storage.Op, "err", storage.Err)
		api.Fail(w, http.StatusServiceUnavailable, "storage_unavailable", "evaluation storage is temporarily unavailable", requestID)
	default:
		slog.Error("evaluation failed", "err", err)
		api.Fail(w, http.StatusInternalServerError, "internal_error", "evaluation failed", requestID)
	}
}
