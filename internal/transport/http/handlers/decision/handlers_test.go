package decision

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"leavemind/internal/domain/balance"
	"leavemind/internal/domain/engine"
	"leavemind/internal/domain/policy"
	"leavemind/internal/domain/team"
	"leavemind/internal/platform/metrics"
	"leavemind/internal/transport/http/api"
	"leavemind/internal/transport/http/middleware"
)

type policyStoreStub struct{}

func (policyStoreStub) LeaveTypes(context.Context, string) ([]policy.LeaveType, error) {
	return nil, nil
}
func (policyStoreStub) Rules(context.Context, string) ([]policy.Rule, error) { return nil, nil }
func (policyStoreStub) ApprovalSettings(context.Context, string) (*policy.ApprovalSettings, error) {
	return nil, nil
}
func (policyStoreStub) WorkSchedule(context.Context, string) (*policy.WorkSchedule, error) {
	return nil, nil
}

type balanceStoreStub struct{}

func (balanceStoreStub) Snapshot(context.Context, string, string, string, int) (*balance.Snapshot, error) {
	return nil, nil
}

type teamStoreStub struct{}

func (teamStoreStub) DepartmentSize(context.Context, string, string) (int, error) { return 10, nil }
func (teamStoreStub) OnLeaveCount(context.Context, string, string, string, time.Time, time.Time) (int, error) {
	return 0, nil
}

type engineStoreStub struct{}

func (engineStoreStub) Employee(_ context.Context, _ string, employeeID string) (engine.EmployeeContext, error) {
	if employeeID == "ghost" {
		return engine.EmployeeContext{}, engine.ErrEmployeeNotFound
	}
	return engine.EmployeeContext{
		ID:                  employeeID,
		Department:          "Engineering",
		HireDate:            time.Now().UTC().AddDate(-2, 0, 0),
		OnboardingCompleted: true,
	}, nil
}

func (engineStoreStub) History(context.Context, string, string, time.Time) (engine.History, error) {
	return engine.History{}, nil
}

func newTestHandlers() *Handlers {
	eng := engine.NewService(
		policy.NewResolver(policyStoreStub{}, time.Minute),
		balance.NewCalculator(balanceStoreStub{}),
		team.NewReader(teamStoreStub{}),
		engineStoreStub{},
		nil,
		nil,
	)
	return New(eng, metrics.New())
}

func postEvaluate(t *testing.T, h *Handlers, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/decisions/evaluate", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Org-ID", "org-1")

	handler := middleware.Auth("")(http.HandlerFunc(h.Evaluate))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) api.Envelope {
	t.Helper()
	var envelope api.Envelope
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&envelope))
	return envelope
}

func TestEvaluateAutoApprovesShortNoticedLeave(t *testing.T) {
	h := newTestHandlers()
	start := time.Now().UTC().AddDate(0, 0, 10).Format("2006-01-02")

	rec := postEvaluate(t, h, `{"employeeId":"emp-1","leaveType":"CL","startDate":"`+start+`","endDate":"`+start+`","days":1}`)
	require.Equal(t, http.StatusOK, rec.Code)

	envelope := decodeEnvelope(t, rec)
	require.True(t, envelope.Success)

	payload, err := json.Marshal(envelope.Data)
	require.NoError(t, err)
	var result engine.Decision
	require.NoError(t, json.Unmarshal(payload, &result))
	require.Equal(t, engine.StatusApproved, result.Status)
	require.True(t, result.Approved)
}

func TestEvaluateRejectsMissingFields(t *testing.T) {
	h := newTestHandlers()

	rec := postEvaluate(t, h, `{"employeeId":"emp-1"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	envelope := decodeEnvelope(t, rec)
	require.False(t, envelope.Success)
	require.Equal(t, "validation_error", envelope.Error.Code)
}

func TestEvaluateRejectsMalformedJSON(t *testing.T) {
	h := newTestHandlers()

	rec := postEvaluate(t, h, `{"employeeId":`)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	envelope := decodeEnvelope(t, rec)
	require.Equal(t, "invalid_json", envelope.Error.Code)
}

func TestEvaluateUnknownEmployeeIsBadRequest(t *testing.T) {
	h := newTestHandlers()
	start := time.Now().UTC().AddDate(0, 0, 10).Format("2006-01-02")

	rec := postEvaluate(t, h, `{"employeeId":"ghost","leaveType":"CL","startDate":"`+start+`","days":1}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	envelope := decodeEnvelope(t, rec)
	require.Equal(t, "validation_error", envelope.Error.Code)
}

func TestEvaluateFillsFieldsFromText(t *testing.T) {
	h := newTestHandlers()

	rec := postEvaluate(t, h, `{"employeeId":"emp-1","text":"I need 2 days of casual leave starting tomorrow"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	envelope := decodeEnvelope(t, rec)
	require.True(t, envelope.Success)
}

func TestEvaluateRejectsInvalidDayGranularity(t *testing.T) {
	h := newTestHandlers()
	start := time.Now().UTC().AddDate(0, 0, 10).Format("2006-01-02")

	rec := postEvaluate(t, h, `{"employeeId":"emp-1","leaveType":"CL","startDate":"`+start+`","days":1.3}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}
