package engine

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"leavemind/internal/domain/policy"
)

// ErrOracleUnavailable covers transport failures, timeouts, non-2xx
// responses, and malformed response bodies. Callers fall back to the local
// decision path on it.
var ErrOracleUnavailable = errors.New("oracle unavailable")

type OracleClient interface {
	Assess(ctx context.Context, req OracleRequest) (*OracleResponse, error)
}

type OracleTeamState struct {
	TeamSize       int `json:"team_size"`
	AlreadyOnLeave int `json:"already_on_leave"`
	MinCoverage    int `json:"min_coverage"`
	MaxConcurrent  int `json:"max_concurrent"`
}

type OracleBalance struct {
	Remaining string `json:"remaining"`
	Total     string `json:"total"`
	Used      string `json:"used"`
}

type OracleRequest struct {
	EmployeeID     string              `json:"employee_id"`
	OrgID          string              `json:"org_id"`
	Reason         string              `json:"reason"`
	LeaveType      string              `json:"leave_type"`
	StartDate      string              `json:"start_date"`
	EndDate        string              `json:"end_date"`
	Days           string              `json:"days"`
	HalfDay        bool                `json:"half_day"`
	TeamState      OracleTeamState     `json:"team_state"`
	BlackoutDates  []string            `json:"blackout_dates"`
	Balance        OracleBalance       `json:"balance"`
	TypeConfig     policy.LeaveType    `json:"leave_type_config"`
	WorkSchedule   policy.WorkSchedule `json:"work_schedule"`
	PreViolations  []string            `json:"pre_violations"`
	PreSuggestions []string            `json:"pre_suggestions"`
}

type OracleResponse struct {
	Approved       bool     `json:"approved"`
	Message        string   `json:"message"`
	Violations     []string `json:"violations"`
	Suggestions    []string `json:"suggestions"`
	Confidence     *float64 `json:"confidence,omitempty"`
	Explanation    string   `json:"explanation,omitempty"`
	DecisionReason string   `json:"decision_reason,omitempty"`
}

// HTTPOracle calls the external risk-scoring service. One attempt per
// decision, bounded by the configured timeout; the caller retries naturally
// by re-submitting.
type HTTPOracle struct {
	baseURL string
	client  *http.Client
}

func NewHTTPOracle(baseURL string, timeout time.Duration) *HTTPOracle {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &HTTPOracle{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

func (o *HTTPOracle) Assess(ctx context.Context, req OracleRequest) (*OracleResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("%w: encode request: %v", ErrOracleUnavailable, err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, o.baseURL+"/analyze", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %v", ErrOracleUnavailable, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := o.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrOracleUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: status %d", ErrOracleUnavailable, resp.StatusCode)
	}

	var decoded OracleResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("%w: decode response: %v", ErrOracleUnavailable, err)
	}
	return &decoded, nil
}

func buildOracleRequest(in Input, local assessment) OracleRequest {
	blackout := in.Policy.Approval.Blackout.BlackoutDates()
	dates := make([]string, 0, len(blackout))
	for _, d := range blackout {
		dates = append(dates, d.Format("2006-01-02"))
	}

	return OracleRequest{
		EmployeeID: in.Candidate.EmployeeID,
		OrgID:      in.Policy.TenantID,
		Reason:     in.Candidate.Reason,
		LeaveType:  in.Candidate.TypeCode,
		StartDate:  in.Candidate.StartDate.Format("2006-01-02"),
		EndDate:    in.Candidate.EndDate.Format("2006-01-02"),
		Days:       in.Candidate.Days.String(),
		HalfDay:    in.Candidate.HalfDay,
		TeamState: OracleTeamState{
			TeamSize:       in.Team.TeamSize,
			AlreadyOnLeave: in.Team.AlreadyOnLeave,
			MinCoverage:    in.Policy.Approval.Coverage.MinCoverage,
			MaxConcurrent:  in.Policy.Approval.Coverage.MaxConcurrent,
		},
		BlackoutDates: dates,
		Balance: OracleBalance{
			Remaining: in.Balance.Remaining.String(),
			Total:     in.Balance.Total.String(),
			Used:      in.Balance.Used.String(),
		},
		TypeConfig:     in.Policy.TypeByCode(in.Candidate.TypeCode),
		WorkSchedule:   in.Policy.Schedule,
		PreViolations:  local.violations,
		PreSuggestions: local.suggestions,
	}
}
