package engine

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"leavemind/internal/domain/balance"
	"leavemind/internal/domain/team"
)

type stubOracle struct {
	resp *OracleResponse
	err  error
	got  *OracleRequest
}

func (s *stubOracle) Assess(ctx context.Context, req OracleRequest) (*OracleResponse, error) {
	s.got = &req
	return s.resp, s.err
}

func floatPtr(v float64) *float64 { return &v }

func cleanInput() Input {
	// 1-day CL request with 10 days' notice, healthy team and balance.
	return Input{
		Policy:     testPolicy(),
		Candidate:  candidate("CL", "1", 10, 1),
		Team:       okTeam(),
		Balance:    okBalance(),
		Evaluation: Evaluation{},
		Employee:   okEmployee(),
		Now:        evalNow,
	}
}

func TestDecideOracleApproves(t *testing.T) {
	oracle := &stubOracle{resp: &OracleResponse{
		Approved:   true,
		Message:    "looks fine",
		Confidence: floatPtr(0.9),
	}}

	decision := Decide(context.Background(), oracle, cleanInput())

	require.Equal(t, StatusApproved, decision.Status)
	require.True(t, decision.Approved)
	require.Equal(t, 0.9, decision.Confidence)
	require.False(t, decision.Fallback)
}

func TestDecideBlockingOverridesOracle(t *testing.T) {
	oracle := &stubOracle{resp: &OracleResponse{Approved: true, Confidence: floatPtr(0.99)}}
	in := cleanInput()
	in.Evaluation = Evaluation{
		Violations: []string{"2026-03-12 falls within year-end freeze"},
		Blocking:   true,
	}

	decision := Decide(context.Background(), oracle, in)

	require.False(t, decision.Approved)
	require.Equal(t, StatusRejected, decision.Status)
}

func TestDecideOracleVerdictRespectsLadder(t *testing.T) {
	oracle := &stubOracle{resp: &OracleResponse{Approved: true}}
	in := cleanInput()
	// EL is outside the default auto-approve set.
	in.Candidate.TypeCode = "EL"

	decision := Decide(context.Background(), oracle, in)

	require.False(t, decision.Approved)
	require.Equal(t, StatusEscalated, decision.Status)
}

func TestDecideMergeOrderLocalFirst(t *testing.T) {
	oracle := &stubOracle{resp: &OracleResponse{
		Approved:    false,
		Violations:  []string{"oracle violation"},
		Suggestions: []string{"oracle suggestion"},
	}}
	in := cleanInput()
	in.Evaluation = Evaluation{
		Violations:  []string{"local violation"},
		Suggestions: []string{"local suggestion"},
	}

	decision := Decide(context.Background(), oracle, in)

	require.Equal(t, []string{"local violation", "oracle violation"}, decision.Violations)
	require.Equal(t, []string{"local suggestion", "oracle suggestion"}, decision.Suggestions)
}

func TestDecideFallbackCleanApproves(t *testing.T) {
	oracle := &stubOracle{err: ErrOracleUnavailable}

	decision := Decide(context.Background(), oracle, cleanInput())

	require.True(t, decision.Approved)
	require.Equal(t, 0.75, decision.Confidence)
	require.True(t, decision.Fallback)
	require.Contains(t, decision.Explanation, "unavailable")
}

func TestDecideFallbackDeterministic(t *testing.T) {
	oracle := &stubOracle{err: errors.New("connection refused")}
	in := cleanInput()
	in.Evaluation = Evaluation{Violations: []string{"Insufficient balance: 2 days remaining, 3 requested"}}

	first := Decide(context.Background(), oracle, in)
	second := Decide(context.Background(), oracle, in)

	require.Equal(t, first, second)
	require.False(t, first.Approved)
	require.Equal(t, 0.5, first.Confidence)
	require.True(t, first.Fallback)
}

func TestDecideFallbackNeverApprovesWithViolations(t *testing.T) {
	oracle := &stubOracle{err: ErrOracleUnavailable}
	in := cleanInput()
	in.Evaluation = Evaluation{Violations: []string{"any violation"}}

	decision := Decide(context.Background(), oracle, in)

	require.False(t, decision.Approved)
	require.Equal(t, StatusEscalated, decision.Status)
}

func TestDecideBalanceScenario(t *testing.T) {
	// SL quota 15, remaining 2, requesting 3.
	in := cleanInput()
	in.Candidate = candidate("SL", "3", 10, 3)
	in.Balance = balance.Balance{Remaining: dec("2"), Total: dec("15"), Used: dec("13")}
	in.Evaluation = Evaluate(in.Policy, in.Candidate, in.Team, in.Balance, in.Employee, in.Now)
	oracle := &stubOracle{resp: &OracleResponse{Approved: true}}

	decision := Decide(context.Background(), oracle, in)

	require.False(t, decision.Approved)
	found := false
	for _, v := range decision.Violations {
		if v == "Insufficient balance: 2 days remaining, 3 requested" {
			found = true
		}
	}
	require.True(t, found, "expected balance violation, got %v", decision.Violations)
}

func TestDecideConsecutiveProximity(t *testing.T) {
	oracle := &stubOracle{err: ErrOracleUnavailable}
	in := cleanInput()
	// Previous approved leave ended 2 days before this start.
	in.History = History{NearestApprovedEnd: in.Candidate.StartDate.AddDate(0, 0, -2)}

	decision := Decide(context.Background(), oracle, in)

	require.False(t, decision.Approved)
	found := false
	for _, s := range decision.Suggestions {
		if len(s) > 0 && containsAll(s, "within 7 days") {
			found = true
		}
	}
	require.True(t, found, "expected proximity suggestion, got %v", decision.Suggestions)
}

func TestDecideConsecutiveFrequency(t *testing.T) {
	oracle := &stubOracle{err: ErrOracleUnavailable}
	in := cleanInput()
	in.History = History{ApprovedEndingLast30Days: 2}

	decision := Decide(context.Background(), oracle, in)

	require.False(t, decision.Approved)
	found := false
	for _, s := range decision.Suggestions {
		if containsAll(s, "last 30 days") {
			found = true
		}
	}
	require.True(t, found, "expected frequency suggestion, got %v", decision.Suggestions)
}

func TestDecideLowBalanceTrigger(t *testing.T) {
	oracle := &stubOracle{err: ErrOracleUnavailable}
	in := cleanInput()
	in.Balance = balance.Balance{Remaining: dec("2.5"), Total: dec("12"), Used: dec("9.5")}

	decision := Decide(context.Background(), oracle, in)

	// 2.5 - 1 = 1.5 < 2 triggers the low-balance escalation.
	require.False(t, decision.Approved)
	require.Equal(t, StatusEscalated, decision.Status)
}

func TestDecideCoverageTrigger(t *testing.T) {
	oracle := &stubOracle{err: ErrOracleUnavailable}
	in := cleanInput()
	in.Team = team.State{Department: "Engineering", TeamSize: 10, AlreadyOnLeave: 3}

	decision := Decide(context.Background(), oracle, in)
	require.False(t, decision.Approved)

	// Min coverage: 4 - 1 - 1 = 2 >= 2 passes, 3 - 1 - 1 = 1 < 2 fails.
	in.Team = team.State{TeamSize: 3, AlreadyOnLeave: 1}
	decision = Decide(context.Background(), oracle, in)
	require.False(t, decision.Approved)
}

func TestDecideAboveDaysAddsViolation(t *testing.T) {
	oracle := &stubOracle{err: ErrOracleUnavailable}
	in := cleanInput()
	in.Candidate = candidate("CL", "6", 10, 6)
	in.Balance = okBalance()

	decision := Decide(context.Background(), oracle, in)

	require.False(t, decision.Approved)
	found := false
	for _, v := range decision.Violations {
		if containsAll(v, "review threshold") {
			found = true
		}
	}
	require.True(t, found, "expected review-threshold violation, got %v", decision.Violations)
}

func TestDecideOracleRequestCarriesPreViolations(t *testing.T) {
	oracle := &stubOracle{resp: &OracleResponse{Approved: false}}
	in := cleanInput()
	in.Evaluation = Evaluation{Violations: []string{"local violation"}}

	Decide(context.Background(), oracle, in)

	require.NotNil(t, oracle.got)
	require.Equal(t, []string{"local violation"}, oracle.got.PreViolations)
	require.Equal(t, "t1", oracle.got.OrgID)
	require.Equal(t, "1", oracle.got.Days)
}

func containsAll(s, sub string) bool {
	return strings.Contains(s, sub)
}
