package engine

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"leavemind/internal/domain/balance"
	"leavemind/internal/domain/policy"
	"leavemind/internal/domain/team"
)

const (
	fallbackApprovedConfidence = 0.75
	fallbackEscalateConfidence = 0.5
)

// Input is the full snapshot a decision is computed from. Everything is read
// before orchestration starts, so the result is deterministic for a given
// input.
type Input struct {
	Policy     *policy.TenantPolicy
	Candidate  Candidate
	Team       team.State
	Balance    balance.Balance
	Evaluation Evaluation
	Employee   EmployeeContext
	History    History
	Now        time.Time
}

type assessment struct {
	canAutoApprove bool
	violations     []string
	suggestions    []string
	triggers       []string
	blocking       bool
}

// Decide combines the local evaluation with a single bounded oracle call.
// Local policy is authoritative for hard stops: a blocking violation or a
// failed auto-approve ladder forces a non-approved outcome regardless of the
// oracle verdict. When the oracle is unreachable the decision falls back to
// the deterministic local path and is flagged as such.
func Decide(ctx context.Context, oracle OracleClient, in Input) Decision {
	local := assess(in)

	if oracle != nil {
		resp, err := oracle.Assess(ctx, buildOracleRequest(in, local))
		if err == nil {
			return mergeOracle(in, local, resp)
		}
	}
	return fallbackDecision(local)
}

// assess runs the auto-approve ladder in order. Every matched condition
// clears the auto-approve flag; some also contribute violations or
// suggestions that precede any oracle output.
func assess(in Input) assessment {
	out := assessment{
		canAutoApprove: true,
		violations:     append([]string(nil), in.Evaluation.Violations...),
		suggestions:    append([]string(nil), in.Evaluation.Suggestions...),
		blocking:       in.Evaluation.Blocking,
	}
	settings := in.Policy.Approval
	days := in.Candidate.Days
	notice := NoticeDays(in.Candidate.StartDate, in.Now)

	if !settings.AutoApprove.AllowsType(in.Candidate.TypeCode) {
		out.fail(fmt.Sprintf("%s requires manual approval", in.Candidate.TypeCode))
	}
	if days.GreaterThan(settings.AutoApprove.MaxDays) {
		out.fail(fmt.Sprintf("%s days exceed the auto-approve limit of %s", days, settings.AutoApprove.MaxDays))
	}
	if notice < settings.AutoApprove.MinNoticeDays {
		out.fail(fmt.Sprintf("notice of %d days is below the auto-approve minimum of %d", notice, settings.AutoApprove.MinNoticeDays))
	}
	if days.GreaterThan(settings.Escalation.AboveDays) {
		out.fail(fmt.Sprintf("requests above %s days require review", settings.Escalation.AboveDays))
		out.violations = append(out.violations,
			fmt.Sprintf("Requested %s days exceed the %s day review threshold", days, settings.Escalation.AboveDays))
	}
	if settings.Escalation.LowBalance && in.Balance.Remaining.Sub(days).LessThan(decimal.NewFromInt(2)) {
		out.fail(fmt.Sprintf("balance would drop to %s days", in.Balance.Remaining.Sub(days)))
	}
	if settings.Escalation.ConsecutiveLeaves {
		assessConsecutive(&out, in)
	}
	if applyBlackoutAssessment(&out, settings.Blackout, in.Candidate.StartDate, in.Candidate.EndDate) {
		out.fail("requested dates fall in a company blackout period")
	}
	if in.Team.AlreadyOnLeave >= settings.Coverage.MaxConcurrent {
		out.fail(fmt.Sprintf("%d team members already on leave", in.Team.AlreadyOnLeave))
	} else if in.Team.Available() < settings.Coverage.MinCoverage {
		out.fail(fmt.Sprintf("team coverage would drop below %d", settings.Coverage.MinCoverage))
	}

	return out
}

// assessConsecutive applies both consecutive-leave triggers independently:
// frequency over the last 30 days and proximity to the last approved leave.
// The suggestion names whichever condition matched.
func assessConsecutive(out *assessment, in Input) {
	if in.History.ApprovedEndingLast30Days >= 2 {
		out.fail("repeated leave in the last 30 days")
		out.suggestions = append(out.suggestions,
			fmt.Sprintf("%d approved leaves ended within the last 30 days; this request needs review",
				in.History.ApprovedEndingLast30Days))
	}
	if !in.History.NearestApprovedEnd.IsZero() {
		gap := in.Candidate.StartDate.Sub(in.History.NearestApprovedEnd)
		if gap >= 0 && gap <= 7*24*time.Hour {
			out.fail("leave starts within 7 days of the previous leave")
			out.suggestions = append(out.suggestions,
				fmt.Sprintf("Previous approved leave ended %s, within 7 days of this start date",
					in.History.NearestApprovedEnd.Format("2006-01-02")))
		}
	}
}

func applyBlackoutAssessment(out *assessment, cfg policy.BlackoutConfig, start, end time.Time) bool {
	scratch := Evaluation{}
	matched := applyBlackout(&scratch, "the company blackout period", cfg, start, end)
	out.violations = append(out.violations, scratch.Violations...)
	out.suggestions = append(out.suggestions, scratch.Suggestions...)
	return matched
}

func (a *assessment) fail(trigger string) {
	a.canAutoApprove = false
	a.triggers = append(a.triggers, trigger)
}

// mergeOracle appends the oracle's findings after the local ones and applies
// the local authority rule.
func mergeOracle(in Input, local assessment, resp *OracleResponse) Decision {
	approved := resp.Approved
	if local.blocking || !local.canAutoApprove {
		approved = false
	}

	confidence := fallbackEscalateConfidence
	if approved {
		confidence = fallbackApprovedConfidence
	}
	if resp.Confidence != nil {
		confidence = *resp.Confidence
	}

	explanation := resp.Explanation
	if explanation == "" {
		explanation = resp.Message
	}
	reason := resp.DecisionReason
	if reason == "" {
		reason = deriveReason(approved, local)
	}

	return Decision{
		Status:      statusFor(approved, local.blocking),
		Approved:    approved,
		Confidence:  confidence,
		Explanation: explanation,
		Reason:      reason,
		Violations:  append(local.violations, resp.Violations...),
		Suggestions: append(local.suggestions, resp.Suggestions...),
	}
}

// fallbackDecision is the deterministic local verdict used when the oracle
// cannot be reached. It never approves in the presence of a violation.
func fallbackDecision(local assessment) Decision {
	approved := local.canAutoApprove && len(local.violations) == 0 && !local.blocking

	confidence := fallbackEscalateConfidence
	if approved {
		confidence = fallbackApprovedConfidence
	}

	explanation := "Decision service unavailable; the request was evaluated against local policy only."
	if approved {
		explanation += " All checks passed."
	} else if len(local.triggers) > 0 {
		explanation += " Escalated to review: " + strings.Join(local.triggers, "; ") + "."
	} else {
		explanation += " Escalated to review due to policy violations."
	}

	return Decision{
		Status:      statusFor(approved, local.blocking),
		Approved:    approved,
		Confidence:  confidence,
		Explanation: explanation,
		Reason:      deriveReason(approved, local),
		Violations:  local.violations,
		Suggestions: local.suggestions,
		Fallback:    true,
	}
}

func statusFor(approved, blocking bool) string {
	switch {
	case approved:
		return StatusApproved
	case blocking:
		return StatusRejected
	default:
		return StatusEscalated
	}
}

func deriveReason(approved bool, local assessment) string {
	switch {
	case approved:
		return "auto_approved"
	case local.blocking:
		return "blocking_violation"
	case len(local.triggers) > 0:
		return "escalation_trigger"
	default:
		return "policy_violation"
	}
}
