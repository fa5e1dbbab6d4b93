package engine

import (
	"fmt"
	"math"
	"strings"
	"time"

	"leavemind/internal/domain/balance"
	"leavemind/internal/domain/policy"
	"leavemind/internal/domain/team"
)

// Evaluate runs the type constraints, tenant rule set, balance check, and
// probation check against a candidate. Every applicable check runs; nothing
// short-circuits, so all violations and suggestions accumulate in order.
func Evaluate(p *policy.TenantPolicy, cand Candidate, state team.State, bal balance.Balance, emp EmployeeContext, now time.Time) Evaluation {
	eval := Evaluation{}
	leaveType := p.TypeByCode(cand.TypeCode)

	evaluateType(&eval, leaveType, cand, emp, now)
	evaluateRules(&eval, p.Rules, cand, state, emp)
	evaluateBalance(&eval, p.Schedule, cand, bal)
	evaluateProbation(&eval, p.Schedule, emp, now)

	return eval
}

func evaluateType(eval *Evaluation, leaveType policy.LeaveType, cand Candidate, emp EmployeeContext, now time.Time) {
	if cand.HalfDay && !leaveType.HalfDayAllowed {
		eval.Violations = append(eval.Violations,
			fmt.Sprintf("Half-day leave is not allowed for %s", leaveType.Code))
	}

	maxConsecutive := decimalFromInt(leaveType.MaxConsecutive)
	if leaveType.MaxConsecutive > 0 && cand.Days.GreaterThan(maxConsecutive) {
		eval.Violations = append(eval.Violations,
			fmt.Sprintf("Requested %s days exceed the maximum of %d consecutive days for %s",
				cand.Days, leaveType.MaxConsecutive, leaveType.Code))
		eval.Suggestions = append(eval.Suggestions,
			fmt.Sprintf("Split the request into periods of at most %d days", leaveType.MaxConsecutive))
	}

	if notice := NoticeDays(cand.StartDate, now); notice < leaveType.MinNoticeDays {
		eval.Violations = append(eval.Violations,
			fmt.Sprintf("Requires %d days notice, only %d given", leaveType.MinNoticeDays, notice))
	}

	restriction := strings.ToLower(strings.TrimSpace(leaveType.GenderRestriction))
	gender := strings.ToLower(strings.TrimSpace(emp.Gender))
	if restriction != "" && gender != "" && restriction != gender {
		eval.Violations = append(eval.Violations,
			fmt.Sprintf("%s is restricted to %s employees", leaveType.Code, restriction))
	}
}

func evaluateRules(eval *Evaluation, rules []policy.Rule, cand Candidate, state team.State, emp EmployeeContext) {
	for _, rule := range rules {
		if !rule.AppliesToDepartment(emp.Department) {
			continue
		}

		violated := false
		switch rule.Family {
		case policy.RuleBlackout:
			violated = applyBlackout(eval, rule.Name, *rule.Blackout, cand.StartDate, cand.EndDate)
		case policy.RuleMaxConcurrent:
			violated = applyMaxConcurrent(eval, *rule.MaxConcurrent, state)
		case policy.RuleMinGap:
			// Advisory only: no historical-leave lookup backs a hard check.
			eval.Suggestions = append(eval.Suggestions,
				fmt.Sprintf("Keep at least %d days between leave requests", rule.MinGap.GapDays))
		case policy.RuleDepartmentLimit:
			if state.AlreadyOnLeave >= rule.DepartmentLimit.Limit {
				eval.Violations = append(eval.Violations,
					fmt.Sprintf("Department already has %d employees on leave (limit %d)",
						state.AlreadyOnLeave, rule.DepartmentLimit.Limit))
				violated = true
			}
		}

		if violated && rule.Blocking {
			eval.Blocking = true
		}
	}
}

// applyBlackout records a violation per matched blackout date and one per
// blocked weekday touching the range. Weekday rules apply to the whole
// range, not per day.
func applyBlackout(eval *Evaluation, ruleName string, cfg policy.BlackoutConfig, start, end time.Time) bool {
	violated := false
	label := ruleName
	if label == "" {
		label = "blackout period"
	}

	for _, blocked := range cfg.BlackoutDates() {
		for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
			if sameDate(d, blocked) {
				eval.Violations = append(eval.Violations,
					fmt.Sprintf("%s falls within %s", blocked.Format("2006-01-02"), label))
				violated = true
			}
		}
	}
	if violated {
		eval.Suggestions = append(eval.Suggestions,
			fmt.Sprintf("Choose dates outside %s", label))
	}

	for _, blockedDay := range cfg.BlackoutWeekdays() {
		if rangeTouchesWeekday(start, end, blockedDay) {
			eval.Violations = append(eval.Violations,
				fmt.Sprintf("Leave on %s is blocked by %s", blockedDay, label))
			violated = true
		}
	}
	return violated
}

func applyMaxConcurrent(eval *Evaluation, cfg policy.MaxConcurrentConfig, state team.State) bool {
	limit := cfg.MaxCount
	if limit <= 0 {
		pct := cfg.MaxPercentage
		if pct <= 0 {
			pct = 10
		}
		limit = int(math.Ceil(float64(state.TeamSize) * pct / 100))
		if limit < 1 {
			limit = 1
		}
	}
	if state.AlreadyOnLeave >= limit {
		eval.Violations = append(eval.Violations,
			fmt.Sprintf("%d team members already on leave (limit %d)", state.AlreadyOnLeave, limit))
		eval.Suggestions = append(eval.Suggestions, "Try different dates when fewer team members are away")
		return true
	}
	return false
}

func evaluateBalance(eval *Evaluation, schedule policy.WorkSchedule, cand Candidate, bal balance.Balance) {
	if bal.Remaining.GreaterThanOrEqual(cand.Days) {
		return
	}
	if schedule.NegativeBalanceAllowed {
		eval.Suggestions = append(eval.Suggestions,
			fmt.Sprintf("This request takes the balance to %s days", bal.Remaining.Sub(cand.Days)))
		return
	}
	eval.Violations = append(eval.Violations,
		fmt.Sprintf("Insufficient balance: %s days remaining, %s requested", bal.Remaining, cand.Days))
}

func evaluateProbation(eval *Evaluation, schedule policy.WorkSchedule, emp EmployeeContext, now time.Time) {
	if schedule.ProbationLeaveAllowed || emp.OnboardingCompleted || emp.HireDate.IsZero() {
		return
	}
	if emp.HireDate.AddDate(0, 0, 90).After(now) {
		eval.Violations = append(eval.Violations,
			"Leave is not available during the probation period")
	}
}

func sameDate(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month() && a.Day() == b.Day()
}

func rangeTouchesWeekday(start, end time.Time, day time.Weekday) bool {
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		if d.Weekday() == day {
			return true
		}
	}
	return false
}
