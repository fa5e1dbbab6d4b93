package policy

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// LeaveType is one entry in a tenant's leave-type catalog, unique by code.
type LeaveType struct {
	Code              string          `json:"code"`
	Name              string          `json:"name"`
	AnnualQuota       decimal.Decimal `json:"annualQuota"`
	MaxConsecutive    int             `json:"maxConsecutiveDays"`
	MinNoticeDays     int             `json:"minNoticeDays"`
	RequiresDoc       bool            `json:"requiresDoc"`
	HalfDayAllowed    bool            `json:"halfDayAllowed"`
	RequiresApproval  bool            `json:"requiresApproval"`
	GenderRestriction string          `json:"genderRestriction,omitempty"`
	CarryForward      bool            `json:"carryForward"`
	CarryForwardLimit decimal.Decimal `json:"carryForwardLimit"`
	IsPaid            bool            `json:"isPaid"`
}

type RuleFamily string

const (
	RuleBlackout        RuleFamily = "blackout"
	RuleMaxConcurrent   RuleFamily = "max_concurrent"
	RuleMinGap          RuleFamily = "min_gap"
	RuleDepartmentLimit RuleFamily = "department_limit"
)

// Rule is a tenant constraint rule. Exactly one of the config pointers is
// set, matching Family; decoding rejects configs that do not fit the family.
type Rule struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Family      RuleFamily `json:"family"`
	Departments []string   `json:"departments,omitempty"`
	Blocking    bool       `json:"blocking"`
	Priority    int        `json:"priority"`

	Blackout        *BlackoutConfig        `json:"blackout,omitempty"`
	MaxConcurrent   *MaxConcurrentConfig   `json:"maxConcurrent,omitempty"`
	MinGap          *MinGapConfig          `json:"minGap,omitempty"`
	DepartmentLimit *DepartmentLimitConfig `json:"departmentLimit,omitempty"`
}

type BlackoutConfig struct {
	Dates    []string `json:"dates,omitempty"`
	Weekdays []string `json:"weekdays,omitempty"`
}

type MaxConcurrentConfig struct {
	MaxCount      int     `json:"maxCount,omitempty"`
	MaxPercentage float64 `json:"maxPercentage,omitempty"`
}

type MinGapConfig struct {
	GapDays int `json:"gapDays"`
}

type DepartmentLimitConfig struct {
	Limit int `json:"limit"`
}

// DecodeConfig parses a raw JSON rule config into the variant matching the
// rule family.
func (r *Rule) DecodeConfig(raw []byte) error {
	if len(raw) == 0 {
		raw = []byte("{}")
	}
	switch r.Family {
	case RuleBlackout:
		cfg := BlackoutConfig{}
		if err := json.Unmarshal(raw, &cfg); err != nil {
			return fmt.Errorf("rule %s: blackout config: %w", r.ID, err)
		}
		r.Blackout = &cfg
	case RuleMaxConcurrent:
		cfg := MaxConcurrentConfig{}
		if err := json.Unmarshal(raw, &cfg); err != nil {
			return fmt.Errorf("rule %s: max_concurrent config: %w", r.ID, err)
		}
		r.MaxConcurrent = &cfg
	case RuleMinGap:
		cfg := MinGapConfig{}
		if err := json.Unmarshal(raw, &cfg); err != nil {
			return fmt.Errorf("rule %s: min_gap config: %w", r.ID, err)
		}
		r.MinGap = &cfg
	case RuleDepartmentLimit:
		cfg := DepartmentLimitConfig{Limit: 2}
		if err := json.Unmarshal(raw, &cfg); err != nil {
			return fmt.Errorf("rule %s: department_limit config: %w", r.ID, err)
		}
		if cfg.Limit <= 0 {
			cfg.Limit = 2
		}
		r.DepartmentLimit = &cfg
	default:
		return fmt.Errorf("rule %s: unknown family %q", r.ID, r.Family)
	}
	return nil
}

// AppliesToDepartment reports whether the rule covers the given department.
// An empty department list means the rule covers all departments.
func (r *Rule) AppliesToDepartment(department string) bool {
	if len(r.Departments) == 0 {
		return true
	}
	for _, d := range r.Departments {
		if strings.EqualFold(strings.TrimSpace(d), strings.TrimSpace(department)) {
			return true
		}
	}
	return false
}

// BlackoutDates returns the configured dates parsed as UTC midnights.
// Unparseable entries are skipped.
func (c *BlackoutConfig) BlackoutDates() []time.Time {
	var out []time.Time
	for _, raw := range c.Dates {
		parsed, err := time.Parse("2006-01-02", strings.TrimSpace(raw))
		if err != nil {
			continue
		}
		out = append(out, parsed)
	}
	return out
}

// BlackoutWeekdays maps configured weekday names to time.Weekday values.
func (c *BlackoutConfig) BlackoutWeekdays() []time.Weekday {
	var out []time.Weekday
	for _, raw := range c.Weekdays {
		if day, ok := weekdayByName(raw); ok {
			out = append(out, day)
		}
	}
	return out
}

func weekdayByName(name string) (time.Weekday, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "sunday":
		return time.Sunday, true
	case "monday":
		return time.Monday, true
	case "tuesday":
		return time.Tuesday, true
	case "wednesday":
		return time.Wednesday, true
	case "thursday":
		return time.Thursday, true
	case "friday":
		return time.Friday, true
	case "saturday":
		return time.Saturday, true
	}
	return time.Sunday, false
}

type AutoApprove struct {
	MaxDays       decimal.Decimal `json:"maxDays"`
	MinNoticeDays int             `json:"minNoticeDays"`
	AllowedTypes  []string        `json:"allowedTypes"`
}

func (a AutoApprove) AllowsType(code string) bool {
	for _, allowed := range a.AllowedTypes {
		if strings.EqualFold(allowed, code) {
			return true
		}
	}
	return false
}

type EscalationTriggers struct {
	AboveDays         decimal.Decimal `json:"aboveDays"`
	ConsecutiveLeaves bool            `json:"consecutiveLeaves"`
	LowBalance        bool            `json:"lowBalance"`
	DocAboveDays      decimal.Decimal `json:"docAboveDays"`
}

type TeamCoverage struct {
	MaxConcurrent int `json:"maxConcurrent"`
	MinCoverage   int `json:"minCoverage"`
}

// ApprovalSettings is the legacy per-tenant approval configuration blob.
type ApprovalSettings struct {
	AutoApprove AutoApprove        `json:"autoApprove"`
	Escalation  EscalationTriggers `json:"escalation"`
	Coverage    TeamCoverage       `json:"teamCoverage"`
	Blackout    BlackoutConfig     `json:"blackout"`
}

// WorkSchedule holds the tenant's company-wide working arrangement.
type WorkSchedule struct {
	StartTime              string   `json:"startTime"`
	EndTime                string   `json:"endTime"`
	FullDayHours           float64  `json:"fullDayHours"`
	HalfDayHours           float64  `json:"halfDayHours"`
	WorkingDays            []string `json:"workingDays"`
	NegativeBalanceAllowed bool     `json:"negativeBalanceAllowed"`
	ProbationLeaveAllowed  bool     `json:"probationLeaveAllowed"`
}

// IsWorkingDay reports whether the weekday is part of the schedule.
func (ws WorkSchedule) IsWorkingDay(day time.Weekday) bool {
	for _, raw := range ws.WorkingDays {
		if parsed, ok := weekdayByName(raw); ok && parsed == day {
			return true
		}
	}
	return false
}

// BusinessDays counts scheduled working days in the inclusive range.
func (ws WorkSchedule) BusinessDays(start, end time.Time) decimal.Decimal {
	if end.Before(start) {
		return decimal.Zero
	}
	count := 0
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		if ws.IsWorkingDay(d.Weekday()) {
			count++
		}
	}
	return decimal.NewFromInt(int64(count))
}

// TenantPolicy is the immutable per-evaluation view of a tenant's
// configuration.
type TenantPolicy struct {
	TenantID   string           `json:"tenantId"`
	LeaveTypes []LeaveType      `json:"leaveTypes"`
	Rules      []Rule           `json:"rules"`
	Approval   ApprovalSettings `json:"approvalSettings"`
	Schedule   WorkSchedule     `json:"workSchedule"`
}

// TypeByCode resolves a leave type from the catalog, falling back to the
// built-in defaults for unknown codes so evaluation never fails on missing
// configuration.
func (p *TenantPolicy) TypeByCode(code string) LeaveType {
	for _, lt := range p.LeaveTypes {
		if strings.EqualFold(lt.Code, code) {
			return lt
		}
	}
	return DefaultLeaveType(code)
}

// DefaultLeaveType is the fallback type definition for unknown codes.
func DefaultLeaveType(code string) LeaveType {
	return LeaveType{
		Code:             strings.ToUpper(strings.TrimSpace(code)),
		Name:             strings.ToUpper(strings.TrimSpace(code)),
		AnnualQuota:      decimal.NewFromInt(12),
		MaxConsecutive:   5,
		MinNoticeDays:    1,
		RequiresApproval: true,
		HalfDayAllowed:   true,
		IsPaid:           true,
	}
}

// DefaultApprovalSettings is used when a tenant has no stored settings row.
func DefaultApprovalSettings() ApprovalSettings {
	return ApprovalSettings{
		AutoApprove: AutoApprove{
			MaxDays:       decimal.NewFromInt(3),
			MinNoticeDays: 1,
			AllowedTypes:  []string{"CL", "SL"},
		},
		Escalation: EscalationTriggers{
			AboveDays:         decimal.NewFromInt(5),
			ConsecutiveLeaves: true,
			LowBalance:        true,
			DocAboveDays:      decimal.NewFromInt(3),
		},
		Coverage: TeamCoverage{
			MaxConcurrent: 3,
			MinCoverage:   2,
		},
	}
}

// DefaultWorkSchedule is used when a tenant has no stored schedule row.
func DefaultWorkSchedule() WorkSchedule {
	return WorkSchedule{
		StartTime:    "09:00",
		EndTime:      "18:00",
		FullDayHours: 8,
		HalfDayHours: 4,
		WorkingDays:  []string{"monday", "tuesday", "wednesday", "thursday", "friday"},
	}
}
