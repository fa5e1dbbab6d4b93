package engine

import (
	"time"

	"github.com/shopspring/decimal"
)

// Candidate is a proposed absence under evaluation. It is never persisted
// here.
type Candidate struct {
	EmployeeID string          `json:"employeeId"`
	TypeCode   string          `json:"leaveType"`
	StartDate  time.Time       `json:"startDate"`
	EndDate    time.Time       `json:"endDate"`
	Days       decimal.Decimal `json:"days"`
	HalfDay    bool            `json:"halfDay"`
	Reason     string          `json:"reason,omitempty"`
}

// EmployeeContext is the repository view of the requesting employee.
type EmployeeContext struct {
	ID                  string
	Department          string
	Gender              string
	HireDate            time.Time
	OnboardingCompleted bool
}

// History carries the approved-request lookbacks needed for the
// consecutive-leave escalation triggers.
type History struct {
	// ApprovedEndingLast30Days counts approved requests whose end date falls
	// within the 30 days before the candidate start.
	ApprovedEndingLast30Days int
	// NearestApprovedEnd is the latest approved end date on or before the
	// candidate start, zero when none exists.
	NearestApprovedEnd time.Time
}

// Evaluation is the accumulated local rule outcome.
type Evaluation struct {
	Violations  []string `json:"violations"`
	Suggestions []string `json:"suggestions"`
	Blocking    bool     `json:"blocking"`
}

const (
	StatusApproved  = "approved"
	StatusEscalated = "escalated"
	StatusRejected  = "rejected"
)

// Decision is the final orchestration output.
type Decision struct {
	Status      string   `json:"status"`
	Approved    bool     `json:"approved"`
	Confidence  float64  `json:"confidence"`
	Explanation string   `json:"explanation"`
	Reason      string   `json:"decisionReason"`
	Violations  []string `json:"violations"`
	Suggestions []string `json:"suggestions"`
	Fallback    bool     `json:"fallback"`
}

func decimalFromInt(v int) decimal.Decimal {
	return decimal.NewFromInt(int64(v))
}

// NoticeDays is the calendar-day ceiling between now and the start date.
// A start on or before now yields zero notice.
func NoticeDays(start, now time.Time) int {
	diff := start.Sub(now)
	if diff <= 0 {
		return 0
	}
	days := int(diff / (24 * time.Hour))
	if diff%(24*time.Hour) != 0 {
		days++
	}
	return days
}
