package escalation

import "time"

const (
	MaxLevel = 3

	// ScanThresholdHours is the minimum pending age before a request enters
	// the scan set.
	ScanThresholdHours = 24

	// AutoEscalateAfter schedules the next automatic escalation check.
	AutoEscalateAfter = 24 * time.Hour
)

// Record is the escalation state for one pending request.
type Record struct {
	RequestID      string     `json:"requestId"`
	Level          int        `json:"currentLevel"`
	MaxLevel       int        `json:"maxLevel"`
	EscalatedTo    string     `json:"escalatedTo"`
	Reason         string     `json:"reason"`
	HoursPending   float64    `json:"hoursPending"`
	Deadline       time.Time  `json:"deadline"`
	AutoEscalateAt *time.Time `json:"autoEscalateAt"`
}

// PendingRequest is the scan-set view of a request still awaiting a human
// decision. CurrentLevel is zero when no escalation record exists yet.
type PendingRequest struct {
	RequestID    string
	EmployeeID   string
	CreatedAt    time.Time
	StartDate    time.Time
	CurrentLevel int
}

// LevelFor recomputes the escalation level from elapsed pending hours. The
// level is a step function of age, not an increment: a request discovered at
// hour 80 goes straight to level 3.
func LevelFor(hoursPending float64) (int, string) {
	switch {
	case hoursPending > 72:
		return 3, "HR Director"
	case hoursPending > 48:
		return 2, "HR Manager"
	default:
		return 1, "Manager"
	}
}
