package team

import (
	"context"
	"time"
)

// State is the live coverage snapshot for one department and date window.
type State struct {
	Department     string `json:"department"`
	TeamSize       int    `json:"teamSize"`
	AlreadyOnLeave int    `json:"alreadyOnLeave"`
}

// Available is the head count left if the requester also goes on leave.
func (s State) Available() int {
	return s.TeamSize - s.AlreadyOnLeave - 1
}

type StoreAPI interface {
	DepartmentSize(ctx context.Context, tenantID, department string) (int, error)
	OnLeaveCount(ctx context.Context, tenantID, department, excludeEmployeeID string, start, end time.Time) (int, error)
}

type Reader struct {
	store StoreAPI
}

func NewReader(store StoreAPI) *Reader {
	return &Reader{store: store}
}

// Snapshot reads team size and the distinct employees with approved leave
// overlapping the window, excluding the requester.
func (r *Reader) Snapshot(ctx context.Context, tenantID, department, excludeEmployeeID string, start, end time.Time) (State, error) {
	size, err := r.store.DepartmentSize(ctx, tenantID, department)
	if err != nil {
		return State{}, err
	}
	onLeave, err := r.store.OnLeaveCount(ctx, tenantID, department, excludeEmployeeID, start, end)
	if err != nil {
		return State{}, err
	}
	return State{Department: department, TeamSize: size, AlreadyOnLeave: onLeave}, nil
}
