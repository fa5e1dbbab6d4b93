package escalation

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

type StoreAPI interface {
	PendingRequests(ctx context.Context, tenantID string) ([]PendingRequest, error)
	Apply(ctx context.Context, tenantID string, rec Record) (bool, error)
	List(ctx context.Context, tenantID string) ([]Record, error)
}

// Publisher receives outbound escalation events.
type Publisher interface {
	Publish(ctx context.Context, tenantID, employeeID, kind, title, body string) error
}

type Summary struct {
	Scanned   int `json:"scanned"`
	Escalated int `json:"escalated"`
}

// Scheduler advances escalation levels for stale pending requests. It never
// changes request status; humans do that elsewhere.
type Scheduler struct {
	store  StoreAPI
	notify Publisher
}

func NewScheduler(store StoreAPI, notify Publisher) *Scheduler {
	return &Scheduler{store: store, notify: notify}
}

// Plan computes the records a scan at the given time should write. Only
// requests pending at least ScanThresholdHours are touched. The computation
// is pure: the same inputs always produce the same plan, which is what makes
// a rerun of the scan idempotent.
func Plan(items []PendingRequest, now time.Time) []Record {
	var out []Record
	for _, item := range items {
		hours := now.Sub(item.CreatedAt).Hours()
		if hours < ScanThresholdHours {
			continue
		}
		level, reviewer := LevelFor(hours)

		rec := Record{
			RequestID:    item.RequestID,
			Level:        level,
			MaxLevel:     MaxLevel,
			EscalatedTo:  reviewer,
			Reason:       fmt.Sprintf("Pending for %.0f hours without action", hours),
			HoursPending: hours,
			Deadline:     item.StartDate,
		}
		if level < MaxLevel {
			next := now.Add(AutoEscalateAfter)
			rec.AutoEscalateAt = &next
		}
		out = append(out, rec)
	}
	return out
}

// Scan recomputes escalation state for every stale pending request of one
// tenant. Level writes rely on the store's row-level conditions, so
// concurrent scans over the same request cannot regress a level.
func (s *Scheduler) Scan(ctx context.Context, tenantID string, now time.Time) (Summary, error) {
	items, err := s.store.PendingRequests(ctx, tenantID)
	if err != nil {
		return Summary{}, err
	}

	byRequest := make(map[string]PendingRequest, len(items))
	for _, item := range items {
		byRequest[item.RequestID] = item
	}

	summary := Summary{}
	for _, rec := range Plan(items, now) {
		summary.Scanned++
		raised, err := s.store.Apply(ctx, tenantID, rec)
		if err != nil {
			return summary, err
		}
		if !raised || rec.Level <= byRequest[rec.RequestID].CurrentLevel {
			continue
		}
		summary.Escalated++
		if s.notify == nil {
			continue
		}
		item := byRequest[rec.RequestID]
		title := fmt.Sprintf("Leave request escalated to %s", rec.EscalatedTo)
		if err := s.notify.Publish(ctx, tenantID, item.EmployeeID, "escalation.level", title, rec.Reason); err != nil {
			slog.Warn("escalation event publish failed", "tenantId", tenantID, "requestId", rec.RequestID, "err", err)
		}
	}
	return summary, nil
}

// List returns the current escalation records for a tenant.
func (s *Scheduler) List(ctx context.Context, tenantID string) ([]Record, error) {
	return s.store.List(ctx, tenantID)
}
