package escalation

import (
	"context"
	"testing"
	"time"
)

func TestLevelForStepFunction(t *testing.T) {
	cases := []struct {
		hours    float64
		level    int
		reviewer string
	}{
		{25, 1, "Manager"},
		{48, 1, "Manager"},
		{50, 2, "HR Manager"},
		{72, 2, "HR Manager"},
		{80, 3, "HR Director"},
		{200, 3, "HR Director"},
	}
	for _, tc := range cases {
		level, reviewer := LevelFor(tc.hours)
		if level != tc.level || reviewer != tc.reviewer {
			t.Fatalf("LevelFor(%v) = %d/%s, want %d/%s", tc.hours, level, reviewer, tc.level, tc.reviewer)
		}
	}
}

func TestPlanSkipsFreshRequests(t *testing.T) {
	now := time.Date(2026, 3, 5, 12, 0, 0, 0, time.UTC)
	items := []PendingRequest{
		{RequestID: "r1", CreatedAt: now.Add(-10 * time.Hour)},
		{RequestID: "r2", CreatedAt: now.Add(-25 * time.Hour)},
	}

	plan := Plan(items, now)

	if len(plan) != 1 {
		t.Fatalf("expected 1 planned record, got %d", len(plan))
	}
	if plan[0].RequestID != "r2" || plan[0].Level != 1 {
		t.Fatalf("unexpected plan: %+v", plan[0])
	}
}

func TestPlanJumpsToComputedLevel(t *testing.T) {
	now := time.Date(2026, 3, 5, 12, 0, 0, 0, time.UTC)
	start := time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC)
	items := []PendingRequest{
		{RequestID: "r1", CreatedAt: now.Add(-80 * time.Hour), StartDate: start, CurrentLevel: 1},
	}

	plan := Plan(items, now)

	if len(plan) != 1 {
		t.Fatalf("expected 1 record, got %d", len(plan))
	}
	rec := plan[0]
	if rec.Level != 3 || rec.EscalatedTo != "HR Director" {
		t.Fatalf("expected direct jump to level 3, got %+v", rec)
	}
	if !rec.Deadline.Equal(start) {
		t.Fatalf("deadline must be the request start date, got %s", rec.Deadline)
	}
	if rec.AutoEscalateAt != nil {
		t.Fatal("autoEscalateAt must be nil at max level")
	}
}

func TestPlanSchedulesNextEscalation(t *testing.T) {
	now := time.Date(2026, 3, 5, 12, 0, 0, 0, time.UTC)
	items := []PendingRequest{
		{RequestID: "r1", CreatedAt: now.Add(-50 * time.Hour)},
	}

	plan := Plan(items, now)

	rec := plan[0]
	if rec.Level != 2 || rec.EscalatedTo != "HR Manager" {
		t.Fatalf("expected level 2, got %+v", rec)
	}
	if rec.AutoEscalateAt == nil || !rec.AutoEscalateAt.Equal(now.Add(24*time.Hour)) {
		t.Fatalf("expected autoEscalateAt now+24h, got %v", rec.AutoEscalateAt)
	}
}

func TestPlanIdempotent(t *testing.T) {
	now := time.Date(2026, 3, 5, 12, 0, 0, 0, time.UTC)
	items := []PendingRequest{
		{RequestID: "r1", CreatedAt: now.Add(-60 * time.Hour)},
		{RequestID: "r2", CreatedAt: now.Add(-30 * time.Hour)},
	}

	first := Plan(items, now)
	second := Plan(items, now)

	if len(first) != len(second) {
		t.Fatalf("plan size changed between runs: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i].Level != second[i].Level || first[i].Reason != second[i].Reason {
			t.Fatalf("plan differs between runs at %d: %+v vs %+v", i, first[i], second[i])
		}
	}
}

type memStore struct {
	items   []PendingRequest
	applied []Record
	raised  bool
}

func (m *memStore) PendingRequests(ctx context.Context, tenantID string) ([]PendingRequest, error) {
	return m.items, nil
}

func (m *memStore) Apply(ctx context.Context, tenantID string, rec Record) (bool, error) {
	m.applied = append(m.applied, rec)
	return m.raised, nil
}

func (m *memStore) List(ctx context.Context, tenantID string) ([]Record, error) {
	return m.applied, nil
}

type memPublisher struct {
	events []string
}

func (m *memPublisher) Publish(ctx context.Context, tenantID, employeeID, kind, title, body string) error {
	m.events = append(m.events, kind+": "+title)
	return nil
}

func TestScanCountsAndNotifies(t *testing.T) {
	now := time.Date(2026, 3, 5, 12, 0, 0, 0, time.UTC)
	store := &memStore{
		raised: true,
		items: []PendingRequest{
			{RequestID: "r1", EmployeeID: "e1", CreatedAt: now.Add(-50 * time.Hour), CurrentLevel: 1},
			{RequestID: "r2", EmployeeID: "e2", CreatedAt: now.Add(-30 * time.Hour), CurrentLevel: 1},
			{RequestID: "r3", EmployeeID: "e3", CreatedAt: now.Add(-2 * time.Hour)},
		},
	}
	publisher := &memPublisher{}
	scheduler := NewScheduler(store, publisher)

	summary, err := scheduler.Scan(context.Background(), "t1", now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if summary.Scanned != 2 {
		t.Fatalf("expected 2 scanned, got %d", summary.Scanned)
	}
	// Only r1 moves from level 1 to 2; r2 stays at level 1.
	if summary.Escalated != 1 {
		t.Fatalf("expected 1 escalated, got %d", summary.Escalated)
	}
	if len(publisher.events) != 1 {
		t.Fatalf("expected 1 event, got %v", publisher.events)
	}
}
