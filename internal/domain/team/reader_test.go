package team

import (
	"context"
	"testing"
	"time"
)

type stubStore struct {
	size    int
	onLeave int

	gotExclude string
	gotStart   time.Time
	gotEnd     time.Time
}

func (s *stubStore) DepartmentSize(ctx context.Context, tenantID, department string) (int, error) {
	return s.size, nil
}

func (s *stubStore) OnLeaveCount(ctx context.Context, tenantID, department, excludeEmployeeID string, start, end time.Time) (int, error) {
	s.gotExclude = excludeEmployeeID
	s.gotStart = start
	s.gotEnd = end
	return s.onLeave, nil
}

func TestSnapshot(t *testing.T) {
	store := &stubStore{size: 8, onLeave: 2}
	reader := NewReader(store)
	start := time.Date(2026, 4, 6, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 4, 8, 0, 0, 0, 0, time.UTC)

	state, err := reader.Snapshot(context.Background(), "t1", "Engineering", "e1", start, end)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if state.TeamSize != 8 || state.AlreadyOnLeave != 2 {
		t.Fatalf("unexpected state: %+v", state)
	}
	if state.Available() != 5 {
		t.Fatalf("expected 5 available, got %d", state.Available())
	}
	if store.gotExclude != "e1" {
		t.Fatalf("requester must be excluded, got %q", store.gotExclude)
	}
	if !store.gotStart.Equal(start) || !store.gotEnd.Equal(end) {
		t.Fatal("window must be passed through unchanged")
	}
}
