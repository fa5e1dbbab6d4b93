package escalation

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

func (s *Store) PendingRequests(ctx context.Context, tenantID string) ([]PendingRequest, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT r.id, r.employee_id, r.created_at, r.start_date, COALESCE(e.current_level, 0)
    FROM leave_requests r
    LEFT JOIN escalations e ON e.request_id = r.id AND e.tenant_id = r.tenant_id
    WHERE r.tenant_id = $1 AND r.status = 'pending'
    ORDER BY r.created_at
  `, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []PendingRequest
	for rows.Next() {
		var item PendingRequest
		if err := rows.Scan(&item.RequestID, &item.EmployeeID, &item.CreatedAt, &item.StartDate, &item.CurrentLevel); err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	return out, rows.Err()
}

// Apply upserts one escalation record. The level can only move up; the
// conditional update serializes concurrent scans over the same request.
func (s *Store) Apply(ctx context.Context, tenantID string, rec Record) (bool, error) {
	tag, err := s.DB.Exec(ctx, `
    INSERT INTO escalations (tenant_id, request_id, current_level, max_level, escalated_to, reason, hours_pending, deadline, auto_escalate_at, updated_at)
    VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,now())
    ON CONFLICT (tenant_id, request_id) DO UPDATE
    SET current_level = EXCLUDED.current_level,
        escalated_to = EXCLUDED.escalated_to,
        reason = EXCLUDED.reason,
        hours_pending = EXCLUDED.hours_pending,
        deadline = EXCLUDED.deadline,
        auto_escalate_at = EXCLUDED.auto_escalate_at,
        updated_at = now()
    WHERE escalations.current_level <= EXCLUDED.current_level
  `, tenantID, rec.RequestID, rec.Level, rec.MaxLevel, rec.EscalatedTo, rec.Reason, rec.HoursPending, rec.Deadline, rec.AutoEscalateAt)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (s *Store) List(ctx context.Context, tenantID string) ([]Record, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT request_id, current_level, max_level, escalated_to, reason, hours_pending, deadline, auto_escalate_at
    FROM escalations e
    WHERE tenant_id = $1
      AND EXISTS (
        SELECT 1 FROM leave_requests r
        WHERE r.tenant_id = e.tenant_id AND r.id = e.request_id AND r.status = 'pending'
      )
    ORDER BY current_level DESC, deadline
  `, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var rec Record
		if err := rows.Scan(&rec.RequestID, &rec.Level, &rec.MaxLevel, &rec.EscalatedTo, &rec.Reason, &rec.HoursPending, &rec.Deadline, &rec.AutoEscalateAt); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}
