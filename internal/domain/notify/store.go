package notify

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

func (s *Store) CreateEvent(ctx context.Context, tenantID, employeeID, kind, title, body string) error {
	_, err := s.DB.Exec(ctx, `
    INSERT INTO notifications (tenant_id, employee_id, kind, title, body)
    VALUES ($1,$2,$3,$4,$5)
  `, tenantID, employeeID, kind, title, body)
	return err
}

func (s *Store) EmployeeEmail(ctx context.Context, tenantID, employeeID string) (string, error) {
	var email string
	err := s.DB.QueryRow(ctx, `
    SELECT COALESCE(email, '')
    FROM employees
    WHERE tenant_id = $1 AND id = $2
  `, tenantID, employeeID).Scan(&email)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", nil
	}
	return email, err
}

func (s *Store) ListEvents(ctx context.Context, tenantID string, limit, offset int) ([]Event, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, employee_id, kind, title, body, created_at::text
    FROM notifications
    WHERE tenant_id = $1
    ORDER BY created_at DESC
    LIMIT $2 OFFSET $3
  `, tenantID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Event
	for rows.Next() {
		var e Event
		if err := rows.Scan(&e.ID, &e.EmployeeID, &e.Kind, &e.Title, &e.Body, &e.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
