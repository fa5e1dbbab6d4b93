package team

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

func (s *Store) DepartmentSize(ctx context.Context, tenantID, department string) (int, error) {
	var count int
	err := s.DB.QueryRow(ctx, `
    SELECT COUNT(1)
    FROM employees
    WHERE tenant_id = $1 AND department = $2 AND active
  `, tenantID, department).Scan(&count)
	return count, err
}

func (s *Store) OnLeaveCount(ctx context.Context, tenantID, department, excludeEmployeeID string, start, end time.Time) (int, error) {
	var count int
	err := s.DB.QueryRow(ctx, `
    SELECT COUNT(DISTINCT r.employee_id)
    FROM leave_requests r
    JOIN employees e ON r.employee_id = e.id AND e.tenant_id = r.tenant_id
    WHERE r.tenant_id = $1
      AND e.department = $2
      AND r.employee_id <> $3
      AND r.status = 'approved'
      AND NOT (r.end_date < $4 OR r.start_date > $5)
  `, tenantID, department, excludeEmployeeID, start, end).Scan(&count)
	return count, err
}
