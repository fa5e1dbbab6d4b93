package engine

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrEmployeeNotFound = errors.New("employee not found")

type StoreAPI interface {
	Employee(ctx context.Context, tenantID, employeeID string) (EmployeeContext, error)
	History(ctx context.Context, tenantID, employeeID string, start time.Time) (History, error)
}

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

func (s *Store) Employee(ctx context.Context, tenantID, employeeID string) (EmployeeContext, error) {
	var emp EmployeeContext
	var hireDate *time.Time
	err := s.DB.QueryRow(ctx, `
    SELECT id, COALESCE(department, ''), COALESCE(gender, ''), hire_date, onboarding_completed
    FROM employees
    WHERE tenant_id = $1 AND id = $2
  `, tenantID, employeeID).Scan(&emp.ID, &emp.Department, &emp.Gender, &hireDate, &emp.OnboardingCompleted)
	if errors.Is(err, pgx.ErrNoRows) {
		return EmployeeContext{}, ErrEmployeeNotFound
	}
	if err != nil {
		return EmployeeContext{}, err
	}
	if hireDate != nil {
		emp.HireDate = *hireDate
	}
	return emp, nil
}

func (s *Store) History(ctx context.Context, tenantID, employeeID string, start time.Time) (History, error) {
	var h History
	err := s.DB.QueryRow(ctx, `
    SELECT COUNT(1)
    FROM leave_requests
    WHERE tenant_id = $1 AND employee_id = $2 AND status = 'approved'
      AND end_date > $3 - INTERVAL '30 days' AND end_date <= $3
  `, tenantID, employeeID, start).Scan(&h.ApprovedEndingLast30Days)
	if err != nil {
		return History{}, err
	}

	var nearest *time.Time
	err = s.DB.QueryRow(ctx, `
    SELECT MAX(end_date)
    FROM leave_requests
    WHERE tenant_id = $1 AND employee_id = $2 AND status = 'approved' AND end_date <= $3
  `, tenantID, employeeID, start).Scan(&nearest)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return History{}, err
	}
	if nearest != nil {
		h.NearestApprovedEnd = *nearest
	}
	return h, nil
}
