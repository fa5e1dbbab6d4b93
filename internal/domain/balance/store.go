package balance

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

func (s *Store) Snapshot(ctx context.Context, tenantID, employeeID, typeCode string, year int) (*Snapshot, error) {
	var snapshot Snapshot
	err := s.DB.QueryRow(ctx, `
    SELECT entitlement, carried_forward, used_days, pending_days
    FROM leave_balances
    WHERE tenant_id = $1 AND employee_id = $2 AND leave_type_code = $3 AND cycle_year = $4
  `, tenantID, employeeID, typeCode, year).Scan(
		&snapshot.Entitlement, &snapshot.CarriedForward, &snapshot.Used, &snapshot.Pending)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &snapshot, nil
}
