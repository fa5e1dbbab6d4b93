package policy

import (
	"context"
	"encoding/json"
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

func (s *Store) LeaveTypes(ctx context.Context, tenantID string) ([]LeaveType, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT code, name, annual_quota, max_consecutive_days, min_notice_days,
           requires_doc, half_day_allowed, requires_approval,
           COALESCE(gender_restriction, ''), carry_forward, carry_forward_limit, is_paid
    FROM leave_types
    WHERE tenant_id = $1 AND active
    ORDER BY code
  `, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var types []LeaveType
	for rows.Next() {
		var lt LeaveType
		if err := rows.Scan(&lt.Code, &lt.Name, &lt.AnnualQuota, &lt.MaxConsecutive, &lt.MinNoticeDays,
			&lt.RequiresDoc, &lt.HalfDayAllowed, &lt.RequiresApproval,
			&lt.GenderRestriction, &lt.CarryForward, &lt.CarryForwardLimit, &lt.IsPaid); err != nil {
			return nil, err
		}
		types = append(types, lt)
	}
	return types, rows.Err()
}

func (s *Store) Rules(ctx context.Context, tenantID string) ([]Rule, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, name, family, COALESCE(departments, '{}'), blocking, priority, config
    FROM tenant_rules
    WHERE tenant_id = $1 AND active
    ORDER BY priority, id
  `, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Rule
	for rows.Next() {
		var r Rule
		var config []byte
		if err := rows.Scan(&r.ID, &r.Name, &r.Family, &r.Departments, &r.Blocking, &r.Priority, &config); err != nil {
			return nil, err
		}
		if err := r.DecodeConfig(config); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *Store) ApprovalSettings(ctx context.Context, tenantID string) (*ApprovalSettings, error) {
	var raw []byte
	err := s.DB.QueryRow(ctx, `
    SELECT settings
    FROM approval_settings
    WHERE tenant_id = $1
  `, tenantID).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	settings := DefaultApprovalSettings()
	if err := json.Unmarshal(raw, &settings); err != nil {
		return nil, err
	}
	return &settings, nil
}

func (s *Store) WorkSchedule(ctx context.Context, tenantID string) (*WorkSchedule, error) {
	var ws WorkSchedule
	err := s.DB.QueryRow(ctx, `
    SELECT start_time, end_time, full_day_hours, half_day_hours, working_days,
           negative_balance_allowed, probation_leave_allowed
    FROM work_schedules
    WHERE tenant_id = $1
  `, tenantID).Scan(&ws.StartTime, &ws.EndTime, &ws.FullDayHours, &ws.HalfDayHours,
		&ws.WorkingDays, &ws.NegativeBalanceAllowed, &ws.ProbationLeaveAllowed)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &ws, nil
}
