package db

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Seed provisions a demo tenant with a leave-type catalog, a small rule set,
// and a work schedule. Intended for development environments only.
func Seed(ctx context.Context, pool *pgxpool.Pool, tenantName string) error {
	tenantID, err := ensureTenant(ctx, pool, tenantName)
	if err != nil {
		return err
	}

	if err := ensureLeaveTypes(ctx, pool, tenantID); err != nil {
		return err
	}
	if err := ensureRules(ctx, pool, tenantID); err != nil {
		return err
	}
	return ensureWorkSchedule(ctx, pool, tenantID)
}

func ensureTenant(ctx context.Context, pool *pgxpool.Pool, name string) (string, error) {
	var id string
	err := pool.QueryRow(ctx, "SELECT id FROM tenants WHERE name = $1", name).Scan(&id)
	if err == nil {
		return id, nil
	}

	err = pool.QueryRow(ctx, "INSERT INTO tenants (name) VALUES ($1) RETURNING id", name).Scan(&id)
	if err != nil {
		return "", err
	}
	return id, nil
}

func ensureLeaveTypes(ctx context.Context, pool *pgxpool.Pool, tenantID string) error {
	types := []struct {
		code           string
		name           string
		quota          float64
		maxConsecutive int
		minNotice      int
		requiresDoc    bool
	}{
		{"CL", "Casual Leave", 12, 5, 1, false},
		{"SL", "Sick Leave", 15, 5, 0, true},
		{"AL", "Annual Leave", 20, 10, 7, false},
		{"EL", "Emergency Leave", 5, 3, 0, false},
	}
	for _, t := range types {
		_, err := pool.Exec(ctx, `
      INSERT INTO leave_types (tenant_id, code, name, annual_quota, max_consecutive_days, min_notice_days, requires_doc, half_day_allowed, requires_approval, is_paid, active)
      VALUES ($1,$2,$3,$4,$5,$6,$7,true,true,true,true)
      ON CONFLICT (tenant_id, code) DO NOTHING
    `, tenantID, t.code, t.name, t.quota, t.maxConsecutive, t.minNotice, t.requiresDoc)
		if err != nil {
			return err
		}
	}
	return nil
}

func ensureRules(ctx context.Context, pool *pgxpool.Pool, tenantID string) error {
	rules := []struct {
		name     string
		family   string
		blocking bool
		priority int
		config   string
	}{
		{"Team coverage", "max_concurrent", true, 10, `{"maxPercentage": 20}`},
		{"Department cap", "department_limit", false, 20, `{"limit": 2}`},
		{"Leave spacing", "min_gap", false, 30, `{"gapDays": 7}`},
	}
	for _, r := range rules {
		_, err := pool.Exec(ctx, `
      INSERT INTO tenant_rules (tenant_id, name, family, blocking, priority, config, active)
      SELECT $1, $2, $3, $4, $5, $6::jsonb, true
      WHERE NOT EXISTS (SELECT 1 FROM tenant_rules WHERE tenant_id = $1 AND name = $2)
    `, tenantID, r.name, r.family, r.blocking, r.priority, r.config)
		if err != nil {
			return err
		}
	}
	return nil
}

func ensureWorkSchedule(ctx context.Context, pool *pgxpool.Pool, tenantID string) error {
	_, err := pool.Exec(ctx, `
    INSERT INTO work_schedules (tenant_id, start_time, end_time, full_day_hours, half_day_hours, working_days, negative_balance_allowed, probation_leave_allowed)
    VALUES ($1, '09:00', '18:00', 8, 4, '{monday,tuesday,wednesday,thursday,friday}', false, false)
    ON CONFLICT (tenant_id) DO NOTHING
  `, tenantID)
	return err
}
