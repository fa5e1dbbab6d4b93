package policy

import "context"

type StoreAPI interface {
	LeaveTypes(ctx context.Context, tenantID string) ([]LeaveType, error)
	Rules(ctx context.Context, tenantID string) ([]Rule, error)
	ApprovalSettings(ctx context.Context, tenantID string) (*ApprovalSettings, error)
	WorkSchedule(ctx context.Context, tenantID string) (*WorkSchedule, error)
}
