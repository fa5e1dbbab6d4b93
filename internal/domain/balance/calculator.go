package balance

import (
	"context"

	"github.com/shopspring/decimal"
)

// Snapshot is one stored balance row for (employee, type, year). All
// quantities carry 0.5-day granularity.
type Snapshot struct {
	Entitlement    decimal.Decimal
	CarriedForward decimal.Decimal
	Used           decimal.Decimal
	Pending        decimal.Decimal
}

// Remaining applies entitlement + carriedForward - used - pending.
func (s Snapshot) Remaining() decimal.Decimal {
	return s.Entitlement.Add(s.CarriedForward).Sub(s.Used).Sub(s.Pending)
}

// Balance is the calculator output consumed by evaluation.
type Balance struct {
	Remaining decimal.Decimal `json:"remaining"`
	Total     decimal.Decimal `json:"total"`
	Used      decimal.Decimal `json:"used"`
}

type StoreAPI interface {
	Snapshot(ctx context.Context, tenantID, employeeID, typeCode string, year int) (*Snapshot, error)
}

type Calculator struct {
	store StoreAPI
}

func NewCalculator(store StoreAPI) *Calculator {
	return &Calculator{store: store}
}

// Remaining computes the employee's balance for a leave type in a cycle year.
// When no row exists the annual quota stands in as the full entitlement with
// nothing used.
func (c *Calculator) Remaining(ctx context.Context, tenantID, employeeID, typeCode string, year int, annualQuota decimal.Decimal) (Balance, error) {
	snapshot, err := c.store.Snapshot(ctx, tenantID, employeeID, typeCode, year)
	if err != nil {
		return Balance{}, err
	}
	if snapshot == nil {
		return Balance{
			Remaining: annualQuota,
			Total:     annualQuota,
			Used:      decimal.Zero,
		}, nil
	}
	return Balance{
		Remaining: snapshot.Remaining(),
		Total:     snapshot.Entitlement.Add(snapshot.CarriedForward),
		Used:      snapshot.Used,
	}, nil
}
