package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"leavemind/internal/domain/balance"
	"leavemind/internal/domain/policy"
	"leavemind/internal/domain/team"
	"leavemind/internal/platform/db"
)

var ErrInvalidCandidate = errors.New("invalid candidate")

// StorageError wraps a repository failure, marking whether a retry of the
// whole evaluation may succeed.
type StorageError struct {
	Op        string
	Transient bool
	Err       error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// Publisher receives outbound decision events; delivery is not this engine's
// concern.
type Publisher interface {
	Publish(ctx context.Context, tenantID, employeeID, kind, title, body string) error
}

// Service wires the resolver, calculator, team reader, repository, and
// oracle into one evaluation entry point. Each call reads its snapshot up
// front and is side-effect free, so evaluations for different candidates run
// freely in parallel.
type Service struct {
	Policies *policy.Resolver
	Balances *balance.Calculator
	Team     *team.Reader
	Store    StoreAPI
	Oracle   OracleClient
	Notify   Publisher
}

func NewService(policies *policy.Resolver, balances *balance.Calculator, teamReader *team.Reader, store StoreAPI, oracle OracleClient, notify Publisher) *Service {
	return &Service{
		Policies: policies,
		Balances: balances,
		Team:     teamReader,
		Store:    store,
		Oracle:   oracle,
		Notify:   notify,
	}
}

// Evaluate produces the final decision for one candidate request.
func (s *Service) Evaluate(ctx context.Context, tenantID string, cand Candidate) (Decision, error) {
	if err := validateCandidate(cand); err != nil {
		return Decision{}, err
	}
	now := time.Now().UTC()

	resolved, err := s.Policies.Resolve(ctx, tenantID)
	if err != nil {
		return Decision{}, storageErr("resolve policy", err)
	}

	emp, err := s.Store.Employee(ctx, tenantID, cand.EmployeeID)
	if errors.Is(err, ErrEmployeeNotFound) {
		return Decision{}, fmt.Errorf("%w: unknown employee %s", ErrInvalidCandidate, cand.EmployeeID)
	}
	if err != nil {
		return Decision{}, storageErr("load employee", err)
	}

	leaveType := resolved.TypeByCode(cand.TypeCode)
	bal, err := s.Balances.Remaining(ctx, tenantID, cand.EmployeeID, leaveType.Code, cand.StartDate.Year(), leaveType.AnnualQuota)
	if err != nil {
		return Decision{}, storageErr("load balance", err)
	}

	state, err := s.Team.Snapshot(ctx, tenantID, emp.Department, cand.EmployeeID, cand.StartDate, cand.EndDate)
	if err != nil {
		return Decision{}, storageErr("read team state", err)
	}

	history, err := s.Store.History(ctx, tenantID, cand.EmployeeID, cand.StartDate)
	if err != nil {
		return Decision{}, storageErr("load history", err)
	}

	eval := Evaluate(resolved, cand, state, bal, emp, now)
	decision := Decide(ctx, s.Oracle, Input{
		Policy:     resolved,
		Candidate:  cand,
		Team:       state,
		Balance:    bal,
		Evaluation: eval,
		Employee:   emp,
		History:    history,
		Now:        now,
	})

	if decision.Status != StatusApproved && s.Notify != nil {
		if err := s.Notify.Publish(ctx, tenantID, cand.EmployeeID, "decision."+decision.Status,
			"Leave request "+decision.Status, decision.Explanation); err != nil {
			slog.Warn("decision event publish failed", "tenantId", tenantID, "err", err)
		}
	}
	return decision, nil
}

func validateCandidate(cand Candidate) error {
	if cand.EmployeeID == "" {
		return fmt.Errorf("%w: employee id is required", ErrInvalidCandidate)
	}
	if cand.StartDate.IsZero() || cand.EndDate.IsZero() {
		return fmt.Errorf("%w: start and end dates are required", ErrInvalidCandidate)
	}
	if cand.EndDate.Before(cand.StartDate) {
		return fmt.Errorf("%w: end date before start date", ErrInvalidCandidate)
	}
	if !cand.Days.IsPositive() {
		return fmt.Errorf("%w: day count must be positive", ErrInvalidCandidate)
	}
	return nil
}

func storageErr(op string, err error) error {
	return &StorageError{Op: op, Transient: db.IsTransient(err), Err: err}
}
