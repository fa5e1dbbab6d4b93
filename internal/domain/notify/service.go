package notify

import (
	"context"
	"log/slog"
)

type Mailer interface {
	Send(ctx context.Context, from, to, subject, body string) error
}

type StoreAPI interface {
	CreateEvent(ctx context.Context, tenantID, employeeID, kind, title, body string) error
	EmployeeEmail(ctx context.Context, tenantID, employeeID string) (string, error)
	ListEvents(ctx context.Context, tenantID string, limit, offset int) ([]Event, error)
}

type Event struct {
	ID         string `json:"id"`
	EmployeeID string `json:"employeeId"`
	Kind       string `json:"kind"`
	Title      string `json:"title"`
	Body       string `json:"body"`
	CreatedAt  string `json:"createdAt"`
}

// Service records outbound decision and escalation events. Delivery beyond
// the optional email copy belongs to the notification collaborator.
type Service struct {
	store       StoreAPI
	Mailer      Mailer
	DefaultFrom string
}

func New(store StoreAPI, mailer Mailer, from string) *Service {
	if from == "" {
		from = "no-reply@example.com"
	}
	return &Service{store: store, Mailer: mailer, DefaultFrom: from}
}

func (s *Service) Publish(ctx context.Context, tenantID, employeeID, kind, title, body string) error {
	if err := s.store.CreateEvent(ctx, tenantID, employeeID, kind, title, body); err != nil {
		return err
	}

	if s.Mailer == nil {
		return nil
	}
	email, err := s.store.EmployeeEmail(ctx, tenantID, employeeID)
	if err != nil {
		slog.Warn("event email lookup failed", "tenantId", tenantID, "err", err)
		return nil
	}
	if email == "" {
		return nil
	}
	if err := s.Mailer.Send(ctx, s.DefaultFrom, email, title, body); err != nil {
		slog.Warn("event email send failed", "tenantId", tenantID, "err", err)
	}
	return nil
}

func (s *Service) List(ctx context.Context, tenantID string, limit, offset int) ([]Event, error) {
	return s.store.ListEvents(ctx, tenantID, limit, offset)
}
