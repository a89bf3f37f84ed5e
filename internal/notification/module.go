// Package notification reacts to domain events by informing the people who
// own the affected leads. Domain modules only publish events and never talk
// to e-mail directly.
package notification

import (
	"context"
	"strings"

	"sales_crm_backend/internal/email"
	"sales_crm_backend/internal/events"
	"sales_crm_backend/platform/logger"
)

// Subscriber is the subset of the event bus the module needs.
type Subscriber interface {
	Subscribe(eventName string, handler events.Handler)
}

type Module struct {
	sender email.Sender
	log    *logger.Logger
}

func New(sender email.Sender, log *logger.Logger) *Module {
	if sender == nil {
		sender = email.NoopSender{}
	}
	return &Module{sender: sender, log: log}
}

// RegisterHandlers subscribes the module to the events it reacts to.
func (m *Module) RegisterHandlers(bus Subscriber) {
	bus.Subscribe(events.FollowUpDue{}.EventName(), m)
	bus.Subscribe(events.LeadStatusChanged{}.EventName(), m)
}

// Handle implements events.Handler.
func (m *Module) Handle(ctx context.Context, event events.Event) error {
	switch e := event.(type) {
	case events.FollowUpDue:
		return m.handleFollowUpDue(ctx, e)
	case events.LeadStatusChanged:
		return m.handleLeadStatusChanged(ctx, e)
	default:
		return nil
	}
}

func (m *Module) handleFollowUpDue(ctx context.Context, e events.FollowUpDue) error {
	log := m.log.WithContext(ctx).WithTenantID(e.TenantID.String())

	to := ""
	if e.OwnerEmail != nil {
		to = strings.TrimSpace(*e.OwnerEmail)
	}
	if _, noop := m.sender.(email.NoopSender); noop || to == "" {
		log.Info("follow-up due",
			"leadId", e.LeadID,
			"company", e.CompanyName,
			"score", e.Score,
			"actions", len(e.Actions),
			"hasOwner", to != "",
		)
		return nil
	}

	if err := m.sender.SendFollowUpDigest(ctx, to, toDigest(e)); err != nil {
		log.Error("follow-up digest failed", "leadId", e.LeadID, "error", err)
		return err
	}
	log.Info("follow-up digest sent", "leadId", e.LeadID)
	return nil
}

func (m *Module) handleLeadStatusChanged(ctx context.Context, e events.LeadStatusChanged) error {
	m.log.WithContext(ctx).WithTenantID(e.TenantID.String()).Info("lead status changed",
		"leadId", e.LeadID,
		"from", e.OldStatus,
		"to", e.NewStatus,
	)
	return nil
}

func toDigest(e events.FollowUpDue) email.FollowUpDigest {
	actions := make([]email.DigestAction, len(e.Actions))
	for i, a := range e.Actions {
		actions[i] = email.DigestAction{Action: a.Action, Priority: a.Priority, Reason: a.Reason}
	}
	return email.FollowUpDigest{
		CompanyName: e.CompanyName,
		ContactName: e.ContactName,
		Score:       e.Score,
		Grade:       e.Grade,
		Actions:     actions,
	}
}
