package scheduler

import (
	"context"
	"fmt"
	"time"

	"sales_crm_backend/internal/events"
	"sales_crm_backend/internal/leads/insights"
	"sales_crm_backend/platform/logger"

	"github.com/google/uuid"
)

// TenantLister lists organizations that still have leads in the pipeline.
type TenantLister interface {
	ListOrganizationsWithOpenLeads(ctx context.Context) ([]uuid.UUID, error)
}

// LeadEvaluator runs the engines over a tenant's open leads.
type LeadEvaluator interface {
	EvaluateOpenLeads(ctx context.Context, tenantID uuid.UUID, limit int) ([]insights.Evaluation, time.Time, error)
}

// TenantEnqueuer schedules a per-tenant evaluation.
type TenantEnqueuer interface {
	EnqueueFollowUpTenant(ctx context.Context, tenantID uuid.UUID) error
}

// FollowUpSweeper finds leads with urgent recommendations and announces them.
type FollowUpSweeper struct {
	tenants   TenantLister
	evaluator LeadEvaluator
	enqueuer  TenantEnqueuer
	bus       events.Bus
	log       *logger.Logger
}

func NewFollowUpSweeper(tenants TenantLister, evaluator LeadEvaluator, enqueuer TenantEnqueuer, bus events.Bus, log *logger.Logger) *FollowUpSweeper {
	return &FollowUpSweeper{
		tenants:   tenants,
		evaluator: evaluator,
		enqueuer:  enqueuer,
		bus:       bus,
		log:       log,
	}
}

// Sweep enqueues one tenant task per organization with open leads and returns
// how many were queued.
func (s *FollowUpSweeper) Sweep(ctx context.Context) (int, error) {
	tenantIDs, err := s.tenants.ListOrganizationsWithOpenLeads(ctx)
	if err != nil {
		return 0, fmt.Errorf("list tenants: %w", err)
	}

	queued := 0
	for _, tenantID := range tenantIDs {
		if err := s.enqueuer.EnqueueFollowUpTenant(ctx, tenantID); err != nil {
			return queued, fmt.Errorf("enqueue tenant %s: %w", tenantID, err)
		}
		queued++
	}
	return queued, nil
}

// ProcessTenant publishes a FollowUpDue event for every open lead of the
// tenant that has at least one urgent action. Handler failures are logged so
// one bad delivery does not replay the whole tenant.
func (s *FollowUpSweeper) ProcessTenant(ctx context.Context, tenantID uuid.UUID) (int, error) {
	evals, now, err := s.evaluator.EvaluateOpenLeads(ctx, tenantID, 0)
	if err != nil {
		return 0, fmt.Errorf("evaluate leads: %w", err)
	}

	log := s.log.WithTenantID(tenantID.String())
	published := 0
	for _, eval := range evals {
		if !eval.HasUrgent() {
			continue
		}
		event := toFollowUpDue(eval, now)
		if err := s.bus.PublishSync(ctx, event); err != nil {
			log.Error("follow-up delivery failed", "leadId", eval.Lead.ID, "error", err)
			continue
		}
		published++
	}

	log.Info("follow-up sweep processed tenant", "openLeads", len(evals), "due", published)
	return published, nil
}

func toFollowUpDue(eval insights.Evaluation, now time.Time) events.FollowUpDue {
	actions := make([]events.FollowUpAction, len(eval.Actions))
	for i, a := range eval.Actions {
		actions[i] = events.FollowUpAction{
			ID:       a.ID,
			Action:   a.Action,
			Priority: string(a.Priority),
			Reason:   a.Reason,
		}
	}
	return events.FollowUpDue{
		BaseEvent:   events.NewBaseEventAt(now),
		LeadID:      eval.Lead.ID,
		TenantID:    eval.Lead.OrganizationID,
		CompanyName: eval.Lead.CompanyName,
		ContactName: eval.Lead.ContactName,
		OwnerEmail:  eval.Lead.OwnerEmail,
		Score:       eval.Score.Score,
		Grade:       string(eval.Score.Grade),
		Actions:     actions,
	}
}
