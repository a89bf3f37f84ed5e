package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"sales_crm_backend/internal/events"
	"sales_crm_backend/internal/leads/domain"
	"sales_crm_backend/internal/leads/insights"
	"sales_crm_backend/internal/leads/leadstest"
	"sales_crm_backend/platform/logger"

	"github.com/google/uuid"
)

// Monday morning: outside every timing rule.
var fixedNow = time.Date(2026, time.October, 12, 9, 0, 0, 0, time.UTC)

type utcSales struct{}

func (utcSales) GetSalesLocation() *time.Location { return time.UTC }

type recordingEnqueuer struct {
	tenants []uuid.UUID
	err     error
}

func (r *recordingEnqueuer) EnqueueFollowUpTenant(ctx context.Context, tenantID uuid.UUID) error {
	if r.err != nil {
		return r.err
	}
	r.tenants = append(r.tenants, tenantID)
	return nil
}

func newSweeper(repo *leadstest.Repository, enq TenantEnqueuer, bus events.Bus) *FollowUpSweeper {
	svc := insights.New(repo, nil, utcSales{})
	svc.SetClock(func() time.Time { return fixedNow })
	return NewFollowUpSweeper(repo, svc, enq, bus, logger.Discard())
}

func TestSweepEnqueuesTenantsWithOpenLeads(t *testing.T) {
	repo := leadstest.NewRepository()
	open := uuid.New()
	closedOnly := uuid.New()
	repo.PutLead(domain.Lead{OrganizationID: open, CompanyName: "A", ContactName: "a", Status: domain.LeadStatusQualified})
	repo.PutLead(domain.Lead{OrganizationID: open, CompanyName: "B", ContactName: "b", Status: domain.LeadStatusNew})
	repo.PutLead(domain.Lead{OrganizationID: closedOnly, CompanyName: "C", ContactName: "c", Status: domain.LeadStatusClosed})

	enq := &recordingEnqueuer{}
	queued, err := newSweeper(repo, enq, leadstest.NewBus()).Sweep(context.Background())
	if err != nil {
		t.Fatalf("Sweep returned error: %v", err)
	}
	if queued != 1 || len(enq.tenants) != 1 || enq.tenants[0] != open {
		t.Fatalf("expected only tenant %s, got %v", open, enq.tenants)
	}
}

func TestSweepStopsOnEnqueueError(t *testing.T) {
	repo := leadstest.NewRepository()
	repo.PutLead(domain.Lead{OrganizationID: uuid.New(), CompanyName: "A", ContactName: "a", Status: domain.LeadStatusNew})

	boom := errors.New("redis down")
	if _, err := newSweeper(repo, &recordingEnqueuer{err: boom}, leadstest.NewBus()).Sweep(context.Background()); !errors.Is(err, boom) {
		t.Fatalf("expected enqueue error, got %v", err)
	}
}

func TestProcessTenantPublishesOnlyUrgentLeads(t *testing.T) {
	repo := leadstest.NewRepository()
	tenant := uuid.New()
	owner := "rep@example.com"
	stale := fixedNow.Add(-20 * 24 * time.Hour)
	recent := fixedNow.Add(-24 * time.Hour)

	cold := repo.PutLead(domain.Lead{
		OrganizationID: tenant,
		CompanyName:    "Cold",
		ContactName:    "C",
		Status:         domain.LeadStatusProposal,
		OwnerEmail:     &owner,
		LastContact:    &stale,
		CreatedAt:      stale,
	})
	repo.PutLead(domain.Lead{
		OrganizationID: tenant,
		CompanyName:    "Warm",
		ContactName:    "W",
		Status:         domain.LeadStatusProposal,
		LastContact:    &recent,
		CreatedAt:      stale,
	})
	repo.PutLead(domain.Lead{
		OrganizationID: tenant,
		CompanyName:    "Lost",
		ContactName:    "L",
		Status:         domain.LeadStatusLost,
		LastContact:    &stale,
		CreatedAt:      stale,
	})

	bus := leadstest.NewBus()
	published, err := newSweeper(repo, &recordingEnqueuer{}, bus).ProcessTenant(context.Background(), tenant)
	if err != nil {
		t.Fatalf("ProcessTenant returned error: %v", err)
	}
	if published != 1 || len(bus.Events) != 1 {
		t.Fatalf("expected one follow-up, got %d (%v)", published, bus.Names())
	}

	due, ok := bus.Events[0].(events.FollowUpDue)
	if !ok {
		t.Fatalf("expected FollowUpDue, got %T", bus.Events[0])
	}
	if due.LeadID != cold.ID || due.TenantID != tenant {
		t.Fatalf("unexpected lead %s", due.LeadID)
	}
	if due.OwnerEmail == nil || *due.OwnerEmail != owner {
		t.Fatalf("expected owner email to be carried, got %v", due.OwnerEmail)
	}
	if len(due.Actions) == 0 || due.Actions[0].Priority != string(domain.PriorityUrgent) {
		t.Fatalf("expected urgent action first, got %+v", due.Actions)
	}
	for _, limit := range repo.OpenLeadLimits {
		if limit > 0 {
			t.Fatalf("sweep must read every open lead, got limit %d", limit)
		}
	}
}

func TestProcessTenantContinuesAfterDeliveryFailure(t *testing.T) {
	repo := leadstest.NewRepository()
	tenant := uuid.New()
	stale := fixedNow.Add(-30 * 24 * time.Hour)
	for i := 0; i < 2; i++ {
		repo.PutLead(domain.Lead{OrganizationID: tenant, CompanyName: "Cold", ContactName: "C", Status: domain.LeadStatusQualified, LastContact: &stale})
	}

	bus := leadstest.NewBus()
	calls := 0
	bus.Subscribe(events.FollowUpDue{}.EventName(), events.HandlerFunc(func(ctx context.Context, e events.Event) error {
		calls++
		if calls == 1 {
			return errors.New("smtp timeout")
		}
		return nil
	}))

	published, err := newSweeper(repo, &recordingEnqueuer{}, bus).ProcessTenant(context.Background(), tenant)
	if err != nil {
		t.Fatalf("ProcessTenant returned error: %v", err)
	}
	if calls != 2 || published != 1 {
		t.Fatalf("expected both leads attempted and one delivered, got calls=%d published=%d", calls, published)
	}
}

func TestProcessTenantPropagatesStorageErrors(t *testing.T) {
	repo := leadstest.NewRepository()
	boom := errors.New("connection reset")
	repo.Err = boom

	if _, err := newSweeper(repo, &recordingEnqueuer{}, leadstest.NewBus()).ProcessTenant(context.Background(), uuid.New()); !errors.Is(err, boom) {
		t.Fatalf("expected storage error, got %v", err)
	}
}
