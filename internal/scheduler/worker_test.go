package scheduler

import (
	"context"
	"errors"
	"testing"

	"sales_crm_backend/internal/events"
	"sales_crm_backend/internal/leads/domain"
	"sales_crm_backend/internal/leads/leadstest"
	"sales_crm_backend/platform/logger"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

func newTestWorker(repo *leadstest.Repository, bus *leadstest.Bus) *Worker {
	return &Worker{
		mux:     asynq.NewServeMux(),
		sweeper: newSweeper(repo, &recordingEnqueuer{}, bus),
		log:     logger.Discard(),
	}
}

func TestHandleFollowUpTenantSkipsRetryOnBadPayload(t *testing.T) {
	w := newTestWorker(leadstest.NewRepository(), leadstest.NewBus())

	tests := []struct {
		name    string
		payload []byte
	}{
		{"not json", []byte("{")},
		{"bad tenant id", []byte(`{"tenantId":"nope"}`)},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := w.handleFollowUpTenant(context.Background(), asynq.NewTask(TaskFollowUpTenant, tc.payload))
			if !errors.Is(err, asynq.SkipRetry) {
				t.Fatalf("expected SkipRetry, got %v", err)
			}
		})
	}
}

func TestHandleFollowUpTenantRunsSweep(t *testing.T) {
	repo := leadstest.NewRepository()
	bus := leadstest.NewBus()
	tenant := uuid.New()
	repo.PutLead(domain.Lead{OrganizationID: tenant, CompanyName: "Acme", ContactName: "A", Status: domain.LeadStatusNegotiation})

	task, err := NewFollowUpTenantTask(FollowUpTenantPayload{TenantID: tenant.String()})
	if err != nil {
		t.Fatalf("NewFollowUpTenantTask returned error: %v", err)
	}
	if err := newTestWorker(repo, bus).handleFollowUpTenant(context.Background(), task); err != nil {
		t.Fatalf("handleFollowUpTenant returned error: %v", err)
	}

	names := bus.Names()
	if len(names) != 1 || names[0] != (events.FollowUpDue{}).EventName() {
		t.Fatalf("expected one follow-up event, got %v", names)
	}
}
