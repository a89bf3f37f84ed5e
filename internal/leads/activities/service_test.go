package activities

import (
	"context"
	"testing"
	"time"

	"sales_crm_backend/internal/events"
	"sales_crm_backend/internal/leads/domain"
	"sales_crm_backend/internal/leads/leadstest"
	"sales_crm_backend/internal/leads/transport"
	"sales_crm_backend/platform/apperr"

	"github.com/google/uuid"
)

var fixedNow = time.Date(2026, 10, 13, 10, 0, 0, 0, time.UTC)

func newTestService(t *testing.T) (*Service, *leadstest.Repository, *leadstest.Bus, domain.Lead) {
	t.Helper()
	repo := leadstest.NewRepository()
	bus := leadstest.NewBus()
	svc := New(repo, bus)
	svc.SetClock(func() time.Time { return fixedNow })
	lead := repo.PutLead(domain.Lead{
		OrganizationID: uuid.New(),
		CompanyName:    "Acme",
		ContactName:    "Jane",
		Status:         domain.LeadStatusContacted,
	})
	return svc, repo, bus, lead
}

func TestLogDefaultsOutcomeAndTimestamp(t *testing.T) {
	svc, repo, bus, lead := newTestService(t)

	resp, err := svc.Log(context.Background(), lead.ID, lead.OrganizationID, transport.LogActivityRequest{Type: "call"})
	if err != nil {
		t.Fatalf("Log returned error: %v", err)
	}
	if resp.Outcome != string(domain.OutcomeNone) {
		t.Fatalf("expected outcome none, got %q", resp.Outcome)
	}
	if !resp.Timestamp.Equal(fixedNow) {
		t.Fatalf("expected timestamp %v, got %v", fixedNow, resp.Timestamp)
	}

	stored, _ := repo.Lead(lead.ID)
	if stored.LastContact == nil || !stored.LastContact.Equal(fixedNow) {
		t.Fatalf("expected last contact to advance, got %v", stored.LastContact)
	}

	if len(bus.Events) != 1 {
		t.Fatalf("expected one event, got %d", len(bus.Events))
	}
	logged, ok := bus.Events[0].(events.ActivityLogged)
	if !ok || logged.LeadID != lead.ID || logged.Type != "call" {
		t.Fatalf("unexpected event %#v", bus.Events[0])
	}
}

func TestLogRejectsInvalidInput(t *testing.T) {
	future := fixedNow.Add(10 * time.Minute)
	skewed := fixedNow.Add(2 * time.Minute)

	tests := []struct {
		name    string
		req     transport.LogActivityRequest
		wantErr bool
	}{
		{"unknown type", transport.LogActivityRequest{Type: "fax"}, true},
		{"unknown outcome", transport.LogActivityRequest{Type: "call", Outcome: "hung_up"}, true},
		{"far future", transport.LogActivityRequest{Type: "call", Timestamp: &future}, true},
		{"small clock skew", transport.LogActivityRequest{Type: "call", Timestamp: &skewed}, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			svc, _, _, lead := newTestService(t)
			_, err := svc.Log(context.Background(), lead.ID, lead.OrganizationID, tc.req)
			if tc.wantErr && !apperr.Is(err, apperr.KindValidation) {
				t.Fatalf("expected validation error, got %v", err)
			}
			if !tc.wantErr && err != nil {
				t.Fatalf("expected success, got %v", err)
			}
		})
	}
}

func TestLogOlderActivityKeepsLastContact(t *testing.T) {
	svc, repo, _, lead := newTestService(t)
	ctx := context.Background()

	if _, err := svc.Log(ctx, lead.ID, lead.OrganizationID, transport.LogActivityRequest{Type: "email"}); err != nil {
		t.Fatalf("Log returned error: %v", err)
	}
	older := fixedNow.Add(-72 * time.Hour)
	if _, err := svc.Log(ctx, lead.ID, lead.OrganizationID, transport.LogActivityRequest{Type: "call", Timestamp: &older}); err != nil {
		t.Fatalf("Log returned error: %v", err)
	}

	stored, _ := repo.Lead(lead.ID)
	if stored.LastContact == nil || !stored.LastContact.Equal(fixedNow) {
		t.Fatalf("expected last contact to stay at %v, got %v", fixedNow, stored.LastContact)
	}
}

func TestLogForOtherTenantIsNotFound(t *testing.T) {
	svc, _, bus, lead := newTestService(t)

	_, err := svc.Log(context.Background(), lead.ID, uuid.New(), transport.LogActivityRequest{Type: "call"})
	if !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if len(bus.Events) != 0 {
		t.Fatal("expected no events")
	}
}

func TestCorrectChangesOnlyOutcomeAndNotes(t *testing.T) {
	svc, _, _, lead := newTestService(t)
	ctx := context.Background()

	logged, err := svc.Log(ctx, lead.ID, lead.OrganizationID, transport.LogActivityRequest{Type: "call", Outcome: "no_answer"})
	if err != nil {
		t.Fatalf("Log returned error: %v", err)
	}

	outcome := "connected"
	notes := "spoke to <i>Jane</i>"
	corrected, err := svc.Correct(ctx, lead.ID, logged.ID, lead.OrganizationID, transport.CorrectActivityRequest{Outcome: &outcome, Notes: &notes})
	if err != nil {
		t.Fatalf("Correct returned error: %v", err)
	}
	if corrected.Outcome != "connected" || corrected.Notes != "spoke to Jane" {
		t.Fatalf("unexpected correction %+v", corrected)
	}
	if corrected.Type != logged.Type || !corrected.Timestamp.Equal(logged.Timestamp) {
		t.Fatal("expected type and timestamp to be immutable")
	}
	if corrected.CorrectedAt == nil {
		t.Fatal("expected CorrectedAt to be set")
	}
}

func TestCorrectErrors(t *testing.T) {
	svc, _, _, lead := newTestService(t)
	ctx := context.Background()
	outcome := "connected"
	bad := "hung_up"

	if _, err := svc.Correct(ctx, lead.ID, uuid.New(), lead.OrganizationID, transport.CorrectActivityRequest{}); !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("expected validation error for empty correction, got %v", err)
	}
	if _, err := svc.Correct(ctx, lead.ID, uuid.New(), lead.OrganizationID, transport.CorrectActivityRequest{Outcome: &bad}); !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("expected validation error for bad outcome, got %v", err)
	}
	if _, err := svc.Correct(ctx, lead.ID, uuid.New(), lead.OrganizationID, transport.CorrectActivityRequest{Outcome: &outcome}); !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestListNewestFirst(t *testing.T) {
	svc, repo, _, lead := newTestService(t)
	repo.PutActivity(domain.Activity{LeadID: lead.ID, OrganizationID: lead.OrganizationID, Type: domain.ActivityTypeCall, Outcome: domain.OutcomeNone, Timestamp: fixedNow.Add(-48 * time.Hour)})
	repo.PutActivity(domain.Activity{LeadID: lead.ID, OrganizationID: lead.OrganizationID, Type: domain.ActivityTypeEmail, Outcome: domain.OutcomeNone, Timestamp: fixedNow.Add(-1 * time.Hour)})

	resp, err := svc.List(context.Background(), lead.ID, lead.OrganizationID)
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if len(resp.Items) != 2 || resp.Items[0].Type != "email" {
		t.Fatalf("unexpected list %+v", resp.Items)
	}

	if _, err := svc.List(context.Background(), uuid.New(), lead.OrganizationID); !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("expected not found for missing lead, got %v", err)
	}
}

func TestGetScopesActivityToLeadAndTenant(t *testing.T) {
	svc, repo, _, lead := newTestService(t)
	ctx := context.Background()
	activity := repo.PutActivity(domain.Activity{LeadID: lead.ID, OrganizationID: lead.OrganizationID, Type: domain.ActivityTypeMeeting, Outcome: domain.OutcomeNone, Timestamp: fixedNow.Add(-2 * time.Hour)})

	got, err := svc.Get(ctx, lead.ID, activity.ID, lead.OrganizationID)
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if got.ID != activity.ID || got.Type != "meeting" {
		t.Fatalf("unexpected activity %+v", got)
	}

	if _, err := svc.Get(ctx, uuid.New(), activity.ID, lead.OrganizationID); !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("expected not found for another lead, got %v", err)
	}
	if _, err := svc.Get(ctx, lead.ID, activity.ID, uuid.New()); !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("expected not found for another tenant, got %v", err)
	}
}
