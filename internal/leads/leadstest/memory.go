// Package leadstest provides in-memory doubles of the leads storage and the
// event bus for tests of the services built on top of them.
package leadstest

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"sales_crm_backend/internal/leads/domain"
	"sales_crm_backend/internal/leads/repository"
	"sales_crm_backend/platform/events"

	"github.com/google/uuid"
)

// Repository is an in-memory repository.LeadsRepository with the same tenant
// scoping rules as the Postgres implementation.
type Repository struct {
	mu         sync.Mutex
	leads      map[uuid.UUID]domain.Lead
	activities map[uuid.UUID]domain.Activity
	now        func() time.Time

	// Err, when set, is returned by every call.
	Err error
	// OpenLeadLimits records the limit of every ListOpenLeads call.
	OpenLeadLimits []int
}

var _ repository.LeadsRepository = (*Repository)(nil)

func NewRepository() *Repository {
	return &Repository{
		leads:      make(map[uuid.UUID]domain.Lead),
		activities: make(map[uuid.UUID]domain.Activity),
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// PutLead stores lead as-is, assigning an ID when missing.
func (r *Repository) PutLead(lead domain.Lead) domain.Lead {
	r.mu.Lock()
	defer r.mu.Unlock()
	if lead.ID == uuid.Nil {
		lead.ID = uuid.New()
	}
	r.leads[lead.ID] = lead
	return lead
}

// PutActivity stores a as-is, assigning an ID when missing.
func (r *Repository) PutActivity(a domain.Activity) domain.Activity {
	r.mu.Lock()
	defer r.mu.Unlock()
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	r.activities[a.ID] = a
	return a
}

// Lead returns the stored lead regardless of tenant.
func (r *Repository) Lead(id uuid.UUID) (domain.Lead, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	lead, ok := r.leads[id]
	return lead, ok
}

func (r *Repository) Create(ctx context.Context, params repository.CreateLeadParams) (domain.Lead, error) {
	if r.Err != nil {
		return domain.Lead{}, r.Err
	}
	now := r.now()
	return r.PutLead(domain.Lead{
		OrganizationID: params.OrganizationID,
		CompanyName:    params.CompanyName,
		ContactName:    params.ContactName,
		Email:          params.Email,
		Phone:          params.Phone,
		Status:         params.Status,
		Value:          params.Value,
		Probability:    params.Probability,
		Source:         params.Source,
		OwnerEmail:     params.OwnerEmail,
		CreatedAt:      now,
		UpdatedAt:      now,
	}), nil
}

func (r *Repository) GetByID(ctx context.Context, id uuid.UUID, organizationID uuid.UUID) (domain.Lead, error) {
	if r.Err != nil {
		return domain.Lead{}, r.Err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	lead, ok := r.leads[id]
	if !ok || lead.OrganizationID != organizationID {
		return domain.Lead{}, repository.ErrNotFound
	}
	return lead, nil
}

func (r *Repository) List(ctx context.Context, params repository.ListParams) ([]domain.Lead, int, error) {
	if r.Err != nil {
		return nil, 0, r.Err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	search := strings.ToLower(strings.TrimSpace(params.Search))
	matched := make([]domain.Lead, 0)
	for _, lead := range r.leads {
		if lead.OrganizationID != params.OrganizationID {
			continue
		}
		if params.Status != nil && lead.Status != *params.Status {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(lead.CompanyName+" "+lead.ContactName), search) {
			continue
		}
		matched = append(matched, lead)
	}
	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].CreatedAt.After(matched[j].CreatedAt)
		}
		return matched[i].ID.String() < matched[j].ID.String()
	})

	total := len(matched)
	start := min(params.Offset, total)
	end := total
	if params.Limit > 0 {
		end = min(start+params.Limit, total)
	}
	return matched[start:end], total, nil
}

func (r *Repository) Update(ctx context.Context, id uuid.UUID, organizationID uuid.UUID, params repository.UpdateLeadParams) (domain.Lead, error) {
	lead, err := r.GetByID(ctx, id, organizationID)
	if err != nil {
		return domain.Lead{}, err
	}
	if params.CompanyName != nil {
		lead.CompanyName = *params.CompanyName
	}
	if params.ContactName != nil {
		lead.ContactName = *params.ContactName
	}
	if params.Email != nil {
		lead.Email = params.Email
	}
	if params.Phone != nil {
		lead.Phone = params.Phone
	}
	if params.Value != nil {
		lead.Value = params.Value
	}
	if params.Probability != nil {
		lead.Probability = params.Probability
	}
	if params.Source != nil {
		lead.Source = params.Source
	}
	if params.OwnerEmail != nil {
		lead.OwnerEmail = params.OwnerEmail
	}
	lead.UpdatedAt = r.now()
	return r.PutLead(lead), nil
}

func (r *Repository) UpdateStatus(ctx context.Context, id uuid.UUID, organizationID uuid.UUID, status domain.LeadStatus) (domain.Lead, error) {
	lead, err := r.GetByID(ctx, id, organizationID)
	if err != nil {
		return domain.Lead{}, err
	}
	lead.Status = status
	lead.UpdatedAt = r.now()
	return r.PutLead(lead), nil
}

func (r *Repository) TouchLastContact(ctx context.Context, id uuid.UUID, organizationID uuid.UUID, at time.Time) error {
	lead, err := r.GetByID(ctx, id, organizationID)
	if err != nil {
		return nil
	}
	if lead.LastContact == nil || lead.LastContact.Before(at) {
		lead.LastContact = &at
		r.PutLead(lead)
	}
	return nil
}

func (r *Repository) Delete(ctx context.Context, id uuid.UUID, organizationID uuid.UUID) error {
	if _, err := r.GetByID(ctx, id, organizationID); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.deleteLeadLocked(id)
	return nil
}

func (r *Repository) DeleteAllForOrganization(ctx context.Context, organizationID uuid.UUID) (int64, error) {
	if r.Err != nil {
		return 0, r.Err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	var deleted int64
	for id, lead := range r.leads {
		if lead.OrganizationID == organizationID {
			r.deleteLeadLocked(id)
			deleted++
		}
	}
	return deleted, nil
}

func (r *Repository) deleteLeadLocked(id uuid.UUID) {
	delete(r.leads, id)
	for activityID, a := range r.activities {
		if a.LeadID == id {
			delete(r.activities, activityID)
		}
	}
}

// ListOpenLeads mirrors the pgx contract: a limit of zero or less is unbounded.
func (r *Repository) ListOpenLeads(ctx context.Context, organizationID uuid.UUID, limit int) ([]domain.Lead, error) {
	if r.Err != nil {
		return nil, r.Err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.OpenLeadLimits = append(r.OpenLeadLimits, limit)
	open := make([]domain.Lead, 0)
	for _, lead := range r.leads {
		if lead.OrganizationID == organizationID && !domain.IsTerminalLeadStatus(lead.Status) {
			open = append(open, lead)
		}
	}
	sort.Slice(open, func(i, j int) bool { return open[i].ID.String() < open[j].ID.String() })
	if limit > 0 && len(open) > limit {
		open = open[:limit]
	}
	return open, nil
}

func (r *Repository) ListOrganizationsWithOpenLeads(ctx context.Context) ([]uuid.UUID, error) {
	if r.Err != nil {
		return nil, r.Err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	seen := make(map[uuid.UUID]struct{})
	ids := make([]uuid.UUID, 0)
	for _, lead := range r.leads {
		if domain.IsTerminalLeadStatus(lead.Status) {
			continue
		}
		if _, ok := seen[lead.OrganizationID]; ok {
			continue
		}
		seen[lead.OrganizationID] = struct{}{}
		ids = append(ids, lead.OrganizationID)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i].String() < ids[j].String() })
	return ids, nil
}

func (r *Repository) CreateActivity(ctx context.Context, params repository.CreateActivityParams) (domain.Activity, error) {
	if _, err := r.GetByID(ctx, params.LeadID, params.OrganizationID); err != nil {
		return domain.Activity{}, err
	}
	return r.PutActivity(domain.Activity{
		LeadID:         params.LeadID,
		OrganizationID: params.OrganizationID,
		Type:           params.Type,
		Outcome:        params.Outcome,
		Notes:          params.Notes,
		Timestamp:      params.Timestamp,
		CreatedAt:      r.now(),
	}), nil
}

func (r *Repository) GetActivityByID(ctx context.Context, id uuid.UUID, leadID uuid.UUID, organizationID uuid.UUID) (domain.Activity, error) {
	if r.Err != nil {
		return domain.Activity{}, r.Err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.activities[id]
	if !ok || a.LeadID != leadID || a.OrganizationID != organizationID {
		return domain.Activity{}, repository.ErrActivityNotFound
	}
	return a, nil
}

func (r *Repository) ListActivities(ctx context.Context, leadID uuid.UUID, organizationID uuid.UUID) ([]domain.Activity, error) {
	grouped, err := r.ListActivitiesForLeads(ctx, []uuid.UUID{leadID}, organizationID)
	if err != nil {
		return nil, err
	}
	items := grouped[leadID]
	if items == nil {
		items = make([]domain.Activity, 0)
	}
	return items, nil
}

func (r *Repository) ListActivitiesForLeads(ctx context.Context, leadIDs []uuid.UUID, organizationID uuid.UUID) (map[uuid.UUID][]domain.Activity, error) {
	if r.Err != nil {
		return nil, r.Err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	wanted := make(map[uuid.UUID]struct{}, len(leadIDs))
	for _, id := range leadIDs {
		wanted[id] = struct{}{}
	}
	grouped := make(map[uuid.UUID][]domain.Activity)
	for _, a := range r.activities {
		if _, ok := wanted[a.LeadID]; ok && a.OrganizationID == organizationID {
			grouped[a.LeadID] = append(grouped[a.LeadID], a)
		}
	}
	for id := range grouped {
		items := grouped[id]
		sort.Slice(items, func(i, j int) bool { return items[i].Timestamp.After(items[j].Timestamp) })
	}
	return grouped, nil
}

func (r *Repository) CorrectActivity(ctx context.Context, id uuid.UUID, leadID uuid.UUID, organizationID uuid.UUID, params repository.CorrectActivityParams) (domain.Activity, error) {
	a, err := r.GetActivityByID(ctx, id, leadID, organizationID)
	if err != nil {
		return domain.Activity{}, err
	}
	if params.Outcome != nil {
		a.Outcome = *params.Outcome
	}
	if params.Notes != nil {
		a.Notes = *params.Notes
	}
	correctedAt := params.CorrectedAt
	a.CorrectedAt = &correctedAt
	return r.PutActivity(a), nil
}

// Bus records published events and delivers them synchronously to
// subscribers.
type Bus struct {
	mu       sync.Mutex
	Events   []events.Event
	handlers map[string][]events.Handler
}

var _ events.Bus = (*Bus)(nil)

func NewBus() *Bus {
	return &Bus{handlers: make(map[string][]events.Handler)}
}

func (b *Bus) Publish(ctx context.Context, event events.Event) {
	_ = b.PublishSync(ctx, event)
}

func (b *Bus) PublishSync(ctx context.Context, event events.Event) error {
	b.mu.Lock()
	b.Events = append(b.Events, event)
	handlers := append([]events.Handler(nil), b.handlers[event.EventName()]...)
	b.mu.Unlock()

	for _, h := range handlers {
		if err := h.Handle(ctx, event); err != nil {
			return err
		}
	}
	return nil
}

func (b *Bus) Subscribe(eventName string, handler events.Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[eventName] = append(b.handlers[eventName], handler)
}

// Names returns the names of the recorded events in publish order.
func (b *Bus) Names() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	names := make([]string, len(b.Events))
	for i, e := range b.Events {
		names[i] = e.EventName()
	}
	return names
}
