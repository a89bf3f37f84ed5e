// Package management handles lead CRUD operations.
// This is a vertically sliced feature package containing service logic
// for creating, reading, updating, and deleting leads.
package management

import (
	"context"
	"errors"
	"strings"

	"sales_crm_backend/internal/events"
	"sales_crm_backend/internal/leads/domain"
	"sales_crm_backend/internal/leads/repository"
	"sales_crm_backend/internal/leads/transport"
	"sales_crm_backend/platform/apperr"
	"sales_crm_backend/platform/phone"
	"sales_crm_backend/platform/sanitize"

	"github.com/google/uuid"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// Repository defines the data access interface needed by the management service.
// This is a consumer-driven interface - only what management needs.
type Repository interface {
	repository.LeadReader
	repository.LeadWriter
}

// Service handles lead management operations (CRUD).
type Service struct {
	repo     Repository
	eventBus events.Bus
	phone    *phone.Normalizer
}

// New creates a new lead management service.
func New(repo Repository, eventBus events.Bus, normalizer *phone.Normalizer) *Service {
	return &Service{repo: repo, eventBus: eventBus, phone: normalizer}
}

// Create creates a new lead. Status defaults to New.
func (s *Service) Create(ctx context.Context, tenantID uuid.UUID, req transport.CreateLeadRequest) (transport.LeadResponse, error) {
	status := domain.LeadStatusNew
	if req.Status != "" {
		status = domain.LeadStatus(req.Status)
		if !domain.IsKnownLeadStatus(status) {
			return transport.LeadResponse{}, errUnknownStatus()
		}
	}

	companyName := sanitize.Text(req.CompanyName)
	contactName := sanitize.Text(req.ContactName)
	if companyName == "" || contactName == "" {
		return transport.LeadResponse{}, apperr.Validation("company and contact name are required")
	}

	params := repository.CreateLeadParams{
		OrganizationID: tenantID,
		CompanyName:    companyName,
		ContactName:    contactName,
		Email:          normalizeEmail(&req.Email),
		Phone:          s.phone.E164Ptr(&req.Phone),
		Status:         status,
		Value:          req.Value,
		Probability:    req.Probability,
		Source:         sanitize.TextPtr(req.Source),
		OwnerEmail:     normalizeEmail(req.OwnerEmail),
	}

	lead, err := s.repo.Create(ctx, params)
	if err != nil {
		return transport.LeadResponse{}, err
	}

	s.eventBus.Publish(ctx, events.LeadCreated{
		BaseEvent: events.NewBaseEvent(),
		LeadID:    lead.ID,
		TenantID:  tenantID,
		Status:    string(lead.Status),
		Source:    lead.Source,
	})

	return transport.ToLeadResponse(lead), nil
}

// GetByID retrieves a lead by ID.
func (s *Service) GetByID(ctx context.Context, id uuid.UUID, tenantID uuid.UUID) (transport.LeadResponse, error) {
	lead, err := s.repo.GetByID(ctx, id, tenantID)
	if err != nil {
		return transport.LeadResponse{}, mapNotFound(err)
	}
	return transport.ToLeadResponse(lead), nil
}

// List returns a page of the tenant's leads, newest first.
func (s *Service) List(ctx context.Context, tenantID uuid.UUID, req transport.ListLeadsRequest) (transport.LeadListResponse, error) {
	if req.Page < 1 {
		req.Page = 1
	}
	if req.PageSize < 1 {
		req.PageSize = defaultPageSize
	}
	if req.PageSize > maxPageSize {
		req.PageSize = maxPageSize
	}

	params := repository.ListParams{
		OrganizationID: tenantID,
		Search:         req.Search,
		Offset:         (req.Page - 1) * req.PageSize,
		Limit:          req.PageSize,
	}
	if req.Status != "" {
		status := domain.LeadStatus(req.Status)
		if !domain.IsKnownLeadStatus(status) {
			return transport.LeadListResponse{}, errUnknownStatus()
		}
		params.Status = &status
	}

	leads, total, err := s.repo.List(ctx, params)
	if err != nil {
		return transport.LeadListResponse{}, err
	}

	items := make([]transport.LeadResponse, len(leads))
	for i, lead := range leads {
		items[i] = transport.ToLeadResponse(lead)
	}

	totalPages := (total + req.PageSize - 1) / req.PageSize

	return transport.LeadListResponse{
		Items:      items,
		Total:      total,
		Page:       req.Page,
		PageSize:   req.PageSize,
		TotalPages: totalPages,
	}, nil
}

// Update applies a partial update to a lead's attributes.
func (s *Service) Update(ctx context.Context, id uuid.UUID, tenantID uuid.UUID, req transport.UpdateLeadRequest) (transport.LeadResponse, error) {
	params := repository.UpdateLeadParams{
		Value:       req.Value,
		Probability: req.Probability,
	}

	if req.CompanyName != nil {
		name := sanitize.Text(*req.CompanyName)
		if name == "" {
			return transport.LeadResponse{}, apperr.Validation("company name cannot be empty")
		}
		params.CompanyName = &name
	}
	if req.ContactName != nil {
		name := sanitize.Text(*req.ContactName)
		if name == "" {
			return transport.LeadResponse{}, apperr.Validation("contact name cannot be empty")
		}
		params.ContactName = &name
	}
	if req.Source != nil {
		source := sanitize.Text(*req.Source)
		params.Source = &source
	}
	if req.Phone != nil {
		normalized := s.phone.E164(*req.Phone)
		params.Phone = &normalized
	}
	if req.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*req.Email))
		params.Email = &email
	}
	if req.OwnerEmail != nil {
		owner := strings.ToLower(strings.TrimSpace(*req.OwnerEmail))
		params.OwnerEmail = &owner
	}

	lead, err := s.repo.Update(ctx, id, tenantID, params)
	if err != nil {
		return transport.LeadResponse{}, mapNotFound(err)
	}
	return transport.ToLeadResponse(lead), nil
}

// UpdateStatus moves a lead to another pipeline stage. Setting the current
// status again is a no-op and publishes nothing.
func (s *Service) UpdateStatus(ctx context.Context, id uuid.UUID, tenantID uuid.UUID, req transport.UpdateLeadStatusRequest) (transport.LeadResponse, error) {
	status := domain.LeadStatus(req.Status)
	if !domain.IsKnownLeadStatus(status) {
		return transport.LeadResponse{}, errUnknownStatus()
	}

	current, err := s.repo.GetByID(ctx, id, tenantID)
	if err != nil {
		return transport.LeadResponse{}, mapNotFound(err)
	}
	if current.Status == status {
		return transport.ToLeadResponse(current), nil
	}

	lead, err := s.repo.UpdateStatus(ctx, id, tenantID, status)
	if err != nil {
		return transport.LeadResponse{}, mapNotFound(err)
	}

	s.eventBus.Publish(ctx, events.LeadStatusChanged{
		BaseEvent: events.NewBaseEvent(),
		LeadID:    lead.ID,
		TenantID:  tenantID,
		OldStatus: string(current.Status),
		NewStatus: string(lead.Status),
	})

	return transport.ToLeadResponse(lead), nil
}

// Delete removes a lead and its activities.
func (s *Service) Delete(ctx context.Context, id uuid.UUID, tenantID uuid.UUID) error {
	return mapNotFound(s.repo.Delete(ctx, id, tenantID))
}

// OffboardOrganization deletes every lead the tenant owns.
func (s *Service) OffboardOrganization(ctx context.Context, tenantID uuid.UUID) (transport.OffboardResponse, error) {
	deleted, err := s.repo.DeleteAllForOrganization(ctx, tenantID)
	if err != nil {
		return transport.OffboardResponse{}, err
	}
	return transport.OffboardResponse{DeletedLeads: deleted}, nil
}

func mapNotFound(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return apperr.NotFound("lead not found")
	}
	return err
}

func normalizeEmail(value *string) *string {
	if value == nil {
		return nil
	}
	email := strings.ToLower(strings.TrimSpace(*value))
	if email == "" {
		return nil
	}
	return &email
}

func errUnknownStatus() error {
	allowed := make([]string, len(domain.LeadStatuses))
	for i, st := range domain.LeadStatuses {
		allowed[i] = string(st)
	}
	return apperr.Validation("unknown lead status").WithDetails(map[string][]string{"allowed": allowed})
}
