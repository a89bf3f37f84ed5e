package repository

import (
	"context"
	"time"

	"sales_crm_backend/internal/leads/domain"

	"github.com/google/uuid"
)

// =====================================
// Segregated Interfaces (Interface Segregation Principle)
// =====================================

// LeadReader provides tenant-scoped read access to leads.
type LeadReader interface {
	GetByID(ctx context.Context, id uuid.UUID, organizationID uuid.UUID) (domain.Lead, error)
	List(ctx context.Context, params ListParams) ([]domain.Lead, int, error)
}

// LeadWriter provides write operations for lead management.
type LeadWriter interface {
	Create(ctx context.Context, params CreateLeadParams) (domain.Lead, error)
	Update(ctx context.Context, id uuid.UUID, organizationID uuid.UUID, params UpdateLeadParams) (domain.Lead, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, organizationID uuid.UUID, status domain.LeadStatus) (domain.Lead, error)
	Delete(ctx context.Context, id uuid.UUID, organizationID uuid.UUID) error
	DeleteAllForOrganization(ctx context.Context, organizationID uuid.UUID) (int64, error)
}

// LeadContactTracker records when a lead was last contacted.
type LeadContactTracker interface {
	TouchLastContact(ctx context.Context, id uuid.UUID, organizationID uuid.UUID, at time.Time) error
}

// OpenLeadReader feeds the prioritization and follow-up sweep.
type OpenLeadReader interface {
	// ListOpenLeads treats a limit of zero or less as unbounded.
	ListOpenLeads(ctx context.Context, organizationID uuid.UUID, limit int) ([]domain.Lead, error)
	ListOrganizationsWithOpenLeads(ctx context.Context) ([]uuid.UUID, error)
}

// ActivityReader provides read access to a lead's activity log.
type ActivityReader interface {
	GetActivityByID(ctx context.Context, id uuid.UUID, leadID uuid.UUID, organizationID uuid.UUID) (domain.Activity, error)
	ListActivities(ctx context.Context, leadID uuid.UUID, organizationID uuid.UUID) ([]domain.Activity, error)
	ListActivitiesForLeads(ctx context.Context, leadIDs []uuid.UUID, organizationID uuid.UUID) (map[uuid.UUID][]domain.Activity, error)
}

// ActivityWriter appends and corrects activities.
type ActivityWriter interface {
	CreateActivity(ctx context.Context, params CreateActivityParams) (domain.Activity, error)
	CorrectActivity(ctx context.Context, id uuid.UUID, leadID uuid.UUID, organizationID uuid.UUID, params CorrectActivityParams) (domain.Activity, error)
}

// LeadsRepository composes every capability. Services should depend on the
// narrowest interface they need.
type LeadsRepository interface {
	LeadReader
	LeadWriter
	LeadContactTracker
	OpenLeadReader
	ActivityReader
	ActivityWriter
}

var _ LeadsRepository = (*Repository)(nil)
