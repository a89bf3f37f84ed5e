// Package activities handles the append-only touchpoint log of a lead.
package activities

import (
	"context"
	"errors"
	"time"

	"sales_crm_backend/internal/events"
	"sales_crm_backend/internal/leads/domain"
	"sales_crm_backend/internal/leads/repository"
	"sales_crm_backend/internal/leads/transport"
	"sales_crm_backend/platform/apperr"
	"sales_crm_backend/platform/sanitize"

	"github.com/google/uuid"
)

// futureTolerance absorbs clock skew between clients and the server.
const futureTolerance = 5 * time.Minute

// Repository defines the data access needed by the activity service.
type Repository interface {
	repository.ActivityReader
	repository.ActivityWriter
	repository.LeadContactTracker
	GetByID(ctx context.Context, id uuid.UUID, organizationID uuid.UUID) (domain.Lead, error)
}

// Service logs, lists and corrects activities.
type Service struct {
	repo     Repository
	eventBus events.Bus
	now      func() time.Time
}

// New creates a new activity service.
func New(repo Repository, eventBus events.Bus) *Service {
	return &Service{repo: repo, eventBus: eventBus, now: time.Now}
}

// SetClock overrides the wall clock. Used by tests.
func (s *Service) SetClock(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

// Log appends an activity to a lead and advances the lead's last contact.
func (s *Service) Log(ctx context.Context, leadID uuid.UUID, tenantID uuid.UUID, req transport.LogActivityRequest) (transport.ActivityResponse, error) {
	activityType := domain.ActivityType(req.Type)
	if !domain.IsKnownActivityType(activityType) {
		return transport.ActivityResponse{}, apperr.Validation("unknown activity type")
	}

	outcome := domain.OutcomeNone
	if req.Outcome != "" {
		outcome = domain.ActivityOutcome(req.Outcome)
		if !domain.IsKnownActivityOutcome(outcome) {
			return transport.ActivityResponse{}, apperr.Validation("unknown activity outcome")
		}
	}

	now := s.now().UTC()
	at := now
	if req.Timestamp != nil && !req.Timestamp.IsZero() {
		at = req.Timestamp.UTC()
	}
	if at.After(now.Add(futureTolerance)) {
		return transport.ActivityResponse{}, apperr.Validation("activity timestamp cannot be in the future")
	}

	activity, err := s.repo.CreateActivity(ctx, repository.CreateActivityParams{
		LeadID:         leadID,
		OrganizationID: tenantID,
		Type:           activityType,
		Outcome:        outcome,
		Notes:          sanitize.Text(req.Notes),
		Timestamp:      at,
	})
	if err != nil {
		return transport.ActivityResponse{}, mapNotFound(err)
	}

	if err := s.repo.TouchLastContact(ctx, leadID, tenantID, activity.Timestamp); err != nil {
		return transport.ActivityResponse{}, err
	}

	s.eventBus.Publish(ctx, events.ActivityLogged{
		BaseEvent:  events.NewBaseEventAt(now),
		ActivityID: activity.ID,
		LeadID:     leadID,
		TenantID:   tenantID,
		Type:       string(activity.Type),
		Outcome:    string(activity.Outcome),
		ActivityAt: activity.Timestamp,
	})

	return transport.ToActivityResponse(activity), nil
}

// List returns a lead's activities, newest first.
func (s *Service) List(ctx context.Context, leadID uuid.UUID, tenantID uuid.UUID) (transport.ActivityListResponse, error) {
	if _, err := s.repo.GetByID(ctx, leadID, tenantID); err != nil {
		return transport.ActivityListResponse{}, mapNotFound(err)
	}

	items, err := s.repo.ListActivities(ctx, leadID, tenantID)
	if err != nil {
		return transport.ActivityListResponse{}, err
	}
	return transport.ToActivityListResponse(items), nil
}

// Get returns a single activity of a lead.
func (s *Service) Get(ctx context.Context, leadID uuid.UUID, activityID uuid.UUID, tenantID uuid.UUID) (transport.ActivityResponse, error) {
	activity, err := s.repo.GetActivityByID(ctx, activityID, leadID, tenantID)
	if err != nil {
		return transport.ActivityResponse{}, mapNotFound(err)
	}
	return transport.ToActivityResponse(activity), nil
}

// Correct amends the outcome and notes of a logged activity.
func (s *Service) Correct(ctx context.Context, leadID uuid.UUID, activityID uuid.UUID, tenantID uuid.UUID, req transport.CorrectActivityRequest) (transport.ActivityResponse, error) {
	if req.Outcome == nil && req.Notes == nil {
		return transport.ActivityResponse{}, apperr.Validation("nothing to correct")
	}

	params := repository.CorrectActivityParams{CorrectedAt: s.now().UTC()}
	if req.Outcome != nil {
		outcome := domain.ActivityOutcome(*req.Outcome)
		if !domain.IsKnownActivityOutcome(outcome) {
			return transport.ActivityResponse{}, apperr.Validation("unknown activity outcome")
		}
		params.Outcome = &outcome
	}
	if req.Notes != nil {
		notes := sanitize.Text(*req.Notes)
		params.Notes = &notes
	}

	activity, err := s.repo.CorrectActivity(ctx, activityID, leadID, tenantID, params)
	if err != nil {
		return transport.ActivityResponse{}, mapNotFound(err)
	}
	return transport.ToActivityResponse(activity), nil
}

func mapNotFound(err error) error {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return apperr.NotFound("lead not found")
	case errors.Is(err, repository.ErrActivityNotFound):
		return apperr.NotFound("activity not found")
	}
	return err
}
