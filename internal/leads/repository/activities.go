package repository

import (
	"context"
	"errors"
	"time"

	"sales_crm_backend/internal/leads/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

var ErrActivityNotFound = errors.New("activity not found")

const activityColumns = `id, lead_id, organization_id, type, outcome, notes, occurred_at, corrected_at, created_at`

func scanActivity(row rowScanner) (domain.Activity, error) {
	var a domain.Activity
	var activityType, outcome string
	err := row.Scan(&a.ID, &a.LeadID, &a.OrganizationID, &activityType, &outcome, &a.Notes, &a.Timestamp, &a.CorrectedAt, &a.CreatedAt)
	if err != nil {
		return domain.Activity{}, err
	}
	a.Type = domain.ActivityType(activityType)
	a.Outcome = domain.ActivityOutcome(outcome)
	return a, nil
}

func collectActivities(rows pgx.Rows) ([]domain.Activity, error) {
	defer rows.Close()

	items := make([]domain.Activity, 0)
	for rows.Next() {
		a, err := scanActivity(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, a)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return items, nil
}

type CreateActivityParams struct {
	LeadID         uuid.UUID
	OrganizationID uuid.UUID
	Type           domain.ActivityType
	Outcome        domain.ActivityOutcome
	Notes          string
	Timestamp      time.Time
}

// The lead must belong to the same organization; otherwise nothing is inserted.
const createActivityQuery = `
	INSERT INTO crm_activities (id, lead_id, organization_id, type, outcome, notes, occurred_at)
	SELECT $1, l.id, l.organization_id, $4, $5, $6, $7
	FROM crm_leads l WHERE l.id = $2 AND l.organization_id = $3
	RETURNING ` + activityColumns

func (r *Repository) CreateActivity(ctx context.Context, params CreateActivityParams) (domain.Activity, error) {
	a, err := scanActivity(r.pool.QueryRow(ctx, createActivityQuery,
		uuid.New(), params.LeadID, params.OrganizationID,
		string(params.Type), string(params.Outcome), params.Notes, params.Timestamp,
	))
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Activity{}, ErrNotFound
	}
	return a, err
}

const getActivityQuery = `
	SELECT ` + activityColumns + ` FROM crm_activities
	WHERE id = $1 AND lead_id = $2 AND organization_id = $3`

func (r *Repository) GetActivityByID(ctx context.Context, id uuid.UUID, leadID uuid.UUID, organizationID uuid.UUID) (domain.Activity, error) {
	a, err := scanActivity(r.pool.QueryRow(ctx, getActivityQuery, id, leadID, organizationID))
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Activity{}, ErrActivityNotFound
	}
	return a, err
}

const listActivitiesQuery = `
	SELECT ` + activityColumns + ` FROM crm_activities
	WHERE lead_id = $1 AND organization_id = $2
	ORDER BY occurred_at DESC, id`

func (r *Repository) ListActivities(ctx context.Context, leadID uuid.UUID, organizationID uuid.UUID) ([]domain.Activity, error) {
	rows, err := r.pool.Query(ctx, listActivitiesQuery, leadID, organizationID)
	if err != nil {
		return nil, err
	}
	return collectActivities(rows)
}

const listActivitiesForLeadsQuery = `
	SELECT ` + activityColumns + ` FROM crm_activities
	WHERE organization_id = $1 AND lead_id = ANY($2)
	ORDER BY lead_id, occurred_at DESC, id`

// ListActivitiesForLeads loads the activities of several leads in one query,
// grouped by lead ID. Leads without activity are absent from the map.
func (r *Repository) ListActivitiesForLeads(ctx context.Context, leadIDs []uuid.UUID, organizationID uuid.UUID) (map[uuid.UUID][]domain.Activity, error) {
	grouped := make(map[uuid.UUID][]domain.Activity, len(leadIDs))
	if len(leadIDs) == 0 {
		return grouped, nil
	}

	rows, err := r.pool.Query(ctx, listActivitiesForLeadsQuery, organizationID, leadIDs)
	if err != nil {
		return nil, err
	}
	items, err := collectActivities(rows)
	if err != nil {
		return nil, err
	}
	for _, a := range items {
		grouped[a.LeadID] = append(grouped[a.LeadID], a)
	}
	return grouped, nil
}

type CorrectActivityParams struct {
	Outcome     *domain.ActivityOutcome
	Notes       *string
	CorrectedAt time.Time
}

const correctActivityQuery = `
	UPDATE crm_activities
	SET outcome = COALESCE($4, outcome), notes = COALESCE($5, notes), corrected_at = $6
	WHERE id = $1 AND lead_id = $2 AND organization_id = $3
	RETURNING ` + activityColumns

// CorrectActivity amends outcome and notes. Type and timestamp are immutable.
func (r *Repository) CorrectActivity(ctx context.Context, id uuid.UUID, leadID uuid.UUID, organizationID uuid.UUID, params CorrectActivityParams) (domain.Activity, error) {
	var outcome *string
	if params.Outcome != nil {
		v := string(*params.Outcome)
		outcome = &v
	}
	a, err := scanActivity(r.pool.QueryRow(ctx, correctActivityQuery, id, leadID, organizationID, outcome, params.Notes, params.CorrectedAt))
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Activity{}, ErrActivityNotFound
	}
	return a, err
}
