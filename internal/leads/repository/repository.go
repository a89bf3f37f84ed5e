package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"sales_crm_backend/internal/leads/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNotFound = errors.New("lead not found")

type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const leadColumns = `id, organization_id, company_name, contact_name, email, phone, status,
	deal_value, probability, source, owner_email, last_contact_at, created_at, updated_at`

// rowScanner is satisfied by pgx.Row and pgx.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanLead(row rowScanner) (domain.Lead, error) {
	var lead domain.Lead
	var status string
	err := row.Scan(
		&lead.ID, &lead.OrganizationID, &lead.CompanyName, &lead.ContactName, &lead.Email, &lead.Phone, &status,
		&lead.Value, &lead.Probability, &lead.Source, &lead.OwnerEmail, &lead.LastContact, &lead.CreatedAt, &lead.UpdatedAt,
	)
	if err != nil {
		return domain.Lead{}, err
	}
	lead.Status = domain.LeadStatus(status)
	return lead, nil
}

func collectLeads(rows pgx.Rows) ([]domain.Lead, error) {
	defer rows.Close()

	leads := make([]domain.Lead, 0)
	for rows.Next() {
		lead, err := scanLead(rows)
		if err != nil {
			return nil, err
		}
		leads = append(leads, lead)
	}

	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return leads, nil
}

type CreateLeadParams struct {
	OrganizationID uuid.UUID
	CompanyName    string
	ContactName    string
	Email          *string
	Phone          *string
	Status         domain.LeadStatus
	Value          *float64
	Probability    *float64
	Source         *string
	OwnerEmail     *string
}

func (r *Repository) Create(ctx context.Context, params CreateLeadParams) (domain.Lead, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO crm_leads (
			id, organization_id, company_name, contact_name, email, phone, status,
			deal_value, probability, source, owner_email
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING `+leadColumns,
		uuid.New(), params.OrganizationID, params.CompanyName, params.ContactName, params.Email, params.Phone, string(params.Status),
		params.Value, params.Probability, params.Source, params.OwnerEmail,
	)
	return scanLead(row)
}

const getLeadByIDQuery = `SELECT ` + leadColumns + ` FROM crm_leads WHERE id = $1 AND organization_id = $2`

func (r *Repository) GetByID(ctx context.Context, id uuid.UUID, organizationID uuid.UUID) (domain.Lead, error) {
	lead, err := scanLead(r.pool.QueryRow(ctx, getLeadByIDQuery, id, organizationID))
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Lead{}, ErrNotFound
	}
	return lead, err
}

type ListParams struct {
	OrganizationID uuid.UUID
	Status         *domain.LeadStatus
	Search         string
	Offset         int
	Limit          int
}

func (r *Repository) List(ctx context.Context, params ListParams) ([]domain.Lead, int, error) {
	whereClause, args, argIdx := buildLeadListWhere(params)

	var total int
	countQuery := "SELECT COUNT(*) FROM crm_leads WHERE " + whereClause
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, params.Limit, params.Offset)
	query := fmt.Sprintf(`
		SELECT %s FROM crm_leads
		WHERE %s
		ORDER BY created_at DESC, id
		LIMIT $%d OFFSET $%d
	`, leadColumns, whereClause, argIdx, argIdx+1)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	leads, err := collectLeads(rows)
	if err != nil {
		return nil, 0, err
	}
	return leads, total, nil
}

func buildLeadListWhere(params ListParams) (string, []interface{}, int) {
	// Organization ID is always the first filter (mandatory for tenant isolation)
	whereClauses := []string{"organization_id = $1"}
	args := []interface{}{params.OrganizationID}
	argIdx := 2

	if params.Status != nil {
		whereClauses = append(whereClauses, fmt.Sprintf("status = $%d", argIdx))
		args = append(args, string(*params.Status))
		argIdx++
	}

	if search := strings.TrimSpace(params.Search); search != "" {
		whereClauses = append(whereClauses, fmt.Sprintf(
			"(company_name ILIKE $%d OR contact_name ILIKE $%d OR email ILIKE $%d)", argIdx, argIdx, argIdx))
		args = append(args, "%"+escapeLike(search)+"%")
		argIdx++
	}

	return strings.Join(whereClauses, " AND "), args, argIdx
}

func escapeLike(value string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(value)
}

// UpdateLeadParams carries a partial update; nil fields are left untouched.
type UpdateLeadParams struct {
	CompanyName *string
	ContactName *string
	Email       *string
	Phone       *string
	Value       *float64
	Probability *float64
	Source      *string
	OwnerEmail  *string
}

func (r *Repository) Update(ctx context.Context, id uuid.UUID, organizationID uuid.UUID, params UpdateLeadParams) (domain.Lead, error) {
	setClauses := []string{}
	args := []interface{}{}
	argIdx := 1

	fields := []struct {
		enabled bool
		column  string
		value   interface{}
	}{
		{params.CompanyName != nil, "company_name", params.CompanyName},
		{params.ContactName != nil, "contact_name", params.ContactName},
		{params.Email != nil, "email", params.Email},
		{params.Phone != nil, "phone", params.Phone},
		{params.Value != nil, "deal_value", params.Value},
		{params.Probability != nil, "probability", params.Probability},
		{params.Source != nil, "source", params.Source},
		{params.OwnerEmail != nil, "owner_email", params.OwnerEmail},
	}

	for _, field := range fields {
		if !field.enabled {
			continue
		}
		setClauses = append(setClauses, fmt.Sprintf("%s = $%d", field.column, argIdx))
		args = append(args, field.value)
		argIdx++
	}

	if len(setClauses) == 0 {
		return r.GetByID(ctx, id, organizationID)
	}

	setClauses = append(setClauses, "updated_at = now()")
	args = append(args, id, organizationID)

	query := fmt.Sprintf(`
		UPDATE crm_leads SET %s
		WHERE id = $%d AND organization_id = $%d
		RETURNING %s
	`, strings.Join(setClauses, ", "), argIdx, argIdx+1, leadColumns)

	lead, err := scanLead(r.pool.QueryRow(ctx, query, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Lead{}, ErrNotFound
	}
	return lead, err
}

const updateLeadStatusQuery = `
	UPDATE crm_leads SET status = $3, updated_at = now()
	WHERE id = $1 AND organization_id = $2
	RETURNING ` + leadColumns

func (r *Repository) UpdateStatus(ctx context.Context, id uuid.UUID, organizationID uuid.UUID, status domain.LeadStatus) (domain.Lead, error) {
	lead, err := scanLead(r.pool.QueryRow(ctx, updateLeadStatusQuery, id, organizationID, string(status)))
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Lead{}, ErrNotFound
	}
	return lead, err
}

// Only moves last_contact_at forward.
const touchLastContactQuery = `
	UPDATE crm_leads
	SET last_contact_at = $3, updated_at = now()
	WHERE id = $1 AND organization_id = $2
		AND (last_contact_at IS NULL OR last_contact_at < $3)`

// TouchLastContact advances the lead's last contact to at when at is newer.
func (r *Repository) TouchLastContact(ctx context.Context, id uuid.UUID, organizationID uuid.UUID, at time.Time) error {
	_, err := r.pool.Exec(ctx, touchLastContactQuery, id, organizationID, at)
	return err
}

const deleteLeadQuery = `DELETE FROM crm_leads WHERE id = $1 AND organization_id = $2`

func (r *Repository) Delete(ctx context.Context, id uuid.UUID, organizationID uuid.UUID) error {
	result, err := r.pool.Exec(ctx, deleteLeadQuery, id, organizationID)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

const deleteOrganizationLeadsQuery = `DELETE FROM crm_leads WHERE organization_id = $1`

// DeleteAllForOrganization removes every lead of a tenant. Activities go with
// them through the foreign key cascade.
func (r *Repository) DeleteAllForOrganization(ctx context.Context, organizationID uuid.UUID) (int64, error) {
	result, err := r.pool.Exec(ctx, deleteOrganizationLeadsQuery, organizationID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}

const listOpenLeadsQuery = `
	SELECT ` + leadColumns + ` FROM crm_leads
	WHERE organization_id = $1 AND status NOT IN ('Closed', 'Lost')
	ORDER BY updated_at DESC, id
	LIMIT NULLIF($2, 0)`

// ListOpenLeads returns up to limit leads that are neither Closed nor Lost.
// A limit of zero or less returns every open lead.
func (r *Repository) ListOpenLeads(ctx context.Context, organizationID uuid.UUID, limit int) ([]domain.Lead, error) {
	rows, err := r.pool.Query(ctx, listOpenLeadsQuery, organizationID, openLeadsLimit(limit))
	if err != nil {
		return nil, err
	}
	return collectLeads(rows)
}

// openLeadsLimit maps "no limit" to 0, which the query turns into LIMIT NULL.
func openLeadsLimit(limit int) int {
	if limit < 0 {
		return 0
	}
	return limit
}

// ListOrganizationsWithOpenLeads is the only unscoped read; the follow-up
// sweep uses it to fan out one task per tenant.
func (r *Repository) ListOrganizationsWithOpenLeads(ctx context.Context) ([]uuid.UUID, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT DISTINCT organization_id FROM crm_leads
		WHERE status NOT IN ('Closed', 'Lost')
		ORDER BY organization_id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := make([]uuid.UUID, 0)
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return ids, nil
}
