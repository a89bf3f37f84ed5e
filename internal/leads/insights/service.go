// Package insights evaluates the scoring and next-best-action engines over
// stored leads and serves the results as read models.
package insights

import (
	"context"
	"errors"
	"sort"
	"time"

	"sales_crm_backend/internal/leads/domain"
	"sales_crm_backend/internal/leads/nextaction"
	"sales_crm_backend/internal/leads/playbook"
	"sales_crm_backend/internal/leads/repository"
	"sales_crm_backend/internal/leads/scoring"
	"sales_crm_backend/internal/leads/timing"
	"sales_crm_backend/internal/leads/transport"
	"sales_crm_backend/platform/apperr"
	"sales_crm_backend/platform/config"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

const (
	defaultPrioritizedLimit = 50
	maxPrioritizedLimit     = 200
	// noActionRank sorts leads without recommendations after every priority.
	noActionRank = 5
)

// Repository defines the reads the insight service needs.
type Repository interface {
	GetByID(ctx context.Context, id uuid.UUID, organizationID uuid.UUID) (domain.Lead, error)
	ListActivities(ctx context.Context, leadID uuid.UUID, organizationID uuid.UUID) ([]domain.Activity, error)
	ListOpenLeads(ctx context.Context, organizationID uuid.UUID, limit int) ([]domain.Lead, error)
	ListActivitiesForLeads(ctx context.Context, leadIDs []uuid.UUID, organizationID uuid.UUID) (map[uuid.UUID][]domain.Activity, error)
}

// TemplateRenderer resolves suggested template IDs to message content.
type TemplateRenderer interface {
	Render(id string, lead domain.Lead) (playbook.Template, bool)
}

// Evaluation is the engine output for one lead at one instant.
type Evaluation struct {
	Lead    domain.Lead
	Score   domain.AILeadScore
	Actions []domain.NextBestAction
}

// TopAction returns the highest priority recommendation, if any.
func (e Evaluation) TopAction() (domain.NextBestAction, bool) {
	if len(e.Actions) == 0 {
		return domain.NextBestAction{}, false
	}
	return e.Actions[0], true
}

// HasUrgent reports whether any recommendation is urgent.
func (e Evaluation) HasUrgent() bool {
	for _, a := range e.Actions {
		if a.Priority == domain.PriorityUrgent {
			return true
		}
	}
	return false
}

// Service evaluates leads against the engines.
type Service struct {
	repo      Repository
	templates TemplateRenderer
	location  *time.Location
	now       func() time.Time
}

// New creates a new insight service. Evaluation time is taken in the
// configured sales timezone.
func New(repo Repository, templates TemplateRenderer, cfg config.InsightsConfig) *Service {
	loc := time.UTC
	if cfg != nil && cfg.GetSalesLocation() != nil {
		loc = cfg.GetSalesLocation()
	}
	return &Service{repo: repo, templates: templates, location: loc, now: time.Now}
}

// SetClock overrides the wall clock. Used by tests.
func (s *Service) SetClock(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

// Now returns the evaluation instant in the sales timezone.
func (s *Service) Now() time.Time {
	return s.now().In(s.location)
}

// Evaluate runs both engines for a lead.
func Evaluate(lead domain.Lead, activities []domain.Activity, now time.Time) Evaluation {
	return Evaluation{
		Lead:    lead,
		Score:   scoring.CalculateAILeadScore(lead, activities, now),
		Actions: nextaction.GetNextBestActions(lead, activities, now),
	}
}

// GetInsights scores a single lead and lists its recommended actions.
func (s *Service) GetInsights(ctx context.Context, tenantID uuid.UUID, leadID uuid.UUID) (transport.InsightsResponse, error) {
	var (
		lead       domain.Lead
		activities []domain.Activity
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		lead, err = s.repo.GetByID(gctx, leadID, tenantID)
		return err
	})
	g.Go(func() error {
		var err error
		activities, err = s.repo.ListActivities(gctx, leadID, tenantID)
		return err
	})
	if err := g.Wait(); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return transport.InsightsResponse{}, apperr.NotFound("lead not found")
		}
		return transport.InsightsResponse{}, err
	}

	now := s.Now()
	eval := Evaluate(lead, activities, now)

	actions := make([]transport.NextBestActionResponse, len(eval.Actions))
	for i, a := range eval.Actions {
		actions[i] = s.toActionResponse(lead, a)
	}

	return transport.InsightsResponse{
		LeadID:      lead.ID,
		Score:       transport.ToScoreResponse(eval.Score, scoring.Version),
		Actions:     actions,
		EvaluatedAt: now,
	}, nil
}

// EvaluateOpenLeads evaluates up to limit open leads of a tenant. Activities
// are fetched in one batch.
func (s *Service) EvaluateOpenLeads(ctx context.Context, tenantID uuid.UUID, limit int) ([]Evaluation, time.Time, error) {
	leads, err := s.repo.ListOpenLeads(ctx, tenantID, limit)
	if err != nil {
		return nil, time.Time{}, err
	}

	ids := make([]uuid.UUID, len(leads))
	for i, lead := range leads {
		ids[i] = lead.ID
	}
	grouped, err := s.repo.ListActivitiesForLeads(ctx, ids, tenantID)
	if err != nil {
		return nil, time.Time{}, err
	}

	now := s.Now()
	evals := make([]Evaluation, len(leads))
	for i, lead := range leads {
		evals[i] = Evaluate(lead, grouped[lead.ID], now)
	}
	return evals, now, nil
}

// Prioritized ranks a tenant's open leads by score, then by the urgency of
// their top action.
func (s *Service) Prioritized(ctx context.Context, tenantID uuid.UUID, req transport.PrioritizedLeadsRequest) (transport.PrioritizedLeadsResponse, error) {
	limit := req.Limit
	if limit < 1 {
		limit = defaultPrioritizedLimit
	}
	if limit > maxPrioritizedLimit {
		limit = maxPrioritizedLimit
	}

	// Ranking needs every open lead; the limit applies to the ranked list.
	evals, now, err := s.EvaluateOpenLeads(ctx, tenantID, 0)
	if err != nil {
		return transport.PrioritizedLeadsResponse{}, err
	}
	SortByPriority(evals)
	if len(evals) > limit {
		evals = evals[:limit]
	}

	items := make([]transport.PrioritizedLeadResponse, len(evals))
	for i, eval := range evals {
		item := transport.PrioritizedLeadResponse{
			Lead:  transport.ToLeadResponse(eval.Lead),
			Score: transport.ToScoreResponse(eval.Score, scoring.Version),
		}
		if top, ok := eval.TopAction(); ok {
			resp := s.toActionResponse(eval.Lead, top)
			item.TopAction = &resp
		}
		items[i] = item
	}

	return transport.PrioritizedLeadsResponse{Items: items, EvaluatedAt: now}, nil
}

// SortByPriority orders evaluations by score descending, then by the rank
// of the top action. Ties keep lead ID order.
func SortByPriority(evals []Evaluation) {
	sort.SliceStable(evals, func(i, j int) bool {
		a, b := evals[i], evals[j]
		if a.Score.Score != b.Score.Score {
			return a.Score.Score > b.Score.Score
		}
		ra, rb := topRank(a), topRank(b)
		if ra != rb {
			return ra < rb
		}
		return a.Lead.ID.String() < b.Lead.ID.String()
	})
}

func topRank(e Evaluation) int {
	top, ok := e.TopAction()
	if !ok {
		return noActionRank
	}
	return timing.PriorityRank(top.Priority)
}

func (s *Service) toActionResponse(lead domain.Lead, a domain.NextBestAction) transport.NextBestActionResponse {
	resp := transport.ToNextBestActionResponse(a)
	if a.SuggestedTemplate == "" || s.templates == nil {
		return resp
	}
	if tmpl, ok := s.templates.Render(a.SuggestedTemplate, lead); ok {
		resp.Template = &transport.MessageTemplateResponse{
			ID:      tmpl.ID,
			Channel: tmpl.Channel,
			Subject: tmpl.Subject,
			Body:    tmpl.Body,
		}
	}
	return resp
}
