// Package leads provides the lead management bounded context module.
// This file defines the module that encapsulates all leads setup and route registration.
package leads

import (
	"context"
	"fmt"

	"sales_crm_backend/internal/events"
	apphttp "sales_crm_backend/internal/http"
	"sales_crm_backend/internal/leads/activities"
	"sales_crm_backend/internal/leads/audit"
	"sales_crm_backend/internal/leads/handler"
	"sales_crm_backend/internal/leads/insights"
	"sales_crm_backend/internal/leads/management"
	"sales_crm_backend/internal/leads/playbook"
	"sales_crm_backend/internal/leads/repository"
	"sales_crm_backend/internal/leads/transport"
	"sales_crm_backend/platform/config"
	"sales_crm_backend/platform/logger"
	"sales_crm_backend/platform/phone"
	"sales_crm_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// ModuleConfig combines the config interfaces the leads module reads.
type ModuleConfig interface {
	config.LeadsConfig
	config.InsightsConfig
	config.PlaybookConfig
	config.AuditConfig
}

// Module is the leads bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
}

// NewModule creates and initializes the leads module with all its dependencies.
func NewModule(ctx context.Context, pool *pgxpool.Pool, eventBus events.Bus, val *validator.Validator, cfg ModuleConfig, log *logger.Logger) (*Module, error) {
	if err := transport.RegisterValidation(val); err != nil {
		return nil, fmt.Errorf("register lead validation: %w", err)
	}

	pb, err := playbook.Load(cfg.GetPlaybookPath())
	if err != nil {
		return nil, err
	}

	var generator audit.Generator
	if cfg.IsAuditEnabled() {
		g, err := audit.NewGeminiGenerator(ctx, cfg)
		if err != nil {
			return nil, err
		}
		generator = g
		log.Info("lead audit enabled", "model", g.Model())
	}

	repo := repository.New(pool)

	// Focused services (vertical slices)
	mgmtSvc := management.New(repo, eventBus, phone.NewNormalizer(cfg.GetPhoneDefaultRegion()))
	activitySvc := activities.New(repo, eventBus)
	insightSvc := insights.New(repo, pb, cfg)
	auditSvc := audit.New(repo, insightSvc, generator, log)

	return &Module{
		handler: handler.New(mgmtSvc, activitySvc, insightSvc, auditSvc, val),
	}, nil
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "leads"
}

// RegisterRoutes mounts the lead routes.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterRoutes(ctx.Tenant.Group("/leads"))
	m.handler.RegisterOrganizationRoutes(ctx.Tenant.Group("/organization"))
}
