// Package http holds what the router needs from the composition root: the
// application dependencies and the contract every route-owning module meets.
package http

import (
	"context"

	"sales_crm_backend/platform/config"
	"sales_crm_backend/platform/logger"

	"github.com/gin-gonic/gin"
)

// RouterConfig is the slice of configuration the router reads.
type RouterConfig interface {
	config.HTTPConfig
	config.JWTConfig
}

// HealthChecker backs GET /api/health.
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// Module is a bounded context that mounts its own routes.
type Module interface {
	Name() string
	RegisterRoutes(ctx *RouterContext)
}

// RouterContext carries the groups a module may mount on.
type RouterContext struct {
	// Public is /api/v1 without authentication.
	Public *gin.RouterGroup
	// Tenant is /api/v1 behind a verified token that names an organization.
	Tenant *gin.RouterGroup
}

// App is assembled in main and handed to router.New.
type App struct {
	Config  RouterConfig
	Logger  *logger.Logger
	Health  HealthChecker // nil skips the database ping
	Modules []Module
}
