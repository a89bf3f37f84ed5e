package handler

import (
	"net/http"

	"sales_crm_backend/internal/leads/activities"
	"sales_crm_backend/internal/leads/audit"
	"sales_crm_backend/internal/leads/insights"
	"sales_crm_backend/internal/leads/management"
	"sales_crm_backend/internal/leads/transport"
	"sales_crm_backend/platform/httpkit"
	"sales_crm_backend/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// RoleAdmin may offboard a whole organization's lead data.
const RoleAdmin = "admin"

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
	msgInvalidLeadID    = "invalid lead id"
)

// Handler handles HTTP requests for leads.
type Handler struct {
	mgmt       *management.Service
	activities *activities.Service
	insights   *insights.Service
	audit      *audit.Service
	val        *validator.Validator
}

// New creates a new leads handler.
func New(mgmt *management.Service, activitySvc *activities.Service, insightSvc *insights.Service, auditSvc *audit.Service, val *validator.Validator) *Handler {
	return &Handler{
		mgmt:       mgmt,
		activities: activitySvc,
		insights:   insightSvc,
		audit:      auditSvc,
		val:        val,
	}
}

// RegisterRoutes mounts the lead routes on rg, which is expected to be
// /api/v1/leads behind authentication.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.List)
	rg.POST("", h.Create)
	rg.GET("/prioritized", h.Prioritized)
	rg.GET("/:id", h.GetByID)
	rg.PUT("/:id", h.Update)
	rg.DELETE("/:id", h.Delete)
	rg.PATCH("/:id/status", h.UpdateStatus)
	rg.GET("/:id/activities", h.ListActivities)
	rg.POST("/:id/activities", h.LogActivity)
	rg.GET("/:id/activities/:activityId", h.GetActivity)
	rg.PATCH("/:id/activities/:activityId", h.CorrectActivity)
	rg.GET("/:id/insights", h.GetInsights)
	rg.POST("/:id/audit", h.Audit)
}

// RegisterOrganizationRoutes mounts tenant-wide routes on rg, which is
// expected to be /api/v1/organization behind authentication.
func (h *Handler) RegisterOrganizationRoutes(rg *gin.RouterGroup) {
	rg.DELETE("/leads", httpkit.RequireRole(RoleAdmin), h.Offboard)
}

// Create creates a lead.
// POST /api/v1/leads
func (h *Handler) Create(c *gin.Context) {
	var req transport.CreateLeadRequest
	if !h.bindJSON(c, &req) {
		return
	}
	_, tenantID, ok := httpkit.MustGetTenant(c)
	if !ok {
		return
	}

	result, err := h.mgmt.Create(c.Request.Context(), tenantID, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.JSON(c, http.StatusCreated, result)
}

// List returns a page of leads.
// GET /api/v1/leads
func (h *Handler) List(c *gin.Context) {
	var req transport.ListLeadsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, validator.Messages(err))
		return
	}
	_, tenantID, ok := httpkit.MustGetTenant(c)
	if !ok {
		return
	}

	result, err := h.mgmt.List(c.Request.Context(), tenantID, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// GetByID returns a lead.
// GET /api/v1/leads/:id
func (h *Handler) GetByID(c *gin.Context) {
	id, ok := parseLeadID(c)
	if !ok {
		return
	}
	_, tenantID, ok := httpkit.MustGetTenant(c)
	if !ok {
		return
	}

	result, err := h.mgmt.GetByID(c.Request.Context(), id, tenantID)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// Update applies a partial update to a lead.
// PUT /api/v1/leads/:id
func (h *Handler) Update(c *gin.Context) {
	id, ok := parseLeadID(c)
	if !ok {
		return
	}
	var req transport.UpdateLeadRequest
	if !h.bindJSON(c, &req) {
		return
	}
	_, tenantID, ok := httpkit.MustGetTenant(c)
	if !ok {
		return
	}

	result, err := h.mgmt.Update(c.Request.Context(), id, tenantID, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// UpdateStatus moves a lead to another stage.
// PATCH /api/v1/leads/:id/status
func (h *Handler) UpdateStatus(c *gin.Context) {
	id, ok := parseLeadID(c)
	if !ok {
		return
	}
	var req transport.UpdateLeadStatusRequest
	if !h.bindJSON(c, &req) {
		return
	}
	_, tenantID, ok := httpkit.MustGetTenant(c)
	if !ok {
		return
	}

	result, err := h.mgmt.UpdateStatus(c.Request.Context(), id, tenantID, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// Delete removes a lead.
// DELETE /api/v1/leads/:id
func (h *Handler) Delete(c *gin.Context) {
	id, ok := parseLeadID(c)
	if !ok {
		return
	}
	_, tenantID, ok := httpkit.MustGetTenant(c)
	if !ok {
		return
	}

	if httpkit.HandleError(c, h.mgmt.Delete(c.Request.Context(), id, tenantID)) {
		return
	}
	c.Status(http.StatusNoContent)
}

// Offboard deletes every lead of the caller's organization.
// DELETE /api/v1/organization/leads
func (h *Handler) Offboard(c *gin.Context) {
	_, tenantID, ok := httpkit.MustGetTenant(c)
	if !ok {
		return
	}

	result, err := h.mgmt.OffboardOrganization(c.Request.Context(), tenantID)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

func (h *Handler) bindJSON(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return false
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, validator.Messages(err))
		return false
	}
	return true
}

func parseLeadID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidLeadID, nil)
		return uuid.Nil, false
	}
	return id, true
}
