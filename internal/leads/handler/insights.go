package handler

import (
	"net/http"

	"sales_crm_backend/internal/leads/transport"
	"sales_crm_backend/platform/httpkit"
	"sales_crm_backend/platform/validator"

	"github.com/gin-gonic/gin"
)

// GetInsights returns the score and next best actions of a lead.
// GET /api/v1/leads/:id/insights
func (h *Handler) GetInsights(c *gin.Context) {
	leadID, ok := parseLeadID(c)
	if !ok {
		return
	}
	_, tenantID, ok := httpkit.MustGetTenant(c)
	if !ok {
		return
	}

	result, err := h.insights.GetInsights(c.Request.Context(), tenantID, leadID)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// Prioritized ranks the organization's open leads.
// GET /api/v1/leads/prioritized
func (h *Handler) Prioritized(c *gin.Context) {
	var req transport.PrioritizedLeadsRequest
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

	result, err := h.insights.Prioritized(c.Request.Context(), tenantID, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// Audit asks the AI model for a business review of a lead.
// POST /api/v1/leads/:id/audit
func (h *Handler) Audit(c *gin.Context) {
	leadID, ok := parseLeadID(c)
	if !ok {
		return
	}
	_, tenantID, ok := httpkit.MustGetTenant(c)
	if !ok {
		return
	}

	result, err := h.audit.Audit(c.Request.Context(), tenantID, leadID)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}
