package handler

import (
	"net/http"

	"sales_crm_backend/internal/leads/transport"
	"sales_crm_backend/platform/httpkit"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ListActivities returns a lead's activity log.
// GET /api/v1/leads/:id/activities
func (h *Handler) ListActivities(c *gin.Context) {
	leadID, ok := parseLeadID(c)
	if !ok {
		return
	}
	_, tenantID, ok := httpkit.MustGetTenant(c)
	if !ok {
		return
	}

	result, err := h.activities.List(c.Request.Context(), leadID, tenantID)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// LogActivity appends an activity.
// POST /api/v1/leads/:id/activities
func (h *Handler) LogActivity(c *gin.Context) {
	leadID, ok := parseLeadID(c)
	if !ok {
		return
	}
	var req transport.LogActivityRequest
	if !h.bindJSON(c, &req) {
		return
	}
	_, tenantID, ok := httpkit.MustGetTenant(c)
	if !ok {
		return
	}

	result, err := h.activities.Log(c.Request.Context(), leadID, tenantID, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.JSON(c, http.StatusCreated, result)
}

// GetActivity returns one activity.
// GET /api/v1/leads/:id/activities/:activityId
func (h *Handler) GetActivity(c *gin.Context) {
	leadID, ok := parseLeadID(c)
	if !ok {
		return
	}
	activityID, ok := parseActivityID(c)
	if !ok {
		return
	}
	_, tenantID, ok := httpkit.MustGetTenant(c)
	if !ok {
		return
	}

	result, err := h.activities.Get(c.Request.Context(), leadID, activityID, tenantID)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// CorrectActivity amends an activity's outcome or notes.
// PATCH /api/v1/leads/:id/activities/:activityId
func (h *Handler) CorrectActivity(c *gin.Context) {
	leadID, ok := parseLeadID(c)
	if !ok {
		return
	}
	activityID, ok := parseActivityID(c)
	if !ok {
		return
	}
	var req transport.CorrectActivityRequest
	if !h.bindJSON(c, &req) {
		return
	}
	_, tenantID, ok := httpkit.MustGetTenant(c)
	if !ok {
		return
	}

	result, err := h.activities.Correct(c.Request.Context(), leadID, activityID, tenantID, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

func parseActivityID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("activityId"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid activity id", nil)
		return uuid.Nil, false
	}
	return id, true
}
