// Package events provides domain event definitions for decoupled,
// event-driven communication between modules.
// Infrastructure (Bus, Handler) is in platform/events.
package events

import (
	"time"

	"sales_crm_backend/platform/events"

	"github.com/google/uuid"
)

// Re-export platform types for convenience
type (
	Event       = events.Event
	Bus         = events.Bus
	Handler     = events.Handler
	HandlerFunc = events.HandlerFunc
	BaseEvent   = events.BaseEvent
)

// Re-export platform functions
var (
	NewBaseEvent   = events.NewBaseEvent
	NewBaseEventAt = events.NewBaseEventAt
)

// =============================================================================
// Leads Domain Events
// =============================================================================

// LeadCreated is published when a new lead is created.
type LeadCreated struct {
	BaseEvent
	LeadID   uuid.UUID `json:"leadId"`
	TenantID uuid.UUID `json:"tenantId"`
	Status   string    `json:"status"`
	Source   *string   `json:"source,omitempty"`
}

func (e LeadCreated) EventName() string { return "leads.lead.created" }

// LeadStatusChanged is published when a lead moves to another pipeline stage.
type LeadStatusChanged struct {
	BaseEvent
	LeadID    uuid.UUID `json:"leadId"`
	TenantID  uuid.UUID `json:"tenantId"`
	OldStatus string    `json:"oldStatus"`
	NewStatus string    `json:"newStatus"`
}

func (e LeadStatusChanged) EventName() string { return "leads.lead.status_changed" }

// ActivityLogged is published after an activity is appended to a lead.
type ActivityLogged struct {
	BaseEvent
	ActivityID uuid.UUID `json:"activityId"`
	LeadID     uuid.UUID `json:"leadId"`
	TenantID   uuid.UUID `json:"tenantId"`
	Type       string    `json:"type"`
	Outcome    string    `json:"outcome"`
	ActivityAt time.Time `json:"activityAt"`
}

func (e ActivityLogged) EventName() string { return "leads.activity.logged" }

// =============================================================================
// Follow-up Events
// =============================================================================

// FollowUpAction is the slice of a recommendation carried by FollowUpDue.
type FollowUpAction struct {
	ID       string `json:"id"`
	Action   string `json:"action"`
	Priority string `json:"priority"`
	Reason   string `json:"reason"`
}

// FollowUpDue is published by the follow-up sweep for each open lead with
// urgent recommendations.
type FollowUpDue struct {
	BaseEvent
	LeadID      uuid.UUID        `json:"leadId"`
	TenantID    uuid.UUID        `json:"tenantId"`
	CompanyName string           `json:"companyName"`
	ContactName string           `json:"contactName"`
	OwnerEmail  *string          `json:"ownerEmail,omitempty"`
	Score       int              `json:"score"`
	Grade       string           `json:"grade"`
	Actions     []FollowUpAction `json:"actions"`
}

func (e FollowUpDue) EventName() string { return "leads.followup.due" }
