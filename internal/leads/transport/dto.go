package transport

import (
	"time"

	"github.com/google/uuid"
)

// Request DTOs
type CreateLeadRequest struct {
	CompanyName string   `json:"companyName" validate:"required,min=1,max=200"`
	ContactName string   `json:"contactName" validate:"required,min=1,max=200"`
	Email       string   `json:"email,omitempty" validate:"omitempty,email,max=254"`
	Phone       string   `json:"phone,omitempty" validate:"omitempty,min=5,max=30"`
	Status      string   `json:"status,omitempty" validate:"omitempty,lead_status"`
	Value       *float64 `json:"value,omitempty" validate:"omitempty,gte=0"`
	Probability *float64 `json:"probability,omitempty" validate:"omitempty,gte=0,lte=100"`
	Source      *string  `json:"source,omitempty" validate:"omitempty,max=100"`
	OwnerEmail  *string  `json:"ownerEmail,omitempty" validate:"omitempty,email,max=254"`
}

type UpdateLeadRequest struct {
	CompanyName *string  `json:"companyName,omitempty" validate:"omitempty,min=1,max=200"`
	ContactName *string  `json:"contactName,omitempty" validate:"omitempty,min=1,max=200"`
	Email       *string  `json:"email,omitempty" validate:"omitempty,email,max=254"`
	Phone       *string  `json:"phone,omitempty" validate:"omitempty,min=5,max=30"`
	Value       *float64 `json:"value,omitempty" validate:"omitempty,gte=0"`
	Probability *float64 `json:"probability,omitempty" validate:"omitempty,gte=0,lte=100"`
	Source      *string  `json:"source,omitempty" validate:"omitempty,max=100"`
	OwnerEmail  *string  `json:"ownerEmail,omitempty" validate:"omitempty,email,max=254"`
}

type UpdateLeadStatusRequest struct {
	Status string `json:"status" validate:"required,lead_status"`
}

type ListLeadsRequest struct {
	Status   string `form:"status" validate:"omitempty,lead_status"`
	Search   string `form:"search" validate:"max=100"`
	Page     int    `form:"page" validate:"omitempty,min=1"`
	PageSize int    `form:"pageSize" validate:"omitempty,min=1,max=100"`
}

type LogActivityRequest struct {
	Type      string     `json:"type" validate:"required,activity_type"`
	Outcome   string     `json:"outcome,omitempty" validate:"omitempty,activity_outcome"`
	Notes     string     `json:"notes,omitempty" validate:"max=5000"`
	Timestamp *time.Time `json:"timestamp,omitempty"`
}

// CorrectActivityRequest amends a logged activity. Only outcome and notes
// can change.
type CorrectActivityRequest struct {
	Outcome *string `json:"outcome,omitempty" validate:"omitempty,activity_outcome"`
	Notes   *string `json:"notes,omitempty" validate:"omitempty,max=5000"`
}

type PrioritizedLeadsRequest struct {
	Limit int `form:"limit" validate:"omitempty,min=1,max=200"`
}

// Response DTOs
type LeadResponse struct {
	ID          uuid.UUID  `json:"id"`
	CompanyName string     `json:"companyName"`
	ContactName string     `json:"contactName"`
	Email       *string    `json:"email,omitempty"`
	Phone       *string    `json:"phone,omitempty"`
	Status      string     `json:"status"`
	Value       *float64   `json:"value,omitempty"`
	Probability *float64   `json:"probability,omitempty"`
	Source      *string    `json:"source,omitempty"`
	OwnerEmail  *string    `json:"ownerEmail,omitempty"`
	LastContact *time.Time `json:"lastContact,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

type LeadListResponse struct {
	Items      []LeadResponse `json:"items"`
	Total      int            `json:"total"`
	Page       int            `json:"page"`
	PageSize   int            `json:"pageSize"`
	TotalPages int            `json:"totalPages"`
}

type ActivityResponse struct {
	ID          uuid.UUID  `json:"id"`
	LeadID      uuid.UUID  `json:"leadId"`
	Type        string     `json:"type"`
	Outcome     string     `json:"outcome"`
	Timestamp   time.Time  `json:"timestamp"`
	Notes       string     `json:"notes"`
	CorrectedAt *time.Time `json:"correctedAt,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
}

type ActivityListResponse struct {
	Items []ActivityResponse `json:"items"`
}

type ScoreResponse struct {
	Score   int                `json:"score"`
	Grade   string             `json:"grade"`
	Factors map[string]float64 `json:"factors"`
	Version string             `json:"version"`
}

type MessageTemplateResponse struct {
	ID      string `json:"id"`
	Channel string `json:"channel"`
	Subject string `json:"subject,omitempty"`
	Body    string `json:"body"`
}

type NextBestActionResponse struct {
	ID                string                   `json:"id"`
	Action            string                   `json:"action"`
	Description       string                   `json:"description"`
	Type              string                   `json:"type"`
	Priority          string                   `json:"priority"`
	Reason            string                   `json:"reason"`
	SuggestedTemplate string                   `json:"suggestedTemplate,omitempty"`
	Template          *MessageTemplateResponse `json:"template,omitempty"`
}

type InsightsResponse struct {
	LeadID      uuid.UUID                `json:"leadId"`
	Score       ScoreResponse            `json:"score"`
	Actions     []NextBestActionResponse `json:"actions"`
	EvaluatedAt time.Time                `json:"evaluatedAt"`
}

type PrioritizedLeadResponse struct {
	Lead      LeadResponse            `json:"lead"`
	Score     ScoreResponse           `json:"score"`
	TopAction *NextBestActionResponse `json:"topAction,omitempty"`
}

type PrioritizedLeadsResponse struct {
	Items       []PrioritizedLeadResponse `json:"items"`
	EvaluatedAt time.Time                 `json:"evaluatedAt"`
}

type AuditResponse struct {
	LeadID      uuid.UUID `json:"leadId"`
	Model       string    `json:"model"`
	Summary     string    `json:"summary"`
	GeneratedAt time.Time `json:"generatedAt"`
}

type OffboardResponse struct {
	DeletedLeads int64 `json:"deletedLeads"`
}
