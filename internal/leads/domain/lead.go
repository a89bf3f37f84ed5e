// Package domain holds the CRM's core types. It has no dependencies on
// storage or transport.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// Lead is a prospective deal tracked through the pipeline.
// Optional fields are pointers; nil means the value was never captured.
type Lead struct {
	ID             uuid.UUID
	OrganizationID uuid.UUID
	CompanyName    string
	ContactName    string
	Email          *string
	Phone          *string
	Status         LeadStatus
	Value          *float64
	Probability    *float64
	Source         *string
	OwnerEmail     *string
	CreatedAt      time.Time
	LastContact    *time.Time
	UpdatedAt      time.Time
}
