package transport

import (
	"sales_crm_backend/internal/leads/domain"
	"sales_crm_backend/platform/validator"
)

// RegisterValidation adds the lead enum tags used by the request DTOs.
func RegisterValidation(val *validator.Validator) error {
	if err := val.RegisterEnum("lead_status", domain.LeadStatusStrings()...); err != nil {
		return err
	}
	if err := val.RegisterEnum("activity_type", domain.ActivityTypeStrings()...); err != nil {
		return err
	}
	return val.RegisterEnum("activity_outcome", domain.ActivityOutcomeStrings()...)
}
