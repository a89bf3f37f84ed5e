package domain

import (
	"time"

	"github.com/google/uuid"
)

// ActivityType is the channel of a logged touchpoint.
type ActivityType string

const (
	ActivityTypeCall    ActivityType = "call"
	ActivityTypeEmail   ActivityType = "email"
	ActivityTypeMeeting ActivityType = "meeting"
	ActivityTypeSocial  ActivityType = "social"
)

var ActivityTypes = []ActivityType{
	ActivityTypeCall,
	ActivityTypeEmail,
	ActivityTypeMeeting,
	ActivityTypeSocial,
}

// ActivityOutcome is the result of a touchpoint.
type ActivityOutcome string

const (
	OutcomeConnected   ActivityOutcome = "connected"
	OutcomeVoicemail   ActivityOutcome = "voicemail"
	OutcomeNoAnswer    ActivityOutcome = "no_answer"
	OutcomeWrongNumber ActivityOutcome = "wrong_number"
	OutcomeMeetingSet  ActivityOutcome = "meeting_set"
	OutcomeNone        ActivityOutcome = "none"
)

var ActivityOutcomes = []ActivityOutcome{
	OutcomeConnected,
	OutcomeVoicemail,
	OutcomeNoAnswer,
	OutcomeWrongNumber,
	OutcomeMeetingSet,
	OutcomeNone,
}

// Activity is a logged touchpoint. Records are append-only; only Outcome and
// Notes may be corrected afterwards, which stamps CorrectedAt.
type Activity struct {
	ID             uuid.UUID
	LeadID         uuid.UUID
	OrganizationID uuid.UUID
	Type           ActivityType
	Outcome        ActivityOutcome
	Timestamp      time.Time
	Notes          string
	CorrectedAt    *time.Time
	CreatedAt      time.Time
}

func IsKnownActivityType(t ActivityType) bool {
	for _, known := range ActivityTypes {
		if t == known {
			return true
		}
	}
	return false
}

func IsKnownActivityOutcome(o ActivityOutcome) bool {
	for _, known := range ActivityOutcomes {
		if o == known {
			return true
		}
	}
	return false
}

func ActivityTypeStrings() []string {
	out := make([]string, len(ActivityTypes))
	for i, t := range ActivityTypes {
		out[i] = string(t)
	}
	return out
}

func ActivityOutcomeStrings() []string {
	out := make([]string, len(ActivityOutcomes))
	for i, o := range ActivityOutcomes {
		out[i] = string(o)
	}
	return out
}
