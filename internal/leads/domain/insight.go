package domain

// Grade is the letter band of a lead score.
type Grade string

const (
	GradeA Grade = "A"
	GradeB Grade = "B"
	GradeC Grade = "C"
	GradeD Grade = "D"
	GradeF Grade = "F"
)

// AILeadScore is derived from a lead and its activities on every read.
type AILeadScore struct {
	Score   int
	Grade   Grade
	Factors map[string]float64
}

// ActionType is the channel a recommended action uses.
type ActionType string

const (
	ActionTypeCall    ActionType = "call"
	ActionTypeEmail   ActionType = "email"
	ActionTypeMeeting ActionType = "meeting"
	ActionTypeSocial  ActionType = "social"
	ActionTypeTask    ActionType = "task"
)

type Priority string

const (
	PriorityUrgent Priority = "urgent"
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// NextBestAction is a recommendation derived from a lead and its activities.
// ID identifies the recommendation kind, so two rules proposing the same
// action produce the same ID.
type NextBestAction struct {
	ID                string
	Action            string
	Description       string
	Type              ActionType
	Priority          Priority
	Reason            string
	SuggestedTemplate string
}
