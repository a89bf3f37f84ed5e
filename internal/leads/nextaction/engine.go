// Package nextaction recommends follow-up actions for a lead by evaluating
// four independent rule families against the lead and its activity history.
package nextaction

import (
	"sort"
	"time"

	"sales_crm_backend/internal/leads/domain"
	"sales_crm_backend/internal/leads/timing"
)

// ruleFamily appends zero or more recommendations.
type ruleFamily func(in input, out []domain.NextBestAction) []domain.NextBestAction

// families run in this order; when two families emit the same action ID the
// earlier one wins.
var families = []ruleFamily{
	overdueFollowUp,
	stageActions,
	engagementPatterns,
	timingOptimization,
}

// input is the precomputed view every rule family reads.
type input struct {
	lead       domain.Lead
	activities []domain.Activity
	now        time.Time

	// daysSinceContact is valid only when hasContactRef is true.
	daysSinceContact int
	hasContactRef    bool

	calls     int
	emails    int
	meetings  int
	voicemail int // calls that went to voicemail
	engaged   bool
}

// GetNextBestActions returns the deduplicated recommendations for lead at now,
// most pressing first. The result is never nil. now's location decides the
// weekday and hour used by the timing rules.
func GetNextBestActions(lead domain.Lead, activities []domain.Activity, now time.Time) []domain.NextBestAction {
	in := newInput(lead, activities, now)

	actions := make([]domain.NextBestAction, 0, 4)
	for _, family := range families {
		actions = family(in, actions)
	}

	actions = dedupe(actions)
	sort.SliceStable(actions, func(i, j int) bool {
		return timing.PriorityRank(actions[i].Priority) < timing.PriorityRank(actions[j].Priority)
	})
	return actions
}

func newInput(lead domain.Lead, activities []domain.Activity, now time.Time) input {
	in := input{lead: lead, activities: activities, now: now}

	if ref, ok := contactReference(lead, activities); ok {
		in.daysSinceContact = timing.DaysBetween(ref, now)
		in.hasContactRef = true
	}

	for _, a := range activities {
		switch a.Type {
		case domain.ActivityTypeCall:
			in.calls++
			if a.Outcome == domain.OutcomeVoicemail {
				in.voicemail++
			}
		case domain.ActivityTypeEmail:
			in.emails++
		case domain.ActivityTypeMeeting:
			in.meetings++
		}
		if a.Outcome == domain.OutcomeConnected || a.Outcome == domain.OutcomeMeetingSet {
			in.engaged = true
		}
	}
	return in
}

// contactReference is LastContact, else the newest activity, else CreatedAt.
func contactReference(lead domain.Lead, activities []domain.Activity) (time.Time, bool) {
	if lead.LastContact != nil && !lead.LastContact.IsZero() {
		return *lead.LastContact, true
	}
	if latest, ok := timing.LatestActivityAt(activities); ok {
		return latest, true
	}
	if !lead.CreatedAt.IsZero() {
		return lead.CreatedAt, true
	}
	return time.Time{}, false
}

func dedupe(actions []domain.NextBestAction) []domain.NextBestAction {
	seen := make(map[string]struct{}, len(actions))
	out := actions[:0]
	for _, a := range actions {
		if _, dup := seen[a.ID]; dup {
			continue
		}
		seen[a.ID] = struct{}{}
		out = append(out, a)
	}
	return out
}
