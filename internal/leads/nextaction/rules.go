package nextaction

import (
	"fmt"

	"sales_crm_backend/internal/leads/domain"
	"sales_crm_backend/internal/leads/timing"
)

// Action IDs.
const (
	ActionReengagement     = "reengagement"
	ActionFollowUp         = "follow-up"
	ActionInitialOutreach  = "initial-outreach"
	ActionDiversifyChannel = "diversify-channel"
	ActionBookMeeting      = "book-meeting"
	ActionConfirmProposal  = "confirm-proposal"
	ActionCloseDeal        = "close-deal"
	ActionAskReferral      = "ask-referral"
	ActionTryEmail         = "try-email"
	ActionCallNow          = "call-now"
	ActionFridayWrapUp     = "friday-wrap-up"
)

// Template IDs resolved by the playbook.
const (
	TemplateIntro             = "intro"
	TemplateReengagement      = "reengagement"
	TemplateMeetingRequest    = "meeting-request"
	TemplateProposalFollowUp  = "proposal-followup"
	TemplateVoicemailFollowUp = "voicemail-followup"
	TemplateReferralRequest   = "referral-request"
)

// Templates lists every template ID the engine can suggest.
var Templates = []string{
	TemplateIntro,
	TemplateReengagement,
	TemplateMeetingRequest,
	TemplateProposalFollowUp,
	TemplateVoicemailFollowUp,
	TemplateReferralRequest,
}

const (
	reengageUrgentAfterDays = 14
	reengageAfterDays       = 7
	followUpAfterDays       = 3
)

func overdueFollowUp(in input, out []domain.NextBestAction) []domain.NextBestAction {
	if !in.hasContactRef || domain.IsTerminalLeadStatus(in.lead.Status) {
		return out
	}
	days := in.daysSinceContact
	switch {
	case days > reengageUrgentAfterDays:
		return append(out, reengagement(days, domain.PriorityUrgent))
	case days > reengageAfterDays:
		return append(out, reengagement(days, domain.PriorityHigh))
	case days > followUpAfterDays && domain.IsActiveLeadStatus(in.lead.Status):
		return append(out, domain.NextBestAction{
			ID:          ActionFollowUp,
			Action:      "Follow up",
			Description: fmt.Sprintf("Call %s to keep the %s deal moving", contactLabel(in.lead), in.lead.Status),
			Type:        domain.ActionTypeCall,
			Priority:    domain.PriorityHigh,
			Reason:      fmt.Sprintf("No contact in %d days while the deal is active", days),
		})
	default:
		return out
	}
}

func reengagement(days int, priority domain.Priority) domain.NextBestAction {
	return domain.NextBestAction{
		ID:                ActionReengagement,
		Action:            "Re-engage lead",
		Description:       "Send a re-engagement email before the lead goes cold",
		Type:              domain.ActionTypeEmail,
		Priority:          priority,
		Reason:            fmt.Sprintf("No contact in %d days", days),
		SuggestedTemplate: TemplateReengagement,
	}
}

// stageRule emits the stage-specific recommendation, if any.
type stageRule func(in input) (domain.NextBestAction, bool)

var stageTable = map[domain.LeadStatus]stageRule{
	domain.LeadStatusNew:         newLeadAction,
	domain.LeadStatusContacted:   contactedAction,
	domain.LeadStatusQualified:   qualifiedAction,
	domain.LeadStatusProposal:    proposalAction,
	domain.LeadStatusNegotiation: negotiationAction,
	domain.LeadStatusClosed:      closedAction,
}

func stageActions(in input, out []domain.NextBestAction) []domain.NextBestAction {
	rule, ok := stageTable[in.lead.Status]
	if !ok {
		return out
	}
	if action, ok := rule(in); ok {
		out = append(out, action)
	}
	return out
}

func newLeadAction(in input) (domain.NextBestAction, bool) {
	if len(in.activities) > 0 {
		return domain.NextBestAction{}, false
	}
	return domain.NextBestAction{
		ID:                ActionInitialOutreach,
		Action:            "Send introduction",
		Description:       fmt.Sprintf("Introduce yourself to %s", contactLabel(in.lead)),
		Type:              domain.ActionTypeEmail,
		Priority:          domain.PriorityHigh,
		Reason:            "New lead with no recorded activity",
		SuggestedTemplate: TemplateIntro,
	}, true
}

func contactedAction(in input) (domain.NextBestAction, bool) {
	if in.emails < 2 || in.calls > 0 {
		return domain.NextBestAction{}, false
	}
	return domain.NextBestAction{
		ID:          ActionDiversifyChannel,
		Action:      "Try a phone call",
		Description: "Switch channels and call instead of sending another email",
		Type:        domain.ActionTypeCall,
		Priority:    domain.PriorityMedium,
		Reason:      fmt.Sprintf("%d emails sent and no calls made", in.emails),
	}, true
}

func qualifiedAction(in input) (domain.NextBestAction, bool) {
	if in.meetings > 0 {
		return domain.NextBestAction{}, false
	}
	return bookMeeting("Qualified lead has no meeting yet"), true
}

func proposalAction(in input) (domain.NextBestAction, bool) {
	return domain.NextBestAction{
		ID:                ActionConfirmProposal,
		Action:            "Confirm proposal received",
		Description:       "Check that the proposal arrived and answer open questions",
		Type:              domain.ActionTypeEmail,
		Priority:          domain.PriorityHigh,
		Reason:            "Proposal sent",
		SuggestedTemplate: TemplateProposalFollowUp,
	}, true
}

func negotiationAction(in input) (domain.NextBestAction, bool) {
	return domain.NextBestAction{
		ID:          ActionCloseDeal,
		Action:      "Push to close",
		Description: fmt.Sprintf("Call %s to resolve final terms and close", contactLabel(in.lead)),
		Type:        domain.ActionTypeCall,
		Priority:    domain.PriorityUrgent,
		Reason:      "Deal is in negotiation",
	}, true
}

func closedAction(in input) (domain.NextBestAction, bool) {
	return domain.NextBestAction{
		ID:                ActionAskReferral,
		Action:            "Ask for a referral",
		Description:       "Ask the new customer to introduce similar companies",
		Type:              domain.ActionTypeEmail,
		Priority:          domain.PriorityLow,
		Reason:            "Deal closed",
		SuggestedTemplate: TemplateReferralRequest,
	}, true
}

func engagementPatterns(in input, out []domain.NextBestAction) []domain.NextBestAction {
	if in.engaged && in.meetings == 0 {
		out = append(out, bookMeeting("Lead responded but no meeting is booked"))
	}
	if in.voicemail >= 2 {
		out = append(out, domain.NextBestAction{
			ID:                ActionTryEmail,
			Action:            "Switch to email",
			Description:       "Calls keep reaching voicemail; follow up in writing",
			Type:              domain.ActionTypeEmail,
			Priority:          domain.PriorityMedium,
			Reason:            fmt.Sprintf("%d calls went to voicemail", in.voicemail),
			SuggestedTemplate: TemplateVoicemailFollowUp,
		})
	}
	return out
}

func bookMeeting(reason string) domain.NextBestAction {
	return domain.NextBestAction{
		ID:                ActionBookMeeting,
		Action:            "Book a meeting",
		Description:       "Propose a meeting to discuss requirements",
		Type:              domain.ActionTypeMeeting,
		Priority:          domain.PriorityHigh,
		Reason:            reason,
		SuggestedTemplate: TemplateMeetingRequest,
	}
}

func timingOptimization(in input, out []domain.NextBestAction) []domain.NextBestAction {
	if domain.IsTerminalLeadStatus(in.lead.Status) {
		return out
	}
	if timing.InGoodCallingWindow(in.now) {
		out = append(out, domain.NextBestAction{
			ID:          ActionCallNow,
			Action:      "Call now",
			Description: "This is a high-connect calling window",
			Type:        domain.ActionTypeCall,
			Priority:    domain.PriorityMedium,
			Reason:      "Tuesday to Thursday mid-morning and mid-afternoon calls connect best",
		})
	}
	if timing.IsFridayAfternoon(in.now) && domain.IsLateStageLeadStatus(in.lead.Status) {
		out = append(out, domain.NextBestAction{
			ID:          ActionFridayWrapUp,
			Action:      "Plan next week",
			Description: "Confirm next steps so the deal does not stall over the weekend",
			Type:        domain.ActionTypeTask,
			Priority:    domain.PriorityHigh,
			Reason:      "Late-stage deal on a Friday afternoon",
		})
	}
	return out
}

func contactLabel(lead domain.Lead) string {
	switch {
	case lead.ContactName != "":
		return lead.ContactName
	case lead.CompanyName != "":
		return lead.CompanyName
	default:
		return "the lead"
	}
}
