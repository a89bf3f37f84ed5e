package domain

// LeadStatus is the pipeline stage of a lead.
type LeadStatus string

const (
	LeadStatusNew         LeadStatus = "New"
	LeadStatusContacted   LeadStatus = "Contacted"
	LeadStatusQualified   LeadStatus = "Qualified"
	LeadStatusProposal    LeadStatus = "Proposal"
	LeadStatusNegotiation LeadStatus = "Negotiation"
	LeadStatusClosed      LeadStatus = "Closed"
	LeadStatusLost        LeadStatus = "Lost"
)

// LeadStatuses lists every known status in pipeline order.
var LeadStatuses = []LeadStatus{
	LeadStatusNew,
	LeadStatusContacted,
	LeadStatusQualified,
	LeadStatusProposal,
	LeadStatusNegotiation,
	LeadStatusClosed,
	LeadStatusLost,
}

var knownLeadStatuses = map[LeadStatus]struct{}{
	LeadStatusNew:         {},
	LeadStatusContacted:   {},
	LeadStatusQualified:   {},
	LeadStatusProposal:    {},
	LeadStatusNegotiation: {},
	LeadStatusClosed:      {},
	LeadStatusLost:        {},
}

func IsKnownLeadStatus(status LeadStatus) bool {
	_, ok := knownLeadStatuses[status]
	return ok
}

// IsTerminalLeadStatus reports whether the lead has left the pipeline,
// won or lost.
func IsTerminalLeadStatus(status LeadStatus) bool {
	return status == LeadStatusClosed || status == LeadStatusLost
}

// IsActiveLeadStatus reports whether the lead is in a working deal stage.
func IsActiveLeadStatus(status LeadStatus) bool {
	switch status {
	case LeadStatusQualified, LeadStatusProposal, LeadStatusNegotiation:
		return true
	default:
		return false
	}
}

func IsLateStageLeadStatus(status LeadStatus) bool {
	return status == LeadStatusProposal || status == LeadStatusNegotiation
}

// LeadStatusStrings returns the status values as plain strings, for
// validator registration and query parameters.
func LeadStatusStrings() []string {
	out := make([]string, len(LeadStatuses))
	for i, s := range LeadStatuses {
		out[i] = string(s)
	}
	return out
}
