package transport

import (
	"sales_crm_backend/internal/leads/domain"
)

func ToLeadResponse(lead domain.Lead) LeadResponse {
	return LeadResponse{
		ID:          lead.ID,
		CompanyName: lead.CompanyName,
		ContactName: lead.ContactName,
		Email:       lead.Email,
		Phone:       lead.Phone,
		Status:      string(lead.Status),
		Value:       lead.Value,
		Probability: lead.Probability,
		Source:      lead.Source,
		OwnerEmail:  lead.OwnerEmail,
		LastContact: lead.LastContact,
		CreatedAt:   lead.CreatedAt,
		UpdatedAt:   lead.UpdatedAt,
	}
}

func ToActivityResponse(a domain.Activity) ActivityResponse {
	return ActivityResponse{
		ID:          a.ID,
		LeadID:      a.LeadID,
		Type:        string(a.Type),
		Outcome:     string(a.Outcome),
		Timestamp:   a.Timestamp,
		Notes:       a.Notes,
		CorrectedAt: a.CorrectedAt,
		CreatedAt:   a.CreatedAt,
	}
}

func ToActivityListResponse(items []domain.Activity) ActivityListResponse {
	out := make([]ActivityResponse, len(items))
	for i, a := range items {
		out[i] = ToActivityResponse(a)
	}
	return ActivityListResponse{Items: out}
}

func ToScoreResponse(score domain.AILeadScore, version string) ScoreResponse {
	factors := score.Factors
	if factors == nil {
		factors = map[string]float64{}
	}
	return ScoreResponse{
		Score:   score.Score,
		Grade:   string(score.Grade),
		Factors: factors,
		Version: version,
	}
}

func ToNextBestActionResponse(a domain.NextBestAction) NextBestActionResponse {
	return NextBestActionResponse{
		ID:                a.ID,
		Action:            a.Action,
		Description:       a.Description,
		Type:              string(a.Type),
		Priority:          string(a.Priority),
		Reason:            a.Reason,
		SuggestedTemplate: a.SuggestedTemplate,
	}
}
