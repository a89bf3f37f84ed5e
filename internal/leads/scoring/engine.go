// Package scoring computes the AI lead score: a 0-100 fitness score and letter
// grade derived from a lead's attributes and its engagement history.
package scoring

import (
	"math"
	"time"

	"sales_crm_backend/internal/leads/domain"
	"sales_crm_backend/internal/leads/timing"
)

const (
	// Version labels the scoring rules. Bump it when any threshold or weight
	// below changes.
	Version = "2026-v1"

	// Maximum contribution per category. The maxima sum to 100.
	maxDealValue       = 15.0
	maxProbability     = 10.0
	maxStage           = 25.0
	maxRecency         = 20.0
	maxFrequency       = 15.0
	maxResponseQuality = 15.0

	frequencyWindow = 30 * 24 * time.Hour
)

// Factor keys as they appear in AILeadScore.Factors.
const (
	FactorDealValue       = "deal_value"
	FactorProbability     = "probability"
	FactorStage           = "stage"
	FactorRecency         = "recency"
	FactorFrequency       = "frequency"
	FactorResponseQuality = "response_quality"
)

// CalculateAILeadScore scores lead as of now. It never fails: absent optional
// fields and unknown enum values contribute nothing.
func CalculateAILeadScore(lead domain.Lead, activities []domain.Activity, now time.Time) domain.AILeadScore {
	factors := make(map[string]float64)
	score := 0.0

	score += addFactor(factors, FactorDealValue, scoreDealValue(lead.Value))
	score += addFactor(factors, FactorProbability, scoreProbability(lead.Probability))
	score += addFactor(factors, FactorStage, scoreStage(lead.Status))
	score += addFactor(factors, FactorRecency, scoreRecency(lead, activities, now))
	score += addFactor(factors, FactorFrequency, scoreFrequency(activities, now))
	score += addFactor(factors, FactorResponseQuality, scoreResponseQuality(activities))

	total := clampScore(score)
	return domain.AILeadScore{
		Score:   total,
		Grade:   GradeFor(total),
		Factors: factors,
	}
}

// GradeFor maps a score to its letter grade. Lower bounds are inclusive.
func GradeFor(score int) domain.Grade {
	switch {
	case score >= 90:
		return domain.GradeA
	case score >= 75:
		return domain.GradeB
	case score >= 60:
		return domain.GradeC
	case score >= 40:
		return domain.GradeD
	default:
		return domain.GradeF
	}
}

func addFactor(factors map[string]float64, key string, value float64) float64 {
	if math.Abs(value) < 0.01 {
		return 0
	}
	factors[key] = math.Round(value*10) / 10
	return value
}

// scoreDealValue rewards larger deals.
func scoreDealValue(value *float64) float64 {
	if value == nil || math.IsNaN(*value) {
		return 0
	}
	v := *value
	switch {
	case v >= 100000:
		return maxDealValue
	case v >= 50000:
		return 12
	case v >= 25000:
		return 9
	case v >= 10000:
		return 6
	case v >= 5000:
		return 4
	case v > 0:
		return 2
	default:
		return 0
	}
}

// scoreProbability scales the close probability (0-100) down to 0-10 points.
func scoreProbability(probability *float64) float64 {
	if probability == nil || math.IsNaN(*probability) {
		return 0
	}
	return math.Round(clampFloat(*probability, 0, 100) / 10)
}

// scoreStage rewards pipeline progress. Closed deals keep full stage credit.
func scoreStage(status domain.LeadStatus) float64 {
	switch status {
	case domain.LeadStatusNew:
		return 5
	case domain.LeadStatusContacted:
		return 10
	case domain.LeadStatusQualified:
		return 15
	case domain.LeadStatusProposal:
		return 20
	case domain.LeadStatusNegotiation, domain.LeadStatusClosed:
		return maxStage
	default:
		return 0 // Lost and anything unrecognized
	}
}

// scoreRecency rewards recent engagement, taking the later of the recorded
// last contact and the newest activity.
func scoreRecency(lead domain.Lead, activities []domain.Activity, now time.Time) float64 {
	last, ok := timing.LastEngagementAt(lead, activities)
	if !ok {
		return 0
	}
	days := timing.DaysBetween(last, now)
	switch {
	case days <= 1:
		return maxRecency
	case days <= 3:
		return 16
	case days <= 7:
		return 12
	case days <= 14:
		return 8
	case days <= 30:
		return 4
	default:
		return 0
	}
}

// scoreFrequency counts touchpoints in the trailing 30 days.
// Future-dated activities are not counted.
func scoreFrequency(activities []domain.Activity, now time.Time) float64 {
	windowStart := now.Add(-frequencyWindow)
	count := 0
	for _, a := range activities {
		if a.Timestamp.After(windowStart) && !a.Timestamp.After(now) {
			count++
		}
	}
	switch {
	case count >= 7:
		return maxFrequency
	case count >= 4:
		return 12
	case count >= 2:
		return 8
	case count == 1:
		return 4
	default:
		return 0
	}
}

// scoreResponseQuality rewards conversations and booked meetings and
// penalizes bad contact data.
func scoreResponseQuality(activities []domain.Activity) float64 {
	score := 0.0
	for _, a := range activities {
		switch a.Outcome {
		case domain.OutcomeMeetingSet:
			score += 6
		case domain.OutcomeConnected:
			score += 3
		case domain.OutcomeVoicemail:
			score += 1
		case domain.OutcomeWrongNumber:
			score -= 3
		}
		if a.Type == domain.ActivityTypeMeeting {
			score += 4
		}
	}
	return clampFloat(score, 0, maxResponseQuality)
}

func clampScore(value float64) int {
	rounded := int(math.Round(value))
	if rounded < 0 {
		return 0
	}
	if rounded > 100 {
		return 100
	}
	return rounded
}

func clampFloat(value float64, min float64, max float64) float64 {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}
