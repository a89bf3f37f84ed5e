package scoring

import (
	"math/rand"
	"testing"
	"time"

	"sales_crm_backend/internal/leads/domain"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
)

var now = time.Date(2026, time.October, 14, 11, 0, 0, 0, time.UTC)

func ptr[T any](v T) *T { return &v }

func activity(t domain.ActivityType, o domain.ActivityOutcome, ago time.Duration) domain.Activity {
	return domain.Activity{ID: uuid.New(), Type: t, Outcome: o, Timestamp: now.Add(-ago)}
}

func TestCalculateAILeadScoreHotDeal(t *testing.T) {
	lead := domain.Lead{
		Status:      domain.LeadStatusNegotiation,
		Value:       ptr(120000.0),
		Probability: ptr(80.0),
		LastContact: ptr(now.Add(-time.Hour)),
	}
	activities := []domain.Activity{
		activity(domain.ActivityTypeMeeting, domain.OutcomeMeetingSet, 2*time.Hour),
		activity(domain.ActivityTypeCall, domain.OutcomeConnected, 24*time.Hour),
		activity(domain.ActivityTypeCall, domain.OutcomeConnected, 48*time.Hour),
		activity(domain.ActivityTypeEmail, domain.OutcomeNone, 72*time.Hour),
		activity(domain.ActivityTypeEmail, domain.OutcomeNone, 96*time.Hour),
		activity(domain.ActivityTypeEmail, domain.OutcomeNone, 120*time.Hour),
		activity(domain.ActivityTypeSocial, domain.OutcomeNone, 144*time.Hour),
	}

	got := CalculateAILeadScore(lead, activities, now)

	want := domain.AILeadScore{
		Score: 98,
		Grade: domain.GradeA,
		Factors: map[string]float64{
			FactorDealValue:       15,
			FactorProbability:     8,
			FactorStage:           25,
			FactorRecency:         20,
			FactorFrequency:       15,
			FactorResponseQuality: 15,
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("unexpected score (-want +got):\n%s", diff)
	}
}

func TestCalculateAILeadScoreMissingOptionalFields(t *testing.T) {
	lead := domain.Lead{Status: domain.LeadStatusNew}

	got := CalculateAILeadScore(lead, nil, now)

	if got.Score != 5 || got.Grade != domain.GradeF {
		t.Fatalf("expected 5/F, got %d/%s", got.Score, got.Grade)
	}
	if diff := cmp.Diff(map[string]float64{FactorStage: 5}, got.Factors); diff != "" {
		t.Fatalf("unexpected factors (-want +got):\n%s", diff)
	}
}

func TestCalculateAILeadScoreUnknownStatus(t *testing.T) {
	got := CalculateAILeadScore(domain.Lead{Status: "Archived"}, nil, now)
	if got.Score != 0 || len(got.Factors) != 0 {
		t.Fatalf("expected zero score without factors, got %+v", got)
	}
}

func TestScoreDealValue(t *testing.T) {
	tests := []struct {
		value *float64
		want  float64
	}{
		{nil, 0},
		{ptr(-10.0), 0},
		{ptr(0.0), 0},
		{ptr(1.0), 2},
		{ptr(5000.0), 4},
		{ptr(9999.99), 4},
		{ptr(10000.0), 6},
		{ptr(25000.0), 9},
		{ptr(50000.0), 12},
		{ptr(100000.0), 15},
		{ptr(5e9), 15},
	}
	for _, tc := range tests {
		if got := scoreDealValue(tc.value); got != tc.want {
			t.Errorf("value %v: expected %v, got %v", tc.value, tc.want, got)
		}
	}
}

func TestScoreProbabilityClamps(t *testing.T) {
	tests := []struct {
		p    *float64
		want float64
	}{
		{nil, 0},
		{ptr(-20.0), 0},
		{ptr(44.0), 4},
		{ptr(45.0), 5},
		{ptr(100.0), 10},
		{ptr(150.0), 10},
	}
	for _, tc := range tests {
		if got := scoreProbability(tc.p); got != tc.want {
			t.Errorf("probability %v: expected %v, got %v", tc.p, tc.want, got)
		}
	}
}

func TestScoreRecencyBands(t *testing.T) {
	tests := []struct {
		ago  time.Duration
		want float64
	}{
		{0, 20},
		{47 * time.Hour, 20},
		{48 * time.Hour, 16},
		{3 * 24 * time.Hour, 16},
		{7 * 24 * time.Hour, 12},
		{14 * 24 * time.Hour, 8},
		{30 * 24 * time.Hour, 4},
		{31 * 24 * time.Hour, 0},
		{-72 * time.Hour, 20},
	}
	for _, tc := range tests {
		lead := domain.Lead{LastContact: ptr(now.Add(-tc.ago))}
		if got := scoreRecency(lead, nil, now); got != tc.want {
			t.Errorf("%v ago: expected %v, got %v", tc.ago, tc.want, got)
		}
	}
	if got := scoreRecency(domain.Lead{}, nil, now); got != 0 {
		t.Fatalf("no engagement: expected 0, got %v", got)
	}
}

func TestScoreFrequencyWindow(t *testing.T) {
	recent := activity(domain.ActivityTypeCall, domain.OutcomeNone, time.Hour)
	old := activity(domain.ActivityTypeCall, domain.OutcomeNone, 30*24*time.Hour)
	future := activity(domain.ActivityTypeCall, domain.OutcomeNone, -time.Hour)

	if got := scoreFrequency([]domain.Activity{recent, old, future}, now); got != 4 {
		t.Fatalf("expected only the recent activity to count, got %v", got)
	}

	counts := []struct {
		n    int
		want float64
	}{{0, 0}, {1, 4}, {2, 8}, {3, 8}, {4, 12}, {6, 12}, {7, 15}, {20, 15}}
	for _, tc := range counts {
		activities := make([]domain.Activity, tc.n)
		for i := range activities {
			activities[i] = recent
		}
		if got := scoreFrequency(activities, now); got != tc.want {
			t.Errorf("%d activities: expected %v, got %v", tc.n, tc.want, got)
		}
	}
}

func TestScoreResponseQuality(t *testing.T) {
	tests := []struct {
		name       string
		activities []domain.Activity
		want       float64
	}{
		{"wrong numbers floor at zero", []domain.Activity{
			activity(domain.ActivityTypeCall, domain.OutcomeWrongNumber, time.Hour),
			activity(domain.ActivityTypeCall, domain.OutcomeWrongNumber, time.Hour),
		}, 0},
		{"voicemail and connected", []domain.Activity{
			activity(domain.ActivityTypeCall, domain.OutcomeVoicemail, time.Hour),
			activity(domain.ActivityTypeCall, domain.OutcomeConnected, time.Hour),
		}, 4},
		{"meeting activity bonus", []domain.Activity{
			activity(domain.ActivityTypeMeeting, domain.OutcomeMeetingSet, time.Hour),
		}, 10},
		{"capped", []domain.Activity{
			activity(domain.ActivityTypeMeeting, domain.OutcomeMeetingSet, time.Hour),
			activity(domain.ActivityTypeMeeting, domain.OutcomeMeetingSet, time.Hour),
		}, 15},
	}
	for _, tc := range tests {
		if got := scoreResponseQuality(tc.activities); got != tc.want {
			t.Errorf("%s: expected %v, got %v", tc.name, tc.want, got)
		}
	}
}

func TestGradeForThresholds(t *testing.T) {
	tests := []struct {
		score int
		want  domain.Grade
	}{
		{100, domain.GradeA}, {90, domain.GradeA}, {89, domain.GradeB}, {75, domain.GradeB},
		{74, domain.GradeC}, {60, domain.GradeC}, {59, domain.GradeD}, {40, domain.GradeD},
		{39, domain.GradeF}, {0, domain.GradeF},
	}
	for _, tc := range tests {
		if got := GradeFor(tc.score); got != tc.want {
			t.Errorf("score %d: expected %s, got %s", tc.score, tc.want, got)
		}
	}
}

func TestCalculateAILeadScoreProperties(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	statuses := append(append([]domain.LeadStatus{}, domain.LeadStatuses...), "Legacy")

	for i := 0; i < 500; i++ {
		lead, activities := randomLead(rng, statuses)

		first := CalculateAILeadScore(lead, activities, now)
		second := CalculateAILeadScore(lead, activities, now)

		if first.Score < 0 || first.Score > 100 {
			t.Fatalf("iteration %d: score %d out of range", i, first.Score)
		}
		if first.Grade != GradeFor(first.Score) {
			t.Fatalf("iteration %d: grade %s inconsistent with score %d", i, first.Grade, first.Score)
		}
		if diff := cmp.Diff(first, second); diff != "" {
			t.Fatalf("iteration %d: not idempotent (-first +second):\n%s", i, diff)
		}
		for key, v := range first.Factors {
			if v == 0 {
				t.Fatalf("iteration %d: zero factor %s must be omitted", i, key)
			}
		}
	}
}

func randomLead(rng *rand.Rand, statuses []domain.LeadStatus) (domain.Lead, []domain.Activity) {
	lead := domain.Lead{Status: statuses[rng.Intn(len(statuses))]}
	if rng.Intn(3) > 0 {
		lead.Value = ptr(rng.Float64()*200000 - 1000)
	}
	if rng.Intn(3) > 0 {
		lead.Probability = ptr(rng.Float64()*140 - 20)
	}
	if rng.Intn(2) == 0 {
		lead.LastContact = ptr(now.Add(-time.Duration(rng.Intn(60*24)) * time.Hour))
	}

	activities := make([]domain.Activity, rng.Intn(12))
	for i := range activities {
		activities[i] = domain.Activity{
			Type:      domain.ActivityTypes[rng.Intn(len(domain.ActivityTypes))],
			Outcome:   domain.ActivityOutcomes[rng.Intn(len(domain.ActivityOutcomes))],
			Timestamp: now.Add(-time.Duration(rng.Intn(60*24)-24) * time.Hour),
		}
	}
	return lead, activities
}
