package timing

import (
	"testing"
	"time"

	"sales_crm_backend/internal/leads/domain"
)

// 2026-10-13 is a Tuesday.
func at(day, hour, minute int) time.Time {
	return time.Date(2026, time.October, day, hour, minute, 0, 0, time.UTC)
}

func TestDaysBetween(t *testing.T) {
	now := at(20, 12, 0)
	tests := []struct {
		name string
		from time.Time
		want int
	}{
		{"same instant", now, 0},
		{"23 hours", now.Add(-23 * time.Hour), 0},
		{"exactly one day", now.Add(-24 * time.Hour), 1},
		{"fifteen and a half days", now.Add(-(15*24 + 12) * time.Hour), 15},
		{"future", now.Add(48 * time.Hour), 0},
	}
	for _, tc := range tests {
		if got := DaysBetween(tc.from, now); got != tc.want {
			t.Errorf("%s: expected %d, got %d", tc.name, tc.want, got)
		}
	}
}

func TestInGoodCallingWindow(t *testing.T) {
	tests := []struct {
		name string
		t    time.Time
		want bool
	}{
		{"tuesday 10:00", at(13, 10, 0), true},
		{"tuesday 11:59", at(13, 11, 59), true},
		{"tuesday 12:00", at(13, 12, 0), false},
		{"wednesday 14:30", at(14, 14, 30), true},
		{"thursday 15:59", at(15, 15, 59), true},
		{"thursday 16:00", at(15, 16, 0), false},
		{"monday 10:30", at(12, 10, 30), false},
		{"friday 10:30", at(16, 10, 30), false},
		{"tuesday 09:59", at(13, 9, 59), false},
	}
	for _, tc := range tests {
		if got := InGoodCallingWindow(tc.t); got != tc.want {
			t.Errorf("%s: expected %v, got %v", tc.name, tc.want, got)
		}
	}
}

func TestCallingWindowUsesOwnLocation(t *testing.T) {
	// 08:00 UTC is 10:00 in UTC+2.
	zone := time.FixedZone("UTC+2", 2*60*60)
	utc := at(13, 8, 0)
	if InGoodCallingWindow(utc) {
		t.Fatal("08:00 UTC must be outside the window")
	}
	if !InGoodCallingWindow(utc.In(zone)) {
		t.Fatal("10:00 local must be inside the window")
	}
}

func TestIsFridayAfternoon(t *testing.T) {
	if !IsFridayAfternoon(at(16, 12, 0)) {
		t.Fatal("friday noon counts as afternoon")
	}
	if IsFridayAfternoon(at(16, 11, 59)) {
		t.Fatal("friday morning is not afternoon")
	}
	if IsFridayAfternoon(at(17, 15, 0)) {
		t.Fatal("saturday is not friday")
	}
}

func TestPriorityRank(t *testing.T) {
	order := []domain.Priority{domain.PriorityUrgent, domain.PriorityHigh, domain.PriorityMedium, domain.PriorityLow, "someday"}
	for i, p := range order {
		if got := PriorityRank(p); got != i {
			t.Errorf("%s: expected rank %d, got %d", p, i, got)
		}
	}
}

func TestLastEngagementAt(t *testing.T) {
	older := at(10, 9, 0)
	newer := at(12, 9, 0)
	activities := []domain.Activity{{Timestamp: older}, {Timestamp: newer}, {}}

	if _, ok := LastEngagementAt(domain.Lead{}, nil); ok {
		t.Fatal("expected no engagement for empty lead")
	}
	if got, _ := LastEngagementAt(domain.Lead{}, activities); !got.Equal(newer) {
		t.Fatalf("expected newest activity, got %v", got)
	}

	contact := at(14, 9, 0)
	if got, _ := LastEngagementAt(domain.Lead{LastContact: &contact}, activities); !got.Equal(contact) {
		t.Fatalf("expected last contact, got %v", got)
	}

	stale := at(1, 9, 0)
	if got, _ := LastEngagementAt(domain.Lead{LastContact: &stale}, activities); !got.Equal(newer) {
		t.Fatalf("expected newer activity over stale contact, got %v", got)
	}
}
