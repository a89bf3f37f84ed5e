// Package timing holds the calendar and priority helpers shared by the
// scoring and next-best-action engines. Every function takes its reference
// time as an argument; nothing here reads the wall clock.
package timing

import (
	"time"

	"sales_crm_backend/internal/leads/domain"
)

const day = 24 * time.Hour

// DaysBetween returns the number of whole days from from to to. A from that
// lies after to counts as zero days.
func DaysBetween(from, to time.Time) int {
	if !from.Before(to) {
		return 0
	}
	return int(to.Sub(from) / day)
}

// InGoodCallingWindow reports whether t falls on Tuesday through Thursday
// between 10:00-12:00 or 14:00-16:00 in t's own location.
func InGoodCallingWindow(t time.Time) bool {
	switch t.Weekday() {
	case time.Tuesday, time.Wednesday, time.Thursday:
	default:
		return false
	}
	hour := t.Hour()
	return (hour >= 10 && hour < 12) || (hour >= 14 && hour < 16)
}

// IsFridayAfternoon reports whether t is a Friday at or after noon.
func IsFridayAfternoon(t time.Time) bool {
	return t.Weekday() == time.Friday && t.Hour() >= 12
}

// PriorityRank orders priorities from most to least pressing.
// Unknown priorities sort after low.
func PriorityRank(p domain.Priority) int {
	switch p {
	case domain.PriorityUrgent:
		return 0
	case domain.PriorityHigh:
		return 1
	case domain.PriorityMedium:
		return 2
	case domain.PriorityLow:
		return 3
	default:
		return 4
	}
}

// LatestActivityAt returns the newest activity timestamp, ignoring zero
// timestamps. ok is false when there is none.
func LatestActivityAt(activities []domain.Activity) (latest time.Time, ok bool) {
	for _, a := range activities {
		if a.Timestamp.IsZero() {
			continue
		}
		if !ok || a.Timestamp.After(latest) {
			latest = a.Timestamp
			ok = true
		}
	}
	return latest, ok
}

// LastEngagementAt is the later of the lead's LastContact and its newest
// activity. ok is false when neither is known.
func LastEngagementAt(lead domain.Lead, activities []domain.Activity) (time.Time, bool) {
	latest, ok := LatestActivityAt(activities)
	if lead.LastContact != nil && !lead.LastContact.IsZero() {
		if !ok || lead.LastContact.After(latest) {
			return *lead.LastContact, true
		}
	}
	return latest, ok
}
