package domain

import (
	"time"

	"github.com/google/uuid"
)

// SuggestionView is a pending suggestion together with its live vote state
// as seen by one viewer.
type SuggestionView struct {
	Suggestion  Suggestion
	Tally       Tally
	VotesNeeded int
	// ViewerVote is nil when the viewer has not voted.
	ViewerVote *VoteValue
}

// DaySchedule groups the confirmed activities of one date.
type DaySchedule struct {
	Date       time.Time
	Activities []Activity
}

// TripView is everything the trip page shows: the confirmed schedule grouped
// by date, the pending suggestions, the voting threshold and the review
// summary.
type TripView struct {
	Trip          Trip
	Days          []DaySchedule
	Suggestions   []SuggestionView
	MemberCount   int
	VotesNeeded   int
	ViewerIsAdmin bool
	Reviews       ReviewSummary
}

// GroupByDate splits activities (already ordered by date then start time)
// into one DaySchedule per distinct date, preserving order.
func GroupByDate(activities []Activity) []DaySchedule {
	days := []DaySchedule{}
	for _, a := range activities {
		if n := len(days); n > 0 && SameDate(days[n-1].Date, a.Date) {
			days[n-1].Activities = append(days[n-1].Activities, a)
			continue
		}
		days = append(days, DaySchedule{Date: a.Date, Activities: []Activity{a}})
	}
	return days
}

// ScheduleEntry is one confirmed activity in a user's personal schedule,
// with the trip and group it belongs to.
type ScheduleEntry struct {
	Activity        Activity
	TripName        string
	TripDestination string
	GroupID         uuid.UUID
	GroupName       string
}
