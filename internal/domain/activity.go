package domain

import (
	"time"

	"github.com/google/uuid"
)

// Location is a named place with optional coordinates.
type Location struct {
	Name      string
	Latitude  *float64
	Longitude *float64
}

// Activity is a confirmed, scheduled event on a trip.
// Start and End are wall-clock times on Date; Start < End is enforced when
// the activity is submitted, not by storage.
type Activity struct {
	ID          uuid.UUID
	TripID      uuid.UUID
	Title       string
	Description string
	Location    Location
	Date        time.Time
	Start       ClockTime
	End         ClockTime
	CreatedBy   uuid.UUID
	CreatedAt   time.Time
}

// Range returns the activity's half-open time range.
func (a Activity) Range() TimeRange {
	return TimeRange{Start: a.Start, End: a.End}
}

// FindConflict returns the first activity in activities that is on the same
// date as date and overlaps candidate. Activities whose ID equals exclude
// are skipped; pass uuid.Nil to compare against all of them.
// The slice order decides which conflict is reported when there are several.
func FindConflict(activities []Activity, date time.Time, candidate TimeRange, exclude uuid.UUID) (Activity, bool) {
	for _, a := range activities {
		if exclude != uuid.Nil && a.ID == exclude {
			continue
		}
		if !SameDate(a.Date, date) {
			continue
		}
		if a.Range().Overlaps(candidate) {
			return a, true
		}
	}
	return Activity{}, false
}
