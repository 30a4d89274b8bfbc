package domain

import (
	"time"

	"github.com/google/uuid"
)

// Suggestion is a candidate activity awaiting group approval.
// A row in the suggestions table means the suggestion is still proposed;
// promotion and withdrawal both remove the row.
type Suggestion struct {
	ID          uuid.UUID
	TripID      uuid.UUID
	Title       string
	Description string
	Location    Location
	Date        time.Time
	Start       ClockTime
	End         ClockTime
	SuggestedBy uuid.UUID
	// ClientToken is an optional caller-supplied key that makes proposing
	// idempotent per trip. Empty means no deduplication.
	ClientToken string
	CreatedAt   time.Time
}

// Range returns the suggestion's half-open time range.
func (s Suggestion) Range() TimeRange {
	return TimeRange{Start: s.Start, End: s.End}
}

// NewActivityFromSuggestion copies every scheduling field of s into a new
// confirmed Activity. The proposer becomes the activity's creator.
func NewActivityFromSuggestion(s Suggestion) Activity {
	return Activity{
		TripID:      s.TripID,
		Title:       s.Title,
		Description: s.Description,
		Location:    s.Location,
		Date:        s.Date,
		Start:       s.Start,
		End:         s.End,
		CreatedBy:   s.SuggestedBy,
	}
}
