package domain

// ExportRow is a single row in a trip schedule export.
// It is a flat, denormalized view: one row per confirmed activity or pending
// suggestion, with trip fields repeated on every row.
type ExportRow struct {
	// Trip fields, repeated for every row.
	TripID          string
	TripName        string
	TripDestination string
	TripStartDate   string // "2006-01-02" formatted date
	TripEndDate     string

	// Status is "confirmed" for activities and "proposed" for suggestions.
	Status      string
	Title       string
	Description string
	Location    string
	Date        string
	StartTime   string // "15:04"
	EndTime     string

	// YesVotes and NoVotes are zero for confirmed activities.
	YesVotes int
	NoVotes  int
}

const (
	ExportStatusConfirmed = "confirmed"
	ExportStatusProposed  = "proposed"
)
