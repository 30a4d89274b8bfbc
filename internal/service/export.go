package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/pkordes/trip-planner/internal/domain"
	"github.com/pkordes/trip-planner/internal/repo"
)

// ExportService assembles a flat export of one trip's schedule.
type ExportService struct {
	runner *TxRunner
}

// NewExportService constructs an ExportService.
func NewExportService(runner *TxRunner) *ExportService {
	return &ExportService{runner: runner}
}

// ExportTrip returns one row per confirmed activity followed by one row per
// pending suggestion. A trip with neither yields no rows. Members only.
func (s *ExportService) ExportTrip(ctx context.Context, tripID, viewerID uuid.UUID) ([]domain.ExportRow, error) {
	rows := []domain.ExportRow{}
	err := s.runner.Run(ctx, "service.ExportService.ExportTrip", func(r repo.Repos) error {
		rows = rows[:0]
		trip, err := r.Trips.GetByID(ctx, tripID)
		if err != nil {
			return err
		}
		if _, err := requireMember(ctx, r, trip.GroupID, viewerID); err != nil {
			return err
		}

		activities, err := r.Activities.ListByTrip(ctx, trip.ID)
		if err != nil {
			return err
		}
		for _, a := range activities {
			row := tripRow(trip)
			row.Status = domain.ExportStatusConfirmed
			row.Title = a.Title
			row.Description = a.Description
			row.Location = a.Location.Name
			row.Date = a.Date.Format(domain.DateLayout)
			row.StartTime = a.Start.String()
			row.EndTime = a.End.String()
			rows = append(rows, row)
		}

		suggestions, err := r.Suggestions.ListByTrip(ctx, trip.ID)
		if err != nil {
			return err
		}
		for _, sg := range suggestions {
			votes, err := r.Votes.ListBySuggestion(ctx, sg.ID)
			if err != nil {
				return err
			}
			tally := domain.CountVotes(votes)

			row := tripRow(trip)
			row.Status = domain.ExportStatusProposed
			row.Title = sg.Title
			row.Description = sg.Description
			row.Location = sg.Location.Name
			row.Date = sg.Date.Format(domain.DateLayout)
			row.StartTime = sg.Start.String()
			row.EndTime = sg.End.String()
			row.YesVotes = tally.Yes
			row.NoVotes = tally.No
			rows = append(rows, row)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// tripRow pre-fills the trip columns shared by every row.
func tripRow(t domain.Trip) domain.ExportRow {
	return domain.ExportRow{
		TripID:          t.ID.String(),
		TripName:        t.Name,
		TripDestination: t.Destination,
		TripStartDate:   t.StartDate.Format(domain.DateLayout),
		TripEndDate:     t.EndDate.Format(domain.DateLayout),
	}
}
