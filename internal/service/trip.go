package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/pkordes/trip-planner/internal/domain"
	"github.com/pkordes/trip-planner/internal/repo"
)

// TripService implements business logic for Trip operations.
type TripService struct {
	runner *TxRunner
	log    *slog.Logger
}

// NewTripService constructs a TripService.
func NewTripService(runner *TxRunner, log *slog.Logger) *TripService {
	if log == nil {
		log = slog.Default()
	}
	return &TripService{runner: runner, log: log}
}

// Create validates and persists a new trip in trip.GroupID.
// Only a group admin may create trips.
func (s *TripService) Create(ctx context.Context, trip domain.Trip, actorID uuid.UUID) (domain.Trip, error) {
	const op = "service.TripService.Create"
	if err := validateTrip(trip); err != nil {
		return domain.Trip{}, fmt.Errorf("%s: %w", op, err)
	}

	var created domain.Trip
	err := s.runner.Run(ctx, op, func(r repo.Repos) error {
		if _, err := requireAdmin(ctx, r, trip.GroupID, actorID); err != nil {
			return err
		}
		var err error
		created, err = r.Trips.Create(ctx, trip)
		return err
	})
	if err != nil {
		return domain.Trip{}, err
	}

	s.log.InfoContext(ctx, "trip created", "trip_id", created.ID, "group_id", created.GroupID)
	return created, nil
}

// ListByGroup returns the group's trips, earliest first. Members only.
func (s *TripService) ListByGroup(ctx context.Context, groupID, viewerID uuid.UUID) ([]domain.Trip, error) {
	var trips []domain.Trip
	err := s.runner.Run(ctx, "service.TripService.ListByGroup", func(r repo.Repos) error {
		if _, err := requireMember(ctx, r, groupID, viewerID); err != nil {
			return err
		}
		var err error
		trips, err = r.Trips.ListByGroup(ctx, groupID)
		return err
	})
	if err != nil {
		return nil, err
	}
	if trips == nil {
		return []domain.Trip{}, nil
	}
	return trips, nil
}

// View assembles the trip page for viewerID: the confirmed schedule grouped
// by date, every pending suggestion with its live tally and the viewer's own
// vote, the current quorum and the average review rating. Members only.
func (s *TripService) View(ctx context.Context, tripID, viewerID uuid.UUID) (domain.TripView, error) {
	var view domain.TripView
	err := s.runner.Run(ctx, "service.TripService.View", func(r repo.Repos) error {
		trip, err := r.Trips.GetByID(ctx, tripID)
		if err != nil {
			return err
		}
		m, err := requireMember(ctx, r, trip.GroupID, viewerID)
		if err != nil {
			return err
		}
		members, err := r.Members.CountMembers(ctx, trip.GroupID)
		if err != nil {
			return err
		}
		activities, err := r.Activities.ListByTrip(ctx, trip.ID)
		if err != nil {
			return err
		}
		suggestions, err := r.Suggestions.ListByTrip(ctx, trip.ID)
		if err != nil {
			return err
		}
		reviews, err := r.Reviews.Summary(ctx, trip.ID)
		if err != nil {
			return err
		}

		view = domain.TripView{
			Trip:          trip,
			Days:          domain.GroupByDate(activities),
			Suggestions:   make([]domain.SuggestionView, 0, len(suggestions)),
			MemberCount:   members,
			VotesNeeded:   domain.Quorum(members),
			ViewerIsAdmin: m.IsAdmin(),
			Reviews:       reviews,
		}
		for _, sg := range suggestions {
			sv, err := suggestionView(ctx, r, sg, viewerID, view.VotesNeeded)
			if err != nil {
				return err
			}
			view.Suggestions = append(view.Suggestions, sv)
		}
		return nil
	})
	if err != nil {
		return domain.TripView{}, err
	}
	return view, nil
}

func suggestionView(ctx context.Context, r repo.Repos, sg domain.Suggestion, viewerID uuid.UUID, needed int) (domain.SuggestionView, error) {
	votes, err := r.Votes.ListBySuggestion(ctx, sg.ID)
	if err != nil {
		return domain.SuggestionView{}, err
	}
	sv := domain.SuggestionView{
		Suggestion:  sg,
		Tally:       domain.CountVotes(votes),
		VotesNeeded: needed,
	}
	for _, v := range votes {
		if v.UserID == viewerID {
			value := v.Value
			sv.ViewerVote = &value
			break
		}
	}
	return sv, nil
}

// Delete removes a trip with all its activities, suggestions, votes and
// reviews.
// Only a group admin may delete a trip. The deleted trip is returned.
func (s *TripService) Delete(ctx context.Context, tripID, actorID uuid.UUID) (domain.Trip, error) {
	var deleted domain.Trip
	err := s.runner.Run(ctx, "service.TripService.Delete", func(r repo.Repos) error {
		trip, err := r.Trips.GetByIDForUpdate(ctx, tripID)
		if err != nil {
			return err
		}
		if _, err := requireAdmin(ctx, r, trip.GroupID, actorID); err != nil {
			return err
		}
		if err := r.Trips.Delete(ctx, trip.ID); err != nil {
			return err
		}
		deleted = trip
		return nil
	})
	if err != nil {
		return domain.Trip{}, err
	}

	s.log.InfoContext(ctx, "trip deleted", "trip_id", deleted.ID, "actor_id", actorID)
	return deleted, nil
}

// validateTrip enforces the business rules for a new trip.
//   - Name must be non-empty (whitespace-only names are rejected).
//   - Both dates are required and EndDate must not be before StartDate.
func validateTrip(trip domain.Trip) error {
	var errs []error
	if strings.TrimSpace(trip.Name) == "" {
		errs = append(errs, errors.New("name is required"))
	}
	if trip.StartDate.IsZero() || trip.EndDate.IsZero() {
		errs = append(errs, errors.New("start_date and end_date are required"))
	} else if trip.EndDate.Before(trip.StartDate) {
		errs = append(errs, errors.New("end_date must not be before start_date"))
	}
	if len(errs) == 0 {
		return nil
	}
	msgs := make([]string, len(errs))
	for i, e := range errs {
		msgs[i] = e.Error()
	}
	return fmt.Errorf("%w: %s", domain.ErrValidation, strings.Join(msgs, "; "))
}
