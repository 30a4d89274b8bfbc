package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/pkordes/trip-planner/internal/domain"
	"github.com/pkordes/trip-planner/internal/repo"
)

// SuggestionService owns the lifecycle of a suggestion: proposed, then
// either promoted into a confirmed activity or withdrawn. A suggestion row
// existing means it is still proposed; there is no way back once it is gone.
type SuggestionService struct {
	runner *TxRunner
	log    *slog.Logger

	// recheckOnPromote re-runs overlap detection at promotion time.
	recheckOnPromote bool
}

// SuggestionOption configures a SuggestionService.
type SuggestionOption func(*SuggestionService)

// WithRecheckOnPromote makes promotion refuse a suggestion that now overlaps
// a confirmed activity. Off by default: a suggestion that was clear when
// proposed is promoted without a second check.
func WithRecheckOnPromote(enabled bool) SuggestionOption {
	return func(s *SuggestionService) { s.recheckOnPromote = enabled }
}

// NewSuggestionService constructs a SuggestionService.
func NewSuggestionService(runner *TxRunner, log *slog.Logger, opts ...SuggestionOption) *SuggestionService {
	if log == nil {
		log = slog.Default()
	}
	s := &SuggestionService{runner: runner, log: log}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Propose validates the candidate, checks it against the trip's confirmed
// activities and stores it as a pending suggestion.
//
// Returns domain.ErrInvalidTimeRange (before any database access) when start
// is not before end, domain.ErrNotFound for an unknown trip,
// domain.ErrPermissionDenied for non-members and a *domain.ConflictError
// when the slot overlaps a confirmed activity.
//
// When in.ClientToken is set and a suggestion with that token already exists
// on the trip, the existing suggestion is returned unchanged.
func (s *SuggestionService) Propose(ctx context.Context, in ActivityInput) (domain.Suggestion, error) {
	const op = "service.SuggestionService.Propose"
	if err := validateActivityInput(in); err != nil {
		return domain.Suggestion{}, fmt.Errorf("%s: %w", op, err)
	}

	var (
		created domain.Suggestion
		replay  bool
	)
	err := s.runner.Run(ctx, op, func(r repo.Repos) error {
		replay = false
		// Locking the trip serializes schedule changes on it, so a
		// concurrent promotion cannot slip in between check and insert.
		trip, err := r.Trips.GetByIDForUpdate(ctx, in.TripID)
		if err != nil {
			return err
		}
		if _, err := requireMember(ctx, r, trip.GroupID, in.ActorID); err != nil {
			return err
		}

		if in.ClientToken != "" {
			existing, err := r.Suggestions.GetByClientToken(ctx, trip.ID, in.ClientToken)
			if err == nil {
				created, replay = existing, true
				return nil
			}
			if !errors.Is(err, domain.ErrNotFound) {
				return err
			}
		}

		err = NewOverlapDetector(r.Activities).Check(ctx, OverlapQuery{
			TripID: trip.ID,
			Date:   in.Date,
			Range:  in.Range(),
		})
		if err != nil {
			return err
		}

		created, err = r.Suggestions.Create(ctx, domain.Suggestion{
			TripID:      trip.ID,
			Title:       in.Title,
			Description: in.Description,
			Location:    in.Location,
			Date:        in.Date,
			Start:       in.Start,
			End:         in.End,
			SuggestedBy: in.ActorID,
			ClientToken: in.ClientToken,
		})
		return err
	})
	if err != nil {
		var conflict *domain.ConflictError
		if errors.As(err, &conflict) {
			s.runner.rec.SuggestionProposed(OutcomeConflict)
			s.log.InfoContext(ctx, "suggestion rejected by conflict",
				"trip_id", in.TripID, "conflict_activity_id", conflict.With.ID)
		}
		return domain.Suggestion{}, err
	}

	if replay {
		s.runner.rec.SuggestionProposed(OutcomeReplayed)
		s.log.InfoContext(ctx, "suggestion replayed", "suggestion_id", created.ID, "trip_id", created.TripID)
	} else {
		s.runner.rec.SuggestionProposed(OutcomeCreated)
		s.log.InfoContext(ctx, "suggestion proposed",
			"suggestion_id", created.ID, "trip_id", created.TripID, "suggested_by", created.SuggestedBy)
	}
	return created, nil
}

// Withdraw deletes a suggestion together with its votes in one transaction.
// Only the proposer or a group admin may withdraw; anyone else gets
// domain.ErrPermissionDenied. The withdrawn suggestion is returned so the
// caller knows which trip it belonged to.
func (s *SuggestionService) Withdraw(ctx context.Context, suggestionID, actorID uuid.UUID) (domain.Suggestion, error) {
	const op = "service.SuggestionService.Withdraw"

	var withdrawn domain.Suggestion
	err := s.runner.Run(ctx, op, func(r repo.Repos) error {
		sg, err := r.Suggestions.GetByIDForUpdate(ctx, suggestionID)
		if err != nil {
			return err
		}
		trip, err := r.Trips.GetByID(ctx, sg.TripID)
		if err != nil {
			return err
		}
		m, err := requireMember(ctx, r, trip.GroupID, actorID)
		if err != nil {
			return err
		}
		if !m.IsAdmin() && sg.SuggestedBy != actorID {
			return fmt.Errorf("%w: only the proposer or a group admin may withdraw a suggestion", domain.ErrPermissionDenied)
		}
		if err := s.discard(ctx, r, sg.ID); err != nil {
			return err
		}
		withdrawn = sg
		return nil
	})
	if err != nil {
		return domain.Suggestion{}, err
	}

	s.log.InfoContext(ctx, "suggestion withdrawn", "suggestion_id", withdrawn.ID, "actor_id", actorID)
	return withdrawn, nil
}

// Promote converts a suggestion into a confirmed activity in its own
// transaction. Voting promotes through promote inside the vote transaction;
// this entry point exists for callers that have decided on promotion
// themselves.
func (s *SuggestionService) Promote(ctx context.Context, suggestionID uuid.UUID) (domain.Activity, error) {
	const op = "service.SuggestionService.Promote"

	var promoted domain.Activity
	err := s.runner.Run(ctx, op, func(r repo.Repos) error {
		sg, err := r.Suggestions.GetByIDForUpdate(ctx, suggestionID)
		if err != nil {
			return err
		}
		promoted, err = s.promote(ctx, r, sg)
		return err
	})
	if err != nil {
		return domain.Activity{}, err
	}
	return promoted, nil
}

// promote is the only transition from suggestion to activity. It must run
// inside the caller's transaction: the activity insert and the removal of
// the suggestion and its votes commit or roll back together.
//
// With recheck enabled a conflicting suggestion is left untouched and a
// *domain.ConflictError is returned.
func (s *SuggestionService) promote(ctx context.Context, r repo.Repos, sg domain.Suggestion) (domain.Activity, error) {
	if s.recheckOnPromote {
		if _, err := r.Trips.GetByIDForUpdate(ctx, sg.TripID); err != nil {
			return domain.Activity{}, err
		}
		err := NewOverlapDetector(r.Activities).Check(ctx, OverlapQuery{
			TripID: sg.TripID,
			Date:   sg.Date,
			Range:  sg.Range(),
		})
		if err != nil {
			return domain.Activity{}, err
		}
	}

	a, err := r.Activities.Create(ctx, domain.NewActivityFromSuggestion(sg))
	if err != nil {
		return domain.Activity{}, err
	}
	if err := s.discard(ctx, r, sg.ID); err != nil {
		return domain.Activity{}, err
	}

	s.log.InfoContext(ctx, "suggestion promoted",
		"suggestion_id", sg.ID, "activity_id", a.ID, "trip_id", a.TripID)
	return a, nil
}

// discard removes the votes first, then the suggestion.
func (s *SuggestionService) discard(ctx context.Context, r repo.Repos, suggestionID uuid.UUID) error {
	if _, err := r.Votes.DeleteBySuggestion(ctx, suggestionID); err != nil {
		return err
	}
	return r.Suggestions.Delete(ctx, suggestionID)
}
