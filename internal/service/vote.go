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

// VoteService records votes and applies the quorum policy: a suggestion is
// promoted as soon as its yes votes reach ceil(members/2). No votes never
// veto and there is no rejection; a suggestion short of quorum stays pending.
type VoteService struct {
	runner *TxRunner
	ledger *SuggestionService
	log    *slog.Logger
}

// NewVoteService constructs a VoteService that promotes through ledger.
func NewVoteService(runner *TxRunner, ledger *SuggestionService, log *slog.Logger) *VoteService {
	if log == nil {
		log = slog.Default()
	}
	return &VoteService{runner: runner, ledger: ledger, log: log}
}

// CastVote records voterID's vote, replacing any earlier vote by the same
// member, then evaluates the suggestion against the live quorum. Reaching
// quorum promotes it in the same transaction.
//
// Returns domain.ErrNotFound for an unknown suggestion and
// domain.ErrPermissionDenied when the voter is not in the trip's group.
func (s *VoteService) CastVote(ctx context.Context, suggestionID, voterID uuid.UUID, value domain.VoteValue) (domain.VoteOutcome, error) {
	const op = "service.VoteService.CastVote"
	if _, err := domain.ParseVoteValue(string(value)); err != nil {
		return domain.VoteOutcome{}, fmt.Errorf("%s: %w", op, err)
	}

	var out domain.VoteOutcome
	err := s.runner.Run(ctx, op, func(r repo.Repos) error {
		// The row lock serializes votes on one suggestion so two
		// simultaneous deciding votes cannot both promote it.
		sg, err := r.Suggestions.GetByIDForUpdate(ctx, suggestionID)
		if err != nil {
			return err
		}
		trip, err := r.Trips.GetByID(ctx, sg.TripID)
		if err != nil {
			return err
		}
		if _, err := requireMember(ctx, r, trip.GroupID, voterID); err != nil {
			return err
		}
		if _, err := r.Votes.Upsert(ctx, sg.ID, voterID, value); err != nil {
			return err
		}

		out, err = s.evaluate(ctx, r, sg, trip.GroupID)
		return err
	})
	if err != nil {
		return domain.VoteOutcome{}, err
	}

	switch {
	case out.Promoted:
		s.runner.rec.VoteCast(OutcomePromoted)
	case out.Blocked != nil:
		s.runner.rec.VoteCast(OutcomeBlocked)
	default:
		s.runner.rec.VoteCast(OutcomePending)
	}
	s.log.InfoContext(ctx, "vote cast",
		"suggestion_id", suggestionID, "voter_id", voterID, "vote", value,
		"yes", out.Tally.Yes, "votes_needed", out.VotesNeeded, "promoted", out.Promoted)
	return out, nil
}

// evaluate recomputes the tally and quorum from scratch and promotes the
// suggestion when it has enough yes votes.
func (s *VoteService) evaluate(ctx context.Context, r repo.Repos, sg domain.Suggestion, groupID uuid.UUID) (domain.VoteOutcome, error) {
	votes, err := r.Votes.ListBySuggestion(ctx, sg.ID)
	if err != nil {
		return domain.VoteOutcome{}, err
	}
	needed, err := votesNeeded(ctx, r, groupID)
	if err != nil {
		return domain.VoteOutcome{}, err
	}

	out := domain.VoteOutcome{
		TripID:      sg.TripID,
		Tally:       domain.CountVotes(votes),
		VotesNeeded: needed,
	}
	if !out.Tally.Approved(needed) {
		return out, nil
	}

	a, err := s.ledger.promote(ctx, r, sg)
	var conflict *domain.ConflictError
	if errors.As(err, &conflict) {
		// The vote still counts; the suggestion waits for a withdrawal.
		s.log.WarnContext(ctx, "promotion blocked by conflict",
			"suggestion_id", sg.ID, "conflict_activity_id", conflict.With.ID)
		out.Blocked = conflict
		return out, nil
	}
	if err != nil {
		return domain.VoteOutcome{}, err
	}
	out.Promoted = true
	out.Activity = &a
	return out, nil
}

// Tally returns the current yes/no/total counts of a suggestion.
// Returns domain.ErrNotFound for an unknown suggestion.
func (s *VoteService) Tally(ctx context.Context, suggestionID uuid.UUID) (domain.Tally, error) {
	var t domain.Tally
	err := s.runner.Run(ctx, "service.VoteService.Tally", func(r repo.Repos) error {
		if _, err := r.Suggestions.GetByID(ctx, suggestionID); err != nil {
			return err
		}
		votes, err := r.Votes.ListBySuggestion(ctx, suggestionID)
		if err != nil {
			return err
		}
		t = domain.CountVotes(votes)
		return nil
	})
	return t, err
}

// Quorum returns how many yes votes a suggestion in groupID needs right now.
func (s *VoteService) Quorum(ctx context.Context, groupID uuid.UUID) (int, error) {
	var n int
	err := s.runner.Run(ctx, "service.VoteService.Quorum", func(r repo.Repos) error {
		var err error
		n, err = votesNeeded(ctx, r, groupID)
		return err
	})
	return n, err
}
