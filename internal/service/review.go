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

// ReviewService manages post-trip reviews. Group members may review a trip
// once and read every review of it; only the author edits or deletes one.
type ReviewService struct {
	runner *TxRunner
	log    *slog.Logger
}

// NewReviewService constructs a ReviewService.
func NewReviewService(runner *TxRunner, log *slog.Logger) *ReviewService {
	if log == nil {
		log = slog.Default()
	}
	return &ReviewService{runner: runner, log: log}
}

// ReviewInput is a rating and text from one user for one trip.
type ReviewInput struct {
	TripID   uuid.UUID
	AuthorID uuid.UUID
	Rating   int
	Text     string
}

// Create stores authorID's review of the trip. A second review by the same
// user fails with domain.ErrAlreadyExists.
func (s *ReviewService) Create(ctx context.Context, in ReviewInput) (domain.Review, error) {
	const op = "service.ReviewService.Create"
	text := strings.TrimSpace(in.Text)
	if err := validateReview(in.Rating, text); err != nil {
		return domain.Review{}, fmt.Errorf("%s: %w", op, err)
	}

	var created domain.Review
	err := s.runner.Run(ctx, op, func(r repo.Repos) error {
		trip, err := r.Trips.GetByID(ctx, in.TripID)
		if err != nil {
			return err
		}
		if _, err := requireMember(ctx, r, trip.GroupID, in.AuthorID); err != nil {
			return err
		}
		created, err = r.Reviews.Create(ctx, domain.Review{
			TripID: trip.ID,
			UserID: in.AuthorID,
			Rating: in.Rating,
			Text:   text,
		})
		if errors.Is(err, domain.ErrAlreadyExists) {
			return fmt.Errorf("%w: you have already reviewed this trip", domain.ErrAlreadyExists)
		}
		return err
	})
	if err != nil {
		return domain.Review{}, err
	}

	s.log.InfoContext(ctx, "review created", "review_id", created.ID, "trip_id", created.TripID, "rating", created.Rating)
	return created, nil
}

// Update replaces the rating and text of the actor's own review.
func (s *ReviewService) Update(ctx context.Context, reviewID, actorID uuid.UUID, rating int, text string) (domain.Review, error) {
	const op = "service.ReviewService.Update"
	text = strings.TrimSpace(text)
	if err := validateReview(rating, text); err != nil {
		return domain.Review{}, fmt.Errorf("%s: %w", op, err)
	}

	var updated domain.Review
	err := s.runner.Run(ctx, op, func(r repo.Repos) error {
		if _, err := ownReview(ctx, r, reviewID, actorID); err != nil {
			return err
		}
		var err error
		updated, err = r.Reviews.Update(ctx, reviewID, rating, text)
		return err
	})
	if err != nil {
		return domain.Review{}, err
	}

	s.log.InfoContext(ctx, "review updated", "review_id", updated.ID, "rating", updated.Rating)
	return updated, nil
}

// Delete removes the actor's own review and returns it.
func (s *ReviewService) Delete(ctx context.Context, reviewID, actorID uuid.UUID) (domain.Review, error) {
	var deleted domain.Review
	err := s.runner.Run(ctx, "service.ReviewService.Delete", func(r repo.Repos) error {
		rv, err := ownReview(ctx, r, reviewID, actorID)
		if err != nil {
			return err
		}
		if err := r.Reviews.Delete(ctx, rv.ID); err != nil {
			return err
		}
		deleted = rv
		return nil
	})
	if err != nil {
		return domain.Review{}, err
	}

	s.log.InfoContext(ctx, "review deleted", "review_id", deleted.ID, "trip_id", deleted.TripID)
	return deleted, nil
}

// ListByTrip returns the trip's reviews, newest first, with the average
// rating. Members only.
func (s *ReviewService) ListByTrip(ctx context.Context, tripID, viewerID uuid.UUID) (domain.TripReviews, error) {
	var out domain.TripReviews
	err := s.runner.Run(ctx, "service.ReviewService.ListByTrip", func(r repo.Repos) error {
		trip, err := r.Trips.GetByID(ctx, tripID)
		if err != nil {
			return err
		}
		if _, err := requireMember(ctx, r, trip.GroupID, viewerID); err != nil {
			return err
		}
		reviews, err := r.Reviews.ListByTrip(ctx, trip.ID)
		if err != nil {
			return err
		}
		out = domain.TripReviews{TripID: trip.ID, Reviews: reviews, Summary: domain.SummarizeReviews(reviews)}
		return nil
	})
	if err != nil {
		return domain.TripReviews{}, err
	}
	if out.Reviews == nil {
		out.Reviews = []domain.Review{}
	}
	return out, nil
}

// ownReview loads a review and checks actorID wrote it.
func ownReview(ctx context.Context, r repo.Repos, reviewID, actorID uuid.UUID) (domain.Review, error) {
	rv, err := r.Reviews.GetByID(ctx, reviewID)
	if err != nil {
		return domain.Review{}, err
	}
	if rv.UserID != actorID {
		return domain.Review{}, fmt.Errorf("%w: only the author may change a review", domain.ErrPermissionDenied)
	}
	return rv, nil
}

// validateReview checks a trimmed review before anything is read.
func validateReview(rating int, text string) error {
	if !domain.ValidRating(rating) {
		return fmt.Errorf("%w: rating must be between %d and %d", domain.ErrValidation, domain.MinRating, domain.MaxRating)
	}
	if text == "" {
		return fmt.Errorf("%w: review text is required", domain.ErrValidation)
	}
	return nil
}
