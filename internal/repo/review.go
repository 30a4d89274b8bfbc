package repo

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/pkordes/trip-planner/internal/domain"
)

// ReviewRepo defines the persistence operations for trip reviews.
type ReviewRepo interface {
	// Create inserts a review. A second review of the same trip by the same
	// user fails with domain.ErrAlreadyExists.
	Create(ctx context.Context, review domain.Review) (domain.Review, error)

	// GetByID returns domain.ErrNotFound if no review has that ID.
	GetByID(ctx context.Context, id uuid.UUID) (domain.Review, error)

	// Update replaces the rating and text and bumps updated_at.
	Update(ctx context.Context, id uuid.UUID, rating int, text string) (domain.Review, error)

	Delete(ctx context.Context, id uuid.UUID) error

	// ListByTrip returns a trip's reviews, newest first.
	ListByTrip(ctx context.Context, tripID uuid.UUID) ([]domain.Review, error)

	// Summary counts a trip's reviews and averages their ratings.
	Summary(ctx context.Context, tripID uuid.UUID) (domain.ReviewSummary, error)
}

type pgReviewRepo struct {
	db db
}

// NewReviewRepo constructs a ReviewRepo backed by db.
func NewReviewRepo(db db) ReviewRepo {
	return &pgReviewRepo{db: db}
}

const reviewColumns = `id, trip_id, user_id, rating, review_text, created_at, updated_at`

func (r *pgReviewRepo) Create(ctx context.Context, review domain.Review) (domain.Review, error) {
	const q = `
		INSERT INTO trip_reviews (trip_id, user_id, rating, review_text)
		VALUES (@trip_id, @user_id, @rating, @review_text)
		RETURNING ` + reviewColumns

	args := pgx.NamedArgs{
		"trip_id":     review.TripID,
		"user_id":     review.UserID,
		"rating":      review.Rating,
		"review_text": review.Text,
	}
	got, err := scanReview(r.db.QueryRow(ctx, q, args))
	if err != nil {
		return domain.Review{}, fmt.Errorf("repo.ReviewRepo.Create: %w", err)
	}
	return got, nil
}

func (r *pgReviewRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Review, error) {
	const q = `SELECT ` + reviewColumns + ` FROM trip_reviews WHERE id = @id`

	got, err := scanReview(r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id}))
	if err != nil {
		return domain.Review{}, fmt.Errorf("repo.ReviewRepo.GetByID: %w", err)
	}
	return got, nil
}

func (r *pgReviewRepo) Update(ctx context.Context, id uuid.UUID, rating int, text string) (domain.Review, error) {
	const q = `
		UPDATE trip_reviews
		SET rating = @rating, review_text = @review_text, updated_at = clock_timestamp()
		WHERE id = @id
		RETURNING ` + reviewColumns

	args := pgx.NamedArgs{"id": id, "rating": rating, "review_text": text}
	got, err := scanReview(r.db.QueryRow(ctx, q, args))
	if err != nil {
		return domain.Review{}, fmt.Errorf("repo.ReviewRepo.Update: %w", err)
	}
	return got, nil
}

func (r *pgReviewRepo) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM trip_reviews WHERE id = @id`, pgx.NamedArgs{"id": id})
	if err != nil {
		return fmt.Errorf("repo.ReviewRepo.Delete: %w", classify(err))
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repo.ReviewRepo.Delete: %w", domain.ErrNotFound)
	}
	return nil
}

func (r *pgReviewRepo) ListByTrip(ctx context.Context, tripID uuid.UUID) ([]domain.Review, error) {
	const q = `
		SELECT ` + reviewColumns + `
		FROM trip_reviews
		WHERE trip_id = @trip_id
		ORDER BY created_at DESC, id`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"trip_id": tripID})
	if err != nil {
		return nil, fmt.Errorf("repo.ReviewRepo.ListByTrip: %w", classify(err))
	}
	defer rows.Close()

	reviews := []domain.Review{}
	for rows.Next() {
		rv, err := scanReview(rows)
		if err != nil {
			return nil, fmt.Errorf("repo.ReviewRepo.ListByTrip: scan: %w", err)
		}
		reviews = append(reviews, rv)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.ReviewRepo.ListByTrip: rows: %w", classify(err))
	}
	return reviews, nil
}

// Summary leaves the rounding to domain.NewReviewSummary so the average is
// computed one way everywhere.
func (r *pgReviewRepo) Summary(ctx context.Context, tripID uuid.UUID) (domain.ReviewSummary, error) {
	const q = `
		SELECT count(*), COALESCE(sum(rating), 0)
		FROM trip_reviews
		WHERE trip_id = @trip_id`

	var count, sum int64
	if err := r.db.QueryRow(ctx, q, pgx.NamedArgs{"trip_id": tripID}).Scan(&count, &sum); err != nil {
		return domain.ReviewSummary{}, fmt.Errorf("repo.ReviewRepo.Summary: %w", classify(err))
	}
	return domain.NewReviewSummary(int(count), int(sum)), nil
}

func scanReview(s scanner) (domain.Review, error) {
	var (
		rv     domain.Review
		id     pgtype.UUID
		tripID pgtype.UUID
		userID pgtype.UUID
		rating int16
	)
	if err := s.Scan(&id, &tripID, &userID, &rating, &rv.Text, &rv.CreatedAt, &rv.UpdatedAt); err != nil {
		return domain.Review{}, classify(err)
	}
	rv.ID = uuid.UUID(id.Bytes)
	rv.TripID = uuid.UUID(tripID.Bytes)
	rv.UserID = uuid.UUID(userID.Bytes)
	rv.Rating = int(rating)
	return rv, nil
}
