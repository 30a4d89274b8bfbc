package domain

import (
	"math"
	"time"

	"github.com/google/uuid"
)

// Ratings run from MinRating to MaxRating inclusive.
const (
	MinRating = 1
	MaxRating = 10
)

// Review is a member's rating of a trip, written after it. A user reviews a
// given trip at most once; only the author may change or delete it.
type Review struct {
	ID        uuid.UUID
	TripID    uuid.UUID
	UserID    uuid.UUID
	Rating    int
	Text      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ValidRating reports whether r is within MinRating..MaxRating.
func ValidRating(r int) bool {
	return r >= MinRating && r <= MaxRating
}

// ReviewSummary aggregates the reviews of one trip.
// Average is nil when there are no reviews.
type ReviewSummary struct {
	Count   int
	Average *float64
}

// NewReviewSummary builds a summary from a review count and the sum of their
// ratings. The average is rounded to one decimal.
func NewReviewSummary(count, ratingSum int) ReviewSummary {
	if count <= 0 {
		return ReviewSummary{}
	}
	avg := math.Round(float64(ratingSum)/float64(count)*10) / 10
	return ReviewSummary{Count: count, Average: &avg}
}

// SummarizeReviews is NewReviewSummary over a slice of reviews.
func SummarizeReviews(reviews []Review) ReviewSummary {
	sum := 0
	for _, r := range reviews {
		sum += r.Rating
	}
	return NewReviewSummary(len(reviews), sum)
}

// TripReviews is a trip's reviews, newest first, with their summary.
type TripReviews struct {
	TripID  uuid.UUID
	Reviews []Review
	Summary ReviewSummary
}
