package repo_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/trip-planner/internal/domain"
)

func TestReviewRepo_CreateAndGet(t *testing.T) {
	r := newTestRepos(t)
	ctx := context.Background()
	trip := fixtureTrip(t, r)
	author := uuid.New()

	created, err := r.Reviews.Create(ctx, domain.Review{TripID: trip.ID, UserID: author, Rating: 9, Text: "Loved the canals"})
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, created.ID)
	assert.False(t, created.CreatedAt.IsZero())

	got, err := r.Reviews.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, trip.ID, got.TripID)
	assert.Equal(t, author, got.UserID)
	assert.Equal(t, 9, got.Rating)
	assert.Equal(t, "Loved the canals", got.Text)
}

func TestReviewRepo_Create_OnePerUserPerTrip(t *testing.T) {
	r := newTestRepos(t)
	ctx := context.Background()
	trip := fixtureTrip(t, r)
	author := uuid.New()

	_, err := r.Reviews.Create(ctx, domain.Review{TripID: trip.ID, UserID: author, Rating: 9, Text: "first"})
	require.NoError(t, err)
	_, err = r.Reviews.Create(ctx, domain.Review{TripID: trip.ID, UserID: author, Rating: 3, Text: "second"})

	assert.ErrorIs(t, err, domain.ErrAlreadyExists)
}

func TestReviewRepo_Update(t *testing.T) {
	r := newTestRepos(t)
	ctx := context.Background()
	trip := fixtureTrip(t, r)
	created, err := r.Reviews.Create(ctx, domain.Review{TripID: trip.ID, UserID: uuid.New(), Rating: 4, Text: "rainy"})
	require.NoError(t, err)

	got, err := r.Reviews.Update(ctx, created.ID, 8, "rainy but fun")

	require.NoError(t, err)
	assert.Equal(t, 8, got.Rating)
	assert.Equal(t, "rainy but fun", got.Text)
	assert.True(t, got.UpdatedAt.After(created.UpdatedAt))

	_, err = r.Reviews.Update(ctx, uuid.New(), 8, "x")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestReviewRepo_Delete(t *testing.T) {
	r := newTestRepos(t)
	ctx := context.Background()
	trip := fixtureTrip(t, r)
	created, err := r.Reviews.Create(ctx, domain.Review{TripID: trip.ID, UserID: uuid.New(), Rating: 6, Text: "ok"})
	require.NoError(t, err)

	require.NoError(t, r.Reviews.Delete(ctx, created.ID))
	assert.ErrorIs(t, r.Reviews.Delete(ctx, created.ID), domain.ErrNotFound)
}

func TestReviewRepo_ListAndSummary(t *testing.T) {
	r := newTestRepos(t)
	ctx := context.Background()
	trip := fixtureTrip(t, r)
	other := fixtureTrip(t, r)

	empty, err := r.Reviews.Summary(ctx, trip.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ReviewSummary{}, empty)

	for i, rating := range []int{10, 7, 9} {
		_, err := r.Reviews.Create(ctx, domain.Review{TripID: trip.ID, UserID: uuid.New(), Rating: rating, Text: "review"})
		require.NoError(t, err, "review %d", i)
	}
	_, err = r.Reviews.Create(ctx, domain.Review{TripID: other.ID, UserID: uuid.New(), Rating: 1, Text: "elsewhere"})
	require.NoError(t, err)

	list, err := r.Reviews.ListByTrip(ctx, trip.ID)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, 9, list[0].Rating, "newest first")
	assert.Equal(t, 10, list[2].Rating)

	sum, err := r.Reviews.Summary(ctx, trip.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, sum.Count)
	require.NotNil(t, sum.Average)
	assert.InDelta(t, 8.7, *sum.Average, 1e-9)
}

func TestReviewRepo_DeletedWithTrip(t *testing.T) {
	r := newTestRepos(t)
	ctx := context.Background()
	trip := fixtureTrip(t, r)
	created, err := r.Reviews.Create(ctx, domain.Review{TripID: trip.ID, UserID: uuid.New(), Rating: 5, Text: "meh"})
	require.NoError(t, err)

	require.NoError(t, r.Trips.Delete(ctx, trip.ID))

	_, err = r.Reviews.GetByID(ctx, created.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
