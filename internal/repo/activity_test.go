package repo_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/trip-planner/internal/domain"
)

func TestActivityRepo_Create(t *testing.T) {
	r := newTestRepos(t)
	trip := fixtureTrip(t, r)
	input := activityFixture(trip.ID, "Castle", day(11), "10:00", "13:00")

	got, err := r.Activities.Create(context.Background(), input)

	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, got.ID)
	assert.Equal(t, trip.ID, got.TripID)
	assert.Equal(t, "Castle", got.Title)
	assert.Equal(t, "Gravensteen", got.Location.Name)
	require.NotNil(t, got.Location.Latitude)
	assert.InDelta(t, 51.0543, *got.Location.Latitude, 1e-9)
	assert.True(t, got.Date.Equal(day(11)))
	assert.Equal(t, "10:00", got.Start.String())
	assert.Equal(t, "13:00", got.End.String())
	assert.Equal(t, input.CreatedBy, got.CreatedBy)
	assert.False(t, got.CreatedAt.IsZero())
}

func TestActivityRepo_Create_NoCoordinates(t *testing.T) {
	r := newTestRepos(t)
	trip := fixtureTrip(t, r)
	input := activityFixture(trip.ID, "Castle", day(11), "10:00", "13:00")
	input.Location.Latitude = nil
	input.Location.Longitude = nil

	got, err := r.Activities.Create(context.Background(), input)

	require.NoError(t, err)
	assert.Nil(t, got.Location.Latitude)
	assert.Nil(t, got.Location.Longitude)
}

// TestActivityRepo_ListByTripAndDate verifies the overlap comparison set:
// only the requested date, in insertion order.
func TestActivityRepo_ListByTripAndDate(t *testing.T) {
	r := newTestRepos(t)
	ctx := context.Background()
	trip := fixtureTrip(t, r)

	for _, a := range []domain.Activity{
		activityFixture(trip.ID, "Late", day(11), "18:00", "19:00"),
		activityFixture(trip.ID, "Other day", day(12), "09:00", "10:00"),
		activityFixture(trip.ID, "Early", day(11), "08:00", "09:00"),
	} {
		_, err := r.Activities.Create(ctx, a)
		require.NoError(t, err)
	}

	got, err := r.Activities.ListByTripAndDate(ctx, trip.ID, day(11))

	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Late", got[0].Title, "insertion order, not start time")
	assert.Equal(t, "Early", got[1].Title)
}

func TestActivityRepo_ListByTrip_OrderedByDateAndStart(t *testing.T) {
	r := newTestRepos(t)
	ctx := context.Background()
	trip := fixtureTrip(t, r)

	for _, a := range []domain.Activity{
		activityFixture(trip.ID, "Day2", day(12), "09:00", "10:00"),
		activityFixture(trip.ID, "Day1 late", day(11), "18:00", "19:00"),
		activityFixture(trip.ID, "Day1 early", day(11), "08:00", "09:00"),
	} {
		_, err := r.Activities.Create(ctx, a)
		require.NoError(t, err)
	}

	got, err := r.Activities.ListByTrip(ctx, trip.ID)

	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, []string{"Day1 early", "Day1 late", "Day2"},
		[]string{got[0].Title, got[1].Title, got[2].Title})
}

func TestActivityRepo_ListForUser(t *testing.T) {
	r := newTestRepos(t)
	ctx := context.Background()
	trip := fixtureTrip(t, r)
	member := uuid.New()
	require.NoError(t, r.Members.Add(ctx, domain.Membership{GroupID: trip.GroupID, UserID: member, Role: domain.RoleMember}))

	for _, a := range []domain.Activity{
		activityFixture(trip.ID, "Second", day(12), "09:00", "10:00"),
		activityFixture(trip.ID, "First", day(11), "09:00", "10:00"),
	} {
		_, err := r.Activities.Create(ctx, a)
		require.NoError(t, err)
	}

	entries, total, err := r.Activities.ListForUser(ctx, member, domain.PaginationParams{Page: 1, Limit: 1})

	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	require.Len(t, entries, 1)
	assert.Equal(t, "First", entries[0].Activity.Title)
	assert.Equal(t, "Summer in Ghent", entries[0].TripName)
	assert.Equal(t, "Road Crew", entries[0].GroupName)
	assert.Equal(t, trip.GroupID, entries[0].GroupID)

	// Outsiders see nothing.
	entries, total, err = r.Activities.ListForUser(ctx, uuid.New(), domain.PaginationParams{Page: 1, Limit: 20})
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, entries)
}

func TestActivityRepo_Delete(t *testing.T) {
	r := newTestRepos(t)
	ctx := context.Background()
	trip := fixtureTrip(t, r)
	a, err := r.Activities.Create(ctx, activityFixture(trip.ID, "Castle", day(11), "10:00", "13:00"))
	require.NoError(t, err)

	require.NoError(t, r.Activities.Delete(ctx, a.ID))

	assert.ErrorIs(t, r.Activities.Delete(ctx, a.ID), domain.ErrNotFound)
}
