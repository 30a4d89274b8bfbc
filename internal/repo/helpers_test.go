package repo_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/trip-planner/internal/domain"
	"github.com/pkordes/trip-planner/internal/repo"
	"github.com/pkordes/trip-planner/testutil"
)

// newTestTx opens a transaction against the test database that is rolled
// back when the test finishes, giving free per-test isolation.
//
// Requires TEST_DATABASE_URL to be set; TestMain applies the migrations.
func newTestTx(t *testing.T) pgx.Tx {
	t.Helper()
	pool := testutil.NewPool(t)

	tx, err := pool.Begin(context.Background())
	require.NoError(t, err, "begin transaction")

	t.Cleanup(func() {
		// Rollback discards all changes made during the test, no cleanup SQL needed.
		_ = tx.Rollback(context.Background())
	})
	return tx
}

// newTestRepos returns every repository bound to one rolled-back transaction.
func newTestRepos(t *testing.T) repo.Repos {
	t.Helper()
	return repo.NewRepos(newTestTx(t))
}

// fixtureGroup creates a group owned by a fresh admin and returns both ids.
func fixtureGroup(t *testing.T, r repo.Repos) (groupID, adminID uuid.UUID) {
	t.Helper()
	adminID = uuid.New()
	groupID, err := r.Members.CreateGroup(context.Background(), "Road Crew", "", adminID)
	require.NoError(t, err, "create group")
	return groupID, adminID
}

// fixtureTrip creates a group and a trip in it.
func fixtureTrip(t *testing.T, r repo.Repos) domain.Trip {
	t.Helper()
	groupID, _ := fixtureGroup(t, r)
	trip, err := r.Trips.Create(context.Background(), domain.Trip{
		GroupID:     groupID,
		Name:        "Summer in Ghent",
		Destination: "Ghent",
		StartDate:   time.Date(2025, 7, 10, 0, 0, 0, 0, time.UTC),
		EndDate:     time.Date(2025, 7, 14, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err, "create trip")
	return trip
}

func day(d int) time.Time {
	return time.Date(2025, 7, d, 0, 0, 0, 0, time.UTC)
}

func hm(s string) domain.ClockTime {
	c, err := domain.ParseClock(s)
	if err != nil {
		panic(err)
	}
	return c
}

func activityFixture(tripID uuid.UUID, title string, date time.Time, start, end string) domain.Activity {
	lat, lon := 51.0543, 3.7174
	return domain.Activity{
		TripID:      tripID,
		Title:       title,
		Description: "walk around",
		Location:    domain.Location{Name: "Gravensteen", Latitude: &lat, Longitude: &lon},
		Date:        date,
		Start:       hm(start),
		End:         hm(end),
		CreatedBy:   uuid.New(),
	}
}

func suggestionFixture(tripID uuid.UUID, title string, date time.Time, start, end string) domain.Suggestion {
	return domain.Suggestion{
		TripID:      tripID,
		Title:       title,
		Description: "boat tour",
		Location:    domain.Location{Name: "Graslei"},
		Date:        date,
		Start:       hm(start),
		End:         hm(end),
		SuggestedBy: uuid.New(),
	}
}
