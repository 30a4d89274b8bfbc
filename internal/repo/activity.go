package repo

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/pkordes/trip-planner/internal/domain"
)

// ActivityRepo defines the persistence operations for confirmed Activities.
// Activities are always scoped by trip.
type ActivityRepo interface {
	// Create inserts a new activity and returns the persisted record.
	Create(ctx context.Context, a domain.Activity) (domain.Activity, error)

	// GetByID retrieves a single activity.
	// Returns domain.ErrNotFound if no activity with that ID exists.
	GetByID(ctx context.Context, id uuid.UUID) (domain.Activity, error)

	// ListByTrip returns all activities of a trip ordered by date, then
	// start time, then insertion order.
	ListByTrip(ctx context.Context, tripID uuid.UUID) ([]domain.Activity, error)

	// ListByTripAndDate returns the trip's activities on one date in
	// insertion order. This is the comparison set for overlap detection.
	ListByTripAndDate(ctx context.Context, tripID uuid.UUID, date time.Time) ([]domain.Activity, error)

	// ListForUser returns one page of the confirmed activities across every
	// trip of every group userID belongs to, plus the total count.
	ListForUser(ctx context.Context, userID uuid.UUID, p domain.PaginationParams) ([]domain.ScheduleEntry, int64, error)

	// Delete removes an activity by ID.
	// Returns domain.ErrNotFound if it does not exist.
	Delete(ctx context.Context, id uuid.UUID) error
}

// pgActivityRepo is the Postgres implementation of ActivityRepo.
type pgActivityRepo struct {
	db db
}

// NewActivityRepo constructs an ActivityRepo backed by the provided db connection.
func NewActivityRepo(db db) ActivityRepo {
	return &pgActivityRepo{db: db}
}

const activityColumns = `id, trip_id, title, description, location, latitude, longitude,
	date, start_time, end_time, created_by, created_at`

func (r *pgActivityRepo) Create(ctx context.Context, a domain.Activity) (domain.Activity, error) {
	const q = `
		INSERT INTO activities (trip_id, title, description, location, latitude, longitude,
		                        date, start_time, end_time, created_by)
		VALUES (@trip_id, @title, @description, @location, @latitude, @longitude,
		        @date, @start_time, @end_time, @created_by)
		RETURNING ` + activityColumns

	args := pgx.NamedArgs{
		"trip_id":     a.TripID,
		"title":       a.Title,
		"description": a.Description,
		"location":    a.Location.Name,
		"latitude":    a.Location.Latitude, // nil becomes NULL
		"longitude":   a.Location.Longitude,
		"date":        dateArg(a.Date),
		"start_time":  clockArg(a.Start),
		"end_time":    clockArg(a.End),
		"created_by":  a.CreatedBy,
	}

	result, err := scanActivity(r.db.QueryRow(ctx, q, args))
	if err != nil {
		return domain.Activity{}, fmt.Errorf("repo.ActivityRepo.Create: %w", err)
	}
	return result, nil
}

func (r *pgActivityRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Activity, error) {
	const q = `SELECT ` + activityColumns + ` FROM activities WHERE id = @id`

	result, err := scanActivity(r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id}))
	if err != nil {
		return domain.Activity{}, fmt.Errorf("repo.ActivityRepo.GetByID: %w", err)
	}
	return result, nil
}

func (r *pgActivityRepo) ListByTrip(ctx context.Context, tripID uuid.UUID) ([]domain.Activity, error) {
	const q = `
		SELECT ` + activityColumns + `
		FROM activities
		WHERE trip_id = @trip_id
		ORDER BY date, start_time, seq`

	result, err := r.list(ctx, q, pgx.NamedArgs{"trip_id": tripID})
	if err != nil {
		return nil, fmt.Errorf("repo.ActivityRepo.ListByTrip: %w", err)
	}
	return result, nil
}

func (r *pgActivityRepo) ListByTripAndDate(ctx context.Context, tripID uuid.UUID, date time.Time) ([]domain.Activity, error) {
	const q = `
		SELECT ` + activityColumns + `
		FROM activities
		WHERE trip_id = @trip_id AND date = @date
		ORDER BY seq`

	result, err := r.list(ctx, q, pgx.NamedArgs{"trip_id": tripID, "date": dateArg(date)})
	if err != nil {
		return nil, fmt.Errorf("repo.ActivityRepo.ListByTripAndDate: %w", err)
	}
	return result, nil
}

func (r *pgActivityRepo) ListForUser(ctx context.Context, userID uuid.UUID, p domain.PaginationParams) ([]domain.ScheduleEntry, int64, error) {
	const countQ = `
		SELECT count(*)
		FROM activities a
		JOIN trips t ON t.id = a.trip_id
		JOIN group_members gm ON gm.group_id = t.group_id
		WHERE gm.user_id = @user_id`

	var total int64
	if err := r.db.QueryRow(ctx, countQ, pgx.NamedArgs{"user_id": userID}).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("repo.ActivityRepo.ListForUser: count: %w", classify(err))
	}

	const q = `
		SELECT a.id, a.trip_id, a.title, a.description, a.location, a.latitude, a.longitude,
		       a.date, a.start_time, a.end_time, a.created_by, a.created_at,
		       t.name, t.destination, g.id, g.name
		FROM activities a
		JOIN trips t ON t.id = a.trip_id
		JOIN groups g ON g.id = t.group_id
		JOIN group_members gm ON gm.group_id = g.id
		WHERE gm.user_id = @user_id
		ORDER BY a.date, a.start_time, a.seq
		LIMIT @limit OFFSET @offset`

	args := pgx.NamedArgs{"user_id": userID, "limit": p.Limit, "offset": p.Offset()}
	rows, err := r.db.Query(ctx, q, args)
	if err != nil {
		return nil, 0, fmt.Errorf("repo.ActivityRepo.ListForUser: %w", classify(err))
	}
	defer rows.Close()

	entries := []domain.ScheduleEntry{}
	for rows.Next() {
		var (
			e       domain.ScheduleEntry
			groupID pgtype.UUID
		)
		a, err := scanActivityWith(rows, &e.TripName, &e.TripDestination, &groupID, &e.GroupName)
		if err != nil {
			return nil, 0, fmt.Errorf("repo.ActivityRepo.ListForUser: scan: %w", err)
		}
		e.Activity = a
		e.GroupID = uuid.UUID(groupID.Bytes)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("repo.ActivityRepo.ListForUser: rows: %w", classify(err))
	}
	return entries, total, nil
}

func (r *pgActivityRepo) Delete(ctx context.Context, id uuid.UUID) error {
	const q = `DELETE FROM activities WHERE id = @id`

	tag, err := r.db.Exec(ctx, q, pgx.NamedArgs{"id": id})
	if err != nil {
		return fmt.Errorf("repo.ActivityRepo.Delete: %w", classify(err))
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repo.ActivityRepo.Delete: %w", domain.ErrNotFound)
	}
	return nil
}

func (r *pgActivityRepo) list(ctx context.Context, q string, args pgx.NamedArgs) ([]domain.Activity, error) {
	rows, err := r.db.Query(ctx, q, args)
	if err != nil {
		return nil, classify(err)
	}
	defer rows.Close()

	activities := []domain.Activity{}
	for rows.Next() {
		a, err := scanActivity(rows)
		if err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		activities = append(activities, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", classify(err))
	}
	return activities, nil
}

// scanActivity maps a single database row into a domain.Activity.
func scanActivity(s scanner) (domain.Activity, error) {
	return scanActivityWith(s)
}

// scanActivityWith scans the activity columns followed by extra destinations,
// for queries that join additional columns after activityColumns.
func scanActivityWith(s scanner, extra ...any) (domain.Activity, error) {
	var (
		a         domain.Activity
		id        pgtype.UUID
		tripID    pgtype.UUID
		createdBy pgtype.UUID
		date      pgtype.Date
		start     pgtype.Time
		end       pgtype.Time
	)

	dest := []any{
		&id, &tripID, &a.Title, &a.Description, &a.Location.Name,
		&a.Location.Latitude, &a.Location.Longitude,
		&date, &start, &end, &createdBy, &a.CreatedAt,
	}
	if err := s.Scan(append(dest, extra...)...); err != nil {
		return domain.Activity{}, classify(err)
	}

	a.ID = uuid.UUID(id.Bytes)
	a.TripID = uuid.UUID(tripID.Bytes)
	a.CreatedBy = uuid.UUID(createdBy.Bytes)
	a.Date = date.Time
	a.Start = clockValue(start)
	a.End = clockValue(end)
	return a, nil
}
