package repo

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/pkordes/trip-planner/internal/domain"
)

// SuggestionRepo defines the persistence operations for activity Suggestions.
type SuggestionRepo interface {
	// Create inserts a new suggestion and returns the persisted record with a
	// DB-assigned id and created_at. When ClientToken is set and a suggestion
	// with the same (trip, token) already exists, that row is returned instead.
	Create(ctx context.Context, s domain.Suggestion) (domain.Suggestion, error)

	// GetByID retrieves a single suggestion.
	// Returns domain.ErrNotFound if no suggestion with that ID exists.
	GetByID(ctx context.Context, id uuid.UUID) (domain.Suggestion, error)

	// GetByIDForUpdate is GetByID plus a row lock held until the surrounding
	// transaction ends, so concurrent votes on one suggestion are serialized.
	GetByIDForUpdate(ctx context.Context, id uuid.UUID) (domain.Suggestion, error)

	// GetByClientToken finds the suggestion created on tripID with token.
	// Returns domain.ErrNotFound if there is none.
	GetByClientToken(ctx context.Context, tripID uuid.UUID, token string) (domain.Suggestion, error)

	// ListByTrip returns the trip's pending suggestions, oldest first.
	ListByTrip(ctx context.Context, tripID uuid.UUID) ([]domain.Suggestion, error)

	// Delete removes a suggestion by ID.
	// Returns domain.ErrNotFound if it does not exist.
	Delete(ctx context.Context, id uuid.UUID) error
}

// pgSuggestionRepo is the Postgres implementation of SuggestionRepo.
type pgSuggestionRepo struct {
	db db
}

// NewSuggestionRepo constructs a SuggestionRepo backed by the provided db connection.
func NewSuggestionRepo(db db) SuggestionRepo {
	return &pgSuggestionRepo{db: db}
}

const suggestionColumns = `id, trip_id, title, description, location, latitude, longitude,
	date, start_time, end_time, suggested_by, client_token, created_at`

// Create inserts a suggestion. The DO UPDATE SET trick forces the RETURNING
// clause to fire on a token conflict, so a replayed request gets the
// original row back. Rows without a token never conflict (NULLs are distinct).
func (r *pgSuggestionRepo) Create(ctx context.Context, s domain.Suggestion) (domain.Suggestion, error) {
	const q = `
		INSERT INTO activity_suggestions (trip_id, title, description, location, latitude, longitude,
		                                  date, start_time, end_time, suggested_by, client_token)
		VALUES (@trip_id, @title, @description, @location, @latitude, @longitude,
		        @date, @start_time, @end_time, @suggested_by, @client_token)
		ON CONFLICT (trip_id, client_token) DO UPDATE SET client_token = EXCLUDED.client_token
		RETURNING ` + suggestionColumns

	args := pgx.NamedArgs{
		"trip_id":      s.TripID,
		"title":        s.Title,
		"description":  s.Description,
		"location":     s.Location.Name,
		"latitude":     s.Location.Latitude,
		"longitude":    s.Location.Longitude,
		"date":         dateArg(s.Date),
		"start_time":   clockArg(s.Start),
		"end_time":     clockArg(s.End),
		"suggested_by": s.SuggestedBy,
		"client_token": pgtype.Text{String: s.ClientToken, Valid: s.ClientToken != ""},
	}

	result, err := scanSuggestion(r.db.QueryRow(ctx, q, args))
	if err != nil {
		return domain.Suggestion{}, fmt.Errorf("repo.SuggestionRepo.Create: %w", err)
	}
	return result, nil
}

func (r *pgSuggestionRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Suggestion, error) {
	const q = `SELECT ` + suggestionColumns + ` FROM activity_suggestions WHERE id = @id`

	result, err := scanSuggestion(r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id}))
	if err != nil {
		return domain.Suggestion{}, fmt.Errorf("repo.SuggestionRepo.GetByID: %w", err)
	}
	return result, nil
}

func (r *pgSuggestionRepo) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (domain.Suggestion, error) {
	const q = `SELECT ` + suggestionColumns + ` FROM activity_suggestions WHERE id = @id FOR UPDATE`

	result, err := scanSuggestion(r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id}))
	if err != nil {
		return domain.Suggestion{}, fmt.Errorf("repo.SuggestionRepo.GetByIDForUpdate: %w", err)
	}
	return result, nil
}

func (r *pgSuggestionRepo) GetByClientToken(ctx context.Context, tripID uuid.UUID, token string) (domain.Suggestion, error) {
	const q = `
		SELECT ` + suggestionColumns + `
		FROM activity_suggestions
		WHERE trip_id = @trip_id AND client_token = @client_token`

	result, err := scanSuggestion(r.db.QueryRow(ctx, q, pgx.NamedArgs{"trip_id": tripID, "client_token": token}))
	if err != nil {
		return domain.Suggestion{}, fmt.Errorf("repo.SuggestionRepo.GetByClientToken: %w", err)
	}
	return result, nil
}

func (r *pgSuggestionRepo) ListByTrip(ctx context.Context, tripID uuid.UUID) ([]domain.Suggestion, error) {
	const q = `
		SELECT ` + suggestionColumns + `
		FROM activity_suggestions
		WHERE trip_id = @trip_id
		ORDER BY created_at, id`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"trip_id": tripID})
	if err != nil {
		return nil, fmt.Errorf("repo.SuggestionRepo.ListByTrip: %w", classify(err))
	}
	defer rows.Close()

	suggestions := []domain.Suggestion{}
	for rows.Next() {
		s, err := scanSuggestion(rows)
		if err != nil {
			return nil, fmt.Errorf("repo.SuggestionRepo.ListByTrip: scan: %w", err)
		}
		suggestions = append(suggestions, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.SuggestionRepo.ListByTrip: rows: %w", classify(err))
	}
	return suggestions, nil
}

func (r *pgSuggestionRepo) Delete(ctx context.Context, id uuid.UUID) error {
	const q = `DELETE FROM activity_suggestions WHERE id = @id`

	tag, err := r.db.Exec(ctx, q, pgx.NamedArgs{"id": id})
	if err != nil {
		return fmt.Errorf("repo.SuggestionRepo.Delete: %w", classify(err))
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repo.SuggestionRepo.Delete: %w", domain.ErrNotFound)
	}
	return nil
}

// scanSuggestion maps a single database row into a domain.Suggestion.
func scanSuggestion(s scanner) (domain.Suggestion, error) {
	var (
		sg          domain.Suggestion
		id          pgtype.UUID
		tripID      pgtype.UUID
		suggestedBy pgtype.UUID
		date        pgtype.Date
		start       pgtype.Time
		end         pgtype.Time
		token       pgtype.Text
	)

	err := s.Scan(
		&id, &tripID, &sg.Title, &sg.Description, &sg.Location.Name,
		&sg.Location.Latitude, &sg.Location.Longitude,
		&date, &start, &end, &suggestedBy, &token, &sg.CreatedAt,
	)
	if err != nil {
		return domain.Suggestion{}, classify(err)
	}

	sg.ID = uuid.UUID(id.Bytes)
	sg.TripID = uuid.UUID(tripID.Bytes)
	sg.SuggestedBy = uuid.UUID(suggestedBy.Bytes)
	sg.Date = date.Time
	sg.Start = clockValue(start)
	sg.End = clockValue(end)
	sg.ClientToken = token.String
	return sg, nil
}
