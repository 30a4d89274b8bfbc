package repo

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/pkordes/trip-planner/internal/domain"
)

// VoteRepo defines the persistence operations for suggestion Votes.
type VoteRepo interface {
	// Upsert records userID's vote on a suggestion. An existing vote by the
	// same user on the same suggestion is overwritten, never duplicated.
	Upsert(ctx context.Context, suggestionID, userID uuid.UUID, value domain.VoteValue) (domain.Vote, error)

	// ListBySuggestion returns every current vote on a suggestion.
	ListBySuggestion(ctx context.Context, suggestionID uuid.UUID) ([]domain.Vote, error)

	// GetByUser returns userID's vote on a suggestion.
	// Returns domain.ErrNotFound if the user has not voted.
	GetByUser(ctx context.Context, suggestionID, userID uuid.UUID) (domain.Vote, error)

	// DeleteBySuggestion removes all votes on a suggestion and reports how
	// many were removed. Deleting zero votes is not an error.
	DeleteBySuggestion(ctx context.Context, suggestionID uuid.UUID) (int64, error)
}

// pgVoteRepo is the Postgres implementation of VoteRepo.
type pgVoteRepo struct {
	db db
}

// NewVoteRepo constructs a VoteRepo backed by the provided db connection.
func NewVoteRepo(db db) VoteRepo {
	return &pgVoteRepo{db: db}
}

const voteColumns = `id, suggestion_id, user_id, vote, created_at, updated_at`

// Upsert relies on UNIQUE (suggestion_id, user_id): last vote wins and no
// history is kept.
func (r *pgVoteRepo) Upsert(ctx context.Context, suggestionID, userID uuid.UUID, value domain.VoteValue) (domain.Vote, error) {
	const q = `
		INSERT INTO suggestion_votes (suggestion_id, user_id, vote)
		VALUES (@suggestion_id, @user_id, @vote)
		ON CONFLICT (suggestion_id, user_id)
		DO UPDATE SET vote = EXCLUDED.vote, updated_at = now()
		RETURNING ` + voteColumns

	args := pgx.NamedArgs{"suggestion_id": suggestionID, "user_id": userID, "vote": string(value)}
	result, err := scanVote(r.db.QueryRow(ctx, q, args))
	if err != nil {
		return domain.Vote{}, fmt.Errorf("repo.VoteRepo.Upsert: %w", err)
	}
	return result, nil
}

func (r *pgVoteRepo) ListBySuggestion(ctx context.Context, suggestionID uuid.UUID) ([]domain.Vote, error) {
	const q = `
		SELECT ` + voteColumns + `
		FROM suggestion_votes
		WHERE suggestion_id = @suggestion_id
		ORDER BY created_at, id`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"suggestion_id": suggestionID})
	if err != nil {
		return nil, fmt.Errorf("repo.VoteRepo.ListBySuggestion: %w", classify(err))
	}
	defer rows.Close()

	votes := []domain.Vote{}
	for rows.Next() {
		v, err := scanVote(rows)
		if err != nil {
			return nil, fmt.Errorf("repo.VoteRepo.ListBySuggestion: scan: %w", err)
		}
		votes = append(votes, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.VoteRepo.ListBySuggestion: rows: %w", classify(err))
	}
	return votes, nil
}

func (r *pgVoteRepo) GetByUser(ctx context.Context, suggestionID, userID uuid.UUID) (domain.Vote, error) {
	const q = `
		SELECT ` + voteColumns + `
		FROM suggestion_votes
		WHERE suggestion_id = @suggestion_id AND user_id = @user_id`

	args := pgx.NamedArgs{"suggestion_id": suggestionID, "user_id": userID}
	result, err := scanVote(r.db.QueryRow(ctx, q, args))
	if err != nil {
		return domain.Vote{}, fmt.Errorf("repo.VoteRepo.GetByUser: %w", err)
	}
	return result, nil
}

func (r *pgVoteRepo) DeleteBySuggestion(ctx context.Context, suggestionID uuid.UUID) (int64, error) {
	const q = `DELETE FROM suggestion_votes WHERE suggestion_id = @suggestion_id`

	tag, err := r.db.Exec(ctx, q, pgx.NamedArgs{"suggestion_id": suggestionID})
	if err != nil {
		return 0, fmt.Errorf("repo.VoteRepo.DeleteBySuggestion: %w", classify(err))
	}
	return tag.RowsAffected(), nil
}

// scanVote maps a single database row into a domain.Vote.
func scanVote(s scanner) (domain.Vote, error) {
	var (
		v            domain.Vote
		id           pgtype.UUID
		suggestionID pgtype.UUID
		userID       pgtype.UUID
		value        string
	)
	err := s.Scan(&id, &suggestionID, &userID, &value, &v.CreatedAt, &v.UpdatedAt)
	if err != nil {
		return domain.Vote{}, classify(err)
	}
	v.ID = uuid.UUID(id.Bytes)
	v.SuggestionID = uuid.UUID(suggestionID.Bytes)
	v.UserID = uuid.UUID(userID.Bytes)
	v.Value = domain.VoteValue(value)
	return v, nil
}
