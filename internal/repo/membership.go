package repo

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/pkordes/trip-planner/internal/domain"
)

// MembershipRepo reads and writes group membership. Group administration
// itself is handled elsewhere; the scheduling core only needs role lookups
// and member counts.
type MembershipRepo interface {
	// CreateGroup inserts a group and makes ownerID its admin.
	CreateGroup(ctx context.Context, name, description string, ownerID uuid.UUID) (uuid.UUID, error)

	// GetMembership returns userID's membership in groupID.
	// Returns domain.ErrNotFound if the user is not a member.
	GetMembership(ctx context.Context, groupID, userID uuid.UUID) (domain.Membership, error)

	// ListMembers returns the group's current members, admins first.
	ListMembers(ctx context.Context, groupID uuid.UUID) ([]domain.Membership, error)

	// CountMembers returns the group's current member count.
	CountMembers(ctx context.Context, groupID uuid.UUID) (int, error)

	// Add inserts or updates a membership.
	Add(ctx context.Context, m domain.Membership) error

	// Remove deletes a membership.
	// Returns domain.ErrNotFound if the user was not a member.
	Remove(ctx context.Context, groupID, userID uuid.UUID) error
}

// pgMembershipRepo is the Postgres implementation of MembershipRepo.
type pgMembershipRepo struct {
	db db
}

// NewMembershipRepo constructs a MembershipRepo backed by the provided db connection.
func NewMembershipRepo(db db) MembershipRepo {
	return &pgMembershipRepo{db: db}
}

func (r *pgMembershipRepo) CreateGroup(ctx context.Context, name, description string, ownerID uuid.UUID) (uuid.UUID, error) {
	const q = `
		WITH g AS (
			INSERT INTO groups (name, description, owner_id)
			VALUES (@name, @description, @owner_id)
			RETURNING id
		)
		INSERT INTO group_members (group_id, user_id, role)
		SELECT id, @owner_id, 'admin' FROM g
		RETURNING group_id`

	var id pgtype.UUID
	err := r.db.QueryRow(ctx, q, pgx.NamedArgs{
		"name":        name,
		"description": description,
		"owner_id":    ownerID,
	}).Scan(&id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("repo.MembershipRepo.CreateGroup: %w", classify(err))
	}
	return uuid.UUID(id.Bytes), nil
}

func (r *pgMembershipRepo) GetMembership(ctx context.Context, groupID, userID uuid.UUID) (domain.Membership, error) {
	const q = `
		SELECT group_id, user_id, role
		FROM group_members
		WHERE group_id = @group_id AND user_id = @user_id`

	m, err := scanMembership(r.db.QueryRow(ctx, q, pgx.NamedArgs{"group_id": groupID, "user_id": userID}))
	if err != nil {
		return domain.Membership{}, fmt.Errorf("repo.MembershipRepo.GetMembership: %w", err)
	}
	return m, nil
}

func (r *pgMembershipRepo) ListMembers(ctx context.Context, groupID uuid.UUID) ([]domain.Membership, error) {
	const q = `
		SELECT group_id, user_id, role
		FROM group_members
		WHERE group_id = @group_id
		ORDER BY role = 'admin' DESC, joined_at`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"group_id": groupID})
	if err != nil {
		return nil, fmt.Errorf("repo.MembershipRepo.ListMembers: %w", classify(err))
	}
	defer rows.Close()

	members := []domain.Membership{}
	for rows.Next() {
		m, err := scanMembership(rows)
		if err != nil {
			return nil, fmt.Errorf("repo.MembershipRepo.ListMembers: scan: %w", err)
		}
		members = append(members, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.MembershipRepo.ListMembers: rows: %w", classify(err))
	}
	return members, nil
}

func (r *pgMembershipRepo) CountMembers(ctx context.Context, groupID uuid.UUID) (int, error) {
	const q = `SELECT count(*) FROM group_members WHERE group_id = @group_id`

	var n int
	if err := r.db.QueryRow(ctx, q, pgx.NamedArgs{"group_id": groupID}).Scan(&n); err != nil {
		return 0, fmt.Errorf("repo.MembershipRepo.CountMembers: %w", classify(err))
	}
	return n, nil
}

func (r *pgMembershipRepo) Add(ctx context.Context, m domain.Membership) error {
	const q = `
		INSERT INTO group_members (group_id, user_id, role)
		VALUES (@group_id, @user_id, @role)
		ON CONFLICT (group_id, user_id) DO UPDATE SET role = EXCLUDED.role`

	_, err := r.db.Exec(ctx, q, pgx.NamedArgs{"group_id": m.GroupID, "user_id": m.UserID, "role": string(m.Role)})
	if err != nil {
		return fmt.Errorf("repo.MembershipRepo.Add: %w", classify(err))
	}
	return nil
}

func (r *pgMembershipRepo) Remove(ctx context.Context, groupID, userID uuid.UUID) error {
	const q = `DELETE FROM group_members WHERE group_id = @group_id AND user_id = @user_id`

	tag, err := r.db.Exec(ctx, q, pgx.NamedArgs{"group_id": groupID, "user_id": userID})
	if err != nil {
		return fmt.Errorf("repo.MembershipRepo.Remove: %w", classify(err))
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repo.MembershipRepo.Remove: %w", domain.ErrNotFound)
	}
	return nil
}

func scanMembership(s scanner) (domain.Membership, error) {
	var (
		m       domain.Membership
		groupID pgtype.UUID
		userID  pgtype.UUID
		role    string
	)
	if err := s.Scan(&groupID, &userID, &role); err != nil {
		return domain.Membership{}, classify(err)
	}
	m.GroupID = uuid.UUID(groupID.Bytes)
	m.UserID = uuid.UUID(userID.Bytes)
	m.Role = domain.Role(role)
	return m, nil
}
