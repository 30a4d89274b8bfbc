package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/pkordes/trip-planner/internal/domain"
	"github.com/pkordes/trip-planner/internal/repo"
)

// GroupService is the thin membership surface the scheduling core relies on:
// creating a group, adding and removing members, and listing them. Member
// count changes take effect on the very next vote's quorum.
type GroupService struct {
	runner *TxRunner
	log    *slog.Logger
}

// NewGroupService constructs a GroupService.
func NewGroupService(runner *TxRunner, log *slog.Logger) *GroupService {
	if log == nil {
		log = slog.Default()
	}
	return &GroupService{runner: runner, log: log}
}

// Create makes a new group with ownerID as its only member and admin.
func (s *GroupService) Create(ctx context.Context, name, description string, ownerID uuid.UUID) (uuid.UUID, error) {
	const op = "service.GroupService.Create"
	if strings.TrimSpace(name) == "" {
		return uuid.Nil, fmt.Errorf("%s: %w: name is required", op, domain.ErrValidation)
	}

	var id uuid.UUID
	err := s.runner.Run(ctx, op, func(r repo.Repos) error {
		var err error
		id, err = r.Members.CreateGroup(ctx, strings.TrimSpace(name), description, ownerID)
		return err
	})
	if err != nil {
		return uuid.Nil, err
	}

	s.log.InfoContext(ctx, "group created", "group_id", id, "owner_id", ownerID)
	return id, nil
}

// AddMember adds userID to the group, or changes their role if already in it.
// Only an admin may add members.
func (s *GroupService) AddMember(ctx context.Context, groupID, userID uuid.UUID, role domain.Role, actorID uuid.UUID) error {
	const op = "service.GroupService.AddMember"
	if role != domain.RoleAdmin && role != domain.RoleMember {
		return fmt.Errorf("%s: %w: role must be \"admin\" or \"member\"", op, domain.ErrValidation)
	}

	err := s.runner.Run(ctx, op, func(r repo.Repos) error {
		if _, err := requireAdmin(ctx, r, groupID, actorID); err != nil {
			return err
		}
		return r.Members.Add(ctx, domain.Membership{GroupID: groupID, UserID: userID, Role: role})
	})
	if err != nil {
		return err
	}

	s.log.InfoContext(ctx, "member added", "group_id", groupID, "user_id", userID, "role", role)
	return nil
}

// RemoveMember removes userID from the group. An admin may remove anyone and
// a member may remove themself.
func (s *GroupService) RemoveMember(ctx context.Context, groupID, userID, actorID uuid.UUID) error {
	err := s.runner.Run(ctx, "service.GroupService.RemoveMember", func(r repo.Repos) error {
		m, err := requireMember(ctx, r, groupID, actorID)
		if err != nil {
			return err
		}
		if !m.IsAdmin() && userID != actorID {
			return fmt.Errorf("%w: only an admin may remove other members", domain.ErrPermissionDenied)
		}
		return r.Members.Remove(ctx, groupID, userID)
	})
	if err != nil {
		return err
	}

	s.log.InfoContext(ctx, "member removed", "group_id", groupID, "user_id", userID)
	return nil
}

// ListMembers returns the group's members, admins first. Members only.
func (s *GroupService) ListMembers(ctx context.Context, groupID, viewerID uuid.UUID) ([]domain.Membership, error) {
	var members []domain.Membership
	err := s.runner.Run(ctx, "service.GroupService.ListMembers", func(r repo.Repos) error {
		if _, err := requireMember(ctx, r, groupID, viewerID); err != nil {
			return err
		}
		var err error
		members, err = r.Members.ListMembers(ctx, groupID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return members, nil
}
