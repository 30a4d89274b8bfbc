package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/pkordes/trip-planner/internal/domain"
	"github.com/pkordes/trip-planner/internal/repo"
)

// requireMember returns userID's membership in groupID.
// A missing membership is reported as domain.ErrPermissionDenied.
func requireMember(ctx context.Context, r repo.Repos, groupID, userID uuid.UUID) (domain.Membership, error) {
	m, err := r.Members.GetMembership(ctx, groupID, userID)
	if errors.Is(err, domain.ErrNotFound) {
		return domain.Membership{}, fmt.Errorf("%w: not a member of this group", domain.ErrPermissionDenied)
	}
	if err != nil {
		return domain.Membership{}, err
	}
	return m, nil
}

// requireAdmin is requireMember plus the admin role.
func requireAdmin(ctx context.Context, r repo.Repos, groupID, userID uuid.UUID) (domain.Membership, error) {
	m, err := requireMember(ctx, r, groupID, userID)
	if err != nil {
		return domain.Membership{}, err
	}
	if !m.IsAdmin() {
		return domain.Membership{}, fmt.Errorf("%w: group admin role required", domain.ErrPermissionDenied)
	}
	return m, nil
}

// votesNeeded computes the live quorum for groupID.
func votesNeeded(ctx context.Context, r repo.Repos, groupID uuid.UUID) (int, error) {
	n, err := r.Members.CountMembers(ctx, groupID)
	if err != nil {
		return 0, err
	}
	return domain.Quorum(n), nil
}

// ActivityInput carries the fields of a candidate activity, whether it is
// proposed for a vote or created directly as confirmed.
type ActivityInput struct {
	TripID      uuid.UUID
	Title       string
	Description string
	Location    domain.Location
	Date        time.Time
	Start       domain.ClockTime
	End         domain.ClockTime
	// ActorID is the member submitting the activity.
	ActorID uuid.UUID
	// ClientToken optionally makes proposing idempotent per trip.
	ClientToken string
}

// Range returns the candidate's half-open time range.
func (in ActivityInput) Range() domain.TimeRange {
	return domain.TimeRange{Start: in.Start, End: in.End}
}

// validateActivityInput runs before anything is read or written.
//   - Title must be non-empty.
//   - Start must be strictly before End (domain.ErrInvalidTimeRange).
//   - Coordinates, when given, must be on the globe.
func validateActivityInput(in ActivityInput) error {
	if strings.TrimSpace(in.Title) == "" {
		return fmt.Errorf("%w: title is required", domain.ErrValidation)
	}
	if in.Date.IsZero() {
		return fmt.Errorf("%w: date is required", domain.ErrValidation)
	}
	if !in.Range().Valid() {
		return domain.ErrInvalidTimeRange
	}
	if lat := in.Location.Latitude; lat != nil && (*lat < -90 || *lat > 90) {
		return fmt.Errorf("%w: latitude must be between -90 and 90", domain.ErrValidation)
	}
	if lon := in.Location.Longitude; lon != nil && (*lon < -180 || *lon > 180) {
		return fmt.Errorf("%w: longitude must be between -180 and 180", domain.ErrValidation)
	}
	return nil
}
