package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/pkordes/trip-planner/internal/domain"
	"github.com/pkordes/trip-planner/internal/repo"
)

// OverlapQuery describes a candidate slot on a trip.
type OverlapQuery struct {
	TripID uuid.UUID
	Date   time.Time
	Range  domain.TimeRange
	// Exclude skips one activity, e.g. the one being edited. uuid.Nil skips nothing.
	Exclude uuid.UUID
}

// OverlapDetector checks candidate slots against a trip's confirmed
// activities. Pending suggestions are never conflict sources.
type OverlapDetector struct {
	activities repo.ActivityRepo
}

// NewOverlapDetector constructs an OverlapDetector over activities. Inside a
// transaction pass the transaction-bound repo so the check sees its writes.
func NewOverlapDetector(activities repo.ActivityRepo) *OverlapDetector {
	return &OverlapDetector{activities: activities}
}

// Detect returns the first confirmed activity (in insertion order) that
// overlaps q, or nil when the slot is free. It has no side effects.
func (d *OverlapDetector) Detect(ctx context.Context, q OverlapQuery) (*domain.Activity, error) {
	sameDay, err := d.activities.ListByTripAndDate(ctx, q.TripID, q.Date)
	if err != nil {
		return nil, fmt.Errorf("service.OverlapDetector.Detect: %w", err)
	}
	if a, ok := domain.FindConflict(sameDay, q.Date, q.Range, q.Exclude); ok {
		return &a, nil
	}
	return nil, nil
}

// Check is Detect reporting a conflict as a *domain.ConflictError.
func (d *OverlapDetector) Check(ctx context.Context, q OverlapQuery) error {
	a, err := d.Detect(ctx, q)
	if err != nil {
		return err
	}
	if a != nil {
		return &domain.ConflictError{With: *a}
	}
	return nil
}
