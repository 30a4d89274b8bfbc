// Package domain contains the core data types for the trip planner.
// This package has no dependencies on other internal packages and is
// imported by every layer (repo, service, handler).
package domain

import (
	"time"

	"github.com/google/uuid"
)

// Trip represents a planned excursion owned by a group.
// A trip is the aggregate root for activities, suggestions and votes;
// deleting it removes all of them.
type Trip struct {
	ID          uuid.UUID
	GroupID     uuid.UUID
	Name        string
	Destination string
	StartDate   time.Time
	EndDate     time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
