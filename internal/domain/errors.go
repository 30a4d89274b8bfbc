package domain

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned by repo and service functions when the requested
// resource does not exist in the database.
// Handlers should map this to HTTP 404.
var ErrNotFound = errors.New("not found")

// ErrValidation is returned by service functions when input fails business
// rule validation (e.g. missing required field, end date before start date).
// Handlers should map this to HTTP 422 Unprocessable Entity.
var ErrValidation = errors.New("validation error")

// ErrInvalidTimeRange is returned when a candidate activity does not start
// strictly before it ends. It wraps ErrValidation, so errors.Is matches both.
var ErrInvalidTimeRange = fmt.Errorf("%w: start time must be before end time", ErrValidation)

// ErrPermissionDenied is returned when the actor lacks the group membership
// or role an operation requires. Handlers should map this to HTTP 403.
var ErrPermissionDenied = errors.New("permission denied")

// ErrAlreadyExists is returned when a write would duplicate a row that must
// be unique, such as a second review of the same trip by one user.
// Handlers should map this to HTTP 409.
var ErrAlreadyExists = errors.New("already exists")

// ErrStoreBusy is returned when the database could not acquire a lock within
// its wait policy. The whole operation may be retried.
// Handlers should map this to HTTP 503.
var ErrStoreBusy = errors.New("store busy")

// ErrSchedulingConflict is matched by *ConflictError under errors.Is.
var ErrSchedulingConflict = errors.New("scheduling conflict")

// ConflictError reports that a candidate overlaps a confirmed activity.
// With is the first conflicting activity in insertion order.
type ConflictError struct {
	With Activity
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("Time conflict! This overlaps with \"%s\" (%s - %s)",
		e.With.Title, e.With.Start, e.With.End)
}

// Is lets errors.Is(err, ErrSchedulingConflict) match any *ConflictError.
func (e *ConflictError) Is(target error) bool {
	return target == ErrSchedulingConflict
}
