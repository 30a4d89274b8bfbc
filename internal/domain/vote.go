package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// VoteValue is a member's yes/no choice on a suggestion.
type VoteValue string

const (
	VoteYes VoteValue = "yes"
	VoteNo  VoteValue = "no"
)

// ParseVoteValue accepts exactly "yes" or "no".
func ParseVoteValue(s string) (VoteValue, error) {
	switch v := VoteValue(s); v {
	case VoteYes, VoteNo:
		return v, nil
	default:
		return "", fmt.Errorf("%w: vote must be \"yes\" or \"no\"", ErrValidation)
	}
}

// Vote is one member's current choice on one suggestion. There is at most
// one Vote per (SuggestionID, UserID); a later vote replaces the earlier one.
type Vote struct {
	ID           uuid.UUID
	SuggestionID uuid.UUID
	UserID       uuid.UUID
	Value        VoteValue
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Tally is the aggregate of the current votes on a suggestion.
type Tally struct {
	Yes   int
	No    int
	Total int
}

// CountVotes aggregates votes into a Tally.
func CountVotes(votes []Vote) Tally {
	var t Tally
	for _, v := range votes {
		switch v.Value {
		case VoteYes:
			t.Yes++
		case VoteNo:
			t.No++
		}
	}
	t.Total = len(votes)
	return t
}

// Quorum returns the number of yes votes needed to promote a suggestion in a
// group of memberCount members: ceil(memberCount / 2), never less than one.
func Quorum(memberCount int) int {
	q := (memberCount + 1) / 2
	if q < 1 {
		return 1
	}
	return q
}

// Approved reports whether the tally has reached votesNeeded yes votes.
// No votes never block approval.
func (t Tally) Approved(votesNeeded int) bool {
	return t.Yes >= votesNeeded
}

// VoteOutcome describes what happened after a vote was recorded.
type VoteOutcome struct {
	TripID      uuid.UUID
	Tally       Tally
	VotesNeeded int
	// Promoted is set when the vote carried the suggestion over quorum.
	// Activity then holds the new confirmed activity.
	Promoted bool
	Activity *Activity
	// Blocked is set when quorum was reached but promotion was refused
	// because overlap re-checking is enabled and a conflict was found.
	Blocked *ConflictError
}
