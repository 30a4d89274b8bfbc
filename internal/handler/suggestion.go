package handler

import (
	"net/http"
	"strings"
)

// maxIdempotencyKeyLen bounds the Idempotency-Key header.
const maxIdempotencyKeyLen = 200

// ProposeActivity handles POST /trips/{tripId}/activities.
// The activity becomes a pending suggestion unless it overlaps a confirmed
// activity, in which case the response is 409 naming the conflict.
// An optional Idempotency-Key header makes retries return the original
// suggestion instead of creating a duplicate.
func (s *Server) ProposeActivity(w http.ResponseWriter, r *http.Request) {
	actorID, ok := s.actor(w, r)
	if !ok {
		return
	}
	ids, ok := pathIDs(w, r, "tripId")
	if !ok {
		return
	}
	key := strings.TrimSpace(r.Header.Get("Idempotency-Key"))
	if len(key) > maxIdempotencyKeyLen {
		writeJSON(w, http.StatusUnprocessableEntity, requestBody("Idempotency-Key must be at most 200 characters"))
		return
	}
	var body ActivityRequest
	if !s.bind(w, r, &body) {
		return
	}

	created, err := s.svc.Suggestions.Propose(r.Context(), body.toInput(ids[0], actorID, key))
	if err != nil {
		s.writeError(w, r, err, "trip not found")
		return
	}
	seeOther(w, tripPath(created.TripID.String()), suggestionToResponse(created))
}

// WithdrawSuggestion handles POST /suggestions/{suggestionId}/delete.
// Only the proposer or a group admin may withdraw.
func (s *Server) WithdrawSuggestion(w http.ResponseWriter, r *http.Request) {
	actorID, ok := s.actor(w, r)
	if !ok {
		return
	}
	ids, ok := pathIDs(w, r, "suggestionId")
	if !ok {
		return
	}

	withdrawn, err := s.svc.Suggestions.Withdraw(r.Context(), ids[0], actorID)
	if err != nil {
		s.writeError(w, r, err, "suggestion not found")
		return
	}
	seeOther(w, tripPath(withdrawn.TripID.String()), nil)
}
