package handler

import (
	"net/http"

	"github.com/pkordes/trip-planner/internal/domain"
)

// CastVote handles POST /suggestions/{suggestionId}/vote with body
// {"vote":"yes"|"no"}. A member's later vote replaces their earlier one.
// The vote that reaches quorum promotes the suggestion in the same request.
func (s *Server) CastVote(w http.ResponseWriter, r *http.Request) {
	actorID, ok := s.actor(w, r)
	if !ok {
		return
	}
	ids, ok := pathIDs(w, r, "suggestionId")
	if !ok {
		return
	}
	var body VoteRequest
	if !s.bind(w, r, &body) {
		return
	}

	out, err := s.svc.Votes.CastVote(r.Context(), ids[0], actorID, domain.VoteValue(body.Vote))
	if err != nil {
		s.writeError(w, r, err, "suggestion not found")
		return
	}
	seeOther(w, tripPath(out.TripID.String()), voteOutcomeToResponse(out))
}
