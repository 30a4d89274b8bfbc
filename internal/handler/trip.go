package handler

import (
	"net/http"
	"strings"

	"github.com/pkordes/trip-planner/internal/domain"
)

// CreateTrip handles POST /groups/{groupId}/trips. Group admins only.
func (s *Server) CreateTrip(w http.ResponseWriter, r *http.Request) {
	actorID, ok := s.actor(w, r)
	if !ok {
		return
	}
	ids, ok := pathIDs(w, r, "groupId")
	if !ok {
		return
	}
	var body CreateTripRequest
	if !s.bind(w, r, &body) {
		return
	}

	created, err := s.svc.Trips.Create(r.Context(), domain.Trip{
		GroupID:     ids[0],
		Name:        strings.TrimSpace(body.Name),
		Destination: strings.TrimSpace(body.Destination),
		StartDate:   body.StartDate.Time,
		EndDate:     body.EndDate.Time,
	}, actorID)
	if err != nil {
		s.writeError(w, r, err, "group not found")
		return
	}
	seeOther(w, tripPath(created.ID.String()), tripToResponse(created))
}

// GetTrip handles GET /trips/{tripId}: the confirmed schedule grouped by
// date plus every pending suggestion with its live vote state.
func (s *Server) GetTrip(w http.ResponseWriter, r *http.Request) {
	actorID, ok := s.actor(w, r)
	if !ok {
		return
	}
	ids, ok := pathIDs(w, r, "tripId")
	if !ok {
		return
	}

	view, err := s.svc.Trips.View(r.Context(), ids[0], actorID)
	if err != nil {
		s.writeError(w, r, err, "trip not found")
		return
	}
	writeJSON(w, http.StatusOK, tripViewToResponse(view))
}

// DeleteTrip handles POST /trips/{tripId}/delete. Group admins only.
func (s *Server) DeleteTrip(w http.ResponseWriter, r *http.Request) {
	actorID, ok := s.actor(w, r)
	if !ok {
		return
	}
	ids, ok := pathIDs(w, r, "tripId")
	if !ok {
		return
	}

	deleted, err := s.svc.Trips.Delete(r.Context(), ids[0], actorID)
	if err != nil {
		s.writeError(w, r, err, "trip not found")
		return
	}
	seeOther(w, "/groups/"+deleted.GroupID.String(), nil)
}

func tripPath(id string) string {
	return "/trips/" + id
}
