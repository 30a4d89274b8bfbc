package handler

import (
	"net/http"

	"github.com/pkordes/trip-planner/internal/domain"
)

// CreateConfirmedActivity handles POST /trips/{tripId}/activities/confirmed.
// Group admins add an activity straight to the schedule, skipping the vote.
func (s *Server) CreateConfirmedActivity(w http.ResponseWriter, r *http.Request) {
	actorID, ok := s.actor(w, r)
	if !ok {
		return
	}
	ids, ok := pathIDs(w, r, "tripId")
	if !ok {
		return
	}
	var body ActivityRequest
	if !s.bind(w, r, &body) {
		return
	}

	created, err := s.svc.Activities.CreateConfirmed(r.Context(), body.toInput(ids[0], actorID, ""))
	if err != nil {
		s.writeError(w, r, err, "trip not found")
		return
	}
	seeOther(w, tripPath(created.TripID.String()), activityToResponse(created))
}

// DeleteActivity handles POST /activities/{activityId}/delete.
// The creator or a group admin may delete.
func (s *Server) DeleteActivity(w http.ResponseWriter, r *http.Request) {
	actorID, ok := s.actor(w, r)
	if !ok {
		return
	}
	ids, ok := pathIDs(w, r, "activityId")
	if !ok {
		return
	}

	deleted, err := s.svc.Activities.Delete(r.Context(), ids[0], actorID)
	if err != nil {
		s.writeError(w, r, err, "activity not found")
		return
	}
	seeOther(w, tripPath(deleted.TripID.String()), nil)
}

// GetMySchedule handles GET /me/schedule.
// Supports ?page= and ?limit= query parameters (defaults: page=1, limit=20, max=100).
func (s *Server) GetMySchedule(w http.ResponseWriter, r *http.Request) {
	actorID, ok := s.actor(w, r)
	if !ok {
		return
	}
	page, err := queryInt(r, "page")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("bad_request", err.Error()))
		return
	}
	limit, err := queryInt(r, "limit")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("bad_request", err.Error()))
		return
	}

	params := domain.NewPaginationParams(page, limit)
	result, err := s.svc.Activities.PersonalSchedule(r.Context(), actorID, params)
	if err != nil {
		s.writeError(w, r, err, "schedule not found")
		return
	}

	data := make([]ScheduleEntryResponse, len(result.Items))
	for i, e := range result.Items {
		data[i] = ScheduleEntryResponse{
			Activity:        activityToResponse(e.Activity),
			TripName:        e.TripName,
			TripDestination: e.TripDestination,
			GroupID:         e.GroupID,
			GroupName:       e.GroupName,
		}
	}
	writeJSON(w, http.StatusOK, ScheduleResponse{
		Data: data,
		Pagination: Pagination{
			Page:  params.Page,
			Limit: params.Limit,
			Total: int(result.Total),
		},
	})
}
