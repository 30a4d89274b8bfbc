package handler

import (
	"net/http"
	"strings"

	"github.com/pkordes/trip-planner/internal/domain"
)

// CreateGroup handles POST /groups. The caller becomes the group's admin.
func (s *Server) CreateGroup(w http.ResponseWriter, r *http.Request) {
	actorID, ok := s.actor(w, r)
	if !ok {
		return
	}
	var body CreateGroupRequest
	if !s.bind(w, r, &body) {
		return
	}

	id, err := s.svc.Groups.Create(r.Context(), body.Name, strings.TrimSpace(body.Description), actorID)
	if err != nil {
		s.writeError(w, r, err, "group not found")
		return
	}
	seeOther(w, "/groups/"+id.String(), nil)
}

// GetGroup handles GET /groups/{groupId}: its members and trips.
func (s *Server) GetGroup(w http.ResponseWriter, r *http.Request) {
	actorID, ok := s.actor(w, r)
	if !ok {
		return
	}
	ids, ok := pathIDs(w, r, "groupId")
	if !ok {
		return
	}
	groupID := ids[0]

	members, err := s.svc.Groups.ListMembers(r.Context(), groupID, actorID)
	if err != nil {
		s.writeError(w, r, err, "group not found")
		return
	}
	trips, err := s.svc.Trips.ListByGroup(r.Context(), groupID, actorID)
	if err != nil {
		s.writeError(w, r, err, "group not found")
		return
	}

	out := GroupResponse{
		ID:      groupID,
		Members: make([]MemberResponse, len(members)),
		Trips:   make([]TripResponse, len(trips)),
	}
	for i, m := range members {
		out.Members[i] = MemberResponse{UserID: m.UserID, Role: string(m.Role)}
	}
	for i, t := range trips {
		out.Trips[i] = tripToResponse(t)
	}
	writeJSON(w, http.StatusOK, out)
}

// AddMember handles POST /groups/{groupId}/members. Admins only.
func (s *Server) AddMember(w http.ResponseWriter, r *http.Request) {
	actorID, ok := s.actor(w, r)
	if !ok {
		return
	}
	ids, ok := pathIDs(w, r, "groupId")
	if !ok {
		return
	}
	var body AddMemberRequest
	if !s.bind(w, r, &body) {
		return
	}

	err := s.svc.Groups.AddMember(r.Context(), ids[0], body.UserID, domain.Role(body.Role), actorID)
	if err != nil {
		s.writeError(w, r, err, "group not found")
		return
	}
	seeOther(w, "/groups/"+ids[0].String(), nil)
}

// RemoveMember handles POST /groups/{groupId}/members/{userId}/delete.
// Admins may remove anyone; members may remove themselves.
func (s *Server) RemoveMember(w http.ResponseWriter, r *http.Request) {
	actorID, ok := s.actor(w, r)
	if !ok {
		return
	}
	ids, ok := pathIDs(w, r, "groupId", "userId")
	if !ok {
		return
	}

	if err := s.svc.Groups.RemoveMember(r.Context(), ids[0], ids[1], actorID); err != nil {
		s.writeError(w, r, err, "member not found")
		return
	}
	seeOther(w, "/groups/"+ids[0].String(), nil)
}
