package handler

import (
	"net/http"

	"github.com/pkordes/trip-planner/internal/service"
)

// ListTripReviews handles GET /trips/{tripId}/reviews. Members only.
func (s *Server) ListTripReviews(w http.ResponseWriter, r *http.Request) {
	actorID, ok := s.actor(w, r)
	if !ok {
		return
	}
	ids, ok := pathIDs(w, r, "tripId")
	if !ok {
		return
	}

	reviews, err := s.svc.Reviews.ListByTrip(r.Context(), ids[0], actorID)
	if err != nil {
		s.writeError(w, r, err, "trip not found")
		return
	}
	writeJSON(w, http.StatusOK, tripReviewsToResponse(reviews))
}

// CreateReview handles POST /trips/{tripId}/reviews. One review per member
// per trip; a second one is 409.
func (s *Server) CreateReview(w http.ResponseWriter, r *http.Request) {
	actorID, ok := s.actor(w, r)
	if !ok {
		return
	}
	ids, ok := pathIDs(w, r, "tripId")
	if !ok {
		return
	}
	var body ReviewRequest
	if !s.bind(w, r, &body) {
		return
	}

	created, err := s.svc.Reviews.Create(r.Context(), service.ReviewInput{
		TripID:   ids[0],
		AuthorID: actorID,
		Rating:   body.Rating,
		Text:     body.Text,
	})
	if err != nil {
		s.writeError(w, r, err, "trip not found")
		return
	}
	seeOther(w, reviewsPath(created.TripID.String()), reviewToResponse(created))
}

// UpdateReview handles POST /reviews/{reviewId}. Author only.
func (s *Server) UpdateReview(w http.ResponseWriter, r *http.Request) {
	actorID, ok := s.actor(w, r)
	if !ok {
		return
	}
	ids, ok := pathIDs(w, r, "reviewId")
	if !ok {
		return
	}
	var body ReviewRequest
	if !s.bind(w, r, &body) {
		return
	}

	updated, err := s.svc.Reviews.Update(r.Context(), ids[0], actorID, body.Rating, body.Text)
	if err != nil {
		s.writeError(w, r, err, "review not found")
		return
	}
	seeOther(w, reviewsPath(updated.TripID.String()), reviewToResponse(updated))
}

// DeleteReview handles POST /reviews/{reviewId}/delete. Author only.
func (s *Server) DeleteReview(w http.ResponseWriter, r *http.Request) {
	actorID, ok := s.actor(w, r)
	if !ok {
		return
	}
	ids, ok := pathIDs(w, r, "reviewId")
	if !ok {
		return
	}

	deleted, err := s.svc.Reviews.Delete(r.Context(), ids[0], actorID)
	if err != nil {
		s.writeError(w, r, err, "review not found")
		return
	}
	seeOther(w, reviewsPath(deleted.TripID.String()), nil)
}

func reviewsPath(tripID string) string {
	return tripPath(tripID) + "/reviews"
}
