// Package handler implements the HTTP handlers for the trip planner API.
// All handlers are methods on Server. Methods are split into domain-specific
// files (health.go, trip.go, suggestion.go, etc.) but all share the same
// Server struct so they can access its dependencies.
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/pkordes/trip-planner/internal/domain"
	"github.com/pkordes/trip-planner/internal/service"
)

// TripServicer defines the trip operations the handlers depend on.
// Defining the interface here (in the consumer package) lets handler tests
// inject a mock without touching the database or service layer.
type TripServicer interface {
	Create(ctx context.Context, trip domain.Trip, actorID uuid.UUID) (domain.Trip, error)
	ListByGroup(ctx context.Context, groupID, viewerID uuid.UUID) ([]domain.Trip, error)
	View(ctx context.Context, tripID, viewerID uuid.UUID) (domain.TripView, error)
	Delete(ctx context.Context, tripID, actorID uuid.UUID) (domain.Trip, error)
}

// SuggestionServicer defines the suggestion lifecycle operations.
type SuggestionServicer interface {
	Propose(ctx context.Context, in service.ActivityInput) (domain.Suggestion, error)
	Withdraw(ctx context.Context, suggestionID, actorID uuid.UUID) (domain.Suggestion, error)
}

// VoteServicer defines the voting operation.
type VoteServicer interface {
	CastVote(ctx context.Context, suggestionID, voterID uuid.UUID, value domain.VoteValue) (domain.VoteOutcome, error)
}

// ActivityServicer defines the confirmed-activity operations.
type ActivityServicer interface {
	CreateConfirmed(ctx context.Context, in service.ActivityInput) (domain.Activity, error)
	Delete(ctx context.Context, activityID, actorID uuid.UUID) (domain.Activity, error)
	PersonalSchedule(ctx context.Context, userID uuid.UUID, p domain.PaginationParams) (domain.Page[domain.ScheduleEntry], error)
}

// ExportServicer defines the export operation.
type ExportServicer interface {
	ExportTrip(ctx context.Context, tripID, viewerID uuid.UUID) ([]domain.ExportRow, error)
}

// GroupServicer defines the membership operations.
type GroupServicer interface {
	Create(ctx context.Context, name, description string, ownerID uuid.UUID) (uuid.UUID, error)
	AddMember(ctx context.Context, groupID, userID uuid.UUID, role domain.Role, actorID uuid.UUID) error
	RemoveMember(ctx context.Context, groupID, userID, actorID uuid.UUID) error
	ListMembers(ctx context.Context, groupID, viewerID uuid.UUID) ([]domain.Membership, error)
}

// ReviewServicer defines the trip review operations.
type ReviewServicer interface {
	Create(ctx context.Context, in service.ReviewInput) (domain.Review, error)
	Update(ctx context.Context, reviewID, actorID uuid.UUID, rating int, text string) (domain.Review, error)
	Delete(ctx context.Context, reviewID, actorID uuid.UUID) (domain.Review, error)
	ListByTrip(ctx context.Context, tripID, viewerID uuid.UUID) (domain.TripReviews, error)
}

// Services bundles the servicers a Server needs. Nil fields are allowed in
// tests that only exercise some routes.
type Services struct {
	Trips       TripServicer
	Suggestions SuggestionServicer
	Votes       VoteServicer
	Activities  ActivityServicer
	Export      ExportServicer
	Groups      GroupServicer
	Reviews     ReviewServicer
}

// Server holds the handler dependencies. Wire it in main.go via Routes.
type Server struct {
	svc     Services
	log     *slog.Logger
	openAPI []byte
}

// NewServer constructs the Server. openAPI is served verbatim at /openapi.yaml.
func NewServer(svc Services, log *slog.Logger, openAPI []byte) *Server {
	if log == nil {
		log = slog.Default()
	}
	return &Server{svc: svc, log: log, openAPI: openAPI}
}

// Routes returns the API router. Every route except the health check and
// the OpenAPI document sits behind authenticate.
//
// Mutating routes answer 303 See Other pointing at the page that shows the
// result, so a browser form post lands back on the trip view.
func (s *Server) Routes(authenticate func(http.Handler) http.Handler) http.Handler {
	r := chi.NewRouter()
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, errorBody("not_found", "route not found"))
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusMethodNotAllowed, errorBody("method_not_allowed", "method not allowed"))
	})

	r.Get("/healthz", s.GetHealth)
	r.Get("/openapi.yaml", s.GetOpenAPI)

	r.Group(func(r chi.Router) {
		r.Use(authenticate)

		r.Post("/groups", s.CreateGroup)
		r.Get("/groups/{groupId}", s.GetGroup)
		r.Post("/groups/{groupId}/members", s.AddMember)
		r.Post("/groups/{groupId}/members/{userId}/delete", s.RemoveMember)
		r.Post("/groups/{groupId}/trips", s.CreateTrip)

		r.Get("/trips/{tripId}", s.GetTrip)
		r.Post("/trips/{tripId}/delete", s.DeleteTrip)
		r.Get("/trips/{tripId}/export", s.GetExport)
		r.Post("/trips/{tripId}/activities", s.ProposeActivity)
		r.Post("/trips/{tripId}/activities/confirmed", s.CreateConfirmedActivity)
		r.Get("/trips/{tripId}/reviews", s.ListTripReviews)
		r.Post("/trips/{tripId}/reviews", s.CreateReview)

		r.Post("/activities/{activityId}/delete", s.DeleteActivity)

		r.Post("/suggestions/{suggestionId}/vote", s.CastVote)
		r.Post("/suggestions/{suggestionId}/delete", s.WithdrawSuggestion)

		r.Post("/reviews/{reviewId}", s.UpdateReview)
		r.Post("/reviews/{reviewId}/delete", s.DeleteReview)

		r.Get("/me/schedule", s.GetMySchedule)
	})
	return r
}
