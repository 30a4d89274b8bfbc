package handler

import (
	"strings"
	"time"

	"github.com/google/uuid"
	openapi_types "github.com/oapi-codegen/runtime/types"

	"github.com/pkordes/trip-planner/internal/domain"
	"github.com/pkordes/trip-planner/internal/service"
)

// ---- requests --------------------------------------------------------------

// CreateGroupRequest is the body of POST /groups.
type CreateGroupRequest struct {
	Name        string `json:"name" validate:"required,max=200"`
	Description string `json:"description" validate:"max=2000"`
}

// AddMemberRequest is the body of POST /groups/{groupId}/members.
type AddMemberRequest struct {
	UserID openapi_types.UUID `json:"user_id" validate:"required"`
	Role   string             `json:"role" validate:"required,oneof=admin member"`
}

// CreateTripRequest is the body of POST /groups/{groupId}/trips.
type CreateTripRequest struct {
	Name        string             `json:"name" validate:"required,max=200"`
	Destination string             `json:"destination" validate:"max=200"`
	StartDate   openapi_types.Date `json:"start_date" validate:"required"`
	EndDate     openapi_types.Date `json:"end_date" validate:"required"`
}

// LocationRequest is an optional place with optional coordinates.
type LocationRequest struct {
	Name      string   `json:"name" validate:"max=200"`
	Latitude  *float64 `json:"latitude" validate:"omitempty,latitude"`
	Longitude *float64 `json:"longitude" validate:"omitempty,longitude"`
}

// ActivityRequest is the body for proposing or directly creating an
// activity. Times are wall-clock "HH:MM" on Date.
type ActivityRequest struct {
	Title       string             `json:"title" validate:"required,max=200"`
	Description string             `json:"description" validate:"max=2000"`
	Location    *LocationRequest   `json:"location"`
	Date        openapi_types.Date `json:"date" validate:"required"`
	StartTime   string             `json:"start_time" validate:"required,clock"`
	EndTime     string             `json:"end_time" validate:"required,clock"`
}

// VoteRequest is the body of POST /suggestions/{suggestionId}/vote.
type VoteRequest struct {
	Vote string `json:"vote" validate:"required,oneof=yes no"`
}

// ReviewRequest is the body for creating or updating a trip review.
// The 1..10 range is checked by the service so both paths share a message.
type ReviewRequest struct {
	Rating int    `json:"rating" validate:"required"`
	Text   string `json:"review_text" validate:"required,max=5000"`
}

// toInput converts a validated ActivityRequest into a service input.
// The clock fields have already passed the clock rule.
func (body ActivityRequest) toInput(tripID, actorID uuid.UUID, clientToken string) service.ActivityInput {
	start, _ := domain.ParseClock(body.StartTime)
	end, _ := domain.ParseClock(body.EndTime)
	in := service.ActivityInput{
		TripID:      tripID,
		Title:       strings.TrimSpace(body.Title),
		Description: body.Description,
		Date:        body.Date.Time,
		Start:       start,
		End:         end,
		ActorID:     actorID,
		ClientToken: clientToken,
	}
	if body.Location != nil {
		in.Location = domain.Location{
			Name:      body.Location.Name,
			Latitude:  body.Location.Latitude,
			Longitude: body.Location.Longitude,
		}
	}
	return in
}

// ---- responses -------------------------------------------------------------

// LocationResponse mirrors domain.Location.
type LocationResponse struct {
	Name      string   `json:"name,omitempty"`
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`
}

// ActivityResponse is a confirmed activity.
type ActivityResponse struct {
	ID          uuid.UUID          `json:"id"`
	TripID      uuid.UUID          `json:"trip_id"`
	Title       string             `json:"title"`
	Description string             `json:"description,omitempty"`
	Location    LocationResponse   `json:"location"`
	Date        openapi_types.Date `json:"date"`
	StartTime   string             `json:"start_time"`
	EndTime     string             `json:"end_time"`
	CreatedBy   uuid.UUID          `json:"created_by"`
	CreatedAt   time.Time          `json:"created_at"`
}

// TallyResponse is the live vote count on a suggestion.
type TallyResponse struct {
	Yes   int `json:"yes"`
	No    int `json:"no"`
	Total int `json:"total"`
}

// SuggestionResponse is a pending suggestion with its vote state.
type SuggestionResponse struct {
	ID          uuid.UUID          `json:"id"`
	TripID      uuid.UUID          `json:"trip_id"`
	Title       string             `json:"title"`
	Description string             `json:"description,omitempty"`
	Location    LocationResponse   `json:"location"`
	Date        openapi_types.Date `json:"date"`
	StartTime   string             `json:"start_time"`
	EndTime     string             `json:"end_time"`
	SuggestedBy uuid.UUID          `json:"suggested_by"`
	CreatedAt   time.Time          `json:"created_at"`
	Votes       *TallyResponse     `json:"votes,omitempty"`
	VotesNeeded int                `json:"votes_needed,omitempty"`
	// MyVote is "yes", "no" or absent when the viewer has not voted.
	MyVote *string `json:"my_vote,omitempty"`
}

// TripResponse is a trip without its schedule.
type TripResponse struct {
	ID          uuid.UUID          `json:"id"`
	GroupID     uuid.UUID          `json:"group_id"`
	Name        string             `json:"name"`
	Destination string             `json:"destination,omitempty"`
	StartDate   openapi_types.Date `json:"start_date"`
	EndDate     openapi_types.Date `json:"end_date"`
	CreatedAt   time.Time          `json:"created_at"`
	UpdatedAt   time.Time          `json:"updated_at"`
}

// DayResponse is one date of the confirmed schedule.
type DayResponse struct {
	Date       openapi_types.Date `json:"date"`
	Activities []ActivityResponse `json:"activities"`
}

// TripViewResponse is the body of GET /trips/{tripId}.
type TripViewResponse struct {
	Trip        TripResponse         `json:"trip"`
	Days        []DayResponse        `json:"days"`
	Suggestions []SuggestionResponse `json:"suggestions"`
	MemberCount int                  `json:"member_count"`
	VotesNeeded int                  `json:"votes_needed"`
	IsAdmin     bool                 `json:"is_admin"`
	// ReviewCount and AverageRating summarize the trip's reviews.
	// AverageRating is null until the first review.
	ReviewCount   int      `json:"review_count"`
	AverageRating *float64 `json:"average_rating"`
}

// ReviewResponse is one trip review.
type ReviewResponse struct {
	ID        uuid.UUID `json:"id"`
	TripID    uuid.UUID `json:"trip_id"`
	UserID    uuid.UUID `json:"user_id"`
	Rating    int       `json:"rating"`
	Text      string    `json:"review_text"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TripReviewsResponse is the body of GET /trips/{tripId}/reviews.
type TripReviewsResponse struct {
	TripID        uuid.UUID        `json:"trip_id"`
	Reviews       []ReviewResponse `json:"reviews"`
	ReviewCount   int              `json:"review_count"`
	AverageRating *float64         `json:"average_rating"`
}

// MemberResponse is one group membership.
type MemberResponse struct {
	UserID uuid.UUID `json:"user_id"`
	Role   string    `json:"role"`
}

// GroupResponse is the body of GET /groups/{groupId}.
type GroupResponse struct {
	ID      uuid.UUID        `json:"id"`
	Members []MemberResponse `json:"members"`
	Trips   []TripResponse   `json:"trips"`
}

// VoteOutcomeResponse accompanies the 303 after a vote.
type VoteOutcomeResponse struct {
	TripID      uuid.UUID         `json:"trip_id"`
	Votes       TallyResponse     `json:"votes"`
	VotesNeeded int               `json:"votes_needed"`
	Promoted    bool              `json:"promoted"`
	Activity    *ActivityResponse `json:"activity,omitempty"`
	// Blocked is the conflict that stopped promotion at quorum, if any.
	Blocked *ErrorDetail `json:"blocked,omitempty"`
}

// ScheduleEntryResponse is one row of the personal schedule.
type ScheduleEntryResponse struct {
	Activity        ActivityResponse `json:"activity"`
	TripName        string           `json:"trip_name"`
	TripDestination string           `json:"trip_destination,omitempty"`
	GroupID         uuid.UUID        `json:"group_id"`
	GroupName       string           `json:"group_name"`
}

// Pagination describes the page that was returned.
type Pagination struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Total int `json:"total"`
}

// ScheduleResponse is the body of GET /me/schedule.
type ScheduleResponse struct {
	Data       []ScheduleEntryResponse `json:"data"`
	Pagination Pagination              `json:"pagination"`
}

// ---- mapping helpers -------------------------------------------------------

func locationToResponse(l domain.Location) LocationResponse {
	return LocationResponse{Name: l.Name, Latitude: l.Latitude, Longitude: l.Longitude}
}

func activityToResponse(a domain.Activity) ActivityResponse {
	return ActivityResponse{
		ID:          a.ID,
		TripID:      a.TripID,
		Title:       a.Title,
		Description: a.Description,
		Location:    locationToResponse(a.Location),
		Date:        openapi_types.Date{Time: a.Date},
		StartTime:   a.Start.String(),
		EndTime:     a.End.String(),
		CreatedBy:   a.CreatedBy,
		CreatedAt:   a.CreatedAt,
	}
}

func suggestionToResponse(s domain.Suggestion) SuggestionResponse {
	return SuggestionResponse{
		ID:          s.ID,
		TripID:      s.TripID,
		Title:       s.Title,
		Description: s.Description,
		Location:    locationToResponse(s.Location),
		Date:        openapi_types.Date{Time: s.Date},
		StartTime:   s.Start.String(),
		EndTime:     s.End.String(),
		SuggestedBy: s.SuggestedBy,
		CreatedAt:   s.CreatedAt,
	}
}

func suggestionViewToResponse(v domain.SuggestionView) SuggestionResponse {
	out := suggestionToResponse(v.Suggestion)
	tally := tallyToResponse(v.Tally)
	out.Votes = &tally
	out.VotesNeeded = v.VotesNeeded
	if v.ViewerVote != nil {
		mine := string(*v.ViewerVote)
		out.MyVote = &mine
	}
	return out
}

func tallyToResponse(t domain.Tally) TallyResponse {
	return TallyResponse{Yes: t.Yes, No: t.No, Total: t.Total}
}

func tripToResponse(t domain.Trip) TripResponse {
	return TripResponse{
		ID:          t.ID,
		GroupID:     t.GroupID,
		Name:        t.Name,
		Destination: t.Destination,
		StartDate:   openapi_types.Date{Time: t.StartDate},
		EndDate:     openapi_types.Date{Time: t.EndDate},
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

func tripViewToResponse(v domain.TripView) TripViewResponse {
	out := TripViewResponse{
		Trip:        tripToResponse(v.Trip),
		Days:        make([]DayResponse, len(v.Days)),
		Suggestions: make([]SuggestionResponse, len(v.Suggestions)),
		MemberCount: v.MemberCount,
		VotesNeeded: v.VotesNeeded,
		IsAdmin:     v.ViewerIsAdmin,

		ReviewCount:   v.Reviews.Count,
		AverageRating: v.Reviews.Average,
	}
	for i, d := range v.Days {
		day := DayResponse{Date: openapi_types.Date{Time: d.Date}, Activities: make([]ActivityResponse, len(d.Activities))}
		for j, a := range d.Activities {
			day.Activities[j] = activityToResponse(a)
		}
		out.Days[i] = day
	}
	for i, s := range v.Suggestions {
		out.Suggestions[i] = suggestionViewToResponse(s)
	}
	return out
}

func reviewToResponse(r domain.Review) ReviewResponse {
	return ReviewResponse{
		ID:        r.ID,
		TripID:    r.TripID,
		UserID:    r.UserID,
		Rating:    r.Rating,
		Text:      r.Text,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

func tripReviewsToResponse(tr domain.TripReviews) TripReviewsResponse {
	out := TripReviewsResponse{
		TripID:        tr.TripID,
		Reviews:       make([]ReviewResponse, len(tr.Reviews)),
		ReviewCount:   tr.Summary.Count,
		AverageRating: tr.Summary.Average,
	}
	for i, r := range tr.Reviews {
		out.Reviews[i] = reviewToResponse(r)
	}
	return out
}

func voteOutcomeToResponse(o domain.VoteOutcome) VoteOutcomeResponse {
	out := VoteOutcomeResponse{
		TripID:      o.TripID,
		Votes:       tallyToResponse(o.Tally),
		VotesNeeded: o.VotesNeeded,
		Promoted:    o.Promoted,
	}
	if o.Activity != nil {
		a := activityToResponse(*o.Activity)
		out.Activity = &a
	}
	if o.Blocked != nil {
		out.Blocked = &ErrorDetail{Code: "scheduling_conflict", Message: o.Blocked.Error()}
	}
	return out
}
