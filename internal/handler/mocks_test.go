package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/trip-planner/internal/domain"
	"github.com/pkordes/trip-planner/internal/handler"
	"github.com/pkordes/trip-planner/internal/middleware"
	"github.com/pkordes/trip-planner/internal/service"
)

// Each mock is a test double for one servicer interface.
// Set only the method fields your test needs.

type mockTrips struct {
	create      func(ctx context.Context, trip domain.Trip, actorID uuid.UUID) (domain.Trip, error)
	listByGroup func(ctx context.Context, groupID, viewerID uuid.UUID) ([]domain.Trip, error)
	view        func(ctx context.Context, tripID, viewerID uuid.UUID) (domain.TripView, error)
	delete      func(ctx context.Context, tripID, actorID uuid.UUID) (domain.Trip, error)
}

func (m *mockTrips) Create(ctx context.Context, t domain.Trip, actorID uuid.UUID) (domain.Trip, error) {
	return m.create(ctx, t, actorID)
}
func (m *mockTrips) ListByGroup(ctx context.Context, groupID, viewerID uuid.UUID) ([]domain.Trip, error) {
	return m.listByGroup(ctx, groupID, viewerID)
}
func (m *mockTrips) View(ctx context.Context, tripID, viewerID uuid.UUID) (domain.TripView, error) {
	return m.view(ctx, tripID, viewerID)
}
func (m *mockTrips) Delete(ctx context.Context, tripID, actorID uuid.UUID) (domain.Trip, error) {
	return m.delete(ctx, tripID, actorID)
}

type mockSuggestions struct {
	propose  func(ctx context.Context, in service.ActivityInput) (domain.Suggestion, error)
	withdraw func(ctx context.Context, suggestionID, actorID uuid.UUID) (domain.Suggestion, error)
}

func (m *mockSuggestions) Propose(ctx context.Context, in service.ActivityInput) (domain.Suggestion, error) {
	return m.propose(ctx, in)
}
func (m *mockSuggestions) Withdraw(ctx context.Context, suggestionID, actorID uuid.UUID) (domain.Suggestion, error) {
	return m.withdraw(ctx, suggestionID, actorID)
}

type mockVotes struct {
	castVote func(ctx context.Context, suggestionID, voterID uuid.UUID, value domain.VoteValue) (domain.VoteOutcome, error)
}

func (m *mockVotes) CastVote(ctx context.Context, suggestionID, voterID uuid.UUID, value domain.VoteValue) (domain.VoteOutcome, error) {
	return m.castVote(ctx, suggestionID, voterID, value)
}

type mockActivities struct {
	createConfirmed  func(ctx context.Context, in service.ActivityInput) (domain.Activity, error)
	delete           func(ctx context.Context, activityID, actorID uuid.UUID) (domain.Activity, error)
	personalSchedule func(ctx context.Context, userID uuid.UUID, p domain.PaginationParams) (domain.Page[domain.ScheduleEntry], error)
}

func (m *mockActivities) CreateConfirmed(ctx context.Context, in service.ActivityInput) (domain.Activity, error) {
	return m.createConfirmed(ctx, in)
}
func (m *mockActivities) Delete(ctx context.Context, activityID, actorID uuid.UUID) (domain.Activity, error) {
	return m.delete(ctx, activityID, actorID)
}
func (m *mockActivities) PersonalSchedule(ctx context.Context, userID uuid.UUID, p domain.PaginationParams) (domain.Page[domain.ScheduleEntry], error) {
	return m.personalSchedule(ctx, userID, p)
}

type mockExport struct {
	exportTrip func(ctx context.Context, tripID, viewerID uuid.UUID) ([]domain.ExportRow, error)
}

func (m *mockExport) ExportTrip(ctx context.Context, tripID, viewerID uuid.UUID) ([]domain.ExportRow, error) {
	return m.exportTrip(ctx, tripID, viewerID)
}

type mockGroups struct {
	create       func(ctx context.Context, name, description string, ownerID uuid.UUID) (uuid.UUID, error)
	addMember    func(ctx context.Context, groupID, userID uuid.UUID, role domain.Role, actorID uuid.UUID) error
	removeMember func(ctx context.Context, groupID, userID, actorID uuid.UUID) error
	listMembers  func(ctx context.Context, groupID, viewerID uuid.UUID) ([]domain.Membership, error)
}

func (m *mockGroups) Create(ctx context.Context, name, description string, ownerID uuid.UUID) (uuid.UUID, error) {
	return m.create(ctx, name, description, ownerID)
}
func (m *mockGroups) AddMember(ctx context.Context, groupID, userID uuid.UUID, role domain.Role, actorID uuid.UUID) error {
	return m.addMember(ctx, groupID, userID, role, actorID)
}
func (m *mockGroups) RemoveMember(ctx context.Context, groupID, userID, actorID uuid.UUID) error {
	return m.removeMember(ctx, groupID, userID, actorID)
}
func (m *mockGroups) ListMembers(ctx context.Context, groupID, viewerID uuid.UUID) ([]domain.Membership, error) {
	return m.listMembers(ctx, groupID, viewerID)
}

type mockReviews struct {
	create     func(ctx context.Context, in service.ReviewInput) (domain.Review, error)
	update     func(ctx context.Context, reviewID, actorID uuid.UUID, rating int, text string) (domain.Review, error)
	delete     func(ctx context.Context, reviewID, actorID uuid.UUID) (domain.Review, error)
	listByTrip func(ctx context.Context, tripID, viewerID uuid.UUID) (domain.TripReviews, error)
}

func (m *mockReviews) Create(ctx context.Context, in service.ReviewInput) (domain.Review, error) {
	return m.create(ctx, in)
}
func (m *mockReviews) Update(ctx context.Context, reviewID, actorID uuid.UUID, rating int, text string) (domain.Review, error) {
	return m.update(ctx, reviewID, actorID, rating, text)
}
func (m *mockReviews) Delete(ctx context.Context, reviewID, actorID uuid.UUID) (domain.Review, error) {
	return m.delete(ctx, reviewID, actorID)
}
func (m *mockReviews) ListByTrip(ctx context.Context, tripID, viewerID uuid.UUID) (domain.TripReviews, error) {
	return m.listByTrip(ctx, tripID, viewerID)
}

// compile-time checks: every mock must satisfy its interface.
var (
	_ handler.TripServicer       = (*mockTrips)(nil)
	_ handler.SuggestionServicer = (*mockSuggestions)(nil)
	_ handler.VoteServicer       = (*mockVotes)(nil)
	_ handler.ActivityServicer   = (*mockActivities)(nil)
	_ handler.ExportServicer     = (*mockExport)(nil)
	_ handler.GroupServicer      = (*mockGroups)(nil)
	_ handler.ReviewServicer     = (*mockReviews)(nil)
)

// ---- helpers ---------------------------------------------------------------

var testSecret = []byte("handler-test-secret")

// newRouter wires a Server with the given mocks behind the real
// authenticator, the same way main.go wires it in production.
func newRouter(svc handler.Services) http.Handler {
	srv := handler.NewServer(svc, nil, []byte("openapi: 3.0.3\n"))
	return srv.Routes(middleware.NewAuthenticator(testSecret))
}

func bearer(t *testing.T, userID uuid.UUID) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   userID.String(),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}).SignedString(testSecret)
	require.NoError(t, err)
	return "Bearer " + tok
}

// call sends one request as userID (uuid.Nil sends no token). body may be a
// string (sent verbatim), nil, or any value to JSON-encode.
func call(t *testing.T, h http.Handler, userID uuid.UUID, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		r = bytes.NewBufferString(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		r = bytes.NewBuffer(raw)
	}
	req := httptest.NewRequest(method, path, r)
	if r != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if userID != uuid.Nil {
		req.Header.Set("Authorization", bearer(t, userID))
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

// newRequest builds an authenticated request with a raw body, for tests
// that need to set extra headers before serving it.
func newRequest(t *testing.T, method, path, raw string) *http.Request {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewBufferString(raw))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", bearer(t, uuid.New()))
	return req
}

func serve(h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

// decode unmarshals the recorder body into a T. The body is left unread, so
// a test may still inspect rec.Body afterwards.
func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
	return v
}

func day(d int) time.Time {
	return time.Date(2025, 7, d, 0, 0, 0, 0, time.UTC)
}

func hm(s string) domain.ClockTime {
	c, err := domain.ParseClock(s)
	if err != nil {
		panic(err)
	}
	return c
}

func activityFixture(tripID uuid.UUID, title, start, end string) domain.Activity {
	return domain.Activity{
		ID:        uuid.New(),
		TripID:    tripID,
		Title:     title,
		Date:      day(11),
		Start:     hm(start),
		End:       hm(end),
		CreatedBy: uuid.New(),
		CreatedAt: time.Now().UTC(),
	}
}

func validActivityBody() map[string]any {
	return map[string]any{
		"title":       "Lunch cruise",
		"description": "along the Leie",
		"location":    map[string]any{"name": "Graslei", "latitude": 51.05, "longitude": 3.72},
		"date":        "2025-07-11",
		"start_time":  "13:00",
		"end_time":    "15:00",
	}
}
