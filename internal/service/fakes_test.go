package service_test

import (
	"context"
	"errors"
	"log/slog"
	"maps"
	"slices"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/pkordes/trip-planner/internal/domain"
	"github.com/pkordes/trip-planner/internal/repo"
	"github.com/pkordes/trip-planner/internal/service"
)

// memStore is an in-memory stand-in for the Postgres schema. It implements
// every repo interface plus repo.Transactor; a failed unit of work restores
// the snapshot taken when it began, mirroring a rollback.
type memStore struct {
	trips       map[uuid.UUID]domain.Trip
	groups      map[uuid.UUID]string
	members     []domain.Membership
	activities  []domain.Activity
	suggestions []domain.Suggestion
	votes       []domain.Vote
	reviews     []domain.Review

	// busy makes the next n WithinTx calls fail with domain.ErrStoreBusy.
	busy int
	// txCount counts WithinTx calls, busy ones included.
	txCount int
	// failActivityCreate, when set, is returned by Activities.Create.
	failActivityCreate error

	clock time.Time
}

func newMemStore() *memStore {
	return &memStore{
		trips:  map[uuid.UUID]domain.Trip{},
		groups: map[uuid.UUID]string{},
		clock:  time.Date(2025, 7, 1, 9, 0, 0, 0, time.UTC),
	}
}

func (m *memStore) now() time.Time {
	m.clock = m.clock.Add(time.Second)
	return m.clock
}

func (m *memStore) repos() repo.Repos {
	return repo.Repos{
		Trips:       memTrips{m},
		Activities:  memActivities{m},
		Suggestions: memSuggestions{m},
		Votes:       memVotes{m},
		Members:     memMembers{m},
		Reviews:     memReviews{m},
	}
}

type memSnapshot struct {
	trips       map[uuid.UUID]domain.Trip
	groups      map[uuid.UUID]string
	members     []domain.Membership
	activities  []domain.Activity
	suggestions []domain.Suggestion
	votes       []domain.Vote
	reviews     []domain.Review
}

func (m *memStore) snapshot() memSnapshot {
	return memSnapshot{
		trips:       maps.Clone(m.trips),
		groups:      maps.Clone(m.groups),
		members:     slices.Clone(m.members),
		activities:  slices.Clone(m.activities),
		suggestions: slices.Clone(m.suggestions),
		votes:       slices.Clone(m.votes),
		reviews:     slices.Clone(m.reviews),
	}
}

func (m *memStore) restore(s memSnapshot) {
	m.trips, m.groups, m.members = s.trips, s.groups, s.members
	m.activities, m.suggestions, m.votes = s.activities, s.suggestions, s.votes
	m.reviews = s.reviews
}

func (m *memStore) WithinTx(_ context.Context, fn func(r repo.Repos) error) error {
	m.txCount++
	if m.busy > 0 {
		m.busy--
		return domain.ErrStoreBusy
	}
	snap := m.snapshot()
	if err := fn(m.repos()); err != nil {
		m.restore(snap)
		return err
	}
	return nil
}

var _ repo.Transactor = (*memStore)(nil)

// ---- trips -----------------------------------------------------------------

type memTrips struct{ m *memStore }

func (r memTrips) Create(_ context.Context, t domain.Trip) (domain.Trip, error) {
	t.ID = uuid.New()
	t.CreatedAt = r.m.now()
	t.UpdatedAt = t.CreatedAt
	r.m.trips[t.ID] = t
	return t, nil
}

func (r memTrips) GetByID(_ context.Context, id uuid.UUID) (domain.Trip, error) {
	t, ok := r.m.trips[id]
	if !ok {
		return domain.Trip{}, domain.ErrNotFound
	}
	return t, nil
}

func (r memTrips) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (domain.Trip, error) {
	return r.GetByID(ctx, id)
}

func (r memTrips) ListByGroup(_ context.Context, groupID uuid.UUID) ([]domain.Trip, error) {
	out := []domain.Trip{}
	for _, t := range r.m.trips {
		if t.GroupID == groupID {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartDate.Before(out[j].StartDate) })
	return out, nil
}

func (r memTrips) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := r.m.trips[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.m.trips, id)
	r.m.activities = slices.DeleteFunc(r.m.activities, func(a domain.Activity) bool { return a.TripID == id })
	var gone []uuid.UUID
	r.m.suggestions = slices.DeleteFunc(r.m.suggestions, func(s domain.Suggestion) bool {
		if s.TripID == id {
			gone = append(gone, s.ID)
			return true
		}
		return false
	})
	r.m.votes = slices.DeleteFunc(r.m.votes, func(v domain.Vote) bool { return slices.Contains(gone, v.SuggestionID) })
	r.m.reviews = slices.DeleteFunc(r.m.reviews, func(rv domain.Review) bool { return rv.TripID == id })
	return nil
}

// ---- activities ------------------------------------------------------------

type memActivities struct{ m *memStore }

func (r memActivities) Create(_ context.Context, a domain.Activity) (domain.Activity, error) {
	if r.m.failActivityCreate != nil {
		return domain.Activity{}, r.m.failActivityCreate
	}
	a.ID = uuid.New()
	a.CreatedAt = r.m.now()
	r.m.activities = append(r.m.activities, a)
	return a, nil
}

func (r memActivities) GetByID(_ context.Context, id uuid.UUID) (domain.Activity, error) {
	for _, a := range r.m.activities {
		if a.ID == id {
			return a, nil
		}
	}
	return domain.Activity{}, domain.ErrNotFound
}

func (r memActivities) ListByTrip(_ context.Context, tripID uuid.UUID) ([]domain.Activity, error) {
	out := []domain.Activity{}
	for _, a := range r.m.activities {
		if a.TripID == tripID {
			out = append(out, a)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !domain.SameDate(out[i].Date, out[j].Date) {
			return out[i].Date.Before(out[j].Date)
		}
		return out[i].Start < out[j].Start
	})
	return out, nil
}

func (r memActivities) ListByTripAndDate(_ context.Context, tripID uuid.UUID, date time.Time) ([]domain.Activity, error) {
	out := []domain.Activity{}
	for _, a := range r.m.activities {
		if a.TripID == tripID && domain.SameDate(a.Date, date) {
			out = append(out, a)
		}
	}
	return out, nil
}

func (r memActivities) ListForUser(_ context.Context, userID uuid.UUID, p domain.PaginationParams) ([]domain.ScheduleEntry, int64, error) {
	var all []domain.ScheduleEntry
	for _, a := range r.m.activities {
		t := r.m.trips[a.TripID]
		for _, mem := range r.m.members {
			if mem.GroupID == t.GroupID && mem.UserID == userID {
				all = append(all, domain.ScheduleEntry{
					Activity:        a,
					TripName:        t.Name,
					TripDestination: t.Destination,
					GroupID:         t.GroupID,
					GroupName:       r.m.groups[t.GroupID],
				})
			}
		}
	}
	total := int64(len(all))
	start := min(p.Offset(), len(all))
	end := min(start+p.Limit, len(all))
	return all[start:end], total, nil
}

func (r memActivities) Delete(_ context.Context, id uuid.UUID) error {
	n := len(r.m.activities)
	r.m.activities = slices.DeleteFunc(r.m.activities, func(a domain.Activity) bool { return a.ID == id })
	if len(r.m.activities) == n {
		return domain.ErrNotFound
	}
	return nil
}

// ---- suggestions -----------------------------------------------------------

type memSuggestions struct{ m *memStore }

func (r memSuggestions) Create(ctx context.Context, s domain.Suggestion) (domain.Suggestion, error) {
	if s.ClientToken != "" {
		if existing, err := r.GetByClientToken(ctx, s.TripID, s.ClientToken); err == nil {
			return existing, nil
		}
	}
	s.ID = uuid.New()
	s.CreatedAt = r.m.now()
	r.m.suggestions = append(r.m.suggestions, s)
	return s, nil
}

func (r memSuggestions) GetByID(_ context.Context, id uuid.UUID) (domain.Suggestion, error) {
	for _, s := range r.m.suggestions {
		if s.ID == id {
			return s, nil
		}
	}
	return domain.Suggestion{}, domain.ErrNotFound
}

func (r memSuggestions) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (domain.Suggestion, error) {
	return r.GetByID(ctx, id)
}

func (r memSuggestions) GetByClientToken(_ context.Context, tripID uuid.UUID, token string) (domain.Suggestion, error) {
	for _, s := range r.m.suggestions {
		if s.TripID == tripID && s.ClientToken == token {
			return s, nil
		}
	}
	return domain.Suggestion{}, domain.ErrNotFound
}

func (r memSuggestions) ListByTrip(_ context.Context, tripID uuid.UUID) ([]domain.Suggestion, error) {
	out := []domain.Suggestion{}
	for _, s := range r.m.suggestions {
		if s.TripID == tripID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (r memSuggestions) Delete(_ context.Context, id uuid.UUID) error {
	n := len(r.m.suggestions)
	r.m.suggestions = slices.DeleteFunc(r.m.suggestions, func(s domain.Suggestion) bool { return s.ID == id })
	if len(r.m.suggestions) == n {
		return domain.ErrNotFound
	}
	r.m.votes = slices.DeleteFunc(r.m.votes, func(v domain.Vote) bool { return v.SuggestionID == id })
	return nil
}

// ---- votes -----------------------------------------------------------------

type memVotes struct{ m *memStore }

func (r memVotes) Upsert(_ context.Context, suggestionID, userID uuid.UUID, value domain.VoteValue) (domain.Vote, error) {
	now := r.m.now()
	for i, v := range r.m.votes {
		if v.SuggestionID == suggestionID && v.UserID == userID {
			r.m.votes[i].Value = value
			r.m.votes[i].UpdatedAt = now
			return r.m.votes[i], nil
		}
	}
	v := domain.Vote{ID: uuid.New(), SuggestionID: suggestionID, UserID: userID, Value: value, CreatedAt: now, UpdatedAt: now}
	r.m.votes = append(r.m.votes, v)
	return v, nil
}

func (r memVotes) ListBySuggestion(_ context.Context, suggestionID uuid.UUID) ([]domain.Vote, error) {
	out := []domain.Vote{}
	for _, v := range r.m.votes {
		if v.SuggestionID == suggestionID {
			out = append(out, v)
		}
	}
	return out, nil
}

func (r memVotes) GetByUser(_ context.Context, suggestionID, userID uuid.UUID) (domain.Vote, error) {
	for _, v := range r.m.votes {
		if v.SuggestionID == suggestionID && v.UserID == userID {
			return v, nil
		}
	}
	return domain.Vote{}, domain.ErrNotFound
}

func (r memVotes) DeleteBySuggestion(_ context.Context, suggestionID uuid.UUID) (int64, error) {
	n := len(r.m.votes)
	r.m.votes = slices.DeleteFunc(r.m.votes, func(v domain.Vote) bool { return v.SuggestionID == suggestionID })
	return int64(n - len(r.m.votes)), nil
}

// ---- members ---------------------------------------------------------------

type memMembers struct{ m *memStore }

func (r memMembers) CreateGroup(_ context.Context, name, _ string, ownerID uuid.UUID) (uuid.UUID, error) {
	id := uuid.New()
	r.m.groups[id] = name
	r.m.members = append(r.m.members, domain.Membership{GroupID: id, UserID: ownerID, Role: domain.RoleAdmin})
	return id, nil
}

func (r memMembers) GetMembership(_ context.Context, groupID, userID uuid.UUID) (domain.Membership, error) {
	for _, mem := range r.m.members {
		if mem.GroupID == groupID && mem.UserID == userID {
			return mem, nil
		}
	}
	return domain.Membership{}, domain.ErrNotFound
}

func (r memMembers) ListMembers(_ context.Context, groupID uuid.UUID) ([]domain.Membership, error) {
	out := []domain.Membership{}
	for _, mem := range r.m.members {
		if mem.GroupID == groupID {
			out = append(out, mem)
		}
	}
	return out, nil
}

func (r memMembers) CountMembers(ctx context.Context, groupID uuid.UUID) (int, error) {
	ms, _ := r.ListMembers(ctx, groupID)
	return len(ms), nil
}

func (r memMembers) Add(_ context.Context, mem domain.Membership) error {
	for i, existing := range r.m.members {
		if existing.GroupID == mem.GroupID && existing.UserID == mem.UserID {
			r.m.members[i].Role = mem.Role
			return nil
		}
	}
	r.m.members = append(r.m.members, mem)
	return nil
}

func (r memMembers) Remove(_ context.Context, groupID, userID uuid.UUID) error {
	n := len(r.m.members)
	r.m.members = slices.DeleteFunc(r.m.members, func(mem domain.Membership) bool {
		return mem.GroupID == groupID && mem.UserID == userID
	})
	if len(r.m.members) == n {
		return domain.ErrNotFound
	}
	return nil
}

// ---- reviews ---------------------------------------------------------------

type memReviews struct{ m *memStore }

func (r memReviews) Create(_ context.Context, rv domain.Review) (domain.Review, error) {
	for _, existing := range r.m.reviews {
		if existing.TripID == rv.TripID && existing.UserID == rv.UserID {
			return domain.Review{}, domain.ErrAlreadyExists
		}
	}
	rv.ID = uuid.New()
	rv.CreatedAt = r.m.now()
	rv.UpdatedAt = rv.CreatedAt
	r.m.reviews = append(r.m.reviews, rv)
	return rv, nil
}

func (r memReviews) GetByID(_ context.Context, id uuid.UUID) (domain.Review, error) {
	for _, rv := range r.m.reviews {
		if rv.ID == id {
			return rv, nil
		}
	}
	return domain.Review{}, domain.ErrNotFound
}

func (r memReviews) Update(_ context.Context, id uuid.UUID, rating int, text string) (domain.Review, error) {
	for i, rv := range r.m.reviews {
		if rv.ID == id {
			r.m.reviews[i].Rating = rating
			r.m.reviews[i].Text = text
			r.m.reviews[i].UpdatedAt = r.m.now()
			return r.m.reviews[i], nil
		}
	}
	return domain.Review{}, domain.ErrNotFound
}

func (r memReviews) Delete(_ context.Context, id uuid.UUID) error {
	n := len(r.m.reviews)
	r.m.reviews = slices.DeleteFunc(r.m.reviews, func(rv domain.Review) bool { return rv.ID == id })
	if len(r.m.reviews) == n {
		return domain.ErrNotFound
	}
	return nil
}

func (r memReviews) ListByTrip(_ context.Context, tripID uuid.UUID) ([]domain.Review, error) {
	out := []domain.Review{}
	for i := len(r.m.reviews) - 1; i >= 0; i-- {
		if r.m.reviews[i].TripID == tripID {
			out = append(out, r.m.reviews[i])
		}
	}
	return out, nil
}

func (r memReviews) Summary(ctx context.Context, tripID uuid.UUID) (domain.ReviewSummary, error) {
	reviews, _ := r.ListByTrip(ctx, tripID)
	return domain.SummarizeReviews(reviews), nil
}

// ---- fixtures --------------------------------------------------------------

// world is a group of members with one trip, on top of a memStore.
type world struct {
	store   *memStore
	groupID uuid.UUID
	admin   uuid.UUID
	members []uuid.UUID // every member, admin first
	trip    domain.Trip
}

// newWorld creates a group of size members (the first one is the admin)
// and a trip in it.
func newWorld(size int) *world {
	m := newMemStore()
	w := &world{store: m, admin: uuid.New()}
	ctx := context.Background()
	r := m.repos()

	w.groupID, _ = r.Members.CreateGroup(ctx, "Road Crew", "", w.admin)
	w.members = append(w.members, w.admin)
	for i := 1; i < size; i++ {
		w.addMember()
	}
	w.trip, _ = r.Trips.Create(ctx, domain.Trip{
		GroupID:     w.groupID,
		Name:        "Summer in Ghent",
		Destination: "Ghent",
		StartDate:   day(10),
		EndDate:     day(14),
	})
	return w
}

// addMember adds a regular member and returns their id.
func (w *world) addMember() uuid.UUID {
	id := uuid.New()
	_ = w.store.repos().Members.Add(context.Background(), domain.Membership{GroupID: w.groupID, UserID: id, Role: domain.RoleMember})
	w.members = append(w.members, id)
	return id
}

// confirm inserts a confirmed activity directly.
func (w *world) confirm(title string, date time.Time, start, end string) domain.Activity {
	a, _ := w.store.repos().Activities.Create(context.Background(), domain.Activity{
		TripID:    w.trip.ID,
		Title:     title,
		Date:      date,
		Start:     hm(start),
		End:       hm(end),
		CreatedBy: w.admin,
	})
	return a
}

func (w *world) runner() *service.TxRunner {
	return service.NewTxRunner(w.store, service.RetryPolicy{MaxRetries: 3, BaseDelay: time.Millisecond}, discardLogger())
}

func (w *world) suggestions(opts ...service.SuggestionOption) *service.SuggestionService {
	return service.NewSuggestionService(w.runner(), discardLogger(), opts...)
}

func (w *world) votes(opts ...service.SuggestionOption) *service.VoteService {
	return service.NewVoteService(w.runner(), w.suggestions(opts...), discardLogger())
}

func (w *world) input(actor uuid.UUID, title string, date time.Time, start, end string) service.ActivityInput {
	return service.ActivityInput{
		TripID:      w.trip.ID,
		Title:       title,
		Description: "details",
		Location:    domain.Location{Name: "Graslei"},
		Date:        date,
		Start:       hm(start),
		End:         hm(end),
		ActorID:     actor,
	}
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

var errBoom = errors.New("boom")

func discardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// recorder collects the events a TxRunner reports.
type recorder struct {
	busy      []string
	proposals []string
	votes     []string
}

func (r *recorder) StoreBusy(op string) {
	r.busy = append(r.busy, op)
}

func (r *recorder) SuggestionProposed(outcome string) {
	r.proposals = append(r.proposals, outcome)
}

func (r *recorder) VoteCast(outcome string) {
	r.votes = append(r.votes, outcome)
}
