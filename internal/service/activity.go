package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/pkordes/trip-planner/internal/domain"
	"github.com/pkordes/trip-planner/internal/repo"
)

// ActivityService handles confirmed activities outside the voting flow:
// direct creation by an admin, deletion, and the personal schedule.
type ActivityService struct {
	runner *TxRunner
	log    *slog.Logger
}

// NewActivityService constructs an ActivityService.
func NewActivityService(runner *TxRunner, log *slog.Logger) *ActivityService {
	if log == nil {
		log = slog.Default()
	}
	return &ActivityService{runner: runner, log: log}
}

// CreateConfirmed adds an activity to the schedule without a vote. Only a
// group admin may do this, and the slot must not overlap a confirmed activity.
// Errors follow SuggestionService.Propose.
func (s *ActivityService) CreateConfirmed(ctx context.Context, in ActivityInput) (domain.Activity, error) {
	const op = "service.ActivityService.CreateConfirmed"
	if err := validateActivityInput(in); err != nil {
		return domain.Activity{}, fmt.Errorf("%s: %w", op, err)
	}

	var created domain.Activity
	err := s.runner.Run(ctx, op, func(r repo.Repos) error {
		trip, err := r.Trips.GetByIDForUpdate(ctx, in.TripID)
		if err != nil {
			return err
		}
		if _, err := requireAdmin(ctx, r, trip.GroupID, in.ActorID); err != nil {
			return err
		}
		err = NewOverlapDetector(r.Activities).Check(ctx, OverlapQuery{
			TripID: trip.ID,
			Date:   in.Date,
			Range:  in.Range(),
		})
		if err != nil {
			return err
		}
		created, err = r.Activities.Create(ctx, domain.Activity{
			TripID:      trip.ID,
			Title:       in.Title,
			Description: in.Description,
			Location:    in.Location,
			Date:        in.Date,
			Start:       in.Start,
			End:         in.End,
			CreatedBy:   in.ActorID,
		})
		return err
	})
	if err != nil {
		return domain.Activity{}, err
	}

	s.log.InfoContext(ctx, "activity created", "activity_id", created.ID, "trip_id", created.TripID)
	return created, nil
}

// Delete removes a confirmed activity. A group admin or the activity's
// creator may delete it; anyone else gets domain.ErrPermissionDenied.
// The deleted activity is returned.
func (s *ActivityService) Delete(ctx context.Context, activityID, actorID uuid.UUID) (domain.Activity, error) {
	var deleted domain.Activity
	err := s.runner.Run(ctx, "service.ActivityService.Delete", func(r repo.Repos) error {
		a, err := r.Activities.GetByID(ctx, activityID)
		if err != nil {
			return err
		}
		trip, err := r.Trips.GetByID(ctx, a.TripID)
		if err != nil {
			return err
		}
		m, err := requireMember(ctx, r, trip.GroupID, actorID)
		if err != nil {
			return err
		}
		if !m.IsAdmin() && a.CreatedBy != actorID {
			return fmt.Errorf("%w: only the creator or a group admin may delete an activity", domain.ErrPermissionDenied)
		}
		if err := r.Activities.Delete(ctx, a.ID); err != nil {
			return err
		}
		deleted = a
		return nil
	})
	if err != nil {
		return domain.Activity{}, err
	}

	s.log.InfoContext(ctx, "activity deleted", "activity_id", deleted.ID, "actor_id", actorID)
	return deleted, nil
}

// PersonalSchedule returns one page of the confirmed activities across all
// of userID's groups, ordered by date and start time.
func (s *ActivityService) PersonalSchedule(ctx context.Context, userID uuid.UUID, p domain.PaginationParams) (domain.Page[domain.ScheduleEntry], error) {
	page := domain.Page[domain.ScheduleEntry]{Params: p}
	err := s.runner.Run(ctx, "service.ActivityService.PersonalSchedule", func(r repo.Repos) error {
		items, total, err := r.Activities.ListForUser(ctx, userID, p)
		if err != nil {
			return err
		}
		page.Items, page.Total = items, total
		return nil
	})
	if err != nil {
		return domain.Page[domain.ScheduleEntry]{}, err
	}
	if page.Items == nil {
		page.Items = []domain.ScheduleEntry{}
	}
	return page, nil
}
