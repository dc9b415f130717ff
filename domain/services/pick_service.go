package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"phlock/domain/entities"
	"phlock/domain/events"
	"phlock/domain/interfaces"
)

type pickService struct {
	userRepo       interfaces.UserRepository
	dailyPickRepo  interfaces.DailyPickRepository
	eventPublisher interfaces.EventPublisher
}

// NewPickService creates a new pick service
func NewPickService(
	userRepo interfaces.UserRepository,
	dailyPickRepo interfaces.DailyPickRepository,
	eventPublisher interfaces.EventPublisher,
) interfaces.PickService {
	return &pickService{
		userRepo:       userRepo,
		dailyPickRepo:  dailyPickRepo,
		eventPublisher: eventPublisher,
	}
}

// RecordDailyPick appends the user's pick for the current date and advances
// their streak. The ledger insert and the streak update share the caller's
// transaction, so the streak can never drift from the pick history.
func (s *pickService) RecordDailyPick(ctx context.Context, userID uuid.UUID, itemRef string, now time.Time) (*entities.PickResult, error) {
	pick, err := entities.NewDailyPick(userID, now, itemRef)
	if err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetForUpdate(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to lock user: %w", err)
	}
	if user == nil {
		user, err = s.userRepo.GetOrCreate(ctx, userID)
		if err != nil {
			return nil, fmt.Errorf("failed to create user: %w", err)
		}
	}

	if err := s.dailyPickRepo.Create(ctx, pick); err != nil {
		return nil, err
	}

	if !user.ApplyPick(pick.PickDate) {
		// The insert succeeded, so no pick existed for this date; a streak
		// already at or past it means the two tables diverged.
		return nil, entities.NewConsistencyViolation("streak state for user %s is ahead of the pick ledger", userID)
	}
	if err := s.userRepo.UpdateStreak(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to update streak: %w", err)
	}

	if err := s.eventPublisher.Publish(events.DailyPickRecordedEvent{
		UserID:      userID,
		PickDate:    pick.PickDate,
		ItemRef:     pick.ItemRef,
		StreakCount: user.StreakCount,
	}); err != nil {
		log.WithError(err).Error("Failed to publish daily pick recorded event")
	}

	milestone := user.OnStreakMilestone()
	if milestone {
		if err := s.eventPublisher.Publish(events.StreakMilestoneEvent{
			UserID:      userID,
			StreakCount: user.StreakCount,
			PickDate:    pick.PickDate,
		}); err != nil {
			log.WithError(err).Error("Failed to publish streak milestone event")
		}
	}

	return &entities.PickResult{
		Pick:        pick,
		StreakCount: user.StreakCount,
		Milestone:   milestone,
	}, nil
}

// HasPostedOn reports whether the user posted on the given date
func (s *pickService) HasPostedOn(ctx context.Context, userID uuid.UUID, date time.Time) (bool, error) {
	posted, err := s.dailyPickRepo.HasPostedOn(ctx, userID, date)
	if err != nil {
		return false, fmt.Errorf("failed to check pick ledger: %w", err)
	}
	return posted, nil
}

// GetStreak returns the user's current streak state. Users the engine has
// never seen report a zero streak rather than an error.
func (s *pickService) GetStreak(ctx context.Context, userID uuid.UUID) (*entities.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return &entities.User{ID: userID}, nil
	}
	return user, nil
}
