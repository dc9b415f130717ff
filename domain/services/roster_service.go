package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"phlock/domain/entities"
	"phlock/domain/interfaces"
)

type rosterService struct {
	rosterRepo      interfaces.RosterRepository
	dailyPickRepo   interfaces.DailyPickRepository
	pendingSwapRepo interfaces.PendingSwapRepository
}

// NewRosterService creates a new roster read service
func NewRosterService(
	rosterRepo interfaces.RosterRepository,
	dailyPickRepo interfaces.DailyPickRepository,
	pendingSwapRepo interfaces.PendingSwapRepository,
) interfaces.RosterService {
	return &rosterService{
		rosterRepo:      rosterRepo,
		dailyPickRepo:   dailyPickRepo,
		pendingSwapRepo: pendingSwapRepo,
	}
}

// GetRoster returns the owner's five slots annotated with whether each
// occupant has posted today, plus any swaps queued for a boundary.
func (s *rosterService) GetRoster(ctx context.Context, ownerID uuid.UUID, today time.Time) (*entities.RosterView, error) {
	if ownerID == uuid.Nil {
		return nil, entities.NewValidationError("ownerId", "cannot be empty")
	}

	slots, err := s.rosterRepo.GetSlots(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get roster slots: %w", err)
	}

	picks, err := s.picksForSlots(ctx, slots, entities.DateOf(today))
	if err != nil {
		return nil, err
	}

	details := make([]*entities.RosterSlotDetail, 0, len(slots))
	for _, slot := range slots {
		detail := &entities.RosterSlotDetail{
			Position:  slot.Position,
			CuratorID: slot.CuratorID,
		}
		if slot.CuratorID != nil {
			_, detail.CuratorPostedToday = picks[*slot.CuratorID]
		}
		details = append(details, detail)
	}

	pending, err := s.pendingSwapRepo.ListPendingByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending swaps: %w", err)
	}

	return &entities.RosterView{
		OwnerID: ownerID,
		Slots:   details,
		Pending: pending,
	}, nil
}

// GetPlaylist returns what each roster slot's curator picked on the given
// date. Slots whose curator stayed quiet that day appear with a nil item.
func (s *rosterService) GetPlaylist(ctx context.Context, ownerID uuid.UUID, date time.Time) ([]*entities.PlaylistEntry, error) {
	if ownerID == uuid.Nil {
		return nil, entities.NewValidationError("ownerId", "cannot be empty")
	}

	slots, err := s.rosterRepo.GetSlots(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get roster slots: %w", err)
	}

	picks, err := s.picksForSlots(ctx, slots, entities.DateOf(date))
	if err != nil {
		return nil, err
	}

	entries := make([]*entities.PlaylistEntry, 0, len(slots))
	for _, slot := range slots {
		entry := &entities.PlaylistEntry{
			Position:  slot.Position,
			CuratorID: slot.CuratorID,
		}
		if slot.CuratorID != nil {
			if pick, ok := picks[*slot.CuratorID]; ok {
				entry.ItemRef = &pick.ItemRef
			}
		}
		entries = append(entries, entry)
	}

	return entries, nil
}

func (s *rosterService) picksForSlots(ctx context.Context, slots []*entities.RosterSlot, date time.Time) (map[uuid.UUID]*entities.DailyPick, error) {
	curatorIDs := make([]uuid.UUID, 0, len(slots))
	for _, slot := range slots {
		if slot.CuratorID != nil {
			curatorIDs = append(curatorIDs, *slot.CuratorID)
		}
	}
	if len(curatorIDs) == 0 {
		return map[uuid.UUID]*entities.DailyPick{}, nil
	}

	picks, err := s.dailyPickRepo.ListByUsersOnDate(ctx, curatorIDs, date)
	if err != nil {
		return nil, fmt.Errorf("failed to list curator picks: %w", err)
	}
	return picks, nil
}
