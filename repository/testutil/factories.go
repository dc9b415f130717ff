package testutil

import (
	"time"

	"phlock/domain/entities"

	"github.com/google/uuid"
)

// Day returns the UTC civil date offset whole days from today.
func Day(offset int) time.Time {
	return entities.DateOf(time.Now().UTC()).AddDate(0, 0, offset)
}

// CreateTestPick creates a daily pick with default values
func CreateTestPick(userID uuid.UUID, date time.Time) *entities.DailyPick {
	return &entities.DailyPick{
		UserID:   userID,
		PickDate: entities.DateOf(date),
		ItemRef:  "track:test-" + uuid.NewString()[:8],
	}
}

// CreateTestPendingSwap creates a pending swap effective tomorrow
func CreateTestPendingSwap(ownerID uuid.UUID, position int, incomingID uuid.UUID) *entities.PendingSwap {
	return CreateTestPendingSwapEffective(ownerID, position, incomingID, Day(1))
}

// CreateTestPendingSwapEffective creates a pending swap with a specific effective date
func CreateTestPendingSwapEffective(ownerID uuid.UUID, position int, incomingID uuid.UUID, effectiveDate time.Time) *entities.PendingSwap {
	return &entities.PendingSwap{
		OwnerID:           ownerID,
		Position:          position,
		IncomingCuratorID: incomingID,
		RequestedAt:       time.Now().UTC(),
		EffectiveDate:     entities.DateOf(effectiveDate),
		Status:            entities.PendingSwapStatusPending,
	}
}
