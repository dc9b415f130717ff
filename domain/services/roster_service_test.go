package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"phlock/domain/entities"
)

func newRosterService(mocks *TestMocks) *rosterService {
	return &rosterService{
		rosterRepo:      mocks.RosterRepo,
		dailyPickRepo:   mocks.DailyPickRepo,
		pendingSwapRepo: mocks.PendingSwapRepo,
	}
}

func TestRosterService_GetRoster(t *testing.T) {
	ctx := context.Background()

	t.Run("annotates occupied slots with posted-today state", func(t *testing.T) {
		mocks := NewTestMocks()
		helper := NewMockHelper(mocks)

		helper.ExpectRoster(TestOwnerID, FullRoster(TestOwnerID, &TestCuratorAID, &TestCuratorBID))
		mocks.DailyPickRepo.On("ListByUsersOnDate", mock.Anything, mock.MatchedBy(func(ids []uuid.UUID) bool {
			return len(ids) == 2
		}), TestDate).Return(map[uuid.UUID]*entities.DailyPick{
			TestCuratorAID: {UserID: TestCuratorAID, PickDate: TestDate, ItemRef: "track:a"},
		}, nil)
		mocks.PendingSwapRepo.On("ListPendingByOwner", mock.Anything, TestOwnerID).Return([]*entities.PendingSwap{}, nil)

		service := newRosterService(mocks)
		view, err := service.GetRoster(ctx, TestOwnerID, TestToday)

		require.NoError(t, err)
		require.Len(t, view.Slots, entities.RosterSize)
		assert.True(t, view.Slots[0].CuratorPostedToday)
		assert.False(t, view.Slots[1].CuratorPostedToday)
		for _, slot := range view.Slots[2:] {
			assert.Nil(t, slot.CuratorID)
			assert.False(t, slot.CuratorPostedToday)
		}
		assert.Empty(t, view.Pending)
		mocks.AssertAllExpectations(t)
	})

	t.Run("includes queued swaps", func(t *testing.T) {
		mocks := NewTestMocks()
		helper := NewMockHelper(mocks)

		pending := &entities.PendingSwap{
			ID:                3,
			OwnerID:           TestOwnerID,
			Position:          1,
			OutgoingCuratorID: &TestCuratorAID,
			IncomingCuratorID: TestCuratorCID,
			EffectiveDate:     entities.NextDay(TestDate),
			Status:            entities.PendingSwapStatusPending,
		}
		helper.ExpectRoster(TestOwnerID, FullRoster(TestOwnerID, &TestCuratorAID))
		mocks.DailyPickRepo.On("ListByUsersOnDate", mock.Anything, mock.Anything, TestDate).
			Return(map[uuid.UUID]*entities.DailyPick{}, nil)
		mocks.PendingSwapRepo.On("ListPendingByOwner", mock.Anything, TestOwnerID).
			Return([]*entities.PendingSwap{pending}, nil)

		service := newRosterService(mocks)
		view, err := service.GetRoster(ctx, TestOwnerID, TestToday)

		require.NoError(t, err)
		require.Len(t, view.Pending, 1)
		assert.Equal(t, int64(3), view.Pending[0].ID)
		mocks.AssertAllExpectations(t)
	})

	t.Run("empty roster skips the pick lookup", func(t *testing.T) {
		mocks := NewTestMocks()
		helper := NewMockHelper(mocks)

		helper.ExpectRoster(TestOwnerID, FullRoster(TestOwnerID))
		mocks.PendingSwapRepo.On("ListPendingByOwner", mock.Anything, TestOwnerID).
			Return([]*entities.PendingSwap{}, nil)

		service := newRosterService(mocks)
		view, err := service.GetRoster(ctx, TestOwnerID, TestToday)

		require.NoError(t, err)
		require.Len(t, view.Slots, entities.RosterSize)
		mocks.AssertAllExpectations(t)
	})

	t.Run("rejects a missing owner id", func(t *testing.T) {
		mocks := NewTestMocks()

		service := newRosterService(mocks)
		_, err := service.GetRoster(ctx, uuid.Nil, TestToday)

		require.Error(t, err)
		assert.True(t, entities.IsValidation(err))
		mocks.AssertAllExpectations(t)
	})
}

func TestRosterService_GetPlaylist(t *testing.T) {
	ctx := context.Background()
	mocks := NewTestMocks()
	helper := NewMockHelper(mocks)

	helper.ExpectRoster(TestOwnerID, FullRoster(TestOwnerID, &TestCuratorAID, &TestCuratorBID, &TestCuratorCID))
	mocks.DailyPickRepo.On("ListByUsersOnDate", mock.Anything, mock.MatchedBy(func(ids []uuid.UUID) bool {
		return len(ids) == 3
	}), TestDate).Return(map[uuid.UUID]*entities.DailyPick{
		TestCuratorAID: {UserID: TestCuratorAID, PickDate: TestDate, ItemRef: "track:a"},
		TestCuratorCID: {UserID: TestCuratorCID, PickDate: TestDate, ItemRef: "track:c"},
	}, nil)

	service := newRosterService(mocks)
	entries, err := service.GetPlaylist(ctx, TestOwnerID, TestDate)

	require.NoError(t, err)
	require.Len(t, entries, entities.RosterSize)

	require.NotNil(t, entries[0].ItemRef)
	assert.Equal(t, "track:a", *entries[0].ItemRef)
	assert.Nil(t, entries[1].ItemRef, "curator without a pick contributes nothing")
	require.NotNil(t, entries[2].ItemRef)
	assert.Equal(t, "track:c", *entries[2].ItemRef)
	assert.Nil(t, entries[3].ItemRef, "empty slot contributes nothing")
	assert.Nil(t, entries[4].ItemRef)

	mocks.AssertAllExpectations(t)
}
