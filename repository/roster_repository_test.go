package repository

import (
	"context"
	"testing"

	"phlock/domain/entities"
	"phlock/repository/testutil"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRosterRepository_GetSlots(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)

	repo := NewRosterRepository(testDB.DB)
	userRepo := NewUserRepository(testDB.DB)
	ctx := context.Background()

	t.Run("unknown owner gets five empty slots", func(t *testing.T) {
		slots, err := repo.GetSlots(ctx, uuid.New())
		require.NoError(t, err)
		require.Len(t, slots, entities.RosterSize)
		for i, slot := range slots {
			assert.Equal(t, i+1, slot.Position)
			assert.True(t, slot.IsEmpty())
		}
	})

	t.Run("returns occupied and empty slots in position order", func(t *testing.T) {
		ownerID := uuid.New()
		curatorA := uuid.New()
		curatorB := uuid.New()
		_, err := userRepo.GetOrCreate(ctx, ownerID)
		require.NoError(t, err)

		_, err = repo.SetSlot(ctx, ownerID, 2, &curatorA)
		require.NoError(t, err)
		_, err = repo.SetSlot(ctx, ownerID, 5, &curatorB)
		require.NoError(t, err)

		slots, err := repo.GetSlots(ctx, ownerID)
		require.NoError(t, err)
		require.Len(t, slots, entities.RosterSize)

		assert.True(t, slots[0].IsEmpty())
		require.NotNil(t, slots[1].CuratorID)
		assert.Equal(t, curatorA, *slots[1].CuratorID)
		assert.True(t, slots[2].IsEmpty())
		assert.True(t, slots[3].IsEmpty())
		require.NotNil(t, slots[4].CuratorID)
		assert.Equal(t, curatorB, *slots[4].CuratorID)
	})
}

func TestRosterRepository_GetSlotForUpdate(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)

	repo := NewRosterRepository(testDB.DB)
	userRepo := NewUserRepository(testDB.DB)
	ctx := context.Background()

	t.Run("missing slot row", func(t *testing.T) {
		slot, err := repo.GetSlotForUpdate(ctx, uuid.New(), 1)
		require.NoError(t, err)
		assert.Nil(t, slot)
	})

	t.Run("returns slot", func(t *testing.T) {
		ownerID := uuid.New()
		_, err := userRepo.GetOrCreate(ctx, ownerID)
		require.NoError(t, err)

		slot, err := repo.GetSlotForUpdate(ctx, ownerID, 3)
		require.NoError(t, err)
		require.NotNil(t, slot)
		assert.Equal(t, ownerID, slot.OwnerID)
		assert.Equal(t, 3, slot.Position)
		assert.True(t, slot.IsEmpty())
	})
}

func TestRosterRepository_SetSlot(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)

	repo := NewRosterRepository(testDB.DB)
	userRepo := NewUserRepository(testDB.DB)
	currencyRepo := NewSocialCurrencyRepository(testDB.DB)
	ctx := context.Background()

	t.Run("assigns curator and increments counter", func(t *testing.T) {
		ownerID := uuid.New()
		curatorA := uuid.New()
		_, err := userRepo.GetOrCreate(ctx, ownerID)
		require.NoError(t, err)

		write, err := repo.SetSlot(ctx, ownerID, 1, &curatorA)
		require.NoError(t, err)
		require.NotNil(t, write)

		require.NotNil(t, write.Slot.CuratorID)
		assert.Equal(t, curatorA, *write.Slot.CuratorID)
		assert.Nil(t, write.Outgoing)
		assert.Equal(t, []entities.CounterMove{
			{CuratorID: curatorA, Delta: 1, NewCount: 1},
		}, write.Moves)

		count, err := currencyRepo.GetCount(ctx, curatorA)
		require.NoError(t, err)
		require.NotNil(t, count)
		assert.Equal(t, 1, count.SlotCount)
	})

	t.Run("replaces curator and moves both counters", func(t *testing.T) {
		ownerID := uuid.New()
		curatorA := uuid.New()
		curatorB := uuid.New()
		_, err := userRepo.GetOrCreate(ctx, ownerID)
		require.NoError(t, err)

		_, err = repo.SetSlot(ctx, ownerID, 1, &curatorA)
		require.NoError(t, err)

		write, err := repo.SetSlot(ctx, ownerID, 1, &curatorB)
		require.NoError(t, err)

		require.NotNil(t, write.Outgoing)
		assert.Equal(t, curatorA, *write.Outgoing)
		assert.Equal(t, []entities.CounterMove{
			{CuratorID: curatorA, Delta: -1, NewCount: 0},
			{CuratorID: curatorB, Delta: 1, NewCount: 1},
		}, write.Moves)

		countA, err := currencyRepo.GetCount(ctx, curatorA)
		require.NoError(t, err)
		require.NotNil(t, countA)
		assert.Equal(t, 0, countA.SlotCount)

		countB, err := currencyRepo.GetCount(ctx, curatorB)
		require.NoError(t, err)
		require.NotNil(t, countB)
		assert.Equal(t, 1, countB.SlotCount)
	})

	t.Run("vacates slot", func(t *testing.T) {
		ownerID := uuid.New()
		curatorA := uuid.New()
		_, err := userRepo.GetOrCreate(ctx, ownerID)
		require.NoError(t, err)

		_, err = repo.SetSlot(ctx, ownerID, 4, &curatorA)
		require.NoError(t, err)

		write, err := repo.SetSlot(ctx, ownerID, 4, nil)
		require.NoError(t, err)

		assert.True(t, write.Slot.IsEmpty())
		require.NotNil(t, write.Outgoing)
		assert.Equal(t, curatorA, *write.Outgoing)
		assert.Equal(t, []entities.CounterMove{
			{CuratorID: curatorA, Delta: -1, NewCount: 0},
		}, write.Moves)
	})

	t.Run("rejects curator already on another slot", func(t *testing.T) {
		ownerID := uuid.New()
		curatorA := uuid.New()
		_, err := userRepo.GetOrCreate(ctx, ownerID)
		require.NoError(t, err)

		_, err = repo.SetSlot(ctx, ownerID, 1, &curatorA)
		require.NoError(t, err)

		write, err := repo.SetSlot(ctx, ownerID, 2, &curatorA)
		require.Error(t, err)
		assert.Nil(t, write)
		assert.True(t, entities.IsValidation(err))

		// Counter untouched by the rejected write
		count, err := currencyRepo.GetCount(ctx, curatorA)
		require.NoError(t, err)
		require.NotNil(t, count)
		assert.Equal(t, 1, count.SlotCount)
	})

	t.Run("fails when slot row missing", func(t *testing.T) {
		_, err := repo.SetSlot(ctx, uuid.New(), 1, nil)
		require.Error(t, err)
		assert.True(t, entities.IsConsistencyViolation(err))
	})

	t.Run("fails when counter row is gone", func(t *testing.T) {
		ownerID := uuid.New()
		curatorA := uuid.New()
		_, err := userRepo.GetOrCreate(ctx, ownerID)
		require.NoError(t, err)

		_, err = repo.SetSlot(ctx, ownerID, 1, &curatorA)
		require.NoError(t, err)

		_, err = testDB.DB.Exec(ctx, `DELETE FROM social_currency_counts WHERE curator_id = $1`, curatorA)
		require.NoError(t, err)

		_, err = repo.SetSlot(ctx, ownerID, 1, nil)
		require.Error(t, err)
		assert.True(t, entities.IsConsistencyViolation(err))
	})
}

func TestRosterRepository_ListOwnersReferencing(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)

	repo := NewRosterRepository(testDB.DB)
	userRepo := NewUserRepository(testDB.DB)
	ctx := context.Background()

	curator := uuid.New()
	other := uuid.New()

	owner1 := uuid.New()
	owner2 := uuid.New()
	owner3 := uuid.New()
	for _, ownerID := range []uuid.UUID{owner1, owner2, owner3} {
		_, err := userRepo.GetOrCreate(ctx, ownerID)
		require.NoError(t, err)
	}

	_, err := repo.SetSlot(ctx, owner1, 1, &curator)
	require.NoError(t, err)
	_, err = repo.SetSlot(ctx, owner2, 3, &curator)
	require.NoError(t, err)
	_, err = repo.SetSlot(ctx, owner3, 1, &other)
	require.NoError(t, err)

	owners, err := repo.ListOwnersReferencing(ctx, curator)
	require.NoError(t, err)
	assert.ElementsMatch(t, []uuid.UUID{owner1, owner2}, owners)

	none, err := repo.ListOwnersReferencing(ctx, uuid.New())
	require.NoError(t, err)
	assert.Empty(t, none)
}
