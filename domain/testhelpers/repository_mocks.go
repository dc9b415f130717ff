package testhelpers

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"phlock/domain/entities"
	"phlock/domain/events"
)

// MockUserRepository is a mock implementation of UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.User), args.Error(1)
}

func (m *MockUserRepository) GetOrCreate(ctx context.Context, id uuid.UUID) (*entities.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.User), args.Error(1)
}

func (m *MockUserRepository) GetForUpdate(ctx context.Context, id uuid.UUID) (*entities.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.User), args.Error(1)
}

func (m *MockUserRepository) UpdateStreak(ctx context.Context, user *entities.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

// MockRosterRepository is a mock implementation of RosterRepository
type MockRosterRepository struct {
	mock.Mock
}

func (m *MockRosterRepository) GetSlots(ctx context.Context, ownerID uuid.UUID) ([]*entities.RosterSlot, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.RosterSlot), args.Error(1)
}

func (m *MockRosterRepository) GetSlotForUpdate(ctx context.Context, ownerID uuid.UUID, position int) (*entities.RosterSlot, error) {
	args := m.Called(ctx, ownerID, position)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.RosterSlot), args.Error(1)
}

func (m *MockRosterRepository) SetSlot(ctx context.Context, ownerID uuid.UUID, position int, curatorID *uuid.UUID) (*entities.SlotWrite, error) {
	args := m.Called(ctx, ownerID, position, curatorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.SlotWrite), args.Error(1)
}

func (m *MockRosterRepository) ListOwnersReferencing(ctx context.Context, curatorID uuid.UUID) ([]uuid.UUID, error) {
	args := m.Called(ctx, curatorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]uuid.UUID), args.Error(1)
}

// MockDailyPickRepository is a mock implementation of DailyPickRepository
type MockDailyPickRepository struct {
	mock.Mock
}

func (m *MockDailyPickRepository) Create(ctx context.Context, pick *entities.DailyPick) error {
	args := m.Called(ctx, pick)
	return args.Error(0)
}

func (m *MockDailyPickRepository) GetByUserAndDate(ctx context.Context, userID uuid.UUID, date time.Time) (*entities.DailyPick, error) {
	args := m.Called(ctx, userID, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.DailyPick), args.Error(1)
}

func (m *MockDailyPickRepository) HasPostedOn(ctx context.Context, userID uuid.UUID, date time.Time) (bool, error) {
	args := m.Called(ctx, userID, date)
	return args.Bool(0), args.Error(1)
}

func (m *MockDailyPickRepository) ListByUsersOnDate(ctx context.Context, userIDs []uuid.UUID, date time.Time) (map[uuid.UUID]*entities.DailyPick, error) {
	args := m.Called(ctx, userIDs, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[uuid.UUID]*entities.DailyPick), args.Error(1)
}

func (m *MockDailyPickRepository) ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]*entities.DailyPick, error) {
	args := m.Called(ctx, userID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.DailyPick), args.Error(1)
}

// MockPendingSwapRepository is a mock implementation of PendingSwapRepository
type MockPendingSwapRepository struct {
	mock.Mock
}

func (m *MockPendingSwapRepository) GetPendingByOwnerAndPosition(ctx context.Context, ownerID uuid.UUID, position int) (*entities.PendingSwap, error) {
	args := m.Called(ctx, ownerID, position)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.PendingSwap), args.Error(1)
}

func (m *MockPendingSwapRepository) ListPendingByOwner(ctx context.Context, ownerID uuid.UUID) ([]*entities.PendingSwap, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.PendingSwap), args.Error(1)
}

func (m *MockPendingSwapRepository) Upsert(ctx context.Context, swap *entities.PendingSwap) (*entities.PendingSwap, error) {
	args := m.Called(ctx, swap)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.PendingSwap), args.Error(1)
}

func (m *MockPendingSwapRepository) CancelPending(ctx context.Context, ownerID uuid.UUID, position int, asOf time.Time) (*entities.PendingSwap, error) {
	args := m.Called(ctx, ownerID, position, asOf)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.PendingSwap), args.Error(1)
}

func (m *MockPendingSwapRepository) MarkApplied(ctx context.Context, id int64) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockPendingSwapRepository) ListDue(ctx context.Context, date time.Time) ([]*entities.PendingSwap, error) {
	args := m.Called(ctx, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.PendingSwap), args.Error(1)
}

// MockSwapLedgerRepository is a mock implementation of SwapLedgerRepository
type MockSwapLedgerRepository struct {
	mock.Mock
}

func (m *MockSwapLedgerRepository) Record(ctx context.Context, ownerID uuid.UUID, date time.Time) error {
	args := m.Called(ctx, ownerID, date)
	return args.Error(0)
}

func (m *MockSwapLedgerRepository) GetByOwnerAndDate(ctx context.Context, ownerID uuid.UUID, date time.Time) (*entities.SwapLedgerEntry, error) {
	args := m.Called(ctx, ownerID, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.SwapLedgerEntry), args.Error(1)
}

// MockSocialCurrencyRepository is a mock implementation of SocialCurrencyRepository
type MockSocialCurrencyRepository struct {
	mock.Mock
}

func (m *MockSocialCurrencyRepository) GetCount(ctx context.Context, curatorID uuid.UUID) (*entities.SocialCurrencyCount, error) {
	args := m.Called(ctx, curatorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.SocialCurrencyCount), args.Error(1)
}

func (m *MockSocialCurrencyRepository) ListAudit(ctx context.Context, curatorID uuid.UUID, limit int) ([]*entities.SocialCurrencyAuditEntry, error) {
	args := m.Called(ctx, curatorID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.SocialCurrencyAuditEntry), args.Error(1)
}

func (m *MockSocialCurrencyRepository) RecountFromSlots(ctx context.Context, curatorID uuid.UUID) (int, error) {
	args := m.Called(ctx, curatorID)
	return args.Int(0), args.Error(1)
}

// MockEventPublisher is a mock implementation of EventPublisher for testing
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(event events.Event) error {
	args := m.Called(event)
	return args.Error(0)
}
