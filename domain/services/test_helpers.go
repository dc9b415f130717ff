package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"phlock/domain/entities"
	"phlock/domain/events"
	"phlock/domain/testhelpers"
)

// Test constants for consistent test data
var (
	TestOwnerID    = uuid.MustParse("11111111-1111-1111-1111-111111111111")
	TestUserID     = uuid.MustParse("22222222-2222-2222-2222-222222222222")
	TestCuratorAID = uuid.MustParse("aaaaaaaa-aaaa-aaaa-aaaa-aaaaaaaaaaaa")
	TestCuratorBID = uuid.MustParse("bbbbbbbb-bbbb-bbbb-bbbb-bbbbbbbbbbbb")
	TestCuratorCID = uuid.MustParse("cccccccc-cccc-cccc-cccc-cccccccccccc")

	// TestToday is a fixed request instant; TestDate is its calendar date.
	TestToday = time.Date(2025, 3, 10, 15, 4, 5, 0, time.UTC)
	TestDate  = entities.DateOf(TestToday)
)

// TestMocks aggregates all repository mocks for testing
type TestMocks struct {
	UserRepo           *testhelpers.MockUserRepository
	RosterRepo         *testhelpers.MockRosterRepository
	DailyPickRepo      *testhelpers.MockDailyPickRepository
	PendingSwapRepo    *testhelpers.MockPendingSwapRepository
	SwapLedgerRepo     *testhelpers.MockSwapLedgerRepository
	SocialCurrencyRepo *testhelpers.MockSocialCurrencyRepository
	EventPublisher     *testhelpers.MockEventPublisher
}

// NewTestMocks creates a new set of mocks
func NewTestMocks() *TestMocks {
	return &TestMocks{
		UserRepo:           &testhelpers.MockUserRepository{},
		RosterRepo:         &testhelpers.MockRosterRepository{},
		DailyPickRepo:      &testhelpers.MockDailyPickRepository{},
		PendingSwapRepo:    &testhelpers.MockPendingSwapRepository{},
		SwapLedgerRepo:     &testhelpers.MockSwapLedgerRepository{},
		SocialCurrencyRepo: &testhelpers.MockSocialCurrencyRepository{},
		EventPublisher:     &testhelpers.MockEventPublisher{},
	}
}

// AssertAllExpectations verifies all mock expectations were met
func (m *TestMocks) AssertAllExpectations(t *testing.T) {
	m.UserRepo.AssertExpectations(t)
	m.RosterRepo.AssertExpectations(t)
	m.DailyPickRepo.AssertExpectations(t)
	m.PendingSwapRepo.AssertExpectations(t)
	m.SwapLedgerRepo.AssertExpectations(t)
	m.SocialCurrencyRepo.AssertExpectations(t)
	m.EventPublisher.AssertExpectations(t)
}

// NewSwapScheduler builds the scheduler under test from the mocks
func (m *TestMocks) NewSwapScheduler() *swapScheduler {
	return &swapScheduler{
		userRepo:        m.UserRepo,
		rosterRepo:      m.RosterRepo,
		dailyPickRepo:   m.DailyPickRepo,
		pendingSwapRepo: m.PendingSwapRepo,
		swapLedgerRepo:  m.SwapLedgerRepo,
		eventPublisher:  m.EventPublisher,
	}
}

// MockHelper provides common mock setup patterns
type MockHelper struct {
	mocks *TestMocks
	ctx   context.Context
}

// NewMockHelper creates a new mock helper
func NewMockHelper(mocks *TestMocks) *MockHelper {
	return &MockHelper{
		mocks: mocks,
		ctx:   context.Background(),
	}
}

// ExpectOwnerEnsured sets up the user repository to report the owner exists
func (h *MockHelper) ExpectOwnerEnsured(ownerID uuid.UUID) {
	h.mocks.UserRepo.On("GetOrCreate", mock.Anything, ownerID).Return(&entities.User{ID: ownerID}, nil)
}

// ExpectQuotaFree sets up the swap ledger to accept the owner's quota write
func (h *MockHelper) ExpectQuotaFree(ownerID uuid.UUID, date time.Time) {
	h.mocks.SwapLedgerRepo.On("Record", mock.Anything, ownerID, date).Return(nil)
}

// ExpectQuotaConsumed sets up the swap ledger to reject the quota write
func (h *MockHelper) ExpectQuotaConsumed(ownerID uuid.UUID, date time.Time) {
	h.mocks.SwapLedgerRepo.On("Record", mock.Anything, ownerID, date).Return(entities.ErrRateLimitExceeded)
}

// ExpectSlotLocked sets up the roster repository to return a locked slot
func (h *MockHelper) ExpectSlotLocked(slot *entities.RosterSlot) {
	h.mocks.RosterRepo.On("GetSlotForUpdate", mock.Anything, slot.OwnerID, slot.Position).Return(slot, nil)
}

// ExpectRoster sets up the roster repository to return the owner's slots
func (h *MockHelper) ExpectRoster(ownerID uuid.UUID, slots []*entities.RosterSlot) {
	h.mocks.RosterRepo.On("GetSlots", mock.Anything, ownerID).Return(slots, nil)
}

// ExpectPostedToday sets up the pick ledger for the curator's posted state
func (h *MockHelper) ExpectPostedToday(curatorID uuid.UUID, date time.Time, posted bool) {
	h.mocks.DailyPickRepo.On("HasPostedOn", mock.Anything, curatorID, date).Return(posted, nil)
}

// ExpectSlotWrite sets up the roster repository to accept a slot write
func (h *MockHelper) ExpectSlotWrite(ownerID uuid.UUID, position int, curatorID uuid.UUID, write *entities.SlotWrite) {
	h.mocks.RosterRepo.On("SetSlot", mock.Anything, ownerID, position, &curatorID).Return(write, nil)
}

// ExpectNoPendingToSupersede sets up the pending swap repository to find
// nothing to cancel when an immediate swap supersedes the slot's queue
func (h *MockHelper) ExpectNoPendingToSupersede(ownerID uuid.UUID, position int) {
	h.mocks.PendingSwapRepo.On("CancelPending", mock.Anything, ownerID, position, time.Time{}).Return(nil, nil)
}

// ExpectEventPublish sets up event publisher mock expectations
func (h *MockHelper) ExpectEventPublish(eventType events.EventType) {
	h.mocks.EventPublisher.On("Publish", mock.MatchedBy(func(e events.Event) bool {
		return e.Type() == eventType
	})).Return(nil)
}

// EmptySlot builds an unoccupied slot row
func EmptySlot(ownerID uuid.UUID, position int) *entities.RosterSlot {
	return &entities.RosterSlot{
		OwnerID:  ownerID,
		Position: position,
	}
}

// OccupiedSlot builds a slot row holding the given curator
func OccupiedSlot(ownerID uuid.UUID, position int, curatorID uuid.UUID) *entities.RosterSlot {
	return &entities.RosterSlot{
		OwnerID:    ownerID,
		Position:   position,
		CuratorID:  &curatorID,
		AssignedAt: TestToday.Add(-24 * time.Hour),
	}
}

// FullRoster builds five slots with the given occupants; nil entries stay
// empty. Panics when more than five curators are given.
func FullRoster(ownerID uuid.UUID, curators ...*uuid.UUID) []*entities.RosterSlot {
	if len(curators) > entities.RosterSize {
		panic("too many curators for a roster")
	}
	slots := make([]*entities.RosterSlot, 0, entities.RosterSize)
	for i := 1; i <= entities.RosterSize; i++ {
		slot := EmptySlot(ownerID, i)
		if i <= len(curators) && curators[i-1] != nil {
			slot.CuratorID = curators[i-1]
			slot.AssignedAt = TestToday.Add(-24 * time.Hour)
		}
		slots = append(slots, slot)
	}
	return slots
}
