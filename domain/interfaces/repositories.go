package interfaces

import (
	"context"
	"time"

	"github.com/google/uuid"

	"phlock/domain/entities"
	"phlock/domain/events"
)

// UserRepository defines the interface for user streak-state data access
type UserRepository interface {
	// GetByID retrieves a user by ID, or nil if the user does not exist
	GetByID(ctx context.Context, id uuid.UUID) (*entities.User, error)

	// GetOrCreate retrieves a user, creating the row (with empty roster
	// slots) on first contact
	GetOrCreate(ctx context.Context, id uuid.UUID) (*entities.User, error)

	// GetForUpdate retrieves a user with a row lock held for the rest of
	// the transaction, or nil if the user does not exist
	GetForUpdate(ctx context.Context, id uuid.UUID) (*entities.User, error)

	// UpdateStreak persists the user's streak fields
	UpdateStreak(ctx context.Context, user *entities.User) error
}

// RosterRepository defines the interface for roster slot data access.
// SetSlot is the only write path for slot membership; it moves the affected
// curators' social currency counts in the same statement batch, so callers
// can never change a slot without the counters following.
type RosterRepository interface {
	// GetSlots returns all five slots for an owner in position order,
	// including empty ones
	GetSlots(ctx context.Context, ownerID uuid.UUID) ([]*entities.RosterSlot, error)

	// GetSlotForUpdate retrieves one slot with a row lock held for the rest
	// of the transaction, or nil if the owner has no such slot row
	GetSlotForUpdate(ctx context.Context, ownerID uuid.UUID, position int) (*entities.RosterSlot, error)

	// SetSlot assigns curatorID to the slot (nil vacates it) and applies the
	// matching social currency deltas and audit rows. Decrementing a counter
	// below zero fails the transaction with a consistency violation.
	SetSlot(ctx context.Context, ownerID uuid.UUID, position int, curatorID *uuid.UUID) (*entities.SlotWrite, error)

	// ListOwnersReferencing returns the owners whose rosters currently hold
	// the curator
	ListOwnersReferencing(ctx context.Context, curatorID uuid.UUID) ([]uuid.UUID, error)
}

// DailyPickRepository defines the interface for the one-pick-per-day ledger
type DailyPickRepository interface {
	// Create inserts a pick. A second pick for the same (user, date) returns
	// entities.ErrAlreadyPostedToday.
	Create(ctx context.Context, pick *entities.DailyPick) error

	// GetByUserAndDate retrieves a user's pick for a date, or nil when the
	// user did not post that day
	GetByUserAndDate(ctx context.Context, userID uuid.UUID, date time.Time) (*entities.DailyPick, error)

	// HasPostedOn reports whether the user has a pick recorded for the date
	HasPostedOn(ctx context.Context, userID uuid.UUID, date time.Time) (bool, error)

	// ListByUsersOnDate returns picks for the given users on one date,
	// keyed by user
	ListByUsersOnDate(ctx context.Context, userIDs []uuid.UUID, date time.Time) (map[uuid.UUID]*entities.DailyPick, error)

	// ListByUser returns a user's most recent picks, newest first
	ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]*entities.DailyPick, error)
}

// PendingSwapRepository defines the interface for deferred swap data access
type PendingSwapRepository interface {
	// GetPendingByOwnerAndPosition retrieves the pending swap for a slot,
	// or nil when none is queued
	GetPendingByOwnerAndPosition(ctx context.Context, ownerID uuid.UUID, position int) (*entities.PendingSwap, error)

	// ListPendingByOwner returns all of an owner's pending swaps in
	// position order
	ListPendingByOwner(ctx context.Context, ownerID uuid.UUID) ([]*entities.PendingSwap, error)

	// Upsert inserts the pending swap, replacing any pending row already
	// queued for the same (owner, position). The replaced row is gone, not
	// cancelled: only the latest request survives to the boundary.
	Upsert(ctx context.Context, swap *entities.PendingSwap) (*entities.PendingSwap, error)

	// CancelPending flips a slot's pending swap to cancelled, provided it is
	// still pending and its effective date is after asOf; the zero time
	// cancels unconditionally. Returns the cancelled row, or nil when
	// nothing was cancellable.
	CancelPending(ctx context.Context, ownerID uuid.UUID, position int, asOf time.Time) (*entities.PendingSwap, error)

	// MarkApplied flips a pending swap to applied. Returns false when the
	// row was no longer pending.
	MarkApplied(ctx context.Context, id int64) (bool, error)

	// ListDue returns pending swaps whose effective date is on or before
	// the given date, oldest first
	ListDue(ctx context.Context, date time.Time) ([]*entities.PendingSwap, error)
}

// SwapLedgerRepository defines the interface for the per-day swap quota ledger
type SwapLedgerRepository interface {
	// Record consumes the owner's swap quota for the date. A second record
	// for the same (owner, date) returns entities.ErrRateLimitExceeded.
	Record(ctx context.Context, ownerID uuid.UUID, date time.Time) error

	// GetByOwnerAndDate retrieves the quota entry for a date, or nil when
	// no swap was accepted that day
	GetByOwnerAndDate(ctx context.Context, ownerID uuid.UUID, date time.Time) (*entities.SwapLedgerEntry, error)
}

// SocialCurrencyRepository defines the read-side interface for social
// currency counts. Counter writes happen only inside RosterRepository.SetSlot.
type SocialCurrencyRepository interface {
	// GetCount retrieves a curator's count, or nil when the curator has
	// never held a slot
	GetCount(ctx context.Context, curatorID uuid.UUID) (*entities.SocialCurrencyCount, error)

	// ListAudit returns a curator's most recent count movements, newest
	// first
	ListAudit(ctx context.Context, curatorID uuid.UUID, limit int) ([]*entities.SocialCurrencyAuditEntry, error)

	// RecountFromSlots recomputes the count directly from roster slot rows,
	// bypassing the denormalized counter
	RecountFromSlots(ctx context.Context, curatorID uuid.UUID) (int, error)
}

// EventPublisher defines the interface for publishing events
type EventPublisher interface {
	Publish(event events.Event) error
}

// TransactionalEventPublisher buffers published events until the surrounding
// database transaction resolves: Flush after commit, Discard on rollback.
type TransactionalEventPublisher interface {
	EventPublisher

	// Flush publishes all buffered events
	Flush(ctx context.Context) error

	// Discard drops all buffered events without publishing
	Discard()
}
