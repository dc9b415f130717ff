package interfaces

import (
	"context"
	"time"

	"github.com/google/uuid"

	"phlock/domain/entities"
)

// PickService defines the interface for daily pick operations
type PickService interface {
	// RecordDailyPick appends the user's pick for the current date and
	// advances their streak. Returns entities.ErrAlreadyPostedToday when
	// the user has already posted.
	RecordDailyPick(ctx context.Context, userID uuid.UUID, itemRef string, now time.Time) (*entities.PickResult, error)

	// HasPostedOn reports whether the user posted on the given date
	HasPostedOn(ctx context.Context, userID uuid.UUID, date time.Time) (bool, error)

	// GetStreak returns the user's current streak state
	GetStreak(ctx context.Context, userID uuid.UUID) (*entities.User, error)
}

// SwapScheduler defines the interface for roster swap operations
type SwapScheduler interface {
	// RequestSwap validates and resolves a swap request: applied in place
	// when the outgoing curator has not posted today, queued for the next
	// day boundary when they have
	RequestSwap(ctx context.Context, ownerID uuid.UUID, position int, incomingCuratorID uuid.UUID, now time.Time) (*entities.SwapResult, error)

	// CancelPendingSwap withdraws the pending swap at a position before its
	// boundary. Cancelling when nothing is pending is a no-op, not an error.
	CancelPendingSwap(ctx context.Context, ownerID uuid.UUID, position int, now time.Time) (*entities.CancelResult, error)

	// ApplyPendingSwap applies one due pending swap to the roster. Returns
	// false when the roster write was skipped, such as when the slot no
	// longer holds the recorded outgoing curator.
	ApplyPendingSwap(ctx context.Context, swap *entities.PendingSwap) (bool, error)
}

// RosterService defines the read-side interface for roster and playlist views
type RosterService interface {
	// GetRoster returns the owner's five slots with posted-today
	// annotations and any queued swaps
	GetRoster(ctx context.Context, ownerID uuid.UUID, today time.Time) (*entities.RosterView, error)

	// GetPlaylist returns what each roster slot's curator picked on the
	// given date
	GetPlaylist(ctx context.Context, ownerID uuid.UUID, date time.Time) ([]*entities.PlaylistEntry, error)
}

// SocialCurrencyService defines the read-side interface for curator counts
type SocialCurrencyService interface {
	// GetCount returns the curator's current slot count. Curators that have
	// never held a slot report zero.
	GetCount(ctx context.Context, curatorID uuid.UUID) (*entities.SocialCurrencyCount, error)

	// GetAudit returns the curator's recent count movements, newest first
	GetAudit(ctx context.Context, curatorID uuid.UUID, limit int) ([]*entities.SocialCurrencyAuditEntry, error)

	// VerifyCount recomputes the count from roster slots and compares it to
	// the stored counter, returning a consistency violation on divergence
	VerifyCount(ctx context.Context, curatorID uuid.UUID) (*entities.SocialCurrencyCount, error)
}
