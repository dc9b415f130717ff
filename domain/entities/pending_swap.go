package entities

import (
	"time"

	"github.com/google/uuid"
)

// PendingSwapStatus is the lifecycle state of a deferred swap.
type PendingSwapStatus string

const (
	// PendingSwapStatusPending means the swap is waiting for its day boundary.
	PendingSwapStatusPending PendingSwapStatus = "pending"
	// PendingSwapStatusApplied means the day-boundary job applied the swap.
	PendingSwapStatusApplied PendingSwapStatus = "applied"
	// PendingSwapStatusCancelled means the owner cancelled before the boundary.
	PendingSwapStatusCancelled PendingSwapStatus = "cancelled"
)

// PendingSwap is a roster edit deferred to the next day boundary because the
// outgoing curator had already posted on the request day. At most one pending
// row exists per (owner, position); a newer request replaces it outright.
// applied and cancelled are terminal.
type PendingSwap struct {
	ID                int64             `db:"id"`
	OwnerID           uuid.UUID         `db:"owner_id"`
	Position          int               `db:"position"`
	OutgoingCuratorID *uuid.UUID        `db:"outgoing_curator_id"`
	IncomingCuratorID uuid.UUID         `db:"incoming_curator_id"`
	RequestedAt       time.Time         `db:"requested_at"`
	EffectiveDate     time.Time         `db:"effective_date"`
	Status            PendingSwapStatus `db:"status"`
}

// IsPending reports whether the swap is still waiting for its boundary.
func (p *PendingSwap) IsPending() bool {
	return p.Status == PendingSwapStatusPending
}

// IsTerminal reports whether the swap reached a final state.
func (p *PendingSwap) IsTerminal() bool {
	return p.Status == PendingSwapStatusApplied || p.Status == PendingSwapStatusCancelled
}

// CancellableOn reports whether the owner may still cancel on the given date:
// only while pending and strictly before the effective date. Once the
// effective day has dawned the boundary job owns the row.
func (p *PendingSwap) CancellableOn(date time.Time) bool {
	return p.IsPending() && DateOf(date).Before(DateOf(p.EffectiveDate))
}

// DueOn reports whether the boundary job running for the given date should
// apply this swap. Earlier effective dates are included so a missed boundary
// heals on the next run.
func (p *PendingSwap) DueOn(date time.Time) bool {
	return p.IsPending() && !DateOf(p.EffectiveDate).After(DateOf(date))
}
