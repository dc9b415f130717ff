package entities

import (
	"time"

	"github.com/google/uuid"
)

// SocialCurrencyCount is the denormalized number of roster slots across all
// owners that currently hold the curator. It moves only in lockstep with slot
// writes and never goes negative.
type SocialCurrencyCount struct {
	CuratorID uuid.UUID `db:"curator_id"`
	SlotCount int       `db:"slot_count"`
	UpdatedAt time.Time `db:"updated_at"`
}

// SocialCurrencyAuditEntry is one row of the per-curator audit trail: which
// owner's slot write moved the count, in which direction, and when.
type SocialCurrencyAuditEntry struct {
	ID        int64     `db:"id"`
	CuratorID uuid.UUID `db:"curator_id"`
	OwnerID   uuid.UUID `db:"owner_id"`
	Position  int       `db:"position"`
	Delta     int       `db:"delta"`
	CreatedAt time.Time `db:"created_at"`
}

// CounterMove is one social currency count change applied by a slot write.
type CounterMove struct {
	CuratorID uuid.UUID
	Delta     int
	NewCount  int
}
