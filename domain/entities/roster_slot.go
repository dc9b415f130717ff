package entities

import (
	"time"

	"github.com/google/uuid"
)

// Roster positions are fixed: every owner has exactly five slots.
const (
	MinPosition = 1
	MaxPosition = 5
	RosterSize  = 5
)

// ValidPosition reports whether p is a legal roster position.
func ValidPosition(p int) bool {
	return p >= MinPosition && p <= MaxPosition
}

// RosterSlot is one of an owner's five curator slots. An empty slot is a
// valid state (CuratorID nil), not a missing row: slots are never deleted
// while the owner exists.
type RosterSlot struct {
	OwnerID    uuid.UUID  `db:"owner_id"`
	Position   int        `db:"position"`
	CuratorID  *uuid.UUID `db:"curator_id"`
	AssignedAt time.Time  `db:"assigned_at"`
}

// IsEmpty reports whether the slot has no curator assigned.
func (s *RosterSlot) IsEmpty() bool {
	return s.CuratorID == nil
}

// HoldsCurator reports whether the slot is occupied by the given curator.
func (s *RosterSlot) HoldsCurator(curatorID uuid.UUID) bool {
	return s.CuratorID != nil && *s.CuratorID == curatorID
}

// RosterSlotDetail is a read-model slot annotated with the outgoing-visibility
// fact the swap scheduler decides on: whether the occupant has posted today.
type RosterSlotDetail struct {
	Position           int
	CuratorID          *uuid.UUID
	CuratorPostedToday bool
}

// PlaylistEntry is one day's pick from one roster slot. ItemRef is nil when
// the slot's curator has not posted on the requested date (or the slot is
// empty).
type PlaylistEntry struct {
	Position  int
	CuratorID *uuid.UUID
	ItemRef   *string
}

// RosterView is the full read model of an owner's roster: all five slots
// with posted-today annotations, plus any swaps still waiting for their
// day boundary.
type RosterView struct {
	OwnerID uuid.UUID
	Slots   []*RosterSlotDetail
	Pending []*PendingSwap
}

// SlotWrite reports what a roster slot write changed: the slot's new state,
// the curator it displaced, and the counter moves that went with it.
type SlotWrite struct {
	Slot     *RosterSlot
	Outgoing *uuid.UUID
	Moves    []CounterMove
}
