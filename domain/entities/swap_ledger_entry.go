package entities

import (
	"time"

	"github.com/google/uuid"
)

// SwapLedgerEntry records that an owner consumed their swap quota for a day.
// The (owner, date) pair is unique; inserting a second entry for the same day
// is how the rate limit is enforced.
type SwapLedgerEntry struct {
	OwnerID   uuid.UUID `db:"owner_id"`
	SwapDate  time.Time `db:"swap_date"`
	CreatedAt time.Time `db:"created_at"`
}
