package entities

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// DailyPick is the one item a user curated on a calendar date. Rows are
// immutable once written; uniqueness per (user, date) is the ledger's core
// invariant and is enforced by the storage schema, not by callers.
type DailyPick struct {
	UserID    uuid.UUID `db:"user_id"`
	PickDate  time.Time `db:"pick_date"`
	ItemRef   string    `db:"item_ref"`
	CreatedAt time.Time `db:"created_at"`
}

// NewDailyPick creates a DailyPick with validation.
func NewDailyPick(userID uuid.UUID, pickDate time.Time, itemRef string) (*DailyPick, error) {
	if userID == uuid.Nil {
		return nil, NewValidationError("userId", "cannot be empty")
	}
	if pickDate.IsZero() {
		return nil, NewValidationError("pickDate", "cannot be zero")
	}
	if strings.TrimSpace(itemRef) == "" {
		return nil, NewValidationError("itemRef", "cannot be empty")
	}

	return &DailyPick{
		UserID:   userID,
		PickDate: DateOf(pickDate),
		ItemRef:  itemRef,
	}, nil
}

// PickResult is returned when a daily pick is accepted.
type PickResult struct {
	Pick *DailyPick
	// StreakCount is the user's streak after this pick was applied.
	StreakCount int
	// Milestone is true when the new streak sits on a milestone threshold.
	Milestone bool
}
