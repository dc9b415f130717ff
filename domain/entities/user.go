package entities

import (
	"time"

	"github.com/google/uuid"
)

// StreakMilestoneInterval is the streak length interval that counts as a
// notable milestone (7, 14, 21, ...).
const StreakMilestoneInterval = 7

// User holds the engine-owned slice of a user: posting streak state.
// Identity, profile and session data live outside this service.
type User struct {
	ID           uuid.UUID  `db:"id"`
	StreakCount  int        `db:"streak_count"`
	LastPickDate *time.Time `db:"last_pick_date"`
	CreatedAt    time.Time  `db:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at"`
}

// ApplyPick advances the streak state for a daily pick recorded on pickDate.
// Consecutive-day picks extend the streak, a gap (or first ever pick) starts
// it at 1, and a pick dated on or before the last recorded date is a no-op:
// backdated inserts are rejected upstream and must not rewind state.
// Returns true when the streak state changed.
func (u *User) ApplyPick(pickDate time.Time) bool {
	date := DateOf(pickDate)

	if u.LastPickDate != nil {
		last := DateOf(*u.LastPickDate)
		if !date.After(last) {
			return false
		}
		if last.Equal(PrevDay(date)) {
			u.StreakCount++
			u.LastPickDate = &date
			return true
		}
	}

	u.StreakCount = 1
	u.LastPickDate = &date
	return true
}

// OnStreakMilestone reports whether the current streak sits exactly on a
// notable threshold (a positive multiple of StreakMilestoneInterval).
func (u *User) OnStreakMilestone() bool {
	return u.StreakCount > 0 && u.StreakCount%StreakMilestoneInterval == 0
}
