package entities

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestPendingSwap_IsPending(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		status PendingSwapStatus
		want   bool
	}{
		{
			name:   "pending swap",
			status: PendingSwapStatusPending,
			want:   true,
		},
		{
			name:   "applied swap",
			status: PendingSwapStatusApplied,
			want:   false,
		},
		{
			name:   "cancelled swap",
			status: PendingSwapStatusCancelled,
			want:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			swap := &PendingSwap{Status: tt.status}
			assert.Equal(t, tt.want, swap.IsPending())
			assert.Equal(t, !tt.want, swap.IsTerminal())
		})
	}
}

func TestPendingSwap_CancellableOn(t *testing.T) {
	t.Parallel()

	effective := time.Date(2025, 3, 11, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name   string
		status PendingSwapStatus
		date   time.Time
		want   bool
	}{
		{
			name:   "pending and before the effective date",
			status: PendingSwapStatusPending,
			date:   time.Date(2025, 3, 10, 19, 30, 0, 0, time.UTC),
			want:   true,
		},
		{
			name:   "pending but on the effective date",
			status: PendingSwapStatusPending,
			date:   time.Date(2025, 3, 11, 0, 0, 1, 0, time.UTC),
			want:   false,
		},
		{
			name:   "pending but after the effective date",
			status: PendingSwapStatusPending,
			date:   time.Date(2025, 3, 12, 8, 0, 0, 0, time.UTC),
			want:   false,
		},
		{
			name:   "already applied",
			status: PendingSwapStatusApplied,
			date:   time.Date(2025, 3, 10, 19, 30, 0, 0, time.UTC),
			want:   false,
		},
		{
			name:   "already cancelled",
			status: PendingSwapStatusCancelled,
			date:   time.Date(2025, 3, 10, 19, 30, 0, 0, time.UTC),
			want:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			swap := &PendingSwap{
				OwnerID:           uuid.New(),
				Position:          2,
				IncomingCuratorID: uuid.New(),
				EffectiveDate:     effective,
				Status:            tt.status,
			}

			assert.Equal(t, tt.want, swap.CancellableOn(tt.date))
		})
	}
}

func TestPendingSwap_DueOn(t *testing.T) {
	t.Parallel()

	effective := time.Date(2025, 3, 11, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name   string
		status PendingSwapStatus
		date   time.Time
		want   bool
	}{
		{
			name:   "due on its effective date",
			status: PendingSwapStatusPending,
			date:   effective,
			want:   true,
		},
		{
			name:   "still due after a missed boundary",
			status: PendingSwapStatusPending,
			date:   time.Date(2025, 3, 13, 0, 0, 0, 0, time.UTC),
			want:   true,
		},
		{
			name:   "not yet due the day before",
			status: PendingSwapStatusPending,
			date:   time.Date(2025, 3, 10, 23, 0, 0, 0, time.UTC),
			want:   false,
		},
		{
			name:   "terminal rows are never due",
			status: PendingSwapStatusApplied,
			date:   effective,
			want:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			swap := &PendingSwap{
				EffectiveDate: effective,
				Status:        tt.status,
			}

			assert.Equal(t, tt.want, swap.DueOn(tt.date))
		})
	}
}
