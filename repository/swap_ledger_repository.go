package repository

import (
	"context"
	"fmt"
	"time"

	"phlock/database"
	"phlock/domain/entities"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// SwapLedgerRepository implements the interfaces.SwapLedgerRepository interface
type SwapLedgerRepository struct {
	q Queryable
}

// NewSwapLedgerRepository creates a new swap ledger repository
func NewSwapLedgerRepository(db *database.DB) *SwapLedgerRepository {
	return &SwapLedgerRepository{q: db.Pool}
}

// NewSwapLedgerRepositoryScoped creates a swap ledger repository bound to an existing transaction
func NewSwapLedgerRepositoryScoped(tx Queryable) *SwapLedgerRepository {
	return &SwapLedgerRepository{q: tx}
}

// Record consumes the owner's swap quota for a date. A second record on the
// same date returns entities.ErrRateLimitExceeded.
func (r *SwapLedgerRepository) Record(ctx context.Context, ownerID uuid.UUID, date time.Time) error {
	query := `
		INSERT INTO swap_ledger (owner_id, swap_date)
		VALUES ($1, $2)
	`

	if _, err := r.q.Exec(ctx, query, ownerID, entities.DateOf(date)); err != nil {
		if isUniqueViolation(err) {
			return entities.ErrRateLimitExceeded
		}
		return fmt.Errorf("failed to record swap for owner %s: %w", ownerID, err)
	}

	return nil
}

// GetByOwnerAndDate retrieves the owner's ledger entry for a date. Returns nil
// if the owner has not swapped that day.
func (r *SwapLedgerRepository) GetByOwnerAndDate(ctx context.Context, ownerID uuid.UUID, date time.Time) (*entities.SwapLedgerEntry, error) {
	query := `
		SELECT owner_id, swap_date, created_at
		FROM swap_ledger
		WHERE owner_id = $1 AND swap_date = $2
	`

	var entry entities.SwapLedgerEntry
	err := r.q.QueryRow(ctx, query, ownerID, entities.DateOf(date)).Scan(
		&entry.OwnerID,
		&entry.SwapDate,
		&entry.CreatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get swap ledger entry for owner %s: %w", ownerID, err)
	}

	return &entry, nil
}
