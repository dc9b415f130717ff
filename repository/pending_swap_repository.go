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

// PendingSwapRepository implements the interfaces.PendingSwapRepository interface
type PendingSwapRepository struct {
	q Queryable
}

// NewPendingSwapRepository creates a new pending swap repository
func NewPendingSwapRepository(db *database.DB) *PendingSwapRepository {
	return &PendingSwapRepository{q: db.Pool}
}

// NewPendingSwapRepositoryScoped creates a pending swap repository bound to an existing transaction
func NewPendingSwapRepositoryScoped(tx Queryable) *PendingSwapRepository {
	return &PendingSwapRepository{q: tx}
}

func scanPendingSwap(row pgx.Row) (*entities.PendingSwap, error) {
	var swap entities.PendingSwap
	err := row.Scan(
		&swap.ID,
		&swap.OwnerID,
		&swap.Position,
		&swap.OutgoingCuratorID,
		&swap.IncomingCuratorID,
		&swap.RequestedAt,
		&swap.EffectiveDate,
		&swap.Status,
	)
	if err != nil {
		return nil, err
	}
	return &swap, nil
}

// GetPendingByOwnerAndPosition retrieves the queued swap for a slot, if any.
func (r *PendingSwapRepository) GetPendingByOwnerAndPosition(ctx context.Context, ownerID uuid.UUID, position int) (*entities.PendingSwap, error) {
	query := `
		SELECT id, owner_id, position, outgoing_curator_id, incoming_curator_id, requested_at, effective_date, status
		FROM pending_swaps
		WHERE owner_id = $1 AND position = $2 AND status = 'pending'
	`

	swap, err := scanPendingSwap(r.q.QueryRow(ctx, query, ownerID, position))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get pending swap for owner %s position %d: %w", ownerID, position, err)
	}

	return swap, nil
}

// ListPendingByOwner returns the owner's queued swaps in position order.
func (r *PendingSwapRepository) ListPendingByOwner(ctx context.Context, ownerID uuid.UUID) ([]*entities.PendingSwap, error) {
	query := `
		SELECT id, owner_id, position, outgoing_curator_id, incoming_curator_id, requested_at, effective_date, status
		FROM pending_swaps
		WHERE owner_id = $1 AND status = 'pending'
		ORDER BY position
	`

	rows, err := r.q.Query(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending swaps for owner %s: %w", ownerID, err)
	}
	defer rows.Close()

	var swaps []*entities.PendingSwap
	for rows.Next() {
		swap, err := scanPendingSwap(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan pending swap: %w", err)
		}
		swaps = append(swaps, swap)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate pending swaps: %w", err)
	}

	return swaps, nil
}

// Upsert queues a swap for a slot, replacing any swap already queued there.
// Returns the stored row.
func (r *PendingSwapRepository) Upsert(ctx context.Context, swap *entities.PendingSwap) (*entities.PendingSwap, error) {
	query := `
		INSERT INTO pending_swaps (owner_id, position, outgoing_curator_id, incoming_curator_id, requested_at, effective_date, status)
		VALUES ($1, $2, $3, $4, $5, $6, 'pending')
		ON CONFLICT (owner_id, position) WHERE status = 'pending' DO UPDATE
		SET outgoing_curator_id = EXCLUDED.outgoing_curator_id,
		    incoming_curator_id = EXCLUDED.incoming_curator_id,
		    requested_at = EXCLUDED.requested_at,
		    effective_date = EXCLUDED.effective_date
		RETURNING id, owner_id, position, outgoing_curator_id, incoming_curator_id, requested_at, effective_date, status
	`

	stored, err := scanPendingSwap(r.q.QueryRow(ctx, query,
		swap.OwnerID,
		swap.Position,
		swap.OutgoingCuratorID,
		swap.IncomingCuratorID,
		swap.RequestedAt,
		swap.EffectiveDate,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to upsert pending swap for owner %s position %d: %w", swap.OwnerID, swap.Position, err)
	}

	return stored, nil
}

// CancelPending cancels the queued swap for a slot and returns it. When asOf
// is non-zero only swaps still cancellable on that date (effective strictly
// later) are touched; a zero asOf cancels unconditionally. Returns nil when
// nothing was cancelled.
func (r *PendingSwapRepository) CancelPending(ctx context.Context, ownerID uuid.UUID, position int, asOf time.Time) (*entities.PendingSwap, error) {
	query := `
		UPDATE pending_swaps
		SET status = 'cancelled'
		WHERE owner_id = $1 AND position = $2 AND status = 'pending'
		  AND ($3::date IS NULL OR effective_date > $3)
		RETURNING id, owner_id, position, outgoing_curator_id, incoming_curator_id, requested_at, effective_date, status
	`

	var asOfArg any
	if !asOf.IsZero() {
		asOfArg = entities.DateOf(asOf)
	}

	swap, err := scanPendingSwap(r.q.QueryRow(ctx, query, ownerID, position, asOfArg))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to cancel pending swap for owner %s position %d: %w", ownerID, position, err)
	}

	return swap, nil
}

// MarkApplied transitions a queued swap to applied. Returns false if the swap
// was no longer pending, which makes the boundary job safe to rerun.
func (r *PendingSwapRepository) MarkApplied(ctx context.Context, id int64) (bool, error) {
	query := `
		UPDATE pending_swaps
		SET status = 'applied'
		WHERE id = $1 AND status = 'pending'
	`

	result, err := r.q.Exec(ctx, query, id)
	if err != nil {
		return false, fmt.Errorf("failed to mark pending swap %d applied: %w", id, err)
	}

	return result.RowsAffected() > 0, nil
}

// ListDue returns every queued swap whose effective date is on or before the
// given date, oldest first.
func (r *PendingSwapRepository) ListDue(ctx context.Context, date time.Time) ([]*entities.PendingSwap, error) {
	query := `
		SELECT id, owner_id, position, outgoing_curator_id, incoming_curator_id, requested_at, effective_date, status
		FROM pending_swaps
		WHERE status = 'pending' AND effective_date <= $1
		ORDER BY effective_date, id
	`

	rows, err := r.q.Query(ctx, query, entities.DateOf(date))
	if err != nil {
		return nil, fmt.Errorf("failed to list due pending swaps: %w", err)
	}
	defer rows.Close()

	var swaps []*entities.PendingSwap
	for rows.Next() {
		swap, err := scanPendingSwap(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan pending swap: %w", err)
		}
		swaps = append(swaps, swap)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate pending swaps: %w", err)
	}

	return swaps, nil
}
