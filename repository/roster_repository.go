package repository

import (
	"context"
	"fmt"

	"phlock/database"
	"phlock/domain/entities"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// RosterRepository implements the interfaces.RosterRepository interface
type RosterRepository struct {
	q Queryable
}

// NewRosterRepository creates a new roster repository
func NewRosterRepository(db *database.DB) *RosterRepository {
	return &RosterRepository{q: db.Pool}
}

// NewRosterRepositoryScoped creates a roster repository bound to an existing transaction
func NewRosterRepositoryScoped(tx Queryable) *RosterRepository {
	return &RosterRepository{q: tx}
}

// GetSlots returns the owner's full roster in position order. Positions
// without a stored row are returned as empty slots without writing anything.
func (r *RosterRepository) GetSlots(ctx context.Context, ownerID uuid.UUID) ([]*entities.RosterSlot, error) {
	query := `
		SELECT owner_id, position, curator_id, assigned_at
		FROM roster_slots
		WHERE owner_id = $1
		ORDER BY position
	`

	rows, err := r.q.Query(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get roster slots for owner %s: %w", ownerID, err)
	}
	defer rows.Close()

	byPosition := make(map[int]*entities.RosterSlot, entities.RosterSize)
	for rows.Next() {
		var slot entities.RosterSlot
		err := rows.Scan(
			&slot.OwnerID,
			&slot.Position,
			&slot.CuratorID,
			&slot.AssignedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan roster slot: %w", err)
		}
		byPosition[slot.Position] = &slot
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate roster slots: %w", err)
	}

	slots := make([]*entities.RosterSlot, 0, entities.RosterSize)
	for pos := entities.MinPosition; pos <= entities.MaxPosition; pos++ {
		if slot, ok := byPosition[pos]; ok {
			slots = append(slots, slot)
			continue
		}
		slots = append(slots, &entities.RosterSlot{OwnerID: ownerID, Position: pos})
	}

	return slots, nil
}

// GetSlotForUpdate retrieves a single roster slot with a row lock held for the
// rest of the transaction. Returns nil if the slot row has not been
// materialized yet.
func (r *RosterRepository) GetSlotForUpdate(ctx context.Context, ownerID uuid.UUID, position int) (*entities.RosterSlot, error) {
	query := `
		SELECT owner_id, position, curator_id, assigned_at
		FROM roster_slots
		WHERE owner_id = $1 AND position = $2
		FOR UPDATE
	`

	var slot entities.RosterSlot
	err := r.q.QueryRow(ctx, query, ownerID, position).Scan(
		&slot.OwnerID,
		&slot.Position,
		&slot.CuratorID,
		&slot.AssignedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to lock roster slot %d for owner %s: %w", position, ownerID, err)
	}

	return &slot, nil
}

// SetSlot writes a slot's occupant and moves the social currency counters of
// the displaced and installed curators in the same transaction. Passing a nil
// curatorID vacates the slot. The returned SlotWrite carries the counter moves
// so callers can emit events for them.
func (r *RosterRepository) SetSlot(ctx context.Context, ownerID uuid.UUID, position int, curatorID *uuid.UUID) (*entities.SlotWrite, error) {
	current, err := r.GetSlotForUpdate(ctx, ownerID, position)
	if err != nil {
		return nil, err
	}
	if current == nil {
		return nil, entities.NewConsistencyViolation("roster slot %d for owner %s has no backing row", position, ownerID)
	}

	query := `
		UPDATE roster_slots
		SET curator_id = $3, assigned_at = NOW()
		WHERE owner_id = $1 AND position = $2
		RETURNING owner_id, position, curator_id, assigned_at
	`

	var slot entities.RosterSlot
	err = r.q.QueryRow(ctx, query, ownerID, position, curatorID).Scan(
		&slot.OwnerID,
		&slot.Position,
		&slot.CuratorID,
		&slot.AssignedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, entities.NewValidationError("incomingCuratorId", "already on roster")
		}
		return nil, fmt.Errorf("failed to set roster slot %d for owner %s: %w", position, ownerID, err)
	}

	write := &entities.SlotWrite{
		Slot:     &slot,
		Outgoing: current.CuratorID,
	}

	unchanged := current.CuratorID != nil && curatorID != nil && *current.CuratorID == *curatorID ||
		current.CuratorID == nil && curatorID == nil
	if unchanged {
		return write, nil
	}

	if current.CuratorID != nil {
		move, err := r.moveCounter(ctx, *current.CuratorID, ownerID, position, -1)
		if err != nil {
			return nil, err
		}
		write.Moves = append(write.Moves, *move)
	}
	if curatorID != nil {
		move, err := r.moveCounter(ctx, *curatorID, ownerID, position, +1)
		if err != nil {
			return nil, err
		}
		write.Moves = append(write.Moves, *move)
	}

	return write, nil
}

// ListOwnersReferencing returns the IDs of every owner whose roster currently
// includes the given curator.
func (r *RosterRepository) ListOwnersReferencing(ctx context.Context, curatorID uuid.UUID) ([]uuid.UUID, error) {
	query := `
		SELECT owner_id
		FROM roster_slots
		WHERE curator_id = $1
		ORDER BY owner_id
	`

	rows, err := r.q.Query(ctx, query, curatorID)
	if err != nil {
		return nil, fmt.Errorf("failed to list owners referencing curator %s: %w", curatorID, err)
	}
	defer rows.Close()

	var owners []uuid.UUID
	for rows.Next() {
		var ownerID uuid.UUID
		if err := rows.Scan(&ownerID); err != nil {
			return nil, fmt.Errorf("failed to scan owner id: %w", err)
		}
		owners = append(owners, ownerID)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate owners: %w", err)
	}

	return owners, nil
}

// moveCounter shifts a curator's slot count by delta and records the move in
// the audit table. A decrement that would take the count negative, or that
// finds no counter row at all, is a consistency violation and fails the
// transaction.
func (r *RosterRepository) moveCounter(ctx context.Context, curatorID uuid.UUID, ownerID uuid.UUID, position int, delta int) (*entities.CounterMove, error) {
	var query string
	if delta > 0 {
		query = `
			INSERT INTO social_currency_counts (curator_id, slot_count)
			VALUES ($1, 1)
			ON CONFLICT (curator_id) DO UPDATE
			SET slot_count = social_currency_counts.slot_count + 1, updated_at = NOW()
			RETURNING slot_count
		`
	} else {
		query = `
			UPDATE social_currency_counts
			SET slot_count = slot_count - 1, updated_at = NOW()
			WHERE curator_id = $1
			RETURNING slot_count
		`
	}

	var newCount int
	err := r.q.QueryRow(ctx, query, curatorID).Scan(&newCount)
	if err != nil {
		if err == pgx.ErrNoRows || isCheckViolation(err) {
			return nil, entities.NewConsistencyViolation("social currency count for curator %s cannot absorb delta %+d", curatorID, delta)
		}
		return nil, fmt.Errorf("failed to move social currency count for curator %s: %w", curatorID, err)
	}

	auditQuery := `
		INSERT INTO social_currency_audit (curator_id, owner_id, position, delta)
		VALUES ($1, $2, $3, $4)
	`
	if _, err := r.q.Exec(ctx, auditQuery, curatorID, ownerID, position, delta); err != nil {
		return nil, fmt.Errorf("failed to record social currency audit for curator %s: %w", curatorID, err)
	}

	return &entities.CounterMove{
		CuratorID: curatorID,
		Delta:     delta,
		NewCount:  newCount,
	}, nil
}
