package repository

import (
	"context"
	"fmt"

	"phlock/database"
	"phlock/domain/entities"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// SocialCurrencyRepository implements the interfaces.SocialCurrencyRepository interface
type SocialCurrencyRepository struct {
	q Queryable
}

// NewSocialCurrencyRepository creates a new social currency repository
func NewSocialCurrencyRepository(db *database.DB) *SocialCurrencyRepository {
	return &SocialCurrencyRepository{q: db.Pool}
}

// NewSocialCurrencyRepositoryScoped creates a social currency repository bound to an existing transaction
func NewSocialCurrencyRepositoryScoped(tx Queryable) *SocialCurrencyRepository {
	return &SocialCurrencyRepository{q: tx}
}

// GetCount retrieves a curator's slot count. Returns nil if the curator has
// never been rostered.
func (r *SocialCurrencyRepository) GetCount(ctx context.Context, curatorID uuid.UUID) (*entities.SocialCurrencyCount, error) {
	query := `
		SELECT curator_id, slot_count, updated_at
		FROM social_currency_counts
		WHERE curator_id = $1
	`

	var count entities.SocialCurrencyCount
	err := r.q.QueryRow(ctx, query, curatorID).Scan(
		&count.CuratorID,
		&count.SlotCount,
		&count.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get social currency count for curator %s: %w", curatorID, err)
	}

	return &count, nil
}

// ListAudit returns the curator's most recent counter moves, newest first.
func (r *SocialCurrencyRepository) ListAudit(ctx context.Context, curatorID uuid.UUID, limit int) ([]*entities.SocialCurrencyAuditEntry, error) {
	query := `
		SELECT id, curator_id, owner_id, position, delta, created_at
		FROM social_currency_audit
		WHERE curator_id = $1
		ORDER BY id DESC
		LIMIT $2
	`

	rows, err := r.q.Query(ctx, query, curatorID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list social currency audit for curator %s: %w", curatorID, err)
	}
	defer rows.Close()

	var entries []*entities.SocialCurrencyAuditEntry
	for rows.Next() {
		var entry entities.SocialCurrencyAuditEntry
		err := rows.Scan(
			&entry.ID,
			&entry.CuratorID,
			&entry.OwnerID,
			&entry.Position,
			&entry.Delta,
			&entry.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan social currency audit entry: %w", err)
		}
		entries = append(entries, &entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate social currency audit entries: %w", err)
	}

	return entries, nil
}

// RecountFromSlots counts the roster slots that currently reference the
// curator. Used to verify the stored counter against ground truth.
func (r *SocialCurrencyRepository) RecountFromSlots(ctx context.Context, curatorID uuid.UUID) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM roster_slots
		WHERE curator_id = $1
	`

	var count int
	err := r.q.QueryRow(ctx, query, curatorID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to recount slots for curator %s: %w", curatorID, err)
	}

	return count, nil
}
