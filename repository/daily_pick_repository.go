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

// DailyPickRepository implements the interfaces.DailyPickRepository interface
type DailyPickRepository struct {
	q Queryable
}

// NewDailyPickRepository creates a new daily pick repository
func NewDailyPickRepository(db *database.DB) *DailyPickRepository {
	return &DailyPickRepository{q: db.Pool}
}

// NewDailyPickRepositoryScoped creates a daily pick repository bound to an existing transaction
func NewDailyPickRepositoryScoped(tx Queryable) *DailyPickRepository {
	return &DailyPickRepository{q: tx}
}

// Create inserts the user's pick for its pick date. A second pick on the same
// date returns entities.ErrAlreadyPostedToday.
func (r *DailyPickRepository) Create(ctx context.Context, pick *entities.DailyPick) error {
	query := `
		INSERT INTO daily_picks (user_id, pick_date, item_ref)
		VALUES ($1, $2, $3)
		RETURNING created_at
	`

	err := r.q.QueryRow(ctx, query, pick.UserID, pick.PickDate, pick.ItemRef).Scan(&pick.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return entities.ErrAlreadyPostedToday
		}
		return fmt.Errorf("failed to create daily pick for user %s: %w", pick.UserID, err)
	}

	return nil
}

// GetByUserAndDate retrieves the user's pick for a given date. Returns nil if
// the user has not posted that day.
func (r *DailyPickRepository) GetByUserAndDate(ctx context.Context, userID uuid.UUID, date time.Time) (*entities.DailyPick, error) {
	query := `
		SELECT user_id, pick_date, item_ref, created_at
		FROM daily_picks
		WHERE user_id = $1 AND pick_date = $2
	`

	var pick entities.DailyPick
	err := r.q.QueryRow(ctx, query, userID, entities.DateOf(date)).Scan(
		&pick.UserID,
		&pick.PickDate,
		&pick.ItemRef,
		&pick.CreatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get daily pick for user %s: %w", userID, err)
	}

	return &pick, nil
}

// HasPostedOn reports whether the user posted a pick on the given date.
func (r *DailyPickRepository) HasPostedOn(ctx context.Context, userID uuid.UUID, date time.Time) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM daily_picks
			WHERE user_id = $1 AND pick_date = $2
		)
	`

	var posted bool
	err := r.q.QueryRow(ctx, query, userID, entities.DateOf(date)).Scan(&posted)
	if err != nil {
		return false, fmt.Errorf("failed to check daily pick for user %s: %w", userID, err)
	}

	return posted, nil
}

// ListByUsersOnDate returns the picks posted by any of the given users on the
// given date, keyed by user ID. Users without a pick that day are absent from
// the map.
func (r *DailyPickRepository) ListByUsersOnDate(ctx context.Context, userIDs []uuid.UUID, date time.Time) (map[uuid.UUID]*entities.DailyPick, error) {
	picks := make(map[uuid.UUID]*entities.DailyPick, len(userIDs))
	if len(userIDs) == 0 {
		return picks, nil
	}

	query := `
		SELECT user_id, pick_date, item_ref, created_at
		FROM daily_picks
		WHERE user_id = ANY($1) AND pick_date = $2
	`

	rows, err := r.q.Query(ctx, query, userIDs, entities.DateOf(date))
	if err != nil {
		return nil, fmt.Errorf("failed to list daily picks: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var pick entities.DailyPick
		err := rows.Scan(
			&pick.UserID,
			&pick.PickDate,
			&pick.ItemRef,
			&pick.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan daily pick: %w", err)
		}
		picks[pick.UserID] = &pick
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate daily picks: %w", err)
	}

	return picks, nil
}

// ListByUser returns the user's picks in reverse chronological order, up to
// limit entries.
func (r *DailyPickRepository) ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]*entities.DailyPick, error) {
	query := `
		SELECT user_id, pick_date, item_ref, created_at
		FROM daily_picks
		WHERE user_id = $1
		ORDER BY pick_date DESC
		LIMIT $2
	`

	rows, err := r.q.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list daily picks for user %s: %w", userID, err)
	}
	defer rows.Close()

	var picks []*entities.DailyPick
	for rows.Next() {
		var pick entities.DailyPick
		err := rows.Scan(
			&pick.UserID,
			&pick.PickDate,
			&pick.ItemRef,
			&pick.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan daily pick: %w", err)
		}
		picks = append(picks, &pick)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate daily picks: %w", err)
	}

	return picks, nil
}
