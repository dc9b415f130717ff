package repository

import (
	"context"
	"fmt"

	"phlock/database"
	"phlock/domain/entities"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// UserRepository implements the interfaces.UserRepository interface
type UserRepository struct {
	q Queryable
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *database.DB) *UserRepository {
	return &UserRepository{q: db.Pool}
}

// NewUserRepositoryScoped creates a user repository bound to an existing transaction
func NewUserRepositoryScoped(tx Queryable) *UserRepository {
	return &UserRepository{q: tx}
}

// GetByID retrieves a user by their ID. Returns nil if the user does not exist.
func (r *UserRepository) GetByID(ctx context.Context, userID uuid.UUID) (*entities.User, error) {
	query := `
		SELECT id, streak_count, last_pick_date, created_at, updated_at
		FROM users
		WHERE id = $1
	`

	var user entities.User
	err := r.q.QueryRow(ctx, query, userID).Scan(
		&user.ID,
		&user.StreakCount,
		&user.LastPickDate,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user %s: %w", userID, err)
	}

	return &user, nil
}

// GetForUpdate retrieves a user by their ID with a row lock held for the rest
// of the transaction. Returns nil if the user does not exist.
func (r *UserRepository) GetForUpdate(ctx context.Context, userID uuid.UUID) (*entities.User, error) {
	query := `
		SELECT id, streak_count, last_pick_date, created_at, updated_at
		FROM users
		WHERE id = $1
		FOR UPDATE
	`

	var user entities.User
	err := r.q.QueryRow(ctx, query, userID).Scan(
		&user.ID,
		&user.StreakCount,
		&user.LastPickDate,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to lock user %s: %w", userID, err)
	}

	return &user, nil
}

// GetOrCreate retrieves a user, creating them with an empty roster and zero
// streak on first sight.
func (r *UserRepository) GetOrCreate(ctx context.Context, userID uuid.UUID) (*entities.User, error) {
	userQuery := `
		INSERT INTO users (id)
		VALUES ($1)
		ON CONFLICT (id) DO NOTHING
	`
	if _, err := r.q.Exec(ctx, userQuery, userID); err != nil {
		return nil, fmt.Errorf("failed to create user %s: %w", userID, err)
	}

	// Materialize the five roster slot rows so later swaps can lock them.
	slotsQuery := `
		INSERT INTO roster_slots (owner_id, position)
		SELECT $1, generate_series($2::int, $3::int)
		ON CONFLICT (owner_id, position) DO NOTHING
	`
	if _, err := r.q.Exec(ctx, slotsQuery, userID, entities.MinPosition, entities.MaxPosition); err != nil {
		return nil, fmt.Errorf("failed to create roster slots for user %s: %w", userID, err)
	}

	user, err := r.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, fmt.Errorf("user %s missing after upsert", userID)
	}

	return user, nil
}

// UpdateStreak persists the user's streak counter and last pick date.
func (r *UserRepository) UpdateStreak(ctx context.Context, user *entities.User) error {
	query := `
		UPDATE users
		SET streak_count = $1, last_pick_date = $2, updated_at = NOW()
		WHERE id = $3
	`

	result, err := r.q.Exec(ctx, query, user.StreakCount, user.LastPickDate, user.ID)
	if err != nil {
		return fmt.Errorf("failed to update streak for user %s: %w", user.ID, err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("user %s not found", user.ID)
	}

	return nil
}
