package application

import (
	"context"

	"phlock/domain/interfaces"
)

// UnitOfWork defines the interface for transactional repository operations.
// All repositories obtained from one UnitOfWork share a single serializable
// database transaction; events published through EventBus are buffered and
// flushed only after Commit succeeds.
type UnitOfWork interface {
	// Begin starts a new transaction
	Begin(ctx context.Context) error

	// Commit commits the transaction
	Commit() error

	// Rollback rolls back the transaction
	Rollback() error

	// Repository getters
	UserRepository() interfaces.UserRepository
	RosterRepository() interfaces.RosterRepository
	DailyPickRepository() interfaces.DailyPickRepository
	PendingSwapRepository() interfaces.PendingSwapRepository
	SwapLedgerRepository() interfaces.SwapLedgerRepository
	SocialCurrencyRepository() interfaces.SocialCurrencyRepository
	EventBus() interfaces.EventPublisher
}

// UnitOfWorkFactory defines the interface for creating UnitOfWork instances
type UnitOfWorkFactory interface {
	// Create creates a new UnitOfWork instance
	Create() UnitOfWork
}
