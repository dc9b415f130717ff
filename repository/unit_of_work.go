package repository

import (
	"context"
	"fmt"

	"phlock/application"
	"phlock/database"
	"phlock/domain/interfaces"

	"github.com/jackc/pgx/v5"
)

// unitOfWork implements the application.UnitOfWork interface
type unitOfWork struct {
	db                     *database.DB
	tx                     pgx.Tx
	ctx                    context.Context
	transactionalPublisher interfaces.TransactionalEventPublisher
	userRepo               interfaces.UserRepository
	rosterRepo             interfaces.RosterRepository
	dailyPickRepo          interfaces.DailyPickRepository
	pendingSwapRepo        interfaces.PendingSwapRepository
	swapLedgerRepo         interfaces.SwapLedgerRepository
	socialCurrencyRepo     interfaces.SocialCurrencyRepository
}

// NewUnitOfWorkFactory creates a new UnitOfWork factory
func NewUnitOfWorkFactory(db *database.DB) *unitOfWorkFactory {
	return &unitOfWorkFactory{
		db: db,
	}
}

type unitOfWorkFactory struct {
	db *database.DB
}

// CreateWithPublisher creates a new UnitOfWork with a specific transactional publisher
func (f *unitOfWorkFactory) CreateWithPublisher(transactionalPublisher interfaces.TransactionalEventPublisher) application.UnitOfWork {
	return &unitOfWork{
		db:                     f.db,
		transactionalPublisher: transactionalPublisher,
	}
}

// Begin starts a new transaction. Transactions run serializable so the
// roster, counter, and ledger writes that belong to one operation cannot
// interleave with a concurrent operation's reads.
func (u *unitOfWork) Begin(ctx context.Context) error {
	if u.tx != nil {
		return fmt.Errorf("transaction already started")
	}

	tx, err := u.db.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.Serializable})
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	u.tx = tx
	u.ctx = ctx

	// Create repositories bound to the transaction
	u.userRepo = NewUserRepositoryScoped(tx)
	u.rosterRepo = NewRosterRepositoryScoped(tx)
	u.dailyPickRepo = NewDailyPickRepositoryScoped(tx)
	u.pendingSwapRepo = NewPendingSwapRepositoryScoped(tx)
	u.swapLedgerRepo = NewSwapLedgerRepositoryScoped(tx)
	u.socialCurrencyRepo = NewSocialCurrencyRepositoryScoped(tx)

	return nil
}

// Commit commits the transaction
func (u *unitOfWork) Commit() error {
	if u.tx == nil {
		return fmt.Errorf("no transaction to commit")
	}

	err := u.tx.Commit(u.ctx)
	if err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	u.tx = nil

	// Flush pending events after successful commit
	if u.transactionalPublisher != nil {
		u.transactionalPublisher.Flush(u.ctx)
	}

	return nil
}

// Rollback rolls back the transaction
func (u *unitOfWork) Rollback() error {
	if u.tx == nil {
		return nil // Nothing to rollback
	}

	err := u.tx.Rollback(u.ctx)
	if err != nil && err != pgx.ErrTxClosed {
		return fmt.Errorf("failed to rollback transaction: %w", err)
	}

	u.tx = nil

	// Discard pending events on rollback
	if u.transactionalPublisher != nil {
		u.transactionalPublisher.Discard()
	}

	return nil
}

// UserRepository returns the user repository for this unit of work
func (u *unitOfWork) UserRepository() interfaces.UserRepository {
	if u.userRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.userRepo
}

// RosterRepository returns the roster repository for this unit of work
func (u *unitOfWork) RosterRepository() interfaces.RosterRepository {
	if u.rosterRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.rosterRepo
}

// DailyPickRepository returns the daily pick repository for this unit of work
func (u *unitOfWork) DailyPickRepository() interfaces.DailyPickRepository {
	if u.dailyPickRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.dailyPickRepo
}

// PendingSwapRepository returns the pending swap repository for this unit of work
func (u *unitOfWork) PendingSwapRepository() interfaces.PendingSwapRepository {
	if u.pendingSwapRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.pendingSwapRepo
}

// SwapLedgerRepository returns the swap ledger repository for this unit of work
func (u *unitOfWork) SwapLedgerRepository() interfaces.SwapLedgerRepository {
	if u.swapLedgerRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.swapLedgerRepo
}

// SocialCurrencyRepository returns the social currency repository for this unit of work
func (u *unitOfWork) SocialCurrencyRepository() interfaces.SocialCurrencyRepository {
	if u.socialCurrencyRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.socialCurrencyRepo
}

// EventBus returns the transactional event publisher for this unit of work
func (u *unitOfWork) EventBus() interfaces.EventPublisher {
	if u.transactionalPublisher == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.transactionalPublisher
}
