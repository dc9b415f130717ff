package application

import (
	"context"
	"time"

	"phlock/database"
	"phlock/domain/entities"

	log "github.com/sirupsen/logrus"
)

// maxTxAttempts bounds how often a serializable transaction is restarted
// before the conflict surfaces to the caller.
const maxTxAttempts = 3

// RunInUnitOfWork runs fn inside a fresh unit of work, committing on success
// and rolling back on error. Serialization failures restart fn on a new
// transaction; once the attempts are exhausted the caller sees
// entities.ErrConcurrentModification.
func RunInUnitOfWork(ctx context.Context, factory UnitOfWorkFactory, fn func(uow UnitOfWork) error) error {
	for attempt := 1; ; attempt++ {
		err := runOnce(ctx, factory, fn)
		if err == nil {
			return nil
		}
		if !database.IsSerializationFailure(err) {
			return err
		}
		if attempt >= maxTxAttempts {
			log.WithFields(log.Fields{
				"attempts": attempt,
				"error":    err,
			}).Warn("Giving up on serializable transaction after repeated conflicts")
			return entities.ErrConcurrentModification
		}

		log.WithFields(log.Fields{
			"attempt": attempt,
			"error":   err,
		}).Debug("Retrying transaction after serialization failure")

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Duration(attempt) * 25 * time.Millisecond):
		}
	}
}

func runOnce(ctx context.Context, factory UnitOfWorkFactory, fn func(uow UnitOfWork) error) error {
	uow := factory.Create()
	if err := uow.Begin(ctx); err != nil {
		return err
	}

	err := fn(uow)
	if err == nil {
		err = uow.Commit()
		if err == nil {
			return nil
		}
	}

	if rollbackErr := uow.Rollback(); rollbackErr != nil {
		log.WithError(rollbackErr).Error("Failed to roll back transaction")
	}

	return err
}
