package application_test

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"phlock/application"
	"phlock/domain/entities"
	"phlock/domain/interfaces"
)

// stubUnitOfWork satisfies application.UnitOfWork without a database.
type stubUnitOfWork struct {
	beginErr  error
	commitErr error

	begun      bool
	committed  bool
	rolledBack bool
}

func (s *stubUnitOfWork) Begin(ctx context.Context) error {
	s.begun = true
	return s.beginErr
}

func (s *stubUnitOfWork) Commit() error {
	if s.commitErr != nil {
		return s.commitErr
	}
	s.committed = true
	return nil
}

func (s *stubUnitOfWork) Rollback() error {
	s.rolledBack = true
	return nil
}

func (s *stubUnitOfWork) UserRepository() interfaces.UserRepository                     { return nil }
func (s *stubUnitOfWork) RosterRepository() interfaces.RosterRepository                 { return nil }
func (s *stubUnitOfWork) DailyPickRepository() interfaces.DailyPickRepository           { return nil }
func (s *stubUnitOfWork) PendingSwapRepository() interfaces.PendingSwapRepository       { return nil }
func (s *stubUnitOfWork) SwapLedgerRepository() interfaces.SwapLedgerRepository         { return nil }
func (s *stubUnitOfWork) SocialCurrencyRepository() interfaces.SocialCurrencyRepository { return nil }
func (s *stubUnitOfWork) EventBus() interfaces.EventPublisher                           { return nil }

// stubFactory hands out a fresh stub unit of work per Create call. The nth
// created unit of work gets the nth configured begin/commit error.
type stubFactory struct {
	beginErrs  []error
	commitErrs []error
	created    []*stubUnitOfWork
}

func (f *stubFactory) Create() application.UnitOfWork {
	uow := &stubUnitOfWork{}
	if n := len(f.created); n < len(f.beginErrs) {
		uow.beginErr = f.beginErrs[n]
	}
	if n := len(f.created); n < len(f.commitErrs) {
		uow.commitErr = f.commitErrs[n]
	}
	f.created = append(f.created, uow)
	return uow
}

func serializationFailure() error {
	return &pgconn.PgError{
		Code:    "40001",
		Message: "could not serialize access due to concurrent update",
	}
}

func TestRunInUnitOfWork_CommitsOnSuccess(t *testing.T) {
	t.Parallel()

	factory := &stubFactory{}
	calls := 0

	err := application.RunInUnitOfWork(context.Background(), factory, func(uow application.UnitOfWork) error {
		calls++
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 1, calls)
	require.Len(t, factory.created, 1)
	assert.True(t, factory.created[0].committed)
	assert.False(t, factory.created[0].rolledBack)
}

func TestRunInUnitOfWork_RollsBackOnError(t *testing.T) {
	t.Parallel()

	factory := &stubFactory{}
	boom := errors.New("boom")

	err := application.RunInUnitOfWork(context.Background(), factory, func(uow application.UnitOfWork) error {
		return boom
	})

	require.ErrorIs(t, err, boom)
	require.Len(t, factory.created, 1, "plain errors should not be retried")
	assert.False(t, factory.created[0].committed)
	assert.True(t, factory.created[0].rolledBack)
}

func TestRunInUnitOfWork_RetriesSerializationFailure(t *testing.T) {
	t.Parallel()

	factory := &stubFactory{}
	calls := 0

	err := application.RunInUnitOfWork(context.Background(), factory, func(uow application.UnitOfWork) error {
		calls++
		if calls < 3 {
			return serializationFailure()
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
	require.Len(t, factory.created, 3)
	assert.True(t, factory.created[0].rolledBack)
	assert.True(t, factory.created[1].rolledBack)
	assert.True(t, factory.created[2].committed)
}

func TestRunInUnitOfWork_GivesUpAfterRepeatedConflicts(t *testing.T) {
	t.Parallel()

	factory := &stubFactory{}
	calls := 0

	err := application.RunInUnitOfWork(context.Background(), factory, func(uow application.UnitOfWork) error {
		calls++
		return serializationFailure()
	})

	require.ErrorIs(t, err, entities.ErrConcurrentModification)
	assert.Equal(t, 3, calls)
}

func TestRunInUnitOfWork_RetriesCommitConflict(t *testing.T) {
	t.Parallel()

	// The first commit hits a serialization failure; the retry succeeds.
	factory := &stubFactory{commitErrs: []error{serializationFailure()}}
	calls := 0

	err := application.RunInUnitOfWork(context.Background(), factory, func(uow application.UnitOfWork) error {
		calls++
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 2, calls)
	require.Len(t, factory.created, 2)
	assert.False(t, factory.created[0].committed)
	assert.True(t, factory.created[0].rolledBack)
	assert.True(t, factory.created[1].committed)
}

func TestRunInUnitOfWork_BeginFailure(t *testing.T) {
	t.Parallel()

	boom := errors.New("connection refused")
	factory := &stubFactory{beginErrs: []error{boom}}

	err := application.RunInUnitOfWork(context.Background(), factory, func(uow application.UnitOfWork) error {
		t.Fatal("fn should not run when Begin fails")
		return nil
	})

	require.ErrorIs(t, err, boom)
	require.Len(t, factory.created, 1)
	assert.False(t, factory.created[0].committed)
	assert.False(t, factory.created[0].rolledBack)
}

func TestRunInUnitOfWork_CancelledContextStopsRetries(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	factory := &stubFactory{}
	calls := 0

	err := application.RunInUnitOfWork(ctx, factory, func(uow application.UnitOfWork) error {
		calls++
		return serializationFailure()
	})

	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls, "retry backoff should observe cancellation")
}
