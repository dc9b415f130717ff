package testutil

import (
	"context"
	"testing"
	"time"

	"phlock/database"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
)

const containerStopTimeout = 30 * time.Second

// TestDatabase is a migrated Postgres instance backed by a throwaway
// container. Every SetupTestDatabase call gets its own container, so
// tests never share state.
type TestDatabase struct {
	DB *database.DB
}

// SetupTestDatabase starts a Postgres container, applies all migrations,
// and opens a pool against it. Teardown is registered on t; the pool is
// closed before the container terminates.
func SetupTestDatabase(t *testing.T) *TestDatabase {
	t.Helper()
	ctx := context.Background()

	container, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("phlock_test"),
		postgres.WithUsername("phlock"),
		postgres.WithPassword("phlock"),
		postgres.BasicWaitStrategies(),
		testcontainers.WithLabels(map[string]string{"phlock-test": t.Name()}),
	)
	require.NoError(t, err, "starting postgres container")
	t.Cleanup(func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), containerStopTimeout)
		defer cancel()
		if err := container.Terminate(stopCtx); err != nil {
			t.Logf("terminating postgres container: %v", err)
		}
	})

	url, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	// Migrate before opening the pool so the first connection already
	// sees the full schema.
	require.NoError(t, database.RunMigrationsWithURL(url))

	db, err := database.NewConnection(ctx, url)
	require.NoError(t, err)
	t.Cleanup(db.Close)

	return &TestDatabase{DB: db}
}
