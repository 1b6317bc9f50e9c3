package database

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
	tc "github.com/testcontainers/testcontainers-go"
	tclog "github.com/testcontainers/testcontainers-go/log"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
)

type nopLogger struct{}

func (*nopLogger) Printf(_ string, _ ...any) {}

var _ tclog.Logger = (*nopLogger)(nil)

var (
	dbName = "testdb"
	dbUser = "testuser"
	dbPass = "testpass"
)

// SetupTestDBContainer starts a Postgres container and returns a pool
// connected to it without running migrations.
func SetupTestDBContainer(t *testing.T, ctx context.Context) (*pgxpool.Pool, func()) {
	t.Helper()

	postgresContainer, err := postgres.Run(
		ctx,
		"postgres:16-alpine",
		postgres.WithDatabase(dbName),
		postgres.WithUsername(dbUser),
		postgres.WithPassword(dbPass),
		postgres.BasicWaitStrategies(),
		tc.WithLogger(&nopLogger{}),
	)
	require.NoError(t, err)

	connStr, err := postgresContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	pool, err := pgxpool.New(ctx, connStr)
	require.NoError(t, err)

	cleanupFunc := func() {
		pool.Close()
		tc.CleanupContainer(t, postgresContainer)
	}

	return pool, cleanupFunc
}

// SetupTestDB creates a Postgres container using testcontainers and runs
// migrations, including a full rollback and reapply.
func SetupTestDB(t *testing.T) (*pgxpool.Pool, func()) {
	t.Helper()

	pool, cleanupFunc := SetupTestDBContainer(t, context.Background())
	connStr := pool.Config().ConnString()

	require.NoError(t, MigrateUp(connStr))
	require.NoError(t, MigrateDown(connStr, 0))
	require.NoError(t, MigrateUp(connStr))

	return pool, cleanupFunc
}
