package postgres

import (
	"context"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/linkmarket/link-server/internal/store"
	"github.com/linkmarket/link-server/internal/store/storetest"
)

// setupTestContainer starts a disposable PostgreSQL and returns its connection string.
// It skips the test in -short mode or when Docker is not reachable.
func setupTestContainer(t *testing.T, ctx context.Context) string {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping postgres integration test in short mode")
	}

	ctr, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("link_test"),
		tcpostgres.WithUsername("link"),
		tcpostgres.WithPassword("link"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	if err != nil {
		t.Skipf("postgres container unavailable: %v", err)
	}
	t.Cleanup(func() { _ = testcontainers.TerminateContainer(ctr) })

	connStr, err := ctr.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)
	return connStr
}

func TestStoreSuite(t *testing.T) {
	ctx := context.Background()
	connStr := setupTestContainer(t, ctx)
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	s, err := Open(ctx, Config{URL: connStr, MaxConns: 5}, logger)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	storetest.Run(t, func(t *testing.T) store.Store {
		_, err := s.pool.Exec(ctx, `TRUNCATE users, listings, listing_media, listing_views,
			listing_interests, listing_reposts, comments, notifications CASCADE`)
		require.NoError(t, err)
		return s
	})
}

func TestMigrate_Idempotent(t *testing.T) {
	ctx := context.Background()
	connStr := setupTestContainer(t, ctx)

	require.NoError(t, Migrate(connStr))
	require.NoError(t, Migrate(connStr))
}

func TestNormalizeTextFunction(t *testing.T) {
	ctx := context.Background()
	connStr := setupTestContainer(t, ctx)
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	s, err := Open(ctx, Config{URL: connStr}, logger)
	require.NoError(t, err)
	defer s.Close()

	var got string
	require.NoError(t, s.pool.QueryRow(ctx, `SELECT normalize_text($1)`, "  Éléphant   l’Rosé ").Scan(&got))
	require.Equal(t, "elephant l'rose", got)
}
