package watchlist

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"testing"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// startPostgres brings up a disposable database with the project schema
// applied. Integration-only: skipped under -short.
func startPostgres(t *testing.T) *sql.DB {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping container-backed repository test in short mode")
	}

	ctx := context.Background()
	container, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("stockwatch_test"),
		tcpostgres.WithUsername("test"),
		tcpostgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = container.Terminate(ctx)
	})

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := sql.Open("pgx", connStr)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	schema, err := os.ReadFile(filepath.Join("..", "..", "db", "schema.sql"))
	require.NoError(t, err)
	_, err = db.ExecContext(ctx, string(schema))
	require.NoError(t, err)

	return db
}

func TestRepositoryUpsertPreservesAddedAt(t *testing.T) {
	db := startPostgres(t)
	repo := NewWatchlistRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.upsert(ctx, "user-1", "AAPL", "Apple"))

	entries, err := repo.listAll(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	firstAddedAt := entries[0].AddedAt

	// Re-adding updates the display name but keeps the original timestamp.
	require.NoError(t, repo.upsert(ctx, "user-1", "AAPL", "Apple Inc"))

	entries, err = repo.listAll(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "Apple Inc", entries[0].Company)
	assert.True(t, entries[0].AddedAt.Equal(firstAddedAt))
}

func TestRepositoryDeleteIsIdempotent(t *testing.T) {
	db := startPostgres(t)
	repo := NewWatchlistRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.upsert(ctx, "user-1", "TSLA", "Tesla"))
	require.NoError(t, repo.delete(ctx, "user-1", "TSLA"))
	require.NoError(t, repo.delete(ctx, "user-1", "TSLA"))

	exists, err := repo.exists(ctx, "user-1", "TSLA")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestRepositoryListAllOrdering(t *testing.T) {
	db := startPostgres(t)
	repo := NewWatchlistRepository(db)
	ctx := context.Background()

	base := time.Now().UTC().Truncate(time.Second)
	rows := []struct {
		symbol  string
		addedAt time.Time
	}{
		{"AAPL", base.Add(-2 * time.Hour)},
		{"MSFT", base.Add(-1 * time.Hour)},
		{"TSLA", base.Add(-1 * time.Hour)},
		{"NVDA", base},
	}
	for _, row := range rows {
		_, err := db.ExecContext(ctx, `
            INSERT INTO watchlist_entries (user_id, symbol, company, added_at)
            VALUES ($1, $2, $2, $3)
        `, "user-1", row.symbol, row.addedAt)
		require.NoError(t, err)
	}

	entries, err := repo.listAll(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, entries, 4)

	// Newest first; symbol breaks the tie deterministically.
	assert.Equal(t, "NVDA", entries[0].Symbol)
	assert.Equal(t, "MSFT", entries[1].Symbol)
	assert.Equal(t, "TSLA", entries[2].Symbol)
	assert.Equal(t, "AAPL", entries[3].Symbol)
}

func TestRepositoryScopesByUser(t *testing.T) {
	db := startPostgres(t)
	repo := NewWatchlistRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.upsert(ctx, "user-1", "AAPL", "Apple"))
	require.NoError(t, repo.upsert(ctx, "user-2", "MSFT", "Microsoft"))

	symbols, err := repo.listSymbols(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"AAPL"}, symbols)
}
