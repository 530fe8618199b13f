package postgres

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/stepquest/stepquest-backend/internal/domain"
)

func TestInvoker_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	ctx := context.Background()

	var pgContainer *tcpostgres.PostgresContainer
	var err error

	func() {
		defer func() {
			if r := recover(); r != nil {
				t.Skipf("Skipping integration test due to panic (likely Docker issue): %v", r)
			}
		}()
		pgContainer, err = tcpostgres.Run(ctx,
			"postgres:15-alpine",
			tcpostgres.WithDatabase("testdb"),
			tcpostgres.WithUsername("test"),
			tcpostgres.WithPassword("test"),
			testcontainers.WithWaitStrategy(
				wait.ForLog("database system is ready to accept connections").
					WithOccurrence(2).
					WithStartupTimeout(60*time.Second)),
		)
	}()
	if err != nil {
		t.Skipf("Skipping integration test, could not start container: %v", err)
	}
	t.Cleanup(func() { _ = pgContainer.Terminate(ctx) })

	connString, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	// Apply migrations the same way cmd/migrate does.
	sqlDB, err := sql.Open("pgx", connString)
	require.NoError(t, err)
	require.NoError(t, goose.SetDialect("postgres"))
	require.NoError(t, goose.Up(sqlDB, filepath.Join("..", "..", "..", "migrations")))
	require.NoError(t, sqlDB.Close())

	pool, err := pgxpool.New(ctx, connString)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	inv := NewInvoker(pool)

	// Seed two users through the add_user procedure.
	rows, err := inv.Invoke(ctx, "add_user", []any{"alice1", "x"})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	alice := rows[0]["userid"].(int64)

	rows, err = inv.Invoke(ctx, "add_user", []any{"bob2", "x"})
	require.NoError(t, err)
	bob := rows[0]["userid"].(int64)

	t.Run("unknown procedure is a backend error", func(t *testing.T) {
		_, err := inv.Invoke(ctx, "no_such_procedure", []any{})
		require.Error(t, err)
		assert.True(t, errors.Is(err, domain.ErrBackend))
	})

	t.Run("session roundtrip", func(t *testing.T) {
		start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
		rows, err := inv.Invoke(ctx, "add_session", []any{alice, start, start.Add(time.Hour), int64(3000)})
		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.Equal(t, domain.ResultRecorded, rows[0]["result"])

		rows, err = inv.Invoke(ctx, "get_steps_by_date", []any{alice, start})
		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.EqualValues(t, 3000, rows[0]["steps"])
	})

	t.Run("friend lifecycle", func(t *testing.T) {
		rows, err := inv.Invoke(ctx, "request_friend", []any{alice, bob})
		require.NoError(t, err)
		assert.Equal(t, domain.ResultRequested, rows[0]["result"])

		// Idempotent re-request, no duplicate pair.
		rows, err = inv.Invoke(ctx, "request_friend", []any{alice, bob})
		require.NoError(t, err)
		assert.Equal(t, domain.ResultPending, rows[0]["result"])

		// Requester cannot accept their own request.
		rows, err = inv.Invoke(ctx, "accept_friend", []any{alice, bob})
		require.NoError(t, err)
		assert.Equal(t, domain.ResultNoPending, rows[0]["result"])

		rows, err = inv.Invoke(ctx, "accept_friend", []any{bob, alice})
		require.NoError(t, err)
		assert.Equal(t, domain.ResultAccepted, rows[0]["result"])

		rows, err = inv.Invoke(ctx, "get_friends", []any{alice})
		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.Equal(t, "bob2", rows[0]["username"])

		rows, err = inv.Invoke(ctx, "remove_friend", []any{alice, bob})
		require.NoError(t, err)
		assert.Equal(t, domain.ResultRemoved, rows[0]["result"])
	})

	t.Run("territory claim constraint", func(t *testing.T) {
		rows, err := inv.Invoke(ctx, "claim_territory", []any{alice, 59.33, 18.06})
		require.NoError(t, err)
		assert.Equal(t, domain.ResultClaimed, rows[0]["result"])

		rows, err = inv.Invoke(ctx, "claim_territory", []any{alice, 59.33, 18.06})
		require.NoError(t, err)
		assert.Equal(t, domain.ResultAlreadyOwned, rows[0]["result"])

		rows, err = inv.Invoke(ctx, "get_territory", []any{alice})
		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.EqualValues(t, 0, rows[0]["level"])
	})

	t.Run("timeout maps to connection error", func(t *testing.T) {
		shortCtx, cancel := context.WithTimeout(ctx, time.Nanosecond)
		defer cancel()
		_, err := inv.Invoke(shortCtx, "get_items", []any{alice})
		require.Error(t, err)
		assert.True(t, errors.Is(err, domain.ErrConnection))
	})
}
