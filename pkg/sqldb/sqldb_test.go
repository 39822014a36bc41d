package sqldb

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openMemory(t *testing.T) (*sql.DB, Dialect) {
	t.Helper()
	db, d, err := Open(context.Background(), Config{Driver: "sqlite", DSN: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db, d
}

func TestMigrateIsIdempotent(t *testing.T) {
	ctx := context.Background()
	db, d := openMemory(t)

	require.NoError(t, Migrate(ctx, db, d))
	require.NoError(t, Migrate(ctx, db, d))

	var n int
	require.NoError(t, db.QueryRowContext(ctx, `SELECT COUNT(*) FROM schema_version`).Scan(&n))
	assert.Equal(t, len(AllMigrations), n)

	for _, table := range []string{"products", "carts", "cart_items", "orders", "order_items"} {
		var name string
		err := db.QueryRowContext(ctx,
			`SELECT name FROM sqlite_master WHERE type='table' AND name = ?`, table).Scan(&name)
		require.NoError(t, err, table)
	}
}

func TestExecTxRollsBack(t *testing.T) {
	ctx := context.Background()
	db, d := openMemory(t)
	require.NoError(t, Migrate(ctx, db, d))

	boom := errors.New("boom")
	err := ExecTx(ctx, db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `INSERT INTO carts (id, created_at_us) VALUES ('a', 1)`); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	var n int
	require.NoError(t, db.QueryRowContext(ctx, `SELECT COUNT(*) FROM carts`).Scan(&n))
	assert.Zero(t, n)
}

func TestUniqueViolationDetected(t *testing.T) {
	ctx := context.Background()
	db, d := openMemory(t)
	require.NoError(t, Migrate(ctx, db, d))

	_, err := db.ExecContext(ctx, `INSERT INTO carts (id, created_at_us) VALUES ('a', 1)`)
	require.NoError(t, err)
	_, err = db.ExecContext(ctx, `INSERT INTO carts (id, created_at_us) VALUES ('b', 1)`)
	require.Error(t, err)
	assert.True(t, IsUniqueViolation(err))
	assert.False(t, IsUniqueViolation(errors.New("boom")))
}

func TestRebind(t *testing.T) {
	q := `SELECT a FROM t WHERE x = ? AND y = ?`
	assert.Equal(t, `SELECT a FROM t WHERE x = $1 AND y = $2`, Postgres.Rebind(q))
	assert.Equal(t, q, MySQL.Rebind(q))
	assert.Equal(t, q, SQLite.Rebind(q))
}

func TestParseDialect(t *testing.T) {
	d, err := ParseDialect("PostgreSQL")
	require.NoError(t, err)
	assert.Equal(t, Postgres, d)

	_, err = ParseDialect("oracle")
	assert.Error(t, err)
}

func TestPostgresDSN(t *testing.T) {
	cfg := Config{Host: "db", Port: 5432, User: "cosmo", Pass: "p@ss", DB: "market"}
	assert.Equal(t, "postgres://cosmo:p%40ss@db:5432/market?sslmode=disable", cfg.PostgresDSN())
}
