// Package sqldbtest opens migrated in-memory databases for store tests.
package sqldbtest

import (
	"context"
	"database/sql"
	"testing"

	"github.com/dwikikusuma/cosmo-market/pkg/sqldb"
	"github.com/stretchr/testify/require"
)

func OpenSQLite(t *testing.T) (*sql.DB, sqldb.Dialect) {
	t.Helper()
	ctx := context.Background()

	db, d, err := sqldb.Open(ctx, sqldb.Config{Driver: "sqlite", DSN: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, sqldb.Migrate(ctx, db, d))
	return db, d
}
