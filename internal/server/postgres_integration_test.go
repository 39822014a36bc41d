//go:build integration

package server

import (
	"context"
	"testing"
	"time"

	"github.com/dwikikusuma/cosmo-market/pkg/sqldb"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

func TestPostgres_CartAndOrderFlows(t *testing.T) {
	ctx := context.Background()

	pgC, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("cosmo_market"),
		postgres.WithUsername("postgres"),
		postgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = pgC.Terminate(context.Background()) })

	dsn, err := pgC.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, d, err := sqldb.Open(ctx, sqldb.Config{Driver: "postgres", DSN: dsn, MaxOpenConns: 5})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, sqldb.Migrate(ctx, db, d))
	require.NoError(t, sqldb.Migrate(ctx, db, d))

	srv := newServer(t, db, d)

	t.Run("cart", func(t *testing.T) {
		runCartFlow(t, client{t: t, srv: srv}, "Star Tuna PG")
	})
	t.Run("order", func(t *testing.T) {
		runOrderFlow(t, client{t: t, srv: srv}, "Comet Kibble PG")
	})
}
