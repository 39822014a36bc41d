package sqldb

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Masterminds/semver/v3"
)

type Migration struct {
	Version string
	// Up statements are executed one by one; MySQL rejects multi-statement Exec.
	Up []string
}

var AllMigrations = []Migration{
	{
		Version: "1.0.0",
		Up: []string{
			`CREATE TABLE IF NOT EXISTS products (
				id {uuid} PRIMARY KEY,
				name {str} NOT NULL UNIQUE,
				description {str} NOT NULL DEFAULT '',
				category VARCHAR(32) NOT NULL,
				available_quantity INTEGER NOT NULL CHECK (available_quantity >= 0),
				price {money} NOT NULL,
				created_at_us BIGINT NOT NULL,
				updated_at_us BIGINT NOT NULL
			)`,
			`CREATE TABLE IF NOT EXISTS carts (
				id {uuid} PRIMARY KEY,
				created_at_us BIGINT NOT NULL UNIQUE
			)`,
			`CREATE TABLE IF NOT EXISTS cart_items (
				id {uuid} PRIMARY KEY,
				cart_id {uuid} NOT NULL,
				product_id {uuid} NOT NULL,
				quantity INTEGER NOT NULL CHECK (quantity >= 1),
				line_no INTEGER NOT NULL,
				FOREIGN KEY (cart_id) REFERENCES carts(id) ON DELETE CASCADE
			)`,
			`CREATE INDEX idx_cart_items_cart ON cart_items(cart_id, line_no)`,
			`CREATE TABLE IF NOT EXISTS orders (
				id {uuid} PRIMARY KEY,
				created_at_us BIGINT NOT NULL UNIQUE,
				total_price {money} NOT NULL
			)`,
			`CREATE TABLE IF NOT EXISTS order_items (
				id {uuid} PRIMARY KEY,
				order_id {uuid} NOT NULL,
				product_id {uuid} NOT NULL,
				quantity INTEGER NOT NULL CHECK (quantity >= 1),
				unit_price {money} NOT NULL,
				line_no INTEGER NOT NULL,
				FOREIGN KEY (order_id) REFERENCES orders(id) ON DELETE CASCADE
			)`,
			`CREATE INDEX idx_order_items_order ON order_items(order_id, line_no)`,
		},
	},
}

// Migrate applies every migration newer than the highest recorded version.
func Migrate(ctx context.Context, db *sql.DB, d Dialect) error {
	if _, err := db.ExecContext(ctx, d.types().Replace(
		`CREATE TABLE IF NOT EXISTS schema_version (version {str} PRIMARY KEY, applied_at_us BIGINT NOT NULL)`,
	)); err != nil {
		return fmt.Errorf("create schema_version: %w", err)
	}

	current, err := currentVersion(ctx, db)
	if err != nil {
		return err
	}

	for _, m := range AllMigrations {
		v, err := semver.NewVersion(m.Version)
		if err != nil {
			return fmt.Errorf("invalid migration version %s: %w", m.Version, err)
		}
		if !current.LessThan(v) {
			continue
		}

		for i, stmt := range m.Up {
			if _, err := db.ExecContext(ctx, d.types().Replace(stmt)); err != nil {
				return fmt.Errorf("apply migration %s step %d: %w", m.Version, i, err)
			}
		}

		if _, err := db.ExecContext(ctx,
			d.Rebind(`INSERT INTO schema_version (version, applied_at_us) VALUES (?, ?)`),
			m.Version, time.Now().UnixMicro(),
		); err != nil {
			return fmt.Errorf("record migration %s: %w", m.Version, err)
		}
		current = v
	}

	return nil
}

func currentVersion(ctx context.Context, db *sql.DB) (*semver.Version, error) {
	rows, err := db.QueryContext(ctx, `SELECT version FROM schema_version`)
	if err != nil {
		return nil, fmt.Errorf("read schema_version: %w", err)
	}
	defer rows.Close()

	current := semver.MustParse("0.0.0")
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, err
		}
		v, err := semver.NewVersion(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid schema version %s: %w", raw, err)
		}
		if v.GreaterThan(current) {
			current = v
		}
	}
	return current, rows.Err()
}
