package sqldb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
)

type Config struct {
	Driver string
	// DSN wins over the Postgres parts below when set.
	DSN string

	Host string
	Port int
	User string
	Pass string
	DB   string

	MaxOpenConns    int
	ConnMaxLifetime time.Duration
}

// PostgresDSN builds a pgx URL from the individual connection parts.
func (c Config) PostgresDSN() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.User, c.Pass),
		Host:     c.Host + ":" + strconv.Itoa(c.Port),
		Path:     "/" + c.DB,
		RawQuery: "sslmode=disable",
	}
	return u.String()
}

// Open connects, pings and tunes the pool for the configured driver.
func Open(ctx context.Context, cfg Config) (*sql.DB, Dialect, error) {
	d, err := ParseDialect(cfg.Driver)
	if err != nil {
		return nil, "", err
	}

	dsn := cfg.DSN
	if dsn == "" && d == Postgres {
		dsn = cfg.PostgresDSN()
	}
	if dsn == "" {
		return nil, "", fmt.Errorf("sqldb: empty DSN for driver %s", d)
	}

	db, err := sql.Open(d.driverName(), dsn)
	if err != nil {
		return nil, "", fmt.Errorf("open %s: %w", d, err)
	}

	if d == SQLite {
		db.SetMaxOpenConns(1)
		for _, pragma := range []string{"PRAGMA foreign_keys=ON", "PRAGMA busy_timeout=5000"} {
			if _, err := db.ExecContext(ctx, pragma); err != nil {
				_ = db.Close()
				return nil, "", fmt.Errorf("%s: %w", pragma, err)
			}
		}
	} else {
		maxOpen := cfg.MaxOpenConns
		if maxOpen <= 0 {
			maxOpen = 10
		}
		db.SetMaxOpenConns(maxOpen)
		db.SetMaxIdleConns(maxOpen)
		if cfg.ConnMaxLifetime > 0 {
			db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
		}
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, "", fmt.Errorf("ping %s: %w", d, err)
	}

	return db, d, nil
}

// ExecTx runs fn inside a transaction, committing on nil and rolling back otherwise.
func ExecTx(ctx context.Context, db *sql.DB, fn func(tx *sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return errors.Join(err, fmt.Errorf("rollback: %w", rbErr))
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}

	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		return myErr.Number == 1062
	}

	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "duplicate key")
}
