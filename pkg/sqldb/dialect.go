package sqldb

import (
	"fmt"
	"strconv"
	"strings"
)

type Dialect string

const (
	Postgres Dialect = "postgres"
	MySQL    Dialect = "mysql"
	SQLite   Dialect = "sqlite"
)

func ParseDialect(s string) (Dialect, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "postgres", "postgresql", "pgx":
		return Postgres, nil
	case "mysql":
		return MySQL, nil
	case "sqlite", "sqlite3":
		return SQLite, nil
	default:
		return "", fmt.Errorf("sqldb: unsupported driver %q", s)
	}
}

func (d Dialect) driverName() string {
	switch d {
	case Postgres:
		return "pgx"
	case MySQL:
		return "mysql"
	default:
		return sqliteDriverName
	}
}

// Rebind rewrites '?' placeholders into the dialect's form.
func (d Dialect) Rebind(query string) string {
	if d != Postgres {
		return query
	}

	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for i := 0; i < len(query); i++ {
		if query[i] == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteByte(query[i])
	}
	return b.String()
}

// ForUpdate returns the row-lock suffix for SELECTs inside a transaction.
// SQLite has none; its single connection serializes writers.
func (d Dialect) ForUpdate() string {
	if d == SQLite {
		return ""
	}
	return " FOR UPDATE"
}

// column types that differ between engines
func (d Dialect) types() *strings.Replacer {
	switch d {
	case Postgres:
		return strings.NewReplacer("{uuid}", "UUID", "{money}", "NUMERIC(19,4)", "{str}", "VARCHAR(255)")
	case MySQL:
		return strings.NewReplacer("{uuid}", "CHAR(36)", "{money}", "DECIMAL(19,4)", "{str}", "VARCHAR(255)")
	default:
		return strings.NewReplacer("{uuid}", "TEXT", "{money}", "TEXT", "{str}", "TEXT")
	}
}
