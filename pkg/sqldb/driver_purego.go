//go:build !sqlite_cgo

package sqldb

import _ "modernc.org/sqlite"

const sqliteDriverName = "sqlite"
