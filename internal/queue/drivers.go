package queue

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
	_ "modernc.org/sqlite"
)

const (
	// DriverSQLite is the pure Go SQLite driver (modernc.org/sqlite).
	DriverSQLite = "sqlite"
	// DriverSQLite3 is the cgo SQLite driver (github.com/mattn/go-sqlite3).
	DriverSQLite3 = "sqlite3"
)

func knownDriver(name string) bool {
	switch name {
	case DriverSQLite, DriverSQLite3:
		return true
	}
	return false
}

// IsMemoryDSN reports whether dsn names a transient in-memory database.
func IsMemoryDSN(dsn string) bool {
	dsn = strings.TrimSpace(dsn)
	return dsn == ":memory:" || strings.Contains(dsn, "mode=memory")
}

// openDB opens the connection described by opts and applies the connection
// pragmas. The pool is capped at one connection so a single engine owns a
// single backend connection, which also keeps in-memory databases coherent.
func openDB(ctx context.Context, opts Options) (*sql.DB, error) {
	db, err := sql.Open(opts.Driver, opts.connectionString())
	if err != nil {
		return nil, wrap(ErrStorage, "open database", err)
	}
	db.SetMaxOpenConns(1)

	pragmas := []string{
		fmt.Sprintf("PRAGMA busy_timeout = %d", opts.BusyTimeout/time.Millisecond),
	}
	if !IsMemoryDSN(opts.DSN) {
		pragmas = append(pragmas, "PRAGMA journal_mode=WAL")
	}
	for _, pragma := range pragmas {
		if _, execErr := db.ExecContext(ctx, pragma); execErr != nil {
			_ = db.Close()
			return nil, wrap(ErrStorage, fmt.Sprintf("apply pragma %q", pragma), execErr)
		}
	}
	return db, nil
}
