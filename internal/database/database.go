package database

import (
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

// Supported driver names.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "pgx"
)

// Connect opens the database for the given driver. SQLite is limited to a single
// connection so write transactions are serialized.
func Connect(driver, dsn string) (*sqlx.DB, error) {
	switch driver {
	case DriverSQLite, DriverPostgres:
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}
	db, err := sqlx.Connect(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if driver == DriverSQLite {
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(10)
	}
	return db, nil
}

type driverNamer interface {
	DriverName() string
}

// IsPostgres reports whether q talks to PostgreSQL.
func IsPostgres(q driverNamer) bool {
	return q.DriverName() == DriverPostgres
}

// ForUpdate returns the row-lock suffix for the dialect behind q.
// SQLite locks the whole database for writers, so it needs none.
func ForUpdate(q driverNamer) string {
	if IsPostgres(q) {
		return " FOR UPDATE"
	}
	return ""
}
