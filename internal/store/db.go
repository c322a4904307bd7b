package store

import (
	"database/sql"
	"fmt"

	_ "github.com/duckdb/duckdb-go/v2"
)

const driverName = "duckdb"

// NewDB opens the DuckDB database at path. ":memory:" opens a database that
// lives as long as the returned handle.
func NewDB(path string) (*sql.DB, error) {
	db, err := sql.Open(driverName, path)
	if err != nil {
		return nil, fmt.Errorf("failed to open duckdb database %q: %w", path, err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to connect to duckdb database %q: %w", path, err)
	}
	return db, nil
}
