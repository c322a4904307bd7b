package store

import (
	"context"
	"database/sql"

	"github.com/andgen/jobsystem/internal/store/migrations"
)

// Store provides access to all storage repositories.
type Store struct {
	db      *sql.DB
	history *HistoryStore
}

func NewStore(db *sql.DB) *Store {
	return &Store{
		db:      db,
		history: NewHistoryStore(NewQueryInterceptor(db)),
	}
}

// Open opens the database at path, brings its schema up to date and returns
// the store.
func Open(ctx context.Context, path string) (*Store, error) {
	db, err := NewDB(path)
	if err != nil {
		return nil, err
	}
	if err := migrations.Run(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return NewStore(db), nil
}

func (s *Store) History() *HistoryStore {
	return s.history
}

func (s *Store) Close() error {
	return s.db.Close()
}
