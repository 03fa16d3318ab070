package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/cardkeep/cardkeep/internal/events"
	"github.com/cardkeep/cardkeep/internal/model"
	"github.com/cardkeep/cardkeep/internal/store"
)

// New constructs a sqlite-backed store. Writes publish change events on bus
// after commit; bus may be nil for one-shot invocations with no subscribers.
func New(db *sql.DB, bus *events.Bus) store.Store {
	return &sqliteStore{db: db, bus: bus}
}

type sqliteStore struct {
	db  *sql.DB
	bus *events.Bus
}

func (s *sqliteStore) Cards() store.Cards         { return &cards{db: s.db, bus: s.bus} }
func (s *sqliteStore) Tags() store.Tags           { return &tags{db: s.db, bus: s.bus} }
func (s *sqliteStore) Templates() store.Templates { return &templates{db: s.db, bus: s.bus} }
func (s *sqliteStore) Users() store.Users         { return &users{db: s.db, bus: s.bus} }
func (s *sqliteStore) SyncState() store.SyncState { return &syncState{db: s.db} }

// HealthPing implements health.HealthPinger.
func (s *sqliteStore) HealthPing(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// withTx runs fn inside a transaction. Any error rolls the whole unit of
// work back, leaving the store in its pre-call state.
func withTx(ctx context.Context, db *sql.DB, fn func(*sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

// mapErr converts driver errors into model sentinels.
func mapErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, sql.ErrNoRows):
		return model.ErrNotFound
	case strings.Contains(err.Error(), "UNIQUE constraint failed"):
		return fmt.Errorf("%w: %v", model.ErrConflict, err)
	default:
		return err
	}
}
