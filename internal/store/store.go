// Package store implements SQLite-backed persistence for Greenhouse.
// Opening a store runs the schema migrations to completion before any
// read or write access is possible; a migration failure is an open
// failure. Committed writes are announced on the injected bus so live
// repository queries can re-emit.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"

	"github.com/seedfolk/greenhouse/internal/bus"
	"github.com/seedfolk/greenhouse/internal/schema"
	"github.com/seedfolk/greenhouse/internal/store/migrations"
	"github.com/seedfolk/greenhouse/pkg/types"
)

// dbFileName is the database file created under the data directory.
const dbFileName = "greenhouse.db"

// Store provides CRUD and composite queries over the normalized schema.
// The underlying SQLite handle serializes writes; reads see consistent
// snapshots.
type Store struct {
	mu     sync.RWMutex
	closed bool

	db     *sql.DB
	bus    *bus.Bus
	logger zerolog.Logger
}

// Open creates the data directory if needed, migrates the database to the
// latest schema version, and returns a ready store. Change events are
// published on b; b may be nil when no live queries are needed.
func Open(ctx context.Context, dataDir string, b *bus.Bus, logger zerolog.Logger) (*Store, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	path := filepath.Join(dataDir, dbFileName)

	if err := migrate(ctx, path, logger); err != nil {
		return nil, err
	}

	// Runtime connections enforce foreign keys; cascades depend on it.
	dsn := "file:" + path +
		"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(time.Hour)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return &Store{db: db, bus: b, logger: logger}, nil
}

// migrate runs the schema migrations on a dedicated connection with
// foreign key enforcement off: the normalization step renames and
// recreates tables that other tables reference, which immediate
// enforcement would reject mid-step.
func migrate(ctx context.Context, path string, logger zerolog.Logger) error {
	db, err := sql.Open("sqlite", "file:"+path)
	if err != nil {
		return fmt.Errorf("open database for migration: %w", err)
	}
	defer db.Close()

	if err := migrations.Up(ctx, db); err != nil {
		return fmt.Errorf("migrate database: %w", err)
	}

	v, err := migrations.Version(ctx, db)
	if err != nil {
		return err
	}
	logger.Info().Str("path", path).Int64("schema_version", v).Msg("database ready")
	return nil
}

// Close releases the database handle. Idempotent.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	return s.db.Close()
}

// Version reports the schema version recorded in the database.
func (s *Store) Version(ctx context.Context) (int64, error) {
	db, err := s.conn()
	if err != nil {
		return 0, err
	}
	return migrations.Version(ctx, db)
}

// conn returns the database handle, or ErrStoreClosed.
func (s *Store) conn() (*sql.DB, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, types.ErrStoreClosed
	}
	return s.db, nil
}

// publish announces a committed write on the bus, if one is attached.
func (s *Store) publish(table string, op bus.Op, id int64) {
	if s.bus == nil {
		return
	}
	s.bus.Publish(table, bus.Event{Table: table, Op: op, ID: id})
	s.logger.Debug().Str("table", table).Str("op", string(op)).Int64("id", id).Msg("change published")
}

// formatTime encodes a timestamp using the stored layout.
func formatTime(t time.Time) string {
	return t.Format(schema.TimeLayout)
}

// parseTime decodes a stored timestamp.
func parseTime(s string) (time.Time, error) {
	return time.Parse(schema.TimeLayout, s)
}

// nullableString returns a sql.NullString from a *string.
func nullableString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

// stringPtr returns a *string from a sql.NullString.
func stringPtr(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	return &s.String
}
