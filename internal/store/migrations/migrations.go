// Package migrations holds the ordered schema migrations for the
// Greenhouse database, managed by goose. Migrations run once at store-open
// time, before any read/write access; each step is one transaction and a
// failed step leaves the database at its pre-step version.
//
// Fresh databases replay the full history starting from the version 1
// legacy layout, so the upgrade path is the only code path and stays
// exercised forever.
package migrations

import (
	"context"
	"database/sql"
	"embed"
	"fmt"

	"github.com/pressly/goose/v3"
)

//go:embed 00001_legacy_seed_table.sql 00002_normalize_seeds.go 00003_sort_order.sql
var fsys embed.FS

// Latest is the schema version the newest migration produces.
const Latest int64 = 3

// setup points goose at the embedded migration files. goose keeps this as
// package-level state, so setup is called before every entry point.
func setup() error {
	goose.SetBaseFS(fsys)
	goose.SetLogger(goose.NopLogger())
	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("set dialect: %w", err)
	}
	return nil
}

// Up migrates db to the latest schema version.
func Up(ctx context.Context, db *sql.DB) error {
	if err := setup(); err != nil {
		return err
	}
	if err := goose.UpContext(ctx, db, "."); err != nil {
		return fmt.Errorf("migrate up: %w", err)
	}
	return nil
}

// UpTo migrates db up to and including the given version. Used by tests to
// stage legacy data between steps.
func UpTo(ctx context.Context, db *sql.DB, version int64) error {
	if err := setup(); err != nil {
		return err
	}
	if err := goose.UpToContext(ctx, db, ".", version); err != nil {
		return fmt.Errorf("migrate up to %d: %w", version, err)
	}
	return nil
}

// Version reports the schema version currently recorded in db.
func Version(ctx context.Context, db *sql.DB) (int64, error) {
	if err := setup(); err != nil {
		return 0, err
	}
	v, err := goose.GetDBVersionContext(ctx, db)
	if err != nil {
		return 0, fmt.Errorf("read schema version: %w", err)
	}
	return v, nil
}
