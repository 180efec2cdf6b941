package migrations

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/pressly/goose/v3"

	"github.com/seedfolk/greenhouse/internal/legacylist"
	"github.com/seedfolk/greenhouse/internal/schema"
)

func init() {
	goose.AddMigrationContext(upNormalizeSeeds, downNormalizeSeeds)
}

// legacySeed is one row of the version 1 seed table.
type legacySeed struct {
	id         int64
	name       string
	collection int64
	isFavorite int64
	notes      sql.NullString
	links      sql.NullString
	tags       sql.NullString
	dateTime   sql.NullString
}

// normalizeDDL rebuilds the schema around the seed table: garden gains its
// own table, links and tags move out of the seed row into child tables.
// The old seed table is parked under a holding name, the replacement is
// built as seed_new and renamed into place at the end, so a failure at any
// point rolls the whole step back.
//
// The seed-to-garden foreign key is deferrable: within one transaction a
// seed may reference a garden inserted later. The link/tag foreign keys
// are immediate and must never get ahead of their seed row.
var normalizeDDL = []string{
	`CREATE TABLE IF NOT EXISTS garden (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    name TEXT NOT NULL,
    description TEXT NOT NULL
);`,
	`CREATE INDEX IF NOT EXISTS index_garden_name ON garden(name);`,

	`DROP INDEX IF EXISTS index_seed_name;`,
	`DROP INDEX IF EXISTS index_seed_collection;`,

	`ALTER TABLE seed RENAME TO seed_tmp;`,

	`CREATE TABLE seed_new (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    name TEXT NOT NULL,
    gardenId INTEGER NOT NULL DEFAULT 1
        REFERENCES garden(id) ON UPDATE CASCADE ON DELETE CASCADE
        DEFERRABLE INITIALLY DEFERRED,
    isFavorite INTEGER NOT NULL DEFAULT 0,
    notes TEXT,
    date_time TEXT NOT NULL
);`,
	`CREATE INDEX index_seed_name ON seed_new(name);`,
	`CREATE INDEX index_seed_gardenId ON seed_new(gardenId);`,
	`CREATE INDEX index_seed_isFavorite ON seed_new(isFavorite);`,
	`CREATE INDEX index_seed_date_time ON seed_new(date_time);`,

	`CREATE TABLE link_entry (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    seed_id INTEGER NOT NULL
        REFERENCES seed(id) ON UPDATE CASCADE ON DELETE CASCADE,
    uri TEXT NOT NULL,
    label TEXT,
    note TEXT
);`,
	`CREATE INDEX index_link_entry_seed_id ON link_entry(seed_id);`,
	`CREATE INDEX index_link_entry_label ON link_entry(label);`,

	`CREATE TABLE link_tag (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    seed_id INTEGER NOT NULL
        REFERENCES seed(id) ON UPDATE CASCADE ON DELETE CASCADE,
    tag TEXT NOT NULL
);`,
	`CREATE INDEX index_link_tag_seed_id ON link_tag(seed_id);`,
	`CREATE INDEX index_link_tag_tag ON link_tag(tag);`,
}

// upNormalizeSeeds is the v1 to v2 step: denormalized single-table layout
// to the three-table relational layout. Seed ids are preserved verbatim so
// external references survive; the legacy collection value becomes
// gardenId unchanged.
func upNormalizeSeeds(ctx context.Context, tx *sql.Tx) error {
	for _, ddl := range normalizeDDL {
		if _, err := tx.ExecContext(ctx, ddl); err != nil {
			return fmt.Errorf("normalize schema: %w", err)
		}
	}

	legacy, err := readLegacySeeds(ctx, tx)
	if err != nil {
		return err
	}

	for _, row := range legacy {
		if err := copyLegacySeed(ctx, tx, row); err != nil {
			return err
		}
	}

	if _, err := tx.ExecContext(ctx, `DROP TABLE seed_tmp;`); err != nil {
		return fmt.Errorf("drop holding table: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `ALTER TABLE seed_new RENAME TO seed;`); err != nil {
		return fmt.Errorf("rename seed table: %w", err)
	}
	return nil
}

// readLegacySeeds loads every version 1 row up front. Inserts below run on
// the same transaction, so the cursor must be drained and closed first.
func readLegacySeeds(ctx context.Context, tx *sql.Tx) ([]legacySeed, error) {
	rows, err := tx.QueryContext(ctx,
		`SELECT id, name, collection, isFavorite, notes, links, tags, date_time FROM seed_tmp`)
	if err != nil {
		return nil, fmt.Errorf("reading legacy seeds: %w", err)
	}
	defer rows.Close()

	var out []legacySeed
	for rows.Next() {
		var s legacySeed
		if err := rows.Scan(&s.id, &s.name, &s.collection, &s.isFavorite,
			&s.notes, &s.links, &s.tags, &s.dateTime); err != nil {
			return nil, fmt.Errorf("scanning legacy seed: %w", err)
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating legacy seeds: %w", err)
	}
	return out, nil
}

// copyLegacySeed writes one normalized seed row plus its decoded link and
// tag rows. A null or empty blob decodes to zero child rows. A null legacy
// date_time becomes the fixed epoch sentinel, never the current time.
func copyLegacySeed(ctx context.Context, tx *sql.Tx, s legacySeed) error {
	dateTime := schema.EpochTimestamp
	if s.dateTime.Valid {
		dateTime = s.dateTime.String
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO seed_new (id, name, gardenId, isFavorite, notes, date_time)
         VALUES (?, ?, ?, ?, ?, ?)`,
		s.id, s.name, s.collection, s.isFavorite, s.notes, dateTime); err != nil {
		return fmt.Errorf("copying seed %d: %w", s.id, err)
	}

	for _, uri := range legacylist.Decode(s.links.String) {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO link_entry (seed_id, uri, label, note) VALUES (?, ?, NULL, NULL)`,
			s.id, uri); err != nil {
			return fmt.Errorf("copying link for seed %d: %w", s.id, err)
		}
	}
	for _, tag := range legacylist.Decode(s.tags.String) {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO link_tag (seed_id, tag) VALUES (?, ?)`,
			s.id, tag); err != nil {
			return fmt.Errorf("copying tag for seed %d: %w", s.id, err)
		}
	}
	return nil
}

// downNormalizeSeeds is intentionally unsupported: collapsing child rows
// back into blobs would discard per-link metadata added after migration.
func downNormalizeSeeds(ctx context.Context, tx *sql.Tx) error {
	return errors.New("seed normalization cannot be rolled back")
}
