package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/seedfolk/greenhouse/internal/bus"
	"github.com/seedfolk/greenhouse/internal/schema"
	"github.com/seedfolk/greenhouse/pkg/types"
)

// InsertSeed writes a seed with its links and tags in one transaction and
// returns the generated seed id. The seed's garden foreign key is deferred,
// so the garden may be created later in an enclosing transaction; the link
// and tag foreign keys are immediate, which is why the seed row is written
// before its children. Zero sort orders default to the generated row id.
func (s *Store) InsertSeed(ctx context.Context, seed types.Seed, links []types.LinkEntry, tags []types.Tag) (int64, error) {
	db, err := s.conn()
	if err != nil {
		return 0, err
	}

	if seed.ModifiedAt.IsZero() {
		seed.ModifiedAt = time.Now()
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin insert seed: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO seed (name, gardenId, isFavorite, notes, date_time, sort_order)
         VALUES (?, ?, ?, ?, ?, ?)`,
		seed.Name, seed.GardenID, seed.IsFavorite, nullableString(seed.Notes),
		formatTime(seed.ModifiedAt), seed.SortOrder)
	if err != nil {
		return 0, fmt.Errorf("inserting seed: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("seed insert id: %w", err)
	}
	if seed.SortOrder == 0 {
		if _, err := tx.ExecContext(ctx,
			`UPDATE seed SET sort_order = id WHERE id = ?`, id); err != nil {
			return 0, fmt.Errorf("defaulting seed sort order: %w", err)
		}
	}

	for _, link := range links {
		res, err := tx.ExecContext(ctx,
			`INSERT INTO link_entry (seed_id, uri, label, note, sort_order)
             VALUES (?, ?, ?, ?, ?)`,
			id, link.URI, nullableString(link.Label), nullableString(link.Note), link.SortOrder)
		if err != nil {
			return 0, fmt.Errorf("inserting link: %w", err)
		}
		if link.SortOrder == 0 {
			linkID, err := res.LastInsertId()
			if err != nil {
				return 0, fmt.Errorf("link insert id: %w", err)
			}
			if _, err := tx.ExecContext(ctx,
				`UPDATE link_entry SET sort_order = id WHERE id = ?`, linkID); err != nil {
				return 0, fmt.Errorf("defaulting link sort order: %w", err)
			}
		}
	}

	for _, tag := range tags {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO link_tag (seed_id, tag) VALUES (?, ?)`, id, tag.Tag); err != nil {
			return 0, fmt.Errorf("inserting tag: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit insert seed: %w", err)
	}

	s.publish(schema.TableSeed, bus.OpInsert, id)
	return id, nil
}

// GetSeed returns the seed with the given id, or ErrNotFound.
func (s *Store) GetSeed(ctx context.Context, id int64) (types.Seed, error) {
	db, err := s.conn()
	if err != nil {
		return types.Seed{}, err
	}

	row := db.QueryRowContext(ctx,
		`SELECT id, name, gardenId, isFavorite, notes, date_time, sort_order
         FROM seed WHERE id = ?`, id)
	seed, err := scanSeed(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return types.Seed{}, types.ErrNotFound
	}
	return seed, err
}

// ListSeeds returns seeds ordered for display. A positive gardenID
// restricts the result to one garden; zero means all seeds.
func (s *Store) ListSeeds(ctx context.Context, gardenID int64) ([]types.Seed, error) {
	db, err := s.conn()
	if err != nil {
		return nil, err
	}

	query := `SELECT id, name, gardenId, isFavorite, notes, date_time, sort_order FROM seed`
	var args []any
	if gardenID > 0 {
		query += ` WHERE gardenId = ?`
		args = append(args, gardenID)
	}
	query += ` ORDER BY sort_order, id`

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing seeds: %w", err)
	}
	defer rows.Close()

	seeds := []types.Seed{}
	for rows.Next() {
		seed, err := scanSeed(rows.Scan)
		if err != nil {
			return nil, err
		}
		seeds = append(seeds, seed)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating seeds: %w", err)
	}
	return seeds, nil
}

// UpdateSeed replaces the stored row for seed.ID. A zero ModifiedAt is
// stamped with the current time. Links and tags are not touched.
func (s *Store) UpdateSeed(ctx context.Context, seed types.Seed) error {
	db, err := s.conn()
	if err != nil {
		return err
	}

	if seed.ModifiedAt.IsZero() {
		seed.ModifiedAt = time.Now()
	}

	res, err := db.ExecContext(ctx,
		`UPDATE seed SET name = ?, gardenId = ?, isFavorite = ?, notes = ?,
            date_time = ?, sort_order = ? WHERE id = ?`,
		seed.Name, seed.GardenID, seed.IsFavorite, nullableString(seed.Notes),
		formatTime(seed.ModifiedAt), seed.SortOrder, seed.ID)
	if err != nil {
		return fmt.Errorf("updating seed: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("seed update result: %w", err)
	}
	if n == 0 {
		return types.ErrNotFound
	}

	s.publish(schema.TableSeed, bus.OpUpdate, seed.ID)
	return nil
}

// DeleteSeed removes a seed; its links and tags go with it via cascade.
func (s *Store) DeleteSeed(ctx context.Context, id int64) error {
	db, err := s.conn()
	if err != nil {
		return err
	}

	res, err := db.ExecContext(ctx, `DELETE FROM seed WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting seed: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("seed delete result: %w", err)
	}
	if n == 0 {
		return types.ErrNotFound
	}

	s.publish(schema.TableSeed, bus.OpDelete, id)
	return nil
}

// DeleteAllSeeds clears every seed, link, and tag.
func (s *Store) DeleteAllSeeds(ctx context.Context) error {
	db, err := s.conn()
	if err != nil {
		return err
	}

	if _, err := db.ExecContext(ctx, `DELETE FROM seed`); err != nil {
		return fmt.Errorf("deleting seeds: %w", err)
	}

	s.publish(schema.TableSeed, bus.OpDeleteAll, 0)
	return nil
}

// GetSeedWithDetails returns the composite view of a seed joined with its
// links (ordered by sort order) and tags.
func (s *Store) GetSeedWithDetails(ctx context.Context, id int64) (types.SeedWithDetails, error) {
	seed, err := s.GetSeed(ctx, id)
	if err != nil {
		return types.SeedWithDetails{}, err
	}

	links, err := s.listLinks(ctx, id)
	if err != nil {
		return types.SeedWithDetails{}, err
	}
	tags, err := s.listTags(ctx, id)
	if err != nil {
		return types.SeedWithDetails{}, err
	}
	return types.SeedWithDetails{Seed: seed, Links: links, Tags: tags}, nil
}

func (s *Store) listLinks(ctx context.Context, seedID int64) ([]types.LinkEntry, error) {
	db, err := s.conn()
	if err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx,
		`SELECT id, seed_id, uri, label, note, sort_order FROM link_entry
         WHERE seed_id = ? ORDER BY sort_order, id`, seedID)
	if err != nil {
		return nil, fmt.Errorf("listing links: %w", err)
	}
	defer rows.Close()

	links := []types.LinkEntry{}
	for rows.Next() {
		var link types.LinkEntry
		var label, note sql.NullString
		if err := rows.Scan(&link.ID, &link.SeedID, &link.URI, &label, &note, &link.SortOrder); err != nil {
			return nil, fmt.Errorf("scanning link: %w", err)
		}
		link.Label = stringPtr(label)
		link.Note = stringPtr(note)
		links = append(links, link)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating links: %w", err)
	}
	return links, nil
}

func (s *Store) listTags(ctx context.Context, seedID int64) ([]types.Tag, error) {
	db, err := s.conn()
	if err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx,
		`SELECT id, seed_id, tag FROM link_tag WHERE seed_id = ? ORDER BY id`, seedID)
	if err != nil {
		return nil, fmt.Errorf("listing tags: %w", err)
	}
	defer rows.Close()

	tags := []types.Tag{}
	for rows.Next() {
		var tag types.Tag
		if err := rows.Scan(&tag.ID, &tag.SeedID, &tag.Tag); err != nil {
			return nil, fmt.Errorf("scanning tag: %w", err)
		}
		tags = append(tags, tag)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating tags: %w", err)
	}
	return tags, nil
}

// scanSeed reads one seed row from a Scan-shaped source.
func scanSeed(scan func(dest ...any) error) (types.Seed, error) {
	var seed types.Seed
	var favorite int64
	var notes sql.NullString
	var dateTime string
	if err := scan(&seed.ID, &seed.Name, &seed.GardenID, &favorite, &notes, &dateTime, &seed.SortOrder); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Seed{}, err
		}
		return types.Seed{}, fmt.Errorf("scanning seed: %w", err)
	}
	seed.IsFavorite = favorite != 0
	seed.Notes = stringPtr(notes)

	modified, err := parseTime(dateTime)
	if err != nil {
		return types.Seed{}, fmt.Errorf("parsing seed date_time: %w", err)
	}
	seed.ModifiedAt = modified
	return seed, nil
}
