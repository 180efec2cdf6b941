package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/seedfolk/greenhouse/internal/bus"
	"github.com/seedfolk/greenhouse/internal/schema"
	"github.com/seedfolk/greenhouse/pkg/types"
)

// InsertGarden writes a new garden and returns its generated id. A zero
// SortOrder defaults to the generated id, matching the migration backfill
// convention.
func (s *Store) InsertGarden(ctx context.Context, g types.Garden) (int64, error) {
	db, err := s.conn()
	if err != nil {
		return 0, err
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin insert garden: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO garden (name, description, sort_order) VALUES (?, ?, ?)`,
		g.Name, g.Description, g.SortOrder)
	if err != nil {
		return 0, fmt.Errorf("inserting garden: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("garden insert id: %w", err)
	}

	if g.SortOrder == 0 {
		if _, err := tx.ExecContext(ctx,
			`UPDATE garden SET sort_order = id WHERE id = ?`, id); err != nil {
			return 0, fmt.Errorf("defaulting garden sort order: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit insert garden: %w", err)
	}

	s.publish(schema.TableGarden, bus.OpInsert, id)
	return id, nil
}

// GetGarden returns the garden with the given id, or ErrNotFound.
func (s *Store) GetGarden(ctx context.Context, id int64) (types.Garden, error) {
	db, err := s.conn()
	if err != nil {
		return types.Garden{}, err
	}

	var g types.Garden
	err = db.QueryRowContext(ctx,
		`SELECT id, name, description, sort_order FROM garden WHERE id = ?`, id).
		Scan(&g.ID, &g.Name, &g.Description, &g.SortOrder)
	if errors.Is(err, sql.ErrNoRows) {
		return types.Garden{}, types.ErrNotFound
	}
	if err != nil {
		return types.Garden{}, fmt.Errorf("scanning garden: %w", err)
	}
	return g, nil
}

// ListGardens returns all gardens ordered for display.
func (s *Store) ListGardens(ctx context.Context) ([]types.Garden, error) {
	db, err := s.conn()
	if err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx,
		`SELECT id, name, description, sort_order FROM garden ORDER BY sort_order, id`)
	if err != nil {
		return nil, fmt.Errorf("listing gardens: %w", err)
	}
	defer rows.Close()

	gardens := []types.Garden{}
	for rows.Next() {
		var g types.Garden
		if err := rows.Scan(&g.ID, &g.Name, &g.Description, &g.SortOrder); err != nil {
			return nil, fmt.Errorf("scanning garden: %w", err)
		}
		gardens = append(gardens, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating gardens: %w", err)
	}
	return gardens, nil
}

// UpdateGarden replaces the stored row for g.ID. Returns ErrNotFound when
// no such garden exists.
func (s *Store) UpdateGarden(ctx context.Context, g types.Garden) error {
	db, err := s.conn()
	if err != nil {
		return err
	}

	res, err := db.ExecContext(ctx,
		`UPDATE garden SET name = ?, description = ?, sort_order = ? WHERE id = ?`,
		g.Name, g.Description, g.SortOrder, g.ID)
	if err != nil {
		return fmt.Errorf("updating garden: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("garden update result: %w", err)
	}
	if n == 0 {
		return types.ErrNotFound
	}

	s.publish(schema.TableGarden, bus.OpUpdate, g.ID)
	return nil
}

// DeleteGarden removes a garden. Owned seeds, and their links and tags,
// go with it via foreign key cascade, so a seed event is published too.
func (s *Store) DeleteGarden(ctx context.Context, id int64) error {
	db, err := s.conn()
	if err != nil {
		return err
	}

	res, err := db.ExecContext(ctx, `DELETE FROM garden WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting garden: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("garden delete result: %w", err)
	}
	if n == 0 {
		return types.ErrNotFound
	}

	s.publish(schema.TableGarden, bus.OpDelete, id)
	s.publish(schema.TableSeed, bus.OpDeleteAll, 0)
	return nil
}

// DeleteAllGardens clears every garden and, by cascade, every seed.
func (s *Store) DeleteAllGardens(ctx context.Context) error {
	db, err := s.conn()
	if err != nil {
		return err
	}

	if _, err := db.ExecContext(ctx, `DELETE FROM garden`); err != nil {
		return fmt.Errorf("deleting gardens: %w", err)
	}

	s.publish(schema.TableGarden, bus.OpDeleteAll, 0)
	s.publish(schema.TableSeed, bus.OpDeleteAll, 0)
	return nil
}

// GetGardenWithSeeds returns the composite view of a garden joined with
// its seeds, ordered by seed sort order.
func (s *Store) GetGardenWithSeeds(ctx context.Context, id int64) (types.GardenWithSeeds, error) {
	g, err := s.GetGarden(ctx, id)
	if err != nil {
		return types.GardenWithSeeds{}, err
	}
	seeds, err := s.ListSeeds(ctx, id)
	if err != nil {
		return types.GardenWithSeeds{}, err
	}
	return types.GardenWithSeeds{Garden: g, Seeds: seeds}, nil
}
