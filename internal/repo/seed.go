package repo

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"github.com/seedfolk/greenhouse/internal/bus"
	"github.com/seedfolk/greenhouse/internal/schema"
	"github.com/seedfolk/greenhouse/internal/store"
	"github.com/seedfolk/greenhouse/pkg/types"
)

// SeedRepo is the repository for seeds and their links and tags.
type SeedRepo struct {
	store  *store.Store
	bus    *bus.Bus
	logger zerolog.Logger

	seeds     *cache[types.Seed]
	composite *cache[types.SeedWithDetails]
}

// NewSeedRepo returns a seed repository over s. Live snapshots subscribe
// to b.
func NewSeedRepo(s *store.Store, b *bus.Bus, logger zerolog.Logger) *SeedRepo {
	return &SeedRepo{
		store:     s,
		bus:       b,
		logger:    logger,
		seeds:     newCache[types.Seed](),
		composite: newCache[types.SeedWithDetails](),
	}
}

// Insert validates and writes a seed with its links and tags, caches the
// stored seed under the generated id, and returns the id. A blank name is
// rejected before any store access.
func (r *SeedRepo) Insert(ctx context.Context, seed types.Seed, links []types.LinkEntry, tags []types.Tag) (int64, error) {
	if strings.TrimSpace(seed.Name) == "" {
		return 0, types.ErrNameRequired
	}

	id, err := r.store.InsertSeed(ctx, seed, links, tags)
	if err != nil {
		return 0, err
	}

	stored, err := r.store.GetSeed(ctx, id)
	if err != nil {
		return 0, err
	}
	r.seeds.put(id, stored)
	return id, nil
}

// GetByID returns the seed with the given id. A cache hit is returned
// without consulting the store.
func (r *SeedRepo) GetByID(ctx context.Context, id int64) (types.Seed, error) {
	if id <= 0 {
		return types.Seed{}, types.ErrInvalidID
	}

	if seed, ok := r.seeds.get(id); ok {
		return seed, nil
	}

	seed, err := r.store.GetSeed(ctx, id)
	if err != nil {
		return types.Seed{}, err
	}
	r.seeds.put(id, seed)
	return seed, nil
}

// GetWithDetails returns the composite view of a seed with its links and
// tags, read-through cached separately from the plain entity.
func (r *SeedRepo) GetWithDetails(ctx context.Context, id int64) (types.SeedWithDetails, error) {
	if id <= 0 {
		return types.SeedWithDetails{}, types.ErrInvalidID
	}

	if v, ok := r.composite.get(id); ok {
		return v, nil
	}

	v, err := r.store.GetSeedWithDetails(ctx, id)
	if err != nil {
		return types.SeedWithDetails{}, err
	}
	r.composite.put(id, v)
	return v, nil
}

// ListByGarden returns the seeds of one garden, unconditionally from the
// store; collection reads are not cached.
func (r *SeedRepo) ListByGarden(ctx context.Context, gardenID int64) ([]types.Seed, error) {
	if gardenID <= 0 {
		return nil, types.ErrInvalidID
	}
	return r.store.ListSeeds(ctx, gardenID)
}

// Update validates and writes a seed, replaces its cache entry, and drops
// the composite entry so the next GetWithDetails re-reads.
func (r *SeedRepo) Update(ctx context.Context, seed types.Seed) error {
	if seed.ID <= 0 {
		return types.ErrInvalidID
	}
	if strings.TrimSpace(seed.Name) == "" {
		return types.ErrNameRequired
	}

	if err := r.store.UpdateSeed(ctx, seed); err != nil {
		return err
	}

	stored, err := r.store.GetSeed(ctx, seed.ID)
	if err != nil {
		return err
	}
	r.seeds.put(seed.ID, stored)
	r.composite.evict(seed.ID)
	return nil
}

// Delete removes the given seed.
func (r *SeedRepo) Delete(ctx context.Context, seed types.Seed) error {
	return r.DeleteByID(ctx, seed.ID)
}

// DeleteByID removes a seed by id and evicts it from both caches.
func (r *SeedRepo) DeleteByID(ctx context.Context, id int64) error {
	if id <= 0 {
		return types.ErrInvalidID
	}

	if err := r.store.DeleteSeed(ctx, id); err != nil {
		return err
	}
	r.seeds.evict(id)
	r.composite.evict(id)
	return nil
}

// DeleteAll removes every seed and clears both caches.
func (r *SeedRepo) DeleteAll(ctx context.Context) error {
	if err := r.store.DeleteAllSeeds(ctx); err != nil {
		return err
	}
	r.seeds.clear()
	r.composite.clear()
	return nil
}

// WatchAll returns a live stream of full seed collections, re-emitting after
// each committed seed write. Each successful snapshot refreshes the cache
// entry of every seed it contains. The channel closes when ctx is done or
// the bus shuts down.
func (r *SeedRepo) WatchAll(ctx context.Context) <-chan types.Result[[]types.Seed] {
	out := make(chan types.Result[[]types.Seed])
	sub := r.bus.Subscribe(schema.TableSeed)

	go func() {
		defer close(out)
		defer sub.Cancel()

		if !r.emitSeeds(ctx, out) {
			return
		}
		for {
			select {
			case <-ctx.Done():
				return
			case _, ok := <-sub.C:
				if !ok {
					return
				}
				if !r.emitSeeds(ctx, out) {
					return
				}
			}
		}
	}()
	return out
}

func (r *SeedRepo) emitSeeds(ctx context.Context, out chan<- types.Result[[]types.Seed]) bool {
	seeds, err := r.store.ListSeeds(ctx, 0)
	if err != nil {
		r.logger.Error().Err(err).Msg("seed snapshot query failed")
		return send(ctx, out, types.Failed[[]types.Seed](err))
	}

	for _, seed := range seeds {
		r.seeds.put(seed.ID, seed)
	}
	return send(ctx, out, types.Succeeded(seeds))
}
