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

// GardenRepo is the repository for gardens.
type GardenRepo struct {
	store  *store.Store
	bus    *bus.Bus
	logger zerolog.Logger

	gardens   *cache[types.Garden]
	composite *cache[types.GardenWithSeeds]
}

// NewGardenRepo returns a garden repository over s. Live snapshots subscribe
// to b.
func NewGardenRepo(s *store.Store, b *bus.Bus, logger zerolog.Logger) *GardenRepo {
	return &GardenRepo{
		store:     s,
		bus:       b,
		logger:    logger,
		gardens:   newCache[types.Garden](),
		composite: newCache[types.GardenWithSeeds](),
	}
}

// Insert validates and writes a new garden, caches it under the generated
// id, and returns the id. A blank name is rejected before any store access.
func (r *GardenRepo) Insert(ctx context.Context, g types.Garden) (int64, error) {
	if strings.TrimSpace(g.Name) == "" {
		return 0, types.ErrNameRequired
	}

	id, err := r.store.InsertGarden(ctx, g)
	if err != nil {
		return 0, err
	}

	stored, err := r.store.GetGarden(ctx, id)
	if err != nil {
		return 0, err
	}
	r.gardens.put(id, stored)
	return id, nil
}

// GetByID returns the garden with the given id. A cache hit is returned
// without consulting the store; see the package comment for the staleness
// contract.
func (r *GardenRepo) GetByID(ctx context.Context, id int64) (types.Garden, error) {
	if id <= 0 {
		return types.Garden{}, types.ErrInvalidID
	}

	if g, ok := r.gardens.get(id); ok {
		return g, nil
	}

	g, err := r.store.GetGarden(ctx, id)
	if err != nil {
		return types.Garden{}, err
	}
	r.gardens.put(id, g)
	return g, nil
}

// GetWithSeeds returns the composite view of a garden and its seeds,
// read-through cached separately from the plain entity.
func (r *GardenRepo) GetWithSeeds(ctx context.Context, id int64) (types.GardenWithSeeds, error) {
	if id <= 0 {
		return types.GardenWithSeeds{}, types.ErrInvalidID
	}

	if v, ok := r.composite.get(id); ok {
		return v, nil
	}

	v, err := r.store.GetGardenWithSeeds(ctx, id)
	if err != nil {
		return types.GardenWithSeeds{}, err
	}
	r.composite.put(id, v)
	return v, nil
}

// Update validates and writes a garden, replaces its cache entry, and drops
// the composite entry so the next GetWithSeeds re-reads.
func (r *GardenRepo) Update(ctx context.Context, g types.Garden) error {
	if g.ID <= 0 {
		return types.ErrInvalidID
	}
	if strings.TrimSpace(g.Name) == "" {
		return types.ErrNameRequired
	}

	if err := r.store.UpdateGarden(ctx, g); err != nil {
		return err
	}
	r.gardens.put(g.ID, g)
	r.composite.evict(g.ID)
	return nil
}

// Delete removes the given garden.
func (r *GardenRepo) Delete(ctx context.Context, g types.Garden) error {
	return r.DeleteByID(ctx, g.ID)
}

// DeleteByID removes a garden by id and evicts it from both caches.
func (r *GardenRepo) DeleteByID(ctx context.Context, id int64) error {
	if id <= 0 {
		return types.ErrInvalidID
	}

	if err := r.store.DeleteGarden(ctx, id); err != nil {
		return err
	}
	r.gardens.evict(id)
	r.composite.evict(id)
	return nil
}

// DeleteAll removes every garden and clears both caches.
func (r *GardenRepo) DeleteAll(ctx context.Context) error {
	if err := r.store.DeleteAllGardens(ctx); err != nil {
		return err
	}
	r.gardens.clear()
	r.composite.clear()
	return nil
}

// WatchAll returns a live stream of full garden collections. The stream
// emits an initial snapshot, then re-queries and re-emits after each
// committed garden write. Each successful snapshot refreshes the cache
// entry of every garden it contains, last emission winning. The channel
// closes when ctx is done or the bus shuts down.
func (r *GardenRepo) WatchAll(ctx context.Context) <-chan types.Result[[]types.Garden] {
	out := make(chan types.Result[[]types.Garden])
	sub := r.bus.Subscribe(schema.TableGarden)

	go func() {
		defer close(out)
		defer sub.Cancel()

		if !r.emitGardens(ctx, out) {
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
				if !r.emitGardens(ctx, out) {
					return
				}
			}
		}
	}()
	return out
}

// emitGardens queries the current collection and sends one result. Returns
// false when ctx ended before the send completed.
func (r *GardenRepo) emitGardens(ctx context.Context, out chan<- types.Result[[]types.Garden]) bool {
	gardens, err := r.store.ListGardens(ctx)
	if err != nil {
		r.logger.Error().Err(err).Msg("garden snapshot query failed")
		return send(ctx, out, types.Failed[[]types.Garden](err))
	}

	for _, g := range gardens {
		r.gardens.put(g.ID, g)
	}
	return send(ctx, out, types.Succeeded(gardens))
}

// send delivers one result unless ctx ends first.
func send[T any](ctx context.Context, out chan<- types.Result[T], res types.Result[T]) bool {
	select {
	case out <- res:
		return true
	case <-ctx.Done():
		return false
	}
}
