package repo

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seedfolk/greenhouse/internal/bus"
	"github.com/seedfolk/greenhouse/internal/store"
	"github.com/seedfolk/greenhouse/pkg/types"
)

// testEnv is one store, bus, and repo pair over a temp database.
type testEnv struct {
	store   *store.Store
	bus     *bus.Bus
	gardens *GardenRepo
	seeds   *SeedRepo
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	b := bus.New()
	t.Cleanup(b.Close)

	s, err := store.Open(context.Background(), t.TempDir(), b, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	return &testEnv{
		store:   s,
		bus:     b,
		gardens: NewGardenRepo(s, b, zerolog.Nop()),
		seeds:   NewSeedRepo(s, b, zerolog.Nop()),
	}
}

// recvResult reads one stream emission or fails the test.
func recvResult[T any](t *testing.T, ch <-chan types.Result[T]) types.Result[T] {
	t.Helper()
	select {
	case res, ok := <-ch:
		require.True(t, ok, "stream closed unexpectedly")
		return res
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for stream emission")
		return types.Result[T]{}
	}
}

func TestGardenInsertValidatesName(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	for _, name := range []string{"", "   ", "\t\n"} {
		_, err := env.gardens.Insert(ctx, types.Garden{Name: name})
		assert.ErrorIs(t, err, types.ErrNameRequired, "name %q must be rejected", name)
	}

	// Validation happens before any store access: the store stays empty.
	all, err := env.store.ListGardens(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestGardenGetByIDValidatesID(t *testing.T) {
	env := newTestEnv(t)

	for _, id := range []int64{0, -1} {
		_, err := env.gardens.GetByID(context.Background(), id)
		assert.ErrorIs(t, err, types.ErrInvalidID)
	}
}

func TestGardenInsertCachesUnderGeneratedID(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	id, err := env.gardens.Insert(ctx, types.Garden{Name: "Reading"})
	require.NoError(t, err)

	g, ok := env.gardens.gardens.get(id)
	require.True(t, ok, "insert must populate the cache")
	assert.Equal(t, "Reading", g.Name)
	assert.Equal(t, id, g.ID)
}

func TestGardenCacheHitMasksExternalWrite(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	id, err := env.gardens.Insert(ctx, types.Garden{Name: "Original"})
	require.NoError(t, err)

	// Simulate another process updating the row behind the repo's back.
	external, err := env.store.GetGarden(ctx, id)
	require.NoError(t, err)
	external.Name = "Renamed elsewhere"
	require.NoError(t, env.store.UpdateGarden(ctx, external))

	got, err := env.gardens.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Original", got.Name, "cache hit must not revalidate against the store")
}

func TestGardenGetByIDReadThrough(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	// Written outside the repo, so the cache starts cold.
	id, err := env.store.InsertGarden(ctx, types.Garden{Name: "Cold"})
	require.NoError(t, err)

	_, ok := env.gardens.gardens.get(id)
	require.False(t, ok)

	got, err := env.gardens.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Cold", got.Name)

	_, ok = env.gardens.gardens.get(id)
	assert.True(t, ok, "miss must populate the cache")
}

func TestGardenUpdateInvalidatesComposite(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	id, err := env.gardens.Insert(ctx, types.Garden{Name: "Home"})
	require.NoError(t, err)
	_, err = env.seeds.Insert(ctx, types.Seed{Name: "First", GardenID: id}, nil, nil)
	require.NoError(t, err)

	view, err := env.gardens.GetWithSeeds(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Home", view.Name)

	g, err := env.gardens.GetByID(ctx, id)
	require.NoError(t, err)
	g.Name = "Home Base"
	require.NoError(t, env.gardens.Update(ctx, g))

	view, err = env.gardens.GetWithSeeds(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Home Base", view.Name, "composite entry must be re-read after update")
}

func TestGardenUpdateValidation(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	assert.ErrorIs(t, env.gardens.Update(ctx, types.Garden{ID: 0, Name: "x"}), types.ErrInvalidID)
	assert.ErrorIs(t, env.gardens.Update(ctx, types.Garden{ID: 1, Name: "  "}), types.ErrNameRequired)
}

func TestGardenDeleteEvicts(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	id, err := env.gardens.Insert(ctx, types.Garden{Name: "Gone"})
	require.NoError(t, err)
	_, err = env.gardens.GetWithSeeds(ctx, id)
	require.NoError(t, err)

	require.NoError(t, env.gardens.DeleteByID(ctx, id))

	_, ok := env.gardens.gardens.get(id)
	assert.False(t, ok)
	_, ok = env.gardens.composite.get(id)
	assert.False(t, ok)

	_, err = env.gardens.GetByID(ctx, id)
	assert.ErrorIs(t, err, types.ErrNotFound)

	assert.ErrorIs(t, env.gardens.DeleteByID(ctx, 0), types.ErrInvalidID)
}

func TestGardenDeleteAllClearsCaches(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	a, err := env.gardens.Insert(ctx, types.Garden{Name: "A"})
	require.NoError(t, err)
	b, err := env.gardens.Insert(ctx, types.Garden{Name: "B"})
	require.NoError(t, err)

	require.NoError(t, env.gardens.DeleteAll(ctx))

	for _, id := range []int64{a, b} {
		_, ok := env.gardens.gardens.get(id)
		assert.False(t, ok)
	}
}

func TestGardenWatchAllReEmitsOnWrites(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	env := newTestEnv(t)

	stream := env.gardens.WatchAll(ctx)

	initial := recvResult(t, stream)
	snapshot, ok := initial.Value()
	require.True(t, ok, "initial emission should succeed: %v", initial.Err())
	assert.Empty(t, snapshot)

	id, err := env.store.InsertGarden(ctx, types.Garden{Name: "Live"})
	require.NoError(t, err)

	next := recvResult(t, stream)
	snapshot, ok = next.Value()
	require.True(t, ok)
	require.Len(t, snapshot, 1)
	assert.Equal(t, "Live", snapshot[0].Name)

	// The successful emission refreshed the cache, so a direct hit sees the
	// store-written garden without a read.
	cached, found := env.gardens.gardens.get(id)
	require.True(t, found)
	assert.Equal(t, "Live", cached.Name)
}

func TestGardenWatchAllClosesOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	env := newTestEnv(t)

	stream := env.gardens.WatchAll(ctx)
	recvResult(t, stream)

	cancel()

	select {
	case _, open := <-stream:
		assert.False(t, open, "stream must close after cancellation")
	case <-time.After(2 * time.Second):
		t.Fatal("stream did not close after cancellation")
	}
}

func TestGardenWatchAllClosesOnBusShutdown(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	stream := env.gardens.WatchAll(ctx)
	recvResult(t, stream)

	env.bus.Close()

	select {
	case _, open := <-stream:
		assert.False(t, open, "stream must close when the bus shuts down")
	case <-time.After(2 * time.Second):
		t.Fatal("stream did not close after bus shutdown")
	}
}
