package repo

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seedfolk/greenhouse/pkg/types"
)

func TestSeedInsertValidatesName(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	_, err := env.seeds.Insert(ctx, types.Seed{Name: " ", GardenID: 1}, nil, nil)
	assert.ErrorIs(t, err, types.ErrNameRequired)

	all, err := env.store.ListSeeds(ctx, 0)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestSeedInsertWithChildren(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	gardenID, err := env.gardens.Insert(ctx, types.Garden{Name: "Default"})
	require.NoError(t, err)

	note := "skim first"
	id, err := env.seeds.Insert(ctx,
		types.Seed{Name: "Effective Go", GardenID: gardenID, IsFavorite: true},
		[]types.LinkEntry{{URI: "https://go.dev/doc/effective_go", Note: &note}},
		[]types.Tag{{Tag: "go"}})
	require.NoError(t, err)

	view, err := env.seeds.GetWithDetails(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Effective Go", view.Name)
	assert.True(t, view.IsFavorite)
	require.Len(t, view.Links, 1)
	assert.Equal(t, "https://go.dev/doc/effective_go", view.Links[0].URI)
	require.Len(t, view.Tags, 1)
	assert.Equal(t, "go", view.Tags[0].Tag)
}

func TestSeedCacheHitMasksExternalWrite(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	gardenID, err := env.gardens.Insert(ctx, types.Garden{Name: "Default"})
	require.NoError(t, err)
	id, err := env.seeds.Insert(ctx, types.Seed{Name: "Original", GardenID: gardenID}, nil, nil)
	require.NoError(t, err)

	external, err := env.store.GetSeed(ctx, id)
	require.NoError(t, err)
	external.Name = "Renamed elsewhere"
	require.NoError(t, env.store.UpdateSeed(ctx, external))

	got, err := env.seeds.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Original", got.Name, "cache hit must not revalidate against the store")
}

func TestSeedUpdateRefreshesCacheAndDropsComposite(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	gardenID, err := env.gardens.Insert(ctx, types.Garden{Name: "Default"})
	require.NoError(t, err)
	id, err := env.seeds.Insert(ctx, types.Seed{Name: "Before", GardenID: gardenID},
		[]types.LinkEntry{{URI: "https://example.com"}}, nil)
	require.NoError(t, err)

	_, err = env.seeds.GetWithDetails(ctx, id)
	require.NoError(t, err)

	seed, err := env.seeds.GetByID(ctx, id)
	require.NoError(t, err)
	seed.Name = "After"
	require.NoError(t, env.seeds.Update(ctx, seed))

	cached, ok := env.seeds.seeds.get(id)
	require.True(t, ok)
	assert.Equal(t, "After", cached.Name)

	view, err := env.seeds.GetWithDetails(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "After", view.Name, "composite must be re-read after update")
	assert.Len(t, view.Links, 1)
}

func TestSeedUpdateValidation(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	assert.ErrorIs(t, env.seeds.Update(ctx, types.Seed{ID: 0, Name: "x"}), types.ErrInvalidID)
	assert.ErrorIs(t, env.seeds.Update(ctx, types.Seed{ID: 7, Name: ""}), types.ErrNameRequired)
}

func TestSeedDeleteEvicts(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	gardenID, err := env.gardens.Insert(ctx, types.Garden{Name: "Default"})
	require.NoError(t, err)
	id, err := env.seeds.Insert(ctx, types.Seed{Name: "Doomed", GardenID: gardenID}, nil, nil)
	require.NoError(t, err)
	_, err = env.seeds.GetWithDetails(ctx, id)
	require.NoError(t, err)

	require.NoError(t, env.seeds.Delete(ctx, types.Seed{ID: id}))

	_, ok := env.seeds.seeds.get(id)
	assert.False(t, ok)
	_, ok = env.seeds.composite.get(id)
	assert.False(t, ok)

	assert.ErrorIs(t, env.seeds.DeleteByID(ctx, -3), types.ErrInvalidID)
}

func TestSeedListByGarden(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	home, err := env.gardens.Insert(ctx, types.Garden{Name: "Home"})
	require.NoError(t, err)
	work, err := env.gardens.Insert(ctx, types.Garden{Name: "Work"})
	require.NoError(t, err)

	_, err = env.seeds.Insert(ctx, types.Seed{Name: "H", GardenID: home}, nil, nil)
	require.NoError(t, err)
	_, err = env.seeds.Insert(ctx, types.Seed{Name: "W", GardenID: work}, nil, nil)
	require.NoError(t, err)

	seeds, err := env.seeds.ListByGarden(ctx, home)
	require.NoError(t, err)
	require.Len(t, seeds, 1)
	assert.Equal(t, "H", seeds[0].Name)

	_, err = env.seeds.ListByGarden(ctx, 0)
	assert.ErrorIs(t, err, types.ErrInvalidID)
}

func TestSeedWatchAllReEmitsOnWrites(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	env := newTestEnv(t)

	gardenID, err := env.gardens.Insert(ctx, types.Garden{Name: "Default"})
	require.NoError(t, err)

	stream := env.seeds.WatchAll(ctx)

	initial := recvResult(t, stream)
	snapshot, ok := initial.Value()
	require.True(t, ok)
	assert.Empty(t, snapshot)

	id, err := env.store.InsertSeed(ctx, types.Seed{Name: "Live", GardenID: gardenID}, nil, nil)
	require.NoError(t, err)

	next := recvResult(t, stream)
	snapshot, ok = next.Value()
	require.True(t, ok)
	require.Len(t, snapshot, 1)
	assert.Equal(t, "Live", snapshot[0].Name)

	cached, found := env.seeds.seeds.get(id)
	require.True(t, found)
	assert.Equal(t, "Live", cached.Name)
}

func TestSeedWatchAllReportsQueryFailure(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	env := newTestEnv(t)

	require.NoError(t, env.store.Close())

	stream := env.seeds.WatchAll(ctx)
	res := recvResult(t, stream)

	assert.Equal(t, types.StatusFailed, res.Status())
	assert.ErrorIs(t, res.Err(), types.ErrStoreClosed)
}

func TestSeedWatchAllCoalescesBursts(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	env := newTestEnv(t)

	gardenID, err := env.gardens.Insert(ctx, types.Garden{Name: "Default"})
	require.NoError(t, err)

	stream := env.seeds.WatchAll(ctx)
	recvResult(t, stream)

	// The stream goroutine is parked on the subscription while we write a
	// burst; its one-slot buffer keeps a single pending notification, so the
	// stream needs at most a handful of emissions to reach the final state.
	for _, name := range []string{"a", "b", "c", "d"} {
		_, err := env.store.InsertSeed(ctx, types.Seed{Name: name, GardenID: gardenID}, nil, nil)
		require.NoError(t, err)
	}

	deadline := time.After(2 * time.Second)
	for {
		select {
		case res, open := <-stream:
			require.True(t, open, "stream closed before reaching the final state")
			snapshot, ok := res.Value()
			require.True(t, ok, "snapshot failed: %v", res.Err())
			if len(snapshot) == 4 {
				return
			}
		case <-deadline:
			t.Fatal("stream never converged on the final collection")
		}
	}
}
