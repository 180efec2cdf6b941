package bus

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func recvTimeout(t *testing.T, c <-chan Event) (Event, bool) {
	t.Helper()
	select {
	case ev, ok := <-c:
		return ev, ok
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for event")
		return Event{}, false
	}
}

func TestPublishSubscribe(t *testing.T) {
	b := New()
	defer b.Close()

	sub := b.Subscribe("garden")
	defer sub.Cancel()

	b.Publish("garden", Event{Table: "garden", Op: OpInsert, ID: 1})

	ev, ok := recvTimeout(t, sub.C)
	require.True(t, ok)
	assert.Equal(t, Event{Table: "garden", Op: OpInsert, ID: 1}, ev)
}

func TestTopicsAreIsolated(t *testing.T) {
	b := New()
	defer b.Close()

	gardens := b.Subscribe("garden")
	defer gardens.Cancel()
	seeds := b.Subscribe("seed")
	defer seeds.Cancel()

	b.Publish("seed", Event{Table: "seed", Op: OpDelete, ID: 3})

	ev, ok := recvTimeout(t, seeds.C)
	require.True(t, ok)
	assert.Equal(t, int64(3), ev.ID)

	select {
	case ev := <-gardens.C:
		t.Fatalf("garden subscriber received %+v", ev)
	default:
	}
}

func TestPublishCoalescesWhenSubscriberLags(t *testing.T) {
	b := New()
	defer b.Close()

	sub := b.Subscribe("garden")
	defer sub.Cancel()

	// Buffer is one; the second publish is dropped, not blocked on.
	b.Publish("garden", Event{Table: "garden", Op: OpInsert, ID: 1})
	b.Publish("garden", Event{Table: "garden", Op: OpInsert, ID: 2})

	ev, ok := recvTimeout(t, sub.C)
	require.True(t, ok)
	assert.Equal(t, int64(1), ev.ID)

	select {
	case ev := <-sub.C:
		t.Fatalf("expected coalesced delivery, got %+v", ev)
	default:
	}
}

func TestCancelStopsDelivery(t *testing.T) {
	b := New()
	defer b.Close()

	sub := b.Subscribe("garden")
	sub.Cancel()
	sub.Cancel() // idempotent

	b.Publish("garden", Event{Table: "garden", Op: OpInsert, ID: 1})

	_, ok := <-sub.C
	assert.False(t, ok, "channel should be closed after cancel")
}

func TestCloseClosesSubscribers(t *testing.T) {
	b := New()
	sub := b.Subscribe("garden")

	b.Close()
	b.Close() // idempotent

	_, ok := recvTimeout(t, sub.C)
	assert.False(t, ok)

	// Post-close operations are no-ops.
	b.Publish("garden", Event{Table: "garden", Op: OpInsert, ID: 1})
	late := b.Subscribe("garden")
	_, ok = <-late.C
	assert.False(t, ok)
}

func TestSubscriptionIDsAreUnique(t *testing.T) {
	b := New()
	defer b.Close()

	a := b.Subscribe("garden")
	c := b.Subscribe("garden")
	assert.NotEqual(t, a.ID, c.ID)
}
