// Package bus provides the change-notification channel connecting the
// store's write path to live repository queries. A Bus is constructed
// explicitly at process start and injected into the components that need
// it; it is never ambient global state.
package bus

import (
	"sync"

	"github.com/google/uuid"
)

// Op identifies the kind of write that produced an event.
type Op string

// Write operations carried by events.
const (
	OpInsert    Op = "insert"
	OpUpdate    Op = "update"
	OpDelete    Op = "delete"
	OpDeleteAll Op = "delete_all"
)

// Event describes one committed write. ID is zero for DeleteAll.
type Event struct {
	Table string
	Op    Op
	ID    int64
}

// Subscription is one subscriber's view of a topic. C carries events until
// Cancel is called or the bus is closed.
type Subscription struct {
	ID     string
	C      <-chan Event
	cancel func()
}

// Cancel removes the subscription from the bus. Idempotent. Events already
// queued on C remain readable; C is closed once the subscription is gone.
func (s *Subscription) Cancel() {
	s.cancel()
}

// Bus is a topic-keyed publish/subscribe channel. Delivery is coalescing:
// each subscriber holds a buffer of one pending event, and a publish that
// finds the buffer full is dropped, because a queued notification already
// forces subscribers to re-read current state.
type Bus struct {
	mu     sync.Mutex
	closed bool
	subs   map[string]map[string]chan Event // topic -> subscription id -> channel
}

// New returns an empty Bus.
func New() *Bus {
	return &Bus{subs: make(map[string]map[string]chan Event)}
}

// Subscribe registers a new subscriber for the given topic. Subscribing to
// a closed bus returns a subscription whose channel is already closed.
func (b *Bus) Subscribe(topic string) *Subscription {
	ch := make(chan Event, 1)
	id := uuid.Must(uuid.NewV7()).String()

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		close(ch)
		return &Subscription{ID: id, C: ch, cancel: func() {}}
	}

	if b.subs[topic] == nil {
		b.subs[topic] = make(map[string]chan Event)
	}
	b.subs[topic][id] = ch

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			if subs, ok := b.subs[topic]; ok {
				if c, ok := subs[id]; ok {
					delete(subs, id)
					close(c)
				}
			}
		})
	}
	return &Subscription{ID: id, C: ch, cancel: cancel}
}

// Publish delivers ev to every subscriber of topic. Never blocks: a
// subscriber with a pending undelivered event keeps only the earlier one.
func (b *Bus) Publish(topic string, ev Event) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}
	for _, ch := range b.subs[topic] {
		select {
		case ch <- ev:
		default:
		}
	}
}

// Close tears down the bus and closes every subscriber channel. Publish and
// Subscribe on a closed bus are no-ops. Idempotent.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}
	b.closed = true
	for _, subs := range b.subs {
		for id, ch := range subs {
			delete(subs, id)
			close(ch)
		}
	}
}
