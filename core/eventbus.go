package core

import (
	"sync"

	"marketnet/core/types"
)

// eventBus fans committed operation events out to subscribers. Delivery is
// best effort: a subscriber whose buffer is full misses events instead of
// stalling the settlement path.
type eventBus struct {
	mu   sync.Mutex
	subs map[uint64]chan *types.Event
	next uint64
}

func newEventBus() *eventBus {
	return &eventBus{subs: make(map[uint64]chan *types.Event)}
}

func (b *eventBus) subscribe(buffer int) (<-chan *types.Event, func()) {
	if buffer <= 0 {
		buffer = 64
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	id := b.next
	b.next++
	ch := make(chan *types.Event, buffer)
	b.subs[id] = ch
	cancel := func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if sub, ok := b.subs[id]; ok {
			delete(b.subs, id)
			close(sub)
		}
	}
	return ch, cancel
}

func (b *eventBus) publish(events []*types.Event) {
	if len(events) == 0 {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, evt := range events {
		for _, sub := range b.subs {
			select {
			case sub <- evt:
			default:
			}
		}
	}
}
