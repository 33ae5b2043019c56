// Package bus provides the synchronous event bus used by the playback
// engine and slideshow rotator.
package bus

import (
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/lumideck/lumideck/src/media"
)

// SyncBus delivers events to subscribers synchronously, in subscription
// order. Publishing is fire-and-forget: handlers return nothing and panics
// in a handler are recovered and logged so one bad subscriber cannot take
// playback down with it.
type SyncBus struct {
	mu          sync.RWMutex
	subscribers map[media.EventType][]subscription
	wildcard    []subscription
	idCounter   uint64
	closed      bool
}

type subscription struct {
	id      media.SubscriptionID
	handler media.EventHandler
}

// NewSyncBus creates an empty bus.
func NewSyncBus() *SyncBus {
	return &SyncBus{
		subscribers: make(map[media.EventType][]subscription),
	}
}

// Publish delivers event to every matching subscriber. Type-specific
// handlers run before wildcard handlers; within each group, subscription
// order is preserved. A nil event or a closed bus is a no-op.
func (b *SyncBus) Publish(event media.Event) {
	if event == nil {
		return
	}

	b.mu.RLock()
	if b.closed {
		b.mu.RUnlock()
		return
	}
	typed := make([]subscription, len(b.subscribers[event.Type()]))
	copy(typed, b.subscribers[event.Type()])
	wild := make([]subscription, len(b.wildcard))
	copy(wild, b.wildcard)
	b.mu.RUnlock()

	for _, sub := range typed {
		callHandler(sub.handler, event)
	}
	for _, sub := range wild {
		callHandler(sub.handler, event)
	}
}

func callHandler(handler media.EventHandler, event media.Event) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("event handler panicked", "panic", r, "event_type", string(event.Type()))
		}
	}()
	handler(event)
}

// Subscribe registers a handler for one event type and returns an id usable
// with Unsubscribe. The same handler may be registered multiple times.
func (b *SyncBus) Subscribe(eventType media.EventType, handler media.EventHandler) media.SubscriptionID {
	if handler == nil {
		panic("event handler cannot be nil")
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		panic("cannot subscribe to closed event bus")
	}

	id := media.SubscriptionID(fmt.Sprintf("sub-%d", atomic.AddUint64(&b.idCounter, 1)))
	b.subscribers[eventType] = append(b.subscribers[eventType], subscription{id: id, handler: handler})
	return id
}

// SubscribeAll registers a handler that receives every event.
func (b *SyncBus) SubscribeAll(handler media.EventHandler) media.SubscriptionID {
	if handler == nil {
		panic("event handler cannot be nil")
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		panic("cannot subscribe to closed event bus")
	}

	id := media.SubscriptionID(fmt.Sprintf("sub-all-%d", atomic.AddUint64(&b.idCounter, 1)))
	b.wildcard = append(b.wildcard, subscription{id: id, handler: handler})
	return id
}

// Unsubscribe removes a subscription. Unknown ids are a no-op.
func (b *SyncBus) Unsubscribe(id media.SubscriptionID) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for eventType, subs := range b.subscribers {
		for i, sub := range subs {
			if sub.id == id {
				b.subscribers[eventType] = append(subs[:i], subs[i+1:]...)
				return
			}
		}
	}
	for i, sub := range b.wildcard {
		if sub.id == id {
			b.wildcard = append(b.wildcard[:i], b.wildcard[i+1:]...)
			return
		}
	}
}

// Close drops all subscriptions. Publishing after Close is a no-op.
func (b *SyncBus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return fmt.Errorf("event bus already closed")
	}
	b.closed = true
	b.subscribers = make(map[media.EventType][]subscription)
	b.wildcard = nil
	return nil
}

var _ media.Bus = (*SyncBus)(nil)
