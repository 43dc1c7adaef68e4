// Package pubsub implements the in-process subscription bus the cart store
// notifies after every committed mutation.
package pubsub

import (
	"context"
	"fmt"
	"sync"

	"github.com/bloomthreads/cartstate/pkg/logger"
)

type subscriber struct {
	id int
	fn func()
}

// Bus is an ordered registry of zero-argument callbacks. Delivery is
// synchronous and follows registration order; a panicking subscriber is
// isolated so the remaining subscribers are still notified.
type Bus struct {
	mu     sync.Mutex
	nextID int
	subs   []subscriber
	logg   *logger.Logger
}

func NewBus(logg *logger.Logger) *Bus {
	return &Bus{logg: logg}
}

// Subscribe registers fn and returns its unsubscribe function. Unsubscribing
// twice is a no-op.
func (b *Bus) Subscribe(fn func()) func() {
	if fn == nil {
		return func() {}
	}

	b.mu.Lock()
	b.nextID++
	id := b.nextID
	b.subs = append(b.subs, subscriber{id: id, fn: fn})
	b.mu.Unlock()

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		for i, sub := range b.subs {
			if sub.id == id {
				b.subs = append(b.subs[:i], b.subs[i+1:]...)
				return
			}
		}
	}
}

// Publish invokes every currently registered callback in registration order.
// The subscriber list is snapshotted first, so callbacks may subscribe or
// unsubscribe without affecting the in-flight delivery.
func (b *Bus) Publish(ctx context.Context) {
	b.mu.Lock()
	snapshot := make([]subscriber, len(b.subs))
	copy(snapshot, b.subs)
	b.mu.Unlock()

	for _, sub := range snapshot {
		b.deliver(ctx, sub)
	}
}

func (b *Bus) deliver(ctx context.Context, sub subscriber) {
	defer func() {
		if rec := recover(); rec != nil {
			if b.logg != nil {
				ctx = b.logg.WithField(ctx, "subscriber_id", sub.id)
				b.logg.Error(ctx, "subscriber.panic", fmt.Errorf("panic: %v", rec))
			}
		}
	}()
	sub.fn()
}

// Len reports the number of registered subscribers.
func (b *Bus) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}
