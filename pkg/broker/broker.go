// Package broker fans values out to any number of subscribers.
//
// Publish never blocks. Each subscriber owns a small buffer; when it is full
// the oldest pending value is dropped in favour of the new one. Consumers that
// only care about the latest state (snapshots, change notifications) can
// therefore never stall a publisher.
package broker

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// DefaultBuffer is used when New is given a non-positive size.
const DefaultBuffer = 16

// Broker is a publish/subscribe hub over a single logical channel.
type Broker[T any] struct {
	mu     sync.Mutex
	subs   map[uuid.UUID]*subscription[T]
	buffer int
	closed bool
}

type subscription[T any] struct {
	ch   chan T
	stop func() bool
}

// New creates a broker whose subscribers buffer up to size values.
func New[T any](size int) *Broker[T] {
	if size <= 0 {
		size = DefaultBuffer
	}
	return &Broker[T]{
		subs:   make(map[uuid.UUID]*subscription[T]),
		buffer: size,
	}
}

// Subscribe registers a subscriber. The channel is closed when ctx is done
// or the broker is closed.
func (b *Broker[T]) Subscribe(ctx context.Context) <-chan T {
	return b.subscribe(ctx, nil)
}

// SubscribeFrom registers a subscriber whose first value is initial.
// The seed and the registration happen atomically with respect to Publish,
// so no value published afterwards can arrive before it.
func (b *Broker[T]) SubscribeFrom(ctx context.Context, initial T) <-chan T {
	return b.subscribe(ctx, &initial)
}

func (b *Broker[T]) subscribe(ctx context.Context, initial *T) <-chan T {
	ch := make(chan T, b.buffer)

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed || ctx.Err() != nil {
		close(ch)
		return ch
	}
	if initial != nil {
		ch <- *initial
	}

	id := uuid.New()
	sub := &subscription[T]{ch: ch}
	b.subs[id] = sub
	sub.stop = context.AfterFunc(ctx, func() { b.remove(id) })
	return ch
}

func (b *Broker[T]) remove(id uuid.UUID) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if sub, ok := b.subs[id]; ok {
		delete(b.subs, id)
		close(sub.ch)
	}
}

// Publish delivers v to every subscriber.
func (b *Broker[T]) Publish(v T) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, sub := range b.subs {
		select {
		case sub.ch <- v:
			continue
		default:
		}
		// Full: drop the oldest value. Publishers are serialized by b.mu,
		// so the slot freed here is still free for the send below.
		select {
		case <-sub.ch:
		default:
		}
		select {
		case sub.ch <- v:
		default:
		}
	}
}

// Len returns the number of active subscribers.
func (b *Broker[T]) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}

// Close closes every subscriber channel. Later subscriptions receive a closed channel.
func (b *Broker[T]) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for id, sub := range b.subs {
		sub.stop()
		close(sub.ch)
		delete(b.subs, id)
	}
}
