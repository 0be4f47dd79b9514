package viewmodel

import (
	"context"
	"sync"
	"time"

	"github.com/aretw0/lifecycle"

	"github.com/aretw0/wanderlist/pkg/broker"
	"github.com/aretw0/wanderlist/pkg/core"
)

// Source produces live snapshots of the notes table.
type Source interface {
	ObserveAll(ctx context.Context) (<-chan []core.Note, error)
}

// NoteList is the list view-model. Its value is never unset: it starts as an
// empty slice and follows the upstream stream while anyone is subscribed.
type NoteList struct {
	source    Source
	opts      options
	snapshots *broker.Broker[[]core.Note]

	mu          sync.Mutex
	value       []core.Note
	subscribers int
	upstream    context.CancelFunc
	run         uint64 // identifies the current upstream goroutine
	grace       *time.Timer
	graceRun    uint64 // identifies the pending grace timer
	closed      bool
}

// NewNoteList creates a NoteList over source. No query runs until the first Subscribe.
func NewNoteList(source Source, opts ...Option) *NoteList {
	return &NoteList{
		source:    source,
		opts:      newOptions(opts),
		snapshots: broker.New[[]core.Note](1),
		value:     []core.Note{},
	}
}

// Value returns the latest snapshot, empty before the first emission.
func (l *NoteList) Value() []core.Note {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.value
}

// Subscribe delivers the current value immediately and then every new
// snapshot. Only the newest pending snapshot is kept for a slow reader. The
// channel closes when ctx is done or the NoteList is closed.
func (l *NoteList) Subscribe(ctx context.Context) <-chan []core.Note {
	l.mu.Lock()
	defer l.mu.Unlock()

	ch := l.snapshots.SubscribeFrom(ctx, l.value)
	if l.closed || ctx.Err() != nil {
		return ch
	}

	l.subscribers++
	l.cancelGrace()
	if l.upstream == nil {
		l.start()
	}

	context.AfterFunc(ctx, l.release)
	return ch
}

// Subscribers returns the number of active subscribers.
func (l *NoteList) Subscribers() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.subscribers
}

// Active reports whether the upstream subscription is running.
func (l *NoteList) Active() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.upstream != nil
}

// Close stops the upstream subscription and closes every subscriber channel.
func (l *NoteList) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return
	}
	l.closed = true
	l.cancelGrace()
	l.stop()
	l.snapshots.Close()
}

// start must be called with l.mu held.
func (l *NoteList) start() {
	ctx, cancel := context.WithCancel(context.Background())
	stream, err := l.source.ObserveAll(ctx)
	if err != nil {
		cancel()
		l.opts.notify(err)
		return
	}

	l.run++
	id := l.run
	l.upstream = cancel
	l.opts.logger.Debug("list upstream started")

	lifecycle.Go(ctx, func(ctx context.Context) error {
		for notes := range stream {
			l.mu.Lock()
			if l.run != id || l.upstream == nil {
				l.mu.Unlock()
				continue
			}
			l.value = notes
			l.snapshots.Publish(notes)
			l.mu.Unlock()
		}

		// The source ended on its own (e.g. repository closed); the next
		// Subscribe starts a new one.
		l.mu.Lock()
		if l.run == id && l.upstream != nil {
			l.upstream()
			l.upstream = nil
		}
		l.mu.Unlock()
		return nil
	}, lifecycle.WithErrorHandler(l.opts.notify))
}

// stop must be called with l.mu held.
func (l *NoteList) stop() {
	if l.upstream == nil {
		return
	}
	l.upstream()
	l.upstream = nil
	l.opts.logger.Debug("list upstream stopped")
}

func (l *NoteList) release() {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.subscribers--
	if l.subscribers > 0 || l.closed {
		return
	}
	if l.opts.grace <= 0 {
		l.stop()
		return
	}

	l.graceRun++
	id := l.graceRun
	l.grace = time.AfterFunc(l.opts.grace, func() {
		l.mu.Lock()
		defer l.mu.Unlock()
		if l.graceRun != id || l.subscribers > 0 {
			return
		}
		l.grace = nil
		l.stop()
	})
}

// cancelGrace must be called with l.mu held. A timer that already fired is
// neutralized through graceRun.
func (l *NoteList) cancelGrace() {
	if l.grace == nil {
		return
	}
	l.grace.Stop()
	l.grace = nil
	l.graceRun++
}
