package core

import (
	"context"
	"fmt"
	"time"

	"github.com/aretw0/lifecycle"
)

// ObserveAll returns a live view of the whole notes table.
//
// The first value is the current snapshot; after that a new complete, ordered
// snapshot is sent after every burst of committed mutations. The channel only
// ever holds the newest snapshot, so a slow reader skips intermediate states
// instead of receiving deltas. Query failures do not end the stream: they go to
// the error handler and the query is retried. The channel is closed when ctx is done.
func (s *Service) ObserveAll(ctx context.Context) (<-chan []Note, error) {
	// Subscribe before the first query so no mutation falls in between.
	events, err := s.Watch(ctx)
	if err != nil {
		return nil, err
	}

	out := make(chan []Note, 1)
	s.trackObserver(1)

	lifecycle.Go(ctx, func(ctx context.Context) error {
		defer s.trackObserver(-1)
		defer close(out)

		var retry <-chan time.Time
		refresh := func() {
			notes, err := s.repo.List(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				s.report(fmt.Errorf("observe notes: %w", err))
				retry = time.After(s.retryInterval)
				return
			}
			retry = nil
			if notes == nil {
				notes = []Note{}
			}
			// Replace a snapshot nobody picked up yet.
			select {
			case <-out:
			default:
			}
			out <- notes
		}

		refresh()
		for {
			select {
			case <-ctx.Done():
				return nil
			case <-retry:
				refresh()
			case _, ok := <-events:
				if !ok {
					return nil
				}
				drain(events)
				refresh()
			}
		}
	}, lifecycle.WithErrorHandler(s.report))

	return out, nil
}

// drain discards events already queued; one query covers all of them.
func drain(events <-chan Event) {
	for {
		select {
		case _, ok := <-events:
			if !ok {
				return
			}
		default:
			return
		}
	}
}

func (s *Service) trackObserver(delta int) {
	s.mu.Lock()
	s.observers += delta
	s.mu.Unlock()
}
