// Package prefs persists the layout preference of the notes screen.
package prefs

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"sync"

	"github.com/aretw0/lifecycle"

	"github.com/aretw0/wanderlist/pkg/broker"
)

// KeyShowList is the preference key for the list/grid switch.
const KeyShowList = "show_list"

// DefaultShowList is used when the preference was never saved: list layout.
const DefaultShowList = true

// Backend stores string preferences durably.
type Backend interface {
	GetPreference(ctx context.Context, key string) (value string, ok bool, err error)
	SetPreference(ctx context.Context, key, value string) error
}

// Store exposes the showList preference as a value and as a stream.
type Store struct {
	backend Backend
	logger  *slog.Logger
	changes *broker.Broker[bool]

	// mu orders Save calls so observers see writes in commit order.
	mu sync.Mutex
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger for the store.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewStore creates a Store on top of backend.
func NewStore(backend Backend, opts ...Option) *Store {
	s := &Store{
		backend: backend,
		logger:  slog.New(slog.DiscardHandler),
		changes: broker.New[bool](1),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ShowList returns the saved layout; true (list) when never saved.
func (s *Store) ShowList(ctx context.Context) (bool, error) {
	raw, ok, err := s.backend.GetPreference(ctx, KeyShowList)
	if err != nil {
		return DefaultShowList, fmt.Errorf("read %s: %w", KeyShowList, err)
	}
	if !ok {
		return DefaultShowList, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		s.logger.Warn("ignoring malformed preference", "key", KeyShowList, "value", raw)
		return DefaultShowList, nil
	}
	return v, nil
}

// Save persists value. It returns once the backend reports the write durable,
// then notifies observers.
func (s *Store) Save(ctx context.Context, value bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.backend.SetPreference(ctx, KeyShowList, strconv.FormatBool(value)); err != nil {
		return fmt.Errorf("save %s: %w", KeyShowList, err)
	}
	s.logger.Debug("layout preference saved", "show_list", value)
	s.changes.Publish(value)
	return nil
}

// Toggle flips between list and grid and returns the new value.
func (s *Store) Toggle(ctx context.Context) (bool, error) {
	current, err := s.ShowList(ctx)
	if err != nil {
		return current, err
	}
	next := !current
	if err := s.Save(ctx, next); err != nil {
		return current, err
	}
	return next, nil
}

// Observe emits the current value immediately and then every change.
// Repeated equal values are suppressed. The channel closes when ctx is done.
func (s *Store) Observe(ctx context.Context) (<-chan bool, error) {
	ctx, cancel := context.WithCancel(ctx)

	// Subscribe before reading so a concurrent Save is not lost.
	updates := s.changes.Subscribe(ctx)

	current, err := s.ShowList(ctx)
	if err != nil {
		cancel()
		return nil, err
	}

	out := make(chan bool, 1)
	out <- current

	lifecycle.Go(ctx, func(ctx context.Context) error {
		defer cancel()
		defer close(out)
		last := current
		for {
			select {
			case <-ctx.Done():
				return nil
			case v, ok := <-updates:
				if !ok {
					return nil
				}
				if v == last {
					continue
				}
				last = v
				select {
				case out <- v:
				case <-ctx.Done():
					return nil
				}
			}
		}
	}, lifecycle.WithErrorHandler(func(err error) {
		s.logger.Error("preference stream failure", "error", err)
	}))

	return out, nil
}

// Close ends every Observe stream.
func (s *Store) Close() {
	s.changes.Close()
}

// LayoutName returns "list" or "grid".
func LayoutName(showList bool) string {
	if showList {
		return "list"
	}
	return "grid"
}
