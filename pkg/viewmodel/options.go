// Package viewmodel adapts the notes service into state a rendering layer can
// bind to: a live list with a defined initial value and a detail editor whose
// operations complete asynchronously.
package viewmodel

import (
	"log/slog"
	"time"
)

// DefaultGracePeriod keeps the upstream subscription of a NoteList alive after
// the last subscriber leaves.
const DefaultGracePeriod = 5 * time.Second

type options struct {
	grace    time.Duration
	logger   *slog.Logger
	notifier func(error)
}

// Option configures the view-models created by a Factory.
type Option func(*options)

// WithGracePeriod sets how long a NoteList stays subscribed upstream with no
// subscribers. Zero or negative stops it as soon as the last one leaves.
func WithGracePeriod(d time.Duration) Option {
	return func(o *options) {
		o.grace = d
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithNotifier registers the function that surfaces failures to the user,
// such as a transient toast or a CLI message.
func WithNotifier(fn func(error)) Option {
	return func(o *options) {
		o.notifier = fn
	}
}

func newOptions(opts []Option) options {
	o := options{
		grace:  DefaultGracePeriod,
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

func (o options) notify(err error) {
	o.logger.Warn("operation failed", "error", err)
	if o.notifier != nil {
		o.notifier(err)
	}
}
