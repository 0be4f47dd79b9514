package core

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/lifecycle"
)

const (
	defaultEventBuffer   = 100
	defaultRetryInterval = time.Second
)

// Service handles the business logic for notes.
type Service struct {
	repo            Repository
	logger          *slog.Logger
	errorHandler    func(error)
	eventBufferSize int
	retryInterval   time.Duration

	mu        sync.RWMutex
	observers int
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithServiceLogger sets the logger used for background stream failures.
func WithServiceLogger(logger *slog.Logger) ServiceOption {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithEventBuffer sets the size of the buffer between the repository and Watch consumers.
// Zero or negative means default (100).
func WithEventBuffer(size int) ServiceOption {
	return func(s *Service) {
		if size > 0 {
			s.eventBufferSize = size
		}
	}
}

// WithErrorHandler registers a callback for errors that happen inside observation
// streams, which have no caller to return them to.
func WithErrorHandler(fn func(error)) ServiceOption {
	return func(s *Service) {
		s.errorHandler = fn
	}
}

// WithRetryInterval sets how long ObserveAll waits before re-running a failed query.
func WithRetryInterval(d time.Duration) ServiceOption {
	return func(s *Service) {
		if d > 0 {
			s.retryInterval = d
		}
	}
}

// NewService creates a new Service.
func NewService(repo Repository, opts ...ServiceOption) *Service {
	s := &Service{
		repo:            repo,
		logger:          slog.New(slog.DiscardHandler),
		eventBufferSize: defaultEventBuffer,
		retryInterval:   defaultRetryInterval,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Repository returns the underlying storage adapter.
func (s *Service) Repository() Repository {
	return s.repo
}

// InsertNote validates the draft and stores it as a new note.
func (s *Service) InsertNote(ctx context.Context, d Draft) (int64, error) {
	if err := d.Validate(); err != nil {
		return 0, err
	}
	return s.repo.Insert(ctx, d)
}

// UpdateNote validates the draft and replaces the fields of note id.
// Updating a missing note is a silent no-op.
func (s *Service) UpdateNote(ctx context.Context, id int64, d Draft) error {
	if err := d.Validate(); err != nil {
		return err
	}
	return s.repo.Update(ctx, id, d)
}

// DeleteNote removes note id. Deleting a missing note is a silent no-op.
func (s *Service) DeleteNote(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}

// GetNote retrieves a note. found is false when it does not exist.
func (s *Service) GetNote(ctx context.Context, id int64) (note Note, found bool, err error) {
	if id <= 0 {
		return Note{}, false, nil
	}
	return s.repo.Get(ctx, id)
}

// ListNotes retrieves all notes in display order.
func (s *Service) ListNotes(ctx context.Context) ([]Note, error) {
	return s.repo.List(ctx)
}

// Watch observes changes in the repository if supported.
// Events are buffered so a slow consumer does not hold up writers.
func (s *Service) Watch(ctx context.Context) (<-chan Event, error) {
	w, ok := s.repo.(Watchable)
	if !ok {
		return nil, errors.New("repository does not support watching")
	}

	upstream, err := w.Watch(ctx)
	if err != nil {
		return nil, err
	}

	out := make(chan Event, s.eventBufferSize)
	lifecycle.Go(ctx, func(ctx context.Context) error {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return nil
			case e, ok := <-upstream:
				if !ok {
					return nil
				}
				select {
				case out <- e:
				case <-ctx.Done():
					return nil
				}
			}
		}
	}, lifecycle.WithErrorHandler(s.report))

	return out, nil
}

func (s *Service) report(err error) {
	s.logger.Error("notes stream failure", "error", err)
	if s.errorHandler != nil {
		s.errorHandler(err)
	}
}
