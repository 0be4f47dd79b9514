// Package memory provides a process-local notes repository.
// It is used for tests and for embedding Wanderlist without any persistence.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/aretw0/wanderlist/pkg/broker"
	"github.com/aretw0/wanderlist/pkg/core"
)

// Repository implements core.Repository and core.Watchable in memory.
type Repository struct {
	mu     sync.RWMutex
	notes  map[int64]core.Note
	nextID int64
	prefs  map[string]string
	events *broker.Broker[core.Event]
	fail   error
}

// NewRepository creates an empty in-memory repository.
func NewRepository() *Repository {
	return &Repository{
		notes:  make(map[int64]core.Note),
		nextID: 1,
		prefs:  make(map[string]string),
		events: broker.New[core.Event](broker.DefaultBuffer),
	}
}

func (r *Repository) Initialize(ctx context.Context) error { return nil }

func (r *Repository) Close() error {
	r.events.Close()
	return nil
}

func (r *Repository) failure() error {
	return r.fail
}

func (r *Repository) Insert(ctx context.Context, d core.Draft) (int64, error) {
	r.mu.Lock()
	if err := r.failure(); err != nil {
		r.mu.Unlock()
		return 0, err
	}
	id := r.nextID
	r.nextID++
	r.notes[id] = core.Note{ID: id, Tujuan: d.Tujuan, Kendaraan: d.Kendaraan, Catatan: d.Catatan}
	r.mu.Unlock()

	r.publish(core.EventCreate, id)
	return id, nil
}

func (r *Repository) Update(ctx context.Context, id int64, d core.Draft) error {
	r.mu.Lock()
	if err := r.failure(); err != nil {
		r.mu.Unlock()
		return err
	}
	if _, ok := r.notes[id]; !ok {
		r.mu.Unlock()
		return nil
	}
	r.notes[id] = core.Note{ID: id, Tujuan: d.Tujuan, Kendaraan: d.Kendaraan, Catatan: d.Catatan}
	r.mu.Unlock()

	r.publish(core.EventModify, id)
	return nil
}

func (r *Repository) Delete(ctx context.Context, id int64) error {
	r.mu.Lock()
	if err := r.failure(); err != nil {
		r.mu.Unlock()
		return err
	}
	if _, ok := r.notes[id]; !ok {
		r.mu.Unlock()
		return nil
	}
	delete(r.notes, id)
	r.mu.Unlock()

	r.publish(core.EventDelete, id)
	return nil
}

func (r *Repository) Get(ctx context.Context, id int64) (core.Note, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if err := r.failure(); err != nil {
		return core.Note{}, false, err
	}
	n, ok := r.notes[id]
	return n, ok, nil
}

func (r *Repository) List(ctx context.Context) ([]core.Note, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if err := r.failure(); err != nil {
		return nil, err
	}
	notes := make([]core.Note, 0, len(r.notes))
	for _, n := range r.notes {
		notes = append(notes, n)
	}
	core.SortNotes(notes)
	return notes, nil
}

// SetFail makes every operation return err until it is called with nil.
// Tests use it to simulate an unavailable medium.
func (r *Repository) SetFail(err error) {
	r.mu.Lock()
	r.fail = err
	r.mu.Unlock()
}

// Touch publishes a reload event without changing data.
func (r *Repository) Touch() {
	r.publish(core.EventReload, 0)
}

func (r *Repository) Watch(ctx context.Context) (<-chan core.Event, error) {
	return r.events.Subscribe(ctx), nil
}

func (r *Repository) GetPreference(ctx context.Context, key string) (string, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if err := r.failure(); err != nil {
		return "", false, err
	}
	v, ok := r.prefs[key]
	return v, ok, nil
}

func (r *Repository) SetPreference(ctx context.Context, key, value string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.failure(); err != nil {
		return err
	}
	r.prefs[key] = value
	return nil
}

// ComponentType implements introspection.Component.
func (r *Repository) ComponentType() string {
	return "memory"
}

func (r *Repository) publish(t core.EventType, id int64) {
	r.events.Publish(core.Event{Type: t, ID: id, Timestamp: time.Now().Unix()})
}

var (
	_ core.Repository = (*Repository)(nil)
	_ core.Watchable  = (*Repository)(nil)
)
