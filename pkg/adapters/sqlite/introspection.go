package sqlite

import (
	"time"

	"github.com/aretw0/introspection"
)

// RepositoryState exposes internal state for observability.
type RepositoryState struct {
	Path         string     `json:"path"`
	Open         bool       `json:"open"`
	ReadOnly     bool       `json:"read_only"`
	CachedNotes  int        `json:"cached_notes"`
	Watchers     int        `json:"watchers"`
	LastMutation *time.Time `json:"last_mutation,omitempty"`
}

// State implements introspection.Introspectable.
func (r *Repository) State() any {
	r.mu.RLock()
	defer r.mu.RUnlock()

	cached := 0
	if r.cache != nil {
		cached = r.cache.ItemCount()
	}

	return RepositoryState{
		Path:         r.Path,
		Open:         r.db != nil,
		ReadOnly:     r.config.ReadOnly,
		CachedNotes:  cached,
		Watchers:     r.events.Len(),
		LastMutation: r.lastMutation,
	}
}

// ComponentType implements introspection.Component.
func (r *Repository) ComponentType() string {
	return "sqlite"
}

var _ introspection.Introspectable = (*Repository)(nil)
var _ introspection.Component = (*Repository)(nil)
