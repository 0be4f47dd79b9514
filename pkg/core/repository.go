package core

import "context"

// Repository defines the contract for storing and retrieving notes.
// Adhering to this interface allows the core to be independent of the
// underlying storage mechanism (SQLite, YAML file, memory).
//
// Every operation touches at most one row and relies on the storage medium
// for atomicity; there are no multi-row transactions.
type Repository interface {
	// Insert persists a new note and returns its assigned ID.
	Insert(ctx context.Context, d Draft) (int64, error)

	// Update replaces all fields of the note identified by id.
	// A missing id affects zero rows and is not an error.
	Update(ctx context.Context, id int64, d Draft) error

	// Delete removes the note if present. A missing id is not an error.
	Delete(ctx context.Context, id int64) error

	// Get retrieves a note by ID. The boolean is false when the note does not exist.
	Get(ctx context.Context, id int64) (Note, bool, error)

	// List returns all notes ordered by Tujuan ascending, ties broken by ID.
	List(ctx context.Context) ([]Note, error)

	// Initialize ensures the underlying storage is ready (open handle, create tables/files).
	Initialize(ctx context.Context) error

	// Close releases the storage handle.
	Close() error
}

// Watchable is implemented by repositories that announce their committed mutations.
type Watchable interface {
	// Watch returns a stream of change events that closes when ctx is done.
	Watch(ctx context.Context) (<-chan Event, error)
}
