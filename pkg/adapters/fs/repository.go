// Package fs implements the Wanderlist note table as a YAML file.
//
// The whole table lives in {Path}/notes.yaml and every mutation rewrites it
// atomically. Preferences live in {Path}/{SystemDir}/preferences.yaml.
// Edits made to notes.yaml by other processes are picked up by an fsnotify
// watcher and announced as core.EventReload.
package fs

import (
	"context"
	"crypto/sha256"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/aretw0/wanderlist/pkg/broker"
	"github.com/aretw0/wanderlist/pkg/core"
)

const (
	// TableFile is the name of the notes table inside the data directory.
	TableFile = "notes.yaml"
	// PreferencesFile is the name of the preferences file inside the system directory.
	PreferencesFile = "preferences.yaml"
	// DefaultSystemDir holds files that are not notes.
	DefaultSystemDir = ".wanderlist"
)

// Repository implements core.Repository on top of a YAML file.
type Repository struct {
	Path   string
	config Config
	events *broker.Broker[core.Event]

	// mu serializes read-modify-write cycles on the table file
	// and guards the fields below.
	mu            sync.Mutex
	digest        [sha256.Size]byte // content of notes.yaml last written or announced
	watcher       *watchWorker
	watcherActive bool
	lastReconcile *time.Time
	closed        bool
}

// Config holds the configuration for the filesystem repository.
type Config struct {
	Path         string
	SystemDir    string // e.g. ".wanderlist"
	Logger       *slog.Logger
	ReadOnly     bool
	MustExist    bool
	EventBuffer  int
	Debounce     time.Duration // zero means 50ms
	DisableWatch bool          // skip fsnotify; only this process's writes are announced
	LockTimeout  time.Duration // zero means DefaultLockTimeout
	ErrorHandler func(error)
}

// NewRepository creates a new filesystem-backed repository.
func NewRepository(config Config) *Repository {
	if config.SystemDir == "" {
		config.SystemDir = DefaultSystemDir
	}
	if config.Logger == nil {
		config.Logger = slog.New(slog.DiscardHandler)
	}
	if config.Debounce <= 0 {
		config.Debounce = 50 * time.Millisecond
	}
	if config.LockTimeout <= 0 {
		config.LockTimeout = DefaultLockTimeout
	}
	return &Repository{
		Path:   config.Path,
		config: config,
		events: broker.New[core.Event](config.EventBuffer),
	}
}

// Initialize creates the data directory and an empty table if needed.
func (r *Repository) Initialize(ctx context.Context) error {
	if r.config.MustExist || r.config.ReadOnly {
		info, err := os.Stat(r.Path)
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: data path does not exist: %s", core.ErrStorage, r.Path)
		}
		if err != nil {
			return fmt.Errorf("%w: %w", core.ErrStorage, err)
		}
		if !info.IsDir() {
			return fmt.Errorf("%w: data path is not a directory: %s", core.ErrStorage, r.Path)
		}
	}
	if r.config.ReadOnly {
		return nil
	}

	if err := os.MkdirAll(filepath.Join(r.Path, r.config.SystemDir), 0755); err != nil {
		return fmt.Errorf("%w: failed to create data directory: %w", core.ErrStorage, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, err := os.Stat(r.tablePath()); os.IsNotExist(err) {
		unlock, err := r.lock(ctx)
		if err != nil {
			return err
		}
		defer unlock()
		// Another process may have created it while we waited.
		if _, err := os.Stat(r.tablePath()); os.IsNotExist(err) {
			return r.writeTable(&table{NextID: 1})
		}
	}
	_, digest, err := readTable(r.tablePath())
	if err != nil {
		return fmt.Errorf("%w: %w", core.ErrStorage, err)
	}
	r.digest = digest
	return nil
}

// Close stops the watcher and ends every Watch stream.
func (r *Repository) Close() error {
	r.mu.Lock()
	w := r.watcher
	r.watcher = nil
	r.closed = true
	r.mu.Unlock()

	if w != nil {
		w.stop()
	}
	r.events.Close()
	return nil
}

// writeTable must be called with r.mu held.
func (r *Repository) writeTable(t *table) error {
	data, err := encodeTable(t)
	if err != nil {
		return fmt.Errorf("%w: encode notes table: %w", core.ErrStorage, err)
	}
	if err := writeFileAtomic(r.tablePath(), data, 0644); err != nil {
		return fmt.Errorf("%w: %w", core.ErrStorage, err)
	}
	r.digest = sha256.Sum256(data)
	return nil
}

func (r *Repository) loadTable() (*table, error) {
	t, _, err := readTable(r.tablePath())
	if err != nil {
		return nil, fmt.Errorf("%w: %w", core.ErrStorage, err)
	}
	return t, nil
}

// mutate runs fn on the current table and persists the result when fn reports
// a change. The table is re-read under the directory lock, so writers in other
// processes never lose each other's rows.
func (r *Repository) mutate(ctx context.Context, fn func(t *table) (changed bool)) error {
	if r.config.ReadOnly {
		return core.ErrReadOnly
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return fmt.Errorf("%w: repository is closed", core.ErrStorage)
	}
	unlock, err := r.lock(ctx)
	if err != nil {
		return err
	}
	defer unlock()

	t, err := r.loadTable()
	if err != nil {
		return err
	}
	if !fn(t) {
		return nil
	}
	return r.writeTable(t)
}

// Insert appends a row with a freshly allocated ID.
func (r *Repository) Insert(ctx context.Context, d core.Draft) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	var id int64
	err := r.mutate(ctx, func(t *table) bool {
		id = t.allocate()
		t.Notes = append(t.Notes, core.Note{ID: id, Tujuan: d.Tujuan, Kendaraan: d.Kendaraan, Catatan: d.Catatan})
		return true
	})
	if err != nil {
		return 0, err
	}

	r.publish(core.EventCreate, id)
	return id, nil
}

// Update replaces the fields of row id. A missing id leaves the file untouched.
func (r *Repository) Update(ctx context.Context, id int64, d core.Draft) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	found := false
	err := r.mutate(ctx, func(t *table) bool {
		i := t.index(id)
		if i < 0 {
			return false
		}
		found = true
		t.Notes[i] = core.Note{ID: id, Tujuan: d.Tujuan, Kendaraan: d.Kendaraan, Catatan: d.Catatan}
		return true
	})
	if err != nil || !found {
		return err
	}

	r.publish(core.EventModify, id)
	return nil
}

// Delete removes row id if present.
func (r *Repository) Delete(ctx context.Context, id int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	found := false
	err := r.mutate(ctx, func(t *table) bool {
		i := t.index(id)
		if i < 0 {
			return false
		}
		found = true
		t.Notes = append(t.Notes[:i], t.Notes[i+1:]...)
		return true
	})
	if err != nil || !found {
		return err
	}

	r.publish(core.EventDelete, id)
	return nil
}

// Get retrieves a note by ID.
func (r *Repository) Get(ctx context.Context, id int64) (core.Note, bool, error) {
	if err := ctx.Err(); err != nil {
		return core.Note{}, false, err
	}

	t, err := r.loadTable()
	if err != nil {
		return core.Note{}, false, err
	}
	if i := t.index(id); i >= 0 {
		return t.Notes[i], true, nil
	}
	return core.Note{}, false, nil
}

// List returns every note ordered by tujuan, then by id.
func (r *Repository) List(ctx context.Context) ([]core.Note, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	t, err := r.loadTable()
	if err != nil {
		return nil, err
	}
	notes := make([]core.Note, len(t.Notes))
	copy(notes, t.Notes)
	core.SortNotes(notes)
	return notes, nil
}

// Watch streams committed mutations. Unless disabled, the first call also starts
// the fsnotify worker so that external edits show up as core.EventReload.
func (r *Repository) Watch(ctx context.Context) (<-chan core.Event, error) {
	if !r.config.DisableWatch {
		if err := r.ensureWatcher(); err != nil {
			r.handleError(fmt.Errorf("external change detection unavailable: %w", err))
		}
	}
	return r.events.Subscribe(ctx), nil
}

func (r *Repository) ensureWatcher() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.watcher != nil || r.closed {
		return nil
	}
	w := newWatchWorker(r, r.config.Debounce)
	if err := w.start(); err != nil {
		return err
	}
	r.watcher = w
	r.watcherActive = true
	return nil
}

// GetPreference reads a value from the preferences file.
func (r *Repository) GetPreference(ctx context.Context, key string) (string, bool, error) {
	prefs, err := readPreferences(r.preferencesPath())
	if err != nil {
		return "", false, fmt.Errorf("%w: %w", core.ErrStorage, err)
	}
	v, ok := prefs[key]
	return v, ok, nil
}

// SetPreference writes a value to the preferences file durably.
func (r *Repository) SetPreference(ctx context.Context, key, value string) error {
	if r.config.ReadOnly {
		return core.ErrReadOnly
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	unlock, err := r.lock(ctx)
	if err != nil {
		return err
	}
	defer unlock()

	prefs, err := readPreferences(r.preferencesPath())
	if err != nil {
		return fmt.Errorf("%w: %w", core.ErrStorage, err)
	}
	prefs[key] = value

	data, err := yaml.Marshal(prefs)
	if err != nil {
		return fmt.Errorf("%w: encode preferences: %w", core.ErrStorage, err)
	}
	if err := os.MkdirAll(filepath.Dir(r.preferencesPath()), 0755); err != nil {
		return fmt.Errorf("%w: %w", core.ErrStorage, err)
	}
	if err := writeFileAtomic(r.preferencesPath(), data, 0644); err != nil {
		return fmt.Errorf("%w: %w", core.ErrStorage, err)
	}
	return nil
}

// externalChange is called by the watcher with the digest of the current file
// content. It reports whether the content differs from what this process last
// wrote or announced.
func (r *Repository) externalChange(digest [sha256.Size]byte) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if digest == r.digest {
		return false
	}
	r.digest = digest
	now := time.Now()
	r.lastReconcile = &now
	return true
}

func (r *Repository) publish(t core.EventType, id int64) {
	r.events.Publish(core.Event{Type: t, ID: id, Timestamp: time.Now().Unix()})
}

func (r *Repository) handleError(err error) {
	r.config.Logger.Error("fs repository", "error", err)
	if r.config.ErrorHandler != nil {
		r.config.ErrorHandler(err)
	}
}

var (
	_ core.Repository = (*Repository)(nil)
	_ core.Watchable  = (*Repository)(nil)
)
