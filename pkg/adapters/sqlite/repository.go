// Package sqlite implements the Wanderlist note table on SQLite through GORM.
package sqlite

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/aretw0/wanderlist/pkg/broker"
	"github.com/aretw0/wanderlist/pkg/core"
)

// MemoryPath opens a private in-memory database.
const MemoryPath = ":memory:"

// DefaultCacheTTL is how long a point lookup stays cached.
const DefaultCacheTTL = 5 * time.Minute

// Repository implements core.Repository using a SQLite database.
type Repository struct {
	Path   string
	db     *gorm.DB
	cache  *gocache.Cache
	events *broker.Broker[core.Event]
	config Config

	mu           sync.RWMutex
	generation   uint64 // bumped on every cache eviction
	lastMutation *time.Time
	closed       bool
}

// Config holds the configuration for the SQLite repository.
type Config struct {
	Path          string // database file, or MemoryPath
	Logger        *slog.Logger
	SlowThreshold time.Duration // zero means DefaultSlowQueryThreshold
	CacheTTL      time.Duration // zero means DefaultCacheTTL, negative disables the cache
	EventBuffer   int           // per-subscriber buffer of the change feed
	ReadOnly      bool
}

// NewRepository creates a new SQLite-backed repository.
// No I/O happens until Initialize.
func NewRepository(config Config) *Repository {
	if config.Logger == nil {
		config.Logger = slog.New(slog.DiscardHandler)
	}
	if config.SlowThreshold == 0 {
		config.SlowThreshold = DefaultSlowQueryThreshold
	}
	if config.CacheTTL == 0 {
		config.CacheTTL = DefaultCacheTTL
	}

	r := &Repository{
		Path:   config.Path,
		events: broker.New[core.Event](config.EventBuffer),
		config: config,
	}
	if config.CacheTTL > 0 {
		r.cache = gocache.New(config.CacheTTL, 2*config.CacheTTL)
	}
	return r
}

// Initialize opens the database and migrates the schema.
func (r *Repository) Initialize(ctx context.Context) error {
	if r.Path == "" {
		return errors.New("sqlite: database path is empty")
	}

	dsn := r.Path
	if r.Path != MemoryPath {
		if r.config.ReadOnly {
			if _, err := os.Stat(r.Path); err != nil {
				return fmt.Errorf("%w: database does not exist: %w", core.ErrStorage, err)
			}
			dsn = "file:" + r.Path + "?mode=ro"
		} else if err := os.MkdirAll(filepath.Dir(r.Path), 0755); err != nil {
			return fmt.Errorf("%w: failed to create data directory: %w", core.ErrStorage, err)
		}
	}

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: newGormLogger(r.config.Logger, r.config.SlowThreshold),
	})
	if err != nil {
		return fmt.Errorf("%w: failed to open SQLite database: %w", core.ErrStorage, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("%w: %w", core.ErrStorage, err)
	}
	// One connection: writes are serialized and ":memory:" stays a single database.
	sqlDB.SetMaxOpenConns(1)

	if !r.config.ReadOnly {
		if err := db.WithContext(ctx).AutoMigrate(&noteRecord{}, &preferenceRecord{}); err != nil {
			_ = sqlDB.Close()
			return fmt.Errorf("%w: schema migration failed: %w", core.ErrStorage, err)
		}
	}

	r.mu.Lock()
	r.db = db
	r.closed = false
	r.mu.Unlock()

	r.config.Logger.Debug("sqlite repository ready", "path", r.Path, "read_only", r.config.ReadOnly)
	return nil
}

// Close releases the database handle and ends every Watch stream.
func (r *Repository) Close() error {
	r.mu.Lock()
	db := r.db
	r.db = nil
	r.closed = true
	r.mu.Unlock()

	r.events.Close()
	if r.cache != nil {
		r.cache.Flush()
	}
	if db == nil {
		return nil
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (r *Repository) handle() (*gorm.DB, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.db == nil {
		if r.closed {
			return nil, fmt.Errorf("%w: repository is closed", core.ErrStorage)
		}
		return nil, fmt.Errorf("%w: repository is not initialized", core.ErrStorage)
	}
	return r.db, nil
}

func (r *Repository) writable() (*gorm.DB, error) {
	if r.config.ReadOnly {
		return nil, core.ErrReadOnly
	}
	return r.handle()
}

func storageErr(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", core.ErrStorage, op, err)
}

// Insert creates a row and returns the ID SQLite assigned to it.
func (r *Repository) Insert(ctx context.Context, d core.Draft) (int64, error) {
	db, err := r.writable()
	if err != nil {
		return 0, err
	}

	rec := noteRecord{Tujuan: d.Tujuan, Kendaraan: d.Kendaraan, Catatan: d.Catatan}
	if err := db.WithContext(ctx).Create(&rec).Error; err != nil {
		return 0, storageErr("insert note", err)
	}

	r.committed(core.EventCreate, rec.ID)
	return rec.ID, nil
}

// Update replaces the three text fields of row id.
func (r *Repository) Update(ctx context.Context, id int64, d core.Draft) error {
	db, err := r.writable()
	if err != nil {
		return err
	}

	res := db.WithContext(ctx).
		Model(&noteRecord{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"tujuan":    d.Tujuan,
			"kendaraan": d.Kendaraan,
			"catatan":   d.Catatan,
		})
	if res.Error != nil {
		return storageErr("update note", res.Error)
	}

	r.forget(id)
	if res.RowsAffected == 0 {
		r.config.Logger.Debug("update matched no note", "id", id)
		return nil
	}
	r.committed(core.EventModify, id)
	return nil
}

// Delete removes row id if present.
func (r *Repository) Delete(ctx context.Context, id int64) error {
	db, err := r.writable()
	if err != nil {
		return err
	}

	res := db.WithContext(ctx).Delete(&noteRecord{}, id)
	if res.Error != nil {
		return storageErr("delete note", res.Error)
	}

	r.forget(id)
	if res.RowsAffected == 0 {
		r.config.Logger.Debug("delete matched no note", "id", id)
		return nil
	}
	r.committed(core.EventDelete, id)
	return nil
}

// Get looks up a single note, serving repeated lookups from the cache.
func (r *Repository) Get(ctx context.Context, id int64) (core.Note, bool, error) {
	if r.cache != nil {
		if v, ok := r.cache.Get(cacheKey(id)); ok {
			return v.(core.Note), true, nil
		}
	}

	db, err := r.handle()
	if err != nil {
		return core.Note{}, false, err
	}

	r.mu.RLock()
	gen := r.generation
	r.mu.RUnlock()

	var rec noteRecord
	err = db.WithContext(ctx).Where("id = ?", id).Take(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return core.Note{}, false, nil
	}
	if err != nil {
		return core.Note{}, false, storageErr("get note", err)
	}

	note := rec.toNote()
	if r.cache != nil {
		// A mutation that committed after the read must not be shadowed.
		r.mu.Lock()
		if r.generation == gen {
			r.cache.SetDefault(cacheKey(id), note)
		}
		r.mu.Unlock()
	}
	return note, true, nil
}

// List returns every note ordered by tujuan, then by id.
func (r *Repository) List(ctx context.Context) ([]core.Note, error) {
	db, err := r.handle()
	if err != nil {
		return nil, err
	}

	var recs []noteRecord
	if err := db.WithContext(ctx).Order("tujuan ASC").Order("id ASC").Find(&recs).Error; err != nil {
		return nil, storageErr("list notes", err)
	}

	notes := make([]core.Note, 0, len(recs))
	for _, rec := range recs {
		notes = append(notes, rec.toNote())
	}
	return notes, nil
}

// Watch streams an event for every committed mutation made through this repository.
func (r *Repository) Watch(ctx context.Context) (<-chan core.Event, error) {
	return r.events.Subscribe(ctx), nil
}

// GetPreference reads a value from the preferences table.
func (r *Repository) GetPreference(ctx context.Context, key string) (string, bool, error) {
	db, err := r.handle()
	if err != nil {
		return "", false, err
	}

	var rec preferenceRecord
	err = db.WithContext(ctx).Where(&preferenceRecord{Key: key}).Take(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, storageErr("get preference", err)
	}
	return rec.Value, true, nil
}

// SetPreference upserts a value into the preferences table.
func (r *Repository) SetPreference(ctx context.Context, key, value string) error {
	db, err := r.writable()
	if err != nil {
		return err
	}

	rec := preferenceRecord{Key: key, Value: value, UpdatedAt: time.Now()}
	err = db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "key"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
		}).
		Create(&rec).Error
	if err != nil {
		return storageErr("save preference", err)
	}
	return nil
}

func (r *Repository) committed(t core.EventType, id int64) {
	now := time.Now()
	r.mu.Lock()
	r.lastMutation = &now
	r.mu.Unlock()

	r.events.Publish(core.Event{Type: t, ID: id, Timestamp: now.Unix()})
}

func (r *Repository) forget(id int64) {
	if r.cache == nil {
		return
	}
	r.mu.Lock()
	r.generation++
	r.cache.Delete(cacheKey(id))
	r.mu.Unlock()
}

func cacheKey(id int64) string {
	return strconv.FormatInt(id, 10)
}

var (
	_ core.Repository = (*Repository)(nil)
	_ core.Watchable  = (*Repository)(nil)
)
