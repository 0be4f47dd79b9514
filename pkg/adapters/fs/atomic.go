package fs

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/aretw0/wanderlist/pkg/core"
)

const (
	// TempFilePrefix is the prefix used for temporary atomic write files.
	TempFilePrefix = "wanderlist-tmp-"

	// DefaultLockTimeout bounds how long a write waits for another process.
	DefaultLockTimeout = 5 * time.Second

	// StaleLockAge is the age after which a lock file is considered left
	// behind by a crashed process and removed.
	StaleLockAge = 30 * time.Second

	lockRetry = 10 * time.Millisecond
)

// ErrLocked is returned when the data directory lock cannot be taken in time.
var ErrLocked = errors.New("data directory is locked by another process")

// On-disk layout of a data directory:
//
//	{Path}/notes.yaml                      the table
//	{Path}/{SystemDir}.lock                held during every write, by any process
//	{Path}/{SystemDir}/preferences.yaml    preferences

func (r *Repository) tablePath() string {
	return filepath.Join(r.Path, TableFile)
}

func (r *Repository) preferencesPath() string {
	return filepath.Join(r.Path, r.config.SystemDir, PreferencesFile)
}

func (r *Repository) lockPath() string {
	return filepath.Join(r.Path, r.config.SystemDir+".lock")
}

// lock takes the cross-process write lock of the data directory.
// r.mu orders writers inside this process; the lock file orders processes.
func (r *Repository) lock(ctx context.Context) (unlock func(), err error) {
	ctx, cancel := context.WithTimeout(ctx, r.config.LockTimeout)
	defer cancel()

	path := r.lockPath()
	for {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0644)
		if err == nil {
			fmt.Fprintf(f, "%d\n", os.Getpid())
			f.Close()
			return func() { os.Remove(path) }, nil
		}
		if !os.IsExist(err) {
			return nil, fmt.Errorf("%w: acquire lock: %w", core.ErrStorage, err)
		}

		if info, statErr := os.Stat(path); statErr == nil && time.Since(info.ModTime()) > StaleLockAge {
			r.config.Logger.Warn("removing stale lock", "path", path, "age", time.Since(info.ModTime()))
			os.Remove(path)
			continue
		}

		select {
		case <-ctx.Done():
			if errors.Is(ctx.Err(), context.DeadlineExceeded) {
				return nil, fmt.Errorf("%w: %w: %s", core.ErrStorage, ErrLocked, path)
			}
			return nil, ctx.Err()
		case <-time.After(lockRetry):
		}
	}
}

// writeFileAtomic replaces filename with data. The content is written to a
// temp file in the same directory, fsynced and renamed over the target, so
// readers see either the old or the new table and a nil return means durable.
func writeFileAtomic(filename string, data []byte, perm os.FileMode) (err error) {
	tmp, err := os.CreateTemp(filepath.Dir(filename), TempFilePrefix+"*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		return fmt.Errorf("failed to write %s: %w", tmp.Name(), err)
	}
	if err := tmp.Chmod(perm); err != nil {
		return fmt.Errorf("failed to chmod %s: %w", tmp.Name(), err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("failed to sync %s: %w", tmp.Name(), err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", tmp.Name(), err)
	}
	if err := os.Rename(tmp.Name(), filename); err != nil {
		os.Remove(tmp.Name())
		committed = true
		return fmt.Errorf("failed to rename temp file to %s: %w", filename, err)
	}
	committed = true
	return nil
}
