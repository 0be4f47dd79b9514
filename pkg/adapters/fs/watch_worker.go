package fs

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime/debug"
	"strings"
	"sync"
	"time"

	"github.com/aretw0/lifecycle"
	"github.com/fsnotify/fsnotify"

	"github.com/aretw0/wanderlist/pkg/core"
)

// watchWorker turns filesystem events on notes.yaml into core.EventReload.
// It watches the directory rather than the file because atomic writes
// replace the file (and its inode) on every save.
type watchWorker struct {
	repo    *Repository
	delay   time.Duration
	watcher *fsnotify.Watcher
	cancel  context.CancelFunc
	done    chan struct{}

	mu      sync.Mutex
	timer   *time.Timer
	stopped bool
}

func newWatchWorker(repo *Repository, delay time.Duration) *watchWorker {
	return &watchWorker{
		repo:  repo,
		delay: delay,
		done:  make(chan struct{}),
	}
}

func (w *watchWorker) start() error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	if err := watcher.Add(w.repo.Path); err != nil {
		_ = watcher.Close()
		return fmt.Errorf("failed to watch %s: %w", w.repo.Path, err)
	}
	w.watcher = watcher

	ctx, cancel := context.WithCancel(context.Background())
	w.cancel = cancel

	lifecycle.Go(ctx, w.run, lifecycle.WithErrorHandler(func(err error) {
		w.repo.handleError(fmt.Errorf("watcher: %w", err))
	}))
	return nil
}

// stop ends the event loop and waits for it, dropping any pending debounce.
func (w *watchWorker) stop() {
	w.mu.Lock()
	w.stopped = true
	if w.timer != nil {
		w.timer.Stop()
	}
	w.mu.Unlock()

	w.cancel()
	<-w.done
}

// run is the main event loop for the watcher worker.
func (w *watchWorker) run(ctx context.Context) (err error) {
	defer close(w.done)
	defer w.repo.setWatcherActive(false)
	defer w.watcher.Close()
	defer func() {
		if recovered := recover(); recovered != nil {
			panicErr := fmt.Errorf("watcher panic: %v", recovered)
			// Stack only when debug logging is enabled.
			if w.repo.config.Logger.Enabled(ctx, slog.LevelDebug) {
				w.repo.config.Logger.Error("watcher panic", "error", panicErr, "stack", string(debug.Stack()))
			} else {
				w.repo.config.Logger.Error("watcher panic", "error", panicErr)
			}
			err = panicErr
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				if ctx.Err() != nil {
					return nil
				}
				return errors.New("watcher events channel closed")
			}
			w.processFilesystemEvent(event)

		case wErr, ok := <-w.watcher.Errors:
			if !ok {
				if ctx.Err() != nil {
					return nil
				}
				return errors.New("watcher errors channel closed")
			}
			w.repo.handleError(fmt.Errorf("fsnotify: %w", wErr))
		}
	}
}

// processFilesystemEvent filters everything except changes to the table file.
func (w *watchWorker) processFilesystemEvent(event fsnotify.Event) {
	name := filepath.Base(event.Name)
	if name != TableFile || strings.HasPrefix(name, TempFilePrefix) {
		return
	}
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
		!event.Has(fsnotify.Rename) && !event.Has(fsnotify.Remove) {
		return
	}

	w.repo.config.Logger.Debug("table event received", "op", event.Op.String())
	w.schedule()
}

// schedule coalesces bursts of events (editors often write in several steps).
func (w *watchWorker) schedule() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.stopped {
		return
	}
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.delay, w.flush)
}

func (w *watchWorker) flush() {
	w.mu.Lock()
	stopped := w.stopped
	w.mu.Unlock()
	if stopped {
		return
	}

	var digest [sha256.Size]byte
	data, err := os.ReadFile(w.repo.tablePath())
	switch {
	case err == nil:
		digest = sha256.Sum256(data)
	case errors.Is(err, os.ErrNotExist):
		// Removed: the table is now empty; zero digest marks that state.
	default:
		w.repo.handleError(fmt.Errorf("read %s: %w", TableFile, err))
		return
	}

	if !w.repo.externalChange(digest) {
		return
	}
	w.repo.config.Logger.Debug("external change detected", "file", TableFile)
	w.repo.publish(core.EventReload, 0)
}
