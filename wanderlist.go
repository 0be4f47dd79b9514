package wanderlist

import (
	"context"
	"log/slog"
	"time"

	"github.com/aretw0/wanderlist/internal/platform"
	"github.com/aretw0/wanderlist/pkg/core"
)

// --- Types ---

// App is an opened data layer.
type App = platform.App

// Note is a saved travel entry.
type Note = core.Note

// Draft holds the editable fields of a Note.
type Draft = core.Draft

// --- Configuration ---

// Option defines a functional option for configuring Wanderlist.
type Option = platform.Option

// WithAdapter selects the storage adapter by name: "sqlite" (default), "fs" or "memory".
func WithAdapter(name string) Option {
	return platform.WithAdapter(name)
}

// WithRepository allows injecting a custom storage adapter.
func WithRepository(repo core.Repository) Option {
	return platform.WithRepository(repo)
}

// WithLogger sets the logger for every component.
func WithLogger(logger *slog.Logger) Option {
	return platform.WithLogger(logger)
}

// WithEventBuffer sets the size of the service event buffer.
func WithEventBuffer(size int) Option {
	return platform.WithEventBuffer(size)
}

// WithReadOnly opens the data without allowing writes.
func WithReadOnly(enabled bool) Option {
	return platform.WithReadOnly(enabled)
}

// WithForceTemp forces the use of a temporary directory (useful for testing).
func WithForceTemp(force bool) Option {
	return platform.WithForceTemp(force)
}

// WithMustExist ensures the data directory must already exist.
func WithMustExist(must bool) Option {
	return platform.WithMustExist(must)
}

// WithSystemDir sets the hidden directory of the fs adapter.
func WithSystemDir(name string) Option {
	return platform.WithSystemDir(name)
}

// WithDevSafety controls the sandbox used under `go run` and `go test`.
func WithDevSafety(enabled bool) Option {
	return platform.WithDevSafety(enabled)
}

// WithErrorHandler registers a callback for failures in background loops.
func WithErrorHandler(fn func(error)) Option {
	return platform.WithErrorHandler(fn)
}

// WithRetryInterval sets how long a live query waits before retrying a failed read.
func WithRetryInterval(d time.Duration) Option {
	return platform.WithRetryInterval(d)
}

// WithCacheTTL sets the lifetime of cached point lookups (sqlite only).
func WithCacheTTL(d time.Duration) Option {
	return platform.WithCacheTTL(d)
}

// --- Factory ---

// Open builds, initializes and wires the data layer at uri.
func Open(uri string, opts ...Option) (*App, error) {
	return platform.Open(uri, opts...)
}

// Shared returns the process-wide App, opening it on first use.
func Shared(uri string, opts ...Option) (*App, error) {
	return platform.Shared(uri, opts...)
}

// Init builds and initializes a repository without wiring a service.
func Init(ctx context.Context, uri string, opts ...Option) (core.Repository, error) {
	return platform.Init(ctx, uri, opts...)
}

// --- Safety & Utils ---

// ResolvePath determines the actual data path based on safety rules.
func ResolvePath(userPath string, forceTemp bool) string {
	return platform.ResolvePath(userPath, forceTemp)
}

// IsDevRun checks if the current process is running via `go run` or `go test`.
func IsDevRun() bool {
	return platform.IsDevRun()
}

// FindRoot looks upwards from startDir for a data directory.
func FindRoot(startDir string) (string, error) {
	return platform.FindRoot(startDir)
}
