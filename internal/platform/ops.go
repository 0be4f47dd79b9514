package platform

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/aretw0/wanderlist/pkg/adapters/fs"
	"github.com/aretw0/wanderlist/pkg/adapters/memory"
	"github.com/aretw0/wanderlist/pkg/adapters/sqlite"
	"github.com/aretw0/wanderlist/pkg/core"
)

// Init builds and initializes the repository selected by opts.
// The uri is adapter-specific: a data directory (or a .db file) for sqlite,
// a data directory for fs, ignored for memory.
func Init(ctx context.Context, uri string, opts ...Option) (core.Repository, error) {
	return initRepository(ctx, uri, parse(opts))
}

func initRepository(ctx context.Context, uri string, o *options) (core.Repository, error) {
	if o.repository != nil {
		return o.repository, nil
	}

	var repo core.Repository
	switch o.adapter {
	case AdapterSQLite:
		path, err := resolve(uri, o)
		if err != nil {
			return nil, err
		}
		repo = sqlite.NewRepository(sqlite.Config{
			Path:     databasePath(path),
			Logger:   o.logger.With("adapter", AdapterSQLite),
			CacheTTL: o.cacheTTL,
			ReadOnly: o.readOnly,
		})
	case AdapterFS:
		path, err := resolve(uri, o)
		if err != nil {
			return nil, err
		}
		repo = fs.NewRepository(fs.Config{
			Path:         path,
			SystemDir:    o.systemDir,
			Logger:       o.logger.With("adapter", AdapterFS),
			ReadOnly:     o.readOnly,
			MustExist:    o.mustExist,
			ErrorHandler: o.errorHandler,
		})
	case AdapterMemory:
		repo = memory.NewRepository()
	default:
		return nil, fmt.Errorf("unknown adapter: %s", o.adapter)
	}

	if err := repo.Initialize(ctx); err != nil {
		return nil, err
	}
	return repo, nil
}

// resolve applies the dev sandbox and the must-exist check to a data path.
func resolve(uri string, o *options) (string, error) {
	if uri == sqlite.MemoryPath {
		return uri, nil
	}

	// Read-only access cannot damage data, so it bypasses the sandbox.
	bypassSafety := o.readOnly || !o.devSafety
	useTemp := o.forceTemp || (IsDevRun() && !bypassSafety)

	dir, file := uri, ""
	if filepath.Ext(uri) == ".db" {
		dir, file = filepath.Dir(uri), filepath.Base(uri)
	}
	resolved := ResolvePath(dir, useTemp)

	if IsDevRun() {
		switch {
		case o.readOnly:
			o.logger.Debug("running in READ-ONLY mode (bypassing dev sandbox)", "path", resolved)
		case bypassSafety:
			o.logger.Warn("running in UNSAFE mode (bypassing dev sandbox)", "path", resolved)
		default:
			o.logger.Debug("running in SAFE mode (dev sandbox enabled)", "path", resolved)
		}
	}
	if useTemp && resolved != filepath.Clean(dir) {
		o.logger.Warn("data redirected to sandbox", "original_path", uri, "resolved_path", resolved)
	}

	if o.mustExist {
		info, err := os.Stat(resolved)
		if err != nil {
			return "", fmt.Errorf("%w: data path does not exist: %s", core.ErrStorage, resolved)
		}
		if !info.IsDir() {
			return "", fmt.Errorf("%w: data path is not a directory: %s", core.ErrStorage, resolved)
		}
	}

	if file != "" {
		return filepath.Join(resolved, file), nil
	}
	return resolved, nil
}

// databasePath maps a data directory to its database file. Paths that
// already name a .db file, and the in-memory DSN, are used as is.
func databasePath(path string) string {
	if path == sqlite.MemoryPath || filepath.Ext(path) == ".db" {
		return path
	}
	return filepath.Join(path, DatabaseFile)
}
