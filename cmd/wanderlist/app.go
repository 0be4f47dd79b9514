package main

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"

	"github.com/aretw0/wanderlist"
	"github.com/aretw0/wanderlist/pkg/viewmodel"
)

// openApp opens the data directory from the resolved settings. The default
// "." is replaced by the nearest enclosing data directory when one exists.
func openApp() (*wanderlist.App, error) {
	dir := settings.DataDir
	if dir == "." {
		if root, err := wanderlist.FindRoot(dir); err == nil {
			dir = root
		}
	}

	logger := slog.Default()
	app, err := wanderlist.Open(dir,
		wanderlist.WithAdapter(settings.Adapter),
		wanderlist.WithReadOnly(settings.ReadOnly),
		wanderlist.WithRetryInterval(settings.RetryInterval),
		wanderlist.WithCacheTTL(settings.CacheTTL),
		wanderlist.WithLogger(logger),
		wanderlist.WithErrorHandler(func(err error) {
			logger.Warn("background failure", "error", err)
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", dir, err)
	}
	return app, nil
}

func viewModels(app *wanderlist.App) *viewmodel.Factory {
	return app.ViewModels(
		viewmodel.WithGracePeriod(settings.GracePeriod),
		viewmodel.WithNotifier(func(err error) {
			fmt.Fprintf(os.Stderr, "wanderlist: %v\n", err)
		}),
	)
}

func parseID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid note id %q", arg)
	}
	return id, nil
}
