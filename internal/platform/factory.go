package platform

import (
	"context"
	"log/slog"
	"sync"

	"github.com/aretw0/wanderlist/pkg/core"
	"github.com/aretw0/wanderlist/pkg/prefs"
	"github.com/aretw0/wanderlist/pkg/viewmodel"
)

// App is an opened data layer: the notes service, the layout preference
// and the repository behind both.
type App struct {
	Notes       *core.Service
	Preferences *prefs.Store

	repo      core.Repository
	logger    *slog.Logger
	closeOnce sync.Once
	closeErr  error
}

// Open builds the repository selected by opts, initializes it and wires the
// service and preference store on top of it.
//
//	app, err := wanderlist.Open("./trips", wanderlist.WithAdapter("fs"))
func Open(uri string, opts ...Option) (*App, error) {
	o := parse(opts)

	repo, err := initRepository(context.Background(), uri, o)
	if err != nil {
		return nil, err
	}

	serviceOpts := []core.ServiceOption{
		core.WithServiceLogger(o.logger),
		core.WithEventBuffer(o.eventBuffer),
		core.WithRetryInterval(o.retryInterval),
	}
	if o.errorHandler != nil {
		serviceOpts = append(serviceOpts, core.WithErrorHandler(o.errorHandler))
	}

	backend, ok := repo.(prefs.Backend)
	if !ok {
		o.logger.Warn("repository does not store preferences, keeping layout in memory")
		backend = prefs.NewMemoryBackend()
	}

	return &App{
		Notes:       core.NewService(repo, serviceOpts...),
		Preferences: prefs.NewStore(backend, prefs.WithLogger(o.logger)),
		repo:        repo,
		logger:      o.logger,
	}, nil
}

// Repository returns the storage adapter in use.
func (a *App) Repository() core.Repository {
	return a.repo
}

// ViewModels returns a factory for the presentation adapters of this app.
func (a *App) ViewModels(opts ...viewmodel.Option) *viewmodel.Factory {
	return viewmodel.NewFactory(a.Notes, append([]viewmodel.Option{viewmodel.WithLogger(a.logger)}, opts...)...)
}

// Close ends every stream and releases the repository. It is safe to call twice.
func (a *App) Close() error {
	a.closeOnce.Do(func() {
		a.Preferences.Close()
		a.closeErr = a.repo.Close()
	})
	return a.closeErr
}
