package platform

import "sync"

var (
	sharedOnce sync.Once
	sharedApp  *App
	sharedErr  error
)

// Shared returns the process-wide App, opening it on first use.
// Arguments of later calls are ignored.
func Shared(uri string, opts ...Option) (*App, error) {
	sharedOnce.Do(func() {
		sharedApp, sharedErr = Open(uri, opts...)
	})
	return sharedApp, sharedErr
}
