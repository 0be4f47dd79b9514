package platform

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/aretw0/wanderlist/pkg/adapters/fs"
)

// DatabaseFile is the sqlite file created inside the data directory.
const DatabaseFile = "wanderlist.db"

// ErrRootNotFound is returned by FindRoot when no data directory marker exists.
var ErrRootNotFound = errors.New("root not found")

// FindRoot looks upwards from startDir for a data directory.
// Indicators are: .wanderlist directory, wanderlist.db or notes.yaml.
func FindRoot(startDir string) (string, error) {
	abs, err := filepath.Abs(startDir)
	if err != nil {
		return "", err
	}

	dir := abs
	for {
		if hasFile(dir, fs.DefaultSystemDir) || hasFile(dir, DatabaseFile) || hasFile(dir, fs.TableFile) {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return "", ErrRootNotFound
}

func hasFile(dir, name string) bool {
	_, err := os.Stat(filepath.Join(dir, name))
	return err == nil
}
