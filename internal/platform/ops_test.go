package platform_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/wanderlist/internal/platform"
	"github.com/aretw0/wanderlist/pkg/adapters/fs"
	"github.com/aretw0/wanderlist/pkg/adapters/memory"
	"github.com/aretw0/wanderlist/pkg/adapters/sqlite"
	"github.com/aretw0/wanderlist/pkg/core"
)

func TestInit(t *testing.T) {
	ctx := context.Background()

	t.Run("SQLite Creates Database In Data Dir", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "trips")

		repo, err := platform.Init(ctx, dir)
		require.NoError(t, err)
		defer repo.Close()

		sqliteRepo, ok := repo.(*sqlite.Repository)
		require.True(t, ok, "expected sqlite repository, got %T", repo)
		assert.Equal(t, filepath.Join(dir, platform.DatabaseFile), sqliteRepo.Path)
		assert.FileExists(t, sqliteRepo.Path)
	})

	t.Run("SQLite Accepts Database File", func(t *testing.T) {
		file := filepath.Join(t.TempDir(), "custom.db")

		repo, err := platform.Init(ctx, file)
		require.NoError(t, err)
		defer repo.Close()

		assert.Equal(t, file, repo.(*sqlite.Repository).Path)
	})

	t.Run("FS Creates Table File", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "trips")

		repo, err := platform.Init(ctx, dir, platform.WithAdapter(platform.AdapterFS))
		require.NoError(t, err)
		defer repo.Close()

		fsRepo, ok := repo.(*fs.Repository)
		require.True(t, ok)
		assert.Equal(t, dir, fsRepo.Path)
		assert.FileExists(t, filepath.Join(dir, fs.TableFile))
		assert.DirExists(t, filepath.Join(dir, fs.DefaultSystemDir))
	})

	t.Run("FS Custom System Dir", func(t *testing.T) {
		dir := t.TempDir()

		repo, err := platform.Init(ctx, dir, platform.WithAdapter(platform.AdapterFS), platform.WithSystemDir(".state"))
		require.NoError(t, err)
		defer repo.Close()

		assert.DirExists(t, filepath.Join(dir, ".state"))
	})

	t.Run("Memory Ignores URI", func(t *testing.T) {
		repo, err := platform.Init(ctx, "", platform.WithAdapter(platform.AdapterMemory))
		require.NoError(t, err)
		defer repo.Close()

		_, ok := repo.(*memory.Repository)
		assert.True(t, ok)
	})

	t.Run("Unknown Adapter", func(t *testing.T) {
		_, err := platform.Init(ctx, t.TempDir(), platform.WithAdapter("postgres"))
		assert.ErrorContains(t, err, "unknown adapter")
	})

	t.Run("MustExist Fails if Directory Missing", func(t *testing.T) {
		missing := filepath.Join(t.TempDir(), "missing")

		_, err := platform.Init(ctx, missing, platform.WithMustExist(true))
		assert.ErrorIs(t, err, core.ErrStorage)
		assert.NoDirExists(t, missing)
	})

	t.Run("ReadOnly Fails Without Database", func(t *testing.T) {
		dir := t.TempDir()

		_, err := platform.Init(ctx, dir, platform.WithReadOnly(true))
		assert.ErrorIs(t, err, core.ErrStorage)

		_, statErr := os.Stat(filepath.Join(dir, platform.DatabaseFile))
		assert.True(t, os.IsNotExist(statErr), "read-only open must not create the database")
	})

	t.Run("Injected Repository Is Used As Is", func(t *testing.T) {
		injected := memory.NewRepository()

		repo, err := platform.Init(ctx, "ignored", platform.WithRepository(injected), platform.WithAdapter("nope"))
		require.NoError(t, err)
		assert.Same(t, injected, repo)
	})
}
