package conf

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	v := New()
	v.Set("data_dir", t.TempDir())

	s, err := Load(v, "")
	require.NoError(t, err)

	assert.Equal(t, "sqlite", s.Adapter)
	assert.False(t, s.ReadOnly)
	assert.Equal(t, 5*time.Second, s.GracePeriod)
	assert.Equal(t, time.Second, s.RetryInterval)
	assert.Equal(t, 5*time.Minute, s.CacheTTL)
	assert.Empty(t, s.ConfigFile)

	level, err := s.Level()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelWarn, level)
}

func TestLoad_FileInDataDir(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	dir := t.TempDir()
	content := "adapter: fs\ngrace_period: 2s\nlog_level: debug\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "wanderlist.yaml"), []byte(content), 0644))

	v := New()
	v.Set("data_dir", dir)
	s, err := Load(v, "")
	require.NoError(t, err)

	assert.Equal(t, "fs", s.Adapter)
	assert.Equal(t, 2*time.Second, s.GracePeriod)
	assert.Equal(t, filepath.Join(dir, "wanderlist.yaml"), s.ConfigFile)
	level, err := s.Level()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, level)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "wanderlist.yaml"), []byte("adapter: fs\n"), 0644))
	t.Setenv("WANDERLIST_ADAPTER", "memory")
	t.Setenv("WANDERLIST_READ_ONLY", "true")
	t.Setenv("WANDERLIST_DATA_DIR", dir)

	s, err := Load(New(), "")
	require.NoError(t, err)

	assert.Equal(t, "memory", s.Adapter)
	assert.True(t, s.ReadOnly)
	assert.Equal(t, dir, s.DataDir)
}

func TestLoad_ExplicitFileMustExist(t *testing.T) {
	_, err := Load(New(), filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestLoad_Invalid(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	file := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(file, []byte("adapter: postgres\nlog_level: loud\n"), 0644))

	_, err := Load(New(), file)
	require.Error(t, err)
	assert.ErrorContains(t, err, "adapter")
	assert.ErrorContains(t, err, "log_level")
}
