package am

import (
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestConfigWatcher_DebouncesReloads(t *testing.T) {
	path := filepath.Join(t.TempDir(), ProjectConfigName)
	require.NoError(t, os.WriteFile(path, []byte("[preview]\ndebounce_ms = 100\n"), DefaultFilePermissions))

	cw, err := NewConfigWatcher(path, zaptest.NewLogger(t).Sugar())
	require.NoError(t, err)
	cw.debouncePeriod = 50 * time.Millisecond
	cw.load = func() (*Config, error) { return LoadFromFile(path) }

	var reloads atomic.Int32
	var lastDebounce atomic.Int32
	cw.OnReload(func(cfg *Config) error {
		reloads.Add(1)
		lastDebounce.Store(int32(cfg.Preview.DebounceMS))
		return nil
	})
	cw.Start()
	defer cw.Stop()

	for _, ms := range []string{"200", "300", "400"} {
		require.NoError(t, os.WriteFile(path, []byte("[preview]\ndebounce_ms = "+ms+"\n"), DefaultFilePermissions))
	}

	require.Eventually(t, func() bool { return lastDebounce.Load() == 400 }, 2*time.Second, 10*time.Millisecond)
	time.Sleep(150 * time.Millisecond)
	assert.Equal(t, int32(1), reloads.Load(), "burst of writes should reload once")
}

func TestConfigWatcher_IgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ProjectConfigName)
	require.NoError(t, os.WriteFile(path, []byte(""), DefaultFilePermissions))

	cw, err := NewConfigWatcher(path, nil)
	require.NoError(t, err)
	cw.debouncePeriod = 10 * time.Millisecond
	cw.load = func() (*Config, error) { return Default(), nil }

	var reloads atomic.Int32
	cw.OnReload(func(*Config) error { reloads.Add(1); return nil })
	cw.Start()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), DefaultFilePermissions))
	time.Sleep(100 * time.Millisecond)

	require.NoError(t, cw.Stop())
	assert.Equal(t, int32(0), reloads.Load())
}
