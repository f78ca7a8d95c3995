package am

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteTemplate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", ProjectConfigName)

	require.NoError(t, WriteTemplate(path, false))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "# git1file client configuration"))
	assert.Contains(t, string(data), "debounce_ms = 500")

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, Default().Service, cfg.Service)
	assert.Equal(t, Default().Ingest, cfg.Ingest)
}

func TestWriteTemplate_ExistingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ProjectConfigName)
	require.NoError(t, os.WriteFile(path, []byte("# mine\n"), DefaultFilePermissions))

	err := WriteTemplate(path, false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")

	require.NoError(t, WriteTemplate(path, true))

	backup, err := os.ReadFile(path + ".back1")
	require.NoError(t, err)
	assert.Equal(t, "# mine\n", string(backup))
}

func TestCreateBackup_Rotation(t *testing.T) {
	path := filepath.Join(t.TempDir(), "am.toml")

	for _, content := range []string{"one", "two", "three", "four", "five"} {
		require.NoError(t, os.WriteFile(path, []byte(content), DefaultFilePermissions))
		require.NoError(t, createBackup(path))
	}

	for suffix, want := range map[string]string{".back1": "five", ".back2": "four", ".back3": "three"} {
		got, err := os.ReadFile(path + suffix)
		require.NoError(t, err)
		assert.Equal(t, want, string(got), suffix)
	}
}
