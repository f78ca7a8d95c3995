package render

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/git1file/git1file/errors"
)

type recordingSaver struct {
	staged    []Blob
	prompted  []string
	released  []string
	stageErr  error
	promptErr error
}

func (s *recordingSaver) Stage(blob Blob) (string, error) {
	if s.stageErr != nil {
		return "", s.stageErr
	}
	s.staged = append(s.staged, blob)
	return "blob:1", nil
}

func (s *recordingSaver) Prompt(ref, filename string) error {
	s.prompted = append(s.prompted, ref+" "+filename)
	return s.promptErr
}

func (s *recordingSaver) Release(ref string) {
	s.released = append(s.released, ref)
}

func TestExport(t *testing.T) {
	saver := &recordingSaver{}
	err := Export(saver, Artifact{Content: "hello", Filename: "git1file-x.txt"})
	require.NoError(t, err)

	require.Len(t, saver.staged, 1)
	assert.Equal(t, "hello", string(saver.staged[0].Data))
	assert.Equal(t, "text/plain;charset=utf-8", saver.staged[0].ContentType)
	assert.Equal(t, []string{"blob:1 git1file-x.txt"}, saver.prompted)
	assert.Equal(t, []string{"blob:1"}, saver.released)
}

func TestExport_ReleasesOnPromptFailure(t *testing.T) {
	saver := &recordingSaver{promptErr: errors.New("user dismissed dialog")}
	err := Export(saver, Artifact{Content: "hello", Filename: "x.txt"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "user dismissed dialog")
	assert.Equal(t, []string{"blob:1"}, saver.released)
}

func TestExport_StageFailure(t *testing.T) {
	saver := &recordingSaver{stageErr: errors.New("quota exceeded")}
	err := Export(saver, Artifact{Content: "hello", Filename: "x.txt"})

	require.Error(t, err)
	assert.Empty(t, saver.prompted)
	assert.Empty(t, saver.released, "nothing staged, nothing to release")
}

func TestDirSaver(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "exports")
	saver := NewDirSaver(dir)

	var saved string
	saver.Saved = func(path string) { saved = path }

	require.NoError(t, Export(saver, Artifact{Content: "flattened", Filename: "git1file-repo.txt"}))

	dest := filepath.Join(dir, "git1file-repo.txt")
	assert.Equal(t, dest, saved)
	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, "flattened", string(data))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp file must not be left behind")
}

func TestDirSaver_RejectsPathInFilename(t *testing.T) {
	dir := t.TempDir()
	saver := NewDirSaver(dir)

	err := Export(saver, Artifact{Content: "x", Filename: "../escape.txt"})
	require.Error(t, err)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries, "staged temp file released after failed prompt")
}
