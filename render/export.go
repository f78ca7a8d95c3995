package render

import (
	"os"
	"path/filepath"

	"github.com/git1file/git1file/errors"
)

// ContentType tags every exported blob
const ContentType = "text/plain;charset=utf-8"

// Blob is content packaged for saving
type Blob struct {
	Data        []byte
	ContentType string
}

// Saver turns a blob into a file the user keeps. Stage produces a transient
// reference, Prompt offers it under filename, and Release frees the
// reference. Release is always called once Stage succeeded.
type Saver interface {
	Stage(blob Blob) (ref string, err error)
	Prompt(ref, filename string) error
	Release(ref string)
}

// Export saves artifact through saver
func Export(saver Saver, artifact Artifact) error {
	blob := Blob{Data: []byte(artifact.Content), ContentType: ContentType}

	ref, err := saver.Stage(blob)
	if err != nil {
		return errors.Wrap(err, "failed to stage export")
	}
	defer saver.Release(ref)

	if err := saver.Prompt(ref, artifact.Filename); err != nil {
		return errors.Wrapf(err, "failed to save %s", artifact.Filename)
	}
	return nil
}

// DirSaver saves exports into a directory. Stage writes a temp file next to
// the destination, Prompt renames it into place, Release removes whatever
// temp file is left.
type DirSaver struct {
	Dir string

	// Saved receives the final path of each export when set
	Saved func(path string)
}

// NewDirSaver returns a saver writing into dir ("" = working directory)
func NewDirSaver(dir string) *DirSaver {
	if dir == "" {
		dir = "."
	}
	return &DirSaver{Dir: dir}
}

func (s *DirSaver) Stage(blob Blob) (string, error) {
	if err := os.MkdirAll(s.Dir, 0755); err != nil {
		return "", errors.Wrapf(err, "failed to create export directory %s", s.Dir)
	}

	f, err := os.CreateTemp(s.Dir, ".git1file-export-*")
	if err != nil {
		return "", errors.Wrap(err, "failed to create temp file")
	}
	ref := f.Name()

	if _, err := f.Write(blob.Data); err != nil {
		f.Close()
		os.Remove(ref)
		return "", errors.Wrap(err, "failed to write export")
	}
	if err := f.Close(); err != nil {
		os.Remove(ref)
		return "", errors.Wrap(err, "failed to close export")
	}
	return ref, nil
}

func (s *DirSaver) Prompt(ref, filename string) error {
	if filename == "" || filename != filepath.Base(filename) {
		return errors.Newf("invalid export filename %q", filename)
	}

	dest := filepath.Join(s.Dir, filename)
	if err := os.Chmod(ref, 0644); err != nil {
		return errors.Wrap(err, "failed to set export permissions")
	}
	if err := os.Rename(ref, dest); err != nil {
		return errors.Wrapf(err, "failed to move export to %s", dest)
	}

	if s.Saved != nil {
		s.Saved(dest)
	}
	return nil
}

func (s *DirSaver) Release(ref string) {
	// after a successful Prompt the temp file is gone already
	_ = os.Remove(ref)
}
