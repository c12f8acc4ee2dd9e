package audio

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// FileName is the single artifact every synthesis overwrites.
const FileName = "mensagem.mp3"

// SweepPattern matches generated audio files removed by Sweep.
const SweepPattern = "mensagem_*.mp3"

// StorageError reports a filesystem failure on the artifact.
type StorageError struct {
	Op   string
	Path string
	Err  error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// Store owns the artifact path inside a directory. Writes are not
// serialized: concurrent callers overwrite each other.
type Store struct {
	dir  string
	path string
}

// NewStore resolves dir to an absolute path and creates it if needed.
func NewStore(dir string) (*Store, error) {
	if dir == "" {
		dir = "."
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, &StorageError{Op: "resolve", Path: dir, Err: err}
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, &StorageError{Op: "mkdir", Path: abs, Err: err}
	}
	return &Store{dir: abs, path: filepath.Join(abs, FileName)}, nil
}

// Dir returns the absolute audio directory.
func (s *Store) Dir() string { return s.dir }

// Path returns the absolute artifact path.
func (s *Store) Path() string { return s.path }

// Write replaces the artifact contents with data.
func (s *Store) Write(data []byte) error {
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return &StorageError{Op: "write", Path: s.path, Err: err}
	}
	return nil
}

// Exists reports whether the artifact is present.
func (s *Store) Exists() bool {
	_, err := os.Stat(s.path)
	return err == nil
}

// Open opens the artifact for reading along with its file info.
// A missing artifact yields an error matching fs.ErrNotExist.
func (s *Store) Open() (*os.File, fs.FileInfo, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, nil, &StorageError{Op: "open", Path: s.path, Err: err}
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, nil, &StorageError{Op: "stat", Path: s.path, Err: err}
	}
	if info.IsDir() {
		f.Close()
		return nil, nil, &StorageError{Op: "open", Path: s.path, Err: errors.New("is a directory")}
	}
	return f, info, nil
}
