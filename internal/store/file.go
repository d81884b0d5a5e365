package store

import (
	"context"
	"os"
	"path/filepath"
	"strings"
)

// File stores each key as one file in a directory.
type File struct {
	dir string
}

// NewFile creates a file store in dir. The directory will be created if it
// doesn't exist.
func NewFile(dir string) (*File, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}
	return &File{dir: dir}, nil
}

func (f *File) Get(_ context.Context, key string) ([]byte, bool, error) {
	data, err := os.ReadFile(f.path(key))
	if os.IsNotExist(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return data, true, nil
}

// Set writes through a temporary file so a crash never leaves a torn value.
func (f *File) Set(_ context.Context, key string, data []byte) error {
	tmp, err := os.CreateTemp(f.dir, ".tmp-*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), f.path(key))
}

func (f *File) Delete(_ context.Context, key string) error {
	err := os.Remove(f.path(key))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

// Close does nothing for the file store.
func (f *File) Close() error { return nil }

var keyReplacer = strings.NewReplacer(":", "_", "/", "_", "\\", "_", "..", "_")

// path maps a key such as "tool:freehand" to <dir>/tool_freehand.json.
func (f *File) path(key string) string {
	return filepath.Join(f.dir, keyReplacer.Replace(key)+".json")
}

var _ Store = (*File)(nil)
