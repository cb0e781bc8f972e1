package tokenstore

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// FileName is the name of the token file inside the store directory.
const FileName = "sf-key"

// File keeps the token in a single file. The directory must be writable.
type File struct {
	path string
}

// NewFile returns a store writing to dir/sf-key.
func NewFile(dir string) *File {
	return &File{path: filepath.Join(dir, FileName)}
}

// Path returns the token file path.
func (f *File) Path() string {
	return f.path
}

func (f *File) Fetch(_ context.Context) ([]byte, error) {
	data, err := os.ReadFile(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("reading token file: %w", err)
	}
	return data, nil
}

func (f *File) Save(_ context.Context, token []byte) error {
	if err := os.MkdirAll(filepath.Dir(f.path), 0o700); err != nil {
		return fmt.Errorf("creating token directory: %w", err)
	}
	if err := os.WriteFile(f.path, token, 0o600); err != nil {
		return fmt.Errorf("writing token file: %w", err)
	}
	return nil
}
