package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// File persists each key as a JSON file under dir, the closest server-side
// analog of the browser's local storage.
type File struct {
	dir string
}

func NewFile(dir string) (*File, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed creating storage dir=%s with error=%w", dir, err)
	}
	return &File{dir: dir}, nil
}

func (f *File) path(key string) string {
	name := strings.ReplaceAll(key, ":", "_")
	return filepath.Join(f.dir, name+".json")
}

func (f *File) Load(_ context.Context, key string) ([]byte, bool, error) {
	payload, err := os.ReadFile(f.path(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed reading key=%s with error=%w", key, err)
	}
	return payload, true, nil
}

func (f *File) Save(_ context.Context, key string, payload []byte) error {
	path := f.path(key)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, payload, 0o644); err != nil {
		return fmt.Errorf("failed writing key=%s with error=%w", key, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("failed replacing key=%s with error=%w", key, err)
	}
	return nil
}

func (f *File) Delete(_ context.Context, key string) error {
	err := os.Remove(f.path(key))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed deleting key=%s with error=%w", key, err)
	}
	return nil
}
