package state

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/morozRed/lineage/internal/fileutil"
)

// FileBlob stores each key as <dir>/<key>.json.
type FileBlob struct {
	dir string
}

func NewFileBlob(dir string) *FileBlob {
	return &FileBlob{dir: dir}
}

func (f *FileBlob) Dir() string {
	return f.dir
}

func (f *FileBlob) Get(key string) ([]byte, error) {
	path, err := f.path(key)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return data, nil
}

func (f *FileBlob) Set(key string, value []byte) error {
	path, err := f.path(key)
	if err != nil {
		return err
	}
	if err := fileutil.WriteIfChanged(path, value); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

func (f *FileBlob) Delete(key string) error {
	path, err := f.path(key)
	if err != nil {
		return err
	}
	return fileutil.RemoveIfExists(path)
}

func (f *FileBlob) Close() error {
	return nil
}

func (f *FileBlob) path(key string) (string, error) {
	if key == "" || strings.ContainsAny(key, `/\`) || key == "." || key == ".." {
		return "", fmt.Errorf("invalid blob key %q", key)
	}
	return filepath.Join(f.dir, key+".json"), nil
}
