package kv

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// FileBackend writes one JSON file per key under dataDir (data/<key>.json).
type FileBackend struct {
	mu      sync.Mutex
	dataDir string
}

func NewFileBackend(dataDir string) *FileBackend {
	if dataDir == "" {
		dataDir = "data"
	}
	return &FileBackend{dataDir: dataDir}
}

// fileName maps a key such as "game_state:abc" to a safe file name.
func fileName(key string) string {
	r := strings.NewReplacer("/", "_", "\\", "_", ":", "_", "..", "_")
	return r.Replace(key) + ".json"
}

func (f *FileBackend) path(key string) string {
	return filepath.Join(f.dataDir, fileName(key))
}

func (f *FileBackend) ensureDir() error {
	return os.MkdirAll(f.dataDir, 0755)
}

func (f *FileBackend) Get(_ context.Context, key string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, err := os.ReadFile(f.path(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return data, nil
}

// Put writes through a temp file and rename so a crash never leaves a torn record.
func (f *FileBackend) Put(_ context.Context, key string, value []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.ensureDir(); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(f.dataDir, ".tmp-*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(value); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	if err := os.Chmod(tmp.Name(), 0644); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), f.path(key))
}

func (f *FileBackend) Delete(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	err := os.Remove(f.path(key))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}
