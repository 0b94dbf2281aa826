package state

import (
	"errors"
	"fmt"
	"path/filepath"
	"sync"

	"go.uber.org/zap"
)

// ErrNotFound is returned by Blob.Get when the key holds no value.
var ErrNotFound = errors.New("blob key not found")

// Blob is an opaque key/value store for encoded snapshots.
type Blob interface {
	Get(key string) ([]byte, error)
	Set(key string, value []byte) error
	Delete(key string) error
	Close() error
}

// Backend names accepted by Open.
const (
	BackendFile   = "file"
	BackendBadger = "badger"
	BackendMemory = "memory"
)

// BadgerDir is the subdirectory of the data directory holding the badger
// database.
const BadgerDir = "badger"

// Backends lists every supported backend name.
func Backends() []string {
	return []string{BackendFile, BackendBadger, BackendMemory}
}

// Open constructs the named backend rooted at dataDir.
func Open(backend, dataDir string, logger *zap.Logger) (Blob, error) {
	switch backend {
	case BackendFile, "":
		return NewFileBlob(dataDir), nil
	case BackendBadger:
		return OpenBadgerBlob(filepath.Join(dataDir, BadgerDir), logger)
	case BackendMemory:
		return NewMemoryBlob(), nil
	default:
		return nil, fmt.Errorf("unsupported store backend %q", backend)
	}
}

// MemoryBlob keeps values in process memory.
type MemoryBlob struct {
	mu     sync.RWMutex
	values map[string][]byte
}

func NewMemoryBlob() *MemoryBlob {
	return &MemoryBlob{values: make(map[string][]byte)}
}

func (m *MemoryBlob) Get(key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	value, ok := m.values[key]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]byte(nil), value...), nil
}

func (m *MemoryBlob) Set(key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = append([]byte(nil), value...)
	return nil
}

func (m *MemoryBlob) Delete(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.values, key)
	return nil
}

func (m *MemoryBlob) Close() error {
	return nil
}
