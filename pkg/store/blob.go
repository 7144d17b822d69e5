package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
)

// ErrCapacity is returned by a Blob when a write would exceed the backing
// store's capacity. Callers surface it so the UI can say "storage might be
// full" instead of losing the save silently.
var ErrCapacity = errors.New("storage capacity exceeded")

// Blob is synchronous persistent key-value storage for serialized documents.
// Writes replace the whole value for a key; there is no partial update and no
// locking across concurrent writers (last write wins).
type Blob interface {
	// Get returns the stored value and whether the key exists.
	Get(key string) ([]byte, bool, error)

	// Set replaces the value for key. May return ErrCapacity.
	Set(key string, value []byte) error

	// Delete removes the key. Deleting a missing key is a no-op.
	Delete(key string) error
}

// MemoryBlob is an in-memory Blob. With a MaxBytes limit it also models the
// capacity behavior of browser local storage, which makes it useful as a test
// fake for quota-exceeded paths.
type MemoryBlob struct {
	mu       sync.Mutex
	values   map[string][]byte
	maxBytes int
}

// NewMemoryBlob creates an unbounded in-memory Blob.
func NewMemoryBlob() *MemoryBlob {
	return &MemoryBlob{values: make(map[string][]byte)}
}

// NewBoundedMemoryBlob creates an in-memory Blob that rejects writes once the
// total stored size would exceed maxBytes.
func NewBoundedMemoryBlob(maxBytes int) *MemoryBlob {
	return &MemoryBlob{values: make(map[string][]byte), maxBytes: maxBytes}
}

func (b *MemoryBlob) Get(key string) ([]byte, bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	value, ok := b.values[key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), value...), true, nil
}

func (b *MemoryBlob) Set(key string, value []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.maxBytes > 0 {
		total := len(value)
		for k, v := range b.values {
			if k == key {
				continue
			}
			total += len(v)
		}
		if total > b.maxBytes {
			return ErrCapacity
		}
	}
	b.values[key] = append([]byte(nil), value...)
	return nil
}

func (b *MemoryBlob) Delete(key string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.values, key)
	return nil
}

// FileBlob stores one file per key under a directory. It is the desktop
// analog of browser local storage: a flat namespace of string keys, whole
// value replaced on every write.
type FileBlob struct {
	dir string

	mu sync.Mutex
}

// NewFileBlob creates the directory if needed and returns a file-backed Blob.
func NewFileBlob(dir string) (*FileBlob, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, fmt.Errorf("blob directory must not be empty")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create blob directory: %w", err)
	}
	return &FileBlob{dir: dir}, nil
}

func (b *FileBlob) path(key string) string {
	// Keys are well-known constants, not user input, but keep them filename
	// safe anyway.
	safe := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '-' || r == '_' || r == '.':
			return r
		default:
			return '_'
		}
	}, key)
	return filepath.Join(b.dir, safe+".json")
}

func (b *FileBlob) Get(key string) ([]byte, bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	data, err := os.ReadFile(b.path(key))
	if errors.Is(err, os.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return data, true, nil
}

func (b *FileBlob) Set(key string, value []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	path := b.path(key)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, value, 0o644); err != nil {
		_ = os.Remove(tmp)
		if errors.Is(err, syscall.ENOSPC) {
			return ErrCapacity
		}
		return err
	}
	return os.Rename(tmp, path)
}

func (b *FileBlob) Delete(key string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	err := os.Remove(b.path(key))
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}
