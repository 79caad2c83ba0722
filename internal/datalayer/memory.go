package datalayer

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"
)

type memoryObject struct {
	data []byte
	info ObjectInfo
}

// MemoryStorage is a BlobStorage kept in process memory. It is meant for
// tests and local runs without an object store.
type MemoryStorage struct {
	mu      sync.RWMutex
	objects map[string]memoryObject
	now     func() time.Time
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		objects: make(map[string]memoryObject),
		now:     time.Now,
	}
}

// WithClock replaces the clock used to stamp LastModified.
func (s *MemoryStorage) WithClock(now func() time.Time) *MemoryStorage {
	s.now = now
	return s
}

var _ BlobStorage = (*MemoryStorage)(nil)

func (s *MemoryStorage) Put(ctx context.Context, key string, data io.Reader, opts PutOptions) error {
	b, err := io.ReadAll(data)
	if err != nil {
		return fmt.Errorf("failed to read object %s: %w", key, err)
	}
	if opts.Size >= 0 && int64(len(b)) != opts.Size {
		return fmt.Errorf("object %s: read %d bytes, expected %d", key, len(b), opts.Size)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[key] = memoryObject{
		data: b,
		info: ObjectInfo{
			Key:          key,
			Size:         int64(len(b)),
			ContentType:  opts.ContentType,
			LastModified: s.now(),
		},
	}
	return nil
}

func (s *MemoryStorage) Get(ctx context.Context, key string) (io.ReadCloser, ObjectInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	obj, ok := s.objects[key]
	if !ok {
		return nil, ObjectInfo{}, fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	return io.NopCloser(bytes.NewReader(obj.data)), obj.info, nil
}

func (s *MemoryStorage) Purge(ctx context.Context, prefix string, cutoff time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for key, obj := range s.objects {
		if strings.HasPrefix(key, prefix) && obj.info.LastModified.Before(cutoff) {
			delete(s.objects, key)
			removed++
		}
	}
	return removed, nil
}

// Len returns the number of stored objects.
func (s *MemoryStorage) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.objects)
}
