package testutil

import (
	"context"
	"sync"
	"time"
)

// MemCache is an in-memory cache.Cache. TTLs are ignored.
type MemCache struct {
	mu   sync.Mutex
	data map[string][]byte
}

// NewMemCache returns an empty cache.
func NewMemCache() *MemCache {
	return &MemCache{data: map[string][]byte{}}
}

func (m *MemCache) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.data[key], nil
}

func (m *MemCache) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = append([]byte(nil), value...)
	return nil
}

func (m *MemCache) Delete(_ context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.data[key]
	delete(m.data, key)
	return ok, nil
}

func (m *MemCache) Health(context.Context) error { return nil }

// Has reports whether key holds a value.
func (m *MemCache) Has(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.data[key]
	return ok
}
