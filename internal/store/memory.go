package store

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"
)

var _ Backend = (*MemoryBackend)(nil)

// MemoryBackend keeps entries in process memory. It is the fallback when no
// durable store is configured and the default for tests.
type MemoryBackend struct {
	mu      sync.Mutex
	entries map[string]Entry
}

func NewMemory() *MemoryBackend {
	return &MemoryBackend{entries: make(map[string]Entry)}
}

func (m *MemoryBackend) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[key]
	if !ok {
		return nil, ErrNotFound
	}
	return clone(e.Value), nil
}

func (m *MemoryBackend) Set(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries[key] = Entry{Key: key, Value: clone(value), UpdatedAt: time.Now()}
	return nil
}

func (m *MemoryBackend) SetIfAbsent(_ context.Context, key string, value []byte) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.entries[key]; ok {
		return false, nil
	}
	m.entries[key] = Entry{Key: key, Value: clone(value), UpdatedAt: time.Now()}
	return true, nil
}

func (m *MemoryBackend) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.entries[key]; !ok {
		return ErrNotFound
	}
	delete(m.entries, key)
	return nil
}

func (m *MemoryBackend) List(_ context.Context, prefix string) ([]Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var entries []Entry
	for k, e := range m.entries {
		if strings.HasPrefix(k, prefix) {
			e.Value = clone(e.Value)
			entries = append(entries, e)
		}
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Key < entries[j].Key })
	return entries, nil
}

func (m *MemoryBackend) Close() error {
	return nil
}

func clone(b []byte) []byte {
	if b == nil {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
