package storage

import (
	"slices"
	"sync"

	"storefront/pkg/domain/model"
)

var _ model.Storage = &Memory{}

// Memory keeps entries in process memory. Everything is lost on restart.
type Memory struct {
	mu      sync.RWMutex
	entries map[string][]byte
}

func NewMemory() *Memory {
	return &Memory{entries: make(map[string][]byte)}
}

func (m *Memory) Get(key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	value, ok := m.entries[key]
	if !ok {
		return nil, model.ErrKeyNotFound
	}
	return slices.Clone(value), nil
}

func (m *Memory) Set(key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries[key] = slices.Clone(value)
	return nil
}

func (m *Memory) Delete(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.entries[key]; !ok {
		return model.ErrKeyNotFound
	}
	delete(m.entries, key)
	return nil
}
