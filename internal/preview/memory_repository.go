package preview

import (
	"context"
	"sync"
)

// MemoryRepository is a map-backed Repository used for unit tests and
// single-process deployments without Redis or Mongo.
type MemoryRepository struct {
	mu    sync.RWMutex
	store map[string]*Token
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{store: make(map[string]*Token)}
}

func (m *MemoryRepository) Create(ctx context.Context, t *Token) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *t
	m.store[t.ID] = &cp
	return nil
}

func (m *MemoryRepository) Get(ctx context.Context, id string) (*Token, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	t, ok := m.store[id]
	if !ok {
		return nil, nil
	}
	cp := *t
	return &cp, nil
}

func (m *MemoryRepository) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.store, id)
	return nil
}
