package repository

import (
	"context"
	"errors"
	"sync"

	"github.com/ourlovestory/scrapbook/internal/scrapbook"
)

var (
	ErrNotFound = errors.New("scrapbook not found")
)

// MemoryRepo is a simple in-memory repository keyed by owner, used for unit
// tests and for running the service without MongoDB.
type MemoryRepo struct {
	mu    sync.RWMutex
	store map[string]*scrapbook.Document
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{store: make(map[string]*scrapbook.Document)}
}

func (m *MemoryRepo) Get(ctx context.Context, ownerID string) (*scrapbook.Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	d, ok := m.store[ownerID]
	if !ok {
		return nil, ErrNotFound
	}
	cp := scrapbook.Document{OwnerID: d.OwnerID, Pages: d.Snapshot()}
	return &cp, nil
}

func (m *MemoryRepo) Save(ctx context.Context, ownerID string, pages []scrapbook.Page) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	d := &scrapbook.Document{OwnerID: ownerID, Pages: pages}
	m.store[ownerID] = &scrapbook.Document{OwnerID: ownerID, Pages: d.Snapshot()}
	return nil
}

func (m *MemoryRepo) Delete(ctx context.Context, ownerID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.store[ownerID]; !ok {
		return ErrNotFound
	}
	delete(m.store, ownerID)
	return nil
}
