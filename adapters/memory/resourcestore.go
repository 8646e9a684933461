// Package memory provides in-memory implementations of storage ports,
// used in tests and for running without a database.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/artpar/pagekit/ports"
)

// ResourceStore is an in-memory implementation of ports.Collection.
type ResourceStore struct {
	mu    sync.RWMutex
	items map[string]ports.Item
	ids   ports.IDGenerator
}

// NewResourceStore creates an empty in-memory store.
func NewResourceStore(ids ports.IDGenerator) *ResourceStore {
	return &ResourceStore{
		items: make(map[string]ports.Item),
		ids:   ids,
	}
}

// Get retrieves an item by id.
func (s *ResourceStore) Get(ctx context.Context, id string) (ports.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	item, ok := s.items[id]
	if !ok {
		return nil, ports.ErrNotFound
	}
	return item.Clone(), nil
}

// Save creates or updates an item, assigning an id when absent.
func (s *ResourceStore) Save(ctx context.Context, item ports.Item) (ports.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	saved := item.Clone()
	if saved.ID() == "" {
		saved.SetID(s.ids.New())
	}
	s.items[saved.ID()] = saved.Clone()
	return saved, nil
}

// Remove deletes an item by id.
func (s *ResourceStore) Remove(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.items[id]; !ok {
		return ports.ErrNotFound
	}
	delete(s.items, id)
	return nil
}

// List returns all items ordered by id.
func (s *ResourceStore) List(ctx context.Context) ([]ports.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items := make([]ports.Item, 0, len(s.items))
	for _, item := range s.items {
		items = append(items, item.Clone())
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].ID() < items[j].ID()
	})
	return items, nil
}

// Ensure interface compliance.
var _ ports.Collection = (*ResourceStore)(nil)
