package collection

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"

	"github.com/FACorreiaa/go-khonkaen-travel-planner/internal/ports"
	"github.com/FACorreiaa/go-khonkaen-travel-planner/internal/types"
)

var _ ports.CollectionStore = (*MemoryStore)(nil)

// MemoryStore is an in-process store for development and tests. Documents
// are kept encoded so callers never share memory with the store.
type MemoryStore struct {
	items *cache.Cache
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{items: cache.New(cache.NoExpiration, 0)}
}

func (m *MemoryStore) Save(_ context.Context, c *types.Collection) error {
	doc, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to encode collection: %w", err)
	}
	m.items.Set(storageKey(c.ID), doc, cache.NoExpiration)
	return nil
}

func (m *MemoryStore) Load(_ context.Context, id uuid.UUID) (*types.Collection, error) {
	raw, ok := m.items.Get(storageKey(id))
	if !ok {
		return nil, fmt.Errorf("collection %s: %w", id, types.ErrNotFound)
	}
	var c types.Collection
	if err := json.Unmarshal(raw.([]byte), &c); err != nil {
		return nil, fmt.Errorf("failed to decode collection %s: %w", id, err)
	}
	return &c, nil
}

func (m *MemoryStore) Delete(_ context.Context, id uuid.UUID) error {
	key := storageKey(id)
	if _, ok := m.items.Get(key); !ok {
		return fmt.Errorf("collection %s: %w", id, types.ErrNotFound)
	}
	m.items.Delete(key)
	return nil
}

func (m *MemoryStore) ListIDs(_ context.Context) ([]uuid.UUID, error) {
	ids := []uuid.UUID{}
	for key := range m.items.Items() {
		id, err := uuid.Parse(strings.TrimPrefix(key, KeyPrefix))
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	return ids, nil
}
