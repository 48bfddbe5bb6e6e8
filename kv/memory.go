package kv

import (
	"context"
	"maps"
	"slices"
	"strings"
	"sync"

	"github.com/tidwall/btree"
)

// MemoryStore is an in-process Store ordered by encoded key.
type MemoryStore struct {
	mu     sync.RWMutex
	items  *btree.Map[string, *Item]
	closed bool
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		items: btree.NewMap[string, *Item](0),
	}
}

func (ms *MemoryStore) Get(ctx context.Context, namespace []string, key string) (*Item, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	if ms.closed {
		return nil, ErrClosed
	}

	item, exists := ms.items.Get(EncodeKey(namespace, key))
	if !exists {
		return nil, ErrNotFound
	}

	return cloneItem(item), nil
}

func (ms *MemoryStore) Put(ctx context.Context, namespace []string, key string, value map[string]any) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	if ms.closed {
		return ErrClosed
	}

	encoded := EncodeKey(namespace, key)
	previous, _ := ms.items.Get(encoded)

	ms.items.Set(encoded, NewItem(slices.Clone(namespace), key, maps.Clone(value), previous))
	return nil
}

func (ms *MemoryStore) Search(ctx context.Context, prefix []string, filter map[string]any, limit, offset int) ([]*Item, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	if ms.closed {
		return nil, ErrClosed
	}

	pivot := EncodeNamespace(prefix)
	items := make([]*Item, 0)
	ms.items.Ascend(pivot, func(encoded string, item *Item) bool {
		if !strings.HasPrefix(encoded, pivot) {
			return false
		}
		if MatchesFilter(item.Value, filter) {
			items = append(items, cloneItem(item))
		}
		return true
	})

	SortItems(items)
	return Paginate(items, limit, offset), nil
}

func (ms *MemoryStore) Close() error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	ms.closed = true
	ms.items.Clear()
	return nil
}

func cloneItem(item *Item) *Item {
	clone := *item
	clone.Namespace = slices.Clone(item.Namespace)
	clone.Value = maps.Clone(item.Value)
	return &clone
}
