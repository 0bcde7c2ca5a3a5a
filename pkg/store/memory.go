package store

import (
	"context"
	"sort"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/codegnosis/depspace/pkg/observability"
)

// DefaultMemoryCapacity bounds the in-memory store. Snapshots are a few
// hundred kilobytes each; the least recently used run is evicted first.
const DefaultMemoryCapacity = 32

// MemoryStore is a bounded in-process snapshot store.
type MemoryStore struct {
	cache *lru.Cache[string, *Snapshot]
}

// NewMemoryStore creates an LRU-bounded store. capacity <= 0 uses
// DefaultMemoryCapacity.
func NewMemoryStore(capacity int) *MemoryStore {
	if capacity <= 0 {
		capacity = DefaultMemoryCapacity
	}
	// New only errors on size <= 0, which is excluded above.
	c, _ := lru.New[string, *Snapshot](capacity)
	return &MemoryStore{cache: c}
}

func (s *MemoryStore) Get(ctx context.Context, key string) (*Snapshot, error) {
	snap, ok := s.cache.Get(key)
	if !ok {
		observability.Cache().OnCacheMiss(ctx, "snapshot")
		return nil, ErrNotFound
	}
	observability.Cache().OnCacheHit(ctx, "snapshot")
	return snap, nil
}

func (s *MemoryStore) Put(ctx context.Context, snap *Snapshot) error {
	s.cache.Add(snap.Key, snap)
	observability.Cache().OnCacheSet(ctx, "snapshot", len(snap.Analysis.FileData))
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, key string) error {
	s.cache.Remove(key)
	return nil
}

func (s *MemoryStore) List(ctx context.Context, limit int) ([]Info, error) {
	keys := s.cache.Keys()
	infos := make([]Info, 0, len(keys))
	for _, k := range keys {
		if snap, ok := s.cache.Peek(k); ok {
			infos = append(infos, Info{Key: snap.Key, Stats: snap.Stats, CreatedAt: snap.CreatedAt})
		}
	}
	sort.Slice(infos, func(i, j int) bool {
		return infos[i].CreatedAt.After(infos[j].CreatedAt)
	})
	if limit > 0 && len(infos) > limit {
		infos = infos[:limit]
	}
	return infos, nil
}

func (s *MemoryStore) Close() error {
	s.cache.Purge()
	return nil
}

// Ensure MemoryStore implements Store.
var _ Store = (*MemoryStore)(nil)
