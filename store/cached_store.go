package store

import (
	"github.com/dgraph-io/ristretto"
)

// CachedStore fronts a Backend with a ristretto read cache, for merge
// stages that re-read the same partials (retries, multi-destination
// plans).
type CachedStore struct {
	backend      Backend
	cacheEnabled bool
	cache        *ristretto.Cache
}

func NewCachedStore(backend Backend, cacheEnabled bool) *CachedStore {
	cache, _ := ristretto.NewCache(&ristretto.Config{
		NumCounters: 1e4,
		MaxCost:     1 << 26,
		BufferItems: 64,
	})
	return &CachedStore{
		backend:      backend,
		cacheEnabled: cacheEnabled,
		cache:        cache,
	}
}

func (store *CachedStore) Get(groupID, workerID int64) ([]byte, error) {
	if store.cacheEnabled {
		partial, found := store.cache.Get(Key(groupID, workerID))
		if found {
			return partial.([]byte), nil
		}
	}
	partial, err := store.backend.Get(groupID, workerID)
	if err != nil {
		return nil, err
	}
	if store.cacheEnabled {
		store.cache.Set(Key(groupID, workerID), partial, int64(len(partial)))
	}
	return partial, nil
}

func (store *CachedStore) Put(groupID, workerID int64, partial []byte) error {
	if store.cacheEnabled {
		store.cache.Set(Key(groupID, workerID), partial, int64(len(partial)))
	}
	return store.backend.Put(groupID, workerID, partial)
}

func (store *CachedStore) Delete(groupID, workerID int64) error {
	if store.cacheEnabled {
		store.cache.Del(Key(groupID, workerID))
	}
	return store.backend.Delete(groupID, workerID)
}

func (store *CachedStore) Scan(groupID int64, fn func(int64, []byte) error) error {
	return store.backend.Scan(groupID, fn)
}

func (store *CachedStore) Close() error {
	return store.backend.Close()
}
