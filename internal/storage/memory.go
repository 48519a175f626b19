package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/coocood/freecache"
)

const megabyte = 1024 * 1024

// MemoryStore keeps snapshots in a freecache instance. Nothing survives
// a restart; used for local development and tests. Note that freecache
// refuses values larger than 1/1024 of the cache size.
type MemoryStore struct {
	cache *freecache.Cache
}

func NewMemoryStore(cacheSizeMegabytes int) *MemoryStore {
	if cacheSizeMegabytes <= 0 {
		cacheSizeMegabytes = 1
	}
	return &MemoryStore{
		cache: freecache.NewCache(cacheSizeMegabytes * megabyte),
	}
}

func (s *MemoryStore) Read(_ context.Context, key string) (string, error) {
	if err := validKey(key); err != nil {
		return "", err
	}

	value, err := s.cache.Get([]byte(key))
	if err != nil {
		if errors.Is(err, freecache.ErrNotFound) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("memory store get [%s]: %w", key, err)
	}

	return string(value), nil
}

func (s *MemoryStore) Write(_ context.Context, key, value string) error {
	if err := validKey(key); err != nil {
		return err
	}

	// no expiry
	if err := s.cache.Set([]byte(key), []byte(value), 0); err != nil {
		return fmt.Errorf("memory store set [%s]: %w", key, err)
	}

	return nil
}
