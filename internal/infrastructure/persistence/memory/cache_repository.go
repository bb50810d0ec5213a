// Package memory provides an in-memory cache repository implementation
// used in development and tests.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/fitforge/v1/internal/ports/outbound"
)

const defaultTTL = 24 * time.Hour

// cacheItem represents a cached item
type cacheItem struct {
	value     []byte
	expiresAt time.Time
}

// CacheRepository implements the cache repository in process memory
type CacheRepository struct {
	data  map[string]cacheItem
	mutex sync.Mutex
	done  chan struct{}
}

// NewCacheRepository creates a new in-memory cache repository
func NewCacheRepository() *CacheRepository {
	repo := &CacheRepository{
		data: make(map[string]cacheItem),
		done: make(chan struct{}),
	}
	go repo.cleanup()
	return repo
}

// Get retrieves a value from cache. A missing or expired key returns a
// nil value and no error.
func (r *CacheRepository) Get(ctx context.Context, key string) ([]byte, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	item, exists := r.data[key]
	if !exists {
		return nil, nil
	}
	if time.Now().After(item.expiresAt) {
		delete(r.data, key)
		return nil, nil
	}
	return item.value, nil
}

// Set stores a value in cache with TTL
func (r *CacheRepository) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if ttl <= 0 {
		ttl = defaultTTL
	}
	r.data[key] = cacheItem{value: value, expiresAt: time.Now().Add(ttl)}
	return nil
}

// Delete removes a key from cache
func (r *CacheRepository) Delete(ctx context.Context, key string) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	delete(r.data, key)
	return nil
}

// Exists checks whether a key is present and unexpired
func (r *CacheRepository) Exists(ctx context.Context, key string) (bool, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	item, exists := r.data[key]
	if !exists {
		return false, nil
	}
	if time.Now().After(item.expiresAt) {
		delete(r.data, key)
		return false, nil
	}
	return true, nil
}

// Close stops the background cleanup
func (r *CacheRepository) Close() {
	close(r.done)
}

func (r *CacheRepository) cleanup() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-r.done:
			return
		case <-ticker.C:
			now := time.Now()
			r.mutex.Lock()
			for key, item := range r.data {
				if now.After(item.expiresAt) {
					delete(r.data, key)
				}
			}
			r.mutex.Unlock()
		}
	}
}

var _ outbound.CacheRepository = (*CacheRepository)(nil)
