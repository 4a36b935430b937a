package cache

import (
	"sync"

	"github.com/sirupsen/logrus"
)

// Region is a named key/value memo store flushed as a whole.
// Entries never expire on their own; EvictAll drops every entry at once.
type Region[K comparable, V any] struct {
	name   string
	logger *logrus.Entry

	mu      sync.RWMutex
	entries map[K]V
}

// NewRegion creates an empty region.
func NewRegion[K comparable, V any](name string, logger *logrus.Logger) *Region[K, V] {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Region[K, V]{
		name:    name,
		logger:  logger.WithFields(logrus.Fields{"component": "cache", "region": name}),
		entries: make(map[K]V),
	}
}

func (r *Region[K, V]) Name() string {
	return r.name
}

// GetOrCompute returns the value stored under key, computing and storing it on a miss.
// A failed compute is not stored. Concurrent misses on one key may each compute;
// the last one to finish wins.
func (r *Region[K, V]) GetOrCompute(key K, compute func() (V, error)) (V, error) {
	r.mu.RLock()
	value, ok := r.entries[key]
	r.mu.RUnlock()
	if ok {
		return value, nil
	}

	value, err := compute()
	if err != nil {
		var zero V
		return zero, err
	}

	r.mu.Lock()
	r.entries[key] = value
	r.mu.Unlock()
	return value, nil
}

// EvictAll clears the region.
func (r *Region[K, V]) EvictAll() {
	r.mu.Lock()
	evicted := len(r.entries)
	r.entries = make(map[K]V)
	r.mu.Unlock()

	r.logger.WithField("evicted", evicted).Infof("cache %q was flushed", r.name)
}

func (r *Region[K, V]) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}
