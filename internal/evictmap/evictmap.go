package evictmap

import (
	"context"
	"errors"
	"fmt"
	"hash/maphash"
	"reflect"
	"sync"
	"sync/atomic"
	"time"
)

var (
	ErrInvalidArgument = errors.New("must be greater than 0")
	ErrNilKey          = errors.New("key cannot be nil")
	ErrNotFound        = errors.New("key not found or expired")
	ErrClosed          = errors.New("map is closed")
)

// EvictionMap stores key-value pairs for a bounded lifetime. Every entry
// expires the map's fixed duration after its last Put; a refreshed entry
// expires relative to the refresh, not the original write.
//
// EvictionMap owns its sweeper goroutine. Call Close to stop it.
type EvictionMap[K comparable, V any] struct {
	shards []*shard[K, V]
	seed   maphash.Seed
	ttl    time.Duration

	totalKeys int64 // atomic
	sweeps    int64 // atomic, completed sweep passes
	closed    atomic.Bool

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New constructs an EvictionMap and starts its background sweeper.
//
// Entries live for durationSeconds after each write. The first sweep fires
// after initialDelaySeconds, then every periodSeconds at a fixed rate. All
// three must be strictly positive or New returns ErrInvalidArgument and no
// map is created.
func New[K comparable, V any](durationSeconds, initialDelaySeconds, periodSeconds int) (*EvictionMap[K, V], error) {
	if durationSeconds <= 0 {
		return nil, fmt.Errorf("duration %w", ErrInvalidArgument)
	}
	if initialDelaySeconds <= 0 {
		return nil, fmt.Errorf("initial delay %w", ErrInvalidArgument)
	}
	if periodSeconds <= 0 {
		return nil, fmt.Errorf("period %w", ErrInvalidArgument)
	}
	return newMap[K, V](
		time.Duration(durationSeconds)*time.Second,
		time.Duration(initialDelaySeconds)*time.Second,
		time.Duration(periodSeconds)*time.Second,
	), nil
}

// newMap is the duration-typed constructor behind New. Callers must pass
// strictly positive durations.
func newMap[K comparable, V any](ttl, initialDelay, period time.Duration) *EvictionMap[K, V] {
	ctx, cancel := context.WithCancel(context.Background())
	m := &EvictionMap[K, V]{
		shards: newShards[K, V](),
		seed:   maphash.MakeSeed(),
		ttl:    ttl,
		ctx:    ctx,
		cancel: cancel,
	}
	m.wg.Add(1)
	go m.sweepLoop(initialDelay, period)
	return m
}

// Put stores key->value, overwriting any prior entry for the same key. The
// entry's expiry is reset to now + duration. Any value is a legal payload,
// including the zero value; a nil key fails with ErrNilKey.
func (m *EvictionMap[K, V]) Put(key K, value V) error {
	if isNilKey(key) {
		return ErrNilKey
	}

	expireAt := time.Now().Add(m.ttl)
	s := m.shardFor(key)

	s.mu.Lock()
	// Checked under the shard lock: Close sets the flag before it clears
	// shards, so an insert that slips past here is still wiped by Close.
	if m.closed.Load() {
		s.mu.Unlock()
		return ErrClosed
	}
	_, exists := s.entries[key]
	s.entries[key] = entry[V]{value: value, expireAt: expireAt}
	s.mu.Unlock()

	if !exists {
		atomic.AddInt64(&m.totalKeys, 1)
	}
	return nil
}

// Get returns the live value for key, or ErrNotFound if the key is absent or
// expired. An entry is valid through its exact expiry instant inclusive.
//
// Finding an expired entry removes it (lazy eviction), so no caller observes
// a logically expired value regardless of sweep cadence.
func (m *EvictionMap[K, V]) Get(key K) (V, error) {
	var zero V
	if isNilKey(key) {
		return zero, ErrNilKey
	}
	if m.closed.Load() {
		return zero, ErrClosed
	}

	s := m.shardFor(key)
	s.mu.RLock()
	e, ok := s.entries[key]
	s.mu.RUnlock()

	if !ok {
		return zero, ErrNotFound
	}
	if time.Now().After(e.expireAt) {
		m.deleteExpired(s, key)
		return zero, ErrNotFound
	}
	return e.value, nil
}

// deleteExpired re-checks expiry under the write lock; the sweeper or a
// fresh Put may have acted on the key between locks.
func (m *EvictionMap[K, V]) deleteExpired(s *shard[K, V], key K) {
	s.mu.Lock()
	if e, ok := s.entries[key]; ok && time.Now().After(e.expireAt) {
		delete(s.entries, key)
		atomic.AddInt64(&m.totalKeys, -1)
	}
	s.mu.Unlock()
}

// Len returns the number of stored entries, including expired entries the
// sweeper has not visited yet.
func (m *EvictionMap[K, V]) Len() int {
	return int(atomic.LoadInt64(&m.totalKeys))
}

// Close stops the sweeper and clears all entries. It is safe to call more
// than once and never fails; Put and Get on a closed map return ErrClosed.
func (m *EvictionMap[K, V]) Close() error {
	if !m.closed.CompareAndSwap(false, true) {
		return nil
	}

	m.cancel()
	m.wg.Wait()

	for _, s := range m.shards {
		s.mu.Lock()
		s.entries = make(map[K]entry[V])
		s.mu.Unlock()
	}
	atomic.StoreInt64(&m.totalKeys, 0)
	return nil
}

// isNilKey reports whether key is a nil pointer, channel, or interface.
// Other comparable kinds have no nil representation.
func isNilKey[K comparable](key K) bool {
	k := any(key)
	if k == nil {
		return true
	}
	v := reflect.ValueOf(k)
	switch v.Kind() {
	case reflect.Pointer, reflect.Chan, reflect.Interface:
		return v.IsNil()
	}
	return false
}
