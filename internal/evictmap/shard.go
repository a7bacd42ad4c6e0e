package evictmap

import (
	"hash/maphash"
	"runtime"
	"sync"
	"time"
)

// entry couples a value with its absolute expiry instant. Storing both in one
// record means a reader can never see a value without its expiry or the other
// way around.
type entry[V any] struct {
	value    V
	expireAt time.Time
}

// shard holds a slice of the keyspace under its own lock, so removal on one
// key never serializes keys on other shards.
type shard[K comparable, V any] struct {
	mu      sync.RWMutex
	entries map[K]entry[V]
}

func newShards[K comparable, V any]() []*shard[K, V] {
	n := runtime.GOMAXPROCS(0)
	if n < 1 {
		n = 1
	}
	shards := make([]*shard[K, V], n)
	for i := range shards {
		shards[i] = &shard[K, V]{entries: make(map[K]entry[V])}
	}
	return shards
}

func (m *EvictionMap[K, V]) shardFor(key K) *shard[K, V] {
	return m.shards[maphash.Comparable(m.seed, key)%uint64(len(m.shards))]
}
