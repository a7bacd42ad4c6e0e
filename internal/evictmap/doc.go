// Package evictmap implements a concurrency-safe in-memory key-value map
// whose entries expire a fixed duration after their last write.
//
// Expired entries are reclaimed two ways:
//   - lazily, when Get encounters an entry past its expiry
//   - eagerly, by a periodic background sweep over all entries
//
// The lazy path guarantees no caller ever reads a logically expired value;
// the eager path bounds how long an unread expired entry can occupy memory.
// Each map owns its sweeper goroutine and stops it on Close.
package evictmap
