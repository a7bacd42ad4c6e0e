package evictmap

import (
	"sync/atomic"
	"time"
)

// sweepLoop fires once after initialDelay, then every period. A single
// goroutine runs all passes, so a sweep can never overlap itself; an
// overrunning pass defers the next tick instead of running in parallel.
func (m *EvictionMap[K, V]) sweepLoop(initialDelay, period time.Duration) {
	defer m.wg.Done()

	delay := time.NewTimer(initialDelay)
	defer delay.Stop()
	select {
	case <-m.ctx.Done():
		return
	case <-delay.C:
	}
	m.sweep(time.Now())

	ticker := time.NewTicker(period)
	defer ticker.Stop()
	for {
		select {
		case <-m.ctx.Done():
			return
		case now := <-ticker.C:
			m.sweep(now)
		}
	}
}

// sweep removes every entry whose expiry lies strictly before now. The
// reference time is captured once per pass, so all entries in a pass are
// judged against the same instant.
func (m *EvictionMap[K, V]) sweep(now time.Time) {
	for _, s := range m.shards {
		removed := 0
		s.mu.Lock()
		for k, e := range s.entries {
			if now.After(e.expireAt) {
				delete(s.entries, k)
				removed++
			}
		}
		s.mu.Unlock()
		if removed > 0 {
			atomic.AddInt64(&m.totalKeys, int64(-removed))
		}
	}
	atomic.AddInt64(&m.sweeps, 1)
}

// sweepCount reports completed passes; used by tests to observe that Close
// stops the sweeper.
func (m *EvictionMap[K, V]) sweepCount() int64 {
	return atomic.LoadInt64(&m.sweeps)
}
