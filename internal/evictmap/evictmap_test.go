package evictmap

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestMap builds a map with duration-typed knobs so tests can run at
// millisecond scale, and closes it when the test ends.
func newTestMap(t *testing.T, ttl, initialDelay, period time.Duration) *EvictionMap[string, string] {
	t.Helper()
	m := newMap[string, string](ttl, initialDelay, period)
	t.Cleanup(func() { _ = m.Close() })
	return m
}

// farSweep keeps the sweeper out of the way for tests that exercise only the
// synchronous paths.
const farSweep = time.Hour

func TestNew_RejectsNonPositiveArguments(t *testing.T) {
	cases := []struct {
		name                    string
		duration, delay, period int
	}{
		{"negative duration", -1, 1, 1},
		{"zero duration", 0, 1, 1},
		{"zero initial delay", 1, 0, 1},
		{"negative period", 1, 1, -2},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			m, err := New[string, string](tc.duration, tc.delay, tc.period)
			assert.ErrorIs(t, err, ErrInvalidArgument)
			assert.Nil(t, m)
		})
	}
}

func TestNew_ValidArguments(t *testing.T) {
	m, err := New[string, string](10, 1, 1)
	require.NoError(t, err)
	require.NotNil(t, m)
	assert.NoError(t, m.Close())
}

func TestPutGet_RoundTrip(t *testing.T) {
	m := newTestMap(t, time.Minute, farSweep, farSweep)

	require.NoError(t, m.Put("key1", "value1"))
	got, err := m.Get("key1")
	require.NoError(t, err)
	assert.Equal(t, "value1", got)
	assert.Equal(t, 1, m.Len())
}

func TestGet_MissingKey(t *testing.T) {
	m := newTestMap(t, time.Minute, farSweep, farSweep)

	_, err := m.Get("never-written")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPut_LastWriteWins(t *testing.T) {
	m := newTestMap(t, time.Minute, farSweep, farSweep)

	require.NoError(t, m.Put("key1", "old"))
	require.NoError(t, m.Put("key1", "new"))

	got, err := m.Get("key1")
	require.NoError(t, err)
	assert.Equal(t, "new", got)
	assert.Equal(t, 1, m.Len())
}

func TestPut_ZeroValuePayload(t *testing.T) {
	m := newTestMap(t, time.Minute, farSweep, farSweep)

	require.NoError(t, m.Put("empty", ""))
	got, err := m.Get("empty")
	require.NoError(t, err)
	assert.Equal(t, "", got)

	nilable := newMap[string, *int](time.Minute, farSweep, farSweep)
	defer nilable.Close()
	require.NoError(t, nilable.Put("nilval", nil))
	p, err := nilable.Get("nilval")
	require.NoError(t, err)
	assert.Nil(t, p)
}

func TestNilKey(t *testing.T) {
	t.Run("pointer key", func(t *testing.T) {
		m := newMap[*string, string](time.Minute, farSweep, farSweep)
		defer m.Close()

		assert.ErrorIs(t, m.Put(nil, "value1"), ErrNilKey)
		_, err := m.Get(nil)
		assert.ErrorIs(t, err, ErrNilKey)

		k := "key1"
		require.NoError(t, m.Put(&k, "value1"))
		got, err := m.Get(&k)
		require.NoError(t, err)
		assert.Equal(t, "value1", got)
	})

	t.Run("interface key", func(t *testing.T) {
		m := newMap[any, string](time.Minute, farSweep, farSweep)
		defer m.Close()

		assert.ErrorIs(t, m.Put(nil, "value1"), ErrNilKey)
		_, err := m.Get(nil)
		assert.ErrorIs(t, err, ErrNilKey)
	})
}

func TestClose_Idempotent(t *testing.T) {
	m := newMap[string, string](time.Minute, farSweep, farSweep)

	require.NoError(t, m.Put("key1", "value1"))
	assert.NoError(t, m.Close())
	assert.NoError(t, m.Close())
	assert.Equal(t, 0, m.Len())
}

func TestClose_FailsFurtherCalls(t *testing.T) {
	m := newMap[string, string](time.Minute, farSweep, farSweep)
	require.NoError(t, m.Close())

	assert.ErrorIs(t, m.Put("key1", "value1"), ErrClosed)
	_, err := m.Get("key1")
	assert.ErrorIs(t, err, ErrClosed)
}

func TestConcurrentPutGet(t *testing.T) {
	m := newTestMap(t, time.Minute, farSweep, farSweep)

	const workers = 8
	const perWorker = 200

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				key := fmt.Sprintf("key-%d", i%32)
				assert.NoError(t, m.Put(key, fmt.Sprintf("w%d-%d", w, i)))
				if _, err := m.Get(key); err != nil {
					assert.ErrorIs(t, err, ErrNotFound)
				}
			}
		}(w)
	}
	wg.Wait()

	assert.Equal(t, 32, m.Len())
}
