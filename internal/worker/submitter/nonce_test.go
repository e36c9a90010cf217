package submitter

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func newTestNonceState(clock *fakeClock) *NonceState {
	n := NewNonceState(NonceFreshness)
	n.nowFn = clock.Now
	return n
}

func countingFetch(value uint64, calls *int) func(context.Context) (uint64, error) {
	return func(context.Context) (uint64, error) {
		*calls++
		return value, nil
	}
}

func TestNonceReserveWithinFreshness(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1_700_000_000, 0)}
	n := newTestNonceState(clock)
	calls := 0
	fetch := countingFetch(10, &calls)

	var got []uint64
	for i := 0; i < 3; i++ {
		v, err := n.Reserve(context.Background(), fetch)
		require.NoError(t, err)
		got = append(got, v)
		clock.now = clock.now.Add(time.Second)
	}

	assert.Equal(t, []uint64{10, 11, 12}, got)
	assert.Equal(t, 1, calls)
}

func TestNonceReserveRefreshesWhenStale(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1_700_000_000, 0)}
	n := newTestNonceState(clock)
	calls := 0

	v, err := n.Reserve(context.Background(), countingFetch(3, &calls))
	require.NoError(t, err)
	assert.Equal(t, uint64(3), v)

	clock.now = clock.now.Add(NonceFreshness)
	v, err = n.Reserve(context.Background(), countingFetch(20, &calls))
	require.NoError(t, err)
	assert.Equal(t, uint64(20), v)
	assert.Equal(t, 2, calls)
}

func TestNonceInvalidate(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1_700_000_000, 0)}
	n := newTestNonceState(clock)
	calls := 0
	fetch := countingFetch(7, &calls)

	_, err := n.Reserve(context.Background(), fetch)
	require.NoError(t, err)
	n.Invalidate()
	v, err := n.Reserve(context.Background(), fetch)
	require.NoError(t, err)

	assert.Equal(t, uint64(7), v)
	assert.Equal(t, 2, calls)
}

func TestNonceFetchError(t *testing.T) {
	n := NewNonceState(0)
	boom := errors.New("rpc down")

	_, err := n.Reserve(context.Background(), func(context.Context) (uint64, error) { return 0, boom })
	assert.ErrorIs(t, err, boom)

	calls := 0
	v, err := n.Reserve(context.Background(), countingFetch(4, &calls))
	require.NoError(t, err)
	assert.Equal(t, uint64(4), v)
	assert.Equal(t, 1, calls)
}

func TestNonceConcurrentReservationsUnique(t *testing.T) {
	n := NewNonceState(time.Minute)
	var fetchMu sync.Mutex
	calls := 0
	fetch := func(context.Context) (uint64, error) {
		fetchMu.Lock()
		defer fetchMu.Unlock()
		calls++
		return 100, nil
	}

	const workers = 64
	results := make(chan uint64, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, err := n.Reserve(context.Background(), fetch)
			if err == nil {
				results <- v
			}
		}()
	}
	wg.Wait()
	close(results)

	seen := make(map[uint64]bool)
	for v := range results {
		assert.False(t, seen[v], "duplicate nonce %d", v)
		seen[v] = true
	}
	assert.Len(t, seen, workers)
	assert.Equal(t, 1, calls)
}
