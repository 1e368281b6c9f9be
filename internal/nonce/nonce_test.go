package nonce

import (
	"sort"
	"strconv"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCounterStrictlyIncreasing(t *testing.T) {
	c := NewCounter()

	prev, err := strconv.ParseInt(c.Next(), 10, 64)
	require.NoError(t, err)
	for i := 0; i < 1000; i++ {
		next, err := strconv.ParseInt(c.Next(), 10, 64)
		require.NoError(t, err)
		assert.Greater(t, next, prev)
		prev = next
	}
}

func TestCounterConcurrentUniqueness(t *testing.T) {
	c := NewCounter()

	const workers = 8
	const perWorker = 500

	var mu sync.Mutex
	var wg sync.WaitGroup
	all := make([]string, 0, workers*perWorker)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			local := make([]string, 0, perWorker)
			for j := 0; j < perWorker; j++ {
				local = append(local, c.Next())
			}
			mu.Lock()
			all = append(all, local...)
			mu.Unlock()
		}()
	}
	wg.Wait()

	sort.Strings(all)
	for i := 1; i < len(all); i++ {
		assert.NotEqual(t, all[i-1], all[i])
	}
}
