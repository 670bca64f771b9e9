package idx_test

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/vaughan-dsouza/expensely/internal/idx"
)

func TestNewIsValid(t *testing.T) {
	id := idx.New()

	require.Len(t, id, 26)
	require.True(t, idx.Valid(id))
}

func TestValid(t *testing.T) {
	require.False(t, idx.Valid(""))
	require.False(t, idx.Valid("   "))
	require.False(t, idx.Valid("not-a-ulid"))
	require.True(t, idx.Valid("01HQ7T3Z1MZ0JQ3M6MZQ1FQ3ZV"))
}

func TestOrdering(t *testing.T) {
	a := idx.NewAt(time.Unix(1, 0).UTC())
	b := idx.NewAt(time.Unix(2, 0).UTC())

	require.Less(t, a, b)
}

func TestConcurrentUnique(t *testing.T) {
	const n = 200

	var (
		wg   sync.WaitGroup
		lock sync.Mutex
		seen = make(map[string]struct{}, n)
	)
	for range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			id := idx.New()
			lock.Lock()
			seen[id] = struct{}{}
			lock.Unlock()
		}()
	}
	wg.Wait()

	require.Len(t, seen, n)
}
