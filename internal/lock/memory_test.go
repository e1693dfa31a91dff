package lock

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemory_ExclusivePerKey(t *testing.T) {
	ctx := context.Background()
	l := NewMemory()

	release, ok, err := l.TryLock(ctx, "a")
	require.NoError(t, err)
	require.True(t, ok)

	_, ok, _ = l.TryLock(ctx, "a")
	assert.False(t, ok)

	releaseB, ok, _ := l.TryLock(ctx, "b")
	assert.True(t, ok)
	releaseB()

	release()
	release() // second call is a no-op

	_, ok, _ = l.TryLock(ctx, "a")
	assert.True(t, ok)
}

func TestMemory_ConcurrentSingleWinner(t *testing.T) {
	l := NewMemory()
	var wins int32
	var wg sync.WaitGroup
	start := make(chan struct{})

	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			if _, ok, _ := l.TryLock(context.Background(), "s"); ok {
				atomic.AddInt32(&wins, 1)
			}
		}()
	}
	close(start)
	wg.Wait()

	assert.Equal(t, int32(1), wins)
}
