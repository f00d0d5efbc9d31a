package keylock

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMap_SerializesSameKey(t *testing.T) {
	m := New()

	var inside, maxInside int32
	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := m.Lock("alice|1")
			defer unlock()

			n := atomic.AddInt32(&inside, 1)
			for {
				cur := atomic.LoadInt32(&maxInside)
				if n <= cur || atomic.CompareAndSwapInt32(&maxInside, cur, n) {
					break
				}
			}
			time.Sleep(time.Millisecond)
			atomic.AddInt32(&inside, -1)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), maxInside)
	assert.Zero(t, m.Len())
}

func TestMap_IndependentKeys(t *testing.T) {
	m := New()

	unlockA := m.Lock("alice|1")
	defer unlockA()

	done := make(chan struct{})
	go func() {
		unlock := m.Lock("bob|1")
		unlock()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("lock on a different key blocked")
	}
	require.Equal(t, 1, m.Len())
}

func TestMap_UnlockIsIdempotent(t *testing.T) {
	m := New()
	unlock := m.Lock("k")
	unlock()
	unlock()

	assert.Zero(t, m.Len())
	m.Lock("k")()
}
