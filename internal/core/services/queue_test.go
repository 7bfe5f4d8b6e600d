package services

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func drain[T any](t *testing.T, q *Queue[T]) []T {
	t.Helper()
	var out []T
	timeout := time.After(2 * time.Second)
	for {
		select {
		case v, ok := <-q.Out():
			if !ok {
				return out
			}
			out = append(out, v)
		case <-timeout:
			t.Fatal("queue was not closed")
			return out
		}
	}
}

func TestQueue_PushNeverBlocks(t *testing.T) {
	q := NewQueue[int]()

	done := make(chan struct{})
	go func() {
		for i := 0; i < 10000; i++ {
			q.Push(i)
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("push blocked without a receiver")
	}

	q.Close()
	items := drain(t, q)
	require.Len(t, items, 10000)
	for i, v := range items {
		assert.Equal(t, i, v)
	}
}

func TestQueue_CloseDrainsThenCloses(t *testing.T) {
	q := NewQueue[string]()
	q.Push("a")
	q.Push("b")
	q.Close()

	assert.False(t, q.Push("c"))
	assert.Equal(t, []string{"a", "b"}, drain(t, q))
}

func TestQueue_CloseIsIdempotent(t *testing.T) {
	q := NewQueue[int]()
	q.Close()
	q.Close()

	assert.Empty(t, drain(t, q))
}

func TestQueue_ConcurrentProducers(t *testing.T) {
	q := NewQueue[int]()

	var wg sync.WaitGroup
	for p := 0; p < 8; p++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				q.Push(i)
			}
		}()
	}
	wg.Wait()
	q.Close()

	assert.Len(t, drain(t, q), 800)
}
