package queue

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/interborough/transit/pkg/core"
)

func TestQueue_PushPop(t *testing.T) {
	q := New[int]()
	assert.True(t, q.Empty())

	assert.Equal(t, 3, q.Push(1, 2, 3))
	assert.Equal(t, 3, q.Len())

	v, ok := q.Pop()
	require.True(t, ok)
	assert.Equal(t, 1, v)
	assert.Equal(t, 2, q.Len())
}

func TestQueue_PopEmpty(t *testing.T) {
	q := New[core.TrainState]()
	v, ok := q.Pop()
	assert.False(t, ok)
	assert.Equal(t, core.TrainState{}, v)
}

func TestQueue_Bounded(t *testing.T) {
	q := NewBounded[int](3)

	assert.Equal(t, 2, q.Push(1, 2))
	assert.Equal(t, 1, q.Push(3, 4, 5))
	assert.Equal(t, 0, q.Push(6))

	assert.Equal(t, uint64(3), q.Dropped())
	assert.Equal(t, []int{1, 2, 3}, q.GetAndEmpty())

	assert.Equal(t, 1, q.Push(7), "room again after draining")
}

func TestQueue_Drain(t *testing.T) {
	q := New[int]()
	q.Push(1, 2, 3, 4, 5)

	assert.Equal(t, []int{1, 2}, q.Drain(2))
	assert.Equal(t, 3, q.Len())
	assert.Equal(t, []int{3, 4, 5}, q.Drain(10))
	assert.True(t, q.Empty())
	assert.Empty(t, q.Drain(0))
}

func TestQueue_GetAndEmpty(t *testing.T) {
	q := New[string]()
	q.Push("a", "b")

	items := q.GetAndEmpty()
	assert.Equal(t, []string{"a", "b"}, items)
	assert.True(t, q.Empty())

	// the returned slice is not shared with later pushes
	q.Push("c")
	assert.Equal(t, []string{"a", "b"}, items)
}

func TestQueue_Concurrent(t *testing.T) {
	q := New[core.KeyEvent]()
	var wg sync.WaitGroup

	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				q.Push(core.KeyEvent{Key: "p"})
			}
		}()
	}

	var drained int
	var mu sync.Mutex
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				n := len(q.Drain(7))
				mu.Lock()
				drained += n
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1000, drained+q.Len())
}
