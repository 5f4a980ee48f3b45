package outqueue

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"uivox/pkg/sink"
)

type collectSink struct {
	mu    sync.Mutex
	got   []string
	fail  bool
	calls int
}

func (c *collectSink) Name() string { return "collect" }

func (c *collectSink) Deliver(text string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	if c.fail {
		return assert.AnError
	}
	c.got = append(c.got, text)
	return nil
}

func (c *collectSink) snapshot() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, len(c.got))
	copy(out, c.got)
	return out
}

func TestQueue_FIFO(t *testing.T) {
	q := New(sink.NewStub("test"), 0)
	q.Enqueue("a")
	q.Enqueue("b")
	q.Enqueue("c")
	assert.Equal(t, 3, q.Len())

	for _, want := range []string{"a", "b", "c"} {
		got, ok := q.Dequeue()
		require.True(t, ok)
		assert.Equal(t, want, got)
	}
	_, ok := q.Dequeue()
	assert.False(t, ok)
}

func TestQueue_Clear(t *testing.T) {
	q := New(sink.NewStub("test"), 0)
	q.Enqueue("a")
	q.Enqueue("b")
	q.Clear()
	assert.Equal(t, 0, q.Len())
	_, ok := q.Dequeue()
	assert.False(t, ok)

	// Enqueue after clear works normally.
	q.Enqueue("c")
	got, ok := q.Dequeue()
	require.True(t, ok)
	assert.Equal(t, "c", got)
}

func TestQueue_RunDrainsInOrder(t *testing.T) {
	target := &collectSink{}
	q := New(target, time.Millisecond)
	q.Enqueue("one")
	q.Enqueue("two")
	q.Enqueue("three")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go q.Start(ctx)

	require.Eventually(t, func() bool {
		return len(target.snapshot()) == 3
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, []string{"one", "two", "three"}, target.snapshot())
	assert.Equal(t, 0, q.Len())
}

func TestQueue_RunSurvivesSinkFailure(t *testing.T) {
	target := &collectSink{fail: true}
	q := New(target, time.Millisecond)
	q.Enqueue("lost")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go q.Start(ctx)

	require.Eventually(t, func() bool {
		target.mu.Lock()
		defer target.mu.Unlock()
		return target.calls >= 1
	}, time.Second, 5*time.Millisecond)

	// Failed item is gone, loop keeps going for the next one.
	target.mu.Lock()
	target.fail = false
	target.mu.Unlock()
	q.Enqueue("kept")

	require.Eventually(t, func() bool {
		got := target.snapshot()
		return len(got) == 1 && got[0] == "kept"
	}, time.Second, 5*time.Millisecond)
}

func TestQueue_SetDrainInterval(t *testing.T) {
	target := &collectSink{}
	q := New(target, 10*time.Millisecond)

	q.SetDrainInterval(3 * time.Millisecond)
	assert.Equal(t, 3*time.Millisecond, q.drainInterval())

	q.SetDrainInterval(0)
	assert.Equal(t, DefaultDrainInterval, q.drainInterval())
}

func TestQueue_RunPicksUpNewInterval(t *testing.T) {
	target := &collectSink{}
	q := New(target, 5*time.Millisecond)
	q.Enqueue("before")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go q.Start(ctx)

	require.Eventually(t, func() bool {
		return len(target.snapshot()) == 1
	}, time.Second, time.Millisecond)

	// Change takes effect on the next tick of the running loop.
	q.SetDrainInterval(time.Millisecond)
	q.Enqueue("after")
	require.Eventually(t, func() bool {
		return len(target.snapshot()) == 2
	}, time.Second, time.Millisecond)
	assert.Equal(t, []string{"before", "after"}, target.snapshot())
}

func TestQueue_SinkAdapterEnqueues(t *testing.T) {
	q := New(sink.NewStub("test"), 0)
	s := q.Sink()
	require.NoError(t, s.Deliver("via adapter"))
	got, ok := q.Dequeue()
	require.True(t, ok)
	assert.Equal(t, "via adapter", got)
}
