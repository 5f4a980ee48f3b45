// Package outqueue paces bursts of announcements into a slow external sink.
package outqueue

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"uivox/pkg/sink"
)

// DefaultDrainInterval is the pause between drained items.
const DefaultDrainInterval = 25 * time.Millisecond

// Queue is an unbounded FIFO drained one item per interval into its sink.
// Producer bursts queue up instead of overwriting each other; a clipboard
// consumer gets time to read each item. There is deliberately no length
// cap: dropping assistive output is worse than growing memory under a
// stuck sink.
type Queue struct {
	mu       sync.Mutex
	items    []string
	sink     sink.Sink
	interval time.Duration
}

// New creates a queue feeding the given sink. interval <= 0 selects the
// default cadence.
func New(s sink.Sink, interval time.Duration) *Queue {
	if interval <= 0 {
		interval = DefaultDrainInterval
	}
	return &Queue{
		sink:     s,
		interval: interval,
	}
}

// Enqueue appends one item.
func (q *Queue) Enqueue(text string) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.items = append(q.items, text)
	slog.Debug("OutputQueue: enqueued", "queue_len", len(q.items))
}

// Dequeue removes and returns the head item.
func (q *Queue) Dequeue() (string, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.items) == 0 {
		return "", false
	}
	head := q.items[0]
	q.items = q.items[1:]
	return head, true
}

// Len returns the number of pending items.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// SetDrainInterval changes the drain cadence. The running drain loop
// picks the new interval up on its next tick. interval <= 0 selects the
// default cadence.
func (q *Queue) SetDrainInterval(interval time.Duration) {
	if interval <= 0 {
		interval = DefaultDrainInterval
	}
	q.mu.Lock()
	q.interval = interval
	q.mu.Unlock()
}

func (q *Queue) drainInterval() time.Duration {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.interval
}

// Clear discards all pending items. Items already handed to the sink are
// not affected.
func (q *Queue) Clear() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.items) > 0 {
		slog.Debug("OutputQueue: cleared", "dropped", len(q.items))
	}
	q.items = nil
}

// Start drains the queue until the context is canceled: one item per
// interval while non-empty, polling at the same cadence while idle. Sink
// failures are logged and the loop moves on; the next item is the retry.
func (q *Queue) Start(ctx context.Context) {
	interval := q.drainInterval()
	slog.Info("OutputQueue: drain loop started", "interval", interval, "sink", q.sink.Name())

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("OutputQueue: drain loop stopped")
			return
		case <-ticker.C:
			if d := q.drainInterval(); d != interval {
				interval = d
				ticker.Reset(interval)
			}
			text, ok := q.Dequeue()
			if !ok {
				continue
			}
			if err := q.sink.Deliver(text); err != nil {
				slog.Warn("OutputQueue: sink delivery failed", "sink", q.sink.Name(), "error", err)
			}
		}
	}
}

// Sink returns a sink.Sink view of the queue so an announcement channel
// can deliver into it.
func (q *Queue) Sink() sink.Sink {
	return sink.Func{
		SinkName: "queue:" + q.sink.Name(),
		Fn: func(text string) error {
			q.Enqueue(text)
			return nil
		},
	}
}
