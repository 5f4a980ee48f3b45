// Package tracker counts announcement outcomes per channel.
package tracker

import (
	"sync"
	"sync/atomic"
)

// Tracker tracks delivery statistics per announcement channel.
type Tracker struct {
	mu    sync.RWMutex
	stats map[string]*ChannelStats
}

// ChannelStats holds counters for one channel.
// Fields are accessed atomically.
type ChannelStats struct {
	Delivered  int64
	Suppressed int64
	Failed     int64
	Repeated   int64
}

// New creates a new Tracker.
func New() *Tracker {
	return &Tracker{
		stats: make(map[string]*ChannelStats),
	}
}

// getStats returns the stats object for a channel, creating it if needed.
func (t *Tracker) getStats(channel string) *ChannelStats {
	t.mu.RLock()
	s, ok := t.stats[channel]
	t.mu.RUnlock()
	if ok {
		return s
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	// Double check
	if s, ok = t.stats[channel]; ok {
		return s
	}
	s = &ChannelStats{}
	t.stats[channel] = s
	return s
}

// TrackDelivered increments the successful delivery counter.
func (t *Tracker) TrackDelivered(channel string) {
	atomic.AddInt64(&t.getStats(channel).Delivered, 1)
}

// TrackSuppressed increments the duplicate suppression counter.
func (t *Tracker) TrackSuppressed(channel string) {
	atomic.AddInt64(&t.getStats(channel).Suppressed, 1)
}

// TrackFailed increments the sink failure counter.
func (t *Tracker) TrackFailed(channel string) {
	atomic.AddInt64(&t.getStats(channel).Failed, 1)
}

// TrackRepeated increments the explicit repeat counter.
func (t *Tracker) TrackRepeated(channel string) {
	atomic.AddInt64(&t.getStats(channel).Repeated, 1)
}

// Snapshot returns a copy of the current stats.
func (t *Tracker) Snapshot() map[string]ChannelStats {
	t.mu.RLock()
	defer t.mu.RUnlock()

	result := make(map[string]ChannelStats)
	for k, v := range t.stats {
		result[k] = ChannelStats{
			Delivered:  atomic.LoadInt64(&v.Delivered),
			Suppressed: atomic.LoadInt64(&v.Suppressed),
			Failed:     atomic.LoadInt64(&v.Failed),
			Repeated:   atomic.LoadInt64(&v.Repeated),
		}
	}
	return result
}
