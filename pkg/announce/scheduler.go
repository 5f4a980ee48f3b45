package announce

import (
	"log/slog"
	"sync"
	"time"
)

// Scheduler is a single-slot, cancelable, delayed announcement. Scheduling
// while a task is pending silently supersedes it: the latest schedule wins,
// and a stale timer firing after supersession is a no-op thanks to the
// generation check.
type Scheduler struct {
	mu    sync.Mutex
	gen   uint64
	timer *time.Timer
	ch    *Channel
}

// NewScheduler creates a scheduler delivering through the given channel.
func NewScheduler(ch *Channel) *Scheduler {
	return &Scheduler{ch: ch}
}

// Schedule arranges for produce() to run after delay and its result to be
// announced. produce runs at fire time, not schedule time, so text that
// does not exist yet (an unpopulated UI field) can still be scheduled; an
// empty text result delivers nothing. The speaker return goes through the
// channel's usual formatting, so only dialogue gets a speaker prefix.
func (s *Scheduler) Schedule(delay time.Duration, produce func() (speaker, text string), category Category) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.gen++
	gen := s.gen

	if s.timer != nil {
		s.timer.Stop()
		slog.Debug("Scheduler: superseding pending announcement", "generation", gen)
	}

	s.timer = time.AfterFunc(delay, func() {
		s.fire(gen, produce, category)
	})
}

// Cancel drops any pending announcement without firing it.
func (s *Scheduler) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.gen++
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}

func (s *Scheduler) fire(gen uint64, produce func() (string, string), category Category) {
	s.mu.Lock()
	if gen != s.gen {
		// Superseded or canceled while the timer was in flight.
		s.mu.Unlock()
		return
	}
	s.timer = nil
	s.mu.Unlock()

	speaker, text := produce()
	if text == "" {
		return
	}
	s.ch.Output(speaker, text, category)
}
