package core

import (
	"context"
	"log/slog"
	"time"

	"uivox/pkg/audio"
	"uivox/pkg/mode"
	"uivox/pkg/tracker"
)

// staleAfter is how long without a client observation before the mode
// state is considered unusable.
const staleAfter = 10 * time.Second

// ModeWatchJob re-evaluates the arbiter every tick and plays the mode
// switch earcon on changes.
type ModeWatchJob struct {
	BaseJob
	arbiter *mode.Arbiter
	earcons *audio.Player
	last    string
}

func NewModeWatchJob(arbiter *mode.Arbiter, earcons *audio.Player) *ModeWatchJob {
	return &ModeWatchJob{
		BaseJob: NewBaseJob("ModeWatch"),
		arbiter: arbiter,
		earcons: earcons,
		last:    mode.Unknown,
	}
}

func (j *ModeWatchJob) ShouldFire(now time.Time) bool {
	return true
}

func (j *ModeWatchJob) Run(ctx context.Context, now time.Time) {
	current := j.arbiter.Classify()
	if current != j.last && j.last != mode.Unknown && current != mode.Unknown {
		if j.earcons != nil {
			j.earcons.Play(audio.CueModeSwitch)
		}
	}
	j.last = current
}

// StaleObservationJob warns when the observing client stops pushing flag
// updates. Logs once per outage.
type StaleObservationJob struct {
	BaseJob
	flags  *mode.FlagSet
	warned bool
}

func NewStaleObservationJob(flags *mode.FlagSet) *StaleObservationJob {
	return &StaleObservationJob{
		BaseJob: NewBaseJob("StaleObservation"),
		flags:   flags,
	}
}

func (j *StaleObservationJob) ShouldFire(now time.Time) bool {
	updated := j.flags.UpdatedAt()
	if updated.IsZero() {
		return false
	}
	stale := now.Sub(updated) > staleAfter
	if !stale {
		j.warned = false
	}
	return stale && !j.warned
}

func (j *StaleObservationJob) Run(ctx context.Context, now time.Time) {
	j.warned = true
	slog.Warn("Ticker: no client observation received recently",
		"last_update", j.flags.UpdatedAt(), "threshold", staleAfter)
}

// NewStatsLogJob periodically logs delivery counters.
func NewStatsLogJob(tr *tracker.Tracker, every time.Duration) *IntervalJob {
	return NewIntervalJob("StatsLog", every, func(ctx context.Context, now time.Time) {
		for channel, stats := range tr.Snapshot() {
			slog.Info("Stats",
				"channel", channel,
				"delivered", stats.Delivered,
				"suppressed", stats.Suppressed,
				"failed", stats.Failed,
				"repeated", stats.Repeated)
		}
	})
}
