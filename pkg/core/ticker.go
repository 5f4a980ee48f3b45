// Package core runs the central heartbeat driving periodic jobs.
package core

import (
	"context"
	"log/slog"
	"time"
)

// Job defines a scheduled task evaluated on every tick.
type Job interface {
	Name() string
	ShouldFire(now time.Time) bool
	Run(ctx context.Context, now time.Time)
}

// BaseJob carries the job name.
type BaseJob struct {
	name string
}

func NewBaseJob(name string) BaseJob {
	return BaseJob{name: name}
}

func (b *BaseJob) Name() string {
	return b.name
}

// Ticker manages the central heartbeat and scheduled jobs. Jobs run
// synchronously on the tick goroutine, so a tick is totally ordered:
// mode evaluation always sees the flag state the previous jobs saw.
type Ticker struct {
	interval time.Duration
	jobs     []Job
}

// NewTicker creates a ticker with the given heartbeat interval.
func NewTicker(interval time.Duration) *Ticker {
	if interval <= 0 {
		interval = 50 * time.Millisecond
	}
	return &Ticker{interval: interval}
}

// AddJob registers a job. Not safe after Start.
func (t *Ticker) AddJob(j Job) {
	t.jobs = append(t.jobs, j)
}

// Start runs the main loop. It blocks until context is cancelled.
func (t *Ticker) Start(ctx context.Context) {
	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	slog.Info("Ticker started", "interval", t.interval, "jobs", len(t.jobs))

	for {
		select {
		case <-ctx.Done():
			slog.Info("Ticker stopped")
			return
		case now := <-ticker.C:
			t.tick(ctx, now)
		}
	}
}

func (t *Ticker) tick(ctx context.Context, now time.Time) {
	for _, job := range t.jobs {
		if job.ShouldFire(now) {
			runJob(ctx, job, now)
		}
	}
}

// runJob contains a job panic so a single bad tick cannot take down the
// heartbeat.
func runJob(ctx context.Context, job Job, now time.Time) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("Ticker: job panicked", "job", job.Name(), "panic", r)
		}
	}()
	job.Run(ctx, now)
}

// IntervalJob fires a function at a fixed multiple of the heartbeat.
type IntervalJob struct {
	BaseJob
	interval time.Duration
	lastRun  time.Time
	action   func(ctx context.Context, now time.Time)
}

// NewIntervalJob creates a job firing every interval.
func NewIntervalJob(name string, interval time.Duration, action func(ctx context.Context, now time.Time)) *IntervalJob {
	return &IntervalJob{
		BaseJob:  NewBaseJob(name),
		interval: interval,
		action:   action,
	}
}

func (j *IntervalJob) ShouldFire(now time.Time) bool {
	return now.Sub(j.lastRun) >= j.interval
}

func (j *IntervalJob) Run(ctx context.Context, now time.Time) {
	j.lastRun = now
	j.action(ctx, now)
}
