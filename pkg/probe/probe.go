// Package probe runs startup health checks before the daemon goes live.
package probe

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// perCheckTimeout bounds each individual check.
const perCheckTimeout = 5 * time.Second

// CheckFunc performs one health check. Nil means the check passed.
type CheckFunc func(ctx context.Context) error

// Probe represents a single startup check.
type Probe struct {
	Name     string
	Check    CheckFunc
	Critical bool // If true, a failure here should prevent startup.
}

// Result holds the outcome of a single probe.
type Result struct {
	Probe    Probe
	Error    error
	Duration time.Duration
}

// Run executes the probes sequentially and returns their results. Each
// check gets its own timeout so one hung device cannot stall startup
// forever.
func Run(ctx context.Context, probes []Probe) []Result {
	results := make([]Result, len(probes))

	for i, p := range probes {
		start := time.Now()

		checkCtx, cancel := context.WithTimeout(ctx, perCheckTimeout)
		err := p.Check(checkCtx)
		cancel()

		results[i] = Result{
			Probe:    p,
			Error:    err,
			Duration: time.Since(start),
		}
	}

	return results
}

// AnalyzeResults logs a pass/fail summary and returns a joined error when
// any critical probe failed. Non-critical failures only log: the daemon
// still starts with a degraded sink rather than staying silent entirely.
func AnalyzeResults(results []Result) error {
	var criticalErrors []error

	slog.Info("Startup Checks Summary")

	for _, r := range results {
		status := "PASS"
		if r.Error != nil {
			status = "FAIL"
		}

		msg := fmt.Sprintf("[%s] %-20s (%v)", status, r.Probe.Name, r.Duration.Round(time.Millisecond))

		if r.Error != nil {
			slog.Error(msg, "error", r.Error)
			if r.Probe.Critical {
				criticalErrors = append(criticalErrors, fmt.Errorf("%s: %w", r.Probe.Name, r.Error))
			}
		} else {
			slog.Info(msg)
		}
	}

	if len(criticalErrors) > 0 {
		return errors.Join(criticalErrors...)
	}

	return nil
}
