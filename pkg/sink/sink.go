// Package sink defines delivery targets for formatted announcements.
package sink

import "log/slog"

// Sink delivers one formatted announcement to an external device.
// Deliver may block briefly and may fail; callers treat failures as
// transient, log them, and move on.
type Sink interface {
	Name() string
	Deliver(text string) error
}

// VoiceTuner is implemented by speech sinks whose voice and rate can be
// changed while the daemon runs.
type VoiceTuner interface {
	SetVoiceID(id string)
	SetRate(rate int)
}

// Func adapts a plain function to the Sink interface.
type Func struct {
	SinkName string
	Fn       func(text string) error
}

func (f Func) Name() string { return f.SinkName }

func (f Func) Deliver(text string) error { return f.Fn(text) }

// Stub is a sink that only logs. Used when no real speech engine is
// available and in tests.
type Stub struct {
	name string
}

// NewStub creates a logging-only sink.
func NewStub(name string) *Stub {
	return &Stub{name: name}
}

func (s *Stub) Name() string { return s.name }

func (s *Stub) Deliver(text string) error {
	slog.Info("Sink stub: delivering", "sink", s.name, "text", text)
	return nil
}
