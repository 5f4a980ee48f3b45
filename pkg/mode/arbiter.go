package mode

import (
	"log/slog"
	"sync"
)

// Unknown is reported when no predicate matches.
const Unknown = "unknown"

// Handler owns input routing and state announcements while its mode is
// active.
type Handler interface {
	OnInput(key string)
	AnnounceState()
}

// Predicate pairs a mode name with its activity check. Checks read shared
// observation state and must be cheap; they run every tick.
type Predicate struct {
	Name    string
	Check   func() bool
	Handler Handler
}

// Arbiter evaluates an ordered predicate list and routes to the first
// match. The list is fixed at startup; order is priority, so overlay modes
// (a lock puzzle over a trial, a menu over dialogue) must be registered
// before the modes they cover.
type Arbiter struct {
	mu         sync.Mutex
	predicates []Predicate
	fallback   Handler
	active     string
}

// NewArbiter creates an arbiter over the given predicates in priority
// order. fallback handles the no-match case and must not be nil.
func NewArbiter(fallback Handler, predicates ...Predicate) *Arbiter {
	return &Arbiter{
		predicates: predicates,
		fallback:   fallback,
		active:     Unknown,
	}
}

// Evaluate runs the predicate list and returns the active mode name and
// its handler. No match returns (Unknown, fallback). A predicate that
// panics is treated as inactive for this pass; the rest still run.
func (a *Arbiter) Evaluate() (string, Handler) {
	a.mu.Lock()
	defer a.mu.Unlock()
	for _, p := range a.predicates {
		if safeCheck(p) {
			if a.active != p.Name {
				slog.Debug("Mode: switched", "from", a.active, "to", p.Name)
			}
			a.active = p.Name
			return p.Name, p.Handler
		}
	}
	if a.active != Unknown {
		slog.Debug("Mode: switched", "from", a.active, "to", Unknown)
	}
	a.active = Unknown
	return Unknown, a.fallback
}

// Classify re-evaluates and returns the active mode name.
func (a *Arbiter) Classify() string {
	name, _ := a.Evaluate()
	return name
}

// Active returns the mode name from the last evaluation without
// re-running the predicates.
func (a *Arbiter) Active() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.active
}

// OnInput routes a key press to the currently active handler.
func (a *Arbiter) OnInput(key string) {
	name, h := a.Evaluate()
	slog.Debug("Mode: input", "mode", name, "key", key)
	h.OnInput(key)
}

// AnnounceState asks the active handler to describe the current state.
func (a *Arbiter) AnnounceState() {
	_, h := a.Evaluate()
	h.AnnounceState()
}

// safeCheck runs one predicate check, converting a panic into "inactive".
func safeCheck(p Predicate) (active bool) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("Mode: predicate panicked", "mode", p.Name, "panic", r)
			active = false
		}
	}()
	if p.Check == nil {
		return false
	}
	return p.Check()
}
