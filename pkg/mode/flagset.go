// Package mode decides which UI context owns input and state announcements.
package mode

import (
	"sync"
	"time"
)

// FlagSet holds the most recent feature-active flags and state texts pushed
// by the observing client. Predicates read flags; handlers read texts.
type FlagSet struct {
	mu        sync.RWMutex
	flags     map[string]bool
	texts     map[string]string
	updatedAt time.Time
}

// NewFlagSet creates an empty flag set.
func NewFlagSet() *FlagSet {
	return &FlagSet{
		flags: make(map[string]bool),
		texts: make(map[string]string),
	}
}

// Apply replaces the stored flags and texts with a fresh observation.
// A nil map leaves that side untouched so partial updates are possible.
func (f *FlagSet) Apply(flags map[string]bool, texts map[string]string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if flags != nil {
		f.flags = make(map[string]bool, len(flags))
		for k, v := range flags {
			f.flags[k] = v
		}
	}
	if texts != nil {
		f.texts = make(map[string]string, len(texts))
		for k, v := range texts {
			f.texts[k] = v
		}
	}
	f.updatedAt = time.Now()
}

// Flag reports whether the named flag is currently set.
func (f *FlagSet) Flag(name string) bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.flags[name]
}

// Text returns the named state text, or "".
func (f *FlagSet) Text(name string) string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.texts[name]
}

// UpdatedAt returns when the last observation arrived. Zero time means no
// observation yet.
func (f *FlagSet) UpdatedAt() time.Time {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.updatedAt
}

// Snapshot returns copies of the current flags and texts.
func (f *FlagSet) Snapshot() (map[string]bool, map[string]string) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	flags := make(map[string]bool, len(f.flags))
	for k, v := range f.flags {
		flags[k] = v
	}
	texts := make(map[string]string, len(f.texts))
	for k, v := range f.texts {
		texts[k] = v
	}
	return flags, texts
}
