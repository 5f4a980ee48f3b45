package store

import "context"

// StateStore persists small key/value settings (speech rate, volume, etc.).
type StateStore interface {
	GetState(ctx context.Context, key string) (string, bool)
	SetState(ctx context.Context, key, val string) error
	DeleteState(ctx context.Context, key string) error
}

// ReplacementStore persists the text replacement table so locale-specific
// substitutions survive restarts.
type ReplacementStore interface {
	Replacements(ctx context.Context) (map[string]string, error)
	SaveReplacement(ctx context.Context, pattern, replacement string) error
	DeleteReplacement(ctx context.Context, pattern string) error
}

// Store is the full persistence surface.
type Store interface {
	StateStore
	ReplacementStore
	Close() error
}
