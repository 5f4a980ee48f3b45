package mode

import (
	"fmt"
	"log/slog"
	"sync"

	"uivox/pkg/announce"
)

// Input keys understood by the standard handlers. The observing client
// sends these through POST /api/input.
const (
	KeyRepeat = "repeat"
	KeyWhere  = "where"
)

// StateHandler is the standard handler for a flag-driven mode: it
// announces the mode's state text and routes the common keys.
type StateHandler struct {
	name     string
	flags    *FlagSet
	ch       *announce.Channel
	textKey  string
	category announce.Category
}

// NewStateHandler creates a handler announcing on the given channel.
func NewStateHandler(name string, flags *FlagSet, ch *announce.Channel, textKey string, category announce.Category) *StateHandler {
	return &StateHandler{
		name:     name,
		flags:    flags,
		ch:       ch,
		textKey:  textKey,
		category: category,
	}
}

func (h *StateHandler) OnInput(key string) {
	switch key {
	case KeyRepeat:
		h.ch.RepeatLast()
	case KeyWhere:
		h.AnnounceState()
	default:
		slog.Debug("Mode: unhandled key", "mode", h.name, "key", key)
	}
}

func (h *StateHandler) AnnounceState() {
	text := h.flags.Text(h.textKey)
	if text == "" {
		text = h.name
	}
	h.ch.Announce(text, h.category)
}

// Fallback handles the no-match case. When a coarse mode hint is known it
// announces that; otherwise it reports that the state is unavailable.
type Fallback struct {
	mu     sync.Mutex
	coarse string
	ch     *announce.Channel
}

// NewFallback creates a fallback handler announcing on the given channel.
func NewFallback(ch *announce.Channel) *Fallback {
	return &Fallback{ch: ch}
}

// SetCoarse records a coarse mode hint, e.g. from a title-screen
// observation. Empty clears it.
func (f *Fallback) SetCoarse(mode string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.coarse = mode
}

func (f *Fallback) OnInput(key string) {
	if key == KeyRepeat {
		f.ch.RepeatLast()
		return
	}
	slog.Debug("Mode: input with no active mode", "key", key)
}

func (f *Fallback) AnnounceState() {
	f.mu.Lock()
	coarse := f.coarse
	f.mu.Unlock()
	if coarse != "" {
		f.ch.Announce("Probably in "+coarse, announce.CategorySystemMessage)
		return
	}
	f.ch.Announce("State unavailable", announce.CategorySystemMessage)
}

// builtin maps a configurable mode name to the flag that activates it,
// the state text it announces, and the announcement category.
var builtin = map[string]struct {
	flag     string
	textKey  string
	category announce.Category
}{
	"psyche_lock":   {"psyche_lock_active", "psyche_lock_state", announce.CategorySystemMessage},
	"trial":         {"in_trial", "trial_state", announce.CategoryTrial},
	"evidence":      {"evidence_open", "evidence_detail", announce.CategoryEvidence},
	"investigation": {"investigating", "investigation_state", announce.CategoryInvestigation},
	"menu":          {"menu_open", "menu_selection", announce.CategoryMenu},
	"dialogue":      {"dialogue_active", "dialogue_text", announce.CategoryDialogue},
}

// FromConfig builds an arbiter from a configured priority list of builtin
// mode names. The list order becomes the evaluation order.
func FromConfig(names []string, flags *FlagSet, ch *announce.Channel, fallback Handler) (*Arbiter, error) {
	predicates := make([]Predicate, 0, len(names))
	for _, name := range names {
		spec, ok := builtin[name]
		if !ok {
			return nil, fmt.Errorf("unknown mode %q in priority list", name)
		}
		flagName := spec.flag
		predicates = append(predicates, Predicate{
			Name:    name,
			Check:   func() bool { return flags.Flag(flagName) },
			Handler: NewStateHandler(name, flags, ch, spec.textKey, spec.category),
		})
	}
	return NewArbiter(fallback, predicates...), nil
}
