// Package announce implements the announcement pipeline: formatting,
// duplicate suppression, the repeat buffer, and delayed announcements.
package announce

import (
	"fmt"
	"sync"
)

// Category classifies an announcement. It drives formatting (speaker
// prefix) and repeat-buffer eligibility.
type Category string

const (
	CategoryDialogue      Category = "dialogue"
	CategoryNarrator      Category = "narrator"
	CategoryMenu          Category = "menu"
	CategoryMenuChoice    Category = "menu_choice"
	CategoryInvestigation Category = "investigation"
	CategoryEvidence      Category = "evidence"
	CategorySystemMessage Category = "system_message"
	CategoryTrial         Category = "trial"
	CategoryPsycheLock    Category = "psyche_lock"
	CategoryCredits       Category = "credits"
)

// repeatable categories feed the repeat buffer; everything else leaves it
// untouched.
var repeatable = map[Category]bool{
	CategoryDialogue: true,
	CategoryNarrator: true,
	CategoryCredits:  true,
}

// IsRepeatable reports whether the category feeds the repeat buffer.
func (c Category) IsRepeatable() bool {
	return repeatable[c]
}

var knownCategories = map[Category]bool{
	CategoryDialogue:      true,
	CategoryNarrator:      true,
	CategoryMenu:          true,
	CategoryMenuChoice:    true,
	CategoryInvestigation: true,
	CategoryEvidence:      true,
	CategorySystemMessage: true,
	CategoryTrial:         true,
	CategoryPsycheLock:    true,
	CategoryCredits:       true,
}

// ParseCategory validates a wire-format category string.
func ParseCategory(s string) (Category, error) {
	c := Category(s)
	if !knownCategories[c] {
		return "", fmt.Errorf("unknown category: %q", s)
	}
	return c, nil
}

// displayNames maps categories to host-registered display names.
// Used for logging only; core logic never reads it.
var (
	displayMu    sync.RWMutex
	displayNames = map[Category]string{}
)

// RegisterDisplayName sets a human-readable name for a category, used in
// log output.
func RegisterDisplayName(c Category, name string) {
	displayMu.Lock()
	defer displayMu.Unlock()
	displayNames[c] = name
}

// DisplayName returns the registered name, falling back to the raw value.
func (c Category) DisplayName() string {
	displayMu.RLock()
	defer displayMu.RUnlock()
	if name, ok := displayNames[c]; ok {
		return name
	}
	return string(c)
}
