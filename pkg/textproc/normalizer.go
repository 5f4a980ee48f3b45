// Package textproc cleans raw UI text into speakable prose.
package textproc

import (
	"regexp"
	"sort"
	"strings"
	"sync"
)

// Inline markup patterns stripped from raw text, in order. The catch-all
// runs last so unknown or malformed tags degrade to "tag removed".
var tagPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)</?color(=[^<>]*)?>`),
	regexp.MustCompile(`(?i)</?size(=[^<>]*)?>`),
	regexp.MustCompile(`(?i)</?b>`),
	regexp.MustCompile(`(?i)</?i>`),
	regexp.MustCompile(`(?i)</?material(=[^<>]*)?>`),
	regexp.MustCompile(`(?i)<quad[^<>]*>`),
	regexp.MustCompile(`<[^<>]*>`),
}

var whitespaceRe = regexp.MustCompile(`\s+`)

// Normalizer cleans markup, escape sequences, and registered substring
// replacements out of raw text. Safe for concurrent use.
type Normalizer struct {
	mu           sync.RWMutex
	replacements map[string]string
	ordered      []string // patterns sorted longest-first, rebuilt on change
}

// New creates a Normalizer with an empty replacement table.
func New() *Normalizer {
	return &Normalizer{
		replacements: make(map[string]string),
	}
}

// Clean normalizes raw text for assistive output. It is idempotent and
// never fails: malformed markup is stripped best-effort.
// Steps, in order: markup stripping, escape decoding, literal replacements,
// whitespace collapsing.
func (n *Normalizer) Clean(raw string) string {
	if strings.TrimSpace(raw) == "" {
		return ""
	}

	s := raw
	for _, re := range tagPatterns {
		s = re.ReplaceAllString(s, "")
	}

	s = decodeEscapes(s)

	n.mu.RLock()
	for _, pattern := range n.ordered {
		s = strings.ReplaceAll(s, pattern, n.replacements[pattern])
	}
	n.mu.RUnlock()

	s = whitespaceRe.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// SetReplacement registers a literal substring replacement. An existing
// entry for the same pattern is overwritten. Takes effect on the next Clean
// call, including re-cleans of repeated announcements.
func (n *Normalizer) SetReplacement(pattern, replacement string) {
	if pattern == "" {
		return
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	n.replacements[pattern] = replacement
	n.rebuildOrder()
}

// RemoveReplacement drops a replacement entry if present.
func (n *Normalizer) RemoveReplacement(pattern string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	delete(n.replacements, pattern)
	n.rebuildOrder()
}

// LoadReplacements replaces the whole table, e.g. from the store at startup.
func (n *Normalizer) LoadReplacements(table map[string]string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.replacements = make(map[string]string, len(table))
	for k, v := range table {
		if k == "" {
			continue
		}
		n.replacements[k] = v
	}
	n.rebuildOrder()
}

// Replacements returns a copy of the current table.
func (n *Normalizer) Replacements() map[string]string {
	n.mu.RLock()
	defer n.mu.RUnlock()
	out := make(map[string]string, len(n.replacements))
	for k, v := range n.replacements {
		out[k] = v
	}
	return out
}

// rebuildOrder sorts patterns longest-first so a longer pattern is never
// shadowed by one of its substrings. Caller holds the write lock.
func (n *Normalizer) rebuildOrder() {
	n.ordered = n.ordered[:0]
	for k := range n.replacements {
		n.ordered = append(n.ordered, k)
	}
	sort.Slice(n.ordered, func(i, j int) bool {
		if len(n.ordered[i]) != len(n.ordered[j]) {
			return len(n.ordered[i]) > len(n.ordered[j])
		}
		return n.ordered[i] < n.ordered[j]
	})
}

// decodeEscapes converts backslash escape sequences into their literal
// characters, repeating until the text is stable. A single pass is not
// enough: `\\` collapses to `\`, and when the next character is escapable
// the collapsed pair would decode again on a later Clean. Each changing
// pass strictly shortens the text, so the loop terminates. Unknown escapes
// are left alone.
func decodeEscapes(s string) string {
	for {
		decoded := decodePass(s)
		if decoded == s {
			return decoded
		}
		s = decoded
	}
}

func decodePass(s string) string {
	if !strings.ContainsRune(s, '\\') {
		return s
	}

	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '\\' || i+1 >= len(s) {
			b.WriteByte(c)
			continue
		}
		switch s[i+1] {
		case 'n':
			b.WriteByte('\n')
		case 'r':
			b.WriteByte('\r')
		case 't':
			b.WriteByte('\t')
		case '"':
			b.WriteByte('"')
		case '\'':
			b.WriteByte('\'')
		case '\\':
			b.WriteByte('\\')
		default:
			b.WriteByte(c)
			continue
		}
		i++
	}
	return b.String()
}
