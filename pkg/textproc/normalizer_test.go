package textproc

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClean_StripsMarkup(t *testing.T) {
	n := New()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"color tag", "<color=#ff0000>Objection!</color>", "Objection!"},
		{"size tag", "<size=32>HOLD IT</size>", "HOLD IT"},
		{"bold italic", "<b>Maya</b> <i>whispers</i>", "Maya whispers"},
		{"material tag", "<material=flash>Take that!</material>", "Take that!"},
		{"quad tag", "before <quad material=1 size=20 x=0.1> after", "before after"},
		{"unknown tag", "text <wobble>here</wobble>", "text here"},
		{"unclosed tag degrades", "broken <color=#00ff00 text", "broken <color=#00ff00 text"},
		{"nested-ish", "<b><color=red>deep</color></b>", "deep"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, n.Clean(tt.in))
		})
	}
}

func TestClean_DecodesEscapes(t *testing.T) {
	n := New()

	assert.Equal(t, "Line one Line two", n.Clean(`Line one\nLine two`))
	assert.Equal(t, `He said "hi"`, n.Clean(`He said \"hi\"`))
	assert.Equal(t, "It's fine", n.Clean(`It\'s fine`))
	assert.Equal(t, `a\b`, n.Clean(`a\\b`))
	assert.Equal(t, "tabbed text", n.Clean("tabbed\\ttext"))
	// Unknown escape left alone
	assert.Equal(t, `a\zb`, n.Clean(`a\zb`))
	// Trailing backslash left alone
	assert.Equal(t, `end\`, n.Clean(`end\`))
}

func TestClean_DecodesEscapesToFixpoint(t *testing.T) {
	n := New()

	// `\\n` collapses to `\n`, which must then decode as well: the output
	// may never contain a pair that a later Clean would decode further.
	assert.Equal(t, "first second", n.Clean(`first\\nsecond`))
	assert.Equal(t, "a b", n.Clean(`a\\\\tb`))
	// `\\b` stops at `\b`: b is not an escapable character.
	assert.Equal(t, `a\b`, n.Clean(`a\\b`))
}

func TestClean_Replacements(t *testing.T) {
	n := New()
	n.SetReplacement("×", " by ")

	assert.Equal(t, "2 by 4", n.Clean("2×4"))

	// Hot-swap the table
	n.SetReplacement("×", "x")
	assert.Equal(t, "2x4", n.Clean("2×4"))

	n.RemoveReplacement("×")
	assert.Equal(t, "2×4", n.Clean("2×4"))
}

func TestClean_ReplacementOrdering(t *testing.T) {
	n := New()
	// Longer pattern must win over its substring
	n.LoadReplacements(map[string]string{
		"HP":  "health",
		"HP+": "health up",
	})
	assert.Equal(t, "health up", n.Clean("HP+"))
}

func TestClean_CollapsesWhitespace(t *testing.T) {
	n := New()

	assert.Equal(t, "a b c", n.Clean("  a\n\n  b\t\tc  "))
	assert.Equal(t, "", n.Clean(""))
	assert.Equal(t, "", n.Clean("   \t \n "))
	assert.Equal(t, "", n.Clean("<color=#fff></color>"))
}

func TestClean_Idempotent(t *testing.T) {
	n := New()
	n.SetReplacement("×", " by ")

	inputs := []string{
		"",
		"plain text",
		"<color=#ff0000>Tagged</color> with <b>markup</b>",
		`escape\nheavy\ttext \"quoted\"`,
		"<size=12><quad x=1>",
		"2×4   spaced\n\nout",
		"mixed <i>both</i>\\nkinds ×",
		`doubled first\\nsecond`,
		`stacked a\\\\tb and\\rc`,
		`lone backslash \ and pair \\`,
	}
	for _, in := range inputs {
		once := n.Clean(in)
		assert.Equal(t, once, n.Clean(once), "Clean must be idempotent for %q", in)
	}
}
