// Package normalize canonicalizes free text so stored values and user queries compare the same way.
package normalize

import (
	"strings"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// combiningMarks is the Combining Diacritical Marks block (U+0300..U+036F).
var combiningMarks = runes.Predicate(func(r rune) bool {
	return r >= 0x0300 && r <= 0x036f
})

// apostrophes folds the typographic apostrophe variants onto a single quote.
var apostrophes = strings.NewReplacer(
	"’", "'", // right single quotation mark
	"‘", "'", // left single quotation mark
	"ʼ", "'", // modifier letter apostrophe
	"´", "'", // acute accent
	"`", "'",
)

// Text returns the canonical form of s: trimmed, lower-cased, accent-stripped,
// apostrophes unified and internal whitespace collapsed to single spaces.
// Text is idempotent and never fails; empty input yields "".
func Text(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return ""
	}

	// Chains carry buffers, so each call builds its own.
	t := transform.Chain(norm.NFD, runes.Remove(combiningMarks))
	if stripped, _, err := transform.String(t, s); err == nil {
		s = stripped
	}

	s = apostrophes.Replace(s)
	return strings.Join(strings.Fields(s), " ")
}

// Digits keeps only the ASCII digits of s.
func Digits(s string) string {
	return strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, s)
}

// Phone is Digits with an international "00" prefix dropped.
func Phone(s string) string {
	return strings.TrimPrefix(Digits(s), "00")
}

// EscapeLike escapes the LIKE wildcards in s using backslash as the escape character.
func EscapeLike(s string) string {
	return likeEscaper.Replace(s)
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
