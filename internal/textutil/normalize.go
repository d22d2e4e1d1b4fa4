package textutil

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
	"golang.org/x/text/width"
)

// bracketPattern matches bracketed annotations commonly appended to exported
// titles: translation notes, volume markers, scanlator tags.
var bracketPattern = regexp.MustCompile(`\([^)]*\)|\[[^\]]*\]|\{[^}]*\}|【[^】]*】|（[^）]*）`)

// whitespacePattern collapses runs of whitespace left behind by stripping.
var whitespacePattern = regexp.MustCompile(`\s+`)

// NormalizeTitle canonicalizes a free-text title for comparison. It folds
// Unicode width and compatibility forms, lowercases, strips bracketed
// annotations and punctuation, and collapses whitespace. Letters and digits
// from any script are retained so non-Latin titles are not corrupted.
//
// The function is total: input that normalizes to nothing falls back to the
// trimmed lowercase original.
func NormalizeTitle(title string) string {
	trimmed := strings.TrimSpace(title)
	if trimmed == "" {
		return ""
	}

	folded := width.Fold.String(trimmed)
	folded = norm.NFKC.String(folded)
	lowered := strings.ToLower(folded)

	stripped := bracketPattern.ReplaceAllString(lowered, " ")

	var b strings.Builder
	b.Grow(len(stripped))
	for _, r := range stripped {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
		case unicode.IsSpace(r):
			b.WriteRune(' ')
		default:
			// Punctuation and symbols separate tokens rather than joining them.
			b.WriteRune(' ')
		}
	}

	out := strings.TrimSpace(whitespacePattern.ReplaceAllString(b.String(), " "))
	if out == "" {
		return strings.ToLower(trimmed)
	}
	return out
}
