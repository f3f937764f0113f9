package table

import (
	"strings"
	"unicode"
)

// Rule is a single text cleanup step
type Rule func(string) string

// SpaceRules clean cells of every column
var SpaceRules = []Rule{
	CleanSpace,
}

// NameRules clean name-like cells such as player names
var NameRules = []Rule{
	CleanSpace,
	SplitCaseTransitions,
	TrimStrayPunctuation,
}

// strayPunctuation may trail or lead a name cell
const strayPunctuation = ".,*;:†#"

// NormalizeText applies NameRules. It is idempotent.
func NormalizeText(token string) string {
	return Apply(token, NameRules)
}

// Apply runs rules in order
func Apply(token string, rules []Rule) string {
	for _, rule := range rules {
		token = rule(token)
	}
	return token
}

// CleanSpace drops zero-width and control characters and collapses every
// run of whitespace (including tabs, newlines and non-breaking spaces)
// into a single space
func CleanSpace(token string) string {
	var b strings.Builder
	b.Grow(len(token))
	for _, r := range token {
		switch {
		case isZeroWidth(r):
			continue
		case unicode.IsSpace(r), unicode.IsControl(r):
			b.WriteRune(' ')
		default:
			b.WriteRune(r)
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// SplitCaseTransitions inserts a space between a lower-case letter and the
// upper-case letter that follows it ("JohnSmith" -> "John Smith")
func SplitCaseTransitions(token string) string {
	var b strings.Builder
	b.Grow(len(token) + 4)
	prev := rune(0)
	for _, r := range token {
		if unicode.IsLower(prev) && unicode.IsUpper(r) {
			b.WriteRune(' ')
		}
		b.WriteRune(r)
		prev = r
	}
	return b.String()
}

// TrimStrayPunctuation removes punctuation and spaces from both ends
func TrimStrayPunctuation(token string) string {
	return strings.TrimFunc(token, func(r rune) bool {
		return unicode.IsSpace(r) || strings.ContainsRune(strayPunctuation, r)
	})
}

func isZeroWidth(r rune) bool {
	switch r {
	case '\u200b', '\u200c', '\u200d', '\u2060', '\ufeff':
		return true
	}
	return false
}
