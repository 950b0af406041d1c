// Package match resolves orphaned citation items against a library index
// using a tiered identity-matching strategy.
package match

import (
	"strings"
	"unicode"
)

// doiPrefixes are stripped from DOI values before comparison. Citation
// payloads carry DOIs both bare and as resolver URLs.
var doiPrefixes = []string{
	"https://doi.org/",
	"http://doi.org/",
	"https://dx.doi.org/",
	"http://dx.doi.org/",
	"doi.org/",
	"doi:",
}

// NormalizeDOI canonicalizes a DOI for exact lookup: resolver prefixes
// stripped, upper-cased, trailing punctuation removed. Empty input or
// anything that does not look like a DOI normalizes to "".
func NormalizeDOI(doi string) string {
	s := strings.TrimSpace(doi)
	lower := strings.ToLower(s)
	for _, p := range doiPrefixes {
		if strings.HasPrefix(lower, p) {
			s = s[len(p):]
			break
		}
	}
	s = strings.ToUpper(strings.TrimSpace(s))
	s = strings.TrimRight(s, ".,;:")
	if !strings.HasPrefix(s, "10.") {
		return ""
	}
	return s
}

// NormalizeISBN reduces an ISBN to digits plus the X check character.
func NormalizeISBN(isbn string) string {
	var b strings.Builder
	for _, r := range strings.ToUpper(isbn) {
		if (r >= '0' && r <= '9') || r == 'X' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// normalizeTokens lowercases a string, strips punctuation and splits it
// into whitespace-separated tokens for fuzzy comparison.
func normalizeTokens(s string) []string {
	mapped := strings.Map(func(r rune) rune {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			return unicode.ToLower(r)
		default:
			return ' '
		}
	}, s)
	return strings.Fields(mapped)
}

// normalizeWord lowercases a single name for fuzzy surname comparison.
func normalizeWord(s string) string {
	return strings.Join(normalizeTokens(s), " ")
}
