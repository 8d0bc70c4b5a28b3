package sanitizer

import (
	"strings"
	"unicode"
)

// TrimAndNormalize trims the string and collapses internal whitespace runs to
// a single space.
func TrimAndNormalize(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}

	var result strings.Builder
	var lastWasSpace bool

	for _, r := range s {
		if unicode.IsSpace(r) {
			if !lastWasSpace {
				result.WriteRune(' ')
				lastWasSpace = true
			}
		} else {
			result.WriteRune(r)
			lastWasSpace = false
		}
	}

	return result.String()
}

// NormalizeName cleans up an operator- or respondent-entered person name.
func NormalizeName(name string) string {
	return TrimAndNormalize(name)
}

// NormalizeLabel lower-cases a free-text role label for classification.
func NormalizeLabel(label string) string {
	return strings.ToLower(TrimAndNormalize(label))
}

// NameEquals reports whether two person names are equal after whitespace
// normalization and case folding.
func NameEquals(a, b string) bool {
	a = strings.ToLower(TrimAndNormalize(a))
	b = strings.ToLower(TrimAndNormalize(b))
	return a != "" && a == b
}

// NameContains reports whether haystack contains needle, both compared
// case-insensitively after whitespace normalization. Used to match a public
// respondent's first/last name against a team member's display name. An empty
// needle never matches.
func NameContains(haystack, needle string) bool {
	needle = strings.ToLower(TrimAndNormalize(needle))
	if needle == "" {
		return false
	}
	return strings.Contains(strings.ToLower(TrimAndNormalize(haystack)), needle)
}
