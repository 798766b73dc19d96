package Normalize

import "strings"

// whitespace variants that show up inside Japanese names: ASCII space,
// full-width space (U+3000), tab and newline.
var spaceStripper = strings.NewReplacer(
	" ", "",
	"　", "",
	"\t", "",
	"\n", "",
)

// NormalizeName canonicalizes a display name for equality matching:
// every whitespace occurrence is removed (not just trimmed) and the rest is
// lower-cased. The result is a lookup key only, never shown to anyone.
// An empty input yields an empty key; empty keys must never be used as a
// wildcard match.
func NormalizeName(s string) string {
	if s == "" {
		return ""
	}
	return strings.ToLower(spaceStripper.Replace(s))
}
