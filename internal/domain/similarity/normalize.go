package similarity

import "strings"

// stripped are the punctuation characters removed before matching. '?' and
// apostrophes are deliberately kept out of the set.
const stripped = ".,/#!$%^&*;:{}=-_`~()"

// Normalize lowercases s, drops punctuation and collapses whitespace. It is
// only used for comparisons; display text always comes from the segment.
func Normalize(s string) string {
	s = strings.Map(func(r rune) rune {
		if strings.ContainsRune(stripped, r) {
			return -1
		}
		return r
	}, strings.ToLower(s))
	return strings.Join(strings.Fields(s), " ")
}

// Tokens splits already normalized text into words.
func Tokens(s string) []string { return strings.Fields(s) }
