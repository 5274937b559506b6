package similarity

import (
	"regexp"
	"strings"
)

var (
	reCapitalStart = regexp.MustCompile(`^[A-Z]`)
	reTerminal     = regexp.MustCompile(`[.!?]$`)
	reClause       = regexp.MustCompile(`(?i)\b(I|you|he|she|it|we|they)\b.*\b(is|am|are|was|were|will|have|has|had)\b`)
)

// Seam is the marker placed between spliced segments when scoring them.
const Seam = " ... "

// Coherence is a shallow estimate of how natural text reads. It starts at 0.6,
// gains 0.1 per sentence-like trait and loses 0.15 when the text contains a
// splice seam.
func Coherence(text string) float64 {
	score := 0.6
	if reCapitalStart.MatchString(text) {
		score += 0.1
	}
	if !strings.Contains(text, "  ") {
		score += 0.1
	}
	if reTerminal.MatchString(text) {
		score += 0.1
	}
	if reClause.MatchString(text) {
		score += 0.1
	}
	if strings.Contains(text, "... ") {
		score -= 0.15
	}
	return clamp(score, 0, 1)
}
