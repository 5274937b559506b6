// Package similarity scores how closely transcript text matches a query.
//
// All functions are pure and return values in [0, 1].
package similarity

import (
	"strings"
	"unicode/utf8"

	"github.com/lithammer/fuzzysearch/fuzzy"
)

const (
	// maxLenGap is the length difference past which two words are rejected
	// without computing an edit distance.
	maxLenGap     = 3
	rejectedScore = 0.1
	// nearMatch is the word similarity above which a substitution is free.
	nearMatch = 0.8
)

// Word compares two single words by character edit distance.
func Word(a, b string) float64 {
	if a == b {
		return 1
	}
	la, lb := utf8.RuneCountInString(a), utf8.RuneCountInString(b)
	if abs(la-lb) > maxLenGap {
		return rejectedScore
	}
	longest := max(la, lb)
	if longest == 0 {
		return 1
	}
	return 1 - float64(fuzzy.LevenshteinDistance(a, b))/float64(longest)
}

// String is a word level edit distance between a and b where substituting
// near identical words is free and other substitutions cost 1 - Word(x, y).
func String(a, b string) float64 {
	if a == "" {
		if b == "" {
			return 1
		}
		return 0
	}
	if b == "" {
		return 0
	}
	aw := strings.Fields(strings.ToLower(a))
	bw := strings.Fields(strings.ToLower(b))
	if len(aw) == 0 || len(bw) == 0 {
		if len(aw) == len(bw) {
			return 1
		}
		return 0
	}

	prev := make([]float64, len(aw)+1)
	cur := make([]float64, len(aw)+1)
	for j := range prev {
		prev[j] = float64(j)
	}
	for i := 1; i <= len(bw); i++ {
		cur[0] = float64(i)
		for j := 1; j <= len(aw); j++ {
			cost := 0.0
			if ws := Word(aw[j-1], bw[i-1]); ws <= nearMatch {
				cost = 1 - ws
			}
			cur[j] = min(
				prev[j]+1,
				cur[j-1]+1,
				prev[j-1]+cost,
			)
		}
		prev, cur = cur, prev
	}
	dist := prev[len(aw)]
	return clamp(1-dist/float64(max(len(aw), len(bw))), 0, 1)
}

// ContextPreservation rewards texts that contain the query's words
// (weight 0.7) and keep adjacent query words adjacent (weight 0.3).
// Both arguments are expected to be normalized.
func ContextPreservation(query, text string) float64 {
	qw := strings.Fields(query)
	tw := strings.Fields(text)
	if len(qw) == 0 {
		return 0
	}

	first := make(map[string]int, len(tw))
	for i := len(tw) - 1; i >= 0; i-- {
		first[tw[i]] = i
	}

	matched := 0
	for _, w := range qw {
		if _, ok := first[w]; ok {
			matched++
		}
	}

	run, best := 0, 0
	for i := 0; i+1 < len(qw); i++ {
		cur, okCur := first[qw[i]]
		next, okNext := first[qw[i+1]]
		if okCur && okNext && next == cur+1 {
			run++
			best = max(best, run)
		} else {
			run = 0
		}
	}

	coverage := float64(matched) / float64(len(qw))
	sequence := 1.0
	if len(qw) > 1 {
		sequence = float64(best) / float64(len(qw)-1)
	}
	return coverage*0.7 + sequence*0.3
}

func clamp(x, a, b float64) float64 {
	if x < a {
		return a
	}
	if x > b {
		return b
	}
	return x
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
