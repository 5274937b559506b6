package match

import (
	"strings"

	"github.com/forPelevin/frankenbite/internal/domain/similarity"
)

type query struct {
	text    string
	words   []string
	phrases []string
}

func newQuery(raw string) query {
	text := similarity.Normalize(raw)
	words := similarity.Tokens(text)
	return query{text: text, words: words, phrases: keyPhrases(words)}
}

func (q query) wordSet() map[string]struct{} {
	out := make(map[string]struct{}, len(q.words))
	for _, w := range q.words {
		out[w] = struct{}{}
	}
	return out
}

// coverage is the share of query words found as substrings of text.
func (q query) coverage(text string) float64 {
	if len(q.words) == 0 {
		return 0
	}
	n := 0
	for _, w := range q.words {
		if strings.Contains(text, w) {
			n++
		}
	}
	return float64(n) / float64(len(q.words))
}

// keyPhrases returns every 2- and 3-word run of words.
func keyPhrases(words []string) []string {
	var out []string
	for i := range words {
		if i+1 < len(words) {
			out = append(out, words[i]+" "+words[i+1])
		}
		if i+2 < len(words) {
			out = append(out, words[i]+" "+words[i+1]+" "+words[i+2])
		}
	}
	return out
}
