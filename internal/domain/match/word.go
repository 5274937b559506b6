package match

import (
	"fmt"
	"strings"

	"github.com/forPelevin/frankenbite/internal/domain/similarity"
	"github.com/forPelevin/frankenbite/internal/types"
)

// SearchWord returns every segment containing word, in transcript order.
// All hits are perfect; there is no fuzzy matching and no result cap.
func SearchWord(segs []types.Segment, word string) []types.SearchResult {
	w := similarity.Normalize(word)
	if w == "" {
		return nil
	}
	var out []types.SearchResult
	for _, s := range segs {
		if strings.Contains(similarity.Normalize(s.Text), w) {
			out = append(out, exactResult(fmt.Sprintf("word-%d", len(out)), s, false))
		}
	}
	return out
}
