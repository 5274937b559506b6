package match

import "github.com/forPelevin/frankenbite/internal/types"

// Filter narrows a result list after a search. Zero fields do not filter.
type Filter struct {
	MinQuality  types.MatchQuality `json:"min_quality,omitempty"`
	MinScore    int                `json:"min_score,omitempty"`
	MaxSegments int                `json:"max_segments,omitempty"`
}

func (f Filter) Allows(r types.SearchResult) bool {
	if f.MinQuality != "" && r.MatchQuality.Rank() < f.MinQuality.Rank() {
		return false
	}
	if r.MatchScore < f.MinScore {
		return false
	}
	if f.MaxSegments > 0 && len(r.Segments) > f.MaxSegments {
		return false
	}
	return true
}

func ApplyFilter(results []types.SearchResult, f Filter) []types.SearchResult {
	var out []types.SearchResult
	for _, r := range results {
		if f.Allows(r) {
			out = append(out, r)
		}
	}
	return out
}

// CutPoints returns the word offsets, counted across the whole bite, at
// which one segment ends and the next begins.
func CutPoints(r types.SearchResult) []int {
	if len(r.Segments) <= 1 {
		return nil
	}
	cuts := make([]int, 0, len(r.Segments)-1)
	n := 0
	for _, s := range r.Segments[:len(r.Segments)-1] {
		n += len(s.Words)
		cuts = append(cuts, n)
	}
	return cuts
}
