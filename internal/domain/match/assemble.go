package match

import (
	"sort"
	"strings"

	"github.com/forPelevin/frankenbite/internal/types"
)

// assembler searches for small sets of segments that together cover the
// query words. It is rebuilt per search and holds no state across calls.
type assembler struct {
	cfg   Config
	q     query
	segs  []types.Segment
	norm  []string
	index map[string][]int

	seen map[string]struct{}
	out  [][]int
}

func newAssembler(cfg Config, q query, segs []types.Segment, norm []string) *assembler {
	a := &assembler{
		cfg:   cfg,
		q:     q,
		segs:  segs,
		norm:  norm,
		index: make(map[string][]int),
		seen:  make(map[string]struct{}),
	}
	for _, w := range q.words {
		if len([]rune(w)) < cfg.MinTokenLen {
			continue
		}
		a.indexKey(w)
	}
	for _, p := range q.phrases {
		a.indexKey(p)
	}
	return a
}

func (a *assembler) indexKey(key string) {
	if _, ok := a.index[key]; ok {
		return
	}
	var hits []int
	for i, n := range a.norm {
		if strings.Contains(n, key) {
			hits = append(hits, i)
		}
	}
	a.index[key] = hits
}

// combinations runs one bounded search per depth, 2 through MaxSegments.
// Searches deeper than a pair need a longer query and a higher coverage.
func (a *assembler) combinations() [][]int {
	for depth := 2; depth <= a.cfg.MaxSegments; depth++ {
		floor := a.cfg.PairCoverage
		if depth > 2 {
			if len(a.q.words) < a.cfg.DeepMinTokens {
				break
			}
			floor = a.cfg.DeepCoverage
		}
		a.build(nil, a.q.wordSet(), depth, floor)
	}
	return a.out
}

func (a *assembler) build(chosen []int, remaining map[string]struct{}, limit int, floor float64) {
	if len(chosen) >= limit || len(remaining) == 0 {
		a.accept(chosen, floor)
		return
	}

	cands := a.candidates(chosen, remaining)
	if len(cands) > a.cfg.BranchWidth {
		cands = cands[:a.cfg.BranchWidth]
	}
	for _, c := range cands {
		next := make(map[string]struct{}, len(remaining))
		for w := range remaining {
			if !strings.Contains(a.norm[c], w) {
				next[w] = struct{}{}
			}
		}
		picked := append(append(make([]int, 0, len(chosen)+1), chosen...), c)
		a.build(picked, next, limit, floor)
	}
}

func (a *assembler) accept(chosen []int, floor float64) {
	if len(chosen) == 0 {
		return
	}
	parts := make([]string, len(chosen))
	for i, idx := range chosen {
		parts[i] = a.norm[idx]
	}
	if a.q.coverage(strings.Join(parts, " ")) < floor {
		return
	}
	keys := make([]string, len(chosen))
	for i, idx := range chosen {
		keys[i] = a.segs[idx].StartTimecode
	}
	key := strings.Join(keys, "|")
	if _, ok := a.seen[key]; ok {
		return
	}
	a.seen[key] = struct{}{}
	a.out = append(a.out, chosen)
}

type rankedSegment struct {
	idx        int
	newCovered int
	phraseHits int
}

// candidates lists unchosen segments holding at least one remaining word,
// best first: most newly covered words, then most query phrases kept
// intact, then transcript order.
func (a *assembler) candidates(chosen []int, remaining map[string]struct{}) []int {
	taken := make(map[int]struct{}, len(chosen))
	for _, c := range chosen {
		taken[c] = struct{}{}
	}
	pool := make(map[int]struct{})
	for w := range remaining {
		for _, idx := range a.index[w] {
			if _, ok := taken[idx]; !ok {
				pool[idx] = struct{}{}
			}
		}
	}

	ranked := make([]rankedSegment, 0, len(pool))
	for idx := range pool {
		r := rankedSegment{idx: idx}
		for w := range remaining {
			if strings.Contains(a.norm[idx], w) {
				r.newCovered++
			}
		}
		for _, p := range a.q.phrases {
			if strings.Contains(a.norm[idx], p) {
				r.phraseHits++
			}
		}
		ranked = append(ranked, r)
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].newCovered != ranked[j].newCovered {
			return ranked[i].newCovered > ranked[j].newCovered
		}
		if ranked[i].phraseHits != ranked[j].phraseHits {
			return ranked[i].phraseHits > ranked[j].phraseHits
		}
		return ranked[i].idx < ranked[j].idx
	})

	out := make([]int, len(ranked))
	for i, r := range ranked {
		out[i] = r.idx
	}
	return out
}
