// Package match finds quotes for a query in a segmented transcript.
//
// A search returns exact quotes, single segments that read close to the
// query, and frankenbites: two or more segments spliced together so that,
// between them, they say roughly what the query says. The engine is pure;
// it never mutates the segments it is given and keeps no state between
// searches.
package match

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/forPelevin/frankenbite/internal/domain/similarity"
	"github.com/forPelevin/frankenbite/internal/types"
)

const (
	exactGrammar = 0.95
	// grammarFactor derives a grammar estimate from coherence for ranked
	// candidates.
	grammarFactor = 0.9
)

type Engine struct {
	cfg Config
}

func New(cfg Config) *Engine {
	return &Engine{cfg: cfg.Normalized()}
}

func (e *Engine) Config() Config { return e.cfg }

// Search runs a search with the default configuration except for the
// threshold and result cap. A cap of zero or less yields no results; a
// threshold above 1 leaves only exact matches.
func Search(segs []types.Segment, q string, threshold float64, maxResults int) []types.SearchResult {
	if maxResults <= 0 {
		return nil
	}
	cfg := DefaultConfig()
	cfg.SimilarityThreshold = threshold
	cfg.MaxResults = maxResults
	return New(cfg).Search(segs, q)
}

type candidate struct {
	segs      []int
	score     float64
	coherence float64
	context   float64
}

// Search returns at most MaxResults results ordered by score, with no two
// sharing the same MatchText. An empty query or transcript yields nil.
func (e *Engine) Search(segs []types.Segment, raw string) []types.SearchResult {
	q := newQuery(raw)
	if q.text == "" || len(segs) == 0 {
		return nil
	}

	norm := make([]string, len(segs))
	for i, s := range segs {
		norm[i] = similarity.Normalize(s.Text)
	}

	var results []types.SearchResult
	for i, n := range norm {
		if strings.Contains(n, q.text) {
			results = append(results, exactResult(fmt.Sprintf("result-%d", len(results)), segs[i], true))
		}
	}

	var pool []candidate
	for i, n := range norm {
		sim := similarity.String(q.text, n)
		if sim < e.cfg.SimilarityThreshold {
			continue
		}
		pool = append(pool, candidate{
			segs:      []int{i},
			score:     sim * 100,
			coherence: similarity.Coherence(segs[i].Text),
			context:   similarity.ContextPreservation(q.text, n),
		})
	}

	if len(q.words) > 1 {
		bar := e.cfg.SimilarityThreshold * e.cfg.CombinationFactor
		for _, combo := range newAssembler(e.cfg, q, segs, norm).combinations() {
			c := e.scoreCombination(q, segs, combo)
			if c.score >= bar {
				pool = append(pool, c)
			}
		}
	}

	e.rank(pool)
	if len(pool) > e.cfg.MaxResults {
		pool = pool[:e.cfg.MaxResults]
	}
	for _, c := range pool {
		results = append(results, e.candidateResult(fmt.Sprintf("result-%d", len(results)), segs, c))
	}
	return e.finalize(results)
}

func (e *Engine) scoreCombination(q query, segs []types.Segment, combo []int) candidate {
	texts := make([]string, len(combo))
	for i, idx := range combo {
		texts[i] = segs[idx].Text
	}
	joined := strings.Join(texts, similarity.Seam)
	norm := similarity.Normalize(joined)

	coverage := q.coverage(norm)
	coherence := similarity.Coherence(joined)
	context := similarity.ContextPreservation(q.text, norm)
	if len(combo) > 1 {
		coherence *= e.cfg.SpliceCoherence
		context *= e.cfg.SpliceContext
	}
	sim := similarity.String(q.text, norm)

	return candidate{
		segs:      combo,
		score:     (sim*0.4 + coverage*0.4 + coherence*0.1 + context*0.1) * 100,
		coherence: coherence,
		context:   context,
	}
}

// rank orders candidates by score. Scores within TieScore of each other fall
// through to coherence, then to fewer segments, then to transcript position.
func (e *Engine) rank(pool []candidate) {
	sort.SliceStable(pool, func(i, j int) bool {
		a, b := pool[i], pool[j]
		if math.Abs(a.score-b.score) > e.cfg.TieScore {
			return a.score > b.score
		}
		if math.Abs(a.coherence-b.coherence) > e.cfg.TieCoherence {
			return a.coherence > b.coherence
		}
		if len(a.segs) != len(b.segs) {
			return len(a.segs) < len(b.segs)
		}
		return a.segs[0] < b.segs[0]
	})
}

func (e *Engine) candidateResult(id string, segs []types.Segment, c candidate) types.SearchResult {
	picked := make([]types.Segment, len(c.segs))
	texts := make([]string, len(c.segs))
	for i, idx := range c.segs {
		picked[i] = segs[idx]
		texts[i] = segs[idx].Text
	}
	source := types.SourceExact
	if len(picked) > 1 {
		source = types.SourceFrankenbite
	}
	return types.SearchResult{
		ID:                  id,
		MatchText:           strings.Join(texts, e.cfg.Delimiter),
		Segments:            picked,
		MatchScore:          int(math.Round(c.score)),
		MatchQuality:        Quality(c.score),
		CoherenceScore:      types.Float(c.coherence),
		GrammarScore:        types.Float(c.coherence * grammarFactor),
		ContextPreservation: types.Float(c.context),
		Source:              source,
	}
}

func (e *Engine) finalize(results []types.SearchResult) []types.SearchResult {
	seen := make(map[string]struct{}, len(results))
	out := results[:0]
	for _, r := range results {
		if _, ok := seen[r.MatchText]; ok {
			continue
		}
		seen[r.MatchText] = struct{}{}
		out = append(out, r)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].MatchScore > out[j].MatchScore })
	if len(out) > e.cfg.MaxResults {
		out = out[:e.cfg.MaxResults]
	}
	return out
}

// Quality labels a ranked candidate's score. Exact substring matches are
// labelled perfect separately.
func Quality(score float64) types.MatchQuality {
	switch {
	case score >= 90:
		return types.QualityHigh
	case score >= 75:
		return types.QualityMedium
	default:
		return types.QualityLow
	}
}

func exactResult(id string, seg types.Segment, withContext bool) types.SearchResult {
	r := types.SearchResult{
		ID:             id,
		MatchText:      seg.Text,
		Segments:       []types.Segment{seg},
		MatchScore:     100,
		MatchQuality:   types.QualityPerfect,
		CoherenceScore: types.Float(similarity.Coherence(seg.Text)),
		GrammarScore:   types.Float(exactGrammar),
		Source:         types.SourceExact,
	}
	if withContext {
		r.ContextPreservation = types.Float(1)
	}
	return r
}
