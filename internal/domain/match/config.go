package match

// Config holds the engine's tuning knobs. Zero fields fall back to the
// DefaultConfig value, so an explicit 0 threshold is not expressible.
type Config struct {
	SimilarityThreshold float64 `yaml:"similarity_threshold" json:"similarity_threshold"`
	MaxResults          int     `yaml:"max_results" json:"max_results"`

	// MaxSegments caps how many segments a frankenbite may splice together.
	MaxSegments int `yaml:"max_segments" json:"max_segments"`
	// PairCoverage is the query coverage a 2-segment search must reach.
	PairCoverage float64 `yaml:"pair_coverage" json:"pair_coverage"`
	// DeepCoverage applies to searches deeper than two segments, which only
	// run for queries of at least DeepMinTokens words.
	DeepCoverage  float64 `yaml:"deep_coverage" json:"deep_coverage"`
	DeepMinTokens int     `yaml:"deep_min_tokens" json:"deep_min_tokens"`
	// BranchWidth is how many of the best covering segments are expanded at
	// each assembly step.
	BranchWidth int `yaml:"branch_width" json:"branch_width"`
	// MinTokenLen excludes shorter query words from the coverage index.
	MinTokenLen int `yaml:"min_token_len" json:"min_token_len"`

	// CombinationFactor scales SimilarityThreshold into the 0-100 bar that
	// assembled candidates must clear.
	CombinationFactor float64 `yaml:"combination_factor" json:"combination_factor"`
	SpliceCoherence   float64 `yaml:"splice_coherence" json:"splice_coherence"`
	SpliceContext     float64 `yaml:"splice_context" json:"splice_context"`

	// TieScore and TieCoherence are the bands inside which two candidates
	// are considered equal and the next ranking key decides.
	TieScore     float64 `yaml:"tie_score" json:"tie_score"`
	TieCoherence float64 `yaml:"tie_coherence" json:"tie_coherence"`

	// Delimiter joins segment texts in a multi-segment MatchText.
	Delimiter string `yaml:"delimiter" json:"delimiter"`
}

func DefaultConfig() Config {
	return Config{
		SimilarityThreshold: 0.6,
		MaxResults:          8,
		MaxSegments:         3,
		PairCoverage:        0.7,
		DeepCoverage:        0.8,
		DeepMinTokens:       4,
		BranchWidth:         6,
		MinTokenLen:         3,
		CombinationFactor:   95,
		SpliceCoherence:     0.8,
		SpliceContext:       0.75,
		TieScore:            5,
		TieCoherence:        0.1,
		Delimiter:           " [...] ",
	}
}

// Normalized returns c with unset fields replaced by defaults. A threshold
// above 1 is kept, so that nothing but exact matches can pass it.
func (c Config) Normalized() Config {
	d := DefaultConfig()
	if c.SimilarityThreshold <= 0 {
		c.SimilarityThreshold = d.SimilarityThreshold
	}
	if c.MaxResults <= 0 {
		c.MaxResults = d.MaxResults
	}
	if c.MaxSegments <= 0 {
		c.MaxSegments = d.MaxSegments
	}
	if c.PairCoverage <= 0 {
		c.PairCoverage = d.PairCoverage
	}
	if c.DeepCoverage <= 0 {
		c.DeepCoverage = d.DeepCoverage
	}
	if c.DeepMinTokens <= 0 {
		c.DeepMinTokens = d.DeepMinTokens
	}
	if c.BranchWidth <= 0 {
		c.BranchWidth = d.BranchWidth
	}
	if c.MinTokenLen <= 0 {
		c.MinTokenLen = d.MinTokenLen
	}
	if c.CombinationFactor <= 0 {
		c.CombinationFactor = d.CombinationFactor
	}
	if c.SpliceCoherence <= 0 {
		c.SpliceCoherence = d.SpliceCoherence
	}
	if c.SpliceContext <= 0 {
		c.SpliceContext = d.SpliceContext
	}
	if c.TieScore <= 0 {
		c.TieScore = d.TieScore
	}
	if c.TieCoherence <= 0 {
		c.TieCoherence = d.TieCoherence
	}
	if c.Delimiter == "" {
		c.Delimiter = d.Delimiter
	}
	return c
}
