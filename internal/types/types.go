package types

import "time"

// Word is a single transcript word with an interpolated start time.
type Word struct {
	Word      string  `json:"word"`
	Timecode  string  `json:"timecode"`
	StartTime float64 `json:"start_time"`
}

// Segment is the transcript text between two consecutive timecode markers.
type Segment struct {
	Text          string  `json:"text"`
	Words         []Word  `json:"words"`
	StartTimecode string  `json:"start_timecode"`
	EndTimecode   string  `json:"end_timecode"`
	StartTime     float64 `json:"start_time"`
	EndTime       float64 `json:"end_time"`
}

func (s Segment) Duration() float64 { return s.EndTime - s.StartTime }

// WordEnd returns the end of word i: the next word's start, or the segment end
// for the last word.
func (s Segment) WordEnd(i int) float64 {
	if i+1 < len(s.Words) {
		return s.Words[i+1].StartTime
	}
	return s.EndTime
}

type MatchQuality string

const (
	QualityPerfect MatchQuality = "perfect"
	QualityHigh    MatchQuality = "high"
	QualityMedium  MatchQuality = "medium"
	QualityLow     MatchQuality = "low"
)

// Rank orders qualities so that perfect > high > medium > low.
func (q MatchQuality) Rank() int {
	switch q {
	case QualityPerfect:
		return 3
	case QualityHigh:
		return 2
	case QualityMedium:
		return 1
	default:
		return 0
	}
}

type Source string

const (
	SourceExact       Source = "exact"
	SourceFrankenbite Source = "frankenbite"
)

type SearchResult struct {
	ID                  string       `json:"id"`
	MatchText           string       `json:"match_text"`
	Segments            []Segment    `json:"segments"`
	MatchScore          int          `json:"match_score"`
	MatchQuality        MatchQuality `json:"match_quality"`
	CoherenceScore      *float64     `json:"coherence_score,omitempty"`
	GrammarScore        *float64     `json:"grammar_score,omitempty"`
	ContextPreservation *float64     `json:"context_preservation,omitempty"`
	Source              Source       `json:"source"`
}

// SavedBite is a result the user kept for later, with optional notes and tags.
type SavedBite struct {
	ID        string       `json:"id"`
	Query     string       `json:"query"`
	Result    SearchResult `json:"result"`
	Notes     string       `json:"notes,omitempty"`
	Tags      []string     `json:"tags,omitempty"`
	CreatedAt time.Time    `json:"created_at"`
}

type Manifest struct {
	Transcript string         `json:"transcript"`
	Query      string         `json:"query"`
	Segments   int            `json:"segments"`
	NotFound   string         `json:"not_found,omitempty"`
	Results    []ManifestBite `json:"results"`
}

type ManifestBite struct {
	ID           string       `json:"id"`
	MatchText    string       `json:"match_text"`
	MatchScore   int          `json:"match_score"`
	MatchQuality MatchQuality `json:"match_quality"`
	Source       Source       `json:"source"`
	DurationSec  float64      `json:"duration_sec"`
	Cuts         []Cut        `json:"cuts"`
	Subtitles    string       `json:"subtitles,omitempty"`
	CutList      string       `json:"cut_list,omitempty"`
	File         string       `json:"file,omitempty"`
}

// Cut is one source span of a bite.
type Cut struct {
	In  string `json:"in"`
	Out string `json:"out"`
}

// Float returns a pointer to v, for the optional score fields.
func Float(v float64) *float64 { return &v }
