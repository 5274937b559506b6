package transcript

import (
	"regexp"
	"strings"

	"github.com/forPelevin/frankenbite/internal/domain/timecode"
	"github.com/forPelevin/frankenbite/internal/types"
)

var (
	reToken = regexp.MustCompile(`[\w']+|[.,!?;:]`)
	rePunct = regexp.MustCompile(`^[.,!?;:]$`)
)

type Options struct {
	// DedupeMarkers collapses a timecode that several patterns matched at the
	// same position into one marker. Without it "00:00:01:00" also yields a
	// nested "00:00:01" marker and the frame digits leak into segment text.
	DedupeMarkers bool
}

func DefaultOptions() Options { return Options{DedupeMarkers: true} }

// Parse splits raw transcript text into segments bounded by consecutive
// timecode markers. Fewer than two markers yields nil.
func Parse(raw string) []types.Segment {
	return ParseWith(raw, DefaultOptions())
}

func ParseWith(raw string, opts Options) []types.Segment {
	markers := timecode.Extract(raw)
	if opts.DedupeMarkers {
		markers = timecode.Dedupe(markers)
	}
	if len(markers) < 2 {
		return nil
	}

	var out []types.Segment
	for i := 0; i < len(markers)-1; i++ {
		from := markers[i].End()
		to := markers[i+1].Index
		if to <= from {
			continue
		}
		text := strings.TrimSpace(raw[from:to])
		start := timecode.ToSeconds(markers[i].Timecode)
		end := timecode.ToSeconds(markers[i+1].Timecode)
		if end < start {
			// out of order markers: keep the segment but never let it run backwards
			end = start
		}
		out = append(out, types.Segment{
			Text:          text,
			Words:         interpolateWords(text, start, end),
			StartTimecode: markers[i].Timecode,
			EndTimecode:   markers[i+1].Timecode,
			StartTime:     start,
			EndTime:       end,
		})
	}
	return out
}

// interpolateWords spreads tokens linearly over [start, end) by token index.
// Punctuation is glued onto the preceding word.
func interpolateWords(text string, start, end float64) []types.Word {
	tokens := reToken.FindAllString(text, -1)
	if len(tokens) == 0 {
		return nil
	}
	span := end - start
	words := make([]types.Word, 0, len(tokens))
	for i, tok := range tokens {
		at := start + float64(i)/float64(len(tokens))*span
		if rePunct.MatchString(tok) && len(words) > 0 {
			words[len(words)-1].Word += tok
			continue
		}
		words = append(words, types.Word{
			Word:      tok,
			Timecode:  timecode.FromSeconds(at),
			StartTime: at,
		})
	}
	return words
}
