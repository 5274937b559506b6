// Package subtitles renders an assembled bite as karaoke ASS subtitles.
//
// Segments of a bite are laid out back to back on a bite-local timeline, the
// same order the clip renderer concatenates them in.
package subtitles

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/forPelevin/frankenbite/internal/types"
)

// RenderBiteASS renders r's words with per-word karaoke timing. Segments
// without word timing fall back to one plain line each.
func RenderBiteASS(r types.SearchResult) (string, error) {
	if len(r.Segments) == 0 {
		return "", errors.New("bite has no segments")
	}
	words, plain := layoutBite(r.Segments)
	if len(words) == 0 {
		return renderASSPlain(plain), nil
	}
	return renderASSKaraoke(packWords(words)), nil
}

type cue struct {
	Start time.Duration
	End   time.Duration
	Text  string
	// Splice marks the first word of every segment after the first.
	Splice bool
}

type line struct {
	Start time.Duration
	End   time.Duration
	Words []cue
}

// layoutBite shifts every segment onto the bite timeline. It returns word
// cues, or segment cues when no segment carries words.
func layoutBite(segs []types.Segment) ([]cue, []cue) {
	var words, plain []cue
	var offset time.Duration
	for n, s := range segs {
		segDur := dur(s.Duration())
		first := n > 0
		for i, w := range s.Words {
			text := strings.TrimSpace(w.Word)
			if text == "" {
				continue
			}
			ws := offset + dur(w.StartTime-s.StartTime)
			we := offset + dur(s.WordEnd(i)-s.StartTime)
			if we <= ws {
				we = ws + 10*time.Millisecond
			}
			words = append(words, cue{Start: ws, End: we, Text: sanitizeASS(text), Splice: first})
			first = false
		}
		if text := strings.TrimSpace(s.Text); text != "" {
			plain = append(plain, cue{Start: offset, End: offset + segDur, Text: sanitizeASS(text)})
		}
		offset += segDur
	}
	return words, plain
}

const (
	lineChars = 42
	lineWords = 9
)

// packWords groups word cues into display lines. A splice always starts a new
// line so that no line straddles a cut.
func packWords(words []cue) []line {
	var out []line
	var cur line
	width := 0
	flush := func() {
		if len(cur.Words) == 0 {
			return
		}
		cur.End = cur.Words[len(cur.Words)-1].End
		out = append(out, cur)
		cur, width = line{}, 0
	}
	for _, w := range words {
		n := len([]rune(w.Text))
		if width > 0 {
			n++
		}
		if w.Splice || len(cur.Words) >= lineWords || (width > 0 && width+n > lineChars) {
			flush()
			n = len([]rune(w.Text))
		}
		if len(cur.Words) == 0 {
			cur.Start = w.Start
		}
		cur.Words = append(cur.Words, w)
		width += n
	}
	flush()
	return out
}

func renderASSKaraoke(lines []line) string {
	var b strings.Builder
	writeHeader(&b)
	for _, ln := range lines {
		b.WriteString(dialogue(ln.Start, ln.End))
		for _, w := range ln.Words {
			durCS := int((w.End - w.Start) / (10 * time.Millisecond))
			if durCS < 1 {
				durCS = 1
			}
			fmt.Fprintf(&b, "{\\k%d}%s ", durCS, w.Text)
		}
		b.WriteString("\n")
	}
	return b.String()
}

func renderASSPlain(cues []cue) string {
	var b strings.Builder
	writeHeader(&b)
	for _, c := range cues {
		b.WriteString(dialogue(c.Start, c.End))
		b.WriteString(c.Text)
		b.WriteString("\n")
	}
	return b.String()
}

func writeHeader(b *strings.Builder) {
	b.WriteString(strings.TrimSpace(`
[Script Info]
ScriptType: v4.00+
PlayResX: 1920
PlayResY: 1080
ScaledBorderAndShadow: yes

[V4+ Styles]
Format: Name, Fontname, Fontsize, PrimaryColour, SecondaryColour, OutlineColour, BackColour, Bold, Italic, Underline, StrikeOut, ScaleX, ScaleY, Spacing, Angle, BorderStyle, Outline, Shadow, Alignment, MarginL, MarginR, MarginV, Encoding
Style: Bite, Inter, 64, &H00FFFFFF, &H00FFD200, &H00000000, &H64000000, 1,0,0,0,100,100,0,0,1,5,2,2, 80,80,70,1
`))
	b.WriteString("\n\n[Events]\n")
	b.WriteString("Format: Layer, Start, End, Style, Name, MarginL, MarginR, MarginV, Effect, Text\n")
}

func dialogue(start, end time.Duration) string {
	return "Dialogue: 0," + assTime(start) + "," + assTime(end) + ",Bite,,0,0,0,,"
}

func assTime(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	hs := int(d / time.Hour)
	d -= time.Duration(hs) * time.Hour
	ms := int(d / time.Minute)
	d -= time.Duration(ms) * time.Minute
	s := int(d / time.Second)
	d -= time.Duration(s) * time.Second
	cs := int(d / (10 * time.Millisecond))
	return fmt.Sprintf("%d:%02d:%02d.%02d", hs, ms, s, cs)
}

func sanitizeASS(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, "{", "(")
	s = strings.ReplaceAll(s, "}", ")")
	return strings.TrimSpace(s)
}

func dur(sec float64) time.Duration { return time.Duration(sec * float64(time.Second)) }
