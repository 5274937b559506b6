// Package timecode converts between textual media timecodes and seconds.
//
// Accepted formats, tried in order: HH:MM:SS:FF (30 fps frames),
// HH:MM:SS.mmm (fractional seconds), HH:MM:SS and MM:SS. Anything that does
// not parse converts to 0 seconds.
package timecode

import (
	"fmt"
	"math"
	"regexp"
	"sort"
	"strconv"
)

// FPS is the frame rate assumed for the frame component.
const FPS = 30

var (
	reFrames     = regexp.MustCompile(`(\d{2}):(\d{2}):(\d{2}):(\d{2})`)
	reFractional = regexp.MustCompile(`(\d{2}):(\d{2}):(\d{2})\.(\d{2,3})`)
	rePlain      = regexp.MustCompile(`(\d{2}):(\d{2}):(\d{2})`)
	reShort      = regexp.MustCompile(`(\d{1,2}):(\d{2})`)

	reFractionSuffix = regexp.MustCompile(`\.\d+$`)
)

// Marker is a timecode found in raw text and its byte offset.
type Marker struct {
	Timecode string `json:"timecode"`
	Index    int    `json:"index"`
}

// End is the byte offset just past the marker.
func (m Marker) End() int { return m.Index + len(m.Timecode) }

// ToSeconds parses the first recognised timecode in s.
func ToSeconds(s string) float64 {
	if s == "" {
		return 0
	}
	if m := reFrames.FindStringSubmatch(s); m != nil {
		return hms(m[1], m[2], m[3]) + float64(atoi(m[4]))/FPS
	}
	if m := reFractional.FindStringSubmatch(s); m != nil {
		frac, err := strconv.ParseFloat("0."+m[4], 64)
		if err != nil {
			frac = 0
		}
		return hms(m[1], m[2], m[3]) + frac
	}
	if m := rePlain.FindStringSubmatch(s); m != nil {
		return hms(m[1], m[2], m[3])
	}
	if m := reShort.FindStringSubmatch(s); m != nil {
		return float64(atoi(m[1])*60 + atoi(m[2]))
	}
	return 0
}

// FromSeconds formats sec as zero padded HH:MM:SS:FF. NaN, infinities and
// negative values format as zero.
func FromSeconds(sec float64) string {
	if math.IsNaN(sec) || math.IsInf(sec, 0) || sec < 0 {
		return "00:00:00:00"
	}
	whole := math.Floor(sec)
	total := int64(whole)
	h := total / 3600
	m := (total % 3600) / 60
	s := total % 60
	// epsilon absorbs float error from values that were produced as f/FPS.
	f := int64(math.Floor((sec-whole)*FPS + 1e-6))
	if f >= FPS {
		f = FPS - 1
	}
	return fmt.Sprintf("%02d:%02d:%02d:%02d", h, m, s, f)
}

// Extract scans text with the frame, fractional and plain patterns and returns
// every match ordered by position. A timecode matched by more than one pattern
// is reported once per pattern; use Dedupe to collapse those.
func Extract(text string) []Marker {
	var out []Marker
	for _, re := range []*regexp.Regexp{reFrames, reFractional, rePlain} {
		for _, loc := range re.FindAllStringIndex(text, -1) {
			out = append(out, Marker{Timecode: text[loc[0]:loc[1]], Index: loc[0]})
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Index < out[j].Index })
	return out
}

// Dedupe drops markers that start inside an earlier, longer marker so that
// "00:01:02:03" is not also reported as "00:01:02".
func Dedupe(markers []Marker) []Marker {
	if len(markers) == 0 {
		return nil
	}
	sorted := append([]Marker(nil), markers...)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Index != sorted[j].Index {
			return sorted[i].Index < sorted[j].Index
		}
		return len(sorted[i].Timecode) > len(sorted[j].Timecode)
	})
	out := make([]Marker, 0, len(sorted))
	for _, m := range sorted {
		if len(out) > 0 && m.Index < out[len(out)-1].End() {
			continue
		}
		out = append(out, m)
	}
	return out
}

// Format strips a trailing fractional seconds suffix for display.
func Format(tc string) string {
	return reFractionSuffix.ReplaceAllString(tc, "")
}

func hms(h, m, s string) float64 {
	return float64(atoi(h)*3600 + atoi(m)*60 + atoi(s))
}

func atoi(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}
