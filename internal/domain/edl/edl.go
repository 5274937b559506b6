// Package edl writes an assembled bite as a CMX 3600 style edit decision
// list, one cut event per source segment.
package edl

import (
	"fmt"
	"strings"

	"github.com/forPelevin/frankenbite/internal/domain/timecode"
	"github.com/forPelevin/frankenbite/internal/types"
)

// Render lists r's segments as consecutive events. Source in/out points come
// from the segment times; record points run from zero on the bite timeline.
func Render(title, reel string, r types.SearchResult) string {
	if reel == "" {
		reel = "AX"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "TITLE: %s\n", oneLine(title))
	b.WriteString("FCM: NON-DROP FRAME\n\n")

	var rec float64
	for i, s := range r.Segments {
		d := s.Duration()
		fmt.Fprintf(&b, "%03d  %-8s V     C        %s %s %s %s\n",
			i+1, reel,
			timecode.FromSeconds(s.StartTime), timecode.FromSeconds(s.EndTime),
			timecode.FromSeconds(rec), timecode.FromSeconds(rec+d),
		)
		fmt.Fprintf(&b, "* FROM CLIP: %s\n", oneLine(s.Text))
		rec += d
	}
	return b.String()
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
