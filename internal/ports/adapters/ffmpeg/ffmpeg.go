package ffmpeg

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/forPelevin/frankenbite/internal/ports"
)

type Adapter struct {
	ffmpeg  string
	ffprobe string
}

func New(ffmpegPath, ffprobePath string) *Adapter {
	if ffmpegPath == "" {
		ffmpegPath = "ffmpeg"
	}
	if ffprobePath == "" {
		ffprobePath = "ffprobe"
	}
	return &Adapter{ffmpeg: ffmpegPath, ffprobe: ffprobePath}
}

// RenderBite trims each range out of media and concatenates them in order,
// optionally burning in ASS subtitles timed to the joined bite.
func (a *Adapter) RenderBite(ctx context.Context, media string, ranges []ports.Range, outMP4 string, burnASS string) error {
	args, err := renderArgs(media, ranges, outMP4, burnASS)
	if err != nil {
		return err
	}
	cmd := exec.CommandContext(ctx, a.ffmpeg, args...)
	b, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("ffmpeg render bite: %w\n%s", err, string(b))
	}
	return nil
}

func renderArgs(media string, ranges []ports.Range, outMP4 string, burnASS string) ([]string, error) {
	if len(ranges) == 0 {
		return nil, errors.New("no ranges to render")
	}
	var graph strings.Builder
	var joins strings.Builder
	for i, r := range ranges {
		if r.End <= r.Start {
			return nil, fmt.Errorf("range %d is empty (%s..%s)", i, r.Start, r.End)
		}
		fmt.Fprintf(&graph, "[0:v]trim=start=%s:end=%s,setpts=PTS-STARTPTS[v%d];", fmtSeconds(r.Start), fmtSeconds(r.End), i)
		fmt.Fprintf(&graph, "[0:a]atrim=start=%s:end=%s,asetpts=PTS-STARTPTS[a%d];", fmtSeconds(r.Start), fmtSeconds(r.End), i)
		fmt.Fprintf(&joins, "[v%d][a%d]", i, i)
	}
	graph.WriteString(joins.String())
	fmt.Fprintf(&graph, "concat=n=%d:v=1:a=1[vc][a]", len(ranges))
	if burnASS != "" {
		graph.WriteString(";[vc]subtitles=" + escapeFilterPath(burnASS) + "[v]")
	} else {
		graph.WriteString(";[vc]null[v]")
	}

	return []string{
		"-y",
		"-i", media,
		"-filter_complex", graph.String(),
		"-map", "[v]",
		"-map", "[a]",
		"-c:v", "libx264",
		"-preset", "veryfast",
		"-crf", "18",
		"-c:a", "aac",
		"-b:a", "192k",
		outMP4,
	}, nil
}

func (a *Adapter) ProbeDuration(ctx context.Context, media string) (time.Duration, error) {
	cmd := exec.CommandContext(ctx, a.ffprobe,
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		media,
	)
	b, err := cmd.CombinedOutput()
	if err != nil {
		return 0, fmt.Errorf("ffprobe duration: %w\n%s", err, string(b))
	}
	s := strings.TrimSpace(string(b))
	sec, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("parse duration %q: %w", s, err)
	}
	return time.Duration(sec * float64(time.Second)), nil
}

func fmtSeconds(d time.Duration) string {
	sec := float64(d) / float64(time.Second)
	return strconv.FormatFloat(sec, 'f', 3, 64)
}

func escapeFilterPath(p string) string {
	p = strings.ReplaceAll(p, "\\", "\\\\")
	p = strings.ReplaceAll(p, ":", "\\:")
	return p
}
