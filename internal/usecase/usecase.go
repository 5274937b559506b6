package usecase

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/forPelevin/frankenbite/internal/domain/edl"
	"github.com/forPelevin/frankenbite/internal/domain/match"
	"github.com/forPelevin/frankenbite/internal/domain/subtitles"
	"github.com/forPelevin/frankenbite/internal/domain/timecode"
	"github.com/forPelevin/frankenbite/internal/domain/transcript"
	"github.com/forPelevin/frankenbite/internal/ports"
	"github.com/forPelevin/frankenbite/internal/types"
)

// ErrNotTimecoded is returned for transcripts with fewer than two timecodes.
var ErrNotTimecoded = errors.New("transcript has fewer than two timecodes")

type Deps struct {
	History ports.History
	// Renderer is optional; without it bites are not cut from media.
	Renderer ports.Renderer
	// Rand picks not-found messages. Nil always picks the first one.
	Rand match.Intner
}

type Usecase struct {
	d      Deps
	engine *match.Engine
}

func New(d Deps, cfg match.Config) Usecase {
	return Usecase{d: d, engine: match.New(cfg)}
}

type Input struct {
	Transcript string
	Query      string
	// WordOnly runs a plain word lookup instead of a phrase search.
	WordOnly bool
	Filter   match.Filter
	Logf     func(format string, args ...any)
}

type Result struct {
	Segments []types.Segment
	Results  []types.SearchResult
	NotFound string
}

func (u Usecase) Search(ctx context.Context, in Input) (Result, error) {
	logf := orNop(in.Logf)

	segs := transcript.Parse(in.Transcript)
	if len(segs) == 0 {
		return Result{}, ErrNotTimecoded
	}
	logf("parsed %d segments", len(segs))

	var results []types.SearchResult
	if in.WordOnly {
		results = match.SearchWord(segs, in.Query)
	} else {
		results = u.engine.Search(segs, in.Query)
	}
	found := len(results)
	results = match.ApplyFilter(results, in.Filter)
	logf("query %q: %d results, %d after filter", in.Query, found, len(results))

	if u.d.History != nil {
		if err := u.d.History.Record(ctx, in.Query); err != nil {
			return Result{}, fmt.Errorf("record history: %w", err)
		}
	}

	res := Result{Segments: segs, Results: results}
	if len(results) == 0 {
		res.NotFound = match.NotFoundMessage(u.d.Rand)
	}
	return res, nil
}

// SuggestQueries returns recent queries that fuzzily contain partial, most
// recent first.
func (u Usecase) SuggestQueries(ctx context.Context, partial string, limit int) ([]string, error) {
	if u.d.History == nil {
		return nil, nil
	}
	recent, err := u.d.History.Recent(ctx, limit)
	if err != nil {
		return nil, err
	}
	if partial == "" {
		return recent, nil
	}
	return fuzzy.FindFold(partial, recent), nil
}

func (u Usecase) SaveBite(ctx context.Context, query string, r types.SearchResult, notes string, tags []string) (types.SavedBite, error) {
	if u.d.History == nil {
		return types.SavedBite{}, errors.New("history store is not configured")
	}
	return u.d.History.SaveBite(ctx, types.SavedBite{Query: query, Result: r, Notes: notes, Tags: tags})
}

type ExportInput struct {
	Result    types.SearchResult
	ID        string
	Title     string
	OutDir    string
	Subtitles bool
	CutList   bool
	Reel      string
	// Media, when set together with a Renderer, is cut into an MP4 bite.
	Media         string
	BurnSubtitles bool
	Logf          func(format string, args ...any)
}

// Export writes the requested artifacts for one bite under OutDir and
// returns its manifest entry with paths relative to OutDir.
func (u Usecase) Export(ctx context.Context, in ExportInput) (types.ManifestBite, error) {
	logf := orNop(in.Logf)
	r := in.Result
	mb := types.ManifestBite{
		ID:           in.ID,
		MatchText:    r.MatchText,
		MatchScore:   r.MatchScore,
		MatchQuality: r.MatchQuality,
		Source:       r.Source,
	}
	for _, s := range r.Segments {
		mb.DurationSec += s.Duration()
		mb.Cuts = append(mb.Cuts, types.Cut{In: s.StartTimecode, Out: s.EndTimecode})
	}

	if in.Subtitles {
		p, err := writeASS(in.OutDir, "subtitles", in.ID, r)
		if err != nil {
			return types.ManifestBite{}, err
		}
		mb.Subtitles = p
	}

	if in.CutList {
		p := filepath.Join(in.OutDir, "cuts", in.ID+".edl")
		if err := writeFile(p, []byte(edl.Render(in.Title, in.Reel, r))); err != nil {
			return types.ManifestBite{}, err
		}
		mb.CutList = filepath.ToSlash(filepath.Join("cuts", in.ID+".edl"))
	}

	if in.Media != "" && u.d.Renderer != nil {
		total, err := u.d.Renderer.ProbeDuration(ctx, in.Media)
		if err != nil {
			return types.ManifestBite{}, err
		}
		clipped := r
		clipped.Segments = clampSegments(r.Segments, total.Seconds())
		if len(clipped.Segments) == 0 {
			return types.ManifestBite{}, fmt.Errorf("bite lies outside media (%s long)", total)
		}
		if len(clipped.Segments) != len(r.Segments) {
			logf("%s: %d of %d cuts lie outside media", in.ID, len(r.Segments)-len(clipped.Segments), len(r.Segments))
		}

		// burned subtitles follow the cuts actually rendered
		var burnASS string
		if in.BurnSubtitles {
			rel, err := writeASS(in.OutDir, "clips", in.ID, clipped)
			if err != nil {
				return types.ManifestBite{}, err
			}
			burnASS = filepath.Join(in.OutDir, filepath.FromSlash(rel))
		}

		ranges := make([]ports.Range, len(clipped.Segments))
		for i, s := range clipped.Segments {
			ranges[i] = ports.Range{Start: dur(s.StartTime), End: dur(s.EndTime)}
		}
		clip := filepath.Join(in.OutDir, "clips", in.ID+".mp4")
		if err := os.MkdirAll(filepath.Dir(clip), 0o755); err != nil {
			return types.ManifestBite{}, err
		}
		logf("rendering %s (%d cuts)", in.ID, len(ranges))
		if err := u.d.Renderer.RenderBite(ctx, in.Media, ranges, clip, burnASS); err != nil {
			return types.ManifestBite{}, err
		}
		mb.File = filepath.ToSlash(filepath.Join("clips", in.ID+".mp4"))
	}
	return mb, nil
}

// writeASS renders r into <outDir>/<dir>/<id>.ass and returns the slash
// separated path relative to outDir.
func writeASS(outDir, dir, id string, r types.SearchResult) (string, error) {
	ass, err := subtitles.RenderBiteASS(r)
	if err != nil {
		return "", fmt.Errorf("render subtitles %s: %w", id, err)
	}
	rel := filepath.Join(dir, id+".ass")
	if err := writeFile(filepath.Join(outDir, rel), []byte(ass)); err != nil {
		return "", err
	}
	return filepath.ToSlash(rel), nil
}

// clampSegments cuts segments short at the media length. Segments starting
// past it are dropped, as are words starting past it. A non-positive total
// means the length is unknown and nothing is clamped.
func clampSegments(segs []types.Segment, total float64) []types.Segment {
	if total <= 0 {
		return segs
	}
	var out []types.Segment
	for _, s := range segs {
		if s.StartTime >= total {
			continue
		}
		if s.EndTime > total {
			s.EndTime = total
			s.EndTimecode = timecode.FromSeconds(total)
			var words []types.Word
			for _, w := range s.Words {
				if w.StartTime < total {
					words = append(words, w)
				}
			}
			s.Words = words
		}
		if s.EndTime <= s.StartTime {
			continue
		}
		out = append(out, s)
	}
	return out
}

func writeFile(path string, b []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, b, 0o644)
}

func orNop(logf func(string, ...any)) func(string, ...any) {
	if logf == nil {
		return func(string, ...any) {}
	}
	return logf
}

func dur(sec float64) time.Duration { return time.Duration(sec * float64(time.Second)) }
