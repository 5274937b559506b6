package pipeline

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"github.com/forPelevin/frankenbite/internal/domain/match"
	"github.com/forPelevin/frankenbite/internal/ports"
	"github.com/forPelevin/frankenbite/internal/ports/adapters/ffmpeg"
	"github.com/forPelevin/frankenbite/internal/store/memory"
	"github.com/forPelevin/frankenbite/internal/store/sqlite"
	"github.com/forPelevin/frankenbite/internal/types"
	"github.com/forPelevin/frankenbite/internal/usecase"
)

type Config struct {
	TranscriptPath string
	Query          string
	WordOnly       bool
	Filter         match.Filter
	Engine         match.Config

	// OutDir is the root for run directories. Empty means search only,
	// nothing is written.
	OutDir    string
	Subtitles bool
	CutList   bool
	Reel      string

	// Media is the source recording. When set every result is also cut
	// into an MP4.
	Media         string
	BurnSubtitles bool
	FFmpegPath    string
	FFprobePath   string

	// HistoryPath is the SQLite history database. NoHistory keeps history
	// in memory for this run only.
	HistoryPath string
	NoHistory   bool

	Rand match.Intner
	Logf func(format string, args ...any)
}

func (c Config) Validate() error {
	if c.TranscriptPath == "" {
		return errors.New("transcript is empty")
	}
	if _, err := os.Stat(c.TranscriptPath); err != nil {
		return fmt.Errorf("stat transcript: %w", err)
	}
	if strings.TrimSpace(c.Query) == "" {
		return errors.New("query is empty")
	}
	if c.Media != "" {
		if c.OutDir == "" {
			return errors.New("media export needs an output directory")
		}
		if _, err := os.Stat(c.Media); err != nil {
			return fmt.Errorf("stat media: %w", err)
		}
	}
	if !c.NoHistory && c.HistoryPath == "" {
		return errors.New("history path is required unless history is disabled")
	}
	return nil
}

// Summary is what a run produced. RunDir is empty when nothing was written.
type Summary struct {
	Manifest types.Manifest
	Results  []types.SearchResult
	RunDir   string
}

func Run(ctx context.Context, cfg Config) (Summary, error) {
	logf := cfg.Logf
	if logf == nil {
		logf = func(string, ...any) {}
	}

	raw, err := os.ReadFile(cfg.TranscriptPath)
	if err != nil {
		return Summary{}, fmt.Errorf("read transcript: %w", err)
	}

	hist, closeHist, err := OpenHistory(cfg.HistoryPath, cfg.NoHistory)
	if err != nil {
		return Summary{}, err
	}
	defer closeHist()

	deps := usecase.Deps{History: hist, Rand: cfg.Rand}
	if cfg.Media != "" {
		deps.Renderer = ffmpeg.New(cfg.FFmpegPath, cfg.FFprobePath)
	}
	uc := usecase.New(deps, cfg.Engine)

	res, err := uc.Search(ctx, usecase.Input{
		Transcript: string(raw),
		Query:      cfg.Query,
		WordOnly:   cfg.WordOnly,
		Filter:     cfg.Filter,
		Logf:       logf,
	})
	if err != nil {
		return Summary{}, err
	}

	sum := Summary{
		Results: res.Results,
		Manifest: types.Manifest{
			Transcript: cfg.TranscriptPath,
			Query:      cfg.Query,
			Segments:   len(res.Segments),
			NotFound:   res.NotFound,
		},
	}
	for i, r := range res.Results {
		sum.Manifest.Results = append(sum.Manifest.Results, types.ManifestBite{
			ID:           biteID(i),
			MatchText:    r.MatchText,
			MatchScore:   r.MatchScore,
			MatchQuality: r.MatchQuality,
			Source:       r.Source,
		})
	}
	if cfg.OutDir == "" {
		return sum, nil
	}

	runOutDir := buildRunOutDir(cfg.OutDir, cfg.TranscriptPath, time.Now().UTC())
	if err := os.MkdirAll(runOutDir, 0o755); err != nil {
		return Summary{}, err
	}
	logf("output run dir: %s", runOutDir)

	for i, r := range res.Results {
		mb, err := uc.Export(ctx, usecase.ExportInput{
			Result:        r,
			ID:            biteID(i),
			Title:         cfg.Query,
			OutDir:        runOutDir,
			Subtitles:     cfg.Subtitles,
			CutList:       cfg.CutList,
			Reel:          cfg.Reel,
			Media:         cfg.Media,
			BurnSubtitles: cfg.BurnSubtitles,
			Logf:          logf,
		})
		if err != nil {
			return Summary{}, fmt.Errorf("export %s: %w", biteID(i), err)
		}
		sum.Manifest.Results[i] = mb
	}

	b, err := json.MarshalIndent(sum.Manifest, "", "  ")
	if err != nil {
		return Summary{}, fmt.Errorf("marshal manifest: %w", err)
	}
	manifestPath := filepath.Join(runOutDir, "results.json")
	if err := os.WriteFile(manifestPath, b, 0o644); err != nil {
		return Summary{}, err
	}
	logf("manifest written (%d results): %s", len(sum.Manifest.Results), manifestPath)
	sum.RunDir = runOutDir
	return sum, nil
}

// OpenHistory returns the SQLite store at path, or an in-memory store when
// disabled. The returned func releases it.
func OpenHistory(path string, disabled bool) (ports.History, func() error, error) {
	if disabled {
		return memory.New(), func() error { return nil }, nil
	}
	s, err := sqlite.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open history: %w", err)
	}
	return s, s.Close, nil
}

func biteID(i int) string { return fmt.Sprintf("%03d", i+1) }

func buildRunOutDir(outRoot, transcriptPath string, now time.Time) string {
	name := strings.TrimSuffix(filepath.Base(transcriptPath), filepath.Ext(transcriptPath))
	name = normalizePathSegment(name)
	if name == "" {
		name = "transcript"
	}
	ts := now.UTC().Format("20060102-150405Z")
	runSeed := fmt.Sprintf("%s|%d", transcriptPath, now.UTC().UnixNano())
	suffix := hash(runSeed)[:6]
	return filepath.Join(outRoot, fmt.Sprintf("%s-%s-%s", name, ts, suffix))
}

func normalizePathSegment(s string) string {
	var b strings.Builder
	prevDash := false
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r):
			b.WriteRune(r)
			prevDash = false
		default:
			if !prevDash {
				b.WriteByte('-')
				prevDash = true
			}
		}
	}
	return strings.Trim(b.String(), "-")
}

func hash(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])[:12]
}

// ensure adapters implement ports
var _ ports.Renderer = (*ffmpeg.Adapter)(nil)
var _ ports.History = (*sqlite.Store)(nil)
var _ ports.History = (*memory.Store)(nil)
