package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/forPelevin/frankenbite/internal/config"
	"github.com/forPelevin/frankenbite/internal/domain/match"
	"github.com/forPelevin/frankenbite/internal/domain/timecode"
	"github.com/forPelevin/frankenbite/internal/pipeline"
	"github.com/forPelevin/frankenbite/internal/types"
)

func newSearchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search <transcript> <query>...",
		Short: "Search a transcript for a quote, splicing segments when needed",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSearch(cmd, args[0], strings.Join(args[1:], " "), false)
		},
	}
	addSearchFlags(cmd)
	addExportFlags(cmd)
	return cmd
}

func newWordCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "word <transcript> <word>",
		Short: "List every segment containing a word",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSearch(cmd, args[0], args[1], true)
		},
	}
	cmd.Flags().Bool("json", false, "Print results as JSON")
	addExportFlags(cmd)
	return cmd
}

func addSearchFlags(cmd *cobra.Command) {
	cmd.Flags().Bool("json", false, "Print results as JSON")
	cmd.Flags().String("min-quality", "", "Drop results below this quality (perfect, high, medium, low)")
	cmd.Flags().Int("min-score", 0, "Drop results scoring below this")
	cmd.Flags().Int("max-segments", 0, "Drop results splicing more segments than this")

	// Hidden tuning flags (override config.yaml)
	cmd.Flags().Float64("threshold", 0, "Similarity threshold 0-1")
	cmd.Flags().Int("max-results", 0, "Maximum ranked results")
	_ = cmd.Flags().MarkHidden("threshold")
	_ = cmd.Flags().MarkHidden("max-results")
}

func addExportFlags(cmd *cobra.Command) {
	cmd.Flags().String("out", "", "Write results.json and bite artifacts under this directory")
	cmd.Flags().String("media", "", "Source recording to cut bites from (needs --out and ffmpeg)")
	cmd.Flags().Bool("burn", false, "Burn subtitles into rendered bites")
}

func runSearch(cmd *cobra.Command, transcriptPath, query string, wordOnly bool) error {
	cfg, err := pipelineConfig(cmd, transcriptPath, query, wordOnly)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()
	ctx, cancelTimeout := context.WithTimeout(ctx, time.Hour)
	defer cancelTimeout()

	sum, err := pipeline.Run(ctx, cfg)
	if err != nil {
		return err
	}
	asJSON, _ := cmd.Flags().GetBool("json")
	return printSummary(cmd.OutOrStdout(), sum, asJSON)
}

// pipelineConfig merges config.yaml with the command's flags.
func pipelineConfig(cmd *cobra.Command, transcriptPath, query string, wordOnly bool) (pipeline.Config, error) {
	fileCfg, err := config.Load()
	if err != nil {
		return pipeline.Config{}, fmt.Errorf("config: %w", err)
	}

	absIn, err := filepath.Abs(transcriptPath)
	if err != nil {
		return pipeline.Config{}, err
	}

	filter, err := filterFromFlags(cmd)
	if err != nil {
		return pipeline.Config{}, fmt.Errorf("config: %w", err)
	}

	engine := fileCfg.Engine
	if v, _ := cmd.Flags().GetFloat64("threshold"); v > 0 {
		engine.SimilarityThreshold = v
	}
	if v, _ := cmd.Flags().GetInt("max-results"); v > 0 {
		engine.MaxResults = v
	}

	noHistory, _ := cmd.Flags().GetBool("no-history")
	noHistory = noHistory || fileCfg.History.Disabled
	var histPath string
	if !noHistory {
		if histPath, err = fileCfg.HistoryPath(); err != nil {
			return pipeline.Config{}, fmt.Errorf("config: %w", err)
		}
	}

	outDir, _ := cmd.Flags().GetString("out")
	media, _ := cmd.Flags().GetString("media")
	burn, _ := cmd.Flags().GetBool("burn")
	if media != "" {
		if media, err = filepath.Abs(media); err != nil {
			return pipeline.Config{}, err
		}
	}

	return pipeline.Config{
		TranscriptPath: absIn,
		Query:          query,
		WordOnly:       wordOnly,
		Filter:         filter,
		Engine:         engine,

		OutDir:    outDir,
		Subtitles: fileCfg.Export.Subtitles,
		CutList:   fileCfg.Export.CutList,
		Reel:      fileCfg.Export.Reel,

		Media:         media,
		BurnSubtitles: burn,
		FFmpegPath:    getenvDefault("FFMPEG_PATH", orDefault(fileCfg.Export.FFmpegPath, "ffmpeg")),
		FFprobePath:   getenvDefault("FFPROBE_PATH", orDefault(fileCfg.Export.FFprobePath, "ffprobe")),

		HistoryPath: histPath,
		NoHistory:   noHistory,

		Rand: rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0)),
		Logf: logf,
	}, nil
}

func filterFromFlags(cmd *cobra.Command) (match.Filter, error) {
	var f match.Filter
	if cmd.Flags().Lookup("min-quality") == nil {
		return f, nil
	}
	q, _ := cmd.Flags().GetString("min-quality")
	switch mq := types.MatchQuality(strings.ToLower(q)); mq {
	case "":
	case types.QualityPerfect, types.QualityHigh, types.QualityMedium, types.QualityLow:
		f.MinQuality = mq
	default:
		return f, fmt.Errorf("unknown quality %q", q)
	}
	f.MinScore, _ = cmd.Flags().GetInt("min-score")
	f.MaxSegments, _ = cmd.Flags().GetInt("max-segments")
	if f.MinScore < 0 || f.MinScore > 100 {
		return f, errors.New("min score must be within 0-100")
	}
	if f.MaxSegments < 0 {
		return f, errors.New("max segments must be >= 0")
	}
	return f, nil
}

func printSummary(w io.Writer, sum pipeline.Summary, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(sum.Results)
	}
	if len(sum.Results) == 0 {
		fmt.Fprintln(w, sum.Manifest.NotFound)
		return nil
	}
	printResults(w, sum.Results)
	if sum.RunDir != "" {
		fmt.Fprintf(w, "\nwritten to %s\n", sum.RunDir)
	}
	return nil
}

func printResults(w io.Writer, results []types.SearchResult) {
	for i, r := range results {
		fmt.Fprintf(w, "%d. [%s %d] %s\n", i+1, r.MatchQuality, r.MatchScore, r.Source)
		for _, s := range r.Segments {
			fmt.Fprintf(w, "   %s - %s  %s\n", timecode.Format(s.StartTimecode), timecode.Format(s.EndTimecode), s.Text)
		}
		if cuts := match.CutPoints(r); len(cuts) > 0 {
			fmt.Fprintf(w, "   => %s\n", r.MatchText)
			fmt.Fprintf(w, "   cuts after word %s\n", joinInts(cuts))
		}
	}
}

func joinInts(v []int) string {
	parts := make([]string, len(v))
	for i, n := range v {
		parts[i] = strconv.Itoa(n)
	}
	return strings.Join(parts, ", ")
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
