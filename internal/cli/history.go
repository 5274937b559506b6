package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/forPelevin/frankenbite/internal/config"
	"github.com/forPelevin/frankenbite/internal/domain/timecode"
	"github.com/forPelevin/frankenbite/internal/domain/transcript"
	"github.com/forPelevin/frankenbite/internal/pipeline"
	"github.com/forPelevin/frankenbite/internal/usecase"
)

func newParseCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "parse <transcript>",
		Short: "Show the timecoded segments of a transcript",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read transcript: %w", err)
			}
			segs := transcript.Parse(string(raw))
			if len(segs) == 0 {
				return usecase.ErrNotTimecoded
			}
			w := cmd.OutOrStdout()
			if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
				enc := json.NewEncoder(w)
				enc.SetIndent("", "  ")
				return enc.Encode(segs)
			}
			for i, s := range segs {
				fmt.Fprintf(w, "%3d  %s - %s  (%.2fs, %d words)  %s\n",
					i+1, timecode.Format(s.StartTimecode), timecode.Format(s.EndTimecode),
					s.Duration(), len(s.Words), s.Text)
			}
			return nil
		},
	}
	cmd.Flags().Bool("json", false, "Print segments as JSON")
	return cmd
}

func newHistoryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "history [partial]",
		Short: "List recent queries, optionally fuzzy-filtered",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withUsecase(cmd, func(ctx context.Context, uc usecase.Usecase) error {
				var partial string
				if len(args) == 1 {
					partial = args[0]
				}
				queries, err := uc.SuggestQueries(ctx, partial, 0)
				if err != nil {
					return err
				}
				for _, q := range queries {
					fmt.Fprintln(cmd.OutOrStdout(), q)
				}
				return nil
			})
		},
	}
}

func newSaveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "save <transcript> <query>...",
		Short: "Search and keep one result as a saved bite",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := strings.Join(args[1:], " ")
			raw, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read transcript: %w", err)
			}
			rank, _ := cmd.Flags().GetInt("rank")
			notes, _ := cmd.Flags().GetString("notes")
			tags, _ := cmd.Flags().GetStringSlice("tag")

			return withUsecase(cmd, func(ctx context.Context, uc usecase.Usecase) error {
				res, err := uc.Search(ctx, usecase.Input{Transcript: string(raw), Query: query, Logf: logf})
				if err != nil {
					return err
				}
				if rank < 1 || rank > len(res.Results) {
					return fmt.Errorf("rank %d out of range: %d results", rank, len(res.Results))
				}
				bite, err := uc.SaveBite(ctx, query, res.Results[rank-1], notes, tags)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "saved %s: %s\n", bite.ID, bite.Result.MatchText)
				return nil
			})
		},
	}
	cmd.Flags().Int("rank", 1, "Which result to save, 1-based")
	cmd.Flags().String("notes", "", "Free-form notes")
	cmd.Flags().StringSlice("tag", nil, "Tag (repeatable)")
	return cmd
}

func newSavedCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "saved",
		Short: "List saved bites",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withHistory(cmd, func(ctx context.Context, deps usecase.Deps) error {
				bites, err := deps.History.ListBites(ctx)
				if err != nil {
					return err
				}
				w := cmd.OutOrStdout()
				for _, b := range bites {
					fmt.Fprintf(w, "%s  %s  [%s %d]  %q\n", b.ID, b.CreatedAt.Local().Format("2006-01-02 15:04"),
						b.Result.MatchQuality, b.Result.MatchScore, b.Result.MatchText)
					if len(b.Tags) > 0 {
						fmt.Fprintf(w, "    tags: %s\n", strings.Join(b.Tags, ", "))
					}
					if b.Notes != "" {
						fmt.Fprintf(w, "    notes: %s\n", b.Notes)
					}
				}
				return nil
			})
		},
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a saved bite",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withHistory(cmd, func(ctx context.Context, deps usecase.Deps) error {
				return deps.History.DeleteBite(ctx, args[0])
			})
		},
	})
	return cmd
}

func withUsecase(cmd *cobra.Command, fn func(ctx context.Context, uc usecase.Usecase) error) error {
	return withHistory(cmd, func(ctx context.Context, deps usecase.Deps) error {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("config: %w", err)
		}
		return fn(ctx, usecase.New(deps, cfg.Engine))
	})
}

func withHistory(cmd *cobra.Command, fn func(ctx context.Context, deps usecase.Deps) error) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	noHistory, _ := cmd.Flags().GetBool("no-history")
	if noHistory || cfg.History.Disabled {
		return errors.New("history is disabled")
	}
	path, err := cfg.HistoryPath()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	hist, closeHist, err := pipeline.OpenHistory(path, false)
	if err != nil {
		return err
	}
	defer closeHist()
	return fn(cmd.Context(), usecase.Deps{History: hist})
}
