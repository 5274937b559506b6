package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/mudler/xlog"
	"github.com/spf13/cobra"

	"github.com/forPelevin/frankenbite/internal/pipeline"
)

// settle absorbs the burst of events an editor save produces.
const settle = 200 * time.Millisecond

func newWatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch <transcript> <query>...",
		Short: "Re-run a search every time the transcript changes",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := pipelineConfig(cmd, args[0], strings.Join(args[1:], " "), false)
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("config: %w", err)
			}
			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
			defer cancel()
			return watch(ctx, cfg, func(sum pipeline.Summary) error {
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "--- %s\n", time.Now().Format("15:04:05"))
				return printSummary(out, sum, false)
			})
		},
	}
	addSearchFlags(cmd)
	return cmd
}

// watch runs the search once, then again after each write to the transcript,
// until ctx is done. The parent directory is watched so that editors which
// replace the file on save are still picked up.
func watch(ctx context.Context, cfg pipeline.Config, onResult func(pipeline.Summary) error) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer w.Close()

	if err := w.Add(filepath.Dir(cfg.TranscriptPath)); err != nil {
		return fmt.Errorf("watch %s: %w", cfg.TranscriptPath, err)
	}

	run := func() error {
		sum, err := pipeline.Run(ctx, cfg)
		if err != nil {
			return err
		}
		return onResult(sum)
	}
	if err := run(); err != nil {
		return err
	}

	name := filepath.Base(cfg.TranscriptPath)
	var pending <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Base(event.Name) != name || !event.Has(fsnotify.Write|fsnotify.Create) {
				continue
			}
			pending = time.After(settle)
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			xlog.Error("transcript watcher error", "error", err)
		case <-pending:
			pending = nil
			if ctx.Err() != nil {
				return nil
			}
			if err := run(); err != nil {
				// a half-written transcript is expected while editing
				xlog.Warn("search failed", "transcript", cfg.TranscriptPath, "error", err)
			}
		}
	}
}
