package cli

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/mudler/xlog"
	"github.com/spf13/cobra"
)

func Main() {
	_ = godotenv.Load() // best-effort: load .env if present

	root := newRootCmd()
	root.SetOut(os.Stdout)
	root.SetErr(os.Stderr)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "frankenbite",
		Short:         "Find exact quotes and spliced frankenbites in timecoded transcripts",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			level, _ := cmd.Flags().GetString("log-level")
			format, _ := cmd.Flags().GetString("log-format")
			xlog.SetLogger(xlog.NewLogger(xlog.LogLevel(level), format))
		},
	}

	root.PersistentFlags().String("log-level", getenvDefault("FRANKENBITE_LOG_LEVEL", "warn"), "Log level (debug, info, warn, error)")
	root.PersistentFlags().String("log-format", getenvDefault("FRANKENBITE_LOG_FORMAT", "text"), "Log format (text, json)")
	root.PersistentFlags().Bool("no-history", false, "Do not read or write the search history database")

	root.AddCommand(
		newSearchCmd(),
		newWordCmd(),
		newParseCmd(),
		newHistoryCmd(),
		newSaveCmd(),
		newSavedCmd(),
		newWatchCmd(),
		newConfigCmd(),
	)
	return root
}

func getenvDefault(k, def string) string {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	return v
}

// logf adapts printf-style pipeline logging to xlog.
func logf(format string, args ...any) {
	xlog.Info(fmt.Sprintf(format, args...))
}
