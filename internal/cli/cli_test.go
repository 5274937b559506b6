package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/forPelevin/frankenbite/internal/pipeline"
)

const sampleTranscript = `00:00:01:00 I love programming in TypeScript.
00:00:05:00 The cat sat quietly.
00:00:08:00 Then it walked on the red mat.
00:00:12:00`

// setup isolates config and data dirs and returns a transcript path.
func setup(t *testing.T) string {
	t.Helper()
	t.Setenv("FRANKENBITE_CONFIG_DIR", t.TempDir())
	t.Setenv("FRANKENBITE_DATA_DIR", t.TempDir())
	p := filepath.Join(t.TempDir(), "take1.txt")
	if err := os.WriteFile(p, []byte(sampleTranscript), 0o644); err != nil {
		t.Fatal(err)
	}
	return p
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestSearchCommand(t *testing.T) {
	tp := setup(t)

	out, err := execute(t, "search", tp, "love", "programming")
	if err != nil {
		t.Fatalf("search: %v\n%s", err, out)
	}
	if !strings.Contains(out, "1. [perfect 100] exact") {
		t.Fatalf("missing exact result:\n%s", out)
	}
	if !strings.Contains(out, "00:00:01:00 - 00:00:05:00  I love programming in TypeScript.") {
		t.Fatalf("missing segment line:\n%s", out)
	}

	out, err = execute(t, "history", "love")
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if strings.TrimSpace(out) != "love programming" {
		t.Fatalf("unexpected history output %q", out)
	}
}

func TestSearchCommand_ShowsCuts(t *testing.T) {
	tp := setup(t)

	out, err := execute(t, "search", "--no-history", tp, "cat sat on the mat")
	if err != nil {
		t.Fatalf("search: %v\n%s", err, out)
	}
	if !strings.Contains(out, "frankenbite") || !strings.Contains(out, " [...] ") {
		t.Fatalf("expected a spliced result:\n%s", out)
	}
	if !strings.Contains(out, "   cuts after word ") {
		t.Fatalf("expected cut points for the spliced result:\n%s", out)
	}
}

func TestConfigCommand(t *testing.T) {
	setup(t)
	dir := os.Getenv("FRANKENBITE_CONFIG_DIR")

	out, err := execute(t, "config", "init")
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	path := filepath.Join(dir, "config.yaml")
	if strings.TrimSpace(out) != "wrote "+path {
		t.Fatalf("unexpected output %q", out)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read config: %v", err)
	}
	if !strings.Contains(string(b), "similarity_threshold: 0.6") {
		t.Fatalf("expected default engine settings in:\n%s", b)
	}

	if _, err := execute(t, "config", "init"); err == nil || !strings.Contains(err.Error(), "already exists") {
		t.Fatalf("expected refusal to overwrite, got %v", err)
	}
	if _, err := execute(t, "config", "init", "--force"); err != nil {
		t.Fatalf("config init --force: %v", err)
	}

	out, err = execute(t, "config")
	if err != nil || strings.TrimSpace(out) != path {
		t.Fatalf("expected config path, got %q (%v)", out, err)
	}
}

func TestSearchCommand_Errors(t *testing.T) {
	tp := setup(t)
	tests := []struct {
		name string
		args []string
		want string
	}{
		{name: "missing args", args: []string{"search", tp}, want: "requires at least 2 arg(s)"},
		{name: "bad quality", args: []string{"search", tp, "cat", "--min-quality", "great"}, want: `config: unknown quality "great"`},
		{name: "bad score", args: []string{"search", tp, "cat", "--min-score", "101"}, want: "config: min score"},
		{name: "missing transcript", args: []string{"search", tp + ".nope", "cat"}, want: "config: stat transcript"},
		{name: "media needs out", args: []string{"search", tp, "cat", "--media", tp}, want: "config: media export needs an output directory"},
		{name: "history disabled", args: []string{"saved", "--no-history"}, want: "history is disabled"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := execute(t, tc.args...)
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("expected error containing %q, got %v", tc.want, err)
			}
		})
	}
}

func TestParseCommand(t *testing.T) {
	tp := setup(t)
	out, err := execute(t, "parse", tp)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected 3 segments, got:\n%s", out)
	}
	if !strings.HasPrefix(lines[1], "  2  00:00:05:00 - 00:00:08:00  (3.00s, 4 words)") {
		t.Fatalf("unexpected segment line %q", lines[1])
	}
}

func TestSaveAndSavedCommands(t *testing.T) {
	tp := setup(t)

	out, err := execute(t, "save", tp, "cat", "sat", "--notes", "opener", "--tag", "intro", "--tag", "cat")
	if err != nil {
		t.Fatalf("save: %v\n%s", err, out)
	}
	if !strings.HasPrefix(out, "saved ") {
		t.Fatalf("unexpected save output %q", out)
	}
	id := strings.TrimSuffix(strings.Fields(out)[1], ":")

	out, err = execute(t, "saved")
	if err != nil {
		t.Fatalf("saved: %v", err)
	}
	for _, want := range []string{id, "The cat sat quietly.", "tags: intro, cat", "notes: opener"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in:\n%s", want, out)
		}
	}

	if _, err := execute(t, "saved", "delete", id); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := execute(t, "saved", "delete", id); err == nil {
		t.Fatalf("expected second delete to fail")
	}
	out, err = execute(t, "saved")
	if err != nil || strings.TrimSpace(out) != "" {
		t.Fatalf("expected no saved bites, got %q (%v)", out, err)
	}

	if _, err := execute(t, "save", tp, "cat", "sat", "--rank", "9"); err == nil || !strings.Contains(err.Error(), "out of range") {
		t.Fatalf("expected rank error, got %v", err)
	}
}

func TestWatch_RerunsOnWrite(t *testing.T) {
	dir := t.TempDir()
	tp := filepath.Join(dir, "live.txt")
	if err := os.WriteFile(tp, []byte(sampleTranscript), 0o644); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	cfg := pipeline.Config{TranscriptPath: tp, Query: "purple elephant", NoHistory: true}
	var runs []int
	done := make(chan error, 1)
	go func() {
		done <- watch(ctx, cfg, func(sum pipeline.Summary) error {
			runs = append(runs, len(sum.Results))
			if len(runs) == 1 {
				updated := sampleTranscript + "\n00:00:14:00 A purple elephant appeared.\n00:00:16:00"
				return os.WriteFile(tp, []byte(updated), 0o644)
			}
			cancel()
			return nil
		})
	}()

	if err := <-done; err != nil {
		t.Fatalf("watch: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("expected 2 runs, got %v", runs)
	}
	if runs[0] != 0 || runs[1] == 0 {
		t.Fatalf("expected a hit only after the edit, got %v", runs)
	}
}
