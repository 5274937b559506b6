package pipeline

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/forPelevin/frankenbite/internal/store/sqlite"
	"github.com/forPelevin/frankenbite/internal/types"
)

const transcript = `00:00:01:00 I love programming in TypeScript.
00:00:05:00 The cat sat quietly.
00:00:08:00 Then it walked on the red mat.
00:00:12:00`

func writeTranscript(t *testing.T) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "Interview Take 1.txt")
	if err := os.WriteFile(p, []byte(transcript), 0o644); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestBuildRunOutDir(t *testing.T) {
	now := time.Date(2026, 2, 12, 10, 30, 45, 1234, time.UTC)
	got := buildRunOutDir("out", "/tmp/My Cool.Interview.txt", now)
	base := filepath.Base(got)
	if filepath.Dir(got) != "out" {
		t.Fatalf("unexpected parent dir: %s", got)
	}
	if !strings.HasPrefix(base, "my-cool-interview-20260212-103045Z-") {
		t.Fatalf("unexpected run dir format: %s", base)
	}
	if len(base) != len("my-cool-interview-20260212-103045Z-")+6 {
		t.Fatalf("unexpected run dir suffix length: %s", base)
	}
}

func TestNormalizePathSegment(t *testing.T) {
	tests := map[string]string{
		"  My Cool.Video  ": "my-cool-video",
		"___":               "",
		"abc123":            "abc123",
		"Name (v2)!":        "name-v2",
	}
	for in, want := range tests {
		t.Run(in, func(t *testing.T) {
			if got := normalizePathSegment(in); got != want {
				t.Fatalf("normalizePathSegment(%q) = %q, want %q", in, got, want)
			}
		})
	}
}

func TestConfigValidate(t *testing.T) {
	tp := writeTranscript(t)
	tests := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{name: "ok", cfg: Config{TranscriptPath: tp, Query: "cat", NoHistory: true}},
		{name: "no transcript", cfg: Config{Query: "cat", NoHistory: true}, wantErr: "transcript is empty"},
		{name: "missing transcript", cfg: Config{TranscriptPath: tp + ".nope", Query: "cat", NoHistory: true}, wantErr: "stat transcript"},
		{name: "blank query", cfg: Config{TranscriptPath: tp, Query: "  ", NoHistory: true}, wantErr: "query is empty"},
		{name: "media without out", cfg: Config{TranscriptPath: tp, Query: "cat", NoHistory: true, Media: tp}, wantErr: "output directory"},
		{name: "history path", cfg: Config{TranscriptPath: tp, Query: "cat"}, wantErr: "history path"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.cfg.Validate()
			if tc.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tc.wantErr) {
				t.Fatalf("expected error containing %q, got %v", tc.wantErr, err)
			}
		})
	}
}

func TestRun_SearchOnlyWritesNothing(t *testing.T) {
	out := t.TempDir()
	sum, err := Run(context.Background(), Config{
		TranscriptPath: writeTranscript(t),
		Query:          "love programming",
		NoHistory:      true,
	})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if sum.RunDir != "" {
		t.Fatalf("expected no run dir, got %q", sum.RunDir)
	}
	if len(sum.Manifest.Results) == 0 || sum.Manifest.Results[0].ID != "001" {
		t.Fatalf("unexpected manifest: %+v", sum.Manifest)
	}
	entries, _ := os.ReadDir(out)
	if len(entries) != 0 {
		t.Fatalf("expected empty dir, got %d entries", len(entries))
	}
}

func TestRun_WritesManifestAndArtifacts(t *testing.T) {
	out := t.TempDir()
	hist := filepath.Join(t.TempDir(), "history.db")
	sum, err := Run(context.Background(), Config{
		TranscriptPath: writeTranscript(t),
		Query:          "cat sat on the mat",
		OutDir:         out,
		Subtitles:      true,
		CutList:        true,
		Reel:           "AX",
		HistoryPath:    hist,
	})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if !strings.HasPrefix(filepath.Base(sum.RunDir), "interview-take-1-") {
		t.Fatalf("unexpected run dir %q", sum.RunDir)
	}

	b, err := os.ReadFile(filepath.Join(sum.RunDir, "results.json"))
	if err != nil {
		t.Fatalf("read manifest: %v", err)
	}
	var m types.Manifest
	if err := json.Unmarshal(b, &m); err != nil {
		t.Fatalf("decode manifest: %v", err)
	}
	if m.Query != "cat sat on the mat" || m.Segments != 3 || len(m.Results) == 0 {
		t.Fatalf("unexpected manifest: %+v", m)
	}
	for _, r := range m.Results {
		for _, rel := range []string{r.Subtitles, r.CutList} {
			if rel == "" {
				t.Fatalf("missing artifact path in %+v", r)
			}
			if _, err := os.Stat(filepath.Join(sum.RunDir, rel)); err != nil {
				t.Fatalf("artifact %s: %v", rel, err)
			}
		}
	}

	store, err := sqlite.Open(hist)
	if err != nil {
		t.Fatalf("open history: %v", err)
	}
	defer store.Close()
	recent, err := store.Recent(context.Background(), 0)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(recent) != 1 || recent[0] != "cat sat on the mat" {
		t.Fatalf("unexpected history %v", recent)
	}
}
