package sqlite

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/forPelevin/frankenbite/internal/ports"
	"github.com/forPelevin/frankenbite/internal/testutil"
	"github.com/forPelevin/frankenbite/internal/types"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(testutil.OpenTestDB(t))
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	return s
}

func TestRecord_KeepsTenMostRecentUnique(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	for i := 0; i < 12; i++ {
		if err := s.Record(ctx, fmt.Sprintf("query %d", i)); err != nil {
			t.Fatalf("record: %v", err)
		}
	}
	if err := s.Record(ctx, "query 4"); err != nil {
		t.Fatalf("record: %v", err)
	}
	if err := s.Record(ctx, ""); err != nil {
		t.Fatalf("record blank: %v", err)
	}

	got, err := s.Recent(ctx, 0)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(got) != 10 {
		t.Fatalf("expected 10 entries, got %d: %v", len(got), got)
	}
	if got[0] != "query 4" || got[1] != "query 11" {
		t.Fatalf("unexpected order: %v", got)
	}
	seen := map[string]bool{}
	for _, q := range got {
		if seen[q] {
			t.Fatalf("duplicate %q in %v", q, got)
		}
		seen[q] = true
	}

	var rows int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM search_history`).Scan(&rows); err != nil {
		t.Fatalf("count: %v", err)
	}
	if rows != 10 {
		t.Fatalf("expected table trimmed to 10 rows, got %d", rows)
	}
}

func TestBites_RoundTrip(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return base }

	coherence := 0.44
	first, err := s.SaveBite(ctx, types.SavedBite{
		Query: "cat sat on the mat",
		Result: types.SearchResult{
			ID:             "result-0",
			MatchText:      "the cat sat [...] on the red mat",
			MatchScore:     79,
			MatchQuality:   types.QualityMedium,
			Source:         types.SourceFrankenbite,
			CoherenceScore: &coherence,
			Segments: []types.Segment{
				{Text: "the cat sat", StartTimecode: "00:00:01:00", EndTimecode: "00:00:03:00", StartTime: 1, EndTime: 3},
				{Text: "on the red mat", StartTimecode: "00:00:03:00", EndTimecode: "00:00:06:00", StartTime: 3, EndTime: 6},
			},
		},
		Notes: "opening line",
		Tags:  []string{"intro"},
	})
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if first.ID == "" {
		t.Fatalf("expected generated id")
	}

	s.now = func() time.Time { return base.Add(time.Minute) }
	second, err := s.SaveBite(ctx, types.SavedBite{Query: "hello", Result: types.SearchResult{MatchText: "hello"}})
	if err != nil {
		t.Fatalf("save: %v", err)
	}

	list, err := s.ListBites(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 2 || list[0].ID != second.ID || list[1].ID != first.ID {
		t.Fatalf("expected newest first, got %+v", list)
	}
	if !reflect.DeepEqual(list[1], first) {
		t.Fatalf("bite did not round trip:\n got %+v\nwant %+v", list[1], first)
	}

	first.Notes = "edited"
	if _, err := s.SaveBite(ctx, first); err != nil {
		t.Fatalf("update: %v", err)
	}
	list, _ = s.ListBites(ctx)
	if len(list) != 2 || list[1].Notes != "edited" {
		t.Fatalf("expected update in place, got %+v", list)
	}

	if err := s.DeleteBite(ctx, second.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := s.DeleteBite(ctx, second.ID); !errors.Is(err, ports.ErrBiteNotFound) {
		t.Fatalf("expected ErrBiteNotFound, got %v", err)
	}
}

func TestOpen_CreatesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "frankenbite.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer s.Close()
	if err := s.Record(context.Background(), "persisted"); err != nil {
		t.Fatalf("record: %v", err)
	}

	again, err := Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer again.Close()
	got, err := again.Recent(context.Background(), 1)
	if err != nil || len(got) != 1 || got[0] != "persisted" {
		t.Fatalf("expected persisted query, got %v (%v)", got, err)
	}
}

var _ ports.History = (*Store)(nil)
