package memory

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"testing"

	"github.com/forPelevin/frankenbite/internal/ports"
	"github.com/forPelevin/frankenbite/internal/types"
)

func TestRecent_MostRecentFirstDeduplicatedAndCapped(t *testing.T) {
	ctx := context.Background()
	s := New()
	for i := 0; i < 12; i++ {
		if err := s.Record(ctx, fmt.Sprintf("q%d", i)); err != nil {
			t.Fatal(err)
		}
	}
	_ = s.Record(ctx, "q5")
	_ = s.Record(ctx, "   ")

	got, err := s.Recent(ctx, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != ports.DefaultHistoryLimit {
		t.Fatalf("expected %d entries, got %v", ports.DefaultHistoryLimit, got)
	}
	if got[0] != "q5" || got[1] != "q11" {
		t.Fatalf("unexpected order: %v", got)
	}
	if top, _ := s.Recent(ctx, 2); !reflect.DeepEqual(top, []string{"q5", "q11"}) {
		t.Fatalf("unexpected limited history: %v", top)
	}
}

func TestBites_SaveListDelete(t *testing.T) {
	ctx := context.Background()
	s := New()
	saved, err := s.SaveBite(ctx, types.SavedBite{Query: "cat", Result: types.SearchResult{MatchText: "the cat"}})
	if err != nil {
		t.Fatal(err)
	}
	if saved.ID == "" || saved.CreatedAt.IsZero() {
		t.Fatalf("expected id and timestamp to be assigned: %+v", saved)
	}
	list, _ := s.ListBites(ctx)
	if len(list) != 1 || list[0].Result.MatchText != "the cat" {
		t.Fatalf("unexpected list: %+v", list)
	}
	if err := s.DeleteBite(ctx, saved.ID); err != nil {
		t.Fatal(err)
	}
	if err := s.DeleteBite(ctx, saved.ID); !errors.Is(err, ports.ErrBiteNotFound) {
		t.Fatalf("expected ErrBiteNotFound, got %v", err)
	}
}
