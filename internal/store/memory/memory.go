// Package memory is a process-local History used by tests and by runs that
// do not want anything written to disk.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/forPelevin/frankenbite/internal/ports"
	"github.com/forPelevin/frankenbite/internal/types"
)

type Store struct {
	mu      sync.Mutex
	limit   int
	queries []string
	bites   map[string]types.SavedBite
}

func New() *Store {
	return &Store{limit: ports.DefaultHistoryLimit, bites: make(map[string]types.SavedBite)}
}

func (s *Store) Record(_ context.Context, query string) error {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	next := make([]string, 0, len(s.queries)+1)
	next = append(next, query)
	for _, q := range s.queries {
		if q != query {
			next = append(next, q)
		}
	}
	if len(next) > s.limit {
		next = next[:s.limit]
	}
	s.queries = next
	return nil
}

func (s *Store) Recent(_ context.Context, limit int) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if limit <= 0 || limit > len(s.queries) {
		limit = len(s.queries)
	}
	return append([]string(nil), s.queries[:limit]...), nil
}

func (s *Store) SaveBite(_ context.Context, bite types.SavedBite) (types.SavedBite, error) {
	if bite.ID == "" {
		bite.ID = uuid.New().String()
	}
	if bite.CreatedAt.IsZero() {
		bite.CreatedAt = time.Now().UTC()
	}
	s.mu.Lock()
	s.bites[bite.ID] = bite
	s.mu.Unlock()
	return bite, nil
}

func (s *Store) ListBites(_ context.Context) ([]types.SavedBite, error) {
	s.mu.Lock()
	out := make([]types.SavedBite, 0, len(s.bites))
	for _, b := range s.bites {
		out = append(out, b)
	}
	s.mu.Unlock()
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *Store) DeleteBite(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.bites[id]; !ok {
		return ports.ErrBiteNotFound
	}
	delete(s.bites, id)
	return nil
}

var _ ports.History = (*Store)(nil)
