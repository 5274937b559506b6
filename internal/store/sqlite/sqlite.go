// Package sqlite persists search history and saved bites in a SQLite file.
package sqlite

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/forPelevin/frankenbite/internal/ports"
	"github.com/forPelevin/frankenbite/internal/types"
)

//go:embed schema.sql
var schemaSQL string

type Store struct {
	db    *sql.DB
	limit int
	now   func() time.Time
}

// Open opens (creating if needed) the database at path.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create data directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	s, err := New(db)
	if err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// New applies the schema to db and wraps it. The store takes ownership of db.
func New(db *sql.DB) (*Store, error) {
	// one connection keeps ":memory:" databases shared across calls
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(schemaSQL); err != nil {
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}
	return &Store{db: db, limit: ports.DefaultHistoryLimit, now: time.Now}, nil
}

func (s *Store) Close() error { return s.db.Close() }

// Record moves query to the front of the history and drops entries past the
// history limit.
func (s *Store) Record(ctx context.Context, query string) error {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM search_history WHERE query = ?`, query); err != nil {
		return fmt.Errorf("failed to record query: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO search_history (query, searched_at) VALUES (?, ?)`,
		query, s.now().Unix(),
	); err != nil {
		return fmt.Errorf("failed to record query: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `
		DELETE FROM search_history
		WHERE seq NOT IN (SELECT seq FROM search_history ORDER BY seq DESC LIMIT ?)
	`, s.limit); err != nil {
		return fmt.Errorf("failed to trim history: %w", err)
	}
	return tx.Commit()
}

func (s *Store) Recent(ctx context.Context, limit int) ([]string, error) {
	if limit <= 0 || limit > s.limit {
		limit = s.limit
	}
	rows, err := s.db.QueryContext(ctx, `SELECT query FROM search_history ORDER BY seq DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var q string
		if err := rows.Scan(&q); err != nil {
			return nil, fmt.Errorf("failed to scan history: %w", err)
		}
		out = append(out, q)
	}
	return out, rows.Err()
}

func (s *Store) SaveBite(ctx context.Context, bite types.SavedBite) (types.SavedBite, error) {
	if bite.ID == "" {
		bite.ID = uuid.New().String()
	}
	if bite.CreatedAt.IsZero() {
		bite.CreatedAt = s.now().UTC()
	}
	resultJSON, err := json.Marshal(bite.Result)
	if err != nil {
		return types.SavedBite{}, fmt.Errorf("marshal result: %w", err)
	}
	tags := bite.Tags
	if tags == nil {
		tags = []string{}
	}
	tagsJSON, err := json.Marshal(tags)
	if err != nil {
		return types.SavedBite{}, fmt.Errorf("marshal tags: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO saved_bites (id, query, result_json, notes, tags_json, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			query = excluded.query,
			result_json = excluded.result_json,
			notes = excluded.notes,
			tags_json = excluded.tags_json
	`, bite.ID, bite.Query, string(resultJSON), bite.Notes, string(tagsJSON), bite.CreatedAt.UnixNano())
	if err != nil {
		return types.SavedBite{}, fmt.Errorf("failed to save bite: %w", err)
	}
	return bite, nil
}

func (s *Store) ListBites(ctx context.Context) ([]types.SavedBite, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, query, result_json, notes, tags_json, created_at
		FROM saved_bites
		ORDER BY created_at DESC, id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query bites: %w", err)
	}
	defer rows.Close()

	var out []types.SavedBite
	for rows.Next() {
		var (
			b                    types.SavedBite
			resultJSON, tagsJSON string
			created              int64
		)
		if err := rows.Scan(&b.ID, &b.Query, &resultJSON, &b.Notes, &tagsJSON, &created); err != nil {
			return nil, fmt.Errorf("failed to scan bite: %w", err)
		}
		if err := json.Unmarshal([]byte(resultJSON), &b.Result); err != nil {
			return nil, fmt.Errorf("decode bite %s: %w", b.ID, err)
		}
		if err := json.Unmarshal([]byte(tagsJSON), &b.Tags); err != nil {
			return nil, fmt.Errorf("decode bite %s tags: %w", b.ID, err)
		}
		if len(b.Tags) == 0 {
			b.Tags = nil
		}
		b.CreatedAt = time.Unix(0, created).UTC()
		out = append(out, b)
	}
	return out, rows.Err()
}

func (s *Store) DeleteBite(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM saved_bites WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete bite: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete bite: %w", err)
	}
	if n == 0 {
		return ports.ErrBiteNotFound
	}
	return nil
}
