package matchstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// SQLiteStore persists matches in the imdb_tmdb table.
type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

func (s *SQLiteStore) FindMatch(ctx context.Context, imdbID string) (*Match, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT tmdb_id, kind FROM imdb_tmdb WHERE imdb_id = ?`, imdbID)
	var m Match
	var kind string
	if err := row.Scan(&m.TMDBID, &kind); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("match lookup for %s: %w", imdbID, err)
	}
	m.Kind = Kind(kind)
	return &m, nil
}

func (s *SQLiteStore) RecordMatch(ctx context.Context, imdbID string, m Match) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO imdb_tmdb (imdb_id, tmdb_id, kind) VALUES (?, ?, ?)
		 ON CONFLICT(imdb_id) DO UPDATE SET tmdb_id = excluded.tmdb_id, kind = excluded.kind`,
		imdbID, m.TMDBID, string(m.Kind))
	if err != nil {
		return fmt.Errorf("record match for %s: %w", imdbID, err)
	}
	return nil
}
