// Package matchstore persists IMDb→TMDB match outcomes so repeat lookups can
// skip the cross-reference call. The store is purely an optimization: every
// consumer must behave correctly against NoopStore.
package matchstore

import "context"

// Kind records what a stored match resolved to.
type Kind string

const (
	KindMovie  Kind = "M"
	KindSeries Kind = "T"
	KindNone   Kind = "N" // explicit no-match, recorded to short-circuit future lookups
)

// Match is one recorded cross-reference outcome. TMDBID is zero for KindNone.
type Match struct {
	TMDBID int64
	Kind   Kind
}

// Store is the optional persistence capability.
type Store interface {
	// FindMatch returns the recorded match for an IMDb id, or nil when the id
	// has never been recorded.
	FindMatch(ctx context.Context, imdbID string) (*Match, error)
	// RecordMatch stores a match outcome. Double-writing the same id is benign.
	RecordMatch(ctx context.Context, imdbID string, m Match) error
}

// NoopStore is the default when no database is configured.
type NoopStore struct{}

func (NoopStore) FindMatch(context.Context, string) (*Match, error) { return nil, nil }
func (NoopStore) RecordMatch(context.Context, string, Match) error  { return nil }
