package search

import (
	"context"

	"github.com/corvus-index/corvus/domain/repository"
)

// BM25Params fixes the Okapi BM25 parameters used across every backend.
// Both are constants per spec: term-frequency saturation k1=1.5 and
// length-normalization b=0.75. Kept as named constants rather than struct
// fields everywhere a store needs them, since the spec does not make them
// configurable.
const (
	BM25K1 = 1.5
	BM25B  = 0.75
)

// BM25Store indexes and searches a snippet corpus by keyword relevance.
//
// Index is additive and may be called repeatedly as new snippets arrive;
// a full-corpus rebuild (spec: "new index written to a staging location
// then swapped") is a backend concern handled internally by Index/Delete
// rather than exposed here, since every current backend (SQLite FTS5,
// Postgres full-text, VectorChord) already provides atomic visibility for
// its own write path.
type BM25Store interface {
	// Index adds or replaces documents in the corpus.
	Index(ctx context.Context, request IndexRequest) error

	// Find returns documents ranked by descending BM25 score, ties broken
	// by insertion order, filtered/limited by the given options (query
	// text via WithQuery, repository/commit scoping, top-k via
	// repository.WithLimit).
	Find(ctx context.Context, options ...repository.Option) ([]Result, error)

	// DeleteBy removes documents matching the given options, e.g. every
	// snippet of a commit being re-extracted, or of a repository being
	// deleted.
	DeleteBy(ctx context.Context, options ...repository.Option) error
}
