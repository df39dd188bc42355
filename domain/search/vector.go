package search

import (
	"context"

	"github.com/corvus-index/corvus/domain/repository"
)

// VectorStore defines operations for vector similarity search. The SQLite
// backend (infrastructure/search/vector_sqlite.go) implements it and owns
// its embedding column and distance computation; callers use this
// interface rather than the concrete type.
type VectorStore interface {
	// Index adds documents to the vector index with embeddings.
	Index(ctx context.Context, request IndexRequest) error

	// Find performs vector similarity search using options.
	// Embedding must be passed via WithEmbedding.
	Find(ctx context.Context, options ...repository.Option) ([]Result, error)

	// Exists checks whether any row matches the given options.
	Exists(ctx context.Context, options ...repository.Option) (bool, error)

	// SnippetIDs returns snippet IDs matching the given options.
	SnippetIDs(ctx context.Context, options ...repository.Option) ([]string, error)

	// DeleteBy removes documents matching the given options.
	DeleteBy(ctx context.Context, options ...repository.Option) error
}
