package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/corvus-index/corvus/domain/repository"
	"github.com/corvus-index/corvus/domain/search"
)

// ErrEmptyQuery indicates an empty search query.
var ErrEmptyQuery = errors.New("search query cannot be empty")

// ErrInvalidTopK indicates an invalid top-k value.
var ErrInvalidTopK = errors.New("top-k must be positive")

// BM25 sits in front of a search.BM25Store and enforces invariants the
// store itself shouldn't have to re-derive: blank documents and queries
// never reach the backend, and a batch naming the same snippet id twice
// keeps only the last occurrence, since snippet identity is content-hash
// keyed and a repeated id always means "replace", never "append".
type BM25 struct {
	store search.BM25Store
}

// NewBM25 wires a BM25 domain service around a concrete store.
func NewBM25(store search.BM25Store) (*BM25, error) {
	if store == nil {
		return nil, fmt.Errorf("NewBM25: nil store")
	}
	return &BM25{store: store}, nil
}

// Index forwards a batch to the store. NewIndexRequest already enforces
// the "blank/duplicate snippet ids don't reach a backend" invariant, so
// an empty request after that filtering is a legitimate no-op rather than
// an error.
func (s *BM25) Index(ctx context.Context, request search.IndexRequest) error {
	if len(request.Documents()) == 0 {
		return nil
	}
	return s.store.Index(ctx, request)
}

// Find runs a keyword search, rejecting an empty or whitespace-only query
// before it reaches the backend rather than letting every store
// implementation re-derive the same guard.
func (s *BM25) Find(ctx context.Context, query string, options ...repository.Option) ([]search.Result, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, ErrEmptyQuery
	}

	combined := make([]repository.Option, 0, len(options)+1)
	combined = append(combined, search.WithQuery(query))
	combined = append(combined, options...)
	return s.store.Find(ctx, combined...)
}

// DeleteBy forwards to the store; an empty option set is a legitimate
// "delete everything matched by the caller's scope" request (e.g. a
// repository-delete cascade), so no domain-level validation applies here.
func (s *BM25) DeleteBy(ctx context.Context, options ...repository.Option) error {
	return s.store.DeleteBy(ctx, options...)
}
