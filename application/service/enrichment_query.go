package service

import (
	"context"

	"github.com/corvus-index/corvus/domain/enrichment"
)

// EnrichmentExistsParams narrows an enrichment existence check to a commit
// and a specific type/subtype pair.
type EnrichmentExistsParams struct {
	CommitSHA string
	Type      enrichment.Type
	Subtype   enrichment.Subtype
}

// EnrichmentQuery answers the narrow existence and listing questions
// enrichment handlers ask before doing work ("has this commit already
// been summarized?", "what examples were extracted for this commit?").
type EnrichmentQuery struct {
	enrichments *Enrichment
}

// NewEnrichmentQuery creates a new EnrichmentQuery backed by an Enrichment service.
func NewEnrichmentQuery(enrichments *Enrichment) *EnrichmentQuery {
	return &EnrichmentQuery{enrichments: enrichments}
}

// Exists reports whether any enrichment matches the given params.
func (q *EnrichmentQuery) Exists(ctx context.Context, params *EnrichmentExistsParams) (bool, error) {
	if params == nil {
		return false, nil
	}

	typ := params.Type
	subtype := params.Subtype
	count, err := q.enrichments.Count(ctx, &EnrichmentListParams{
		CommitSHA: params.CommitSHA,
		Type:      &typ,
		Subtype:   &subtype,
	})
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// List returns enrichments matching the given params.
func (q *EnrichmentQuery) List(ctx context.Context, params *EnrichmentListParams) ([]enrichment.Enrichment, error) {
	return q.enrichments.List(ctx, params)
}
