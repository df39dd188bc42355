package enrichment

import (
	"context"

	"github.com/corvus-index/corvus/domain/repository"
)

// EnrichmentStore defines operations for persisting and retrieving enrichments.
// Commit SHA filtering is supported via WithCommitSHA / WithCommitSHAs options
// passed to Find and Count.
type EnrichmentStore interface {
	repository.Store[Enrichment]
	DeleteBy(ctx context.Context, options ...repository.Option) error
	Count(ctx context.Context, options ...repository.Option) (int64, error)
	CountByCommitSHA(ctx context.Context, commitSHA string, options ...repository.Option) (int64, error)

	// FindByEntityKey returns enrichments attached to entities of the given type.
	FindByEntityKey(ctx context.Context, key EntityTypeKey) ([]Enrichment, error)

	// FindByCommitSHA returns enrichments associated with a single commit,
	// optionally narrowed by additional options (e.g. type/subtype filters).
	FindByCommitSHA(ctx context.Context, commitSHA string, options ...repository.Option) ([]Enrichment, error)

	// FindByCommitSHAs returns enrichments associated with any of the given commits.
	FindByCommitSHAs(ctx context.Context, commitSHAs []string, options ...repository.Option) ([]Enrichment, error)

	// CountByCommitSHAs returns the number of enrichments associated with any of the given commits.
	CountByCommitSHAs(ctx context.Context, commitSHAs []string, options ...repository.Option) (int64, error)
}

// AssociationStore defines operations for persisting and retrieving enrichment associations.
type AssociationStore interface {
	repository.Store[Association]
	DeleteBy(ctx context.Context, options ...repository.Option) error
	Count(ctx context.Context, options ...repository.Option) (int64, error)
}
