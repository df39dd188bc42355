package snippet

import (
	"context"

	"github.com/corvus-index/corvus/domain/repository"
)

// SnippetStore defines operations for snippet persistence.
type SnippetStore interface {
	// Save persists snippets for a commit.
	Save(ctx context.Context, commitSHA string, snippets []Snippet) error

	// SnippetsForCommit returns snippets for a specific commit.
	SnippetsForCommit(ctx context.Context, commitSHA string, opts ...repository.Option) ([]Snippet, error)

	// CountForCommit returns the number of snippets associated with a commit.
	CountForCommit(ctx context.Context, commitSHA string) (int64, error)

	// DeleteForCommit removes all snippet associations for a commit.
	DeleteForCommit(ctx context.Context, commitSHA string) error

	// ByIDs returns snippets by their SHA identifiers.
	ByIDs(ctx context.Context, ids []string) ([]Snippet, error)

	// BySHA returns a single snippet by its SHA identifier.
	BySHA(ctx context.Context, sha string) (Snippet, error)
}

// CommitIndexStore defines operations for commit index persistence.
type CommitIndexStore interface {
	// Get returns a commit index by SHA.
	Get(ctx context.Context, commitSHA string) (CommitIndex, error)

	// Save persists a commit index.
	Save(ctx context.Context, index CommitIndex) error

	// Delete removes a commit index.
	Delete(ctx context.Context, commitSHA string) error

	// Exists checks if a commit index exists.
	Exists(ctx context.Context, commitSHA string) (bool, error)
}
