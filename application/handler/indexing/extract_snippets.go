package indexing

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/corvus-index/corvus/application/handler"
	"github.com/corvus-index/corvus/domain/repository"
	"github.com/corvus-index/corvus/domain/snippet"
	"github.com/corvus-index/corvus/domain/task"
	"github.com/corvus-index/corvus/infrastructure/slicing"
)

// ExtractSnippets extracts code snippets from commit files using AST-based slicing.
type ExtractSnippets struct {
	repoStore      repository.RepositoryStore
	snippetStore   snippet.SnippetStore
	fileStore      repository.FileStore
	slicer         *slicing.Slicer
	trackerFactory handler.TrackerFactory
	logger         *slog.Logger
}

// NewExtractSnippets creates a new ExtractSnippets handler.
func NewExtractSnippets(
	repoStore repository.RepositoryStore,
	snippetStore snippet.SnippetStore,
	fileStore repository.FileStore,
	slicer *slicing.Slicer,
	trackerFactory handler.TrackerFactory,
	logger *slog.Logger,
) *ExtractSnippets {
	return &ExtractSnippets{
		repoStore:      repoStore,
		snippetStore:   snippetStore,
		fileStore:      fileStore,
		slicer:         slicer,
		trackerFactory: trackerFactory,
		logger:         logger,
	}
}

// Execute processes the EXTRACT_SNIPPETS_FOR_COMMIT task.
func (h *ExtractSnippets) Execute(ctx context.Context, payload map[string]any) error {
	cp, err := handler.ExtractCommitPayload(payload)
	if err != nil {
		return err
	}

	tracker := h.trackerFactory.ForOperation(
		task.OperationExtractSnippetsForCommit,
		task.TrackableTypeRepository,
		cp.RepoID(),
	)

	count, err := h.snippetStore.CountForCommit(ctx, cp.CommitSHA())
	if err != nil {
		return fmt.Errorf("check existing snippets: %w", err)
	}
	if count > 0 {
		tracker.Skip(ctx, "Snippets already extracted for commit")
		return nil
	}

	repo, err := h.repoStore.FindOne(ctx, repository.WithID(cp.RepoID()))
	if err != nil {
		return fmt.Errorf("get repository: %w", err)
	}

	clonedPath := repo.WorkingCopy().Path()
	if repo.WorkingCopy().IsEmpty() {
		return fmt.Errorf("repository %d has never been cloned", cp.RepoID())
	}

	files, err := h.fileStore.Find(ctx, repository.WithCommitSHA(cp.CommitSHA()))
	if err != nil {
		return fmt.Errorf("get commit files: %w", err)
	}

	if len(files) == 0 {
		tracker.Skip(ctx, "No files found for commit")
		return nil
	}

	tracker.SetTotal(ctx, len(files))

	result, err := h.slicer.Slice(ctx, files, clonedPath, slicing.DefaultSliceConfig())
	if err != nil {
		return fmt.Errorf("slice files: %w", err)
	}

	snippets := result.Snippets()
	if len(snippets) == 0 {
		tracker.Skip(ctx, "No snippets extracted for commit")
		return nil
	}

	tracker.SetCurrent(ctx, len(files), "Saving extracted snippets")

	if err := h.snippetStore.Save(ctx, cp.CommitSHA(), snippets); err != nil {
		return fmt.Errorf("save snippets: %w", err)
	}

	h.logger.Info("extracted snippets",
		slog.Int("snippets", len(snippets)),
		slog.Int("files", len(files)),
		slog.String("commit", handler.ShortSHA(cp.CommitSHA())),
	)

	return nil
}
