package indexing

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/corvus-index/corvus/application/handler"
	"github.com/corvus-index/corvus/domain/search"
	"github.com/corvus-index/corvus/domain/snippet"
	"github.com/corvus-index/corvus/domain/task"
)

// CreateCodeEmbeddings creates vector embeddings for commit snippets.
type CreateCodeEmbeddings struct {
	codeIndex      handler.VectorIndex
	snippetStore   snippet.SnippetStore
	trackerFactory handler.TrackerFactory
	logger         *slog.Logger
}

// NewCreateCodeEmbeddings creates a new CreateCodeEmbeddings handler.
func NewCreateCodeEmbeddings(
	codeIndex handler.VectorIndex,
	snippetStore snippet.SnippetStore,
	trackerFactory handler.TrackerFactory,
	logger *slog.Logger,
) (*CreateCodeEmbeddings, error) {
	if codeIndex.Embedding == nil {
		return nil, fmt.Errorf("NewCreateCodeEmbeddings: nil Embedding")
	}
	if codeIndex.Store == nil {
		return nil, fmt.Errorf("NewCreateCodeEmbeddings: nil Store")
	}
	if snippetStore == nil {
		return nil, fmt.Errorf("NewCreateCodeEmbeddings: nil snippetStore")
	}
	if trackerFactory == nil {
		return nil, fmt.Errorf("NewCreateCodeEmbeddings: nil trackerFactory")
	}
	return &CreateCodeEmbeddings{
		codeIndex:      codeIndex,
		snippetStore:   snippetStore,
		trackerFactory: trackerFactory,
		logger:         logger,
	}, nil
}

// Execute processes the CREATE_CODE_EMBEDDINGS_FOR_COMMIT task.
func (h *CreateCodeEmbeddings) Execute(ctx context.Context, payload map[string]any) error {
	cp, err := handler.ExtractCommitPayload(payload)
	if err != nil {
		return err
	}

	tracker := h.trackerFactory.ForOperation(
		task.OperationCreateCodeEmbeddingsForCommit,
		task.TrackableTypeRepository,
		cp.RepoID(),
	)

	snippets, err := h.snippetStore.SnippetsForCommit(ctx, cp.CommitSHA())
	if err != nil {
		h.logger.Error("failed to get snippets for commit", slog.String("error", err.Error()))
		return err
	}

	if len(snippets) == 0 {
		tracker.Skip(ctx, "No snippets to create embeddings for")
		return nil
	}

	newSnippets, err := h.filterNew(ctx, snippets)
	if err != nil {
		h.logger.Error("failed to filter new snippets", slog.String("error", err.Error()))
		return err
	}

	if len(newSnippets) == 0 {
		tracker.Skip(ctx, "All snippets already have code embeddings")
		return nil
	}

	tracker.SetTotal(ctx, len(newSnippets))

	documents := make([]search.Document, 0, len(newSnippets))
	for _, s := range newSnippets {
		if s.Content() != "" {
			doc := search.NewDocument(s.SHA(), s.Content())
			documents = append(documents, doc)
		}
	}

	if len(documents) == 0 {
		tracker.Skip(ctx, "No valid documents to embed")
		return nil
	}

	request := search.NewIndexRequest(documents)
	if err := h.codeIndex.Embedding.Index(ctx, request); err != nil {
		h.logger.Error("failed to create embeddings", slog.String("error", err.Error()))
		tracker.Fail(ctx, err.Error())
		return err
	}

	tracker.SetCurrent(ctx, len(newSnippets), "Creating code embeddings for commit")

	h.logger.Info("code embeddings created",
		slog.Int("documents", len(documents)),
		slog.String("commit", handler.ShortSHA(cp.CommitSHA())),
	)

	return nil
}

func (h *CreateCodeEmbeddings) filterNew(ctx context.Context, snippets []snippet.Snippet) ([]snippet.Snippet, error) {
	ids := make([]string, len(snippets))
	for i, s := range snippets {
		ids[i] = s.SHA()
	}

	existingIDs, err := h.codeIndex.Store.SnippetIDs(ctx, search.WithSnippetIDs(ids))
	if err != nil {
		return nil, err
	}

	existing := make(map[string]bool, len(existingIDs))
	for _, id := range existingIDs {
		existing[id] = true
	}

	result := make([]snippet.Snippet, 0, len(snippets))
	for i, s := range snippets {
		if !existing[ids[i]] {
			result = append(result, s)
		}
	}

	return result, nil
}
