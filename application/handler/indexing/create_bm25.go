package indexing

import (
	"context"
	"log/slog"

	"github.com/corvus-index/corvus/application/handler"
	"github.com/corvus-index/corvus/domain/search"
	domainservice "github.com/corvus-index/corvus/domain/service"
	"github.com/corvus-index/corvus/domain/snippet"
	"github.com/corvus-index/corvus/domain/task"
)

// CreateBM25Index creates BM25 keyword index for commit snippets.
type CreateBM25Index struct {
	bm25Service  *domainservice.BM25
	snippetStore snippet.SnippetStore
	trackerFactory handler.TrackerFactory
	logger       *slog.Logger
}

// NewCreateBM25Index creates a new CreateBM25Index handler.
func NewCreateBM25Index(
	bm25Service *domainservice.BM25,
	snippetStore snippet.SnippetStore,
	trackerFactory handler.TrackerFactory,
	logger *slog.Logger,
) *CreateBM25Index {
	return &CreateBM25Index{
		bm25Service:    bm25Service,
		snippetStore:   snippetStore,
		trackerFactory: trackerFactory,
		logger:         logger,
	}
}

// Execute processes the CREATE_BM25_INDEX_FOR_COMMIT task.
func (h *CreateBM25Index) Execute(ctx context.Context, payload map[string]any) error {
	cp, err := handler.ExtractCommitPayload(payload)
	if err != nil {
		return err
	}

	tracker := h.trackerFactory.ForOperation(
		task.OperationCreateBM25IndexForCommit,
		task.TrackableTypeRepository,
		cp.RepoID(),
	)

	snippets, err := h.snippetStore.SnippetsForCommit(ctx, cp.CommitSHA())
	if err != nil {
		h.logger.Error("failed to get snippets for commit", slog.String("error", err.Error()))
		return err
	}

	if len(snippets) == 0 {
		tracker.Skip(ctx, "No snippets to index")
		return nil
	}

	tracker.SetTotal(ctx, len(snippets))

	documents := make([]search.Document, 0, len(snippets))
	for _, s := range snippets {
		if s.Content() != "" {
			doc := search.NewDocument(s.SHA(), s.Content())
			documents = append(documents, doc)
		}
	}

	if len(documents) == 0 {
		tracker.Skip(ctx, "No valid documents to index")
		return nil
	}

	request := search.NewIndexRequest(documents)
	if err := h.bm25Service.Index(ctx, request); err != nil {
		h.logger.Error("failed to index documents", slog.String("error", err.Error()))
		return err
	}

	tracker.SetCurrent(ctx, len(snippets), "BM25 index created for commit")

	h.logger.Info("BM25 index created",
		slog.Int("documents", len(documents)),
		slog.String("commit", handler.ShortSHA(cp.CommitSHA())),
	)

	return nil
}
