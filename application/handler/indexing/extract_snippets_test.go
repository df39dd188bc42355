package indexing

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/corvus-index/corvus/domain/repository"
	domainservice "github.com/corvus-index/corvus/domain/service"
	"github.com/corvus-index/corvus/domain/snippet"
	"github.com/corvus-index/corvus/infrastructure/persistence"
	"github.com/corvus-index/corvus/infrastructure/slicing"
	"github.com/corvus-index/corvus/infrastructure/slicing/language"
	"github.com/corvus-index/corvus/internal/testdb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSlicer() *slicing.Slicer {
	cfg := slicing.NewLanguageConfig()
	return slicing.NewSlicer(cfg, language.NewFactory(cfg))
}

func TestExtractSnippets(t *testing.T) {
	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))

	t.Run("extracts snippets from exported functions", func(t *testing.T) {
		db := testdb.New(t)
		repoStore := persistence.NewRepositoryStore(db)
		snippetStore := persistence.NewSnippetStore(db)
		fileStore := persistence.NewFileStore(db)

		tmpDir := t.TempDir()
		goFile := filepath.Join(tmpDir, "main.go")
		goContent := "package main\n\nfunc Greet() string {\n\treturn \"hello\"\n}\n"
		require.NoError(t, os.WriteFile(goFile, []byte(goContent), 0644))

		repo, err := repository.NewRepository("https://github.com/test/repo")
		require.NoError(t, err)
		repo = repo.
			WithWorkingCopy(repository.NewWorkingCopy(tmpDir, "https://github.com/test/repo")).
			WithTrackingConfig(repository.NewTrackingConfig("main", "", ""))
		savedRepo, err := repoStore.Save(ctx, repo)
		require.NoError(t, err)

		f := repository.NewFile("abc123", "main.go", "go", 100)
		_, err = fileStore.Save(ctx, f)
		require.NoError(t, err)

		h := NewExtractSnippets(repoStore, snippetStore, fileStore, newTestSlicer(), &fakeTrackerFactory{}, logger)

		payload := map[string]any{
			"repository_id": savedRepo.ID(),
			"commit_sha":    "abc123",
		}

		err = h.Execute(ctx, payload)
		require.NoError(t, err)

		snippets, err := snippetStore.SnippetsForCommit(ctx, "abc123")
		require.NoError(t, err)
		require.NotEmpty(t, snippets)
		assert.Contains(t, snippets[0].Content(), "Greet")
	})

	t.Run("skips when snippets already exist", func(t *testing.T) {
		db := testdb.New(t)
		repoStore := persistence.NewRepositoryStore(db)
		snippetStore := persistence.NewSnippetStore(db)
		fileStore := persistence.NewFileStore(db)

		existing, err := snippet.NewSnippet("existing code", "go", nil)
		require.NoError(t, err)
		require.NoError(t, snippetStore.Save(ctx, "existing123", []snippet.Snippet{existing}))

		h := NewExtractSnippets(repoStore, snippetStore, fileStore, newTestSlicer(), &fakeTrackerFactory{}, logger)

		payload := map[string]any{
			"repository_id": int64(1),
			"commit_sha":    "existing123",
		}

		err = h.Execute(ctx, payload)
		require.NoError(t, err)

		count, err := snippetStore.CountForCommit(ctx, "existing123")
		require.NoError(t, err)
		assert.Equal(t, int64(1), count)
	})

	t.Run("skips when no files found", func(t *testing.T) {
		db := testdb.New(t)
		repoStore := persistence.NewRepositoryStore(db)
		snippetStore := persistence.NewSnippetStore(db)
		fileStore := persistence.NewFileStore(db)

		tmpDir := t.TempDir()
		repo, err := repository.NewRepository("https://github.com/test/empty")
		require.NoError(t, err)
		repo = repo.
			WithWorkingCopy(repository.NewWorkingCopy(tmpDir, "https://github.com/test/empty")).
			WithTrackingConfig(repository.NewTrackingConfig("main", "", ""))
		savedRepo, err := repoStore.Save(ctx, repo)
		require.NoError(t, err)

		h := NewExtractSnippets(repoStore, snippetStore, fileStore, newTestSlicer(), &fakeTrackerFactory{}, logger)

		payload := map[string]any{
			"repository_id": savedRepo.ID(),
			"commit_sha":    "nope123",
		}

		err = h.Execute(ctx, payload)
		require.NoError(t, err)

		count, err := snippetStore.CountForCommit(ctx, "nope123")
		require.NoError(t, err)
		assert.Equal(t, int64(0), count)
	})
}

func TestExtractSnippetsAndBM25Index(t *testing.T) {
	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))

	db := testdb.New(t)
	repoStore := persistence.NewRepositoryStore(db)
	snippetStore := persistence.NewSnippetStore(db)
	fileStore := persistence.NewFileStore(db)

	bm25Store, err := persistence.NewSQLiteBM25Store(ctx, db, logger)
	require.NoError(t, err)
	bm25Service, err := domainservice.NewBM25(bm25Store)
	require.NoError(t, err)

	tmpDir := t.TempDir()
	goContent := `package calculator

func Add(a, b int) int {
	return a + b
}

func Subtract(a, b int) int {
	return a - b
}

func Multiply(a, b int) int {
	return a * b
}
`
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "calc.go"), []byte(goContent), 0644))

	repo, err := repository.NewRepository("https://github.com/test/calc")
	require.NoError(t, err)
	repo = repo.
		WithWorkingCopy(repository.NewWorkingCopy(tmpDir, "https://github.com/test/calc")).
		WithTrackingConfig(repository.NewTrackingConfig("main", "", ""))
	savedRepo, err := repoStore.Save(ctx, repo)
	require.NoError(t, err)

	f := repository.NewFile("commit789", "calc.go", "go", 200)
	_, err = fileStore.Save(ctx, f)
	require.NoError(t, err)

	extractHandler := NewExtractSnippets(repoStore, snippetStore, fileStore, newTestSlicer(), &fakeTrackerFactory{}, logger)

	payload := map[string]any{
		"repository_id": savedRepo.ID(),
		"commit_sha":    "commit789",
	}

	err = extractHandler.Execute(ctx, payload)
	require.NoError(t, err)

	snippets, err := snippetStore.SnippetsForCommit(ctx, "commit789")
	require.NoError(t, err)
	require.NotEmpty(t, snippets, "expected at least one snippet")

	for _, s := range snippets {
		assert.NotEmpty(t, s.Content())
	}

	bm25Handler := NewCreateBM25Index(bm25Service, snippetStore, &fakeTrackerFactory{}, logger)

	err = bm25Handler.Execute(ctx, payload)
	require.NoError(t, err)

	results, err := bm25Service.Find(ctx, "Add Subtract calculator")
	require.NoError(t, err)
	assert.NotEmpty(t, results, "expected BM25 results for calculator query")
}
