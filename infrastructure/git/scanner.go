package git

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/corvus-index/corvus/domain/repository"
	"github.com/corvus-index/corvus/domain/service"
	"github.com/corvus-index/corvus/domain/snippet"
)

var scannerLanguage = snippet.Language{}

// RepositoryScanner extracts data from Git repositories without mutation.
// Implements domain/service.Scanner interface.
type RepositoryScanner struct {
	adapter Adapter
	logger  *slog.Logger
}

// NewRepositoryScanner creates a new RepositoryScanner with the specified adapter.
func NewRepositoryScanner(adapter Adapter, logger *slog.Logger) *RepositoryScanner {
	if logger == nil {
		logger = slog.Default()
	}
	return &RepositoryScanner{
		adapter: adapter,
		logger:  logger,
	}
}

// ScanCommit scans a specific commit and returns commit with its files.
func (s *RepositoryScanner) ScanCommit(ctx context.Context, clonedPath string, commitSHA string, repoID int64) (service.ScanCommitResult, error) {
	s.logger.Info("scanning commit",
		slog.String("sha", shortSHA(commitSHA)),
		slog.String("path", clonedPath),
	)

	commitInfo, err := s.adapter.CommitDetails(ctx, clonedPath, commitSHA)
	if err != nil {
		return service.ScanCommitResult{}, fmt.Errorf("get commit details: %w", err)
	}

	commit := s.commitFromInfo(commitInfo, repoID)

	filesInfo, err := s.adapter.CommitFiles(ctx, clonedPath, commitSHA)
	if err != nil {
		return service.ScanCommitResult{}, fmt.Errorf("get commit files: %w", err)
	}

	filesInfo = s.filterIgnored(clonedPath, filesInfo)
	files := s.filesFromInfo(filesInfo, commitSHA)

	s.logger.Info("scanned commit",
		slog.String("sha", shortSHA(commitSHA)),
		slog.Int("files", len(files)),
	)

	return service.NewScanCommitResult(commit, files), nil
}

// ScanBranch scans all commits on a branch.
func (s *RepositoryScanner) ScanBranch(ctx context.Context, clonedPath string, branchName string, repoID int64) ([]repository.Commit, error) {
	s.logger.Info("scanning branch",
		slog.String("branch", branchName),
		slog.String("path", clonedPath),
	)

	commitInfos, err := s.adapter.BranchCommits(ctx, clonedPath, branchName)
	if err != nil {
		return nil, fmt.Errorf("get branch commits: %w", err)
	}

	commits := make([]repository.Commit, 0, len(commitInfos))
	for _, info := range commitInfos {
		commits = append(commits, s.commitFromInfo(info, repoID))
	}

	s.logger.Info("scanned branch",
		slog.String("branch", branchName),
		slog.Int("commits", len(commits)),
	)

	return commits, nil
}

// ScanAllBranches scans metadata for all branches.
func (s *RepositoryScanner) ScanAllBranches(ctx context.Context, clonedPath string, repoID int64) ([]repository.Branch, error) {
	s.logger.Info("scanning all branches",
		slog.String("path", clonedPath),
	)

	branchInfos, err := s.adapter.AllBranches(ctx, clonedPath)
	if err != nil {
		return nil, fmt.Errorf("get all branches: %w", err)
	}

	branches := make([]repository.Branch, 0, len(branchInfos))
	for _, info := range branchInfos {
		branches = append(branches, s.branchFromInfo(info, repoID))
	}

	s.logger.Info("scanned all branches",
		slog.Int("branches", len(branches)),
	)

	return branches, nil
}

// ScanAllTags scans metadata for all tags.
func (s *RepositoryScanner) ScanAllTags(ctx context.Context, clonedPath string, repoID int64) ([]repository.Tag, error) {
	s.logger.Info("scanning all tags",
		slog.String("path", clonedPath),
	)

	tagInfos, err := s.adapter.AllTags(ctx, clonedPath)
	if err != nil {
		return nil, fmt.Errorf("get all tags: %w", err)
	}

	tags := make([]repository.Tag, 0, len(tagInfos))
	for _, info := range tagInfos {
		tags = append(tags, s.tagFromInfo(info, repoID))
	}

	s.logger.Info("scanned all tags",
		slog.Int("tags", len(tags)),
	)

	return tags, nil
}

// FilesForCommitsBatch processes files for a batch of commits.
// Reuses adapter resources efficiently for large batches.
func (s *RepositoryScanner) FilesForCommitsBatch(ctx context.Context, clonedPath string, commitSHAs []string) ([]repository.File, error) {
	s.logger.Info("processing files for commit batch",
		slog.String("path", clonedPath),
		slog.Int("commits", len(commitSHAs)),
	)

	var files []repository.File
	for _, sha := range commitSHAs {
		filesInfo, err := s.adapter.CommitFiles(ctx, clonedPath, sha)
		if err != nil {
			return nil, fmt.Errorf("get commit files for %s: %w", shortSHA(sha), err)
		}
		filesInfo = s.filterIgnored(clonedPath, filesInfo)
		files = append(files, s.filesFromInfo(filesInfo, sha)...)
	}

	s.logger.Info("processed files for commit batch",
		slog.Int("commits", len(commitSHAs)),
		slog.Int("files", len(files)),
	)

	return files, nil
}

// filterIgnored drops tree entries matched by the repository's .gitignore
// or .noindex rules before they ever become File records — an ignored
// file should never be extracted, snippeted, or indexed. A missing or
// unreadable ignore source is not fatal: scanning proceeds over the full
// file list rather than failing the whole commit.
func (s *RepositoryScanner) filterIgnored(clonedPath string, files []FileInfo) []FileInfo {
	pattern, err := NewIgnorePattern(clonedPath)
	if err != nil {
		s.logger.Warn("could not load ignore patterns, scanning all files",
			slog.String("path", clonedPath),
			slog.String("error", err.Error()),
		)
		return files
	}

	kept := make([]FileInfo, 0, len(files))
	for _, f := range files {
		if pattern.ShouldIgnore(f.Path) {
			continue
		}
		kept = append(kept, f)
	}
	return kept
}

func (s *RepositoryScanner) commitFromInfo(info CommitInfo, repoID int64) repository.Commit {
	author := repository.NewAuthor(info.AuthorName, info.AuthorEmail)
	committer := repository.NewAuthor(info.CommitterName, info.CommitterEmail)

	return repository.NewCommit(
		info.SHA,
		repoID,
		info.Message,
		author,
		committer,
		info.AuthoredAt,
		info.CommittedAt,
	)
}

func (s *RepositoryScanner) branchFromInfo(info BranchInfo, repoID int64) repository.Branch {
	return repository.NewBranch(repoID, info.Name, info.HeadSHA, info.IsDefault)
}

func (s *RepositoryScanner) tagFromInfo(info TagInfo, repoID int64) repository.Tag {
	if info.Message != "" || info.TaggerName != "" {
		tagger := repository.NewAuthor(info.TaggerName, info.TaggerEmail)
		return repository.NewAnnotatedTag(repoID, info.Name, info.TargetCommitSHA, info.Message, tagger, info.TaggedAt)
	}
	return repository.NewTag(repoID, info.Name, info.TargetCommitSHA)
}

func (s *RepositoryScanner) filesFromInfo(infos []FileInfo, commitSHA string) []repository.File {
	now := time.Now()
	files := make([]repository.File, 0, len(infos))

	for _, info := range infos {
		language := languageFromPath(info.Path)
		extension := extensionFromPath(info.Path)
		mimeType := mimeTypeFromExtension(extension)

		file := repository.ReconstructFile(
			0, // ID assigned on save
			commitSHA,
			info.Path,
			info.BlobSHA,
			mimeType,
			extension,
			language,
			info.Size,
			now,
		)
		files = append(files, file)
	}

	return files
}

func shortSHA(sha string) string {
	if len(sha) >= 8 {
		return sha[:8]
	}
	return sha
}

// languageFromPath classifies a file by its extension, deferring to
// domain/snippet's extension-to-language table so the scanner and the
// snippet pipeline never disagree about what language a file is. tsx and jsx
// collapse into their base language (matching the historical scanner
// behavior) since snippet.Language tracks tsx separately for slicing
// purposes but the scanner only records one language per file. An
// extension absent from the table (or no extension at all) falls back to
// the bare extension string, same as before this was wired to the shared
// table.
func languageFromPath(path string) string {
	ext := filepath.Ext(path)
	if ext == "" {
		return ""
	}
	ext = ext[1:]

	switch ext {
	case "tsx":
		return "typescript"
	case "jsx":
		return "javascript"
	}

	if lang, err := scannerLanguage.LanguageForExtension(ext); err == nil {
		return lang
	}
	return ext
}

func extensionFromPath(path string) string {
	ext := filepath.Ext(path)
	if ext == "" {
		return ""
	}
	// Remove leading dot
	return ext[1:]
}

func mimeTypeFromExtension(ext string) string {
	switch ext {
	case "go":
		return "text/x-go"
	case "py":
		return "text/x-python"
	case "js":
		return "text/javascript"
	case "ts", "tsx":
		return "text/typescript"
	case "jsx":
		return "text/javascript"
	case "java":
		return "text/x-java-source"
	case "c":
		return "text/x-c"
	case "cpp", "cc", "cxx":
		return "text/x-c++"
	case "h", "hpp":
		return "text/x-c"
	case "cs":
		return "text/x-csharp"
	case "rs":
		return "text/x-rust"
	case "rb":
		return "text/x-ruby"
	case "php":
		return "text/x-php"
	case "swift":
		return "text/x-swift"
	case "kt", "kts":
		return "text/x-kotlin"
	case "scala":
		return "text/x-scala"
	case "sh", "bash":
		return "text/x-shellscript"
	case "sql":
		return "text/x-sql"
	case "md", "markdown":
		return "text/markdown"
	case "json":
		return "application/json"
	case "yaml", "yml":
		return "text/yaml"
	case "xml":
		return "application/xml"
	case "html", "htm":
		return "text/html"
	case "css":
		return "text/css"
	case "scss", "sass":
		return "text/scss"
	default:
		return "text/plain"
	}
}

// Ensure RepositoryScanner implements Scanner.
var _ service.Scanner = (*RepositoryScanner)(nil)
