package git

import (
	"context"
	"time"
)

// Adapter abstracts low-level git operations so that the cloner and
// scanner services can work against either a native git binary (GiteaAdapter)
// or an in-process implementation (GoGitAdapter).
type Adapter interface {
	// CloneRepository clones remoteURI into localPath.
	CloneRepository(ctx context.Context, remoteURI string, localPath string) error

	// CheckoutCommit checks out a specific commit SHA in localPath.
	CheckoutCommit(ctx context.Context, localPath string, commitSHA string) error

	// CheckoutBranch checks out a branch in localPath.
	CheckoutBranch(ctx context.Context, localPath string, branchName string) error

	// FetchRepository fetches updates from the remote without merging.
	FetchRepository(ctx context.Context, localPath string) error

	// PullRepository fetches and merges updates from the remote.
	PullRepository(ctx context.Context, localPath string) error

	// AllBranches returns every branch in the repository.
	AllBranches(ctx context.Context, localPath string) ([]BranchInfo, error)

	// BranchCommits returns the commit history for a single branch.
	BranchCommits(ctx context.Context, localPath string, branchName string) ([]CommitInfo, error)

	// AllCommitsBulk returns every commit reachable from any branch, keyed by SHA.
	// When since is non-nil, only commits authored at or after that time are returned.
	AllCommitsBulk(ctx context.Context, localPath string, since *time.Time) (map[string]CommitInfo, error)

	// BranchCommitSHAs returns the SHAs of every commit on a branch.
	BranchCommitSHAs(ctx context.Context, localPath string, branchName string) ([]string, error)

	// AllBranchHeadSHAs returns the head SHA of each named branch.
	AllBranchHeadSHAs(ctx context.Context, localPath string, branchNames []string) (map[string]string, error)

	// CommitFiles returns the full file tree as of a commit.
	CommitFiles(ctx context.Context, localPath string, commitSHA string) ([]FileInfo, error)

	// RepositoryExists reports whether localPath holds a git repository.
	RepositoryExists(ctx context.Context, localPath string) (bool, error)

	// CommitDetails returns metadata for a single commit.
	CommitDetails(ctx context.Context, localPath string, commitSHA string) (CommitInfo, error)

	// EnsureRepository clones remoteURI into localPath if it does not already exist.
	EnsureRepository(ctx context.Context, remoteURI string, localPath string) error

	// FileContent returns the raw content of a file as of a commit.
	FileContent(ctx context.Context, localPath string, commitSHA string, filePath string) ([]byte, error)

	// DefaultBranch returns the repository's default branch name.
	DefaultBranch(ctx context.Context, localPath string) (string, error)

	// LatestCommitSHA returns the head SHA of a branch.
	LatestCommitSHA(ctx context.Context, localPath string, branchName string) (string, error)

	// AllTags returns every tag in the repository.
	AllTags(ctx context.Context, localPath string) ([]TagInfo, error)

	// CommitDiff returns the unified diff introduced by a commit.
	CommitDiff(ctx context.Context, localPath string, commitSHA string) (string, error)
}

// BranchInfo describes a single branch.
type BranchInfo struct {
	Name      string
	HeadSHA   string
	IsDefault bool
}

// CommitInfo describes a single commit.
type CommitInfo struct {
	SHA            string
	Message        string
	AuthorName     string
	AuthorEmail    string
	AuthoredAt     time.Time
	CommitterName  string
	CommitterEmail string
	CommittedAt    time.Time
	ParentSHA      string
}

// FileInfo describes a single file in a commit's tree. Mime type and
// language are derived from Path by the scanner, not carried here, so
// there is exactly one place that maps extensions to those properties.
type FileInfo struct {
	Path    string
	BlobSHA string
	Size    int64
}

// TagInfo describes a single tag.
type TagInfo struct {
	Name            string
	TargetCommitSHA string
	TaggerName      string
	TaggerEmail     string
	TaggedAt        time.Time
	Message         string
}
