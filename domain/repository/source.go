package repository

// Source wraps a Repository for presentation and lifecycle reporting,
// decoupling the aggregate's persisted shape from how callers observe it.
type Source struct {
	repo Repository
}

// NewSource creates a new Source from a Repository.
func NewSource(repo Repository) Source {
	return Source{repo: repo}
}

// ID returns the repository ID.
func (s Source) ID() int64 { return s.repo.ID() }

// RemoteURL returns the repository remote URL.
func (s Source) RemoteURL() string { return s.repo.RemoteURL() }

// Repo returns the underlying Repository.
func (s Source) Repo() Repository { return s.repo }

// IsCloned returns true if the repository has a working copy.
func (s Source) IsCloned() bool { return s.repo.HasWorkingCopy() }

// ClonedPath returns the local filesystem path, or empty string if not cloned.
func (s Source) ClonedPath() string {
	if !s.repo.HasWorkingCopy() {
		return ""
	}
	return s.repo.WorkingCopy().Path()
}

// RepositorySummary provides a summary view of a repository.
type RepositorySummary struct {
	source        Source
	branchCount   int
	tagCount      int
	commitCount   int
	defaultBranch string
}

// NewRepositorySummary creates a new RepositorySummary.
func NewRepositorySummary(
	source Source,
	branchCount, tagCount, commitCount int,
	defaultBranch string,
) RepositorySummary {
	return RepositorySummary{
		source:        source,
		branchCount:   branchCount,
		tagCount:      tagCount,
		commitCount:   commitCount,
		defaultBranch: defaultBranch,
	}
}

// Source returns the wrapped repository source.
func (s RepositorySummary) Source() Source { return s.source }

// BranchCount returns the number of branches.
func (s RepositorySummary) BranchCount() int { return s.branchCount }

// TagCount returns the number of tags.
func (s RepositorySummary) TagCount() int { return s.tagCount }

// CommitCount returns the number of indexed commits.
func (s RepositorySummary) CommitCount() int { return s.commitCount }

// DefaultBranch returns the default branch name.
func (s RepositorySummary) DefaultBranch() string { return s.defaultBranch }
