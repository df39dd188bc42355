package dto

import (
	"time"

	"github.com/corvus-index/corvus/domain/repository"
	"github.com/corvus-index/corvus/infrastructure/api/jsonapi"
)

// CommitAttributes represents commit attributes in JSON:API format.
type CommitAttributes struct {
	CommitSHA       string    `json:"commit_sha"`
	Date            time.Time `json:"date"`
	Message         string    `json:"message"`
	ParentCommitSHA string    `json:"parent_commit_sha,omitempty"`
	Author          string    `json:"author"`
	// Committer is only set when it differs from Author (e.g. a commit
	// applied by someone other than who wrote it, such as a rebase,
	// cherry-pick, or merge via a bot account).
	Committer string `json:"committer,omitempty"`
}

// CommitData represents commit data in JSON:API format.
type CommitData struct {
	Type       string           `json:"type"`
	ID         string           `json:"id"`
	Attributes CommitAttributes `json:"attributes"`
}

// NewCommitData builds the JSON:API representation of a commit.
func NewCommitData(commit repository.Commit) CommitData {
	attrs := CommitAttributes{
		CommitSHA:       commit.SHA(),
		Date:            commit.CommittedAt(),
		Message:         commit.Message(),
		ParentCommitSHA: commit.ParentCommitSHA(),
		Author:          commit.Author().String(),
	}
	if !commit.Author().Equal(commit.Committer()) {
		attrs.Committer = commit.Committer().String()
	}
	return CommitData{
		Type:       "commit",
		ID:         commit.SHA(),
		Attributes: attrs,
	}
}

// CommitJSONAPIResponse represents a single commit in JSON:API format.
type CommitJSONAPIResponse struct {
	Data CommitData `json:"data"`
}

// CommitJSONAPIListResponse represents a paginated list of commits.
type CommitJSONAPIListResponse struct {
	Data  []CommitData   `json:"data"`
	Meta  *jsonapi.Meta  `json:"meta,omitempty"`
	Links *jsonapi.Links `json:"links,omitempty"`
}
