package dto

import (
	"time"

	"github.com/corvus-index/corvus/infrastructure/api/jsonapi"
)

// RepositoryAttributes represents repository attributes in JSON:API format.
type RepositoryAttributes struct {
	RemoteURI      string     `json:"remote_uri"`
	ClonedPath     *string    `json:"cloned_path,omitempty"`
	TrackingBranch *string    `json:"tracking_branch,omitempty"`
	NumCommits     int        `json:"num_commits"`
	NumBranches    int        `json:"num_branches"`
	NumTags        int        `json:"num_tags"`
	CreatedAt      *time.Time `json:"created_at,omitempty"`
	UpdatedAt      *time.Time `json:"updated_at,omitempty"`
}

// RepositoryData represents repository data in JSON:API format.
type RepositoryData struct {
	Type       string                `json:"type"`
	ID         string                `json:"id"`
	Attributes RepositoryAttributes  `json:"attributes"`
}

// RepositoryResponse represents a single repository in JSON:API format.
type RepositoryResponse struct {
	Data RepositoryData `json:"data"`
}

// RepositoryListResponse represents a paginated list of repositories.
type RepositoryListResponse struct {
	Data  []RepositoryData `json:"data"`
	Meta  *jsonapi.Meta    `json:"meta,omitempty"`
	Links *jsonapi.Links   `json:"links,omitempty"`
}

// RepositoryBranchData summarizes a branch for inclusion in repository details.
type RepositoryBranchData struct {
	Name      string `json:"name"`
	IsDefault bool   `json:"is_default"`
}

// RepositoryCommitData summarizes a commit for inclusion in repository details.
type RepositoryCommitData struct {
	SHA       string    `json:"sha"`
	Message   string    `json:"message"`
	Author    string    `json:"author"`
	Timestamp time.Time `json:"timestamp"`
}

// RepositoryDetailsResponse represents a repository with branches and recent commits.
type RepositoryDetailsResponse struct {
	Data          RepositoryData          `json:"data"`
	Branches      []RepositoryBranchData  `json:"branches"`
	RecentCommits []RepositoryCommitData  `json:"recent_commits"`
}

// RepositoryCreateAttributes represents attributes for adding a repository.
type RepositoryCreateAttributes struct {
	RemoteURI string `json:"remote_uri"`
}

// RepositoryCreateData represents the resource data for adding a repository.
type RepositoryCreateData struct {
	Type       string                     `json:"type"`
	Attributes RepositoryCreateAttributes `json:"attributes"`
}

// RepositoryCreateRequest represents a JSON:API request to add a repository.
type RepositoryCreateRequest struct {
	Data RepositoryCreateData `json:"data"`
}

// TaskStatusAttributes represents task status attributes in JSON:API format.
type TaskStatusAttributes struct {
	Step      string     `json:"step"`
	State     string     `json:"state"`
	Progress  float64    `json:"progress"`
	Total     int64      `json:"total"`
	Current   int64      `json:"current"`
	CreatedAt *time.Time `json:"created_at,omitempty"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
	Error     string     `json:"error,omitempty"`
	Message   string     `json:"message,omitempty"`
}

// TaskStatusData represents a single task status in JSON:API format.
type TaskStatusData struct {
	Type       string               `json:"type"`
	ID         string               `json:"id"`
	Attributes TaskStatusAttributes `json:"attributes"`
}

// TaskStatusListResponse represents a list of task statuses for a repository.
type TaskStatusListResponse struct {
	Data []TaskStatusData `json:"data"`
}

// RepositoryStatusSummaryAttributes represents the aggregated status attributes.
type RepositoryStatusSummaryAttributes struct {
	Status    string    `json:"status"`
	Message   string    `json:"message,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}

// RepositoryStatusSummaryData represents the aggregated status resource.
type RepositoryStatusSummaryData struct {
	Type       string                            `json:"type"`
	ID         string                            `json:"id"`
	Attributes RepositoryStatusSummaryAttributes `json:"attributes"`
}

// RepositoryStatusSummaryResponse represents the status summary endpoint response.
type RepositoryStatusSummaryResponse struct {
	Data RepositoryStatusSummaryData `json:"data"`
}

// TrackingMode identifies whether a repository tracks a branch or a tag.
type TrackingMode string

const (
	// TrackingModeBranch tracks the latest commit on a branch.
	TrackingModeBranch TrackingMode = "branch"
	// TrackingModeTag tracks a fixed tag.
	TrackingModeTag TrackingMode = "tag"
)

// TrackingConfigAttributes represents tracking config attributes in JSON:API format.
type TrackingConfigAttributes struct {
	Mode  TrackingMode `json:"mode"`
	Value *string      `json:"value,omitempty"`
}

// TrackingConfigData represents tracking config resource data.
type TrackingConfigData struct {
	Type       string                   `json:"type"`
	Attributes TrackingConfigAttributes `json:"attributes"`
}

// TrackingConfigResponse represents a tracking config in JSON:API format.
type TrackingConfigResponse struct {
	Data TrackingConfigData `json:"data"`
}

// TrackingConfigUpdateRequest represents a JSON:API request to update tracking config.
type TrackingConfigUpdateRequest struct {
	Data TrackingConfigData `json:"data"`
}
