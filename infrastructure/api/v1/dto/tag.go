package dto

import (
	"github.com/corvus-index/corvus/infrastructure/api/jsonapi"
)

// TagAttributes represents tag attributes in JSON:API format.
type TagAttributes struct {
	Name            string `json:"name"`
	TargetCommitSHA string `json:"target_commit_sha"`
	IsVersionTag    bool   `json:"is_version_tag"`
}

// TagData represents tag data in JSON:API format.
type TagData struct {
	Type       string        `json:"type"`
	ID         string        `json:"id"`
	Attributes TagAttributes `json:"attributes"`
}

// TagJSONAPIResponse represents a single tag in JSON:API format.
type TagJSONAPIResponse struct {
	Data TagData `json:"data"`
}

// TagJSONAPIListResponse represents a paginated list of tags.
type TagJSONAPIListResponse struct {
	Data  []TagData      `json:"data"`
	Meta  *jsonapi.Meta  `json:"meta,omitempty"`
	Links *jsonapi.Links `json:"links,omitempty"`
}
