package dto

import (
	"github.com/corvus-index/corvus/infrastructure/api/jsonapi"
)

// FileAttributes represents file attributes in JSON:API format.
type FileAttributes struct {
	BlobSHA   string `json:"blob_sha"`
	Path      string `json:"path"`
	MimeType  string `json:"mime_type"`
	Size      int64  `json:"size"`
	Extension string `json:"extension,omitempty"`
}

// FileData represents file data in JSON:API format.
type FileData struct {
	Type       string         `json:"type"`
	ID         string         `json:"id"`
	Attributes FileAttributes `json:"attributes"`
}

// FileJSONAPIResponse represents a single file in JSON:API format.
type FileJSONAPIResponse struct {
	Data FileData `json:"data"`
}

// FileJSONAPIListResponse represents a paginated list of files.
type FileJSONAPIListResponse struct {
	Data  []FileData     `json:"data"`
	Meta  *jsonapi.Meta  `json:"meta,omitempty"`
	Links *jsonapi.Links `json:"links,omitempty"`
}
