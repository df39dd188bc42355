package dto

import (
	"time"

	"github.com/corvus-index/corvus/infrastructure/api/jsonapi"
)

// TaskAttributes represents a queued task's attributes in JSON:API format.
type TaskAttributes struct {
	Operation string         `json:"operation"`
	Priority  int            `json:"priority"`
	Payload   map[string]any `json:"payload,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// TaskData represents a queued task in JSON:API format.
type TaskData struct {
	Type       string         `json:"type"`
	ID         string         `json:"id"`
	Attributes TaskAttributes `json:"attributes"`
}

// TaskResponse represents a single queued task.
type TaskResponse struct {
	Data TaskData `json:"data"`
}

// TaskListResponse represents a paginated list of queued tasks.
type TaskListResponse struct {
	Data  []TaskData     `json:"data"`
	Meta  *jsonapi.Meta  `json:"meta,omitempty"`
	Links *jsonapi.Links `json:"links,omitempty"`
}
