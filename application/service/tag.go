package service

import (
	"github.com/corvus-index/corvus/domain/repository"
)

// Tag provides read-only tag query operations.
// Embeds Collection for Find/Get/Count; tag writes happen through the sync
// task handler, not this service.
type Tag struct {
	repository.Collection[repository.Tag]
}

// NewTag creates a new Tag service.
func NewTag(tagStore repository.TagStore) *Tag {
	return &Tag{
		Collection: repository.NewCollection[repository.Tag](tagStore),
	}
}
