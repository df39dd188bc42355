package service

import (
	"github.com/corvus-index/corvus/domain/repository"
)

// Commit provides read-only commit query operations.
// Embeds Collection for Find/Get/Count; commit writes happen through scan
// and rescan task handlers, not this service.
type Commit struct {
	repository.Collection[repository.Commit]
}

// NewCommit creates a new Commit service.
func NewCommit(commitStore repository.CommitStore) *Commit {
	return &Commit{
		Collection: repository.NewCollection[repository.Commit](commitStore),
	}
}
