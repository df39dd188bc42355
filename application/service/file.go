package service

import (
	"github.com/corvus-index/corvus/domain/repository"
)

// File provides read-only file query operations.
// Embeds Collection for Find/Get/Count; file writes happen through scan
// and rescan task handlers, not this service.
type File struct {
	repository.Collection[repository.File]
}

// NewFile creates a new File service.
func NewFile(fileStore repository.FileStore) *File {
	return &File{
		Collection: repository.NewCollection[repository.File](fileStore),
	}
}
