package chunk

import "github.com/corvus-index/corvus/domain/repository"

// LineRangeStore defines persistence for chunk line ranges.
type LineRangeStore interface {
	repository.Store[LineRange]
}
