package persistence

import (
	"context"
	"fmt"

	"github.com/corvus-index/corvus/domain/chunk"
	"github.com/corvus-index/corvus/internal/database"
)

// ChunkLineRangeStore implements chunk.LineRangeStore using GORM.
type ChunkLineRangeStore struct {
	database.Repository[chunk.LineRange, ChunkLineRangeModel]
}

// NewChunkLineRangeStore creates a new ChunkLineRangeStore.
func NewChunkLineRangeStore(db database.Database) ChunkLineRangeStore {
	return ChunkLineRangeStore{
		Repository: database.NewRepository[chunk.LineRange, ChunkLineRangeModel](db, ChunkLineRangeMapper{}, "chunk_line_range"),
	}
}

// Save creates or updates a chunk line range. ChunkLineRangeModel has a
// surrogate autoincrement ID rather than a natural key (unlike CommitModel),
// so GORM's Save-as-upsert-by-PK doesn't apply here: a zero ID always means
// "not yet persisted".
func (s ChunkLineRangeStore) Save(ctx context.Context, lr chunk.LineRange) (chunk.LineRange, error) {
	model := s.Mapper().ToModel(lr)

	result := createOrUpdate(s.DB(ctx), model.ID == 0, &model)
	if result.Error != nil {
		return chunk.LineRange{}, fmt.Errorf("save chunk line range: %w", result.Error)
	}

	return s.Mapper().ToDomain(model), nil
}

// Delete removes a chunk line range.
func (s ChunkLineRangeStore) Delete(ctx context.Context, lr chunk.LineRange) error {
	model := s.Mapper().ToModel(lr)
	result := s.DB(ctx).Delete(&model)
	if result.Error != nil {
		return fmt.Errorf("delete chunk line range: %w", result.Error)
	}
	return nil
}
