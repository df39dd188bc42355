package persistence

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"github.com/corvus-index/corvus/domain/repository"
	"github.com/corvus-index/corvus/domain/search"
	infrasearch "github.com/corvus-index/corvus/infrastructure/search"
	"github.com/corvus-index/corvus/internal/database"
	"gorm.io/gorm"
)

// StoredVector, SimilarityMatch and the cosine-similarity helpers live in
// infrastructure/search; this package used to carry its own copy of the same
// algorithm, which meant fixing a bug in one meant remembering to fix it in
// the other. Aliased here so the rest of this package and its tests can keep
// referring to them unqualified.
type (
	StoredVector    = infrasearch.StoredVector
	SimilarityMatch = infrasearch.SimilarityMatch
)

var (
	NewStoredVector     = infrasearch.NewStoredVector
	NewSimilarityMatch  = infrasearch.NewSimilarityMatch
	CosineSimilarity    = infrasearch.CosineSimilarity
	TopKSimilar         = infrasearch.TopKSimilar
	TopKSimilarFiltered = infrasearch.TopKSimilarFiltered
)

// TaskName represents the type of embeddings (code or text).
type TaskName string

// TaskName values.
var (
	TaskNameCode = TaskName("code")
	TaskNameText = TaskName("text")
)

// PgEmbeddingModel is a GORM model for PostgreSQL vector embedding tables.
type PgEmbeddingModel struct {
	ID        int64             `gorm:"column:id;primaryKey;autoIncrement"`
	SnippetID string            `gorm:"column:snippet_id;uniqueIndex"`
	Embedding database.PgVector `gorm:"column:embedding;type:vector"`
}

// pgEmbeddingMapper maps between search.Embedding and PgEmbeddingModel.
type pgEmbeddingMapper struct{}

func (pgEmbeddingMapper) ToDomain(entity PgEmbeddingModel) search.Embedding {
	return search.NewEmbedding(entity.SnippetID, entity.Embedding.Floats())
}

func (pgEmbeddingMapper) ToModel(domain search.Embedding) PgEmbeddingModel {
	return PgEmbeddingModel{
		SnippetID: domain.SnippetID(),
		Embedding: database.NewPgVector(domain.Vector()),
	}
}

// Float64Slice is a custom type for JSON serialization of []float64 in SQLite.
type Float64Slice []float64

// Scan implements sql.Scanner for reading JSON from SQLite.
func (f *Float64Slice) Scan(value any) error {
	if value == nil {
		*f = nil
		return nil
	}

	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("cannot scan %T into Float64Slice", value)
	}

	return json.Unmarshal(data, f)
}

// Value implements driver.Valuer for writing JSON to SQLite.
func (f Float64Slice) Value() (driver.Value, error) {
	if f == nil {
		return nil, nil
	}
	return json.Marshal(f)
}

// SQLiteEmbeddingModel represents a vector embedding in SQLite.
type SQLiteEmbeddingModel struct {
	ID        int64        `gorm:"column:id;primaryKey;autoIncrement"`
	SnippetID string       `gorm:"column:snippet_id;uniqueIndex"`
	Embedding Float64Slice `gorm:"column:embedding;type:json"`
}

// sqliteEmbeddingMapper maps between search.Embedding and SQLiteEmbeddingModel.
type sqliteEmbeddingMapper struct{}

func (sqliteEmbeddingMapper) ToDomain(entity SQLiteEmbeddingModel) search.Embedding {
	return search.NewEmbedding(entity.SnippetID, []float64(entity.Embedding))
}

func (sqliteEmbeddingMapper) ToModel(domain search.Embedding) SQLiteEmbeddingModel {
	vec := domain.Vector()
	cp := make(Float64Slice, len(vec))
	copy(cp, vec)
	return SQLiteEmbeddingModel{
		SnippetID: domain.SnippetID(),
		Embedding: cp,
	}
}

// cosineSearch performs a cosine-distance similarity search against a PG vector
// table and returns results sorted by similarity (highest first).
func cosineSearch(
	db *gorm.DB,
	tableName string,
	options ...repository.Option,
) ([]search.Result, error) {
	q := repository.Build(options...)
	embedding, ok := search.EmbeddingFrom(q)
	if !ok || len(embedding) == 0 {
		return []search.Result{}, nil
	}

	limit := q.LimitValue()
	if limit <= 0 {
		limit = 10
	}

	queryEmbedding := database.NewPgVector(embedding).String()

	tx := db.Table(tableName).
		Select("snippet_id, embedding <=> ? as score", queryEmbedding)
	tx = database.ApplyConditions(tx, options...)

	if filters, ok := search.FiltersFrom(q); ok {
		tx = database.ApplySearchFilters(tx, filters)
	}

	tx = tx.Order("score ASC").Limit(limit)

	var rows []struct {
		SnippetID string  `gorm:"column:snippet_id"`
		Score     float64 `gorm:"column:score"`
	}
	if err := tx.Scan(&rows).Error; err != nil {
		return nil, err
	}

	results := make([]search.Result, len(rows))
	for i, row := range rows {
		// Cosine distance: 0 = identical, 2 = opposite.
		// Convert to similarity: 1 - distance/2 for 0-1 range.
		similarity := 1.0 - row.Score/2.0
		results[i] = search.NewResult(row.SnippetID, similarity)
	}

	return results, nil
}
