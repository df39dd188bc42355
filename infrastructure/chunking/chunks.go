// Package chunking provides fixed-size text chunking with overlap for RAG indexing.
package chunking

import (
	"fmt"
	"unicode/utf8"
)

// ChunkParams configures the chunking algorithm.
type ChunkParams struct {
	Size    int
	Overlap int
	MinSize int
}

// DefaultChunkParams returns sensible defaults for code chunking.
func DefaultChunkParams() ChunkParams {
	return ChunkParams{
		Size:    1500,
		Overlap: 200,
		MinSize: 50,
	}
}

// Chunk represents a single text chunk with its byte offset in the original content.
type Chunk struct {
	content string
	offset  int
}

// Content returns the chunk text.
func (c Chunk) Content() string { return c.content }

// Offset returns the byte offset of this chunk in the original content.
func (c Chunk) Offset() int { return c.offset }

// TextChunks holds the result of splitting content into fixed-size chunks.
type TextChunks struct {
	chunks []Chunk
}

// NewTextChunks splits content into fixed-size chunks with the given parameters.
// Size, Overlap, and MinSize are measured in runes (Unicode code points), while
// the returned Chunk.Offset is a byte offset into the original string.
func NewTextChunks(content string, params ChunkParams) (TextChunks, error) {
	if params.Size <= 0 {
		return TextChunks{}, fmt.Errorf("size must be positive, got %d", params.Size)
	}
	if params.Overlap >= params.Size {
		return TextChunks{}, fmt.Errorf("overlap (%d) must be less than size (%d)", params.Overlap, params.Size)
	}

	if content == "" {
		return TextChunks{}, nil
	}

	runes := []rune(content)
	byteOffsets := runeByteOffsets(runes)
	step := params.Size - params.Overlap
	var chunks []Chunk

	for i := 0; i < len(runes); i += step {
		end := min(i+params.Size, len(runes))

		slice := runes[i:end]
		if len(slice) < params.MinSize {
			break
		}

		// Skip chunks fully covered by the previous chunk's overlap.
		if i > 0 && len(slice) <= params.Overlap {
			break
		}

		chunks = append(chunks, Chunk{content: string(slice), offset: byteOffsets[i]})
	}

	return TextChunks{chunks: chunks}, nil
}

// runeByteOffsets returns, for each index into runes, the byte offset of
// that rune in the string they were decoded from (with one trailing entry
// for the total byte length). Precomputing this avoids re-encoding every
// preceding rune on each chunk boundary, which made the naive approach
// quadratic in content length for large files.
func runeByteOffsets(runes []rune) []int {
	offsets := make([]int, len(runes)+1)
	offset := 0
	for i, r := range runes {
		offsets[i] = offset
		offset += utf8.RuneLen(r)
	}
	offsets[len(runes)] = offset
	return offsets
}

// All returns all chunks.
func (t TextChunks) All() []Chunk { return t.chunks }
