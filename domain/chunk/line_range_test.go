package chunk

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewLineRange(t *testing.T) {
	lr, err := NewLineRange(42, 10, 25)
	assert.NoError(t, err)

	assert.Equal(t, int64(0), lr.ID())
	assert.Equal(t, int64(42), lr.EnrichmentID())
	assert.Equal(t, 10, lr.StartLine())
	assert.Equal(t, 25, lr.EndLine())
}

func TestNewLineRange_RejectsZeroStartLine(t *testing.T) {
	_, err := NewLineRange(42, 0, 10)
	assert.Error(t, err)
}

func TestNewLineRange_RejectsEndBeforeStart(t *testing.T) {
	_, err := NewLineRange(42, 25, 10)
	assert.Error(t, err)
}

func TestNewLineRange_SingleLineRangeIsValid(t *testing.T) {
	lr, err := NewLineRange(42, 10, 10)
	assert.NoError(t, err)
	assert.Equal(t, 10, lr.StartLine())
	assert.Equal(t, 10, lr.EndLine())
}

func TestReconstructLineRange(t *testing.T) {
	lr := ReconstructLineRange(7, 42, 10, 25)

	assert.Equal(t, int64(7), lr.ID())
	assert.Equal(t, int64(42), lr.EnrichmentID())
	assert.Equal(t, 10, lr.StartLine())
	assert.Equal(t, 25, lr.EndLine())
}
