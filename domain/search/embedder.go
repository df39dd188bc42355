package search

import "context"

// Embedder converts text into embedding vectors. Implementations back
// either the local ONNX provider or a remote HTTP API, so batch size limits
// differ per implementation (model context window, or an API's per-request
// item cap) — callers must respect Capacity() and chunk their input rather
// than assuming a single Embed call can take an arbitrary slice.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float64, error)

	// Capacity returns the maximum number of texts accepted per Embed call.
	// Callers exceeding it get an implementation-defined error rather than
	// silent truncation.
	Capacity() int
}
