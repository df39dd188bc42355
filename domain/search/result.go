package search

// Result is one scored hit from a single search backend (BM25 or vector),
// before fusion. A backend is free to return results unsorted; ordering is
// the caller's responsibility (see Fusion, which re-ranks by RRF score).
type Result struct {
	snippetID string
	score     float64
}

// NewResult creates a new Result.
func NewResult(snippetID string, score float64) Result {
	return Result{
		snippetID: snippetID,
		score:     score,
	}
}

// SnippetID returns the snippet ID.
func (r Result) SnippetID() string { return r.snippetID }

// Score returns the search score.
func (r Result) Score() float64 { return r.score }

// FusionRequest represents a fusion request input.
type FusionRequest struct {
	id    string
	score float64
}

// NewFusionRequest creates a new FusionRequest.
func NewFusionRequest(id string, score float64) FusionRequest {
	return FusionRequest{
		id:    id,
		score: score,
	}
}

// ID returns the document ID.
func (f FusionRequest) ID() string { return f.id }

// Score returns the score.
func (f FusionRequest) Score() float64 { return f.score }

// FusionResult represents a fusion result.
type FusionResult struct {
	id             string
	score          float64
	originalScores []float64
}

// NewFusionResult creates a new FusionResult.
func NewFusionResult(id string, score float64, originalScores []float64) FusionResult {
	scores := make([]float64, len(originalScores))
	copy(scores, originalScores)
	return FusionResult{
		id:             id,
		score:          score,
		originalScores: scores,
	}
}

// ID returns the document ID.
func (f FusionResult) ID() string { return f.id }

// Score returns the fused score.
func (f FusionResult) Score() float64 { return f.score }

// OriginalScores returns the original scores from each search method.
func (f FusionResult) OriginalScores() []float64 {
	scores := make([]float64, len(f.originalScores))
	copy(scores, f.originalScores)
	return scores
}

// Document represents a generic document for indexing.
type Document struct {
	snippetID string
	text      string
}

// NewDocument creates a new Document.
func NewDocument(snippetID, text string) Document {
	return Document{
		snippetID: snippetID,
		text:      text,
	}
}

// SnippetID returns the snippet ID.
func (d Document) SnippetID() string { return d.snippetID }

// Text returns the document text.
func (d Document) Text() string { return d.text }

// IndexRequest is a batch of documents to send to a BM25Store or
// EmbeddingStore. Construction enforces the batch's identity invariant so
// every backend and every caller can rely on it rather than re-deriving it:
// snippet identity is content-hash keyed, so a batch naming the same
// snippet id twice always means "replace", never "append" — NewIndexRequest
// keeps only the last occurrence of each id, in first-seen order.
type IndexRequest struct {
	documents []Document
}

// NewIndexRequest creates an IndexRequest, deduplicating documents by
// snippet id (last write wins) and dropping any with a blank id or
// all-whitespace text.
func NewIndexRequest(documents []Document) IndexRequest {
	byID := make(map[string]Document, len(documents))
	order := make([]string, 0, len(documents))
	for _, doc := range documents {
		if doc.SnippetID() == "" || isBlank(doc.Text()) {
			continue
		}
		if _, seen := byID[doc.SnippetID()]; !seen {
			order = append(order, doc.SnippetID())
		}
		byID[doc.SnippetID()] = doc
	}
	docs := make([]Document, len(order))
	for i, id := range order {
		docs[i] = byID[id]
	}
	return IndexRequest{documents: docs}
}

func isBlank(s string) bool {
	for _, r := range s {
		if r != ' ' && r != '\t' && r != '\n' && r != '\r' {
			return false
		}
	}
	return true
}

// Documents returns the documents to index.
func (i IndexRequest) Documents() []Document {
	docs := make([]Document, len(i.documents))
	copy(docs, i.documents)
	return docs
}

