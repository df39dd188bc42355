package mcp

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// FileURI builds and parses file resource URIs for MCP resource templates.
// Immutable value object — methods return copies.
type FileURI struct {
	repoID      int64
	blobName    string
	path        string
	startLine   int
	endLine     int
	lines       string
	lineNumbers bool
}

// NewFileURI creates a FileURI with the required fields.
func NewFileURI(repoID int64, blobName, path string) FileURI {
	return FileURI{
		repoID:   repoID,
		blobName: blobName,
		path:     path,
	}
}

// ParseFileURI parses a file:// resource URI of the form
// file://{id}/{blob_name}/{path}[?lines=...&line_numbers=true] — the shape
// String produces and the file:// resource template advertises.
func ParseFileURI(raw string) (FileURI, error) {
	parsed, err := url.Parse(raw)
	if err != nil {
		return FileURI{}, fmt.Errorf("invalid file URI: %w", err)
	}
	if parsed.Scheme != "file" {
		return FileURI{}, fmt.Errorf("invalid file URI: %s", raw)
	}

	// parsed.Host holds the id (no slashes), parsed.Path holds
	// /{blob_name}/{path...}.
	rest := parsed.Host + parsed.Path
	parts := strings.SplitN(rest, "/", 3)
	if len(parts) < 3 {
		return FileURI{}, fmt.Errorf("invalid file URI: expected file://{id}/{blob_name}/{path}, got %s", raw)
	}

	repoID, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return FileURI{}, fmt.Errorf("invalid repository ID %q: %w", parts[0], err)
	}

	u := NewFileURI(repoID, parts[1], parts[2])
	query := parsed.Query()
	u.lines = query.Get("lines")
	u.lineNumbers = query.Get("line_numbers") == "true"
	return u, nil
}

// WithLineRange returns a copy with line range set.
func (u FileURI) WithLineRange(start, end int) FileURI {
	u.startLine = start
	u.endLine = end
	return u
}

// RepoID returns the repository ID the URI points into.
func (u FileURI) RepoID() int64 { return u.repoID }

// BlobName returns the commit SHA, tag, or branch name the URI pins to.
func (u FileURI) BlobName() string { return u.blobName }

// Path returns the repository-relative file path.
func (u FileURI) Path() string { return u.path }

// Lines returns the raw lines query parameter (e.g. "L17-L26,L45"), as
// understood by service.NewLineFilter. Empty if the URI has none.
func (u FileURI) Lines() string { return u.lines }

// LineNumbers reports whether the line_numbers=true query parameter was set.
func (u FileURI) LineNumbers() bool { return u.lineNumbers }

// String builds the file:// URI string.
func (u FileURI) String() string {
	base := fmt.Sprintf("file://%d/%s/%s", u.repoID, u.blobName, u.path)
	if u.startLine > 0 {
		return fmt.Sprintf("%s?lines=L%d-L%d&line_numbers=true", base, u.startLine, u.endLine)
	}
	return base
}
