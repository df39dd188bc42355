package git

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"

	gitignore "github.com/sabhiram/go-gitignore"
)

// IgnorePattern decides whether a path scanned from a commit's tree should
// be excluded from indexing. It combines the repository's own .gitignore
// rules with a project-local .noindex file of additional patterns, matched
// as plain gitignore-style globs against tree-relative paths — not against
// the working directory, so it applies equally to the currently checked
// out commit and to historical ones the adapter reads straight from the
// git object store.
type IgnorePattern struct {
	matcher *gitignore.GitIgnore
}

// NewIgnorePattern builds an IgnorePattern for the given repository root.
// A missing .gitignore or .noindex file is not an error; either simply
// contributes no rules.
func NewIgnorePattern(base string) (IgnorePattern, error) {
	info, err := os.Stat(base)
	if err != nil {
		return IgnorePattern{}, err
	}
	if !info.IsDir() {
		return IgnorePattern{}, &NotDirectoryError{Path: base}
	}

	var lines []string
	lines = append(lines, ".git/")
	lines = append(lines, readPatternFile(filepath.Join(base, ".gitignore"))...)
	lines = append(lines, readPatternFile(filepath.Join(base, ".noindex"))...)

	return IgnorePattern{matcher: gitignore.CompileIgnoreLines(lines...)}, nil
}

// ShouldIgnore reports whether relPath (slash-separated, relative to the
// repository root) matches a .gitignore or .noindex rule.
func (p IgnorePattern) ShouldIgnore(relPath string) bool {
	if p.matcher == nil {
		return false
	}
	return p.matcher.MatchesPath(filepath.ToSlash(relPath))
}

// readPatternFile returns the non-comment, non-blank lines of path. Errors
// (including a missing file) yield an empty pattern set rather than
// propagating, since neither .gitignore nor .noindex is required to exist.
func readPatternFile(path string) []string {
	file, err := os.Open(path)
	if err != nil {
		return nil
	}
	defer func() { _ = file.Close() }()

	var patterns []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		patterns = append(patterns, line)
	}
	return patterns
}

// NotDirectoryError indicates the path is not a directory.
type NotDirectoryError struct {
	Path string
}

func (e *NotDirectoryError) Error() string {
	return "path is not a directory: " + e.Path
}
