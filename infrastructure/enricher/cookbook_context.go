package enricher

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// CookbookContextService gathers context for cookbook generation.
type CookbookContextService struct{}

// NewCookbookContextService creates a new CookbookContextService.
func NewCookbookContextService() *CookbookContextService {
	return &CookbookContextService{}
}

// Gather collects all relevant context for cookbook generation.
func (s *CookbookContextService) Gather(_ context.Context, repoPath, language string) (string, error) {
	var sections []string

	sections = append(sections, "## Primary Language\n"+language)

	if readme := s.extractReadmeContent(repoPath); readme != "" {
		sections = append(sections, "## README\n"+readme)
	}

	if manifest := s.extractPackageManifest(repoPath); manifest != "" {
		sections = append(sections, "## Package Information\n"+manifest)
	}

	if examples := s.findExistingExamples(repoPath); examples != "" {
		sections = append(sections, "## Existing Examples Found\n"+examples)
	}

	if len(sections) == 0 {
		return "No context available", nil
	}

	return strings.Join(sections, "\n\n"), nil
}

func (s *CookbookContextService) extractReadmeContent(repoPath string) string {
	readmeNames := []string{"README.md", "README.rst", "README.txt", "README"}

	for _, name := range readmeNames {
		data, err := os.ReadFile(filepath.Join(repoPath, name))
		if err != nil {
			continue
		}

		content := string(data)
		if len(content) > 3000 {
			content = content[:3000] + "\n...[truncated]"
		}
		return content
	}

	return ""
}

func (s *CookbookContextService) extractPackageManifest(repoPath string) string {
	manifests := []struct {
		file  string
		label string
	}{
		{"pyproject.toml", "Python project (pyproject.toml)"},
		{"setup.py", "Python project (setup.py)"},
		{"package.json", "Node.js project (package.json)"},
		{"go.mod", "Go project (go.mod)"},
		{"Cargo.toml", "Rust project (Cargo.toml)"},
	}

	var manifestInfo []string
	for _, m := range manifests {
		data, err := os.ReadFile(filepath.Join(repoPath, m.file))
		if err != nil {
			continue
		}
		content := string(data)
		if len(content) > 500 {
			content = content[:500]
		}
		manifestInfo = append(manifestInfo, m.label+":\n"+content)
	}

	return strings.Join(manifestInfo, "\n\n")
}

func (s *CookbookContextService) findExistingExamples(repoPath string) string {
	exampleDirs := []string{"examples", "example", "docs/examples", "samples"}
	extensions := map[string]bool{".py": true, ".js": true, ".ts": true, ".go": true, ".rs": true}

	var exampleLocations []string

	for _, exampleDir := range exampleDirs {
		examplePath := filepath.Join(repoPath, exampleDir)
		info, err := os.Stat(examplePath)
		if err != nil || !info.IsDir() {
			continue
		}

		var exampleFiles []string
		_ = filepath.Walk(examplePath, func(path string, info os.FileInfo, err error) error {
			if err != nil || info.IsDir() {
				return nil
			}
			if extensions[filepath.Ext(path)] {
				exampleFiles = append(exampleFiles, path)
			}
			return nil
		})

		if len(exampleFiles) == 0 {
			continue
		}

		exampleLocations = append(exampleLocations,
			fmt.Sprintf("Found %d example files in %s/", len(exampleFiles), exampleDir))

		if data, err := os.ReadFile(exampleFiles[0]); err == nil {
			content := string(data)
			if len(content) > 500 {
				content = content[:500]
			}
			exampleLocations = append(exampleLocations,
				"Sample from "+filepath.Base(exampleFiles[0])+":\n```\n"+content+"\n```")
		}
	}

	return strings.Join(exampleLocations, "\n")
}
