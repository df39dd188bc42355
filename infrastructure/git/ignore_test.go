package git

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestNewIgnorePattern_MissingBase(t *testing.T) {
	_, err := NewIgnorePattern(filepath.Join(t.TempDir(), "does-not-exist"))
	if err == nil {
		t.Fatal("expected error for nonexistent base directory")
	}
}

func TestNewIgnorePattern_NotADirectory(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "notadir")
	if err := os.WriteFile(file, []byte("x"), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	_, err := NewIgnorePattern(file)
	if err == nil {
		t.Fatal("expected NotDirectoryError")
	}
	var notDir *NotDirectoryError
	if !errors.As(err, &notDir) {
		t.Fatalf("expected *NotDirectoryError, got %T", err)
	}
}

func TestIgnorePattern_GitignoreRules(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, ".gitignore", "*.log\nbuild/\n!important.log\n")

	pattern, err := NewIgnorePattern(dir)
	if err != nil {
		t.Fatalf("NewIgnorePattern: %v", err)
	}

	cases := []struct {
		path   string
		ignore bool
	}{
		{"debug.log", true},
		{"important.log", false},
		{"build/output.bin", true},
		{"src/main.go", false},
		{".git/HEAD", true},
	}
	for _, tc := range cases {
		if got := pattern.ShouldIgnore(tc.path); got != tc.ignore {
			t.Errorf("ShouldIgnore(%q) = %v, want %v", tc.path, got, tc.ignore)
		}
	}
}

func TestIgnorePattern_NoIndexRules(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, ".noindex", "# comment\nvendor/\nfixtures/*.json\n")

	pattern, err := NewIgnorePattern(dir)
	if err != nil {
		t.Fatalf("NewIgnorePattern: %v", err)
	}

	if !pattern.ShouldIgnore("vendor/lib/util.go") {
		t.Error("expected vendor/ to be ignored")
	}
	if !pattern.ShouldIgnore("fixtures/sample.json") {
		t.Error("expected fixtures/*.json to be ignored")
	}
	if pattern.ShouldIgnore("fixtures/sample.go") {
		t.Error("did not expect fixtures/sample.go to be ignored")
	}
}

func TestIgnorePattern_NoRuleFiles(t *testing.T) {
	dir := t.TempDir()

	pattern, err := NewIgnorePattern(dir)
	if err != nil {
		t.Fatalf("NewIgnorePattern: %v", err)
	}
	if pattern.ShouldIgnore("src/main.go") {
		t.Error("expected no rules to match anything outside .git")
	}
	if !pattern.ShouldIgnore(".git/config") {
		t.Error("expected .git/ to always be ignored")
	}
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}
