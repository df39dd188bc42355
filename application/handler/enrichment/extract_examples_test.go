package enrichment

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestExtractExamples() *ExtractExamples {
	return &ExtractExamples{}
}

func writeTempFile(t *testing.T, name, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestExtractFromDocumentation_Markdown(t *testing.T) {
	content := "# Usage\n\nCall it like this:\n\n```go\nfunc main() {}\n```\n"
	path := writeTempFile(t, "README.md", content)

	h := newTestExtractExamples()
	result := h.extractFromDocumentation(path)

	assert.Contains(t, result, "func main() {}")
	assert.Contains(t, result, "Usage", "heading context should be prefixed")
}

func TestExtractFromDocumentation_RST(t *testing.T) {
	content := "Usage\n=====\n\n.. code-block:: python\n\n   print(\"hi\")\n"
	path := writeTempFile(t, "README.rst", content)

	h := newTestExtractExamples()
	result := h.extractFromDocumentation(path)

	assert.Contains(t, result, `print("hi")`)
}

func TestExtractFromDocumentation_PrefixesContextWhenPresent(t *testing.T) {
	content := "# Installing\n\n```sh\npip install thing\n```\n"
	path := writeTempFile(t, "INSTALL.md", content)

	h := newTestExtractExamples()
	result := h.extractFromDocumentation(path)

	assert.Equal(t, "# Installing\npip install thing", result)
}

func TestExtractFromDocumentation_NoContextNoPrefix(t *testing.T) {
	content := "```sh\necho hi\n```\n"
	path := writeTempFile(t, "SNIPPET.md", content)

	h := newTestExtractExamples()
	result := h.extractFromDocumentation(path)

	assert.Equal(t, "echo hi", result)
}

func TestExtractFromDocumentation_UnsupportedExtensionReturnsEmpty(t *testing.T) {
	content := "== Usage ==\n\n[source,go]\n----\nfunc main() {}\n----\n"
	path := writeTempFile(t, "README.adoc", content)

	h := newTestExtractExamples()
	result := h.extractFromDocumentation(path)

	assert.Equal(t, "", result)
}

func TestExtractFromDocumentation_NoCodeBlocksReturnsEmpty(t *testing.T) {
	content := "# Just prose\n\nNothing to see here.\n"
	path := writeTempFile(t, "README.md", content)

	h := newTestExtractExamples()
	result := h.extractFromDocumentation(path)

	assert.Equal(t, "", result)
}

func TestExtractFromDocumentation_MultipleBlocksJoined(t *testing.T) {
	content := "# First\n\n```go\na()\n```\n\n# Second\n\n```go\nb()\n```\n"
	path := writeTempFile(t, "MULTI.md", content)

	h := newTestExtractExamples()
	result := h.extractFromDocumentation(path)

	assert.Contains(t, result, "a()")
	assert.Contains(t, result, "b()")
	assert.Contains(t, result, "First")
	assert.Contains(t, result, "Second")
}
