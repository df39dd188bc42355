package mcp

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/corvus-index/corvus/application/service"
	"github.com/corvus-index/corvus/domain/chunk"
	"github.com/corvus-index/corvus/domain/enrichment"
	"github.com/corvus-index/corvus/domain/repository"
	"github.com/corvus-index/corvus/domain/search"
	"github.com/mark3labs/mcp-go/mcp"
)

// fakeRepositoryLister implements RepositoryLister with a fixed list.
type fakeRepositoryLister struct {
	repos []repository.Repository
}

func (f *fakeRepositoryLister) Find(_ context.Context, _ ...repository.Option) ([]repository.Repository, error) {
	return f.repos, nil
}

// fakeCommitFinder implements CommitFinder with a fixed list.
type fakeCommitFinder struct {
	commits []repository.Commit
}

func (f *fakeCommitFinder) Find(_ context.Context, _ ...repository.Option) ([]repository.Commit, error) {
	return f.commits, nil
}

// fakeEnrichmentQuery implements EnrichmentQuery with a fixed list.
type fakeEnrichmentQuery struct {
	enrichments []enrichment.Enrichment
}

func (f *fakeEnrichmentQuery) List(_ context.Context, _ *service.EnrichmentListParams) ([]enrichment.Enrichment, error) {
	return f.enrichments, nil
}

// fakeFileContentReader implements FileContentReader with a fixed blob.
type fakeFileContentReader struct {
	content service.BlobContent
}

func (f *fakeFileContentReader) Content(_ context.Context, _ int64, _, _ string) (service.BlobContent, error) {
	return f.content, nil
}

// fakeSemanticSearcher implements SemanticSearcher with a canned result.
type fakeSemanticSearcher struct {
	enrichments []enrichment.Enrichment
	scores      map[string]float64
}

func (f *fakeSemanticSearcher) SearchCodeWithScores(_ context.Context, _ string, _ int) ([]enrichment.Enrichment, map[string]float64, error) {
	return f.enrichments, f.scores, nil
}

// fakeKeywordSearcher implements KeywordSearcher with a canned result.
type fakeKeywordSearcher struct {
	enrichments []enrichment.Enrichment
	scores      map[string]float64
}

func (f *fakeKeywordSearcher) SearchKeywordsWithScores(_ context.Context, _ string, _ int, _ search.Filters) ([]enrichment.Enrichment, map[string]float64, error) {
	return f.enrichments, f.scores, nil
}

// fakeEnrichmentResolver implements EnrichmentResolver with fixed lookups.
type fakeEnrichmentResolver struct {
	sourceFiles map[string][]int64
	lineRanges  map[string]chunk.LineRange
	repoIDs     map[string]int64
}

func (f *fakeEnrichmentResolver) SourceFiles(_ context.Context, _ []int64) (map[string][]int64, error) {
	return f.sourceFiles, nil
}

func (f *fakeEnrichmentResolver) LineRanges(_ context.Context, _ []int64) (map[string]chunk.LineRange, error) {
	return f.lineRanges, nil
}

func (f *fakeEnrichmentResolver) RepositoryIDs(_ context.Context, _ []int64) (map[string]int64, error) {
	return f.repoIDs, nil
}

// fakeFileFinder implements FileFinder with a fixed list.
type fakeFileFinder struct {
	files []repository.File
}

func (f *fakeFileFinder) Find(_ context.Context, _ ...repository.Option) ([]repository.File, error) {
	return f.files, nil
}

// sendMessage marshals a JSON-RPC request, sends it through HandleMessage,
// and returns the JSONRPCResponse. It fatals on marshal failure or unexpected
// response type.
func sendMessage(t *testing.T, srv *Server, method string, id int, params map[string]any) mcp.JSONRPCResponse {
	t.Helper()

	msg := map[string]any{
		"jsonrpc": "2.0",
		"id":      id,
		"method":  method,
	}
	if params != nil {
		msg["params"] = params
	}

	raw, err := json.Marshal(msg)
	if err != nil {
		t.Fatalf("marshal request: %v", err)
	}

	result := srv.MCPServer().HandleMessage(context.Background(), raw)

	resp, ok := result.(mcp.JSONRPCResponse)
	if !ok {
		t.Fatalf("expected JSONRPCResponse, got %T: %+v", result, result)
	}
	return resp
}

// resultJSON re-marshals the Result field through JSON into dst.
func resultJSON(t *testing.T, resp mcp.JSONRPCResponse, dst any) {
	t.Helper()
	b, err := json.Marshal(resp.Result)
	if err != nil {
		t.Fatalf("marshal result: %v", err)
	}
	if err := json.Unmarshal(b, dst); err != nil {
		t.Fatalf("unmarshal result into %T: %v", dst, err)
	}
}

func testEnrichment() enrichment.Enrichment {
	return enrichment.ReconstructEnrichment(
		42,
		enrichment.TypeDevelopment,
		enrichment.SubtypeSnippet,
		enrichment.EntityTypeSnippet,
		"func hello() string { return \"world\" }",
		"go",
		time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
	)
}

func testFile() repository.File {
	return repository.ReconstructFile(7, "deadbeef", "src/main.go", "blobsha", "text/x-go", "go", "go", 42,
		time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))
}

// testServer builds a Server wired with fakes for a single enrichment result.
func testServer() *Server {
	e := testEnrichment()
	f := testFile()

	return NewServer(
		&fakeRepositoryLister{},
		&fakeCommitFinder{},
		&fakeEnrichmentQuery{enrichments: []enrichment.Enrichment{e}},
		&fakeFileContentReader{content: service.NewBlobContent([]byte("package main\n"), "deadbeef")},
		&fakeSemanticSearcher{
			enrichments: []enrichment.Enrichment{e},
			scores:      map[string]float64{"42": 0.95},
		},
		&fakeKeywordSearcher{
			enrichments: []enrichment.Enrichment{e},
			scores:      map[string]float64{"42": 0.81},
		},
		&fakeEnrichmentResolver{
			sourceFiles: map[string][]int64{"42": {f.ID()}},
			lineRanges:  map[string]chunk.LineRange{"42": chunk.ReconstructLineRange(1, 42, 1, 3)},
			repoIDs:     map[string]int64{"42": 1},
		},
		&fakeFileFinder{files: []repository.File{f}},
		"1.0.0",
		nil,
	)
}

func initializeParams() map[string]any {
	return map[string]any{
		"protocolVersion": "2025-06-18",
		"capabilities":    map[string]any{},
		"clientInfo": map[string]any{
			"name":    "test-client",
			"version": "0.0.1",
		},
	}
}

func TestServer_Initialize(t *testing.T) {
	srv := testServer()
	resp := sendMessage(t, srv, "initialize", 1, initializeParams())

	var result mcp.InitializeResult
	resultJSON(t, resp, &result)

	if result.ServerInfo.Name != "corvus" {
		t.Errorf("expected server name corvus, got %s", result.ServerInfo.Name)
	}
	if result.ServerInfo.Version != "1.0.0" {
		t.Errorf("expected version 1.0.0, got %s", result.ServerInfo.Version)
	}
	if result.Capabilities.Tools == nil {
		t.Error("expected tools capability to be present")
	}
}

func TestServer_ListTools(t *testing.T) {
	srv := testServer()

	// Must initialize first so that tools/list works.
	sendMessage(t, srv, "initialize", 1, initializeParams())

	resp := sendMessage(t, srv, "tools/list", 2, nil)

	var result mcp.ListToolsResult
	resultJSON(t, resp, &result)

	tools := map[string]mcp.Tool{}
	for _, tool := range result.Tools {
		tools[tool.Name] = tool
	}

	expected := []string{
		"get_version",
		"list_repositories",
		"get_architecture_docs",
		"get_api_docs",
		"get_commit_description",
		"get_database_schema",
		"get_cookbook",
		"search",
		"semantic_search",
		"keyword_search",
	}
	if len(result.Tools) != len(expected) {
		t.Fatalf("expected %d tools, got %d", len(expected), len(result.Tools))
	}
	for _, name := range expected {
		if _, ok := tools[name]; !ok {
			t.Errorf("missing %s tool", name)
		}
	}

	searchTool := tools["search"]
	props := searchTool.InputSchema.Properties
	if props == nil {
		t.Fatal("search tool has no properties")
	}
	if _, ok := props["query"]; !ok {
		t.Error("search tool missing query parameter")
	}
	if !contains(searchTool.InputSchema.Required, "query") {
		t.Error("query should be required")
	}
}

func TestServer_GetVersion(t *testing.T) {
	srv := testServer()
	sendMessage(t, srv, "initialize", 1, initializeParams())

	resp := sendMessage(t, srv, "tools/call", 2, map[string]any{
		"name":      "get_version",
		"arguments": map[string]any{},
	})

	var result mcp.CallToolResult
	resultJSON(t, resp, &result)

	if result.IsError {
		t.Fatalf("expected success, got error")
	}
	if textFromContent(t, result) != "1.0.0" {
		t.Errorf("expected version 1.0.0, got %s", textFromContent(t, result))
	}
}

func TestServer_Search(t *testing.T) {
	srv := testServer()
	sendMessage(t, srv, "initialize", 1, initializeParams())

	resp := sendMessage(t, srv, "tools/call", 2, map[string]any{
		"name":      "search",
		"arguments": map[string]any{"query": "hello"},
	})

	var result mcp.CallToolResult
	resultJSON(t, resp, &result)

	if result.IsError {
		t.Fatalf("expected success, got error: %s", textFromContent(t, result))
	}

	text := textFromContent(t, result)

	var items []struct {
		Path  string  `json:"path"`
		Score float64 `json:"score"`
	}
	if err := json.Unmarshal([]byte(text), &items); err != nil {
		t.Fatalf("unmarshal search results: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("expected 1 result, got %d", len(items))
	}
	if items[0].Path != "src/main.go" {
		t.Errorf("expected path src/main.go, got %s", items[0].Path)
	}
}

func TestServer_SearchMissingQuery(t *testing.T) {
	srv := testServer()
	sendMessage(t, srv, "initialize", 1, initializeParams())

	resp := sendMessage(t, srv, "tools/call", 2, map[string]any{
		"name":      "search",
		"arguments": map[string]any{},
	})

	var result mcp.CallToolResult
	resultJSON(t, resp, &result)

	if !result.IsError {
		t.Fatal("expected error response")
	}

	text := textFromContent(t, result)
	if text == "" || !containsStr(text, "query is required") {
		t.Errorf("expected error text containing 'query is required', got: %s", text)
	}
}

func TestServer_SemanticSearch(t *testing.T) {
	srv := testServer()
	sendMessage(t, srv, "initialize", 1, initializeParams())

	resp := sendMessage(t, srv, "tools/call", 2, map[string]any{
		"name":      "semantic_search",
		"arguments": map[string]any{"query": "hello world"},
	})

	var result mcp.CallToolResult
	resultJSON(t, resp, &result)

	if result.IsError {
		t.Fatalf("expected success, got error: %s", textFromContent(t, result))
	}

	var items []struct {
		Path string `json:"path"`
	}
	if err := json.Unmarshal([]byte(textFromContent(t, result)), &items); err != nil {
		t.Fatalf("unmarshal semantic search results: %v", err)
	}
	if len(items) != 1 || items[0].Path != "src/main.go" {
		t.Fatalf("unexpected results: %+v", items)
	}
}

func TestServer_KeywordSearch(t *testing.T) {
	srv := testServer()
	sendMessage(t, srv, "initialize", 1, initializeParams())

	resp := sendMessage(t, srv, "tools/call", 2, map[string]any{
		"name":      "keyword_search",
		"arguments": map[string]any{"keywords": "hello"},
	})

	var result mcp.CallToolResult
	resultJSON(t, resp, &result)

	if result.IsError {
		t.Fatalf("expected success, got error: %s", textFromContent(t, result))
	}
}

// textFromContent extracts the text string from the first content item
// of a CallToolResult. It round-trips through JSON because in-process
// responses may hold the content as a map rather than a typed struct.
func textFromContent(t *testing.T, result mcp.CallToolResult) string {
	t.Helper()
	if len(result.Content) == 0 {
		t.Fatal("no content in result")
	}
	b, err := json.Marshal(result.Content[0])
	if err != nil {
		t.Fatalf("marshal content: %v", err)
	}
	var tc struct {
		Text string `json:"text"`
	}
	if err := json.Unmarshal(b, &tc); err != nil {
		t.Fatalf("unmarshal text content: %v", err)
	}
	return tc.Text
}

func contains(items []string, target string) bool {
	for _, s := range items {
		if s == target {
			return true
		}
	}
	return false
}

func containsStr(haystack, needle string) bool {
	return len(haystack) >= len(needle) && searchStr(haystack, needle)
}

func searchStr(s, sub string) bool {
	for i := 0; i <= len(s)-len(sub); i++ {
		if s[i:i+len(sub)] == sub {
			return true
		}
	}
	return false
}
