package main

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/corvus-index/corvus"
	"github.com/corvus-index/corvus/domain/search"
	"github.com/corvus-index/corvus/infrastructure/provider"
	"github.com/corvus-index/corvus/internal/config"
)

// clientOptions returns the corvus.Option slice derived from the shared parts
// of AppConfig: database storage, embedding provider, and text provider.
// Callers append entrypoint-specific options (API keys, worker count, etc.)
// before passing the full slice to corvus.New.
func clientOptions(cfg config.AppConfig) ([]corvus.Option, error) {
	var opts []corvus.Option

	opts = append(opts, storageOptions(cfg)...)

	embOpts, err := embeddingOptions(cfg)
	if err != nil {
		return nil, fmt.Errorf("embedding config: %w", err)
	}
	opts = append(opts, embOpts...)

	txtOpts, err := textOptions(cfg)
	if err != nil {
		return nil, fmt.Errorf("text config: %w", err)
	}
	opts = append(opts, txtOpts...)

	return opts, nil
}

// storageOptions returns the corvus.Option for the configured database backend.
func storageOptions(cfg config.AppConfig) []corvus.Option {
	dbURL := cfg.DBURL()

	if dbURL != "" && !isSQLite(dbURL) {
		return []corvus.Option{corvus.WithPostgresVectorchord(dbURL)}
	}

	dbPath := cfg.DataDir() + "/corvus.db"
	if dbURL != "" && isSQLite(dbURL) {
		dbPath = strings.TrimPrefix(dbURL, "sqlite:///")
		if dbPath == dbURL {
			dbPath = strings.TrimPrefix(dbURL, "sqlite:")
		}
	}

	return []corvus.Option{corvus.WithSQLite(dbPath)}
}

// embeddingOptions returns a corvus.Option for the embedding provider when the
// embedding endpoint is fully configured, or an empty slice otherwise.
func embeddingOptions(cfg config.AppConfig) ([]corvus.Option, error) {
	endpoint := cfg.EmbeddingEndpoint()
	if endpoint == nil || endpoint.BaseURL() == "" || endpoint.APIKey() == "" {
		return nil, nil
	}

	openaiCfg := provider.OpenAIConfig{
		APIKey:         endpoint.APIKey(),
		BaseURL:        endpoint.BaseURL(),
		EmbeddingModel: endpoint.Model(),
		Timeout:        endpoint.Timeout(),
		MaxRetries:     endpoint.MaxRetries(),
	}
	if cacheDir := cfg.HTTPCacheDir(); cacheDir != "" {
		transport, err := provider.NewCachingTransport(cacheDir, nil)
		if err != nil {
			return nil, fmt.Errorf("embedding http cache: %w", err)
		}
		openaiCfg.HTTPClient = &http.Client{
			Timeout:   endpoint.Timeout(),
			Transport: transport,
		}
	}
	p := provider.NewOpenAIProviderFromConfig(openaiCfg)

	budget, err := search.NewTokenBudget(endpoint.MaxBatchChars())
	if err != nil {
		return nil, fmt.Errorf("max batch chars: %w", err)
	}

	opts := []corvus.Option{
		corvus.WithEmbeddingProvider(p),
		corvus.WithEmbeddingBudget(budget),
		corvus.WithEmbeddingParallelism(endpoint.NumParallelTasks()),
	}

	return opts, nil
}

// textOptions returns a corvus.Option for the text generation provider when the
// enrichment endpoint is fully configured, or an empty slice otherwise.
func textOptions(cfg config.AppConfig) ([]corvus.Option, error) {
	endpoint := cfg.EnrichmentEndpoint()
	if endpoint == nil || endpoint.BaseURL() == "" || endpoint.APIKey() == "" {
		return nil, nil
	}

	txtCfg := provider.OpenAIConfig{
		APIKey:     endpoint.APIKey(),
		BaseURL:    endpoint.BaseURL(),
		ChatModel:  endpoint.Model(),
		Timeout:    endpoint.Timeout(),
		MaxRetries: endpoint.MaxRetries(),
	}
	if cacheDir := cfg.HTTPCacheDir(); cacheDir != "" {
		transport, err := provider.NewCachingTransport(cacheDir, nil)
		if err != nil {
			return nil, fmt.Errorf("text http cache: %w", err)
		}
		txtCfg.HTTPClient = &http.Client{
			Timeout:   endpoint.Timeout(),
			Transport: transport,
		}
	}
	p := provider.NewOpenAIProviderFromConfig(txtCfg)

	budget, err := search.NewTokenBudget(endpoint.MaxBatchChars())
	if err != nil {
		return nil, fmt.Errorf("max batch chars: %w", err)
	}

	opts := []corvus.Option{
		corvus.WithTextProvider(p),
		corvus.WithEnrichmentBudget(budget),
		corvus.WithEnrichmentParallelism(endpoint.NumParallelTasks()),
		corvus.WithEnricherParallelism(endpoint.NumParallelTasks()),
	}

	return opts, nil
}

// isSQLite checks if the database URL is for SQLite.
func isSQLite(url string) bool {
	return strings.HasPrefix(url, "sqlite:")
}
