package main

import (
	"fmt"
	"log/slog"

	"github.com/corvus-index/corvus"
	"github.com/corvus-index/corvus/infrastructure/provider"
	"github.com/corvus-index/corvus/internal/log"
	"github.com/corvus-index/corvus/internal/mcp"
	"github.com/spf13/cobra"
)

func stdioCmd() *cobra.Command {
	var envFiles []string

	cmd := &cobra.Command{
		Use:   "stdio",
		Short: "Start MCP server on stdio",
		Long: `Start the MCP (Model Context Protocol) server on stdio.

This allows AI assistants to interact with Corvus for code search and understanding.
Configuration is loaded from environment variables and .env file(s).`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStdio(envFiles)
		},
	}

	cmd.Flags().StringArrayVar(&envFiles, "env-file", nil, "Path to a .env file; repeat to layer a base file plus per-workspace overrides")

	return cmd
}

func runStdio(envFiles []string) error {
	// Load configuration
	cfg, err := loadConfig(envFiles)
	if err != nil {
		return err
	}

	// Ensure directories exist
	if err := cfg.EnsureDataDir(); err != nil {
		return fmt.Errorf("create data directory: %w", err)
	}

	// Setup logger to file (can't use stdout for MCP)
	logger := log.NewLogger(cfg)
	slogger := logger.Slog()

	slogger.Info("starting MCP server",
		slog.String("version", version),
		slog.String("data_dir", cfg.DataDir()),
	)

	// Build corvus client options
	opts := []corvus.Option{
		corvus.WithDataDir(cfg.DataDir()),
		corvus.WithLogger(slogger),
	}

	// Configure storage based on database URL
	if cfg.DBURL() != "" {
		// Assume VectorChord for PostgreSQL databases (default for corvus)
		opts = append(opts, corvus.WithPostgresVectorchord(cfg.DBURL()))
	} else {
		// Fall back to SQLite
		opts = append(opts, corvus.WithSQLite(cfg.DataDir()+"/corvus.db"))
	}

	// Configure embedding provider if available
	embEndpoint := cfg.EmbeddingEndpoint()
	if embEndpoint != nil && embEndpoint.BaseURL() != "" && embEndpoint.APIKey() != "" {
		opts = append(opts, corvus.WithOpenAIConfig(provider.OpenAIConfig{
			APIKey:         embEndpoint.APIKey(),
			BaseURL:        embEndpoint.BaseURL(),
			EmbeddingModel: embEndpoint.Model(),
			Timeout:        embEndpoint.Timeout(),
			MaxRetries:     embEndpoint.MaxRetries(),
		}))
	}

	// Create corvus client
	client, err := corvus.New(opts...)
	if err != nil {
		return fmt.Errorf("create corvus client: %w", err)
	}
	defer func() {
		if err := client.Close(); err != nil {
			slogger.Error("failed to close corvus client", slog.Any("error", err))
		}
	}()

	// Check code search availability
	if !client.Search.Available() {
		slogger.Warn("code search service not available - search will not work")
		return fmt.Errorf("code search service not available: configure database and embedding provider")
	}

	// Create MCP server
	mcpServer := mcp.NewServer(
		client.Repositories, client.Commits, client.Enrichments, client.Blobs,
		client.Search, client.Search, client.Enrichments, client.Files,
		version, slogger,
	)

	// Run on stdio
	return mcpServer.ServeStdio()
}
