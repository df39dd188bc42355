// Package main is the entry point for the corvus CLI.
//
//	@title						Corvus API
//	@version					1.0
//	@description				Code understanding platform with hybrid search and LLM-powered enrichments
//	@host						localhost:8080
//	@BasePath					/api/v1
//	@securityDefinitions.apikey	APIKeyAuth
//	@in							header
//	@name						X-API-KEY
package main

import (
	"fmt"
	"os"

	"github.com/corvus-index/corvus/internal/config"
	"github.com/spf13/cobra"
)

// Version information set via ldflags during build.
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "corvus",
		Short: "Corvus code intelligence server",
		Long:  `Corvus is a code understanding platform that indexes Git repositories and provides hybrid search with LLM-powered enrichments.`,
	}

	cmd.AddCommand(serveCmd())
	cmd.AddCommand(stdioCmd())
	cmd.AddCommand(versionCmd())

	return cmd
}

// loadConfig loads configuration from one or more .env files (a base file
// plus optional per-workspace overrides, applied in the order given) and
// environment variables.
func loadConfig(envFiles []string) (config.AppConfig, error) {
	cfg, err := config.LoadConfig(envFiles...)
	if err != nil {
		return config.AppConfig{}, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}
