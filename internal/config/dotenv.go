package config

import (
	"os"

	"github.com/joho/godotenv"
)

// LoadDotEnv loads environment variables from a .env file.
// If path is empty, it loads from ".env" in the current directory.
// If the file does not exist, it silently returns nil (not an error).
func LoadDotEnv(path string) error {
	if path == "" {
		path = ".env"
	}

	// Check if file exists first
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}

	return godotenv.Load(path)
}

// MustLoadDotEnv loads environment variables from a .env file.
// Unlike LoadDotEnv, it returns an error if the file does not exist.
func MustLoadDotEnv(path string) error {
	if path == "" {
		path = ".env"
	}
	return godotenv.Load(path)
}

// loadEachExisting applies load to each path that exists, skipping the rest.
func loadEachExisting(paths []string, load func(string) error) error {
	for _, path := range paths {
		if _, err := os.Stat(path); os.IsNotExist(err) {
			continue
		}
		if err := load(path); err != nil {
			return err
		}
	}
	return nil
}

// LoadDotEnvFromFiles loads environment variables from multiple .env files.
// Files are processed in order. Note: godotenv.Load does NOT override existing
// environment variables - the first file that sets a variable wins.
// Non-existent files are silently skipped.
func LoadDotEnvFromFiles(paths ...string) error {
	return loadEachExisting(paths, func(p string) error { return godotenv.Load(p) })
}

// OverloadDotEnvFromFiles loads environment variables from multiple .env files,
// overwriting any existing values. Files are processed in order, with later
// files overwriting earlier values. Non-existent files are silently skipped.
func OverloadDotEnvFromFiles(paths ...string) error {
	return loadEachExisting(paths, func(p string) error { return godotenv.Overload(p) })
}

// LoadConfig loads configuration from one or more .env files (optional) and
// environment variables. Files are loaded in order via LoadDotEnvFromFiles
// (first file to set a variable wins, and real environment variables always
// win over any of them), then environment variables override. With no paths
// given it falls back to ".env" in the current directory. This matches
// Python's pydantic-settings behavior, extended to support a base .env plus
// per-workspace overrides layered on top.
func LoadConfig(envPaths ...string) (AppConfig, error) {
	if len(envPaths) == 0 {
		envPaths = []string{".env"}
	}

	if err := LoadDotEnvFromFiles(envPaths...); err != nil {
		return AppConfig{}, err
	}

	// Load from environment variables
	envCfg, err := LoadFromEnv()
	if err != nil {
		return AppConfig{}, err
	}

	return envCfg.Normalize().ToAppConfig(), nil
}
