package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	DBPath            string `yaml:"db_path"`
	DefaultStrategy   string `yaml:"default_strategy"`
	DefaultOnConflict string `yaml:"default_on_conflict"`
	LogLevel          string `yaml:"log_level"`
	Output            string `yaml:"output"`
}

// Load loads configuration from multiple sources with precedence:
// 1. Environment variables
// 2. ./.env.local (dotenv) - walks up parent directories to find it
// 3. ~/.config/plotboard/config.yaml (YAML)
func Load() (*Config, error) {
	cfg := &Config{
		DefaultStrategy:   "replace",
		DefaultOnConflict: "skip",
		LogLevel:          "info",
		Output:            "table",
	}

	// Load .env.local if it exists (walking up parent directories)
	if envPath := findEnvLocal(); envPath != "" {
		_ = godotenv.Load(envPath)
	}

	// Load ~/.config/plotboard/config.yaml if it exists
	if err := loadYAMLConfig(cfg); err != nil {
		// YAML config is optional, so we don't fail if it doesn't exist
	}

	// Override with environment variables
	if dbPath := os.Getenv("PLOTBOARD_DB_PATH"); dbPath != "" {
		cfg.DBPath = dbPath
	}
	if strategy := os.Getenv("PLOTBOARD_STRATEGY"); strategy != "" {
		cfg.DefaultStrategy = strategy
	}
	if onConflict := os.Getenv("PLOTBOARD_ON_CONFLICT"); onConflict != "" {
		cfg.DefaultOnConflict = onConflict
	}
	if logLevel := os.Getenv("PLOTBOARD_LOG_LEVEL"); logLevel != "" {
		cfg.LogLevel = logLevel
	}
	if output := os.Getenv("PLOTBOARD_OUTPUT"); output != "" {
		cfg.Output = output
	}

	// Set defaults if not configured
	if cfg.DBPath == "" {
		// Check for project-local database first
		if _, err := os.Stat(".plotboard/boards.db"); err == nil {
			cfg.DBPath = ".plotboard/boards.db"
		} else {
			homeDir, err := os.UserHomeDir()
			if err != nil {
				return nil, fmt.Errorf("failed to get home directory: %w", err)
			}
			cfg.DBPath = filepath.Join(homeDir, ".local", "share", "plotboard", "boards.db")
		}
	}

	return cfg, nil
}

// loadYAMLConfig loads configuration from ~/.config/plotboard/config.yaml
func loadYAMLConfig(cfg *Config) error {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return err
	}

	configPath := filepath.Join(homeDir, ".config", "plotboard", "config.yaml")
	data, err := os.ReadFile(configPath)
	if err != nil {
		return err
	}

	return yaml.Unmarshal(data, cfg)
}

// findEnvLocal searches for .env.local starting from cwd and walking up
// parent directories. Stops at the user's home directory.
// Returns the path to .env.local if found, empty string otherwise.
func findEnvLocal() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		// If we can't get home dir, just check cwd
		if _, err := os.Stat(".env.local"); err == nil {
			return ".env.local"
		}
		return ""
	}

	cwd, err := os.Getwd()
	if err != nil {
		return ""
	}

	homeDir = filepath.Clean(homeDir)
	dir := filepath.Clean(cwd)

	for {
		envPath := filepath.Join(dir, ".env.local")
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}

		// Stop if we've reached home directory
		if dir == homeDir {
			break
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}

		dir = parent
	}

	return ""
}
