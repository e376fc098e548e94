package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	apperrors "github.com/enterprise-insights/gh-inventory/internal/errors"
)

// Config holds the application configuration
type Config struct {
	// GitHub
	Enterprise string
	Tokens     []string
	APIBaseURL string
	GraphQLURL string

	// Output
	OutputDir   string
	RepoCSVFile string
	OrgCSVFile  string

	// Traversal
	MaxOrganizations int

	// Storage
	StorageType string // "sqlite", "postgres" or "none"
	SQLitePath  string
	PostgresURL string

	// API server
	APIPort string
	APIHost string

	// Logging
	LogLevel string
}

// Load loads the configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists (ignore error if not found)
	_ = godotenv.Load()

	maxOrgs, err := strconv.Atoi(getEnv("MAX_ORGS_TO_PROCESS", "0"))
	if err != nil {
		return nil, apperrors.NewConfigurationError("MAX_ORGS_TO_PROCESS", "must be an integer")
	}

	return &Config{
		Enterprise:       getEnv("GITHUB_ENTERPRISE_NAME", ""),
		Tokens:           splitTokens(getEnv("GITHUB_PATS", "")),
		APIBaseURL:       getEnv("GITHUB_API_URL", "https://api.github.com"),
		GraphQLURL:       getEnv("GITHUB_GRAPHQL_URL", "https://api.github.com/graphql"),
		OutputDir:        getEnv("OUTPUT_DIR", "output"),
		RepoCSVFile:      getEnv("REPO_CSV_FILE", "github_inventory_repositories.csv"),
		OrgCSVFile:       getEnv("ORG_CSV_FILE", "github_inventory_organizations.csv"),
		MaxOrganizations: maxOrgs,
		StorageType:      getEnv("STORAGE_TYPE", "sqlite"),
		SQLitePath:       getEnv("SQLITE_PATH", "./inventory.db"),
		PostgresURL:      getEnv("POSTGRES_URL", ""),
		APIPort:          getEnv("API_PORT", "8080"),
		APIHost:          getEnv("API_HOST", "localhost"),
		LogLevel:         getEnv("LOG_LEVEL", "info"),
	}, nil
}

// getEnv returns the value of an environment variable or a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// splitTokens parses a comma-separated PAT list, dropping empty entries.
func splitTokens(s string) []string {
	var tokens []string
	for _, t := range strings.Split(s, ",") {
		if t = strings.TrimSpace(t); t != "" {
			tokens = append(tokens, t)
		}
	}
	return tokens
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Enterprise == "" {
		return apperrors.NewConfigurationError("GITHUB_ENTERPRISE_NAME", "enterprise slug is required")
	}
	if len(c.Tokens) == 0 {
		return apperrors.NewConfigurationError("GITHUB_PATS", "at least one personal access token is required")
	}
	if c.MaxOrganizations < 0 {
		return apperrors.NewConfigurationError("MAX_ORGS_TO_PROCESS", "must be zero or positive")
	}
	switch c.StorageType {
	case "sqlite", "postgres", "none":
	default:
		return apperrors.NewConfigurationError("STORAGE_TYPE", "must be 'sqlite', 'postgres' or 'none'")
	}
	if c.StorageType == "postgres" && c.PostgresURL == "" {
		return apperrors.NewConfigurationError("POSTGRES_URL", "PostgreSQL URL is required when STORAGE_TYPE is 'postgres'")
	}
	return nil
}

// RepoCSVPath returns the repository report path inside the output directory.
func (c *Config) RepoCSVPath() string {
	return joinOutput(c.OutputDir, c.RepoCSVFile)
}

// OrgCSVPath returns the organization report path inside the output directory.
func (c *Config) OrgCSVPath() string {
	return joinOutput(c.OutputDir, c.OrgCSVFile)
}

func joinOutput(dir, file string) string {
	if dir == "" {
		return file
	}
	return strings.TrimSuffix(dir, "/") + "/" + file
}
