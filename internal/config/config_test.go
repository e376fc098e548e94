package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/enterprise-insights/gh-inventory/internal/errors"
)

func validEnv(t *testing.T) {
	t.Helper()
	t.Setenv("GITHUB_ENTERPRISE_NAME", "acme-corp")
	t.Setenv("GITHUB_PATS", "ghp_aaa, ghp_bbb ,ghp_ccc")
}

func TestLoadDefaults(t *testing.T) {
	validEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "acme-corp", cfg.Enterprise)
	assert.Equal(t, []string{"ghp_aaa", "ghp_bbb", "ghp_ccc"}, cfg.Tokens)
	assert.Equal(t, "https://api.github.com", cfg.APIBaseURL)
	assert.Equal(t, "https://api.github.com/graphql", cfg.GraphQLURL)
	assert.Equal(t, "output", cfg.OutputDir)
	assert.Equal(t, 0, cfg.MaxOrganizations)
	assert.Equal(t, "sqlite", cfg.StorageType)
	assert.NoError(t, cfg.Validate())
}

func TestLoadCSVPaths(t *testing.T) {
	validEnv(t)
	t.Setenv("OUTPUT_DIR", "out/")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "out/github_inventory_repositories.csv", cfg.RepoCSVPath())
	assert.Equal(t, "out/github_inventory_organizations.csv", cfg.OrgCSVPath())
}

func TestLoadRejectsBadMaxOrgs(t *testing.T) {
	validEnv(t)
	t.Setenv("MAX_ORGS_TO_PROCESS", "ten")

	_, err := Load()
	require.Error(t, err)
	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.ErrCodeConfiguration, appErr.Code)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(cfg *Config)
		wantErr bool
	}{
		{"valid", func(cfg *Config) {}, false},
		{"missing enterprise", func(cfg *Config) { cfg.Enterprise = "" }, true},
		{"no tokens", func(cfg *Config) { cfg.Tokens = nil }, true},
		{"negative max orgs", func(cfg *Config) { cfg.MaxOrganizations = -1 }, true},
		{"unknown storage", func(cfg *Config) { cfg.StorageType = "redis" }, true},
		{"storage none", func(cfg *Config) { cfg.StorageType = "none" }, false},
		{"postgres without url", func(cfg *Config) { cfg.StorageType = "postgres" }, true},
		{"postgres with url", func(cfg *Config) {
			cfg.StorageType = "postgres"
			cfg.PostgresURL = "postgres://localhost/inventory"
		}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{
				Enterprise:  "acme-corp",
				Tokens:      []string{"ghp_aaa"},
				StorageType: "sqlite",
			}
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
