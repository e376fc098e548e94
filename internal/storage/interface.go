// Package storage persists collected inventory for later querying through
// the CLI and the read-only API.
package storage

import (
	"fmt"

	"github.com/enterprise-insights/gh-inventory/internal/domain"
	"github.com/enterprise-insights/gh-inventory/internal/storage/postgres"
	"github.com/enterprise-insights/gh-inventory/internal/storage/sqlite"
)

// Storage is the persistence interface for inventory data.
type Storage interface {
	Migrate() error

	SaveOrganization(org *domain.Organization) error
	SaveRepository(repo *domain.Repository) error
	SaveRun(run *domain.Run) error

	GetOrganizations() ([]*domain.Organization, error)
	GetRepositories(org string) ([]*domain.Repository, error)
	GetRuns(limit int) ([]*domain.Run, error)

	Close() error
}

// Config selects and configures a storage backend.
type Config struct {
	Type        string // "sqlite" or "postgres"
	SQLitePath  string
	PostgresURL string
}

// NewStorage creates the backend named by cfg.Type and runs migrations.
func NewStorage(cfg Config) (Storage, error) {
	var (
		store Storage
		err   error
	)
	switch cfg.Type {
	case "sqlite":
		store, err = sqlite.NewAdapter(cfg.SQLitePath)
	case "postgres":
		store, err = postgres.NewAdapter(cfg.PostgresURL)
	default:
		return nil, fmt.Errorf("unknown storage type: %s", cfg.Type)
	}
	if err != nil {
		return nil, err
	}
	if err := store.Migrate(); err != nil {
		store.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	return store, nil
}
