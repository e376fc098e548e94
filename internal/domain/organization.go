package domain

import "time"

// Organization represents a GitHub organization and its enterprise-level inventory.
type Organization struct {
	Login       string    `json:"login"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	URL         string    `json:"url"`
	CreatedAt   time.Time `json:"created_at"`

	// Repository counters, accumulated while the organization's
	// repositories stream through the walker.
	TotalRepos    int `json:"total_repos"`
	PrivateRepos  int `json:"private_repos"`
	PublicRepos   int `json:"public_repos"`
	InternalRepos int `json:"internal_repos"`
	ArchivedRepos int `json:"archived_repos"`
	ForkRepos     int `json:"fork_repos"`

	// Organization-level enrichment.
	Webhooks          int `json:"webhooks"`
	Apps              int `json:"apps"`
	Teams             int `json:"teams"`
	RunnersSelfHosted int `json:"runners_self_hosted"`
	RunnersHosted     int `json:"runners_hosted"`

	LastSyncedAt *time.Time `json:"last_synced_at,omitempty"`
}
