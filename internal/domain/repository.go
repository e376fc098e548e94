package domain

import (
	"strings"
	"time"
)

// Visibility is the single source of truth for a repository's visibility.
// Exactly one of the derived Is* flags is true for any repository.
type Visibility string

const (
	VisibilityPrivate  Visibility = "PRIVATE"
	VisibilityInternal Visibility = "INTERNAL"
	VisibilityPublic   Visibility = "PUBLIC"
)

// Repository represents a GitHub repository with its inventory metadata.
type Repository struct {
	Org         string `json:"org"`
	Name        string `json:"name"`
	FullName    string `json:"full_name"`
	Description string `json:"description"`
	URL         string `json:"url"`

	Visibility Visibility `json:"visibility"`
	IsFork     bool       `json:"is_fork"`
	IsArchived bool       `json:"is_archived"`

	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	PushedAt  *time.Time `json:"pushed_at,omitempty"`

	SizeKB        int    `json:"size_kb"`
	DefaultBranch string `json:"default_branch"`

	Forks        int `json:"forks"`
	OpenIssues   int `json:"open_issues"`
	PullRequests int `json:"pull_requests"`
	Releases     int `json:"releases"`
	Branches     int `json:"branches"`
	Tags         int `json:"tags"`
	Workflows    int `json:"workflows"`
	Webhooks     int `json:"webhooks"`
	Runners      int `json:"runners"`
	Apps         int `json:"apps"`

	LastSyncedAt *time.Time `json:"last_synced_at,omitempty"`
}

// IsPrivate reports whether the repository is private.
func (r *Repository) IsPrivate() bool { return r.Visibility == VisibilityPrivate }

// IsInternal reports whether the repository is internal to the enterprise.
func (r *Repository) IsInternal() bool { return r.Visibility == VisibilityInternal }

// IsPublic reports whether the repository is public.
func (r *Repository) IsPublic() bool { return r.Visibility == VisibilityPublic }

// NormalizeVisibility resolves a repository's visibility from the explicit
// API visibility field and the derived isPrivate boolean. The explicit field
// wins when it carries a known value; otherwise the boolean decides. The
// second return value is false when the two sources contradict each other or
// the explicit value is unknown, so callers can log a warning.
func NormalizeVisibility(explicit string, isPrivate bool) (Visibility, bool) {
	switch Visibility(strings.ToUpper(explicit)) {
	case VisibilityPrivate:
		return VisibilityPrivate, isPrivate
	case VisibilityInternal:
		// Internal repositories report isPrivate=true on some GHES versions.
		return VisibilityInternal, true
	case VisibilityPublic:
		return VisibilityPublic, !isPrivate
	}

	if isPrivate {
		return VisibilityPrivate, explicit == ""
	}
	return VisibilityPublic, explicit == ""
}
