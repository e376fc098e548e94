// Package aggregator folds per-repository facts into organization and run
// level counters.
package aggregator

import (
	"time"

	"github.com/google/uuid"

	"github.com/enterprise-insights/gh-inventory/internal/domain"
)

// AddRepository folds one repository into the organization's aggregate
// counters.
func AddRepository(org *domain.Organization, repo *domain.Repository) {
	org.TotalRepos++
	switch {
	case repo.IsPrivate():
		org.PrivateRepos++
	case repo.IsInternal():
		org.InternalRepos++
	default:
		org.PublicRepos++
	}
	if repo.IsArchived {
		org.ArchivedRepos++
	}
	if repo.IsFork {
		org.ForkRepos++
	}
}

// RunSummary accumulates enterprise-wide totals for a single collection run.
type RunSummary struct {
	RunID      string
	Enterprise string
	StartedAt  time.Time

	Organizations int
	Repositories  int
	Private       int
	Public        int
	Internal      int
	Archived      int
	Forks         int
	Workflows     int
	Webhooks      int
	Branches      int
	PullRequests  int
	OpenIssues    int
	Apps          int
	Warnings      int
}

// NewRunSummary starts a summary for the given enterprise with a fresh run ID.
func NewRunSummary(enterprise string) *RunSummary {
	return &RunSummary{
		RunID:      uuid.New().String(),
		Enterprise: enterprise,
		StartedAt:  time.Now().UTC(),
	}
}

// AddRepository folds one repository into the run totals.
func (s *RunSummary) AddRepository(repo *domain.Repository) {
	s.Repositories++
	switch {
	case repo.IsPrivate():
		s.Private++
	case repo.IsInternal():
		s.Internal++
	default:
		s.Public++
	}
	if repo.IsArchived {
		s.Archived++
	}
	if repo.IsFork {
		s.Forks++
	}
	s.Workflows += repo.Workflows
	s.Webhooks += repo.Webhooks
	s.Branches += repo.Branches
	s.PullRequests += repo.PullRequests
	s.OpenIssues += repo.OpenIssues
	s.Apps += repo.Apps
}

// AddOrganization counts one fully processed organization.
func (s *RunSummary) AddOrganization() {
	s.Organizations++
}

// AddWarning counts one soft failure.
func (s *RunSummary) AddWarning() {
	s.Warnings++
}

// Run snapshots the summary as a persisted run record.
func (s *RunSummary) Run(status string) *domain.Run {
	now := time.Now().UTC()
	return &domain.Run{
		ID:            s.RunID,
		Enterprise:    s.Enterprise,
		Status:        status,
		StartedAt:     s.StartedAt,
		FinishedAt:    &now,
		Organizations: s.Organizations,
		Repositories:  s.Repositories,
		Warnings:      s.Warnings,
	}
}
