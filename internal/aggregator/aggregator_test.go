package aggregator

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/enterprise-insights/gh-inventory/internal/domain"
)

func TestAddRepositoryFoldsOrgCounters(t *testing.T) {
	org := &domain.Organization{Login: "acme"}

	AddRepository(org, &domain.Repository{Visibility: domain.VisibilityPrivate})
	AddRepository(org, &domain.Repository{Visibility: domain.VisibilityInternal, IsArchived: true})
	AddRepository(org, &domain.Repository{Visibility: domain.VisibilityPublic, IsFork: true})
	AddRepository(org, &domain.Repository{Visibility: domain.VisibilityPrivate, IsArchived: true, IsFork: true})

	assert.Equal(t, 4, org.TotalRepos)
	assert.Equal(t, 2, org.PrivateRepos)
	assert.Equal(t, 1, org.InternalRepos)
	assert.Equal(t, 1, org.PublicRepos)
	assert.Equal(t, 2, org.ArchivedRepos)
	assert.Equal(t, 2, org.ForkRepos)
}

func TestRunSummaryTotals(t *testing.T) {
	s := NewRunSummary("acme-corp")
	assert.NotEmpty(t, s.RunID)
	assert.Equal(t, "acme-corp", s.Enterprise)

	s.AddRepository(&domain.Repository{
		Visibility:   domain.VisibilityPrivate,
		Workflows:    2,
		Webhooks:     1,
		Branches:     5,
		PullRequests: 3,
		OpenIssues:   7,
		Apps:         1,
	})
	s.AddRepository(&domain.Repository{
		Visibility: domain.VisibilityInternal,
		IsArchived: true,
		Branches:   1,
	})
	s.AddOrganization()
	s.AddWarning()

	assert.Equal(t, 1, s.Organizations)
	assert.Equal(t, 2, s.Repositories)
	assert.Equal(t, 1, s.Private)
	assert.Equal(t, 1, s.Internal)
	assert.Equal(t, 0, s.Public)
	assert.Equal(t, 1, s.Archived)
	assert.Equal(t, 2, s.Workflows)
	assert.Equal(t, 1, s.Webhooks)
	assert.Equal(t, 6, s.Branches)
	assert.Equal(t, 3, s.PullRequests)
	assert.Equal(t, 7, s.OpenIssues)
	assert.Equal(t, 1, s.Apps)
	assert.Equal(t, 1, s.Warnings)
}

func TestRunSnapshot(t *testing.T) {
	s := NewRunSummary("acme-corp")
	s.AddOrganization()
	s.AddRepository(&domain.Repository{Visibility: domain.VisibilityPublic})

	run := s.Run(domain.RunStatusCompleted)
	assert.Equal(t, s.RunID, run.ID)
	assert.Equal(t, "acme-corp", run.Enterprise)
	assert.Equal(t, domain.RunStatusCompleted, run.Status)
	assert.Equal(t, 1, run.Organizations)
	assert.Equal(t, 1, run.Repositories)
	if assert.NotNil(t, run.FinishedAt) {
		assert.False(t, run.FinishedAt.Before(run.StartedAt))
	}
}
