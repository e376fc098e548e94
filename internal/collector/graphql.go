package collector

import (
	"context"
	"time"

	"github.com/shurcooL/githubv4"
	"go.uber.org/zap"

	"github.com/enterprise-insights/gh-inventory/internal/domain"
)

type pageInfo struct {
	HasNextPage bool
	EndCursor   githubv4.String
}

type countField struct {
	TotalCount int
}

// rateLimitInfo is selected on every query so the executor can feed the
// token pool with fresh quota numbers.
type rateLimitInfo struct {
	Cost      int
	Remaining int
	ResetAt   githubv4.DateTime
}

type enterpriseOrgsQuery struct {
	RateLimit  rateLimitInfo `graphql:"rateLimit"`
	Enterprise struct {
		Organizations struct {
			PageInfo pageInfo
			Nodes    []struct {
				Login       string
				Name        string
				Description string
				URL         githubv4.URI `graphql:"url"`
				CreatedAt   githubv4.DateTime
			}
		} `graphql:"organizations(first: 100, after: $cursor)"`
	} `graphql:"enterprise(slug: $enterprise)"`
}

func (q *enterpriseOrgsQuery) rateInfo() (int, time.Time) {
	return q.RateLimit.Remaining, q.RateLimit.ResetAt.Time
}

type repoNode struct {
	Name             string
	NameWithOwner    string
	Description      string
	URL              githubv4.URI `graphql:"url"`
	Visibility       string
	IsPrivate        bool
	IsFork           bool
	IsArchived       bool
	CreatedAt        githubv4.DateTime
	UpdatedAt        githubv4.DateTime
	PushedAt         *githubv4.DateTime
	DefaultBranchRef *struct {
		Name string
	}
	ForkCount    int
	Issues       countField `graphql:"issues(states: OPEN)"`
	PullRequests countField
	Releases     countField
	Branches     countField `graphql:"branches: refs(refPrefix: $headRefPrefix, first: 0)"`
	Tags         countField `graphql:"tags: refs(refPrefix: $tagRefPrefix, first: 0)"`
}

type orgReposQuery struct {
	RateLimit    rateLimitInfo `graphql:"rateLimit"`
	Organization struct {
		Repositories struct {
			PageInfo pageInfo
			Nodes    []repoNode
		} `graphql:"repositories(first: 100, after: $cursor)"`
	} `graphql:"organization(login: $login)"`
}

func (q *orgReposQuery) rateInfo() (int, time.Time) {
	return q.RateLimit.Remaining, q.RateLimit.ResetAt.Time
}

// listOrganizations fetches every organization of the enterprise, in server
// order. Restricted organizations come back as null nodes and are skipped.
func (c *enterpriseCollector) listOrganizations(ctx context.Context) ([]*domain.Organization, error) {
	var orgs []*domain.Organization
	var cursor *githubv4.String

	for {
		q := &enterpriseOrgsQuery{}
		variables := map[string]interface{}{
			"enterprise": githubv4.String(c.enterprise),
			"cursor":     cursor,
		}
		if err := c.exec.DoGraphQL(ctx, q, variables); err != nil {
			return nil, err
		}

		for _, node := range q.Enterprise.Organizations.Nodes {
			if node.Login == "" {
				c.logger.Warn("Skipping restricted organization entry")
				continue
			}
			orgs = append(orgs, &domain.Organization{
				Login:       node.Login,
				Name:        node.Name,
				Description: node.Description,
				URL:         uriString(node.URL),
				CreatedAt:   node.CreatedAt.Time,
			})
		}

		pi := q.Enterprise.Organizations.PageInfo
		if !pi.HasNextPage {
			break
		}
		cursor = githubv4.NewString(pi.EndCursor)
	}

	c.logger.Info("Found organizations",
		zap.String("enterprise", c.enterprise),
		zap.Int("count", len(orgs)))
	return orgs, nil
}

// listRepositories fetches every repository of an organization, in server
// order, with the counts that GraphQL can answer in the listing itself.
func (c *enterpriseCollector) listRepositories(ctx context.Context, login string) ([]*domain.Repository, error) {
	var repos []*domain.Repository
	var cursor *githubv4.String

	for {
		q := &orgReposQuery{}
		variables := map[string]interface{}{
			"login":         githubv4.String(login),
			"cursor":        cursor,
			"headRefPrefix": githubv4.String("refs/heads/"),
			"tagRefPrefix":  githubv4.String("refs/tags/"),
		}
		if err := c.exec.DoGraphQL(ctx, q, variables); err != nil {
			return nil, err
		}

		for _, node := range q.Organization.Repositories.Nodes {
			repos = append(repos, c.repoFromNode(login, node))
		}

		pi := q.Organization.Repositories.PageInfo
		if !pi.HasNextPage {
			break
		}
		cursor = githubv4.NewString(pi.EndCursor)
	}

	c.logger.Info("Found repositories",
		zap.String("organization", login),
		zap.Int("count", len(repos)))
	return repos, nil
}

func (c *enterpriseCollector) repoFromNode(login string, node repoNode) *domain.Repository {
	visibility, consistent := domain.NormalizeVisibility(node.Visibility, node.IsPrivate)
	if !consistent {
		c.logger.Warn("Inconsistent visibility flags, preferring explicit visibility field",
			zap.String("repository", node.NameWithOwner),
			zap.String("visibility", node.Visibility),
			zap.Bool("is_private", node.IsPrivate))
	}

	repo := &domain.Repository{
		Org:          login,
		Name:         node.Name,
		FullName:     node.NameWithOwner,
		Description:  node.Description,
		URL:          uriString(node.URL),
		Visibility:   visibility,
		IsFork:       node.IsFork,
		IsArchived:   node.IsArchived,
		CreatedAt:    node.CreatedAt.Time,
		UpdatedAt:    node.UpdatedAt.Time,
		Forks:        node.ForkCount,
		OpenIssues:   node.Issues.TotalCount,
		PullRequests: node.PullRequests.TotalCount,
		Releases:     node.Releases.TotalCount,
		Branches:     node.Branches.TotalCount,
		Tags:         node.Tags.TotalCount,
	}
	if node.PushedAt != nil {
		t := node.PushedAt.Time
		repo.PushedAt = &t
	}
	if node.DefaultBranchRef != nil {
		repo.DefaultBranch = node.DefaultBranchRef.Name
	}
	return repo
}

func uriString(u githubv4.URI) string {
	if u.URL == nil {
		return ""
	}
	return u.String()
}
