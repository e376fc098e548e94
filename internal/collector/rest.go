package collector

import (
	"context"
	"fmt"
	"net/http"

	"github.com/google/go-github/v55/github"
)

// hostedRunnersResponse is the REST response for GitHub-hosted runners.
// go-github v55 has no typed API for this endpoint, so it goes through a raw
// request.
type hostedRunnersResponse struct {
	TotalCount int `json:"total_count"`
}

func (c *enterpriseCollector) repoSize(ctx context.Context, owner, name string) (int, error) {
	var size int
	err := c.exec.DoREST(ctx, func(ctx context.Context, client *github.Client) (*github.Response, error) {
		repo, resp, err := client.Repositories.Get(ctx, owner, name)
		if err == nil {
			size = repo.GetSize()
		}
		return resp, err
	})
	return size, err
}

func (c *enterpriseCollector) repoWorkflowCount(ctx context.Context, owner, name string) (int, error) {
	var count int
	err := c.exec.DoREST(ctx, func(ctx context.Context, client *github.Client) (*github.Response, error) {
		workflows, resp, err := client.Actions.ListWorkflows(ctx, owner, name, &github.ListOptions{PerPage: 1})
		if err == nil {
			count = workflows.GetTotalCount()
		}
		return resp, err
	})
	return count, err
}

func (c *enterpriseCollector) repoWebhookCount(ctx context.Context, owner, name string) (int, error) {
	var count int
	err := c.exec.DoRESTPaginated(ctx, func(ctx context.Context, client *github.Client, page int) (*github.Response, error) {
		hooks, resp, err := client.Repositories.ListHooks(ctx, owner, name, &github.ListOptions{Page: page, PerPage: 100})
		if err == nil {
			count += len(hooks)
		}
		return resp, err
	})
	if err != nil {
		return 0, err
	}
	return count, nil
}

// repoRunnerCount counts self-hosted runners only; GitHub-hosted runners are
// managed at organization level.
func (c *enterpriseCollector) repoRunnerCount(ctx context.Context, owner, name string) (int, error) {
	var count int
	err := c.exec.DoREST(ctx, func(ctx context.Context, client *github.Client) (*github.Response, error) {
		runners, resp, err := client.Actions.ListRunners(ctx, owner, name, &github.ListOptions{PerPage: 1})
		if err == nil {
			count = runners.TotalCount
		}
		return resp, err
	})
	return count, err
}

// repoAppInstalled reports 1 when at least one GitHub App is installed on the
// repository, 0 otherwise.
func (c *enterpriseCollector) repoAppInstalled(ctx context.Context, owner, name string) (int, error) {
	var count int
	err := c.exec.DoREST(ctx, func(ctx context.Context, client *github.Client) (*github.Response, error) {
		_, resp, err := client.Apps.FindRepositoryInstallation(ctx, owner, name)
		if err == nil {
			count = 1
		}
		return resp, err
	})
	return count, err
}

func (c *enterpriseCollector) orgWebhookCount(ctx context.Context, login string) (int, error) {
	var count int
	err := c.exec.DoRESTPaginated(ctx, func(ctx context.Context, client *github.Client, page int) (*github.Response, error) {
		hooks, resp, err := client.Organizations.ListHooks(ctx, login, &github.ListOptions{Page: page, PerPage: 100})
		if err == nil {
			count += len(hooks)
		}
		return resp, err
	})
	if err != nil {
		return 0, err
	}
	return count, nil
}

func (c *enterpriseCollector) orgAppCount(ctx context.Context, login string) (int, error) {
	var count int
	err := c.exec.DoREST(ctx, func(ctx context.Context, client *github.Client) (*github.Response, error) {
		installations, resp, err := client.Organizations.ListInstallations(ctx, login, &github.ListOptions{PerPage: 1})
		if err == nil {
			count = installations.GetTotalCount()
		}
		return resp, err
	})
	return count, err
}

func (c *enterpriseCollector) orgTeamCount(ctx context.Context, login string) (int, error) {
	var count int
	err := c.exec.DoRESTPaginated(ctx, func(ctx context.Context, client *github.Client, page int) (*github.Response, error) {
		teams, resp, err := client.Teams.ListTeams(ctx, login, &github.ListOptions{Page: page, PerPage: 100})
		if err == nil {
			count += len(teams)
		}
		return resp, err
	})
	if err != nil {
		return 0, err
	}
	return count, nil
}

// orgSelfHostedRunnerCount requires admin:org scope on the PAT; a forbidden
// response surfaces as a warning and a zero count upstream.
func (c *enterpriseCollector) orgSelfHostedRunnerCount(ctx context.Context, login string) (int, error) {
	var count int
	err := c.exec.DoREST(ctx, func(ctx context.Context, client *github.Client) (*github.Response, error) {
		runners, resp, err := client.Actions.ListOrganizationRunners(ctx, login, &github.ListOptions{PerPage: 1})
		if err == nil {
			count = runners.TotalCount
		}
		return resp, err
	})
	return count, err
}

func (c *enterpriseCollector) orgHostedRunnerCount(ctx context.Context, login string) (int, error) {
	var out hostedRunnersResponse
	err := c.exec.DoREST(ctx, func(ctx context.Context, client *github.Client) (*github.Response, error) {
		u := fmt.Sprintf("orgs/%s/actions/hosted-runners?per_page=1", login)
		req, err := client.NewRequest(http.MethodGet, u, nil)
		if err != nil {
			return nil, err
		}
		return client.Do(ctx, req, &out)
	})
	return out.TotalCount, err
}
