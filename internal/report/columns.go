package report

import (
	"strconv"
	"time"

	"github.com/enterprise-insights/gh-inventory/internal/domain"
)

// RepoColumns is the repository report header, in output order.
var RepoColumns = []string{
	"Organization",
	"Repository",
	"Description",
	"URL",
	"Is_Private",
	"Is_Internal",
	"Is_Public",
	"Is_Fork",
	"Is_Archived",
	"Created_At",
	"Updated_At",
	"Pushed_At",
	"Size_KB",
	"Default_Branch",
	"Forks",
	"Open_Issues",
	"Pull_Requests",
	"Releases",
	"Branches",
	"Tags",
	"Workflows",
	"Repo_Webhooks",
	"Repo_Runners",
	"GitHub_Apps",
}

// OrgColumns is the organization report header, in output order.
var OrgColumns = []string{
	"Organization",
	"Description",
	"URL",
	"Created_At",
	"Total_Repositories",
	"Private_Repositories",
	"Public_Repositories",
	"Internal_Repositories",
	"Archived_Repositories",
	"Fork_Repositories",
	"Org_Webhooks",
	"Org_GitHub_Apps",
	"Org_Teams",
	"Org_Runners_SelfHosted",
	"Org_Runners_GitHubHosted",
}

// RepoRow renders a repository as a report record matching RepoColumns.
func RepoRow(repo *domain.Repository) []string {
	return []string{
		repo.Org,
		repo.Name,
		repo.Description,
		repo.URL,
		strconv.FormatBool(repo.IsPrivate()),
		strconv.FormatBool(repo.IsInternal()),
		strconv.FormatBool(repo.IsPublic()),
		strconv.FormatBool(repo.IsFork),
		strconv.FormatBool(repo.IsArchived),
		formatTime(repo.CreatedAt),
		formatTime(repo.UpdatedAt),
		formatTimePtr(repo.PushedAt),
		strconv.Itoa(repo.SizeKB),
		repo.DefaultBranch,
		strconv.Itoa(repo.Forks),
		strconv.Itoa(repo.OpenIssues),
		strconv.Itoa(repo.PullRequests),
		strconv.Itoa(repo.Releases),
		strconv.Itoa(repo.Branches),
		strconv.Itoa(repo.Tags),
		strconv.Itoa(repo.Workflows),
		strconv.Itoa(repo.Webhooks),
		strconv.Itoa(repo.Runners),
		strconv.Itoa(repo.Apps),
	}
}

// OrgRow renders an organization as a report record matching OrgColumns.
func OrgRow(org *domain.Organization) []string {
	return []string{
		org.Login,
		org.Description,
		org.URL,
		formatTime(org.CreatedAt),
		strconv.Itoa(org.TotalRepos),
		strconv.Itoa(org.PrivateRepos),
		strconv.Itoa(org.PublicRepos),
		strconv.Itoa(org.InternalRepos),
		strconv.Itoa(org.ArchivedRepos),
		strconv.Itoa(org.ForkRepos),
		strconv.Itoa(org.Webhooks),
		strconv.Itoa(org.Apps),
		strconv.Itoa(org.Teams),
		strconv.Itoa(org.RunnersSelfHosted),
		strconv.Itoa(org.RunnersHosted),
	}
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

func formatTimePtr(t *time.Time) string {
	if t == nil {
		return ""
	}
	return formatTime(*t)
}
