// Package postgres is the PostgreSQL storage adapter.
package postgres

import (
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"

	"github.com/enterprise-insights/gh-inventory/internal/domain"
)

// Adapter stores inventory data in a PostgreSQL database.
type Adapter struct {
	db *sql.DB
}

// NewAdapter connects to the database at url and verifies the connection.
func NewAdapter(url string) (*Adapter, error) {
	db, err := sql.Open("postgres", url)
	if err != nil {
		return nil, fmt.Errorf("opening postgres connection: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging postgres: %w", err)
	}
	return &Adapter{db: db}, nil
}

// Migrate creates the schema when it does not exist yet.
func (a *Adapter) Migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS organizations (
		login TEXT PRIMARY KEY,
		name TEXT,
		description TEXT,
		url TEXT,
		created_at TIMESTAMPTZ,
		total_repos INTEGER,
		private_repos INTEGER,
		public_repos INTEGER,
		internal_repos INTEGER,
		archived_repos INTEGER,
		fork_repos INTEGER,
		webhooks INTEGER,
		apps INTEGER,
		teams INTEGER,
		runners_self_hosted INTEGER,
		runners_hosted INTEGER,
		last_synced_at TIMESTAMPTZ
	);
	CREATE TABLE IF NOT EXISTS repositories (
		org TEXT NOT NULL,
		name TEXT NOT NULL,
		description TEXT,
		url TEXT,
		visibility TEXT,
		is_fork BOOLEAN,
		is_archived BOOLEAN,
		created_at TIMESTAMPTZ,
		updated_at TIMESTAMPTZ,
		pushed_at TIMESTAMPTZ,
		size_kb INTEGER,
		default_branch TEXT,
		forks INTEGER,
		open_issues INTEGER,
		pull_requests INTEGER,
		releases INTEGER,
		branches INTEGER,
		tags INTEGER,
		workflows INTEGER,
		webhooks INTEGER,
		runners INTEGER,
		apps INTEGER,
		last_synced_at TIMESTAMPTZ,
		PRIMARY KEY (org, name)
	);
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		enterprise TEXT,
		status TEXT,
		started_at TIMESTAMPTZ,
		finished_at TIMESTAMPTZ,
		organizations INTEGER,
		repositories INTEGER,
		warnings INTEGER
	);
	CREATE INDEX IF NOT EXISTS idx_repositories_org ON repositories(org);
	`
	if _, err := a.db.Exec(schema); err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}
	return nil
}

func (a *Adapter) SaveOrganization(org *domain.Organization) error {
	query := `
	INSERT INTO organizations (
		login, name, description, url, created_at,
		total_repos, private_repos, public_repos, internal_repos,
		archived_repos, fork_repos, webhooks, apps, teams,
		runners_self_hosted, runners_hosted, last_synced_at
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
	ON CONFLICT (login) DO UPDATE SET
		name = EXCLUDED.name,
		description = EXCLUDED.description,
		url = EXCLUDED.url,
		created_at = EXCLUDED.created_at,
		total_repos = EXCLUDED.total_repos,
		private_repos = EXCLUDED.private_repos,
		public_repos = EXCLUDED.public_repos,
		internal_repos = EXCLUDED.internal_repos,
		archived_repos = EXCLUDED.archived_repos,
		fork_repos = EXCLUDED.fork_repos,
		webhooks = EXCLUDED.webhooks,
		apps = EXCLUDED.apps,
		teams = EXCLUDED.teams,
		runners_self_hosted = EXCLUDED.runners_self_hosted,
		runners_hosted = EXCLUDED.runners_hosted,
		last_synced_at = EXCLUDED.last_synced_at`

	_, err := a.db.Exec(query,
		org.Login, org.Name, org.Description, org.URL, org.CreatedAt,
		org.TotalRepos, org.PrivateRepos, org.PublicRepos, org.InternalRepos,
		org.ArchivedRepos, org.ForkRepos, org.Webhooks, org.Apps, org.Teams,
		org.RunnersSelfHosted, org.RunnersHosted, org.LastSyncedAt)
	if err != nil {
		return fmt.Errorf("saving organization %s: %w", org.Login, err)
	}
	return nil
}

func (a *Adapter) SaveRepository(repo *domain.Repository) error {
	query := `
	INSERT INTO repositories (
		org, name, description, url, visibility, is_fork, is_archived,
		created_at, updated_at, pushed_at, size_kb, default_branch,
		forks, open_issues, pull_requests, releases, branches, tags,
		workflows, webhooks, runners, apps, last_synced_at
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12,
		$13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23)
	ON CONFLICT (org, name) DO UPDATE SET
		description = EXCLUDED.description,
		url = EXCLUDED.url,
		visibility = EXCLUDED.visibility,
		is_fork = EXCLUDED.is_fork,
		is_archived = EXCLUDED.is_archived,
		created_at = EXCLUDED.created_at,
		updated_at = EXCLUDED.updated_at,
		pushed_at = EXCLUDED.pushed_at,
		size_kb = EXCLUDED.size_kb,
		default_branch = EXCLUDED.default_branch,
		forks = EXCLUDED.forks,
		open_issues = EXCLUDED.open_issues,
		pull_requests = EXCLUDED.pull_requests,
		releases = EXCLUDED.releases,
		branches = EXCLUDED.branches,
		tags = EXCLUDED.tags,
		workflows = EXCLUDED.workflows,
		webhooks = EXCLUDED.webhooks,
		runners = EXCLUDED.runners,
		apps = EXCLUDED.apps,
		last_synced_at = EXCLUDED.last_synced_at`

	_, err := a.db.Exec(query,
		repo.Org, repo.Name, repo.Description, repo.URL, string(repo.Visibility),
		repo.IsFork, repo.IsArchived, repo.CreatedAt, repo.UpdatedAt, repo.PushedAt,
		repo.SizeKB, repo.DefaultBranch, repo.Forks, repo.OpenIssues,
		repo.PullRequests, repo.Releases, repo.Branches, repo.Tags,
		repo.Workflows, repo.Webhooks, repo.Runners, repo.Apps, repo.LastSyncedAt)
	if err != nil {
		return fmt.Errorf("saving repository %s: %w", repo.FullName, err)
	}
	return nil
}

func (a *Adapter) SaveRun(run *domain.Run) error {
	query := `
	INSERT INTO runs (
		id, enterprise, status, started_at, finished_at,
		organizations, repositories, warnings
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	ON CONFLICT (id) DO UPDATE SET
		status = EXCLUDED.status,
		finished_at = EXCLUDED.finished_at,
		organizations = EXCLUDED.organizations,
		repositories = EXCLUDED.repositories,
		warnings = EXCLUDED.warnings`

	_, err := a.db.Exec(query,
		run.ID, run.Enterprise, run.Status, run.StartedAt, run.FinishedAt,
		run.Organizations, run.Repositories, run.Warnings)
	if err != nil {
		return fmt.Errorf("saving run %s: %w", run.ID, err)
	}
	return nil
}

func (a *Adapter) GetOrganizations() ([]*domain.Organization, error) {
	rows, err := a.db.Query(`
	SELECT login, name, description, url, created_at,
		total_repos, private_repos, public_repos, internal_repos,
		archived_repos, fork_repos, webhooks, apps, teams,
		runners_self_hosted, runners_hosted, last_synced_at
	FROM organizations ORDER BY login`)
	if err != nil {
		return nil, fmt.Errorf("querying organizations: %w", err)
	}
	defer rows.Close()

	var orgs []*domain.Organization
	for rows.Next() {
		org := &domain.Organization{}
		var lastSynced sql.NullTime
		err := rows.Scan(&org.Login, &org.Name, &org.Description, &org.URL,
			&org.CreatedAt, &org.TotalRepos, &org.PrivateRepos, &org.PublicRepos,
			&org.InternalRepos, &org.ArchivedRepos, &org.ForkRepos,
			&org.Webhooks, &org.Apps, &org.Teams,
			&org.RunnersSelfHosted, &org.RunnersHosted, &lastSynced)
		if err != nil {
			return nil, fmt.Errorf("scanning organization: %w", err)
		}
		if lastSynced.Valid {
			t := lastSynced.Time
			org.LastSyncedAt = &t
		}
		orgs = append(orgs, org)
	}
	return orgs, rows.Err()
}

func (a *Adapter) GetRepositories(org string) ([]*domain.Repository, error) {
	rows, err := a.db.Query(`
	SELECT org, name, description, url, visibility, is_fork, is_archived,
		created_at, updated_at, pushed_at, size_kb, default_branch,
		forks, open_issues, pull_requests, releases, branches, tags,
		workflows, webhooks, runners, apps, last_synced_at
	FROM repositories WHERE org = $1 ORDER BY name`, org)
	if err != nil {
		return nil, fmt.Errorf("querying repositories for %s: %w", org, err)
	}
	defer rows.Close()

	var repos []*domain.Repository
	for rows.Next() {
		repo := &domain.Repository{}
		var visibility string
		var pushedAt, lastSynced sql.NullTime
		err := rows.Scan(&repo.Org, &repo.Name, &repo.Description, &repo.URL,
			&visibility, &repo.IsFork, &repo.IsArchived,
			&repo.CreatedAt, &repo.UpdatedAt, &pushedAt,
			&repo.SizeKB, &repo.DefaultBranch, &repo.Forks, &repo.OpenIssues,
			&repo.PullRequests, &repo.Releases, &repo.Branches, &repo.Tags,
			&repo.Workflows, &repo.Webhooks, &repo.Runners, &repo.Apps, &lastSynced)
		if err != nil {
			return nil, fmt.Errorf("scanning repository: %w", err)
		}
		repo.Visibility = domain.Visibility(visibility)
		repo.FullName = repo.Org + "/" + repo.Name
		if pushedAt.Valid {
			t := pushedAt.Time
			repo.PushedAt = &t
		}
		if lastSynced.Valid {
			t := lastSynced.Time
			repo.LastSyncedAt = &t
		}
		repos = append(repos, repo)
	}
	return repos, rows.Err()
}

func (a *Adapter) GetRuns(limit int) ([]*domain.Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := a.db.Query(`
	SELECT id, enterprise, status, started_at, finished_at,
		organizations, repositories, warnings
	FROM runs ORDER BY started_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	var runs []*domain.Run
	for rows.Next() {
		run := &domain.Run{}
		var finishedAt sql.NullTime
		err := rows.Scan(&run.ID, &run.Enterprise, &run.Status,
			&run.StartedAt, &finishedAt,
			&run.Organizations, &run.Repositories, &run.Warnings)
		if err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		if finishedAt.Valid {
			t := finishedAt.Time
			run.FinishedAt = &t
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

func (a *Adapter) Close() error {
	return a.db.Close()
}
