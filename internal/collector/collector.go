// Package collector walks a GitHub Enterprise account and produces the
// repository and organization inventory.
package collector

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/enterprise-insights/gh-inventory/internal/aggregator"
	"github.com/enterprise-insights/gh-inventory/internal/domain"
	apperrors "github.com/enterprise-insights/gh-inventory/internal/errors"
	"github.com/enterprise-insights/gh-inventory/internal/report"
	"github.com/enterprise-insights/gh-inventory/internal/storage"
)

// Collector runs a full inventory collection.
type Collector interface {
	CollectInventory(ctx context.Context) (*aggregator.RunSummary, error)
}

// Options configures a collection run.
type Options struct {
	Enterprise string
	// MaxOrganizations caps the number of organizations processed.
	// Zero means no cap.
	MaxOrganizations int
}

type enterpriseCollector struct {
	enterprise string
	maxOrgs    int
	exec       *Executor
	repoReport *report.Writer
	orgReport  *report.Writer
	store      storage.Storage
	logger     *zap.Logger
}

// New creates a Collector. store may be nil when persistence is disabled.
func New(opts Options, exec *Executor, repoReport, orgReport *report.Writer, store storage.Storage, logger *zap.Logger) Collector {
	return &enterpriseCollector{
		enterprise: opts.Enterprise,
		maxOrgs:    opts.MaxOrganizations,
		exec:       exec,
		repoReport: repoReport,
		orgReport:  orgReport,
		store:      store,
		logger:     logger,
	}
}

// CollectInventory enumerates every organization in the enterprise, then every
// repository in each organization, enriching both with REST metadata and
// appending rows to the CSV reports as they complete. Organizations are
// processed strictly in enumeration order so report rows land in a stable
// order across runs.
func (c *enterpriseCollector) CollectInventory(ctx context.Context) (*aggregator.RunSummary, error) {
	summary := aggregator.NewRunSummary(c.enterprise)

	c.logger.Info("starting inventory collection",
		zap.String("enterprise", c.enterprise),
		zap.Int("token_pool_size", c.exec.PoolSize()))

	orgs, err := c.listOrganizations(ctx)
	if err != nil {
		return summary, fmt.Errorf("listing organizations for enterprise %s: %w", c.enterprise, err)
	}

	if c.maxOrgs > 0 && len(orgs) > c.maxOrgs {
		c.logger.Warn("capping organizations to process",
			zap.Int("discovered", len(orgs)),
			zap.Int("cap", c.maxOrgs))
		orgs = orgs[:c.maxOrgs]
	}

	for i, org := range orgs {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		c.logger.Info("processing organization",
			zap.String("org", org.Login),
			zap.Int("position", i+1),
			zap.Int("total", len(orgs)))

		if err := c.processOrganization(ctx, org, summary); err != nil {
			return summary, err
		}
	}

	c.logger.Info("inventory collection complete",
		zap.Int("organizations", summary.Organizations),
		zap.Int("repositories", summary.Repositories),
		zap.Int("warnings", summary.Warnings))
	return summary, nil
}

// processOrganization collects the repositories of one organization and writes
// its rows. The organization row is written only after every repository row,
// so its aggregate counters reflect everything that was actually inventoried.
// A repository listing failure skips the organization entirely (no org row);
// only write failures and cancellation abort the run.
func (c *enterpriseCollector) processOrganization(ctx context.Context, org *domain.Organization, summary *aggregator.RunSummary) error {
	repos, err := c.listRepositories(ctx, org.Login)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		c.logger.Warn("skipping organization, repository listing failed",
			zap.String("org", org.Login),
			zap.Error(err))
		summary.AddWarning()
		return nil
	}

	c.enrichOrganization(ctx, org, summary)

	for _, repo := range repos {
		if err := ctx.Err(); err != nil {
			return err
		}
		c.enrichRepository(ctx, repo, summary)

		if err := c.repoReport.WriteRow(report.RepoRow(repo)); err != nil {
			return fmt.Errorf("writing repository row for %s: %w", repo.FullName, err)
		}
		aggregator.AddRepository(org, repo)
		summary.AddRepository(repo)
		c.saveRepository(repo)
	}

	now := time.Now().UTC()
	org.LastSyncedAt = &now
	if err := c.orgReport.WriteRow(report.OrgRow(org)); err != nil {
		return fmt.Errorf("writing organization row for %s: %w", org.Login, err)
	}
	summary.AddOrganization()
	c.saveOrganization(org)
	return nil
}

// enrichOrganization fills organization-level REST counters. Each field fails
// soft: a forbidden or missing endpoint leaves the counter at zero and records
// a warning rather than aborting the run.
func (c *enterpriseCollector) enrichOrganization(ctx context.Context, org *domain.Organization, summary *aggregator.RunSummary) {
	var err error
	if org.Webhooks, err = c.orgWebhookCount(ctx, org.Login); err != nil {
		c.warnField(summary, "org_webhooks", org.Login, err)
	}
	if org.Apps, err = c.orgAppCount(ctx, org.Login); err != nil {
		c.warnField(summary, "org_apps", org.Login, err)
	}
	if org.Teams, err = c.orgTeamCount(ctx, org.Login); err != nil {
		c.warnField(summary, "org_teams", org.Login, err)
	}
	if org.RunnersSelfHosted, err = c.orgSelfHostedRunnerCount(ctx, org.Login); err != nil {
		c.warnField(summary, "org_runners_self_hosted", org.Login, err)
	}
	if org.RunnersHosted, err = c.orgHostedRunnerCount(ctx, org.Login); err != nil {
		c.warnField(summary, "org_runners_hosted", org.Login, err)
	}
}

// enrichRepository fills repository-level REST counters, failing soft per
// field like enrichOrganization.
func (c *enterpriseCollector) enrichRepository(ctx context.Context, repo *domain.Repository, summary *aggregator.RunSummary) {
	var err error
	if repo.SizeKB, err = c.repoSize(ctx, repo.Org, repo.Name); err != nil {
		c.warnField(summary, "repo_size", repo.FullName, err)
	}
	if repo.Workflows, err = c.repoWorkflowCount(ctx, repo.Org, repo.Name); err != nil {
		c.warnField(summary, "repo_workflows", repo.FullName, err)
	}
	if repo.Webhooks, err = c.repoWebhookCount(ctx, repo.Org, repo.Name); err != nil {
		c.warnField(summary, "repo_webhooks", repo.FullName, err)
	}
	if repo.Runners, err = c.repoRunnerCount(ctx, repo.Org, repo.Name); err != nil {
		c.warnField(summary, "repo_runners", repo.FullName, err)
	}
	if repo.Apps, err = c.repoAppInstalled(ctx, repo.Org, repo.Name); err != nil {
		// A 404 here means no app installation, which is the common case.
		if !apperrors.IsNotFound(err) {
			c.warnField(summary, "repo_apps", repo.FullName, err)
		}
	}
	now := time.Now().UTC()
	repo.LastSyncedAt = &now
}

func (c *enterpriseCollector) warnField(summary *aggregator.RunSummary, field, subject string, err error) {
	c.logger.Warn("enrichment field unavailable",
		zap.String("field", field),
		zap.String("subject", subject),
		zap.Error(err))
	summary.AddWarning()
}

func (c *enterpriseCollector) saveOrganization(org *domain.Organization) {
	if c.store == nil {
		return
	}
	if err := c.store.SaveOrganization(org); err != nil {
		c.logger.Warn("failed to persist organization",
			zap.String("org", org.Login),
			zap.Error(err))
	}
}

func (c *enterpriseCollector) saveRepository(repo *domain.Repository) {
	if c.store == nil {
		return
	}
	if err := c.store.SaveRepository(repo); err != nil {
		c.logger.Warn("failed to persist repository",
			zap.String("repo", repo.FullName),
			zap.Error(err))
	}
}
