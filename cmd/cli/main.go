package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/enterprise-insights/gh-inventory/internal/aggregator"
	"github.com/enterprise-insights/gh-inventory/internal/collector"
	"github.com/enterprise-insights/gh-inventory/internal/config"
	"github.com/enterprise-insights/gh-inventory/internal/domain"
	"github.com/enterprise-insights/gh-inventory/internal/logging"
	"github.com/enterprise-insights/gh-inventory/internal/report"
	"github.com/enterprise-insights/gh-inventory/internal/storage"
	"github.com/enterprise-insights/gh-inventory/internal/tokenpool"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "gh-inventory",
		Short: "GitHub Enterprise inventory collector",
		Long:  "Collects organization and repository inventory from a GitHub Enterprise account into CSV reports.",
	}

	rootCmd.AddCommand(newCollectCmd())
	rootCmd.AddCommand(newShowCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newCollectCmd() *cobra.Command {
	var maxOrgs int

	cmd := &cobra.Command{
		Use:   "collect",
		Short: "Run a full inventory collection",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if maxOrgs > 0 {
				cfg.MaxOrganizations = maxOrgs
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			return runCollect(cfg)
		},
	}

	cmd.Flags().IntVar(&maxOrgs, "max-orgs", 0, "cap the number of organizations to process (0 = no cap)")
	return cmd
}

func runCollect(cfg *config.Config) error {
	logger, logFile, err := logging.New(cfg.LogLevel, cfg.OutputDir)
	if err != nil {
		return fmt.Errorf("initializing logger: %w", err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := tokenpool.New(cfg.Tokens, cfg.APIBaseURL, cfg.GraphQLURL, logger)
	if err != nil {
		return err
	}
	exec := collector.NewExecutor(pool, logger)

	repoReport, err := report.NewWriter(cfg.RepoCSVPath(), report.RepoColumns)
	if err != nil {
		return err
	}
	defer repoReport.Close()

	orgReport, err := report.NewWriter(cfg.OrgCSVPath(), report.OrgColumns)
	if err != nil {
		return err
	}
	defer orgReport.Close()

	store, err := openStorage(cfg)
	if err != nil {
		return err
	}
	if store != nil {
		defer store.Close()
	}

	coll := collector.New(collector.Options{
		Enterprise:       cfg.Enterprise,
		MaxOrganizations: cfg.MaxOrganizations,
	}, exec, repoReport, orgReport, store, logger)

	summary, err := coll.CollectInventory(ctx)
	saveRun(store, summary, err, logger)
	if err != nil {
		logger.Error("collection failed", zap.Error(err))
		return err
	}

	report.PrintSummary(os.Stdout, summary)
	fmt.Printf("\nRepository report: %s (%d rows)\n", repoReport.Path(), repoReport.Rows())
	fmt.Printf("Organization report: %s (%d rows)\n", orgReport.Path(), orgReport.Rows())
	if logFile != "" {
		fmt.Printf("Log file: %s\n", logFile)
	}
	return nil
}

func openStorage(cfg *config.Config) (storage.Storage, error) {
	if cfg.StorageType == "none" {
		return nil, nil
	}
	return storage.NewStorage(storage.Config{
		Type:        cfg.StorageType,
		SQLitePath:  cfg.SQLitePath,
		PostgresURL: cfg.PostgresURL,
	})
}

func saveRun(store storage.Storage, summary *aggregator.RunSummary, collectErr error, logger *zap.Logger) {
	if store == nil || summary == nil {
		return
	}
	status := domain.RunStatusCompleted
	if collectErr != nil {
		status = domain.RunStatusFailed
	}
	if err := store.SaveRun(summary.Run(status)); err != nil {
		logger.Warn("failed to persist run record", zap.Error(err))
	}
}

func newShowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show previously collected inventory from storage",
	}
	cmd.AddCommand(newShowOrgsCmd(), newShowReposCmd(), newShowRunsCmd())
	return cmd
}

func withStorage(fn func(store storage.Storage) error) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if cfg.StorageType == "none" {
		return fmt.Errorf("storage is disabled (STORAGE_TYPE=none); nothing to show")
	}
	store, err := openStorage(cfg)
	if err != nil {
		return err
	}
	defer store.Close()
	return fn(store)
}

func newShowOrgsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "orgs",
		Short: "List collected organizations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStorage(func(store storage.Storage) error {
				orgs, err := store.GetOrganizations()
				if err != nil {
					return err
				}
				table := tablewriter.NewWriter(os.Stdout)
				table.SetHeader([]string{"Organization", "Repos", "Private", "Internal", "Public", "Archived", "Teams", "Webhooks"})
				for _, org := range orgs {
					table.Append([]string{
						org.Login,
						strconv.Itoa(org.TotalRepos),
						strconv.Itoa(org.PrivateRepos),
						strconv.Itoa(org.InternalRepos),
						strconv.Itoa(org.PublicRepos),
						strconv.Itoa(org.ArchivedRepos),
						strconv.Itoa(org.Teams),
						strconv.Itoa(org.Webhooks),
					})
				}
				table.Render()
				return nil
			})
		},
	}
}

func newShowReposCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "repos <org>",
		Short: "List collected repositories of an organization",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStorage(func(store storage.Storage) error {
				repos, err := store.GetRepositories(args[0])
				if err != nil {
					return err
				}
				table := tablewriter.NewWriter(os.Stdout)
				table.SetHeader([]string{"Repository", "Visibility", "Archived", "Size KB", "Open Issues", "PRs", "Workflows"})
				for _, repo := range repos {
					table.Append([]string{
						repo.Name,
						string(repo.Visibility),
						strconv.FormatBool(repo.IsArchived),
						strconv.Itoa(repo.SizeKB),
						strconv.Itoa(repo.OpenIssues),
						strconv.Itoa(repo.PullRequests),
						strconv.Itoa(repo.Workflows),
					})
				}
				table.Render()
				return nil
			})
		},
	}
}

func newShowRunsCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List recent collection runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStorage(func(store storage.Storage) error {
				runs, err := store.GetRuns(limit)
				if err != nil {
					return err
				}
				table := tablewriter.NewWriter(os.Stdout)
				table.SetHeader([]string{"Run ID", "Enterprise", "Status", "Started", "Orgs", "Repos", "Warnings"})
				for _, run := range runs {
					table.Append([]string{
						run.ID,
						run.Enterprise,
						run.Status,
						run.StartedAt.Format("2006-01-02 15:04:05"),
						strconv.Itoa(run.Organizations),
						strconv.Itoa(run.Repositories),
						strconv.Itoa(run.Warnings),
					})
				}
				table.Render()
				return nil
			})
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "maximum number of runs to show")
	return cmd
}
