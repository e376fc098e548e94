package report

import (
	"io"
	"strconv"
	"time"

	"github.com/olekukonko/tablewriter"

	"github.com/enterprise-insights/gh-inventory/internal/aggregator"
)

// PrintSummary renders the run totals as a table.
func PrintSummary(w io.Writer, s *aggregator.RunSummary) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Metric", "Value"})
	table.SetBorder(false)
	table.SetColumnAlignment([]int{tablewriter.ALIGN_LEFT, tablewriter.ALIGN_RIGHT})

	table.Append([]string{"Run ID", s.RunID})
	table.Append([]string{"Enterprise", s.Enterprise})
	table.Append([]string{"Duration", time.Since(s.StartedAt).Round(time.Second).String()})
	table.Append([]string{"Organizations", strconv.Itoa(s.Organizations)})
	table.Append([]string{"Repositories", strconv.Itoa(s.Repositories)})
	table.Append([]string{"Private", strconv.Itoa(s.Private)})
	table.Append([]string{"Internal", strconv.Itoa(s.Internal)})
	table.Append([]string{"Public", strconv.Itoa(s.Public)})
	table.Append([]string{"Archived", strconv.Itoa(s.Archived)})
	table.Append([]string{"Forks", strconv.Itoa(s.Forks)})
	table.Append([]string{"Workflows", strconv.Itoa(s.Workflows)})
	table.Append([]string{"Webhooks", strconv.Itoa(s.Webhooks)})
	table.Append([]string{"Open Issues", strconv.Itoa(s.OpenIssues)})
	table.Append([]string{"Pull Requests", strconv.Itoa(s.PullRequests)})
	table.Append([]string{"Warnings", strconv.Itoa(s.Warnings)})

	table.Render()
}
