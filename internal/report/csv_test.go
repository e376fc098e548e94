package report

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/enterprise-insights/gh-inventory/internal/domain"
)

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return records
}

func TestWriterHeaderAndRows(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "report.csv")

	w, err := NewWriter(path, []string{"A", "B"})
	require.NoError(t, err)

	require.NoError(t, w.WriteRow([]string{"1", "x"}))
	require.NoError(t, w.WriteRow([]string{"2", "y"}))
	assert.Equal(t, 2, w.Rows())

	// Rows are flushed before Close, so the file is already complete.
	records := readCSV(t, path)
	require.Len(t, records, 3)
	assert.Equal(t, []string{"A", "B"}, records[0])
	assert.Equal(t, []string{"1", "x"}, records[1])
	assert.Equal(t, []string{"2", "y"}, records[2])

	require.NoError(t, w.Close())
}

func TestWriterTruncatesPreviousReport(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.csv")

	w, err := NewWriter(path, []string{"A"})
	require.NoError(t, err)
	require.NoError(t, w.WriteRow([]string{"old"}))
	require.NoError(t, w.Close())

	w, err = NewWriter(path, []string{"A"})
	require.NoError(t, err)
	require.NoError(t, w.Close())

	records := readCSV(t, path)
	require.Len(t, records, 1)
	assert.Equal(t, []string{"A"}, records[0])
}

func TestRepoRowMatchesColumns(t *testing.T) {
	pushed := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	repo := &domain.Repository{
		Org:           "acme",
		Name:          "widget",
		FullName:      "acme/widget",
		Description:   "widget factory",
		URL:           "https://github.example.com/acme/widget",
		Visibility:    domain.VisibilityInternal,
		IsFork:        false,
		IsArchived:    true,
		CreatedAt:     time.Date(2020, 1, 2, 3, 4, 5, 0, time.UTC),
		UpdatedAt:     time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
		PushedAt:      &pushed,
		SizeKB:        1024,
		DefaultBranch: "main",
		Forks:         3,
		OpenIssues:    7,
		PullRequests:  2,
		Releases:      1,
		Branches:      9,
		Tags:          4,
		Workflows:     5,
		Webhooks:      1,
		Runners:       0,
		Apps:          1,
	}

	row := RepoRow(repo)
	require.Len(t, row, len(RepoColumns))

	byCol := map[string]string{}
	for i, col := range RepoColumns {
		byCol[col] = row[i]
	}
	assert.Equal(t, "acme", byCol["Organization"])
	assert.Equal(t, "widget", byCol["Repository"])
	assert.Equal(t, "false", byCol["Is_Private"])
	assert.Equal(t, "true", byCol["Is_Internal"])
	assert.Equal(t, "false", byCol["Is_Public"])
	assert.Equal(t, "true", byCol["Is_Archived"])
	assert.Equal(t, "2020-01-02T03:04:05Z", byCol["Created_At"])
	assert.Equal(t, "2024-03-01T10:00:00Z", byCol["Pushed_At"])
	assert.Equal(t, "1024", byCol["Size_KB"])
	assert.Equal(t, "main", byCol["Default_Branch"])
	assert.Equal(t, "7", byCol["Open_Issues"])
	assert.Equal(t, "5", byCol["Workflows"])
}

func TestRepoRowEmptyPushedAt(t *testing.T) {
	row := RepoRow(&domain.Repository{Org: "acme", Name: "empty"})
	byCol := map[string]string{}
	for i, col := range RepoColumns {
		byCol[col] = row[i]
	}
	assert.Equal(t, "", byCol["Pushed_At"])
}

func TestOrgRowMatchesColumns(t *testing.T) {
	org := &domain.Organization{
		Login:             "acme",
		Description:       "Acme Corp",
		URL:               "https://github.example.com/acme",
		CreatedAt:         time.Date(2019, 6, 1, 0, 0, 0, 0, time.UTC),
		TotalRepos:        10,
		PrivateRepos:      6,
		PublicRepos:       1,
		InternalRepos:     3,
		ArchivedRepos:     2,
		ForkRepos:         1,
		Webhooks:          4,
		Apps:              2,
		Teams:             5,
		RunnersSelfHosted: 8,
		RunnersHosted:     1,
	}

	row := OrgRow(org)
	require.Len(t, row, len(OrgColumns))

	byCol := map[string]string{}
	for i, col := range OrgColumns {
		byCol[col] = row[i]
	}
	assert.Equal(t, "acme", byCol["Organization"])
	assert.Equal(t, "2019-06-01T00:00:00Z", byCol["Created_At"])
	assert.Equal(t, "10", byCol["Total_Repositories"])
	assert.Equal(t, "3", byCol["Internal_Repositories"])
	assert.Equal(t, "8", byCol["Org_Runners_SelfHosted"])
	assert.Equal(t, "1", byCol["Org_Runners_GitHubHosted"])
}
