package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/enterprise-insights/gh-inventory/internal/domain"
	"github.com/enterprise-insights/gh-inventory/internal/logging"
)

type fakeStore struct {
	orgs  []*domain.Organization
	repos map[string][]*domain.Repository
	runs  []*domain.Run
	err   error
}

func (f *fakeStore) Migrate() error { return nil }
func (f *fakeStore) SaveOrganization(org *domain.Organization) error { return nil }
func (f *fakeStore) SaveRepository(repo *domain.Repository) error { return nil }
func (f *fakeStore) SaveRun(run *domain.Run) error { return nil }
func (f *fakeStore) Close() error { return nil }

func (f *fakeStore) GetOrganizations() ([]*domain.Organization, error) {
	return f.orgs, f.err
}

func (f *fakeStore) GetRepositories(org string) ([]*domain.Repository, error) {
	return f.repos[org], f.err
}

func (f *fakeStore) GetRuns(limit int) ([]*domain.Run, error) {
	if f.err != nil {
		return nil, f.err
	}
	if limit < len(f.runs) {
		return f.runs[:limit], nil
	}
	return f.runs, nil
}

func newTestRouter(store *fakeStore) *gin.Engine {
	gin.SetMode(gin.TestMode)
	return NewRouter(store, logging.NewNop())
}

func doGet(t *testing.T, router *gin.Engine, path string) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	router.ServeHTTP(w, req)

	var body map[string]interface{}
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	}
	return w, body
}

func TestHealthCheck(t *testing.T) {
	w, body := doGet(t, newTestRouter(&fakeStore{}), "/health")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "healthy", body["status"])
}

func TestListOrganizations(t *testing.T) {
	store := &fakeStore{orgs: []*domain.Organization{
		{Login: "acme", TotalRepos: 3},
		{Login: "globex", TotalRepos: 1},
	}}

	w, body := doGet(t, newTestRouter(store), "/api/v1/orgs")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(2), body["count"])

	orgs := body["organizations"].([]interface{})
	first := orgs[0].(map[string]interface{})
	assert.Equal(t, "acme", first["login"])
	assert.Equal(t, float64(3), first["total_repos"])
}

func TestListRepositories(t *testing.T) {
	store := &fakeStore{repos: map[string][]*domain.Repository{
		"acme": {{Org: "acme", Name: "widget", Visibility: domain.VisibilityInternal}},
	}}

	w, body := doGet(t, newTestRouter(store), "/api/v1/orgs/acme/repos")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "acme", body["organization"])
	assert.Equal(t, float64(1), body["count"])

	repos := body["repositories"].([]interface{})
	first := repos[0].(map[string]interface{})
	assert.Equal(t, "widget", first["name"])
	assert.Equal(t, "INTERNAL", first["visibility"])
}

func TestListRuns(t *testing.T) {
	store := &fakeStore{runs: []*domain.Run{
		{ID: "run-2", Status: domain.RunStatusCompleted},
		{ID: "run-1", Status: domain.RunStatusFailed},
	}}

	w, body := doGet(t, newTestRouter(store), "/api/v1/runs?limit=1")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(1), body["count"])
}

func TestListRunsRejectsBadLimit(t *testing.T) {
	w, _ := doGet(t, newTestRouter(&fakeStore{}), "/api/v1/runs?limit=zero")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestStorageErrorBecomes500(t *testing.T) {
	store := &fakeStore{err: errors.New("database is locked")}
	w, body := doGet(t, newTestRouter(store), "/api/v1/orgs")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, body["error"], "database is locked")
}
