package collector

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"testing"
	"time"

	"github.com/google/go-github/v55/github"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/enterprise-insights/gh-inventory/internal/errors"
	"github.com/enterprise-insights/gh-inventory/internal/logging"
	"github.com/enterprise-insights/gh-inventory/internal/tokenpool"
)

func newTestExecutor(t *testing.T, serverURL string, tokens ...string) *Executor {
	t.Helper()
	pool, err := tokenpool.New(tokens, serverURL, serverURL+"/graphql", logging.NewNop())
	require.NoError(t, err)
	exec := NewExecutor(pool, logging.NewNop())
	exec.backoffBase = time.Millisecond
	exec.backoffMax = 10 * time.Millisecond
	return exec
}

func writeRateHeaders(w http.ResponseWriter, remaining int) {
	w.Header().Set("X-RateLimit-Limit", "5000")
	w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
	w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(time.Now().Add(time.Hour).Unix(), 10))
}

func getRepo(exec *Executor) error {
	return exec.DoREST(context.Background(), func(ctx context.Context, client *github.Client) (*github.Response, error) {
		_, resp, err := client.Repositories.Get(ctx, "acme", "widget")
		return resp, err
	})
}

func TestDoRESTRetriesTransientFailures(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		writeRateHeaders(w, 4999)
		if calls == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		fmt.Fprint(w, `{"name": "widget"}`)
	}))
	defer server.Close()

	exec := newTestExecutor(t, server.URL, "ghp_aaa")
	require.NoError(t, getRepo(exec))
	assert.Equal(t, 2, calls)
}

func TestDoRESTGivesUpAfterMaxRetries(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		writeRateHeaders(w, 4999)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	exec := newTestExecutor(t, server.URL, "ghp_aaa")
	err := getRepo(exec)
	require.Error(t, err)
	assert.True(t, apperrors.IsTransient(err))
	assert.Equal(t, maxRetries, calls)
}

func TestDoRESTDoesNotRetryNotFound(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		writeRateHeaders(w, 4999)
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, `{"message": "Not Found"}`)
	}))
	defer server.Close()

	exec := newTestExecutor(t, server.URL, "ghp_aaa")
	err := getRepo(exec)
	require.Error(t, err)
	assert.True(t, apperrors.IsNotFound(err))
	assert.Equal(t, 1, calls)
}

func TestDoRESTDoesNotRetryForbidden(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		writeRateHeaders(w, 4999)
		w.WriteHeader(http.StatusForbidden)
		fmt.Fprint(w, `{"message": "Must have admin rights"}`)
	}))
	defer server.Close()

	exec := newTestExecutor(t, server.URL, "ghp_aaa")
	err := getRepo(exec)
	require.Error(t, err)
	assert.True(t, apperrors.IsPermissionDenied(err))
	assert.Equal(t, 1, calls)
}

func TestDoRESTRotatesOnRateLimit(t *testing.T) {
	var authsSeen []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth := r.Header.Get("Authorization")
		authsSeen = append(authsSeen, auth)
		if len(authsSeen) == 1 {
			writeRateHeaders(w, 0)
			w.WriteHeader(http.StatusForbidden)
			fmt.Fprint(w, `{"message": "API rate limit exceeded"}`)
			return
		}
		writeRateHeaders(w, 4999)
		fmt.Fprint(w, `{"name": "widget"}`)
	}))
	defer server.Close()

	exec := newTestExecutor(t, server.URL, "ghp_aaa", "ghp_bbb")
	require.NoError(t, getRepo(exec))

	require.Len(t, authsSeen, 2)
	assert.NotEqual(t, authsSeen[0], authsSeen[1], "retry must use a different credential")
}

func TestDoRESTPaginatedFollowsLinkHeader(t *testing.T) {
	var pages []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		page := r.URL.Query().Get("page")
		pages = append(pages, page)
		writeRateHeaders(w, 4999)
		if page == "" || page == "1" {
			w.Header().Set("Link", fmt.Sprintf(`<%s/repos/acme/widget/hooks?page=2>; rel="next"`, "http://"+r.Host))
		}
		fmt.Fprint(w, `[{"id": 1}, {"id": 2}]`)
	}))
	defer server.Close()

	exec := newTestExecutor(t, server.URL, "ghp_aaa")

	total := 0
	err := exec.DoRESTPaginated(context.Background(), func(ctx context.Context, client *github.Client, page int) (*github.Response, error) {
		hooks, resp, err := client.Repositories.ListHooks(ctx, "acme", "widget", &github.ListOptions{Page: page, PerPage: 100})
		if err == nil {
			total += len(hooks)
		}
		return resp, err
	})
	require.NoError(t, err)
	assert.Equal(t, 4, total)
	assert.Len(t, pages, 2)
}

func TestPaginatedCountIsZeroWhenLaterPageFails(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeRateHeaders(w, 4999)
		if r.URL.Query().Get("page") == "" {
			w.Header().Set("Link", fmt.Sprintf(`<%s/repos/acme/widget/hooks?page=2>; rel="next"`, "http://"+r.Host))
			fmt.Fprint(w, `[{"id": 1}, {"id": 2}]`)
			return
		}
		w.WriteHeader(http.StatusForbidden)
		fmt.Fprint(w, `{"message": "Must have admin rights"}`)
	}))
	defer server.Close()

	exec := newTestExecutor(t, server.URL, "ghp_aaa")
	c := &enterpriseCollector{exec: exec, logger: logging.NewNop()}

	count, err := c.repoWebhookCount(context.Background(), "acme", "widget")
	require.Error(t, err)
	assert.Equal(t, 0, count, "a failed count must not surface the partial pages")
}

func TestClassifyGraphQLError(t *testing.T) {
	tests := []struct {
		name  string
		err   error
		check func(error) bool
	}{
		{"rate limit", errors.New("API rate limit exceeded for installation"), apperrors.IsRateLimited},
		{"abuse", errors.New("You have triggered an abuse detection mechanism"), apperrors.IsRateLimited},
		{"bad gateway", errors.New("non-200 OK status code: 502 Bad Gateway"), apperrors.IsTransient},
		{"timeout", errors.New("net/http: request canceled (Client.Timeout exceeded)"), apperrors.IsTransient},
		{"connection refused", &url.Error{Op: "Post", URL: "https://api.github.com/graphql",
			Err: errors.New("dial tcp 127.0.0.1:443: connect: connection refused")}, apperrors.IsTransient},
		{"no such host", &url.Error{Op: "Post", URL: "https://api.github.invalid/graphql",
			Err: errors.New("dial tcp: lookup api.github.invalid: no such host")}, apperrors.IsTransient},
		{"not resolved", errors.New("Could not resolve to an Organization with the login of 'ghost'"), apperrors.IsNotFound},
		{"forbidden", errors.New("non-200 OK status code: 403 Forbidden"), apperrors.IsPermissionDenied},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, tt.check(classifyGraphQLError(tt.err)))
		})
	}
}

type viewerQuery struct {
	RateLimit rateLimitInfo `graphql:"rateLimit"`
	Viewer    struct {
		Login string
	}
}

func (q *viewerQuery) rateInfo() (int, time.Time) {
	return q.RateLimit.Remaining, q.RateLimit.ResetAt.Time
}

func TestDoGraphQLRetriesTransportFailures(t *testing.T) {
	// A server that is already gone makes every request fail at dial time.
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	serverURL := server.URL
	server.Close()

	exec := newTestExecutor(t, serverURL, "ghp_aaa")

	start := time.Now()
	err := exec.DoGraphQL(context.Background(), &viewerQuery{}, nil)
	require.Error(t, err)
	assert.True(t, apperrors.IsTransient(err), "dial failure must classify as transient, got %v", err)
	// maxRetries-1 backoff waits were taken before giving up.
	assert.GreaterOrEqual(t, time.Since(start), 2*exec.backoffBase)
}
