package collector

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/go-github/v55/github"
	"go.uber.org/zap"

	apperrors "github.com/enterprise-insights/gh-inventory/internal/errors"
	"github.com/enterprise-insights/gh-inventory/internal/tokenpool"
)

// Retry configuration constants.
const (
	maxRetries               = 3
	retryBackoffBaseDuration = 1 * time.Second
	maxBackoffDuration       = 30 * time.Second
)

// restCall issues one REST request using the given client and returns the
// response for rate limit and pagination bookkeeping.
type restCall func(ctx context.Context, client *github.Client) (*github.Response, error)

// restPageCall is a restCall parameterized by page number. Page 0 means the
// server default first page.
type restPageCall func(ctx context.Context, client *github.Client, page int) (*github.Response, error)

// graphQLQuery is implemented by query structs that carry a rateLimit
// selection, so the executor can report quota back to the pool.
type graphQLQuery interface {
	rateInfo() (remaining int, resetAt time.Time)
}

// Executor issues API requests through the token pool, classifying failures
// and retrying where the classification allows:
//
//   - rate limited: the credential is marked exhausted and a fresh one is
//     selected; bounded by the pool's reset wait rather than a retry count
//   - transient (5xx, network): retried on the same credential with
//     exponential backoff, up to maxRetries attempts
//   - permission denied / not found: returned immediately, never retried
type Executor struct {
	pool   *tokenpool.Pool
	logger *zap.Logger

	backoffBase time.Duration
	backoffMax  time.Duration
}

// NewExecutor creates an executor over the given credential pool.
func NewExecutor(pool *tokenpool.Pool, logger *zap.Logger) *Executor {
	return &Executor{
		pool:        pool,
		logger:      logger,
		backoffBase: retryBackoffBaseDuration,
		backoffMax:  maxBackoffDuration,
	}
}

// PoolSize reports how many credentials back the executor.
func (e *Executor) PoolSize() int {
	return e.pool.Size()
}

// DoREST executes a single REST call with credential rotation and retries.
func (e *Executor) DoREST(ctx context.Context, call restCall) error {
	cred, err := e.pool.Next(ctx)
	if err != nil {
		return err
	}

	attempt := 0
	for {
		err := e.executeREST(ctx, cred, call)
		if err == nil {
			return nil
		}

		switch {
		case apperrors.IsRateLimited(err):
			// The credential was recorded exhausted during classification.
			// Resubmit with a fresh one; Next blocks until a reset when the
			// whole pool is drained, so this loop is bounded.
			cred, err = e.pool.Next(ctx)
			if err != nil {
				return err
			}
		case apperrors.IsTransient(err):
			attempt++
			if attempt >= maxRetries {
				return err
			}
			if werr := e.backoff(ctx, attempt); werr != nil {
				return werr
			}
		default:
			return err
		}
	}
}

// DoRESTPaginated drives a link-header paginated listing, invoking call once
// per page until the response reports no next page. A page that fails
// transiently is re-fetched by page number through DoREST's retry loop.
func (e *Executor) DoRESTPaginated(ctx context.Context, call restPageCall) error {
	page := 0
	for {
		next := 0
		err := e.DoREST(ctx, func(ctx context.Context, client *github.Client) (*github.Response, error) {
			resp, err := call(ctx, client, page)
			if resp != nil {
				next = resp.NextPage
			}
			return resp, err
		})
		if err != nil {
			return err
		}
		if next == 0 {
			return nil
		}
		page = next
	}
}

// DoGraphQL executes a single GraphQL query with credential rotation and
// retries, reporting the query's rateLimit selection back to the pool.
func (e *Executor) DoGraphQL(ctx context.Context, q graphQLQuery, variables map[string]interface{}) error {
	cred, err := e.pool.Next(ctx)
	if err != nil {
		return err
	}

	attempt := 0
	for {
		qerr := cred.GraphQL().Query(ctx, q, variables)
		if qerr == nil {
			remaining, resetAt := q.rateInfo()
			e.pool.RecordUsage(cred, remaining, resetAt)
			return nil
		}

		cerr := classifyGraphQLError(qerr)
		switch {
		case apperrors.IsRateLimited(cerr):
			e.pool.RecordExhausted(cred, time.Time{})
			cred, err = e.pool.Next(ctx)
			if err != nil {
				return err
			}
		case apperrors.IsTransient(cerr):
			attempt++
			if attempt >= maxRetries {
				return cerr
			}
			if werr := e.backoff(ctx, attempt); werr != nil {
				return werr
			}
		default:
			return cerr
		}
	}
}

func (e *Executor) executeREST(ctx context.Context, cred *tokenpool.Credential, call restCall) error {
	resp, err := call(ctx, cred.REST())
	// A zero Limit means the response carried no rate headers; recording it
	// would look like an empty quota.
	if resp != nil && resp.Rate.Limit > 0 {
		e.pool.RecordUsage(cred, resp.Rate.Remaining, resp.Rate.Reset.Time)
	}
	if err == nil {
		return nil
	}
	return e.classifyRESTError(cred, err)
}

func (e *Executor) classifyRESTError(cred *tokenpool.Credential, err error) error {
	var rateErr *github.RateLimitError
	if errors.As(err, &rateErr) {
		e.pool.RecordExhausted(cred, rateErr.Rate.Reset.Time)
		return apperrors.NewRateLimitedError("primary rate limit exceeded", err)
	}

	var abuseErr *github.AbuseRateLimitError
	if errors.As(err, &abuseErr) {
		resetAt := time.Time{}
		if abuseErr.RetryAfter != nil {
			resetAt = time.Now().Add(*abuseErr.RetryAfter)
		}
		e.pool.RecordExhausted(cred, resetAt)
		return apperrors.NewRateLimitedError("secondary rate limit exceeded", err)
	}

	var ghErr *github.ErrorResponse
	if errors.As(err, &ghErr) && ghErr.Response != nil {
		code := ghErr.Response.StatusCode
		switch {
		case code == http.StatusNotFound:
			return apperrors.NewNotFoundError(requestPath(ghErr.Response))
		case code == http.StatusTooManyRequests:
			e.pool.RecordExhausted(cred, time.Time{})
			return apperrors.NewRateLimitedError("too many requests", err)
		case code >= http.StatusInternalServerError:
			return apperrors.NewTransientError("server error", err)
		default:
			// 401, 403 without rate limit markers, and other 4xx: retrying
			// cannot change a permissions outcome.
			return apperrors.NewPermissionDeniedError("request rejected", err)
		}
	}

	// Anything else is a network-level failure.
	return apperrors.NewTransientError("request failed", err)
}

// classifyGraphQLError maps githubv4 errors onto the error taxonomy.
// Transport-level failures (dial, DNS, timeouts) are recognized structurally;
// errors from the GraphQL payload itself arrive as flat messages, so those
// are classified by sniffing status markers out of the text.
func classifyGraphQLError(err error) error {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return apperrors.NewTransientError("graphql transport failed", err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return apperrors.NewTransientError("graphql transport failed", err)
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "rate limit") || strings.Contains(msg, "429") ||
		strings.Contains(msg, "abuse"):
		return apperrors.NewRateLimitedError("graphql rate limit exceeded", err)
	case strings.Contains(msg, "500") || strings.Contains(msg, "502") ||
		strings.Contains(msg, "503") || strings.Contains(msg, "504") ||
		strings.Contains(msg, "timeout") || strings.Contains(msg, "connection reset") ||
		strings.Contains(msg, "eof"):
		return apperrors.NewTransientError("graphql request failed", err)
	case strings.Contains(msg, "not_found") || strings.Contains(msg, "could not resolve"):
		return apperrors.NewNotFoundError("graphql resource")
	case strings.Contains(msg, "forbidden") || strings.Contains(msg, "403") ||
		strings.Contains(msg, "401"):
		return apperrors.NewPermissionDeniedError("graphql request rejected", err)
	default:
		return apperrors.NewInternalError("graphql query failed", err)
	}
}

func (e *Executor) backoff(ctx context.Context, attempt int) error {
	d := e.backoffBase << (attempt - 1)
	if d > e.backoffMax {
		d = e.backoffMax
	}

	e.logger.Warn("Transient failure, retrying",
		zap.Int("attempt", attempt),
		zap.Duration("backoff", d))

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}

func requestPath(resp *http.Response) string {
	if resp.Request != nil && resp.Request.URL != nil {
		return resp.Request.URL.Path
	}
	return "resource"
}
