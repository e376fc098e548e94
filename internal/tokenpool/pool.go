// Package tokenpool manages a pool of GitHub personal access tokens with
// round-robin rotation and per-token rate limit bookkeeping.
package tokenpool

import (
	"context"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/go-github/v55/github"
	"github.com/shurcooL/githubv4"
	"go.uber.org/zap"
	"golang.org/x/oauth2"

	apperrors "github.com/enterprise-insights/gh-inventory/internal/errors"
)

const (
	// DefaultSafetyThreshold is the remaining-quota floor below which a
	// credential is considered exhausted until its reset time passes.
	DefaultSafetyThreshold = 10

	// defaultRemaining is assumed for a fresh credential before the first
	// response reports real quota headers.
	defaultRemaining = 5000

	defaultAPIBaseURL = "https://api.github.com"
	defaultGraphQLURL = "https://api.github.com/graphql"
)

// Credential is one personal access token together with the API clients
// built on it and its last-known rate limit state. The quota fields are
// owned by the Pool and mutated only under its lock.
type Credential struct {
	index     int
	rest      *github.Client
	graphql   *githubv4.Client
	remaining int
	resetAt   time.Time
}

// REST returns the go-github client authenticated with this credential.
func (c *Credential) REST() *github.Client { return c.rest }

// GraphQL returns the githubv4 client authenticated with this credential.
func (c *Credential) GraphQL() *githubv4.Client { return c.graphql }

// Index identifies the credential in logs without exposing the token.
func (c *Credential) Index() int { return c.index }

func (c *Credential) usable(now time.Time, threshold int) bool {
	return c.remaining > threshold || now.After(c.resetAt)
}

// Pool rotates credentials round-robin, skipping exhausted ones.
type Pool struct {
	mu        sync.Mutex
	creds     []*Credential
	next      int
	threshold int
	logger    *zap.Logger

	now func() time.Time
}

// New builds a pool from the configured tokens. Each credential gets its own
// REST and GraphQL clients over an oauth2 static token source, pointed at the
// configured base URLs.
func New(tokens []string, apiBaseURL, graphqlURL string, logger *zap.Logger) (*Pool, error) {
	p := &Pool{
		threshold: DefaultSafetyThreshold,
		logger:    logger,
		now:       time.Now,
	}

	ctx := context.Background()
	for i, token := range tokens {
		token = strings.TrimSpace(token)
		if token == "" {
			continue
		}

		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
		tc := oauth2.NewClient(ctx, ts)

		rest := github.NewClient(tc)
		if base := ensureTrailingSlash(apiBaseURL); base != "" && base != defaultAPIBaseURL+"/" {
			u, err := url.Parse(base)
			if err != nil {
				return nil, apperrors.NewConfigurationError("GITHUB_API_URL", err.Error())
			}
			rest.BaseURL = u
		}

		var gql *githubv4.Client
		if graphqlURL == "" || graphqlURL == defaultGraphQLURL {
			gql = githubv4.NewClient(tc)
		} else {
			gql = githubv4.NewEnterpriseClient(graphqlURL, tc)
		}

		p.creds = append(p.creds, &Credential{
			index:     i,
			rest:      rest,
			graphql:   gql,
			remaining: defaultRemaining,
		})
	}

	if len(p.creds) == 0 {
		return nil, apperrors.NewPoolExhaustedError("no usable credentials configured")
	}

	logger.Info("Initialized token pool", zap.Int("credentials", len(p.creds)))
	return p, nil
}

// Size returns the number of credentials in the pool.
func (p *Pool) Size() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.creds)
}

// Next returns the next usable credential, round-robin. When every credential
// is exhausted it sleeps until the earliest reset time, then retries; the wait
// is bounded by the known reset timestamps and by ctx.
func (p *Pool) Next(ctx context.Context) (*Credential, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if len(p.creds) == 0 {
		return nil, apperrors.NewPoolExhaustedError("no usable credentials configured")
	}

	for {
		now := p.now()
		for i := 0; i < len(p.creds); i++ {
			cred := p.creds[p.next%len(p.creds)]
			p.next++
			if cred.usable(now, p.threshold) {
				return cred, nil
			}
		}

		wait := p.earliestResetLocked().Sub(now)
		if wait < 0 {
			wait = 0
		}
		// A short grace period avoids re-selecting a credential the server
		// has not reset yet.
		wait += time.Second

		p.logger.Warn("All credentials exhausted, waiting for rate limit reset",
			zap.Duration("wait", wait))

		p.mu.Unlock()
		select {
		case <-ctx.Done():
			p.mu.Lock()
			return nil, ctx.Err()
		case <-time.After(wait):
			p.mu.Lock()
		}
	}
}

// RecordUsage updates a credential's quota from response headers. A low
// remaining count without a usable reset timestamp gets a one minute hold,
// otherwise the credential would stay in rotation with no quota left.
func (p *Pool) RecordUsage(cred *Credential, remaining int, resetAt time.Time) {
	p.mu.Lock()
	defer p.mu.Unlock()

	cred.remaining = remaining
	if !resetAt.IsZero() {
		cred.resetAt = resetAt
	} else if remaining <= p.threshold {
		cred.resetAt = p.now().Add(time.Minute)
	}
}

// RecordExhausted marks a credential as rate limited until resetAt. A zero
// resetAt falls back to one minute from now, matching the minimum secondary
// rate limit window.
func (p *Pool) RecordExhausted(cred *Credential, resetAt time.Time) {
	p.mu.Lock()
	defer p.mu.Unlock()

	cred.remaining = 0
	if resetAt.IsZero() {
		resetAt = p.now().Add(time.Minute)
	}
	cred.resetAt = resetAt

	p.logger.Warn("Credential rate limited",
		zap.Int("credential", cred.index),
		zap.Time("reset_at", resetAt))
}

func (p *Pool) earliestResetLocked() time.Time {
	earliest := p.creds[0].resetAt
	for _, c := range p.creds[1:] {
		if c.resetAt.Before(earliest) {
			earliest = c.resetAt
		}
	}
	return earliest
}

func ensureTrailingSlash(s string) string {
	if s == "" {
		return ""
	}
	if !strings.HasSuffix(s, "/") {
		return s + "/"
	}
	return s
}
