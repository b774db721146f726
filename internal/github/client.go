package github

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/go-github/v57/github"
	"golang.org/x/oauth2"
)

// PublicAPIURL is the API root of github.com
const PublicAPIURL = "https://api.github.com/"

// Client wraps the GitHub API client for a single repository
type Client struct {
	client     *github.Client
	org        string
	repo       string
	newBackOff func() backoff.BackOff
}

// NewClient creates a new GitHub client with token authentication
func NewClient(ctx context.Context, token string) *Client {
	ts := oauth2.StaticTokenSource(
		&oauth2.Token{AccessToken: token},
	)
	tc := oauth2.NewClient(ctx, ts)

	return &Client{
		client:     github.NewClient(tc),
		newBackOff: defaultBackOff,
	}
}

// NewBasicAuthClient creates a new GitHub client authenticating with username and password
func NewBasicAuthClient(username, password string) *Client {
	tp := github.BasicAuthTransport{
		Username: username,
		Password: password,
	}

	return &Client{
		client:     github.NewClient(tp.Client()),
		newBackOff: defaultBackOff,
	}
}

// WithRepository returns a copy of the client bound to org/repo
func (c *Client) WithRepository(org, repo string) *Client {
	return &Client{
		client:     c.client,
		org:        org,
		repo:       repo,
		newBackOff: c.newBackOff,
	}
}

// WithAPIURL points the client at a GitHub Enterprise API root.
// The public API URL leaves the client unchanged.
func (c *Client) WithAPIURL(apiURL string) (*Client, error) {
	apiURL = strings.TrimSpace(apiURL)
	if apiURL == "" || strings.TrimRight(apiURL, "/")+"/" == PublicAPIURL {
		return c, nil
	}

	gh, err := c.client.WithEnterpriseURLs(apiURL, apiURL)
	if err != nil {
		return nil, fmt.Errorf("failed to configure GitHub API URL %s: %w", apiURL, err)
	}

	return &Client{
		client:     gh,
		org:        c.org,
		repo:       c.repo,
		newBackOff: c.newBackOff,
	}, nil
}

// Repository returns the "org/repo" the client is bound to
func (c *Client) Repository() string {
	return c.org + "/" + c.repo
}

// maxRateLimitRetries bounds how often a single call is retried after a rate limit
const maxRateLimitRetries = 10

func defaultBackOff() backoff.BackOff {
	// BackOff implementations are stateful; always return a fresh instance.
	return newRetryBackOff(5*time.Second, 5*time.Minute, maxRateLimitRetries)
}

// newRetryBackOff limits retries by count only. The waits GitHub asks for are
// slept inside the operation and must not use up an elapsed-time budget.
func newRetryBackOff(initial, maxInterval time.Duration, retries uint64) backoff.BackOff {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = initial
	bo.MaxInterval = maxInterval
	bo.MaxElapsedTime = 0
	return backoff.WithMaxRetries(bo, retries)
}
