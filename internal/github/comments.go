package github

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/go-github/v57/github"
)

// CreateIssueComment creates a new comment on an issue
func (c *Client) CreateIssueComment(ctx context.Context, issueNumber int, body string) (*Comment, error) {
	commentInput := &github.IssueComment{
		Body: github.String(body),
	}

	var comment *github.IssueComment
	err := c.withRetry(ctx, func() error {
		var err error
		slog.Debug("GitHub API: Creating issue comment", "org", c.org, "repo", c.repo, "issue", issueNumber)
		comment, _, err = c.client.Issues.CreateComment(ctx, c.org, c.repo, issueNumber, commentInput)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create comment: %w", err)
	}

	return newComment(comment), nil
}

// GetAuthenticatedUser returns the login name of the authenticated user
func (c *Client) GetAuthenticatedUser(ctx context.Context) (string, error) {
	return c.LookupUser(ctx, "")
}

// LookupUser returns the canonical login of a GitHub user; an empty login means the authenticated user
func (c *Client) LookupUser(ctx context.Context, login string) (string, error) {
	var user *github.User
	err := c.withRetry(ctx, func() error {
		var err error
		slog.Debug("GitHub API: Getting user", "login", login)
		user, _, err = c.client.Users.Get(ctx, login)
		return err
	})
	if err != nil {
		if login == "" {
			return "", fmt.Errorf("failed to get authenticated user: %w", err)
		}
		return "", fmt.Errorf("failed to get user %s: %w", login, err)
	}

	return user.GetLogin(), nil
}
