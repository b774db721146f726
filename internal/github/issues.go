package github

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/go-github/v57/github"
)

// ListIssues fetches all open and closed issues of the repository, skipping pull requests
func (c *Client) ListIssues(ctx context.Context) ([]Issue, error) {
	issues, err := paginatedList(ctx, c, func(page int) ([]*github.Issue, *github.Response, error) {
		opts := &github.IssueListByRepoOptions{
			State: "all",
			ListOptions: github.ListOptions{
				PerPage: 100,
				Page:    page,
			},
		}
		slog.Debug("GitHub API: Listing issues", "org", c.org, "repo", c.repo, "page", page)
		return c.client.Issues.ListByRepo(ctx, c.org, c.repo, opts)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list issues: %w", err)
	}

	var allIssues []Issue
	for _, issue := range issues {
		// Skip pull requests
		if issue.IsPullRequest() {
			continue
		}
		allIssues = append(allIssues, *newIssue(issue))
	}

	return allIssues, nil
}

// CreateIssue creates a new issue
func (c *Client) CreateIssue(ctx context.Context, req IssueRequest) (*Issue, error) {
	input := &github.IssueRequest{
		Title:  github.String(req.Title),
		Body:   github.String(req.Body),
		Labels: &req.Labels,
	}
	if req.Assignee != "" {
		input.Assignee = github.String(req.Assignee)
	}
	if req.Milestone != 0 {
		input.Milestone = github.Int(req.Milestone)
	}

	var issue *github.Issue
	err := c.withRetry(ctx, func() error {
		var err error
		slog.Debug("GitHub API: Creating issue", "org", c.org, "repo", c.repo, "title", req.Title)
		issue, _, err = c.client.Issues.Create(ctx, c.org, c.repo, input)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create issue %q: %w", req.Title, err)
	}

	return newIssue(issue), nil
}

// SetAssignee sets the single assignee of an issue
func (c *Client) SetAssignee(ctx context.Context, number int, login string) (*Issue, error) {
	return c.editIssue(ctx, number, &github.IssueRequest{Assignee: github.String(login)})
}

// SetBody replaces the body of an issue
func (c *Client) SetBody(ctx context.Context, number int, body string) (*Issue, error) {
	return c.editIssue(ctx, number, &github.IssueRequest{Body: github.String(body)})
}

// CloseIssue closes an issue
func (c *Client) CloseIssue(ctx context.Context, number int) (*Issue, error) {
	return c.editIssue(ctx, number, &github.IssueRequest{State: github.String("closed")})
}

func (c *Client) editIssue(ctx context.Context, number int, input *github.IssueRequest) (*Issue, error) {
	var issue *github.Issue
	err := c.withRetry(ctx, func() error {
		var err error
		slog.Debug("GitHub API: Editing issue", "org", c.org, "repo", c.repo, "issue", number)
		issue, _, err = c.client.Issues.Edit(ctx, c.org, c.repo, number, input)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to edit issue #%d: %w", number, err)
	}

	return newIssue(issue), nil
}

// RemoveLabelFromIssue removes a single label from an issue
func (c *Client) RemoveLabelFromIssue(ctx context.Context, number int, label string) error {
	err := c.withRetry(ctx, func() error {
		slog.Debug("GitHub API: Removing label from issue", "org", c.org, "repo", c.repo, "issue", number, "label", label)
		_, err := c.client.Issues.RemoveLabelForIssue(ctx, c.org, c.repo, number, label)
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to remove label %q from issue #%d: %w", label, number, err)
	}
	return nil
}
