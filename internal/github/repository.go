package github

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/go-github/v57/github"
)

// ListLabels fetches all labels from the repository
func (c *Client) ListLabels(ctx context.Context) ([]Label, error) {
	labels, err := paginatedList(ctx, c, func(page int) ([]*github.Label, *github.Response, error) {
		opts := &github.ListOptions{
			PerPage: 100,
			Page:    page,
		}
		slog.Debug("GitHub API: Listing labels", "org", c.org, "repo", c.repo, "page", page)
		return c.client.Issues.ListLabels(ctx, c.org, c.repo, opts)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list labels: %w", err)
	}

	result := make([]Label, 0, len(labels))
	for _, label := range labels {
		result = append(result, *newLabel(label))
	}
	return result, nil
}

// CreateLabel creates a repository label with a hex color such as "FFFFFF"
func (c *Client) CreateLabel(ctx context.Context, name, color string) (*Label, error) {
	var label *github.Label
	err := c.withRetry(ctx, func() error {
		var err error
		slog.Debug("GitHub API: Creating label", "org", c.org, "repo", c.repo, "label", name)
		label, _, err = c.client.Issues.CreateLabel(ctx, c.org, c.repo, &github.Label{
			Name:  github.String(name),
			Color: github.String(color),
		})
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create label %q: %w", name, err)
	}

	return newLabel(label), nil
}

// ListMilestones fetches all open and closed milestones from the repository
func (c *Client) ListMilestones(ctx context.Context) ([]Milestone, error) {
	milestones, err := paginatedList(ctx, c, func(page int) ([]*github.Milestone, *github.Response, error) {
		opts := &github.MilestoneListOptions{
			State: "all",
			ListOptions: github.ListOptions{
				PerPage: 100,
				Page:    page,
			},
		}
		slog.Debug("GitHub API: Listing milestones", "org", c.org, "repo", c.repo, "page", page)
		return c.client.Issues.ListMilestones(ctx, c.org, c.repo, opts)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list milestones: %w", err)
	}

	result := make([]Milestone, 0, len(milestones))
	for _, milestone := range milestones {
		result = append(result, *newMilestone(milestone))
	}
	return result, nil
}

// CreateMilestone creates an open milestone
func (c *Client) CreateMilestone(ctx context.Context, title string) (*Milestone, error) {
	var milestone *github.Milestone
	err := c.withRetry(ctx, func() error {
		var err error
		slog.Debug("GitHub API: Creating milestone", "org", c.org, "repo", c.repo, "title", title)
		milestone, _, err = c.client.Issues.CreateMilestone(ctx, c.org, c.repo, &github.Milestone{
			Title: github.String(title),
		})
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create milestone %q: %w", title, err)
	}

	return newMilestone(milestone), nil
}
