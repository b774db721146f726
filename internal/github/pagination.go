package github

import (
	"context"

	"github.com/google/go-github/v57/github"
)

// paginatedList calls fetch for every page until GitHub reports no next page
func paginatedList[T any](ctx context.Context, c *Client, fetch func(page int) ([]T, *github.Response, error)) ([]T, error) {
	var all []T
	page := 0

	for {
		var items []T
		var resp *github.Response
		err := c.withRetry(ctx, func() error {
			var err error
			items, resp, err = fetch(page)
			return err
		})
		if err != nil {
			return nil, err
		}

		all = append(all, items...)

		if resp == nil || resp.NextPage == 0 {
			break
		}
		page = resp.NextPage
	}

	return all, nil
}
