// Package trac provides a client for the Trac XML-RPC plugin's ticket API.
package trac

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/kolo/xmlrpc"
)

// DefaultBatchSize is the number of ticket.get calls sent per system.multicall
const DefaultBatchSize = 100

// caller is the subset of *xmlrpc.Client used here
type caller interface {
	Call(serviceMethod string, args interface{}, reply interface{}) error
}

// Client wraps an XML-RPC connection to one Trac project.
// XML-RPC calls are not cancellable mid-flight; the context is checked before each call.
type Client struct {
	rpc       caller
	publicURL string
	batchSize int
}

// NewClient connects to the XML-RPC endpoint of the Trac project at tracURL
func NewClient(tracURL string, creds Credentials) (*Client, error) {
	return NewClientWithTransport(tracURL, creds, http.DefaultTransport)
}

// NewClientWithTransport is NewClient with a custom base HTTP transport
func NewClientWithTransport(tracURL string, creds Credentials, base http.RoundTripper) (*Client, error) {
	publicURL, err := PublicURL(tracURL)
	if err != nil {
		return nil, err
	}

	endpoint := publicURL + "/login/rpc"
	slog.Debug("Trac API endpoint", "url", endpoint, "digest", creds.Realm != "")

	rpcClient, err := xmlrpc.NewClient(endpoint, newTransport(creds, base))
	if err != nil {
		return nil, fmt.Errorf("failed to create XML-RPC client: %w", err)
	}

	return &Client{
		rpc:       rpcClient,
		publicURL: publicURL,
		batchSize: DefaultBatchSize,
	}, nil
}

// PublicURL strips credentials and trailing slashes from a Trac base URL
func PublicURL(tracURL string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(tracURL))
	if err != nil {
		return "", fmt.Errorf("invalid Trac URL: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("invalid Trac URL %q: scheme and host are required", tracURL)
	}
	u.User = nil
	u.RawQuery = ""
	u.Fragment = ""
	return strings.TrimRight(u.String(), "/"), nil
}

// PublicURL returns the credential-free base URL of the Trac project
func (c *Client) PublicURL() string {
	return c.publicURL
}

// QueryTickets returns the IDs of tickets matching a Trac query string, e.g. "max=0&order=id"
func (c *Client) QueryTickets(ctx context.Context, filter string) ([]int, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	slog.Debug("Trac API: Querying tickets", "filter", filter)
	var reply []any
	if err := c.rpc.Call("ticket.query", filter, &reply); err != nil {
		return nil, fmt.Errorf("failed to query tickets: %w", err)
	}

	ids := make([]int, 0, len(reply))
	for _, value := range reply {
		id, err := toInt(value)
		if err != nil {
			return nil, fmt.Errorf("failed to query tickets: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// GetTickets fetches the given tickets with batched system.multicall requests, preserving order
func (c *Client) GetTickets(ctx context.Context, ids []int) ([]Ticket, error) {
	tickets := make([]Ticket, 0, len(ids))

	for start := 0; start < len(ids); start += c.batchSize {
		end := min(start+c.batchSize, len(ids))
		batch := ids[start:end]

		calls := make([]methodCall, len(batch))
		for i, id := range batch {
			calls[i] = methodCall{Method: "ticket.get", Params: []any{id}}
		}

		slog.Debug("Trac API: Fetching tickets", "from", batch[0], "to", batch[len(batch)-1], "count", len(batch))
		results, err := c.multicall(ctx, calls)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch tickets: %w", err)
		}

		for i, result := range results {
			if result.Err != nil {
				return nil, fmt.Errorf("failed to fetch ticket #%d: %w", batch[i], result.Err)
			}
			ticket, err := decodeTicket(result.Value)
			if err != nil {
				return nil, fmt.Errorf("failed to decode ticket #%d: %w", batch[i], err)
			}
			tickets = append(tickets, ticket)
		}
	}

	return tickets, nil
}

// ChangeLog returns every recorded change of a ticket, oldest first
func (c *Client) ChangeLog(ctx context.Context, id int) ([]ChangeLogEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	slog.Debug("Trac API: Fetching change log", "ticket", id)
	var reply []any
	if err := c.rpc.Call("ticket.changeLog", id, &reply); err != nil {
		return nil, fmt.Errorf("failed to fetch change log for ticket #%d: %w", id, err)
	}

	entries := make([]ChangeLogEntry, 0, len(reply))
	for _, row := range reply {
		entry, err := decodeChangeLogEntry(row)
		if err != nil {
			return nil, fmt.Errorf("failed to decode change log for ticket #%d: %w", id, err)
		}
		entries = append(entries, entry)
	}
	return entries, nil
}
