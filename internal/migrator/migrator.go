// Package migrator copies Trac tickets into GitHub issues in two passes.
//
// The first pass creates every issue with a placeholder body so that the
// Trac-ID to issue-number map is complete before any text is translated.
// The second pass writes descriptions and change history for issues that
// still carry the sentinel label.
package migrator

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/alan/trac2github/cmd"
	"github.com/alan/trac2github/internal/github"
	"github.com/alan/trac2github/internal/trac"
	"github.com/alan/trac2github/internal/wiki"
)

// TicketSource is the read side of a Trac installation
type TicketSource interface {
	QueryTickets(ctx context.Context, filter string) ([]int, error)
	GetTickets(ctx context.Context, ids []int) ([]trac.Ticket, error)
	ChangeLog(ctx context.Context, id int) ([]trac.ChangeLogEntry, error)
}

// IssueTracker is the write side: a single GitHub repository
type IssueTracker interface {
	ListMilestones(ctx context.Context) ([]github.Milestone, error)
	ListLabels(ctx context.Context) ([]github.Label, error)
	ListIssues(ctx context.Context) ([]github.Issue, error)
	CreateMilestone(ctx context.Context, title string) (*github.Milestone, error)
	CreateLabel(ctx context.Context, name, color string) (*github.Label, error)
	CreateIssue(ctx context.Context, req github.IssueRequest) (*github.Issue, error)
	SetAssignee(ctx context.Context, number int, login string) (*github.Issue, error)
	SetBody(ctx context.Context, number int, body string) (*github.Issue, error)
	CloseIssue(ctx context.Context, number int) (*github.Issue, error)
	RemoveLabelFromIssue(ctx context.Context, number int, label string) error
	CreateIssueComment(ctx context.Context, number int, body string) (*github.Comment, error)
	LookupUser(ctx context.Context, login string) (string, error)
}

// newLabelColor is the color of labels the migration has to create
const newLabelColor = "FFFFFF"

// Options configures a migration session
type Options struct {
	// TracURL is the public base URL of the Trac site, used for ticket links
	TracURL string
	// Filter is the ticket.query filter selecting the tickets to migrate
	Filter string
	// UsernameMap maps Trac usernames to GitHub logins
	UsernameMap map[string]string
	// Pacer throttles GitHub writes; nil disables pauses
	Pacer *Pacer
	// SkipBackfill stops after pass 1
	SkipBackfill bool
}

// Summary counts what a run did
type Summary struct {
	Tickets    int
	Created    int
	Existing   int
	Reassigned int
	Backfilled int
	Comments   int
	Closed     int
}

// Migrator holds the state of one migration run
type Migrator struct {
	trac   TicketSource
	github IssueTracker
	opts   Options
	pacer  *Pacer
	wiki   *wiki.Converter

	labels     *lookupCache[*github.Label]
	milestones *lookupCache[*github.Milestone]

	// issues is keyed by title, the idempotency key of pass 1
	issues        map[string]*github.Issue
	issueByTicket map[int]*github.Issue
	assignees     map[string]string

	summary Summary
}

// New creates a Migrator reading from source and writing to tracker
func New(source TicketSource, tracker IssueTracker, opts Options) *Migrator {
	if opts.Filter == "" {
		opts.Filter = cmd.DefaultTracFilter
	}

	m := &Migrator{
		trac:          source,
		github:        tracker,
		opts:          opts,
		pacer:         opts.Pacer,
		issues:        make(map[string]*github.Issue),
		issueByTicket: make(map[int]*github.Issue),
		assignees:     make(map[string]string),
	}
	m.wiki = wiki.NewConverter(opts.TracURL, m.resolveTicket)
	m.labels = newLookupCache("label", func(ctx context.Context, name string) (*github.Label, error) {
		return tracker.CreateLabel(ctx, name, newLabelColor)
	})
	m.milestones = newLookupCache("milestone", func(ctx context.Context, title string) (*github.Milestone, error) {
		return tracker.CreateMilestone(ctx, title)
	})
	return m
}

// Run performs the whole migration: load GitHub state, fetch tickets, pass 1, pass 2.
// It is safe to run again after a failure; finished tickets are skipped.
func (m *Migrator) Run(ctx context.Context) (*Summary, error) {
	if err := m.resolveUsernameMap(ctx); err != nil {
		return nil, err
	}

	if err := m.loadGitHubState(ctx); err != nil {
		return nil, err
	}

	tickets, err := m.fetchTickets(ctx)
	if err != nil {
		return nil, err
	}
	m.summary.Tickets = len(tickets)

	slog.Info("Creating GitHub issues", "tickets", len(tickets))
	for _, ticket := range tickets {
		if err := m.upsertTicket(ctx, ticket); err != nil {
			return nil, &TicketError{TicketID: ticket.ID, Phase: PhaseUpsert, Err: err}
		}
	}

	if m.opts.SkipBackfill {
		slog.Info("Skipping descriptions and comments")
		return &m.summary, nil
	}

	slog.Info("Migrating descriptions and comments")
	for _, ticket := range tickets {
		if err := m.backfillTicket(ctx, ticket); err != nil {
			return nil, &TicketError{TicketID: ticket.ID, Phase: PhaseBackfill, Err: err}
		}
	}

	return &m.summary, nil
}

// resolveUsernameMap checks every mapped GitHub login exists and stores its canonical spelling
func (m *Migrator) resolveUsernameMap(ctx context.Context) error {
	for tracUser, login := range m.opts.UsernameMap {
		canonical, err := m.github.LookupUser(ctx, login)
		if err != nil {
			return fmt.Errorf("failed to resolve GitHub user %s for Trac user %s: %w", login, tracUser, err)
		}
		m.assignees[tracUser] = canonical
	}
	return nil
}

// loadGitHubState reads milestones, labels and issues so that pass 1 can find existing objects
func (m *Migrator) loadGitHubState(ctx context.Context) error {
	slog.Info("Loading information from GitHub")

	milestones, err := m.github.ListMilestones(ctx)
	if err != nil {
		return fmt.Errorf("failed to load milestones: %w", err)
	}
	for i := range milestones {
		m.milestones.put(milestones[i].Title, &milestones[i])
	}

	labels, err := m.github.ListLabels(ctx)
	if err != nil {
		return fmt.Errorf("failed to load labels: %w", err)
	}
	for i := range labels {
		m.labels.put(labels[i].Name, &labels[i])
	}

	issues, err := m.github.ListIssues(ctx)
	if err != nil {
		return fmt.Errorf("failed to load issues: %w", err)
	}
	for i := range issues {
		m.issues[issues[i].Title] = &issues[i]
	}

	slog.Debug("Loaded GitHub state", "milestones", len(milestones), "labels", len(labels), "issues", len(issues))
	return nil
}

func (m *Migrator) fetchTickets(ctx context.Context) ([]trac.Ticket, error) {
	slog.Info("Loading information from Trac")

	ids, err := m.trac.QueryTickets(ctx, m.opts.Filter)
	if err != nil {
		return nil, fmt.Errorf("failed to query tickets: %w", err)
	}

	tickets, err := m.trac.GetTickets(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch tickets: %w", err)
	}
	return tickets, nil
}

// resolveTicket maps a Trac ticket ID to the number of the issue created for it
func (m *Migrator) resolveTicket(tracID int) (int, bool) {
	issue, ok := m.issueByTicket[tracID]
	if !ok {
		return 0, false
	}
	return issue.Number, true
}

// assigneeFor returns the GitHub login for a Trac username, or "" when it is not mapped
func (m *Migrator) assigneeFor(tracUser string) string {
	if tracUser == "" {
		return ""
	}
	return m.assignees[tracUser]
}
