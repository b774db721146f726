package migrator

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/alan/trac2github/cmd"
	"github.com/alan/trac2github/internal/github"
	"github.com/alan/trac2github/internal/trac"
)

// upsertTicket makes sure an issue exists for ticket and records it in the Trac-ID map.
// An existing issue only gets its assignee corrected.
func (m *Migrator) upsertTicket(ctx context.Context, ticket trac.Ticket) error {
	title := issueTitle(ticket)
	assignee := m.assigneeFor(ticket.Owner())
	if assignee == "" && ticket.Owner() != "" {
		slog.Warn("Cannot map Trac username to GitHub user", "ticket", ticket.ID, "username", ticket.Owner())
	}

	if issue, ok := m.issues[title]; ok {
		m.summary.Existing++
		if assignee != "" && issue.Assignee != assignee {
			slog.Info("Updating assignee", "issue", issue.Number, "assignee", assignee)
			updated, err := m.github.SetAssignee(ctx, issue.Number, assignee)
			if err != nil {
				return err
			}
			issue.Assignee = updated.Assignee
			m.summary.Reassigned++
		}
		m.issueByTicket[ticket.ID] = issue
		return nil
	}

	req, err := m.newIssueRequest(ctx, ticket, title, assignee)
	if err != nil {
		return err
	}

	issue, err := m.github.CreateIssue(ctx, req)
	if err != nil {
		return err
	}
	slog.Info("Created issue", "title", title, "url", issue.URL)

	m.issues[title] = issue
	m.issueByTicket[ticket.ID] = issue
	m.summary.Created++

	return m.pacer.AfterTicket(ctx, ticket.ID)
}

func (m *Migrator) newIssueRequest(ctx context.Context, ticket trac.Ticket, title, assignee string) (github.IssueRequest, error) {
	body, err := placeholderBody(m.wiki.TicketURL(ticket.ID), ticket)
	if err != nil {
		return github.IssueRequest{}, err
	}

	names := []string{cmd.MigratedLabel, cmd.SentinelLabel}
	for _, name := range []string{ticket.Type(), ticket.Component()} {
		if name != "" {
			names = append(names, name)
		}
	}

	labels := make([]string, 0, len(names))
	for _, name := range names {
		label, err := m.labels.get(ctx, name)
		if err != nil {
			return github.IssueRequest{}, err
		}
		labels = append(labels, label.Name)
	}

	req := github.IssueRequest{
		Title:    title,
		Body:     body,
		Labels:   labels,
		Assignee: assignee,
	}

	if title := ticket.Milestone(); title != "" {
		milestone, err := m.milestones.get(ctx, title)
		if err != nil {
			return github.IssueRequest{}, fmt.Errorf("failed to resolve milestone: %w", err)
		}
		req.Milestone = milestone.Number
	}

	return req, nil
}
