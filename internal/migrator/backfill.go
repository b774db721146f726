package migrator

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/alan/trac2github/cmd"
	"github.com/alan/trac2github/internal/trac"
)

// backfillTicket writes the description and change history of ticket into its issue.
// Issues without the sentinel label are already complete and left alone.
func (m *Migrator) backfillTicket(ctx context.Context, ticket trac.Ticket) error {
	issue, ok := m.issueByTicket[ticket.ID]
	if !ok {
		return fmt.Errorf("no issue recorded for ticket #%d", ticket.ID)
	}
	if !issue.HasLabel(cmd.SentinelLabel) {
		return nil
	}

	// Sentinel goes first: a ticket that fails below is never backfilled twice.
	if err := m.github.RemoveLabelFromIssue(ctx, issue.Number, cmd.SentinelLabel); err != nil {
		return err
	}
	issue.Labels = removeString(issue.Labels, cmd.SentinelLabel)

	slog.Info("Migrating ticket", "title", issue.Title, "url", issue.URL)

	body := fmt.Sprintf("%s\n\n%s", m.wiki.Convert(ticket.Description()), issue.Body)
	updated, err := m.github.SetBody(ctx, issue.Number, body)
	if err != nil {
		return err
	}
	issue.Body = updated.Body

	changelog, err := m.trac.ChangeLog(ctx, ticket.ID)
	if err != nil {
		return fmt.Errorf("failed to fetch change log: %w", err)
	}

	for _, comment := range renderChangeLog(m.wiki, changelog) {
		if _, err := m.github.CreateIssueComment(ctx, issue.Number, comment); err != nil {
			return err
		}
		m.summary.Comments++
	}

	if ticket.IsClosed() {
		closed, err := m.github.CloseIssue(ctx, issue.Number)
		if err != nil {
			return err
		}
		issue.State = closed.State
		m.summary.Closed++
	}
	m.summary.Backfilled++

	return m.pacer.AfterTicket(ctx, ticket.ID)
}

func removeString(values []string, target string) []string {
	out := values[:0:0]
	for _, v := range values {
		if v != target {
			out = append(out, v)
		}
	}
	return out
}
