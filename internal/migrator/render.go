package migrator

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/alan/trac2github/internal/trac"
	"github.com/alan/trac2github/internal/wiki"
)

// updateTimeLayout matches the XML-RPC dateTime form Trac reports change times in
const updateTimeLayout = "20060102T15:04:05"

func issueTitle(ticket trac.Ticket) string {
	return fmt.Sprintf("%s (Trac #%d)", ticket.Summary(), ticket.ID)
}

func ownership(reporter, owner string) string {
	switch {
	case reporter != "" && owner != "":
		return fmt.Sprintf(", reported by %s and owned by %s", reporter, owner)
	case reporter != "":
		return ", reported by " + reporter
	case owner != "":
		return ", owned by " + owner
	default:
		return ""
	}
}

// placeholderBody is the pass 1 issue body. The description is prepended to it in pass 2.
func placeholderBody(ticketURL string, ticket trac.Ticket) (string, error) {
	var attrs bytes.Buffer
	enc := json.NewEncoder(&attrs)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(ticket.JSONAttributes()); err != nil {
		return "", fmt.Errorf("failed to encode ticket attributes: %w", err)
	}

	var b strings.Builder
	b.WriteString("<details>\n")
	fmt.Fprintf(&b, "<summary><em>Migrated from <a href=\"%s\">%s</a>%s</em></summary>\n",
		ticketURL, ticketURL, ownership(ticket.Reporter(), ticket.Owner()))
	b.WriteString("<p>\n\n```json\n")
	b.WriteString(strings.TrimRight(attrs.String(), "\n"))
	b.WriteString("\n```\n\n</p>\n</details>\n")
	return b.String(), nil
}

// renderEntry renders a single change-log entry; empty comments render to nothing
func renderEntry(conv *wiki.Converter, entry trac.ChangeLogEntry) (string, bool) {
	if entry.IsComment() {
		if entry.NewValue == "" {
			return "", false
		}
		return fmt.Sprintf("%s commented:\n\n%s\n\n", entry.Author, wiki.Blockquote(conv.Convert(entry.NewValue))), true
	}

	if strings.Contains(entry.OldValue, "\n") || strings.Contains(entry.NewValue, "\n") {
		return fmt.Sprintf("%s changed %s from:\n\n%s\n\nto:\n\n%s\n\n",
			entry.Author, entry.Field, wiki.Blockquote(entry.OldValue), wiki.Blockquote(entry.NewValue)), true
	}
	return fmt.Sprintf("%s changed %s from \"%s\" to \"%s\"", entry.Author, entry.Field, entry.OldValue, entry.NewValue), true
}

// renderChangeLog turns a ticket change log into issue comments, one per distinct
// timestamp, ordered from oldest to newest.
func renderChangeLog(conv *wiki.Converter, entries []trac.ChangeLogEntry) []string {
	groups := make(map[string][]string)
	for _, entry := range entries {
		text, ok := renderEntry(conv, entry)
		if !ok {
			continue
		}
		stamp := entry.Time.Format(updateTimeLayout)
		groups[stamp] = append(groups[stamp], text)
	}

	stamps := make([]string, 0, len(groups))
	for stamp := range groups {
		stamps = append(stamps, stamp)
	}
	sort.Strings(stamps)

	comments := make([]string, 0, len(stamps))
	for _, stamp := range stamps {
		values := groups[stamp]
		var text string
		if len(values) > 1 {
			text = "\n* " + strings.Join(values, "\n* ")
		} else {
			text = values[0]
		}
		comments = append(comments, fmt.Sprintf("Trac update at %s: %s", stamp, text))
	}
	return comments
}
