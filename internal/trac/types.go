package trac

import (
	"strings"
	"time"
)

// Ticket is a snapshot of one Trac ticket as returned by ticket.get
type Ticket struct {
	ID         int
	Created    time.Time
	Changed    time.Time
	Attributes map[string]any
}

// Attribute returns a ticket attribute as a string, or "" when it is absent
func (t Ticket) Attribute(name string) string {
	value, ok := t.Attributes[name]
	if !ok || value == nil {
		return ""
	}
	if s, ok := value.(string); ok {
		return s
	}
	return formatValue(value)
}

// Summary returns the ticket summary
func (t Ticket) Summary() string { return t.Attribute("summary") }

// Description returns the raw wiki markup of the description
func (t Ticket) Description() string { return t.Attribute("description") }

// Type returns the ticket type, e.g. "defect"
func (t Ticket) Type() string { return t.Attribute("type") }

// Component returns the ticket component
func (t Ticket) Component() string { return t.Attribute("component") }

// Milestone returns the ticket milestone
func (t Ticket) Milestone() string { return t.Attribute("milestone") }

// Status returns the ticket status, e.g. "closed"
func (t Ticket) Status() string { return t.Attribute("status") }

// Owner returns the trimmed ticket owner
func (t Ticket) Owner() string { return strings.TrimSpace(t.Attribute("owner")) }

// Reporter returns the trimmed ticket reporter
func (t Ticket) Reporter() string { return strings.TrimSpace(t.Attribute("reporter")) }

// IsClosed reports whether the ticket's final status is closed
func (t Ticket) IsClosed() bool { return t.Status() == "closed" }

// ChangeLogEntry is one row of ticket.changeLog
type ChangeLogEntry struct {
	Time      time.Time
	Author    string
	Field     string
	OldValue  string
	NewValue  string
	Permanent bool
}

// IsComment reports whether the entry is a free-text comment rather than a field change
func (e ChangeLogEntry) IsComment() bool {
	return e.Field == "comment"
}
