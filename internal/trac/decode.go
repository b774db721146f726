package trac

import (
	"fmt"
	"strconv"
	"time"
)

// isoLayout is how dates are written into migrated issue bodies
const isoLayout = "2006-01-02T15:04:05"

// decodeTicket converts a ticket.get result: [id, created, changed, attributes]
func decodeTicket(value any) (Ticket, error) {
	fields, ok := value.([]any)
	if !ok || len(fields) != 4 {
		return Ticket{}, fmt.Errorf("unexpected ticket.get result %T with %d fields", value, lenOf(value))
	}

	id, err := toInt(fields[0])
	if err != nil {
		return Ticket{}, fmt.Errorf("invalid ticket id: %w", err)
	}
	created, err := toTime(fields[1])
	if err != nil {
		return Ticket{}, fmt.Errorf("invalid creation time for ticket #%d: %w", id, err)
	}
	changed, err := toTime(fields[2])
	if err != nil {
		return Ticket{}, fmt.Errorf("invalid change time for ticket #%d: %w", id, err)
	}
	attributes, ok := fields[3].(map[string]any)
	if !ok {
		return Ticket{}, fmt.Errorf("unexpected attributes %T for ticket #%d", fields[3], id)
	}

	return Ticket{
		ID:         id,
		Created:    created,
		Changed:    changed,
		Attributes: attributes,
	}, nil
}

// decodeChangeLogEntry converts one ticket.changeLog row: [time, author, field, old, new, permanent]
func decodeChangeLogEntry(value any) (ChangeLogEntry, error) {
	fields, ok := value.([]any)
	if !ok || len(fields) < 5 {
		return ChangeLogEntry{}, fmt.Errorf("unexpected changeLog row %T with %d fields", value, lenOf(value))
	}

	at, err := toTime(fields[0])
	if err != nil {
		return ChangeLogEntry{}, fmt.Errorf("invalid changeLog time: %w", err)
	}

	entry := ChangeLogEntry{
		Time:     at,
		Author:   toString(fields[1]),
		Field:    toString(fields[2]),
		OldValue: toString(fields[3]),
		NewValue: toString(fields[4]),
	}
	if len(fields) > 5 {
		entry.Permanent = toBool(fields[5])
	}
	return entry, nil
}

func lenOf(value any) int {
	if fields, ok := value.([]any); ok {
		return len(fields)
	}
	return 0
}

func toInt(value any) (int, error) {
	switch v := value.(type) {
	case int:
		return v, nil
	case int64:
		return int(v), nil
	case int32:
		return int(v), nil
	case float64:
		return int(v), nil
	case string:
		return strconv.Atoi(v)
	default:
		return 0, fmt.Errorf("cannot convert %T to int", value)
	}
}

func toTime(value any) (time.Time, error) {
	switch v := value.(type) {
	case time.Time:
		return v, nil
	case string:
		for _, layout := range []string{"20060102T15:04:05", isoLayout, time.RFC3339} {
			if t, err := time.Parse(layout, v); err == nil {
				return t, nil
			}
		}
		return time.Time{}, fmt.Errorf("unrecognized time %q", v)
	default:
		return time.Time{}, fmt.Errorf("cannot convert %T to time", value)
	}
}

func toString(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	default:
		return formatValue(v)
	}
}

func toBool(value any) bool {
	switch v := value.(type) {
	case bool:
		return v
	case int64:
		return v != 0
	case int:
		return v != 0
	default:
		return false
	}
}

// formatValue renders non-string XML-RPC values; dates use ISO-8601
func formatValue(value any) string {
	switch v := value.(type) {
	case time.Time:
		return v.Format(isoLayout)
	case []byte:
		return string(v)
	default:
		return fmt.Sprint(v)
	}
}

// JSONAttributes returns the ticket attributes with dates converted to ISO-8601
// strings, plus id, time and changetime, ready for JSON encoding.
func (t Ticket) JSONAttributes() map[string]any {
	out := make(map[string]any, len(t.Attributes)+3)
	for name, value := range t.Attributes {
		switch v := value.(type) {
		case time.Time, []byte:
			out[name] = formatValue(v)
		default:
			out[name] = v
		}
	}
	out["id"] = t.ID
	if _, ok := out["time"]; !ok && !t.Created.IsZero() {
		out["time"] = t.Created.Format(isoLayout)
	}
	if _, ok := out["changetime"]; !ok && !t.Changed.IsZero() {
		out["changetime"] = t.Changed.Format(isoLayout)
	}
	return out
}
