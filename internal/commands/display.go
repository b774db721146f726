package commands

import (
	"fmt"
	"io"
	"strings"

	"github.com/alan/trac2github/internal/migrator"
)

// formatMigrationSummary creates the report printed after a migration run
func formatMigrationSummary(project string, summary *migrator.Summary) string {
	var msg strings.Builder

	msg.WriteString(fmt.Sprintf("✅ Migrated %d Trac ticket(s) to %s\n", summary.Tickets, project))
	msg.WriteString(fmt.Sprintf("  Issues created: %d\n", summary.Created))
	msg.WriteString(fmt.Sprintf("  Issues already present: %d", summary.Existing))
	if summary.Reassigned > 0 {
		msg.WriteString(fmt.Sprintf(" (%d reassigned)", summary.Reassigned))
	}
	msg.WriteString("\n")
	msg.WriteString(fmt.Sprintf("  Descriptions backfilled: %d\n", summary.Backfilled))
	msg.WriteString(fmt.Sprintf("  Comments posted: %d\n", summary.Comments))
	msg.WriteString(fmt.Sprintf("  Issues closed: %d\n", summary.Closed))

	return msg.String()
}

// DisplayMigrationSummary writes the migration report to w
func DisplayMigrationSummary(w io.Writer, project string, summary *migrator.Summary) {
	fmt.Fprint(w, formatMigrationSummary(project, summary))
}
