// Package status implements the status command for displaying migrated tickets and their backfill state.
package status

import (
	"context"
	"fmt"
	"io"
	"regexp"
	"sort"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/alan/trac2github/cmd"
	"github.com/alan/trac2github/internal/commands"
	"github.com/alan/trac2github/internal/github"
)

const stateAll = "all"

// issueLister is the part of the GitHub client the status command needs
type issueLister interface {
	ListIssues(ctx context.Context) ([]github.Issue, error)
}

var tracIDPattern = regexp.MustCompile(`\(Trac #(\d+)\)$`)

// migratedTicket is one migrated issue as shown by status
type migratedTicket struct {
	tracID int
	issue  github.Issue
	status cmd.TicketStatus
}

// NewStatusCmd creates and returns the status command
func NewStatusCmd(globalConfigFile *string, loadConfig func(string) (*cmd.Config, error)) *cobra.Command {
	var state string
	var githubToken string
	var githubProject string

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show migration status of Trac tickets on GitHub",
		Long: `Display the issues created from Trac tickets in the GitHub project.
Issues still labelled "Incomplete Migration" are pending backfill and will be
completed by the next migrate run.`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cobraCmd *cobra.Command, _ []string) error {
			if err := validateState(state); err != nil {
				return err
			}

			base := &commands.BaseCommand{
				ConfigFile: globalConfigFile,
				LoadConfig: loadConfig,
			}
			if err := base.Init(cobraCmd.Context()); err != nil {
				return err
			}
			if githubProject != "" {
				base.Config.GitHubProject = githubProject
			}
			if base.Config.GitHubProject == "" {
				return fmt.Errorf("GitHub project is required (use --github-project or set github_project in the config file)")
			}

			client, err := base.NewGitHubClient(githubToken)
			if err != nil {
				return err
			}

			return runStatus(base.Context, cobraCmd.OutOrStdout(), base.Config.GitHubProject, client, state)
		},
	}

	statusCmd.Flags().StringVar(&state, "state", stateAll, "Show only tickets in this state (pending-backfill, complete, all)")
	statusCmd.Flags().StringVar(&githubToken, "github-token", "", "GitHub token (default: $GITHUB_TOKEN or git config github.token)")
	statusCmd.Flags().StringVar(&githubProject, "github-project", "", "GitHub project, e.g. owner/repo (default: from config file)")

	return statusCmd
}

func validateState(state string) error {
	switch state {
	case stateAll, string(cmd.TicketStatusPendingBackfill), string(cmd.TicketStatusComplete):
		return nil
	default:
		return fmt.Errorf("invalid state %q, expected pending-backfill, complete or all", state)
	}
}

func runStatus(ctx context.Context, w io.Writer, project string, lister issueLister, state string) error {
	issues, err := lister.ListIssues(ctx)
	if err != nil {
		return fmt.Errorf("failed to list issues: %w", err)
	}

	tickets := collectMigratedTickets(issues)
	if len(tickets) == 0 {
		fmt.Fprintf(w, "No migrated Trac tickets found in %s.\n", project)
		return nil
	}

	toDisplay := filterByState(tickets, state)
	fmt.Fprintf(w, "Trac migration status for %s\n\n", project)
	if len(toDisplay) == 0 {
		fmt.Fprintf(w, "No tickets in state %s.\n\n", state)
	}
	for _, ticket := range toDisplay {
		displayTicket(w, ticket)
	}
	if len(toDisplay) > 0 {
		fmt.Fprintln(w)
	}

	displayStatusSummary(w, tickets)
	return nil
}

// collectMigratedTickets keeps the issues that carry the migration label, sorted by Trac ID
func collectMigratedTickets(issues []github.Issue) []migratedTicket {
	var tickets []migratedTicket
	for _, issue := range issues {
		if !issue.HasLabel(cmd.MigratedLabel) {
			continue
		}
		tickets = append(tickets, migratedTicket{
			tracID: parseTracID(issue.Title),
			issue:  issue,
			status: cmd.TicketStatusFromLabels(issue.Labels),
		})
	}

	sort.Slice(tickets, func(i, j int) bool {
		if tickets[i].tracID != tickets[j].tracID {
			return tickets[i].tracID < tickets[j].tracID
		}
		return tickets[i].issue.Number < tickets[j].issue.Number
	})
	return tickets
}

// parseTracID extracts the ticket number from an issue title, or 0 if the title has none
func parseTracID(title string) int {
	match := tracIDPattern.FindStringSubmatch(title)
	if match == nil {
		return 0
	}
	id, err := strconv.Atoi(match[1])
	if err != nil {
		return 0
	}
	return id
}

func filterByState(tickets []migratedTicket, state string) []migratedTicket {
	if state == stateAll {
		return tickets
	}
	want := cmd.ParseTicketStatus(state)
	var filtered []migratedTicket
	for _, ticket := range tickets {
		if ticket.status == want {
			filtered = append(filtered, ticket)
		}
	}
	return filtered
}

func displayTicket(w io.Writer, ticket migratedTicket) {
	indicator := "✅ complete"
	if ticket.status == cmd.TicketStatusPendingBackfill {
		indicator = "⏳ pending backfill"
	}

	label := "Trac #?"
	if ticket.tracID > 0 {
		label = fmt.Sprintf("Trac #%d", ticket.tracID)
	}

	fmt.Fprintf(w, "  %-12s: %s (%s)\n", label, indicator, ticket.issue.URL)
	if ticket.issue.State == "closed" {
		fmt.Fprintf(w, "  %-12s  closed\n", "")
	}
}

func displayStatusSummary(w io.Writer, tickets []migratedTicket) {
	pending := 0
	for _, ticket := range tickets {
		if ticket.status == cmd.TicketStatusPendingBackfill {
			pending++
		}
	}
	fmt.Fprintf(w, "Summary: %d migrated ticket(s), %d complete, %d pending backfill\n",
		len(tickets), len(tickets)-pending, pending)
}
