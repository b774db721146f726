// Package migrate implements the migrate command, which copies Trac tickets into GitHub issues.
package migrate

import (
	"errors"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/alan/trac2github/cmd"
	"github.com/alan/trac2github/internal/commands"
	"github.com/alan/trac2github/internal/config"
	"github.com/alan/trac2github/internal/migrator"
	"github.com/alan/trac2github/internal/trac"
)

// MigrateCommand encapsulates the migrate command with common functionality
type MigrateCommand struct {
	commands.BaseCommand
	GitHubToken  string
	SkipBackfill bool
	Out          io.Writer
}

// migrateFlags are the command-line values that override the config file
type migrateFlags struct {
	tracURL        string
	tracRealm      string
	tracUsername   string
	tracFilter     string
	githubProject  string
	githubToken    string
	githubUsername string
	githubAPIURL   string
	usernameMap    string
	pause          time.Duration
	longPause      time.Duration
	longPauseEvery int
	skipBackfill   bool
}

// NewMigrateCmd creates the migrate command
func NewMigrateCmd(globalConfigFile *string, loadConfig func(string) (*cmd.Config, error)) *cobra.Command {
	var flags migrateFlags

	cobraCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Migrate Trac tickets to GitHub issues",
		Long: `Migrate copies every Trac ticket matching the filter into the GitHub project.

The first pass creates one issue per ticket, titled "<summary> (Trac #<id>)", with
a placeholder body and the "Incomplete Migration" label. The second pass writes the
description and the ticket history as comments, then removes the label.

Re-running is safe: issues are matched by title and only issues that still carry
the "Incomplete Migration" label are backfilled.

Examples:
  trac2github migrate --trac-url https://trac.example.com/project --github-project acme/widgets
  trac2github migrate --username-map users.txt --pause 5s`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cobraCmd *cobra.Command, _ []string) error {
			mc := &MigrateCommand{Out: cobraCmd.OutOrStdout()}
			mc.ConfigFile = globalConfigFile
			mc.LoadConfig = loadConfig
			if err := mc.Init(cobraCmd.Context()); err != nil {
				return err
			}

			applyFlags(cobraCmd.Flags(), &flags, mc.Config)
			mc.GitHubToken = flags.githubToken
			mc.SkipBackfill = flags.skipBackfill

			return mc.Run()
		},
	}

	addMigrateFlags(cobraCmd, &flags)
	return cobraCmd
}

func addMigrateFlags(cobraCmd *cobra.Command, flags *migrateFlags) {
	f := cobraCmd.Flags()
	f.StringVar(&flags.tracURL, "trac-url", "", "Trac base URL, e.g. https://trac.example.com/project")
	f.StringVar(&flags.tracRealm, "trac-realm", "", "Trac realm for digest authentication")
	f.StringVar(&flags.tracUsername, "trac-username", "", "Trac username (prompted if not set)")
	f.StringVar(&flags.tracFilter, "trac-filter", cmd.DefaultTracFilter, "Trac ticket query filter")
	f.StringVar(&flags.githubProject, "github-project", "", "GitHub project, e.g. owner/repo")
	f.StringVar(&flags.githubToken, "github-token", "", "GitHub token (default: $GITHUB_TOKEN or git config github.token)")
	f.StringVar(&flags.githubUsername, "github-username", "", "GitHub username for password authentication (default: git config github.user)")
	f.StringVar(&flags.githubAPIURL, "github-api-url", cmd.DefaultGitHubAPIURL, "GitHub API URL")
	f.StringVar(&flags.usernameMap, "username-map", "", "File of whitespace-separated Trac username and GitHub login pairs")
	f.DurationVar(&flags.pause, "pause", cmd.DefaultPause, "Pause after each ticket written to GitHub")
	f.DurationVar(&flags.longPause, "long-pause", cmd.DefaultLongPause, "Extra pause after every --long-pause-every tickets")
	f.IntVar(&flags.longPauseEvery, "long-pause-every", cmd.DefaultLongPauseEvery, "Ticket ID interval for the long pause (0 disables it)")
	f.BoolVar(&flags.skipBackfill, "skip-backfill", false, "Only create issues; do not migrate descriptions and comments")
}

// applyFlags copies explicitly set flags over the loaded configuration
func applyFlags(fs *pflag.FlagSet, flags *migrateFlags, config *cmd.Config) {
	set := func(name string, apply func()) {
		if fs.Changed(name) {
			apply()
		}
	}

	set("trac-url", func() { config.TracURL = flags.tracURL })
	set("trac-realm", func() { config.TracRealm = flags.tracRealm })
	set("trac-username", func() { config.TracUsername = flags.tracUsername })
	set("trac-filter", func() { config.TracFilter = flags.tracFilter })
	set("github-project", func() { config.GitHubProject = flags.githubProject })
	set("github-username", func() { config.GitHubUsername = flags.githubUsername })
	set("github-api-url", func() { config.GitHubAPIURL = flags.githubAPIURL })
	set("username-map", func() { config.UsernameMapFile = flags.usernameMap })
	set("pause", func() { config.Pacing.Pause = flags.pause })
	set("long-pause", func() { config.Pacing.LongPause = flags.longPause })
	set("long-pause-every", func() { config.Pacing.LongPauseEvery = flags.longPauseEvery })
}

// Run executes the migrate command
func (mc *MigrateCommand) Run() error {
	if err := commands.ValidateMigrationConfig(mc.Config); err != nil {
		return err
	}

	usernames, err := loadUsernames(mc.Config)
	if err != nil {
		return err
	}

	tracClient, err := mc.NewTracClient()
	if err != nil {
		return err
	}

	githubClient, err := mc.NewGitHubClient(mc.GitHubToken)
	if err != nil {
		return err
	}

	login, err := githubClient.GetAuthenticatedUser(mc.Context)
	if err != nil {
		return err
	}
	slog.Info("Connected", "trac", tracClient.PublicURL(), "github", githubClient.Repository(), "user", login)

	return mc.migrate(tracClient, githubClient, usernames)
}

// migrate runs both passes and reports the outcome
func (mc *MigrateCommand) migrate(source migrator.TicketSource, tracker migrator.IssueTracker, usernames map[string]string) error {
	slog.Info("Starting migration", "github", mc.Config.GitHubProject)

	m := migrator.New(source, tracker, migrator.Options{
		TracURL:      publicTracURL(mc.Config.TracURL),
		Filter:       mc.Config.TracFilter,
		UsernameMap:  usernames,
		Pacer:        migrator.NewPacer(mc.Config.Pacing),
		SkipBackfill: mc.SkipBackfill,
	})

	summary, err := m.Run(mc.Context)
	if err != nil {
		var ticketErr *migrator.TicketError
		if errors.As(err, &ticketErr) {
			slog.Error("Migration failed", "ticket", ticketErr.TicketID, "phase", ticketErr.Phase, "error", ticketErr.Err)
		} else {
			slog.Error("Migration failed", "error", err)
		}
		return err
	}

	out := mc.Out
	if out == nil {
		out = os.Stdout
	}
	commands.DisplayMigrationSummary(out, mc.Config.GitHubProject, summary)
	return nil
}

// loadUsernames merges the username map of the config file with the mapping file, if any
func loadUsernames(c *cmd.Config) (map[string]string, error) {
	var fromFile map[string]string
	if c.UsernameMapFile != "" {
		var err error
		fromFile, err = config.LoadUsernameMap(c.UsernameMapFile)
		if err != nil {
			return nil, err
		}
		slog.Debug("Loaded username map", "file", c.UsernameMapFile, "entries", len(fromFile))
	}
	return config.MergeUsernameMaps(c.UsernameMap, fromFile), nil
}

// publicTracURL drops embedded credentials so they never end up in issue bodies
func publicTracURL(tracURL string) string {
	public, err := trac.PublicURL(tracURL)
	if err != nil {
		return tracURL
	}
	return public
}
