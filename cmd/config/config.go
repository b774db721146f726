// Package config implements the config command for initializing and updating trac2github configuration.
package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"net/url"

	"github.com/spf13/cobra"

	"github.com/alan/trac2github/cmd"
	"github.com/alan/trac2github/internal/commands"
	"github.com/alan/trac2github/internal/trac"
)

// detectGitHubProject is replaced in tests
var detectGitHubProject = commands.DetectGitHubProject

// configOptions holds the values given on the command line
type configOptions struct {
	tracURL        string
	tracRealm      string
	tracUsername   string
	tracFilter     string
	githubProject  string
	githubAPIURL   string
	githubUsername string
	usernameMap    string
}

// NewConfigCmd creates and returns the config command
func NewConfigCmd(globalConfigFile *string, loadConfig func(string) (*cmd.Config, error), saveConfig func(string, *cmd.Config) error) *cobra.Command {
	var opts configOptions

	cobraCmd := &cobra.Command{
		Use:   "config",
		Short: "Initialize or update the trac2github.yaml configuration file",
		Long: `Config creates or updates the configuration file with the Trac project
to migrate from and the GitHub project to migrate to.

When run from a git repository, the GitHub project is detected from the
origin remote if it is not given and not already configured.

Passwords and tokens are never written to the file: they come from
GITHUB_TOKEN, TRAC_PASSWORD, git config or an interactive prompt. A username
embedded in --trac-url is saved as trac_username and the password is dropped.`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cobraCmd *cobra.Command, _ []string) error {
			return runConfigWithGitDetection(cobraCmd.OutOrStdout(), *globalConfigFile, opts, loadConfig, saveConfig)
		},
	}

	addConfigFlags(cobraCmd, &opts)
	return cobraCmd
}

// addConfigFlags adds all flags to the config command
func addConfigFlags(cobraCmd *cobra.Command, opts *configOptions) {
	f := cobraCmd.Flags()
	f.StringVarP(&opts.tracURL, "trac-url", "t", "", "Trac base URL, e.g. https://trac.example.com/project")
	f.StringVar(&opts.tracRealm, "trac-realm", "", "Trac realm for digest authentication")
	f.StringVar(&opts.tracUsername, "trac-username", "", "Trac username")
	f.StringVar(&opts.tracFilter, "trac-filter", "", "Trac ticket query filter (default \""+cmd.DefaultTracFilter+"\")")
	f.StringVarP(&opts.githubProject, "github-project", "p", "", "GitHub project, e.g. owner/repo (auto-detected from git if available)")
	f.StringVar(&opts.githubAPIURL, "github-api-url", "", "GitHub API URL for GitHub Enterprise")
	f.StringVar(&opts.githubUsername, "github-username", "", "GitHub username for password authentication")
	f.StringVar(&opts.usernameMap, "username-map", "", "File of whitespace-separated Trac username and GitHub login pairs")
}

// runConfigWithGitDetection fills in the GitHub project from git when it is still unknown
func runConfigWithGitDetection(w io.Writer, configFile string, opts configOptions, loadConfig func(string) (*cmd.Config, error), saveConfig func(string, *cmd.Config) error) error {
	config, isUpdate, err := loadOrCreateConfig(configFile, loadConfig)
	if err != nil {
		return err
	}

	if opts.githubProject == "" && config.GitHubProject == "" {
		if project, err := detectGitHubProject(); err == nil {
			opts.githubProject = project
			slog.Info("Auto-detected GitHub project", "project", project)
		} else {
			slog.Debug("GitHub project not detected from git", "error", err)
		}
	}

	updateConfigWithProvidedValues(config, opts)

	if err := validateConfig(config); err != nil {
		return err
	}
	stripTracCredentials(config)

	if err := saveConfig(configFile, config); err != nil {
		return fmt.Errorf("failed to save configuration: %w", err)
	}

	displayConfigSuccess(w, configFile, config, isUpdate)
	return nil
}

// validateConfig checks the fields config is responsible for
func validateConfig(config *cmd.Config) error {
	if config.TracURL == "" {
		return fmt.Errorf("trac URL is required (use --trac-url flag)")
	}
	if _, err := trac.PublicURL(config.TracURL); err != nil {
		return err
	}
	if config.GitHubProject == "" {
		return fmt.Errorf("GitHub project is required (use --github-project flag or run from a git repository)")
	}
	if _, _, ok := config.SplitGitHubProject(); !ok {
		return fmt.Errorf("invalid GitHub project %q, expected owner/repo", config.GitHubProject)
	}
	return nil
}

// displayConfigSuccess shows the configuration success message
func displayConfigSuccess(w io.Writer, configFile string, config *cmd.Config, isUpdate bool) {
	action := "initialized"
	if isUpdate {
		action = "updated"
	}
	fmt.Fprintf(w, "Successfully %s %s with:\n", action, configFile)
	fmt.Fprintf(w, "  Trac URL: %s\n", config.TracURL)
	if config.TracRealm != "" {
		fmt.Fprintf(w, "  Trac Realm: %s\n", config.TracRealm)
	}
	if config.TracFilter != "" {
		fmt.Fprintf(w, "  Trac Filter: %s\n", config.TracFilter)
	}
	fmt.Fprintf(w, "  GitHub Project: %s\n", config.GitHubProject)
	if config.GitHubAPIURL != "" {
		fmt.Fprintf(w, "  GitHub API URL: %s\n", config.GitHubAPIURL)
	}
	if config.UsernameMapFile != "" {
		fmt.Fprintf(w, "  Username Map: %s\n", config.UsernameMapFile)
	}
}

// loadOrCreateConfig loads existing config, or creates a new one when the file does not exist.
// Any other load error is returned so a broken file is never overwritten.
func loadOrCreateConfig(configFile string, loadConfig func(string) (*cmd.Config, error)) (*cmd.Config, bool, error) {
	config, err := loadConfig(configFile)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return &cmd.Config{}, false, nil
		}
		return nil, false, fmt.Errorf("failed to load configuration: %w", err)
	}
	if config == nil {
		return &cmd.Config{}, false, nil
	}
	return config, true, nil
}

// stripTracCredentials moves the username of a Trac URL into trac_username and drops the password
func stripTracCredentials(config *cmd.Config) {
	u, err := url.Parse(config.TracURL)
	if err != nil || u.User == nil {
		return
	}

	if config.TracUsername == "" {
		config.TracUsername = u.User.Username()
	}
	if _, hasPassword := u.User.Password(); hasPassword {
		slog.Warn("Not saving the password embedded in the Trac URL; set TRAC_PASSWORD or enter it when prompted")
	}

	u.User = nil
	config.TracURL = u.String()
}

// updateConfigWithProvidedValues updates config with any non-empty provided values
func updateConfigWithProvidedValues(config *cmd.Config, opts configOptions) {
	set := func(dst *string, value string) {
		if value != "" {
			*dst = value
		}
	}

	set(&config.TracURL, opts.tracURL)
	set(&config.TracRealm, opts.tracRealm)
	set(&config.TracUsername, opts.tracUsername)
	set(&config.TracFilter, opts.tracFilter)
	set(&config.GitHubProject, opts.githubProject)
	set(&config.GitHubAPIURL, opts.githubAPIURL)
	set(&config.GitHubUsername, opts.githubUsername)
	set(&config.UsernameMapFile, opts.usernameMap)
}
