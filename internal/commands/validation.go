package commands

import (
	"fmt"

	"github.com/alan/trac2github/cmd"
	"github.com/alan/trac2github/internal/trac"
)

// ValidateMigrationConfig checks that a configuration has everything migrate needs
func ValidateMigrationConfig(config *cmd.Config) error {
	if config.TracURL == "" {
		return fmt.Errorf("trac URL is required (use --trac-url or set trac_url in the config file)")
	}
	if _, err := trac.PublicURL(config.TracURL); err != nil {
		return err
	}

	if config.GitHubProject == "" {
		return fmt.Errorf("GitHub project is required (use --github-project or set github_project in the config file)")
	}
	if _, _, ok := config.SplitGitHubProject(); !ok {
		return fmt.Errorf("invalid GitHub project %q, expected owner/repo", config.GitHubProject)
	}

	return ValidatePacing(config.Pacing)
}

// ValidatePacing rejects negative pauses
func ValidatePacing(p cmd.Pacing) error {
	if p.Pause < 0 {
		return fmt.Errorf("pause must not be negative, got %s", p.Pause)
	}
	if p.LongPause < 0 {
		return fmt.Errorf("long pause must not be negative, got %s", p.LongPause)
	}
	if p.LongPauseEvery < 0 {
		return fmt.Errorf("long pause interval must not be negative, got %d", p.LongPauseEvery)
	}
	return nil
}
