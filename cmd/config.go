// Package cmd defines core data structures for trac2github configuration and migration state.
package cmd

import (
	"strings"
	"time"
)

// Labels every migrated issue is tagged with
const (
	// MigratedLabel marks an issue as created from a Trac ticket
	MigratedLabel = "Migrated from Trac"
	// SentinelLabel marks an issue whose description and comments have not been written yet
	SentinelLabel = "Incomplete Migration"
)

// Defaults applied when neither flags nor the config file set a value
const (
	DefaultTracFilter     = "max=0&order=id"
	DefaultGitHubAPIURL   = "https://api.github.com/"
	DefaultPause          = 10 * time.Second
	DefaultLongPause      = 300 * time.Second
	DefaultLongPauseEvery = 150
)

// TicketStatus represents how far a ticket got through the migration
type TicketStatus string

const (
	// TicketStatusPendingBackfill indicates the issue exists but still has a placeholder body
	TicketStatusPendingBackfill TicketStatus = "pending-backfill"
	// TicketStatusComplete indicates description and comments have been migrated
	TicketStatusComplete TicketStatus = "complete"
)

// ParseTicketStatus converts a string to TicketStatus
func ParseTicketStatus(s string) TicketStatus {
	switch s {
	case "complete":
		return TicketStatusComplete
	default:
		return TicketStatusPendingBackfill
	}
}

// TicketStatusFromLabels derives the status from the labels on a GitHub issue.
// The sentinel label is the only record of an unfinished backfill.
func TicketStatusFromLabels(labels []string) TicketStatus {
	for _, label := range labels {
		if label == SentinelLabel {
			return TicketStatusPendingBackfill
		}
	}
	return TicketStatusComplete
}

// Config represents the structure of trac2github.yaml
type Config struct {
	TracURL         string            `yaml:"trac_url"`
	TracRealm       string            `yaml:"trac_realm,omitempty"`
	TracUsername    string            `yaml:"trac_username,omitempty"`
	TracFilter      string            `yaml:"trac_filter,omitempty"`
	GitHubProject   string            `yaml:"github_project"`
	GitHubAPIURL    string            `yaml:"github_api_url,omitempty"`
	GitHubUsername  string            `yaml:"github_username,omitempty"`
	UsernameMapFile string            `yaml:"username_map_file,omitempty"`
	UsernameMap     map[string]string `yaml:"username_map,omitempty"` // trac user -> github login
	Pacing          Pacing            `yaml:"pacing,omitempty"`
}

// Pacing holds the fixed pauses used to stay under GitHub's abuse thresholds
type Pacing struct {
	Pause          time.Duration `yaml:"pause,omitempty"`
	LongPause      time.Duration `yaml:"long_pause,omitempty"`
	LongPauseEvery int           `yaml:"long_pause_every,omitempty"`
}

// ApplyDefaults fills in unset fields with their default values
func (c *Config) ApplyDefaults() {
	if c.TracFilter == "" {
		c.TracFilter = DefaultTracFilter
	}
	if c.GitHubAPIURL == "" {
		c.GitHubAPIURL = DefaultGitHubAPIURL
	}
	if c.Pacing.Pause == 0 {
		c.Pacing.Pause = DefaultPause
	}
	if c.Pacing.LongPause == 0 {
		c.Pacing.LongPause = DefaultLongPause
	}
	if c.Pacing.LongPauseEvery == 0 {
		c.Pacing.LongPauseEvery = DefaultLongPauseEvery
	}
}

// SplitGitHubProject splits "owner/repo" into its parts
func (c *Config) SplitGitHubProject() (string, string, bool) {
	owner, repo, found := strings.Cut(strings.Trim(c.GitHubProject, "/"), "/")
	if !found || owner == "" || repo == "" || strings.Contains(repo, "/") {
		return "", "", false
	}
	return owner, repo, true
}
