// Package config provides functions for loading and saving trac2github configuration files.
package config

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/alan/trac2github/cmd"
	"gopkg.in/yaml.v3"
)

// LoadConfig loads the configuration from the specified file
func LoadConfig(filename string) (*cmd.Config, error) {
	data, err := os.ReadFile(filename) //nolint:gosec // Config filename is from command-line flag
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config cmd.Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return &config, nil
}

// SaveConfig saves the configuration to the specified file
func SaveConfig(filename string, config *cmd.Config) error {
	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(filename, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// LoadUsernameMap reads a Trac -> GitHub username mapping file
func LoadUsernameMap(filename string) (map[string]string, error) {
	f, err := os.Open(filename) //nolint:gosec // Map filename is from command-line flag
	if err != nil {
		return nil, fmt.Errorf("failed to open username map: %w", err)
	}
	defer f.Close()

	usernames, err := ParseUsernameMap(f)
	if err != nil {
		return nil, fmt.Errorf("failed to parse username map %s: %w", filename, err)
	}
	return usernames, nil
}

// ParseUsernameMap parses one "trac-user github-login" pair per line.
// Blank lines are skipped; the two names may be separated by any whitespace.
func ParseUsernameMap(r io.Reader) (map[string]string, error) {
	usernames := make(map[string]string)
	scanner := bufio.NewScanner(r)
	lineNumber := 0
	for scanner.Scan() {
		lineNumber++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		fields := strings.Fields(line)
		if len(fields) != 2 {
			return nil, fmt.Errorf("line %d: expected two whitespace-separated names, got %q", lineNumber, line)
		}
		usernames[fields[0]] = fields[1]
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return usernames, nil
}

// MergeUsernameMaps combines the config-file mapping with the mapping file; file entries win
func MergeUsernameMaps(fromConfig, fromFile map[string]string) map[string]string {
	merged := make(map[string]string, len(fromConfig)+len(fromFile))
	for trac, login := range fromConfig {
		merged[trac] = login
	}
	for trac, login := range fromFile {
		merged[trac] = login
	}
	return merged
}
