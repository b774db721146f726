package commands

import (
	"fmt"
	"os/exec"
	"regexp"
	"strings"
)

var (
	sshRemotePattern   = regexp.MustCompile(`git@github\.com:([^/]+)/([^/]+?)(?:\.git)?$`)
	httpsRemotePattern = regexp.MustCompile(`https://github\.com/([^/]+)/([^/]+?)(?:\.git)?/?$`)
)

// IsGitRepository checks if the current directory is a git repository
func IsGitRepository() bool {
	gitCmd := exec.Command("git", "rev-parse", "--git-dir")
	return gitCmd.Run() == nil
}

// DetectGitHubProject returns "owner/repo" from the origin remote of the current git repository
func DetectGitHubProject() (string, error) {
	if !IsGitRepository() {
		return "", fmt.Errorf("not in a git repository")
	}

	output, err := exec.Command("git", "remote", "get-url", "origin").Output()
	if err != nil {
		return "", fmt.Errorf("failed to read git remote: %w", err)
	}

	return ParseGitHubRemote(strings.TrimSpace(string(output)))
}

// ParseGitHubRemote extracts "owner/repo" from SSH or HTTPS GitHub remote URLs
func ParseGitHubRemote(remoteURL string) (string, error) {
	if matches := sshRemotePattern.FindStringSubmatch(remoteURL); len(matches) == 3 {
		return matches[1] + "/" + matches[2], nil
	}

	if matches := httpsRemotePattern.FindStringSubmatch(remoteURL); len(matches) == 3 {
		return matches[1] + "/" + matches[2], nil
	}

	return "", fmt.Errorf("unable to parse GitHub remote URL: %s", remoteURL)
}
