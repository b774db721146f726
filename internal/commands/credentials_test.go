package commands

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeSources returns sources backed by maps. Prompts fail unless replaced.
func fakeSources(env, gitConfig map[string]string) *CredentialSources {
	return &CredentialSources{
		Getenv: func(key string) string { return env[key] },
		GitConfig: func(key string) (string, error) {
			if value, ok := gitConfig[key]; ok {
				return value, nil
			}
			return "", fmt.Errorf("git config %s: exit status 1", key)
		},
		RunCommand: func(command string) (string, error) {
			return "", fmt.Errorf("unexpected command %q", command)
		},
		Prompt: func(label string) (string, error) {
			return "", fmt.Errorf("unexpected prompt %q", label)
		},
		PromptSecret: func(label string) (string, error) {
			return "", fmt.Errorf("unexpected prompt %q", label)
		},
		CurrentUser: func() (string, error) { return "osuser", nil },
	}
}

func TestResolveGitHub(t *testing.T) {
	tests := []struct {
		name         string
		tokenFlag    string
		usernameFlag string
		env          map[string]string
		gitConfig    map[string]string
		command      func(string) (string, error)
		promptSecret func(string) (string, error)
		expected     GitHubCredentials
		wantErr      bool
	}{
		{
			name:      "token flag wins",
			tokenFlag: "flag-token",
			env:       map[string]string{"GITHUB_TOKEN": "env-token"},
			gitConfig: map[string]string{"github.token": "git-token"},
			expected:  GitHubCredentials{Token: "flag-token"},
		},
		{
			name:      "token from environment",
			env:       map[string]string{"GITHUB_TOKEN": "env-token"},
			gitConfig: map[string]string{"github.token": "git-token"},
			expected:  GitHubCredentials{Token: "env-token"},
		},
		{
			name:      "token from git config",
			gitConfig: map[string]string{"github.token": "git-token", "github.user": "gituser"},
			expected:  GitHubCredentials{Token: "git-token"},
		},
		{
			name:      "password from git config",
			gitConfig: map[string]string{"github.user": "gituser", "github.password": "hunter2"},
			expected:  GitHubCredentials{Username: "gituser", Password: "hunter2"},
		},
		{
			name:      "password from command",
			gitConfig: map[string]string{"github.user": "gituser", "github.password": "!pass show github"},
			command: func(command string) (string, error) {
				assert.Equal(t, "pass show github", command)
				return "from-pass", nil
			},
			expected: GitHubCredentials{Username: "gituser", Password: "from-pass"},
		},
		{
			name:      "failing password command falls back to prompt",
			gitConfig: map[string]string{"github.password": "!false"},
			command: func(string) (string, error) {
				return "", errors.New("exit status 1")
			},
			promptSecret: func(string) (string, error) { return "typed", nil },
			expected:     GitHubCredentials{Username: "osuser", Password: "typed"},
		},
		{
			name:         "username flag and prompted password",
			usernameFlag: "flaguser",
			gitConfig:    map[string]string{"github.user": "gituser"},
			promptSecret: func(label string) (string, error) {
				assert.Equal(t, "GitHub password: ", label)
				return "typed", nil
			},
			expected: GitHubCredentials{Username: "flaguser", Password: "typed"},
		},
		{
			name:         "prompt fails",
			promptSecret: func(string) (string, error) { return "", errors.New("not a terminal") },
			wantErr:      true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sources := fakeSources(tt.env, tt.gitConfig)
			if tt.command != nil {
				sources.RunCommand = tt.command
			}
			if tt.promptSecret != nil {
				sources.PromptSecret = tt.promptSecret
			}

			creds, err := sources.ResolveGitHub(tt.tokenFlag, tt.usernameFlag)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, creds)
		})
	}
}

func TestResolveGitHub_NoUsername(t *testing.T) {
	sources := fakeSources(nil, map[string]string{"github.password": "hunter2"})
	sources.CurrentUser = func() (string, error) { return "", errors.New("unknown user") }

	_, err := sources.ResolveGitHub("", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no GitHub username")
}

func TestResolveTrac(t *testing.T) {
	tests := []struct {
		name         string
		usernameFlag string
		env          map[string]string
		prompt       func(string) (string, error)
		promptSecret func(string) (string, error)
		expected     TracCredentials
		wantErr      bool
	}{
		{
			name:         "password from environment",
			usernameFlag: "alice",
			env:          map[string]string{"TRAC_PASSWORD": "env-secret"},
			expected:     TracCredentials{Username: "alice", Password: "env-secret"},
		},
		{
			name: "everything prompted",
			prompt: func(label string) (string, error) {
				assert.Equal(t, "Trac username: ", label)
				return " bob ", nil
			},
			promptSecret: func(label string) (string, error) {
				assert.Equal(t, "Trac password: ", label)
				return "typed", nil
			},
			expected: TracCredentials{Username: "bob", Password: "typed"},
		},
		{
			name:         "password prompt fails",
			usernameFlag: "alice",
			promptSecret: func(string) (string, error) { return "", errors.New("EOF") },
			wantErr:      true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sources := fakeSources(tt.env, nil)
			if tt.prompt != nil {
				sources.Prompt = tt.prompt
			}
			if tt.promptSecret != nil {
				sources.PromptSecret = tt.promptSecret
			}

			creds, err := sources.ResolveTrac(tt.usernameFlag)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, creds)
		})
	}
}

func TestReadLine(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
		wantErr  bool
	}{
		{"newline terminated", "alice\n", "alice", false},
		{"windows line ending", "alice\r\n", "alice", false},
		{"no trailing newline", "alice", "alice", false},
		{"empty input", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			line, err := readLine(strings.NewReader(tt.input))
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, line)
		})
	}
}
