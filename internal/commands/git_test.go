package commands

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseGitHubRemote(t *testing.T) {
	tests := []struct {
		name      string
		remoteURL string
		expected  string
		wantErr   bool
	}{
		{
			name:      "SSH format with .git",
			remoteURL: "git@github.com:acme/widgets.git",
			expected:  "acme/widgets",
		},
		{
			name:      "SSH format without .git",
			remoteURL: "git@github.com:acme/widgets",
			expected:  "acme/widgets",
		},
		{
			name:      "HTTPS format with .git",
			remoteURL: "https://github.com/acme/widgets.git",
			expected:  "acme/widgets",
		},
		{
			name:      "HTTPS format with trailing slash",
			remoteURL: "https://github.com/acme/widgets/",
			expected:  "acme/widgets",
		},
		{
			name:      "non-GitHub remote",
			remoteURL: "https://gitlab.com/acme/widgets.git",
			wantErr:   true,
		},
		{
			name:      "empty remote",
			remoteURL: "",
			wantErr:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			project, err := ParseGitHubRemote(tt.remoteURL)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, project)
		})
	}
}

// IsGitRepository and DetectGitHubProject depend on the git binary and the
// working directory, so they are not unit tested.
