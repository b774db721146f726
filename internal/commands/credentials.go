package commands

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"os/user"
	"strings"

	"golang.org/x/term"
)

// CredentialSources are the places credentials are looked up in, in order of preference.
// Every field can be replaced in tests.
type CredentialSources struct {
	// Getenv reads an environment variable, including those loaded from .env
	Getenv func(key string) string
	// GitConfig reads a git config value such as github.token
	GitConfig func(key string) (string, error)
	// RunCommand runs a shell command and returns its trimmed output
	RunCommand func(command string) (string, error)
	// Prompt asks for a value on the terminal
	Prompt func(label string) (string, error)
	// PromptSecret asks for a value on the terminal without echoing it
	PromptSecret func(label string) (string, error)
	// CurrentUser returns the name of the OS user
	CurrentUser func() (string, error)
}

// GitHubCredentials holds either a token or a username and password
type GitHubCredentials struct {
	Token    string
	Username string
	Password string
}

// TracCredentials holds the login used for the Trac XML-RPC endpoint
type TracCredentials struct {
	Username string
	Password string
}

// DefaultCredentialSources reads from the process environment, git and the terminal
func DefaultCredentialSources() *CredentialSources {
	return &CredentialSources{
		Getenv:       os.Getenv,
		GitConfig:    gitConfigValue,
		RunCommand:   runShellCommand,
		Prompt:       promptLine,
		PromptSecret: promptPassword,
		CurrentUser: func() (string, error) {
			u, err := user.Current()
			if err != nil {
				return "", err
			}
			return u.Username, nil
		},
	}
}

// ResolveGitHub finds GitHub credentials. A token wins over a password; the token is
// taken from the flag, GITHUB_TOKEN or git config github.token. Otherwise the username
// comes from the flag, git config github.user or the OS user, and the password from
// git config github.password or a prompt. A password starting with "!" is a command
// whose output is the password.
func (s *CredentialSources) ResolveGitHub(tokenFlag, usernameFlag string) (GitHubCredentials, error) {
	if tokenFlag != "" {
		return GitHubCredentials{Token: tokenFlag}, nil
	}
	if token := s.Getenv("GITHUB_TOKEN"); token != "" {
		return GitHubCredentials{Token: token}, nil
	}
	if token := s.gitConfig("github.token"); token != "" {
		return GitHubCredentials{Token: token}, nil
	}

	creds := GitHubCredentials{Username: usernameFlag}
	if creds.Username == "" {
		creds.Username = s.gitConfig("github.user")
	}
	if creds.Username == "" && s.CurrentUser != nil {
		if name, err := s.CurrentUser(); err == nil {
			creds.Username = name
		}
	}

	creds.Password = s.gitConfig("github.password")
	if command, ok := strings.CutPrefix(creds.Password, "!"); ok {
		output, err := s.RunCommand(command)
		if err != nil {
			slog.Debug("GitHub password command failed", "error", err)
			output = ""
		}
		creds.Password = output
	}

	if creds.Password == "" {
		password, err := s.PromptSecret("GitHub password: ")
		if err != nil {
			return GitHubCredentials{}, fmt.Errorf("failed to read GitHub password: %w", err)
		}
		creds.Password = password
	}

	if creds.Username == "" {
		return GitHubCredentials{}, errors.New("no GitHub username found")
	}
	return creds, nil
}

// ResolveTrac finds the Trac login. The username comes from the flag or a prompt and the
// password from TRAC_PASSWORD or a prompt.
func (s *CredentialSources) ResolveTrac(usernameFlag string) (TracCredentials, error) {
	creds := TracCredentials{Username: usernameFlag}
	if creds.Username == "" {
		username, err := s.Prompt("Trac username: ")
		if err != nil {
			return TracCredentials{}, fmt.Errorf("failed to read Trac username: %w", err)
		}
		creds.Username = strings.TrimSpace(username)
	}

	creds.Password = s.Getenv("TRAC_PASSWORD")
	if creds.Password == "" {
		password, err := s.PromptSecret("Trac password: ")
		if err != nil {
			return TracCredentials{}, fmt.Errorf("failed to read Trac password: %w", err)
		}
		creds.Password = password
	}
	return creds, nil
}

// gitConfig returns "" when the key is unset or git is unavailable
func (s *CredentialSources) gitConfig(key string) string {
	if s.GitConfig == nil {
		return ""
	}
	value, err := s.GitConfig(key)
	if err != nil {
		slog.Debug("git config lookup failed", "key", key, "error", err)
		return ""
	}
	return value
}

func gitConfigValue(key string) (string, error) {
	output, err := exec.Command("git", "config", "--get", key).Output()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(output)), nil
}

func runShellCommand(command string) (string, error) {
	output, err := exec.Command("sh", "-c", command).Output()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(output)), nil
}

func promptLine(label string) (string, error) {
	fmt.Fprint(os.Stderr, label)
	return readLine(os.Stdin)
}

func promptPassword(label string) (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return promptLine(label)
	}

	fmt.Fprint(os.Stderr, label)
	password, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", err
	}
	return string(password), nil
}

func readLine(r io.Reader) (string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}
