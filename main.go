// package main is the entry point for the trac2github tool
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	configcmd "github.com/alan/trac2github/cmd/config"
	"github.com/alan/trac2github/cmd/migrate"
	"github.com/alan/trac2github/cmd/status"
	"github.com/alan/trac2github/internal/config"
)

func main() {
	var configFile string
	var logLevel string
	var logFormat string

	rootCmd := &cobra.Command{
		Use:   "trac2github",
		Short: "A CLI tool for migrating Trac tickets to GitHub issues",
		Long: `trac2github copies the tickets of a Trac project into GitHub issues,
including descriptions, comments, labels, milestones and assignees.
Settings are kept in a YAML configuration file so a migration can be re-run
until every ticket has been migrated.`,
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			setupLogger(logLevel, logFormat)
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "trac2github.yaml", "Configuration file path")
	rootCmd.PersistentFlags().StringVarP(&logLevel, "log-level", "l", "info", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVarP(&logFormat, "log-format", "f", "text", "Log format (text, json)")

	rootCmd.AddCommand(configcmd.NewConfigCmd(&configFile, config.LoadConfig, config.SaveConfig))
	rootCmd.AddCommand(migrate.NewMigrateCmd(&configFile, config.LoadConfig))
	rootCmd.AddCommand(status.NewStatusCmd(&configFile, config.LoadConfig))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

func setupLogger(level, format string) {
	var logLevel slog.Level
	switch level {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	// Logs go to stderr so command output stays clean
	var handler slog.Handler
	if format == "json" {
		handler = slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel})
	} else {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel})
	}

	slog.SetDefault(slog.New(handler))
}
