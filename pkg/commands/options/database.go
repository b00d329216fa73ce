// Package options defines shared flag helpers for CLI commands.
package options

import (
	"github.com/spf13/cobra"

	"github.com/rejonpardenilla/minderal/pkg/config"
)

// DatabaseOptions selects the database and how the session logs.
type DatabaseOptions struct {
	DB       string
	LogLevel string
	LogFile  string
}

// RememberOptions controls whether the last selection is kept.
type RememberOptions struct {
	Remember bool
}

// AddDatabaseArgs registers the database flags on every subcommand of cmd.
func AddDatabaseArgs(cmd *cobra.Command, o *DatabaseOptions) {
	cmd.PersistentFlags().StringVar(&o.DB, "db", config.DefaultDatabase,
		"Database id to open, resolved through the config file.")
	cmd.PersistentFlags().StringVar(&o.LogLevel, "log-level", "warn",
		"Log level: debug, info, warn or error.")
	cmd.PersistentFlags().StringVar(&o.LogFile, "log-file", "",
		"Append logs to this file instead of stderr.")
}

// AddRememberArgs registers the flag that restores the last selection.
func AddRememberArgs(cmd *cobra.Command, o *RememberOptions) {
	cmd.Flags().BoolVar(&o.Remember, "remember", true,
		"Restore and save the last selected node.")
}
