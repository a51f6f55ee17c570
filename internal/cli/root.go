// Package cli implements the Grit command-line interface using Cobra.
// Each subcommand maps to a progression operation (log, shop, status, etc.).
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/gritforge/grit/internal/daemon"
)

var rootCmd = &cobra.Command{
	Use:   "grit",
	Short: "Grit — levels, streaks, and power-ups for your real work",
	Long: `Grit is a local-first progression engine for productivity.
Log activity to earn XP, keep daily streaks alive, spend XP on power-ups,
and let the daily reset keep you honest.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command. Called from main.go.
func Execute(version string) {
	rootCmd.Version = version

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// openDaemon wires the full runtime without serving. Commands that only
// need the store and DB use this and Close when done.
func openDaemon() (*daemon.Daemon, error) {
	return daemon.New()
}
