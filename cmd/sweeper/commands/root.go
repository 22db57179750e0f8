package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	version string
	commit  string
	date    string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "sweeper",
	Short: "Sweeper - Constraint-propagation minesweeper solver",
	Long: `Sweeper plays minesweeper by logical inference. Each revealed tile
becomes a constraint over its hidden neighbors, and the engine combines
constraints to prove tiles safe or mined, guessing only when no proof exists.

Sweeper can play single games in the terminal, benchmark win rates over many
boards, and serve games over HTTP with Redis-backed sessions.`,
	Version: version,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

// SetVersionInfo sets the version information for the CLI
func SetVersionInfo(v, c, d string) {
	version = v
	commit = c
	date = d
	rootCmd.Version = fmt.Sprintf("%s (commit: %s, built: %s)", v, c, d)
}

func init() {
	// Global flags can be added here
}
