// Package cli implements the pacrepo command line.
package cli

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "pacrepo",
		Short: "Build and maintain pacman repository databases",
		Long: `Pacrepo scans directories for pacman package archives and writes the
sync database (and optionally the files database) that pacman downloads
from a repository.

Package metadata is read from each archive's .PKGINFO. When several
archives carry the same package name, the highest version is kept.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Setup logging
			verbose, _ := cmd.Flags().GetBool("verbose")
			if verbose {
				logrus.SetLevel(logrus.DebugLevel)
			} else {
				logrus.SetLevel(logrus.InfoLevel)
			}
		},
	}

	// Global flags
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")

	// Add subcommands
	rootCmd.AddCommand(NewGenerateCmd())
	rootCmd.AddCommand(NewRemoveCmd())
	rootCmd.AddCommand(NewListCmd())

	return rootCmd
}
