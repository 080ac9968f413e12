package cli

import (
	"fmt"

	"github.com/goccy/go-json"
	"github.com/ralt/pacrepo/internal/generator/pacman"
	"github.com/ralt/pacrepo/internal/models"
	"github.com/spf13/cobra"
)

// NewListCmd creates the list command
func NewListCmd() *cobra.Command {
	var config models.RepositoryConfig
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the packages of the repository database",
		Long: `Prints "name version" for every package of the repository database,
sorted by name. With --json the full records are printed instead.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateRepositoryConfig(&config); err != nil {
				return err
			}

			idx, err := loadRepository(pacman.NewGenerator(nil), &config)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			packages := idx.Enumerate()

			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(packages)
			}

			for _, pkg := range packages {
				fmt.Fprintf(out, "%s %s\n", pkg.Name, pkg.Version)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&config.OutputDir, "output-dir", "o", "./repo", "Repository directory")
	cmd.Flags().StringVarP(&config.RepoName, "repo-name", "n", "custom", "Repository name")
	cmd.Flags().BoolVar(&config.Files, "files", false, "Read the files database to include file lists")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print full records as JSON")

	return cmd
}
