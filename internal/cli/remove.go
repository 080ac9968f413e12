package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/ralt/pacrepo/internal/generator"
	"github.com/ralt/pacrepo/internal/generator/pacman"
	"github.com/ralt/pacrepo/internal/index"
	"github.com/ralt/pacrepo/internal/models"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// NewRemoveCmd creates the remove command
func NewRemoveCmd() *cobra.Command {
	var config models.RepositoryConfig

	cmd := &cobra.Command{
		Use:   "remove PACKAGE...",
		Short: "Remove packages from the repository database",
		Long: `Removes the named packages from an existing repository database and
rewrites it, along with the files database when one exists. Package
archives are left in place.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateRepositoryConfig(&config); err != nil {
				return err
			}

			s, err := newSigner(&config)
			if err != nil {
				return err
			}
			gen := pacman.NewGenerator(s)

			// Keep an existing files database in step with the sync database
			if !config.Files {
				filesDB := filepath.Join(config.OutputDir, pacman.DatabaseName(&config)+".files")
				if _, err := os.Stat(filesDB); err == nil {
					logrus.Infof("Found %s, rewriting it as well", filesDB)
					config.Files = true
				}
			}

			idx, err := loadRepository(gen, &config)
			if err != nil {
				return err
			}

			removed := 0
			for _, name := range args {
				pkg, ok := idx.Remove(name)
				if !ok {
					logrus.Warnf("Package %s is not in the repository", name)
					continue
				}
				logrus.Infof("Removing %s %s", pkg.Name, pkg.Version)
				removed++
			}

			if removed == 0 {
				logrus.Info("Nothing to remove")
				return nil
			}

			return gen.Generate(cmd.Context(), &config, idx)
		},
	}

	addRepositoryFlags(cmd, &config)

	return cmd
}

// loadRepository reads the existing database into a fresh index
func loadRepository(gen generator.Generator, config *models.RepositoryConfig) (*index.Index, error) {
	packages, err := gen.ParseExistingMetadata(config)
	if err != nil {
		return nil, &models.RepoError{
			Type: models.ErrPackageParse,
			Err:  fmt.Errorf("failed to load repository: %w", err),
		}
	}

	idx := index.New()
	for _, pkg := range packages {
		insertPackage(idx, pkg)
	}
	return idx, nil
}
