package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"runtime"
	"slices"
	"strings"

	"github.com/ralt/pacrepo/internal/archive"
	"github.com/ralt/pacrepo/internal/generator/pacman"
	"github.com/ralt/pacrepo/internal/index"
	"github.com/ralt/pacrepo/internal/models"
	"github.com/ralt/pacrepo/internal/scanner"
	"github.com/ralt/pacrepo/internal/signer"
	"github.com/ralt/pacrepo/internal/utils"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

// NewGenerateCmd creates the generate command
func NewGenerateCmd() *cobra.Command {
	var config models.RepositoryConfig

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate the repository database",
		Long: `Scans the input directory for package archives and writes the
repository database, copying and signing packages as needed.

A package whose metadata cannot be parsed is skipped with a warning.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			// Validate configuration
			if err := validateConfig(&config); err != nil {
				return err
			}

			logrus.Info("Starting repository generation...")
			logrus.Debugf("Configuration: %+v", config)

			// Run generation
			return runGeneration(cmd.Context(), &config)
		},
	}

	// Input/Output flags
	cmd.Flags().StringVarP(&config.InputDir, "input-dir", "i", ".", "Input directory to scan")
	addRepositoryFlags(cmd, &config)

	cmd.Flags().StringSliceVar(&config.Arches, "arch", nil, "Architectures to accept (default all; \"any\" is always accepted)")
	cmd.Flags().BoolVar(&config.Incremental, "incremental", false, "Merge packages into the existing database instead of replacing it")
	cmd.Flags().IntVarP(&config.Jobs, "jobs", "j", 0, "Packages parsed concurrently (default number of CPUs)")

	return cmd
}

// addRepositoryFlags registers the flags every command that writes or
// reads a database needs
func addRepositoryFlags(cmd *cobra.Command, config *models.RepositoryConfig) {
	cmd.Flags().StringVarP(&config.OutputDir, "output-dir", "o", "./repo", "Repository directory")
	cmd.Flags().StringVarP(&config.RepoName, "repo-name", "n", "custom", "Repository name")
	cmd.Flags().StringVar(&config.Compression, "compression", "zst", "Database compression (zst, xz, gz, lz4, none)")
	cmd.Flags().BoolVar(&config.Files, "files", false, "Also write the files database")

	// GPG signing flags
	cmd.Flags().StringVarP(&config.GPGKeyPath, "gpg-key", "k", "", "Path to GPG private key")
	cmd.Flags().StringVarP(&config.GPGPassphrase, "gpg-passphrase", "p", "", "GPG key passphrase")
}

func validateConfig(config *models.RepositoryConfig) error {
	if config.InputDir == "" {
		return &models.RepoError{
			Type: models.ErrInvalidConfig,
			Err:  fmt.Errorf("input-dir is required"),
		}
	}

	if err := validateRepositoryConfig(config); err != nil {
		return err
	}

	if config.Jobs < 0 {
		return &models.RepoError{
			Type: models.ErrInvalidConfig,
			Err:  fmt.Errorf("jobs must not be negative, got %d", config.Jobs),
		}
	}
	if config.Jobs == 0 {
		config.Jobs = runtime.NumCPU()
	}

	return nil
}

func validateRepositoryConfig(config *models.RepositoryConfig) error {
	if config.OutputDir == "" {
		return &models.RepoError{
			Type: models.ErrInvalidConfig,
			Err:  fmt.Errorf("output-dir is required"),
		}
	}

	if config.RepoName == "" {
		return &models.RepoError{
			Type: models.ErrInvalidConfig,
			Err:  fmt.Errorf("repo-name is required"),
		}
	}

	if _, err := utils.ParseCompression(config.Compression); err != nil {
		return &models.RepoError{
			Type: models.ErrInvalidConfig,
			Err:  err,
		}
	}

	return nil
}

func newSigner(config *models.RepositoryConfig) (signer.Signer, error) {
	if config.GPGKeyPath == "" {
		return nil, nil
	}

	s, err := signer.NewGPGSigner(config.GPGKeyPath, config.GPGPassphrase)
	if err != nil {
		return nil, &models.RepoError{
			Type: models.ErrSigning,
			Err:  fmt.Errorf("failed to initialize GPG signer: %w", err),
		}
	}
	logrus.Infof("GPG signer initialized with key %s", s.KeyID())
	return s, nil
}

func runGeneration(ctx context.Context, config *models.RepositoryConfig) error {
	// Step 1: Initialize the signer
	s, err := newSigner(config)
	if err != nil {
		return err
	}
	gen := pacman.NewGenerator(s)
	idx := index.New()

	// Step 2: Start from the existing database when updating
	if config.Incremental {
		existing, err := gen.ParseExistingMetadata(config)
		switch {
		case errors.Is(err, os.ErrNotExist):
			logrus.Info("No existing database, starting a new one")
		case err != nil:
			return &models.RepoError{Type: models.ErrPackageParse, Err: err}
		default:
			for _, pkg := range existing {
				idx.Insert(pkg)
			}
			logrus.Infof("Loaded %d packages from the existing database", idx.Len())
		}
	}

	// Step 3: Scan for packages
	logrus.Infof("Scanning directory: %s", config.InputDir)
	sc := scanner.NewFileSystemScanner()
	scannedPackages, err := sc.Scan(ctx, config.InputDir)
	if err != nil {
		return &models.RepoError{
			Type: models.ErrFileOp,
			Err:  fmt.Errorf("failed to scan directory: %w", err),
		}
	}

	if len(scannedPackages) == 0 && idx.Len() == 0 {
		logrus.Warn("No packages found in input directory")
		return nil
	}

	// Step 4: Parse packages concurrently into the index
	if err := loadPackages(ctx, config, s, scannedPackages, idx); err != nil {
		return err
	}

	// Step 5: Write the repository
	if err := gen.Generate(ctx, config, idx); err != nil {
		return fmt.Errorf("failed to generate repository: %w", err)
	}

	logrus.Info("Repository generation completed successfully!")
	logrus.Infof("Output directory: %s", config.OutputDir)

	return nil
}

// loadPackages parses the scanned archives with at most config.Jobs in
// flight, then inserts the results into idx in path order so equal
// versions resolve the same way on every run
func loadPackages(ctx context.Context, config *models.RepositoryConfig, s signer.Signer, scanned []scanner.ScannedPackage, idx *index.Index) error {
	scanned = slices.Clone(scanned)
	slices.SortFunc(scanned, func(a, b scanner.ScannedPackage) int {
		return strings.Compare(a.Path, b.Path)
	})

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(config.Jobs)

	opts := archive.LoadOptions{Files: config.Files}
	loaded := make([]*models.Package, len(scanned))

	for i, sp := range scanned {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			logrus.Debugf("Parsing %s", sp.Path)
			pkg, err := archive.LoadPackage(sp.Path, opts)
			if err != nil {
				logrus.Warnf("Failed to parse %s: %v", sp.Path, err)
				return nil
			}
			pkg.Path = sp.Path

			if !archAccepted(config.Arches, pkg.Architecture) {
				logrus.Infof("Skipping %s: architecture %s not accepted", pkg.Filename, pkg.Architecture)
				return nil
			}

			if s != nil && !pkg.Has(models.FieldPGPSig) {
				if err := signPackage(s, pkg); err != nil {
					return err
				}
			}

			loaded[i] = pkg
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}

	for _, pkg := range loaded {
		if pkg != nil {
			insertPackage(idx, pkg)
		}
	}
	return nil
}

func archAccepted(arches []string, arch string) bool {
	return len(arches) == 0 || arch == "any" || slices.Contains(arches, arch)
}

func signPackage(s signer.Signer, pkg *models.Package) error {
	data, err := os.ReadFile(pkg.Path)
	if err != nil {
		return &models.RepoError{Type: models.ErrFileOp, Package: pkg.Name, Err: err}
	}

	sig, err := s.SignDetached(data)
	if err != nil {
		return &models.RepoError{
			Type:    models.ErrSigning,
			Package: pkg.Name,
			Err:     fmt.Errorf("failed to sign package: %w", err),
		}
	}

	pkg.SetSignature(sig)
	logrus.Debugf("Signed %s", pkg.Filename)
	return nil
}

func insertPackage(idx *index.Index, pkg *models.Package) {
	prev := idx.Insert(pkg)
	switch {
	case prev == nil:
		logrus.Debugf("Adding %s %s", pkg.Name, pkg.Version)
	case prev == pkg:
		logrus.Warnf("Skipping %s %s: a newer version is already present", pkg.Name, pkg.Version)
	case prev.Version == pkg.Version:
		logrus.Infof("Replacing %s %s", pkg.Name, pkg.Version)
	default:
		logrus.Infof("Updating %s %s -> %s", pkg.Name, prev.Version, pkg.Version)
	}
}
