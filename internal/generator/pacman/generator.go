// Package pacman writes pacman sync databases.
package pacman

import (
	"archive/tar"
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ralt/pacrepo/internal/archive"
	"github.com/ralt/pacrepo/internal/generator"
	"github.com/ralt/pacrepo/internal/index"
	"github.com/ralt/pacrepo/internal/metadata"
	"github.com/ralt/pacrepo/internal/models"
	"github.com/ralt/pacrepo/internal/signer"
	"github.com/ralt/pacrepo/internal/utils"
	"github.com/sirupsen/logrus"
)

// Generator implements the generator.Generator interface for Pacman repositories
type Generator struct {
	signer signer.Signer
}

// NewGenerator creates a new Pacman generator. s may be nil for an
// unsigned repository.
func NewGenerator(s signer.Signer) generator.Generator {
	return &Generator{
		signer: s,
	}
}

// Generate writes the sync database, and the files database when enabled,
// for every package in idx. Package archives that live outside the output
// directory are copied into it.
func (g *Generator) Generate(ctx context.Context, config *models.RepositoryConfig, idx *index.Index) error {
	logrus.Info("Generating Pacman repository...")

	compression, err := utils.ParseCompression(config.Compression)
	if err != nil {
		return &models.RepoError{Type: models.ErrInvalidConfig, Err: err}
	}

	packages := idx.Enumerate()
	if err := g.ValidatePackages(packages); err != nil {
		return err
	}

	if err := utils.EnsureDir(config.OutputDir); err != nil {
		return &models.RepoError{Type: models.ErrFileOp, Err: err}
	}

	for _, pkg := range packages {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if err := g.placePackage(config.OutputDir, pkg); err != nil {
			return &models.RepoError{Type: models.ErrFileOp, Package: pkg.Name, Err: err}
		}
	}

	dbName := DatabaseName(config)

	dbData, err := generateDatabase(packages, compression, false)
	if err != nil {
		return &models.RepoError{Type: models.ErrMetadataGen, Err: fmt.Errorf("failed to generate database: %w", err)}
	}
	if err := g.writeDatabase(config.OutputDir, dbName+".db", compression, dbData); err != nil {
		return err
	}

	if config.Files {
		filesData, err := generateDatabase(packages, compression, true)
		if err != nil {
			return &models.RepoError{Type: models.ErrMetadataGen, Err: fmt.Errorf("failed to generate files database: %w", err)}
		}
		if err := g.writeDatabase(config.OutputDir, dbName+".files", compression, filesData); err != nil {
			return err
		}
	}

	if g.signer != nil {
		pubKey, err := g.signer.GetPublicKey()
		if err != nil {
			return &models.RepoError{Type: models.ErrSigning, Err: fmt.Errorf("failed to export public key: %w", err)}
		}
		if err := utils.WriteFile(filepath.Join(config.OutputDir, dbName+".pub"), pubKey, 0644); err != nil {
			return &models.RepoError{Type: models.ErrFileOp, Err: err}
		}
		logrus.Infof("Repository signed with key %s", g.signer.KeyID())
	}

	logrus.Infof("Pacman repository %s generated successfully (%d packages)", dbName, len(packages))
	return nil
}

// placePackage makes sure the archive and its signature are present in the
// output directory
func (g *Generator) placePackage(outputDir string, pkg *models.Package) error {
	dst := filepath.Join(outputDir, pkg.Filename)

	if pkg.Path != "" {
		copyNeeded, err := utils.ShouldCopyFile(pkg.Path, dst, pkg.SHA256Sum)
		if err != nil {
			return err
		}
		if copyNeeded {
			logrus.Debugf("Copying %s", pkg.Filename)
			if err := utils.CopyFile(pkg.Path, dst); err != nil {
				return fmt.Errorf("failed to copy package: %w", err)
			}
		}
	}

	if !pkg.Has(models.FieldPGPSig) {
		return nil
	}

	sig, err := utils.Base64Decode(pkg.Base64Signature)
	if err != nil {
		return fmt.Errorf("signature of %s: %w", pkg.Filename, err)
	}

	sigPath := dst + ".sig"
	existing, err := os.ReadFile(sigPath)
	if err == nil && bytes.Equal(existing, sig) {
		return nil
	}
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return utils.WriteFile(sigPath, sig, 0644)
}

// writeDatabase writes "<name>.tar<ext>" and its "<name>" copy, signing
// both when a signer is configured
func (g *Generator) writeDatabase(outputDir, name string, compression utils.Compression, data []byte) error {
	paths := []string{
		filepath.Join(outputDir, name+".tar"+compression.Extension()),
		filepath.Join(outputDir, name),
	}

	var signature []byte
	if g.signer != nil {
		var err error
		signature, err = g.signer.SignDetached(data)
		if err != nil {
			return &models.RepoError{Type: models.ErrSigning, Err: fmt.Errorf("failed to sign %s: %w", name, err)}
		}
	}

	for _, path := range paths {
		if err := utils.WriteFile(path, data, 0644); err != nil {
			return &models.RepoError{Type: models.ErrFileOp, Err: fmt.Errorf("failed to write %s: %w", path, err)}
		}
		logrus.Debugf("Wrote %s", path)

		if signature != nil {
			if err := utils.WriteFile(path+".sig", signature, 0644); err != nil {
				return &models.RepoError{Type: models.ErrFileOp, Err: fmt.Errorf("failed to write signature: %w", err)}
			}
		}
	}

	return nil
}

// generateDatabase creates a compressed database tar. Each package gets a
// "<name>-<version>/" directory holding desc, plus files when withFiles.
func generateDatabase(packages []*models.Package, compression utils.Compression, withFiles bool) ([]byte, error) {
	var tarBuf bytes.Buffer
	tw := tar.NewWriter(&tarBuf)

	for _, pkg := range packages {
		dirName := pkg.EntryName() + "/"
		modTime := time.Unix(pkg.BuildDate, 0)

		err := tw.WriteHeader(&tar.Header{
			Name:     dirName,
			Mode:     0755,
			Typeflag: tar.TypeDir,
			ModTime:  modTime,
			Format:   tar.FormatPAX,
		})
		if err != nil {
			return nil, err
		}

		var desc bytes.Buffer
		if err := metadata.WriteDesc(&desc, pkg); err != nil {
			return nil, fmt.Errorf("failed to generate desc for %s: %w", pkg.Name, err)
		}
		if err := writeMember(tw, dirName+"desc", modTime, desc.Bytes()); err != nil {
			return nil, err
		}

		if withFiles {
			var files bytes.Buffer
			if err := metadata.WriteFiles(&files, pkg); err != nil {
				return nil, fmt.Errorf("failed to generate files for %s: %w", pkg.Name, err)
			}
			if err := writeMember(tw, dirName+"files", modTime, files.Bytes()); err != nil {
				return nil, err
			}
		}
	}

	if err := tw.Close(); err != nil {
		return nil, err
	}

	return compression.Compress(tarBuf.Bytes())
}

func writeMember(tw *tar.Writer, name string, modTime time.Time, data []byte) error {
	err := tw.WriteHeader(&tar.Header{
		Name:     name,
		Mode:     0644,
		Size:     int64(len(data)),
		Typeflag: tar.TypeReg,
		ModTime:  modTime,
		Format:   tar.FormatPAX,
	})
	if err != nil {
		return err
	}

	_, err = tw.Write(data)
	return err
}

// DatabaseName returns the base name of the repository's database files
func DatabaseName(config *models.RepositoryConfig) string {
	if config.RepoName == "" {
		return "custom"
	}
	return sanitizeRepoName(config.RepoName)
}

// sanitizeRepoName sanitizes a repository name for use in filenames
func sanitizeRepoName(name string) string {
	name = strings.ToLower(name)
	name = strings.ReplaceAll(name, " ", "-")
	// Replace any character that's not alphanumeric, hyphen or underscore
	var result strings.Builder
	for _, r := range name {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-' || r == '_' {
			result.WriteRune(r)
		} else {
			result.WriteRune('-')
		}
	}
	return result.String()
}

// ValidatePackages checks if packages are valid Pacman packages
func (g *Generator) ValidatePackages(packages []*models.Package) error {
	for _, pkg := range packages {
		if err := pkg.Validate(); err != nil {
			return &models.RepoError{Type: models.ErrMetadataGen, Package: pkg.Filename, Err: err}
		}
		if pkg.Architecture == "" {
			return fmt.Errorf("package missing architecture: %s", pkg.Name)
		}
		if !strings.Contains(pkg.Filename, ".pkg.tar") || strings.ContainsRune(pkg.Filename, '/') {
			return fmt.Errorf("invalid package filename: %q", pkg.Filename)
		}
	}
	return nil
}

// ParseExistingMetadata loads the database of a previously generated
// repository from the output directory. The files database is preferred
// when enabled since it also carries the file lists.
func (g *Generator) ParseExistingMetadata(config *models.RepositoryConfig) ([]*models.Package, error) {
	dbName := DatabaseName(config)

	var candidates []string
	if config.Files {
		candidates = append(candidates, dbName+".files")
	}
	candidates = append(candidates, dbName+".db")

	for _, candidate := range candidates {
		path := filepath.Join(config.OutputDir, candidate)
		if _, err := os.Stat(path); err != nil {
			continue
		}

		logrus.Infof("Loading existing database %s", path)
		packages, err := archive.LoadDatabase(path)
		if err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", path, err)
		}
		return packages, nil
	}

	return nil, fmt.Errorf("no existing Pacman metadata found in %s: %w", config.OutputDir, os.ErrNotExist)
}
