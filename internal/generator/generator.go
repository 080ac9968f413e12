// Package generator defines how a repository is written from a package index.
package generator

import (
	"context"

	"github.com/ralt/pacrepo/internal/index"
	"github.com/ralt/pacrepo/internal/models"
)

// Generator interface for repository generators
type Generator interface {
	// Generate writes the repository for every package held by idx
	Generate(ctx context.Context, config *models.RepositoryConfig, idx *index.Index) error

	// ValidatePackages checks that packages can be written to the repository
	ValidatePackages(packages []*models.Package) error

	// ParseExistingMetadata loads the packages of a previously generated
	// repository
	ParseExistingMetadata(config *models.RepositoryConfig) ([]*models.Package, error)
}
