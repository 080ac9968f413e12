package models

// RepositoryConfig contains configuration for repository generation
type RepositoryConfig struct {
	// Input/Output
	InputDir  string
	OutputDir string

	// Repository metadata
	RepoName    string   // Database name: <RepoName>.db.tar.<ext>
	Arches      []string // Architectures accepted into the repository ("any" always is)
	Compression string   // zst, xz, gz, lz4 or none
	Files       bool     // Also write the <RepoName>.files database

	// Signing
	GPGKeyPath    string
	GPGPassphrase string

	// Processing
	Jobs int // Packages parsed concurrently

	// Incremental mode
	Incremental bool // Merge new packages into the existing database instead of replacing it
}
