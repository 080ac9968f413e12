// Package signer produces the OpenPGP signatures pacman verifies for
// packages and repository databases.
package signer

// Signer interface for signing repository artifacts
type Signer interface {
	// SignDetached creates a binary detached signature, the ".sig" format
	// pacman reads
	SignDetached(data []byte) ([]byte, error)

	// GetPublicKey returns the armored public key
	GetPublicKey() ([]byte, error)

	// KeyID returns the hexadecimal key ID of the signing key
	KeyID() string
}
