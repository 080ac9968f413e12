package utils

import (
	"crypto/md5"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"os"
)

// Checksum contains the digests recorded for a package archive
type Checksum struct {
	MD5    string
	SHA256 string
	Size   int64
}

// CalculateChecksums calculates all checksums for a file in a single pass
func CalculateChecksums(path string) (*Checksum, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return checksumReader(f)
}

func checksumReader(r io.Reader) (*Checksum, error) {
	md5Hash := md5.New()
	sha256Hash := sha256.New()

	// Use MultiWriter to calculate both hashes at once
	multiWriter := io.MultiWriter(md5Hash, sha256Hash)

	n, err := io.Copy(multiWriter, r)
	if err != nil {
		return nil, err
	}

	return &Checksum{
		MD5:    hex.EncodeToString(md5Hash.Sum(nil)),
		SHA256: hex.EncodeToString(sha256Hash.Sum(nil)),
		Size:   n,
	}, nil
}
