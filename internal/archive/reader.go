// Package archive reads pacman package files and repository databases,
// streaming their metadata members through the metadata parsers.
package archive

import (
	"archive/tar"
	"io"

	"github.com/ralt/pacrepo/internal/utils"
)

// OpenTar returns a tar reader over r, decompressing it according to its
// magic bytes. The closer releases the decompressor, not r.
func OpenTar(r io.Reader) (*tar.Reader, io.Closer, error) {
	dr, _, err := utils.NewReader(r)
	if err != nil {
		return nil, nil, err
	}
	return tar.NewReader(dr), dr, nil
}
