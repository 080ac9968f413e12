// Package metadata parses and writes the two textual package metadata
// formats: the desc format stored in repository databases and the
// .PKGINFO format stored in package archives.
//
// Both parsers are push-based. The caller hands Feed whatever bytes it has;
// Feed consumes complete lines only and reports how many bytes it used. The
// caller keeps the remainder and prepends it to the next chunk, so chunk
// boundaries may fall anywhere, including inside a marker.
package metadata

import (
	"bytes"
	"fmt"
	"io"

	"github.com/ralt/pacrepo/internal/models"
)

// MaxLineLength bounds a single metadata line. Feed fails once this many
// bytes are pending without a newline.
const MaxLineLength = 64 * 1024

const readSize = 8192

// Parser is an incremental metadata parser bound to one record at a time
type Parser interface {
	// Feed parses the complete lines in chunk into pkg and returns the
	// number of bytes consumed.
	Feed(pkg *models.Package, chunk []byte) (int, error)

	// Finish marks the end of input. rest holds the bytes Feed left
	// unconsumed, if any.
	Finish(pkg *models.Package, rest []byte) error

	// LastField returns the most recently recognized field
	LastField() models.Field
}

// feedLines drives handle over every complete line of chunk
func feedLines(chunk []byte, handle func(line []byte) error) (int, error) {
	consumed := 0
	for {
		i := bytes.IndexByte(chunk[consumed:], '\n')
		if i < 0 {
			break
		}
		if err := handle(chunk[consumed : consumed+i]); err != nil {
			return consumed, err
		}
		consumed += i + 1
	}

	if len(chunk)-consumed > MaxLineLength {
		return consumed, fmt.Errorf("line exceeds %d bytes: %w", MaxLineLength, models.ErrMalformedSection)
	}
	return consumed, nil
}

// Parse reads r to the end through p, keeping the unconsumed tail of each
// read and prepending it to the next one.
func Parse(p Parser, pkg *models.Package, r io.Reader) error {
	buf := make([]byte, 0, readSize)
	for {
		if cap(buf)-len(buf) < readSize {
			grown := make([]byte, len(buf), 2*cap(buf)+readSize)
			copy(grown, buf)
			buf = grown
		}

		n, readErr := r.Read(buf[len(buf) : len(buf)+readSize])
		buf = buf[:len(buf)+n]

		consumed, err := p.Feed(pkg, buf)
		if err != nil {
			return err
		}
		buf = buf[:copy(buf, buf[consumed:])]

		if readErr == io.EOF {
			return p.Finish(pkg, buf)
		}
		if readErr != nil {
			return readErr
		}
	}
}

// ParseBytes parses a complete in-memory document through p
func ParseBytes(p Parser, pkg *models.Package, data []byte) error {
	return Parse(p, pkg, bytes.NewReader(data))
}
